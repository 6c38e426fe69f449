package rental

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	CommissionRate = decimal.RequireFromString("0.10")
	InsuranceRate  = decimal.RequireFromString("0.05")
)

var ErrInvalidDates = errors.New("invalid booking date range")

type Quote struct {
	TotalDays          int
	Subtotal           decimal.Decimal
	PlatformCommission decimal.Decimal
	InsuranceFee       decimal.Decimal
	TotalAmount        decimal.Decimal
}

// Price computes a rental quote. Days are billed whole: any started day
// counts. Insurance applies only when the customer asked for it AND the
// vehicle is eligible.
func Price(pricePerDay decimal.Decimal, start, end time.Time, insuranceRequested, insuranceEligible bool) (Quote, error) {
	d := end.Sub(start)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	if days < 1 {
		return Quote{}, ErrInvalidDates
	}

	q := Quote{TotalDays: days}
	q.Subtotal = pricePerDay.Mul(decimal.NewFromInt(int64(days))).Round(2)
	q.PlatformCommission = q.Subtotal.Mul(CommissionRate).Round(2)
	if insuranceRequested && insuranceEligible {
		q.InsuranceFee = q.Subtotal.Mul(InsuranceRate).Round(2)
	} else {
		q.InsuranceFee = decimal.Zero
	}
	q.TotalAmount = q.Subtotal.Add(q.PlatformCommission).Add(q.InsuranceFee)
	return q, nil
}
