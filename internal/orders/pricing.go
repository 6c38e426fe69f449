package orders

import "github.com/shopspring/decimal"

// Per-merchant charges. A cart spanning several merchants settles
// independently per seller; the delivery charge applies once per
// merchant-order, not per line.
var (
	CommissionRate = decimal.RequireFromString("0.05")
	TaxRate        = decimal.RequireFromString("0.18")
	DeliveryCharge = decimal.NewFromInt(50)
)

// PricedLine is a cart line joined with its catalog snapshot.
type PricedLine struct {
	PartID     string
	MerchantID string
	Name       string
	Quantity   int
	UnitPrice  decimal.Decimal
}

func (l PricedLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Quote is one merchant partition of a checkout with its settled amounts.
type Quote struct {
	MerchantID         string
	Lines              []PricedLine
	Subtotal           decimal.Decimal
	PlatformCommission decimal.Decimal
	TaxAmount          decimal.Decimal
	DeliveryCharge     decimal.Decimal
	TotalAmount        decimal.Decimal
}

// BuildQuotes partitions priced lines by merchant and computes each
// partition's amounts. Partition order follows first appearance in the cart
// so the response is deterministic. Amounts are rounded to two decimals,
// the platform's base currency precision.
func BuildQuotes(lines []PricedLine) []Quote {
	byMerchant := make(map[string]*Quote)
	var order []string

	for _, l := range lines {
		q, ok := byMerchant[l.MerchantID]
		if !ok {
			q = &Quote{MerchantID: l.MerchantID}
			byMerchant[l.MerchantID] = q
			order = append(order, l.MerchantID)
		}
		q.Lines = append(q.Lines, l)
		q.Subtotal = q.Subtotal.Add(l.Total())
	}

	out := make([]Quote, 0, len(order))
	for _, mid := range order {
		q := byMerchant[mid]
		q.Subtotal = q.Subtotal.Round(2)
		q.PlatformCommission = q.Subtotal.Mul(CommissionRate).Round(2)
		q.TaxAmount = q.Subtotal.Mul(TaxRate).Round(2)
		q.DeliveryCharge = DeliveryCharge
		q.TotalAmount = q.Subtotal.
			Add(q.PlatformCommission).
			Add(q.TaxAmount).
			Add(q.DeliveryCharge)
		out = append(out, *q)
	}
	return out
}
