package rental

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func TestPriceThreeDayRentalWithInsurance(t *testing.T) {
	q, err := Price(decimal.NewFromInt(1000), day(0), day(3), true, true)
	require.NoError(t, err)

	assert.Equal(t, 3, q.TotalDays)
	assert.True(t, q.Subtotal.Equal(decimal.NewFromInt(3000)), "subtotal %s", q.Subtotal)
	assert.True(t, q.PlatformCommission.Equal(decimal.NewFromInt(300)), "commission %s", q.PlatformCommission)
	assert.True(t, q.InsuranceFee.Equal(decimal.NewFromInt(150)), "insurance %s", q.InsuranceFee)
	assert.True(t, q.TotalAmount.Equal(decimal.NewFromInt(3450)), "total %s", q.TotalAmount)
}

func TestPriceRoundsPartialDaysUp(t *testing.T) {
	start := day(0)
	end := start.Add(24*time.Hour + time.Minute)
	q, err := Price(decimal.NewFromInt(500), start, end, false, false)
	require.NoError(t, err)
	assert.Equal(t, 2, q.TotalDays)
	assert.True(t, q.Subtotal.Equal(decimal.NewFromInt(1000)))
}

func TestPriceInsuranceNeedsRequestAndEligibility(t *testing.T) {
	// requested but vehicle not eligible
	q, err := Price(decimal.NewFromInt(1000), day(0), day(2), true, false)
	require.NoError(t, err)
	assert.True(t, q.InsuranceFee.IsZero())

	// eligible but not requested
	q, err = Price(decimal.NewFromInt(1000), day(0), day(2), false, true)
	require.NoError(t, err)
	assert.True(t, q.InsuranceFee.IsZero())
}

func TestPriceRejectsInvalidRanges(t *testing.T) {
	_, err := Price(decimal.NewFromInt(1000), day(3), day(1), false, false)
	assert.ErrorIs(t, err, ErrInvalidDates)

	_, err = Price(decimal.NewFromInt(1000), day(1), day(1), false, false)
	assert.ErrorIs(t, err, ErrInvalidDates)
}
