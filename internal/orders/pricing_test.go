package orders

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(partID, merchantID string, qty int, unitPrice string) PricedLine {
	return PricedLine{
		PartID:     partID,
		MerchantID: merchantID,
		Name:       partID,
		Quantity:   qty,
		UnitPrice:  decimal.RequireFromString(unitPrice),
	}
}

func TestBuildQuotesSplitsByMerchant(t *testing.T) {
	quotes := BuildQuotes([]PricedLine{
		line("p1", "m1", 2, "100"), // 200
		line("p2", "m2", 1, "50"),  // 50
	})
	require.Len(t, quotes, 2)

	m1 := quotes[0]
	assert.Equal(t, "m1", m1.MerchantID)
	assert.True(t, m1.Subtotal.Equal(decimal.NewFromInt(200)), "subtotal %s", m1.Subtotal)
	assert.True(t, m1.PlatformCommission.Equal(decimal.NewFromInt(10)), "commission %s", m1.PlatformCommission)
	assert.True(t, m1.TaxAmount.Equal(decimal.NewFromInt(36)), "tax %s", m1.TaxAmount)
	assert.True(t, m1.DeliveryCharge.Equal(decimal.NewFromInt(50)))
	assert.True(t, m1.TotalAmount.Equal(decimal.NewFromInt(296)), "total %s", m1.TotalAmount)

	m2 := quotes[1]
	assert.Equal(t, "m2", m2.MerchantID)
	assert.True(t, m2.Subtotal.Equal(decimal.NewFromInt(50)))
	assert.True(t, m2.PlatformCommission.Equal(decimal.RequireFromString("2.5")))
	assert.True(t, m2.TaxAmount.Equal(decimal.NewFromInt(9)))
	assert.True(t, m2.TotalAmount.Equal(decimal.RequireFromString("111.5")), "total %s", m2.TotalAmount)
}

func TestBuildQuotesTotalIsSumOfComponents(t *testing.T) {
	quotes := BuildQuotes([]PricedLine{
		line("p1", "m1", 3, "19.99"),
		line("p2", "m1", 1, "7.45"),
		line("p3", "m2", 2, "1249.50"),
	})
	for _, q := range quotes {
		want := q.Subtotal.Add(q.PlatformCommission).Add(q.TaxAmount).Add(q.DeliveryCharge)
		assert.True(t, q.TotalAmount.Equal(want),
			"merchant %s: total %s != %s", q.MerchantID, q.TotalAmount, want)
	}
}

func TestBuildQuotesDeliveryChargedPerMerchantNotPerLine(t *testing.T) {
	quotes := BuildQuotes([]PricedLine{
		line("p1", "m1", 1, "10"),
		line("p2", "m1", 1, "10"),
		line("p3", "m1", 1, "10"),
	})
	require.Len(t, quotes, 1)
	assert.True(t, quotes[0].DeliveryCharge.Equal(decimal.NewFromInt(50)))
}

func TestBuildQuotesKeepsFirstAppearanceOrder(t *testing.T) {
	quotes := BuildQuotes([]PricedLine{
		line("p1", "mB", 1, "10"),
		line("p2", "mA", 1, "10"),
		line("p3", "mB", 1, "10"),
	})
	require.Len(t, quotes, 2)
	assert.Equal(t, "mB", quotes[0].MerchantID)
	assert.Equal(t, "mA", quotes[1].MerchantID)
	require.Len(t, quotes[0].Lines, 2)
}

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusShipped, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusShipped, StatusDelivered, true},

		{StatusPending, StatusShipped, false},
		{StatusPending, StatusDelivered, false},
		{StatusConfirmed, StatusDelivered, false},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusDelivered, StatusDelivered, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}
