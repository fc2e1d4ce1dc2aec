package stripe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLineItemsGrossSlot(t *testing.T) {
	items := BuildLineItems([]BillLine{
		{Description: "Court 1, 2026-09-04 18:00 - 19:30", Quantity: 1, PriceCents: 6000, Rate: 10, Gross: true},
	}, "aud")

	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, "Court 1, 2026-09-04 18:00 - 19:30", *item.PriceData.ProductData.Name)
	assert.Equal(t, int64(6000), *item.PriceData.UnitAmount, "gross price passes through unchanged")
	assert.Equal(t, int64(1), *item.Quantity)
	assert.Equal(t, "aud", *item.PriceData.Currency)
}

func TestBuildLineItemsNetGetsTaxApplied(t *testing.T) {
	items := BuildLineItems([]BillLine{
		{Description: "Court 1", Quantity: 1, PriceCents: 6000, Rate: 10, Gross: false},
	}, "aud")

	require.Len(t, items, 1)
	assert.Equal(t, int64(6600), *items[0].PriceData.UnitAmount)
}

func TestBuildLineItemsProductUnitPrice(t *testing.T) {
	// Position total 900 over 3 items: Stripe gets unit price x quantity.
	items := BuildLineItems([]BillLine{
		{Description: "Racket rental", Quantity: 3, PriceCents: 900, Rate: 0, Gross: true},
	}, "aud")

	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, "Racket rental (per item)", *item.PriceData.ProductData.Name)
	assert.Equal(t, int64(300), *item.PriceData.UnitAmount)
	assert.Equal(t, int64(3), *item.Quantity)
}

func TestBuildLineItemsProductUnitRounding(t *testing.T) {
	// 1000 / 3 = 333.33, rounds to 333 per unit.
	items := BuildLineItems([]BillLine{
		{Description: "Balls", Quantity: 3, PriceCents: 1000, Gross: true},
	}, "aud")

	require.Len(t, items, 1)
	assert.Equal(t, int64(333), *items[0].PriceData.UnitAmount)
}

func TestBuildLineItemsNetProduct(t *testing.T) {
	// Unit price first, then tax on the unit.
	items := BuildLineItems([]BillLine{
		{Description: "Drinks", Quantity: 2, PriceCents: 1000, Rate: 10, Gross: false},
	}, "aud")

	require.Len(t, items, 1)
	assert.Equal(t, int64(550), *items[0].PriceData.UnitAmount)
}
