package booking

import (
	"testing"
	"time"

	"booking-app/internal/domain/squares"

	"github.com/stretchr/testify/assert"
)

func slot(t *testing.T, start, end string) (time.Time, time.Time) {
	t.Helper()
	s, err := time.ParseInLocation("2006-01-02 15:04", start, time.Local)
	if err != nil {
		t.Fatal(err)
	}
	e, err := time.ParseInLocation("2006-01-02 15:04", end, time.Local)
	if err != nil {
		t.Fatal(err)
	}
	return s, e
}

func TestCourtBill(t *testing.T) {
	square := &squares.Square{Name: "Court 1", PricePerHourCents: 2000, TaxRate: 10, PriceIsGross: true}
	start, end := slot(t, "2026-09-04 18:00", "2026-09-04 19:30")

	bill := CourtBill(square, start, end, 2)

	assert.Equal(t, "Court 1, 2026-09-04 18:00 - 19:30", bill.Description)
	assert.Equal(t, 2, bill.Quantity)
	assert.Equal(t, int64(6000), bill.PriceCents, "1.5h x 2000c x 2 courts")
	assert.Equal(t, 10.0, bill.Rate)
	assert.True(t, bill.Gross)
}

func TestCourtBillSubHourRounding(t *testing.T) {
	square := &squares.Square{Name: "Court 1", PricePerHourCents: 1999}
	start, end := slot(t, "2026-09-04 18:00", "2026-09-04 18:20")

	bill := CourtBill(square, start, end, 1)

	// 1999 * (20/60) = 666.33, rounds to 666.
	assert.Equal(t, int64(666), bill.PriceCents)
}

func TestProductBill(t *testing.T) {
	p := &squares.Product{Name: "Racket rental", PriceCents: 300, Rate: 10, Gross: false}

	bill := ProductBill(p, 3)

	assert.Equal(t, "Racket rental", bill.Description)
	assert.Equal(t, 3, bill.Quantity)
	assert.Equal(t, int64(900), bill.PriceCents, "position total, not unit price")
	assert.Equal(t, 10.0, bill.Rate)
	assert.False(t, bill.Gross)
}
