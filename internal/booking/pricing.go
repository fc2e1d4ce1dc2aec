package booking

import (
	"fmt"
	"math"
	"time"

	"booking-app/internal/domain/bookings"
	"booking-app/internal/domain/squares"
)

// CourtBill prices the square slot itself: price per hour, per unit, over
// the slot's duration. The bill's price is the total, not a unit price.
func CourtBill(square *squares.Square, start, end time.Time, quantity int) bookings.Bill {
	hours := end.Sub(start).Hours()
	total := int64(math.Round(float64(square.PricePerHourCents)*hours)) * int64(quantity)
	return bookings.Bill{
		Description: fmt.Sprintf("%s, %s - %s", square.Name, start.Format("2006-01-02 15:04"), end.Format("15:04")),
		Quantity:    quantity,
		PriceCents:  total,
		Rate:        square.TaxRate,
		Gross:       square.PriceIsGross,
	}
}

// ProductBill prices an add-on product at the chosen amount.
func ProductBill(p *squares.Product, amount int) bookings.Bill {
	return bookings.Bill{
		Description: p.Name,
		Quantity:    amount,
		PriceCents:  p.PriceCents * int64(amount),
		Rate:        p.Rate,
		Gross:       p.Gross,
	}
}
