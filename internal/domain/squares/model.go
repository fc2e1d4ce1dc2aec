package squares

import (
	"errors"
	"time"
)

// ErrNotFound is returned by square lookups when no row matches.
var ErrNotFound = errors.New("square not found")

// Square is a bookable court/pitch/lane. Pricing is per hour per unit,
// in minor currency units (cents).
type Square struct {
	ID                uint `gorm:"primaryKey"`
	Name              string
	Capacity          int
	PricePerHourCents int64
	TaxRate           float64
	PriceIsGross      bool
	AllowNotes        bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Product is an add-on sellable alongside a booking (rackets, balls, ...).
// Options holds the purchasable amounts as a comma-separated list, e.g. "1,2,4".
type Product struct {
	ID         uint `gorm:"primaryKey"`
	Name       string
	PriceCents int64
	Rate       float64
	Gross      bool
	Options    string

	CreatedAt time.Time
	UpdatedAt time.Time
}
