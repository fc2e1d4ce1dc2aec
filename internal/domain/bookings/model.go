package bookings

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"booking-app/internal/domain/squares"
	"booking-app/internal/domain/users"
)

const (
	BillingUnpaid    = "unpaid"
	BillingPaid      = "paid"
	BillingCancelled = "cancelled"
)

// ErrContention is returned when a booking cannot be created because the
// square no longer has capacity for the requested slot.
var ErrContention = errors.New("square is no longer available for the requested slot")

// Metadata keys stamped by the payment flow. The existence oracle can only
// find what was written under these keys.
const (
	MetaStripeSessionID       = "stripe_session_id"
	MetaStripePaymentIntentID = "stripe_payment_intent_id"
)

type Booking struct {
	ID        uint   `gorm:"primaryKey"`
	Reference string `gorm:"uniqueIndex"`

	UserID uint `gorm:"index"`
	User   users.User

	SquareID uint `gorm:"index"`
	Square   squares.Square

	Quantity  int
	DateStart time.Time
	DateEnd   time.Time

	BillingStatus string `gorm:"index"`

	// Indexed copies of the Stripe references also kept inside Meta. The
	// unique index is what makes a second concurrent materialization for the
	// same session fail at insert time.
	StripeSessionID       *string `gorm:"uniqueIndex"`
	StripePaymentIntentID *string `gorm:"uniqueIndex"`

	// Meta is a JSON object of free-form string pairs (player names, notes,
	// stripe refs). Kept as raw text so a corrupt value breaks one booking's
	// metadata, not every query touching the table.
	Meta string

	Bills []Bill

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Bill struct {
	ID          uint `gorm:"primaryKey"`
	BookingID   uint `gorm:"index"`
	Description string
	Quantity    int
	PriceCents  int64
	Rate        float64
	Gross       bool
	CreatedAt   time.Time
}

// MetaMap decodes the booking's metadata object.
func (b *Booking) MetaMap() (map[string]string, error) {
	if b.Meta == "" {
		return map[string]string{}, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(b.Meta), &m); err != nil {
		return nil, fmt.Errorf("booking %d has malformed metadata: %w", b.ID, err)
	}
	return m, nil
}

// MetaValue returns one metadata value, or "" when the key is absent.
func (b *Booking) MetaValue(key string) (string, error) {
	m, err := b.MetaMap()
	if err != nil {
		return "", err
	}
	return m[key], nil
}

// EncodeMeta serializes a metadata map for storage.
func EncodeMeta(m map[string]string) (string, error) {
	if len(m) == 0 {
		return "", nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Cancellable reports whether the booking may still be cancelled online.
func (b *Booking) Cancellable(now time.Time) bool {
	return b.BillingStatus != BillingCancelled && b.DateStart.After(now)
}
