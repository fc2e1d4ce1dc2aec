package booking

import (
	"errors"
	"fmt"
	"time"

	"booking-app/internal/domain/bookings"
	"booking-app/internal/domain/squares"
	"booking-app/internal/payment"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is the GORM-backed booking store. It implements the payment flow's
// BookingSource and BookingCreator collaborators.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// FindPaidByStripeRef looks a paid booking up through the indexed stripe-ref
// columns. Returns nil, nil when nothing matches.
func (s *Store) FindPaidByStripeRef(sessionID, paymentIntentID string) (*bookings.Booking, error) {
	if sessionID == "" && paymentIntentID == "" {
		return nil, nil
	}

	q := s.db.Where("billing_status = ?", bookings.BillingPaid)
	switch {
	case sessionID != "" && paymentIntentID != "":
		q = q.Where("stripe_session_id = ? OR stripe_payment_intent_id = ?", sessionID, paymentIntentID)
	case sessionID != "":
		q = q.Where("stripe_session_id = ?", sessionID)
	default:
		q = q.Where("stripe_payment_intent_id = ?", paymentIntentID)
	}

	var b bookings.Booking
	err := q.First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListPaid returns all paid bookings, for the oracle's metadata scan.
func (s *Store) ListPaid() ([]bookings.Booking, error) {
	var list []bookings.Booking
	if err := s.db.Where("billing_status = ?", bookings.BillingPaid).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// CreatePaid re-checks capacity, computes the booking's bill from the
// square's pricing and inserts booking plus bill rows in one transaction.
// The unique index on the stripe-ref columns makes the second of two
// concurrent inserts for the same payment fail here instead of double
// booking.
func (s *Store) CreatePaid(d payment.Draft) (*bookings.Booking, error) {
	meta, err := bookings.EncodeMeta(d.Meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode booking metadata: %w", err)
	}

	b := &bookings.Booking{
		Reference:     uuid.NewString(),
		UserID:        d.User.ID,
		SquareID:      d.Square.ID,
		Quantity:      d.Quantity,
		DateStart:     d.DateStart,
		DateEnd:       d.DateEnd,
		BillingStatus: bookings.BillingPaid,
		Meta:          meta,
		Bills:         []bookings.Bill{CourtBill(d.Square, d.DateStart, d.DateEnd, d.Quantity)},
	}
	if d.SessionID != "" {
		sid := d.SessionID
		b.StripeSessionID = &sid
	}
	if d.PaymentIntentID != "" {
		pid := d.PaymentIntentID
		b.StripePaymentIntentID = &pid
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		booked, err := overlappingQuantity(tx, d.Square.ID, d.DateStart, d.DateEnd)
		if err != nil {
			return err
		}
		if booked+d.Quantity > d.Square.Capacity {
			return bookings.ErrContention
		}
		return tx.Create(b).Error
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// IsBookable reports whether the square still has capacity for quantity
// units in the given slot.
func (s *Store) IsBookable(square *squares.Square, start, end time.Time, quantity int) (bool, error) {
	booked, err := overlappingQuantity(s.db, square.ID, start, end)
	if err != nil {
		return false, err
	}
	return booked+quantity <= square.Capacity, nil
}

// Cancel marks a booking cancelled. Only future, non-cancelled bookings
// qualify.
func (s *Store) Cancel(b *bookings.Booking) error {
	if !b.Cancellable(time.Now()) {
		return fmt.Errorf("booking %d cannot be cancelled anymore", b.ID)
	}
	return s.db.Model(b).Update("billing_status", bookings.BillingCancelled).Error
}

func overlappingQuantity(tx *gorm.DB, squareID uint, start, end time.Time) (int, error) {
	var booked int64
	err := tx.Model(&bookings.Booking{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("square_id = ? AND billing_status <> ?", squareID, bookings.BillingCancelled).
		Where("date_start < ? AND date_end > ?", end, start).
		Scan(&booked).Error
	if err != nil {
		return 0, err
	}
	return int(booked), nil
}
