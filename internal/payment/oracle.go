package payment

import (
	"log"

	"booking-app/internal/domain/bookings"
)

// BookingSource is the slice of the booking store the oracle queries.
type BookingSource interface {
	// FindPaidByStripeRef looks up a paid booking through the indexed
	// stripe-ref columns. Returns nil, nil when nothing matches.
	FindPaidByStripeRef(sessionID, paymentIntentID string) (*bookings.Booking, error)
	ListPaid() ([]bookings.Booking, error)
}

// Oracle answers "does a paid booking already reference this payment?".
// It is the authoritative duplicate check shared by both confirmation
// channels: the ledger only sees webhook event ids, but both channels share
// the session and payment-intent id space.
type Oracle struct {
	src BookingSource
}

func NewOracle(src BookingSource) *Oracle {
	return &Oracle{src: src}
}

// FindPaidBooking returns the paid booking referencing either id, or nil.
// The indexed columns are consulted first; bookings created before those
// columns existed only carry the refs inside their metadata JSON, so a scan
// over paid bookings covers them. A booking whose metadata cannot be parsed
// is skipped, never fatal to the scan.
func (o *Oracle) FindPaidBooking(sessionID, paymentIntentID string) (*bookings.Booking, error) {
	if sessionID == "" && paymentIntentID == "" {
		return nil, nil
	}

	if b, err := o.src.FindPaidByStripeRef(sessionID, paymentIntentID); err != nil {
		return nil, err
	} else if b != nil {
		return b, nil
	}

	paid, err := o.src.ListPaid()
	if err != nil {
		return nil, err
	}
	for i := range paid {
		meta, err := paid[i].MetaMap()
		if err != nil {
			log.Printf("duplicate scan: skipping booking %d: %v", paid[i].ID, err)
			continue
		}
		if sessionID != "" && meta[bookings.MetaStripeSessionID] == sessionID {
			return &paid[i], nil
		}
		if paymentIntentID != "" && meta[bookings.MetaStripePaymentIntentID] == paymentIntentID {
			return &paid[i], nil
		}
	}
	return nil, nil
}
