package payment

import (
	"fmt"
	"strconv"
	"time"

	"booking-app/internal/domain/bookings"
	"booking-app/internal/domain/squares"
	"booking-app/internal/domain/users"
)

// Metadata keys embedded into the checkout session at creation time and read
// back here. Date and time-of-day travel as separate component strings.
const (
	metaUserID      = "user_id"
	metaSquareID    = "square_id"
	metaDateStart   = "ds"
	metaDateEnd     = "de"
	metaTimeStart   = "ts"
	metaTimeEnd     = "te"
	metaQuantity    = "quantity"
	metaPlayerNames = "player-names"
	metaNotes       = "notes"
)

const slotLayout = "2006-01-02 15:04"

// UserDirectory resolves a user id embedded in checkout metadata.
type UserDirectory interface {
	Get(id uint) (*users.User, error)
}

// SquareDirectory resolves a square id embedded in checkout metadata.
type SquareDirectory interface {
	Get(id uint) (*squares.Square, error)
}

// Draft is the booking-creation request handed to the store. Price
// computation, row insertion and billing-status assignment happen there.
type Draft struct {
	User            *users.User
	Square          *squares.Square
	Quantity        int
	DateStart       time.Time
	DateEnd         time.Time
	SessionID       string
	PaymentIntentID string
	Meta            map[string]string
}

// BookingCreator persists a paid booking from a draft. It must reject drafts
// whose slot is no longer available (bookings.ErrContention).
type BookingCreator interface {
	CreatePaid(d Draft) (*bookings.Booking, error)
}

// BookingCreationError marks a materialization attempt that failed before or
// during persistence. Lookup and parse failures indicate corrupted or
// tampered metadata and are not retried automatically.
type BookingCreationError struct {
	Stage string
	Err   error
}

func (e *BookingCreationError) Error() string {
	return fmt.Sprintf("booking creation failed (%s): %v", e.Stage, e.Err)
}

func (e *BookingCreationError) Unwrap() error { return e.Err }

// Materialized is the result of turning a confirmation into a booking.
type Materialized struct {
	Booking *bookings.Booking
	User    *users.User
}

// Materializer translates a verified payment confirmation into a persisted
// paid booking.
type Materializer struct {
	users   UserDirectory
	squares SquareDirectory
	store   BookingCreator
}

func NewMaterializer(users UserDirectory, squares SquareDirectory, store BookingCreator) *Materializer {
	return &Materializer{users: users, squares: squares, store: store}
}

// Materialize resolves user and square from the confirmation's metadata,
// assembles the slot timestamps, carries optional free-text metadata forward
// verbatim and stamps the booking with the originating Stripe references.
// That stamp is what the oracle later finds.
func (m *Materializer) Materialize(conf Confirmation) (*Materialized, error) {
	md := conf.Metadata

	userID, err := parseID(md[metaUserID])
	if err != nil {
		return nil, &BookingCreationError{Stage: "metadata", Err: fmt.Errorf("invalid user_id %q: %w", md[metaUserID], err)}
	}
	squareID, err := parseID(md[metaSquareID])
	if err != nil {
		return nil, &BookingCreationError{Stage: "metadata", Err: fmt.Errorf("invalid square_id %q: %w", md[metaSquareID], err)}
	}

	user, err := m.users.Get(userID)
	if err != nil {
		return nil, &BookingCreationError{Stage: "user lookup", Err: err}
	}
	square, err := m.squares.Get(squareID)
	if err != nil {
		return nil, &BookingCreationError{Stage: "square lookup", Err: err}
	}

	dateStart, err := time.ParseInLocation(slotLayout, md[metaDateStart]+" "+md[metaTimeStart], time.Local)
	if err != nil {
		return nil, &BookingCreationError{Stage: "dates", Err: err}
	}
	dateEnd, err := time.ParseInLocation(slotLayout, md[metaDateEnd]+" "+md[metaTimeEnd], time.Local)
	if err != nil {
		return nil, &BookingCreationError{Stage: "dates", Err: err}
	}
	if !dateEnd.After(dateStart) {
		return nil, &BookingCreationError{Stage: "dates", Err: fmt.Errorf("slot end %s not after start %s", dateEnd, dateStart)}
	}

	quantity, err := strconv.Atoi(md[metaQuantity])
	if err != nil || quantity < 1 {
		return nil, &BookingCreationError{Stage: "metadata", Err: fmt.Errorf("invalid quantity %q", md[metaQuantity])}
	}

	meta := map[string]string{}
	if v := md[metaPlayerNames]; v != "" {
		meta[metaPlayerNames] = v
	}
	if v := md[metaNotes]; v != "" {
		meta[metaNotes] = v
	}
	if conf.SessionID != "" {
		meta[bookings.MetaStripeSessionID] = conf.SessionID
	}
	if conf.PaymentIntentID != "" {
		meta[bookings.MetaStripePaymentIntentID] = conf.PaymentIntentID
	}

	booking, err := m.store.CreatePaid(Draft{
		User:            user,
		Square:          square,
		Quantity:        quantity,
		DateStart:       dateStart,
		DateEnd:         dateEnd,
		SessionID:       conf.SessionID,
		PaymentIntentID: conf.PaymentIntentID,
		Meta:            meta,
	})
	if err != nil {
		return nil, &BookingCreationError{Stage: "store", Err: err}
	}
	return &Materialized{Booking: booking, User: user}, nil
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, fmt.Errorf("id must be positive")
	}
	return uint(id), nil
}
