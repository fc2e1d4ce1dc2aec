package payment

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"booking-app/internal/domain/bookings"
	"booking-app/internal/domain/squares"
	"booking-app/internal/domain/users"
)

// fakeKV is an in-memory, race-safe stand-in for the settings store.
type fakeKV struct {
	mu       sync.Mutex
	data     map[string]string
	getErr   error
	setErr   error
	setCalls int
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}}
}

func (k *fakeKV) Get(key string, fallback string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.getErr != nil {
		return "", k.getErr
	}
	if v, ok := k.data[key]; ok {
		return v, nil
	}
	return fallback, nil
}

func (k *fakeKV) Set(key string, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.setCalls++
	if k.setErr != nil {
		return k.setErr
	}
	k.data[key] = value
	return nil
}

func (k *fakeKV) Delete(key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.data, key)
	return nil
}

func (k *fakeKV) put(key, value string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.data[key] = value
}

// fakeBookingStore keeps bookings in memory and rejects a second insert
// carrying an already-stored stripe ref, the way the unique index does.
type fakeBookingStore struct {
	mu            sync.Mutex
	rows          []bookings.Booking
	nextID        uint
	createErr     error
	createCalls   int
	indexedCalls  int
	listPaidCalls int
}

func (s *fakeBookingStore) FindPaidByStripeRef(sessionID, paymentIntentID string) (*bookings.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexedCalls++
	for i := range s.rows {
		b := s.rows[i]
		if b.BillingStatus != bookings.BillingPaid {
			continue
		}
		if sessionID != "" && b.StripeSessionID != nil && *b.StripeSessionID == sessionID {
			return &b, nil
		}
		if paymentIntentID != "" && b.StripePaymentIntentID != nil && *b.StripePaymentIntentID == paymentIntentID {
			return &b, nil
		}
	}
	return nil, nil
}

func (s *fakeBookingStore) ListPaid() ([]bookings.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listPaidCalls++
	var paid []bookings.Booking
	for _, b := range s.rows {
		if b.BillingStatus == bookings.BillingPaid {
			paid = append(paid, b)
		}
	}
	return paid, nil
}

func (s *fakeBookingStore) CreatePaid(d Draft) (*bookings.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	if s.createErr != nil {
		return nil, s.createErr
	}
	for i := range s.rows {
		b := &s.rows[i]
		if d.SessionID != "" && b.StripeSessionID != nil && *b.StripeSessionID == d.SessionID {
			return nil, errors.New("duplicate key value violates unique constraint")
		}
		if d.PaymentIntentID != "" && b.StripePaymentIntentID != nil && *b.StripePaymentIntentID == d.PaymentIntentID {
			return nil, errors.New("duplicate key value violates unique constraint")
		}
	}
	meta, err := bookings.EncodeMeta(d.Meta)
	if err != nil {
		return nil, err
	}
	s.nextID++
	b := bookings.Booking{
		ID:            s.nextID,
		Reference:     fmt.Sprintf("ref-%d", s.nextID),
		UserID:        d.User.ID,
		SquareID:      d.Square.ID,
		Quantity:      d.Quantity,
		DateStart:     d.DateStart,
		DateEnd:       d.DateEnd,
		BillingStatus: bookings.BillingPaid,
		Meta:          meta,
	}
	if d.SessionID != "" {
		sid := d.SessionID
		b.StripeSessionID = &sid
	}
	if d.PaymentIntentID != "" {
		pid := d.PaymentIntentID
		b.StripePaymentIntentID = &pid
	}
	s.rows = append(s.rows, b)
	out := b
	return &out, nil
}

func (s *fakeBookingStore) paidCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.rows {
		if b.BillingStatus == bookings.BillingPaid {
			n++
		}
	}
	return n
}

type fakeUserDirectory struct {
	byID map[uint]*users.User
}

func (f *fakeUserDirectory) Get(id uint) (*users.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return u, nil
}

type fakeSquareDirectory struct {
	byID map[uint]*squares.Square
}

func (f *fakeSquareDirectory) Get(id uint) (*squares.Square, error) {
	sq, ok := f.byID[id]
	if !ok {
		return nil, squares.ErrNotFound
	}
	return sq, nil
}

type fakeProvider struct {
	mu       sync.Mutex
	calls    int
	sessions map[string]*CheckoutSession
	err      error
}

func (p *fakeProvider) GetCheckoutSession(id string) (*CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	s, ok := p.sessions[id]
	if !ok {
		return nil, fmt.Errorf("no such session: %s", id)
	}
	out := *s
	return &out, nil
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *fakeMailer) SendBookingConfirmation(to string, b *bookings.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return m.err
}

// rig wires a reconciler over fakes with one user and one square seeded.
type rig struct {
	kv       *fakeKV
	store    *fakeBookingStore
	provider *fakeProvider
	mailer   *fakeMailer
	ledger   *Ledger
	rec      *Reconciler
	user     *users.User
	square   *squares.Square
}

func newRig(t *testing.T) *rig {
	t.Helper()
	user := &users.User{ID: 7, Name: "Mia", Email: "mia@example.com"}
	square := &squares.Square{ID: 3, Name: "Court 1", Capacity: 4, PricePerHourCents: 2000}

	kv := newFakeKV()
	store := &fakeBookingStore{}
	provider := &fakeProvider{sessions: map[string]*CheckoutSession{}}
	mailer := &fakeMailer{}
	ledger := NewLedger(kv)

	rec := NewReconciler(
		provider,
		NewOracle(store),
		ledger,
		NewMaterializer(
			&fakeUserDirectory{byID: map[uint]*users.User{user.ID: user}},
			&fakeSquareDirectory{byID: map[uint]*squares.Square{square.ID: square}},
			store,
		),
		NewNoticeStore(kv),
		mailer,
	)

	return &rig{kv: kv, store: store, provider: provider, mailer: mailer, ledger: ledger, rec: rec, user: user, square: square}
}

// slotMetadata is a complete, valid checkout metadata set for the rig's
// seeded user and square.
func slotMetadata() map[string]string {
	return map[string]string{
		"user_id":      "7",
		"square_id":    "3",
		"ds":           "2026-09-04",
		"ts":           "18:00",
		"de":           "2026-09-04",
		"te":           "19:30",
		"quantity":     "2",
		"player-names": `["Mia","Jo"]`,
		"notes":        "bring spare balls",
	}
}

func paidSession(id, intent string) *CheckoutSession {
	return &CheckoutSession{
		ID:              id,
		PaymentIntentID: intent,
		PaymentStatus:   StatusPaid,
		Metadata:        slotMetadata(),
	}
}

func mustLocal(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation(slotLayout, value, time.Local)
	if err != nil {
		t.Fatalf("bad time literal %q: %v", value, err)
	}
	return ts
}
