package payment

import (
	"fmt"
	"log"

	"booking-app/internal/domain/bookings"
)

// Mailer sends the booking-confirmation mail after a webhook
// materialization. Optional; mail failures are logged, never fatal.
type Mailer interface {
	SendBookingConfirmation(to string, b *bookings.Booking) error
}

// WebhookOutcome is the terminal state of one webhook delivery.
type WebhookOutcome int

const (
	// WebhookIgnored: event type or payment status did not call for a
	// booking; acknowledged without side effects.
	WebhookIgnored WebhookOutcome = iota
	// WebhookDuplicate: this payment already produced a booking.
	WebhookDuplicate
	// WebhookMaterialized: a booking was created by this delivery.
	WebhookMaterialized
)

// SessionCheckStatus is the result of the browser-redirect confirmation path.
type SessionCheckStatus int

const (
	// SessionCheckPending: confirmation deferred to the webhook channel.
	SessionCheckPending SessionCheckStatus = iota
	// SessionCheckConfirmed: payment verified and booking created.
	SessionCheckConfirmed
	// SessionCheckAlreadyConfirmed: a booking for this payment already
	// exists (usually the webhook won the race). Reported as success.
	SessionCheckAlreadyConfirmed
	// SessionCheckFailed: the provider reports the payment as not
	// completed and no webhook will rescue it.
	SessionCheckFailed
)

// Reconciler folds the two racing confirmation channels into a single
// booking-creation decision. Each call is an independent, stateless
// invocation: no lock serializes concurrent confirmations for the same
// session. Safety under arbitrary interleavings comes from the ledger
// (webhook channel), the oracle (both channels) and the store's unique
// stripe-ref index underneath them.
type Reconciler struct {
	provider     CheckoutProvider
	oracle       *Oracle
	ledger       *Ledger
	materializer *Materializer
	notices      *NoticeStore
	mailer       Mailer
}

func NewReconciler(provider CheckoutProvider, oracle *Oracle, ledger *Ledger, materializer *Materializer, notices *NoticeStore, mailer Mailer) *Reconciler {
	return &Reconciler{
		provider:     provider,
		oracle:       oracle,
		ledger:       ledger,
		materializer: materializer,
		notices:      notices,
		mailer:       mailer,
	}
}

// ConfirmFromWebhook handles one verified checkout-completed delivery.
//
// An error return means the booking was NOT created and the ledger was NOT
// marked, so the provider's retry can re-attempt safely; the oracle check
// prevents duplication even then.
func (r *Reconciler) ConfirmFromWebhook(conf Confirmation) (WebhookOutcome, error) {
	if conf.PaymentStatus != StatusPaid {
		log.Printf("webhook: payment status is %q for session %s, ignoring", conf.PaymentStatus, conf.SessionID)
		return WebhookIgnored, nil
	}

	if conf.EventID != "" {
		processed, err := r.ledger.IsProcessed(conf.EventID)
		if err != nil {
			// Best-effort check only; the oracle below is authoritative.
			log.Printf("webhook: ledger read failed for %s: %v", conf.EventID, err)
		}
		if processed {
			log.Printf("webhook: event %s already processed", conf.EventID)
			return WebhookDuplicate, nil
		}
	}

	existing, err := r.oracle.FindPaidBooking(conf.SessionID, conf.PaymentIntentID)
	if err != nil {
		return 0, fmt.Errorf("duplicate check failed: %w", err)
	}
	if existing != nil {
		log.Printf("webhook: booking %d already exists for session %s", existing.ID, conf.SessionID)
		r.markProcessed(conf.EventID)
		return WebhookDuplicate, nil
	}

	mat, err := r.materializer.Materialize(conf)
	if err != nil {
		return 0, err
	}
	r.markProcessed(conf.EventID)

	if err := r.notices.StorePaymentSuccess(mat.User.ID, SuccessMessage); err != nil {
		log.Printf("webhook: failed to store success notice for user %d: %v", mat.User.ID, err)
	}
	if r.mailer != nil {
		if err := r.mailer.SendBookingConfirmation(mat.User.Email, mat.Booking); err != nil {
			log.Printf("webhook: confirmation mail to %s failed: %v", mat.User.Email, err)
		}
	}
	log.Printf("webhook: booking %d created for session %s", mat.Booking.ID, conf.SessionID)
	return WebhookMaterialized, nil
}

// ConfirmFromSessionCheck handles the user's return from checkout. The
// toggles are resolved once by the caller and never re-read here. The ledger
// is not involved: it is keyed by webhook event ids, which this channel
// does not have.
func (r *Reconciler) ConfirmFromSessionCheck(sessionID string, t Toggles) (SessionCheckStatus, error) {
	t = t.Normalized()

	// Webhook-only mode: the webhook will do the work, polling the provider
	// would be a useless round trip.
	if t.Webhook && !t.SessionCheck {
		return SessionCheckPending, nil
	}

	sess, err := r.provider.GetCheckoutSession(sessionID)
	if err != nil {
		return 0, fmt.Errorf("could not verify payment: %w", err)
	}

	if sess.PaymentStatus != StatusPaid {
		if t.Webhook {
			// Hybrid mode: provider-side status can lag behind the actual
			// charge; let the webhook confirm instead of rejecting early.
			log.Printf("session check: session %s status %q, deferring to webhook", sessionID, sess.PaymentStatus)
			return SessionCheckPending, nil
		}
		return SessionCheckFailed, nil
	}

	conf := ConfirmationFromSession(ChannelSessionCheck, "", sess)

	existing, err := r.oracle.FindPaidBooking(conf.SessionID, conf.PaymentIntentID)
	if err != nil {
		return 0, fmt.Errorf("duplicate check failed: %w", err)
	}
	if existing != nil {
		log.Printf("session check: booking %d already exists for session %s", existing.ID, sessionID)
		return SessionCheckAlreadyConfirmed, nil
	}

	mat, err := r.materializer.Materialize(conf)
	if err != nil {
		return 0, err
	}
	log.Printf("session check: booking %d created for session %s", mat.Booking.ID, sessionID)
	return SessionCheckConfirmed, nil
}

func (r *Reconciler) markProcessed(eventID string) {
	if eventID == "" {
		return
	}
	if err := r.ledger.MarkProcessed(eventID); err != nil {
		log.Printf("webhook: failed to mark event %s processed: %v", eventID, err)
	}
}
