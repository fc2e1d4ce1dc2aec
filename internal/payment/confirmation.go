package payment

// Channel identifies which side delivered a payment confirmation.
type Channel string

const (
	// ChannelSessionCheck is the user's browser returning from checkout and
	// the server polling the provider for the session's live status.
	ChannelSessionCheck Channel = "session_check"
	// ChannelWebhook is the provider's server-to-server push.
	ChannelWebhook Channel = "webhook"
)

// StatusPaid is the provider's payment_status value that allows materialization.
const StatusPaid = "paid"

// Confirmation is the typed view of a payment notification. It is built at
// the HTTP boundary immediately after data arrives from either channel, so
// the rest of the flow never touches provider-shaped payloads.
type Confirmation struct {
	Channel         Channel
	SessionID       string
	PaymentIntentID string
	// EventID is the webhook delivery's event id. Empty on session checks;
	// the idempotency ledger is keyed by it and only applies to webhooks.
	EventID       string
	PaymentStatus string
	Metadata      map[string]string
}

// CheckoutSession is the provider-neutral slice of a checkout session the
// reconciler needs.
type CheckoutSession struct {
	ID              string
	PaymentIntentID string
	PaymentStatus   string
	Metadata        map[string]string
}

// ConfirmationFromSession builds a Confirmation out of a retrieved session.
func ConfirmationFromSession(ch Channel, eventID string, s *CheckoutSession) Confirmation {
	meta := s.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	return Confirmation{
		Channel:         ch,
		SessionID:       s.ID,
		PaymentIntentID: s.PaymentIntentID,
		EventID:         eventID,
		PaymentStatus:   s.PaymentStatus,
		Metadata:        meta,
	}
}

// CheckoutProvider retrieves live checkout-session state from the payment
// provider. Calls are synchronous; transient failures surface as errors and
// are safe to retry.
type CheckoutProvider interface {
	GetCheckoutSession(id string) (*CheckoutSession, error)
}

// KV is the slice of the settings store the payment flow persists through.
// It is the flow's only durable storage: toggles, the processed-webhook
// ledger and pending success notices all live behind it.
type KV interface {
	Get(key string, fallback string) (string, error)
	Set(key string, value string) error
	Delete(key string) error
}
