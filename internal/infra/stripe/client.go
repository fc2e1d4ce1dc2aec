package stripe

import (
	"fmt"

	"booking-app/config"
	"booking-app/internal/payment"

	stripego "github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
	"github.com/stripe/stripe-go/v75/webhook"
)

// Client wraps the Stripe SDK behind the payment flow's provider interface.
type Client struct{}

func NewClient() *Client {
	stripego.Key = config.STRIPE_SECRET_KEY
	return &Client{}
}

// GetCheckoutSession retrieves the session's live state. No explicit timeout
// is configured; the SDK's default client applies.
func (c *Client) GetCheckoutSession(id string) (*payment.CheckoutSession, error) {
	s, err := checkoutsession.Get(id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch checkout session %s: %w", id, err)
	}
	return SessionView(s), nil
}

// SessionView converts an SDK session into the neutral shape the reconciler
// consumes. Both channels produce the same shape through this one function,
// regardless of whether the session came from a webhook payload or an API
// retrieval.
func SessionView(s *stripego.CheckoutSession) *payment.CheckoutSession {
	out := &payment.CheckoutSession{
		ID:            s.ID,
		PaymentStatus: string(s.PaymentStatus),
		Metadata:      s.Metadata,
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}
	return out
}

// VerifyWebhook checks the delivery's signature and parses the event.
func VerifyWebhook(payload []byte, signature string) (stripego.Event, error) {
	return webhook.ConstructEventWithOptions(
		payload,
		signature,
		config.STRIPE_WEBHOOK_SECRET,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
}
