package stripe

import (
	"fmt"
	"math"

	stripego "github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
)

// BillLine is one position of a checkout: either the square slot itself
// (quantity 1, price is the slot total) or a product (quantity > 1, price is
// the position total and gets divided into a unit price for Stripe).
type BillLine struct {
	Description string
	Quantity    int
	PriceCents  int64
	Rate        float64
	Gross       bool
}

// BuildLineItems converts bill lines into Stripe line items. Gross prices
// already include tax and pass through unchanged; net prices get the tax
// rate applied here, since the amount sent to Stripe is what gets charged.
func BuildLineItems(lines []BillLine, currency string) []*stripego.CheckoutSessionLineItemParams {
	items := make([]*stripego.CheckoutSessionLineItemParams, 0, len(lines))
	for _, l := range lines {
		name := l.Description
		quantity := int64(1)
		amount := l.PriceCents

		if l.Quantity > 1 {
			// Product position: Stripe wants unit price x quantity.
			name = l.Description + " (per item)"
			quantity = int64(l.Quantity)
			amount = int64(math.Round(float64(l.PriceCents) / float64(l.Quantity)))
		}

		if !l.Gross && l.Rate > 0 {
			amount = int64(math.Round(float64(amount) * (1 + l.Rate/100)))
		}

		items = append(items, &stripego.CheckoutSessionLineItemParams{
			PriceData: &stripego.CheckoutSessionLineItemPriceDataParams{
				Currency: stripego.String(currency),
				ProductData: &stripego.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripego.String(name),
				},
				UnitAmount: stripego.Int64(amount),
			},
			Quantity: stripego.Int64(quantity),
		})
	}
	return items
}

// CheckoutRequest describes the session to create for a booking attempt.
// Metadata must carry everything the materializer later needs; the webhook
// payload is the only place it comes back from.
type CheckoutRequest struct {
	CustomerEmail string
	Lines         []BillLine
	Metadata      map[string]string
	Currency      string
	SuccessURL    string
	CancelURL     string
}

// CreateCheckoutSession creates a payment-mode checkout session. The success
// and cancel URLs get the session id appended so the return visit can run
// the session check.
func (c *Client) CreateCheckoutSession(req CheckoutRequest) (*stripego.CheckoutSession, error) {
	params := &stripego.CheckoutSessionParams{
		Mode:               stripego.String(string(stripego.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripego.StringSlice([]string{"card"}),
		LineItems:          BuildLineItems(req.Lines, req.Currency),
		SuccessURL:         stripego.String(req.SuccessURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:          stripego.String(req.CancelURL + "?session_id={CHECKOUT_SESSION_ID}"),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripego.String(req.CustomerEmail)
	}
	params.Metadata = req.Metadata

	s, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return s, nil
}
