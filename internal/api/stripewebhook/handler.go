package stripewebhooks

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"booking-app/config"
	"booking-app/database"
	"booking-app/internal/booking"
	stripeinfra "booking-app/internal/infra/stripe"
	"booking-app/internal/mail"
	"booking-app/internal/payment"
	"booking-app/internal/settings"

	"github.com/gin-gonic/gin"
	stripego "github.com/stripe/stripe-go/v75"
)

// StripeWebhook is the provider's push channel. It must answer promptly:
// 200 for processed, duplicate and deliberately ignored events, 400 for
// signature or payload failures, 500 when processing failed and a retry
// should happen.
func StripeWebhook(c *gin.Context) {
	if config.STRIPE_SECRET_KEY == "" || config.STRIPE_WEBHOOK_SECRET == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stripe is not configured"})
		return
	}

	payload, err := readStripeBody(c, 65536)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	cfg := settings.NewStore(database.DB)
	if !cfg.GetBool(payment.SettingUseWebhook, true) {
		log.Println("webhook: webhook handling is disabled, acknowledging without processing")
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	event, err := stripeinfra.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		log.Println("webhook: signature verification failed:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var session stripego.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse session"})
			return
		}

		conf := payment.ConfirmationFromSession(payment.ChannelWebhook, event.ID, stripeinfra.SessionView(&session))

		outcome, err := newReconciler(cfg).ConfirmFromWebhook(conf)
		if err != nil {
			// Ledger deliberately left unmarked; Stripe's retry re-attempts.
			log.Printf("webhook: processing event %s failed: %v", event.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		switch outcome {
		case payment.WebhookMaterialized:
			c.JSON(http.StatusOK, gin.H{"status": "received"})
		case payment.WebhookDuplicate:
			c.JSON(http.StatusOK, gin.H{"status": "duplicate"})
		default:
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		}
		return

	default:
		// Acknowledge unknown events to avoid retries.
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
}

func newReconciler(cfg *settings.Store) *payment.Reconciler {
	store := booking.NewStore(database.DB)
	return payment.NewReconciler(
		stripeinfra.NewClient(),
		payment.NewOracle(store),
		payment.NewLedger(cfg),
		payment.NewMaterializer(booking.NewUserDirectory(database.DB), booking.NewSquareDirectory(database.DB), store),
		payment.NewNoticeStore(cfg),
		mail.SMTPMailer{},
	)
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
