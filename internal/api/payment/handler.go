package paymentapi

import (
	"log"
	"net/http"

	"booking-app/database"
	"booking-app/internal/booking"
	stripeinfra "booking-app/internal/infra/stripe"
	"booking-app/internal/mail"
	"booking-app/internal/payment"
	"booking-app/internal/settings"

	"github.com/gin-gonic/gin"
)

const pendingMessage = "Payment received! Your booking will be confirmed shortly."

// PaymentSuccess is the browser's return from checkout, the pull-based
// confirmation channel. A pending notice left by the webhook wins over
// everything else; otherwise the session check runs under the toggle
// configuration resolved once for this request.
func PaymentSuccess(c *gin.Context) {
	cfg := settings.NewStore(database.DB)
	notices := payment.NewNoticeStore(cfg)

	if userID := c.GetUint("user_id"); userID != 0 {
		msg, err := notices.ConsumePaymentSuccess(userID)
		if err != nil {
			log.Printf("success: reading pending notice for user %d failed: %v", userID, err)
		}
		if msg != "" {
			c.JSON(http.StatusOK, gin.H{"status": "confirmed", "message": msg})
			return
		}
	}

	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment session."})
		return
	}

	toggles := payment.ResolveToggles(cfg)

	status, err := newReconciler(cfg).ConfirmFromSessionCheck(sessionID, toggles)
	if err != nil {
		log.Printf("success: verifying session %s failed: %v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error verifying payment"})
		return
	}

	switch status {
	case payment.SessionCheckConfirmed, payment.SessionCheckAlreadyConfirmed:
		c.JSON(http.StatusOK, gin.H{"status": "confirmed", "message": payment.SuccessMessage})
	case payment.SessionCheckPending:
		c.JSON(http.StatusAccepted, gin.H{"status": "pending", "message": pendingMessage})
	default:
		c.JSON(http.StatusPaymentRequired, gin.H{"status": "failed", "message": "Payment was not completed successfully."})
	}
}

// PaymentCancel acknowledges an aborted checkout. Nothing to undo: no
// booking exists until a payment is confirmed.
func PaymentCancel(c *gin.Context) {
	log.Println("payment cancelled, session:", c.Query("session_id"))
	c.JSON(http.StatusOK, gin.H{"status": "cancelled", "message": "Payment was cancelled. You can try again later."})
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
