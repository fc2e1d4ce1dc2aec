package checkout

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"booking-app/config"
	"booking-app/database"
	"booking-app/internal/booking"
	"booking-app/internal/domain/bookings"
	"booking-app/internal/domain/squares"
	"booking-app/internal/domain/users"
	stripeinfra "booking-app/internal/infra/stripe"
	"booking-app/internal/payment"
	"booking-app/internal/settings"

	"github.com/gin-gonic/gin"
)

const slotLayout = "2006-01-02 15:04"

type productSelection struct {
	ProductID uint `json:"product_id" binding:"required"`
	Amount    int  `json:"amount" binding:"required,min=1"`
}

type checkoutRequest struct {
	SquareID    uint               `json:"square_id" binding:"required"`
	DateStart   string             `json:"ds" binding:"required"`
	TimeStart   string             `json:"ts" binding:"required"`
	DateEnd     string             `json:"de" binding:"required"`
	TimeEnd     string             `json:"te" binding:"required"`
	Quantity    int                `json:"quantity" binding:"required,min=1"`
	Products    []productSelection `json:"products"`
	PlayerNames []string           `json:"player_names"`
	Notes       string             `json:"notes"`
}

// CreateBookingCheckout validates the requested slot and sends the user to
// Stripe. No booking row is written here; the booking only materializes
// once a confirmation arrives, carrying this session's metadata back.
func CreateBookingCheckout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if config.STRIPE_SECRET_KEY == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Online payment is not available. Please contact the administrator."})
		return
	}

	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}
	var user users.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	if !user.IsVerified {
		c.JSON(http.StatusForbidden, gin.H{"error": "Please verify your email first"})
		return
	}

	var square squares.Square
	if err := database.DB.First(&square, req.SquareID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Square not found"})
		return
	}

	start, err := time.ParseInLocation(slotLayout, req.DateStart+" "+req.TimeStart, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date/time"})
		return
	}
	end, err := time.ParseInLocation(slotLayout, req.DateEnd+" "+req.TimeEnd, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end date/time"})
		return
	}
	if !end.After(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Slot end must be after its start"})
		return
	}

	store := booking.NewStore(database.DB)
	bookable, err := store.IsBookable(&square, start, end, req.Quantity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check availability"})
		return
	}
	if !bookable {
		c.JSON(http.StatusConflict, gin.H{"error": "This square is already occupied"})
		return
	}

	lines := []stripeinfra.BillLine{billLineOf(booking.CourtBill(&square, start, end, req.Quantity))}
	for _, sel := range req.Products {
		var product squares.Product
		if err := database.DB.First(&product, sel.ProductID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown product"})
			return
		}
		if !amountAllowed(&product, sel.Amount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Amount %d is not offered for %s", sel.Amount, product.Name)})
			return
		}
		lines = append(lines, billLineOf(booking.ProductBill(&product, sel.Amount)))
	}

	cfg := settings.NewStore(database.DB)
	if cfg.GetBool(payment.SettingIncludeFees, false) {
		var total int64
		for _, l := range lines {
			total += l.PriceCents
		}
		lines = append(lines, stripeinfra.FeeLine(stripeinfra.CalculateFees(total, false)))
	}

	metadata := map[string]string{
		"user_id":   fmt.Sprint(user.ID),
		"square_id": fmt.Sprint(square.ID),
		"ds":        start.Format("2006-01-02"),
		"de":        end.Format("2006-01-02"),
		"ts":        start.Format("15:04"),
		"te":        end.Format("15:04"),
		"quantity":  fmt.Sprint(req.Quantity),
	}
	if len(req.PlayerNames) > 0 {
		names, err := json.Marshal(req.PlayerNames)
		if err == nil {
			metadata["player-names"] = string(names)
		}
	}
	if square.AllowNotes && strings.TrimSpace(req.Notes) != "" {
		metadata["notes"] = req.Notes
	}

	sess, err := stripeinfra.NewClient().CreateCheckoutSession(stripeinfra.CheckoutRequest{
		CustomerEmail: user.Email,
		Lines:         lines,
		Metadata:      metadata,
		Currency:      config.STRIPE_CURRENCY,
		SuccessURL:    config.APP_URL + "/payment/success",
		CancelURL:     config.APP_URL + "/payment/cancel",
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment setup failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": sess.URL, "session_id": sess.ID})
}

type feeQuoteRequest struct {
	AmountCents   int64 `json:"amount_cents" binding:"required,min=1"`
	International bool  `json:"international"`
}

// QuoteFees returns the processing-fee breakdown for display before checkout.
func QuoteFees(c *gin.Context) {
	var req feeQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}

	fees := stripeinfra.CalculateFees(req.AmountCents, req.International)
	cardType := "Domestic"
	if req.International {
		cardType = "International"
	}

	c.JSON(http.StatusOK, gin.H{
		"fee_cents":             fees.TotalFeeCents,
		"fee_percentage":        fees.FeePercent,
		"total_with_fees_cents": fees.TotalWithFeesCents,
		"fee_breakdown": gin.H{
			"percentage_cents": fees.PercentageFeeCents,
			"fixed_cents":      fees.FixedFeeCents,
		},
		"card_type": cardType,
	})
}

func billLineOf(b bookings.Bill) stripeinfra.BillLine {
	return stripeinfra.BillLine{
		Description: b.Description,
		Quantity:    b.Quantity,
		PriceCents:  b.PriceCents,
		Rate:        b.Rate,
		Gross:       b.Gross,
	}
}

func amountAllowed(p *squares.Product, amount int) bool {
	for _, opt := range strings.Split(p.Options, ",") {
		if strings.TrimSpace(opt) == fmt.Sprint(amount) {
			return true
		}
	}
	return false
}
