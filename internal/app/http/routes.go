package routes

import (
	adminapi "booking-app/internal/api/admin"
	authapi "booking-app/internal/api/auth"
	bookingsapi "booking-app/internal/api/bookings"
	checkoutapi "booking-app/internal/api/checkout"
	paymentapi "booking-app/internal/api/payment"
	squaresapi "booking-app/internal/api/squares"
	stripewebhooks "booking-app/internal/api/stripewebhook"
	usersapi "booking-app/internal/api/users"
	"booking-app/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Raw body needed for signature verification, keep it out of the
	// sanitized group
	r.POST("/webhook", stripewebhooks.StripeWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/squares", squaresapi.ListSquares)
	r.GET("/squares/:id/availability", squaresapi.SquareAvailability)

	// Stripe redirects the browser here after checkout
	r.GET("/payment/success", middleware.OptionalAuth(), paymentapi.PaymentSuccess)
	r.GET("/payment/cancel", paymentapi.PaymentCancel)

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())

	public.POST("/register", authapi.Register)
	public.POST("/login", authapi.Login)
	public.GET("/verify", usersapi.VerifyEmail)
	public.POST("/resend-verification", authapi.ResendVerification)
	public.POST("/request-password-reset", authapi.RequestPasswordReset)
	public.POST("/reset-password", authapi.ResetPassword)

	public.GET("/auth/google", authapi.GoogleStart)
	public.GET("/auth/google/callback", authapi.GoogleCallback)

	// Authenticated. Sanitized too: player names and notes enter through
	// the checkout route and travel into Stripe metadata.
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(), middleware.SanitizeAndCleanInputMiddleware())
	auth.GET("/me", usersapi.GetCurrentUser)
	auth.POST("/change-password", authapi.ChangePassword)

	auth.GET("/bookings", bookingsapi.ListMyBookings)
	auth.POST("/bookings/:id/cancel", bookingsapi.CancelBooking)
	auth.POST("/bookings/checkout", checkoutapi.CreateBookingCheckout)
	auth.POST("/fees/quote", checkoutapi.QuoteFees)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole("admin"))
	admin.GET("/dashboard", adminapi.AdminDashboard)
	admin.GET("/bookings", adminapi.ListAllBookings)
	admin.PUT("/settings/payment", adminapi.UpdatePaymentSettings)
}
