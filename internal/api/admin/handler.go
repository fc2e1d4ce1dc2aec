package adminapi

import (
	"net/http"

	"booking-app/database"
	"booking-app/internal/domain/bookings"
	"booking-app/internal/domain/users"
	"booking-app/internal/payment"
	"booking-app/internal/settings"

	"github.com/gin-gonic/gin"
)

// AdminDashboard returns headline counts for the admin UI.
func AdminDashboard(c *gin.Context) {
	var userCount, bookingCount, paidCount int64
	database.DB.Model(&users.User{}).Count(&userCount)
	database.DB.Model(&bookings.Booking{}).Count(&bookingCount)
	database.DB.Model(&bookings.Booking{}).Where("billing_status = ?", bookings.BillingPaid).Count(&paidCount)

	cfg := settings.NewStore(database.DB)

	c.JSON(http.StatusOK, gin.H{
		"users":         userCount,
		"bookings":      bookingCount,
		"paid_bookings": paidCount,
		"payment_toggles": gin.H{
			"use_webhook":       cfg.GetBool(payment.SettingUseWebhook, true),
			"use_session_check": cfg.GetBool(payment.SettingUseSessionCheck, true),
			"include_fees":      cfg.GetBool(payment.SettingIncludeFees, false),
		},
	})
}

// ListAllBookings returns every booking with its bills.
func ListAllBookings(c *gin.Context) {
	var list []bookings.Booking
	if err := database.DB.
		Preload("Bills").
		Preload("User").
		Preload("Square").
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load bookings"})
		return
	}
	c.JSON(http.StatusOK, list)
}

type paymentSettingsRequest struct {
	UseWebhook      *bool `json:"use_webhook"`
	UseSessionCheck *bool `json:"use_session_check"`
	IncludeFees     *bool `json:"include_fees"`
}

// UpdatePaymentSettings flips the confirmation-channel toggles. Requests
// already in flight keep the toggles they resolved at entry.
func UpdatePaymentSettings(c *gin.Context) {
	var req paymentSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	cfg := settings.NewStore(database.DB)
	set := func(key string, v *bool) error {
		if v == nil {
			return nil
		}
		if *v {
			return cfg.Set(key, "true")
		}
		return cfg.Set(key, "false")
	}

	if err := set(payment.SettingUseWebhook, req.UseWebhook); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store setting"})
		return
	}
	if err := set(payment.SettingUseSessionCheck, req.UseSessionCheck); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store setting"})
		return
	}
	if err := set(payment.SettingIncludeFees, req.IncludeFees); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store setting"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Settings updated"})
}
