package bookingsapi

import (
	"net/http"
	"strconv"

	"booking-app/database"
	"booking-app/internal/booking"
	"booking-app/internal/domain/bookings"

	"github.com/gin-gonic/gin"
)

// ListMyBookings returns the authenticated user's bookings, newest slot first.
func ListMyBookings(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var list []bookings.Booking
	if err := database.DB.
		Preload("Bills").
		Preload("Square").
		Where("user_id = ?", userID).
		Order("date_start DESC").
		Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load bookings"})
		return
	}

	c.JSON(http.StatusOK, list)
}

// CancelBooking cancels one of the user's own future bookings.
func CancelBooking(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "This booking does not exist"})
		return
	}

	var b bookings.Booking
	if err := database.DB.First(&b, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "This booking does not exist"})
		return
	}
	if b.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	if err := booking.NewStore(database.DB).Cancel(&b); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "This booking cannot be cancelled anymore online."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Your booking has been cancelled."})
}
