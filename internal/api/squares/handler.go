package squaresapi

import (
	"net/http"
	"strconv"
	"time"

	"booking-app/database"
	"booking-app/internal/booking"
	"booking-app/internal/domain/squares"

	"github.com/gin-gonic/gin"
)

const slotLayout = "2006-01-02 15:04"

// ListSquares returns every bookable square.
func ListSquares(c *gin.Context) {
	var list []squares.Square
	if err := database.DB.Order("name").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load squares"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// SquareAvailability reports whether a slot still has room for the requested
// quantity. Query params: ds, ts, de, te, q.
func SquareAvailability(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid square id"})
		return
	}

	var square squares.Square
	if err := database.DB.First(&square, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Square not found"})
		return
	}

	start, err := time.ParseInLocation(slotLayout, c.Query("ds")+" "+c.Query("ts"), time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date/time"})
		return
	}
	end, err := time.ParseInLocation(slotLayout, c.Query("de")+" "+c.Query("te"), time.Local)
	if err != nil || !end.After(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end date/time"})
		return
	}

	quantity := 1
	if q := c.Query("q"); q != "" {
		quantity, err = strconv.Atoi(q)
		if err != nil || quantity < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quantity"})
			return
		}
	}

	bookable, err := booking.NewStore(database.DB).IsBookable(&square, start, end, quantity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check availability"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookable": bookable, "capacity": square.Capacity})
}
