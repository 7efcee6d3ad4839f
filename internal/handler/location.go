package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"attendance/internal/geo"
)

type locationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Block     string   `json:"block" binding:"required"`
	Room      string   `json:"room" binding:"required"`
}

// VerifyLocation checks whether the student is within the classroom's
// configured radius. It is a pre-check only; a pass does not mark attendance.
func (h *Handler) VerifyLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "validation", "Missing required location data.")
		return
	}
	if h.rooms == nil {
		respond(c, http.StatusServiceUnavailable, "unconfigured", "Location verification not configured.")
		return
	}

	result, err := h.rooms.Verify(geo.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude}, req.Block, req.Room)
	if err != nil {
		if errors.Is(err, geo.ErrRoomUnknown) {
			respond(c, http.StatusNotFound, "not_found", "Expected room coordinates not found.")
			return
		}
		fail(c, err)
		return
	}

	if !result.WithinRadius {
		c.JSON(http.StatusForbidden, gin.H{
			"status":          "error",
			"code":            "location_mismatch",
			"message":         "Location mismatch. You are not in the correct classroom.",
			"distance_meters": result.DistanceMeters,
			"radius_meters":   result.RadiusMeters,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":          "success",
		"message":         "Location verified successfully!",
		"distance_meters": result.DistanceMeters,
		"radius_meters":   result.RadiusMeters,
	})
}
