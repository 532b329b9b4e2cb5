package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
	appErrors "github.com/one-zero-eight/schedule-builder-backend/pkg/errors"
	"github.com/one-zero-eight/schedule-builder-backend/pkg/response"
)

type bookingGateway interface {
	GetRooms(ctx context.Context) ([]models.Room, error)
	GetAllBookings(ctx context.Context, start, end time.Time) ([]models.Booking, error)
}

// BookingHandler exposes cached passthrough to the external booking service.
type BookingHandler struct {
	bookings bookingGateway
}

// NewBookingHandler builds the handler.
func NewBookingHandler(bookings bookingGateway) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Rooms godoc
// @Summary List rooms known to the booking service
// @Tags Bookings
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /rooms [get]
func (h *BookingHandler) Rooms(c *gin.Context) {
	rooms, err := h.bookings.GetRooms(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms)
}

// Bookings godoc
// @Summary List bookings within a window
// @Tags Bookings
// @Produce json
// @Param start query string false "Window start (RFC 3339), defaults to now"
// @Param end query string false "Window end (RFC 3339), defaults to start + 7 days"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /bookings [get]
func (h *BookingHandler) Bookings(c *gin.Context) {
	start := time.Now().UTC()
	if raw := c.Query("start"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "start must be RFC 3339"))
			return
		}
		start = parsed
	}
	end := start.AddDate(0, 0, 7)
	if raw := c.Query("end"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "end must be RFC 3339"))
			return
		}
		end = parsed
	}
	if !start.Before(end) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "start must precede end"))
		return
	}

	bookings, err := h.bookings.GetAllBookings(c.Request.Context(), start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings)
}
