package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-booking/internal/middleware"
	"github.com/iliyamo/flight-booking/internal/model"
	"github.com/iliyamo/flight-booking/internal/payment"
	"github.com/iliyamo/flight-booking/internal/service"
	"github.com/iliyamo/flight-booking/internal/validation"
)

const maxBodyBytes = 1 << 20

// BookingManager is the booking use-case surface.
type BookingManager interface {
	Create(ctx context.Context, req service.CreateBookingRequest) (model.Booking, []model.Passenger, error)
	ListByEmail(ctx context.Context, email string) ([]service.BookingView, error)
	ListByUser(ctx context.Context, userID string) ([]service.BookingView, error)
	Reschedule(ctx context.Context, req service.RescheduleRequest) (model.Booking, error)
}

// BookingHandler serves booking creation, listing and rescheduling.
type BookingHandler struct {
	Bookings BookingManager
	Schema   *validation.Validator
}

func NewBookingHandler(b BookingManager, schema *validation.Validator) *BookingHandler {
	return &BookingHandler{Bookings: b, Schema: schema}
}

// Create handles POST /v1/bookings.  The raw body is checked against the
// booking schema first; on failure the response lists which required
// fields were received.
func (h *BookingHandler) Create(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if errs := h.Schema.Validate(body); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message":  "Missing required fields.",
			"received": validation.BookingReceived(body),
			"errors":   errs,
		})
	}
	var req service.CreateBookingRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	booking, _, err := h.Bookings.Create(ctx, req)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"message": "Booking successful", "booking_id": booking.ID})
	case errors.Is(err, service.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing required fields."})
	case errors.Is(err, payment.ErrInvalidSignature):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Payment verification failed"})
	case errors.Is(err, service.ErrTooManyPassengers):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Too many passengers for one booking"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to create booking", "error": err.Error()})
}

// ListByEmail handles GET /v1/bookings?email=...
func (h *BookingHandler) ListByEmail(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	bookings, err := h.Bookings.ListByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch bookings", "error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// Mine handles GET /v1/my-bookings for the authenticated user.
func (h *BookingHandler) Mine(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	bookings, err := h.Bookings.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch bookings", "error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// Reschedule handles PATCH /v1/bookings/reschedule.
func (h *BookingHandler) Reschedule(c echo.Context) error {
	var req service.RescheduleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	updated, err := h.Bookings.Reschedule(ctx, req)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"message": "Booking date updated successfully", "updatedBooking": updated})
	case errors.Is(err, service.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing required fields"})
	case errors.Is(err, service.ErrPassengerNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Passenger not found for the provided name"})
	case errors.Is(err, service.ErrBookingMismatch):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Booking not found for given passenger and flight"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to update booking date", "error": err.Error()})
}
