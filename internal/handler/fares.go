package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-booking/internal/model"
	"github.com/iliyamo/flight-booking/internal/service"
)

// FareQuoter answers fare lookups.
type FareQuoter interface {
	Quote(ctx context.Context, req service.QuoteRequest) (float64, error)
	ForFlight(ctx context.Context, flightNumber, travelClass string) (model.FareMap, error)
	QuoteTrip(ctx context.Context, req service.TripQuoteRequest) (service.TripQuote, error)
}

type FareHandler struct {
	Fares FareQuoter
}

func NewFareHandler(f FareQuoter) *FareHandler { return &FareHandler{Fares: f} }

// Quote handles POST /v1/fares/quote.  A route without a rule for the
// class is not an error: the body carries a message instead of a fare.
func (h *FareHandler) Quote(c echo.Context) error {
	var req service.QuoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	fare, err := h.Fares.Quote(ctx, req)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"fare": fare})
	case errors.Is(err, service.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing required fields"})
	case errors.Is(err, service.ErrFareNotFound):
		return c.JSON(http.StatusOK, echo.Map{"message": "Class does not exist on that flight"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch fare", "error": err.Error()})
}

type flightFareReq struct {
	FlightNumber string `json:"flight_number"`
	TravelClass  string `json:"travel_class"`
}

// ForFlight handles POST /v1/fares/flight: the infant, child and adult
// fares of a flight's route.
func (h *FareHandler) ForFlight(c echo.Context) error {
	var req flightFareReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	fares, err := h.Fares.ForFlight(ctx, req.FlightNumber, req.TravelClass)
	if err != nil {
		return fareError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"fares": fares})
}

// QuoteTrip handles POST /v1/fares/trip.
func (h *FareHandler) QuoteTrip(c echo.Context) error {
	var req service.TripQuoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	q, err := h.Fares.QuoteTrip(ctx, req)
	if err != nil {
		return fareError(c, err)
	}
	return c.JSON(http.StatusOK, q)
}

// fareError maps fare service errors to responses shared by the fare and
// payment endpoints.
func fareError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing required fields"})
	case errors.Is(err, service.ErrZeroTotal):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Total fare is zero"})
	case errors.Is(err, service.ErrFlightNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Flight not found"})
	case errors.Is(err, service.ErrJourneyNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Journey not found for this flight"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch fares", "error": err.Error()})
}
