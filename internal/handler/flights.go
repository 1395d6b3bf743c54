package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-booking/internal/service"
)

// FlightSearcher lists journeys for the search pages.
type FlightSearcher interface {
	Search(ctx context.Context, req service.SearchRequest) (service.SearchResult, error)
	Week(ctx context.Context, req service.WeekRequest) ([]service.FlightOption, error)
}

type FlightHandler struct {
	Search FlightSearcher
}

func NewFlightHandler(s FlightSearcher) *FlightHandler { return &FlightHandler{Search: s} }

// SearchFlights handles POST /v1/flights/search (JSON body) and
// GET /v1/flights/search (query string).
func (h *FlightHandler) SearchFlights(c echo.Context) error {
	var req service.SearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	res, err := h.Search.Search(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing required fields"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch flights", "error": err.Error()})
	}
	return c.JSON(http.StatusOK, res)
}

// WeekFlights handles POST /v1/flights/week: journeys of a route on the
// outbound and return dates.
func (h *FlightHandler) WeekFlights(c echo.Context) error {
	var req service.WeekRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	flights, err := h.Search.Week(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing required search parameters."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch flights", "error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"flights": flights})
}
