package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-booking/internal/service"
)

type StatsProvider interface {
	Stats(ctx context.Context) (service.DashboardStats, error)
}

// DashboardHandler serves the admin statistics.
type DashboardHandler struct {
	Stats StatsProvider
}

func NewDashboardHandler(s StatsProvider) *DashboardHandler { return &DashboardHandler{Stats: s} }

// Get handles GET /v1/dashboard.
func (h *DashboardHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	stats, err := h.Stats.Stats(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, stats)
}
