package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-booking/internal/handler"
	"github.com/iliyamo/flight-booking/internal/middleware"
	"github.com/iliyamo/flight-booking/internal/model"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1.  All routes
// require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, d *handler.DashboardHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	g.GET("/dashboard", d.Get)

	// ---- Catalogue ----
	g.POST("/admin/flights", a.CreateFlight)
	g.POST("/admin/journeys", a.CreateJourney)
	g.POST("/admin/fare-rules", a.CreateFareRule)
}
