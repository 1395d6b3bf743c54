package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/flight-booking/internal/handler"
	"github.com/iliyamo/flight-booking/internal/middleware"
)

// RegisterRoutes registers routes that do not belong to any API group.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the token endpoints under /v1/auth and the
// protected /v1/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)              // rotates the refresh token
	g.POST("/refresh-access", a.RefreshAccess) // keeps the refresh token
	// logout needs no access token: a refresh token in the body is enough
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// Public groups the handlers served without authentication.
type Public struct {
	Flights  *handler.FlightHandler
	Fares    *handler.FareHandler
	Bookings *handler.BookingHandler
	Payments *handler.PaymentHandler
	Updates  *handler.UpdatesHandler

	// Checkout, when set, wraps booking creation and payment orders.
	Checkout echo.MiddlewareFunc
}

// RegisterPublic registers the search, fare, booking, payment and live
// update endpoints.  cache wraps the GET search; pass nil to disable it.
func RegisterPublic(e *echo.Echo, p Public, cache echo.MiddlewareFunc) {
	v1 := e.Group("/v1")

	var searchMW, checkoutMW []echo.MiddlewareFunc
	if cache != nil {
		searchMW = append(searchMW, cache)
	}
	if p.Checkout != nil {
		checkoutMW = append(checkoutMW, p.Checkout)
	}
	v1.POST("/flights/search", p.Flights.SearchFlights)
	v1.GET("/flights/search", p.Flights.SearchFlights, searchMW...)
	v1.POST("/flights/week", p.Flights.WeekFlights)

	v1.POST("/fares/quote", p.Fares.Quote)
	v1.POST("/fares/flight", p.Fares.ForFlight)
	v1.POST("/fares/trip", p.Fares.QuoteTrip)

	v1.POST("/bookings", p.Bookings.Create, checkoutMW...)
	v1.GET("/bookings", p.Bookings.ListByEmail)
	v1.PATCH("/bookings/reschedule", p.Bookings.Reschedule)

	v1.GET("/payments/config", p.Payments.Config)
	v1.POST("/payments/orders", p.Payments.CreateOrder, checkoutMW...)
	v1.POST("/payments/verify", p.Payments.Verify)

	// EventSource clients connect cross-origin from the web app
	v1.GET("/flight-updates", p.Updates.Subscribe, echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet},
	}))
}
