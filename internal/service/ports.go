package service

import (
	"context"
	"time"

	"github.com/iliyamo/flight-booking/internal/model"
	"github.com/iliyamo/flight-booking/internal/queue"
	"github.com/iliyamo/flight-booking/internal/repository"
)

// FlightReader is the flight and journey lookup surface used by search,
// fares and bookings.
type FlightReader interface {
	GetByNumber(ctx context.Context, number string) (model.Flight, error)
	GetByID(ctx context.Context, id string) (model.Flight, error)
	ListJourneys(ctx context.Context, f repository.JourneyFilter) ([]model.Journey, error)
	FirstJourneyForFlight(ctx context.Context, flightID string) (model.Journey, error)
}

type FareStore interface {
	Create(ctx context.Context, f *model.FareRule) error
	Lookup(ctx context.Context, from, to string, class model.TravelClass, ptype model.PassengerType) (model.FareRule, error)
	ListForRoute(ctx context.Context, from, to string, class model.TravelClass) ([]model.FareRule, error)
	ListByClassAndType(ctx context.Context, class model.TravelClass, ptype model.PassengerType) ([]model.FareRule, error)
}

// FareCache keeps per-route fare maps.  ok is false on a miss.
type FareCache interface {
	GetRoute(ctx context.Context, from, to string, class model.TravelClass) (fares model.FareMap, ok bool, err error)
	SetRoute(ctx context.Context, from, to string, class model.TravelClass, fares model.FareMap, ttl time.Duration) error
	DeleteRoute(ctx context.Context, from, to string, class model.TravelClass) error
}

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
	EnsureCustomer(ctx context.Context, id, email, name string) (string, error)
}

type BookingStore interface {
	CreateWithPassengers(ctx context.Context, b *model.Booking, passengers []model.Passenger) error
	ListByUser(ctx context.Context, userID string) ([]repository.BookingDetail, error)
	FindBookingIDByPassenger(ctx context.Context, pattern string) (string, error)
	ExistsOnFlight(ctx context.Context, id, flightID string) (bool, error)
	UpdateFlightDate(ctx context.Context, id, date string) (model.Booking, error)
}

// EventPublisher delivers booking events to the broker.
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// PaymentVerifier checks a gateway signature for an order and payment.
type PaymentVerifier interface {
	VerifyPaymentSignature(orderID, paymentID, signature string) error
}

type StatsReader interface {
	TopRoutes(ctx context.Context, limit int) ([]repository.RouteStat, error)
	TotalEarnings(ctx context.Context) (float64, error)
	GenderCounts(ctx context.Context) ([]repository.GenderStat, error)
	MonthlyBookings(ctx context.Context) ([]repository.MonthStat, error)
}
