// Package service holds the flight booking use cases.  Services sit between
// the HTTP handlers and the repositories and depend only on small
// interfaces so they can be tested with in-memory fakes.
package service

import "errors"

var (
	// ErrInvalidInput is returned when a required field is missing or an
	// enum value is unknown.
	ErrInvalidInput = errors.New("invalid input")

	// ErrFareNotFound means no fare rule exists for the requested route,
	// class and passenger type.
	ErrFareNotFound = errors.New("fare not found")

	ErrFlightNotFound    = errors.New("flight not found")
	ErrJourneyNotFound   = errors.New("journey not found for this flight")
	ErrUserNotFound      = errors.New("user not found")
	ErrPassengerNotFound = errors.New("passenger not found")

	// ErrBookingMismatch is returned when a passenger's booking is not on
	// the flight a reschedule names.
	ErrBookingMismatch = errors.New("booking not found for given passenger and flight")

	// ErrTooManyPassengers is returned when a booking has more passengers
	// than the cabin has seats.
	ErrTooManyPassengers = errors.New("too many passengers for seat map")

	// ErrZeroTotal is returned by QuoteTrip when no passenger has a fare.
	ErrZeroTotal = errors.New("trip total is zero")
)
