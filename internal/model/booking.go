package model

import "time"

// Booking records one paid trip leg for a user.  Route and date are copied
// onto the row so a reschedule does not have to touch the journey.
//
// Fields:
//
//	ID            – UUID primary key.
//	UserID        – user who booked.
//	FlightID      – booked flight.
//	PaymentID     – gateway payment reference, if any.
//	PaymentStatus – whether the payment went through.
//	FlightFrom    – origin.
//	FlightTo      – destination.
//	FlightDate    – travel date (YYYY-MM-DD).
//	TravelClass   – cabin.
//	TotalAmount   – amount charged for all passengers on this leg.
type Booking struct {
	ID            string      `json:"id"`
	UserID        string      `json:"user_id"`
	FlightID      string      `json:"flight_id"`
	PaymentID     *string     `json:"payment_id"`
	PaymentStatus bool        `json:"payment_status"`
	FlightFrom    string      `json:"flight_from"`
	FlightTo      string      `json:"flight_to"`
	FlightDate    string      `json:"flight_date"`
	TravelClass   TravelClass `json:"travel_class"`
	TotalAmount   float64     `json:"total_amount"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Passenger is one traveller on a booking.  The first passenger of a
// booking is primary.
type Passenger struct {
	ID         string `json:"-"`
	BookingID  string `json:"-"`
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Gender     string `json:"gender"`
	SeatNumber string `json:"seat_number"`
	IsPrimary  bool   `json:"is_primary"`
}

// BookingChange is the slice of a booking streamed to live-update clients.
type BookingChange struct {
	ID        string    `json:"id"`
	UpdatedAt time.Time `json:"updated_at"`
}
