// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the background consumer of those payloads.
package queue

// BookingConfirmedEvent is published once a booking and its passengers are
// committed.  It contains enough information for downstream consumers to
// log or notify without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID   string   `json:"booking_id"`
	UserID      string   `json:"user_id"`
	UserEmail   string   `json:"user_email"`
	UserName    string   `json:"user_name"`
	FlightID    string   `json:"flight_id"`
	FlightFrom  string   `json:"flight_from"`
	FlightTo    string   `json:"flight_to"`
	FlightDate  string   `json:"flight_date"`
	TravelClass string   `json:"travel_class"`
	Passengers  []string `json:"passengers"`
	SeatNumbers []string `json:"seats"`
	TotalAmount float64  `json:"total_amount"`
	PaymentID   string   `json:"payment_id,omitempty"`
	ConfirmedAt string   `json:"confirmed_at"`
}
