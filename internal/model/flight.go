package model

// Flight is a scheduled service operated by an airline.  Departure and
// arrival are wall-clock times; the date lives on the journey.
type Flight struct {
	ID            string `json:"id"`
	FlightNumber  string `json:"flight_number"`
	CompanyName   string `json:"company_name"`
	DepartureTime string `json:"departure_time"`
	ArrivalTime   string `json:"arrival_time"`
}

// Journey places a flight on a route and a calendar date.
type Journey struct {
	ID         string  `json:"id"`
	FlightID   string  `json:"flight_id"`
	FlightFrom string  `json:"flight_from"`
	FlightTo   string  `json:"flight_to"`
	FlightDate string  `json:"flight_date"` // YYYY-MM-DD
	Flight     *Flight `json:"flights,omitempty"`
}
