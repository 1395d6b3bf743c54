package model

import "strings"

// TravelClass is the cabin a fare applies to.
type TravelClass string

const (
	ClassEconomy  TravelClass = "economy"
	ClassPremium  TravelClass = "premium"
	ClassBusiness TravelClass = "business"
)

// Valid reports whether c is a known cabin.
func (c TravelClass) Valid() bool {
	switch c {
	case ClassEconomy, ClassPremium, ClassBusiness:
		return true
	}
	return false
}

// PassengerType selects the fare column for a traveller.
type PassengerType string

const (
	PassengerAdult  PassengerType = "adult"
	PassengerChild  PassengerType = "child"
	PassengerInfant PassengerType = "infant"
)

func (p PassengerType) Valid() bool {
	switch p {
	case PassengerAdult, PassengerChild, PassengerInfant:
		return true
	}
	return false
}

// ParseTravelClass normalises user input; ok is false for unknown values.
func ParseTravelClass(s string) (TravelClass, bool) {
	c := TravelClass(strings.ToLower(strings.TrimSpace(s)))
	return c, c.Valid()
}

func ParsePassengerType(s string) (PassengerType, bool) {
	p := PassengerType(strings.ToLower(strings.TrimSpace(s)))
	return p, p.Valid()
}

// FareRule is the base price for one route, class and passenger type.
type FareRule struct {
	ID            string        `json:"id"`
	FlightFrom    string        `json:"flight_from"`
	FlightTo      string        `json:"flight_to"`
	TravelClass   TravelClass   `json:"travel_class"`
	PassengerType PassengerType `json:"passenger_type"`
	BasePrice     float64       `json:"base_price"`
}

// FareMap holds one price per passenger type; absent types are zero.
type FareMap struct {
	Infant float64 `json:"infant"`
	Child  float64 `json:"child"`
	Adult  float64 `json:"adult"`
}

// Set stores price under the column for p.  Unknown types are ignored.
func (m *FareMap) Set(p PassengerType, price float64) {
	switch p {
	case PassengerInfant:
		m.Infant = price
	case PassengerChild:
		m.Child = price
	case PassengerAdult:
		m.Adult = price
	}
}

// For returns the price for p.
func (m FareMap) For(p PassengerType) float64 {
	switch p {
	case PassengerInfant:
		return m.Infant
	case PassengerChild:
		return m.Child
	case PassengerAdult:
		return m.Adult
	}
	return 0
}
