package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/flight-booking/internal/model"
	"github.com/iliyamo/flight-booking/internal/repository"
)

const notAvailable = "N/A"

// FlightOption is one journey as shown in search results.  Fare is the
// economy infant base price of the route, nil when no rule exists.
type FlightOption struct {
	FlightID      string   `json:"flight_id"`
	Date          string   `json:"date"`
	From          string   `json:"from"`
	To            string   `json:"to"`
	Fare          *float64 `json:"fare"`
	FlightNumber  string   `json:"flight_number"`
	CompanyName   string   `json:"company_name"`
	DepartureTime string   `json:"departure_time,omitempty"`
	ArrivalTime   string   `json:"arrival_time,omitempty"`
}

type SearchRequest struct {
	From       string `json:"from" query:"from"`
	To         string `json:"to" query:"to"`
	Date       string `json:"date" query:"date"`
	ReturnDate string `json:"returnDate" query:"returnDate"`
}

type SearchResult struct {
	OneWay []FlightOption `json:"oneWay"`
	Return []FlightOption `json:"return"`
}

type WeekRequest struct {
	From         string `json:"from"`
	To           string `json:"to"`
	OutboundDate string `json:"outboundDate"`
	ReturnDate   string `json:"returnDate"`
}

// SearchService lists journeys with their display fare.
type SearchService struct {
	flights FlightReader
	fares   *FareService
}

func NewSearchService(flights FlightReader, fares *FareService) *SearchService {
	return &SearchService{flights: flights, fares: fares}
}

// Search returns journeys on req.Date as OneWay and, when a return date is
// given, journeys on that date as Return.  Outbound legs are restricted to
// From→To and return legs to To→From.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) (SearchResult, error) {
	from, to := strings.TrimSpace(req.From), strings.TrimSpace(req.To)
	date, ret := strings.TrimSpace(req.Date), strings.TrimSpace(req.ReturnDate)
	if from == "" || to == "" || date == "" {
		return SearchResult{}, ErrInvalidInput
	}

	fares, err := s.fares.economyInfantFares(ctx)
	if err != nil {
		return SearchResult{}, fmt.Errorf("fetch fares: %w", err)
	}

	res := SearchResult{OneWay: []FlightOption{}, Return: []FlightOption{}}
	out, err := s.flights.ListJourneys(ctx, repository.JourneyFilter{Dates: []string{date}, From: from, To: to})
	if err != nil {
		return SearchResult{}, fmt.Errorf("fetch journeys: %w", err)
	}
	for _, j := range out {
		res.OneWay = append(res.OneWay, toOption(j, fares, true))
	}

	if ret != "" {
		back, err := s.flights.ListJourneys(ctx, repository.JourneyFilter{Dates: []string{ret}, From: to, To: from})
		if err != nil {
			return SearchResult{}, fmt.Errorf("fetch journeys: %w", err)
		}
		for _, j := range back {
			res.Return = append(res.Return, toOption(j, fares, true))
		}
	}
	return res, nil
}

// Week returns journeys on the route From→To dated either OutboundDate or
// ReturnDate, ordered by date.  All four fields are required.
func (s *SearchService) Week(ctx context.Context, req WeekRequest) ([]FlightOption, error) {
	from, to := strings.TrimSpace(req.From), strings.TrimSpace(req.To)
	out, ret := strings.TrimSpace(req.OutboundDate), strings.TrimSpace(req.ReturnDate)
	if from == "" || to == "" || out == "" || ret == "" {
		return nil, ErrInvalidInput
	}

	journeys, err := s.flights.ListJourneys(ctx, repository.JourneyFilter{Dates: []string{out, ret}, From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("fetch journeys: %w", err)
	}
	fares, err := s.fares.economyInfantFares(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch fares: %w", err)
	}
	options := make([]FlightOption, 0, len(journeys))
	for _, j := range journeys {
		options = append(options, toOption(j, fares, false))
	}
	return options, nil
}

func toOption(j model.Journey, fares map[routeKey]float64, withTimes bool) FlightOption {
	o := FlightOption{
		FlightID:     j.FlightID,
		Date:         j.FlightDate,
		From:         j.FlightFrom,
		To:           j.FlightTo,
		FlightNumber: notAvailable,
		CompanyName:  notAvailable,
	}
	if withTimes {
		o.DepartureTime, o.ArrivalTime = notAvailable, notAvailable
	}
	if price, ok := fares[routeKey{j.FlightFrom, j.FlightTo}]; ok {
		o.Fare = &price
	}
	if f := j.Flight; f != nil {
		o.FlightNumber, o.CompanyName = f.FlightNumber, f.CompanyName
		if withTimes {
			o.DepartureTime, o.ArrivalTime = f.DepartureTime, f.ArrivalTime
		}
	}
	return o
}
