package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/flight-booking/internal/model"
	"github.com/iliyamo/flight-booking/internal/repository"
)

// FareService answers fare questions for routes and flights.  Route fare
// maps are read through the cache when one is configured.
type FareService struct {
	log      *zap.Logger
	fares    FareStore
	flights  FlightReader
	cache    FareCache
	cacheTTL time.Duration
}

func NewFareService(log *zap.Logger, fares FareStore, flights FlightReader, cache FareCache, cacheTTL time.Duration) *FareService {
	if log == nil {
		log = zap.NewNop()
	}
	return &FareService{log: log, fares: fares, flights: flights, cache: cache, cacheTTL: cacheTTL}
}

// QuoteRequest asks for a single route fare.  An empty PassengerType means
// infant.
type QuoteRequest struct {
	From          string `json:"from"`
	To            string `json:"to"`
	TravelClass   string `json:"travel_class"`
	PassengerType string `json:"passenger_type"`
}

// Quote returns the base price of one route, class and passenger type.
// With a cache configured the price comes from the cached route fares.
func (s *FareService) Quote(ctx context.Context, req QuoteRequest) (float64, error) {
	from, to := strings.TrimSpace(req.From), strings.TrimSpace(req.To)
	if from == "" || to == "" || strings.TrimSpace(req.TravelClass) == "" {
		return 0, ErrInvalidInput
	}
	class, ok := model.ParseTravelClass(req.TravelClass)
	if !ok {
		return 0, ErrFareNotFound
	}
	ptype := model.PassengerInfant
	if strings.TrimSpace(req.PassengerType) != "" {
		if ptype, ok = model.ParsePassengerType(req.PassengerType); !ok {
			return 0, ErrFareNotFound
		}
	}

	// a cached zero may be a missing rule or a free fare; Lookup tells them apart
	if s.cache != nil {
		fares, err := s.RouteFares(ctx, from, to, class)
		if err != nil {
			return 0, err
		}
		if price := fares.For(ptype); price > 0 {
			return price, nil
		}
	}

	rule, err := s.fares.Lookup(ctx, from, to, class, ptype)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, ErrFareNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lookup fare: %w", err)
	}
	return rule.BasePrice, nil
}

// RouteFares returns the per-passenger-type prices of a route and class.
// Types without a rule are zero.
func (s *FareService) RouteFares(ctx context.Context, from, to string, class model.TravelClass) (model.FareMap, error) {
	const op = "service.RouteFares"
	logger := s.log.With(zap.String("op", op), zap.String("from", from), zap.String("to", to),
		zap.String("class", string(class)))

	if s.cache != nil {
		cached, ok, err := s.cache.GetRoute(ctx, from, to, class)
		switch {
		case err != nil:
			logger.Warn("redis cache read failed", zap.Error(err))
		case ok:
			logger.Debug("fare cache hit")
			return cached, nil
		default:
			logger.Debug("fare cache miss")
		}
	}

	rules, err := s.fares.ListForRoute(ctx, from, to, class)
	if err != nil {
		return model.FareMap{}, fmt.Errorf("list route fares: %w", err)
	}
	var fares model.FareMap
	for _, r := range rules {
		fares.Set(r.PassengerType, r.BasePrice)
	}

	if s.cache != nil {
		if err := s.cache.SetRoute(ctx, from, to, class, fares, s.cacheTTL); err != nil {
			logger.Warn("redis cache write failed", zap.Error(err))
		}
	}
	return fares, nil
}

// ForFlight resolves the route of a flight number through its first
// journey and returns that route's fares for class.
func (s *FareService) ForFlight(ctx context.Context, flightNumber, travelClass string) (model.FareMap, error) {
	if strings.TrimSpace(flightNumber) == "" || strings.TrimSpace(travelClass) == "" {
		return model.FareMap{}, ErrInvalidInput
	}
	class, _ := model.ParseTravelClass(travelClass)

	flight, err := s.flights.GetByNumber(ctx, flightNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.FareMap{}, ErrFlightNotFound
		}
		return model.FareMap{}, fmt.Errorf("get flight: %w", err)
	}
	journey, err := s.flights.FirstJourneyForFlight(ctx, flight.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.FareMap{}, ErrJourneyNotFound
		}
		return model.FareMap{}, fmt.Errorf("get journey: %w", err)
	}
	return s.RouteFares(ctx, journey.FlightFrom, journey.FlightTo, class)
}

// CreateRule stores a new fare rule and invalidates the cached route.
func (s *FareService) CreateRule(ctx context.Context, rule *model.FareRule) error {
	rule.FlightFrom = strings.TrimSpace(rule.FlightFrom)
	rule.FlightTo = strings.TrimSpace(rule.FlightTo)
	if rule.FlightFrom == "" || rule.FlightTo == "" || !rule.TravelClass.Valid() ||
		!rule.PassengerType.Valid() || rule.BasePrice < 0 {
		return ErrInvalidInput
	}
	if err := s.fares.Create(ctx, rule); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.DeleteRoute(ctx, rule.FlightFrom, rule.FlightTo, rule.TravelClass); err != nil {
			s.log.Warn("fare cache invalidation failed", zap.Error(err))
		}
	}
	return nil
}

// TripQuoteRequest prices a whole trip for a party of passengers.
type TripQuoteRequest struct {
	OutboundFlightNumber string   `json:"outbound_flight_number"`
	ReturnFlightNumber   string   `json:"return_flight_number,omitempty"`
	TravelClass          string   `json:"travel_class"`
	PassengerTypes       []string `json:"passenger_types"`
}

type TripQuote struct {
	Outbound    model.FareMap  `json:"outbound"`
	Return      *model.FareMap `json:"return,omitempty"`
	OutboundSum float64        `json:"outbound_total"`
	ReturnSum   float64        `json:"return_total"`
	Total       float64        `json:"total"`
}

// QuoteTrip sums, over every passenger, the outbound fare and the return
// fare for that passenger's type.  A zero total is rejected since nothing
// could be charged for it.
func (s *FareService) QuoteTrip(ctx context.Context, req TripQuoteRequest) (TripQuote, error) {
	if len(req.PassengerTypes) == 0 {
		return TripQuote{}, ErrInvalidInput
	}
	types := make([]model.PassengerType, 0, len(req.PassengerTypes))
	for _, raw := range req.PassengerTypes {
		p, ok := model.ParsePassengerType(raw)
		if !ok {
			return TripQuote{}, ErrInvalidInput
		}
		types = append(types, p)
	}

	var q TripQuote
	out, err := s.ForFlight(ctx, req.OutboundFlightNumber, req.TravelClass)
	if err != nil {
		return TripQuote{}, err
	}
	q.Outbound = out
	for _, p := range types {
		q.OutboundSum += out.For(p)
	}

	if strings.TrimSpace(req.ReturnFlightNumber) != "" {
		ret, err := s.ForFlight(ctx, req.ReturnFlightNumber, req.TravelClass)
		if err != nil {
			return TripQuote{}, err
		}
		q.Return = &ret
		for _, p := range types {
			q.ReturnSum += ret.For(p)
		}
	}

	q.Total = q.OutboundSum + q.ReturnSum
	if q.Total <= 0 {
		return TripQuote{}, ErrZeroTotal
	}
	return q, nil
}

// routeKey identifies a route in the economy infant lookup used by search.
type routeKey struct{ from, to string }

// economyInfantFares loads every economy infant rule keyed by route.  Search
// results display that price as the "from" fare of a flight.
func (s *FareService) economyInfantFares(ctx context.Context) (map[routeKey]float64, error) {
	rules, err := s.fares.ListByClassAndType(ctx, model.ClassEconomy, model.PassengerInfant)
	if err != nil {
		return nil, err
	}
	out := make(map[routeKey]float64, len(rules))
	for _, r := range rules {
		k := routeKey{r.FlightFrom, r.FlightTo}
		if _, seen := out[k]; !seen {
			out[k] = r.BasePrice
		}
	}
	return out, nil
}
