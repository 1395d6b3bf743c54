// Package seed loads a flight catalogue from YAML into the database.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/iliyamo/flight-booking/internal/model"
	"github.com/iliyamo/flight-booking/internal/repository"
)

// Catalogue is the YAML document read by Parse.
type Catalogue struct {
	Flights   []Flight   `yaml:"flights"`
	FareRules []FareRule `yaml:"fare_rules"`
}

type Flight struct {
	Number    string    `yaml:"number"`
	Company   string    `yaml:"company"`
	Departure string    `yaml:"departure"`
	Arrival   string    `yaml:"arrival"`
	Journeys  []Journey `yaml:"journeys"`
}

// Journey schedules its flight on a route for every listed date.
type Journey struct {
	From  string   `yaml:"from"`
	To    string   `yaml:"to"`
	Dates []string `yaml:"dates"`
}

type FareRule struct {
	From  string  `yaml:"from"`
	To    string  `yaml:"to"`
	Class string  `yaml:"class"`
	Type  string  `yaml:"passenger_type"`
	Price float64 `yaml:"price"`
}

// Parse decodes and checks a catalogue.  Unknown keys are rejected so a
// typo does not silently drop data.
func Parse(r io.Reader) (Catalogue, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var cat Catalogue
	if err := dec.Decode(&cat); err != nil {
		return Catalogue{}, fmt.Errorf("decode catalogue: %w", err)
	}
	for i, f := range cat.Flights {
		if f.Number == "" || f.Company == "" {
			return Catalogue{}, fmt.Errorf("flight %d: number and company are required", i)
		}
		for _, j := range f.Journeys {
			if j.From == "" || j.To == "" || len(j.Dates) == 0 {
				return Catalogue{}, fmt.Errorf("flight %s: journey needs from, to and dates", f.Number)
			}
		}
	}
	for i, r := range cat.FareRules {
		if _, ok := model.ParseTravelClass(r.Class); !ok {
			return Catalogue{}, fmt.Errorf("fare rule %d: unknown class %q", i, r.Class)
		}
		if _, ok := model.ParsePassengerType(r.Type); !ok {
			return Catalogue{}, fmt.Errorf("fare rule %d: unknown passenger type %q", i, r.Type)
		}
		if r.From == "" || r.To == "" || r.Price < 0 {
			return Catalogue{}, fmt.Errorf("fare rule %d: from, to and a non-negative price are required", i)
		}
	}
	return cat, nil
}

type FlightWriter interface {
	Create(ctx context.Context, f *model.Flight) error
	GetByNumber(ctx context.Context, number string) (model.Flight, error)
	CreateJourney(ctx context.Context, j *model.Journey) error
}

type FareWriter interface {
	Create(ctx context.Context, f *model.FareRule) error
}

// Result counts inserted rows; Skipped counts rows that already existed.
type Result struct {
	Flights   int
	Journeys  int
	FareRules int
	Skipped   int
}

// Apply inserts the catalogue.  Rows that already exist are skipped, so
// running it twice is harmless.
func Apply(ctx context.Context, cat Catalogue, flights FlightWriter, fares FareWriter, log *zap.Logger) (Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var res Result
	for _, sf := range cat.Flights {
		f := model.Flight{FlightNumber: sf.Number, CompanyName: sf.Company, DepartureTime: sf.Departure, ArrivalTime: sf.Arrival}
		switch err := flights.Create(ctx, &f); {
		case err == nil:
			res.Flights++
		case errors.Is(err, repository.ErrConflict):
			existing, err := flights.GetByNumber(ctx, sf.Number)
			if err != nil {
				return res, fmt.Errorf("load flight %s: %w", sf.Number, err)
			}
			f = existing
			res.Skipped++
		default:
			return res, fmt.Errorf("create flight %s: %w", sf.Number, err)
		}

		for _, sj := range sf.Journeys {
			for _, date := range sj.Dates {
				j := model.Journey{FlightID: f.ID, FlightFrom: sj.From, FlightTo: sj.To, FlightDate: date}
				switch err := flights.CreateJourney(ctx, &j); {
				case err == nil:
					res.Journeys++
				case errors.Is(err, repository.ErrConflict):
					res.Skipped++
				default:
					return res, fmt.Errorf("create journey %s %s: %w", sf.Number, date, err)
				}
			}
		}
	}

	for _, sr := range cat.FareRules {
		class, _ := model.ParseTravelClass(sr.Class)
		ptype, _ := model.ParsePassengerType(sr.Type)
		r := model.FareRule{FlightFrom: sr.From, FlightTo: sr.To, TravelClass: class, PassengerType: ptype, BasePrice: sr.Price}
		switch err := fares.Create(ctx, &r); {
		case err == nil:
			res.FareRules++
		case errors.Is(err, repository.ErrConflict):
			res.Skipped++
		default:
			return res, fmt.Errorf("create fare rule %s-%s %s/%s: %w", sr.From, sr.To, class, ptype, err)
		}
	}
	log.Info("catalogue seeded",
		zap.Int("flights", res.Flights), zap.Int("journeys", res.Journeys),
		zap.Int("fare_rules", res.FareRules), zap.Int("skipped", res.Skipped))
	return res, nil
}
