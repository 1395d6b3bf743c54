package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/flight-booking/internal/model"
)

// FareRepo reads and writes fare_rules.  A rule is unique per route,
// travel class and passenger type.
type FareRepo struct {
	db *sql.DB
}

func NewFareRepo(db *sql.DB) *FareRepo { return &FareRepo{db: db} }

const fareColumns = `id, flight_from, flight_to, travel_class, passenger_type, base_price`

// Create inserts a fare rule.  A duplicate route/class/type yields ErrConflict.
func (r *FareRepo) Create(ctx context.Context, f *model.FareRule) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO fare_rules (`+fareColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		f.ID, f.FlightFrom, f.FlightTo, string(f.TravelClass), string(f.PassengerType), f.BasePrice)
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// Lookup returns the single rule for route, class and passenger type.
func (r *FareRepo) Lookup(ctx context.Context, from, to string, class model.TravelClass, ptype model.PassengerType) (model.FareRule, error) {
	var f model.FareRule
	err := r.db.QueryRowContext(ctx,
		`SELECT `+fareColumns+` FROM fare_rules
		 WHERE flight_from = ? AND flight_to = ? AND travel_class = ? AND passenger_type = ?
		 LIMIT 1`,
		from, to, string(class), string(ptype)).Scan(
		&f.ID, &f.FlightFrom, &f.FlightTo, &f.TravelClass, &f.PassengerType, &f.BasePrice)
	if errors.Is(err, sql.ErrNoRows) {
		return model.FareRule{}, ErrNotFound
	}
	return f, err
}

// ListForRoute returns every passenger-type rule of a route and class.
func (r *FareRepo) ListForRoute(ctx context.Context, from, to string, class model.TravelClass) ([]model.FareRule, error) {
	return r.list(ctx,
		`SELECT `+fareColumns+` FROM fare_rules WHERE flight_from = ? AND flight_to = ? AND travel_class = ?`,
		from, to, string(class))
}

// ListByClassAndType returns one rule per route for class and ptype.
func (r *FareRepo) ListByClassAndType(ctx context.Context, class model.TravelClass, ptype model.PassengerType) ([]model.FareRule, error) {
	return r.list(ctx,
		`SELECT `+fareColumns+` FROM fare_rules WHERE travel_class = ? AND passenger_type = ?`,
		string(class), string(ptype))
}

func (r *FareRepo) list(ctx context.Context, q string, args ...any) ([]model.FareRule, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.FareRule{}
	for rows.Next() {
		var f model.FareRule
		if err := rows.Scan(&f.ID, &f.FlightFrom, &f.FlightTo, &f.TravelClass, &f.PassengerType, &f.BasePrice); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
