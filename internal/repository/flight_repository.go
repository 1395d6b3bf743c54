package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/flight-booking/internal/model"
)

// FlightRepo provides access to flights and the journeys that schedule them.
type FlightRepo struct {
	db *sql.DB
}

func NewFlightRepo(db *sql.DB) *FlightRepo { return &FlightRepo{db: db} }

// Create inserts f, assigning a new ID when f.ID is empty.
func (r *FlightRepo) Create(ctx context.Context, f *model.Flight) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO flights (id, flight_number, company_name, departure_time, arrival_time) VALUES (?, ?, ?, ?, ?)`,
		f.ID, strings.TrimSpace(f.FlightNumber), f.CompanyName, f.DepartureTime, f.ArrivalTime)
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// GetByNumber looks a flight up by its public flight number.
func (r *FlightRepo) GetByNumber(ctx context.Context, number string) (model.Flight, error) {
	return r.one(ctx, `SELECT id, flight_number, company_name, departure_time, arrival_time FROM flights WHERE flight_number = ? LIMIT 1`, strings.TrimSpace(number))
}

func (r *FlightRepo) GetByID(ctx context.Context, id string) (model.Flight, error) {
	return r.one(ctx, `SELECT id, flight_number, company_name, departure_time, arrival_time FROM flights WHERE id = ? LIMIT 1`, id)
}

func (r *FlightRepo) one(ctx context.Context, q string, arg any) (model.Flight, error) {
	var f model.Flight
	err := r.db.QueryRowContext(ctx, q, arg).Scan(&f.ID, &f.FlightNumber, &f.CompanyName, &f.DepartureTime, &f.ArrivalTime)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Flight{}, ErrNotFound
	}
	return f, err
}

// CreateJourney schedules a flight on a route and date.
func (r *FlightRepo) CreateJourney(ctx context.Context, j *model.Journey) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO journeys (id, flight_id, flight_from, flight_to, flight_date) VALUES (?, ?, ?, ?, ?)`,
		j.ID, j.FlightID, j.FlightFrom, j.FlightTo, j.FlightDate)
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// JourneyFilter narrows ListJourneys.  Empty From/To match any route.
type JourneyFilter struct {
	Dates []string
	From  string
	To    string
}

// ListJourneys returns journeys on any of the filter dates ordered by date.
// The flight is joined with LEFT JOIN so a journey whose flight row is
// missing is still returned with a nil Flight.
func (r *FlightRepo) ListJourneys(ctx context.Context, f JourneyFilter) ([]model.Journey, error) {
	if len(f.Dates) == 0 {
		return []model.Journey{}, nil
	}
	where := []string{"j.flight_date IN (?" + strings.Repeat(",?", len(f.Dates)-1) + ")"}
	args := make([]any, 0, len(f.Dates)+2)
	for _, d := range f.Dates {
		args = append(args, d)
	}
	if f.From != "" {
		where = append(where, "j.flight_from = ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		where = append(where, "j.flight_to = ?")
		args = append(args, f.To)
	}
	q := `SELECT j.id, j.flight_id, j.flight_from, j.flight_to, j.flight_date,
	             f.id, f.flight_number, f.company_name, f.departure_time, f.arrival_time
	      FROM journeys j
	      LEFT JOIN flights f ON f.id = j.flight_id
	      WHERE ` + strings.Join(where, " AND ") + `
	      ORDER BY j.flight_date ASC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Journey{}
	for rows.Next() {
		var (
			j                           model.Journey
			date                        time.Time
			fid, num, company, dep, arr sql.NullString
		)
		if err := rows.Scan(&j.ID, &j.FlightID, &j.FlightFrom, &j.FlightTo, &date,
			&fid, &num, &company, &dep, &arr); err != nil {
			return nil, err
		}
		j.FlightDate = date.Format(dateLayout)
		if fid.Valid {
			j.Flight = &model.Flight{
				ID:            fid.String,
				FlightNumber:  num.String,
				CompanyName:   company.String,
				DepartureTime: dep.String,
				ArrivalTime:   arr.String,
			}
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// FirstJourneyForFlight returns any one journey of the flight; it is used to
// recover the route of a flight number.
func (r *FlightRepo) FirstJourneyForFlight(ctx context.Context, flightID string) (model.Journey, error) {
	var (
		j    model.Journey
		date time.Time
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, flight_id, flight_from, flight_to, flight_date FROM journeys WHERE flight_id = ? LIMIT 1`,
		flightID).Scan(&j.ID, &j.FlightID, &j.FlightFrom, &j.FlightTo, &date)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Journey{}, ErrNotFound
	}
	if err != nil {
		return model.Journey{}, err
	}
	j.FlightDate = date.Format(dateLayout)
	return j, nil
}

const dateLayout = "2006-01-02"
