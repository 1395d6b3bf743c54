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

// BookingRepo provides access to bookings and their passengers.  All
// timestamps are stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, user_id, flight_id, payment_id, payment_status, flight_from, flight_to,
	flight_date, travel_class, total_amount, created_at, updated_at`

// CreateWithPassengers inserts the booking row and all passenger rows in one
// transaction.  IDs are generated for the booking and each passenger and the
// booking timestamps are read back from the database.
func (r *BookingRepo) CreateWithPassengers(ctx context.Context, b *model.Booking, passengers []model.Passenger) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO bookings (id, user_id, flight_id, payment_id, payment_status, flight_from, flight_to, flight_date, travel_class, total_amount)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.FlightID, b.PaymentID, b.PaymentStatus, b.FlightFrom, b.FlightTo,
		b.FlightDate, string(b.TravelClass), b.TotalAmount)
	if err != nil {
		return err
	}
	if err := insertPassengersTx(ctx, tx, b.ID, passengers); err != nil {
		return err
	}
	if err := tx.QueryRowContext(ctx, `SELECT created_at, updated_at FROM bookings WHERE id = ?`, b.ID).
		Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// insertPassengersTx bulk-inserts passengers for bookingID.  Passing an
// empty slice has no effect and returns nil.
func insertPassengersTx(ctx context.Context, tx *sql.Tx, bookingID string, passengers []model.Passenger) error {
	if len(passengers) == 0 {
		return nil
	}
	query := `INSERT INTO passengers (id, booking_id, name, age, gender, seat_number, is_primary) VALUES `
	args := make([]interface{}, 0, len(passengers)*7)
	for i := range passengers {
		p := &passengers[i]
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?)"
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.BookingID = bookingID
		args = append(args, p.ID, bookingID, p.Name, p.Age, p.Gender, p.SeatNumber, p.IsPrimary)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// GetByID loads a single booking row.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (model.Booking, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrNotFound
	}
	return b, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(s rowScanner) (model.Booking, error) {
	var (
		b         model.Booking
		paymentID sql.NullString
		date      time.Time
	)
	if err := s.Scan(&b.ID, &b.UserID, &b.FlightID, &paymentID, &b.PaymentStatus, &b.FlightFrom, &b.FlightTo,
		&date, &b.TravelClass, &b.TotalAmount, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return model.Booking{}, err
	}
	if paymentID.Valid {
		v := paymentID.String
		b.PaymentID = &v
	}
	b.FlightDate = date.Format(dateLayout)
	return b, nil
}

// BookingDetail is a booking joined with its flight and passengers as
// returned to the booking owner.
type BookingDetail struct {
	model.Booking
	Flight     *model.Flight
	Passengers []model.Passenger
}

// ListByUser returns the user's bookings newest first with the flight and
// passengers attached.  Bookings whose flight row is gone have a nil Flight.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT b.id, b.user_id, b.flight_id, b.payment_id, b.payment_status, b.flight_from, b.flight_to,
		        b.flight_date, b.travel_class, b.total_amount, b.created_at, b.updated_at,
		        f.id, f.flight_number, f.company_name, f.departure_time, f.arrival_time
		 FROM bookings b
		 LEFT JOIN flights f ON f.id = b.flight_id
		 WHERE b.user_id = ?
		 ORDER BY b.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	out := []BookingDetail{}
	index := map[string]int{}
	for rows.Next() {
		var (
			d                           BookingDetail
			paymentID                   sql.NullString
			date                        time.Time
			fid, num, company, dep, arr sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.UserID, &d.FlightID, &paymentID, &d.PaymentStatus, &d.FlightFrom, &d.FlightTo,
			&date, &d.TravelClass, &d.TotalAmount, &d.CreatedAt, &d.UpdatedAt,
			&fid, &num, &company, &dep, &arr); err != nil {
			rows.Close()
			return nil, err
		}
		if paymentID.Valid {
			v := paymentID.String
			d.PaymentID = &v
		}
		d.FlightDate = date.Format(dateLayout)
		if fid.Valid {
			d.Flight = &model.Flight{ID: fid.String, FlightNumber: num.String, CompanyName: company.String,
				DepartureTime: dep.String, ArrivalTime: arr.String}
		}
		d.Passengers = []model.Passenger{}
		index[d.ID] = len(out)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]any, 0, len(out))
	for _, d := range out {
		ids = append(ids, d.ID)
	}
	prow, err := r.db.QueryContext(ctx,
		`SELECT booking_id, name, age, gender, seat_number, is_primary FROM passengers
		 WHERE booking_id IN (?`+strings.Repeat(",?", len(ids)-1)+`)
		 ORDER BY is_primary DESC, name ASC`, ids...)
	if err != nil {
		return nil, err
	}
	defer prow.Close()
	for prow.Next() {
		var p model.Passenger
		if err := prow.Scan(&p.BookingID, &p.Name, &p.Age, &p.Gender, &p.SeatNumber, &p.IsPrimary); err != nil {
			return nil, err
		}
		if i, ok := index[p.BookingID]; ok {
			out[i].Passengers = append(out[i].Passengers, p)
		}
	}
	return out, prow.Err()
}

// FindBookingIDByPassenger returns the booking of the first passenger whose
// name matches pattern with SQL LIKE semantics.
func (r *BookingRepo) FindBookingIDByPassenger(ctx context.Context, pattern string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT booking_id FROM passengers WHERE name LIKE ? LIMIT 1`, pattern).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return id, err
}

// UpdateFlightDate moves booking id to date and returns the updated row.
func (r *BookingRepo) UpdateFlightDate(ctx context.Context, id, date string) (model.Booking, error) {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET flight_date = ?, updated_at = UTC_TIMESTAMP(6) WHERE id = ?`,
		date, id); err != nil {
		return model.Booking{}, err
	}
	return r.GetByID(ctx, id)
}

// ExistsOnFlight reports whether booking id is for flightID.
func (r *BookingRepo) ExistsOnFlight(ctx context.Context, id, flightID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE id = ? AND flight_id = ?`, id, flightID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// ChangedSince returns bookings updated strictly after since, most recent
// first.
func (r *BookingRepo) ChangedSince(ctx context.Context, since time.Time) ([]model.BookingChange, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, updated_at FROM bookings WHERE updated_at > ? ORDER BY updated_at DESC`, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.BookingChange{}
	for rows.Next() {
		var c model.BookingChange
		if err := rows.Scan(&c.ID, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
