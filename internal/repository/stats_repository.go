package repository

import (
	"context"
	"database/sql"
)

// StatsRepo runs the aggregate queries behind the admin dashboard.
type StatsRepo struct {
	db *sql.DB
}

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

type RouteStat struct {
	FlightFrom   string  `json:"flight_from"`
	FlightTo     string  `json:"flight_to"`
	TripCount    int     `json:"trip_count"`
	TotalRevenue float64 `json:"total_revenue"`
}

type GenderStat struct {
	Gender string `json:"gender"`
	Count  int    `json:"count"`
}

type MonthStat struct {
	Month        string `json:"month"`
	BookingCount int    `json:"booking_count"`
}

// TopRoutes returns the limit busiest routes by booking count.  Ties are
// broken alphabetically so the result is stable.
func (r *StatsRepo) TopRoutes(ctx context.Context, limit int) ([]RouteStat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT flight_from, flight_to, COUNT(*) AS trip_count, COALESCE(SUM(total_amount), 0) AS total_revenue
		 FROM bookings
		 WHERE flight_from IS NOT NULL AND flight_to IS NOT NULL AND total_amount IS NOT NULL
		 GROUP BY flight_from, flight_to
		 ORDER BY trip_count DESC, flight_from ASC, flight_to ASC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []RouteStat{}
	for rows.Next() {
		var s RouteStat
		if err := rows.Scan(&s.FlightFrom, &s.FlightTo, &s.TripCount, &s.TotalRevenue); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// TotalEarnings sums every booking amount.
func (r *StatsRepo) TotalEarnings(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total_amount), 0) FROM bookings WHERE total_amount IS NOT NULL`).Scan(&total)
	return total, err
}

// GenderCounts counts passengers per recorded gender.
func (r *StatsRepo) GenderCounts(ctx context.Context) ([]GenderStat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT gender, COUNT(*) FROM passengers WHERE gender IS NOT NULL GROUP BY gender ORDER BY gender`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []GenderStat{}
	for rows.Next() {
		var s GenderStat
		if err := rows.Scan(&s.Gender, &s.Count); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// MonthlyBookings counts bookings per calendar month (YYYY-MM), oldest first.
func (r *StatsRepo) MonthlyBookings(ctx context.Context) ([]MonthStat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DATE_FORMAT(created_at, '%Y-%m') AS month, COUNT(*)
		 FROM bookings
		 WHERE created_at IS NOT NULL
		 GROUP BY month
		 ORDER BY month ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []MonthStat{}
	for rows.Next() {
		var s MonthStat
		if err := rows.Scan(&s.Month, &s.BookingCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
