package service

import (
	"context"

	"github.com/iliyamo/flight-booking/internal/repository"
)

const topRouteLimit = 4

type DashboardStats struct {
	TopRoutes     []repository.RouteStat  `json:"topRoutes"`
	TotalEarnings float64                 `json:"totalEarnings"`
	GenderStats   []repository.GenderStat `json:"genderStats"`
	BookingTrends []repository.MonthStat  `json:"bookingTrends"`
}

type DashboardService struct {
	stats StatsReader
}

func NewDashboardService(stats StatsReader) *DashboardService {
	return &DashboardService{stats: stats}
}

// Stats gathers the admin dashboard figures.  The first failing query
// aborts the whole call.
func (s *DashboardService) Stats(ctx context.Context) (DashboardStats, error) {
	var (
		out DashboardStats
		err error
	)
	if out.TopRoutes, err = s.stats.TopRoutes(ctx, topRouteLimit); err != nil {
		return DashboardStats{}, err
	}
	if out.TotalEarnings, err = s.stats.TotalEarnings(ctx); err != nil {
		return DashboardStats{}, err
	}
	if out.GenderStats, err = s.stats.GenderCounts(ctx); err != nil {
		return DashboardStats{}, err
	}
	if out.BookingTrends, err = s.stats.MonthlyBookings(ctx); err != nil {
		return DashboardStats{}, err
	}
	return out, nil
}
