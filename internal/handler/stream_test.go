package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/flight-booking/internal/model"
	"github.com/iliyamo/flight-booking/internal/repository"
	"github.com/iliyamo/flight-booking/internal/service"
	"github.com/iliyamo/flight-booking/internal/updates"
)

type fakeStats struct {
	stats service.DashboardStats
	err   error
}

func (f fakeStats) Stats(context.Context) (service.DashboardStats, error) { return f.stats, f.err }

func TestDashboard(t *testing.T) {
	stats := service.DashboardStats{
		TopRoutes:     []repository.RouteStat{{FlightFrom: "DEL", FlightTo: "BOM", TripCount: 3, TotalRevenue: 9000}},
		TotalEarnings: 9000,
		GenderStats:   []repository.GenderStat{},
		BookingTrends: []repository.MonthStat{{Month: "2025-03", BookingCount: 3}},
	}
	rec := call(t, NewDashboardHandler(fakeStats{stats: stats}).Get, http.MethodGet, "/v1/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, 9000.0, body["totalEarnings"])
	assert.Len(t, body["topRoutes"], 1)

	rec = call(t, NewDashboardHandler(fakeStats{err: errors.New("stats query failed")}).Get, http.MethodGet, "/v1/dashboard", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"stats query failed"}`, rec.Body.String())
}

type oneChange struct {
	mu    sync.Mutex
	calls int
}

func (s *oneChange) ChangedSince(context.Context, time.Time) ([]model.BookingChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls == 1 {
		return []model.BookingChange{{ID: "b-1", UpdatedAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}}, nil
	}
	return nil, nil
}

func TestFlightUpdatesStream(t *testing.T) {
	h := NewUpdatesHandler(updates.NewStream(&oneChange{}, 10*time.Millisecond, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/v1/flight-updates", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Subscribe(c))

	assert.Equal(t, "text/event-stream", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "no-cache, no-transform", rec.Header().Get("Cache-Control"))
	out := rec.Body.String()
	assert.True(t, strings.HasPrefix(out, `data: {"type":"connected"`), out)
	assert.Contains(t, out, `"type":"heartbeat"`)
	assert.Contains(t, out, `"type":"update","timestamp"`)
	assert.Contains(t, out, `"id":"b-1"`)
}
