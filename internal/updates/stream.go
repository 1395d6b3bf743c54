// Package updates streams booking changes to browsers as server-sent
// events.  Each connection polls the database on its own ticker; there is
// no shared broadcaster.
package updates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/flight-booking/internal/model"
)

// ChangeSource returns bookings updated strictly after since.
type ChangeSource interface {
	ChangedSince(ctx context.Context, since time.Time) ([]model.BookingChange, error)
}

// Event is one SSE payload.  Only the fields of its Type are set.
type Event struct {
	Type      string                `json:"type"`
	Timestamp *time.Time            `json:"timestamp,omitempty"`
	LastCheck *time.Time            `json:"lastCheck,omitempty"`
	Data      []model.BookingChange `json:"data,omitempty"`
	Message   string                `json:"message,omitempty"`
}

const (
	TypeConnected = "connected"
	TypeHeartbeat = "heartbeat"
	TypeUpdate    = "update"
	TypeError     = "error"
)

type Stream struct {
	source   ChangeSource
	interval time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func NewStream(source ChangeSource, interval time.Duration, log *zap.Logger) *Stream {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Stream{source: source, interval: interval, log: log, now: time.Now}
}

// Serve writes a connected event and then, once per interval, a heartbeat
// followed by an update when bookings changed since the last check.  A
// failed poll sends an error event and the loop carries on.  Serve returns
// when ctx is done or a write fails.
func (s *Stream) Serve(ctx context.Context, w io.Writer, flush func()) error {
	lastCheck := s.now().UTC()
	s.log.Debug("sse connection established", zap.Time("last_check", lastCheck))
	defer s.log.Debug("sse connection closed")

	send := func(ev Event) error {
		if err := WriteEvent(w, ev); err != nil {
			return err
		}
		if flush != nil {
			flush()
		}
		return nil
	}

	now := s.now().UTC()
	if err := send(Event{Type: TypeConnected, Timestamp: &now}); err != nil {
		return err
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		changes, err := s.source.ChangedSince(ctx, lastCheck)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.Warn("booking poll failed", zap.Error(err))
			if err := send(Event{Type: TypeError, Message: err.Error()}); err != nil {
				return err
			}
			continue
		}

		now := s.now().UTC()
		check := lastCheck
		if err := send(Event{Type: TypeHeartbeat, Timestamp: &now, LastCheck: &check}); err != nil {
			return err
		}
		if len(changes) == 0 {
			continue
		}
		for _, c := range changes {
			if c.UpdatedAt.After(lastCheck) {
				lastCheck = c.UpdatedAt
			}
		}
		s.log.Debug("booking changes detected", zap.Int("count", len(changes)))
		if err := send(Event{Type: TypeUpdate, Data: changes, Timestamp: &now}); err != nil {
			return err
		}
	}
}

// WriteEvent writes ev in SSE framing: a single data line and a blank line.
func WriteEvent(w io.Writer, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}
