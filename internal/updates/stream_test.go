package updates

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/flight-booking/internal/model"
)

type scriptedSource struct {
	mu     sync.Mutex
	calls  []time.Time
	script []func() ([]model.BookingChange, error)
	done   chan struct{}
}

func (s *scriptedSource) ChangedSince(_ context.Context, since time.Time) ([]model.BookingChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, since)
	i := len(s.calls) - 1
	if i >= len(s.script)-1 && s.done != nil {
		close(s.done)
		s.done = nil
	}
	if i < len(s.script) {
		return s.script[i]()
	}
	return nil, nil
}

// syncBuffer is a goroutine-safe strings.Builder.
type syncBuffer struct {
	mu sync.Mutex
	b  strings.Builder
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

func parseEvents(t *testing.T, raw string) []Event {
	t.Helper()
	var out []Event
	sc := bufio.NewScanner(strings.NewReader(raw))
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		require.True(t, strings.HasPrefix(line, "data: "), line)
		var ev Event
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		out = append(out, ev)
	}
	return out
}

func TestStreamServe(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t1 := start.Add(3 * time.Second)
	t2 := start.Add(4 * time.Second)

	src := &scriptedSource{done: make(chan struct{})}
	src.script = []func() ([]model.BookingChange, error){
		func() ([]model.BookingChange, error) { return nil, nil },
		func() ([]model.BookingChange, error) { return nil, errors.New("db gone") },
		func() ([]model.BookingChange, error) {
			return []model.BookingChange{{ID: "b2", UpdatedAt: t2}, {ID: "b1", UpdatedAt: t1}}, nil
		},
		func() ([]model.BookingChange, error) { return nil, nil },
	}

	s := NewStream(src, 5*time.Millisecond, nil)
	s.now = func() time.Time { return start }

	ctx, cancel := context.WithCancel(context.Background())
	var buf syncBuffer
	flushes := 0
	errc := make(chan error, 1)
	go func() { errc <- s.Serve(ctx, &buf, func() { flushes++ }) }()

	select {
	case <-src.done:
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not poll")
	}
	cancel()
	require.NoError(t, <-errc)

	events := parseEvents(t, buf.String())
	require.GreaterOrEqual(t, len(events), 5)
	assert.Equal(t, TypeConnected, events[0].Type)
	assert.Equal(t, TypeHeartbeat, events[1].Type)
	assert.Equal(t, start, *events[1].LastCheck)
	assert.Equal(t, TypeError, events[2].Type)
	assert.Equal(t, "db gone", events[2].Message)
	assert.Equal(t, TypeHeartbeat, events[3].Type)
	assert.Equal(t, TypeUpdate, events[4].Type)
	assert.Equal(t, []string{"b2", "b1"}, []string{events[4].Data[0].ID, events[4].Data[1].ID})
	assert.Equal(t, len(events), flushes)

	src.mu.Lock()
	defer src.mu.Unlock()
	assert.Equal(t, start, src.calls[0])
	assert.Equal(t, t2, src.calls[3], "lastCheck advances to the newest updated_at")
}

func TestStreamServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf syncBuffer
	err := NewStream(&scriptedSource{}, time.Hour, nil).Serve(ctx, &buf, nil)
	require.NoError(t, err)
	events := parseEvents(t, buf.String())
	require.Len(t, events, 1)
	assert.Equal(t, TypeConnected, events[0].Type)
}

func TestWriteEventFraming(t *testing.T) {
	var b strings.Builder
	require.NoError(t, WriteEvent(&b, Event{Type: TypeError, Message: "x"}))
	assert.Equal(t, "data: {\"type\":\"error\",\"message\":\"x\"}\n\n", b.String())
}
