package service

import (
	"math/rand"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seatPattern = regexp.MustCompile(`^[A-J][1-6]$`)

func TestSeatAllocatorUniqueAndInRange(t *testing.T) {
	a := NewSeatAllocator(rand.New(rand.NewSource(42)))
	for _, n := range []int{0, 1, 7, SeatCapacity} {
		seats, err := a.Allocate(n)
		require.NoError(t, err)
		require.Len(t, seats, n)
		seen := map[string]bool{}
		for _, s := range seats {
			assert.Regexp(t, seatPattern, s)
			assert.False(t, seen[s], "duplicate seat %s", s)
			seen[s] = true
		}
	}
}

func TestSeatAllocatorRedrawsDuplicates(t *testing.T) {
	draws := []int{0, 0, 0, 0, 1, 1}
	a := &SeatAllocator{intn: func(int) int {
		v := draws[0]
		draws = draws[1:]
		return v
	}}
	seats, err := a.Allocate(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "B2"}, seats)
}

func TestSeatAllocatorTooManyPassengers(t *testing.T) {
	_, err := NewSeatAllocator(nil).Allocate(SeatCapacity + 1)
	assert.ErrorIs(t, err, ErrTooManyPassengers)
}
