package service

import (
	"math/rand"
	"strconv"
)

const (
	seatRows    = "ABCDEFGHIJ"
	seatColumns = 6
	// SeatCapacity is the number of distinct seats on the seat map.
	SeatCapacity = len(seatRows) * seatColumns
)

// SeatAllocator hands out random seats, unique within one call.
type SeatAllocator struct {
	intn func(n int) int
}

// NewSeatAllocator returns an allocator drawing from rng.  A nil rng uses
// the global math/rand source.
func NewSeatAllocator(rng *rand.Rand) *SeatAllocator {
	if rng == nil {
		return &SeatAllocator{intn: rand.Intn}
	}
	return &SeatAllocator{intn: rng.Intn}
}

// Allocate returns n distinct seat labels such as "C4".
func (a *SeatAllocator) Allocate(n int) ([]string, error) {
	if n > SeatCapacity {
		return nil, ErrTooManyPassengers
	}
	taken := make(map[string]struct{}, n)
	seats := make([]string, 0, n)
	for len(seats) < n {
		seat := string(seatRows[a.intn(len(seatRows))]) + strconv.Itoa(a.intn(seatColumns)+1)
		if _, dup := taken[seat]; dup {
			continue
		}
		taken[seat] = struct{}{}
		seats = append(seats, seat)
	}
	return seats, nil
}
