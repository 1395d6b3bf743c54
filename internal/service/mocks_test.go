package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/flight-booking/internal/model"
	"github.com/iliyamo/flight-booking/internal/queue"
	"github.com/iliyamo/flight-booking/internal/repository"
)

type FlightReaderMock struct {
	mock.Mock
}

func (m *FlightReaderMock) GetByNumber(ctx context.Context, number string) (model.Flight, error) {
	ret := m.Called(number)
	return ret.Get(0).(model.Flight), ret.Error(1)
}

func (m *FlightReaderMock) GetByID(ctx context.Context, id string) (model.Flight, error) {
	ret := m.Called(id)
	return ret.Get(0).(model.Flight), ret.Error(1)
}

func (m *FlightReaderMock) ListJourneys(ctx context.Context, f repository.JourneyFilter) ([]model.Journey, error) {
	ret := m.Called(f)
	return ret.Get(0).([]model.Journey), ret.Error(1)
}

func (m *FlightReaderMock) FirstJourneyForFlight(ctx context.Context, flightID string) (model.Journey, error) {
	ret := m.Called(flightID)
	return ret.Get(0).(model.Journey), ret.Error(1)
}

type FareStoreMock struct {
	mock.Mock
}

func (m *FareStoreMock) Create(ctx context.Context, f *model.FareRule) error {
	return m.Called(f).Error(0)
}

func (m *FareStoreMock) Lookup(ctx context.Context, from, to string, class model.TravelClass, ptype model.PassengerType) (model.FareRule, error) {
	ret := m.Called(from, to, class, ptype)
	return ret.Get(0).(model.FareRule), ret.Error(1)
}

func (m *FareStoreMock) ListForRoute(ctx context.Context, from, to string, class model.TravelClass) ([]model.FareRule, error) {
	ret := m.Called(from, to, class)
	return ret.Get(0).([]model.FareRule), ret.Error(1)
}

func (m *FareStoreMock) ListByClassAndType(ctx context.Context, class model.TravelClass, ptype model.PassengerType) ([]model.FareRule, error) {
	ret := m.Called(class, ptype)
	return ret.Get(0).([]model.FareRule), ret.Error(1)
}

// memoryFareCache is a map-backed FareCache.
type memoryFareCache struct {
	data    map[string]model.FareMap
	getErr  error
	deletes []string
}

func newMemoryFareCache() *memoryFareCache {
	return &memoryFareCache{data: map[string]model.FareMap{}}
}

func cacheKey(from, to string, class model.TravelClass) string {
	return from + ":" + to + ":" + string(class)
}

func (c *memoryFareCache) GetRoute(_ context.Context, from, to string, class model.TravelClass) (model.FareMap, bool, error) {
	if c.getErr != nil {
		return model.FareMap{}, false, c.getErr
	}
	f, ok := c.data[cacheKey(from, to, class)]
	return f, ok, nil
}

func (c *memoryFareCache) SetRoute(_ context.Context, from, to string, class model.TravelClass, fares model.FareMap, _ time.Duration) error {
	c.data[cacheKey(from, to, class)] = fares
	return nil
}

func (c *memoryFareCache) DeleteRoute(_ context.Context, from, to string, class model.TravelClass) error {
	k := cacheKey(from, to, class)
	delete(c.data, k)
	c.deletes = append(c.deletes, k)
	return nil
}

type UserStoreMock struct {
	mock.Mock
}

func (m *UserStoreMock) GetByEmail(ctx context.Context, email string) (model.User, error) {
	ret := m.Called(email)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (m *UserStoreMock) EnsureCustomer(ctx context.Context, id, email, name string) (string, error) {
	ret := m.Called(id, email, name)
	return ret.String(0), ret.Error(1)
}

type BookingStoreMock struct {
	mock.Mock
}

func (m *BookingStoreMock) CreateWithPassengers(ctx context.Context, b *model.Booking, passengers []model.Passenger) error {
	ret := m.Called(b, passengers)
	if ret.Error(0) == nil {
		b.ID = "b-new"
	}
	return ret.Error(0)
}

func (m *BookingStoreMock) ListByUser(ctx context.Context, userID string) ([]repository.BookingDetail, error) {
	ret := m.Called(userID)
	return ret.Get(0).([]repository.BookingDetail), ret.Error(1)
}

func (m *BookingStoreMock) FindBookingIDByPassenger(ctx context.Context, pattern string) (string, error) {
	ret := m.Called(pattern)
	return ret.String(0), ret.Error(1)
}

func (m *BookingStoreMock) ExistsOnFlight(ctx context.Context, id, flightID string) (bool, error) {
	ret := m.Called(id, flightID)
	return ret.Bool(0), ret.Error(1)
}

func (m *BookingStoreMock) UpdateFlightDate(ctx context.Context, id, date string) (model.Booking, error) {
	ret := m.Called(id, date)
	return ret.Get(0).(model.Booking), ret.Error(1)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error {
	return m.Called(ev).Error(0)
}

type VerifierMock struct {
	mock.Mock
}

func (m *VerifierMock) VerifyPaymentSignature(orderID, paymentID, signature string) error {
	return m.Called(orderID, paymentID, signature).Error(0)
}

type StatsReaderMock struct {
	mock.Mock
}

func (m *StatsReaderMock) TopRoutes(ctx context.Context, limit int) ([]repository.RouteStat, error) {
	ret := m.Called(limit)
	return ret.Get(0).([]repository.RouteStat), ret.Error(1)
}

func (m *StatsReaderMock) TotalEarnings(ctx context.Context) (float64, error) {
	ret := m.Called()
	return ret.Get(0).(float64), ret.Error(1)
}

func (m *StatsReaderMock) GenderCounts(ctx context.Context) ([]repository.GenderStat, error) {
	ret := m.Called()
	return ret.Get(0).([]repository.GenderStat), ret.Error(1)
}

func (m *StatsReaderMock) MonthlyBookings(ctx context.Context) ([]repository.MonthStat, error) {
	ret := m.Called()
	return ret.Get(0).([]repository.MonthStat), ret.Error(1)
}
