package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/flight-booking/internal/model"
	"github.com/iliyamo/flight-booking/internal/queue"
	"github.com/iliyamo/flight-booking/internal/repository"
)

// fixedSeats returns an allocator whose draws walk the seat map in order.
func fixedSeats() *SeatAllocator {
	i := 0
	return &SeatAllocator{intn: func(n int) int {
		defer func() { i++ }()
		if n == seatColumns {
			return 0
		}
		return (i / 2) % n
	}}
}

func amount(f float64) *float64 { return &f }

func validBooking() CreateBookingRequest {
	return CreateBookingRequest{
		UserID:      "u1",
		UserEmail:   "ana@example.com",
		UserName:    "Ana",
		FlightID:    "fl1",
		PaymentID:   "pay_1",
		FlightFrom:  "DEL",
		FlightTo:    "BOM",
		FlightDate:  "2026-03-01",
		TravelClass: "economy",
		TotalAmount: amount(9000),
		Passengers: []PassengerInput{
			{Name: "Ana", Age: 30, Gender: "female"},
			{Name: "Ben", Age: 4, Gender: "male"},
		},
	}
}

func TestBookingServiceCreate(t *testing.T) {
	users, bookings, pub := &UserStoreMock{}, &BookingStoreMock{}, &PublisherMock{}
	users.On("EnsureCustomer", "u1", "ana@example.com", "Ana").Return("u9", nil)

	var stored model.Booking
	var storedPassengers []model.Passenger
	bookings.On("CreateWithPassengers", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		stored = *args.Get(0).(*model.Booking)
		storedPassengers = args.Get(1).([]model.Passenger)
	})
	var published queue.BookingConfirmedEvent
	pub.On("PublishBookingConfirmed", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		published = args.Get(0).(queue.BookingConfirmedEvent)
	})

	svc := NewBookingService(nil, users, bookings, fixedSeats(), pub, nil)
	svc.now = func() time.Time { return time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC) }

	b, ps, err := svc.Create(context.Background(), validBooking())
	require.NoError(t, err)
	assert.Equal(t, "b-new", b.ID)

	pay := "pay_1"
	wantBooking := model.Booking{UserID: "u9", FlightID: "fl1", PaymentID: &pay, PaymentStatus: true,
		FlightFrom: "DEL", FlightTo: "BOM", FlightDate: "2026-03-01", TravelClass: model.ClassEconomy, TotalAmount: 9000}
	if diff := cmp.Diff(wantBooking, stored); diff != "" {
		t.Errorf("stored booking mismatch (-want +got):\n%s", diff)
	}
	wantPassengers := []model.Passenger{
		{Name: "Ana", Age: 30, Gender: "female", SeatNumber: "A1", IsPrimary: true},
		{Name: "Ben", Age: 4, Gender: "male", SeatNumber: "B1"},
	}
	if diff := cmp.Diff(wantPassengers, storedPassengers); diff != "" {
		t.Errorf("stored passengers mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, wantPassengers, ps)

	assert.Equal(t, "b-new", published.BookingID)
	assert.Equal(t, []string{"A1", "B1"}, published.SeatNumbers)
	assert.Equal(t, "2026-02-01T10:00:00Z", published.ConfirmedAt)
}

func TestBookingServiceCreatePublishFailureIsIgnored(t *testing.T) {
	users, bookings, pub := &UserStoreMock{}, &BookingStoreMock{}, &PublisherMock{}
	users.On("EnsureCustomer", mock.Anything, mock.Anything, mock.Anything).Return("u1", nil)
	bookings.On("CreateWithPassengers", mock.Anything, mock.Anything).Return(nil)
	pub.On("PublishBookingConfirmed", mock.Anything).Return(errors.New("broker down"))

	_, _, err := NewBookingService(nil, users, bookings, nil, pub, nil).Create(context.Background(), validBooking())
	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestBookingServiceCreateRejectsBadSignature(t *testing.T) {
	users, bookings, verifier := &UserStoreMock{}, &BookingStoreMock{}, &VerifierMock{}
	sigErr := errors.New("invalid payment signature")
	verifier.On("VerifyPaymentSignature", "order_1", "pay_1", "bad").Return(sigErr)

	req := validBooking()
	req.RazorpayOrderID, req.RazorpaySignature = "order_1", "bad"
	_, _, err := NewBookingService(nil, users, bookings, nil, nil, verifier).Create(context.Background(), req)
	assert.ErrorIs(t, err, sigErr)
	bookings.AssertNotCalled(t, "CreateWithPassengers", mock.Anything, mock.Anything)
}

func TestBookingServiceCreateErrors(t *testing.T) {
	t.Run("invalid class", func(t *testing.T) {
		req := validBooking()
		req.TravelClass = "first"
		_, _, err := NewBookingService(nil, &UserStoreMock{}, &BookingStoreMock{}, nil, nil, nil).Create(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("too many passengers", func(t *testing.T) {
		req := validBooking()
		req.Passengers = make([]PassengerInput, SeatCapacity+1)
		_, _, err := NewBookingService(nil, &UserStoreMock{}, &BookingStoreMock{}, nil, nil, nil).Create(context.Background(), req)
		assert.ErrorIs(t, err, ErrTooManyPassengers)
	})

	t.Run("store failure", func(t *testing.T) {
		users, bookings := &UserStoreMock{}, &BookingStoreMock{}
		users.On("EnsureCustomer", mock.Anything, mock.Anything, mock.Anything).Return("u1", nil)
		dbErr := errors.New("deadlock")
		bookings.On("CreateWithPassengers", mock.Anything, mock.Anything).Return(dbErr)
		_, _, err := NewBookingService(nil, users, bookings, nil, nil, nil).Create(context.Background(), validBooking())
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestBookingServiceListByEmail(t *testing.T) {
	users, bookings := &UserStoreMock{}, &BookingStoreMock{}
	users.On("GetByEmail", "ana@example.com").Return(model.User{ID: "u1"}, nil)
	users.On("GetByEmail", "ghost@example.com").Return(model.User{}, repository.ErrNotFound)
	created := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	flight := &model.Flight{ID: "fl1", FlightNumber: "AI-101"}
	bookings.On("ListByUser", "u1").Return([]repository.BookingDetail{{
		Booking: model.Booking{ID: "b1", FlightID: "fl1", PaymentStatus: true, FlightFrom: "DEL", FlightTo: "BOM",
			FlightDate: "2026-03-01", TravelClass: model.ClassEconomy, TotalAmount: 100, CreatedAt: created},
		Flight:     flight,
		Passengers: []model.Passenger{{Name: "Ana", IsPrimary: true}},
	}}, nil)
	svc := NewBookingService(nil, users, bookings, nil, nil, nil)

	got, err := svc.ListByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	want := []BookingView{{
		ID: "b1", FlightID: "fl1", PaymentStatus: true, CreatedAt: created, TravelClass: model.ClassEconomy,
		TotalAmount: 100, Flight: flight,
		Journey:    JourneyView{FlightFrom: "DEL", FlightTo: "BOM", FlightDate: "2026-03-01"},
		Passengers: []model.Passenger{{Name: "Ana", IsPrimary: true}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListByEmail() mismatch (-want +got):\n%s", diff)
	}

	_, err = svc.ListByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = svc.ListByEmail(context.Background(), " ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBookingServiceReschedule(t *testing.T) {
	req := RescheduleRequest{PassengerName: "Ana%", FlightID: "fl1", NewFlightDate: "2026-04-01"}
	tests := []struct {
		name    string
		req     RescheduleRequest
		mocker  func(m *BookingStoreMock)
		wantErr error
	}{
		{
			name: "updates the date",
			req:  req,
			mocker: func(m *BookingStoreMock) {
				m.On("FindBookingIDByPassenger", "Ana%").Return("b1", nil)
				m.On("ExistsOnFlight", "b1", "fl1").Return(true, nil)
				m.On("UpdateFlightDate", "b1", "2026-04-01").Return(model.Booking{ID: "b1", FlightDate: "2026-04-01"}, nil)
			},
		},
		{
			name: "passenger not found",
			req:  req,
			mocker: func(m *BookingStoreMock) {
				m.On("FindBookingIDByPassenger", "Ana%").Return("", repository.ErrNotFound)
			},
			wantErr: ErrPassengerNotFound,
		},
		{
			name: "booking on another flight",
			req:  req,
			mocker: func(m *BookingStoreMock) {
				m.On("FindBookingIDByPassenger", "Ana%").Return("b1", nil)
				m.On("ExistsOnFlight", "b1", "fl1").Return(false, nil)
			},
			wantErr: ErrBookingMismatch,
		},
		{
			name:    "missing date",
			req:     RescheduleRequest{PassengerName: "Ana", FlightID: "fl1"},
			mocker:  func(m *BookingStoreMock) {},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &BookingStoreMock{}
			tt.mocker(store)
			got, err := NewBookingService(nil, &UserStoreMock{}, store, nil, nil, nil).Reschedule(context.Background(), tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				store.AssertNotCalled(t, "UpdateFlightDate", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "2026-04-01", got.FlightDate)
		})
	}
}

func TestAgeUnmarshal(t *testing.T) {
	var body struct {
		Ages []Age `json:"ages"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"ages":[30,"42","7 years","abc",null,12.9," 5"]}`), &body))
	assert.Equal(t, []Age{30, 42, 7, 0, 0, 12, 5}, body.Ages)
}
