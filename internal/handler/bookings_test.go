package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/flight-booking/internal/model"
	"github.com/iliyamo/flight-booking/internal/payment"
	"github.com/iliyamo/flight-booking/internal/service"
	"github.com/iliyamo/flight-booking/internal/validation"
)

type fakeBookings struct {
	createErr   error
	created     *service.CreateBookingRequest
	listErr     error
	views       []service.BookingView
	listedUser  string
	rescheduled model.Booking
	rescheduErr error
}

func (f *fakeBookings) Create(_ context.Context, req service.CreateBookingRequest) (model.Booking, []model.Passenger, error) {
	f.created = &req
	if f.createErr != nil {
		return model.Booking{}, nil, f.createErr
	}
	return model.Booking{ID: "b-1"}, nil, nil
}

func (f *fakeBookings) ListByEmail(_ context.Context, email string) ([]service.BookingView, error) {
	return f.views, f.listErr
}

func (f *fakeBookings) ListByUser(_ context.Context, userID string) ([]service.BookingView, error) {
	f.listedUser = userID
	return f.views, f.listErr
}

func (f *fakeBookings) Reschedule(_ context.Context, req service.RescheduleRequest) (model.Booking, error) {
	return f.rescheduled, f.rescheduErr
}

const validBooking = `{
	"user_id": "u-1", "user_email": "asha@example.com", "user_name": "Asha",
	"flight_id": "f-1", "flight_from": "DEL", "flight_to": "BOM", "flight_date": "2025-03-01",
	"travel_class": "economy", "total_amount": 0,
	"passengers": [{"name": "Asha", "age": "31", "gender": "female"}, {"name": "Ravi", "age": 4, "gender": "male"}]
}`

func newBookingHandler(f *fakeBookings) *BookingHandler {
	return NewBookingHandler(f, validation.MustLoad(validation.Booking))
}

func TestCreateBooking(t *testing.T) {
	f := &fakeBookings{}
	rec := call(t, newBookingHandler(f).Create, http.MethodPost, "/v1/bookings", validBooking)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"Booking successful","booking_id":"b-1"}`, rec.Body.String())
	require.NotNil(t, f.created)
	require.NotNil(t, f.created.TotalAmount)
	assert.Equal(t, 0.0, *f.created.TotalAmount)
	assert.Equal(t, service.Age(31), f.created.Passengers[0].Age)
	assert.Equal(t, service.Age(4), f.created.Passengers[1].Age)
}

func TestCreateBookingMissingFields(t *testing.T) {
	f := &fakeBookings{}
	rec := call(t, newBookingHandler(f).Create, http.MethodPost, "/v1/bookings",
		`{"user_id":"u-1","user_email":"","passengers":[],"total_amount":0}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Missing required fields.", body["message"])
	received := body["received"].(map[string]any)
	assert.Equal(t, true, received["user_id"])
	assert.Equal(t, false, received["user_email"])
	assert.Equal(t, false, received["passengers"])
	assert.Equal(t, true, received["total_amount"])
	assert.Nil(t, f.created)
}

func TestCreateBookingErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"bad signature", payment.ErrInvalidSignature, http.StatusBadRequest},
		{"too many passengers", service.ErrTooManyPassengers, http.StatusBadRequest},
		{"database", fmt.Errorf("failed to create booking: %w", errors.New("deadlock")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(t, newBookingHandler(&fakeBookings{createErr: tt.err}).Create, http.MethodPost, "/v1/bookings", validBooking)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestListBookingsByEmail(t *testing.T) {
	f := &fakeBookings{views: []service.BookingView{{ID: "b-1", Passengers: []model.Passenger{}}}}
	h := newBookingHandler(f)

	rec := call(t, h.ListByEmail, http.MethodGet, "/v1/bookings?email=asha@example.com", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["bookings"], 1)

	rec = call(t, h.ListByEmail, http.MethodGet, "/v1/bookings", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email is required", decode(t, rec)["message"])

	f.listErr = service.ErrUserNotFound
	rec = call(t, h.ListByEmail, http.MethodGet, "/v1/bookings?email=x@example.com", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decode(t, rec)["message"])
}

func TestMyBookings(t *testing.T) {
	f := &fakeBookings{views: []service.BookingView{}}
	h := newBookingHandler(f)

	rec := call(t, h.Mine, http.MethodGet, "/v1/my-bookings", "", withUser("u-9", model.RoleCustomer))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"bookings":[]}`, rec.Body.String())
	assert.Equal(t, "u-9", f.listedUser)

	rec = call(t, h.Mine, http.MethodGet, "/v1/my-bookings", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReschedule(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"ok", nil, http.StatusOK, "Booking date updated successfully"},
		{"missing", service.ErrInvalidInput, http.StatusBadRequest, "Missing required fields"},
		{"no passenger", service.ErrPassengerNotFound, http.StatusNotFound, "Passenger not found for the provided name"},
		{"other flight", service.ErrBookingMismatch, http.StatusNotFound, "Booking not found for given passenger and flight"},
		{"update failed", errors.New("boom"), http.StatusInternalServerError, "Failed to update booking date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeBookings{rescheduled: model.Booking{ID: "b-1", FlightDate: "2025-04-02"}, rescheduErr: tt.err}
			rec := call(t, newBookingHandler(f).Reschedule, http.MethodPatch, "/v1/bookings/reschedule",
				`{"passenger_name":"Asha","flight_id":"f-1","new_flight_date":"2025-04-02"}`)
			assert.Equal(t, tt.code, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.message, body["message"])
			if tt.err == nil {
				assert.Equal(t, "2025-04-02", body["updatedBooking"].(map[string]any)["flight_date"])
			}
		})
	}
}
