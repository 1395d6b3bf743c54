package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/flight-booking/internal/model"
	"github.com/iliyamo/flight-booking/internal/queue"
	"github.com/iliyamo/flight-booking/internal/repository"
)

const publishTimeout = 3 * time.Second

type PassengerInput struct {
	Name   string `json:"name"`
	Age    Age    `json:"age"`
	Gender string `json:"gender"`
}

// CreateBookingRequest is the body of a booking.  PaymentID is optional;
// when RazorpayOrderID and RazorpaySignature are also present the payment
// signature is verified before anything is written.
type CreateBookingRequest struct {
	UserID            string           `json:"user_id"`
	UserEmail         string           `json:"user_email"`
	UserName          string           `json:"user_name"`
	FlightID          string           `json:"flight_id"`
	PaymentID         string           `json:"payment_id,omitempty"`
	RazorpayOrderID   string           `json:"razorpay_order_id,omitempty"`
	RazorpaySignature string           `json:"razorpay_signature,omitempty"`
	FlightFrom        string           `json:"flight_from"`
	FlightTo          string           `json:"flight_to"`
	FlightDate        string           `json:"flight_date"`
	TravelClass       string           `json:"travel_class"`
	TotalAmount       *float64         `json:"total_amount"`
	Passengers        []PassengerInput `json:"passengers"`
}

type RescheduleRequest struct {
	PassengerName string `json:"passenger_name"`
	FlightID      string `json:"flight_id"`
	NewFlightDate string `json:"new_flight_date"`
}

// BookingView is a booking as listed to its owner.
type BookingView struct {
	ID            string            `json:"id"`
	FlightID      string            `json:"flight_id"`
	PaymentID     *string           `json:"payment_id"`
	PaymentStatus bool              `json:"payment_status"`
	CreatedAt     time.Time         `json:"created_at"`
	TravelClass   model.TravelClass `json:"travel_class"`
	TotalAmount   float64           `json:"total_amount"`
	Flight        *model.Flight     `json:"flight"`
	Journey       JourneyView       `json:"journey"`
	Passengers    []model.Passenger `json:"passengers"`
}

type JourneyView struct {
	FlightFrom string `json:"flight_from"`
	FlightTo   string `json:"flight_to"`
	FlightDate string `json:"flight_date"`
}

type BookingService struct {
	log       *zap.Logger
	users     UserStore
	bookings  BookingStore
	seats     *SeatAllocator
	publisher EventPublisher
	payments  PaymentVerifier
	now       func() time.Time
}

// NewBookingService wires the booking use cases.  publisher and payments
// may be nil: events are then not published and signatures not verified.
func NewBookingService(log *zap.Logger, users UserStore, bookings BookingStore, seats *SeatAllocator,
	publisher EventPublisher, payments PaymentVerifier) *BookingService {
	if log == nil {
		log = zap.NewNop()
	}
	if seats == nil {
		seats = NewSeatAllocator(nil)
	}
	return &BookingService{
		log:       log,
		users:     users,
		bookings:  bookings,
		seats:     seats,
		publisher: publisher,
		payments:  payments,
		now:       time.Now,
	}
}

// Create resolves the booking user, allocates seats and stores the booking
// with its passengers in one transaction.  The first passenger is primary.
// A confirmed event is published afterwards; a publish failure is logged
// and does not fail the booking.
func (s *BookingService) Create(ctx context.Context, req CreateBookingRequest) (model.Booking, []model.Passenger, error) {
	const op = "service.CreateBooking"
	logger := s.log.With(zap.String("op", op), zap.String("flight_id", req.FlightID))

	class, ok := model.ParseTravelClass(req.TravelClass)
	if !ok || req.TotalAmount == nil || len(req.Passengers) == 0 {
		return model.Booking{}, nil, ErrInvalidInput
	}

	if req.PaymentID != "" && req.RazorpayOrderID != "" && req.RazorpaySignature != "" && s.payments != nil {
		if err := s.payments.VerifyPaymentSignature(req.RazorpayOrderID, req.PaymentID, req.RazorpaySignature); err != nil {
			logger.Warn("payment signature rejected", zap.String("payment_id", req.PaymentID), zap.Error(err))
			return model.Booking{}, nil, err
		}
	}

	seats, err := s.seats.Allocate(len(req.Passengers))
	if err != nil {
		return model.Booking{}, nil, err
	}

	userID, err := s.users.EnsureCustomer(ctx, req.UserID, req.UserEmail, req.UserName)
	if err != nil {
		return model.Booking{}, nil, fmt.Errorf("failed to create user: %w", err)
	}

	b := model.Booking{
		UserID:        userID,
		FlightID:      req.FlightID,
		PaymentStatus: true,
		FlightFrom:    req.FlightFrom,
		FlightTo:      req.FlightTo,
		FlightDate:    req.FlightDate,
		TravelClass:   class,
		TotalAmount:   *req.TotalAmount,
	}
	if req.PaymentID != "" {
		pid := req.PaymentID
		b.PaymentID = &pid
	}
	passengers := make([]model.Passenger, len(req.Passengers))
	for i, p := range req.Passengers {
		passengers[i] = model.Passenger{
			Name:       p.Name,
			Age:        int(p.Age),
			Gender:     p.Gender,
			SeatNumber: seats[i],
			IsPrimary:  i == 0,
		}
	}

	if err := s.bookings.CreateWithPassengers(ctx, &b, passengers); err != nil {
		return model.Booking{}, nil, fmt.Errorf("failed to create booking: %w", err)
	}
	logger.Info("booking created", zap.String("booking_id", b.ID), zap.Int("passengers", len(passengers)))

	s.publish(ctx, b, req, passengers)
	return b, passengers, nil
}

func (s *BookingService) publish(ctx context.Context, b model.Booking, req CreateBookingRequest, passengers []model.Passenger) {
	if s.publisher == nil {
		return
	}
	ev := queue.BookingConfirmedEvent{
		BookingID:   b.ID,
		UserID:      b.UserID,
		UserEmail:   req.UserEmail,
		UserName:    req.UserName,
		FlightID:    b.FlightID,
		FlightFrom:  b.FlightFrom,
		FlightTo:    b.FlightTo,
		FlightDate:  b.FlightDate,
		TravelClass: string(b.TravelClass),
		TotalAmount: b.TotalAmount,
		PaymentID:   req.PaymentID,
		ConfirmedAt: s.now().UTC().Format(time.RFC3339),
	}
	for _, p := range passengers {
		ev.Passengers = append(ev.Passengers, p.Name)
		ev.SeatNumbers = append(ev.SeatNumbers, p.SeatNumber)
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.PublishBookingConfirmed(pctx, ev); err != nil {
		s.log.Warn("booking event not published", zap.String("booking_id", b.ID), zap.Error(err))
	}
}

// ListByEmail returns the bookings of the user owning email, newest first.
func (s *BookingService) ListByEmail(ctx context.Context, email string) ([]BookingView, error) {
	if strings.TrimSpace(email) == "" {
		return nil, ErrInvalidInput
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return s.ListByUser(ctx, u.ID)
}

func (s *BookingService) ListByUser(ctx context.Context, userID string) ([]BookingView, error) {
	details, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	views := make([]BookingView, 0, len(details))
	for _, d := range details {
		views = append(views, BookingView{
			ID:            d.ID,
			FlightID:      d.FlightID,
			PaymentID:     d.PaymentID,
			PaymentStatus: d.PaymentStatus,
			CreatedAt:     d.CreatedAt,
			TravelClass:   d.TravelClass,
			TotalAmount:   d.TotalAmount,
			Flight:        d.Flight,
			Journey:       JourneyView{FlightFrom: d.FlightFrom, FlightTo: d.FlightTo, FlightDate: d.FlightDate},
			Passengers:    d.Passengers,
		})
	}
	return views, nil
}

// Reschedule moves the booking of the first passenger whose name matches
// req.PassengerName (SQL LIKE) to a new date.  The booking must be on
// req.FlightID.
func (s *BookingService) Reschedule(ctx context.Context, req RescheduleRequest) (model.Booking, error) {
	if req.PassengerName == "" || req.FlightID == "" || req.NewFlightDate == "" {
		return model.Booking{}, ErrInvalidInput
	}
	bookingID, err := s.bookings.FindBookingIDByPassenger(ctx, req.PassengerName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Booking{}, ErrPassengerNotFound
		}
		return model.Booking{}, fmt.Errorf("find passenger: %w", err)
	}
	ok, err := s.bookings.ExistsOnFlight(ctx, bookingID, req.FlightID)
	if err != nil {
		return model.Booking{}, fmt.Errorf("find booking: %w", err)
	}
	if !ok {
		return model.Booking{}, ErrBookingMismatch
	}
	updated, err := s.bookings.UpdateFlightDate(ctx, bookingID, req.NewFlightDate)
	if err != nil {
		return model.Booking{}, fmt.Errorf("failed to update booking date: %w", err)
	}
	s.log.Info("booking rescheduled", zap.String("booking_id", bookingID), zap.String("flight_date", req.NewFlightDate))
	return updated, nil
}

// Age accepts a passenger age sent either as a JSON number or a string.
// Strings are read like parseInt: leading digits count, anything else
// yields zero.
type Age int

func (a *Age) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*a = 0
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	*a = Age(ParseAge(s))
	return nil
}

// ParseAge returns the integer formed by the leading digits of s after
// optional whitespace and sign.
func ParseAge(s string) int {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	if neg {
		return -n
	}
	return n
}
