package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/flight-booking/internal/queue"
)

type fakeSES struct {
	in  *ses.SendEmailInput
	err error
}

func (f *fakeSES) SendEmailWithContext(_ aws.Context, in *ses.SendEmailInput, _ ...request.Option) (*ses.SendEmailOutput, error) {
	f.in = in
	return &ses.SendEmailOutput{}, f.err
}

func TestMailerBookingConfirmed(t *testing.T) {
	client := &fakeSES{}
	m := NewMailer(client, "bookings@example.com")
	ev := queue.BookingConfirmedEvent{
		BookingID: "b1", UserEmail: "ana@example.com", UserName: "Ana", FlightID: "fl1",
		FlightFrom: "DEL", FlightTo: "BOM", FlightDate: "2026-03-01", TravelClass: "economy",
		SeatNumbers: []string{"A1", "B2"}, TotalAmount: 1234.5,
	}

	require.NoError(t, m.BookingConfirmed(context.Background(), ev))
	require.NotNil(t, client.in)
	assert.Equal(t, "bookings@example.com", aws.StringValue(client.in.Source))
	assert.Equal(t, []string{"ana@example.com"}, aws.StringValueSlice(client.in.Destination.ToAddresses))
	body := aws.StringValue(client.in.Message.Body.Text.Data)
	assert.Contains(t, body, "Hello Ana")
	assert.Contains(t, body, "Seats: A1, B2")
	assert.Contains(t, body, "Total paid: 1234.50")
}

func TestMailerSkipsMissingAddress(t *testing.T) {
	client := &fakeSES{}
	require.NoError(t, NewMailer(client, "x@example.com").BookingConfirmed(context.Background(), queue.BookingConfirmedEvent{}))
	assert.Nil(t, client.in)
}

func TestMailerPropagatesError(t *testing.T) {
	client := &fakeSES{err: errors.New("throttled")}
	err := NewMailer(client, "x@example.com").BookingConfirmed(context.Background(), queue.BookingConfirmedEvent{UserEmail: "a@b.c"})
	assert.EqualError(t, err, "throttled")
}
