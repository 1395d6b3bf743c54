// Package notify delivers booking confirmations to customers by e-mail.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"

	"github.com/iliyamo/flight-booking/internal/config"
	"github.com/iliyamo/flight-booking/internal/queue"
)

// EmailSender is the subset of the SES client the mailer needs.
type EmailSender interface {
	SendEmailWithContext(ctx aws.Context, in *ses.SendEmailInput, opts ...request.Option) (*ses.SendEmailOutput, error)
}

// Mailer sends one plain-text e-mail per confirmed booking.
type Mailer struct {
	client EmailSender
	sender string
}

func NewMailer(client EmailSender, sender string) *Mailer {
	return &Mailer{client: client, sender: sender}
}

// NewSESMailer builds a Mailer backed by SES in cfg.Region.  Credentials are
// resolved by the default AWS provider chain.
func NewSESMailer(cfg config.NotifyConfig) (*Mailer, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(cfg.Region)})
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	return NewMailer(ses.New(sess), cfg.Sender), nil
}

const subject = "Your flight booking is confirmed"

// BookingConfirmed e-mails the booker.  Events without an address are
// skipped.
func (m *Mailer) BookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error {
	if strings.TrimSpace(ev.UserEmail) == "" {
		return nil
	}
	_, err := m.client.SendEmailWithContext(ctx, &ses.SendEmailInput{
		Destination: &ses.Destination{ToAddresses: []*string{aws.String(ev.UserEmail)}},
		Message: &ses.Message{
			Body: &ses.Body{
				Text: &ses.Content{Charset: aws.String("UTF-8"), Data: aws.String(Body(ev))},
			},
			Subject: &ses.Content{Charset: aws.String("UTF-8"), Data: aws.String(subject)},
		},
		Source: aws.String(m.sender),
	})
	return err
}

var bodyTemplate = `Hello %s,

Your booking %s is confirmed.
Flight %s from %s to %s on %s, %s class.
Seats: %s
Total paid: %.2f
`

// Body renders the plain-text e-mail for ev.
func Body(ev queue.BookingConfirmedEvent) string {
	name := ev.UserName
	if name == "" {
		name = "traveller"
	}
	return fmt.Sprintf(bodyTemplate, name, ev.BookingID, ev.FlightID, ev.FlightFrom, ev.FlightTo,
		ev.FlightDate, ev.TravelClass, strings.Join(ev.SeatNumbers, ", "), ev.TotalAmount)
}
