package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const bookingLogFile = "booking.log"

// Notifier is told about every confirmed booking after it has been logged.
type Notifier interface {
	BookingConfirmed(ctx context.Context, ev BookingConfirmedEvent) error
}

// Consumer listens on the booking queue and appends one line per event to
// <logDir>/booking.log.  A nil Notifier disables notifications.
type Consumer struct {
	url      string
	queue    string
	logDir   string
	notifier Notifier
	log      *zap.Logger

	mu sync.Mutex // serialises writes to the log file
}

func NewConsumer(url, queue, logDir string, notifier Notifier, log *zap.Logger) *Consumer {
	if log == nil {
		log = zap.NewNop()
	}
	if logDir == "" {
		logDir = "logs"
	}
	return &Consumer{url: url, queue: queue, logDir: logDir, notifier: notifier, log: log}
}

// Run connects to RabbitMQ, declares the queue and consumes messages until
// ctx is cancelled.  Dial failures and closed delivery channels trigger a
// reconnect with exponential backoff capped at 30s.  Messages that cannot
// be handled are rejected without requeue.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("booking consumer dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("booking consumer loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("booking consumer set QoS failed", zap.Error(err))
	}
	if _, err := declareQueue(ch, c.queue); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := c.HandleMessage(ctx, d.Body); err != nil {
			c.log.Error("booking consumer handle message failed", zap.Error(err))
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// HandleMessage decodes one delivery body, appends it to the booking log
// and notifies the booker.  A notification failure is logged only, since
// the booking itself is already recorded.
func (c *Consumer) HandleMessage(ctx context.Context, body []byte) error {
	var ev BookingConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := c.appendLine(FormatLogLine(ev)); err != nil {
		return err
	}
	if c.notifier != nil {
		if err := c.notifier.BookingConfirmed(ctx, ev); err != nil {
			c.log.Warn("booking notification failed", zap.String("booking_id", ev.BookingID), zap.Error(err))
		}
	}
	return nil
}

func (c *Consumer) appendLine(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.logDir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(c.logDir, bookingLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLogLine renders ev as a single human-friendly log line ending in a
// newline.
func FormatLogLine(ev BookingConfirmedEvent) string {
	seats := "[" + strings.Join(ev.SeatNumbers, ",") + "]"
	return fmt.Sprintf("[%s] Booking confirmed | booking_id=%s | user_id=%s | flight_id=%s | route=%s-%s | date=%s | class=%s | passengers=%d | total=%.2f | seats=%s\n",
		ev.ConfirmedAt, ev.BookingID, ev.UserID, ev.FlightID, ev.FlightFrom, ev.FlightTo, ev.FlightDate,
		ev.TravelClass, len(ev.Passengers), ev.TotalAmount, seats)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
