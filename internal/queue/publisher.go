package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/flight-booking/internal/config"
)

// Publisher sends BookingConfirmedEvent messages to a durable queue.  Each
// call dials the broker, so a broker outage only fails the publish and never
// the process.
type Publisher struct {
	url   string
	queue string
	log   *zap.Logger
}

func NewPublisher(cfg config.RabbitMQConfig, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{url: cfg.URL, queue: cfg.Queue, log: log}
}

// PublishBookingConfirmed publishes event as a persistent JSON message.
// Errors are logged and returned so the caller can choose to ignore them.
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, event BookingConfirmedEvent) error {
	logger := p.log.With(zap.String("queue", p.queue), zap.String("booking_id", event.BookingID))

	conn, err := amqp.Dial(p.url)
	if err != nil {
		logger.Warn("rabbitmq dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.Warn("rabbitmq channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := declareQueue(ch, p.queue); err != nil {
		logger.Warn("rabbitmq queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	// default exchange, routing key = queue name
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		logger.Warn("rabbitmq publish failed", zap.Error(err))
		return err
	}
	logger.Debug("booking event published")
	return nil
}

func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
}
