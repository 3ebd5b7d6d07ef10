package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"resume-ranker/config"
	"resume-ranker/domain"
)

const RoutingKeyResumeAnalyzed = "resume.analyzed"

// EventPublisher announces stored resumes to downstream consumers.
type EventPublisher interface {
	PublishResumeAnalyzed(ctx context.Context, event domain.ResumeAnalyzedEvent) error
	Close() error
}

// NewEventPublisher connects to RabbitMQ, or returns a publisher that drops
// every event when no URL is configured.
func NewEventPublisher(cfg config.RabbitMQConfig, log Logger) (EventPublisher, error) {
	if cfg.URL == "" {
		log.Info("rabbitmq disabled, events will not be published", nil)
		return NopPublisher{}, nil
	}
	return NewRabbitMQ(cfg, log)
}

type NopPublisher struct{}

func (NopPublisher) PublishResumeAnalyzed(context.Context, domain.ResumeAnalyzedEvent) error {
	return nil
}

func (NopPublisher) Close() error { return nil }

type RabbitMQ struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewRabbitMQ dials the broker and declares a durable topic exchange.
func NewRabbitMQ(cfg config.RabbitMQConfig, log Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // kind
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	log.Info("connected to rabbitmq", map[string]interface{}{"exchange": cfg.Exchange})
	return &RabbitMQ{conn: conn, channel: ch, exchange: cfg.Exchange}, nil
}

func (r *RabbitMQ) PublishResumeAnalyzed(ctx context.Context, event domain.ResumeAnalyzedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.channel.PublishWithContext(
		ctx,
		r.exchange,
		RoutingKeyResumeAnalyzed,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ResumeID,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

func (r *RabbitMQ) Close() error {
	if err := r.channel.Close(); err != nil {
		r.conn.Close()
		return err
	}
	return r.conn.Close()
}
