package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/usecase"
)

// RabbitProducer publishes checkout lifecycle events to a topic exchange.
// The routing key is the event type (checkout.prepared, checkout.paid, ...),
// so downstream consumers bind to exactly the transitions they care about.
type RabbitProducer struct {
	ch       *amqp.Channel
	exchange string
}

// NewRabbitProducer declares the exchange once at startup and enables
// publisher confirms.
func NewRabbitProducer(ch *amqp.Channel, exchange string) (*RabbitProducer, error) {
	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable confirm mode: %w", err)
	}
	return &RabbitProducer{ch: ch, exchange: exchange}, nil
}

func (p *RabbitProducer) Publish(ctx context.Context, msg usecase.CheckoutEventMsg) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         msg.Type,
		Body:         body,
	}
	if err := p.ch.PublishWithContext(
		ctx,
		p.exchange,
		msg.Type, // routing key
		false,    // mandatory
		false,    // immediate
		pub,
	); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Type, err)
	}
	return nil
}

var _ usecase.EventPublisher = (*RabbitProducer)(nil)
