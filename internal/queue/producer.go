// internal/queue/producer.go
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"leadpulse-service/internal/domain/call"

	amqp "github.com/rabbitmq/amqp091-go"
)

// CallEventPayload wraps a provider status callback with the organization it
// belongs to, resolved from the webhook URL.
type CallEventPayload struct {
	OrgID    int64               `json:"org_id"`
	Callback call.ProviderStatusCallback `json:"callback"`
}

type Producer struct {
	ch *amqp.Channel
}

func NewProducer(r *RabbitMQ) *Producer {
	return &Producer{ch: r.Ch}
}

// PublishCallEvent queues a completed-call callback for ingestion.
func (p *Producer) PublishCallEvent(ctx context.Context, payload CallEventPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode call event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx, ExchangeName, RoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		return fmt.Errorf("failed to publish call event: %w", err)
	}

	return nil
}
