// Package messaging adapts the domain event publisher port onto Kafka.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/witalo/prestoras/pkg/events"
	pkgkafka "github.com/witalo/prestoras/pkg/kafka"
)

// KafkaEventPublisher implements port.EventPublisher by writing events to
// Kafka. Events are keyed by aggregate ID so all events of one loan land
// on the same partition in order.
type KafkaEventPublisher struct {
	producer *pkgkafka.Producer
	logger   *slog.Logger
}

// NewKafkaEventPublisher creates a publisher targeting the given producer.
func NewKafkaEventPublisher(producer *pkgkafka.Producer, logger *slog.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		producer: producer,
		logger:   logger,
	}
}

// Publish serialises and sends domain events to Kafka.
func (p *KafkaEventPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	messages := make([]pkgkafka.Message, 0, len(evts))
	for _, evt := range evts {
		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", evt.EventType(), err)
		}

		p.logger.DebugContext(ctx, "publishing domain event",
			"event_type", evt.EventType(),
			"aggregate_id", evt.AggregateID(),
			"company_id", evt.CompanyID(),
			"topic", p.producer.Topic(),
		)

		messages = append(messages, pkgkafka.Message{
			Key:   []byte(evt.AggregateID()),
			Value: payload,
			Headers: map[string]string{
				"event_type": evt.EventType(),
				"event_id":   evt.EventID(),
				"company_id": evt.CompanyID(),
			},
		})
	}

	if len(messages) == 0 {
		return nil
	}

	if err := p.producer.Publish(ctx, messages...); err != nil {
		return fmt.Errorf("publish events: %w", err)
	}
	return nil
}
