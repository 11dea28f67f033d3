package messaging

import (
	"context"
	"log/slog"
	"time"

	"github.com/witalo/prestoras/pkg/events"
	pkgkafka "github.com/witalo/prestoras/pkg/kafka"
)

// OutboxPublisher implements port.EventPublisher by writing events to the
// database outbox instead of straight to the broker. The relay drains the
// outbox to Kafka, so publishing survives broker outages.
type OutboxPublisher struct {
	outbox events.OutboxRepository
}

// NewOutboxPublisher creates a publisher backed by the given outbox.
func NewOutboxPublisher(outbox events.OutboxRepository) *OutboxPublisher {
	return &OutboxPublisher{outbox: outbox}
}

// Publish stores domain events as outbox entries.
func (p *OutboxPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	entries := make([]events.OutboxEntry, 0, len(evts))
	for _, evt := range evts {
		entries = append(entries, events.NewOutboxEntry(evt))
	}
	return p.outbox.Store(ctx, entries)
}

// OutboxRelay drains unpublished outbox entries to Kafka.
type OutboxRelay struct {
	outbox    events.OutboxRepository
	producer  *pkgkafka.Producer
	batchSize int
	interval  time.Duration
	logger    *slog.Logger
}

// NewOutboxRelay creates a relay polling the outbox on the given interval.
func NewOutboxRelay(
	outbox events.OutboxRepository,
	producer *pkgkafka.Producer,
	interval time.Duration,
	logger *slog.Logger,
) *OutboxRelay {
	return &OutboxRelay{
		outbox:    outbox,
		producer:  producer,
		batchSize: 100,
		interval:  interval,
		logger:    logger,
	}
}

// Run polls until the context is cancelled. Delivery failures are logged
// and retried on the next tick; entries are only marked published after the
// broker accepted them, so delivery is at-least-once.
func (r *OutboxRelay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.drain(ctx); err != nil && ctx.Err() == nil {
				r.logger.Error("outbox relay drain failed", "error", err)
			}
		}
	}
}

func (r *OutboxRelay) drain(ctx context.Context) error {
	for {
		entries, err := r.outbox.FetchUnpublished(ctx, r.batchSize)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		messages := make([]pkgkafka.Message, 0, len(entries))
		ids := make([]string, 0, len(entries))
		for _, entry := range entries {
			messages = append(messages, pkgkafka.Message{
				Key:   []byte(entry.AggregateID),
				Value: entry.Payload,
				Headers: map[string]string{
					"event_type": entry.EventType,
					"event_id":   entry.ID,
				},
			})
			ids = append(ids, entry.ID)
		}

		if err := r.producer.Publish(ctx, messages...); err != nil {
			return err
		}
		if err := r.outbox.MarkPublished(ctx, ids); err != nil {
			return err
		}

		if len(entries) < r.batchSize {
			return nil
		}
	}
}
