package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/witalo/prestoras/pkg/events"
	pkgpostgres "github.com/witalo/prestoras/pkg/postgres"
)

// OutboxRepo implements events.OutboxRepository. Events are stored here in
// the same database as the aggregates and relayed to Kafka asynchronously,
// so a broker outage never loses an event.
type OutboxRepo struct {
	pool *pgxpool.Pool
}

// NewOutboxRepo creates a new PostgreSQL-backed outbox repository.
func NewOutboxRepo(pool *pgxpool.Pool) *OutboxRepo {
	return &OutboxRepo{pool: pool}
}

// Store appends outbox entries.
func (r *OutboxRepo) Store(ctx context.Context, entries []events.OutboxEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			INSERT INTO event_outbox (id, aggregate_id, aggregate_type, event_type, payload, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)
			ON CONFLICT (id) DO NOTHING
		`
		for _, entry := range entries {
			_, err := tx.Exec(ctx, query,
				entry.ID, entry.AggregateID, entry.AggregateType,
				entry.EventType, entry.Payload, entry.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("store outbox entry %s: %w", entry.ID, err)
			}
		}
		return nil
	})
}

// FetchUnpublished returns the oldest unpublished entries, skipping rows
// another relay instance holds.
func (r *OutboxRepo) FetchUnpublished(ctx context.Context, batchSize int) ([]events.OutboxEntry, error) {
	query := `
		SELECT id, aggregate_id, aggregate_type, event_type, payload, created_at, published_at
		FROM event_outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`
	rows, err := r.pool.Query(ctx, query, batchSize)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var entries []events.OutboxEntry
	for rows.Next() {
		var entry events.OutboxEntry
		if err := rows.Scan(
			&entry.ID, &entry.AggregateID, &entry.AggregateType,
			&entry.EventType, &entry.Payload, &entry.CreatedAt, &entry.PublishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// MarkPublished stamps entries as delivered.
func (r *OutboxRepo) MarkPublished(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE event_outbox SET published_at = now() WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}
