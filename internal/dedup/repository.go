package dedup

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the read surface shared by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Executor is the write surface; consumers pass their handler transaction so
// the checkpoint commits atomically with the handler's own writes.
type Executor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Repository tracks, per consumer and partition, the highest event sequence
// already processed. Redelivered or out-of-order events with a sequence at or
// below the checkpoint are duplicates.
type Repository interface {
	LastSequence(ctx context.Context, consumerName, partitionKey string) (int64, bool, error)
	SetLastSequence(ctx context.Context, ex Executor, consumerName, partitionKey string, seq int64) error
}

type PostgresRepository struct {
	q Querier
}

func NewPostgresRepository(q Querier) *PostgresRepository {
	return &PostgresRepository{q: q}
}

// LastSequence returns the checkpoint for the consumer and partition. The
// second return is false when no event from this partition was seen yet.
func (r *PostgresRepository) LastSequence(ctx context.Context, consumerName, partitionKey string) (int64, bool, error) {
	var last int64
	err := r.q.QueryRow(ctx, `
		SELECT last_sequence
		FROM event_checkpoints
		WHERE consumer_name = $1 AND partition_key = $2
	`, consumerName, partitionKey).Scan(&last)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("select last_sequence: %w", err)
	}
	return last, true, nil
}

// SetLastSequence advances the checkpoint. GREATEST keeps a late duplicate
// from dragging the checkpoint backwards.
func (r *PostgresRepository) SetLastSequence(ctx context.Context, ex Executor, consumerName, partitionKey string, seq int64) error {
	_, err := ex.Exec(ctx, `
		INSERT INTO event_checkpoints (consumer_name, partition_key, last_sequence, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (consumer_name, partition_key)
		DO UPDATE SET
			last_sequence = GREATEST(event_checkpoints.last_sequence, EXCLUDED.last_sequence),
			updated_at = now()
	`, consumerName, partitionKey, seq)
	if err != nil {
		return fmt.Errorf("upsert last_sequence: %w", err)
	}
	return nil
}
