package sequence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Querier is the single-row query surface shared by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository hands out monotonically increasing values per partition key.
type Repository interface {
	NextSequence(ctx context.Context, partitionKey string) (int64, error)
}

type PostgresRepository struct {
	q Querier
}

func NewPostgresRepository(q Querier) *PostgresRepository {
	return &PostgresRepository{q: q}
}

func (r *PostgresRepository) NextSequence(ctx context.Context, partitionKey string) (int64, error) {
	return Next(ctx, r.q, partitionKey)
}

// Next claims the next value for partitionKey on the caller's executor. Passing
// a pgx.Tx keeps the claim inside that transaction, so a rollback releases it.
// The single-statement upsert makes concurrent claims serialize on the row
// without gaps from read-modify-write races.
func Next(ctx context.Context, q Querier, partitionKey string) (int64, error) {
	if partitionKey == "" {
		return 0, fmt.Errorf("partition key is required")
	}

	var next int64
	err := q.QueryRow(ctx, `
		INSERT INTO sequences (partition_key, last_value, updated_at)
		VALUES ($1, 1, now())
		ON CONFLICT (partition_key)
		DO UPDATE SET last_value = sequences.last_value + 1, updated_at = now()
		RETURNING last_value
	`, partitionKey).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return next, nil
}
