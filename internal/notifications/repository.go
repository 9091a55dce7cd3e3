package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("notification not found")

const defaultListLimit = 50

// DBPool matches the methods from *pgxpool.Pool that the repository uses.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Executor lets Insert run on the caller's transaction, so the consumer
// commits the notification together with its dedup checkpoint.
type Executor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	Insert(ctx context.Context, ex Executor, n *Notification) error
	List(ctx context.Context, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, id string) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Insert(ctx context.Context, ex Executor, n *Notification) error {
	var orderID, productID any
	if n.OrderID != "" {
		orderID = n.OrderID
	}
	if n.ProductID != "" {
		productID = n.ProductID
	}

	_, err := ex.Exec(ctx, `
		INSERT INTO notifications (id, kind, message, order_id, product_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, now())
	`, n.ID, n.Kind, n.Message, orderID, productID)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// List returns the feed, unread entries first, newest first within each
// group.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, kind, message, order_id, product_id, read, created_at
		FROM notifications
		ORDER BY read, created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		var orderID, productID *string
		if err := rows.Scan(&n.ID, &n.Kind, &n.Message, &orderID, &productID, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		if orderID != nil {
			n.OrderID = *orderID
		}
		if productID != nil {
			n.ProductID = *productID
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) MarkRead(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
