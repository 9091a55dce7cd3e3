package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/guntanalaganesh-web/shoe-store/internal/sequence"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// LockMode selects how checkout guards concurrent stock decrements.
type LockMode string

const (
	// LockRow takes FOR UPDATE locks on the buckets being decremented, so
	// concurrent checkouts serialize per bucket.
	LockRow LockMode = "row"
	// LockNone revalidates without locks. Two concurrent checkouts may both
	// pass validation and oversell; kept for compatibility testing.
	LockNone LockMode = "none"
)

// DBPool matches the methods from *pgxpool.Pool that the repository uses.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type Repository interface {
	PlaceOrder(ctx context.Context, o *Order) ([]DepletedBucket, error)
	Cancel(ctx context.Context, orderID, userID string) (*Order, error)
	UpdateStatus(ctx context.Context, orderID string, status Status, trackingNumber, note string) (*Order, Status, error)
	Get(ctx context.Context, id string) (*Order, error)
	GetForUser(ctx context.Context, id, userID string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListByStatus(ctx context.Context, status Status) ([]Order, error)
}

type PostgresRepository struct {
	pool DBPool
	lock LockMode
}

func NewPostgresRepository(pool DBPool, lock LockMode) *PostgresRepository {
	if lock != LockNone {
		lock = LockRow
	}
	return &PostgresRepository{pool: pool, lock: lock}
}

const orderColumns = `id, order_number, user_id, status, subtotal, shipping_cost, tax, total,
		payment_method, payment_status, shipping_method, tracking_number,
		shipping_address, billing_address, created_at, updated_at`

// PlaceOrder runs the whole checkout write path in one transaction: per-line
// stock revalidation and decrement, order number allocation from the monthly
// counter, and the order, item and history inserts. A shortfall on any line
// aborts the transaction, so no partial decrement ever survives. The
// returned buckets are the ones this order drained to zero.
func (r *PostgresRepository) PlaceOrder(ctx context.Context, o *Order) ([]DepletedBucket, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var depleted []DepletedBucket
	for _, it := range o.Items {
		left, err := r.decrementBucket(ctx, tx, it)
		if err != nil {
			return nil, err
		}
		if left == 0 {
			depleted = append(depleted, DepletedBucket{ProductID: it.ProductID, Name: it.Name, Size: it.Size})
		}
	}

	now := time.Now().UTC()
	seq, err := sequence.Next(ctx, tx, MonthKey(now))
	if err != nil {
		return nil, err
	}
	o.OrderNumber = FormatOrderNumber(now, seq)

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (id, order_number, user_id, status, subtotal, shipping_cost, tax, total,
			payment_method, payment_status, shipping_method, tracking_number,
			shipping_address, billing_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, '', $12, $13, now(), now())
		RETURNING created_at, updated_at
	`, o.ID, o.OrderNumber, o.UserID, o.Status, o.Subtotal, o.ShippingCost, o.Tax, o.Total,
		o.PaymentMethod, o.PaymentStatus, o.ShippingMethod, o.ShippingAddress, o.BillingAddress).
		Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for i, it := range o.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, position, product_id, name, brand, slug, image_url, price, size, color, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, uuid.NewString(), o.ID, i, it.ProductID, it.Name, it.Brand, it.Slug, it.ImageURL,
			it.Price, it.Size, it.Color, it.Quantity)
		if err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := appendHistory(ctx, tx, o.ID, o.Status, "Order placed"); err != nil {
		return nil, err
	}
	o.History = append(o.History, HistoryEntry{Status: o.Status, Note: "Order placed", CreatedAt: o.CreatedAt})

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit checkout: %w", err)
	}
	return depleted, nil
}

// decrementBucket revalidates one line against the live bucket and takes the
// units. Returns the stock left in the bucket afterwards.
func (r *PostgresRepository) decrementBucket(ctx context.Context, tx pgx.Tx, it Item) (int, error) {
	sel := `SELECT stock FROM product_sizes WHERE product_id=$1 AND size=$2`
	if r.lock == LockRow {
		sel += ` FOR UPDATE`
	}

	var stock int
	err := tx.QueryRow(ctx, sel, it.ProductID, it.Size).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, &InsufficientStockError{
			ProductID: it.ProductID, Name: it.Name, Size: it.Size,
			Requested: it.Quantity, Available: 0,
		}
	}
	if err != nil {
		return 0, fmt.Errorf("read bucket: %w", err)
	}
	if stock < it.Quantity {
		return 0, &InsufficientStockError{
			ProductID: it.ProductID, Name: it.Name, Size: it.Size,
			Requested: it.Quantity, Available: stock,
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE product_sizes SET stock = stock - $3
		WHERE product_id=$1 AND size=$2
	`, it.ProductID, it.Size, it.Quantity); err != nil {
		return 0, fmt.Errorf("decrement bucket: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE products SET total_stock = total_stock - $2, sold_count = sold_count + $2, updated_at = now()
		WHERE id=$1
	`, it.ProductID, it.Quantity); err != nil {
		return 0, fmt.Errorf("update product counters: %w", err)
	}
	return stock - it.Quantity, nil
}

// Cancel flips a pending or confirmed order owned by userID to cancelled and
// puts every line's units back, all in one transaction. A bucket that was
// deleted since purchase is recreated with the restored quantity.
func (r *PostgresRepository) Cancel(ctx context.Context, orderID, userID string) (*Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status Status
	err = tx.QueryRow(ctx, `
		SELECT status FROM orders WHERE id=$1 AND user_id=$2 FOR UPDATE
	`, orderID, userID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select order for cancel: %w", err)
	}
	if !CanCancel(status) {
		return nil, fmt.Errorf("cannot cancel a %s order: %w", status, ErrInvalidTransition)
	}

	items, err := loadItems(ctx, tx, []string{orderID})
	if err != nil {
		return nil, err
	}
	for _, it := range items[orderID] {
		if _, err := tx.Exec(ctx, `
			INSERT INTO product_sizes (product_id, size, stock)
			VALUES ($1, $2, $3)
			ON CONFLICT (product_id, size) DO UPDATE SET stock = product_sizes.stock + EXCLUDED.stock
		`, it.ProductID, it.Size, it.Quantity); err != nil {
			return nil, fmt.Errorf("restore bucket: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE products SET total_stock = total_stock + $2, sold_count = sold_count - $2, updated_at = now()
			WHERE id=$1
		`, it.ProductID, it.Quantity); err != nil {
			return nil, fmt.Errorf("restore product counters: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE orders SET status=$2, updated_at=now() WHERE id=$1
	`, orderID, StatusCancelled); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if err := appendHistory(ctx, tx, orderID, StatusCancelled, "Cancelled by customer"); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit cancel: %w", err)
	}
	return r.Get(ctx, orderID)
}

// UpdateStatus is the back-office overwrite: any known status may follow any
// other. It never touches stock. Returns the updated order and the status it
// replaced.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, orderID string, status Status, trackingNumber, note string) (*Order, Status, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var previous Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, orderID).Scan(&previous)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("select order for update: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE orders SET
			status = $2,
			tracking_number = CASE WHEN $3 <> '' THEN $3 ELSE tracking_number END,
			payment_status = CASE
				WHEN $2 = 'delivered' AND payment_method = 'cod' THEN 'paid'
				WHEN $2 = 'refunded' THEN 'refunded'
				ELSE payment_status
			END,
			updated_at = now()
		WHERE id = $1
	`, orderID, status, trackingNumber)
	if err != nil {
		return nil, "", fmt.Errorf("update order status: %w", err)
	}
	if err := appendHistory(ctx, tx, orderID, status, note); err != nil {
		return nil, "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, "", fmt.Errorf("commit status update: %w", err)
	}

	o, err := r.Get(ctx, orderID)
	if err != nil {
		return nil, "", err
	}
	return o, previous, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
}

func (r *PostgresRepository) GetForUser(ctx context.Context, id, userID string) (*Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1 AND user_id=$2`, id, userID)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	items, err := loadItems(ctx, r.pool, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]

	o.History, err = r.loadHistory(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY created_at DESC, id`, userID)
}

// ListByStatus returns all orders in a status, newest first; an empty status
// lists everything.
func (r *PostgresRepository) ListByStatus(ctx context.Context, status Status) ([]Order, error) {
	if status == "" {
		return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id`)
	}
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE status=$1 ORDER BY created_at DESC, id`, status)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	ids := make([]string, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}
	items, err := loadItems(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func (r *PostgresRepository) loadHistory(ctx context.Context, orderID string) ([]HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, note, created_at
		FROM order_status_history
		WHERE order_id=$1
		ORDER BY created_at, id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	var history []HistoryEntry
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.Status, &h.Note, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return history, nil
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadItems(ctx context.Context, q queryer, orderIDs []string) (map[string][]Item, error) {
	if len(orderIDs) == 0 {
		return map[string][]Item{}, nil
	}
	rows, err := q.Query(ctx, `
		SELECT order_id, product_id, name, brand, slug, image_url, price, size, color, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]Item, len(orderIDs))
	for rows.Next() {
		var orderID string
		var it Item
		if err := rows.Scan(&orderID, &it.ProductID, &it.Name, &it.Brand, &it.Slug, &it.ImageURL,
			&it.Price, &it.Size, &it.Color, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		out[orderID] = append(out[orderID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

type executor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func appendHistory(ctx context.Context, ex executor, orderID string, status Status, note string) error {
	_, err := ex.Exec(ctx, `
		INSERT INTO order_status_history (order_id, status, note, created_at)
		VALUES ($1, $2, $3, now())
	`, orderID, status, note)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.Subtotal, &o.ShippingCost, &o.Tax, &o.Total,
		&o.PaymentMethod, &o.PaymentStatus, &o.ShippingMethod, &o.TrackingNumber,
		&o.ShippingAddress, &o.BillingAddress, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
