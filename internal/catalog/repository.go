package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound  = errors.New("product not found")
	ErrSlugTaken = errors.New("slug already in use")
)

// DBPool matches the methods from *pgxpool.Pool that the repository uses.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type Repository interface {
	Get(ctx context.Context, id string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	List(ctx context.Context, f Filter) ([]Product, int, error)
	Search(ctx context.Context, query string, limit int) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Deactivate(ctx context.Context, id string) error
	SetSizeStock(ctx context.Context, productID string, size float64, stock int) error
	AddReview(ctx context.Context, rev *Review) error
	ListReviews(ctx context.Context, productID string) ([]Review, error)
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const productColumns = `id, slug, name, brand, description, category, gender, image_url,
		price, sale_price, total_stock, sold_count, rating, review_count,
		featured, active, created_at, updated_at`

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Product, error) {
	return r.getWhere(ctx, "id", id)
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	return r.getWhere(ctx, "slug", slug)
}

func (r *PostgresRepository) getWhere(ctx context.Context, column, value string) (*Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE `+column+`=$1`, value)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select product: %w", err)
	}

	sizes, err := r.loadSizes(ctx, []string{p.ID})
	if err != nil {
		return nil, err
	}
	p.Sizes = sizes[p.ID]
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Product, int, error) {
	where, args := buildFilter(f)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage < 1 {
		perPage = 12
	}
	if perPage > 100 {
		perPage = 100
	}

	query := `SELECT ` + productColumns + ` FROM products` + where + orderClause(f.Sort) +
		fmt.Sprintf(` LIMIT %d OFFSET %d`, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}

	if err := r.attachSizes(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *PostgresRepository) Search(ctx context.Context, query string, limit int) ([]Product, error) {
	if limit < 1 {
		limit = 8
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE active AND (name ILIKE '%' || $1 || '%' OR brand ILIKE '%' || $1 || '%')
		ORDER BY name
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	products, err := collectProducts(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachSizes(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p *Product) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO products (id, slug, name, brand, description, category, gender, image_url,
			price, sale_price, total_stock, sold_count, featured, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, $12, $13, now(), now())
	`, p.ID, p.Slug, p.Name, p.Brand, p.Description, p.Category, p.Gender, p.ImageURL,
		p.Price, nullDecimal(p.SalePrice), p.TotalStock, p.Featured, p.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugTaken
		}
		return fmt.Errorf("insert product: %w", err)
	}

	if err := insertSizes(ctx, tx, p.ID, p.Sizes); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, p *Product) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE products
		SET slug=$2, name=$3, brand=$4, description=$5, category=$6, gender=$7, image_url=$8,
			price=$9, sale_price=$10, total_stock=$11, featured=$12, active=$13, updated_at=now()
		WHERE id=$1
	`, p.ID, p.Slug, p.Name, p.Brand, p.Description, p.Category, p.Gender, p.ImageURL,
		p.Price, nullDecimal(p.SalePrice), p.TotalStock, p.Featured, p.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugTaken
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM product_sizes WHERE product_id=$1`, p.ID); err != nil {
		return fmt.Errorf("delete sizes: %w", err)
	}
	if err := insertSizes(ctx, tx, p.ID, p.Sizes); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Deactivate(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET active=FALSE, updated_at=now() WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetSizeStock upserts a single stock bucket and recomputes the product's
// derived total so the totalStock invariant holds.
func (r *PostgresRepository) SetSizeStock(ctx context.Context, productID string, size float64, stock int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id=$1)`, productID).Scan(&exists); err != nil {
		return fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return ErrNotFound
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO product_sizes (product_id, size, stock)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id, size) DO UPDATE SET stock=EXCLUDED.stock
	`, productID, size, stock)
	if err != nil {
		return fmt.Errorf("upsert size stock: %w", err)
	}

	if err := recomputeTotalStock(ctx, tx, productID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit stock adjust: %w", err)
	}
	return nil
}

// AddReview upserts the user's review (one per user per product) and refreshes
// the product's derived rating and review count.
func (r *PostgresRepository) AddReview(ctx context.Context, rev *Review) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id=$1 AND active)`, rev.ProductID).Scan(&exists); err != nil {
		return fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return ErrNotFound
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO product_reviews (id, product_id, user_id, user_name, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (product_id, user_id)
		DO UPDATE SET rating=EXCLUDED.rating, comment=EXCLUDED.comment, user_name=EXCLUDED.user_name, created_at=now()
	`, rev.ID, rev.ProductID, rev.UserID, rev.UserName, rev.Rating, rev.Comment)
	if err != nil {
		return fmt.Errorf("upsert review: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE products p
		SET rating = COALESCE(agg.avg_rating, 0), review_count = agg.cnt, updated_at = now()
		FROM (
			SELECT ROUND(AVG(rating)::numeric, 1) AS avg_rating, COUNT(*) AS cnt
			FROM product_reviews WHERE product_id=$1
		) agg
		WHERE p.id=$1
	`, rev.ProductID)
	if err != nil {
		return fmt.Errorf("refresh rating: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit review: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListReviews(ctx context.Context, productID string) ([]Review, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, user_id, user_name, rating, comment, created_at
		FROM product_reviews
		WHERE product_id=$1
		ORDER BY created_at DESC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var rev Review
		if err := rows.Scan(&rev.ID, &rev.ProductID, &rev.UserID, &rev.UserName, &rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return reviews, nil
}

func (r *PostgresRepository) loadSizes(ctx context.Context, productIDs []string) (map[string][]SizeStock, error) {
	if len(productIDs) == 0 {
		return map[string][]SizeStock{}, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT product_id, size, stock
		FROM product_sizes
		WHERE product_id = ANY($1)
		ORDER BY product_id, size
	`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("load sizes: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]SizeStock, len(productIDs))
	for rows.Next() {
		var id string
		var s SizeStock
		if err := rows.Scan(&id, &s.Size, &s.Stock); err != nil {
			return nil, fmt.Errorf("scan size: %w", err)
		}
		out[id] = append(out[id], s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) attachSizes(ctx context.Context, products []Product) error {
	ids := make([]string, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}
	sizes, err := r.loadSizes(ctx, ids)
	if err != nil {
		return err
	}
	for i := range products {
		products[i].Sizes = sizes[products[i].ID]
	}
	return nil
}

func insertSizes(ctx context.Context, tx pgx.Tx, productID string, sizes []SizeStock) error {
	for _, s := range sizes {
		_, err := tx.Exec(ctx, `
			INSERT INTO product_sizes (product_id, size, stock)
			VALUES ($1, $2, $3)
			ON CONFLICT (product_id, size) DO UPDATE SET stock=EXCLUDED.stock
		`, productID, s.Size, s.Stock)
		if err != nil {
			return fmt.Errorf("insert size %v: %w", s.Size, err)
		}
	}
	return nil
}

func recomputeTotalStock(ctx context.Context, tx pgx.Tx, productID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE products
		SET total_stock = (SELECT COALESCE(SUM(stock), 0) FROM product_sizes WHERE product_id=$1),
			updated_at = now()
		WHERE id=$1
	`, productID)
	if err != nil {
		return fmt.Errorf("recompute total stock: %w", err)
	}
	return nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var sale decimal.NullDecimal
	err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.Brand, &p.Description, &p.Category, &p.Gender, &p.ImageURL,
		&p.Price, &sale, &p.TotalStock, &p.SoldCount, &p.Rating, &p.ReviewCount,
		&p.Featured, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if sale.Valid {
		p.SalePrice = &sale.Decimal
	}
	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return products, nil
}

// effectivePriceExpr mirrors Product.EffectivePrice in SQL: the sale price
// counts only when it undercuts the list price.
const effectivePriceExpr = `LEAST(COALESCE(sale_price, price), price)`

func buildFilter(f Filter) (string, []any) {
	var where []string
	var args []any

	if !f.IncludeInactive {
		where = append(where, "active")
	}
	add := func(cond string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.Brand != "" {
		add("brand = $%d", f.Brand)
	}
	if f.Gender != "" {
		add("gender = $%d", f.Gender)
	}
	if f.Featured {
		where = append(where, "featured")
	}
	if f.OnSale {
		where = append(where, "sale_price IS NOT NULL AND sale_price < price")
	}
	if f.MinPrice != nil {
		add(effectivePriceExpr+" >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add(effectivePriceExpr+" <= $%d", *f.MaxPrice)
	}

	if len(where) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

func orderClause(sort string) string {
	switch sort {
	case SortPriceAsc:
		return " ORDER BY " + effectivePriceExpr + " ASC, id"
	case SortPriceDesc:
		return " ORDER BY " + effectivePriceExpr + " DESC, id"
	case SortRating:
		return " ORDER BY rating DESC, review_count DESC, id"
	default:
		return " ORDER BY created_at DESC, id"
	}
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
