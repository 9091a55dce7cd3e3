package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrInvalid = errors.New("invalid product")

// ProductInput is the admin-facing document for creating or replacing a
// product. Derived fields (slug, totalStock, rating) are computed server-side.
type ProductInput struct {
	Name        string           `json:"name"`
	Brand       string           `json:"brand"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Gender      string           `json:"gender"`
	ImageURL    string           `json:"imageUrl"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"salePrice"`
	Sizes       []SizeStock      `json:"sizes"`
	Featured    bool             `json:"featured"`
	Active      *bool            `json:"active"`
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	return s.repo.Get(ctx, id)
}

// GetByIDOrSlug resolves a storefront detail lookup: UUIDs hit the id index,
// anything else is treated as a slug.
func (s *Service) GetByIDOrSlug(ctx context.Context, idOrSlug string) (*Product, error) {
	if _, err := uuid.Parse(idOrSlug); err == nil {
		return s.repo.Get(ctx, idOrSlug)
	}
	return s.repo.GetBySlug(ctx, idOrSlug)
}

func (s *Service) List(ctx context.Context, f Filter) ([]Product, int, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Search(ctx context.Context, query string, limit int) ([]Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	return s.repo.Search(ctx, query, limit)
}

func (s *Service) Create(ctx context.Context, in ProductInput) (*Product, error) {
	p, err := productFromInput(in)
	if err != nil {
		return nil, err
	}
	p.ID = uuid.NewString()
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, p.ID)
}

func (s *Service) Update(ctx context.Context, id string, in ProductInput) (*Product, error) {
	p, err := productFromInput(in)
	if err != nil {
		return nil, err
	}
	p.ID = id
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Deactivate(ctx context.Context, id string) error {
	return s.repo.Deactivate(ctx, id)
}

func (s *Service) SetSizeStock(ctx context.Context, productID string, size float64, stock int) (*Product, error) {
	if size <= 0 {
		return nil, fmt.Errorf("size must be positive: %w", ErrInvalid)
	}
	if stock < 0 {
		return nil, fmt.Errorf("stock must not be negative: %w", ErrInvalid)
	}
	if err := s.repo.SetSizeStock(ctx, productID, size, stock); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, productID)
}

func (s *Service) AddReview(ctx context.Context, productID, userID, userName string, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5: %w", ErrInvalid)
	}
	rev := &Review{
		ID:        uuid.NewString(),
		ProductID: productID,
		UserID:    userID,
		UserName:  userName,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	}
	if err := s.repo.AddReview(ctx, rev); err != nil {
		return nil, err
	}
	return rev, nil
}

func (s *Service) ListReviews(ctx context.Context, productID string) ([]Review, error) {
	return s.repo.ListReviews(ctx, productID)
}

func productFromInput(in ProductInput) (*Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", ErrInvalid)
	}
	if strings.TrimSpace(in.Brand) == "" {
		return nil, fmt.Errorf("brand is required: %w", ErrInvalid)
	}
	if in.Price.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("price must be positive: %w", ErrInvalid)
	}
	if in.SalePrice != nil && in.SalePrice.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("sale price must be positive: %w", ErrInvalid)
	}
	switch in.Gender {
	case "", GenderMen, GenderWomen, GenderUnisex, GenderKids:
	default:
		return nil, fmt.Errorf("unknown gender %q: %w", in.Gender, ErrInvalid)
	}

	seen := make(map[float64]bool, len(in.Sizes))
	for _, sz := range in.Sizes {
		if sz.Size <= 0 {
			return nil, fmt.Errorf("size must be positive: %w", ErrInvalid)
		}
		if sz.Stock < 0 {
			return nil, fmt.Errorf("stock must not be negative: %w", ErrInvalid)
		}
		if seen[sz.Size] {
			return nil, fmt.Errorf("duplicate size %v: %w", sz.Size, ErrInvalid)
		}
		seen[sz.Size] = true
	}

	slug := Slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("name yields an empty slug: %w", ErrInvalid)
	}

	gender := in.Gender
	if gender == "" {
		gender = GenderUnisex
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}

	p := &Product{
		Slug:        slug,
		Name:        name,
		Brand:       strings.TrimSpace(in.Brand),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Gender:      gender,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Price:       in.Price,
		SalePrice:   in.SalePrice,
		Sizes:       in.Sizes,
		Featured:    in.Featured,
		Active:      active,
	}
	p.TotalStock = p.SumSizeStock()
	return p, nil
}

// Slugify turns a product name into a URL slug: lowercase, runs of
// non-alphanumerics collapsed into single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
