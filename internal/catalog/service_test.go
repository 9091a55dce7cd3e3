package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	products map[string]*Product
	bySlug   map[string]string
	reviews  []Review

	createErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{products: map[string]*Product{}, bySlug: map[string]string{}}
}

func (f *fakeRepo) Get(ctx context.Context, id string) (*Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	id, ok := f.bySlug[slug]
	if !ok {
		return nil, ErrNotFound
	}
	return f.Get(ctx, id)
}

func (f *fakeRepo) List(ctx context.Context, filter Filter) ([]Product, int, error) {
	var out []Product
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Search(ctx context.Context, query string, limit int) ([]Product, error) {
	return nil, nil
}

func (f *fakeRepo) Create(ctx context.Context, p *Product) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, taken := f.bySlug[p.Slug]; taken {
		return ErrSlugTaken
	}
	cp := *p
	f.products[p.ID] = &cp
	f.bySlug[p.Slug] = p.ID
	return nil
}

func (f *fakeRepo) Update(ctx context.Context, p *Product) error {
	old, ok := f.products[p.ID]
	if !ok {
		return ErrNotFound
	}
	if id, taken := f.bySlug[p.Slug]; taken && id != p.ID {
		return ErrSlugTaken
	}
	delete(f.bySlug, old.Slug)
	cp := *p
	f.products[p.ID] = &cp
	f.bySlug[p.Slug] = p.ID
	return nil
}

func (f *fakeRepo) Deactivate(ctx context.Context, id string) error {
	p, ok := f.products[id]
	if !ok {
		return ErrNotFound
	}
	p.Active = false
	return nil
}

func (f *fakeRepo) SetSizeStock(ctx context.Context, productID string, size float64, stock int) error {
	p, ok := f.products[productID]
	if !ok {
		return ErrNotFound
	}
	for i := range p.Sizes {
		if p.Sizes[i].Size == size {
			p.Sizes[i].Stock = stock
			p.TotalStock = p.SumSizeStock()
			return nil
		}
	}
	p.Sizes = append(p.Sizes, SizeStock{Size: size, Stock: stock})
	p.TotalStock = p.SumSizeStock()
	return nil
}

func (f *fakeRepo) AddReview(ctx context.Context, rev *Review) error {
	if _, ok := f.products[rev.ProductID]; !ok {
		return ErrNotFound
	}
	f.reviews = append(f.reviews, *rev)
	return nil
}

func (f *fakeRepo) ListReviews(ctx context.Context, productID string) ([]Review, error) {
	var out []Review
	for _, rev := range f.reviews {
		if rev.ProductID == productID {
			out = append(out, rev)
		}
	}
	return out, nil
}

func validInput() ProductInput {
	return ProductInput{
		Name:     "Air Glide 2",
		Brand:    "Stride",
		Category: "running",
		Gender:   GenderMen,
		Price:    dec("120"),
		Sizes:    []SizeStock{{Size: 9, Stock: 5}, {Size: 10, Stock: 3}},
	}
}

func TestServiceCreate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	_, err = uuid.Parse(p.ID)
	require.NoError(t, err, "id must be a generated uuid")
	require.Equal(t, "air-glide-2", p.Slug)
	require.Equal(t, 8, p.TotalStock, "total derived from size buckets")
	require.True(t, p.Active, "products default to active")
}

func TestServiceCreate_Validation(t *testing.T) {
	tests := map[string]func(*ProductInput){
		"missing name":      func(in *ProductInput) { in.Name = "  " },
		"missing brand":     func(in *ProductInput) { in.Brand = "" },
		"zero price":        func(in *ProductInput) { in.Price = dec("0") },
		"negative price":    func(in *ProductInput) { in.Price = dec("-5") },
		"zero sale price":   func(in *ProductInput) { in.SalePrice = decPtr("0") },
		"unknown gender":    func(in *ProductInput) { in.Gender = "other" },
		"non-positive size": func(in *ProductInput) { in.Sizes[0].Size = 0 },
		"negative stock":    func(in *ProductInput) { in.Sizes[0].Stock = -1 },
		"duplicate size":    func(in *ProductInput) { in.Sizes[1].Size = in.Sizes[0].Size },
		"symbols-only name": func(in *ProductInput) { in.Name = "!!!" },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			repo := newFakeRepo()
			svc := NewService(repo)

			in := validInput()
			mutate(&in)

			_, err := svc.Create(context.Background(), in)
			require.ErrorIs(t, err, ErrInvalid)
			require.Empty(t, repo.products, "nothing persisted on validation failure")
		})
	}
}

func TestServiceCreate_SlugConflict(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validInput())
	require.ErrorIs(t, err, ErrSlugTaken)
}

func TestServiceUpdate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	in := validInput()
	in.Name = "Air Glide 2 Pro"
	in.SalePrice = decPtr("99.95")
	updated, err := svc.Update(context.Background(), created.ID, in)
	require.NoError(t, err)

	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, "air-glide-2-pro", updated.Slug, "slug follows the new name")
	require.NotNil(t, updated.SalePrice)

	_, err = svc.Update(context.Background(), "no-such-id", in)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestServiceGetByIDOrSlug(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	byID, err := svc.GetByIDOrSlug(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, byID.ID)

	bySlug, err := svc.GetByIDOrSlug(context.Background(), "air-glide-2")
	require.NoError(t, err)
	require.Equal(t, created.ID, bySlug.ID)

	_, err = svc.GetByIDOrSlug(context.Background(), "no-such-slug")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestServiceSetSizeStock(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	p, err := svc.SetSizeStock(context.Background(), created.ID, 11, 4)
	require.NoError(t, err)
	require.Equal(t, 12, p.TotalStock)

	stock, ok := p.StockForSize(11)
	require.True(t, ok)
	require.Equal(t, 4, stock)

	_, err = svc.SetSizeStock(context.Background(), created.ID, 0, 4)
	require.ErrorIs(t, err, ErrInvalid)
	_, err = svc.SetSizeStock(context.Background(), created.ID, 9, -1)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestServiceAddReview(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	rev, err := svc.AddReview(context.Background(), created.ID, "u1", "Dana", 5, "  great daily trainer  ")
	require.NoError(t, err)
	require.Equal(t, "great daily trainer", rev.Comment)
	require.NotEmpty(t, rev.ID)

	_, err = svc.AddReview(context.Background(), created.ID, "u1", "Dana", 0, "")
	require.ErrorIs(t, err, ErrInvalid)
	_, err = svc.AddReview(context.Background(), created.ID, "u1", "Dana", 6, "")
	require.ErrorIs(t, err, ErrInvalid)

	listed, err := svc.ListReviews(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Air Glide 2", "air-glide-2"},
		{"  Trail-Blazer  XT ", "trail-blazer-xt"},
		{"Café Runner", "caf-runner"},
		{"UPPER", "upper"},
		{"!!!", ""},
	}

	for _, tc := range tests {
		require.Equal(t, tc.want, Slugify(tc.in), "Slugify(%q)", tc.in)
	}
}

func TestServiceSearchBlankQuery(t *testing.T) {
	svc := NewService(newFakeRepo())

	got, err := svc.Search(context.Background(), "   ", 5)
	require.NoError(t, err)
	require.Nil(t, got)
}
