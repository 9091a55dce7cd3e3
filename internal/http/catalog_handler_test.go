package http

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/guntanalaganesh-web/shoe-store/internal/catalog"
)

func seedRunningShoe(env *testEnv) catalog.Product {
	p := catalog.Product{
		ID:       "11111111-1111-1111-1111-111111111111",
		Slug:     "air-glide-2",
		Name:     "Air Glide 2",
		Brand:    "Stride",
		Category: "running",
		Gender:   catalog.GenderUnisex,
		Price:    decimal.RequireFromString("129.99"),
		Sizes: []catalog.SizeStock{
			{Size: 9, Stock: 5},
			{Size: 9.5, Stock: 2},
		},
		Active: true,
	}
	env.catalog.seed(p)
	return p
}

func TestListProducts(t *testing.T) {
	env := newTestEnv()
	seedRunningShoe(env)
	env.catalog.seed(catalog.Product{ID: "p-hidden", Slug: "retired", Name: "Retired", Brand: "Stride",
		Price: decimal.RequireFromString("10"), Active: false})

	rec := env.do(t, http.MethodGet, "/api/products", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeData[productList](t, rec)
	require.Len(t, list.Products, 1, "inactive products stay out of the storefront")
	require.Equal(t, "air-glide-2", list.Products[0].Slug)
	require.Equal(t, 1, list.Total)
	require.Equal(t, 1, list.Page)
	require.Equal(t, 12, list.PerPage)
}

func TestListProducts_FilterParsing(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodGet,
		"/api/products?category=running&brand=Stride&gender=men&featured=true&onSale=true&minPrice=50&maxPrice=200&sort=price_asc&page=2&perPage=5", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	f := env.catalog.lastFilter
	require.Equal(t, "running", f.Category)
	require.Equal(t, "Stride", f.Brand)
	require.Equal(t, "men", f.Gender)
	require.True(t, f.Featured)
	require.True(t, f.OnSale)
	require.Equal(t, "50", f.MinPrice.String())
	require.Equal(t, "200", f.MaxPrice.String())
	require.Equal(t, catalog.SortPriceAsc, f.Sort)
	require.Equal(t, 2, f.Page)
	require.Equal(t, 5, f.PerPage)
	require.False(t, f.IncludeInactive)
}

func TestSearchProducts(t *testing.T) {
	env := newTestEnv()
	seedRunningShoe(env)

	rec := env.do(t, http.MethodGet, "/api/products/search?q=glide", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	results := decodeData[[]catalog.Product](t, rec)
	require.Len(t, results, 1)
	require.Equal(t, "Air Glide 2", results[0].Name)
}

func TestSearchProducts_BlankQuery(t *testing.T) {
	env := newTestEnv()
	seedRunningShoe(env)

	rec := env.do(t, http.MethodGet, "/api/products/search?q=++", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	results := decodeData[[]catalog.Product](t, rec)
	require.Empty(t, results)
}

func TestGetProduct_BySlug(t *testing.T) {
	env := newTestEnv()
	p := seedRunningShoe(env)

	rec := env.do(t, http.MethodGet, "/api/products/air-glide-2", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	detail := decodeData[struct {
		catalog.Product
		Reviews []catalog.Review `json:"reviews"`
	}](t, rec)
	require.Equal(t, p.ID, detail.ID)
	require.Len(t, detail.Sizes, 2)
	require.Empty(t, detail.Reviews)
}

func TestGetProduct_ByID(t *testing.T) {
	env := newTestEnv()
	p := seedRunningShoe(env)

	rec := env.do(t, http.MethodGet, "/api/products/"+p.ID, nil)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGetProduct_NotFound(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodGet, "/api/products/no-such-shoe", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "product not found", errorMessage(t, rec))
}

func TestCreateReview(t *testing.T) {
	env := newTestEnv()
	seedRunningShoe(env)
	env.seedUser("u1", "Dana Walker", false)

	rec := env.do(t, http.MethodPost, "/api/products/air-glide-2/reviews",
		reviewRequest{Rating: 5, Comment: "Great on long runs"}, env.sessionFor("u1"))

	require.Equal(t, http.StatusCreated, rec.Code)
	rev := decodeData[catalog.Review](t, rec)
	require.Equal(t, "Dana Walker", rev.UserName)
	require.Equal(t, 5, rev.Rating)
	require.Equal(t, "Great on long runs", rev.Comment)

	// The review shows up on the product detail.
	rec = env.do(t, http.MethodGet, "/api/products/air-glide-2", nil)
	detail := decodeData[struct {
		catalog.Product
		Reviews []catalog.Review `json:"reviews"`
	}](t, rec)
	require.Len(t, detail.Reviews, 1)
	require.Equal(t, 1, detail.ReviewCount)
	require.Equal(t, 5.0, detail.Rating)
}

func TestCreateReview_RequiresAuth(t *testing.T) {
	env := newTestEnv()
	seedRunningShoe(env)

	rec := env.do(t, http.MethodPost, "/api/products/air-glide-2/reviews",
		reviewRequest{Rating: 4}, env.sessionFor(""))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateReview_RatingOutOfRange(t *testing.T) {
	env := newTestEnv()
	seedRunningShoe(env)
	env.seedUser("u1", "Dana Walker", false)

	rec := env.do(t, http.MethodPost, "/api/products/air-glide-2/reviews",
		reviewRequest{Rating: 6}, env.sessionFor("u1"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, errorMessage(t, rec), "rating must be between 1 and 5")
}
