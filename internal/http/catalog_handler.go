package http

import (
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/guntanalaganesh-web/shoe-store/internal/catalog"
	"github.com/guntanalaganesh-web/shoe-store/internal/middleware"
	"github.com/guntanalaganesh-web/shoe-store/internal/user"
)

type CatalogHandler struct {
	catalog *catalog.Service
	users   *user.Service
	logger  *log.Logger
}

func NewCatalogHandler(svc *catalog.Service, users *user.Service, logger *log.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: svc, users: users, logger: logger}
}

type productList struct {
	Products []catalog.Product `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PerPage  int               `json:"perPage"`
}

type productDetail struct {
	*catalog.Product
	Reviews []catalog.Review `json:"reviews"`
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	f := filterFromQuery(r.URL.Query())

	products, total, err := h.catalog.List(r.Context(), f)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if products == nil {
		products = []catalog.Product{}
	}

	writeData(w, http.StatusOK, productList{
		Products: products,
		Total:    total,
		Page:     f.Page,
		PerPage:  f.PerPage,
	})
}

func (h *CatalogHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	products, err := h.catalog.Search(r.Context(), q.Get("q"), intQuery(q, "limit"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if products == nil {
		products = []catalog.Product{}
	}

	writeData(w, http.StatusOK, products)
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.GetByIDOrSlug(r.Context(), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	reviews, err := h.catalog.ListReviews(r.Context(), p.ID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if reviews == nil {
		reviews = []catalog.Review{}
	}

	writeData(w, http.StatusOK, productDetail{Product: p, Reviews: reviews})
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *CatalogHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	p, err := h.catalog.GetByIDOrSlug(r.Context(), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	u, err := h.users.Get(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	rev, err := h.catalog.AddReview(r.Context(), p.ID, u.ID, u.Name, req.Rating, req.Comment)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeData(w, http.StatusCreated, rev)
}

// filterFromQuery maps listing query parameters onto a Filter. Malformed
// numbers are treated as absent rather than rejected.
func filterFromQuery(q url.Values) catalog.Filter {
	f := catalog.Filter{
		Category: q.Get("category"),
		Brand:    q.Get("brand"),
		Gender:   q.Get("gender"),
		Featured: q.Get("featured") == "true",
		OnSale:   q.Get("onSale") == "true",
		Sort:     q.Get("sort"),
		Page:     intQuery(q, "page"),
		PerPage:  intQuery(q, "perPage"),
	}
	if d, err := decimal.NewFromString(q.Get("minPrice")); err == nil {
		f.MinPrice = &d
	}
	if d, err := decimal.NewFromString(q.Get("maxPrice")); err == nil {
		f.MaxPrice = &d
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 12
	}
	if f.PerPage > 100 {
		f.PerPage = 100
	}
	return f
}

func intQuery(q url.Values, key string) int {
	n, _ := strconv.Atoi(q.Get(key))
	return n
}
