package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/guntanalaganesh-web/shoe-store/internal/catalog"
	"github.com/guntanalaganesh-web/shoe-store/internal/notifications"
	"github.com/guntanalaganesh-web/shoe-store/internal/order"
)

// AdminHandler is the back office: product management, order fulfilment and
// the notifications feed. Admin access is enforced by the router.
type AdminHandler struct {
	catalog *catalog.Service
	orders  *order.Service
	feed    notifications.Repository
	logger  *log.Logger
}

func NewAdminHandler(cat *catalog.Service, orders *order.Service, feed notifications.Repository, logger *log.Logger) *AdminHandler {
	return &AdminHandler{catalog: cat, orders: orders, feed: feed, logger: logger}
}

func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	f := filterFromQuery(r.URL.Query())
	f.IncludeInactive = true

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

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	p, err := h.catalog.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusCreated, p)
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	p, err := h.catalog.Update(r.Context(), chi.URLParam(r, "productID"), in)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Deactivate(r.Context(), chi.URLParam(r, "productID")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

type stockRequest struct {
	Size  float64 `json:"size"`
	Stock int     `json:"stock"`
}

func (h *AdminHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	p, err := h.catalog.SetSizeStock(r.Context(), chi.URLParam(r, "productID"), req.Size, req.Stock)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByStatus(r.Context(), order.Status(r.URL.Query().Get("status")))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}
	writeData(w, http.StatusOK, orders)
}

type updateStatusRequest struct {
	Status         order.Status `json:"status"`
	TrackingNumber string       `json:"trackingNumber"`
	Note           string       `json:"note"`
}

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	o, err := h.orders.AdminUpdateStatus(r.Context(), chi.URLParam(r, "orderID"), req.Status, req.TrackingNumber, req.Note)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, o)
}

func (h *AdminHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	items, err := h.feed.List(r.Context(), intQuery(r.URL.Query(), "limit"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if items == nil {
		items = []notifications.Notification{}
	}
	writeData(w, http.StatusOK, items)
}

func (h *AdminHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := h.feed.MarkRead(r.Context(), chi.URLParam(r, "notificationID")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "read"})
}
