package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/guntanalaganesh-web/shoe-store/internal/middleware"
	"github.com/guntanalaganesh-web/shoe-store/internal/order"
)

type OrderHandler struct {
	orders *order.Service
	logger *log.Logger
}

func NewOrderHandler(orders *order.Service, logger *log.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

type checkoutResponse struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
}

func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var in order.CheckoutInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	ctx := r.Context()
	o, err := h.orders.Checkout(ctx, middleware.SessionID(ctx), middleware.UserID(ctx), in)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeData(w, http.StatusCreated, checkoutResponse{OrderID: o.ID, OrderNumber: o.OrderNumber})
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListForUser(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}
	writeData(w, http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetForUser(r.Context(), chi.URLParam(r, "orderID"), middleware.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, o)
}

func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Cancel(r.Context(), chi.URLParam(r, "orderID"), middleware.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, o)
}
