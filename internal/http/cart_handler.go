package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/guntanalaganesh-web/shoe-store/internal/cart"
	"github.com/guntanalaganesh-web/shoe-store/internal/middleware"
)

type CartHandler struct {
	carts  *cart.Service
	logger *log.Logger
}

func NewCartHandler(carts *cart.Service, logger *log.Logger) *CartHandler {
	return &CartHandler{carts: carts, logger: logger}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Get(r.Context(), middleware.SessionID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var in cart.AddInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	c, err := h.carts.Add(r.Context(), middleware.SessionID(r.Context()), in)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

type updateLineRequest struct {
	ProductID string  `json:"productId"`
	Size      float64 `json:"size"`
	Quantity  int     `json:"quantity"`
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateLineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	c, err := h.carts.Update(r.Context(), middleware.SessionID(r.Context()), req.ProductID, req.Size, req.Quantity)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

// RemoveItem identifies the line by query parameters so the DELETE carries
// no body.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	productID := q.Get("productId")
	if productID == "" {
		writeError(w, http.StatusBadRequest, "missing productId")
		return
	}
	size, err := strconv.ParseFloat(q.Get("size"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing or malformed size")
		return
	}

	c, err := h.carts.Remove(r.Context(), middleware.SessionID(r.Context()), productID, size)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Clear(r.Context(), middleware.SessionID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, c)
}
