package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/guntanalaganesh-web/shoe-store/internal/cart"
	"github.com/guntanalaganesh-web/shoe-store/internal/catalog"
	"github.com/guntanalaganesh-web/shoe-store/internal/notifications"
	"github.com/guntanalaganesh-web/shoe-store/internal/order"
	"github.com/guntanalaganesh-web/shoe-store/internal/user"
)

// envelope is the wire shape of every /api response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Message: msg})
}

// writeServiceError maps domain errors onto status codes. Unrecognized
// errors become an opaque 500; the cause goes to the log, not the customer.
func writeServiceError(w http.ResponseWriter, logger *log.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Printf("request failed: %v", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	var stockErr *order.InsufficientStockError

	switch {
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, notifications.ErrNotFound),
		errors.Is(err, cart.ErrLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, cart.ErrOutOfStock),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, catalog.ErrSlugTaken),
		errors.Is(err, user.ErrEmailTaken),
		errors.As(err, &stockErr):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrInvalid),
		errors.Is(err, cart.ErrInvalid),
		errors.Is(err, order.ErrInvalid),
		errors.Is(err, user.ErrInvalid),
		errors.Is(err, order.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, order.ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
