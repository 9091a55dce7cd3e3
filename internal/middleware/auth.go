package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/guntanalaganesh-web/shoe-store/internal/user"
)

// UserDirectory resolves a user id to an account. Satisfied by *user.Service.
type UserDirectory interface {
	Get(ctx context.Context, id string) (*user.User, error)
}

// RequireUser rejects requests whose session is not bound to an account.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserID(r.Context()) == "" {
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests unless the session user exists and is an admin.
func RequireAdmin(users UserDirectory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := UserID(r.Context())
			if id == "" {
				writeJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			u, err := users.Get(r.Context(), id)
			if err != nil || !u.IsAdmin {
				writeJSONError(w, http.StatusForbidden, "admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
