package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/guntanalaganesh-web/shoe-store/internal/session"
)

const SessionCookie = "storefront_session"

type ctxKey string

const (
	ctxSession       ctxKey = "session"
	ctxCorrelationID ctxKey = "correlation_id"
)

// Sessions gives every request a browser session: an existing cookie is
// looked up in the store, anything else gets a fresh session and cookie.
// Store failures fall through to a fresh session so the storefront stays
// browsable.
func Sessions(store session.Store, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *session.Session
			if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
				if s, err := store.Get(r.Context(), c.Value); err == nil {
					sess = s
				}
			}
			if sess == nil {
				sess = &session.Session{ID: uuid.NewString()}
				_ = store.Put(r.Context(), sess)
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    sess.ID,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), ctxSession, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetSession(ctx context.Context) *session.Session {
	if v := ctx.Value(ctxSession); v != nil {
		if s, ok := v.(*session.Session); ok {
			return s
		}
	}
	return nil
}

// SessionID is empty only when the Sessions middleware did not run.
func SessionID(ctx context.Context) string {
	if s := GetSession(ctx); s != nil {
		return s.ID
	}
	return ""
}

// UserID returns the authenticated user bound to the session, or empty.
func UserID(ctx context.Context) string {
	if s := GetSession(ctx); s != nil {
		return s.UserID
	}
	return ""
}
