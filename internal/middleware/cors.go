package middleware

import (
	"net/http"
	"strings"
)

// CORS applies the allow-list to browser requests and short-circuits
// preflights. Credentials are allowed because the session rides a cookie.
func CORS(allowOrigins []string) func(http.Handler) http.Handler {
	allowAll := len(allowOrigins) == 1 && allowOrigins[0] == "*"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || originAllowed(allowOrigins, origin)) {
				writeCORSHeaders(w, origin)
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeCORSHeaders(w http.ResponseWriter, origin string) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Credentials", "true")
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, "+HeaderCorrelationID)
	h.Add("Vary", "Origin")
}

func originAllowed(allowOrigins []string, origin string) bool {
	for _, o := range allowOrigins {
		if strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}
