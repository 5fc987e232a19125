package http

import (
	"net/http"
)

// CORSMiddleware creates middleware that answers preflight requests and makes
// sure every response carries the configured Access-Control-Allow-Origin
// header, including error responses written outside the envelope protocol.
// An empty allowOrigin disables the middleware.
func CORSMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)

		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)

			return
		}

		next.ServeHTTP(w, r)
	})
}
