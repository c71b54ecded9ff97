package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"mockauth/internal/httpauth"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLen = 128

// RequestID assigns a unique request ID to each request. An incoming
// X-Request-ID header is kept unless it is longer than 128 bytes.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(httpauth.ContextWithRequestID(r.Context(), id)))
	})
}
