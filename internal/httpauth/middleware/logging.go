package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"mockauth/internal/httpauth"
)

// Logging returns a middleware that logs each request using slog.
func Logging(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &httpauth.StatusWriter{ResponseWriter: w, Code: http.StatusOK}

			// Credentials are attached further down the chain; capture them on the way out.
			var cred credentialsCapture
			next.ServeHTTP(sw, r.WithContext(withCapture(r.Context(), &cred)))

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.Code,
				"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
				"request_id", httpauth.RequestIDFromContext(r.Context()),
				"principal_type", cred.value.Type.String(),
				"principal", cred.value.Identity(),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}
