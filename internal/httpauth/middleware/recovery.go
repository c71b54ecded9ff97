package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"mockauth/internal/httpauth"
)

// Recovery catches panics from downstream handlers and returns a 500 JSON error.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			slog.Error("panic recovered",
				"error", rec,
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", httpauth.RequestIDFromContext(r.Context()),
				"stack", string(debug.Stack()),
			)
			writeError(w, http.StatusInternalServerError, "internal_error", "an unexpected error occurred")
		}()
		next.ServeHTTP(w, r)
	})
}
