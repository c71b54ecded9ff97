package harness

import (
	"log/slog"
	"net/http"

	"mockauth/internal/httpauth"
	"mockauth/internal/httpauth/middleware"
	"mockauth/internal/platform/telemetry"
)

// AuthService is what the harness needs from a mock auth service.
type AuthService interface {
	httpauth.Authenticator
	httpauth.TokenIssuer
}

// Options configures NewHandler.
type Options struct {
	Logger             *slog.Logger
	Metrics            *telemetry.Metrics
	AllowLimitedAccess bool
	// ServeMetrics mounts the Prometheus handler at /metrics.
	ServeMetrics bool
}

// PublicPaths are served without credentials.
var PublicPaths = []string{"/healthz", "/readyz", "/metrics", "/.well-known/jwks.json"}

// NewHandler assembles the harness router behind the full middleware chain.
func NewHandler(svc AuthService, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := NewRouter(svc, opts.Metrics)
	mux := http.NewServeMux()
	if opts.ServeMetrics {
		mux.Handle("/metrics", telemetry.MetricsHandler())
	}

	var metricsMW middleware.Middleware
	if opts.Metrics != nil {
		metricsMW = middleware.Metrics(opts.Metrics)
	}
	mux.Handle("/", middleware.Chain(
		router,
		metricsMW,
		middleware.RequestID,
		middleware.Logging(logger),
		middleware.Recovery,
		middleware.Credentials(svc, middleware.Policy{
			AllowLimitedAccess: opts.AllowLimitedAccess,
			PublicPaths:        PublicPaths,
		}, opts.Metrics),
	))
	return mux
}
