package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// ShutdownFunc releases telemetry resources.
type ShutdownFunc func(ctx context.Context) error

// Setup installs a global meter provider that exports to the default
// Prometheus registry. Metrics carry serviceName as the service.name resource
// attribute. The returned function must be called on exit.
func Setup(ctx context.Context, serviceName string) (ShutdownFunc, error) {
	res, err := resource.New(ctx, resource.WithAttributes(attribute.String("service.name", serviceName)))
	if err != nil {
		return nil, fmt.Errorf("building telemetry resource for %s: %w", serviceName, err)
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter for %s: %w", serviceName, err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return provider.Shutdown, nil
}

// MetricsHandler returns an http.Handler that serves Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// Metrics holds the OTel instruments of the mock auth harness.
type Metrics struct {
	httpRequestsTotal    otelmetric.Int64Counter
	httpRequestDuration  otelmetric.Float64Histogram
	authenticationsTotal otelmetric.Int64Counter
	tokensIssuedTotal    otelmetric.Int64Counter
}

// NewMetrics creates and registers all harness metrics.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("mockauth")
	m := &Metrics{}
	var err error

	latencyBuckets := otelmetric.WithExplicitBucketBoundaries(
		0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0,
	)

	if m.httpRequestsTotal, err = meter.Int64Counter("mockauth_http_requests_total",
		otelmetric.WithDescription("Total HTTP requests")); err != nil {
		return nil, fmt.Errorf("creating http_requests_total: %w", err)
	}
	if m.httpRequestDuration, err = meter.Float64Histogram("mockauth_http_request_duration_seconds",
		otelmetric.WithDescription("HTTP request duration"), latencyBuckets); err != nil {
		return nil, fmt.Errorf("creating http_request_duration: %w", err)
	}
	if m.authenticationsTotal, err = meter.Int64Counter("mockauth_authentications_total",
		otelmetric.WithDescription("Total mock token authentications")); err != nil {
		return nil, fmt.Errorf("creating authentications_total: %w", err)
	}
	if m.tokensIssuedTotal, err = meter.Int64Counter("mockauth_tokens_issued_total",
		otelmetric.WithDescription("Total mock tokens issued")); err != nil {
		return nil, fmt.Errorf("creating tokens_issued_total: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request metric.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, status int, durationSec float64) {
	attrs := otelmetric.WithAttributes(
		methodAttr(method),
		pathAttr(path),
		statusAttr(status),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, durationSec, attrs)
}

// RecordAuthentication records the outcome of resolving a request's
// credentials. principal is the resulting principal type, or "none" on failure.
func (m *Metrics) RecordAuthentication(ctx context.Context, result, principal string) {
	m.authenticationsTotal.Add(ctx, 1, otelmetric.WithAttributes(
		resultAttr(result),
		principalAttr(principal),
	))
}

// RecordTokenIssued records a minted token of the given kind
// ("plugin_request", "limited_user", "cookie").
func (m *Metrics) RecordTokenIssued(ctx context.Context, kind string) {
	m.tokensIssuedTotal.Add(ctx, 1, otelmetric.WithAttributes(kindAttr(kind)))
}
