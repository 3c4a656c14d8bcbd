package http

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tripd/internal/orchestrator"
)

const httpInstrumentationName = "github.com/fyrsmithlabs/tripd/internal/http"

// Activity lookup results recorded by RecordActivity.
const (
	activityFound       = "found"
	activityNotFound    = "not_found"
	activityUnavailable = "unavailable"
	activityFailed      = "failed"
)

// HTTPMetrics records traffic and answer quality for the API. A nil
// *HTTPMetrics records nothing.
type HTTPMetrics struct {
	logger     *zap.Logger
	requests   metric.Int64Counter
	latency    metric.Float64Histogram
	answers    metric.Int64Counter
	activities metric.Int64Counter
}

// NewHTTPMetrics creates HTTPMetrics on the global meter provider.
func NewHTTPMetrics(logger *zap.Logger) *HTTPMetrics {
	return newHTTPMetrics(otel.Meter(httpInstrumentationName), logger)
}

func newHTTPMetrics(meter metric.Meter, logger *zap.Logger) *HTTPMetrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &HTTPMetrics{logger: logger}

	var err error
	if m.requests, err = meter.Int64Counter(
		"tripd.http.requests_total",
		metric.WithDescription("HTTP requests by method, route and status."),
		metric.WithUnit("{request}"),
	); err != nil {
		logger.Warn("failed to create requests counter", zap.Error(err))
	}

	// Answers wait on retrieval, web search and generation, so the buckets
	// reach well past a typical API call.
	if m.latency, err = meter.Float64Histogram(
		"tripd.http.request_duration_seconds",
		metric.WithDescription("HTTP request latency by method, route and status."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40),
	); err != nil {
		logger.Warn("failed to create latency histogram", zap.Error(err))
	}

	if m.answers, err = meter.Int64Counter(
		"tripd.http.answers_total",
		metric.WithDescription("Answers served by /api/v1/ask, by evidence outcome and whether web search supplied the evidence."),
		metric.WithUnit("{answer}"),
	); err != nil {
		logger.Warn("failed to create answers counter", zap.Error(err))
	}

	if m.activities, err = meter.Int64Counter(
		"tripd.http.activity_lookups_total",
		metric.WithDescription("Booking lookups served by /api/v1/activity, by result."),
		metric.WithUnit("{lookup}"),
	); err != nil {
		logger.Warn("failed to create activity lookups counter", zap.Error(err))
	}

	return m
}

// RecordAnswer counts one answered query.
func (m *HTTPMetrics) RecordAnswer(ctx context.Context, r *orchestrator.Result) {
	if m == nil || m.answers == nil || r == nil {
		return
	}
	m.answers.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", string(r.Outcome)),
		attribute.String("web_fallback", strconv.FormatBool(r.WebFallback)),
	))
}

// RecordActivity counts one booking lookup.
func (m *HTTPMetrics) RecordActivity(ctx context.Context, result string) {
	if m == nil || m.activities == nil {
		return
	}
	m.activities.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// MetricsMiddleware returns an Echo middleware that records request count
// and latency per route.
func (m *HTTPMetrics) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			attrs := metric.WithAttributes(
				attribute.String("method", c.Request().Method),
				attribute.String("endpoint", normalizePath(c.Path())),
				attribute.Int("status", c.Response().Status),
			)
			ctx := c.Request().Context()
			if m.requests != nil {
				m.requests.Add(ctx, 1, attrs)
			}
			if m.latency != nil {
				m.latency.Record(ctx, time.Since(start).Seconds(), attrs)
			}
			return err
		}
	}
}

// normalizePath maps an echo route to a metric label. Routes are
// registered as fixed paths, so only the unmatched case needs a value.
func normalizePath(path string) string {
	if path == "" {
		return "unmatched"
	}
	return path
}
