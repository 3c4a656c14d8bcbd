package mcp

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tripd/internal/evidence"
	"github.com/fyrsmithlabs/tripd/internal/orchestrator"
)

const instrumentationName = "github.com/fyrsmithlabs/tripd/internal/mcp"

// resultOK labels a tool call that returned without error.
const resultOK = "ok"

// Metrics records tool calls and the quality of the answers they return.
type Metrics struct {
	logger   *zap.Logger
	calls    metric.Int64Counter
	duration metric.Float64Histogram
	answers  metric.Int64Counter
	bookings metric.Int64Counter
}

// NewMetrics creates Metrics on the global meter provider.
func NewMetrics(logger *zap.Logger) *Metrics {
	return newMetrics(otel.Meter(instrumentationName), logger)
}

func newMetrics(meter metric.Meter, logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Metrics{logger: logger}

	var err error
	if m.calls, err = meter.Int64Counter(
		"tripd.mcp.tool.calls_total",
		metric.WithDescription("MCP tool calls by tool and result (ok, or the error class)."),
		metric.WithUnit("{call}"),
	); err != nil {
		logger.Warn("failed to create tool calls counter", zap.Error(err))
	}

	if m.duration, err = meter.Float64Histogram(
		"tripd.mcp.tool.duration_seconds",
		metric.WithDescription("MCP tool call latency by tool."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40),
	); err != nil {
		logger.Warn("failed to create duration histogram", zap.Error(err))
	}

	if m.answers, err = meter.Int64Counter(
		"tripd.mcp.answers_total",
		metric.WithDescription("travel_ask answers by evidence outcome and whether web search supplied the evidence."),
		metric.WithUnit("{answer}"),
	); err != nil {
		logger.Warn("failed to create answers counter", zap.Error(err))
	}

	if m.bookings, err = meter.Int64Counter(
		"tripd.mcp.activity_matches_total",
		metric.WithDescription("activity_lookup calls by whether a booking for the queried attraction was found."),
		metric.WithUnit("{lookup}"),
	); err != nil {
		logger.Warn("failed to create activity matches counter", zap.Error(err))
	}

	return m
}

// RecordCall records one tool call. err is the error returned to the client.
func (m *Metrics) RecordCall(ctx context.Context, tool string, d time.Duration, err error) {
	toolAttr := attribute.String("tool", tool)
	result := resultOK
	if err != nil {
		result = categorizeError(err)
	}
	if m.calls != nil {
		m.calls.Add(ctx, 1, metric.WithAttributes(toolAttr, attribute.String("result", result)))
	}
	if m.duration != nil {
		m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(toolAttr))
	}
}

// RecordAnswer records the outcome of a travel_ask call.
func (m *Metrics) RecordAnswer(ctx context.Context, r *orchestrator.Result) {
	if m.answers == nil || r == nil {
		return
	}
	m.answers.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", string(r.Outcome)),
		attribute.String("web_fallback", strconv.FormatBool(r.WebFallback)),
	))
}

// RecordBooking records whether activity_lookup found a matching booking.
func (m *Metrics) RecordBooking(ctx context.Context, found bool) {
	if m.bookings == nil {
		return
	}
	m.bookings.Add(ctx, 1, metric.WithAttributes(attribute.Bool("found", found)))
}

// categorizeError maps err to a result label.
func categorizeError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, errInvalidInput) {
		return "validation_error"
	}
	return evidence.Classify(err)
}
