package logging

import (
	"context"
	"regexp"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ContextFields extracts correlation data from ctx.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 5)

	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
		if sc.IsSampled() {
			fields = append(fields, zap.Bool("trace_sampled", true))
		}
	}

	if id := RequestIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("request.id", id))
	}
	if id := QueryIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("query.id", id))
	}

	return fields
}

type requestCtxKey struct{}
type queryCtxKey struct{}

const maxIDLen = 128

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func validID(id string) bool {
	return id != "" && len(id) <= maxIDLen && idPattern.MatchString(id)
}

// WithRequestID adds a request ID to ctx. Request IDs may come from client
// headers, so invalid ones are dropped rather than logged.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if !validID(requestID) {
		return ctx
	}
	return context.WithValue(ctx, requestCtxKey{}, requestID)
}

// RequestIDFromContext returns the request ID or "".
func RequestIDFromContext(ctx context.Context) string {
	if r, ok := ctx.Value(requestCtxKey{}).(string); ok {
		return r
	}
	return ""
}

// WithQueryID adds a query ID to ctx. Invalid IDs are dropped.
func WithQueryID(ctx context.Context, queryID string) context.Context {
	if !validID(queryID) {
		return ctx
	}
	return context.WithValue(ctx, queryCtxKey{}, queryID)
}

// QueryIDFromContext returns the query ID or "".
func QueryIDFromContext(ctx context.Context) string {
	if q, ok := ctx.Value(queryCtxKey{}).(string); ok {
		return q
	}
	return ""
}

// For returns base enriched with the correlation fields of ctx.
func For(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		return zap.NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}
