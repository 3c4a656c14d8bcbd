package logging

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestContextFields_Empty(t *testing.T) {
	assert.Empty(t, ContextFields(context.Background()))
}

func TestContextFields_Trace(t *testing.T) {
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	enc := zapcore.NewMapObjectEncoder()
	for _, f := range ContextFields(ctx) {
		f.AddTo(enc)
	}
	assert.Equal(t, sc.TraceID().String(), enc.Fields["trace_id"])
	assert.Equal(t, sc.SpanID().String(), enc.Fields["span_id"])
	assert.Equal(t, true, enc.Fields["trace_sampled"])
}

func TestWithIDs_DropsInvalid(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{name: "uuid", id: "0b6f3c1e-7a43-4c8e-9d7b-2a1f0e9c8b7a", want: "0b6f3c1e-7a43-4c8e-9d7b-2a1f0e9c8b7a"},
		{name: "empty", id: "", want: ""},
		{name: "spaces", id: "a b", want: ""},
		{name: "newline injection", id: "abc\n{\"admin\":true}", want: ""},
		{name: "too long", id: strings.Repeat("x", maxIDLen+1), want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			assert.Equal(t, tt.want, RequestIDFromContext(WithRequestID(ctx, tt.id)))
			assert.Equal(t, tt.want, QueryIDFromContext(WithQueryID(ctx, tt.id)))
		})
	}
}

func TestFor(t *testing.T) {
	assert.NotNil(t, For(context.Background(), nil))

	tl := NewTestLogger()
	base := tl.Underlying()
	assert.Same(t, base, For(context.Background(), base))

	For(WithQueryID(context.Background(), "q1"), base).Info("hello", zap.String("x", "y"))
	tl.AssertField(t, "hello", "query.id", "q1")
	tl.AssertLogged(t, zapcore.InfoLevel, "hello")
	tl.AssertNoSecrets(t)
}
