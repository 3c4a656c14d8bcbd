package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/tripd/internal/config"
)

func newBufferedLogger(t *testing.T, mutate func(*Config)) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cfg := NewDefaultConfig()
	cfg.Sampling.Enabled = false
	cfg.Writer = zapcore.AddSync(&buf)
	if mutate != nil {
		mutate(cfg)
	}
	logger, err := NewLogger(cfg, nil)
	require.NoError(t, err)
	return logger, &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestNewLogger_WritesServiceAndContextFields(t *testing.T) {
	logger, buf := newBufferedLogger(t, nil)

	ctx := WithQueryID(context.Background(), "q-123")
	ctx = WithRequestID(ctx, "req_1")
	logger.Info(ctx, "query received", zap.Int("k", 3))

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "query received", lines[0]["msg"])
	assert.Equal(t, "tripd", lines[0]["service"])
	assert.Equal(t, "q-123", lines[0]["query.id"])
	assert.Equal(t, "req_1", lines[0]["request.id"])
	assert.EqualValues(t, 3, lines[0]["k"])
}

func TestNewLogger_RedactsCallFieldsAndMessage(t *testing.T) {
	logger, buf := newBufferedLogger(t, nil)

	groqKey := "gsk_" + strings.Repeat("a", 40)
	logger.Info(context.Background(), "calling with "+groqKey,
		zap.String("api_key", "plain-value"),
		zap.String("header", "Bearer abc.def"),
		zap.String("query", "gondola rides"),
	)

	out := buf.String()
	assert.NotContains(t, out, groqKey)
	assert.NotContains(t, out, "plain-value")
	assert.NotContains(t, out, "abc.def")
	assert.Contains(t, out, "gondola rides")
}

func TestNewLogger_RedactsWithFields(t *testing.T) {
	logger, buf := newBufferedLogger(t, nil)

	hfKey := "hf_" + strings.Repeat("B", 34)
	logger.With(zap.String("note", "key "+hfKey), zap.String("token", "t")).
		Info(context.Background(), "child")

	out := buf.String()
	assert.NotContains(t, out, hfKey)
	assert.NotContains(t, out, `"token":"t"`)
}

func TestNewLogger_LevelFilters(t *testing.T) {
	logger, buf := newBufferedLogger(t, func(c *Config) { c.Level = zapcore.WarnLevel })

	logger.Info(context.Background(), "dropped")
	logger.Warn(context.Background(), "kept")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "kept", lines[0]["msg"])
}

func TestNewLogger_SamplingNeverDropsErrors(t *testing.T) {
	logger, buf := newBufferedLogger(t, func(c *Config) {
		c.Sampling = SamplingConfig{Enabled: true, Tick: 1e9, Initial: 1, Thereafter: 0}
	})

	for i := 0; i < 5; i++ {
		logger.Info(context.Background(), "repeated")
		logger.Error(context.Background(), "failure")
	}

	var infos, errs int
	for _, l := range decodeLines(t, buf) {
		switch l["msg"] {
		case "repeated":
			infos++
		case "failure":
			errs++
		}
	}
	assert.Equal(t, 1, infos)
	assert.Equal(t, 5, errs)
}

func TestConfig_Validate(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Format = "xml"
	assert.Error(t, cfg.Validate())

	cfg = NewDefaultConfig()
	cfg.Output.Stdout = false
	assert.ErrorContains(t, cfg.Validate(), "at least one output")

	cfg = NewDefaultConfig()
	cfg.Redaction.Patterns = []string{"("}
	assert.ErrorContains(t, cfg.Validate(), "invalid redaction pattern")
}

func TestFromAppConfig(t *testing.T) {
	app := &config.Config{
		Log:           config.LogConfig{Level: "debug", Format: "console"},
		Observability: config.ObservabilityConfig{EnableTelemetry: true, ServiceName: "tripd-test"},
	}

	lc, err := FromAppConfig(app)
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lc.Level)
	assert.Equal(t, "console", lc.Format)
	assert.True(t, lc.Output.OTEL)
	assert.Equal(t, "tripd-test", lc.Fields["service"])

	app.Log.Level = "loud"
	_, err = FromAppConfig(app)
	assert.Error(t, err)
}

func TestSecretField(t *testing.T) {
	tl := NewTestLogger()
	tl.Info(context.Background(), "configured", Secret("groq", config.Secret("gsk_123")))

	entries := tl.FilterMessage("configured").All()
	require.Len(t, entries, 1)
	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, entries[0].Context[0].Interface.(zapcore.ObjectMarshaler).MarshalLogObject(enc))
	assert.Equal(t, "[REDACTED:7]", enc.Fields["groq"])

	assert.Equal(t, "[REDACTED:5]", RedactedString("k", "hello").String)
}
