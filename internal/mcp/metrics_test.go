package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/fyrsmithlabs/tripd/internal/activity"
	"github.com/fyrsmithlabs/tripd/internal/evidence"
)

// meteredServer returns a Server whose metrics are read by the returned
// reader.
func meteredServer(t *testing.T, finder ActivityFinder) (*Server, *metric.ManualReader) {
	t.Helper()
	s, err := NewServer(nil, &fakeAsker{answer: "## Overview"}, finder, nil)
	require.NoError(t, err)

	reader := metric.NewManualReader()
	mp := metric.NewMeterProvider(metric.WithReader(reader))
	s.metrics = newMetrics(mp.Meter(instrumentationName), nil)
	return s, reader
}

// counts flattens an Int64 counter to "k=v,k=v" attribute sets -> total.
func counts(t *testing.T, reader *metric.ManualReader, name string) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if md.Name != name {
				continue
			}
			sum, ok := md.Data.(metricdata.Sum[int64])
			require.True(t, ok, name)
			for _, dp := range sum.DataPoints {
				out[dp.Attributes.Encoded(attribute.DefaultEncoder())] += dp.Value
			}
		}
	}
	return out
}

func TestMetrics_TravelAsk(t *testing.T) {
	s, reader := meteredServer(t, nil)
	ctx := context.Background()

	_, _, err := s.handleTravelAsk(ctx, nil, travelAskInput{Query: "rialto bridge"})
	require.NoError(t, err)
	_, _, err = s.handleTravelAsk(ctx, nil, travelAskInput{})
	require.Error(t, err)

	assert.Equal(t, map[string]int64{
		"result=ok,tool=travel_ask":               1,
		"result=validation_error,tool=travel_ask": 1,
	}, counts(t, reader, "tripd.mcp.tool.calls_total"))
	assert.Equal(t, map[string]int64{
		"outcome=rejected_off_topic,web_fallback=true": 1,
	}, counts(t, reader, "tripd.mcp.answers_total"))
}

func TestMetrics_ActivityLookup(t *testing.T) {
	venice := activity.NewLookup(activity.NewVeniceSource(), time.Second, nil)
	s, reader := meteredServer(t, venice)
	ctx := context.Background()

	_, _, err := s.handleActivityLookup(ctx, nil, activityLookupInput{Query: "gondola ride"})
	require.NoError(t, err)
	_, _, err = s.handleActivityLookup(ctx, nil, activityLookupInput{Query: "Is the Eiffel Tower open on Sunday"})
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{
		"found=true":  1,
		"found=false": 1,
	}, counts(t, reader, "tripd.mcp.activity_matches_total"))
	assert.Equal(t, map[string]int64{
		"result=ok,tool=activity_lookup": 2,
	}, counts(t, reader, "tripd.mcp.tool.calls_total"))
}

func TestMetrics_ProviderErrorsLabelled(t *testing.T) {
	s, reader := meteredServer(t, nil)

	_, _, err := s.handleActivityLookup(context.Background(), nil, activityLookupInput{Query: "gondola"})
	require.ErrorIs(t, err, evidence.ErrProviderUnavailable)

	assert.Equal(t, map[string]int64{
		"result=provider_unavailable,tool=activity_lookup": 1,
	}, counts(t, reader, "tripd.mcp.tool.calls_total"))
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil error", nil, ""},
		{"invalid input", fmt.Errorf("%w: query is required", errInvalidInput), "validation_error"},
		{"transport", fmt.Errorf("%w: connection reset", evidence.ErrTransport), "transport"},
		{"no evidence", evidence.ErrNoEvidence, "no_evidence"},
		{"unavailable", evidence.ErrProviderUnavailable, "provider_unavailable"},
		{"generic error", errors.New("something went wrong"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, categorizeError(tt.err))
		})
	}
}
