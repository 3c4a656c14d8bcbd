// Package telemetry wires OpenTelemetry tracing and metrics for tripd.
//
// Telemetry is off by default. When enabled, traces and metrics are exported
// over OTLP (gRPC by default, http/protobuf optionally) and the providers are
// installed globally so instrumented packages pick them up through
// otel.Tracer and otel.Meter. Exporter failures degrade to no-op providers
// instead of failing startup.
package telemetry
