package evidence

import (
	"context"
	"errors"
)

// Error taxonomy for pipeline stages. Callers wrap these with %w and inspect
// them with errors.Is; none of them is ever surfaced to the end user.
var (
	// ErrProviderUnavailable means no client or credentials are configured.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrTransport means a remote call failed or timed out.
	ErrTransport = errors.New("transport failure")

	// ErrNoEvidence means a stage legitimately produced nothing.
	ErrNoEvidence = errors.New("no evidence found")

	// ErrMalformedMetadata means a metadata field did not have the expected shape.
	ErrMalformedMetadata = errors.New("malformed metadata")
)

// Error classes used in log fields and metric labels.
const (
	ClassProviderUnavailable = "provider_unavailable"
	ClassTransport           = "transport"
	ClassNoEvidence          = "no_evidence"
	ClassMalformedMetadata   = "malformed_metadata"
	ClassUnknown             = "unknown"
)

// Classify maps err onto the taxonomy. Context deadline and cancellation
// count as transport failures.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrProviderUnavailable):
		return ClassProviderUnavailable
	case errors.Is(err, ErrNoEvidence):
		return ClassNoEvidence
	case errors.Is(err, ErrMalformedMetadata):
		return ClassMalformedMetadata
	case errors.Is(err, ErrTransport),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return ClassTransport
	default:
		return ClassUnknown
	}
}
