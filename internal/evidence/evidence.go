// Package evidence holds the per-query data model shared by the pipeline
// stages: retrieved documents, the evidence bundle handed to synthesis, and
// the error taxonomy used to classify degraded outcomes.
package evidence

import (
	"fmt"
	"strings"
)

// ScoreThreshold is the minimum similarity score a retrieved document needs
// before it is considered for qualification.
const ScoreThreshold float32 = 0.5

// Metadata keys written by the ingestion job.
const (
	// KeyAttractionName holds the attraction or activity title.
	KeyAttractionName = "Attraction_name"

	// KeyAdditionalInfo holds extra visitor notes. Stored either as a list,
	// a JSON-encoded list, or a plain string depending on the backend.
	KeyAdditionalInfo = "additional Information"

	// KeyRawPayload holds the original scraped record, if kept.
	KeyRawPayload = "raw_payload"
)

// Document is a single retrieved record with its similarity score.
type Document struct {
	// ID is the store-assigned identifier, when available.
	ID string

	// Content is the text that was embedded.
	Content string

	// Metadata carries the stored payload fields.
	Metadata map[string]interface{}

	// Score is the similarity score in [0,1], higher is more similar.
	Score float32
}

// AttractionName returns the attraction name from metadata, or "" when the
// field is missing or not a string.
func (d Document) AttractionName() string {
	if d.Metadata == nil {
		return ""
	}
	switch v := d.Metadata[KeyAttractionName].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// AdditionalInfo returns the raw additional-information value and whether it
// was present.
func (d Document) AdditionalInfo() (interface{}, bool) {
	if d.Metadata == nil {
		return nil, false
	}
	v, ok := d.Metadata[KeyAdditionalInfo]
	return v, ok && v != nil
}

// Bundle is the accumulated text gathered for one query.
//
// Web is only ever populated when RAG is empty.
type Bundle struct {
	RAG           string
	Supplementary string
	Web           string
	Activity      string
}

// IsEmpty reports whether no evidence at all was gathered.
func (b Bundle) IsEmpty() bool {
	return b.RAG == "" && b.Supplementary == "" && b.Web == "" && b.Activity == ""
}
