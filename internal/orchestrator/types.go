package orchestrator

import (
	"context"
	"time"

	"github.com/fyrsmithlabs/tripd/internal/evidence"
	"github.com/fyrsmithlabs/tripd/internal/redact"
	"github.com/fyrsmithlabs/tripd/internal/relevance"
	"github.com/fyrsmithlabs/tripd/internal/websearch"
)

// State is a step of the query pipeline.
type State string

const (
	StateGatherSupplementary   State = "gather_supplementary"
	StateGatherPrimaryEvidence State = "gather_primary_evidence"
	StateSynthesize            State = "synthesize"
	StateDone                  State = "done"
)

// AllStates returns the states in execution order.
func AllStates() []State {
	return []State{StateGatherSupplementary, StateGatherPrimaryEvidence, StateSynthesize, StateDone}
}

// StateStatus is the outcome of one state.
type StateStatus string

const (
	StatusCompleted StateStatus = "completed"
	StatusPanicked  StateStatus = "panicked"
)

// StateResult records one executed state.
type StateResult struct {
	State     State         `json:"state"`
	Status    StateStatus   `json:"status"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// OutcomeEmptyQuery labels queries rejected before any state ran.
const OutcomeEmptyQuery relevance.Outcome = "empty_query"

// Result is everything known about one answered query.
type Result struct {
	QueryID     string            `json:"query_id"`
	Query       string            `json:"query"`
	Answer      string            `json:"answer"`
	Bundle      evidence.Bundle   `json:"-"`
	States      []StateResult     `json:"states"`
	Qualified   int               `json:"qualified"`
	Rejected    int               `json:"rejected"`
	WebFallback bool              `json:"web_fallback"`
	Outcome     relevance.Outcome `json:"outcome"`
	Redactions  int               `json:"redactions"`
}

// Retriever fetches scored documents for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) []evidence.Document
}

// Extractor gathers supplementary notes from qualified documents.
type Extractor interface {
	Gather(ctx context.Context, query string, qualified []evidence.Document) string
}

// WebSearcher is the web fallback.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) websearch.Response
}

// ActivityLookup returns a booking summary, or "" when nothing matched.
type ActivityLookup interface {
	Lookup(ctx context.Context, query string) string
}

// Synthesizer writes the final answer.
type Synthesizer interface {
	Synthesize(ctx context.Context, query string, b evidence.Bundle) string
}

// Redactor scrubs credentials from outbound text.
type Redactor interface {
	Redact(text string) (string, []redact.Finding)
}
