package http

import "github.com/fyrsmithlabs/tripd/internal/orchestrator"

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// AskRequest is the request body for POST /api/v1/ask.
type AskRequest struct {
	Query string `json:"query"`
}

// AskResponse is the response body for POST /api/v1/ask.
type AskResponse struct {
	QueryID     string        `json:"query_id"`
	Answer      string        `json:"answer"`
	Outcome     string        `json:"outcome"`
	WebFallback bool          `json:"web_fallback"`
	Qualified   int           `json:"qualified"`
	Rejected    int           `json:"rejected"`
	States      []StateStatus `json:"states"`
}

// StateStatus is one pipeline state in an AskResponse.
type StateStatus struct {
	State      string  `json:"state"`
	Status     string  `json:"status"`
	DurationMS float64 `json:"duration_ms"`
}

// AskResponseFrom converts an orchestrator result to its wire form.
func AskResponseFrom(r *orchestrator.Result) AskResponse {
	resp := AskResponse{
		QueryID:     r.QueryID,
		Answer:      r.Answer,
		Outcome:     string(r.Outcome),
		WebFallback: r.WebFallback,
		Qualified:   r.Qualified,
		Rejected:    r.Rejected,
		States:      make([]StateStatus, 0, len(r.States)),
	}
	for _, s := range r.States {
		resp.States = append(resp.States, StateStatus{
			State:      string(s.State),
			Status:     string(s.Status),
			DurationMS: float64(s.Duration.Microseconds()) / 1000,
		})
	}
	return resp
}

// CollectionsResponse is the response body for GET /api/v1/collections.
type CollectionsResponse struct {
	Collections []CollectionStatus `json:"collections"`
}

// CollectionStatus describes one vector store collection. Points is -1 when
// the count could not be read.
type CollectionStatus struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// ActivityResponse is the response body for GET /api/v1/activity.
type ActivityResponse struct {
	Summary string `json:"summary"`
}
