package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tripd/internal/activity"
	"github.com/fyrsmithlabs/tripd/internal/evidence"
	"github.com/fyrsmithlabs/tripd/internal/logging"
	"github.com/fyrsmithlabs/tripd/internal/redact"
)

var errInvalidInput = errors.New("invalid input")

type travelAskInput struct {
	Query string `json:"query" jsonschema:"required,Question about an attraction or activity"`
}

type travelAskOutput struct {
	QueryID     string `json:"query_id" jsonschema:"Identifier of this query in server logs"`
	Answer      string `json:"answer" jsonschema:"Markdown answer"`
	Outcome     string `json:"outcome" jsonschema:"Evidence outcome (qualified rejected_off_topic no_evidence)"`
	WebFallback bool   `json:"web_fallback" jsonschema:"Whether web search results were used"`
}

type activityLookupInput struct {
	Query string `json:"query" jsonschema:"required,Attraction or activity to look up"`
}

type activityLookupOutput struct {
	Found   bool   `json:"found" jsonschema:"Whether a matching activity was found"`
	Summary string `json:"summary" jsonschema:"Booking summary block"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "travel_ask",
		Description: "Answer a question about a travel attraction using the attraction knowledge base, web search and live booking data",
	}, s.handleTravelAsk)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "activity_lookup",
		Description: "Look up live booking data (price, inclusions, meeting point) for an attraction",
	}, s.handleActivityLookup)
}

func (s *Server) handleTravelAsk(ctx context.Context, req *mcp.CallToolRequest, args travelAskInput) (*mcp.CallToolResult, travelAskOutput, error) {
	start := time.Now()
	var toolErr error
	defer func() { s.metrics.RecordCall(ctx, "travel_ask", time.Since(start), toolErr) }()

	if strings.TrimSpace(args.Query) == "" {
		toolErr = fmt.Errorf("%w: query is required", errInvalidInput)
		return nil, travelAskOutput{}, toolErr
	}

	result := s.asker.Run(ctx, args.Query)
	s.metrics.RecordAnswer(ctx, result)
	output := travelAskOutput{
		QueryID:     result.QueryID,
		Answer:      s.scrub(ctx, "answer", result.Answer),
		Outcome:     string(result.Outcome),
		WebFallback: result.WebFallback,
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: output.Answer},
		},
	}, output, nil
}

func (s *Server) handleActivityLookup(ctx context.Context, req *mcp.CallToolRequest, args activityLookupInput) (*mcp.CallToolResult, activityLookupOutput, error) {
	start := time.Now()
	var toolErr error
	defer func() { s.metrics.RecordCall(ctx, "activity_lookup", time.Since(start), toolErr) }()

	if strings.TrimSpace(args.Query) == "" {
		toolErr = fmt.Errorf("%w: query is required", errInvalidInput)
		return nil, activityLookupOutput{}, toolErr
	}
	if s.activity == nil || !s.activity.Available() {
		toolErr = fmt.Errorf("activity lookup: %w", evidence.ErrProviderUnavailable)
		return nil, activityLookupOutput{}, toolErr
	}

	details, err := s.activity.Find(ctx, s.scrub(ctx, "query", args.Query))
	if errors.Is(err, evidence.ErrNoEvidence) {
		s.metrics.RecordBooking(ctx, false)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: "No matching activity found."},
			},
		}, activityLookupOutput{}, nil
	}
	if err != nil {
		toolErr = fmt.Errorf("activity lookup failed: %w", err)
		return nil, activityLookupOutput{}, toolErr
	}

	s.metrics.RecordBooking(ctx, true)
	output := activityLookupOutput{
		Found:   true,
		Summary: s.scrub(ctx, "summary", activity.Render(activity.FromDetails(details))),
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: output.Summary},
		},
	}, output, nil
}

// scrub redacts secrets from a tool argument before it leaves the process
// and from tool output before it reaches the client.
func (s *Server) scrub(ctx context.Context, field, text string) string {
	redacted, findings := s.redactor.Redact(text)
	if len(findings) > 0 {
		logging.For(ctx, s.logger).Warn("secrets redacted",
			zap.String("field", field),
			zap.Int("count", len(findings)),
			zap.Strings("rules", redact.RuleIDs(findings)))
	}
	return redacted
}
