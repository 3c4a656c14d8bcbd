package orchestrator

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/tripd/internal/evidence"
	"github.com/fyrsmithlabs/tripd/internal/logging"
	"github.com/fyrsmithlabs/tripd/internal/relevance"
	"github.com/fyrsmithlabs/tripd/internal/synthesis"
	"github.com/fyrsmithlabs/tripd/internal/websearch"
)

var tracer = otel.Tracer("tripd.orchestrator")

// EmptyQueryMessage is returned for blank queries.
const EmptyQueryMessage = "Please ask a question about an attraction or activity."

// noSupplementaryMarker marks extractor output that carries no information.
const noSupplementaryMarker = "no specific additional information"

// Config holds the pipeline parameters.
type Config struct {
	PrimaryK       int
	SupplementaryK int
	WebMaxResults  int

	// CallTimeout bounds every collaborator call.
	CallTimeout time.Duration
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.PrimaryK <= 0 {
		c.PrimaryK = 3
	}
	if c.SupplementaryK <= 0 {
		c.SupplementaryK = 2
	}
	if c.WebMaxResults <= 0 {
		c.WebMaxResults = 3
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 20 * time.Second
	}
}

// Deps are the collaborators. Only Retriever and Synthesizer are required;
// a nil Web, Activity or Redactor disables that feature.
type Deps struct {
	Retriever   Retriever
	Extractor   Extractor
	Web         WebSearcher
	Activity    ActivityLookup
	Synthesizer Synthesizer
	Redactor    Redactor
	Metrics     *Metrics
	Logger      *zap.Logger
}

// Orchestrator runs queries through the pipeline. It is safe for
// concurrent use; per-query state lives in a run.
type Orchestrator struct {
	config Config
	deps   Deps
	logger *zap.Logger
}

// New creates an Orchestrator.
func New(cfg Config, deps Deps) (*Orchestrator, error) {
	if deps.Retriever == nil {
		return nil, fmt.Errorf("orchestrator: retriever is required")
	}
	if deps.Synthesizer == nil {
		return nil, fmt.Errorf("orchestrator: synthesizer is required")
	}
	cfg.ApplyDefaults()

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{config: cfg, deps: deps, logger: logger}, nil
}

// Answer returns the answer text for query.
func (o *Orchestrator) Answer(ctx context.Context, query string) string {
	return o.Run(ctx, query).Answer
}

// run is the state of one query.
type run struct {
	o      *Orchestrator
	logger *zap.Logger
	query  string
	result *Result
}

// Run answers query and reports how the answer was built.
func (o *Orchestrator) Run(ctx context.Context, query string) *Result {
	result := &Result{QueryID: uuid.NewString()}
	ctx = logging.WithQueryID(ctx, result.QueryID)
	logger := logging.For(ctx, o.logger)

	query = strings.TrimSpace(query)
	if query == "" {
		result.Answer = EmptyQueryMessage
		result.Outcome = OutcomeEmptyQuery
		o.deps.Metrics.observeQuery(string(OutcomeEmptyQuery))
		logger.Info("empty query rejected")
		return result
	}

	if o.deps.Redactor != nil {
		redacted, findings := o.deps.Redactor.Redact(query)
		if len(findings) > 0 {
			logger.Warn("secrets redacted from query", zap.Int("count", len(findings)))
			query = redacted
			result.Redactions = len(findings)
		}
	}
	result.Query = query

	ctx, span := tracer.Start(ctx, "Orchestrator.Run")
	defer span.End()
	span.SetAttributes(attribute.String("query.id", result.QueryID))

	// Overwritten by gather_primary_evidence; kept if that state panics.
	result.Outcome = relevance.OutcomeNoEvidence

	r := &run{o: o, logger: logger, query: query, result: result}
	start := time.Now()

	var activity string
	g, gctx := errgroup.WithContext(ctx)
	if o.deps.Activity != nil {
		g.Go(func() error {
			activity = r.lookupActivity(gctx)
			return nil
		})
	}

	r.step(ctx, StateGatherSupplementary, r.gatherSupplementary, func() { result.Bundle.Supplementary = "" })
	r.step(ctx, StateGatherPrimaryEvidence, r.gatherPrimaryEvidence, func() {
		result.Bundle.RAG = ""
		result.Bundle.Web = ""
	})

	_ = g.Wait()
	result.Bundle.Activity = activity

	r.step(ctx, StateSynthesize, r.synthesize, func() { result.Answer = "" })
	if strings.TrimSpace(result.Answer) == "" {
		result.Answer = synthesis.GenerationFailedMessage
	}
	result.States = append(result.States, StateResult{State: StateDone, Status: StatusCompleted, StartedAt: time.Now()})

	o.deps.Metrics.observeQuery(string(result.Outcome))
	span.SetAttributes(
		attribute.String("outcome", string(result.Outcome)),
		attribute.Bool("web_fallback", result.WebFallback),
	)

	logger.Info("query answered",
		zap.String("outcome", string(result.Outcome)),
		zap.Int("qualified", result.Qualified),
		zap.Int("rejected", result.Rejected),
		zap.Bool("web_fallback", result.WebFallback),
		zap.Bool("activity", activity != ""),
		zap.Duration("duration", time.Since(start)))

	return result
}

// step executes one state. A panic is logged and reset clears whatever the
// state had written.
func (r *run) step(ctx context.Context, state State, fn func(context.Context), reset func()) {
	ctx, span := tracer.Start(ctx, "Orchestrator."+string(state))
	defer span.End()

	sr := StateResult{State: state, Status: StatusCompleted, StartedAt: time.Now()}
	defer func() {
		if p := recover(); p != nil {
			sr.Status = StatusPanicked
			reset()
			span.SetStatus(codes.Error, fmt.Sprint(p))
			r.logger.Error("pipeline state panicked",
				zap.String("state", string(state)),
				zap.Any("panic", p),
				zap.ByteString("stack", debug.Stack()))
		}
		sr.Duration = time.Since(sr.StartedAt)
		r.result.States = append(r.result.States, sr)
		r.o.deps.Metrics.observeState(state, sr.Duration.Seconds())
	}()

	fn(ctx)
}

func (r *run) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.o.config.CallTimeout)
}

func (r *run) retrieve(ctx context.Context, k int) []evidence.Document {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.o.deps.Retriever.Retrieve(ctx, r.query, k)
}

func (r *run) gatherSupplementary(ctx context.Context) {
	if r.o.deps.Extractor == nil {
		return
	}
	verdict := relevance.Qualify(r.query, r.retrieve(ctx, r.o.config.SupplementaryK))

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	text := r.o.deps.Extractor.Gather(ctx, r.query, verdict.Qualified)

	if strings.Contains(strings.ToLower(text), noSupplementaryMarker) {
		text = ""
	}
	r.result.Bundle.Supplementary = text
}

func (r *run) gatherPrimaryEvidence(ctx context.Context) {
	verdict := relevance.Qualify(r.query, r.retrieve(ctx, r.o.config.PrimaryK))

	r.result.Qualified = len(verdict.Qualified)
	r.result.Rejected = len(verdict.Rejected)
	r.result.Outcome = verdict.Outcome()

	metrics := r.o.deps.Metrics
	metrics.observeDocuments("qualified", len(verdict.Qualified))
	metrics.observeDocuments("rejected", len(verdict.Rejected))
	metrics.observeDocuments("below_threshold", len(verdict.BelowThreshold))

	for _, doc := range verdict.Rejected {
		r.logger.Info("document rejected as off-topic",
			zap.String("attraction", doc.AttractionName()),
			zap.Float32("score", doc.Score))
	}

	if len(verdict.Qualified) > 0 {
		r.result.Bundle.RAG = RAGBlocks(verdict.Qualified)
		return
	}

	if r.o.deps.Web == nil {
		return
	}
	r.result.WebFallback = true
	metrics.observeWebFallback()

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	resp := r.o.deps.Web.Search(ctx, r.query, r.o.config.WebMaxResults)
	if !resp.OK() {
		r.logger.Warn("web fallback returned nothing", zap.String("error", resp.Error))
		return
	}
	r.result.Bundle.Web = websearch.Blocks(resp)
}

func (r *run) synthesize(ctx context.Context) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	r.result.Answer = r.o.deps.Synthesizer.Synthesize(ctx, r.query, r.result.Bundle)
}

func (r *run) lookupActivity(ctx context.Context) (summary string) {
	defer func() {
		if p := recover(); p != nil {
			summary = ""
			r.o.deps.Metrics.observeActivity("panicked")
			r.logger.Error("activity lookup panicked", zap.Any("panic", p))
		}
	}()

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	summary = r.o.deps.Activity.Lookup(ctx, r.query)

	if summary == "" {
		r.o.deps.Metrics.observeActivity("empty")
	} else {
		r.o.deps.Metrics.observeActivity("found")
	}
	return summary
}

// RAGBlocks renders qualified documents as scored evidence blocks.
func RAGBlocks(docs []evidence.Document) string {
	blocks := make([]string, 0, len(docs))
	for _, doc := range docs {
		blocks = append(blocks, fmt.Sprintf("--- RAG Result (Score: %.2f) ---\n%s", doc.Score, doc.Content))
	}
	return strings.Join(blocks, "\n\n")
}
