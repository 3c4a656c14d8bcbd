package main

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/tripd/internal/activity"
	"github.com/fyrsmithlabs/tripd/internal/config"
	"github.com/fyrsmithlabs/tripd/internal/embeddings"
	"github.com/fyrsmithlabs/tripd/internal/generation"
	"github.com/fyrsmithlabs/tripd/internal/logging"
	"github.com/fyrsmithlabs/tripd/internal/orchestrator"
	"github.com/fyrsmithlabs/tripd/internal/redact"
	"github.com/fyrsmithlabs/tripd/internal/retrieval"
	"github.com/fyrsmithlabs/tripd/internal/supplementary"
	"github.com/fyrsmithlabs/tripd/internal/synthesis"
	"github.com/fyrsmithlabs/tripd/internal/telemetry"
	"github.com/fyrsmithlabs/tripd/internal/vectorstore"
	"github.com/fyrsmithlabs/tripd/internal/websearch"
)

// app holds the process-wide clients. Everything is built once at startup
// and read-only afterwards.
type app struct {
	logger       *zap.Logger
	telemetry    *telemetry.Telemetry
	embedder     embeddings.Provider
	store        vectorstore.Store
	activity     *activity.Lookup
	redactor     *redact.Redactor
	registry     *prometheus.Registry
	orchestrator *orchestrator.Orchestrator
}

// newApp wires the pipeline from cfg. Missing or failing providers are
// logged and left out so the pipeline degrades instead of refusing to start.
func newApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*app, error) {
	tel, err := telemetry.New(ctx, telemetry.FromAppConfig(cfg, version), nil)
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	lc, err := logging.FromAppConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("logging config: %w", err)
	}
	lc.Writer = zapcore.Lock(zapcore.AddSync(logOut))
	lg, err := logging.NewLogger(lc, tel.LoggerProvider())
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := lg.Underlying()

	a := &app{logger: logger, telemetry: tel, registry: prometheus.NewRegistry()}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	selection := cfg.Providers()
	logger.Info("starting tripd",
		zap.String("version", version),
		zap.Object("providers", selection),
		zap.Bool("telemetry", tel.IsEnabled()))

	a.embedder, err = embeddings.Select(ctx, cfg, logger)
	if err != nil {
		logger.Warn("retrieval disabled: no embedding provider", zap.Error(err))
	}

	store, collection, err := vectorstore.NewStore(cfg, logger)
	if err != nil {
		logger.Warn("retrieval disabled: vector store unavailable", zap.Error(err))
	} else {
		a.store = store
	}

	// The orchestrator bounds every call with pipeline.call_timeout.
	retriever := retrieval.New(a.embedder, a.store, retrieval.Config{Collection: collection}, logger)

	web, err := websearch.NewFromConfig(cfg, logger)
	if err != nil {
		logger.Warn("web search disabled", zap.Error(err))
		web = websearch.NewClient(nil, cfg.Search.RateLimit, logger)
	}

	lookup, err := activity.NewFromConfig(cfg, logger)
	if err != nil {
		logger.Warn("activity lookup disabled", zap.Error(err))
		lookup = activity.NewLookup(nil, 0, logger)
	}
	a.activity = lookup

	generator, err := generation.Select(cfg, logger)
	if err != nil {
		logger.Warn("answer generation disabled", zap.Error(err))
	}

	if !cfg.Pipeline.DisableRedaction {
		r, err := redact.New()
		if err != nil {
			return nil, fmt.Errorf("initializing redactor: %w", err)
		}
		a.redactor = r
	}

	deps := orchestrator.Deps{
		Retriever:   retriever,
		Extractor:   supplementary.New(web, cfg.Pipeline.SupplementaryWeb, logger),
		Web:         web,
		Synthesizer: synthesis.New(generator, cfg.Generation.Temperature, logger),
		Metrics:     orchestrator.NewMetrics(a.registry),
		Logger:      logger,
	}
	if lookup.Available() {
		deps.Activity = lookup
	}
	if a.redactor != nil {
		deps.Redactor = a.redactor
	}

	a.orchestrator, err = orchestrator.New(orchestrator.Config{
		PrimaryK:       cfg.Pipeline.PrimaryK,
		SupplementaryK: cfg.Pipeline.SupplementaryK,
		WebMaxResults:  cfg.Pipeline.WebMaxResults,
		CallTimeout:    cfg.Pipeline.CallTimeout,
	}, deps)
	if err != nil {
		return nil, fmt.Errorf("creating orchestrator: %w", err)
	}

	return a, nil
}

// Close releases clients and flushes telemetry.
func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("closing vector store", zap.Error(err))
		}
	}
	if a.embedder != nil {
		if err := a.embedder.Close(); err != nil {
			a.logger.Warn("closing embedder", zap.Error(err))
		}
	}
	if err := a.telemetry.Shutdown(context.Background()); err != nil {
		a.logger.Warn("telemetry shutdown", zap.Error(err))
	}
	_ = a.logger.Sync()
}
