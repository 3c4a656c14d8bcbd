// Package http provides the HTTP API for tripd.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tripd/internal/activity"
	"github.com/fyrsmithlabs/tripd/internal/evidence"
	"github.com/fyrsmithlabs/tripd/internal/logging"
	"github.com/fyrsmithlabs/tripd/internal/orchestrator"
	"github.com/fyrsmithlabs/tripd/internal/redact"
	"github.com/fyrsmithlabs/tripd/internal/vectorstore"
)

// Asker answers travel queries.
type Asker interface {
	Run(ctx context.Context, query string) *orchestrator.Result
}

// ActivityFinder looks up bookable activities.
type ActivityFinder interface {
	Available() bool
	Find(ctx context.Context, query string) (*activity.Details, error)
}

// Redactor scrubs credentials from queries bound for external providers.
type Redactor interface {
	Redact(text string) (string, []redact.Finding)
}

// Deps are the collaborators behind the endpoints. Only Asker is required;
// the other endpoints answer 503 when their dependency is nil. A nil
// Redactor passes activity queries through unchanged.
type Deps struct {
	Asker    Asker
	Store    vectorstore.Store
	Activity ActivityFinder
	Redactor Redactor
	Gatherer prometheus.Gatherer
	Metrics  *HTTPMetrics
}

// Server provides HTTP endpoints for tripd.
type Server struct {
	echo   *echo.Echo
	deps   Deps
	logger *zap.Logger
	config *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host      string
	Port      int
	BodyLimit string
}

// NewServer creates a new HTTP server.
func NewServer(deps Deps, logger *zap.Logger, cfg *Config) (*Server, error) {
	if deps.Asker == nil {
		return nil, fmt.Errorf("asker cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8080,
		}
	}
	if cfg.BodyLimit == "" {
		cfg.BodyLimit = "64K"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(logging.WithRequestID(req.Context(), id)))
		},
	}))
	if deps.Metrics != nil {
		e.Use(deps.Metrics.MetricsMiddleware())
	}
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			logging.For(c.Request().Context(), logger).Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
			)
			return nil
		}
	})
	e.Use(middleware.BodyLimit(cfg.BodyLimit))

	s := &Server{
		echo:   e,
		deps:   deps,
		logger: logger,
		config: cfg,
	}

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	gatherer := s.deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/ask", s.handleAsk)
	v1.GET("/collections", s.handleCollections)
	v1.GET("/activity", s.handleActivity)
}

// Handler exposes the router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleAsk runs a query through the orchestrator.
func (s *Server) handleAsk(c echo.Context) error {
	var req AskRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid ask request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Query) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query field is required")
	}

	ctx := c.Request().Context()
	result := s.deps.Asker.Run(ctx, req.Query)
	s.deps.Metrics.RecordAnswer(ctx, result)
	return c.JSON(http.StatusOK, AskResponseFrom(result))
}

// handleCollections lists the vector store's collections with point counts.
func (s *Server) handleCollections(c echo.Context) error {
	if s.deps.Store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "vector store not configured")
	}
	ctx := c.Request().Context()

	collections, err := CollectionStatuses(ctx, s.deps.Store)
	if err != nil {
		logging.For(ctx, s.logger).Warn("listing collections failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusServiceUnavailable, "vector store unavailable")
	}
	return c.JSON(http.StatusOK, CollectionsResponse{Collections: collections})
}

// handleActivity returns the booking summary for the q parameter.
func (s *Server) handleActivity(c echo.Context) error {
	if s.deps.Activity == nil || !s.deps.Activity.Available() {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "activity lookup not configured")
	}
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q parameter is required")
	}
	ctx := c.Request().Context()

	if s.deps.Redactor != nil {
		redacted, findings := s.deps.Redactor.Redact(query)
		if len(findings) > 0 {
			logging.For(ctx, s.logger).Warn("secrets redacted from activity query",
				zap.Strings("rules", redact.RuleIDs(findings)))
			query = redacted
		}
	}

	details, err := s.deps.Activity.Find(ctx, query)
	switch {
	case err == nil:
		s.deps.Metrics.RecordActivity(ctx, activityFound)
		return c.JSON(http.StatusOK, ActivityResponse{
			Summary: activity.Render(activity.FromDetails(details)),
		})
	case errors.Is(err, evidence.ErrNoEvidence):
		s.deps.Metrics.RecordActivity(ctx, activityNotFound)
		return echo.NewHTTPError(http.StatusNotFound, "no matching activity")
	case errors.Is(err, evidence.ErrProviderUnavailable):
		s.deps.Metrics.RecordActivity(ctx, activityUnavailable)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "activity lookup not configured")
	default:
		s.deps.Metrics.RecordActivity(ctx, activityFailed)
		logging.For(ctx, s.logger).Warn("activity lookup failed",
			zap.String("error_class", evidence.Classify(err)),
			zap.Error(err))
		return echo.NewHTTPError(http.StatusBadGateway, "activity provider failed")
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
