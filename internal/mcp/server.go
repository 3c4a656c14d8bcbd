package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tripd/internal/activity"
	"github.com/fyrsmithlabs/tripd/internal/orchestrator"
	"github.com/fyrsmithlabs/tripd/internal/redact"
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

// Server is an MCP server backed by the query pipeline.
type Server struct {
	mcp      *mcp.Server
	asker    Asker
	activity ActivityFinder
	redactor *redact.Redactor
	metrics  *Metrics
	logger   *zap.Logger
}

// Config configures the MCP server.
type Config struct {
	// Name is the server implementation name (default: "tripd")
	Name string

	// Version is the server version (default: "1.0.0")
	Version string

	// Logger for structured logging
	Logger *zap.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:    "tripd",
		Version: "1.0.0",
		Logger:  zap.NewNop(),
	}
}

// NewServer creates a new MCP server. asker is required; a nil finder leaves
// activity_lookup registered but always unavailable, and a nil redactor
// returns tool output unchanged.
func NewServer(cfg *Config, asker Asker, finder ActivityFinder, redactor *redact.Redactor) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if asker == nil {
		return nil, fmt.Errorf("asker is required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		},
		nil,
	)

	s := &Server{
		mcp:      mcpServer,
		asker:    asker,
		activity: finder,
		redactor: redactor,
		metrics:  NewMetrics(cfg.Logger),
		logger:   cfg.Logger,
	}
	s.registerTools()

	return s, nil
}

// Run starts the MCP server on the stdio transport.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server on stdio transport")
	transport := &mcp.StdioTransport{}
	if err := s.mcp.Run(ctx, transport); err != nil {
		return fmt.Errorf("server run failed: %w", err)
	}
	return nil
}
