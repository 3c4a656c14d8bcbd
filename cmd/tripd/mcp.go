package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fyrsmithlabs/tripd/internal/config"
	"github.com/fyrsmithlabs/tripd/internal/mcp"
)

// runMCP serves the MCP tools over stdio. stdout carries the protocol, so
// logs go to stderr.
func runMCP(ctx context.Context, configPath string) error {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	a, err := newApp(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	mcpCfg := mcp.DefaultConfig()
	mcpCfg.Version = version
	mcpCfg.Logger = a.logger

	server, err := mcp.NewServer(mcpCfg, a.orchestrator, a.activity, a.redactor)
	if err != nil {
		return fmt.Errorf("creating mcp server: %w", err)
	}

	fmt.Fprintf(os.Stderr, "tripd mcp mode started\n")
	return server.Run(ctx)
}
