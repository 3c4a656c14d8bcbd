// Tripd answers travel-attraction questions over HTTP or MCP stdio.
//
// Configuration is loaded from an optional YAML file, a .env file and the
// environment. See internal/config for details.
//
// Usage:
//
//	# Start the HTTP server
//	tripd
//
//	# Serve MCP tools over stdio
//	tripd mcp
//
//	# Configure via environment
//	GROQ_API_KEY=... QDRANT_URL=https://... tripd
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tripd/internal/config"
	httpserver "github.com/fyrsmithlabs/tripd/internal/http"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before the environment is read")
	flag.Parse()
	args := flag.Args()

	if err := loadDotEnv(*envFile); err != nil {
		log.Fatalf("Failed to load %s: %v", *envFile, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mode := "serve"
	if len(args) > 0 {
		mode = args[0]
	}

	var err error
	switch mode {
	case "serve":
		err = run(ctx, *configPath)
	case "mcp":
		err = runMCP(ctx, *configPath)
	case "version":
		printVersion()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", mode)
		fmt.Fprintf(os.Stderr, "\nUsage:\n")
		fmt.Fprintf(os.Stderr, "  tripd           Start the HTTP server\n")
		fmt.Fprintf(os.Stderr, "  tripd mcp       Serve MCP tools over stdio\n")
		fmt.Fprintf(os.Stderr, "  tripd version   Show version information\n")
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("tripd: %v", err)
	}
}

// loadDotEnv loads path into the environment. A missing file is not an
// error; variables already set win.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func printVersion() {
	fmt.Printf("tripd by Fyrsmith Labs\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run starts the HTTP server and blocks until ctx is cancelled, then shuts
// down gracefully.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	a, err := newApp(ctx, cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	deps := httpserver.Deps{
		Asker:    a.orchestrator,
		Store:    a.store,
		Activity: a.activity,
		Gatherer: a.registry,
		Metrics:  httpserver.NewHTTPMetrics(a.logger),
	}
	if a.redactor != nil {
		deps.Redactor = a.redactor
	}
	srv, err := httpserver.NewServer(deps, a.logger, &httpserver.Config{
		Host:      cfg.Server.Host,
		Port:      cfg.Server.Port,
		BodyLimit: cfg.Server.BodyLimit,
	})
	if err != nil {
		return fmt.Errorf("creating http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown failed", zap.Error(err))
		return err
	}
	return nil
}
