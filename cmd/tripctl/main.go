// Package main implements tripctl, a CLI for the tripd HTTP server.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	httpserver "github.com/fyrsmithlabs/tripd/internal/http"
)

// version information
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// client talks to one tripd server.
type client struct {
	serverURL string
	http      *http.Client
}

func newRootCmd() *cobra.Command {
	c := &client{http: &http.Client{Timeout: 60 * time.Second}}

	root := &cobra.Command{
		Use:   "tripctl",
		Short: "CLI for the tripd travel assistant",
		Long: `tripctl is a command-line interface for the tripd HTTP server.
It asks travel questions, looks up bookable activities and checks server health.`,
		Version:       version,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&c.serverURL, "server", "http://localhost:8080", "tripd server URL")

	root.AddCommand(newAskCmd(c))
	root.AddCommand(newActivityCmd(c))
	root.AddCommand(newCollectionsCmd(c))
	root.AddCommand(newHealthCmd(c))
	return root
}

func newAskCmd(c *client) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "ask <query...>",
		Short: "Ask a question about an attraction",
		Long: `Ask a question about a travel attraction.

Examples:
  tripctl ask gondola ride in Venice
  tripctl ask --json "Doge's Palace opening hours"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp httpserver.AskResponse
			req := httpserver.AskRequest{Query: strings.Join(args, " ")}
			if err := c.do(http.MethodPost, "/api/v1/ask", req, &resp); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			fmt.Fprintln(out, resp.Answer)
			if resp.WebFallback {
				fmt.Fprintln(cmd.ErrOrStderr(), "\n[tripctl] answer used web search results")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full response as JSON")
	return cmd
}

func newActivityCmd(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "activity <query...>",
		Short: "Look up live booking data for an attraction",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp httpserver.ActivityResponse
			path := "/api/v1/activity?q=" + url.QueryEscape(strings.Join(args, " "))
			if err := c.do(http.MethodGet, path, nil, &resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Summary)
			return nil
		},
	}
}

func newCollectionsCmd(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List vector store collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp httpserver.CollectionsResponse
			if err := c.do(http.MethodGet, "/api/v1/collections", nil, &resp); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(resp.Collections) == 0 {
				fmt.Fprintln(out, "No collections found")
				return nil
			}
			for _, coll := range resp.Collections {
				points := fmt.Sprint(coll.Points)
				if coll.Points < 0 {
					points = "unknown"
				}
				fmt.Fprintf(out, "%-32s %s points\n", coll.Name, points)
			}
			return nil
		},
	}
}

func newHealthCmd(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check tripd server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp httpserver.HealthResponse
			if err := c.do(http.MethodGet, "/health", nil, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Server Status: %s\n", resp.Status)
			fmt.Fprintf(cmd.OutOrStdout(), "Server URL: %s\n", c.serverURL)
			return nil
		},
	}
}

// do sends body as JSON (when non-nil) and decodes a 200 response into out.
func (c *client) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reqJSON, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(reqJSON)
	}

	target := strings.TrimRight(c.serverURL, "/") + path
	req, err := http.NewRequest(method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("server returned status %d (failed to read response body: %w)", resp.StatusCode, readErr)
		}
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
