package websearch

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/tripd/internal/config"
)

// Response statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the outcome of one search. Count equals len(Results).
type Response struct {
	Status  string   `json:"status"`
	Query   string   `json:"query"`
	Results []Result `json:"results"`
	Count   int      `json:"count"`
	Error   string   `json:"error,omitempty"`
}

// OK reports whether the search succeeded.
func (r Response) OK() bool {
	return r.Status == StatusSuccess
}

// Client rate-limits and normalizes calls to a Searcher.
type Client struct {
	searcher Searcher
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewClient wraps searcher, which may be nil. ratePerSecond <= 0 disables
// rate limiting.
func NewClient(searcher Searcher, ratePerSecond float64, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}
	return &Client{
		searcher: searcher,
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger,
	}
}

// NewFromConfig builds the Client for the configured search provider.
func NewFromConfig(cfg *config.Config, logger *zap.Logger) (*Client, error) {
	var searcher Searcher
	switch provider := cfg.Providers().Search; provider {
	case config.ProviderDuckDuckGo:
		searcher = NewDuckDuckGo(cfg.Search.BaseURL, cfg.Search.Timeout)
	case config.ProviderGoogle:
		g, err := NewGoogleCSE(cfg.Search.BaseURL, cfg.Google.APIKey.Value(), cfg.Google.CSEID, cfg.Search.Timeout)
		if err != nil {
			return nil, err
		}
		searcher = g
	case config.ProviderNone:
	default:
		return nil, fmt.Errorf("unsupported search provider %q (supported: duckduckgo, google, none)", provider)
	}
	return NewClient(searcher, cfg.Search.RateLimit, logger), nil
}

// Available reports whether a backend is configured.
func (c *Client) Available() bool {
	return c != nil && c.searcher != nil
}

// Search runs query and never fails: errors, timeouts and panics in the
// backend come back as a Response with Status "error".
func (c *Client) Search(ctx context.Context, query string, maxResults int) (resp Response) {
	resp = Response{Status: StatusError, Query: query, Results: []Result{}}

	if !c.Available() {
		resp.Error = ErrUnavailable.Error()
		return resp
	}
	if maxResults < 1 {
		maxResults = 1
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("web search panicked", zap.Any("panic", r))
			resp = Response{Status: StatusError, Query: query, Results: []Result{}, Error: fmt.Sprintf("search panicked: %v", r)}
		}
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		resp.Error = fmt.Sprintf("rate limiter: %v", err)
		return resp
	}

	results, err := c.searcher.TextSearch(ctx, query, maxResults)
	if err != nil {
		c.logger.Warn("web search failed", zap.Error(err))
		resp.Error = err.Error()
		return resp
	}

	results = dedupe(results)
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	resp.Status = StatusSuccess
	resp.Results = results
	resp.Count = len(results)
	c.logger.Debug("web search completed", zap.Int("count", resp.Count))
	return resp
}

// dedupe drops results whose body repeats an earlier one and results with
// no text at all.
func dedupe(results []Result) []Result {
	seen := make(map[string]struct{}, len(results))
	out := make([]Result, 0, len(results))
	for _, r := range results {
		key := strings.TrimSpace(r.Body)
		if key == "" {
			key = strings.TrimSpace(r.Title)
		}
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Text returns the result body, or the title when the body is empty.
func (r Result) Text() string {
	if body := strings.TrimSpace(r.Body); body != "" {
		return body
	}
	return strings.TrimSpace(r.Title)
}

// Blocks renders a successful response as evidence blocks.
func Blocks(resp Response) string {
	if !resp.OK() {
		return ""
	}
	blocks := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		if text := r.Text(); text != "" {
			blocks = append(blocks, "--- Web Result ---\n"+text)
		}
	}
	return strings.Join(blocks, "\n\n")
}
