package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the GetYourGuide partner API host.
const DefaultBaseURL = "https://api.getyourguide.com"

// HTTPConfig configures an HTTPSource.
type HTTPConfig struct {
	BaseURL   string
	APIKey    string
	RateLimit float64
	Timeout   time.Duration
}

// HTTPSource reads tours from a GetYourGuide-style partner API.
type HTTPSource struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewHTTPSource creates an HTTPSource. APIKey is required.
func NewHTTPSource(cfg HTTPConfig) (*HTTPSource, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("activity api key required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	return &HTTPSource{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
	}, nil
}

type searchResponse struct {
	Tours []Match `json:"tours"`
}

// Search calls GET /1/tours.
func (s *HTTPSource) Search(ctx context.Context, query string, limit int) ([]Match, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

	var body searchResponse
	if err := s.get(ctx, "/1/tours?"+params.Encode(), &body); err != nil {
		return nil, err
	}
	return body.Tours, nil
}

// Details calls GET /1/tours/{id}.
func (s *HTTPSource) Details(ctx context.Context, id string) (*Details, error) {
	var d Details
	if err := s.get(ctx, "/1/tours/"+url.PathEscape(id), &d); err != nil {
		return nil, err
	}
	if d.ID == "" {
		d.ID = id
	}
	return &d, nil
}

func (s *HTTPSource) get(ctx context.Context, path string, out interface{}) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-ACCESS-TOKEN", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling activity api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("activity api returned %d: %s", resp.StatusCode, snippet)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding activity response: %w", err)
	}
	return nil
}
