package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultGoogleURL is the Custom Search JSON API host.
const DefaultGoogleURL = "https://www.googleapis.com"

// googleMaxNum is the largest page size the API accepts.
const googleMaxNum = 10

// GoogleCSE queries the Google Custom Search JSON API.
type GoogleCSE struct {
	baseURL    string
	apiKey     string
	engineID   string
	httpClient *http.Client
}

// NewGoogleCSE creates a searcher for the engine cx using apiKey.
func NewGoogleCSE(baseURL, apiKey, engineID string, timeout time.Duration) (*GoogleCSE, error) {
	if apiKey == "" || engineID == "" {
		return nil, fmt.Errorf("%w: google search needs an api key and engine id", ErrUnavailable)
	}
	if baseURL == "" {
		baseURL = DefaultGoogleURL
	}
	return &GoogleCSE{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		engineID:   engineID,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type googleResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// TextSearch returns up to maxResults items, at most ten per call.
func (g *GoogleCSE) TextSearch(ctx context.Context, query string, maxResults int) ([]Result, error) {
	num := maxResults
	if num > googleMaxNum {
		num = googleMaxNum
	}

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(num))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/customsearch/v1?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		// url.Error carries the full URL, including the key.
		return nil, fmt.Errorf("searching google: %s", strings.ReplaceAll(err.Error(), g.apiKey, "[REDACTED]"))
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var body googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding google response: %w", err)
	}

	results := make([]Result, 0, len(body.Items))
	for _, item := range body.Items {
		results = append(results, Result{
			Title: strings.TrimSpace(item.Title),
			Body:  strings.TrimSpace(item.Snippet),
		})
	}
	return results, nil
}
