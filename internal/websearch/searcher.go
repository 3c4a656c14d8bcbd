package websearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Result is a single web hit.
type Result struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Searcher runs a text search against one backend.
type Searcher interface {
	TextSearch(ctx context.Context, query string, maxResults int) ([]Result, error)
}

var (
	// ErrUnavailable is reported when no backend is configured.
	ErrUnavailable = errors.New("web search provider unavailable")

	// ErrBadStatus is returned for non-2xx backend responses.
	ErrBadStatus = errors.New("unexpected status from search backend")
)

const userAgent = "tripd/1.0 (+https://github.com/fyrsmithlabs/tripd)"

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%w: %d: %s", ErrBadStatus, resp.StatusCode, snippet)
}
