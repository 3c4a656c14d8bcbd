package websearch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/tripd/internal/config"
)

const ddgPage = `<html><body>
<div class="result results_links result--ad">
  <a class="result__a" href="#">Sponsored gondolas</a>
  <a class="result__snippet">Buy now</a>
</div>
<div class="result results_links">
  <h2><a class="result__a" href="https://example.com/gondola">Venice Gondola Guide</a></h2>
  <a class="result__snippet">Gondola rides cost around 90 euros
     for 30 minutes.</a>
</div>
<div class="result results_links">
  <h2><a class="result__a" href="https://example.com/doge">Doge's Palace</a></h2>
  <a class="result__snippet">Open daily 9:00 to 18:00.</a>
</div>
<div class="result results_links">
  <h2><a class="result__a" href="https://example.com/rialto">Rialto</a></h2>
  <a class="result__snippet">The oldest bridge over the Grand Canal.</a>
</div>
</body></html>`

func TestDuckDuckGo_TextSearch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(ddgPage))
	}))
	defer srv.Close()

	d := NewDuckDuckGo(srv.URL+"/html/", time.Second)
	results, err := d.TextSearch(context.Background(), "gondola prices venice", 2)
	require.NoError(t, err)

	assert.Equal(t, "gondola prices venice", gotQuery)
	require.Len(t, results, 2)
	assert.Equal(t, Result{Title: "Venice Gondola Guide", Body: "Gondola rides cost around 90 euros for 30 minutes."}, results[0])
	assert.Equal(t, "Doge's Palace", results[1].Title)
}

func TestDuckDuckGo_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewDuckDuckGo(srv.URL, time.Second).TextSearch(context.Background(), "q", 3)
	assert.ErrorIs(t, err, ErrBadStatus)
}

func TestGoogleCSE_TextSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/customsearch/v1", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "engine", r.URL.Query().Get("cx"))
		assert.Equal(t, "10", r.URL.Query().Get("num"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"title":"Gondola","link":"https://x","snippet":" Cash only. "}]}`))
	}))
	defer srv.Close()

	g, err := NewGoogleCSE(srv.URL, "test-key", "engine", time.Second)
	require.NoError(t, err)

	results, err := g.TextSearch(context.Background(), "gondola", 25)
	require.NoError(t, err)
	assert.Equal(t, []Result{{Title: "Gondola", Body: "Cash only."}}, results)
}

func TestNewGoogleCSE_RequiresCredentials(t *testing.T) {
	_, err := NewGoogleCSE("", "", "engine", time.Second)
	assert.ErrorIs(t, err, ErrUnavailable)
}

type scriptedSearcher struct {
	results []Result
	err     error
	panic   bool
	calls   int
}

func (s *scriptedSearcher) TextSearch(context.Context, string, int) ([]Result, error) {
	s.calls++
	if s.panic {
		panic("boom")
	}
	return s.results, s.err
}

func TestClient_Search(t *testing.T) {
	searcher := &scriptedSearcher{results: []Result{
		{Title: "A", Body: "same"},
		{Title: "B", Body: "same"},
		{Title: "", Body: ""},
		{Title: "C", Body: "other"},
		{Title: "D", Body: "third"},
	}}
	c := NewClient(searcher, 0, nil)

	resp := c.Search(context.Background(), "venice", 2)

	assert.True(t, resp.OK())
	assert.Equal(t, "venice", resp.Query)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, []Result{{Title: "A", Body: "same"}, {Title: "C", Body: "other"}}, resp.Results)
}

func TestClient_SearchDegrades(t *testing.T) {
	tests := []struct {
		name     string
		searcher Searcher
		wantErr  string
	}{
		{name: "nil backend", searcher: nil, wantErr: "web search provider unavailable"},
		{name: "backend error", searcher: &scriptedSearcher{err: errors.New("connection reset")}, wantErr: "connection reset"},
		{name: "backend panic", searcher: &scriptedSearcher{panic: true}, wantErr: "search panicked: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewClient(tt.searcher, 0, nil).Search(context.Background(), "venice", 3)
			assert.Equal(t, StatusError, resp.Status)
			assert.Equal(t, tt.wantErr, resp.Error)
			assert.Empty(t, resp.Results)
			assert.Zero(t, resp.Count)
			assert.Empty(t, Blocks(resp))
		})
	}
}

func TestClient_SearchCanceledWhileRateLimited(t *testing.T) {
	searcher := &scriptedSearcher{results: []Result{{Body: "x"}}}
	c := NewClient(searcher, 0.001, nil)

	require.True(t, c.Search(context.Background(), "q", 1).OK())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	resp := c.Search(ctx, "q", 1)
	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, 1, searcher.calls)
}

func TestBlocks(t *testing.T) {
	resp := Response{Status: StatusSuccess, Results: []Result{
		{Title: "Gondola", Body: "Rides cost 90 euros."},
		{Title: "Title only"},
	}}
	assert.Equal(t, "--- Web Result ---\nRides cost 90 euros.\n\n--- Web Result ---\nTitle only", Blocks(resp))
	assert.Empty(t, Blocks(Response{Status: StatusSuccess}))
}

func TestNewFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Search.Provider = "duckduckgo"
	c, err := NewFromConfig(cfg, nil)
	require.NoError(t, err)
	assert.True(t, c.Available())
	assert.IsType(t, &DuckDuckGo{}, c.searcher)

	cfg.Search.Provider = "none"
	c, err = NewFromConfig(cfg, nil)
	require.NoError(t, err)
	assert.False(t, c.Available())
}
