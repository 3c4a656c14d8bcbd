// Package supplementary collects the "additional information" notes stored
// with an attraction, falling back to a web search when none are stored.
package supplementary

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tripd/internal/evidence"
	"github.com/fyrsmithlabs/tripd/internal/websearch"
)

// DefaultWebResults is the number of web results used when nothing is stored.
const DefaultWebResults = 2

const webQuerySuffix = " additional tourist information details"

// WebSearcher is the part of websearch.Client the extractor needs.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) websearch.Response
}

// Extractor gathers supplementary notes for a query.
type Extractor struct {
	web        WebSearcher
	webResults int
	logger     *zap.Logger
}

// New creates an Extractor. web may be nil; webResults <= 0 uses
// DefaultWebResults.
func New(web WebSearcher, webResults int, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if webResults <= 0 {
		webResults = DefaultWebResults
	}
	return &Extractor{web: web, webResults: webResults, logger: logger}
}

// Gather returns the notes as "- item" lines, or "" when nothing was found.
//
// Only documents naming the same attraction as the first document
// contribute. Stored notes are sorted; web results keep provider order.
func (e *Extractor) Gather(ctx context.Context, query string, qualified []evidence.Document) string {
	items := e.stored(qualified)
	if len(items) > 0 {
		sort.Strings(items)
		return render(items)
	}
	return render(e.fromWeb(ctx, query))
}

func (e *Extractor) stored(docs []evidence.Document) []string {
	if len(docs) == 0 {
		return nil
	}
	name := docs[0].AttractionName()

	set := make(map[string]struct{})
	for _, doc := range docs {
		if doc.AttractionName() != name {
			continue
		}
		raw, ok := doc.AdditionalInfo()
		if !ok {
			continue
		}
		for _, item := range e.parse(raw, doc) {
			if item = strings.TrimSpace(item); item != "" {
				set[item] = struct{}{}
			}
		}
	}

	items := make([]string, 0, len(set))
	for item := range set {
		items = append(items, item)
	}
	return items
}

// parse flattens an additional-information value into items. Stores that
// only keep strings hold lists JSON-encoded.
func (e *Extractor) parse(raw interface{}, doc evidence.Document) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		return stringify(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		if !strings.HasPrefix(s, "[") {
			return []string{s}
		}
		var list []interface{}
		if err := json.Unmarshal([]byte(s), &list); err != nil {
			e.logger.Warn("additional information is not a valid list",
				zap.String("error_class", evidence.ClassMalformedMetadata),
				zap.String("attraction", doc.AttractionName()),
				zap.String("document_id", doc.ID),
				zap.Error(fmt.Errorf("%w: %v", evidence.ErrMalformedMetadata, err)))
			return []string{s}
		}
		return stringify(list)
	default:
		return []string{fmt.Sprint(v)}
	}
}

func stringify(values []interface{}) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		out = append(out, fmt.Sprint(v))
	}
	return out
}

func (e *Extractor) fromWeb(ctx context.Context, query string) []string {
	if e.web == nil {
		return nil
	}
	resp := e.web.Search(ctx, query+webQuerySuffix, e.webResults)
	if !resp.OK() {
		e.logger.Debug("supplementary web search returned nothing", zap.String("error", resp.Error))
		return nil
	}

	items := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		if text := r.Text(); text != "" {
			items = append(items, text)
		}
	}
	return items
}

func render(items []string) string {
	if len(items) == 0 {
		return ""
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}
