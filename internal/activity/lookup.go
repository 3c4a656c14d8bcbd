package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tripd/internal/evidence"
	"github.com/fyrsmithlabs/tripd/internal/relevance"
)

const (
	bookingHeader = "--- LIVE BOOKING DATA (GetYourGuide) ---"
	bookingFooter = "----------------------------------------"
	priceLine     = "Price: Check availability for latest pricing."

	// summaryListLimit caps highlights, inclusions and exclusions.
	summaryListLimit = 3
)

// Lookup fetches the best matching activity for a query.
type Lookup struct {
	source  Source
	timeout time.Duration
	logger  *zap.Logger
}

// NewLookup creates a Lookup. A nil source makes every lookup empty.
// timeout bounds each of the two source calls; zero disables it.
func NewLookup(source Source, timeout time.Duration, logger *zap.Logger) *Lookup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lookup{source: source, timeout: timeout, logger: logger}
}

// Available reports whether a source is configured.
func (l *Lookup) Available() bool {
	return l != nil && l.source != nil
}

// Find returns the details of the top search hit. A hit whose name does not
// pass relevance.IsRelevant for query is reported as evidence.ErrNoEvidence,
// so a booking for another attraction never reaches an answer.
func (l *Lookup) Find(ctx context.Context, query string) (*Details, error) {
	if !l.Available() {
		return nil, evidence.ErrProviderUnavailable
	}

	searchCtx, cancel := l.withTimeout(ctx)
	matches, err := l.source.Search(searchCtx, query, 1)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: searching activities: %v", evidence.ErrTransport, err)
	}
	if len(matches) == 0 {
		return nil, evidence.ErrNoEvidence
	}

	detailsCtx, cancel := l.withTimeout(ctx)
	defer cancel()
	details, err := l.source.Details(detailsCtx, matches[0].ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", evidence.ErrNoEvidence, err)
		}
		return nil, fmt.Errorf("%w: fetching activity %s: %v", evidence.ErrTransport, matches[0].ID, err)
	}
	if details == nil {
		return nil, evidence.ErrNoEvidence
	}
	if !relevance.IsRelevant(query, details.Name) {
		return nil, fmt.Errorf("%w: top activity %q does not name the queried attraction", evidence.ErrNoEvidence, details.Name)
	}
	return details, nil
}

// Lookup returns the booking summary for query, or "" when anything fails.
func (l *Lookup) Lookup(ctx context.Context, query string) string {
	details, err := l.Find(ctx, query)
	if err != nil {
		level := l.logger.Warn
		if errors.Is(err, evidence.ErrNoEvidence) || errors.Is(err, evidence.ErrProviderUnavailable) {
			level = l.logger.Debug
		}
		level("activity lookup returned nothing",
			zap.String("error_class", evidence.Classify(err)),
			zap.Error(err))
		return ""
	}
	return Render(FromDetails(details))
}

// Render formats an activity as a booking block. Lines with no value are
// left out.
func Render(a Activity) string {
	lines := []string{bookingHeader}
	add := func(label, value string) {
		if value = strings.TrimSpace(value); value != "" {
			lines = append(lines, label+": "+value)
		}
	}

	add("Title", a.Name)
	add("Rating", a.Rating)
	add("Duration", a.Duration)
	add("Location", a.Location)
	add("Highlights", joinFirst(a.WhyVisit, summaryListLimit))
	add("Inclusions", joinFirst(a.Included, summaryListLimit))
	add("Exclusions", joinFirst(a.NotIncluded, summaryListLimit))
	add("Restrictions", joinFirst(a.Restrictions, 0))
	add("Know before you go", joinFirst(a.AdditionalInfo, 0))

	lines = append(lines, priceLine, bookingFooter)
	return strings.Join(lines, "\n")
}

// joinFirst joins the first n non-empty items, or all of them when n is 0.
func joinFirst(items []string, n int) string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item == "" {
			continue
		}
		out = append(out, item)
		if n > 0 && len(out) == n {
			break
		}
	}
	return strings.Join(out, ", ")
}

func (l *Lookup) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, l.timeout)
}
