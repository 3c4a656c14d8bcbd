package activity

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

// Query words of minWordLen characters or fewer, such as "the" or "on",
// never count as a title hit. The relevance filter uses the same cut-off.
const minWordLen = 3

// MemorySource is an in-process catalogue. NewVeniceSource seeds it with
// the demo fixtures.
type MemorySource struct {
	mu      sync.RWMutex
	matches []Match
	details map[string]*Details

	// Fallback, when set, answers Details for ids with no record.
	Fallback func(id string) *Details
}

// NewMemorySource creates an empty catalogue.
func NewMemorySource() *MemorySource {
	return &MemorySource{details: make(map[string]*Details)}
}

// Add registers a tour under m.ID. d may be nil.
func (s *MemorySource) Add(m Match, d *Details) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches = append(s.matches, m)
	if d != nil {
		s.details[m.ID] = d
	}
}

// Search ranks tours by how many query words longer than minWordLen
// characters appear in the title. Tours sharing no such word with the query
// are not returned.
func (s *MemorySource) Search(ctx context.Context, query string, limit int) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	words := strings.Fields(strings.ToLower(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		match Match
		hits  int
	}
	var ranked []scored
	for _, m := range s.matches {
		title := titleWords(m.Title)
		hits := 0
		for _, w := range words {
			w = strings.Trim(w, ".,:;!?'\"")
			if utf8.RuneCountInString(w) <= minWordLen {
				continue
			}
			if _, ok := title[w]; ok {
				hits++
			}
		}
		if hits > 0 {
			ranked = append(ranked, scored{match: m, hits: hits})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].hits > ranked[j].hits })

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]Match, len(ranked))
	for i, r := range ranked {
		out[i] = r.match
	}
	return out, nil
}

func titleWords(title string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return r == ' ' || r == ':' || r == ',' || r == '-'
	}) {
		words[w] = struct{}{}
	}
	return words
}

// Details returns the stored record, the Fallback record, or ErrNotFound.
func (s *MemorySource) Details(ctx context.Context, id string) (*Details, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	d, ok := s.details[id]
	s.mu.RUnlock()

	if ok {
		cp := *d
		return &cp, nil
	}
	if s.Fallback != nil {
		return s.Fallback(id), nil
	}
	return nil, ErrNotFound
}

// NewVeniceSource returns a catalogue with two Venice tours. Unknown ids
// resolve to a generic sample tour.
func NewVeniceSource() *MemorySource {
	s := NewMemorySource()
	s.Add(Match{
		ID:       "12345",
		Title:    "Venice: Grand Canal Gondola Ride",
		Rating:   4.8,
		Reviews:  1200,
		Price:    Price{Amount: 35, Currency: "EUR"},
		Duration: "30 minutes",
	}, &Details{
		ID:              "12345",
		Name:            "Venice: Grand Canal Gondola Ride",
		Description:     "Experience the magic of restricted waterways...",
		Highlights:      []string{"Glide down the Grand Canal", "See historic palazzos"},
		Inclusions:      []string{"Gondola ride", "Live commentary"},
		Exclusions:      []string{"Food and drink", "Hotel pickup"},
		Requirements:    []string{"No large bags"},
		MeetingPoint:    "St. Mark's Square, by the column",
		Rating:          4.8,
		DurationMinutes: 30,
		Notes:           []string{"Ride is shared with others", "Weather dependent"},
	})
	s.Add(Match{
		ID:       "67890",
		Title:    "Venice: Doge's Palace Skip-the-Line Tour",
		Rating:   4.7,
		Reviews:  850,
		Price:    Price{Amount: 45, Currency: "EUR"},
		Duration: "1 hour",
	}, &Details{
		ID:              "67890",
		Name:            "Venice: Doge's Palace Skip-the-Line Tour",
		Highlights:      []string{"Skip the ticket line", "Cross the Bridge of Sighs", "See the Chamber of the Great Council"},
		Inclusions:      []string{"Entry ticket", "Guided tour"},
		Exclusions:      []string{"Hotel pickup"},
		Requirements:    []string{"Shoulders and knees must be covered"},
		MeetingPoint:    "Porta della Carta, Piazza San Marco",
		Rating:          4.7,
		DurationMinutes: 60,
		Notes:           []string{"Security check at the entrance"},
	})
	s.Fallback = sampleTour
	return s
}

func sampleTour(id string) *Details {
	return &Details{
		ID:              id,
		Name:            "Sample Tour",
		Description:     "A sample tour description.",
		Highlights:      []string{"Highlight 1", "Highlight 2"},
		Inclusions:      []string{"Inclusion 1"},
		Exclusions:      []string{"Exclusion 1"},
		Requirements:    []string{"Requirement 1"},
		Rating:          4.5,
		DurationMinutes: 60,
		Notes:           []string{"Info 1"},
	}
}
