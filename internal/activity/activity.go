// Package activity adds live booking data for the attraction a query is
// about. A Source searches a booking catalogue; Lookup turns the best match
// into a text block for the answer synthesizer.
package activity

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Details for unknown ids.
var ErrNotFound = errors.New("activity not found")

// Match is one search hit.
type Match struct {
	ID       string  `json:"tour_id"`
	Title    string  `json:"title"`
	Rating   float64 `json:"rating"`
	Reviews  int     `json:"reviews"`
	Price    Price   `json:"price"`
	Duration string  `json:"duration"`
}

// Price is an indicative price from search results.
type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Details is the full record for one activity.
type Details struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Highlights      []string `json:"highlights"`
	Inclusions      []string `json:"inclusions"`
	Exclusions      []string `json:"exclusions"`
	Requirements    []string `json:"requirements"`
	MeetingPoint    string   `json:"meeting_point"`
	Rating          float64  `json:"rating"`
	DurationMinutes int      `json:"duration_min"`
	Notes           []string `json:"know_before_you_go"`
}

// Source is a searchable booking catalogue.
type Source interface {
	Search(ctx context.Context, query string, limit int) ([]Match, error)
	Details(ctx context.Context, id string) (*Details, error)
}

// Activity is the attraction schema shared with the ingested dataset.
type Activity struct {
	Name           string   `json:"Attraction_name"`
	WhyVisit       []string `json:"Why visit"`
	Included       []string `json:"What included"`
	NotIncluded    []string `json:"What not included"`
	Restrictions   []string `json:"Restrictions"`
	Location       string   `json:"Location"`
	Rating         string   `json:"User Rating"`
	Duration       string   `json:"Duration"`
	AdditionalInfo []string `json:"additional Information"`
}

// FromDetails maps a booking record onto the attraction schema. Zero rating,
// zero duration and an empty meeting point map to empty strings.
func FromDetails(d *Details) Activity {
	if d == nil {
		return Activity{}
	}
	a := Activity{
		Name:           d.Name,
		WhyVisit:       d.Highlights,
		Included:       d.Inclusions,
		NotIncluded:    d.Exclusions,
		Restrictions:   d.Requirements,
		AdditionalInfo: d.Notes,
	}
	if d.MeetingPoint != "" {
		a.Location = "Meeting Point: " + d.MeetingPoint
	}
	if d.Rating > 0 {
		a.Rating = fmt.Sprintf("%.1f stars", d.Rating)
	}
	if d.DurationMinutes > 0 {
		a.Duration = fmt.Sprintf("%d minutes", d.DurationMinutes)
	}
	return a
}
