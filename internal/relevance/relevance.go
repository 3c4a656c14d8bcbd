// Package relevance decides whether retrieved documents are usable evidence
// for a query.
//
// A document qualifies when its similarity score reaches
// evidence.ScoreThreshold and its attraction name matches the query. The name
// check guards against documents that score well but describe a different
// attraction than the one asked about.
package relevance

import (
	"strings"
	"unicode/utf8"

	"github.com/fyrsmithlabs/tripd/internal/evidence"
)

// Query tokens must be longer than minTokenLen characters. Short words such
// as "the" or "at" are too weak to tell attractions apart.
const minTokenLen = 3

// Outcome summarises a Verdict.
type Outcome string

const (
	// OutcomeQualified means at least one document qualified.
	OutcomeQualified Outcome = "qualified"

	// OutcomeRejected means documents scored high enough but named a
	// different attraction.
	OutcomeRejected Outcome = "rejected_off_topic"

	// OutcomeNoEvidence means nothing scored high enough.
	OutcomeNoEvidence Outcome = "no_evidence"
)

// IsRelevant reports whether candidateName plausibly names the subject of
// query.
//
// Both strings are lower-cased. The pair is relevant when any whitespace
// token of the query longer than three characters occurs inside the name, or when
// the whole name occurs inside the query. An empty name is never relevant.
//
// This is a string heuristic, not semantic matching. Generic words shared by
// unrelated names ("museum", "palace") produce false positives, and synonyms
// or translations ("Duomo" vs "Florence Cathedral") produce false negatives.
func IsRelevant(query, candidateName string) bool {
	name := strings.ToLower(strings.TrimSpace(candidateName))
	if name == "" {
		return false
	}
	q := strings.ToLower(query)

	for _, token := range strings.Fields(q) {
		if utf8.RuneCountInString(token) > minTokenLen && strings.Contains(name, token) {
			return true
		}
	}
	return strings.Contains(q, name)
}

// Verdict partitions retrieved documents. Each input document lands in
// exactly one slice, and input order is preserved within each slice.
type Verdict struct {
	// Qualified documents passed both the score and the name test.
	Qualified []evidence.Document

	// Rejected documents met the score threshold but named another attraction.
	Rejected []evidence.Document

	// BelowThreshold documents scored under evidence.ScoreThreshold.
	BelowThreshold []evidence.Document
}

// Qualify applies the score threshold and IsRelevant to every document.
func Qualify(query string, docs []evidence.Document) Verdict {
	var v Verdict
	for _, doc := range docs {
		switch {
		case doc.Score < evidence.ScoreThreshold:
			v.BelowThreshold = append(v.BelowThreshold, doc)
		case !IsRelevant(query, doc.AttractionName()):
			v.Rejected = append(v.Rejected, doc)
		default:
			v.Qualified = append(v.Qualified, doc)
		}
	}
	return v
}

// Outcome distinguishes "evidence found", "evidence found but off-topic" and
// "no evidence".
func (v Verdict) Outcome() Outcome {
	switch {
	case len(v.Qualified) > 0:
		return OutcomeQualified
	case len(v.Rejected) > 0:
		return OutcomeRejected
	default:
		return OutcomeNoEvidence
	}
}
