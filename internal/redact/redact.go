// Package redact removes credentials from text before it leaves the
// process, using the gitleaks default rule set.
package redact

import (
	"fmt"
	"sort"
	"strings"

	gitleaksConfig "github.com/zricethezav/gitleaks/v8/config"
	"github.com/zricethezav/gitleaks/v8/detect"
)

// Finding is one detected secret.
type Finding struct {
	RuleID string
	Secret string
}

// Redactor replaces detected secrets with [REDACTED:rule-id] markers.
// It is safe for concurrent use.
type Redactor struct {
	config gitleaksConfig.Config
}

// New loads the gitleaks default configuration.
func New() (*Redactor, error) {
	d, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("loading gitleaks config: %w", err)
	}
	return &Redactor{config: d.Config}, nil
}

// Detect returns the secrets found in text.
func (r *Redactor) Detect(text string) []Finding {
	if r == nil || strings.TrimSpace(text) == "" {
		return nil
	}

	// Detectors accumulate findings, so each call gets its own.
	detector := detect.NewDetector(r.config)
	found := detector.DetectString(text)

	findings := make([]Finding, 0, len(found))
	for _, f := range found {
		if f.Secret == "" {
			continue
		}
		findings = append(findings, Finding{RuleID: f.RuleID, Secret: f.Secret})
	}
	return findings
}

// Redact returns text with every detected secret replaced, and the
// findings. A nil Redactor returns text unchanged.
func (r *Redactor) Redact(text string) (string, []Finding) {
	findings := r.Detect(text)
	if len(findings) == 0 {
		return text, nil
	}

	// Longest first so a secret containing another is replaced whole.
	sorted := make([]Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i].Secret) > len(sorted[j].Secret) })

	for _, f := range sorted {
		text = strings.ReplaceAll(text, f.Secret, "[REDACTED:"+f.RuleID+"]")
	}
	return text, findings
}

// RuleIDs returns the distinct rule ids of findings in sorted order.
func RuleIDs(findings []Finding) []string {
	seen := make(map[string]struct{}, len(findings))
	ids := make([]string, 0, len(findings))
	for _, f := range findings {
		if _, ok := seen[f.RuleID]; ok {
			continue
		}
		seen[f.RuleID] = struct{}{}
		ids = append(ids, f.RuleID)
	}
	sort.Strings(ids)
	return ids
}
