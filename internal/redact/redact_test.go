package redact

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Built at runtime so the literal does not trip secret scanners.
var githubToken = "ghp_" + strings.Repeat("A1b2C3d4E5", 3) + "f6G7h8"

func TestRedact_NoSecrets(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	text := "What time does the Doge's Palace open?"
	got, findings := r.Redact(text)
	assert.Equal(t, text, got)
	assert.Empty(t, findings)
}

func TestRedact_GitHubToken(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	query := "gondola prices, my token is " + githubToken
	got, findings := r.Redact(query)

	require.NotEmpty(t, findings)
	assert.NotContains(t, got, githubToken)
	assert.Contains(t, got, "[REDACTED:")
	assert.True(t, strings.HasPrefix(got, "gondola prices, my token is "))
	assert.NotEmpty(t, RuleIDs(findings))
}

func TestRedact_Concurrent(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, _ := r.Redact("token " + githubToken)
			assert.NotContains(t, got, githubToken)
		}()
	}
	wg.Wait()
}

func TestRedact_NilRedactor(t *testing.T) {
	var r *Redactor
	got, findings := r.Redact("text " + githubToken)
	assert.Equal(t, "text "+githubToken, got)
	assert.Nil(t, findings)
}

func TestRuleIDs(t *testing.T) {
	ids := RuleIDs([]Finding{{RuleID: "b"}, {RuleID: "a"}, {RuleID: "b"}})
	assert.Equal(t, []string{"a", "b"}, ids)
}
