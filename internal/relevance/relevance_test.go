package relevance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/tripd/internal/evidence"
)

func doc(name string, score float32) evidence.Document {
	return evidence.Document{
		Content:  name + " content",
		Score:    score,
		Metadata: map[string]interface{}{evidence.KeyAttractionName: name},
	}
}

func TestIsRelevant(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		candidate string
		want      bool
	}{
		{"token match", "Venice Grand Canal Gondola Ride", "Venice: Grand Canal Gondola Ride", true},
		{"different attraction", "Eiffel Tower", "Louvre Museum", false},
		{"case insensitive", "EIFFEL tower tickets", "eiffel tower summit", true},
		{"short tokens ignored", "the zoo at", "The Zoo", true}, // whole name inside query
		{"short tokens alone do not match", "a zoo", "Zoo Atlanta", false},
		{"name inside query", "how much is the louvre museum entry", "Louvre Museum", true},
		{"empty name fails closed", "Louvre Museum", "", false},
		{"whitespace name fails closed", "Louvre Museum", "   ", false},
		{"empty query", "", "Louvre Museum", false},
		{"token substring of name", "Colosseum underground", "Rome: Colosseum Arena Floor", true},
		{"four letter token counts", "Rome walking", "Rome: Trastevere Food Tour", true},
		{"three letter token does not count", "Zoo", "San Diego Zoo Day Pass", false},
		{"three character accented token does not count", "zoë day pass", "Zoë's Bistro", false},
		{"two character CJK token does not count", "東京 tower", "東京タワー", false},
		{"four character accented token counts", "café crawl", "Paris Café Tour", true},
		{"four character CJK token counts", "東京タワー 展望台", "東京タワー", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRelevant(tt.query, tt.candidate))
		})
	}
}

func TestIsRelevant_Reflexive(t *testing.T) {
	names := []string{
		"Venice: Grand Canal Gondola Ride",
		"Louvre Museum",
		"San Diego Zoo Day Pass",
		"Sagrada Familia",
	}
	for _, n := range names {
		assert.True(t, IsRelevant(n, n), n)
	}
}

func TestQualify_ScoreThresholdAlwaysApplies(t *testing.T) {
	docs := []evidence.Document{
		doc("Venice: Grand Canal Gondola Ride", 0.49),
		doc("Venice: Grand Canal Gondola Ride", 0.5),
		doc("Venice: Grand Canal Gondola Ride", 0.1),
	}

	v := Qualify("Venice Grand Canal Gondola Ride", docs)

	require.Len(t, v.Qualified, 1)
	assert.Equal(t, float32(0.5), v.Qualified[0].Score)
	assert.Len(t, v.BelowThreshold, 2)
	assert.Empty(t, v.Rejected)
	for _, d := range v.Qualified {
		assert.GreaterOrEqual(t, d.Score, evidence.ScoreThreshold)
	}
}

func TestQualify_Scenarios(t *testing.T) {
	t.Run("gondola ride qualifies", func(t *testing.T) {
		v := Qualify("Venice Grand Canal Gondola Ride", []evidence.Document{
			doc("Venice: Grand Canal Gondola Ride", 0.82),
		})
		assert.Len(t, v.Qualified, 1)
		assert.Equal(t, OutcomeQualified, v.Outcome())
	})

	t.Run("high score off-topic is rejected", func(t *testing.T) {
		v := Qualify("Eiffel Tower", []evidence.Document{
			doc("Louvre Museum", 0.9),
		})
		assert.Empty(t, v.Qualified)
		require.Len(t, v.Rejected, 1)
		assert.Equal(t, "Louvre Museum", v.Rejected[0].AttractionName())
		assert.Equal(t, OutcomeRejected, v.Outcome())
	})

	t.Run("nothing retrieved", func(t *testing.T) {
		v := Qualify("Eiffel Tower", nil)
		assert.Equal(t, OutcomeNoEvidence, v.Outcome())
	})

	t.Run("missing name is rejected", func(t *testing.T) {
		v := Qualify("Eiffel Tower", []evidence.Document{{Content: "x", Score: 0.95}})
		assert.Len(t, v.Rejected, 1)
	})
}

func TestQualify_PreservesOrder(t *testing.T) {
	docs := []evidence.Document{
		doc("Venice: Grand Canal Gondola Ride", 0.9),
		doc("Louvre Museum", 0.85),
		doc("Venice: Doge's Palace Skip-the-Line Tour", 0.7),
	}

	v := Qualify("Venice tours", docs)

	require.Len(t, v.Qualified, 2)
	assert.Equal(t, "Venice: Grand Canal Gondola Ride", v.Qualified[0].AttractionName())
	assert.Equal(t, "Venice: Doge's Palace Skip-the-Line Tour", v.Qualified[1].AttractionName())
	assert.Len(t, v.Rejected, 1)
}
