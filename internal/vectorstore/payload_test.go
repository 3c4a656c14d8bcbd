package vectorstore

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/tripd/internal/evidence"
)

func TestPointFromQdrant_LangChainLayout(t *testing.T) {
	point := &qdrant.ScoredPoint{
		Id:    qdrant.NewIDUUID("5f0c3a4e-8b0e-4a3b-9a51-6f1d2c7e9b10"),
		Score: 0.82,
		Payload: map[string]*qdrant.Value{
			"page_content": qdrant.NewValueString("Gondola rides leave from the Grand Canal."),
			"metadata": qdrant.NewValueStruct(&qdrant.Struct{Fields: map[string]*qdrant.Value{
				"Attraction_name":        qdrant.NewValueString("Gondola Ride"),
				"additional Information": qdrant.NewValueList(&qdrant.ListValue{Values: []*qdrant.Value{qdrant.NewValueString("Cash only"), qdrant.NewValueString("Max 6 people")}}),
				"rating":                 qdrant.NewValueDouble(4.8),
				"reviews":                qdrant.NewValueInt(120),
				"open":                   qdrant.NewValueBool(true),
				"closed_on":              qdrant.NewValueNull(),
			}}),
			"source":          qdrant.NewValueString("scrape"),
			"Attraction_name": qdrant.NewValueString("ignored duplicate"),
		},
	}

	result := pointFromQdrant(point)

	assert.Equal(t, "5f0c3a4e-8b0e-4a3b-9a51-6f1d2c7e9b10", result.ID)
	assert.InDelta(t, 0.82, result.Score, 0.0001)
	assert.Equal(t, "Gondola rides leave from the Grand Canal.", result.Content)
	assert.Equal(t, "Gondola Ride", result.Metadata["Attraction_name"])
	assert.Equal(t, []interface{}{"Cash only", "Max 6 people"}, result.Metadata["additional Information"])
	assert.Equal(t, 4.8, result.Metadata["rating"])
	assert.Equal(t, int64(120), result.Metadata["reviews"])
	assert.Equal(t, true, result.Metadata["open"])
	assert.Contains(t, result.Metadata, "closed_on")
	assert.Nil(t, result.Metadata["closed_on"])
	assert.Equal(t, "scrape", result.Metadata["source"])
	assert.NotContains(t, result.Metadata, evidence.KeyRawPayload)
}

func TestPointFromQdrant_FlatPayload(t *testing.T) {
	point := &qdrant.ScoredPoint{
		Id:    qdrant.NewIDNum(42),
		Score: 0.6,
		Payload: map[string]*qdrant.Value{
			"content":         qdrant.NewValueString("Doge's Palace tour."),
			"Attraction_name": qdrant.NewValueString("Doge's Palace"),
		},
	}

	result := pointFromQdrant(point)

	assert.Equal(t, "42", result.ID)
	assert.Equal(t, "Doge's Palace tour.", result.Content)
	assert.Equal(t, "Doge's Palace", result.Metadata["Attraction_name"])
	raw, ok := result.Metadata[evidence.KeyRawPayload].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Doge's Palace tour.", raw["content"])
}

func TestPointFromQdrant_EmptyPayload(t *testing.T) {
	result := pointFromQdrant(&qdrant.ScoredPoint{Score: 0.1})
	assert.Empty(t, result.ID)
	assert.Empty(t, result.Content)
	assert.Empty(t, result.Metadata)
}

func TestFromValue_Nested(t *testing.T) {
	v := qdrant.NewValueStruct(&qdrant.Struct{Fields: map[string]*qdrant.Value{
		"tags": qdrant.NewValueList(&qdrant.ListValue{Values: []*qdrant.Value{qdrant.NewValueInt(1), qdrant.NewValueBool(false)}}),
	}})
	assert.Equal(t, map[string]interface{}{"tags": []interface{}{int64(1), false}}, fromValue(v))
	assert.Nil(t, fromValue(nil))
}
