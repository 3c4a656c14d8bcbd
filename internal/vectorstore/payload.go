package vectorstore

import (
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"github.com/fyrsmithlabs/tripd/internal/evidence"
)

// LangChain payload keys.
const (
	payloadContentKey  = "page_content"
	payloadMetadataKey = "metadata"
)

// pointFromQdrant converts a scored point to a SearchResult.
//
// Content comes from page_content and metadata from the nested metadata
// object. Other top-level keys are merged into metadata without overriding
// nested values. Points that do not follow the LangChain layout fall back to
// a top-level content field and keep their whole payload under
// evidence.KeyRawPayload.
func pointFromQdrant(point *qdrant.ScoredPoint) SearchResult {
	result := SearchResult{
		ID:       pointID(point.GetId()),
		Score:    point.GetScore(),
		Metadata: make(map[string]interface{}),
	}

	payload := point.GetPayload()
	if len(payload) == 0 {
		return result
	}

	if nested, ok := payload[payloadMetadataKey].GetKind().(*qdrant.Value_StructValue); ok {
		for k, v := range nested.StructValue.GetFields() {
			result.Metadata[k] = fromValue(v)
		}
	}

	content, langchain := payload[payloadContentKey].GetKind().(*qdrant.Value_StringValue)
	if langchain {
		result.Content = content.StringValue
	}

	for k, v := range payload {
		if k == payloadContentKey || k == payloadMetadataKey {
			continue
		}
		if _, exists := result.Metadata[k]; !exists {
			result.Metadata[k] = fromValue(v)
		}
	}

	if !langchain {
		if s, ok := result.Metadata["content"].(string); ok {
			result.Content = s
		}
		raw := make(map[string]interface{}, len(payload))
		for k, v := range payload {
			raw[k] = fromValue(v)
		}
		result.Metadata[evidence.KeyRawPayload] = raw
	}

	return result
}

func pointID(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if u := id.GetUuid(); u != "" {
		return u
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

// fromValue converts a Qdrant payload value to plain Go values: strings,
// int64, float64, bool, nil, []interface{} and map[string]interface{}.
func fromValue(v *qdrant.Value) interface{} {
	if v == nil {
		return nil
	}
	switch val := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_NullValue:
		return nil
	case *qdrant.Value_ListValue:
		values := val.ListValue.GetValues()
		out := make([]interface{}, len(values))
		for i, item := range values {
			out[i] = fromValue(item)
		}
		return out
	case *qdrant.Value_StructValue:
		fields := val.StructValue.GetFields()
		out := make(map[string]interface{}, len(fields))
		for k, item := range fields {
			out[k] = fromValue(item)
		}
		return out
	default:
		return nil
	}
}
