package evidence

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocument_AttractionName(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]interface{}
		want     string
	}{
		{name: "nil metadata", metadata: nil, want: ""},
		{name: "missing key", metadata: map[string]interface{}{"other": "x"}, want: ""},
		{name: "string value", metadata: map[string]interface{}{KeyAttractionName: " Louvre Museum "}, want: "Louvre Museum"},
		{name: "nil value", metadata: map[string]interface{}{KeyAttractionName: nil}, want: ""},
		{name: "non-string value", metadata: map[string]interface{}{KeyAttractionName: 42}, want: "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Document{Metadata: tt.metadata}
			assert.Equal(t, tt.want, doc.AttractionName())
		})
	}
}

func TestDocument_AdditionalInfo(t *testing.T) {
	doc := Document{Metadata: map[string]interface{}{KeyAdditionalInfo: []interface{}{"a"}}}
	v, ok := doc.AdditionalInfo()
	assert.True(t, ok)
	assert.Equal(t, []interface{}{"a"}, v)

	_, ok = Document{Metadata: map[string]interface{}{KeyAdditionalInfo: nil}}.AdditionalInfo()
	assert.False(t, ok)

	_, ok = Document{}.AdditionalInfo()
	assert.False(t, ok)
}

func TestBundle_IsEmpty(t *testing.T) {
	assert.True(t, Bundle{}.IsEmpty())
	assert.False(t, Bundle{Web: "x"}.IsEmpty())
	assert.False(t, Bundle{Activity: "x"}.IsEmpty())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("embed: %w", ErrProviderUnavailable), ClassProviderUnavailable},
		{fmt.Errorf("search: %w", ErrTransport), ClassTransport},
		{context.DeadlineExceeded, ClassTransport},
		{fmt.Errorf("query: %w", context.Canceled), ClassTransport},
		{ErrNoEvidence, ClassNoEvidence},
		{fmt.Errorf("field: %w", ErrMalformedMetadata), ClassMalformedMetadata},
		{errors.New("boom"), ClassUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.err))
	}
}
