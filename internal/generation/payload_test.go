package generation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruthy(t *testing.T) {
	tests := map[string]bool{
		`true`:    true,
		`false`:   false,
		`null`:    false,
		`1`:       true,
		`0`:       false,
		`0.0`:     false,
		`"yes"`:   true,
		`""`:      false,
		`"0"`:     false,
		`[]`:      false,
		`[0]`:     true,
		`{}`:      false,
		`{"a":1}`: true,
	}

	for raw, want := range tests {
		var v truthy
		require.NoError(t, json.Unmarshal([]byte(raw), &v), raw)
		assert.Equal(t, want, bool(v), raw)
	}
}

func TestTextDecoding(t *testing.T) {
	var p draftPayload
	require.NoError(t, json.Unmarshal([]byte(`{
		"title": 42,
		"content": null,
		"tags": ["dns", 7, null],
		"suggested_category_name": {"nested": true}
	}`), &p))

	assert.Equal(t, "42", p.Title.Or(UntitledArticle))
	assert.Equal(t, "", p.Content.Or(""))
	assert.False(t, p.Content.Set)
	assert.Equal(t, "dns, 7", p.Tags.Or(""))
	assert.Nil(t, p.SuggestedCategoryName.Ptr())
}

func TestCategoryIDDecoding(t *testing.T) {
	tests := []struct {
		raw  string
		want *int64
	}{
		{`5`, ptr(5)},
		{`"12"`, ptr(12)},
		{`3.0`, ptr(3)},
		{`0`, nil},
		{`"abc"`, nil},
		{`null`, nil},
		{`-4`, nil},
	}

	for _, tt := range tests {
		var c categoryID
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &c), tt.raw)
		assert.Equal(t, tt.want, c.Ptr(), tt.raw)
	}
}

func ptr(v int64) *int64 { return &v }
