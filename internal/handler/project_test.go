package handler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTags(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"array", `{"tags": [" go ", "", "sql"]}`, []string{"go", "sql"}},
		{"encoded string", `{"tags": "[\"go\", \" web \"]"}`, []string{"go", "web"}},
		{"malformed string", `{"tags": "not json"}`, []string{}},
		{"empty string", `{"tags": ""}`, []string{}},
		{"null", `{"tags": null}`, []string{}},
		{"number", `{"tags": 7}`, []string{}},
		{"object", `{"tags": {"a": "b"}}`, []string{}},
		{"mixed array", `{"tags": ["go", 1]}`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req projectRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))

			got := decodeTags(req.Tags)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestDecodeTags_AbsentKeepsStored(t *testing.T) {
	var req projectRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title": "only the title"}`), &req))

	assert.Nil(t, decodeTags(req.Tags))
}
