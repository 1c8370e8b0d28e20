package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  string // expected value of "summary"
		fails bool
	}{
		{"plain object", `{"summary":"ok"}`, "ok", false},
		{"fenced", "```json\n{\"summary\":\"ok\"}\n```", "ok", false},
		{"fenced no language", "```\n{\"summary\":\"ok\"}\n```", "ok", false},
		{"prose wrapped", `Here is the report: {"summary":"ok"} Hope that helps!`, "ok", false},
		{"trailing comma", `{"summary":"ok","flags":[],}`, "ok", false},
		{"no json at all", "I cannot analyze this document.", "", true},
		{"truncated object", `{"summary":"ok", "flags": [`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := ExtractJSON(tt.in)
			if tt.fails {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, obj["summary"])
		})
	}
}
