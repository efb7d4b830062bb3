package agent

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		want    map[string]interface{}
	}{
		{
			name:    "clean object",
			payload: `{"name":"Ledger review","budget":1200000}`,
			want:    map[string]interface{}{"name": "Ledger review", "budget": float64(1200000)},
		},
		{
			name:    "surrounding whitespace",
			payload: "\n  {\"a\": 1}\n",
			want:    map[string]interface{}{"a": float64(1)},
		},
		{
			name:    "embedded in prose",
			payload: "Sure! Here is the analysis:\n```json\n{\"client\":\"Northwind\"}\n```\nLet me know.",
			want:    map[string]interface{}{"client": "Northwind"},
		},
		{
			name:    "first valid object wins",
			payload: `noise {not json} then {"first":true} and {"second":true}`,
			want:    map[string]interface{}{"first": true},
		},
		{
			name:    "braces inside strings",
			payload: `prefix {"note":"use } and { freely","ok":1} suffix`,
			want:    map[string]interface{}{"note": "use } and { freely", "ok": float64(1)},
		},
		{
			name:    "nested objects",
			payload: `result: {"outer":{"inner":[1,2]}}`,
			want:    map[string]interface{}{"outer": map[string]interface{}{"inner": []interface{}{float64(1), float64(2)}}},
		},
		{
			name:    "envelope with stringified object",
			payload: `{"response":"Analysis follows {\"industry\":\"banking\"}"}`,
			want:    map[string]interface{}{"industry": "banking"},
		},
		{
			name:    "envelope without object falls back to envelope",
			payload: `{"message":"no structured data here"}`,
			want:    map[string]interface{}{"message": "no structured data here"},
		},
		{
			name:    "object with text field is not an envelope",
			payload: `{"name":"Atlas","text":"see {\"a\":1}"}`,
			want:    map[string]interface{}{"name": "Atlas", "text": `see {"a":1}`},
		},
		{
			name:    "envelope with metadata",
			payload: `{"id":"msg_1","role":"assistant","content":"{\"industry\":\"payments\"}"}`,
			want:    map[string]interface{}{"industry": "payments"},
		},
		{
			name:    "truncated object before a complete one",
			payload: "{\"client\": \"North\n{\"client\":\"Northwind\"}",
			want:    map[string]interface{}{"client": "Northwind"},
		},
		{
			name:    "quotes in prose",
			payload: `He said "here it is": {"ok":true}`,
			want:    map[string]interface{}{"ok": true},
		},
		{
			name:    "json string literal",
			payload: `"{\"a\":\"b\"}"`,
			want:    map[string]interface{}{"a": "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSON(tt.payload)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSON_Unrecoverable(t *testing.T) {
	t.Parallel()

	for _, payload := range []string{
		"",
		"   ",
		"plain text reply",
		"{unterminated",
		"}{",
		"[1,2,3]",
		`{"a": }`,
		"42",
	} {
		t.Run(payload, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Nil(t, ExtractJSON(payload))
			})
		})
	}
}

func TestObjectSpans(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []span{{0, 7}, {5, 6}}, objectSpans(`{"a":{}}`))
	assert.Equal(t, []span{{5, 6}}, objectSpans(`{"a":{}`))
	assert.Equal(t, []span{{0, 10}}, objectSpans(`{"a":"\"}"}`))
	assert.Empty(t, objectSpans(`}{`))
}

func TestExtractJSON_LargeUnbalancedInputIsLinear(t *testing.T) {
	t.Parallel()

	for _, payload := range []string{
		strings.Repeat("{", 1<<20),
		strings.Repeat("{", 1<<19) + strings.Repeat("}", 1<<19),
		strings.Repeat(`{"a":`, 1<<17) + "x",
	} {
		start := time.Now()
		assert.Nil(t, ExtractJSON(payload))
		assert.Less(t, time.Since(start), 5*time.Second)
	}

	// A valid object after a long run of noise is still found
	payload := strings.Repeat("{x} ", 1<<16) + `{"found":true}`
	assert.Equal(t, map[string]interface{}{"found": true}, ExtractJSON(payload))
}
