package agent

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// envelopeFields are checked, in order, for a reply wrapped in an outer object
var envelopeFields = []string{"response", "output", "message", "content", "text"}

// envelopeMetadata may sit next to an envelope field without making the
// object a payload of its own
var envelopeMetadata = map[string]bool{
	"id": true, "object": true, "type": true, "role": true, "model": true,
	"agent_id": true, "conversation_id": true, "thread_id": true,
	"created": true, "created_at": true, "timestamp": true,
	"status": true, "finish_reason": true, "usage": true, "metadata": true,
}

// validateBudget bounds the bytes handed to gjson.Valid per payload byte, so
// a reply full of unbalanced or nested braces is rejected in linear time
const validateBudget = 4

// ExtractJSON recovers the first JSON object from an agent reply.
//
// A payload that is itself an object is returned as parsed, unless it is a
// reply envelope (only envelope and metadata keys) whose text holds an
// object, in which case the inner object wins. Otherwise the payload is
// scanned for the first balanced object that parses. Nil is returned when
// nothing can be recovered.
func ExtractJSON(payload string) map[string]interface{} {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return nil
	}

	if gjson.Valid(trimmed) {
		switch trimmed[0] {
		case '{':
			return decodeObject(trimmed)
		case '"':
			return ExtractJSON(gjson.Parse(trimmed).String())
		}
	}

	budget := validateBudget*len(trimmed) + 4096
	for _, sp := range objectSpans(trimmed) {
		size := sp.end - sp.start + 1
		if size > budget {
			break
		}
		budget -= size
		candidate := trimmed[sp.start : sp.end+1]
		if gjson.Valid(candidate) {
			return decodeObject(candidate)
		}
	}
	return nil
}

// decodeObject parses a valid JSON object, preferring the object nested in
// the text of a reply envelope
func decodeObject(raw string) map[string]interface{} {
	if isEnvelope(raw) {
		for _, field := range envelopeFields {
			v := gjson.Get(raw, field)
			if v.Type != gjson.String {
				continue
			}
			if inner := ExtractJSON(v.String()); inner != nil {
				return inner
			}
		}
	}

	var out map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

// isEnvelope reports whether every key of the object is an envelope field or
// metadata, with at least one envelope field holding a string
func isEnvelope(raw string) bool {
	hasText := false
	onlyEnvelope := true
	gjson.Parse(raw).ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		switch {
		case isEnvelopeField(k):
			if value.Type == gjson.String {
				hasText = true
			}
		case envelopeMetadata[k]:
		default:
			onlyEnvelope = false
			return false
		}
		return true
	})
	return onlyEnvelope && hasText
}

func isEnvelopeField(key string) bool {
	for _, f := range envelopeFields {
		if f == key {
			return true
		}
	}
	return false
}

type span struct {
	start, end int
}

// objectSpans returns every balanced {...} span of s ordered by start, found
// in a single pass. Quotes only open strings inside a span, so apostrophes
// and quotes in surrounding prose do not hide an object, and a truncated
// object ends at the first raw newline in one of its strings.
func objectSpans(s string) []span {
	var (
		spans    []span
		open     []int
		inString bool
		escaped  bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case c == '\n':
				// Raw newlines never occur in JSON strings, so no open span
				// containing this one can parse
				inString, escaped = false, false
				open = open[:0]
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if len(open) > 0 {
				inString = true
			}
		case '{':
			open = append(open, i)
		case '}':
			if len(open) > 0 {
				spans = append(spans, span{start: open[len(open)-1], end: i})
				open = open[:len(open)-1]
			}
		}
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	return spans
}
