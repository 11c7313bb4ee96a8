package session

import (
	"encoding/json"
	"strings"
)

// QuestionTextKeys is the ordered list of field names probed for a question
// text when normalizing caller-supplied items. First non-empty match wins.
var QuestionTextKeys = []string{"question", "questions", "q", "prompt", "title"}

// AnswerTextKeys is the ordered probe list for an answer text. No match
// defaults to the empty string.
var AnswerTextKeys = []string{"answer", "modelAnswer", "answers", "a"}

// NormalizedQuestion is one accepted input item after schema probing.
type NormalizedQuestion struct {
	Question string
	Answer   string
}

// DecodeQuestionsInput decodes the tagged union accepted at the boundary: the
// field may be absent, a JSON-encoded string holding a list, or a structured
// list. The returned bool is false when the string decode fails.
func DecodeQuestionsInput(raw json.RawMessage) ([]map[string]any, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, true
	}

	// string-encoded variant: unwrap, then decode the payload
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		if strings.TrimSpace(encoded) == "" {
			return nil, true
		}
		raw = json.RawMessage(encoded)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}

	out := make([]map[string]any, len(items))
	for i, item := range items {
		var m map[string]any
		if err := json.Unmarshal(item, &m); err != nil {
			// non-object item; normalization reports it as invalid
			out[i] = nil
			continue
		}
		out[i] = m
	}

	return out, true
}

// probe returns the first non-empty trimmed string found under the given
// keys, in priority order.
func probe(item map[string]any, keys []string) string {
	if item == nil {
		return ""
	}
	for _, k := range keys {
		v, ok := item[k]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		if t := strings.TrimSpace(s); t != "" {
			return t
		}
	}
	return ""
}

// Normalize scans every input item, probing for question and answer text.
// Items yielding no question text are reported by original index; the scan
// never stops early so the caller sees every problem at once.
func Normalize(items []map[string]any) ([]NormalizedQuestion, []int) {
	normalized := make([]NormalizedQuestion, 0, len(items))
	var invalid []int

	for i, item := range items {
		q := probe(item, QuestionTextKeys)
		if q == "" {
			invalid = append(invalid, i)
			continue
		}
		normalized = append(normalized, NormalizedQuestion{
			Question: q,
			Answer:   probe(item, AnswerTextKeys),
		})
	}

	return normalized, invalid
}
