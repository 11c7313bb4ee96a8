package genai

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	leadingFence  = regexp.MustCompile("(?i)^\\s*```(?:json)?\\s*")
	trailingFence = regexp.MustCompile("\\s*```\\s*$")
)

// stripFences removes a leading/trailing markdown code fence from model output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return s
}

// parseWithRepair tries a direct JSON parse, then strips code fences and
// retries once. The returned bool reports whether any attempt succeeded.
func parseWithRepair(content string, v any) bool {
	if err := json.Unmarshal([]byte(content), v); err == nil {
		return true
	}

	cleaned := stripFences(content)
	return json.Unmarshal([]byte(cleaned), v) == nil
}

// excerpt truncates raw model output for diagnostics so parse failures never
// drag a full payload into logs or responses.
func excerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
