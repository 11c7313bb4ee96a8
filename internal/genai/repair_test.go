package genai

import "testing"

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"uppercase json fence", "```JSON\n{\"a\":1}\n```", `{"a":1}`},
		{"leading whitespace", "   ```json\n{\"a\":1}\n```   ", `{"a":1}`},
		{"only leading fence", "```json\n{\"a\":1}", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.in); got != tt.want {
				t.Fatalf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseWithRepair(t *testing.T) {
	var v map[string]any
	if !parseWithRepair(`{"a": 1}`, &v) {
		t.Fatal("direct parse should succeed")
	}
	if !parseWithRepair("```json\n{\"a\": 1}\n```", &v) {
		t.Fatal("fenced parse should succeed after repair")
	}
	if parseWithRepair("nope", &v) {
		t.Fatal("garbage should not parse")
	}
}

func TestExcerpt(t *testing.T) {
	if got := excerpt("short", 10); got != "short" {
		t.Fatalf("unexpected excerpt %q", got)
	}
	if got := excerpt("0123456789abcdef", 10); got != "0123456789..." {
		t.Fatalf("unexpected excerpt %q", got)
	}
}
