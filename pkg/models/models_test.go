package models_test

import (
	"testing"

	"github.com/prepdeck/prepdeck/pkg/models"
)

func TestDecodeAnswer(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind models.AnswerKind
	}{
		{"empty", "", models.AnswerPlain},
		{"plain text", "Use a mutex.", models.AnswerPlain},
		{"leading brace but not json", "{not valid", models.AnswerPlain},
		{"json object without explanation fields", `{"foo": "bar"}`, models.AnswerPlain},
		{"structured", `{"title": "Mutexes", "explanation": "Mutual exclusion."}`, models.AnswerStructured},
		{"structured with whitespace", `  {"title": "Mutexes"}  `, models.AnswerStructured},
		{"key points only", `{"keyPoints": ["one point"]}`, models.AnswerStructured},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := models.DecodeAnswer(tt.raw)
			if got.Kind != tt.wantKind {
				t.Fatalf("DecodeAnswer(%q).Kind = %v, want %v", tt.raw, got.Kind, tt.wantKind)
			}
			if got.Kind == models.AnswerPlain && got.Text != tt.raw {
				t.Fatalf("plain answer must keep raw text, got %q", got.Text)
			}
		})
	}
}

func TestEncodeDecodeAnswer_Structured(t *testing.T) {
	in := models.Answer{
		Kind: models.AnswerStructured,
		Structured: &models.Explanation{
			Title:         "Channels",
			Explanation:   "Typed conduits for communication between goroutines.",
			KeyPoints:     []string{"blocking semantics", "directionality"},
			Examples:      []string{"ch := make(chan int)"},
			BestPractices: []string{"close from the sender side"},
		},
	}

	raw, err := models.EncodeAnswer(in)
	if err != nil {
		t.Fatalf("EncodeAnswer: %v", err)
	}

	out := models.DecodeAnswer(raw)
	if out.Kind != models.AnswerStructured {
		t.Fatalf("expected structured answer, got %v", out.Kind)
	}
	if out.Structured.Title != "Channels" {
		t.Fatalf("unexpected title %q", out.Structured.Title)
	}
	if len(out.Structured.KeyPoints) != 2 {
		t.Fatalf("unexpected key points %v", out.Structured.KeyPoints)
	}
}

func TestEncodeAnswer_Plain(t *testing.T) {
	raw, err := models.EncodeAnswer(models.Answer{Kind: models.AnswerPlain, Text: "Just a string."})
	if err != nil {
		t.Fatalf("EncodeAnswer: %v", err)
	}
	if raw != "Just a string." {
		t.Fatalf("plain answers are stored verbatim, got %q", raw)
	}
}
