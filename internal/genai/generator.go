// Package genai is the content generation client: it issues
// schema-constrained requests to a chat-completion provider and coerces the
// output into question lists or structured explanations.
package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/qri-io/jsonschema"

	"github.com/prepdeck/prepdeck/pkg/apperr"
	"github.com/prepdeck/prepdeck/pkg/llm"
	"github.com/prepdeck/prepdeck/pkg/models"
)

const (
	// DefaultQuestionCount is used when a caller does not ask for a size.
	DefaultQuestionCount = 10
	// MinQuestionCount and MaxQuestionCount clamp requested batch sizes.
	MinQuestionCount = 1
	MaxQuestionCount = 20

	// minQuestionTextLen is the trimmed length a generated question must
	// exceed to survive filtering.
	minQuestionTextLen = 10

	// rawExcerptLen caps the diagnostic excerpt attached to parse errors.
	rawExcerptLen = 500
)

// Generator produces interview questions and explanations. Stateless apart
// from the injected provider; never touches the store.
type Generator struct {
	provider llm.Provider
	logger   *slog.Logger

	questionsCheck   *jsonschema.Schema
	explanationCheck *jsonschema.Schema
}

// NewGenerator creates a generator over the given provider.
func NewGenerator(provider llm.Provider, logger *slog.Logger) (*Generator, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	qs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(localQuestionsSchemaJSON), qs); err != nil {
		return nil, fmt.Errorf("compile questions schema: %w", err)
	}
	es := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(explanationSchemaJSON), es); err != nil {
		return nil, fmt.Errorf("compile explanation schema: %w", err)
	}

	return &Generator{provider: provider, logger: logger, questionsCheck: qs, explanationCheck: es}, nil
}

// ClampCount bounds a requested question count to [MinQuestionCount, MaxQuestionCount].
func ClampCount(count int) int {
	if count < MinQuestionCount {
		return MinQuestionCount
	}
	if count > MaxQuestionCount {
		return MaxQuestionCount
	}
	return count
}

type questionsPayload struct {
	Questions []struct {
		Question string `json:"question"`
	} `json:"questions"`
}

// GenerateQuestions asks the provider for exactly count questions, filters
// out items whose text is empty or too short after trimming, truncates to
// count, and assigns 1-based ordinals in response order. The provider's
// ordering is not stable and items are not semantically deduplicated.
func (g *Generator) GenerateQuestions(ctx context.Context, role, experience, topics string, count int) ([]models.GeneratedQuestion, error) {
	count = ClampCount(count)

	data := map[string]any{"Count": count, "Role": role, "Experience": experience, "Topics": topics}
	system, err := renderTemplate(questionsSystemPrompt, data)
	if err != nil {
		return nil, apperr.Internal("render system prompt", err)
	}
	prompt, err := renderTemplate(questionsPrompt, data)
	if err != nil {
		return nil, apperr.Internal("render prompt", err)
	}

	res, err := g.provider.Complete(ctx, llm.Request{
		System:      system,
		Prompt:      prompt,
		MaxTokens:   count * 150,
		Temperature: 0.7,
		TopP:        0.9,
		Schema:      &llm.ResponseSchema{Name: "interview_questions", Schema: questionsSchema(count)},
	})
	if err != nil {
		return nil, err
	}

	parsed, perr := g.parseQuestions(ctx, res.Text)
	if perr != nil {
		return nil, perr
	}

	out := make([]models.GeneratedQuestion, 0, count)
	for _, item := range parsed {
		text := strings.TrimSpace(item)
		if len(text) <= minQuestionTextLen {
			continue
		}
		out = append(out, models.GeneratedQuestion{Ordinal: len(out) + 1, Text: text})
		if len(out) == count {
			break
		}
	}

	g.logger.Info("generated questions",
		slog.Int("requested", count),
		slog.Int("kept", len(out)),
		slog.Int("received", len(parsed)),
	)

	return out, nil
}

// parseQuestions extracts the question texts from raw provider output,
// accepting either the schema object or a bare top-level array.
func (g *Generator) parseQuestions(ctx context.Context, content string) ([]string, error) {
	var payload questionsPayload
	if parseWithRepair(content, &payload) && payload.Questions != nil {
		cleaned := stripFences(content)
		if verrs, err := g.questionsCheck.ValidateBytes(ctx, []byte(cleaned)); err == nil && len(verrs) > 0 {
			var sb strings.Builder
			for _, v := range verrs {
				sb.WriteString(v.Message)
				sb.WriteString("; ")
			}
			return nil, apperr.Parse("provider output does not match schema: " + sb.String()).
				WithDetails(map[string]any{"raw": excerpt(content, rawExcerptLen)})
		}

		out := make([]string, 0, len(payload.Questions))
		for _, q := range payload.Questions {
			out = append(out, q.Question)
		}
		return out, nil
	}

	// some models ignore the wrapper object and emit a bare array
	var items []struct {
		Question string `json:"question"`
	}
	if parseWithRepair(content, &items) {
		out := make([]string, 0, len(items))
		for _, q := range items {
			out = append(out, q.Question)
		}
		return out, nil
	}

	g.logger.Error("question parse failed", slog.String("raw", excerpt(content, rawExcerptLen)))
	return nil, apperr.Parse("failed to parse provider response").
		WithDetails(map[string]any{"raw": excerpt(content, rawExcerptLen)})
}

// GenerateExplanation asks the provider for the five-field structured
// explanation of one question. Partial output is repaired with literal
// placeholders instead of failing the whole operation.
func (g *Generator) GenerateExplanation(ctx context.Context, questionText string) (*models.Explanation, error) {
	data := map[string]any{"Question": questionText}
	prompt, err := renderTemplate(explanationPrompt, data)
	if err != nil {
		return nil, apperr.Internal("render prompt", err)
	}

	res, err := g.provider.Complete(ctx, llm.Request{
		System:      explanationSystemPrompt,
		Prompt:      prompt,
		MaxTokens:   2000,
		Temperature: 0.7,
		TopP:        0.9,
		Schema:      &llm.ResponseSchema{Name: "concept_explanation", Schema: json.RawMessage(explanationSchemaJSON)},
	})
	if err != nil {
		return nil, err
	}

	var e models.Explanation
	if !parseWithRepair(res.Text, &e) {
		g.logger.Error("explanation parse failed", slog.String("raw", excerpt(res.Text, rawExcerptLen)))
		return nil, apperr.Parse("failed to parse provider response").
			WithDetails(map[string]any{"raw": excerpt(res.Text, rawExcerptLen)})
	}

	// schema mismatches on an otherwise-parseable object are logged, then
	// repaired by the same placeholder policy as missing fields
	cleaned := stripFences(res.Text)
	if verrs, err := g.explanationCheck.ValidateBytes(ctx, []byte(cleaned)); err == nil && len(verrs) > 0 {
		g.logger.Warn("explanation does not fully match schema", slog.Int("violations", len(verrs)))
	}

	if e.Title == "" {
		e.Title = questionText
	}
	if strings.TrimSpace(e.Explanation) == "" {
		e.Explanation = "No explanation available"
	}
	if len(e.KeyPoints) == 0 {
		e.KeyPoints = []string{"No key points available"}
	}
	if len(e.Examples) == 0 {
		e.Examples = []string{"No examples available"}
	}
	if len(e.BestPractices) == 0 {
		e.BestPractices = []string{"No best practices available"}
	}

	return &e, nil
}
