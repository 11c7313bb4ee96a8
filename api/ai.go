package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/prepdeck/prepdeck/internal/genai"
	"github.com/prepdeck/prepdeck/internal/question"
	"github.com/prepdeck/prepdeck/pkg/apperr"
)

type AIHandler struct {
	generator *genai.Generator
	questions *question.Manager
}

func NewAIHandler(g *genai.Generator, qm *question.Manager) *AIHandler {
	return &AIHandler{generator: g, questions: qm}
}

type generateQuestionsRequest struct {
	Role          string `json:"role"`
	Experience    string `json:"experience"`
	TopicsToFocus string `json:"topicsToFocus"`
	// Question carries the requested count. Clients send it as a number
	// or a numeric string, so it is decoded lazily.
	Question  json.RawMessage `json:"question"`
	SessionID int64           `json:"sessionId"`
}

// parseCount accepts a JSON number or a numeric string, falling back to the
// default when the field is absent or unreadable.
func parseCount(raw json.RawMessage) int {
	if len(raw) == 0 {
		return genai.DefaultQuestionCount
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n
		}
	}

	return genai.DefaultQuestionCount
}

func (h *AIHandler) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	var req generateQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.BadRequest("Invalid request"))
		return
	}
	if req.Role == "" || req.Experience == "" || req.TopicsToFocus == "" {
		writeError(w, apperr.BadRequest("Role, experience, and topicsToFocus are required"))
		return
	}

	count := genai.ClampCount(parseCount(req.Question))
	generated, err := h.generator.GenerateQuestions(r.Context(), req.Role, req.Experience, req.TopicsToFocus, count)
	if err != nil {
		writeError(w, err)
		return
	}

	// An explicit session id asks for the batch to be persisted and linked,
	// not just returned.
	if req.SessionID > 0 {
		items := make([]question.AddQuestionItem, 0, len(generated))
		for _, g := range generated {
			items = append(items, question.AddQuestionItem{Question: g.Text})
		}
		created, err := h.questions.AddQuestions(r.Context(), req.SessionID, items)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"success": true, "data": created, "count": len(created)}, http.StatusOK)
		return
	}

	writeJSON(w, map[string]any{"success": true, "data": generated, "count": len(generated)}, http.StatusOK)
}

type generateExplanationRequest struct {
	QuestionText string `json:"questionText"`
}

func (h *AIHandler) GenerateExplanation(w http.ResponseWriter, r *http.Request) {
	var req generateExplanationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.BadRequest("Invalid request"))
		return
	}
	if strings.TrimSpace(req.QuestionText) == "" {
		writeError(w, apperr.BadRequest("questionText is required"))
		return
	}

	explanation, err := h.generator.GenerateExplanation(r.Context(), req.QuestionText)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]any{"success": true, "data": explanation}, http.StatusOK)
}
