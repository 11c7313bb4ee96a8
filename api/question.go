package api

import (
	"encoding/json"
	"net/http"

	"github.com/prepdeck/prepdeck/internal/question"
	"github.com/prepdeck/prepdeck/pkg/apperr"
	"github.com/prepdeck/prepdeck/pkg/models"
)

type QuestionHandler struct {
	manager *question.Manager
}

func NewQuestionHandler(m *question.Manager) *QuestionHandler {
	return &QuestionHandler{manager: m}
}

type addQuestionsRequest struct {
	SessionID int64                      `json:"sessionId"`
	Questions []question.AddQuestionItem `json:"question"`
}

func (h *QuestionHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.BadRequest("Invalid request"))
		return
	}
	if req.SessionID <= 0 {
		writeError(w, apperr.BadRequest("sessionId is required"))
		return
	}

	created, err := h.manager.AddQuestions(r.Context(), req.SessionID, req.Questions)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]any{
		"success": true,
		"message": "Questions added successfully",
		"data":    created,
	}, http.StatusCreated)
}

func (h *QuestionHandler) Pin(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	q, err := h.manager.TogglePin(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	msg := "Question unpinned successfully"
	if q.IsPinned {
		msg = "Question pinned successfully"
	}
	writeJSON(w, map[string]any{"success": true, "message": msg, "data": q}, http.StatusOK)
}

type noteRequest struct {
	Note string `json:"note"`
}

func (h *QuestionHandler) Note(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.BadRequest("Invalid request"))
		return
	}

	q, err := h.manager.SetNote(r.Context(), id, req.Note)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]any{"success": true, "data": q}, http.StatusOK)
}

func (h *QuestionHandler) GenerateAnswer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "questionId")
	if !ok {
		return
	}

	q, explanation, err := h.manager.GenerateAnswer(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]any{
		"success": true,
		"message": "Answer generated successfully",
		"data": map[string]any{
			"questionId": q.ID,
			"question":   q.Question,
			"answer":     explanation,
			"updatedAt":  q.Updated,
		},
	}, http.StatusOK)
}

func (h *QuestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "questionId")
	if !ok {
		return
	}

	q, err := h.manager.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	// decode the opaque answer once at the boundary for consumers
	writeJSON(w, map[string]any{
		"success": true,
		"data":    q,
		"answer":  models.DecodeAnswer(q.Answer),
	}, http.StatusOK)
}

type setAnswerRequest struct {
	Answer json.RawMessage `json:"answer"`
}

func (h *QuestionHandler) SetAnswer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "questionId")
	if !ok {
		return
	}

	var req setAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.BadRequest("Invalid request"))
		return
	}

	q, err := h.manager.SetAnswer(r.Context(), id, req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]any{"success": true, "message": "Answer updated successfully", "data": q}, http.StatusOK)
}

func (h *QuestionHandler) ListForSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r, "sessionId")
	if !ok {
		return
	}

	qs, err := h.manager.ListForSession(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]any{"success": true, "data": qs, "count": len(qs)}, http.StatusOK)
}
