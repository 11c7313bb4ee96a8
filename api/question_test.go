package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/prepdeck/prepdeck/pkg/models"
)

type questionEnvelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    []models.Question `json:"data"`
}

func seedQuestions(t *testing.T, handler http.Handler, token string) (models.Session, []models.Question) {
	t.Helper()
	s := createSession(t, handler, token, map[string]any{
		"role": "r", "experience": "e", "topicsToFocus": "t",
		"question": []map[string]any{{"question": "seed question one"}},
	})

	w := doJSON(t, handler, http.MethodPost, "/question/add", token, map[string]any{
		"sessionId": s.ID,
		"question": []map[string]any{
			{"question": "added question two", "answer": "an answer"},
			{"question": "hi"},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add questions: %d %s", w.Code, w.Body.String())
	}
	var env questionEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode add response: %v", err)
	}
	return s, env.Data
}

func TestQuestionAdd(t *testing.T) {
	_, handler := newTestServer(t, nil)
	_, token := signup(t, handler, "q1@example.com")

	_, added := seedQuestions(t, handler, token)
	if len(added) != 2 {
		t.Fatalf("expected 2 added, got %d", len(added))
	}
	// short texts survive manual adds
	if added[1].Question != "hi" {
		t.Fatalf("unexpected question %q", added[1].Question)
	}
}

func TestQuestionAdd_Errors(t *testing.T) {
	_, handler := newTestServer(t, nil)
	_, token := signup(t, handler, "q2@example.com")

	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{"BadJSON", "nope", http.StatusBadRequest},
		{"MissingSessionID", map[string]any{"question": []map[string]any{{"question": "x"}}}, http.StatusBadRequest},
		{"EmptyBatch", map[string]any{"sessionId": 1}, http.StatusBadRequest},
		{"UnknownSession", map[string]any{"sessionId": 9999, "question": []map[string]any{{"question": "x"}}}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, handler, http.MethodPost, "/question/add", token, tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestQuestionPin(t *testing.T) {
	_, handler := newTestServer(t, nil)
	_, token := signup(t, handler, "q3@example.com")
	_, added := seedQuestions(t, handler, token)
	id := added[0].ID

	w := doJSON(t, handler, http.MethodPost, fmt.Sprintf("/question/%d/pin", id), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d (%s)", w.Code, w.Body.String())
	}
	var resp struct {
		Data models.Question `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Data.IsPinned {
		t.Fatal("expected pinned after first toggle")
	}

	w = doJSON(t, handler, http.MethodPost, fmt.Sprintf("/question/%d/pin", id), token, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.IsPinned {
		t.Fatal("expected unpinned after second toggle")
	}

	w = doJSON(t, handler, http.MethodPost, "/question/9999/pin", token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing question should be 404, got %d", w.Code)
	}
}

func TestQuestionNote(t *testing.T) {
	_, handler := newTestServer(t, nil)
	_, token := signup(t, handler, "q4@example.com")
	_, added := seedQuestions(t, handler, token)

	w := doJSON(t, handler, http.MethodPost, fmt.Sprintf("/question/%d/note", added[0].ID), token, map[string]string{"note": "review this"})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d (%s)", w.Code, w.Body.String())
	}
	var resp struct {
		Data models.Question `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Note != "review this" {
		t.Fatalf("unexpected note %q", resp.Data.Note)
	}

	// omitted note clears it
	w = doJSON(t, handler, http.MethodPost, fmt.Sprintf("/question/%d/note", added[0].ID), token, map[string]string{})
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Note != "" {
		t.Fatalf("expected cleared note, got %q", resp.Data.Note)
	}
}

func TestQuestionGenerateAnswer(t *testing.T) {
	_, handler := newTestServer(t, nil)
	_, token := signup(t, handler, "q5@example.com")
	_, added := seedQuestions(t, handler, token)
	id := added[0].ID

	w := doJSON(t, handler, http.MethodPost, fmt.Sprintf("/question/%d/generate-answer", id), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d (%s)", w.Code, w.Body.String())
	}
	var resp struct {
		Data struct {
			QuestionID int64              `json:"questionId"`
			Answer     models.Explanation `json:"answer"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.QuestionID != id {
		t.Fatalf("unexpected question id %d", resp.Data.QuestionID)
	}
	if resp.Data.Answer.Title != "Generated title" {
		t.Fatalf("unexpected explanation %+v", resp.Data.Answer)
	}
}

func TestQuestionGenerateAnswer_UpstreamFailure(t *testing.T) {
	provider := defaultProvider()
	_, handler := newTestServer(t, provider)
	_, token := signup(t, handler, "q6@example.com")
	_, added := seedQuestions(t, handler, token)

	provider.err = fmt.Errorf("connection refused")
	w := doJSON(t, handler, http.MethodPost, fmt.Sprintf("/question/%d/generate-answer", added[0].ID), token, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status %d (%s)", w.Code, w.Body.String())
	}
}

func TestQuestionSetAnswerAndGet(t *testing.T) {
	_, handler := newTestServer(t, nil)
	_, token := signup(t, handler, "q7@example.com")
	_, added := seedQuestions(t, handler, token)
	id := added[1].ID

	w := doJSON(t, handler, http.MethodPut, fmt.Sprintf("/question/%d/answer", id), token, map[string]any{"answer": "my own words"})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d (%s)", w.Code, w.Body.String())
	}

	w = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/question/%d", id), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d (%s)", w.Code, w.Body.String())
	}
	var resp struct {
		Data   models.Question `json:"data"`
		Answer models.Answer   `json:"answer"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Answer.Kind != models.AnswerPlain || resp.Answer.Text != "my own words" {
		t.Fatalf("unexpected answer %+v", resp.Answer)
	}

	// structured answer
	w = doJSON(t, handler, http.MethodPut, fmt.Sprintf("/question/%d/answer", id), token, map[string]any{
		"answer": map[string]any{"title": "Manual", "explanation": "Hand-written."},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d (%s)", w.Code, w.Body.String())
	}

	w = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/question/%d", id), token, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Answer.Kind != models.AnswerStructured || resp.Answer.Structured.Title != "Manual" {
		t.Fatalf("unexpected answer %+v", resp.Answer)
	}

	// empty answer rejected
	w = doJSON(t, handler, http.MethodPut, fmt.Sprintf("/question/%d/answer", id), token, map[string]any{"answer": ""})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty answer should be 400, got %d", w.Code)
	}
}

func TestQuestionListForSession(t *testing.T) {
	_, handler := newTestServer(t, nil)
	_, token := signup(t, handler, "q8@example.com")
	s, _ := seedQuestions(t, handler, token)

	w := doJSON(t, handler, http.MethodGet, fmt.Sprintf("/question/session/%d/questions", s.ID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d (%s)", w.Code, w.Body.String())
	}
	var resp struct {
		Data  []models.Question `json:"data"`
		Count int               `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 3 || len(resp.Data) != 3 {
		t.Fatalf("expected 3 questions, got %d/%d", resp.Count, len(resp.Data))
	}
	if resp.Data[0].Question != "seed question one" {
		t.Fatalf("expected creation order, got %q first", resp.Data[0].Question)
	}

	w = doJSON(t, handler, http.MethodGet, "/question/session/9999/questions", token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing session should be 404, got %d", w.Code)
	}
}
