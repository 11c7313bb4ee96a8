// Package question orchestrates single-question operations: extending a
// session with new questions, pinning, notes, and answer generation/edits.
package question

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/prepdeck/prepdeck/pkg/apperr"
	"github.com/prepdeck/prepdeck/pkg/models"
	"github.com/prepdeck/prepdeck/pkg/repository"
)

// ExplanationGenerator is the slice of the content generation client this
// manager needs.
type ExplanationGenerator interface {
	GenerateExplanation(ctx context.Context, questionText string) (*models.Explanation, error)
}

type Manager struct {
	sessions  repository.SessionRepo
	questions repository.QuestionRepo
	generator ExplanationGenerator
	logger    *slog.Logger
}

func NewManager(sr repository.SessionRepo, qr repository.QuestionRepo, gen ExplanationGenerator, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{sessions: sr, questions: qr, generator: gen, logger: logger}
}

// AddQuestionItem is one entry of the batch accepted by AddQuestions.
type AddQuestionItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	IsPinned bool   `json:"isPinned"`
	Note     string `json:"note"`
}

// AddQuestions appends a batch of questions to an existing session and links
// their ids. Unlike generation-time filtering, no minimum text length is
// enforced here; short questions are persisted as given.
func (m *Manager) AddQuestions(ctx context.Context, sessionID int64, items []AddQuestionItem) ([]models.Question, error) {
	if len(items) == 0 {
		return nil, apperr.BadRequest("question batch must be a non-empty array")
	}

	s, err := m.sessions.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, apperr.Internal("get session", err)
	}
	if s == nil {
		return nil, apperr.NotFound("session")
	}

	created := make([]models.Question, 0, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		q := &models.Question{
			SessionID: sessionID,
			Question:  item.Question,
			Answer:    item.Answer,
			IsPinned:  item.IsPinned,
			Note:      item.Note,
		}
		id, err := m.questions.CreateQuestion(ctx, q)
		if err != nil {
			return nil, apperr.Internal("create question", err)
		}
		ids = append(ids, id)

		stored, err := m.questions.GetQuestionByID(ctx, id)
		if err != nil || stored == nil {
			return nil, apperr.Internal("reload question", err)
		}
		created = append(created, *stored)
	}

	if err := m.sessions.LinkQuestions(ctx, sessionID, ids); err != nil {
		return nil, apperr.Internal("link questions", err)
	}

	m.logger.Info("questions added", slog.Int64("session_id", sessionID), slog.Int("count", len(created)))
	return created, nil
}

// TogglePin flips the pin flag and returns the updated question.
func (m *Manager) TogglePin(ctx context.Context, questionID int64) (*models.Question, error) {
	q, err := m.getQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}

	q.IsPinned = !q.IsPinned
	return m.updateAndReload(ctx, q)
}

// SetNote overwrites the question's note. An omitted note clears it.
func (m *Manager) SetNote(ctx context.Context, questionID int64, note string) (*models.Question, error) {
	q, err := m.getQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}

	q.Note = note
	return m.updateAndReload(ctx, q)
}

// GenerateAnswer asks the content generation client for a structured
// explanation and stores it in the question's opaque answer field. Provider
// errors propagate unchanged and leave any prior answer untouched.
func (m *Manager) GenerateAnswer(ctx context.Context, questionID int64) (*models.Question, *models.Explanation, error) {
	q, err := m.getQuestion(ctx, questionID)
	if err != nil {
		return nil, nil, err
	}

	explanation, err := m.generator.GenerateExplanation(ctx, q.Question)
	if err != nil {
		return nil, nil, err
	}

	encoded, err := models.EncodeAnswer(models.Answer{Kind: models.AnswerStructured, Structured: explanation})
	if err != nil {
		return nil, nil, apperr.Internal("encode answer", err)
	}

	q.Answer = encoded
	q, err = m.updateAndReload(ctx, q)
	if err != nil {
		return nil, nil, err
	}

	m.logger.Info("answer generated", slog.Int64("question_id", questionID))
	return q, explanation, nil
}

// SetAnswer accepts either a plain string or a structured object, encodes it
// once at this boundary, and persists it.
func (m *Manager) SetAnswer(ctx context.Context, questionID int64, raw json.RawMessage) (*models.Question, error) {
	answer, ok := decodeAnswerInput(raw)
	if !ok {
		return nil, apperr.BadRequest("answer is required")
	}

	q, err := m.getQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}

	encoded, err := models.EncodeAnswer(answer)
	if err != nil {
		return nil, apperr.Internal("encode answer", err)
	}

	q.Answer = encoded
	return m.updateAndReload(ctx, q)
}

// Get returns one question by id.
func (m *Manager) Get(ctx context.Context, questionID int64) (*models.Question, error) {
	return m.getQuestion(ctx, questionID)
}

// ListForSession returns all questions of an existing session in creation order.
func (m *Manager) ListForSession(ctx context.Context, sessionID int64) ([]models.Question, error) {
	s, err := m.sessions.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, apperr.Internal("get session", err)
	}
	if s == nil {
		return nil, apperr.NotFound("session")
	}

	qs, err := m.questions.ListBySession(ctx, sessionID, repository.OrderCreated)
	if err != nil {
		return nil, apperr.Internal("list questions", err)
	}
	if qs == nil {
		qs = []models.Question{}
	}
	return qs, nil
}

// updateAndReload persists the question and re-reads the row so the caller
// sees the store-stamped updated_at, not the pre-update value.
func (m *Manager) updateAndReload(ctx context.Context, q *models.Question) (*models.Question, error) {
	if err := m.questions.UpdateQuestion(ctx, q); err != nil {
		return nil, apperr.Internal("update question", err)
	}

	stored, err := m.questions.GetQuestionByID(ctx, q.ID)
	if err != nil {
		return nil, apperr.Internal("reload question", err)
	}
	if stored == nil {
		return nil, apperr.NotFound("question")
	}
	return stored, nil
}

func (m *Manager) getQuestion(ctx context.Context, questionID int64) (*models.Question, error) {
	q, err := m.questions.GetQuestionByID(ctx, questionID)
	if err != nil {
		return nil, apperr.Internal("get question", err)
	}
	if q == nil {
		return nil, apperr.NotFound("question")
	}
	return q, nil
}

// decodeAnswerInput turns the request payload into the Answer sum type: a
// JSON string is plain text, an object is a structured explanation. The bool
// is false for absent or empty input.
func decodeAnswerInput(raw json.RawMessage) (models.Answer, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return models.Answer{}, false
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if strings.TrimSpace(text) == "" {
			return models.Answer{}, false
		}
		return models.Answer{Kind: models.AnswerPlain, Text: text}, true
	}

	var e models.Explanation
	if err := json.Unmarshal(raw, &e); err != nil {
		return models.Answer{}, false
	}
	return models.Answer{Kind: models.AnswerStructured, Structured: &e}, true
}
