// Package session orchestrates the session lifecycle: creation with
// normalized or generated questions, retrieval with populated question lists,
// shallow updates, and owner-only cascading deletes.
package session

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/prepdeck/prepdeck/internal/genai"
	"github.com/prepdeck/prepdeck/pkg/apperr"
	"github.com/prepdeck/prepdeck/pkg/models"
	"github.com/prepdeck/prepdeck/pkg/repository"
)

// QuestionGenerator is the slice of the content generation client this
// manager needs.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, role, experience, topics string, count int) ([]models.GeneratedQuestion, error)
}

type Manager struct {
	sessions  repository.SessionRepo
	questions repository.QuestionRepo
	generator QuestionGenerator
	logger    *slog.Logger
}

func NewManager(sr repository.SessionRepo, qr repository.QuestionRepo, gen QuestionGenerator, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{sessions: sr, questions: qr, generator: gen, logger: logger}
}

// CreateSessionInput is the decoded request body for session creation.
// Questions may be absent, a JSON-encoded string, or a structured list.
type CreateSessionInput struct {
	Role          string          `json:"role" validate:"required"`
	Experience    string          `json:"experience" validate:"required"`
	TopicsToFocus string          `json:"topicsToFocus" validate:"required"`
	Description   string          `json:"description"`
	Questions     json.RawMessage `json:"question"`
}

// CreateSession normalizes or generates the question batch, persists the
// session, persists one question per item, and links them in creation order.
//
// The create-then-link sequence is not transactional: a crash after the
// question inserts but before LinkQuestions leaves orphaned question rows.
// The window is accepted and bounded; the reconciliation sweep job removes
// the leftovers.
func (m *Manager) CreateSession(ctx context.Context, userID int64, in CreateSessionInput) (*models.Session, error) {
	if userID <= 0 {
		return nil, apperr.Unauthorized("user missing")
	}

	items, ok := DecodeQuestionsInput(in.Questions)
	if !ok {
		return nil, apperr.BadRequest(`invalid JSON in "question" field`)
	}

	var normalized []NormalizedQuestion
	if len(items) == 0 {
		generated, err := m.generator.GenerateQuestions(ctx, in.Role, in.Experience, in.TopicsToFocus, genai.DefaultQuestionCount)
		if err != nil {
			// no partial session without questions
			return nil, err
		}
		normalized = make([]NormalizedQuestion, 0, len(generated))
		for _, g := range generated {
			normalized = append(normalized, NormalizedQuestion{Question: g.Text})
		}
	} else {
		var invalid []int
		normalized, invalid = Normalize(items)
		if len(invalid) > 0 {
			m.logger.Warn("invalid question items in create session", slog.Any("indices", invalid))
			return nil, apperr.Validation("each question item must contain a question text").
				WithDetails(map[string]any{"invalid_items": invalid})
		}
	}

	s := &models.Session{
		UserID:        userID,
		Role:          in.Role,
		Experience:    in.Experience,
		TopicsToFocus: in.TopicsToFocus,
		Description:   in.Description,
	}
	sessionID, err := m.sessions.CreateSession(ctx, s)
	if err != nil {
		return nil, apperr.Internal("create session", err)
	}

	questionIDs := make([]int64, 0, len(normalized))
	for _, n := range normalized {
		q := &models.Question{SessionID: sessionID, Question: n.Question, Answer: n.Answer}
		id, err := m.questions.CreateQuestion(ctx, q)
		if err != nil {
			return nil, apperr.Internal("create question", err)
		}
		questionIDs = append(questionIDs, id)
	}

	if err := m.sessions.LinkQuestions(ctx, sessionID, questionIDs); err != nil {
		return nil, apperr.Internal("link questions", err)
	}

	created, err := m.sessions.GetSessionByID(ctx, sessionID)
	if err != nil || created == nil {
		return nil, apperr.Internal("reload session", err)
	}
	created.Questions, err = m.questions.ListBySession(ctx, sessionID, repository.OrderCreated)
	if err != nil {
		return nil, apperr.Internal("populate questions", err)
	}

	m.logger.Info("session created",
		slog.Int64("session_id", sessionID),
		slog.Int64("user_id", userID),
		slog.Int("questions", len(questionIDs)),
	)

	return created, nil
}

// GetMySessions returns the caller's sessions, newest first, each with its
// questions populated in creation order.
func (m *Manager) GetMySessions(ctx context.Context, userID int64) ([]models.Session, error) {
	if userID <= 0 {
		return nil, apperr.Unauthorized("user missing")
	}

	sessions, err := m.sessions.ListSessionsByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("list sessions", err)
	}

	for i := range sessions {
		qs, err := m.questions.ListBySession(ctx, sessions[i].ID, repository.OrderCreated)
		if err != nil {
			return nil, apperr.Internal("populate questions", err)
		}
		sessions[i].Questions = qs
	}

	if sessions == nil {
		sessions = []models.Session{}
	}
	return sessions, nil
}

// GetSessionByID returns one session with questions populated pinned-first,
// ties broken by creation order.
func (m *Manager) GetSessionByID(ctx context.Context, sessionID int64) (*models.Session, error) {
	s, err := m.sessions.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, apperr.Internal("get session", err)
	}
	if s == nil {
		return nil, apperr.NotFound("session")
	}

	s.Questions, err = m.questions.ListBySession(ctx, sessionID, repository.OrderPinnedFirst)
	if err != nil {
		return nil, apperr.Internal("populate questions", err)
	}

	return s, nil
}

// UpdateSession applies a shallow field patch and returns the updated session.
func (m *Manager) UpdateSession(ctx context.Context, sessionID int64, patch map[string]any) (*models.Session, error) {
	s, err := m.sessions.UpdateSession(ctx, sessionID, patch)
	if err != nil {
		return nil, apperr.Internal("update session", err)
	}
	if s == nil {
		return nil, apperr.NotFound("session")
	}

	return s, nil
}

// DeleteSession removes a session and all of its questions. Questions are
// deleted first so no window exists where a session references gone rows.
func (m *Manager) DeleteSession(ctx context.Context, sessionID, requesterID int64) error {
	s, err := m.sessions.GetSessionByID(ctx, sessionID)
	if err != nil {
		return apperr.Internal("get session", err)
	}
	if s == nil {
		return apperr.NotFound("session")
	}
	if s.UserID != requesterID {
		return apperr.Forbidden("not authorized to delete the session")
	}

	deleted, err := m.questions.DeleteBySession(ctx, sessionID)
	if err != nil {
		return apperr.Internal("delete questions", err)
	}
	if err := m.sessions.DeleteSession(ctx, sessionID); err != nil {
		return apperr.Internal("delete session", err)
	}

	m.logger.Info("session deleted", slog.Int64("session_id", sessionID), slog.Int64("questions_deleted", deleted))
	return nil
}
