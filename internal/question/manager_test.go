package question_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepdeck/prepdeck/internal/question"
	"github.com/prepdeck/prepdeck/pkg/apperr"
	"github.com/prepdeck/prepdeck/pkg/models"
	"github.com/prepdeck/prepdeck/pkg/repository/mock"
)

type fakeExplainer struct {
	explanation *models.Explanation
	err         error
	calls       int
	lastText    string
}

func (f *fakeExplainer) GenerateExplanation(ctx context.Context, questionText string) (*models.Explanation, error) {
	f.calls++
	f.lastText = questionText
	if f.err != nil {
		return nil, f.err
	}
	return f.explanation, nil
}

func setup(t *testing.T, gen question.ExplanationGenerator) (*mock.Mocks, *question.Manager, int64) {
	t.Helper()
	m := mock.NewMocks()
	sessionID, err := m.Sessions.CreateSession(context.Background(), &models.Session{UserID: 1, Role: "r", Experience: "e", TopicsToFocus: "t"})
	require.NoError(t, err)
	return m, question.NewManager(m.Sessions, m.Questions, gen, nil), sessionID
}

func TestAddQuestions(t *testing.T) {
	m, mgr, sessionID := setup(t, &fakeExplainer{})

	created, err := mgr.AddQuestions(context.Background(), sessionID, []question.AddQuestionItem{
		{Question: "What is a race condition?", Answer: "Concurrent unsynchronized access."},
		{Question: "hi"}, // short text is accepted here, unlike generation
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	assert.NotZero(t, created[0].ID)
	assert.Equal(t, sessionID, created[0].SessionID)
	assert.Equal(t, "hi", created[1].Question)
	assert.Len(t, m.Sessions.Links(sessionID), 2)
}

func TestAddQuestions_EmptyBatch(t *testing.T) {
	_, mgr, sessionID := setup(t, &fakeExplainer{})

	_, err := mgr.AddQuestions(context.Background(), sessionID, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
}

func TestAddQuestions_SessionNotFound(t *testing.T) {
	_, mgr, _ := setup(t, &fakeExplainer{})

	_, err := mgr.AddQuestions(context.Background(), 404, []question.AddQuestionItem{{Question: "q"}})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestTogglePin(t *testing.T) {
	_, mgr, sessionID := setup(t, &fakeExplainer{})
	created, err := mgr.AddQuestions(context.Background(), sessionID, []question.AddQuestionItem{{Question: "pin me please"}})
	require.NoError(t, err)
	id := created[0].ID

	q, err := mgr.TogglePin(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, q.IsPinned)

	q, err = mgr.TogglePin(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, q.IsPinned, "second toggle restores the original state")

	_, err = mgr.TogglePin(context.Background(), 404)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestMutationsReturnStoreTimestamp(t *testing.T) {
	_, mgr, sessionID := setup(t, &fakeExplainer{explanation: &models.Explanation{Title: "t", Explanation: "e"}})
	created, err := mgr.AddQuestions(context.Background(), sessionID, []question.AddQuestionItem{{Question: "stamp me on every write"}})
	require.NoError(t, err)
	id := created[0].ID
	before := created[0].Updated

	q, err := mgr.TogglePin(context.Background(), id)
	require.NoError(t, err)
	assert.Greater(t, q.Updated, before, "pin must carry the store-stamped updated_at")
	before = q.Updated

	q, err = mgr.SetNote(context.Background(), id, "a note")
	require.NoError(t, err)
	assert.Greater(t, q.Updated, before)
	before = q.Updated

	q, _, err = mgr.GenerateAnswer(context.Background(), id)
	require.NoError(t, err)
	assert.Greater(t, q.Updated, before)
	before = q.Updated

	q, err = mgr.SetAnswer(context.Background(), id, json.RawMessage(`"plain answer"`))
	require.NoError(t, err)
	assert.Greater(t, q.Updated, before)
}

func TestSetNote(t *testing.T) {
	_, mgr, sessionID := setup(t, &fakeExplainer{})
	created, err := mgr.AddQuestions(context.Background(), sessionID, []question.AddQuestionItem{{Question: "note me please"}})
	require.NoError(t, err)

	q, err := mgr.SetNote(context.Background(), created[0].ID, "revise before the interview")
	require.NoError(t, err)
	assert.Equal(t, "revise before the interview", q.Note)

	q, err = mgr.SetNote(context.Background(), created[0].ID, "")
	require.NoError(t, err)
	assert.Empty(t, q.Note, "empty note clears the field")
}

func TestGenerateAnswer(t *testing.T) {
	gen := &fakeExplainer{explanation: &models.Explanation{
		Title:         "Race conditions",
		Explanation:   "Two goroutines touch the same memory without synchronization.",
		KeyPoints:     []string{"use the race detector"},
		Examples:      []string{"unguarded counter increment"},
		BestPractices: []string{"share memory by communicating"},
	}}
	_, mgr, sessionID := setup(t, gen)
	created, err := mgr.AddQuestions(context.Background(), sessionID, []question.AddQuestionItem{{Question: "What is a race condition?"}})
	require.NoError(t, err)

	q, explanation, err := mgr.GenerateAnswer(context.Background(), created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "What is a race condition?", gen.lastText)
	assert.Equal(t, "Race conditions", explanation.Title)

	decoded := models.DecodeAnswer(q.Answer)
	require.Equal(t, models.AnswerStructured, decoded.Kind)
	assert.Equal(t, "Race conditions", decoded.Structured.Title)
}

func TestGenerateAnswer_FailureLeavesPriorAnswer(t *testing.T) {
	gen := &fakeExplainer{err: apperr.Upstream("provider timeout")}
	m, mgr, sessionID := setup(t, gen)
	created, err := mgr.AddQuestions(context.Background(), sessionID, []question.AddQuestionItem{
		{Question: "What is a deadlock?", Answer: "Mutual circular waiting."},
	})
	require.NoError(t, err)

	_, _, err = mgr.GenerateAnswer(context.Background(), created[0].ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))

	stored, err := m.Questions.GetQuestionByID(context.Background(), created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Mutual circular waiting.", stored.Answer)
}

func TestSetAnswer_PlainText(t *testing.T) {
	_, mgr, sessionID := setup(t, &fakeExplainer{})
	created, err := mgr.AddQuestions(context.Background(), sessionID, []question.AddQuestionItem{{Question: "What is GOMAXPROCS?"}})
	require.NoError(t, err)

	q, err := mgr.SetAnswer(context.Background(), created[0].ID, json.RawMessage(`"It bounds the number of running OS threads."`))
	require.NoError(t, err)

	decoded := models.DecodeAnswer(q.Answer)
	require.Equal(t, models.AnswerPlain, decoded.Kind)
	assert.Equal(t, "It bounds the number of running OS threads.", decoded.Text)
}

func TestSetAnswer_Structured(t *testing.T) {
	_, mgr, sessionID := setup(t, &fakeExplainer{})
	created, err := mgr.AddQuestions(context.Background(), sessionID, []question.AddQuestionItem{{Question: "What is an interface?"}})
	require.NoError(t, err)

	raw := json.RawMessage(`{"title": "Interfaces", "explanation": "A method set contract.", "keyPoints": ["implicit satisfaction"]}`)
	q, err := mgr.SetAnswer(context.Background(), created[0].ID, raw)
	require.NoError(t, err)

	decoded := models.DecodeAnswer(q.Answer)
	require.Equal(t, models.AnswerStructured, decoded.Kind)
	assert.Equal(t, "Interfaces", decoded.Structured.Title)
	assert.Equal(t, []string{"implicit satisfaction"}, decoded.Structured.KeyPoints)
}

func TestSetAnswer_EmptyRejected(t *testing.T) {
	_, mgr, sessionID := setup(t, &fakeExplainer{})
	created, err := mgr.AddQuestions(context.Background(), sessionID, []question.AddQuestionItem{{Question: "whatever works"}})
	require.NoError(t, err)

	for _, raw := range []json.RawMessage{nil, json.RawMessage(`null`), json.RawMessage(`""`), json.RawMessage(`"   "`)} {
		_, err := mgr.SetAnswer(context.Background(), created[0].ID, raw)
		require.Error(t, err)
		assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	}
}

func TestListForSession(t *testing.T) {
	_, mgr, sessionID := setup(t, &fakeExplainer{})

	qs, err := mgr.ListForSession(context.Background(), sessionID)
	require.NoError(t, err)
	require.NotNil(t, qs)
	assert.Empty(t, qs)

	_, err = mgr.AddQuestions(context.Background(), sessionID, []question.AddQuestionItem{
		{Question: "first question text"},
		{Question: "second question text"},
	})
	require.NoError(t, err)

	qs, err = mgr.ListForSession(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, "first question text", qs[0].Question)

	_, err = mgr.ListForSession(context.Background(), 404)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
