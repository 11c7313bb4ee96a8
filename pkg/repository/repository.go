package repository

import (
	"context"

	"github.com/prepdeck/prepdeck/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type SessionRepo interface {
	CreateSession(ctx context.Context, s *models.Session) (int64, error)
	GetSessionByID(ctx context.Context, id int64) (*models.Session, error)
	ListSessionsByUser(ctx context.Context, userID int64) ([]models.Session, error)
	// UpdateSession applies a shallow patch of the given fields. Unknown
	// fields are ignored; user_id can never be patched.
	UpdateSession(ctx context.Context, id int64, patch map[string]any) (*models.Session, error)
	DeleteSession(ctx context.Context, id int64) error
	// LinkQuestions appends question ids to the session's ordered link list.
	LinkQuestions(ctx context.Context, sessionID int64, questionIDs []int64) error
}

type QuestionRepo interface {
	CreateQuestion(ctx context.Context, q *models.Question) (int64, error)
	GetQuestionByID(ctx context.Context, id int64) (*models.Question, error)
	// ListBySession returns the session's questions. Ordering is selected by
	// the caller: creation order or pinned-first.
	ListBySession(ctx context.Context, sessionID int64, order QuestionOrder) ([]models.Question, error)
	UpdateQuestion(ctx context.Context, q *models.Question) error
	DeleteBySession(ctx context.Context, sessionID int64) (int64, error)
	// DeleteOrphans removes questions whose session row or link row is gone.
	DeleteOrphans(ctx context.Context) (int64, error)
}

type JobRepo interface {
	EnqueueJob(ctx context.Context, j *models.Job) (int64, error)
	GetJobByID(ctx context.Context, id int64) (*models.Job, error)
	FetchNextJob(ctx context.Context) (*models.Job, error)
	UpdateJob(ctx context.Context, j *models.Job) error
}

// QuestionOrder selects the row ordering for ListBySession.
type QuestionOrder int

const (
	// OrderCreated sorts by creation time ascending.
	OrderCreated QuestionOrder = iota
	// OrderPinnedFirst floats pinned questions to the top, ties broken by
	// creation time ascending.
	OrderPinnedFirst
)
