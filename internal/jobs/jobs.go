package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prepdeck/prepdeck/pkg/models"
	"github.com/prepdeck/prepdeck/pkg/repository"
)

// Job type names processed by the worker pool.
const (
	// TypeGenerateSessionAnswers generates an answer for every unanswered
	// question of one session, sequentially.
	TypeGenerateSessionAnswers = "answers.generate_session"
	// TypeReconcileQuestions sweeps question rows orphaned by the
	// non-transactional create-then-link sequence.
	TypeReconcileQuestions = "questions.reconcile"
)

// Job statuses.
const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Handler is the function that processes a job. It may rewrite the job's
// payload to record results.
type Handler func(ctx context.Context, j *models.Job) error

// GenerateAnswersPayload is the payload of a TypeGenerateSessionAnswers job.
// Completed and Failed are filled in by the handler; partial completion is
// expected and reported, never rolled back.
type GenerateAnswersPayload struct {
	SessionID int64 `json:"session_id"`
	Completed int   `json:"completed,omitempty"`
	Failed    int   `json:"failed,omitempty"`
}

// ReconcilePayload is the payload of a TypeReconcileQuestions job.
type ReconcilePayload struct {
	Deleted int64 `json:"deleted,omitempty"`
}

// EnqueueReconcile schedules a sweep of question rows left behind when a
// session create or delete was interrupted between writes.
func EnqueueReconcile(ctx context.Context, jr repository.JobRepo) (int64, error) {
	payload, err := json.Marshal(ReconcilePayload{})
	if err != nil {
		return 0, err
	}
	return jr.EnqueueJob(ctx, &models.Job{
		Type:        TypeReconcileQuestions,
		Payload:     payload,
		Status:      StatusPending,
		MaxAttempts: 3,
	})
}

// BackoffDuration returns exponential backoff duration for attempt n,
// capped at five minutes. The exponent is clamped before shifting; 2^9
// seconds already exceeds the cap.
func BackoffDuration(attempt int) time.Duration {
	if attempt <= 0 {
		return time.Second
	}
	max := 5 * time.Minute
	if attempt >= 9 {
		return max
	}
	d := time.Duration(1<<uint(attempt)) * time.Second
	if d > max {
		return max
	}
	return d
}
