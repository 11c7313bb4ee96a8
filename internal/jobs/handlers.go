package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/prepdeck/prepdeck/internal/question"
	"github.com/prepdeck/prepdeck/pkg/models"
	"github.com/prepdeck/prepdeck/pkg/repository"
)

// NewHandlers wires the job handlers for the worker pool. interCallDelay
// spaces out sequential generation calls so bulk jobs don't hammer the
// upstream provider.
func NewHandlers(qm *question.Manager, qr repository.QuestionRepo, logger *slog.Logger, interCallDelay time.Duration) map[string]Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return map[string]Handler{
		TypeGenerateSessionAnswers: generateSessionAnswers(qm, qr, logger, interCallDelay),
		TypeReconcileQuestions:     reconcileQuestions(qr, logger),
	}
}

// generateSessionAnswers walks the session's unanswered questions and
// generates an answer for each, one call at a time. Failures are counted and
// reported, not retried; already-answered questions are skipped.
func generateSessionAnswers(qm *question.Manager, qr repository.QuestionRepo, logger *slog.Logger, delay time.Duration) Handler {
	return func(ctx context.Context, j *models.Job) error {
		var p GenerateAnswersPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		if p.SessionID <= 0 {
			return fmt.Errorf("payload missing session_id")
		}

		qs, err := qm.ListForSession(ctx, p.SessionID)
		if err != nil {
			return err
		}

		for i, q := range qs {
			if q.Answer != "" {
				continue
			}
			if i > 0 && delay > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(delay):
				}
			}

			if _, _, err := qm.GenerateAnswer(ctx, q.ID); err != nil {
				logger.Warn("bulk answer generation failed for question",
					slog.Int64("question_id", q.ID), slog.Any("err", err))
				p.Failed++
				continue
			}
			p.Completed++
		}

		if b, err := json.Marshal(p); err == nil {
			j.Payload = b
		}

		logger.Info("bulk answer generation finished",
			slog.Int64("session_id", p.SessionID),
			slog.Int("completed", p.Completed),
			slog.Int("failed", p.Failed),
		)
		return nil
	}
}

// reconcileQuestions deletes question rows left orphaned by a crash between
// the question inserts and the session link write.
func reconcileQuestions(qr repository.QuestionRepo, logger *slog.Logger) Handler {
	return func(ctx context.Context, j *models.Job) error {
		deleted, err := qr.DeleteOrphans(ctx)
		if err != nil {
			return err
		}

		if b, merr := json.Marshal(ReconcilePayload{Deleted: deleted}); merr == nil {
			j.Payload = b
		}

		if deleted > 0 {
			logger.Info("orphaned questions removed", slog.Int64("deleted", deleted))
		}
		return nil
	}
}
