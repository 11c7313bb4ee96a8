package api

import (
	"encoding/json"
	"net/http"

	"github.com/prepdeck/prepdeck/internal/jobs"
	"github.com/prepdeck/prepdeck/internal/session"
	"github.com/prepdeck/prepdeck/pkg/apperr"
	"github.com/prepdeck/prepdeck/pkg/models"
	"github.com/prepdeck/prepdeck/pkg/repository"
)

type JobHandler struct {
	jobs     repository.JobRepo
	sessions *session.Manager
}

func NewJobHandler(jr repository.JobRepo, sm *session.Manager) *JobHandler {
	return &JobHandler{jobs: jr, sessions: sm}
}

// GenerateSessionAnswers enqueues a background job that walks every
// unanswered question of the session. The response carries the job id;
// progress is observed by polling the job.
func (h *JobHandler) GenerateSessionAnswers(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	// reject early so a typo'd session id does not burn a job slot
	if _, err := h.sessions.GetSessionByID(r.Context(), sessionID); err != nil {
		writeError(w, err)
		return
	}

	payload, err := json.Marshal(jobs.GenerateAnswersPayload{SessionID: sessionID})
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := h.jobs.EnqueueJob(r.Context(), &models.Job{
		Type:        jobs.TypeGenerateSessionAnswers,
		Payload:     payload,
		Status:      jobs.StatusPending,
		MaxAttempts: 1,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]any{"success": true, "jobId": id}, http.StatusAccepted)
}

func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	job, err := h.jobs.GetJobByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if job == nil {
		writeError(w, apperr.NotFound("Job"))
		return
	}

	writeJSON(w, job, http.StatusOK)
}
