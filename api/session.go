package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/prepdeck/prepdeck/internal/session"
	"github.com/prepdeck/prepdeck/pkg/apperr"
)

type SessionHandler struct {
	manager  *session.Manager
	validate *validator.Validate
}

func NewSessionHandler(m *session.Manager) *SessionHandler {
	return &SessionHandler{manager: m, validate: validator.New()}
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in session.CreateSessionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, apperr.BadRequest("Invalid request"))
		return
	}
	if err := h.validate.Struct(in); err != nil {
		writeError(w, apperr.BadRequest("Role, experience, and topicsToFocus are required"))
		return
	}

	created, err := h.manager.CreateSession(r.Context(), userIDFrom(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]any{"success": true, "session": created}, http.StatusCreated)
}

func (h *SessionHandler) MySessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.manager.GetMySessions(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, sessions, http.StatusOK)
}

func (h *SessionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	s, err := h.manager.GetSessionByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]any{"success": true, "session": s}, http.StatusOK)
}

func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, apperr.BadRequest("Invalid request"))
		return
	}

	s, err := h.manager.UpdateSession(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, s, http.StatusOK)
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.manager.DeleteSession(r.Context(), id, userIDFrom(r.Context())); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]any{"message": "Session deleted successfully"}, http.StatusOK)
}

// pathID parses an int64 path variable, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	idStr := mux.Vars(r)[name]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, apperr.BadRequest("Invalid id"))
		return 0, false
	}
	return id, true
}
