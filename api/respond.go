package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prepdeck/prepdeck/pkg/apperr"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

type errorBody struct {
	Kind    apperr.Kind    `json:"kind"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// writeError maps an application error onto the HTTP response. Causes and
// stack traces never leave the process; they are logged instead.
func writeError(w http.ResponseWriter, err error) {
	ae := apperr.From(err)
	if ae.Kind == apperr.KindInternal || ae.Kind == apperr.KindConfig {
		logger.Error("request failed", slog.String("kind", string(ae.Kind)), slog.Any("err", err))
	}

	writeJSON(w, map[string]any{"error": errorBody{
		Kind:    ae.Kind,
		Message: ae.Message,
		Details: ae.Details,
	}}, ae.HTTPStatus())
}
