package sqlite

import (
	"log/slog"
	"time"

	"github.com/prepdeck/prepdeck/internal/db"
	"github.com/prepdeck/prepdeck/pkg/repository"
)

// Repo implements the repository interfaces using the internal DB wrapper.
type Repo struct {
	conn   *db.DB
	logger *slog.Logger
}

// Ensure Repo implements the public interfaces.
var _ repository.UserRepo = (*Repo)(nil)
var _ repository.SessionRepo = (*Repo)(nil)
var _ repository.QuestionRepo = (*Repo)(nil)
var _ repository.JobRepo = (*Repo)(nil)

func New(conn *db.DB, logger *slog.Logger) *Repo {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repo{conn: conn, logger: logger}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}
