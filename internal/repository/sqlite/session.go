package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/prepdeck/prepdeck/pkg/models"
)

// patchableSessionFields are the columns a shallow patch may touch. The user
// reference is set at creation and never changes.
var patchableSessionFields = map[string]string{
	"role":            "role",
	"experience":      "experience",
	"topics_to_focus": "topics_to_focus",
	"topicsToFocus":   "topics_to_focus",
	"description":     "description",
}

func (r *Repo) CreateSession(ctx context.Context, s *models.Session) (int64, error) {
	if s == nil {
		return 0, fmt.Errorf("session is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx,
		`INSERT INTO sessions (user_id, role, experience, topics_to_focus, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.UserID, s.Role, s.Experience, s.TopicsToFocus, s.Description, ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *Repo) GetSessionByID(ctx context.Context, id int64) (*models.Session, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, user_id, role, experience, topics_to_focus, description, created_at, updated_at FROM sessions WHERE id = ?`, id)
	var s models.Session
	if err := row.Scan(&s.ID, &s.UserID, &s.Role, &s.Experience, &s.TopicsToFocus, &s.Description, &s.Created, &s.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &s, nil
}

func (r *Repo) ListSessionsByUser(ctx context.Context, userID int64) ([]models.Session, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, user_id, role, experience, topics_to_focus, description, created_at, updated_at FROM sessions WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Session
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.Role, &s.Experience, &s.TopicsToFocus, &s.Description, &s.Created, &s.Updated); err != nil {
			return nil, err
		}

		out = append(out, s)
	}

	return out, rows.Err()
}

func (r *Repo) UpdateSession(ctx context.Context, id int64, patch map[string]any) (*models.Session, error) {
	sets := make([]string, 0, len(patch)+1)
	args := make([]any, 0, len(patch)+2)
	for k, v := range patch {
		col, ok := patchableSessionFields[k]
		if !ok {
			continue
		}
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, now(), id)

	res, err := r.conn.Exec(ctx, `UPDATE sessions SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}

	return r.GetSessionByID(ctx, id)
}

func (r *Repo) DeleteSession(ctx context.Context, id int64) error {
	if _, err := r.conn.Exec(ctx, `DELETE FROM session_questions WHERE session_id = ?`, id); err != nil {
		return err
	}
	_, err := r.conn.Exec(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (r *Repo) LinkQuestions(ctx context.Context, sessionID int64, questionIDs []int64) error {
	if len(questionIDs) == 0 {
		return nil
	}

	var next int
	row := r.conn.QueryRow(ctx, `SELECT COALESCE(MAX(position), 0) FROM session_questions WHERE session_id = ?`, sessionID)
	if err := row.Scan(&next); err != nil {
		return err
	}

	for _, qid := range questionIDs {
		next++
		if _, err := r.conn.Exec(ctx, `INSERT INTO session_questions (session_id, question_id, position) VALUES (?, ?, ?)`, sessionID, qid, next); err != nil {
			return err
		}
	}

	if _, err := r.conn.Exec(ctx, `UPDATE sessions SET updated_at = ? WHERE id = ?`, now(), sessionID); err != nil {
		return err
	}

	return nil
}
