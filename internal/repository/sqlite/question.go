package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prepdeck/prepdeck/pkg/models"
	"github.com/prepdeck/prepdeck/pkg/repository"
)

func (r *Repo) CreateQuestion(ctx context.Context, q *models.Question) (int64, error) {
	if q == nil {
		return 0, fmt.Errorf("question is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx,
		`INSERT INTO questions (session_id, question, answer, is_pinned, note, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		q.SessionID, q.Question, q.Answer, boolToInt(q.IsPinned), q.Note, ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *Repo) GetQuestionByID(ctx context.Context, id int64) (*models.Question, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, session_id, question, answer, is_pinned, note, created_at, updated_at FROM questions WHERE id = ?`, id)
	var q models.Question
	var pinned int
	if err := row.Scan(&q.ID, &q.SessionID, &q.Question, &q.Answer, &pinned, &q.Note, &q.Created, &q.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	q.IsPinned = pinned != 0
	return &q, nil
}

func (r *Repo) ListBySession(ctx context.Context, sessionID int64, order repository.QuestionOrder) ([]models.Question, error) {
	orderBy := `created_at ASC, id ASC`
	if order == repository.OrderPinnedFirst {
		orderBy = `is_pinned DESC, created_at ASC, id ASC`
	}

	rows, err := r.conn.QueryRows(ctx, `SELECT id, session_id, question, answer, is_pinned, note, created_at, updated_at FROM questions WHERE session_id = ? ORDER BY `+orderBy, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Question
	for rows.Next() {
		var q models.Question
		var pinned int
		if err := rows.Scan(&q.ID, &q.SessionID, &q.Question, &q.Answer, &pinned, &q.Note, &q.Created, &q.Updated); err != nil {
			return nil, err
		}

		q.IsPinned = pinned != 0
		out = append(out, q)
	}

	return out, rows.Err()
}

func (r *Repo) UpdateQuestion(ctx context.Context, q *models.Question) error {
	if q == nil {
		return fmt.Errorf("question is nil")
	}

	_, err := r.conn.Exec(ctx,
		`UPDATE questions SET answer = ?, is_pinned = ?, note = ?, updated_at = ? WHERE id = ?`,
		q.Answer, boolToInt(q.IsPinned), q.Note, now(), q.ID)
	return err
}

func (r *Repo) DeleteBySession(ctx context.Context, sessionID int64) (int64, error) {
	res, err := r.conn.Exec(ctx, `DELETE FROM questions WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteOrphans removes question rows whose owning session is gone or whose
// link row is missing. Compensates for the non-transactional create-then-link
// window documented in the session manager.
func (r *Repo) DeleteOrphans(ctx context.Context) (int64, error) {
	res, err := r.conn.Exec(ctx,
		`DELETE FROM questions WHERE session_id NOT IN (SELECT id FROM sessions) OR id NOT IN (SELECT question_id FROM session_questions)`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
