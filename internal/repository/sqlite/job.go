package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prepdeck/prepdeck/pkg/models"
)

func (r *Repo) EnqueueJob(ctx context.Context, j *models.Job) (int64, error) {
	if j == nil {
		return 0, fmt.Errorf("job is nil")
	}

	payload := string(j.Payload)
	if payload == "" {
		payload = "{}"
	}
	maxAttempts := j.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	ts := now()
	res, err := r.conn.Exec(ctx,
		`INSERT INTO jobs (type, payload, status, attempts, max_attempts, last_error, created_at, updated_at) VALUES (?, ?, 'pending', 0, ?, '', ?, ?)`,
		j.Type, payload, maxAttempts, ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *Repo) GetJobByID(ctx context.Context, id int64) (*models.Job, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, type, payload, status, attempts, max_attempts, last_error, created_at, updated_at FROM jobs WHERE id = ?`, id)
	return scanJob(row)
}

// FetchNextJob claims the oldest pending job. Returns nil when the queue is
// empty or another worker claimed the row first.
func (r *Repo) FetchNextJob(ctx context.Context) (*models.Job, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, type, payload, status, attempts, max_attempts, last_error, created_at, updated_at FROM jobs WHERE status = 'pending' ORDER BY created_at ASC, id ASC LIMIT 1`)
	j, err := scanJob(row)
	if err != nil || j == nil {
		return nil, err
	}

	res, err := r.conn.Exec(ctx, `UPDATE jobs SET status = 'running', attempts = attempts + 1, updated_at = ? WHERE id = ? AND status = 'pending'`, now(), j.ID)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		// lost the claim race
		return nil, err
	}

	j.Status = "running"
	j.Attempts++
	return j, nil
}

func (r *Repo) UpdateJob(ctx context.Context, j *models.Job) error {
	if j == nil {
		return fmt.Errorf("job is nil")
	}

	payload := string(j.Payload)
	if payload == "" {
		payload = "{}"
	}

	_, err := r.conn.Exec(ctx,
		`UPDATE jobs SET payload = ?, status = ?, attempts = ?, last_error = ?, updated_at = ? WHERE id = ?`,
		payload, j.Status, j.Attempts, j.LastError, now(), j.ID)
	return err
}

func scanJob(row *sql.Row) (*models.Job, error) {
	var j models.Job
	var payload string
	if err := row.Scan(&j.ID, &j.Type, &payload, &j.Status, &j.Attempts, &j.MaxAttempts, &j.LastError, &j.Created, &j.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	j.Payload = []byte(payload)
	return &j, nil
}
