package storage

import (
	"database/sql"
	"fmt"
	"math"
	"time"
)

const jobColumns = `id, type, payload_json, status, attempts, max_attempts, run_after, created_at, updated_at, last_error`

// ScheduleJob upserts a job under its fixed id. An active job (pending, or
// running and updated at or after staleBefore) keeps its schedule; only its
// type, payload and attempt budget are refreshed. A finished or stale job is
// reset to pending at job.RunAfter. Returns the stored job and whether a new
// run was scheduled.
func (s *Store) ScheduleJob(job Job, staleBefore time.Time) (Job, bool, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	runAfter := now
	if !job.RunAfter.IsZero() {
		runAfter = job.RunAfter.UTC().Format(time.RFC3339)
	}
	maxAttempts := job.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 3
	}
	payload := job.PayloadJSON
	if payload == "" {
		payload = "{}"
	}

	var scheduled bool
	err := s.withTx(func(tx *sql.Tx) error {
		existing, err := scanJob(tx.QueryRow(`SELECT `+jobColumns+` FROM jobs WHERE id = ?`, job.ID))
		if err == ErrNotFound {
			scheduled = true
			_, err = tx.Exec(`
				INSERT INTO jobs (id, type, payload_json, status, attempts, max_attempts, run_after, created_at, updated_at)
				VALUES (?, ?, ?, 'pending', 0, ?, ?, ?, ?)`,
				job.ID, job.Type, payload, maxAttempts, runAfter, now, now)
			return err
		}
		if err != nil {
			return fmt.Errorf("loading job %s: %w", job.ID, err)
		}

		active := existing.Status == JobPending ||
			(existing.Status == JobRunning && !existing.UpdatedAt.Before(staleBefore.UTC().Truncate(time.Second)))
		if active {
			_, err = tx.Exec(`UPDATE jobs SET type = ?, payload_json = ?, max_attempts = ? WHERE id = ?`,
				job.Type, payload, maxAttempts, job.ID)
			return err
		}

		scheduled = true
		_, err = tx.Exec(`UPDATE jobs SET type = ?, payload_json = ?, status = 'pending', attempts = 0, max_attempts = ?, run_after = ?, updated_at = ? WHERE id = ?`,
			job.Type, payload, maxAttempts, runAfter, now, job.ID)
		return err
	})
	if err != nil {
		return Job{}, false, err
	}

	stored, err := s.GetJob(job.ID)
	if err != nil {
		return Job{}, false, err
	}
	return stored, scheduled, nil
}

// GetJob returns the job with the given id, or ErrNotFound.
func (s *Store) GetJob(id string) (Job, error) {
	return scanJob(s.db.QueryRow(`SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id))
}

func (s *Store) ClaimNextJob(types []string) (*Job, error) {
	if len(types) == 0 {
		return nil, nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	query := `SELECT ` + jobColumns + `
		FROM jobs
		WHERE status = 'pending' AND run_after <= ? AND type IN (` + placeholders(len(types)) + `)
		ORDER BY run_after ASC, created_at ASC
		LIMIT 1`

	args := make([]any, 0, len(types)+1)
	args = append(args, now)
	for _, t := range types {
		args = append(args, t)
	}

	var claimed *Job
	err := s.withTx(func(tx *sql.Tx) error {
		j, err := scanJob(tx.QueryRow(query, args...))
		if err == ErrNotFound {
			return nil
		}
		if err != nil {
			return fmt.Errorf("selecting next job: %w", err)
		}

		res, err := tx.Exec(`UPDATE jobs SET status = 'running', updated_at = ? WHERE id = ? AND status = 'pending'`, now, j.ID)
		if err != nil {
			return fmt.Errorf("updating job status: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking updated job rows: %w", err)
		}
		if n != 1 {
			return nil
		}

		j.Status = JobRunning
		if j.UpdatedAt, err = time.Parse(time.RFC3339, now); err != nil {
			return fmt.Errorf("parsing updated_at for job %s: %w", j.ID, err)
		}
		claimed = &j
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (s *Store) CompleteJob(id string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`UPDATE jobs SET status = 'completed', last_error = NULL, updated_at = ? WHERE id = ?`, now, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// FailJob records a failed attempt. While attempts remain the job goes back
// to pending with exponential backoff; otherwise it is marked failed.
func (s *Store) FailJob(id string, errMsg string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning fail transaction: %w", err)
	}
	defer tx.Rollback()

	var attempts, maxAttempts int
	err = tx.QueryRow(`SELECT attempts, max_attempts FROM jobs WHERE id = ?`, id).Scan(&attempts, &maxAttempts)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	attempts++

	if attempts >= maxAttempts {
		_, err = tx.Exec(`UPDATE jobs SET status = 'failed', attempts = ?, last_error = ?, updated_at = ? WHERE id = ?`,
			attempts, errMsg, now.Format(time.RFC3339), id)
	} else {
		backoff := time.Duration(math.Pow(2, float64(attempts))) * time.Second
		runAfter := now.Add(backoff)
		_, err = tx.Exec(`UPDATE jobs SET status = 'pending', attempts = ?, last_error = ?, run_after = ?, updated_at = ? WHERE id = ?`,
			attempts, errMsg, runAfter.Format(time.RFC3339), now.Format(time.RFC3339), id)
	}

	if err != nil {
		return err
	}

	return tx.Commit()
}

// MarkJobFailed ends the job's current run as failed without further retries.
func (s *Store) MarkJobFailed(id string, errMsg string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`UPDATE jobs SET status = 'failed', last_error = ?, updated_at = ? WHERE id = ?`, errMsg, now, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (Job, error) {
	var j Job
	var runAfter, createdAt, updatedAt string
	var lastError sql.NullString
	err := row.Scan(&j.ID, &j.Type, &j.PayloadJSON, &j.Status, &j.Attempts, &j.MaxAttempts,
		&runAfter, &createdAt, &updatedAt, &lastError)
	if err == sql.ErrNoRows {
		return Job{}, ErrNotFound
	}
	if err != nil {
		return Job{}, err
	}
	j.LastError = lastError.String
	if j.RunAfter, err = time.Parse(time.RFC3339, runAfter); err != nil {
		return Job{}, fmt.Errorf("parsing run_after for job %s: %w", j.ID, err)
	}
	if j.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return Job{}, fmt.Errorf("parsing created_at for job %s: %w", j.ID, err)
	}
	if j.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return Job{}, fmt.Errorf("parsing updated_at for job %s: %w", j.ID, err)
	}
	return j, nil
}
