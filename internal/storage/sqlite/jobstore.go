package sqlite

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/jobs"
)

// JobStore is the durable jobs.Store implementation. Every transition is a
// conditional UPDATE whose WHERE clause carries the expected source state,
// so concurrent writers cannot skip the state machine.
type JobStore struct {
	db *DB
}

// NewJobStore wraps the database handle.
func NewJobStore(db *DB) *JobStore { return &JobStore{db: db} }

var _ jobs.Store = (*JobStore)(nil)

const timeFormat = time.RFC3339Nano

// Create implements jobs.Store.
func (s *JobStore) Create(job jobs.Job) error {
	payload, err := json.Marshal(job.Payload)
	if err != nil {
		return fault.Wrap(fault.BadInput, err, "job %s payload", job.JobID)
	}
	_, err = s.db.Exec(`
		INSERT INTO jobs (job_id, kind, queue, status, idempotency_key, created_at, deadline, progress, attempts, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.JobID, string(job.Kind), job.Queue, string(job.Status), job.IdempotencyKey,
		job.CreatedAt.UTC().Format(timeFormat), job.Deadline.UTC().Format(timeFormat),
		job.Progress, job.Attempts, string(payload))
	if err != nil {
		return fault.Wrap(fault.UpstreamUnavailable, err, "create job %s", job.JobID)
	}
	return nil
}

// Get implements jobs.Store.
func (s *JobStore) Get(jobID string) (jobs.Job, error) {
	return s.scanJob(s.db.QueryRow(`
		SELECT job_id, kind, queue, status, idempotency_key, created_at, started_at, completed_at,
		       deadline, progress, attempts, payload, result, COALESCE(error, ''), COALESCE(error_kind, '')
		FROM jobs WHERE job_id = ?`, jobID), jobID)
}

// FindByIdempotency implements jobs.Store.
func (s *JobStore) FindByIdempotency(kind jobs.Kind, key string) (jobs.Job, bool) {
	job, err := s.scanJob(s.db.QueryRow(`
		SELECT job_id, kind, queue, status, idempotency_key, created_at, started_at, completed_at,
		       deadline, progress, attempts, payload, result, COALESCE(error, ''), COALESCE(error_kind, '')
		FROM jobs
		WHERE kind = ? AND idempotency_key = ? AND status IN ('pending', 'running', 'completed')
		ORDER BY created_at DESC LIMIT 1`, string(kind), key), "")
	if err != nil {
		return jobs.Job{}, false
	}
	return job, true
}

// Start implements jobs.Store.
func (s *JobStore) Start(jobID string) (jobs.Job, error) {
	now := time.Now().UTC().Format(timeFormat)
	res, err := s.db.Exec(`
		UPDATE jobs SET status = 'running', started_at = ?, attempts = 1
		WHERE job_id = ? AND status = 'pending'`, now, jobID)
	return s.afterCAS(jobID, res, err, "start", fault.Internal)
}

// SetProgress implements jobs.Store.
func (s *JobStore) SetProgress(jobID string, pct int) error {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	res, err := s.db.Exec(`
		UPDATE jobs SET progress = ? WHERE job_id = ? AND status = 'running'`, pct, jobID)
	_, err = s.afterCAS(jobID, res, err, "progress", fault.Internal)
	return err
}

// RecordRetry implements jobs.Store.
func (s *JobStore) RecordRetry(jobID string) (jobs.Job, error) {
	res, err := s.db.Exec(`
		UPDATE jobs SET attempts = attempts + 1 WHERE job_id = ? AND status = 'running'`, jobID)
	return s.afterCAS(jobID, res, err, "retry", fault.Internal)
}

// Complete implements jobs.Store.
func (s *JobStore) Complete(jobID string, result map[string]any) (jobs.Job, error) {
	if result == nil {
		return jobs.Job{}, fault.New(fault.BadInput, "job %s completion requires a result", jobID)
	}
	data, err := json.Marshal(result)
	if err != nil {
		return jobs.Job{}, fault.Wrap(fault.BadInput, err, "job %s result", jobID)
	}
	now := time.Now().UTC().Format(timeFormat)
	res, err := s.db.Exec(`
		UPDATE jobs SET status = 'completed', completed_at = ?, progress = 100, result = ?
		WHERE job_id = ? AND status = 'running'`, now, string(data), jobID)
	return s.afterCAS(jobID, res, err, "complete", fault.Internal)
}

// Fail implements jobs.Store.
func (s *JobStore) Fail(jobID string, errKind, message string) (jobs.Job, error) {
	if message == "" {
		return jobs.Job{}, fault.New(fault.BadInput, "job %s failure requires an error message", jobID)
	}
	now := time.Now().UTC().Format(timeFormat)
	res, err := s.db.Exec(`
		UPDATE jobs SET status = 'failed', completed_at = ?, error = ?, error_kind = ?
		WHERE job_id = ? AND status IN ('pending', 'running')`, now, message, errKind, jobID)
	return s.afterCAS(jobID, res, err, "fail", fault.Internal)
}

// Cancel implements jobs.Store.
func (s *JobStore) Cancel(jobID string) (jobs.Job, error) {
	now := time.Now().UTC().Format(timeFormat)
	res, err := s.db.Exec(`
		UPDATE jobs SET status = 'cancelled', completed_at = ?, error_kind = ?
		WHERE job_id = ? AND status IN ('pending', 'running')`, now, string(fault.Cancelled), jobID)
	// Cancelling a terminal job is a caller mistake, not corruption.
	return s.afterCAS(jobID, res, err, "cancel", fault.BadInput)
}

// afterCAS converts a conditional UPDATE outcome into the state-machine
// error contract: zero rows means the expected source state did not hold.
func (s *JobStore) afterCAS(jobID string, res sql.Result, err error, op string, zeroKind fault.Kind) (jobs.Job, error) {
	if err != nil {
		return jobs.Job{}, fault.Wrap(fault.UpstreamUnavailable, err, "%s job %s", op, jobID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return jobs.Job{}, fault.Wrap(fault.UpstreamUnavailable, err, "%s job %s", op, jobID)
	}
	job, gerr := s.Get(jobID)
	if gerr != nil {
		return jobs.Job{}, gerr
	}
	if n == 0 {
		return jobs.Job{}, fault.New(zeroKind, "job %s cannot %s from %s", jobID, op, job.Status)
	}
	return job, nil
}

func (s *JobStore) scanJob(row *sql.Row, jobID string) (jobs.Job, error) {
	var (
		job                     jobs.Job
		kind, status            string
		createdAt, deadline     string
		startedAt, completedAt  sql.NullString
		payloadJSON, resultJSON sql.NullString
	)
	err := row.Scan(&job.JobID, &kind, &job.Queue, &status, &job.IdempotencyKey,
		&createdAt, &startedAt, &completedAt, &deadline,
		&job.Progress, &job.Attempts, &payloadJSON, &resultJSON, &job.Error, &job.ErrorKind)
	if err == sql.ErrNoRows {
		return jobs.Job{}, fault.New(fault.NotFound, "job %s", jobID)
	}
	if err != nil {
		return jobs.Job{}, fault.Wrap(fault.UpstreamUnavailable, err, "load job %s", jobID)
	}

	job.Kind = jobs.Kind(kind)
	job.Status = jobs.Status(status)
	job.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	job.Deadline, _ = time.Parse(timeFormat, deadline)
	if startedAt.Valid {
		if t, perr := time.Parse(timeFormat, startedAt.String); perr == nil {
			job.StartedAt = &t
		}
	}
	if completedAt.Valid {
		if t, perr := time.Parse(timeFormat, completedAt.String); perr == nil {
			job.CompletedAt = &t
		}
	}
	if payloadJSON.Valid && payloadJSON.String != "" && payloadJSON.String != "null" {
		if uerr := json.Unmarshal([]byte(payloadJSON.String), &job.Payload); uerr != nil {
			return jobs.Job{}, fault.Wrap(fault.Internal, uerr, "job %s payload", job.JobID)
		}
	}
	if resultJSON.Valid && resultJSON.String != "" && resultJSON.String != "null" {
		if uerr := json.Unmarshal([]byte(resultJSON.String), &job.Result); uerr != nil {
			return jobs.Job{}, fault.Wrap(fault.Internal, uerr, "job %s result", job.JobID)
		}
	}
	return job, nil
}
