package jobs

import (
	"sync"
	"time"

	"github.com/pitchlab/tactics.report/internal/fault"
)

// Store is the transactional job record store. Every transition is a
// compare-and-set against the current status; concurrent writers for the
// same job serialize inside the store.
type Store interface {
	Create(job Job) error
	Get(jobID string) (Job, error)
	// FindByIdempotency returns the newest non-failed job for the key, so
	// dispatchers can return existing work instead of enqueueing twice.
	FindByIdempotency(kind Kind, key string) (Job, bool)
	Start(jobID string) (Job, error)
	SetProgress(jobID string, pct int) error
	RecordRetry(jobID string) (Job, error)
	Complete(jobID string, result map[string]any) (Job, error)
	Fail(jobID string, errKind, message string) (Job, error)
	Cancel(jobID string) (Job, error)
}

// MemoryStore is the in-process Store implementation.
type MemoryStore struct {
	mu   sync.Mutex
	jobs map[string]Job
	// byKey maps kind|idempotency_key to job ids in creation order.
	byKey map[string][]string
}

// NewMemoryStore creates an empty job store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: map[string]Job{}, byKey: map[string][]string{}}
}

func idemIndex(kind Kind, key string) string { return string(kind) + "|" + key }

// Create implements Store.
func (s *MemoryStore) Create(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.JobID]; ok {
		return fault.New(fault.BadInput, "job %s already exists", job.JobID)
	}
	s.jobs[job.JobID] = job
	if job.IdempotencyKey != "" {
		idx := idemIndex(job.Kind, job.IdempotencyKey)
		s.byKey[idx] = append(s.byKey[idx], job.JobID)
	}
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(jobID string) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return Job{}, fault.New(fault.NotFound, "job %s", jobID)
	}
	return job, nil
}

// FindByIdempotency implements Store. Failed and cancelled jobs do not
// block re-dispatch.
func (s *MemoryStore) FindByIdempotency(kind Kind, key string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.byKey[idemIndex(kind, key)]
	for i := len(ids) - 1; i >= 0; i-- {
		job := s.jobs[ids[i]]
		switch job.Status {
		case StatusPending, StatusRunning, StatusCompleted:
			return job, true
		}
	}
	return Job{}, false
}

// Start implements Store: pending to running, allowed once.
func (s *MemoryStore) Start(jobID string) (Job, error) {
	return s.cas(jobID, func(job *Job) error {
		if job.Status != StatusPending {
			return fault.New(fault.Internal, "job %s cannot start from %s", jobID, job.Status)
		}
		now := time.Now().UTC()
		job.Status = StatusRunning
		job.StartedAt = &now
		job.Attempts = 1
		return nil
	})
}

// SetProgress implements Store. Progress clamps to [0,100] and only moves
// on running jobs.
func (s *MemoryStore) SetProgress(jobID string, pct int) error {
	_, err := s.cas(jobID, func(job *Job) error {
		if job.Status != StatusRunning {
			return fault.New(fault.Internal, "job %s cannot progress from %s", jobID, job.Status)
		}
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		job.Progress = pct
		return nil
	})
	return err
}

// RecordRetry implements Store.
func (s *MemoryStore) RecordRetry(jobID string) (Job, error) {
	return s.cas(jobID, func(job *Job) error {
		if job.Status != StatusRunning {
			return fault.New(fault.Internal, "job %s cannot retry from %s", jobID, job.Status)
		}
		job.Attempts++
		return nil
	})
}

// Complete implements Store: running to completed, result required.
func (s *MemoryStore) Complete(jobID string, result map[string]any) (Job, error) {
	return s.cas(jobID, func(job *Job) error {
		if job.Status != StatusRunning {
			return fault.New(fault.Internal, "job %s cannot complete from %s", jobID, job.Status)
		}
		if result == nil {
			return fault.New(fault.BadInput, "job %s completion requires a result", jobID)
		}
		now := time.Now().UTC()
		job.Status = StatusCompleted
		job.CompletedAt = &now
		job.Progress = 100
		job.Result = result
		return nil
	})
}

// Fail implements Store. Terminal jobs cannot fail; error text is
// required.
func (s *MemoryStore) Fail(jobID string, errKind, message string) (Job, error) {
	return s.cas(jobID, func(job *Job) error {
		if job.Status.Terminal() {
			return fault.New(fault.Internal, "job %s cannot fail from %s", jobID, job.Status)
		}
		if message == "" {
			return fault.New(fault.BadInput, "job %s failure requires an error message", jobID)
		}
		now := time.Now().UTC()
		job.Status = StatusFailed
		job.CompletedAt = &now
		job.Error = message
		job.ErrorKind = errKind
		return nil
	})
}

// Cancel implements Store: pending or running to cancelled.
func (s *MemoryStore) Cancel(jobID string) (Job, error) {
	return s.cas(jobID, func(job *Job) error {
		if job.Status.Terminal() {
			return fault.New(fault.BadInput, "job %s cannot cancel from %s", jobID, job.Status)
		}
		now := time.Now().UTC()
		job.Status = StatusCancelled
		job.CompletedAt = &now
		job.ErrorKind = string(fault.Cancelled)
		return nil
	})
}

func (s *MemoryStore) cas(jobID string, mutate func(*Job) error) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return Job{}, fault.New(fault.NotFound, "job %s", jobID)
	}
	if err := mutate(&job); err != nil {
		return Job{}, err
	}
	s.jobs[jobID] = job
	return job, nil
}
