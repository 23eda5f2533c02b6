// Package jobs is the pipeline orchestration fabric: typed job records,
// a compare-and-set job store, payload validation, and a dispatcher with
// bounded per-queue worker pools, retries, deadlines and chaining.
package jobs

import (
	"time"
)

// Kind is the closed set of pipeline stages.
type Kind string

const (
	KindIngestion           Kind = "ingestion"
	KindVideoProcessing     Kind = "video_processing"
	KindCalibration         Kind = "calibration"
	KindMetrics             Kind = "metrics"
	KindPhaseClassification Kind = "phase_classification"
	KindPatternDetection    Kind = "pattern_detection"
	KindAnalysis            Kind = "analysis"
	KindReport              Kind = "report"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindIngestion, KindVideoProcessing, KindCalibration, KindMetrics,
		KindPhaseClassification, KindPatternDetection, KindAnalysis, KindReport:
		return true
	}
	return false
}

// Queue names.
const (
	QueueDefault = "default"
	QueueGPU     = "gpu"
)

// QueueFor routes a kind to its dispatch queue. Video processing runs
// GPU-bound inference; everything else shares the default queue.
func QueueFor(k Kind) string {
	if k == KindVideoProcessing {
		return QueueGPU
	}
	return QueueDefault
}

// MaxRetries returns how many times transient failures of this kind are
// retried. Kinds not listed do not retry.
func MaxRetries(k Kind) int {
	switch k {
	case KindIngestion:
		return 3
	case KindVideoProcessing, KindCalibration:
		return 2
	}
	return 0
}

// Status is the job lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition may leave this status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Job is one unit of pipeline work. Records are value-copied in and out
// of the store; only the store mutates them.
type Job struct {
	JobID          string         `json:"job_id"`
	Kind           Kind           `json:"kind"`
	Queue          string         `json:"queue"`
	Status         Status         `json:"status"`
	IdempotencyKey string         `json:"idempotency_key"`
	CreatedAt      time.Time      `json:"created_at"`
	StartedAt      *time.Time     `json:"started_at,omitempty"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	Deadline       time.Time      `json:"deadline"`
	Progress       int            `json:"progress"`
	Attempts       int            `json:"attempts"`
	Payload        map[string]any `json:"payload,omitempty"`
	Result         map[string]any `json:"result,omitempty"`
	Error          string         `json:"error,omitempty"`
	ErrorKind      string         `json:"error_kind,omitempty"`
}
