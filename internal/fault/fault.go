// Package fault defines the closed error taxonomy shared by every pipeline
// stage. Errors are tagged with a Kind so callers and the job fabric can make
// retry/surface decisions without string matching.
package fault

import (
	"errors"
	"fmt"
)

// Kind identifies one of the closed set of failure categories.
type Kind string

const (
	// BadInput marks invalid payloads: schema violations, insufficient
	// keypoints, duplicate (track_id, frame_id) pairs. Never retried.
	BadInput Kind = "bad_input"
	// NotFound marks a missing artifact or job.
	NotFound Kind = "not_found"
	// UpstreamUnavailable marks artifact store, broker or DB I/O failures.
	// Retried with exponential backoff up to the job's max retries.
	UpstreamUnavailable Kind = "upstream_unavailable"
	// ModelNotTrained marks classifier inference before training.
	ModelNotTrained Kind = "model_not_trained"
	// Timeout marks a job deadline exceeded. Terminal.
	Timeout Kind = "timeout"
	// Cancelled marks an explicit cancel. Terminal.
	Cancelled Kind = "cancelled"
	// Internal marks a broken invariant (negative duration, non-monotonic
	// frames after sort). Terminal; logged with the correlation id.
	Internal Kind = "internal"
)

// Error is a tagged error value. Message is safe to surface to callers;
// wrapped causes stay server-side.
type Error struct {
	ErrKind Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.ErrKind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.ErrKind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a tagged error with a formatted message.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{ErrKind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap tags an underlying error. A nil cause returns nil.
func Wrap(kind Kind, cause error, format string, args ...interface{}) error {
	if cause == nil {
		return nil
	}
	return &Error{ErrKind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf extracts the Kind from an error chain. Untagged errors map to
// Internal so nothing silently escapes the taxonomy.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.ErrKind
	}
	return Internal
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Retryable reports whether a failure of this kind may be retried by the job
// fabric. Only upstream I/O failures qualify; everything else is either a
// caller problem or terminal.
func Retryable(err error) bool {
	return KindOf(err) == UpstreamUnavailable
}

// Terminal reports whether the kind ends a job with no recovery path.
func Terminal(err error) bool {
	switch KindOf(err) {
	case Timeout, Cancelled, Internal:
		return true
	}
	return false
}
