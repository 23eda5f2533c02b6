// Package artifact provides the key-addressed blob store for derived
// pipeline outputs (columnar trajectories under tracking/, composed
// reports under reports/) and the in-process domain event bus.
package artifact

import "context"

// Namespace prefixes for store keys.
const (
	TrackingPrefix = "tracking/"
	ReportsPrefix  = "reports/"
	FeedsPrefix    = "feeds/"
)

// ObjectStat describes a stored object.
type ObjectStat struct {
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// Store is the blob store contract. Implementations must support
// concurrent readers; writers for the same key are serialized and the
// last write wins. Missing keys return a NotFound fault.
type Store interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	GetObject(ctx context.Context, key string) ([]byte, error)
	PutTable(ctx context.Context, key string, table *Table) error
	GetTable(ctx context.Context, key string) (*Table, error)
	Stat(ctx context.Context, key string) (ObjectStat, error)
	Remove(ctx context.Context, key string) error
}

// TrackingKey returns the canonical trajectory key for a match.
func TrackingKey(matchID string) string { return TrackingPrefix + matchID + ".ttb" }

// ReportKey returns the canonical report key for a match.
func ReportKey(matchID string) string { return ReportsPrefix + matchID + ".json" }

// FeedKey returns the canonical raw feed key for a match.
func FeedKey(matchID string) string { return FeedsPrefix + matchID + ".json" }
