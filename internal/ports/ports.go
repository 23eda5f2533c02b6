// Package ports declares the contracts for collaborators that live outside
// this process: the object detector and multi-object tracker feeding the
// stabilizer, the vector index backing semantic retrieval, the LLM analysis
// provider quoted in reports, and the document renderer. Implementations
// ship separately; everything here is interface surface only.
package ports

import (
	"context"

	"github.com/pitchlab/tactics.report/internal/track"
)

// Detection is one object found in a single video frame, in pixel space.
// The calibration homography maps it onto the pitch.
type Detection struct {
	FrameID    int              `json:"frame_id"`
	PixelX     float64          `json:"pixel_x"`
	PixelY     float64          `json:"pixel_y"`
	Kind       track.ObjectKind `json:"object_kind"`
	Confidence float64          `json:"confidence"`
	Timestamp  float64          `json:"timestamp"`
}

// Detector finds players, the ball and referees in decoded video frames.
type Detector interface {
	// DetectBatch runs inference over a contiguous frame range of the video
	// at path. Output is ordered by frame id.
	DetectBatch(ctx context.Context, videoPath string, firstFrame, lastFrame int) ([]Detection, error)
}

// Tracker assigns stable track ids across frames. Its output is raw
// tracker points; the stabilizer owns all cleanup after this.
type Tracker interface {
	Track(ctx context.Context, detections []Detection) ([]track.Point, error)
}

// Document is one retrievable text fragment tied to a match.
type Document struct {
	ID      string            `json:"id"`
	MatchID string            `json:"match_id"`
	Text    string            `json:"text"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// VectorIndex is the semantic retrieval store. Indexing is idempotent on
// document id.
type VectorIndex interface {
	Index(ctx context.Context, docs []Document) error
	// Query returns up to k documents most relevant to the query, best
	// first, scoped to one match.
	Query(ctx context.Context, matchID, query string, k int) ([]Document, error)
}

// AnalysisRequest carries everything the analysis provider needs to write
// a tactical narrative: the question plus retrieved context documents.
type AnalysisRequest struct {
	MatchID string     `json:"match_id"`
	TeamID  string     `json:"team_id"`
	Query   string     `json:"query"`
	Context []Document `json:"context,omitempty"`
}

// AnalysisProvider produces the AI Tactical Analysis text for a report.
type AnalysisProvider interface {
	Analyze(ctx context.Context, req AnalysisRequest) (string, error)
}

// Renderer turns an exported report JSON document into a presentation
// format. Formats beyond "json" (pdf, html) are renderer-defined.
type Renderer interface {
	Render(ctx context.Context, reportJSON []byte, format string) ([]byte, error)
}
