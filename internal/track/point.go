// Package track turns raw tracker detections into stable, smoothed player
// and ball trajectories. The stabilizer pipeline runs smoothing, fragment
// cleanup/merging and outlier-speed handling in that order; its output is
// treated as immutable by downstream metric engines.
package track

import (
	"github.com/pitchlab/tactics.report/internal/pitch"
)

// ObjectKind is the closed set of tracked object categories.
type ObjectKind string

const (
	KindPlayer     ObjectKind = "player"
	KindBall       ObjectKind = "ball"
	KindReferee    ObjectKind = "referee"
	KindGoalkeeper ObjectKind = "goalkeeper"
)

// IsBall reports whether the kind is the ball.
func (k ObjectKind) IsBall() bool { return k == KindBall }

// Point is a single detection in canonical pitch meters. Immutable once the
// stabilizer has emitted it.
type Point struct {
	FrameID    int        `json:"frame_id"`
	TrackID    int        `json:"track_id"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Kind       ObjectKind `json:"object_kind"`
	TeamID     string     `json:"team,omitempty"`
	Confidence float64    `json:"confidence,omitempty"`
	Timestamp  float64    `json:"timestamp"` // seconds from kickoff

	// SpeedFlagged marks frames whose instantaneous speed exceeded the
	// configured maximum while the stabilizer runs in flag mode.
	SpeedFlagged bool `json:"speed_flagged,omitempty"`
}

// Pos returns the point's pitch position.
func (p Point) Pos() pitch.Point { return pitch.Point{X: p.X, Y: p.Y} }
