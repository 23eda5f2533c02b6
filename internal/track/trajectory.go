package track

import (
	"math"
	"sort"

	"github.com/pitchlab/tactics.report/internal/fault"
)

// velocitySmoothingWindow is the Savitzky–Golay window used for the cached
// velocity series. Narrower than the position window: velocity is already a
// derivative of smoothed positions.
const velocitySmoothingWindow = 5

// PlayerTrajectory is the ordered per-frame position history of one track,
// with the playback rate and sprint threshold it will be analyzed under.
// The smoothed velocity series is memoized; InvalidateCaches drops it after
// a configuration change.
type PlayerTrajectory struct {
	TrackID            int
	TeamID             string
	Kind               ObjectKind
	FPS                float64
	SprintThresholdKmh float64

	points     []Point
	velocities []float64 // cached smoothed speeds, m/s, len == len(points)
}

// NewPlayerTrajectory creates an empty trajectory.
func NewPlayerTrajectory(trackID int, fps, sprintThresholdKmh float64) *PlayerTrajectory {
	return &PlayerTrajectory{
		TrackID:            trackID,
		FPS:                fps,
		SprintThresholdKmh: sprintThresholdKmh,
	}
}

// Append adds a point. Frames must be strictly increasing; duplicates and
// out-of-order frames are rejected with BadInput.
func (t *PlayerTrajectory) Append(p Point) error {
	if n := len(t.points); n > 0 {
		last := t.points[n-1].FrameID
		if p.FrameID == last {
			return fault.New(fault.BadInput, "duplicate frame %d on track %d", p.FrameID, t.TrackID)
		}
		if p.FrameID < last {
			return fault.New(fault.BadInput, "out-of-order frame %d after %d on track %d", p.FrameID, last, t.TrackID)
		}
	}
	if t.TeamID == "" && p.TeamID != "" {
		t.TeamID = p.TeamID
	}
	if t.Kind == "" && p.Kind != "" {
		t.Kind = p.Kind
	}
	t.points = append(t.points, p)
	t.velocities = nil
	return nil
}

// Points returns the ordered frame positions. Callers must not mutate the
// returned slice.
func (t *PlayerTrajectory) Points() []Point { return t.points }

// Len returns the number of frames.
func (t *PlayerTrajectory) Len() int { return len(t.points) }

// InvalidateCaches drops memoized derived values. Call after changing FPS or
// the sprint threshold.
func (t *PlayerTrajectory) InvalidateCaches() { t.velocities = nil }

// Velocities returns the smoothed per-frame speed series in m/s. The first
// frame repeats the second frame's speed so the series aligns with Points.
// The result is memoized.
func (t *PlayerTrajectory) Velocities() []float64 {
	if t.velocities != nil {
		return t.velocities
	}
	n := len(t.points)
	if n == 0 {
		return nil
	}
	raw := make([]float64, n)
	for i := 1; i < n; i++ {
		df := float64(t.points[i].FrameID - t.points[i-1].FrameID)
		dt := df / t.FPS
		if dt < 1e-6 {
			dt = 1e-6
		}
		raw[i] = math.Hypot(t.points[i].X-t.points[i-1].X, t.points[i].Y-t.points[i-1].Y) / dt
	}
	if n > 1 {
		raw[0] = raw[1]
	}

	sg, err := NewSavGol(velocitySmoothingWindow, 2)
	if err == nil {
		raw = sg.Smooth(raw)
	}
	// Smoothing can ring slightly negative near sharp stops; speed is a
	// magnitude.
	for i, v := range raw {
		if v < 0 {
			raw[i] = 0
		}
	}
	t.velocities = raw
	return t.velocities
}

// Duration returns the covered time span in seconds, including the final
// frame's own 1/fps slot.
func (t *PlayerTrajectory) Duration() float64 {
	if len(t.points) == 0 || t.FPS <= 0 {
		return 0
	}
	first := t.points[0].FrameID
	last := t.points[len(t.points)-1].FrameID
	return float64(last-first)/t.FPS + 1/t.FPS
}

// Build groups stabilized points into per-track trajectories. Points are
// assumed stabilizer output: grouped ordering is not required, but duplicate
// frames within a track are rejected.
func Build(points []Point, fps, sprintThresholdKmh float64) (map[int]*PlayerTrajectory, error) {
	byTrack := make(map[int][]Point)
	for _, p := range points {
		byTrack[p.TrackID] = append(byTrack[p.TrackID], p)
	}
	out := make(map[int]*PlayerTrajectory, len(byTrack))
	for id, pts := range byTrack {
		sort.Slice(pts, func(i, j int) bool { return pts[i].FrameID < pts[j].FrameID })
		traj := NewPlayerTrajectory(id, fps, sprintThresholdKmh)
		for _, p := range pts {
			if err := traj.Append(p); err != nil {
				return nil, err
			}
		}
		out[id] = traj
	}
	return out, nil
}
