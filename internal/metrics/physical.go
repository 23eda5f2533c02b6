// Package metrics implements the analytical engines over stabilized
// trajectories and canonical events: per-player physical output, the
// frame-level pitch-control model, and event-based tactical metrics
// (PPDA, pressing, Expected Threat).
package metrics

import (
	"math"
	"sync"

	"github.com/pitchlab/tactics.report/internal/track"
	"github.com/pitchlab/tactics.report/internal/units"
)

// SprintSegment is one maximal run of frames above the sprint threshold.
type SprintSegment struct {
	StartFrame  int     `json:"start_frame"`
	EndFrame    int     `json:"end_frame"`
	MaxSpeedKmh float64 `json:"max_speed_kmh"`
	DistanceM   float64 `json:"distance_m"`
}

// PhysicalMetrics is the per-player physical output for one trajectory.
// Speeds are km/h, distance km. Values are kept at full precision; rounding
// to the reported decimals happens in ToDict.
type PhysicalMetrics struct {
	TrackID         int             `json:"track_id"`
	TotalDistanceKm float64         `json:"total_distance_km"`
	MaxSpeedKmh     float64         `json:"max_speed_kmh"`
	AvgSpeedKmh     float64         `json:"avg_speed_kmh"`
	SprintCount     int             `json:"sprint_count"`
	Sprints         []SprintSegment `json:"sprints,omitempty"`
}

// ToDict is the serialization surface: km/h to 1 decimal, km to 2 decimals.
func (m *PhysicalMetrics) ToDict() map[string]interface{} {
	return map[string]interface{}{
		"track_id":          m.TrackID,
		"total_distance_km": round2(m.TotalDistanceKm),
		"max_speed_kmh":     round1(m.MaxSpeedKmh),
		"avg_speed_kmh":     round1(m.AvgSpeedKmh),
		"sprint_count":      m.SprintCount,
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }

// PhysicalEngine computes physical metrics from trajectories, memoizing per
// track id. Invalidate the cache explicitly when thresholds change.
type PhysicalEngine struct {
	mu    sync.Mutex
	cache map[int]*PhysicalMetrics
}

// NewPhysicalEngine creates an engine with an empty cache.
func NewPhysicalEngine() *PhysicalEngine {
	return &PhysicalEngine{cache: make(map[int]*PhysicalMetrics)}
}

// InvalidateCache drops the memoized metrics for one track.
func (e *PhysicalEngine) InvalidateCache(trackID int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.cache, trackID)
}

// InvalidateAll drops every memoized entry.
func (e *PhysicalEngine) InvalidateAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[int]*PhysicalMetrics)
}

// Compute returns the physical metrics for a trajectory, from cache when
// available.
func (e *PhysicalEngine) Compute(traj *track.PlayerTrajectory) *PhysicalMetrics {
	e.mu.Lock()
	if m, ok := e.cache[traj.TrackID]; ok {
		e.mu.Unlock()
		return m
	}
	e.mu.Unlock()

	m := computePhysical(traj)

	e.mu.Lock()
	e.cache[traj.TrackID] = m
	e.mu.Unlock()
	return m
}

func computePhysical(traj *track.PlayerTrajectory) *PhysicalMetrics {
	m := &PhysicalMetrics{TrackID: traj.TrackID}
	v := traj.Velocities() // smoothed, m/s
	pts := traj.Points()
	if len(v) == 0 {
		return m
	}

	// Distance integrates the per-interval speeds; the first sample has no
	// preceding displacement.
	totalM := 0.0
	maxMps := 0.0
	sumMps := 0.0
	for i, speed := range v {
		if i > 0 {
			totalM += speed / traj.FPS
		}
		if speed > maxMps {
			maxMps = speed
		}
		sumMps += speed
	}
	m.TotalDistanceKm = totalM / 1000
	m.MaxSpeedKmh = units.MpsToKmh(maxMps)
	m.AvgSpeedKmh = units.MpsToKmh(sumMps / float64(len(v)))

	// Sprint segmentation over the smoothed km/h series. A run still open
	// at the final frame counts as a sprint.
	threshold := traj.SprintThresholdKmh
	var cur *SprintSegment
	for i, speed := range v {
		kmh := units.MpsToKmh(speed)
		if kmh > threshold {
			if cur == nil {
				cur = &SprintSegment{StartFrame: pts[i].FrameID, MaxSpeedKmh: kmh}
			}
			cur.EndFrame = pts[i].FrameID
			if kmh > cur.MaxSpeedKmh {
				cur.MaxSpeedKmh = kmh
			}
			cur.DistanceM += speed / traj.FPS
		} else if cur != nil {
			m.Sprints = append(m.Sprints, *cur)
			cur = nil
		}
	}
	if cur != nil {
		m.Sprints = append(m.Sprints, *cur)
	}
	m.SprintCount = len(m.Sprints)

	tracef("track %d: %.3f km, max %.1f km/h, %d sprints", traj.TrackID, m.TotalDistanceKm, m.MaxSpeedKmh, m.SprintCount)
	return m
}
