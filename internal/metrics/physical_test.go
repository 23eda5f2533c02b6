package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchlab/tactics.report/internal/track"
)

// constantWalk builds a trajectory moving at speedMps along +x from (10, 34)
// at 25 fps.
func constantWalk(t *testing.T, frames int, speedMps float64) *track.PlayerTrajectory {
	t.Helper()
	traj := track.NewPlayerTrajectory(1, 25, 25)
	step := speedMps / 25
	for i := 0; i < frames; i++ {
		require.NoError(t, traj.Append(track.Point{
			FrameID: i, TrackID: 1, X: 10 + float64(i)*step, Y: 34, Kind: track.KindPlayer,
		}))
	}
	return traj
}

func TestPhysicalConstantVelocity(t *testing.T) {
	t.Parallel()
	engine := NewPhysicalEngine()
	traj := constantWalk(t, 100, 1.0)

	m := engine.Compute(traj)
	assert.InDelta(t, 0.00396, m.TotalDistanceKm, 0.0002)
	assert.InDelta(t, 3.6, m.MaxSpeedKmh, 0.1)
	assert.InDelta(t, 3.6, m.AvgSpeedKmh, 0.1)
	assert.Equal(t, 0, m.SprintCount)
}

func TestPhysicalSprintDetection(t *testing.T) {
	t.Parallel()
	engine := NewPhysicalEngine()

	// 5 m/s base (18 km/h), 8 m/s (28.8 km/h) for frames 25..50.
	traj := track.NewPlayerTrajectory(1, 25, 25)
	x := 10.0
	for i := 0; i < 100; i++ {
		speed := 5.0
		if i >= 25 && i <= 50 {
			speed = 8.0
		}
		require.NoError(t, traj.Append(track.Point{FrameID: i, TrackID: 1, X: x, Y: 34, Kind: track.KindPlayer}))
		x += speed / 25
	}

	m := engine.Compute(traj)
	assert.Equal(t, 1, m.SprintCount)
	assert.InDelta(t, 28.8, m.MaxSpeedKmh, 0.3)
	require.Len(t, m.Sprints, 1)
	assert.Greater(t, m.Sprints[0].DistanceM, 0.0)
}

func TestPhysicalSprintActiveAtLastFrameCounts(t *testing.T) {
	t.Parallel()
	engine := NewPhysicalEngine()

	// Sprint speed from frame 50 to the end of the trajectory.
	traj := track.NewPlayerTrajectory(2, 25, 25)
	x := 10.0
	for i := 0; i < 80; i++ {
		speed := 4.0
		if i >= 50 {
			speed = 8.0
		}
		require.NoError(t, traj.Append(track.Point{FrameID: i, TrackID: 2, X: x, Y: 34, Kind: track.KindPlayer}))
		x += speed / 25
	}

	m := engine.Compute(traj)
	assert.Equal(t, 1, m.SprintCount)
	assert.Equal(t, 79, m.Sprints[0].EndFrame)
}

func TestPhysicalCacheInvalidation(t *testing.T) {
	t.Parallel()
	engine := NewPhysicalEngine()
	traj := constantWalk(t, 100, 1.0)

	m1 := engine.Compute(traj)
	m2 := engine.Compute(traj)
	assert.Same(t, m1, m2, "second call hits the cache")

	engine.InvalidateCache(traj.TrackID)
	m3 := engine.Compute(traj)
	assert.NotSame(t, m1, m3)
}

func TestPhysicalToDictRounding(t *testing.T) {
	t.Parallel()
	m := &PhysicalMetrics{TrackID: 1, TotalDistanceKm: 10.23456, MaxSpeedKmh: 31.2789, AvgSpeedKmh: 7.0444, SprintCount: 3}

	d := m.ToDict()
	assert.Equal(t, 10.23, d["total_distance_km"])
	assert.Equal(t, 31.3, d["max_speed_kmh"])
	assert.Equal(t, 7.0, d["avg_speed_kmh"])
	assert.Equal(t, 3, d["sprint_count"])
}

func TestPhysicalEmptyTrajectory(t *testing.T) {
	t.Parallel()
	engine := NewPhysicalEngine()
	traj := track.NewPlayerTrajectory(9, 25, 25)

	m := engine.Compute(traj)
	assert.Zero(t, m.TotalDistanceKm)
	assert.Zero(t, m.SprintCount)
}
