package track

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchlab/tactics.report/internal/fault"
)

// walkTrack produces n frames of a straight-line walk at stepMeters per
// frame starting from (x0, y0).
func walkTrack(trackID, startFrame, n int, x0, y0, stepMeters float64, kind ObjectKind) []Point {
	pts := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		pts = append(pts, Point{
			FrameID:   startFrame + i,
			TrackID:   trackID,
			X:         x0 + float64(i)*stepMeters,
			Y:         y0,
			Kind:      kind,
			Timestamp: float64(startFrame+i) / 25.0,
		})
	}
	return pts
}

func newTestStabilizer(t *testing.T, mutate func(*StabilizerConfig)) *Stabilizer {
	t.Helper()
	cfg := DefaultStabilizerConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := NewStabilizer(cfg)
	require.NoError(t, err)
	return s
}

func TestProcessEmptyInput(t *testing.T) {
	t.Parallel()
	s := newTestStabilizer(t, nil)

	out, err := s.Process(nil, 25)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestProcessRejectsDuplicateTrackFrame(t *testing.T) {
	t.Parallel()
	s := newTestStabilizer(t, nil)

	pts := walkTrack(1, 0, 20, 10, 34, 0.04, KindPlayer)
	pts = append(pts, Point{FrameID: 5, TrackID: 1, X: 11, Y: 34, Kind: KindPlayer})

	_, err := s.Process(pts, 25)
	require.Error(t, err)
	assert.Equal(t, fault.BadInput, fault.KindOf(err))
}

func TestProcessRejectsBadFPS(t *testing.T) {
	t.Parallel()
	s := newTestStabilizer(t, nil)

	_, err := s.Process(walkTrack(1, 0, 20, 10, 34, 0.04, KindPlayer), 0)
	require.Error(t, err)
	assert.Equal(t, fault.BadInput, fault.KindOf(err))
}

func TestProcessDropsGhostTracks(t *testing.T) {
	t.Parallel()
	s := newTestStabilizer(t, nil)

	pts := walkTrack(1, 0, 30, 10, 34, 0.04, KindPlayer)
	pts = append(pts, walkTrack(2, 0, 5, 60, 20, 0.04, KindPlayer)...) // below 15-frame minimum

	out, err := s.Process(pts, 25)
	require.NoError(t, err)
	require.Len(t, out, 30)
	for _, p := range out {
		assert.Equal(t, 1, p.TrackID)
	}
}

func TestProcessMergesFragments(t *testing.T) {
	t.Parallel()
	s := newTestStabilizer(t, nil)

	// Fragment A ends at frame 29 near x=11.16; fragment B resumes at
	// frame 35 (gap 6) within 2 m of A's end.
	a := walkTrack(7, 0, 30, 10, 34, 0.04, KindPlayer)
	b := walkTrack(9, 35, 30, 11.5, 34, 0.04, KindPlayer)

	out, err := s.Process(append(a, b...), 25)
	require.NoError(t, err)
	require.Len(t, out, 60)
	for _, p := range out {
		assert.Equal(t, 1, p.TrackID, "merged fragments share one dense id")
	}
	// Frame order is preserved across the merge seam.
	for i := 1; i < len(out); i++ {
		assert.Greater(t, out[i].FrameID, out[i-1].FrameID)
	}
}

func TestProcessDoesNotMergeAcrossKinds(t *testing.T) {
	t.Parallel()
	s := newTestStabilizer(t, nil)

	a := walkTrack(1, 0, 30, 10, 34, 0.04, KindPlayer)
	b := walkTrack(2, 35, 30, 11.5, 34, 0.04, KindBall)

	out, err := s.Process(append(a, b...), 25)
	require.NoError(t, err)
	ids := map[int]bool{}
	for _, p := range out {
		ids[p.TrackID] = true
	}
	assert.Len(t, ids, 2)
}

func TestProcessDoesNotMergeDistantFragments(t *testing.T) {
	t.Parallel()
	s := newTestStabilizer(t, nil)

	a := walkTrack(1, 0, 30, 10, 34, 0.04, KindPlayer)
	b := walkTrack(2, 35, 30, 40, 10, 0.04, KindPlayer) // ~38 m away

	out, err := s.Process(append(a, b...), 25)
	require.NoError(t, err)
	ids := map[int]bool{}
	for _, p := range out {
		ids[p.TrackID] = true
	}
	assert.Len(t, ids, 2)
}

func TestProcessDoesNotMergeBeyondGap(t *testing.T) {
	t.Parallel()
	s := newTestStabilizer(t, nil)

	a := walkTrack(1, 0, 30, 10, 34, 0.04, KindPlayer)
	b := walkTrack(2, 41, 30, 11.2, 34, 0.04, KindPlayer) // gap 12 > 10

	out, err := s.Process(append(a, b...), 25)
	require.NoError(t, err)
	ids := map[int]bool{}
	for _, p := range out {
		ids[p.TrackID] = true
	}
	assert.Len(t, ids, 2)
}

func TestProcessRenumbersDenselyFromOne(t *testing.T) {
	t.Parallel()
	s := newTestStabilizer(t, nil)

	pts := walkTrack(17, 0, 30, 10, 34, 0.04, KindPlayer)
	pts = append(pts, walkTrack(203, 2, 30, 60, 20, 0.04, KindPlayer)...)

	out, err := s.Process(pts, 25)
	require.NoError(t, err)
	ids := map[int]bool{}
	for _, p := range out {
		ids[p.TrackID] = true
	}
	assert.True(t, ids[1])
	assert.True(t, ids[2])
	assert.Len(t, ids, 2)
}

func TestProcessFlagsOverSpeedFrames(t *testing.T) {
	t.Parallel()
	s := newTestStabilizer(t, func(c *StabilizerConfig) {
		// Narrow window so the injected jump survives smoothing.
		c.SmoothingWindow = 5
	})

	pts := walkTrack(1, 0, 40, 10, 34, 0.04, KindPlayer)
	// Teleport: 12 m in one frame at 25 fps is 300 m/s.
	for i := 20; i < 40; i++ {
		pts[i].X += 12
	}

	out, err := s.Process(pts, 25)
	require.NoError(t, err)

	flagged := 0
	for _, p := range out {
		if p.SpeedFlagged {
			flagged++
		}
	}
	assert.Greater(t, flagged, 0, "jump frames must be flagged in flag mode")
}

func TestProcessClipsOverSpeedFrames(t *testing.T) {
	t.Parallel()
	s := newTestStabilizer(t, func(c *StabilizerConfig) {
		c.SmoothingWindow = 5
		c.ClipOutlierSpeed = true
	})

	fps := 25.0
	pts := walkTrack(1, 0, 40, 10, 34, 0.04, KindPlayer)
	for i := 20; i < 40; i++ {
		pts[i].X += 12
	}

	out, err := s.Process(pts, fps)
	require.NoError(t, err)

	maxStep := (s.Config().MaxSpeedKmh / 3.6) / fps
	for i := 1; i < len(out); i++ {
		df := float64(out[i].FrameID - out[i-1].FrameID)
		step := math.Hypot(out[i].X-out[i-1].X, out[i].Y-out[i-1].Y)
		assert.LessOrEqual(t, step, maxStep*df+1e-9, "frame %d", out[i].FrameID)
		assert.False(t, out[i].SpeedFlagged, "clip mode rewrites positions instead of flagging")
	}
}
