package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchlab/tactics.report/internal/track"
)

type lineup map[int]string

func (l lineup) ResolveName(trackID int) (string, bool) {
	name, ok := l[trackID]
	return name, ok
}

// scene builds frames where the ball sits at (bx, by) and each described
// player stands at a fixed position for frames [from, to].
type actor struct {
	id       int
	team     string
	x, y     float64
	from, to int
}

func scene(ballX, ballY float64, from, to int, actors []actor) []track.Point {
	var pts []track.Point
	for f := from; f <= to; f++ {
		pts = append(pts, track.Point{FrameID: f, TrackID: 99, X: ballX, Y: ballY, Kind: track.KindBall})
		for _, a := range actors {
			if f < a.from || f > a.to {
				continue
			}
			pts = append(pts, track.Point{FrameID: f, TrackID: a.id, X: a.x, Y: a.y, Kind: track.KindPlayer, TeamID: a.team})
		}
	}
	return pts
}

func TestSingleAcquireNoPass(t *testing.T) {
	t.Parallel()
	inf := New(Config{})

	// Player A within 1 m of the ball for the whole sequence.
	pts := scene(50, 34, 0, 100, []actor{{id: 1, team: "home", x: 49, y: 34, from: 0, to: 100}})

	events := inf.Infer(pts)
	require.Len(t, events, 1)
	assert.Equal(t, Possession, events[0].Kind)
	assert.Equal(t, 1, events[0].PlayerID)
	assert.Equal(t, "home", events[0].TeamID)
	assert.Equal(t, 0, events[0].FrameEnd)
}

func TestSameSpotHandoverEmitsNoPass(t *testing.T) {
	t.Parallel()
	inf := New(Config{})

	// A carries through frame 100, then B (same team) appears at the same
	// spot from frame 101. Displacement 0 < 3 m: no pass event.
	pts := scene(50, 34, 0, 100, []actor{{id: 1, team: "home", x: 49, y: 34, from: 0, to: 100}})
	pts = append(pts, scene(50, 34, 101, 120, []actor{{id: 2, team: "home", x: 49, y: 34, from: 101, to: 120}})...)

	events := inf.Infer(pts)
	require.Len(t, events, 1)
	assert.Equal(t, Possession, events[0].Kind)
}

func TestPassCompleteRequiresDisplacement(t *testing.T) {
	t.Parallel()
	inf := New(Config{})

	// A carries at (40, 34); from frame 50 the ball and B are 10 m away.
	pts := scene(40, 34, 0, 49, []actor{{id: 1, team: "home", x: 40.5, y: 34, from: 0, to: 49}})
	pts = append(pts, scene(50, 34, 50, 60, []actor{{id: 2, team: "home", x: 50.5, y: 34, from: 50, to: 60}})...)

	events := inf.Infer(pts)
	require.Len(t, events, 2)
	assert.Equal(t, Possession, events[0].Kind)
	assert.Equal(t, PassComplete, events[1].Kind)
	assert.Equal(t, 1, events[1].PlayerID)
	assert.Equal(t, 2, events[1].ToPlayerID)
	assert.Equal(t, 50, events[1].FrameEnd)
}

func TestTurnoverEmitsLossRegardlessOfDistance(t *testing.T) {
	t.Parallel()
	inf := New(Config{})

	// Opponent wins the ball at the same spot: loss_of_possession even with
	// zero displacement.
	pts := scene(40, 34, 0, 49, []actor{{id: 1, team: "home", x: 40.5, y: 34, from: 0, to: 49}})
	pts = append(pts, scene(40, 34, 50, 60, []actor{{id: 5, team: "away", x: 40.5, y: 34, from: 50, to: 60}})...)

	events := inf.Infer(pts)
	var kinds []Kind
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	assert.Contains(t, kinds, LossOfPossession)
	assert.NotContains(t, kinds, PassComplete)
}

func TestPressureEventsDeterministicOrder(t *testing.T) {
	t.Parallel()
	inf := New(Config{})

	// Carrier plus two opponents within 2 m, higher id listed first in the
	// input to prove sorting.
	var pts []track.Point
	for f := 0; f <= 2; f++ {
		pts = append(pts,
			track.Point{FrameID: f, TrackID: 99, X: 50, Y: 34, Kind: track.KindBall},
			track.Point{FrameID: f, TrackID: 7, X: 50.5, Y: 34.5, Kind: track.KindPlayer, TeamID: "away"},
			track.Point{FrameID: f, TrackID: 1, X: 49.5, Y: 34, Kind: track.KindPlayer, TeamID: "home"},
			track.Point{FrameID: f, TrackID: 3, X: 49.0, Y: 34.8, Kind: track.KindPlayer, TeamID: "away"},
		)
	}

	events := inf.Infer(pts)
	var pressures []Event
	for _, e := range events {
		if e.Kind == PressureMoment {
			pressures = append(pressures, e)
		}
	}
	require.GreaterOrEqual(t, len(pressures), 2)
	// Per frame, opponent 3 precedes opponent 7.
	assert.Equal(t, 3, pressures[0].PlayerID)
	assert.Equal(t, 7, pressures[1].PlayerID)
	assert.InDelta(t, 0.8, pressures[0].Confidence, 1e-9)
}

func TestEventsOrderedByFrameEnd(t *testing.T) {
	t.Parallel()
	inf := New(Config{})

	pts := scene(40, 34, 0, 49, []actor{{id: 1, team: "home", x: 40.5, y: 34, from: 0, to: 49}})
	pts = append(pts, scene(50, 34, 50, 80, []actor{{id: 2, team: "home", x: 50.5, y: 34, from: 50, to: 80}})...)
	pts = append(pts, scene(50, 34, 81, 100, []actor{{id: 5, team: "away", x: 50.2, y: 34, from: 81, to: 100}})...)

	events := inf.Infer(pts)
	require.NotEmpty(t, events)
	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i].FrameEnd, events[i-1].FrameEnd)
	}
}

func TestFramesWithoutBallAreSkipped(t *testing.T) {
	t.Parallel()
	inf := New(Config{})

	pts := []track.Point{
		{FrameID: 0, TrackID: 1, X: 50, Y: 34, Kind: track.KindPlayer, TeamID: "home"},
		{FrameID: 1, TrackID: 1, X: 50, Y: 34, Kind: track.KindPlayer, TeamID: "home"},
	}
	assert.Empty(t, inf.Infer(pts))
}

func TestResolverAttachesNames(t *testing.T) {
	t.Parallel()
	inf := New(Config{}).WithResolver(lineup{1: "N. Keeper"})

	pts := scene(50, 34, 0, 5, []actor{{id: 1, team: "home", x: 49, y: 34, from: 0, to: 5}})
	events := inf.Infer(pts)
	require.Len(t, events, 1)
	assert.Equal(t, "N. Keeper", events[0].PlayerName)
}
