package possession

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/match"
	"github.com/pitchlab/tactics.report/internal/pitch"
)

func newSeq(team string, events []match.Event) *Sequence {
	return &Sequence{SequenceID: "s1", MatchID: "m1", TeamID: team, Events: events, ClusterLabel: -1}
}

func TestFeaturesVectorShape(t *testing.T) {
	t.Parallel()
	fx, err := NewFeatureExtractor(pitch.StandardDimensions(), "home")
	require.NoError(t, err)

	end := pitch.Point{X: 90, Y: 40}
	s := newSeq("home", []match.Event{
		ev(match.Pass, "home", 1, 20, 30),
		ev(match.Carry, "home", 3, 40, 32),
		{EventID: "e3", Kind: match.Shot, Timestamp: 6, Location: pitch.Point{X: 85, Y: 34}, End: &end, TeamID: "home"},
	})

	v, err := fx.Features(s)
	require.NoError(t, err)
	require.Len(t, v, FeatureDim)

	assert.Equal(t, float64(len(s.Events)), v[4])
	assert.Equal(t, 1.0, v[5], "pass count")
	assert.Equal(t, 1.0, v[6], "carry count")
	assert.Equal(t, 0.0, v[7], "dribble count")
	assert.Equal(t, 1.0, v[8], "shot attempted")
	assert.Equal(t, 1.0, v[12], "ended in shot")
	assert.Equal(t, 0.0, v[13], "ended in goal")
	assert.InDelta(t, 5.0, v[3], 1e-9, "duration")
	assert.Equal(t, v[1]-v[0], v[2], "zone progression")
	assert.InDelta(t, v[10]-v[9], v[11], 1e-12, "xt progression")
	assert.Greater(t, v[11], 0.0, "forward sequence gains xT")
}

func TestFeaturesMirroredForAwaySide(t *testing.T) {
	t.Parallel()
	fx, err := NewFeatureExtractor(pitch.StandardDimensions(), "home")
	require.NoError(t, err)

	// Same spatial trajectory; away attacks the negative axis, so moving
	// toward x=0 is progression for them.
	homeSeq := newSeq("home", []match.Event{
		ev(match.Pass, "home", 1, 90, 34),
		ev(match.Carry, "home", 2, 60, 34),
		ev(match.Pass, "home", 3, 30, 34),
	})
	awaySeq := newSeq("away", []match.Event{
		ev(match.Pass, "away", 1, 90, 34),
		ev(match.Carry, "away", 2, 60, 34),
		ev(match.Pass, "away", 3, 30, 34),
	})

	hv, err := fx.Features(homeSeq)
	require.NoError(t, err)
	av, err := fx.Features(awaySeq)
	require.NoError(t, err)

	assert.Less(t, hv[11], 0.0, "home moving toward own goal loses xT")
	assert.Greater(t, av[11], 0.0, "away moving toward x=0 gains xT")
}

func TestFeaturesCached(t *testing.T) {
	t.Parallel()
	fx, err := NewFeatureExtractor(pitch.StandardDimensions(), "home")
	require.NoError(t, err)

	s := newSeq("home", []match.Event{
		ev(match.Pass, "home", 1, 20, 30),
		ev(match.Carry, "home", 2, 25, 30),
		ev(match.Pass, "home", 3, 30, 30),
	})

	v1, err := fx.Features(s)
	require.NoError(t, err)
	v2, err := fx.Features(s)
	require.NoError(t, err)
	assert.Same(t, &v1[0], &v2[0], "second call returns the cached slice")

	s.InvalidateFeatures()
	v3, err := fx.Features(s)
	require.NoError(t, err)
	assert.Equal(t, v1, v3)
}

func TestFeaturesRejectsEmptySequence(t *testing.T) {
	t.Parallel()
	fx, err := NewFeatureExtractor(pitch.StandardDimensions(), "home")
	require.NoError(t, err)

	_, err = fx.Features(newSeq("home", nil))
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.BadInput))
}
