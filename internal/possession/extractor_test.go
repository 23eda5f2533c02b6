package possession

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchlab/tactics.report/internal/match"
	"github.com/pitchlab/tactics.report/internal/pitch"
)

func ev(kind match.EventKind, team string, ts float64, x, y float64) match.Event {
	return match.Event{
		EventID:   string(kind) + "-" + team,
		Kind:      kind,
		Timestamp: ts,
		Location:  pitch.Point{X: x, Y: y},
		TeamID:    team,
	}
}

func TestExtractBreaksOnTeamChange(t *testing.T) {
	t.Parallel()
	x := NewExtractor(ExtractorConfig{MinEvents: 3, FPS: 25})

	events := []match.Event{
		ev(match.Pass, "home", 1, 20, 30),
		ev(match.Carry, "home", 2, 25, 30),
		ev(match.Pass, "home", 3, 30, 30),
		ev(match.Pass, "away", 4, 60, 30),
		ev(match.Carry, "away", 5, 55, 30),
		ev(match.Shot, "away", 6, 95, 34),
	}

	seqs := x.Extract("m1", events)
	require.Len(t, seqs, 2)
	assert.Equal(t, "home", seqs[0].TeamID)
	assert.Equal(t, "away", seqs[1].TeamID)
	// The home spell ended with the opposition acting next.
	assert.True(t, seqs[0].PossessionLost())
	assert.False(t, seqs[1].PossessionLost())
}

func TestExtractBreaksOnEndingKind(t *testing.T) {
	t.Parallel()
	x := NewExtractor(ExtractorConfig{MinEvents: 3, FPS: 25})

	events := []match.Event{
		ev(match.Pass, "home", 1, 20, 30),
		ev(match.Carry, "home", 2, 40, 30),
		ev(match.Goal, "home", 3, 100, 34),
		ev(match.Pass, "home", 10, 52, 34),
		ev(match.Pass, "home", 11, 48, 30),
		ev(match.Carry, "home", 12, 45, 28),
	}

	seqs := x.Extract("m1", events)
	require.Len(t, seqs, 2)
	assert.Equal(t, match.Goal, seqs[0].Events[len(seqs[0].Events)-1].Kind)
	assert.True(t, seqs[0].EndedInGoal())
	assert.False(t, seqs[0].PossessionLost())
}

func TestExtractDropsShortSpells(t *testing.T) {
	t.Parallel()
	x := NewExtractor(ExtractorConfig{MinEvents: 3, FPS: 25})

	events := []match.Event{
		ev(match.Pass, "home", 1, 20, 30),
		ev(match.Interception, "away", 2, 25, 30),
		ev(match.Pass, "home", 3, 30, 30),
		ev(match.Carry, "home", 4, 35, 30),
		ev(match.Pass, "home", 5, 40, 30),
	}

	seqs := x.Extract("m1", events)
	require.Len(t, seqs, 1)
	assert.Equal(t, 3, len(seqs[0].Events))
}

func TestExtractTurnoverMarksPossessionLost(t *testing.T) {
	t.Parallel()
	x := NewExtractor(ExtractorConfig{MinEvents: 2, FPS: 25})

	events := []match.Event{
		ev(match.Pass, "away", 1, 60, 30),
		ev(match.Carry, "away", 2, 55, 30),
		ev(match.Interception, "away", 3, 50, 30),
	}

	seqs := x.Extract("m1", events)
	require.Len(t, seqs, 1)
	assert.True(t, seqs[0].PossessionLost())
}

func TestExtractDerivesFrames(t *testing.T) {
	t.Parallel()
	x := NewExtractor(ExtractorConfig{MinEvents: 3, FPS: 25})

	events := []match.Event{
		ev(match.Pass, "home", 10, 20, 30),
		ev(match.Carry, "home", 12, 25, 30),
		ev(match.Pass, "home", 14.5, 30, 30),
	}

	seqs := x.Extract("m1", events)
	require.Len(t, seqs, 1)
	assert.Equal(t, 250, seqs[0].StartFrame)
	assert.Equal(t, 362, seqs[0].EndFrame)
	assert.NotEmpty(t, seqs[0].SequenceID)
	assert.Equal(t, -1, seqs[0].ClusterLabel)
}
