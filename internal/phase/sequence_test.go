package phase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchlab/tactics.report/internal/fault"
)

func seqWith(t *testing.T, fps float64, frames ...FramePhase) *PhaseSequence {
	t.Helper()
	s, err := NewPhaseSequence("m1", "home", fps)
	require.NoError(t, err)
	for _, fp := range frames {
		require.NoError(t, s.Append(fp))
	}
	return s
}

func TestAppendResortsOutOfOrder(t *testing.T) {
	t.Parallel()
	s := seqWith(t, 25,
		FramePhase{FrameID: 10, Phase: OrganizedAttack},
		FramePhase{FrameID: 5, Phase: OrganizedDefense},
		FramePhase{FrameID: 20, Phase: OrganizedAttack},
	)
	assert.Equal(t, []int{5, 10, 20}, []int{s.Frames[0].FrameID, s.Frames[1].FrameID, s.Frames[2].FrameID})
}

func TestAppendRejectsDuplicateFrame(t *testing.T) {
	t.Parallel()
	s := seqWith(t, 25, FramePhase{FrameID: 1, Phase: OrganizedAttack})
	err := s.Append(FramePhase{FrameID: 1, Phase: OrganizedDefense})
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.BadInput))
}

func TestDurationsSumProperty(t *testing.T) {
	t.Parallel()
	// Frames 0..99 at 25 fps: total must be (99-0)/25 + 1/25 = 4 s.
	s, err := NewPhaseSequence("m1", "home", 25)
	require.NoError(t, err)
	for f := 0; f < 100; f++ {
		p := OrganizedAttack
		if f >= 60 {
			p = OrganizedDefense
		}
		require.NoError(t, s.Append(FramePhase{FrameID: f, Phase: p}))
	}

	durations := s.Durations()
	var total float64
	for _, d := range durations {
		total += d
	}
	assert.InDelta(t, 4.0, total, 1e-6)
	assert.InDelta(t, 2.4, durations[OrganizedAttack], 1e-9)
	assert.InDelta(t, 1.6, durations[OrganizedDefense], 1e-9)
}

func TestPercentagesSumToHundred(t *testing.T) {
	t.Parallel()
	s := seqWith(t, 25,
		FramePhase{FrameID: 0, Phase: OrganizedAttack},
		FramePhase{FrameID: 10, Phase: TransitionAtkDef},
		FramePhase{FrameID: 15, Phase: OrganizedDefense},
		FramePhase{FrameID: 40, Phase: OrganizedAttack},
	)
	var total float64
	for _, pct := range s.Percentages() {
		total += pct
	}
	assert.InDelta(t, 100, total, 1e-3)
}

func TestPercentagesCountUnknownFrames(t *testing.T) {
	t.Parallel()
	// Unknown is excluded from transitions only. Durations and
	// percentages cover the full timeline, so the shares still sum
	// to 100 when unclassified spells are present.
	s := seqWith(t, 25,
		FramePhase{FrameID: 0, Phase: OrganizedAttack},
		FramePhase{FrameID: 25, Phase: Unknown},
		FramePhase{FrameID: 50, Phase: OrganizedDefense},
		FramePhase{FrameID: 75, Phase: OrganizedDefense},
	)

	// Spans: attack 1 s, unknown 1 s, defense 1 s + the final frame's
	// 1/25 s, so the unknown spell holds 1/3.04 of the total.
	pct := s.Percentages()
	require.Contains(t, pct, Unknown)
	assert.InDelta(t, 100.0/3.04, pct[Unknown], 1e-6)

	var total float64
	for _, p := range pct {
		total += p
	}
	assert.InDelta(t, 100, total, 1e-3)
}

func TestTransitionsIgnoreUnknown(t *testing.T) {
	t.Parallel()
	s := seqWith(t, 25,
		FramePhase{FrameID: 0, Phase: OrganizedAttack},
		FramePhase{FrameID: 1, Phase: Unknown},
		FramePhase{FrameID: 2, Phase: OrganizedAttack},
		FramePhase{FrameID: 3, Phase: OrganizedDefense},
		FramePhase{FrameID: 4, Phase: Unknown},
		FramePhase{FrameID: 5, Phase: TransitionDefAtk},
	)

	trans := s.Transitions()
	require.Len(t, trans, 2)
	assert.Equal(t, Transition{FrameID: 3, From: OrganizedAttack, To: OrganizedDefense}, trans[0])
	assert.Equal(t, Transition{FrameID: 5, From: OrganizedDefense, To: TransitionDefAtk}, trans[1])
	assert.Equal(t, 2, s.TransitionCount())
}

func TestDominantPhase(t *testing.T) {
	t.Parallel()
	s := seqWith(t, 25,
		FramePhase{FrameID: 0, Phase: OrganizedDefense},
		FramePhase{FrameID: 80, Phase: OrganizedAttack},
		FramePhase{FrameID: 100, Phase: OrganizedAttack},
	)
	assert.Equal(t, OrganizedDefense, s.Dominant())

	empty, err := NewPhaseSequence("m1", "home", 25)
	require.NoError(t, err)
	assert.Equal(t, Unknown, empty.Dominant())
}
