package phase

import (
	"sort"

	"github.com/pitchlab/tactics.report/internal/fault"
)

// FramePhase is one classified frame.
type FramePhase struct {
	FrameID    int       `json:"frame_id"`
	Phase      GamePhase `json:"phase"`
	Confidence float64   `json:"confidence"`
}

// Transition is one phase change between consecutive classified frames.
// Unknown frames never participate in transitions.
type Transition struct {
	FrameID int       `json:"frame_id"`
	From    GamePhase `json:"from"`
	To      GamePhase `json:"to"`
}

// PhaseSequence is the ordered classified timeline of one team in one
// match. Frame ids are kept strictly increasing; appending an out-of-order
// frame triggers a re-sort, and duplicate frame ids are rejected.
type PhaseSequence struct {
	MatchID string       `json:"match_id"`
	TeamID  string       `json:"team_id"`
	FPS     float64      `json:"fps"`
	Frames  []FramePhase `json:"frames"`

	seen map[int]bool
}

// NewPhaseSequence creates an empty sequence.
func NewPhaseSequence(matchID, teamID string, fps float64) (*PhaseSequence, error) {
	if fps <= 0 {
		return nil, fault.New(fault.BadInput, "fps must be positive, got %g", fps)
	}
	return &PhaseSequence{MatchID: matchID, TeamID: teamID, FPS: fps, seen: map[int]bool{}}, nil
}

// Append adds one classified frame, re-sorting if it arrives out of order.
func (s *PhaseSequence) Append(fp FramePhase) error {
	if s.seen[fp.FrameID] {
		return fault.New(fault.BadInput, "duplicate frame id %d in phase sequence", fp.FrameID)
	}
	needSort := len(s.Frames) > 0 && fp.FrameID < s.Frames[len(s.Frames)-1].FrameID
	s.Frames = append(s.Frames, fp)
	s.seen[fp.FrameID] = true
	if needSort {
		sort.Slice(s.Frames, func(i, j int) bool { return s.Frames[i].FrameID < s.Frames[j].FrameID })
	}
	return nil
}

// Durations returns seconds spent in each phase. Each frame covers the gap
// to its successor; the final frame contributes one frame period, so the
// total equals (last-first)/fps + 1/fps.
func (s *PhaseSequence) Durations() map[GamePhase]float64 {
	out := map[GamePhase]float64{}
	for i, fp := range s.Frames {
		if i == len(s.Frames)-1 {
			out[fp.Phase] += 1 / s.FPS
			continue
		}
		out[fp.Phase] += float64(s.Frames[i+1].FrameID-fp.FrameID) / s.FPS
	}
	return out
}

// Percentages returns each phase's share of total time, summing to 100 for
// a non-empty sequence.
func (s *PhaseSequence) Percentages() map[GamePhase]float64 {
	durations := s.Durations()
	var total float64
	for _, d := range durations {
		total += d
	}
	out := make(map[GamePhase]float64, len(durations))
	if total <= 0 {
		return out
	}
	for p, d := range durations {
		out[p] = d / total * 100
	}
	return out
}

// Transitions lists every phase change, skipping unknown frames on either
// side of the boundary.
func (s *PhaseSequence) Transitions() []Transition {
	var out []Transition
	prev := Unknown
	for _, fp := range s.Frames {
		if fp.Phase == Unknown {
			continue
		}
		if prev != Unknown && fp.Phase != prev {
			out = append(out, Transition{FrameID: fp.FrameID, From: prev, To: fp.Phase})
		}
		prev = fp.Phase
	}
	return out
}

// TransitionCount is len(Transitions()).
func (s *PhaseSequence) TransitionCount() int { return len(s.Transitions()) }

// Dominant returns the phase with the longest total duration, Unknown for
// an empty sequence. Ties break by canonical phase order for determinism.
func (s *PhaseSequence) Dominant() GamePhase {
	durations := s.Durations()
	best, bestDur := Unknown, -1.0
	for _, p := range append(append([]GamePhase{}, AllPhases...), Unknown) {
		if d, ok := durations[p]; ok && d > bestDur {
			best, bestDur = p, d
		}
	}
	return best
}
