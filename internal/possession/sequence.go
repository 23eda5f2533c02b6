// Package possession segments canonical event streams into per-team
// possession sequences, derives their feature vectors, and clusters them
// into recurring tactical patterns through a detector adapter.
package possession

import (
	"github.com/pitchlab/tactics.report/internal/match"
	"github.com/pitchlab/tactics.report/internal/pitch"
)

// FeatureDim is the fixed length of the sequence feature vector. The
// ordering is part of the contract:
//
//	0  start_zone          1  end_zone            2  zone_progression
//	3  duration_seconds    4  event_count         5  pass_count
//	6  carry_count         7  dribble_count       8  shot_attempted
//	9  xt_start            10 xt_end              11 xt_progression
//	12 ended_in_shot       13 ended_in_goal       14 possession_lost
const FeatureDim = 15

// Sequence is one contiguous spell of possession by a single team.
// ClusterLabel is -1 until a detector assigns one; the feature vector is
// computed lazily and cached.
type Sequence struct {
	SequenceID   string        `json:"sequence_id"`
	MatchID      string        `json:"match_id"`
	TeamID       string        `json:"team_id"`
	StartFrame   int           `json:"start_frame"`
	EndFrame     int           `json:"end_frame"`
	Events       []match.Event `json:"events"`
	ClusterLabel int           `json:"cluster_label"`
	PatternID    string        `json:"pattern_id,omitempty"`

	features       []float64
	possessionLost bool
}

// PossessionLost reports whether the sequence ended with the ball given
// away, either through a turnover kind or the opponent acting next.
func (s *Sequence) PossessionLost() bool { return s.possessionLost }

// Duration returns the covered span in seconds.
func (s *Sequence) Duration() float64 {
	if len(s.Events) == 0 {
		return 0
	}
	return s.Events[len(s.Events)-1].Timestamp - s.Events[0].Timestamp
}

// EndedInShot reports whether the closing event was a shot.
func (s *Sequence) EndedInShot() bool {
	return len(s.Events) > 0 && s.Events[len(s.Events)-1].Kind == match.Shot
}

// EndedInGoal reports whether the closing event was a goal.
func (s *Sequence) EndedInGoal() bool {
	return len(s.Events) > 0 && s.Events[len(s.Events)-1].Kind == match.Goal
}

// StartZone returns the 12-zone id of the first event.
func (s *Sequence) StartZone(dims pitch.Dimensions) int {
	if len(s.Events) == 0 {
		return 0
	}
	return pitch.ZoneOf(s.Events[0].Location, dims)
}

// EndZone returns the 12-zone id of the last event's terminal location.
func (s *Sequence) EndZone(dims pitch.Dimensions) int {
	if len(s.Events) == 0 {
		return 0
	}
	return pitch.ZoneOf(s.Events[len(s.Events)-1].EndOrLocation(), dims)
}

// InvalidateFeatures drops the cached feature vector.
func (s *Sequence) InvalidateFeatures() { s.features = nil }
