package possession

import (
	"github.com/google/uuid"
)

// maxExampleSequences caps how many sequence ids a pattern keeps as
// examples for drill-down.
const maxExampleSequences = 5

// TacticalPattern is one recurring possession pattern: a cluster of
// sequences summarized by incremental averages. All averages update in
// O(1) per added sequence.
type TacticalPattern struct {
	PatternID        string  `json:"pattern_id"`
	MatchID          string  `json:"match_id"`
	TeamID           string  `json:"team_id"`
	ClusterLabel     int     `json:"cluster_label"`
	Label            string  `json:"label"`
	OccurrenceCount  int     `json:"occurrence_count"`
	SuccessCount     int     `json:"success_count"`
	ShotCount        int     `json:"shot_count"`
	GoalCount        int     `json:"goal_count"`
	LossCount        int     `json:"loss_count"`
	ExampleSequences []string `json:"example_sequences"`

	duration RunningStat
	events   RunningStat
	xtGain   RunningStat
}

// NewTacticalPattern creates an empty pattern for one cluster label.
func NewTacticalPattern(matchID, teamID string, label int) *TacticalPattern {
	return &TacticalPattern{
		PatternID:    uuid.NewString(),
		MatchID:      matchID,
		TeamID:       teamID,
		ClusterLabel: label,
	}
}

// AddSequence folds one member sequence into the pattern's averages and
// counters and stamps the sequence with the pattern id.
func (p *TacticalPattern) AddSequence(s *Sequence, features []float64) {
	p.OccurrenceCount++
	if s.EndedInShot() {
		p.ShotCount++
	}
	if s.EndedInGoal() {
		p.GoalCount++
	}
	// A sequence is successful when it ends with an attempt on goal.
	if s.EndedInShot() || s.EndedInGoal() {
		p.SuccessCount++
	}
	if s.PossessionLost() {
		p.LossCount++
	}
	p.duration.Add(s.Duration())
	p.events.Add(float64(len(s.Events)))
	if len(features) == FeatureDim {
		p.xtGain.Add(features[11])
	}
	if len(p.ExampleSequences) < maxExampleSequences {
		p.ExampleSequences = append(p.ExampleSequences, s.SequenceID)
	}
	s.PatternID = p.PatternID
}

// AvgDuration is the mean sequence duration in seconds.
func (p *TacticalPattern) AvgDuration() float64 { return p.duration.Mean }

// AvgEvents is the mean event count per sequence.
func (p *TacticalPattern) AvgEvents() float64 { return p.events.Mean }

// AvgXTGain is the mean xT progression per sequence.
func (p *TacticalPattern) AvgXTGain() float64 { return p.xtGain.Mean }

// SuccessRate is the share of member sequences ending with an attempt on
// goal.
func (p *TacticalPattern) SuccessRate() float64 {
	if p.OccurrenceCount == 0 {
		return 0
	}
	return float64(p.SuccessCount) / float64(p.OccurrenceCount)
}

// ShotRate is the share of member sequences ending in a shot.
func (p *TacticalPattern) ShotRate() float64 {
	if p.OccurrenceCount == 0 {
		return 0
	}
	return float64(p.ShotCount) / float64(p.OccurrenceCount)
}

// GoalRate is the share of member sequences ending in a goal.
func (p *TacticalPattern) GoalRate() float64 {
	if p.OccurrenceCount == 0 {
		return 0
	}
	return float64(p.GoalCount) / float64(p.OccurrenceCount)
}

// LossRate is the share of member sequences losing the ball.
func (p *TacticalPattern) LossRate() float64 {
	if p.OccurrenceCount == 0 {
		return 0
	}
	return float64(p.LossCount) / float64(p.OccurrenceCount)
}

// ToDict is the serialized form for storage and reports.
func (p *TacticalPattern) ToDict() map[string]any {
	return map[string]any{
		"pattern_id":        p.PatternID,
		"match_id":          p.MatchID,
		"team_id":           p.TeamID,
		"cluster_label":     p.ClusterLabel,
		"label":             p.Label,
		"occurrence_count":  p.OccurrenceCount,
		"success_count":     p.SuccessCount,
		"success_rate":      p.SuccessRate(),
		"shot_rate":         p.ShotRate(),
		"goal_rate":         p.GoalRate(),
		"loss_rate":         p.LossRate(),
		"avg_duration_sec":  p.AvgDuration(),
		"avg_events":        p.AvgEvents(),
		"avg_xt_gain":       p.AvgXTGain(),
		"example_sequences": p.ExampleSequences,
	}
}
