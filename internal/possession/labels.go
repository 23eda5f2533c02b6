package possession

// LabelRules maps a pattern's aggregate shape to a human label. The
// thresholds are configurable so analysts can retune them per competition
// without code changes.
type LabelRules struct {
	HighXTGain    float64 `json:"high_xt_gain"`    // avg xT gain that counts as dangerous
	QuickDuration float64 `json:"quick_duration"`  // max avg seconds for a counter
	BuildUpEvents float64 `json:"build_up_events"` // min avg events for build-up play
	HighGoalRate  float64 `json:"high_goal_rate"`  // goal rate that marks a high-value pattern
	HighLossRate  float64 `json:"high_loss_rate"`  // loss rate that marks wasteful possession
	SlowDuration  float64 `json:"slow_duration"`   // min avg seconds for patient circulation
}

// DefaultLabelRules returns the stock thresholds.
func DefaultLabelRules() LabelRules {
	return LabelRules{
		HighXTGain:    0.05,
		QuickDuration: 10,
		BuildUpEvents: 8,
		HighGoalRate:  0.2,
		HighLossRate:  0.6,
		SlowDuration:  20,
	}
}

// Label names one pattern. Dangerous patterns split by tempo and length;
// the rest split by how the possession tends to end.
func (r LabelRules) Label(p *TacticalPattern) string {
	if p.AvgXTGain() >= r.HighXTGain {
		switch {
		case p.GoalRate() >= r.HighGoalRate:
			return "High-Value Attack"
		case p.AvgDuration() <= r.QuickDuration:
			return "Quick Counter"
		case p.AvgEvents() >= r.BuildUpEvents:
			return "Sustained Build-Up"
		default:
			return "Progressive Possession"
		}
	}
	switch {
	case p.LossRate() >= r.HighLossRate:
		return "Low-Value Possession"
	case p.AvgDuration() >= r.SlowDuration:
		return "Patient Circulation"
	default:
		return "Neutral Possession"
	}
}
