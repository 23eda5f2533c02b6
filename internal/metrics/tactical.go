package metrics

import (
	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/match"
	"github.com/pitchlab/tactics.report/internal/pitch"
)

// TacticalMatch is a read-only view over a match's events plus the pitch
// geometry, with the xT lookup cached on construction. Home attacks +x,
// away attacks −x.
type TacticalMatch struct {
	m    *match.Match
	dims pitch.Dimensions
	xt   *XTGrid
}

// NewTacticalMatch builds the view over a (sealed) match on the standard
// pitch.
func NewTacticalMatch(m *match.Match) (*TacticalMatch, error) {
	return NewTacticalMatchWithDims(m, pitch.StandardDimensions())
}

// NewTacticalMatchWithDims builds the view over an arbitrary pitch size.
func NewTacticalMatchWithDims(m *match.Match, dims pitch.Dimensions) (*TacticalMatch, error) {
	grid, err := LoadXTGrid()
	if err != nil {
		return nil, fault.Wrap(fault.Internal, err, "tactical match xT grid")
	}
	return &TacticalMatch{m: m, dims: dims, xt: grid}, nil
}

// Match returns the underlying aggregate.
func (t *TacticalMatch) Match() *match.Match { return t.m }

// attacksPositiveX reports the attacking direction for a team.
func (t *TacticalMatch) attacksPositiveX(teamID string) bool {
	return teamID == t.m.HomeTeamID
}

// inAttackingTwoThirds reports whether x lies in the team's attacking
// two-thirds of the pitch.
func (t *TacticalMatch) inAttackingTwoThirds(x float64, teamID string) bool {
	if t.attacksPositiveX(teamID) {
		return x >= t.dims.Length/3
	}
	return x <= 2*t.dims.Length/3
}

// defenderRelativeThird maps an event x to the acting team's own third:
// for a team attacking −x the bands mirror.
func (t *TacticalMatch) defenderRelativeThird(x float64, teamID string) pitch.Third {
	if t.attacksPositiveX(teamID) {
		return pitch.ThirdOf(x, t.dims.Length)
	}
	return pitch.ThirdOf(t.dims.Length-x, t.dims.Length)
}

// xtAt looks up xT for a point from the team's attacking perspective.
func (t *TacticalMatch) xtAt(p pitch.Point, teamID string) float64 {
	if t.attacksPositiveX(teamID) {
		return t.xt.Lookup(p, t.dims)
	}
	return t.xt.LookupMirrored(p, t.dims)
}

// ComputePPDA returns the defender's passes-per-defensive-action against the
// attacker: attacker passes starting in the attacker's attacking two-thirds
// divided by the defender's defensive actions. Zero defensive actions yield
// the infinite case.
func (t *TacticalMatch) ComputePPDA(defenderID, attackerID string) PPDA {
	passes := 0
	actions := 0
	for _, e := range t.m.Events {
		switch {
		case e.TeamID == attackerID && e.Kind == match.Pass:
			if t.inAttackingTwoThirds(e.Location.X, attackerID) {
				passes++
			}
		case e.TeamID == defenderID && e.Kind.IsDefensive():
			actions++
		}
	}
	if actions == 0 {
		diagf("ppda %s vs %s: no defensive actions, reporting inf", defenderID, attackerID)
		return InfinitePPDA()
	}
	return FinitePPDA(float64(passes) / float64(actions))
}

// PressingMetrics partitions a team's pressing work by pitch third.
type PressingMetrics struct {
	TeamID          string         `json:"team_id"`
	ByThird         map[string]int `json:"by_third"` // defensive / middle / attacking
	Pressures       int            `json:"pressures"`
	Tackles         int            `json:"tackles"`
	DefensiveAction int            `json:"defensive_actions"`
}

// ComputePressing counts the team's {pressure, defensive_action, tackle}
// events partitioned by defender-relative third.
func (t *TacticalMatch) ComputePressing(teamID string) PressingMetrics {
	pm := PressingMetrics{
		TeamID: teamID,
		ByThird: map[string]int{
			pitch.DefensiveThird.String(): 0,
			pitch.MiddleThird.String():    0,
			pitch.AttackingThird.String(): 0,
		},
	}
	for _, e := range t.m.Events {
		if e.TeamID != teamID {
			continue
		}
		switch e.Kind {
		case match.Pressure:
			pm.Pressures++
		case match.Tackle:
			pm.Tackles++
		case match.DefensiveAction:
			pm.DefensiveAction++
		default:
			continue
		}
		third := t.defenderRelativeThird(e.Location.X, teamID)
		pm.ByThird[third.String()]++
	}
	return pm
}

// XTEvent is one ball-progressing event valued against the xT surface.
type XTEvent struct {
	EventID  string          `json:"event_id"`
	Kind     match.EventKind `json:"kind"`
	Start    pitch.Point     `json:"start"`
	End      pitch.Point     `json:"end"`
	XTStart  float64         `json:"xt_start"`
	XTEnd    float64         `json:"xt_end"`
	XTChange float64         `json:"xt_change"`
}

// XTChain is the team's cumulative threat progression.
type XTChain struct {
	TeamID  string    `json:"team_id"`
	Events  []XTEvent `json:"events"`
	Total   float64   `json:"total_xt_change"`
	Average float64   `json:"avg_xt_change"`
}

// ComputeXTChain values the team's pass/carry/dribble/shot events in match
// order: each event's change is xT(end) − xT(start).
func (t *TacticalMatch) ComputeXTChain(teamID string) XTChain {
	chain := XTChain{TeamID: teamID}
	for _, e := range t.m.Events {
		if e.TeamID != teamID || !e.Kind.IsProgression() {
			continue
		}
		start := e.Location
		end := e.EndOrLocation()
		rec := XTEvent{
			EventID: e.EventID,
			Kind:    e.Kind,
			Start:   start,
			End:     end,
			XTStart: t.xtAt(start, teamID),
			XTEnd:   t.xtAt(end, teamID),
		}
		rec.XTChange = rec.XTEnd - rec.XTStart
		chain.Events = append(chain.Events, rec)
		chain.Total += rec.XTChange
	}
	if n := len(chain.Events); n > 0 {
		chain.Average = chain.Total / float64(n)
	}
	return chain
}
