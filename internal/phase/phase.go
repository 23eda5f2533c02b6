// Package phase classifies per-frame game state into tactical phases and
// assembles the per-team phase sequence of a match.
package phase

// GamePhase is the closed set of tactical phases.
type GamePhase string

const (
	OrganizedAttack  GamePhase = "organized_attack"
	OrganizedDefense GamePhase = "organized_defense"
	TransitionAtkDef GamePhase = "transition_atk_def"
	TransitionDefAtk GamePhase = "transition_def_atk"
	Unknown          GamePhase = "unknown"
)

// AllPhases lists every phase except unknown, in canonical order.
var AllPhases = []GamePhase{OrganizedAttack, OrganizedDefense, TransitionAtkDef, TransitionDefAtk}

// Valid reports whether p is a known phase, unknown included.
func (p GamePhase) Valid() bool {
	switch p {
	case OrganizedAttack, OrganizedDefense, TransitionAtkDef, TransitionDefAtk, Unknown:
		return true
	}
	return false
}

// IsTransition reports whether p is either transition phase.
func (p GamePhase) IsTransition() bool {
	return p == TransitionAtkDef || p == TransitionDefAtk
}

// IsAttacking reports whether the team has or is winning the ball.
func (p GamePhase) IsAttacking() bool {
	return p == OrganizedAttack || p == TransitionDefAtk
}
