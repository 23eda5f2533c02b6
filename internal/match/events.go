// Package match holds the canonical match aggregate: teams, ordered events
// and their closed kind set. Feed adapters in internal/ingest convert
// source schemas into these types; everything downstream consumes them
// read-only.
package match

import (
	"github.com/pitchlab/tactics.report/internal/pitch"
)

// EventKind is the closed set of canonical event kinds.
type EventKind string

const (
	Pass            EventKind = "pass"
	Shot            EventKind = "shot"
	Carry           EventKind = "carry"
	Dribble         EventKind = "dribble"
	Tackle          EventKind = "tackle"
	Interception    EventKind = "interception"
	Clearance       EventKind = "clearance"
	Foul            EventKind = "foul"
	Goal            EventKind = "goal"
	Pressure        EventKind = "pressure"
	DefensiveAction EventKind = "defensive_action"
)

// knownKinds indexes the closed set for validation.
var knownKinds = map[EventKind]bool{
	Pass: true, Shot: true, Carry: true, Dribble: true,
	Tackle: true, Interception: true, Clearance: true,
	Foul: true, Goal: true, Pressure: true, DefensiveAction: true,
}

// Valid reports whether the kind belongs to the closed set.
func (k EventKind) Valid() bool { return knownKinds[k] }

// IsDefensive reports whether the kind counts as a defensive action for
// PPDA and pressing metrics.
func (k EventKind) IsDefensive() bool {
	switch k {
	case DefensiveAction, Tackle, Interception, Pressure:
		return true
	}
	return false
}

// IsProgression reports whether the kind moves the ball and therefore
// contributes to xT chains.
func (k EventKind) IsProgression() bool {
	switch k {
	case Pass, Carry, Dribble, Shot:
		return true
	}
	return false
}

// Event is an immutable canonical match event. Timestamp is seconds from
// kickoff; Location and End are canonical pitch coordinates. End is only
// meaningful for kinds that move the ball.
type Event struct {
	EventID   string      `json:"event_id"`
	Kind      EventKind   `json:"kind"`
	Timestamp float64     `json:"timestamp"`
	Location  pitch.Point `json:"location"`
	End       *pitch.Point `json:"end,omitempty"`
	PlayerID  string      `json:"player_id"`
	TeamID    string      `json:"team_id"`
}

// HasEnd reports whether the event carries an end location.
func (e Event) HasEnd() bool { return e.End != nil }

// EndOrLocation returns the end location when present, else the start.
func (e Event) EndOrLocation() pitch.Point {
	if e.End != nil {
		return *e.End
	}
	return e.Location
}
