package match

import (
	"time"

	"github.com/pitchlab/tactics.report/internal/fault"
)

// Match is the ingestion aggregate: identity, the two teams and the ordered
// event list. Events may only be appended during ingestion; afterwards the
// aggregate is treated as read-only by every consumer.
type Match struct {
	MatchID     string  `json:"match_id"`
	HomeTeamID  string  `json:"home_team_id"`
	AwayTeamID  string  `json:"away_team_id"`
	Competition string  `json:"competition,omitempty"`
	Season      string  `json:"season,omitempty"`
	MatchDate   string  `json:"match_date,omitempty"` // ISO-8601 date
	Events      []Event `json:"events"`

	sealed bool
}

// NewMatch creates an empty match aggregate.
func NewMatch(matchID, homeTeamID, awayTeamID string) *Match {
	return &Match{
		MatchID:    matchID,
		HomeTeamID: homeTeamID,
		AwayTeamID: awayTeamID,
	}
}

// AppendEvent adds an event during ingestion. Appending to a sealed match
// or an event outside the closed kind set is rejected.
func (m *Match) AppendEvent(e Event) error {
	if m.sealed {
		return fault.New(fault.BadInput, "match %s is sealed, events are read-only", m.MatchID)
	}
	if !e.Kind.Valid() {
		return fault.New(fault.BadInput, "unknown event kind %q", e.Kind)
	}
	if e.TeamID != m.HomeTeamID && e.TeamID != m.AwayTeamID {
		return fault.New(fault.BadInput, "event %s references team %q not in match %s", e.EventID, e.TeamID, m.MatchID)
	}
	m.Events = append(m.Events, e)
	return nil
}

// Seal marks the end of ingestion. Further appends fail with BadInput.
func (m *Match) Seal() { m.sealed = true }

// Sealed reports whether ingestion has completed.
func (m *Match) Sealed() bool { return m.sealed }

// EventsByTeam returns the team's events preserving match order.
func (m *Match) EventsByTeam(teamID string) []Event {
	var out []Event
	for _, e := range m.Events {
		if e.TeamID == teamID {
			out = append(out, e)
		}
	}
	return out
}

// OpponentOf returns the other team id, or "" if teamID is not in the match.
func (m *Match) OpponentOf(teamID string) string {
	switch teamID {
	case m.HomeTeamID:
		return m.AwayTeamID
	case m.AwayTeamID:
		return m.HomeTeamID
	}
	return ""
}

// ToDict is the explicit serialization surface for the aggregate. Dates are
// normalized to ISO-8601; the event list is copied so callers cannot mutate
// the aggregate through the map.
func (m *Match) ToDict() map[string]interface{} {
	events := make([]Event, len(m.Events))
	copy(events, m.Events)
	d := map[string]interface{}{
		"match_id":     m.MatchID,
		"home_team_id": m.HomeTeamID,
		"away_team_id": m.AwayTeamID,
		"events":       events,
	}
	if m.Competition != "" {
		d["competition"] = m.Competition
	}
	if m.Season != "" {
		d["season"] = m.Season
	}
	if m.MatchDate != "" {
		if t, err := time.Parse("2006-01-02", m.MatchDate); err == nil {
			d["match_date"] = t.Format("2006-01-02")
		} else {
			d["match_date"] = m.MatchDate
		}
	}
	return d
}
