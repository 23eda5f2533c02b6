// Package ingest converts external event feeds into the canonical Match
// aggregate. Each supported source carries its own coordinate frame; all
// events come out in canonical 105×68 meters, ordered by timestamp.
package ingest

import (
	"encoding/json"
	"sort"

	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/match"
	"github.com/pitchlab/tactics.report/internal/pitch"
)

// Source names a feed provider's coordinate convention.
type Source string

const (
	// SourceStatsBomb feeds use a 120×80 pitch grid.
	SourceStatsBomb Source = "statsbomb"
	// SourceMetrica feeds use normalized coordinates in [0,1].
	SourceMetrica Source = "metrica"
	// SourceCanonical feeds are already in canonical meters.
	SourceCanonical Source = "canonical"
)

// Valid reports whether s is a supported source.
func (s Source) Valid() bool {
	switch s {
	case SourceStatsBomb, SourceMetrica, SourceCanonical:
		return true
	}
	return false
}

// feedMatch mirrors the canonical JSON feed envelope.
type feedMatch struct {
	MatchID     string      `json:"match_id"`
	HomeTeamID  string      `json:"home_team_id"`
	AwayTeamID  string      `json:"away_team_id"`
	Competition string      `json:"competition,omitempty"`
	Season      string      `json:"season,omitempty"`
	MatchDate   string      `json:"match_date,omitempty"`
	Events      []feedEvent `json:"events"`
}

type feedEvent struct {
	EventID   string   `json:"event_id"`
	Kind      string   `json:"kind"`
	Timestamp float64  `json:"timestamp"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	EndX      *float64 `json:"end_x,omitempty"`
	EndY      *float64 `json:"end_y,omitempty"`
	PlayerID  string   `json:"player_id"`
	TeamID    string   `json:"team_id"`
}

// ParseFeed decodes a feed document and builds the sealed canonical
// aggregate. Schema violations, unknown kinds, unknown teams and negative
// timestamps are all BadInput.
func ParseFeed(data []byte, source Source) (*match.Match, error) {
	if !source.Valid() {
		return nil, fault.New(fault.BadInput, "unknown feed source %q", source)
	}

	var raw feedMatch
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fault.Wrap(fault.BadInput, err, "feed document")
	}
	if raw.MatchID == "" || raw.HomeTeamID == "" || raw.AwayTeamID == "" {
		return nil, fault.New(fault.BadInput, "feed needs match_id, home_team_id and away_team_id")
	}
	if raw.HomeTeamID == raw.AwayTeamID {
		return nil, fault.New(fault.BadInput, "match %s has identical team ids", raw.MatchID)
	}

	m := match.NewMatch(raw.MatchID, raw.HomeTeamID, raw.AwayTeamID)
	m.Competition = raw.Competition
	m.Season = raw.Season
	m.MatchDate = raw.MatchDate

	events := make([]feedEvent, len(raw.Events))
	copy(events, raw.Events)
	sort.SliceStable(events, func(i, j int) bool { return events[i].Timestamp < events[j].Timestamp })

	seen := make(map[string]bool, len(events))
	for i, fe := range events {
		if fe.EventID == "" {
			return nil, fault.New(fault.BadInput, "event %d has no event_id", i)
		}
		if seen[fe.EventID] {
			return nil, fault.New(fault.BadInput, "duplicate event id %s", fe.EventID)
		}
		seen[fe.EventID] = true
		if fe.Timestamp < 0 {
			return nil, fault.New(fault.BadInput, "event %s has negative timestamp %g", fe.EventID, fe.Timestamp)
		}

		ev := match.Event{
			EventID:   fe.EventID,
			Kind:      match.EventKind(fe.Kind),
			Timestamp: fe.Timestamp,
			Location:  convert(source, fe.X, fe.Y),
			PlayerID:  fe.PlayerID,
			TeamID:    fe.TeamID,
		}
		if fe.EndX != nil && fe.EndY != nil {
			end := convert(source, *fe.EndX, *fe.EndY)
			ev.End = &end
		} else if fe.EndX != nil || fe.EndY != nil {
			return nil, fault.New(fault.BadInput, "event %s has a partial end coordinate", fe.EventID)
		}

		if err := m.AppendEvent(ev); err != nil {
			return nil, err
		}
	}

	m.Seal()
	opsf("ingested match %s with %d events from %s", m.MatchID, len(m.Events), source)
	return m, nil
}

func convert(source Source, x, y float64) pitch.Point {
	switch source {
	case SourceStatsBomb:
		return pitch.FromSourceA(x, y)
	case SourceMetrica:
		return pitch.FromNormalized(x, y)
	default:
		return pitch.Point{X: x, Y: y}
	}
}
