// Package testutil provides deterministic synthetic fixtures for
// pipeline tests: canonical event feeds and columnar tracking tables.
// All generators are pure functions of their arguments, so fixtures are
// reproducible across runs.
package testutil

import (
	"encoding/json"
	"fmt"

	"github.com/pitchlab/tactics.report/internal/artifact"
)

// feed fixture teams and players.
const (
	HomeTeamID = "home"
	AwayTeamID = "away"
)

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

func f(v float64) *float64 { return &v }

// CanonicalFeed builds a canonical-coordinate feed document with two home
// possessions (the second ending in a goal) and one away spell, enough
// for sequence extraction and PPDA on both teams.
func CanonicalFeed(matchID string) []byte {
	events := []feedEvent{
		{EventID: "e1", Kind: "pass", Timestamp: 1, X: 20, Y: 30, EndX: f(30), EndY: f(32), PlayerID: "1", TeamID: HomeTeamID},
		{EventID: "e2", Kind: "pass", Timestamp: 3, X: 30, Y: 32, EndX: f(45), EndY: f(30), PlayerID: "2", TeamID: HomeTeamID},
		{EventID: "e3", Kind: "pass", Timestamp: 5, X: 45, Y: 30, EndX: f(60), EndY: f(35), PlayerID: "3", TeamID: HomeTeamID},
		{EventID: "e4", Kind: "interception", Timestamp: 7, X: 60, Y: 35, PlayerID: "21", TeamID: AwayTeamID},
		{EventID: "e5", Kind: "pass", Timestamp: 9, X: 45, Y: 33, EndX: f(55), EndY: f(40), PlayerID: "22", TeamID: AwayTeamID},
		{EventID: "e6", Kind: "carry", Timestamp: 11, X: 55, Y: 40, EndX: f(62), EndY: f(42), PlayerID: "22", TeamID: AwayTeamID},
		{EventID: "e7", Kind: "pass", Timestamp: 13, X: 62, Y: 42, EndX: f(70), EndY: f(38), PlayerID: "23", TeamID: AwayTeamID},
		{EventID: "e8", Kind: "tackle", Timestamp: 15, X: 70, Y: 38, PlayerID: "4", TeamID: HomeTeamID},
		{EventID: "e9", Kind: "pass", Timestamp: 17, X: 35, Y: 30, EndX: f(50), EndY: f(28), PlayerID: "1", TeamID: HomeTeamID},
		{EventID: "e10", Kind: "carry", Timestamp: 19, X: 50, Y: 28, EndX: f(70), EndY: f(30), PlayerID: "2", TeamID: HomeTeamID},
		{EventID: "e11", Kind: "pass", Timestamp: 21, X: 70, Y: 30, EndX: f(88), EndY: f(34), PlayerID: "2", TeamID: HomeTeamID},
		{EventID: "e12", Kind: "shot", Timestamp: 23, X: 88, Y: 34, PlayerID: "9", TeamID: HomeTeamID},
		{EventID: "e13", Kind: "goal", Timestamp: 24, X: 88, Y: 34, PlayerID: "9", TeamID: HomeTeamID},
	}
	doc := map[string]any{
		"match_id":     matchID,
		"home_team_id": HomeTeamID,
		"away_team_id": AwayTeamID,
		"competition":  "league",
		"events":       events,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return data
}

// TrackingTable builds a tracking table with the given number of players
// per team plus the ball. Every object moves at 1 m/s along the x axis
// from a deterministic starting position, sampled at fps over frames.
func TrackingTable(players, frames int, fps float64) *artifact.Table {
	t := &artifact.Table{}
	addRow := func(frame int, playerID string, x, y float64, kind, team string) {
		t.FrameID = append(t.FrameID, int64(frame))
		t.PlayerID = append(t.PlayerID, playerID)
		t.X = append(t.X, x)
		t.Y = append(t.Y, y)
		t.ObjectKind = append(t.ObjectKind, kind)
		t.Confidence = append(t.Confidence, 0.9)
		t.Timestamp = append(t.Timestamp, float64(frame)/fps)
		t.Team = append(t.Team, team)
	}

	for frame := 0; frame < frames; frame++ {
		dx := float64(frame) / fps
		for p := 0; p < players; p++ {
			y := 10 + 5*float64(p)
			addRow(frame, fmt.Sprintf("%d", p+1), 10+dx, y, "player", HomeTeamID)
			addRow(frame, fmt.Sprintf("%d", 20+p+1), 95-dx, y, "player", AwayTeamID)
		}
		addRow(frame, "99", 52.5+dx/2, 34, "ball", "")
	}
	return t
}
