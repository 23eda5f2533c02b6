// Package infer derives possession-level events from stabilized tracking
// data alone, with no event feed: who carries the ball, completed passes,
// turnovers and pressure moments. It is a heuristic state machine over the
// ball-carrier, swept frame by frame.
package infer

import (
	"math"
	"sort"

	"github.com/pitchlab/tactics.report/internal/config"
	"github.com/pitchlab/tactics.report/internal/pitch"
	"github.com/pitchlab/tactics.report/internal/track"
)

// Kind is the closed set of inferred event kinds.
type Kind string

const (
	Possession       Kind = "possession"
	PassAttempt      Kind = "pass_attempt"
	PassComplete     Kind = "pass_complete"
	PressureMoment   Kind = "pressure"
	LossOfPossession Kind = "loss_of_possession"
)

// Event is one inferred event. FrameEnd is the frame the event resolved at;
// for instantaneous events FrameStart == FrameEnd.
type Event struct {
	FrameStart int         `json:"frame_start"`
	FrameEnd   int         `json:"frame_end"`
	Kind       Kind        `json:"kind"`
	PlayerID   int         `json:"player_id"`
	ToPlayerID int         `json:"to_player_id,omitempty"`
	TeamID     string      `json:"team_id"`
	Location   pitch.Point `json:"location"`
	Confidence float64     `json:"confidence"`
	PlayerName string      `json:"player_name,omitempty"`
}

// NameResolver resolves a track id to a player name from a lineup. The
// inferencer stays independent of any storage layer; callers that want
// names pass a resolver explicitly.
type NameResolver interface {
	ResolveName(trackID int) (string, bool)
}

// Config holds the inference thresholds.
type Config struct {
	BallProximityMeters float64 // carrier acquisition distance
	PassMinDistance     float64 // minimum carrier displacement for a pass
	PressureDistance    float64 // opponent distance that counts as pressure
}

// ConfigFromTuning builds the thresholds from the tuning file.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		BallProximityMeters: cfg.GetBallProximityMeters(),
		PassMinDistance:     cfg.GetPassMinDistance(),
		PressureDistance:    cfg.GetPressureDistance(),
	}
}

// DefaultConfig returns the documented defaults (1.5 m, 3.0 m, 2.0 m).
func DefaultConfig() Config {
	return ConfigFromTuning(config.EmptyTuningConfig())
}

// pressureConfidence is the fixed confidence attached to pressure events.
const pressureConfidence = 0.8

// carrier is the current ball-carrier state.
type carrier struct {
	trackID    int
	teamID     string
	startFrame int
	startX     float64
	startY     float64
}

// Inferencer runs the carrier state machine over stabilized points.
type Inferencer struct {
	cfg      Config
	resolver NameResolver // optional
}

// New creates an inferencer, defaulting zero thresholds.
func New(cfg Config) *Inferencer {
	d := DefaultConfig()
	if cfg.BallProximityMeters <= 0 {
		cfg.BallProximityMeters = d.BallProximityMeters
	}
	if cfg.PassMinDistance <= 0 {
		cfg.PassMinDistance = d.PassMinDistance
	}
	if cfg.PressureDistance <= 0 {
		cfg.PressureDistance = d.PressureDistance
	}
	return &Inferencer{cfg: cfg}
}

// WithResolver attaches a lineup name resolver; inferred events then carry
// resolved player names.
func (inf *Inferencer) WithResolver(r NameResolver) *Inferencer {
	inf.resolver = r
	return inf
}

// Infer sweeps all frames in ascending order and returns events in
// non-decreasing FrameEnd order. Simultaneous pressure events are ordered
// by opposing player id ascending.
func (inf *Inferencer) Infer(points []track.Point) []Event {
	byFrame := make(map[int][]track.Point)
	for _, p := range points {
		byFrame[p.FrameID] = append(byFrame[p.FrameID], p)
	}
	frames := make([]int, 0, len(byFrame))
	for f := range byFrame {
		frames = append(frames, f)
	}
	sort.Ints(frames)

	var events []Event
	var cur *carrier

	for _, f := range frames {
		pts := byFrame[f]

		var ball *track.Point
		for i := range pts {
			if pts[i].Kind.IsBall() {
				ball = &pts[i]
				break
			}
		}
		if ball == nil {
			continue
		}

		closest, dist := closestNonBall(pts, ball)
		if closest == nil {
			continue
		}

		switch {
		case cur == nil:
			if dist <= inf.cfg.BallProximityMeters {
				cur = &carrier{
					trackID:    closest.TrackID,
					teamID:     closest.TeamID,
					startFrame: f,
					startX:     closest.X,
					startY:     closest.Y,
				}
				events = append(events, inf.event(Possession, cur.startFrame, f, cur.trackID, 0, cur.teamID, closest.Pos(), 1.0))
			}

		case dist <= inf.cfg.BallProximityMeters && closest.TrackID != cur.trackID:
			displacement := math.Hypot(closest.X-cur.startX, closest.Y-cur.startY)
			if closest.TeamID == cur.teamID {
				// A teammate touch below the pass distance is dribble
				// continuation, not a pass.
				if displacement >= inf.cfg.PassMinDistance {
					events = append(events, inf.event(PassComplete, cur.startFrame, f, cur.trackID, closest.TrackID, cur.teamID, closest.Pos(), 1.0))
				}
			} else {
				if displacement >= inf.cfg.PassMinDistance {
					events = append(events, inf.event(PassAttempt, cur.startFrame, f, cur.trackID, 0, cur.teamID, closest.Pos(), 0.9))
				}
				events = append(events, inf.event(LossOfPossession, cur.startFrame, f, cur.trackID, closest.TrackID, cur.teamID, closest.Pos(), 1.0))
			}
			cur = &carrier{
				trackID:    closest.TrackID,
				teamID:     closest.TeamID,
				startFrame: f,
				startX:     closest.X,
				startY:     closest.Y,
			}
		}

		if cur != nil {
			events = append(events, inf.pressureEvents(pts, cur, f)...)
		}
	}

	return events
}

// pressureEvents emits one pressure event per opposing player within the
// pressure distance of the carrier this frame, ordered by player id.
func (inf *Inferencer) pressureEvents(pts []track.Point, cur *carrier, frame int) []Event {
	var carrierPt *track.Point
	for i := range pts {
		if pts[i].TrackID == cur.trackID && !pts[i].Kind.IsBall() {
			carrierPt = &pts[i]
			break
		}
	}
	if carrierPt == nil {
		return nil
	}

	var opponents []track.Point
	for _, p := range pts {
		if p.Kind.IsBall() || p.TeamID == "" || p.TeamID == cur.teamID {
			continue
		}
		if carrierPt.Pos().Dist(p.Pos()) <= inf.cfg.PressureDistance {
			opponents = append(opponents, p)
		}
	}
	sort.Slice(opponents, func(i, j int) bool { return opponents[i].TrackID < opponents[j].TrackID })

	out := make([]Event, 0, len(opponents))
	for _, opp := range opponents {
		out = append(out, inf.event(PressureMoment, frame, frame, opp.TrackID, cur.trackID, opp.TeamID, opp.Pos(), pressureConfidence))
	}
	return out
}

func (inf *Inferencer) event(kind Kind, start, end, playerID, toPlayerID int, teamID string, loc pitch.Point, conf float64) Event {
	e := Event{
		FrameStart: start,
		FrameEnd:   end,
		Kind:       kind,
		PlayerID:   playerID,
		ToPlayerID: toPlayerID,
		TeamID:     teamID,
		Location:   loc,
		Confidence: conf,
	}
	if inf.resolver != nil {
		if name, ok := inf.resolver.ResolveName(playerID); ok {
			e.PlayerName = name
		}
	}
	return e
}

// closestNonBall returns the nearest non-ball point to the ball and its
// distance, or nil when the frame has no other points.
func closestNonBall(pts []track.Point, ball *track.Point) (*track.Point, float64) {
	var best *track.Point
	bestDist := math.MaxFloat64
	for i := range pts {
		if pts[i].Kind.IsBall() {
			continue
		}
		d := ball.Pos().Dist(pts[i].Pos())
		if d < bestDist {
			best = &pts[i]
			bestDist = d
		}
	}
	return best, bestDist
}
