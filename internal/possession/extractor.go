package possession

import (
	"github.com/google/uuid"

	"github.com/pitchlab/tactics.report/internal/config"
	"github.com/pitchlab/tactics.report/internal/match"
)

// Possession-ending kinds. These include source-feed kinds beyond the
// canonical closed set; the extractor matches on the raw kind string so
// richer feeds break sequences correctly.
var sequenceEnders = map[match.EventKind]bool{
	"ball_lost":        true,
	"ball_out":         true,
	match.Goal:         true,
	"half_end":         true,
	"foul_won":         true,
	match.Clearance:    true,
	match.Interception: true,
}

// Turnover kinds also close a sequence and mark possession lost.
var turnoverKinds = map[match.EventKind]bool{
	match.Interception: true,
	match.Tackle:       true,
	"dispossessed":     true,
	"ball_recovery":    true,
}

// ExtractorConfig holds the segmentation tunables.
type ExtractorConfig struct {
	MinEvents int     // sequences shorter than this are discarded
	FPS       float64 // frame rate used to derive start/end frames from timestamps
}

// ExtractorConfigFromTuning builds the config from the tuning file.
func ExtractorConfigFromTuning(cfg *config.TuningConfig) ExtractorConfig {
	return ExtractorConfig{MinEvents: cfg.GetMinSequenceEvents(), FPS: 25}
}

// Extractor segments time-ordered canonical events into possession
// sequences.
type Extractor struct {
	cfg ExtractorConfig
}

// NewExtractor creates an extractor, defaulting zero config fields.
func NewExtractor(cfg ExtractorConfig) *Extractor {
	if cfg.MinEvents <= 0 {
		cfg.MinEvents = 3
	}
	if cfg.FPS <= 0 {
		cfg.FPS = 25
	}
	return &Extractor{cfg: cfg}
}

// Extract walks the events in order and emits sequences. A sequence closes
// when the acting team changes, when an ending kind occurs, or when a
// turnover kind occurs; the closing event belongs to the sequence it ends.
// Sequences with fewer than MinEvents events are dropped.
func (x *Extractor) Extract(matchID string, events []match.Event) []*Sequence {
	var out []*Sequence
	var cur []match.Event
	curTeam := ""

	flush := func(lost bool) {
		if len(cur) >= x.cfg.MinEvents {
			out = append(out, x.newSequence(matchID, curTeam, cur, lost))
		} else if len(cur) > 0 {
			diagf("dropping %d-event spell for team %s, below minimum %d", len(cur), curTeam, x.cfg.MinEvents)
		}
		cur = nil
		curTeam = ""
	}

	for _, e := range events {
		if curTeam != "" && e.TeamID != curTeam {
			flush(true)
		}
		if curTeam == "" {
			curTeam = e.TeamID
		}
		cur = append(cur, e)

		if sequenceEnders[e.Kind] || turnoverKinds[e.Kind] {
			flush(turnoverKinds[e.Kind])
		}
	}
	flush(false)

	return out
}

func (x *Extractor) newSequence(matchID, teamID string, events []match.Event, lost bool) *Sequence {
	evs := make([]match.Event, len(events))
	copy(evs, events)
	s := &Sequence{
		SequenceID:   uuid.NewString(),
		MatchID:      matchID,
		TeamID:       teamID,
		StartFrame:   int(evs[0].Timestamp * x.cfg.FPS),
		EndFrame:     int(evs[len(evs)-1].Timestamp * x.cfg.FPS),
		Events:       evs,
		ClusterLabel: -1,
	}
	if lost {
		s.possessionLost = true
	}
	return s
}
