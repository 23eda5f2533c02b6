package metrics

import (
	"context"
	"math"
	"sync"

	"github.com/pitchlab/tactics.report/internal/config"
	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/pitch"
)

// normalizationEpsilon keeps the per-cell normalization finite when neither
// team can reach a cell.
const normalizationEpsilon = 1e-10

// PlayerPosition is one player's state inside a MatchFrame.
type PlayerPosition struct {
	PlayerID string
	TeamID   string
	Pos      pitch.Point
	Velocity *pitch.Point // optional, m/s components
}

// MatchFrame is the pitch-control input: every visible player, the ball and
// the grid resolution for this frame.
type MatchFrame struct {
	FrameID    int
	HomeTeamID string
	AwayTeamID string
	Players    []PlayerPosition
	Ball       *pitch.Point
	Dims       pitch.Dimensions
	GridH      int
	GridW      int
}

// ControlGrid holds the per-team normalized control surfaces, row-major
// (H rows over pitch width, W columns over pitch length).
type ControlGrid struct {
	FrameID       int
	H, W          int
	Home          []float64
	Away          []float64
	HomeDominance float64
	AwayDominance float64
}

// At returns the (row, col) cell of a surface.
func (g *ControlGrid) At(surface []float64, row, col int) float64 {
	return surface[row*g.W+col]
}

// PitchControlConfig holds the time-to-intercept model parameters.
type PitchControlConfig struct {
	GridH           int
	GridW           int
	ReactionTimeSec float64
	MaxSpeedMps     float64
}

// PitchControlConfigFromTuning builds the model config from the tuning file.
func PitchControlConfigFromTuning(cfg *config.TuningConfig) PitchControlConfig {
	return PitchControlConfig{
		GridH:           cfg.GetControlGridHeight(),
		GridW:           cfg.GetControlGridWidth(),
		ReactionTimeSec: cfg.GetReactionTimeSec(),
		MaxSpeedMps:     cfg.GetPlayerMaxSpeedMps(),
	}
}

// DefaultPitchControlConfig returns the documented defaults (24×32 grid,
// 0.7 s reaction, 5 m/s).
func DefaultPitchControlConfig() PitchControlConfig {
	return PitchControlConfigFromTuning(config.EmptyTuningConfig())
}

// PitchControlEngine computes frame-level control grids under a
// time-to-intercept model: each player's influence on a cell decays
// exponentially with the time needed to reach it, each team's surface is the
// pointwise maximum over its players, and the two surfaces are normalized
// per cell.
type PitchControlEngine struct {
	cfg PitchControlConfig
}

// NewPitchControlEngine creates an engine, defaulting any zero config field.
func NewPitchControlEngine(cfg PitchControlConfig) *PitchControlEngine {
	d := DefaultPitchControlConfig()
	if cfg.GridH <= 0 {
		cfg.GridH = d.GridH
	}
	if cfg.GridW <= 0 {
		cfg.GridW = d.GridW
	}
	if cfg.ReactionTimeSec <= 0 {
		cfg.ReactionTimeSec = d.ReactionTimeSec
	}
	if cfg.MaxSpeedMps <= 0 {
		cfg.MaxSpeedMps = d.MaxSpeedMps
	}
	return &PitchControlEngine{cfg: cfg}
}

// Compute returns the normalized control grids for one frame. A team with no
// players on the frame contributes a zero surface.
func (e *PitchControlEngine) Compute(frame MatchFrame) (*ControlGrid, error) {
	h, w := frame.GridH, frame.GridW
	if h <= 0 {
		h = e.cfg.GridH
	}
	if w <= 0 {
		w = e.cfg.GridW
	}
	dims := frame.Dims
	if dims.Length <= 0 || dims.Width <= 0 {
		dims = pitch.StandardDimensions()
	}

	grid := &ControlGrid{
		FrameID: frame.FrameID,
		H:       h,
		W:       w,
		Home:    make([]float64, h*w),
		Away:    make([]float64, h*w),
	}

	var home, away []PlayerPosition
	for _, p := range frame.Players {
		switch p.TeamID {
		case frame.HomeTeamID:
			home = append(home, p)
		case frame.AwayTeamID:
			away = append(away, p)
		default:
			return nil, fault.New(fault.BadInput, "frame %d: player %s has team %q outside the match", frame.FrameID, p.PlayerID, p.TeamID)
		}
	}

	// Linearly spaced cell centers over the pitch. Corners get no special
	// treatment: a corner cell simply has the corner players nearest.
	for row := 0; row < h; row++ {
		cy := (float64(row) + 0.5) / float64(h) * dims.Width
		for col := 0; col < w; col++ {
			cx := (float64(col) + 0.5) / float64(w) * dims.Length
			cell := pitch.Point{X: cx, Y: cy}

			hRaw := e.teamInfluence(home, cell)
			aRaw := e.teamInfluence(away, cell)
			total := hRaw + aRaw + normalizationEpsilon

			i := row*w + col
			grid.Home[i] = hRaw / total
			grid.Away[i] = aRaw / total
		}
	}

	for i := range grid.Home {
		grid.HomeDominance += grid.Home[i]
		grid.AwayDominance += grid.Away[i]
	}
	n := float64(len(grid.Home))
	grid.HomeDominance /= n
	grid.AwayDominance /= n

	return grid, nil
}

// teamInfluence is the pointwise maximum influence over the team's players:
// the dominant player wins the cell.
func (e *PitchControlEngine) teamInfluence(players []PlayerPosition, cell pitch.Point) float64 {
	best := 0.0
	for _, p := range players {
		tReach := e.cfg.ReactionTimeSec + p.Pos.Dist(cell)/e.cfg.MaxSpeedMps
		infl := math.Exp(-tReach / 2)
		if infl > best {
			best = infl
		}
	}
	return best
}

// ComputeFrames evaluates many frames concurrently with bounded workers,
// returning grids in frame order. Cancellation is honored between frames.
func (e *PitchControlEngine) ComputeFrames(ctx context.Context, frames []MatchFrame, workers int) ([]*ControlGrid, error) {
	if workers < 1 {
		workers = 1
	}
	out := make([]*ControlGrid, len(frames))
	errs := make([]error, len(frames))

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i := range frames {
		if err := ctx.Err(); err != nil {
			return nil, fault.Wrap(fault.Cancelled, err, "pitch control batch")
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			out[i], errs[i] = e.Compute(frames[i])
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
