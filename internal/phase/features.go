package phase

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pitchlab/tactics.report/internal/metrics"
	"github.com/pitchlab/tactics.report/internal/pitch"
)

// FeatureDim is the fixed length of the per-frame feature vector. The
// ordering is part of the contract:
//
//	0  home_centroid_x     1  home_centroid_y
//	2  away_centroid_x     3  away_centroid_y
//	4  home_spread_x       5  home_spread_y
//	6  away_spread_x       7  away_spread_y
//	8  ball_x              9  ball_y
//	10 ball_vx             11 ball_vy
//	12 home_def_line_x     13 away_def_line_x
//	14 home_possession_probability
const FeatureDim = 15

// Fallbacks used when a team has no tracked players in a frame.
const (
	fallbackBallDistance = 100.0
	defLineExtremes      = 4
)

// ExtractFeatures computes the frame's feature vector. Ball velocity needs
// the previous frame's ball position and the frame rate; pass prev = nil
// for the first frame, which zeroes the velocity terms. The extraction is
// pure: identical inputs always produce identical vectors.
func ExtractFeatures(frame *metrics.MatchFrame, prev *metrics.MatchFrame, fps float64) []float64 {
	center := pitch.Point{X: frame.Dims.Length / 2, Y: frame.Dims.Width / 2}

	var home, away []pitch.Point
	for _, p := range frame.Players {
		switch p.TeamID {
		case frame.HomeTeamID:
			home = append(home, p.Pos)
		case frame.AwayTeamID:
			away = append(away, p.Pos)
		}
	}

	homeCent := centroidOr(home, center)
	awayCent := centroidOr(away, center)
	homeSpreadX, homeSpreadY := spreads(home)
	awaySpreadX, awaySpreadY := spreads(away)

	var vx, vy float64
	if prev != nil && fps > 0 {
		dt := float64(frame.FrameID-prev.FrameID) / fps
		if dt > 0 {
			vx = (frame.Ball.X - prev.Ball.X) / dt
			vy = (frame.Ball.Y - prev.Ball.Y) / dt
		}
	}

	dHome := minBallDistance(home, *frame.Ball)
	dAway := minBallDistance(away, *frame.Ball)

	v := make([]float64, FeatureDim)
	v[0], v[1] = homeCent.X, homeCent.Y
	v[2], v[3] = awayCent.X, awayCent.Y
	v[4], v[5] = homeSpreadX, homeSpreadY
	v[6], v[7] = awaySpreadX, awaySpreadY
	v[8], v[9] = frame.Ball.X, frame.Ball.Y
	v[10], v[11] = vx, vy
	v[12] = defensiveLineX(home, false, frame.Dims)
	v[13] = defensiveLineX(away, true, frame.Dims)
	v[14] = sigmoid((dAway - dHome) / 2)
	return v
}

func centroidOr(pts []pitch.Point, fallback pitch.Point) pitch.Point {
	if len(pts) == 0 {
		return fallback
	}
	var sx, sy float64
	for _, p := range pts {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(pts))
	return pitch.Point{X: sx / n, Y: sy / n}
}

// spreads returns the sample standard deviation per axis, 0 for fewer than
// two players.
func spreads(pts []pitch.Point) (float64, float64) {
	if len(pts) < 2 {
		return 0, 0
	}
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i] = p.X
		ys[i] = p.Y
	}
	return stat.StdDev(xs, nil), stat.StdDev(ys, nil)
}

func minBallDistance(pts []pitch.Point, ball pitch.Point) float64 {
	if len(pts) == 0 {
		return fallbackBallDistance
	}
	best := math.MaxFloat64
	for _, p := range pts {
		if d := p.Dist(ball); d < best {
			best = d
		}
	}
	return best
}

// defensiveLineX is the mean x of the team's 4 most defensive players:
// smallest x for the side attacking +x, largest x for the other side.
// Fewer than 4 players average what exists; an empty team sits at the
// pitch center.
func defensiveLineX(pts []pitch.Point, attacksNegativeX bool, dims pitch.Dimensions) float64 {
	if len(pts) == 0 {
		return dims.Length / 2
	}
	xs := make([]float64, len(pts))
	for i, p := range pts {
		xs[i] = p.X
	}
	sort.Float64s(xs)
	n := defLineExtremes
	if n > len(xs) {
		n = len(xs)
	}
	var sum float64
	if attacksNegativeX {
		for _, x := range xs[len(xs)-n:] {
			sum += x
		}
	} else {
		for _, x := range xs[:n] {
			sum += x
		}
	}
	return sum / float64(n)
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }
