package track

import (
	"math"
	"sort"

	"github.com/pitchlab/tactics.report/internal/config"
	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/units"
)

// StabilizerConfig holds the stabilizer tunables. Zero values mean "use the
// documented default"; build one from the tuning config in production.
type StabilizerConfig struct {
	SmoothingWindow     int     // Savitzky–Golay window (odd, >= polyorder+2)
	SmoothingPolyorder  int     // Savitzky–Golay polynomial order
	MinTrackFrames      int     // drop tracks shorter than this
	MergeTimeGapFrames  int     // max frame gap between mergeable fragments
	MergeDistanceMeters float64 // max endpoint distance between mergeable fragments
	MaxSpeedKmh         float64 // instantaneous speed ceiling
	ClipOutlierSpeed    bool    // clip displacements instead of flagging frames
}

// StabilizerConfigFromTuning builds a StabilizerConfig from a loaded
// TuningConfig.
func StabilizerConfigFromTuning(cfg *config.TuningConfig) StabilizerConfig {
	return StabilizerConfig{
		SmoothingWindow:     cfg.GetSmoothingWindow(),
		SmoothingPolyorder:  cfg.GetSmoothingPolyorder(),
		MinTrackFrames:      cfg.GetMinTrackFrames(),
		MergeTimeGapFrames:  cfg.GetMergeTimeGapFrames(),
		MergeDistanceMeters: cfg.GetMergeDistanceMeters(),
		MaxSpeedKmh:         cfg.GetMaxSpeedKmh(),
		ClipOutlierSpeed:    cfg.GetClipOutlierSpeed(),
	}
}

// DefaultStabilizerConfig returns the documented defaults without requiring
// the tuning file.
func DefaultStabilizerConfig() StabilizerConfig {
	return StabilizerConfigFromTuning(config.EmptyTuningConfig())
}

func (c *StabilizerConfig) applyDefaults() {
	d := DefaultStabilizerConfig()
	if c.SmoothingWindow == 0 {
		c.SmoothingWindow = d.SmoothingWindow
	}
	if c.SmoothingPolyorder == 0 {
		c.SmoothingPolyorder = d.SmoothingPolyorder
	}
	if c.MinTrackFrames == 0 {
		c.MinTrackFrames = d.MinTrackFrames
	}
	if c.MergeTimeGapFrames == 0 {
		c.MergeTimeGapFrames = d.MergeTimeGapFrames
	}
	if c.MergeDistanceMeters == 0 {
		c.MergeDistanceMeters = d.MergeDistanceMeters
	}
	if c.MaxSpeedKmh == 0 {
		c.MaxSpeedKmh = d.MaxSpeedKmh
	}
}

// Stabilizer cleans raw tracker output: per-track smoothing, fragment
// drop/merge with dense renumbering, then outlier-speed flagging or
// clipping. See Process for the exact pipeline order.
type Stabilizer struct {
	cfg    StabilizerConfig
	smooth *SavGol
}

// NewStabilizer builds a stabilizer, validating the smoothing parameters.
func NewStabilizer(cfg StabilizerConfig) (*Stabilizer, error) {
	cfg.applyDefaults()
	sg, err := NewSavGol(cfg.SmoothingWindow, cfg.SmoothingPolyorder)
	if err != nil {
		return nil, fault.Wrap(fault.BadInput, err, "stabilizer smoothing config")
	}
	return &Stabilizer{cfg: cfg, smooth: sg}, nil
}

// Config returns the effective configuration after defaulting.
func (s *Stabilizer) Config() StabilizerConfig { return s.cfg }

// fragment is one contiguous run of points for a single raw track id,
// ordered by frame.
type fragment struct {
	kind   ObjectKind
	points []Point
}

func (f *fragment) first() Point { return f.points[0] }
func (f *fragment) last() Point  { return f.points[len(f.points)-1] }

// Process runs the full stabilization pipeline. Input order does not
// matter; output is grouped by new track id (dense from 1) with frames
// ascending within each track. Duplicate (track_id, frame_id) pairs are
// rejected with BadInput. An empty input returns empty output.
func (s *Stabilizer) Process(points []Point, fps float64) ([]Point, error) {
	if len(points) == 0 {
		return nil, nil
	}
	if fps <= 0 {
		return nil, fault.New(fault.BadInput, "fps must be positive, got %v", fps)
	}

	byTrack := make(map[int][]Point)
	seen := make(map[[2]int]bool, len(points))
	for _, p := range points {
		key := [2]int{p.TrackID, p.FrameID}
		if seen[key] {
			return nil, fault.New(fault.BadInput, "duplicate (track_id=%d, frame_id=%d)", p.TrackID, p.FrameID)
		}
		seen[key] = true
		byTrack[p.TrackID] = append(byTrack[p.TrackID], p)
	}

	// Stage 1: smooth each track independently.
	ids := make([]int, 0, len(byTrack))
	for id := range byTrack {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	fragments := make([]*fragment, 0, len(ids))
	for _, id := range ids {
		pts := byTrack[id]
		sort.Slice(pts, func(i, j int) bool { return pts[i].FrameID < pts[j].FrameID })
		s.smoothTrack(pts)
		fragments = append(fragments, &fragment{kind: pts[0].Kind, points: pts})
	}

	// Stage 2: clean. Short tracks go first so they never seed a merge.
	kept := fragments[:0]
	dropped := 0
	for _, f := range fragments {
		if len(f.points) < s.cfg.MinTrackFrames {
			dropped++
			continue
		}
		kept = append(kept, f)
	}
	if dropped > 0 {
		diagf("dropped %d ghost tracks shorter than %d frames", dropped, s.cfg.MinTrackFrames)
	}
	merged := s.mergeFragments(kept)

	// Dense, stable renumbering from 1 ordered by first frame then old order.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].first().FrameID < merged[j].first().FrameID
	})

	var out []Point
	maxSpeedMps := units.KmhToMps(s.cfg.MaxSpeedKmh)
	for i, f := range merged {
		newID := i + 1
		for j := range f.points {
			f.points[j].TrackID = newID
		}
		// Stage 3: outlier speed per track.
		s.handleOutliers(f.points, fps, maxSpeedMps)
		out = append(out, f.points...)
	}

	tracef("stabilized %d raw points into %d tracks (%d points)", len(points), len(merged), len(out))
	return out, nil
}

// smoothTrack applies the Savitzky–Golay filter to the x and y series of one
// ordered track in place.
func (s *Stabilizer) smoothTrack(pts []Point) {
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i] = p.X
		ys[i] = p.Y
	}
	xs = s.smooth.Smooth(xs)
	ys = s.smooth.Smooth(ys)
	for i := range pts {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
}

// mergeFragments greedily chains fragments of the same object kind whose
// frame gap is within [0, MergeTimeGapFrames] and whose endpoint distance is
// within MergeDistanceMeters. Fragments are considered in start-frame order;
// a fragment absorbed into another is not revisited.
func (s *Stabilizer) mergeFragments(frags []*fragment) []*fragment {
	sort.SliceStable(frags, func(i, j int) bool {
		return frags[i].first().FrameID < frags[j].first().FrameID
	})

	var out []*fragment
	absorbed := make([]bool, len(frags))
	for i := range frags {
		if absorbed[i] {
			continue
		}
		cur := frags[i]
		for {
			next := -1
			for j := i + 1; j < len(frags); j++ {
				if absorbed[j] || frags[j].kind != cur.kind {
					continue
				}
				gap := frags[j].first().FrameID - cur.last().FrameID
				if gap < 0 || gap > s.cfg.MergeTimeGapFrames {
					continue
				}
				if cur.last().Pos().Dist(frags[j].first().Pos()) > s.cfg.MergeDistanceMeters {
					continue
				}
				next = j
				break
			}
			if next < 0 {
				break
			}
			nf := frags[next]
			tracef("merging fragment starting at frame %d into track ending at frame %d (gap %d)",
				nf.first().FrameID, cur.last().FrameID, nf.first().FrameID-cur.last().FrameID)
			pts := nf.points
			// A zero gap means both fragments share a frame; keep the
			// earlier observation to preserve the no-duplicate invariant.
			if nf.first().FrameID == cur.last().FrameID {
				pts = pts[1:]
			}
			cur.points = append(cur.points, pts...)
			absorbed[next] = true
		}
		out = append(out, cur)
	}
	return out
}

// handleOutliers flags or clips frames whose instantaneous speed exceeds the
// configured maximum. In clip mode the displacement is rescaled to the
// largest allowed per-frame step and the corrected position carries forward
// into the next frame's speed.
func (s *Stabilizer) handleOutliers(pts []Point, fps, maxSpeedMps float64) {
	if len(pts) < 2 {
		return
	}
	maxStep := maxSpeedMps / fps
	flagged := 0
	for i := 1; i < len(pts); i++ {
		df := float64(pts[i].FrameID - pts[i-1].FrameID)
		if df <= 0 {
			df = 1
		}
		dt := df / fps
		if dt < 1e-6 {
			dt = 1e-6
		}
		dx := pts[i].X - pts[i-1].X
		dy := pts[i].Y - pts[i-1].Y
		dist := math.Hypot(dx, dy)
		if dist/dt <= maxSpeedMps {
			continue
		}
		if s.cfg.ClipOutlierSpeed {
			scale := maxStep * df / dist
			pts[i].X = pts[i-1].X + dx*scale
			pts[i].Y = pts[i-1].Y + dy*scale
		} else {
			pts[i].SpeedFlagged = true
		}
		flagged++
	}
	if flagged > 0 {
		mode := "flagged"
		if s.cfg.ClipOutlierSpeed {
			mode = "clipped"
		}
		diagf("track %d: %s %d over-speed frames (> %.1f km/h)", pts[0].TrackID, mode, flagged, s.cfg.MaxSpeedKmh)
	}
}
