// Package workflow binds each job kind to its pipeline stage. One handler
// owns each kind; all cross-stage state flows through the artifact store,
// the sqlite stores and the job records.
package workflow

import (
	"sort"
	"strconv"

	"github.com/pitchlab/tactics.report/internal/artifact"
	"github.com/pitchlab/tactics.report/internal/config"
	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/jobs"
	"github.com/pitchlab/tactics.report/internal/phase"
	"github.com/pitchlab/tactics.report/internal/ports"
	"github.com/pitchlab/tactics.report/internal/storage/sqlite"
	"github.com/pitchlab/tactics.report/internal/track"
)

// Deps is the construction-time dependency record for every workflow.
// Detector, Tracker, Index and Analysis are optional external
// collaborators; workflows that need a missing one fail their jobs
// instead of crashing the process.
type Deps struct {
	DB         *sqlite.DB
	Store      artifact.Store
	Tuning     *config.TuningConfig
	Classifier phase.Classifier

	Detector ports.Detector
	Tracker  ports.Tracker
	Index    ports.VectorIndex
	Analysis ports.AnalysisProvider
}

// RegisterAll binds every workflow to the dispatcher.
func RegisterAll(d *jobs.Dispatcher, deps Deps) error {
	for kind, h := range map[jobs.Kind]jobs.Handler{
		jobs.KindIngestion:           Ingestion(deps),
		jobs.KindVideoProcessing:     VideoProcessing(deps),
		jobs.KindCalibration:         Calibration(deps),
		jobs.KindMetrics:             Metrics(deps),
		jobs.KindPhaseClassification: PhaseClassification(deps),
		jobs.KindPatternDetection:    PatternDetection(deps),
		jobs.KindAnalysis:            Analysis(deps),
		jobs.KindReport:              Report(deps),
	} {
		if err := d.Register(kind, h); err != nil {
			return err
		}
	}
	return nil
}

// payloadString reads a required string field from a job payload.
func payloadString(payload map[string]any, key string) (string, error) {
	v, ok := payload[key].(string)
	if !ok || v == "" {
		return "", fault.New(fault.BadInput, "payload requires string %q", key)
	}
	return v, nil
}

func payloadStringOr(payload map[string]any, key, def string) string {
	if v, ok := payload[key].(string); ok && v != "" {
		return v
	}
	return def
}

func payloadBool(payload map[string]any, key string) bool {
	v, ok := payload[key].(bool)
	return ok && v
}

// TableToPoints converts a stored trajectory table into tracker points.
// Numeric player ids become track ids directly; other ids are renumbered
// in first-seen order so the stabilizer sees dense integers.
func TableToPoints(t *artifact.Table) []track.Point {
	assigned := map[string]int{}
	next := 1
	pts := make([]track.Point, 0, len(t.FrameID))
	for i := range t.FrameID {
		id, err := strconv.Atoi(t.PlayerID[i])
		if err != nil {
			var ok bool
			if id, ok = assigned[t.PlayerID[i]]; !ok {
				// Offset keeps synthetic ids clear of numeric ones.
				id = 100000 + next
				next++
				assigned[t.PlayerID[i]] = id
			}
		}
		p := track.Point{
			FrameID:    int(t.FrameID[i]),
			TrackID:    id,
			X:          t.X[i],
			Y:          t.Y[i],
			Kind:       track.ObjectKind(t.ObjectKind[i]),
			Confidence: t.Confidence[i],
			Timestamp:  t.Timestamp[i],
		}
		if len(t.Team) == len(t.FrameID) {
			p.TeamID = t.Team[i]
		}
		pts = append(pts, p)
	}
	return pts
}

// PointsToTable converts stabilized points back into the columnar form,
// ordered by frame id.
func PointsToTable(pts []track.Point) *artifact.Table {
	ordered := make([]track.Point, len(pts))
	copy(ordered, pts)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].FrameID != ordered[j].FrameID {
			return ordered[i].FrameID < ordered[j].FrameID
		}
		return ordered[i].TrackID < ordered[j].TrackID
	})

	t := &artifact.Table{
		FrameID:    make([]int64, len(ordered)),
		PlayerID:   make([]string, len(ordered)),
		X:          make([]float64, len(ordered)),
		Y:          make([]float64, len(ordered)),
		ObjectKind: make([]string, len(ordered)),
		Confidence: make([]float64, len(ordered)),
		Timestamp:  make([]float64, len(ordered)),
		Team:       make([]string, len(ordered)),
	}
	for i, p := range ordered {
		t.FrameID[i] = int64(p.FrameID)
		t.PlayerID[i] = strconv.Itoa(p.TrackID)
		t.X[i] = p.X
		t.Y[i] = p.Y
		t.ObjectKind[i] = string(p.Kind)
		t.Confidence[i] = p.Confidence
		t.Timestamp[i] = p.Timestamp
		t.Team[i] = p.TeamID
	}
	return t
}
