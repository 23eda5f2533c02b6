package phase

import (
	"context"
	"sort"

	"github.com/pitchlab/tactics.report/internal/config"
	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/metrics"
)

// Builder sweeps match frames in ascending id and assembles a per-team
// phase sequence through a Classifier, batching inference calls.
type Builder struct {
	clf       Classifier
	batchSize int
	fps       float64
}

// NewBuilder creates a builder. Batch size comes from the tuning file
// (classify_batch_size, default 500).
func NewBuilder(clf Classifier, cfg *config.TuningConfig, fps float64) (*Builder, error) {
	if fps <= 0 {
		return nil, fault.New(fault.BadInput, "fps must be positive, got %g", fps)
	}
	return &Builder{clf: clf, batchSize: cfg.GetClassifyBatchSize(), fps: fps}, nil
}

// Build classifies every frame for one team and returns the sequence.
// Frames are processed in ascending id regardless of input order. The
// context is checked between batches; cancellation returns Cancelled.
func (b *Builder) Build(ctx context.Context, matchID, teamID string, frames []*metrics.MatchFrame) (*PhaseSequence, error) {
	ordered := make([]*metrics.MatchFrame, len(frames))
	copy(ordered, frames)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].FrameID < ordered[j].FrameID })

	seq, err := NewPhaseSequence(matchID, teamID, b.fps)
	if err != nil {
		return nil, err
	}

	for start := 0; start < len(ordered); start += b.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, fault.Wrap(fault.Cancelled, err, "phase build for match %s", matchID)
		}
		end := start + b.batchSize
		if end > len(ordered) {
			end = len(ordered)
		}
		batch := ordered[start:end]

		features := make([][]float64, len(batch))
		for i, f := range batch {
			var prev *metrics.MatchFrame
			if start+i > 0 {
				prev = ordered[start+i-1]
			}
			features[i] = ExtractFeatures(f, prev, b.fps)
		}

		// Labels come from the batch call; the per-frame call only
		// supplies the confidence.
		phases := b.clf.ClassifyBatch(features)
		for i, f := range batch {
			_, conf := b.clf.ClassifyWithConfidence(features[i])
			if err := seq.Append(FramePhase{FrameID: f.FrameID, Phase: phases[i], Confidence: conf}); err != nil {
				return nil, err
			}
		}
		diagf("classified frames %d..%d for match %s team %s", batch[0].FrameID, batch[len(batch)-1].FrameID, matchID, teamID)
	}
	return seq, nil
}
