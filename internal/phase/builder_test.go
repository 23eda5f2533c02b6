package phase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchlab/tactics.report/internal/config"
	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/metrics"
	"github.com/pitchlab/tactics.report/internal/pitch"
)

// stubClassifier labels by ball x: left half defense, right half attack.
// It records the size of every ClassifyBatch call.
type stubClassifier struct {
	trained bool
	batches []int
}

func (s *stubClassifier) Classify(f []float64) GamePhase {
	p, _ := s.ClassifyWithConfidence(f)
	return p
}

func (s *stubClassifier) ClassifyBatch(fs [][]float64) []GamePhase {
	s.batches = append(s.batches, len(fs))
	out := make([]GamePhase, len(fs))
	for i, f := range fs {
		out[i] = s.Classify(f)
	}
	return out
}

func (s *stubClassifier) ClassifyWithConfidence(f []float64) (GamePhase, float64) {
	if !s.trained {
		return Unknown, 0
	}
	if f[8] < 52.5 {
		return OrganizedDefense, 0.9
	}
	return OrganizedAttack, 0.9
}

func (s *stubClassifier) Train([][]float64, []GamePhase) (TrainMetrics, error) {
	s.trained = true
	return TrainMetrics{}, nil
}
func (s *stubClassifier) IsTrained() bool        { return s.trained }
func (s *stubClassifier) SaveModel(string) error { return nil }
func (s *stubClassifier) LoadModel(string) error { return nil }

func buildFrames(n int) []*metrics.MatchFrame {
	frames := make([]*metrics.MatchFrame, 0, n)
	for i := 0; i < n; i++ {
		x := 20.0
		if i >= n/2 {
			x = 90.0
		}
		frames = append(frames, frameAt(i, pitch.Point{X: x, Y: 34}, []metrics.PlayerPosition{
			{PlayerID: "1", TeamID: "home", Pos: pitch.Point{X: x - 1, Y: 34}},
			{PlayerID: "2", TeamID: "away", Pos: pitch.Point{X: x + 5, Y: 34}},
		}))
	}
	return frames
}

func TestBuildSweepsFramesInOrder(t *testing.T) {
	t.Parallel()
	b, err := NewBuilder(&stubClassifier{trained: true}, config.EmptyTuningConfig(), 25)
	require.NoError(t, err)

	// Shuffle input order; output must still be ascending.
	frames := buildFrames(20)
	frames[0], frames[19] = frames[19], frames[0]
	frames[3], frames[11] = frames[11], frames[3]

	seq, err := b.Build(context.Background(), "m1", "home", frames)
	require.NoError(t, err)
	require.Len(t, seq.Frames, 20)
	for i := 1; i < len(seq.Frames); i++ {
		assert.Greater(t, seq.Frames[i].FrameID, seq.Frames[i-1].FrameID)
	}
	assert.Equal(t, OrganizedDefense, seq.Frames[0].Phase)
	assert.Equal(t, OrganizedAttack, seq.Frames[19].Phase)
	assert.Equal(t, 1, seq.TransitionCount())
}

func TestBuildBatchesLargeInputs(t *testing.T) {
	t.Parallel()
	// 1200 frames at the default batch size of 500 spans three batches.
	clf := &stubClassifier{trained: true}
	b, err := NewBuilder(clf, config.EmptyTuningConfig(), 25)
	require.NoError(t, err)

	seq, err := b.Build(context.Background(), "m1", "home", buildFrames(1200))
	require.NoError(t, err)
	assert.Len(t, seq.Frames, 1200)
	assert.Equal(t, []int{500, 500, 200}, clf.batches)
}

func TestBuildUntrainedClassifierYieldsUnknown(t *testing.T) {
	t.Parallel()
	b, err := NewBuilder(&stubClassifier{}, config.EmptyTuningConfig(), 25)
	require.NoError(t, err)

	seq, err := b.Build(context.Background(), "m1", "home", buildFrames(5))
	require.NoError(t, err)
	for _, fp := range seq.Frames {
		assert.Equal(t, Unknown, fp.Phase)
		assert.Zero(t, fp.Confidence)
	}
	assert.Empty(t, seq.Transitions())
}

func TestBuildHonorsCancellation(t *testing.T) {
	t.Parallel()
	b, err := NewBuilder(&stubClassifier{trained: true}, config.EmptyTuningConfig(), 25)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = b.Build(ctx, "m1", "home", buildFrames(10))
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.Cancelled))
}

func TestBuildRejectsBadFPS(t *testing.T) {
	t.Parallel()
	_, err := NewBuilder(&stubClassifier{}, config.EmptyTuningConfig(), 0)
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.BadInput))
}
