package phase

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchlab/tactics.report/internal/fault"
)

// Two cleanly separated classes in a toy 2-dim feature space.
func toyTrainingSet() ([][]float64, []GamePhase) {
	features := [][]float64{
		{0, 0}, {0.5, 0.2}, {0.2, 0.4},
		{10, 10}, {10.5, 9.8}, {9.7, 10.3},
	}
	labels := []GamePhase{
		OrganizedDefense, OrganizedDefense, OrganizedDefense,
		OrganizedAttack, OrganizedAttack, OrganizedAttack,
	}
	return features, labels
}

func TestUntrainedReturnsUnknown(t *testing.T) {
	t.Parallel()
	c := NewCentroidClassifier()

	assert.False(t, c.IsTrained())
	assert.Equal(t, Unknown, c.Classify([]float64{1, 2}))
	p, conf := c.ClassifyWithConfidence([]float64{1, 2})
	assert.Equal(t, Unknown, p)
	assert.Zero(t, conf)
	assert.Equal(t, []GamePhase{Unknown, Unknown}, c.ClassifyBatch([][]float64{{1}, {2}}))
}

func TestTrainAndClassify(t *testing.T) {
	t.Parallel()
	c := NewCentroidClassifier()
	features, labels := toyTrainingSet()

	m, err := c.Train(features, labels)
	require.NoError(t, err)
	assert.True(t, c.IsTrained())
	assert.Equal(t, 6, m.Samples)
	assert.Equal(t, 2, m.Classes)
	assert.InDelta(t, 1.0, m.Accuracy, 1e-12, "separable toy set trains to full accuracy")

	phase, conf := c.ClassifyWithConfidence([]float64{9, 9})
	assert.Equal(t, OrganizedAttack, phase)
	assert.Greater(t, conf, 0.5)

	assert.Equal(t, OrganizedDefense, c.Classify([]float64{1, 1}))
}

func TestClassifyRejectsWrongDimension(t *testing.T) {
	t.Parallel()
	c := NewCentroidClassifier()
	features, labels := toyTrainingSet()
	_, err := c.Train(features, labels)
	require.NoError(t, err)

	p, conf := c.ClassifyWithConfidence([]float64{1, 2, 3})
	assert.Equal(t, Unknown, p)
	assert.Zero(t, conf)
}

func TestTrainValidation(t *testing.T) {
	t.Parallel()
	c := NewCentroidClassifier()

	_, err := c.Train(nil, nil)
	assert.True(t, fault.IsKind(err, fault.BadInput))

	_, err = c.Train([][]float64{{1, 2}}, []GamePhase{Unknown})
	assert.True(t, fault.IsKind(err, fault.BadInput))

	_, err = c.Train([][]float64{{1, 2}, {1}}, []GamePhase{OrganizedAttack, OrganizedAttack})
	assert.True(t, fault.IsKind(err, fault.BadInput))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	c := NewCentroidClassifier()
	features, labels := toyTrainingSet()
	_, err := c.Train(features, labels)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, c.SaveModel(path))

	loaded := NewCentroidClassifier()
	require.NoError(t, loaded.LoadModel(path))
	assert.True(t, loaded.IsTrained())
	assert.Equal(t, c.Classify([]float64{9, 9}), loaded.Classify([]float64{9, 9}))
}

func TestLoadMissingModel(t *testing.T) {
	t.Parallel()
	c := NewCentroidClassifier()
	err := c.LoadModel(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.NotFound))
}
