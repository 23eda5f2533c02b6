package phase

import (
	"encoding/json"
	"math"
	"os"

	"github.com/pitchlab/tactics.report/internal/fault"
)

// CentroidClassifier is a nearest-centroid phase model. Training averages
// the feature vectors per label; inference assigns the nearest centroid,
// with confidence from a softmax over negative distances.
type CentroidClassifier struct {
	model centroidModel
}

type centroidModel struct {
	Trained   bool                  `json:"trained"`
	Dim       int                   `json:"dim"`
	Centroids map[GamePhase][]float64 `json:"centroids"`
}

// NewCentroidClassifier returns an untrained classifier.
func NewCentroidClassifier() *CentroidClassifier {
	return &CentroidClassifier{model: centroidModel{Centroids: map[GamePhase][]float64{}}}
}

// IsTrained implements Classifier.
func (c *CentroidClassifier) IsTrained() bool { return c.model.Trained }

// Classify implements Classifier.
func (c *CentroidClassifier) Classify(features []float64) GamePhase {
	p, _ := c.ClassifyWithConfidence(features)
	return p
}

// ClassifyBatch implements Classifier.
func (c *CentroidClassifier) ClassifyBatch(features [][]float64) []GamePhase {
	out := make([]GamePhase, len(features))
	for i, f := range features {
		out[i] = c.Classify(f)
	}
	return out
}

// ClassifyWithConfidence implements Classifier. Confidence is the maximum
// class probability under a softmax over negative centroid distances.
func (c *CentroidClassifier) ClassifyWithConfidence(features []float64) (GamePhase, float64) {
	if !c.model.Trained || len(features) != c.model.Dim {
		return Unknown, 0
	}

	var sum float64
	best, bestProb := Unknown, -1.0
	probs := make(map[GamePhase]float64, len(c.model.Centroids))
	for label, cent := range c.model.Centroids {
		d := euclid(features, cent)
		probs[label] = math.Exp(-d)
		sum += probs[label]
	}
	if sum == 0 {
		return Unknown, 0
	}
	for _, label := range AllPhases {
		p, ok := probs[label]
		if !ok {
			continue
		}
		p /= sum
		if p > bestProb {
			best, bestProb = label, p
		}
	}
	return best, bestProb
}

// Train implements Classifier. Labels and feature rows pair positionally;
// unknown labels are rejected.
func (c *CentroidClassifier) Train(features [][]float64, labels []GamePhase) (TrainMetrics, error) {
	if len(features) == 0 || len(features) != len(labels) {
		return TrainMetrics{}, fault.New(fault.BadInput, "training needs matched features and labels, got %d and %d", len(features), len(labels))
	}
	dim := len(features[0])

	sums := map[GamePhase][]float64{}
	counts := map[GamePhase]int{}
	for i, f := range features {
		if len(f) != dim {
			return TrainMetrics{}, fault.New(fault.BadInput, "feature row %d has dim %d, want %d", i, len(f), dim)
		}
		if !labels[i].Valid() || labels[i] == Unknown {
			return TrainMetrics{}, fault.New(fault.BadInput, "row %d has unusable label %q", i, labels[i])
		}
		if sums[labels[i]] == nil {
			sums[labels[i]] = make([]float64, dim)
		}
		for j, x := range f {
			sums[labels[i]][j] += x
		}
		counts[labels[i]]++
	}

	centroids := make(map[GamePhase][]float64, len(sums))
	for label, sum := range sums {
		cent := make([]float64, dim)
		for j := range cent {
			cent[j] = sum[j] / float64(counts[label])
		}
		centroids[label] = cent
	}
	c.model = centroidModel{Trained: true, Dim: dim, Centroids: centroids}

	correct := 0
	for i, f := range features {
		if c.Classify(f) == labels[i] {
			correct++
		}
	}
	return TrainMetrics{
		Samples:  len(features),
		Classes:  len(centroids),
		Accuracy: float64(correct) / float64(len(features)),
	}, nil
}

// SaveModel implements Classifier, writing the model as JSON.
func (c *CentroidClassifier) SaveModel(path string) error {
	data, err := json.MarshalIndent(c.model, "", "  ")
	if err != nil {
		return fault.Wrap(fault.Internal, err, "marshal phase model")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fault.Wrap(fault.Internal, err, "write phase model %s", path)
	}
	return nil
}

// LoadModel implements Classifier.
func (c *CentroidClassifier) LoadModel(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fault.Wrap(fault.NotFound, err, "phase model %s", path)
		}
		return fault.Wrap(fault.Internal, err, "read phase model %s", path)
	}
	var m centroidModel
	if err := json.Unmarshal(data, &m); err != nil {
		return fault.Wrap(fault.BadInput, err, "parse phase model %s", path)
	}
	if m.Trained && m.Dim <= 0 {
		return fault.New(fault.BadInput, "phase model %s claims trained with dim %d", path, m.Dim)
	}
	if m.Centroids == nil {
		m.Centroids = map[GamePhase][]float64{}
	}
	c.model = m
	return nil
}

func euclid(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}
