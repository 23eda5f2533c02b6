package phase

// TrainMetrics summarizes a training run.
type TrainMetrics struct {
	Samples  int     `json:"samples"`
	Classes  int     `json:"classes"`
	Accuracy float64 `json:"accuracy"` // training-set accuracy
}

// Classifier is the adapter contract for phase inference. Implementations
// that have not been trained must return Unknown with confidence 0 from
// every inference call, never an error.
type Classifier interface {
	Classify(features []float64) GamePhase
	ClassifyBatch(features [][]float64) []GamePhase
	ClassifyWithConfidence(features []float64) (GamePhase, float64)
	Train(features [][]float64, labels []GamePhase) (TrainMetrics, error)
	IsTrained() bool
	SaveModel(path string) error
	LoadModel(path string) error
}
