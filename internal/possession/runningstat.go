package possession

// RunningStat tracks a streaming mean without retaining samples.
type RunningStat struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
}

// Add folds one sample into the mean.
func (r *RunningStat) Add(x float64) {
	r.Count++
	r.Mean += (x - r.Mean) / float64(r.Count)
}
