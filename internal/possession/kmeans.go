package possession

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/pitchlab/tactics.report/internal/fault"
)

// Detector assigns cluster labels to sequences and summarizes the clusters
// into tactical patterns. Implementations must be deterministic for a
// fixed seed.
type Detector interface {
	// DetectPatterns fits the detector on the sequences, labels every
	// sequence in place and returns the resulting patterns sorted by
	// occurrence count descending. Sequences left at label -1 are noise
	// and join no pattern.
	DetectPatterns(matchID, teamID string, seqs []*Sequence, nClusters int) ([]*TacticalPattern, error)
	// PredictCluster assigns a cluster label to a sequence that was not
	// part of the fit. Calling it before DetectPatterns returns a
	// ModelNotTrained fault.
	PredictCluster(s *Sequence) (int, error)
}

// KMeansDetector clusters sequence feature vectors with seeded Lloyd
// iterations over standardized features. After a fit it keeps the
// centroids and the standardization parameters so unseen sequences can
// be assigned to the nearest cluster.
type KMeansDetector struct {
	fx      *FeatureExtractor
	rules   LabelRules
	seed    int64
	maxIter int

	mean      []float64
	sd        []float64
	centroids [][]float64
}

// NewKMeansDetector builds the stock detector. Seed 42 keeps repeated runs
// over the same match byte-identical.
func NewKMeansDetector(fx *FeatureExtractor, rules LabelRules) *KMeansDetector {
	return &KMeansDetector{fx: fx, rules: rules, seed: 42, maxIter: 100}
}

// WithSeed overrides the clustering seed.
func (d *KMeansDetector) WithSeed(seed int64) *KMeansDetector {
	d.seed = seed
	return d
}

// DetectPatterns implements Detector. When fewer sequences than requested
// clusters exist, the cluster count shrinks to max(2, len(seqs)/2).
func (d *KMeansDetector) DetectPatterns(matchID, teamID string, seqs []*Sequence, nClusters int) ([]*TacticalPattern, error) {
	if nClusters < 2 {
		return nil, fault.New(fault.BadInput, "n_clusters must be at least 2, got %d", nClusters)
	}
	if len(seqs) == 0 {
		return nil, nil
	}
	if len(seqs) < nClusters {
		reduced := len(seqs) / 2
		if reduced < 2 {
			reduced = 2
		}
		diagf("reducing clusters from %d to %d for %d sequences", nClusters, reduced, len(seqs))
		nClusters = reduced
	}
	if nClusters > len(seqs) {
		// One or two sequences: a single degenerate cluster each.
		nClusters = len(seqs)
	}

	vectors := make([][]float64, len(seqs))
	for i, s := range seqs {
		v, err := d.fx.Features(s)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	std, mean, sd := standardize(vectors)

	labels, centroids := lloyd(std, nClusters, d.seed, d.maxIter)
	d.mean, d.sd, d.centroids = mean, sd, centroids

	byLabel := make(map[int]*TacticalPattern)
	for i, s := range seqs {
		s.ClusterLabel = labels[i]
		if labels[i] < 0 {
			continue
		}
		p, ok := byLabel[labels[i]]
		if !ok {
			p = NewTacticalPattern(matchID, teamID, labels[i])
			byLabel[labels[i]] = p
		}
		p.AddSequence(s, vectors[i])
	}

	patterns := make([]*TacticalPattern, 0, len(byLabel))
	for _, p := range byLabel {
		p.Label = d.rules.Label(p)
		patterns = append(patterns, p)
	}
	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].OccurrenceCount != patterns[j].OccurrenceCount {
			return patterns[i].OccurrenceCount > patterns[j].OccurrenceCount
		}
		return patterns[i].ClusterLabel < patterns[j].ClusterLabel
	})
	return patterns, nil
}

// PredictCluster implements Detector. The sequence's features are
// standardized with the fit-time parameters and matched to the nearest
// centroid.
func (d *KMeansDetector) PredictCluster(s *Sequence) (int, error) {
	if len(d.centroids) == 0 {
		return -1, fault.New(fault.ModelNotTrained, "detector has not been fitted")
	}
	v, err := d.fx.Features(s)
	if err != nil {
		return -1, err
	}
	row := make([]float64, len(v))
	for j := range row {
		if d.sd[j] > 1e-9 {
			row[j] = (v[j] - d.mean[j]) / d.sd[j]
		}
	}
	return nearestCentroid(row, d.centroids), nil
}

// standardize z-scores each feature column, returning the standardized
// vectors together with the column means and deviations. Constant columns
// collapse to zero instead of dividing by a vanishing deviation.
func standardize(vectors [][]float64) ([][]float64, []float64, []float64) {
	n := len(vectors)
	dim := len(vectors[0])
	mean := make([]float64, dim)
	for _, v := range vectors {
		floats.Add(mean, v)
	}
	floats.Scale(1/float64(n), mean)

	sd := make([]float64, dim)
	for _, v := range vectors {
		for j := range sd {
			diff := v[j] - mean[j]
			sd[j] += diff * diff
		}
	}
	for j := range sd {
		sd[j] = math.Sqrt(sd[j] / float64(n))
	}

	out := make([][]float64, n)
	for i, v := range vectors {
		row := make([]float64, dim)
		for j := range row {
			if sd[j] > 1e-9 {
				row[j] = (v[j] - mean[j]) / sd[j]
			}
		}
		out[i] = row
	}
	return out, mean, sd
}

// lloyd runs k-means++ initialization followed by Lloyd iterations,
// returning the final labels and centroids.
func lloyd(vectors [][]float64, k int, seed int64, maxIter int) ([]int, [][]float64) {
	rng := rand.New(rand.NewSource(seed))
	centroids := plusPlusInit(vectors, k, rng)
	labels := make([]int, len(vectors))

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, v := range vectors {
			l := nearestCentroid(v, centroids)
			if l != labels[i] {
				labels[i] = l
				changed = true
			}
		}

		counts := make([]int, k)
		next := make([][]float64, k)
		for c := range next {
			next[c] = make([]float64, len(vectors[0]))
		}
		for i, v := range vectors {
			counts[labels[i]]++
			floats.Add(next[labels[i]], v)
		}
		for c := range next {
			if counts[c] == 0 {
				// Re-seed an emptied cluster from a random point.
				copy(next[c], vectors[rng.Intn(len(vectors))])
				continue
			}
			floats.Scale(1/float64(counts[c]), next[c])
		}
		centroids = next

		if !changed && iter > 0 {
			break
		}
	}
	return labels, centroids
}

func plusPlusInit(vectors [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	first := make([]float64, len(vectors[0]))
	copy(first, vectors[rng.Intn(len(vectors))])
	centroids = append(centroids, first)

	d2 := make([]float64, len(vectors))
	for len(centroids) < k {
		var total float64
		for i, v := range vectors {
			d2[i] = math.MaxFloat64
			for _, c := range centroids {
				if d := sqDist(v, c); d < d2[i] {
					d2[i] = d
				}
			}
			total += d2[i]
		}
		idx := 0
		if total > 0 {
			r := rng.Float64() * total
			for i := range d2 {
				r -= d2[i]
				if r <= 0 {
					idx = i
					break
				}
			}
		} else {
			idx = rng.Intn(len(vectors))
		}
		c := make([]float64, len(vectors[idx]))
		copy(c, vectors[idx])
		centroids = append(centroids, c)
	}
	return centroids
}

func nearestCentroid(v []float64, centroids [][]float64) int {
	best, bestDist := 0, math.MaxFloat64
	for c, cent := range centroids {
		if d := sqDist(v, cent); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func sqDist(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}
