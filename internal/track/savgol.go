package track

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SavGol is a Savitzky–Golay smoother: a least-squares polynomial fit over
// a sliding window. Unlike a moving average it preserves local extrema and
// the shape of acceleration phases, which sprint segmentation depends on.
//
// The smoothing projection H = A (AᵀA)⁻¹ Aᵀ is precomputed once per
// (window, polyorder) pair; interior samples use the center row and the
// first/last half-windows use the edge rows, so boundary samples are the
// fitted polynomial evaluated at their own offsets rather than a shortened
// average.
type SavGol struct {
	window    int
	polyorder int
	proj      *mat.Dense // window×window smoothing projection
}

// NewSavGol builds a smoother. The window must be odd and at least
// polyorder+2.
func NewSavGol(window, polyorder int) (*SavGol, error) {
	if polyorder < 1 {
		return nil, fmt.Errorf("polyorder must be >= 1, got %d", polyorder)
	}
	if window%2 == 0 || window < polyorder+2 {
		return nil, fmt.Errorf("window must be odd and >= polyorder+2, got window=%d polyorder=%d", window, polyorder)
	}

	half := window / 2
	// Vandermonde design matrix over offsets -half..half.
	a := mat.NewDense(window, polyorder+1, nil)
	for i := 0; i < window; i++ {
		t := float64(i - half)
		v := 1.0
		for j := 0; j <= polyorder; j++ {
			a.Set(i, j, v)
			v *= t
		}
	}

	var ata mat.Dense
	ata.Mul(a.T(), a)
	var inv mat.Dense
	if err := inv.Inverse(&ata); err != nil {
		return nil, fmt.Errorf("singular design matrix for window=%d polyorder=%d: %w", window, polyorder, err)
	}

	var pseudo mat.Dense // (polyorder+1)×window
	pseudo.Mul(&inv, a.T())
	proj := mat.NewDense(window, window, nil)
	proj.Mul(a, &pseudo)

	return &SavGol{window: window, polyorder: polyorder, proj: proj}, nil
}

// Window returns the configured window length.
func (s *SavGol) Window() int { return s.window }

// Polyorder returns the configured polynomial order.
func (s *SavGol) Polyorder() int { return s.polyorder }

// Smooth returns the filtered series. Series shorter than polyorder+2 fall
// back to a centered moving average of width min(3, len); series shorter
// than the window are smoothed with the largest odd window that fits.
func (s *SavGol) Smooth(y []float64) []float64 {
	n := len(y)
	if n == 0 {
		return nil
	}
	if n < s.polyorder+2 {
		width := 3
		if n < width {
			width = n
		}
		return movingAverage(y, width)
	}
	if n < s.window {
		w := n
		if w%2 == 0 {
			w--
		}
		if w < s.polyorder+2 {
			w = s.polyorder + 2
			if w%2 == 0 {
				w++
			}
		}
		if w > n {
			return movingAverage(y, 3)
		}
		shrunk, err := NewSavGol(w, s.polyorder)
		if err != nil {
			return movingAverage(y, 3)
		}
		return shrunk.Smooth(y)
	}

	half := s.window / 2
	out := make([]float64, n)

	rowDot := func(row int, window []float64) float64 {
		sum := 0.0
		for k := 0; k < s.window; k++ {
			sum += s.proj.At(row, k) * window[k]
		}
		return sum
	}

	// Leading edge: fit over the first window, evaluate at each offset.
	head := y[:s.window]
	for i := 0; i < half; i++ {
		out[i] = rowDot(i, head)
	}
	// Interior: center row slides over the signal.
	for i := half; i < n-half; i++ {
		out[i] = rowDot(half, y[i-half:i+half+1])
	}
	// Trailing edge: fit over the last window.
	tail := y[n-s.window:]
	for i := n - half; i < n; i++ {
		out[i] = rowDot(s.window-(n-i), tail)
	}

	return out
}

// movingAverage is the short-series fallback: a centered mean of the given
// width (clamped at the series edges).
func movingAverage(y []float64, width int) []float64 {
	n := len(y)
	if width < 1 {
		width = 1
	}
	half := width / 2
	out := make([]float64, n)
	for i := range y {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi > n-1 {
			hi = n - 1
		}
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += y[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}
