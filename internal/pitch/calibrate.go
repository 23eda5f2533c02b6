package pitch

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Correspondence pairs one calibration keypoint in pixel space with its
// known position on the pitch.
type Correspondence struct {
	Pixel Point
	Pitch Point
}

// FitHomography estimates the pixel-to-pitch homography from at least four
// point correspondences using the direct linear transform: each pair
// contributes two rows to a 2n×9 system whose right null vector (smallest
// singular vector) is the flattened matrix.
func FitHomography(pairs []Correspondence) (Homography, error) {
	n := len(pairs)
	if n < 4 {
		return Homography{}, fmt.Errorf("homography requires at least 4 correspondences, got %d", n)
	}

	a := mat.NewDense(2*n, 9, nil)
	for i, c := range pairs {
		x, y := c.Pixel.X, c.Pixel.Y
		u, v := c.Pitch.X, c.Pitch.Y
		a.SetRow(2*i, []float64{x, y, 1, 0, 0, 0, -u * x, -u * y, -u})
		a.SetRow(2*i+1, []float64{0, 0, 0, x, y, 1, -v * x, -v * y, -v})
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDFullV); !ok {
		return Homography{}, fmt.Errorf("homography SVD failed for %d correspondences", n)
	}
	var v mat.Dense
	svd.VTo(&v)

	var h [9]float64
	for i := 0; i < 9; i++ {
		h[i] = v.At(i, 8)
	}

	// Degenerate configurations (collinear keypoints) leave more than one
	// vanishing singular value; the recovered matrix is then meaningless.
	sv := svd.Values(nil)
	if sv[7] < 1e-9*sv[0] {
		return Homography{}, fmt.Errorf("degenerate keypoint configuration")
	}

	if math.Abs(h[8]) > 1e-12 {
		for i := range h {
			h[i] /= h[8]
		}
	}
	return NewHomography(h), nil
}
