package pitch

import "math"

// minHomogeneousDenominator guards the perspective division against
// degenerate matrices mapping a pixel to the line at infinity.
const minHomogeneousDenominator = 1e-12

// Homography is an immutable 3×3 projective transform from pixel space to
// pitch space, row-major.
type Homography struct {
	m [9]float64
}

// NewHomography builds a homography from a row-major 3×3 matrix.
func NewHomography(m [9]float64) Homography {
	return Homography{m: m}
}

// IdentityHomography returns the identity transform.
func IdentityHomography() Homography {
	return Homography{m: [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}}
}

// Matrix returns a copy of the row-major matrix.
func (h Homography) Matrix() [9]float64 { return h.m }

// TransformPoint applies the homography with homogeneous division. When the
// denominator collapses below the guard, it is clamped with its sign
// preserved so output stays finite.
func (h Homography) TransformPoint(p Point) Point {
	w := h.m[6]*p.X + h.m[7]*p.Y + h.m[8]
	if math.Abs(w) < minHomogeneousDenominator {
		if math.Signbit(w) {
			w = -minHomogeneousDenominator
		} else {
			w = minHomogeneousDenominator
		}
	}
	return Point{
		X: (h.m[0]*p.X + h.m[1]*p.Y + h.m[2]) / w,
		Y: (h.m[3]*p.X + h.m[4]*p.Y + h.m[5]) / w,
	}
}
