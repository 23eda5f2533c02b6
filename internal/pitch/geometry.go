// Package pitch provides the canonical pitch model and geometry primitives
// shared by every analysis stage: a 105×68 m field with the origin at a
// corner, x along the long axis, plus zone maps, coordinate converters and
// homography application.
package pitch

import "math"

// Standard pitch dimensions in meters.
const (
	StandardLength = 105.0
	StandardWidth  = 68.0
)

// Point is a canonical 2D pitch position in meters.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance to another point.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Center returns the canonical pitch center.
func Center() Point {
	return Point{X: StandardLength / 2, Y: StandardWidth / 2}
}

// Dimensions describes a pitch rectangle. Zero value is not valid; use
// StandardDimensions for the canonical field.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
}

// StandardDimensions returns the canonical 105×68 field.
func StandardDimensions() Dimensions {
	return Dimensions{Length: StandardLength, Width: StandardWidth}
}

// Contains reports whether the point lies on the pitch, expanded by tol
// meters on every side. Stabilizer callers use a positive tolerance so
// near-touchline detections are flagged rather than rejected.
func (d Dimensions) Contains(p Point, tol float64) bool {
	return p.X >= -tol && p.X <= d.Length+tol &&
		p.Y >= -tol && p.Y <= d.Width+tol
}

// Clamp returns the point constrained to the pitch rectangle.
func (d Dimensions) Clamp(p Point) Point {
	return Point{
		X: math.Min(math.Max(p.X, 0), d.Length),
		Y: math.Min(math.Max(p.Y, 0), d.Width),
	}
}
