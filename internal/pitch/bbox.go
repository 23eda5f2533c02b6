package pitch

// BoundingBox is a pixel-space detection rectangle with its detector
// confidence and class id. Coordinates follow image convention: origin
// top-left, X1/Y1 the upper-left corner.
type BoundingBox struct {
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
	Confidence float64 `json:"confidence"`
	ClassID    int     `json:"class_id"`
}

// Center returns the box center in pixel space.
func (b BoundingBox) Center() Point {
	return Point{X: (b.X1 + b.X2) / 2, Y: (b.Y1 + b.Y2) / 2}
}

// Width returns the box width in pixels.
func (b BoundingBox) Width() float64 { return b.X2 - b.X1 }

// Height returns the box height in pixels.
func (b BoundingBox) Height() float64 { return b.Y2 - b.Y1 }

// Foot returns the bottom-center of the box, the usual anchor for projecting
// a player detection onto the pitch plane.
func (b BoundingBox) Foot() Point {
	return Point{X: (b.X1 + b.X2) / 2, Y: b.Y2}
}
