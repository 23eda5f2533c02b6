package pitch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitHomographyRecoversAffineMap(t *testing.T) {
	t.Parallel()

	// Pixels scale 1920×1080 onto the 105×68 pitch with an offset.
	truth := func(p Point) Point {
		return Point{X: p.X*105.0/1920.0 + 1.5, Y: p.Y*68.0/1080.0 - 0.5}
	}
	pixels := []Point{
		{X: 0, Y: 0}, {X: 1920, Y: 0}, {X: 0, Y: 1080},
		{X: 1920, Y: 1080}, {X: 960, Y: 540}, {X: 400, Y: 800},
	}
	pairs := make([]Correspondence, len(pixels))
	for i, px := range pixels {
		pairs[i] = Correspondence{Pixel: px, Pitch: truth(px)}
	}

	h, err := FitHomography(pairs)
	require.NoError(t, err)

	probe := Point{X: 1234, Y: 321}
	got := h.TransformPoint(probe)
	want := truth(probe)
	assert.InDelta(t, want.X, got.X, 1e-6)
	assert.InDelta(t, want.Y, got.Y, 1e-6)
}

func TestFitHomographyPerspective(t *testing.T) {
	t.Parallel()

	// A genuine perspective map, not just affine.
	truth := NewHomography([9]float64{
		0.05, 0.01, 2.0,
		0.0, 0.07, 1.0,
		1e-4, 2e-5, 1.0,
	})
	pixels := []Point{
		{X: 100, Y: 100}, {X: 1800, Y: 120}, {X: 150, Y: 950},
		{X: 1700, Y: 900}, {X: 960, Y: 540},
	}
	pairs := make([]Correspondence, len(pixels))
	for i, px := range pixels {
		pairs[i] = Correspondence{Pixel: px, Pitch: truth.TransformPoint(px)}
	}

	h, err := FitHomography(pairs)
	require.NoError(t, err)

	probe := Point{X: 700, Y: 300}
	got := h.TransformPoint(probe)
	want := truth.TransformPoint(probe)
	assert.InDelta(t, want.X, got.X, 1e-6)
	assert.InDelta(t, want.Y, got.Y, 1e-6)
}

func TestFitHomographyRequiresFourPoints(t *testing.T) {
	t.Parallel()
	_, err := FitHomography([]Correspondence{
		{Pixel: Point{X: 0, Y: 0}, Pitch: Point{X: 0, Y: 0}},
		{Pixel: Point{X: 1, Y: 0}, Pitch: Point{X: 105, Y: 0}},
		{Pixel: Point{X: 0, Y: 1}, Pitch: Point{X: 0, Y: 68}},
	})
	require.Error(t, err)
}

func TestFitHomographyRejectsCollinearPoints(t *testing.T) {
	t.Parallel()
	pairs := make([]Correspondence, 4)
	for i := range pairs {
		// All keypoints on one line.
		x := float64(i) * 100
		pairs[i] = Correspondence{Pixel: Point{X: x, Y: x}, Pitch: Point{X: x / 20, Y: x / 20}}
	}
	_, err := FitHomography(pairs)
	require.Error(t, err)
}
