package pitch

// Source coordinate systems are converted to the canonical 105×68 frame by
// pure linear scaling. Conversions are exact inverses of each other within
// floating point, which the round-trip tests pin down.

// Source-A pitch dimensions (StatsBomb-style 120×80 grid).
const (
	sourceALength = 120.0
	sourceAWidth  = 80.0
)

// FromSourceA converts a 120×80 feed coordinate to canonical meters.
func FromSourceA(x, y float64) Point {
	return Point{
		X: x * StandardLength / sourceALength,
		Y: y * StandardWidth / sourceAWidth,
	}
}

// ToSourceA converts a canonical point back to the 120×80 frame.
func ToSourceA(p Point) (x, y float64) {
	return p.X * sourceALength / StandardLength, p.Y * sourceAWidth / StandardWidth
}

// FromNormalized converts a Metrica-style normalized (0..1, 0..1) coordinate
// to canonical meters.
func FromNormalized(x, y float64) Point {
	return Point{X: x * StandardLength, Y: y * StandardWidth}
}

// ToNormalized converts a canonical point back to the normalized frame.
func ToNormalized(p Point) (x, y float64) {
	return p.X / StandardLength, p.Y / StandardWidth
}
