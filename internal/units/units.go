// Package units converts between the speed units used across the
// pipeline. Trajectories carry meters per second; reported metrics and
// tuning thresholds use kilometers per hour.
package units

// Unit names accepted on output surfaces.
const (
	MPS = "mps"
	KMH = "kmh"
	MPH = "mph"
)

// ValidUnits contains all accepted unit names.
var ValidUnits = []string{MPS, KMH, MPH}

const (
	mpsPerKmh = 1.0 / 3.6
	mpsPerMph = 0.44704
)

// IsValid checks if the given unit name is supported.
func IsValid(unit string) bool {
	for _, u := range ValidUnits {
		if unit == u {
			return true
		}
	}
	return false
}

// MpsToKmh converts meters per second to kilometers per hour.
func MpsToKmh(v float64) float64 { return v / mpsPerKmh }

// KmhToMps converts kilometers per hour to meters per second.
func KmhToMps(v float64) float64 { return v * mpsPerKmh }

// Convert converts a speed in meters per second to the target unit.
// Unknown units pass the value through unchanged.
func Convert(speedMps float64, targetUnit string) float64 {
	switch targetUnit {
	case KMH:
		return MpsToKmh(speedMps)
	case MPH:
		return speedMps / mpsPerMph
	default:
		return speedMps
	}
}
