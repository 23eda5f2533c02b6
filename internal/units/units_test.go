package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMpsKmhRoundTrip(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 36.0, MpsToKmh(10.0), 1e-9)
	assert.InDelta(t, 10.0, KmhToMps(36.0), 1e-9)
	assert.InDelta(t, 7.5, KmhToMps(MpsToKmh(7.5)), 1e-9)
}

func TestConvert(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 36.0, Convert(10.0, KMH), 1e-9)
	assert.InDelta(t, 22.369362920544, Convert(10.0, MPH), 1e-9)
	assert.Equal(t, 10.0, Convert(10.0, MPS))
	assert.Equal(t, 10.0, Convert(10.0, "furlongs"))
}

func TestIsValid(t *testing.T) {
	t.Parallel()
	for _, u := range ValidUnits {
		assert.True(t, IsValid(u))
	}
	assert.False(t, IsValid("knots"))
}
