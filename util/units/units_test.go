package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const eps = 1e-9

func TestConversions(t *testing.T) {
	assert.InDelta(t, 62.1371, KmToMiles(100), eps)
	assert.InDelta(t, 62.1371, KmhToMph(100), eps)
	assert.InDelta(t, 32, CelsiusToFahrenheit(0), eps)
	assert.InDelta(t, 212, CelsiusToFahrenheit(100), eps)
	assert.InDelta(t, 14.5038, KpaToPsi(100), eps)
}

func TestRoundTrip(t *testing.T) {
	for _, v := range []float64{-40, 0, 0.5, 1, 36.6, 100, 13059.5} {
		assert.InDelta(t, v, MilesToKm(KmToMiles(v)), eps)
		assert.InDelta(t, v, MphToKmh(KmhToMph(v)), eps)
		assert.InDelta(t, v, FahrenheitToCelsius(CelsiusToFahrenheit(v)), eps)
		assert.InDelta(t, v, PsiToKpa(KpaToPsi(v)), eps)
	}
}
