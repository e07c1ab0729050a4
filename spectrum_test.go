package geomag

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPowerSpectrum(t *testing.T) {
	coef, err := NewCoefficients(igrfDegree, igrfG, igrfH)
	require.NoError(t, err)

	r, err := PowerSpectrum(coef, RADIUS, RADIUS)
	require.NoError(t, err)
	require.Len(t, r, igrfDegree+1)
	assert.Equal(t, 0.0, r[0])
	assert.InEpsilon(t, 2*(29404.8*29404.8+1450.9*1450.9+4652.5*4652.5), r[1], 1e-12)
	assert.InEpsilon(t, 3*(2499.6*2499.6+2982.0*2982.0+2991.6*2991.6+1677.0*1677.0+734.6*734.6), r[2], 1e-12)

	// At the core surface the higher degrees are amplified by (a/c)^(2n+4).
	const core = 3485.0
	rc, err := PowerSpectrum(coef, RADIUS, core)
	require.NoError(t, err)
	for n := 1; n <= igrfDegree; n++ {
		assert.InEpsilon(t, r[n]*math.Pow(RADIUS/core, float64(2*n+4)), rc[n], 1e-12)
	}

	_, err = PowerSpectrum(coef, 0, RADIUS)
	assert.ErrorIs(t, err, ErrInvalidOption)
	_, err = PowerSpectrum(coef, RADIUS, -1)
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestDipoleAxis(t *testing.T) {
	coef, err := NewCoefficients(igrfDegree, igrfG, igrfH)
	require.NoError(t, err)

	axis, lat, lon, err := DipoleAxis(coef)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, math.Sqrt(axis[0]*axis[0]+axis[1]*axis[1]+axis[2]*axis[2]), 1e-15)
	assert.InDelta(t, 80.5895, lat, 1e-4)
	assert.InDelta(t, -72.6797, lon, 1e-4)

	axial, err := NewCoefficients(1, []float64{0, -30000, 0}, []float64{0, 0, 0})
	require.NoError(t, err)
	axis, lat, _, err = DipoleAxis(axial)
	require.NoError(t, err)
	assert.Equal(t, Vector{0, 0, 1}, axis)
	assert.InDelta(t, 90.0, lat, 1e-12)

	none, err := NewCoefficients(1, []float64{5, 0, 0}, []float64{0, 0, 0})
	require.NoError(t, err)
	_, _, _, err = DipoleAxis(none)
	assert.ErrorIs(t, err, ErrNoDipole)
}
