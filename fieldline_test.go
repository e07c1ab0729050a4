package geomag

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mshafiee/geomag/geoconv"
)

func newAxialDipole(t *testing.T) *Model {
	t.Helper()
	m, err := NewModel(1, GeocentricSpherical, GeocentricSpherical, []float64{0, -30000, 0}, []float64{0, 0, 0})
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestTraceFieldLineDipole(t *testing.T) {
	m := newAxialDipole(t)
	const shell = 2 * RADIUS

	points, field, err := TraceFieldLine(m, Vector{0, 0, shell}, TraceOptions{})
	require.NoError(t, err)
	require.Len(t, field, len(points))
	require.Greater(t, len(points), 1000)

	// Dipole field lines satisfy r = L cos^2(lat).
	for i, p := range points {
		c := math.Cos(geoconv.DegToRad * p[0])
		assert.InEpsilon(t, shell, p[2]/(c*c), 1e-6, "point %d %v", i, p)
		assert.InDelta(t, 0.0, p[1], 1e-9, "the line stays in its meridian")
	}

	// -B points south at the equator, so the line starts in the south.
	first, last := points[0], points[len(points)-1]
	assert.Less(t, first[0], -40.0)
	assert.Greater(t, last[0], 40.0)
	assert.InDelta(t, -first[0], last[0], 0.5)
	height := func(p Vector) float64 {
		_, _, h := geoconv.GeocentricToGeodetic(p[2], geoconv.DegToRad*p[0], geoconv.DegToRad*p[1], geoconv.WGS84A, geoconv.WGS84Eps2)
		return h
	}
	// Each end is the first point below the surface, one step past the last point above it.
	for _, p := range []Vector{first, last} {
		h := height(p)
		assert.Less(t, h, 0.0)
		assert.Greater(t, h, -DefaultTraceStep)
	}
	assert.GreaterOrEqual(t, height(points[1]), 0.0)
	assert.GreaterOrEqual(t, height(points[len(points)-2]), 0.0)

	for i, p := range points {
		res, err := m.Eval(Gradient, p[0], p[1], p[2])
		require.NoError(t, err)
		assert.Equal(t, res.Gradient, field[i])
	}
}

func TestTraceFieldLineMaxSteps(t *testing.T) {
	m := newAxialDipole(t)
	points, _, err := TraceFieldLine(m, Vector{0, 0, 3 * RADIUS}, TraceOptions{Step: 50, MaxSteps: 5})
	require.NoError(t, err)
	require.Len(t, points, 11)
	assert.Equal(t, Vector{0, 0, 3 * RADIUS}, points[5])

	// Consecutive points are one step apart.
	for i := 1; i < len(points); i++ {
		x0, y0, z0 := geoconv.SphericalToCartesian(points[i-1][2], geoconv.DegToRad*points[i-1][0], 0)
		x1, y1, z1 := geoconv.SphericalToCartesian(points[i][2], geoconv.DegToRad*points[i][0], 0)
		assert.InDelta(t, 50.0, math.Sqrt((x1-x0)*(x1-x0)+(y1-y0)*(y1-y0)+(z1-z0)*(z1-z0)), 0.1)
	}
}

func TestTraceFieldLineInputSystems(t *testing.T) {
	m := newIGRF(t, GeodeticAboveWGS84, GeodeticAboveWGS84)
	points, field, err := TraceFieldLine(m, Vector{20, 30, 3000}, TraceOptions{Step: 25, MinHeight: 100})
	require.NoError(t, err)
	require.Greater(t, len(points), 2)
	inner := points[1 : len(points)-1]
	for _, p := range inner {
		assert.GreaterOrEqual(t, p[2], 100.0)
	}
	for _, p := range []Vector{points[0], points[len(points)-1]} {
		assert.Less(t, p[2], 100.0)
		assert.Greater(t, p[2], 100.0-25)
	}
	assert.Len(t, field, len(points))
}

func TestTraceFieldLineErrors(t *testing.T) {
	m := newAxialDipole(t)
	_, _, err := TraceFieldLine(m, Vector{0, 0, 7000}, TraceOptions{Step: -1})
	assert.ErrorIs(t, err, ErrInvalidOption)
	_, _, err = TraceFieldLine(m, Vector{0, 0, 7000}, TraceOptions{MaxSteps: -1})
	assert.ErrorIs(t, err, ErrInvalidOption)

	require.NoError(t, m.Close())
	_, _, err = TraceFieldLine(m, Vector{0, 0, 7000}, TraceOptions{})
	assert.ErrorIs(t, err, ErrModelClosed)
}
