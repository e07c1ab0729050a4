package geomag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mshafiee/geomag/geoconv"
	"github.com/mshafiee/geomag/geoid"
)

func TestConvertRoundTrip(t *testing.T) {
	points := gridPoints(t,
		[]float64{-89.5, -45, 0, 30.25, 89.5},
		[]float64{-170, 0, 95.5},
		[]float64{-1, 0, 400, 20000},
	)
	for _, via := range []CoordSystem{GeocentricSpherical, GeocentricCartesian, GeodeticAboveEGM96} {
		mid, err := Convert(points, GeodeticAboveWGS84, via)
		require.NoError(t, err)
		back, err := Convert(mid, via, GeodeticAboveWGS84)
		require.NoError(t, err)
		require.Equal(t, points.Shape, back.Shape)
		for i, v := range points.Data {
			assert.InDelta(t, v, back.Data[i], 1e-8, "via %s element %d", via, i)
		}
	}
}

func TestConvertMatchesGeoconv(t *testing.T) {
	points, err := NewArrayFrom([]float64{45, 10, 100, -20, 250, 0}, 2, 3)
	require.NoError(t, err)

	cart, err := Convert(points, GeodeticAboveWGS84, GeocentricCartesian)
	require.NoError(t, err)
	x, y, z := geoconv.GeodeticToCartesian(45, 10, 100, geoconv.WGS84A, geoconv.WGS84Eps2)
	assert.InDelta(t, x, cart.At(0, 0), 1e-9)
	assert.InDelta(t, y, cart.At(0, 1), 1e-9)
	assert.InDelta(t, z, cart.At(0, 2), 1e-9)

	sph, err := Convert(points, GeodeticAboveWGS84, GeocentricSpherical)
	require.NoError(t, err)
	crad, clat, _ := geoconv.GeodeticToGeocentric(-20, 250, 0, geoconv.WGS84A, geoconv.WGS84Eps2)
	assert.InDelta(t, geoconv.RadToDeg*clat, sph.At(1, 0), 1e-12)
	assert.InDelta(t, 250.0, sph.At(1, 1), 1e-12)
	assert.InDelta(t, crad, sph.At(1, 2), 1e-9)

	same, err := Convert(points, GeocentricSpherical, GeocentricSpherical)
	require.NoError(t, err)
	assert.Equal(t, points.Data, same.Data)
	same.Data[0] = 0
	assert.Equal(t, 45.0, points.Data[0], "the result does not alias the input")
}

func TestConvertGeoidHeights(t *testing.T) {
	const undulation = -0.02
	grid, err := geoid.NewGrid(-90, 0, 180, 180, 2, 2, []float64{undulation, undulation, undulation, undulation})
	require.NoError(t, err)

	points, err := NewArrayFrom([]float64{10, 20, 1}, 1, 3)
	require.NoError(t, err)
	out, err := Convert(points, GeodeticAboveWGS84, GeodeticAboveEGM96, WithGeoid(grid))
	require.NoError(t, err)
	assert.InDelta(t, 10.0, out.At(0, 0), 1e-9)
	assert.InDelta(t, 1-undulation, out.At(0, 2), 1e-9)
}

func TestConvertErrors(t *testing.T) {
	points, err := NewArrayFrom([]float64{10, 20, 1}, 1, 3)
	require.NoError(t, err)

	_, err = Convert(points, CoordSystem(5), GeocentricSpherical)
	assert.ErrorIs(t, err, ErrInvalidCoordSystem)
	_, err = Convert(points, GeocentricSpherical, CoordSystem(-2))
	assert.ErrorIs(t, err, ErrInvalidCoordSystem)

	bad, err := NewArray(3)
	require.NoError(t, err)
	_, err = Convert(bad, GeocentricSpherical, GeocentricCartesian)
	assert.NoError(t, err, "a single point is a valid array")

	bad, err = NewArray(2, 2)
	require.NoError(t, err)
	_, err = Convert(bad, GeocentricSpherical, GeocentricCartesian)
	assert.ErrorIs(t, err, ErrShape)

	_, err = Convert(points, GeodeticAboveWGS84, GeocentricCartesian, WithReferenceRadius(-1))
	assert.ErrorIs(t, err, ErrInvalidOption)
}
