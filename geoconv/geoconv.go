package geoconv

/*
Package geoconv provides coordinate conversions between geodetic,
geocentric spherical and geocentric Cartesian coordinates.

This program is free software; you can redistribute it and/or
modify it under the terms of the GNU General Public License
as published by the Free Software Foundation; either version 2
of the License, or (at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program; if not, write to the Free Software
Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston, MA
02110-1301, USA.

Authorship:
Mohammad Shafiee authored this Go code.
*/

import "math"

// Angle conversion factors.
const (
	DegToRad = math.Pi / 180.0 // DegToRad converts degrees to radians.
	RadToDeg = 180.0 / math.Pi // RadToDeg converts radians to degrees.
)

// WGS84 reference ellipsoid. Lengths are in kilometres.
const (
	WGS84A    = 6378.137                    // WGS84A is the semi-major axis in km.
	WGS84F    = 1.0 / 298.257223563         // WGS84F is the flattening.
	WGS84B    = WGS84A * (1.0 - WGS84F)     // WGS84B is the semi-minor axis in km.
	WGS84Eps2 = WGS84F * (2.0 - WGS84F)     // WGS84Eps2 is the squared first eccentricity.
	WGS84Rm   = WGS84A * (1.0 - WGS84F/3.0) // WGS84Rm is the mean radius in km.
)

// The inverse geodetic transform iterates the latitude until two successive
// values differ by less than latTolerance radians.
const (
	latTolerance     = 1e-15
	maxLatIterations = 32
)

// Rotate2D rotates the pair (u, v) by the angle whose sine and cosine are given.
//
// Returns:
//   - u*cos - v*sin
//   - u*sin + v*cos
func Rotate2D(u, v, sin, cos float64) (float64, float64) {
	return u*cos - v*sin, u*sin + v*cos
}

// GeodeticToCartesian converts geodetic latitude/longitude (degrees) and height
// above the ellipsoid (km) to geocentric Cartesian coordinates (km).
//
// Parameters:
//   - lat, lon: Geodetic latitude and longitude in degrees.
//   - h: Height above the ellipsoid in km.
//   - a: Ellipsoid semi-major axis in km.
//   - eps2: Squared first eccentricity of the ellipsoid.
func GeodeticToCartesian(lat, lon, h, a, eps2 float64) (x, y, z float64) {
	sinLat, cosLat := math.Sincos(DegToRad * lat)
	sinLon, cosLon := math.Sincos(DegToRad * lon)
	n := a / math.Sqrt(1.0-eps2*sinLat*sinLat) // Prime vertical radius of curvature
	rho := (n + h) * cosLat
	return rho * cosLon, rho * sinLon, (n*(1.0-eps2) + h) * sinLat
}

// GeodeticToGeocentric converts geodetic coordinates to geocentric spherical ones.
//
// Parameters:
//   - lat, lon: Geodetic latitude and longitude in degrees.
//   - h: Height above the ellipsoid in km.
//   - a, eps2: Ellipsoid semi-major axis (km) and squared eccentricity.
//
// Returns:
//   - crad: Geocentric radius in km.
//   - clat, clon: Geocentric latitude and longitude in radians.
func GeodeticToGeocentric(lat, lon, h, a, eps2 float64) (crad, clat, clon float64) {
	sinLat, cosLat := math.Sincos(DegToRad * lat)
	n := a / math.Sqrt(1.0-eps2*sinLat*sinLat)
	rho := (n + h) * cosLat
	z := (n*(1.0-eps2) + h) * sinLat
	return math.Hypot(rho, z), math.Atan2(z, rho), DegToRad * lon
}

// CartesianToGeodetic converts geocentric Cartesian coordinates (km) to geodetic
// latitude/longitude (degrees) and height above the ellipsoid (km).
// The latitude is found by fixed point iteration, which converges by a factor
// of about eps2 per step.
func CartesianToGeodetic(x, y, z, a, eps2 float64) (lat, lon, h float64) {
	p := math.Hypot(x, y)
	lon = RadToDeg * math.Atan2(y, x)
	if p == 0 && z == 0 {
		return 0, lon, -a
	}

	phi := math.Atan2(z, p*(1.0-eps2)) // Exact for points on the ellipsoid surface
	for i := 0; i < maxLatIterations; i++ {
		sinPhi := math.Sin(phi)
		n := a / math.Sqrt(1.0-eps2*sinPhi*sinPhi)
		next := math.Atan2(z+eps2*n*sinPhi, p)
		done := math.Abs(next-phi) <= latTolerance
		phi = next
		if done {
			break
		}
	}

	sinPhi, cosPhi := math.Sincos(phi)
	n := a / math.Sqrt(1.0-eps2*sinPhi*sinPhi)
	if math.Abs(cosPhi) > math.Abs(sinPhi) {
		h = p/cosPhi - n
	} else {
		h = z/sinPhi - n*(1.0-eps2)
	}
	return RadToDeg * phi, lon, h
}

// GeocentricToGeodetic converts geocentric spherical coordinates (radius in km,
// latitude and longitude in radians) to geodetic latitude/longitude (degrees)
// and height above the ellipsoid (km).
func GeocentricToGeodetic(crad, clat, clon, a, eps2 float64) (lat, lon, h float64) {
	x, y, z := SphericalToCartesian(crad, clat, clon)
	lat, _, h = CartesianToGeodetic(x, y, z, a, eps2)
	return lat, RadToDeg * clon, h
}

// CartesianToSpherical converts Cartesian coordinates to the geocentric radius,
// latitude and longitude (radians).
func CartesianToSpherical(x, y, z float64) (r, lat, lon float64) {
	rho := math.Hypot(x, y)
	return math.Hypot(rho, z), math.Atan2(z, rho), math.Atan2(y, x)
}

// SphericalToCartesian converts the geocentric radius, latitude and longitude
// (radians) to Cartesian coordinates.
func SphericalToCartesian(r, lat, lon float64) (x, y, z float64) {
	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)
	rho := r * cosLat
	return rho * cosLon, rho * sinLon, r * sinLat
}
