// ./model.go
package geomag

/*
Package geomag provides the single point evaluation of geomagnetic field models.

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

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/mshafiee/geomag/geoconv"
	"github.com/mshafiee/geomag/geoid"
	"github.com/mshafiee/geomag/shc"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var logger = discardLogger // Debug output is discarded unless SetLogger is called

// SetLogger sets the logger receiving the package debug events (model
// creation and release, parallel batch progress). Passing nil restores the
// default, which discards everything. It must not be called concurrently with
// other package functions.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = discardLogger
	}
	logger = l
}

// frame holds what is needed to move points between coordinate systems.
type frame struct {
	ellipsoid Ellipsoid   // ellipsoid is the reference ellipsoid of the geodetic systems.
	geoid     geoid.Model // geoid gives the geoid height for GeodeticAboveEGM96.
}

func (o options) frame() frame {
	return frame{ellipsoid: o.ellipsoid, geoid: o.geoid}
}

// canonicalPoint is a point in the geocentric spherical working frame.
type canonicalPoint struct {
	clat float64 // clat is the geocentric latitude in radians.
	clon float64 // clon is the longitude in radians.
	crad float64 // crad is the geocentric radius in km.
	glat float64 // glat is the geodetic latitude in degrees, set only when requested.
}

// toCanonical converts a point given in cs to the working frame. The geodetic
// latitude is derived for spherical and Cartesian input only when
// needGeodetic is set. An unknown cs yields ok == false and no point.
func (f frame) toCanonical(cs CoordSystem, x, y, z float64, needGeodetic bool) (p canonicalPoint, ok bool) {
	a, eps2 := f.ellipsoid.SemiMajorAxis, f.ellipsoid.SquaredEccentricity
	switch cs {
	case GeodeticAboveWGS84:
		p.glat = x
		p.crad, p.clat, p.clon = geoconv.GeodeticToGeocentric(x, y, z, a, eps2)
	case GeodeticAboveEGM96:
		p.glat = x
		h := z + f.geoid.Undulation(x, y)
		p.crad, p.clat, p.clon = geoconv.GeodeticToGeocentric(x, y, h, a, eps2)
	case GeocentricSpherical:
		p.clat = geoconv.DegToRad * x
		p.clon = geoconv.DegToRad * y
		p.crad = z
		if needGeodetic {
			p.glat, _, _ = geoconv.GeocentricToGeodetic(p.crad, p.clat, p.clon, a, eps2)
		}
	case GeocentricCartesian:
		p.crad, p.clat, p.clon = geoconv.CartesianToSpherical(x, y, z)
		if needGeodetic {
			p.glat, _, _ = geoconv.CartesianToGeodetic(x, y, z, a, eps2)
		}
	default:
		// Unknown systems produce no point at all. Public constructors reject
		// them, so only internal callers can reach this arm.
		return canonicalPoint{}, false
	}
	return p, true
}

// fromCanonical converts a working frame point to coordinates in cs.
func (f frame) fromCanonical(cs CoordSystem, p canonicalPoint) (x, y, z float64, ok bool) {
	a, eps2 := f.ellipsoid.SemiMajorAxis, f.ellipsoid.SquaredEccentricity
	switch cs {
	case GeodeticAboveWGS84, GeodeticAboveEGM96:
		lat, lon, h := geoconv.GeocentricToGeodetic(p.crad, p.clat, p.clon, a, eps2)
		if cs == GeodeticAboveEGM96 {
			h -= f.geoid.Undulation(lat, lon)
		}
		return lat, lon, h, true
	case GeocentricSpherical:
		return geoconv.RadToDeg * p.clat, geoconv.RadToDeg * p.clon, p.crad, true
	case GeocentricCartesian:
		x, y, z = geoconv.SphericalToCartesian(p.crad, p.clat, p.clon)
		return x, y, z, true
	}
	return 0, 0, 0, false
}

// project rotates a field vector given as (north, east, radial) in the local
// spherical frame at p into the vector representation of cs.
func project(cs CoordSystem, p canonicalPoint, fLat, fLon, fRad float64) Vector {
	switch cs {
	case GeodeticAboveWGS84, GeodeticAboveEGM96:
		// The geodetic vertical is the radial direction tilted northwards by
		// glat - clat; rotating the (radial, north) pair back by that angle
		// gives the (up, north) pair.
		sin, cos := math.Sincos(p.clat - geoconv.DegToRad*p.glat)
		up, north := geoconv.Rotate2D(fRad, fLat, sin, cos)
		return Vector{north, fLon, up}
	case GeocentricCartesian:
		sinLat, cosLat := math.Sincos(p.clat)
		sinLon, cosLon := math.Sincos(p.clon)
		rho, z := geoconv.Rotate2D(fRad, fLat, sinLat, cosLat)
		x, y := geoconv.Rotate2D(rho, fLon, sinLon, cosLon)
		return Vector{x, y, z}
	}
	return Vector{fLat, fLon, fRad}
}

// initModel allocates the recurrence cache of a new Model.
func initModel(coef *Coefficients, in, out CoordSystem, o options) (*Model, error) {
	cache, err := newRecurrenceCache(o.alloc, coef.degree)
	if err != nil {
		logger.Debug("model initialization failed", "degree", coef.degree, "error", err)
		return nil, fmt.Errorf("model initialization failed: %w", err)
	}
	logger.Debug("model initialized",
		"degree", coef.degree,
		"terms", len(coef.g),
		"input", in.String(),
		"output", out.String(),
	)
	return &Model{coef: coef, in: in, out: out, opts: o, cache: cache}, nil
}

// destroyModel releases the cache of m. It does nothing for a nil, zero or
// already destroyed Model.
func destroyModel(m *Model) {
	if m == nil || m.cache == nil {
		return
	}
	m.cache.tables.release(m.opts.alloc)
	m.cache = nil
	logger.Debug("model released", "degree", m.coef.degree)
}

// withSystems creates a Model over the same coefficients and options with
// other coordinate systems and a fresh cache.
func (m *Model) withSystems(in, out CoordSystem) (*Model, error) {
	if !in.Valid() || !out.Valid() {
		return nil, fmt.Errorf("%w: %d -> %d", ErrInvalidCoordSystem, int(in), int(out))
	}
	return initModel(m.coef, in, out, m.opts)
}

// evalPoint evaluates one point. The mode must be valid and the model open.
// ok is false, and the cache untouched, when the input system is unknown.
func evalPoint(m *Model, mode Mode, x, y, z float64) (res Result, ok bool) {
	p, ok := m.opts.frame().toCanonical(m.in, x, y, z, m.out.isGeodetic())
	if !ok {
		return Result{}, false
	}

	m.cache.refresh(m.coef.degree, p.clat, p.clon, p.crad, m.opts.refRadius)

	wantPot := mode&Potential != 0
	wantGrad := mode&Gradient != 0
	pot, fLat, fLon, fRad := shc.Eval(m.coef.degree, wantPot, wantGrad,
		p.clat, p.crad, m.coef.g, m.coef.h, m.cache.tables.view())

	res.Mode = mode
	if wantPot {
		res.Potential = pot
	}
	if wantGrad {
		res.Gradient = project(m.out, p, fLat, fLon, fRad)
	}
	return res, true
}
