// ./api.go

/*
Package geomag evaluates static spherical harmonic geomagnetic field models.

The package sums a spherical harmonic expansion of the geomagnetic potential,
given by its Gauss coefficients g and h up to a maximum degree, at arbitrary
points. Points may be given, and field vectors returned, in geodetic,
geocentric spherical or geocentric Cartesian coordinates.

Key Features:
  - Potential and/or field vector evaluation at single points.
  - Batch evaluation of n-dimensional point arrays, serial or parallel.
  - Reuse of the Legendre, azimuthal and radial recurrences between
    consecutive points sharing a latitude, longitude or radius.
  - Coordinate conversion of point arrays and field line tracing.

Usage:

 1. Create a model from the coefficients:
    ```go
    model, err := geomag.NewModel(13, geomag.GeodeticAboveWGS84, geomag.GeodeticAboveWGS84, g, h)
    if err != nil {
        log.Fatal(err)
    }
    defer model.Close()
    ```

 2. Evaluate the field at a point (latitude, longitude in degrees, height in km):
    ```go
    res, err := model.Eval(geomag.Gradient, 45.0, 30.0, 400.0)
    if err != nil {
        log.Fatal(err)
    }
    fmt.Printf("north %.1f nT, east %.1f nT, up %.1f nT\n", res.Gradient[0], res.Gradient[1], res.Gradient[2])
    ```

 3. Evaluate an array of points:
    ```go
    points, _ := geomag.NewArrayFrom(coords, len(coords)/3, 3)
    pot, grad, err := model.EvalBatch(points, geomag.PotentialAndGradient, geomag.RowMajor)
    ```

A Model caches the recurrence tables of the last evaluated point and must not
be used from several goroutines at once. Use Clone to obtain one Model per
goroutine; clones share the read-only coefficients.

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

// Package geomag evaluates static spherical harmonic geomagnetic field models.
package geomag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mshafiee/geomag/geoconv"
	"github.com/mshafiee/geomag/geoid"
	"github.com/mshafiee/geomag/shc"
)

// ErrInvalidDegree is returned when the model degree is not positive.
var ErrInvalidDegree = errors.New("invalid model degree")

// ErrAllocation is returned when the recurrence tables of a model cannot be allocated.
var ErrAllocation = errors.New("recurrence table allocation failed")

// ErrInvalidCoordSystem is returned for an unknown coordinate system.
var ErrInvalidCoordSystem = errors.New("invalid coordinate system")

// ErrInvalidMode is returned for an unknown evaluation mode.
var ErrInvalidMode = errors.New("invalid evaluation mode")

// ErrInvalidOrder is returned for an unknown batch iteration order.
var ErrInvalidOrder = errors.New("invalid iteration order")

// ErrCoefficientCount is returned when a coefficient slice is shorter than the number of model terms.
var ErrCoefficientCount = errors.New("insufficient number of coefficients")

// ErrShape is returned when an array does not have the shape required by an operation.
var ErrShape = errors.New("invalid array shape")

// ErrInvalidOption is returned when a model option carries an unusable value.
var ErrInvalidOption = errors.New("invalid model option")

// ErrModelClosed is returned when a closed Model is evaluated.
var ErrModelClosed = errors.New("model is closed")

// CoordSystem selects how the three components of a point or vector are interpreted.
type CoordSystem int

const (
	// GeodeticAboveWGS84 is geodetic latitude and longitude (degrees) and height above the WGS84 ellipsoid (km).
	// Vectors are given as (north, east, up) in the local geodetic frame, with
	// up along the outward ellipsoid normal. The (radial, north) pair of the
	// spherical frame is rotated by the geocentric minus the geodetic latitude,
	// the sign that keeps a radial-up vector on the ellipsoid normal. Callers
	// that expect a downward vertical, or the opposite rotation sign, must
	// convert.
	GeodeticAboveWGS84 CoordSystem = CT_GEODETIC_ABOVE_WGS84
	// GeodeticAboveEGM96 is geodetic latitude and longitude (degrees) and height above the geoid (km).
	// Vectors are given as for GeodeticAboveWGS84.
	GeodeticAboveEGM96 CoordSystem = CT_GEODETIC_ABOVE_EGM96
	// GeocentricSpherical is geocentric latitude and longitude (degrees) and radius (km).
	// Vectors are given as (north, east, radial) in the local spherical frame.
	GeocentricSpherical CoordSystem = CT_GEOCENTRIC_SPHERICAL
	// GeocentricCartesian is Earth-centred, Earth-fixed x, y, z (km). Vectors are given as (x, y, z).
	GeocentricCartesian CoordSystem = CT_GEOCENTRIC_CARTESIAN
)

var coordSystemNames = [ct_count]string{
	"geodetic_wgs84",
	"geodetic_egm96",
	"geocentric_spherical",
	"geocentric_cartesian",
}

// Valid reports whether c is one of the supported coordinate systems.
func (c CoordSystem) Valid() bool {
	return c >= 0 && c < ct_count
}

// String returns the configuration name of the coordinate system.
func (c CoordSystem) String() string {
	if !c.Valid() {
		return fmt.Sprintf("CoordSystem(%d)", int(c))
	}
	return coordSystemNames[c]
}

// isGeodetic reports whether vectors in c are expressed in the local geodetic frame.
func (c CoordSystem) isGeodetic() bool {
	return c == GeodeticAboveWGS84 || c == GeodeticAboveEGM96
}

// ParseCoordSystem returns the coordinate system with the given name (see CoordSystem.String).
func ParseCoordSystem(name string) (CoordSystem, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, n := range coordSystemNames {
		if n == key {
			return CoordSystem(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidCoordSystem, name)
}

// Mode selects the quantities computed by an evaluation.
type Mode int

const (
	// Potential requests the scalar potential.
	Potential Mode = GM_POTENTIAL
	// Gradient requests the field vector.
	Gradient Mode = GM_GRADIENT
	// PotentialAndGradient requests both quantities; it equals Potential | Gradient.
	PotentialAndGradient Mode = GM_POTENTIAL_AND_GRADIENT
)

// Valid reports whether m is one of Potential, Gradient and PotentialAndGradient.
func (m Mode) Valid() bool {
	return m == Potential || m == Gradient || m == PotentialAndGradient
}

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case Potential:
		return "potential"
	case Gradient:
		return "gradient"
	case PotentialAndGradient:
		return "potential_and_gradient"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode returns the mode with the given name (see Mode.String).
func ParseMode(name string) (Mode, error) {
	for _, m := range []Mode{Potential, Gradient, PotentialAndGradient} {
		if strings.EqualFold(strings.TrimSpace(name), m.String()) {
			return m, nil
		}
	}
	return GM_INVALID, fmt.Errorf("%w: %q", ErrInvalidMode, name)
}

func checkMode(m Mode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidMode, int(m))
	}
	return nil
}

// Vector is a three component vector. The meaning of the components depends
// on the CoordSystem it is expressed in.
type Vector [3]float64

// Result holds the outcome of a single point evaluation.
type Result struct {
	Mode      Mode    // Mode is the evaluation mode that produced the result.
	Potential float64 // Potential is the scalar potential in nT*km (zero unless requested).
	Gradient  Vector  // Gradient is the field vector in nT (zero unless requested).
}

// Ellipsoid is a reference ellipsoid.
type Ellipsoid struct {
	SemiMajorAxis       float64 // SemiMajorAxis in km.
	SquaredEccentricity float64 // SquaredEccentricity is the squared first eccentricity.
}

// WGS84 is the World Geodetic System 1984 ellipsoid.
var WGS84 = Ellipsoid{SemiMajorAxis: geoconv.WGS84A, SquaredEccentricity: geoconv.WGS84Eps2}

// Option customises a Model created by NewModel.
type Option func(*options) error

type options struct {
	ellipsoid Ellipsoid
	refRadius float64
	geoid     geoid.Model
	alloc     tableAllocator
}

func defaultOptions() options {
	return options{
		ellipsoid: WGS84,
		refRadius: RADIUS,
		geoid:     geoid.Zero{},
		alloc:     heapAllocator{},
	}
}

func buildOptions(opts []Option) (options, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return options{}, err
		}
	}
	return o, nil
}

// WithEllipsoid sets the reference ellipsoid used by the geodetic coordinate systems.
func WithEllipsoid(e Ellipsoid) Option {
	return func(o *options) error {
		if !(e.SemiMajorAxis > 0) || !(e.SquaredEccentricity >= 0 && e.SquaredEccentricity < 1) {
			return fmt.Errorf("%w: ellipsoid a=%g e2=%g", ErrInvalidOption, e.SemiMajorAxis, e.SquaredEccentricity)
		}
		o.ellipsoid = e
		return nil
	}
}

// WithReferenceRadius sets the reference radius (km) the coefficients are normalised to.
func WithReferenceRadius(r float64) Option {
	return func(o *options) error {
		if !(r > 0) {
			return fmt.Errorf("%w: reference radius %g", ErrInvalidOption, r)
		}
		o.refRadius = r
		return nil
	}
}

// WithGeoid sets the geoid model used by GeodeticAboveEGM96. The default geoid
// coincides with the ellipsoid.
func WithGeoid(g geoid.Model) Option {
	return func(o *options) error {
		if g == nil {
			return fmt.Errorf("%w: nil geoid", ErrInvalidOption)
		}
		o.geoid = g
		return nil
	}
}

// withAllocator replaces the recurrence table allocator.
func withAllocator(a tableAllocator) Option {
	return func(o *options) error {
		o.alloc = a
		return nil
	}
}

// Index returns the linear coefficient index of degree n and order m.
func Index(n, m int) int {
	return shc.Index(n, m)
}

// TermCount returns the number of coefficients of a model of the given degree.
func TermCount(degree int) int {
	return shc.TermCount(degree)
}

// Coefficients is an immutable set of Gauss coefficients. The slices are
// owned by the caller and only read, so one Coefficients value may be shared
// by any number of Models and goroutines.
type Coefficients struct {
	degree int       // degree is the maximum harmonic degree.
	g, h   []float64 // g, h hold the coefficients in the Index layout.
}

// NewCoefficients wraps the coefficient slices of a model of the given degree.
//
// Parameters:
//   - degree: Maximum harmonic degree (positive).
//   - g, h: Coefficients in nT, laid out by Index. Each must hold at least
//     TermCount(degree) values; extra values are ignored.
//
// Returns:
//   - *Coefficients: The coefficient set.
//   - error: ErrInvalidDegree or ErrCoefficientCount.
func NewCoefficients(degree int, g, h []float64) (*Coefficients, error) {
	if degree < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDegree, degree)
	}
	nterm := shc.TermCount(degree)
	if len(g) < nterm {
		return nil, fmt.Errorf("%w: coef_g has %d values, degree %d needs %d", ErrCoefficientCount, len(g), degree, nterm)
	}
	if len(h) < nterm {
		return nil, fmt.Errorf("%w: coef_h has %d values, degree %d needs %d", ErrCoefficientCount, len(h), degree, nterm)
	}
	return &Coefficients{degree: degree, g: g[:nterm:nterm], h: h[:nterm:nterm]}, nil
}

// Degree returns the maximum harmonic degree.
func (c *Coefficients) Degree() int { return c.degree }

// TermCount returns the number of (n, m) terms.
func (c *Coefficients) TermCount() int { return len(c.g) }

// G returns the coefficient g of degree n and order m.
func (c *Coefficients) G(n, m int) float64 { return c.g[shc.Index(n, m)] }

// H returns the coefficient h of degree n and order m.
func (c *Coefficients) H(n, m int) float64 { return c.h[shc.Index(n, m)] }

// Truncate returns the coefficients limited to the given degree. The result
// shares the underlying slices.
func (c *Coefficients) Truncate(degree int) (*Coefficients, error) {
	if degree > c.degree {
		return nil, fmt.Errorf("%w: cannot truncate degree %d to %d", ErrInvalidDegree, c.degree, degree)
	}
	return NewCoefficients(degree, c.g, c.h)
}

// Model evaluates one coefficient set. It couples the immutable coefficients
// and conversion settings with a mutable recurrence cache.
type Model struct {
	coef  *Coefficients    // coef is shared, never written.
	in    CoordSystem      // in is the coordinate system of the evaluated points.
	out   CoordSystem      // out is the coordinate system of the returned vectors.
	opts  options          // opts holds the ellipsoid, reference radius, geoid and allocator.
	cache *recurrenceCache // cache is owned by this Model only; nil once closed.
}

// NewModel creates a model from coefficient slices.
//
// Parameters:
//   - degree: Maximum harmonic degree (positive).
//   - in: Coordinate system of the evaluated points.
//   - out: Coordinate system of the returned field vectors.
//   - g, h: Coefficients laid out by Index, at least TermCount(degree) each.
//   - opts: Optional ellipsoid, reference radius and geoid settings.
//
// Returns:
//   - *Model: The model; call Close to release its tables.
//   - error: ErrInvalidDegree, ErrCoefficientCount, ErrInvalidCoordSystem,
//     ErrInvalidOption or ErrAllocation. No partially built model is returned.
func NewModel(degree int, in, out CoordSystem, g, h []float64, opts ...Option) (*Model, error) {
	coef, err := NewCoefficients(degree, g, h)
	if err != nil {
		return nil, err
	}
	return NewModelFromCoefficients(coef, in, out, opts...)
}

// NewModelFromCoefficients creates a model from a coefficient set (see NewModel).
func NewModelFromCoefficients(coef *Coefficients, in, out CoordSystem, opts ...Option) (*Model, error) {
	if coef == nil {
		return nil, fmt.Errorf("%w: nil coefficients", ErrInvalidDegree)
	}
	if !in.Valid() {
		return nil, fmt.Errorf("%w: input %d", ErrInvalidCoordSystem, int(in))
	}
	if !out.Valid() {
		return nil, fmt.Errorf("%w: output %d", ErrInvalidCoordSystem, int(out))
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	return initModel(coef, in, out, o)
}

// Clone returns a new Model over the same coefficients and settings with its
// own, empty recurrence cache.
func (m *Model) Clone() (*Model, error) {
	return m.withSystems(m.in, m.out)
}

// Close releases the recurrence tables. It is safe to call Close on a zero
// Model or more than once.
func (m *Model) Close() error {
	destroyModel(m)
	return nil
}

// Eval evaluates the model at one point.
//
// Parameters:
//   - mode: Quantities to compute (Potential, Gradient or PotentialAndGradient).
//   - x, y, z: Point coordinates in the model's input coordinate system.
//
// Returns:
//   - Result: The potential and/or the field vector in the output coordinate system.
//   - error: ErrInvalidMode (checked before any computation) or ErrModelClosed.
func (m *Model) Eval(mode Mode, x, y, z float64) (Result, error) {
	if err := checkMode(mode); err != nil {
		return Result{}, err
	}
	if m.cache == nil {
		return Result{}, ErrModelClosed
	}
	res, _ := evalPoint(m, mode, x, y, z)
	return res, nil
}

// Coefficients returns the coefficient set of the model.
func (m *Model) Coefficients() *Coefficients { return m.coef }

// Degree returns the maximum harmonic degree.
func (m *Model) Degree() int { return m.coef.degree }

// Input returns the coordinate system of the evaluated points.
func (m *Model) Input() CoordSystem { return m.in }

// Output returns the coordinate system of the returned vectors.
func (m *Model) Output() CoordSystem { return m.out }

// Ellipsoid returns the reference ellipsoid.
func (m *Model) Ellipsoid() Ellipsoid { return m.opts.ellipsoid }

// ReferenceRadius returns the reference radius in km.
func (m *Model) ReferenceRadius() float64 { return m.opts.refRadius }

// Stats returns the recurrence cache counters. A closed model reports zeros.
func (m *Model) Stats() CacheStats {
	if m.cache == nil {
		return CacheStats{}
	}
	return m.cache.stats
}
