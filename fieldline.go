// ./fieldline.go
package geomag

/*
Package geomag provides the tracing of magnetic field lines.

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
	"math"
	"slices"

	"github.com/mshafiee/geomag/geoconv"
)

// Field line tracing defaults.
const (
	DefaultTraceStep     = 10.0  // DefaultTraceStep is the integration step in km.
	DefaultTraceMaxSteps = 10000 // DefaultTraceMaxSteps bounds the steps taken in each direction.
)

// TraceOptions controls TraceFieldLine. Zero Step and MaxSteps select the
// defaults.
type TraceOptions struct {
	Step      float64 // Step is the arc length of one integration step in km.
	MaxSteps  int     // MaxSteps bounds the steps taken in each direction.
	MinHeight float64 // MinHeight is the height above the ellipsoid in km below which tracing stops.
}

func (o TraceOptions) withDefaults() (TraceOptions, error) {
	if o.Step == 0 {
		o.Step = DefaultTraceStep
	}
	if o.MaxSteps == 0 {
		o.MaxSteps = DefaultTraceMaxSteps
	}
	if !(o.Step > 0) || o.MaxSteps < 0 || math.IsNaN(o.MinHeight) {
		return o, fmt.Errorf("%w: trace step %g, max steps %d, min height %g",
			ErrInvalidOption, o.Step, o.MaxSteps, o.MinHeight)
	}
	return o, nil
}

func vadd(a, b Vector, s float64) Vector {
	return Vector{a[0] + s*b[0], a[1] + s*b[1], a[2] + s*b[2]}
}

func vnorm(a Vector) float64 {
	return math.Sqrt(a[0]*a[0] + a[1]*a[1] + a[2]*a[2])
}

// fieldTracer integrates along the field of a Cartesian model.
type fieldTracer struct {
	cart *Model // cart evaluates Cartesian points to Cartesian vectors.
	opts TraceOptions
}

// direction returns the unit field vector at r multiplied by sign. ok is
// false where the field vanishes.
func (t *fieldTracer) direction(r Vector, sign float64) (Vector, bool) {
	res, _ := evalPoint(t.cart, Gradient, r[0], r[1], r[2])
	b := vnorm(res.Gradient)
	if !(b > 0) || math.IsInf(b, 0) {
		return Vector{}, false
	}
	return Vector{sign * res.Gradient[0] / b, sign * res.Gradient[1] / b, sign * res.Gradient[2] / b}, true
}

// step advances r by one classical Runge-Kutta step along the field.
func (t *fieldTracer) step(r Vector, sign float64) (Vector, bool) {
	h := t.opts.Step
	k1, ok1 := t.direction(r, sign)
	k2, ok2 := t.direction(vadd(r, k1, h/2), sign)
	k3, ok3 := t.direction(vadd(r, k2, h/2), sign)
	k4, ok4 := t.direction(vadd(r, k3, h), sign)
	if !(ok1 && ok2 && ok3 && ok4) {
		return r, false
	}
	for i := range r {
		r[i] += h / 6 * (k1[i] + 2*k2[i] + 2*k3[i] + k4[i])
	}
	return r, true
}

// above reports whether r lies at or above the minimum height.
func (t *fieldTracer) above(r Vector) bool {
	e := t.cart.opts.ellipsoid
	_, _, h := geoconv.CartesianToGeodetic(r[0], r[1], r[2], e.SemiMajorAxis, e.SquaredEccentricity)
	return h >= t.opts.MinHeight
}

// follow integrates from r in one direction and returns the points reached,
// start excluded. The first point below the minimum height ends the path and
// is included in it.
func (t *fieldTracer) follow(r Vector, sign float64) []Vector {
	var path []Vector
	for i := 0; i < t.opts.MaxSteps; i++ {
		next, ok := t.step(r, sign)
		if !ok {
			break
		}
		path = append(path, next)
		if !t.above(next) {
			break
		}
		r = next
	}
	return path
}

// TraceFieldLine follows the magnetic field line through a point in both
// directions, integrating dr/ds = B/|B| with a fixed step, until the line
// descends below the minimum height or the step limit is reached. The first
// point below the minimum height is kept at each end, so both ends of a
// closed line lie just under MinHeight.
//
// Parameters:
//   - m: Model providing the field; its cache is used for the returned vectors.
//   - start: Starting point in the model's input coordinate system.
//   - opts: Step length, step limit and minimum height.
//
// Returns:
//   - []Vector: Points of the line in the model's input coordinate system,
//     starting at the end reached by following -B and ending at the end
//     reached by following +B.
//   - []Vector: Field vectors at those points in the model's output coordinate system.
//   - error: ErrInvalidOption, ErrModelClosed or a model creation error.
func TraceFieldLine(m *Model, start Vector, opts TraceOptions) (points, field []Vector, err error) {
	if m.cache == nil {
		return nil, nil, ErrModelClosed
	}
	if opts, err = opts.withDefaults(); err != nil {
		return nil, nil, err
	}
	cart, err := m.withSystems(GeocentricCartesian, GeocentricCartesian)
	if err != nil {
		return nil, nil, err
	}
	defer cart.Close()

	f := m.opts.frame()
	p, ok := f.toCanonical(m.in, start[0], start[1], start[2], false)
	if !ok {
		return nil, nil, fmt.Errorf("%w: input %d", ErrInvalidCoordSystem, int(m.in))
	}
	var r0 Vector
	r0[0], r0[1], r0[2] = geoconv.SphericalToCartesian(p.crad, p.clat, p.clon)

	t := &fieldTracer{cart: cart, opts: opts}
	backward := t.follow(r0, -1)
	forward := t.follow(r0, 1)

	line := make([]Vector, 0, len(backward)+1+len(forward))
	line = append(line, backward...)
	slices.Reverse(line)
	line = append(line, r0)
	line = append(line, forward...)

	points = make([]Vector, len(line))
	field = make([]Vector, len(line))
	for i, r := range line {
		cp, _ := f.toCanonical(GeocentricCartesian, r[0], r[1], r[2], false)
		x, y, z, _ := f.fromCanonical(m.in, cp)
		points[i] = Vector{x, y, z}
		res, err := m.Eval(Gradient, x, y, z)
		if err != nil {
			return nil, nil, err
		}
		field[i] = res.Gradient
	}
	logger.Debug("field line traced", "points", len(points), "backward", len(backward), "forward", len(forward))
	return points, field, nil
}
