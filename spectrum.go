// ./spectrum.go
package geomag

/*
Package geomag provides diagnostics of geomagnetic field models.

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
	"errors"
	"fmt"
	"math"

	"github.com/mshafiee/geomag/geoconv"
)

// ErrNoDipole is returned by DipoleAxis for coefficients without degree 1 terms.
var ErrNoDipole = errors.New("model has no dipole")

// PowerSpectrum returns the Lowes-Mauersberger spatial power spectrum of the
// field at a given radius, R_n = (n+1) (a/r)^(2n+4) sum_m (g_nm^2 + h_nm^2).
//
// Parameters:
//   - coef: Coefficient set.
//   - refRadius: Reference radius a of the coefficients in km.
//   - radius: Radius r of the sphere the spectrum is computed on, in km.
//
// Returns:
//   - []float64: R_n in nT^2 for n = 0..degree.
//   - error: ErrInvalidOption for non-positive radii.
func PowerSpectrum(coef *Coefficients, refRadius, radius float64) ([]float64, error) {
	if !(refRadius > 0) || !(radius > 0) {
		return nil, fmt.Errorf("%w: radii %g, %g", ErrInvalidOption, refRadius, radius)
	}
	ratio := refRadius / radius
	spectrum := make([]float64, coef.degree+1)
	for n := 0; n <= coef.degree; n++ {
		var sum float64
		for m := 0; m <= n; m++ {
			g, h := coef.G(n, m), coef.H(n, m)
			sum += g*g + h*h
		}
		spectrum[n] = float64(n+1) * math.Pow(ratio, float64(2*n+4)) * sum
	}
	return spectrum, nil
}

// DipoleAxis returns the axis of the centred dipole of a model, pointing to
// the geomagnetic pole in the hemisphere the field lines enter.
//
// Returns:
//   - Vector: Unit vector of the axis in geocentric Cartesian coordinates.
//   - float64: Geocentric latitude of the pole in degrees.
//   - float64: Longitude of the pole in degrees.
//   - error: ErrNoDipole if all degree 1 coefficients are zero.
func DipoleAxis(coef *Coefficients) (axis Vector, lat, lon float64, err error) {
	axis = Vector{-coef.G(1, 1), -coef.H(1, 1), -coef.G(1, 0)}
	norm := vnorm(axis)
	if norm == 0 {
		return Vector{}, 0, 0, ErrNoDipole
	}
	for i := range axis {
		axis[i] /= norm
	}
	lat = geoconv.RadToDeg * math.Asin(axis[2])
	lon = geoconv.RadToDeg * math.Atan2(axis[1], axis[0])
	return axis, lat, lon, nil
}
