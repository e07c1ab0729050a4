package shc

/*
Package shc provides the spherical harmonic recurrences and the series
summation used to evaluate a geomagnetic potential field model.

Coefficient and Legendre tables share one linear layout: the term of degree
n and order m is stored at index n*(n+1)/2 + m.

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

// poleThreshold is the smallest |cos(latitude)| for which the east component
// is obtained by dividing by cos(latitude). Closer to the poles the m=1 limit
// is summed instead.
const poleThreshold = 1e-10

// Tables groups the recurrence tables consumed by Eval. Eval never writes them.
type Tables struct {
	Lp    []float64 // Lp holds the Schmidt semi-normalised associated Legendre functions P(n,m).
	Ldp   []float64 // Ldp holds the latitude derivatives dP(n,m)/dlat.
	Lsin  []float64 // Lsin holds sin(m*lon) for m = 0..degree.
	Lcos  []float64 // Lcos holds cos(m*lon) for m = 0..degree.
	Rrp   []float64 // Rrp holds the relative radial powers (rref/r)^(n+2) for n = 0..degree.
	Psqrt []float64 // Psqrt holds sqrt(i) for i = 0..2*degree.
}

// TermCount returns the number of (n, m) coefficient pairs of a model of the given degree.
func TermCount(degree int) int {
	return ((degree + 1) * (degree + 2)) / 2
}

// Index returns the linear index of the term of degree n and order m.
func Index(n, m int) int {
	return (n*(n+1))/2 + m
}

// SqrtCount returns the length of the square root table needed by Legendre.
func SqrtCount(degree int) int {
	return 2*degree + 1
}

// FillSqrt stores sqrt(i) at every index i of psqrt.
func FillSqrt(psqrt []float64) {
	for i := range psqrt {
		psqrt[i] = math.Sqrt(float64(i))
	}
}

// Legendre evaluates the Schmidt semi-normalised associated Legendre functions
// of sin(lat) and their derivatives with respect to the latitude.
//
// Parameters:
//   - lp, ldp: Output tables of at least TermCount(degree) elements.
//   - degree: Maximum degree.
//   - lat: Geocentric latitude in radians.
//   - psqrt: Square root table of at least SqrtCount(degree) elements (see FillSqrt).
func Legendre(lp, ldp []float64, degree int, lat float64, psqrt []float64) {
	sinLat, cosLat := math.Sincos(lat)

	lp[0] = 1.0
	ldp[0] = 0.0
	if degree < 1 {
		return
	}
	lp[1] = sinLat  // P(1,0)
	ldp[1] = cosLat // dP(1,0)
	lp[2] = cosLat  // P(1,1)
	ldp[2] = -sinLat

	for n := 2; n <= degree; n++ {
		off := Index(n, 0)
		off1 := Index(n-1, 0)
		off2 := Index(n-2, 0)

		for m := 0; m < n; m++ {
			norm := psqrt[n-m] * psqrt[n+m]
			a := float64(2*n-1) / norm
			p1 := lp[off1+m]
			dp1 := ldp[off1+m]
			p := a * sinLat * p1
			dp := a * (cosLat*p1 + sinLat*dp1)
			if m < n-1 { // P(n-2,m) exists
				b := psqrt[n-1-m] * psqrt[n-1+m] / norm
				p -= b * lp[off2+m]
				dp -= b * ldp[off2+m]
			}
			lp[off+m] = p
			ldp[off+m] = dp
		}

		// sectoral term P(n,n)
		c := psqrt[2*n-1] / psqrt[2*n]
		pd := lp[off1+n-1]
		dpd := ldp[off1+n-1]
		lp[off+n] = c * cosLat * pd
		ldp[off+n] = c * (cosLat*dpd - sinLat*pd)
	}
}

// AzimuthSinCos evaluates sin(m*lon) and cos(m*lon) for m = 0..degree by the
// angle addition recurrence.
func AzimuthSinCos(lsin, lcos []float64, degree int, lon float64) {
	lsin[0] = 0.0
	lcos[0] = 1.0
	if degree < 1 {
		return
	}
	s1, c1 := math.Sincos(lon)
	lsin[1] = s1
	lcos[1] = c1
	for m := 2; m <= degree; m++ {
		lsin[m] = lsin[m-1]*c1 + lcos[m-1]*s1
		lcos[m] = lcos[m-1]*c1 - lsin[m-1]*s1
	}
}

// RelRadPow evaluates (1/relRad)^(n+2) for n = 0..degree, where relRad is the
// radius divided by the reference radius.
func RelRadPow(rrp []float64, degree int, relRad float64) {
	rr := 1.0 / relRad
	rrp[0] = rr * rr
	for n := 1; n <= degree; n++ {
		rrp[n] = rrp[n-1] * rr
	}
}

// Eval sums the spherical harmonic series.
//
// Parameters:
//   - degree: Maximum degree.
//   - potential, gradient: Select the evaluated quantities.
//   - lat: Geocentric latitude in radians, the one the Legendre tables were built for.
//   - rad: Radius in the units of the reference radius (potential scaling).
//   - g, h: Coefficients in the linear (n, m) layout.
//   - t: Recurrence tables valid for the evaluated point.
//
// Returns:
//   - pot: The scalar potential (zero unless requested).
//   - fLat, fLon, fRad: The northward, eastward and radial (outward) components
//     of the field, the negative gradient of the potential (zero unless requested).
func Eval(degree int, potential, gradient bool, lat, rad float64, g, h []float64, t Tables) (pot, fLat, fLon, fRad float64) {
	for n := 0; n <= degree; n++ {
		off := Index(n, 0)
		rrp := t.Rrp[n]
		for m := 0; m <= n; m++ {
			idx := off + m
			tmp0 := (g[idx]*t.Lcos[m] + h[idx]*t.Lsin[m]) * rrp
			if potential {
				pot += tmp0 * t.Lp[idx]
			}
			if gradient {
				tmp1 := (g[idx]*t.Lsin[m] - h[idx]*t.Lcos[m]) * rrp
				fLat -= tmp0 * t.Ldp[idx]
				fLon += tmp1 * t.Lp[idx] * float64(m)
				fRad += tmp0 * t.Lp[idx] * float64(n+1)
			}
		}
	}

	if potential {
		pot *= rad
	}
	if gradient {
		sinLat, cosLat := math.Sincos(lat)
		if math.Abs(cosLat) > poleThreshold {
			fLon /= cosLat
		} else {
			fLon = poleEast(degree, sinLat, g, h, t)
		}
	}
	return pot, fLat, fLon, fRad
}

// poleEast sums the east component at a pole where only the order m=1 terms
// survive. q holds the limit of P(n,1)/cos(lat), following the P(n,1)
// recurrence with P(1,1)/cos(lat) = 1.
func poleEast(degree int, sinLat float64, g, h []float64, t Tables) float64 {
	var east float64
	qPrev, q := 0.0, 1.0 // q(0), q(1)
	for n := 1; n <= degree; n++ {
		if n > 1 {
			next := float64(2*n-1) * sinLat * q
			if n > 2 {
				next -= t.Psqrt[n-2] * t.Psqrt[n] * qPrev
			}
			next /= t.Psqrt[n-1] * t.Psqrt[n+1]
			qPrev, q = q, next
		}
		idx := Index(n, 1)
		east += (g[idx]*t.Lsin[1] - h[idx]*t.Lcos[1]) * t.Rrp[n] * q
	}
	return east
}
