// ./convert.go
package geomag

/*
Package geomag provides the conversion of point arrays between coordinate systems.

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

import "fmt"

// Convert converts every point of an array from one coordinate system to
// another. Only the ellipsoid and geoid options are used.
//
// Parameters:
//   - points: Array whose last axis has length 3.
//   - from: Coordinate system of points.
//   - to: Coordinate system of the result.
//   - opts: Optional WithEllipsoid and WithGeoid settings.
//
// Returns:
//   - *Array: Contiguous array shaped like points holding the converted coordinates.
//   - error: ErrInvalidCoordSystem, ErrShape or ErrInvalidOption.
func Convert(points *Array, from, to CoordSystem, opts ...Option) (*Array, error) {
	if !from.Valid() || !to.Valid() {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidCoordSystem, from, to)
	}
	if err := checkPoints(points); err != nil {
		return nil, err
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	out, err := NewArray(points.Shape...)
	if err != nil {
		return nil, err
	}

	f := o.frame()
	n := points.NDim()
	it := newMultiIndex(points.Shape[:n-1], RowMajor)
	idx := make([]int, n)
	stride := points.Strides[n-1]
	for k, total := 0, elementCount(points.Shape[:n-1]); k < total; k++ {
		copy(idx, it.idx)
		idx[n-1] = 0
		src := points.offset(idx)
		dst := out.offset(idx)

		x, y, z := points.Data[src], points.Data[src+stride], points.Data[src+2*stride]
		if from != to {
			p, _ := f.toCanonical(from, x, y, z, false)
			x, y, z, _ = f.fromCanonical(to, p)
		}
		out.Data[dst], out.Data[dst+1], out.Data[dst+2] = x, y, z
		it.advance()
	}
	return out, nil
}
