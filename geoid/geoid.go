package geoid

/*
Package geoid provides geoid undulation models used to convert heights
above the geoid (mean sea level) to heights above the reference ellipsoid.

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
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ErrInvalidGrid is returned when a grid definition is inconsistent.
var ErrInvalidGrid = errors.New("invalid geoid grid")

// Model returns the height of the geoid above the reference ellipsoid.
type Model interface {
	// Undulation returns the geoid height in km at the geodetic latitude and
	// longitude given in degrees.
	Undulation(lat, lon float64) float64
}

// Zero is a geoid coinciding with the reference ellipsoid.
type Zero struct{}

// Undulation always returns zero.
func (Zero) Undulation(lat, lon float64) float64 { return 0 }

// Grid is a geoid sampled on a regular latitude/longitude grid and
// interpolated bilinearly. Latitudes outside the grid are clamped to its
// edge rows; longitudes wrap around when the grid spans the full circle.
type Grid struct {
	lat0, lon0 float64   // lat0, lon0 locate the first node in degrees.
	dlat, dlon float64   // dlat, dlon are the node spacings in degrees (non-zero).
	nlat, nlon int       // nlat, nlon are the numbers of rows and columns.
	values     []float64 // values holds nlat*nlon undulations in km, row-major by latitude.
	wrap       bool      // wrap is set when the columns cover 360 degrees.
}

// NewGrid creates a grid geoid.
//
// Parameters:
//   - lat0, lon0: Position of the first node in degrees.
//   - dlat, dlon: Node spacing in degrees; dlat may be negative for north-to-south rows.
//   - nlat, nlon: Number of rows (latitudes) and columns (longitudes).
//   - values: nlat*nlon undulations in km. The slice is retained, not copied.
func NewGrid(lat0, lon0, dlat, dlon float64, nlat, nlon int, values []float64) (*Grid, error) {
	if nlat < 1 || nlon < 1 {
		return nil, fmt.Errorf("%w: %dx%d nodes", ErrInvalidGrid, nlat, nlon)
	}
	if dlat == 0 || dlon <= 0 {
		return nil, fmt.Errorf("%w: spacing %g x %g", ErrInvalidGrid, dlat, dlon)
	}
	if len(values) != nlat*nlon {
		return nil, fmt.Errorf("%w: %d values for %dx%d nodes", ErrInvalidGrid, len(values), nlat, nlon)
	}
	span := dlon * float64(nlon)
	return &Grid{
		lat0: lat0, lon0: lon0,
		dlat: dlat, dlon: dlon,
		nlat: nlat, nlon: nlon,
		values: values,
		wrap:   math.Abs(span-360.0) < 1e-9,
	}, nil
}

// Undulation returns the bilinearly interpolated geoid height in km, or NaN
// when either coordinate is not finite.
func (g *Grid) Undulation(lat, lon float64) float64 {
	if !finite(lat) || !finite(lon) {
		return math.NaN()
	}
	i0, i1, fi := g.latCell(lat)
	j0, j1, fj := g.lonCell(lon)
	v00 := g.values[i0*g.nlon+j0]
	v01 := g.values[i0*g.nlon+j1]
	v10 := g.values[i1*g.nlon+j0]
	v11 := g.values[i1*g.nlon+j1]
	return (1-fi)*((1-fj)*v00+fj*v01) + fi*((1-fj)*v10+fj*v11)
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

func (g *Grid) latCell(lat float64) (int, int, float64) {
	t := (lat - g.lat0) / g.dlat
	if g.nlat == 1 || t <= 0 {
		return 0, 0, 0
	}
	if t >= float64(g.nlat-1) {
		return g.nlat - 1, g.nlat - 1, 0
	}
	i := int(t)
	return i, i + 1, t - float64(i)
}

func (g *Grid) lonCell(lon float64) (int, int, float64) {
	t := (lon - g.lon0) / g.dlon
	if g.wrap {
		t = math.Mod(t, float64(g.nlon))
		if t < 0 {
			t += float64(g.nlon)
		}
		j := int(t)
		if j >= g.nlon { // rounding in Mod
			j = g.nlon - 1
		}
		return j, (j + 1) % g.nlon, t - float64(j)
	}
	if g.nlon == 1 || t <= 0 {
		return 0, 0, 0
	}
	if t >= float64(g.nlon-1) {
		return g.nlon - 1, g.nlon - 1, 0
	}
	j := int(t)
	return j, j + 1, t - float64(j)
}

// ReadGrid parses a grid from its text form. The first non-comment line holds
// "lat0 lon0 dlat dlon nlat nlon"; the remaining whitespace separated numbers
// are the nlat*nlon undulations in metres, row by row. Lines starting with '#'
// are ignored.
func ReadGrid(r io.Reader) (*Grid, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var header []float64
	var values []float64
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		for _, field := range strings.Fields(text) {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidGrid, line, err)
			}
			if len(header) < 6 {
				header = append(header, v)
				continue
			}
			values = append(values, v/1000.0) // metres to km
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read geoid grid: %w", err)
	}
	if len(header) < 6 {
		return nil, fmt.Errorf("%w: missing header", ErrInvalidGrid)
	}
	return NewGrid(header[0], header[1], header[2], header[3], int(header[4]), int(header[5]), values)
}

// LoadGrid reads a text grid from a file (see ReadGrid).
func LoadGrid(filename string) (*Grid, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoid grid: %w", err)
	}
	defer f.Close()
	return ReadGrid(f)
}
