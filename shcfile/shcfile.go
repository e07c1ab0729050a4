// ./shcfile/shcfile.go
package shcfile

/*
Package shcfile reads spherical harmonic coefficient (SHC) files.

An SHC file is a text file holding the Gauss coefficients of a field model at
one or more epochs:

	# comment lines start with '#'
	1 13 2 2 1            nmin nmax ntimes spline-order steps
	2015.0 2020.0         the ntimes epochs, in decimal years
	1  0 -29441.46 -29404.8
	1  1  -1501.77  -1450.9
	1 -1   4795.99   4652.5
	...

Every coefficient row holds the degree n, the order m and one value per epoch.
A negative order denotes the h coefficient of order |m|, a non-negative one
the g coefficient.

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
	"os"
	"strconv"
	"strings"

	"github.com/mshafiee/geomag"
)

// ErrFormat is returned for malformed SHC input.
var ErrFormat = errors.New("malformed SHC file")

// ErrEpoch is returned for epochs outside the time span of a file.
var ErrEpoch = errors.New("epoch outside of model validity")

// File is the content of an SHC file.
type File struct {
	MinDegree   int         // MinDegree is the lowest degree present.
	MaxDegree   int         // MaxDegree is the highest degree present.
	SplineOrder int         // SplineOrder is the order of the temporal spline.
	Steps       int         // Steps is the number of spline steps.
	Times       []float64   // Times holds the epochs of the coefficient columns, in decimal years.
	g, h        [][]float64 // g, h hold one coefficient column per epoch in the geomag.Index layout.
}

// Read parses an SHC stream.
//
// Parameters:
//   - r: Reader providing the SHC text.
//
// Returns:
//   - *File: The parsed coefficients.
//   - error: ErrFormat for malformed input, or the read error.
func Read(r io.Reader) (*File, error) {
	sc := bufio.NewScanner(r)
	lineNo := 0
	// next returns the fields of the next non-empty, non-comment line.
	next := func() ([]string, bool) {
		for sc.Scan() {
			lineNo++
			line := sc.Text()
			if i := strings.IndexByte(line, '#'); i >= 0 {
				line = line[:i]
			}
			if fields := strings.Fields(line); len(fields) > 0 {
				return fields, true
			}
		}
		return nil, false
	}

	header, ok := next()
	if !ok {
		return nil, readError(sc, "missing header")
	}
	if len(header) < 3 {
		return nil, fmt.Errorf("%w: line %d: header needs at least 3 fields, got %d", ErrFormat, lineNo, len(header))
	}
	ints, err := parseInts(header)
	if err != nil {
		return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, lineNo, err)
	}
	f := &File{MinDegree: ints[0], MaxDegree: ints[1], SplineOrder: 1, Steps: 1}
	ntimes := ints[2]
	if len(ints) > 3 {
		f.SplineOrder = ints[3]
	}
	if len(ints) > 4 {
		f.Steps = ints[4]
	}
	if f.MinDegree < 1 || f.MaxDegree < f.MinDegree || ntimes < 1 {
		return nil, fmt.Errorf("%w: line %d: invalid header %v", ErrFormat, lineNo, header)
	}

	times, ok := next()
	if !ok {
		return nil, readError(sc, "missing epochs")
	}
	if len(times) != ntimes {
		return nil, fmt.Errorf("%w: line %d: %d epochs, header announces %d", ErrFormat, lineNo, len(times), ntimes)
	}
	if f.Times, err = parseFloats(times); err != nil {
		return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, lineNo, err)
	}
	for i := 1; i < ntimes; i++ {
		if !(f.Times[i] > f.Times[i-1]) {
			return nil, fmt.Errorf("%w: line %d: epochs are not increasing", ErrFormat, lineNo)
		}
	}

	nterm := geomag.TermCount(f.MaxDegree)
	f.g = make([][]float64, ntimes)
	f.h = make([][]float64, ntimes)
	for i := range f.g {
		f.g[i] = make([]float64, nterm)
		f.h[i] = make([]float64, nterm)
	}

	for {
		row, ok := next()
		if !ok {
			break
		}
		if len(row) != 2+ntimes {
			return nil, fmt.Errorf("%w: line %d: %d fields, expected %d", ErrFormat, lineNo, len(row), 2+ntimes)
		}
		nm, err := parseInts(row[:2])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, lineNo, err)
		}
		n, m := nm[0], nm[1]
		if n < f.MinDegree || n > f.MaxDegree || m > n || -m > n {
			return nil, fmt.Errorf("%w: line %d: term (%d, %d) outside degrees %d..%d", ErrFormat, lineNo, n, m, f.MinDegree, f.MaxDegree)
		}
		values, err := parseFloats(row[2:])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, lineNo, err)
		}
		target := f.g
		if m < 0 {
			target, m = f.h, -m
		}
		idx := geomag.Index(n, m)
		for t, v := range values {
			target[t][idx] = v
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read SHC data: %w", err)
	}
	return f, nil
}

// Load reads an SHC file from disk.
func Load(filename string) (*File, error) {
	fp, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open SHC file: %w", err)
	}
	defer fp.Close()

	f, err := Read(fp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return f, nil
}

func readError(sc *bufio.Scanner, what string) error {
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read SHC data: %w", err)
	}
	return fmt.Errorf("%w: %s", ErrFormat, what)
}

func parseInts(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, s := range fields {
		v, err := strconv.Atoi(s)
		if err != nil {
			// Some writers print integral header fields as floats.
			fv, ferr := strconv.ParseFloat(s, 64)
			if ferr != nil || fv != float64(int(fv)) {
				return nil, fmt.Errorf("invalid integer %q", s)
			}
			v = int(fv)
		}
		out[i] = v
	}
	return out, nil
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", s)
		}
		out[i] = v
	}
	return out, nil
}

// Coefficients returns the coefficient set of one epoch column.
func (f *File) Coefficients(column int) (*geomag.Coefficients, error) {
	if column < 0 || column >= len(f.Times) {
		return nil, fmt.Errorf("%w: column %d of %d", ErrEpoch, column, len(f.Times))
	}
	return geomag.NewCoefficients(f.MaxDegree, f.g[column], f.h[column])
}

// At returns the coefficients at an epoch, interpolated linearly between the
// two enclosing epoch columns.
//
// Parameters:
//   - epoch: Time in decimal years within [Times[0], Times[len(Times)-1]].
//
// Returns:
//   - *geomag.Coefficients: Freshly allocated coefficient set.
//   - error: ErrEpoch if the epoch lies outside the file's time span.
func (f *File) At(epoch float64) (*geomag.Coefficients, error) {
	last := len(f.Times) - 1
	if !(epoch >= f.Times[0] && epoch <= f.Times[last]) {
		return nil, fmt.Errorf("%w: %g not in [%g, %g]", ErrEpoch, epoch, f.Times[0], f.Times[last])
	}
	if last == 0 {
		return f.Coefficients(0)
	}
	i := 0
	for i < last-1 && epoch > f.Times[i+1] {
		i++
	}
	w := (epoch - f.Times[i]) / (f.Times[i+1] - f.Times[i])
	nterm := len(f.g[i])
	g := make([]float64, nterm)
	h := make([]float64, nterm)
	for k := 0; k < nterm; k++ {
		g[k] = (1-w)*f.g[i][k] + w*f.g[i+1][k]
		h[k] = (1-w)*f.h[i][k] + w*f.h[i+1][k]
	}
	return geomag.NewCoefficients(f.MaxDegree, g, h)
}
