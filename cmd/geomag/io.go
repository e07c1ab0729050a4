// ./cmd/geomag/io.go
package main

/*
Command geomag reads points and writes results.

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
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/mshafiee/geomag"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// number is a JSON number written as null when it is NaN or infinite.
type number float64

func (n number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

// record is one JSON output line.
type record struct {
	Point     [3]number  `json:"point"`
	Potential *number    `json:"potential,omitempty"`
	Gradient  *[3]number `json:"gradient,omitempty"`
}

// readTextPoints reads three numbers per line. Blank lines and text after a
// '#' are ignored; fields may be separated by blanks or commas.
func readTextPoints(r io.Reader) (*geomag.Array, error) {
	var data []float64
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.FieldsFunc(line, func(c rune) bool {
			return c == ',' || c == ' ' || c == '\t'
		})
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: expected 3 coordinates, got %d", lineNo, len(fields))
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid number %q", lineNo, f)
			}
			data = append(data, v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read points: %w", err)
	}
	return geomag.NewArrayFrom(data, len(data)/3, 3)
}

func pointAt(points *geomag.Array, i int) [3]float64 {
	return [3]float64{points.At(i, 0), points.At(i, 1), points.At(i, 2)}
}

func numbersAt(a *geomag.Array, i int) [3]number {
	return [3]number{number(a.At(i, 0)), number(a.At(i, 1)), number(a.At(i, 2))}
}

// writeJSON writes one JSON object per point. Non-finite values are written as null.
func writeJSON(w io.Writer, points, pot, grad *geomag.Array) error {
	enc := json.NewEncoder(w)
	for i := 0; i < points.Shape[0]; i++ {
		rec := record{Point: numbersAt(points, i)}
		if pot != nil {
			v := number(pot.At(i))
			rec.Potential = &v
		}
		if grad != nil {
			v := numbersAt(grad, i)
			rec.Gradient = &v
		}
		if err := enc.Encode(&rec); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}
	}
	return nil
}

// writeText writes the point followed by the requested results, one point per line.
func writeText(w io.Writer, points, pot, grad *geomag.Array) error {
	for i := 0; i < points.Shape[0]; i++ {
		p := pointAt(points, i)
		line := fmt.Sprintf("%.6f %.6f %.6f", p[0], p[1], p[2])
		if pot != nil {
			line += fmt.Sprintf(" %.3f", pot.At(i))
		}
		if grad != nil {
			g := pointAt(grad, i)
			line += fmt.Sprintf(" %.3f %.3f %.3f", g[0], g[1], g[2])
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}
	}
	return nil
}
