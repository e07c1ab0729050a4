// ./binary_reader.go
package geomag

/*
Package geomag provides helper functions for reading and writing binary point arrays.

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
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"slices"
)

// defaultByteOrder specifies the default byte order of binary arrays.
var defaultByteOrder = binary.LittleEndian

// byteOrder is the configurable byte order used by ReadArray and WriteArray.
var byteOrder binary.ByteOrder = defaultByteOrder

// SetByteOrder changes the byte order of binary arrays. Use
// binary.LittleEndian or binary.BigEndian; nil restores the default.
func SetByteOrder(order binary.ByteOrder) {
	if order == nil {
		order = defaultByteOrder
	}
	byteOrder = order
}

// float64FromBytes converts 8 bytes to a float64 value using the configured byte order.
func float64FromBytes(b []byte) float64 {
	return math.Float64frombits(byteOrder.Uint64(b))
}

// putFloat64 stores a float64 value into 8 bytes using the configured byte order.
func putFloat64(b []byte, v float64) {
	byteOrder.PutUint64(b, math.Float64bits(v))
}

// ReadArray reads a raw array of float64 values in the configured byte order.
//
// Parameters:
//   - r: Reader positioned at the first value.
//   - shape: Shape of the array. A first axis of -1 is inferred from the
//     number of values available; the stream must then end on a whole record.
//
// Returns:
//   - *Array: Contiguous row-major array.
//   - error: ErrShape or the read error.
func ReadArray(r io.Reader, shape ...int) (*Array, error) {
	if len(shape) == 0 {
		return nil, fmt.Errorf("%w: no shape given", ErrShape)
	}
	shape = slices.Clone(shape)

	if shape[0] == -1 {
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read array: %w", err)
		}
		record := 8 * elementCount(shape[1:])
		if record == 0 || len(raw)%record != 0 {
			return nil, fmt.Errorf("%w: %d bytes is not a whole number of %v records", ErrShape, len(raw), shape[1:])
		}
		shape[0] = len(raw) / record
		return decodeArray(raw, shape)
	}

	if err := checkShape(shape); err != nil {
		return nil, err
	}
	raw := make([]byte, 8*elementCount(shape))
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("failed to read array of shape %v: %w", shape, err)
	}
	return decodeArray(raw, shape)
}

func decodeArray(raw []byte, shape []int) (*Array, error) {
	a, err := NewArray(shape...)
	if err != nil {
		return nil, err
	}
	for i := range a.Data {
		a.Data[i] = float64FromBytes(raw[8*i:])
	}
	return a, nil
}

// WriteArray writes the elements of an array in row-major order as raw
// float64 values in the configured byte order.
func WriteArray(w io.Writer, a *Array) error {
	if err := a.validate("array"); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	var buf [8]byte
	it := newMultiIndex(a.Shape, RowMajor)
	for k, total := 0, a.Len(); k < total; k++ {
		putFloat64(buf[:], a.Data[a.offset(it.idx)])
		if _, err := bw.Write(buf[:]); err != nil {
			return fmt.Errorf("failed to write array: %w", err)
		}
		it.advance()
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write array: %w", err)
	}
	return nil
}
