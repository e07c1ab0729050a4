// ./batch.go
package geomag

/*
Package geomag provides the batch evaluation of point arrays.

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
	"slices"
	"strings"
)

// Order selects the sequence in which the batch evaluator visits the points
// of an array. Results do not depend on it, but the recurrence cache hit rate
// does: the fastest varying axis should be the one along which only the
// radius or the longitude changes.
type Order int

const (
	RowMajor    Order = iota // RowMajor varies the last outer axis fastest.
	ColumnMajor              // ColumnMajor varies the first axis fastest.
)

// Valid reports whether o is a known order.
func (o Order) Valid() bool {
	return o == RowMajor || o == ColumnMajor
}

// String returns the name of the order.
func (o Order) String() string {
	switch o {
	case RowMajor:
		return "row_major"
	case ColumnMajor:
		return "column_major"
	}
	return fmt.Sprintf("Order(%d)", int(o))
}

// ParseOrder returns the order with the given name.
func ParseOrder(name string) (Order, error) {
	for _, o := range []Order{RowMajor, ColumnMajor} {
		if strings.EqualFold(strings.TrimSpace(name), o.String()) {
			return o, nil
		}
	}
	return RowMajor, fmt.Errorf("%w: %q", ErrInvalidOrder, name)
}

func checkOrder(o Order) error {
	if !o.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidOrder, int(o))
	}
	return nil
}

// Array is an n-dimensional array of float64 values. Element (i0, i1, ...)
// is stored at Data[i0*Strides[0] + i1*Strides[1] + ...].
type Array struct {
	Shape   []int     // Shape holds the length of every axis.
	Strides []int     // Strides holds the element step of every axis.
	Data    []float64 // Data is the backing storage.
}

// rowMajorStrides returns the strides of a contiguous row-major layout.
func rowMajorStrides(shape []int) []int {
	strides := make([]int, len(shape))
	step := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = step
		step *= shape[i]
	}
	return strides
}

// elementCount returns the number of elements described by shape. An empty
// shape describes a single element.
func elementCount(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

func checkShape(shape []int) error {
	if len(shape) > MAX_ARRAY_NDIM {
		return fmt.Errorf("%w: %d dimensions exceed the maximum of %d", ErrShape, len(shape), MAX_ARRAY_NDIM)
	}
	for i, d := range shape {
		if d < 0 {
			return fmt.Errorf("%w: negative length %d of axis %d", ErrShape, d, i)
		}
	}
	return nil
}

// NewArray allocates a zeroed, contiguous row-major array.
func NewArray(shape ...int) (*Array, error) {
	if err := checkShape(shape); err != nil {
		return nil, err
	}
	return &Array{
		Shape:   slices.Clone(shape),
		Strides: rowMajorStrides(shape),
		Data:    make([]float64, elementCount(shape)),
	}, nil
}

// NewArrayFrom wraps data as a contiguous row-major array. The length of data
// must equal the product of shape.
func NewArrayFrom(data []float64, shape ...int) (*Array, error) {
	if err := checkShape(shape); err != nil {
		return nil, err
	}
	if n := elementCount(shape); n != len(data) {
		return nil, fmt.Errorf("%w: shape %v needs %d values, got %d", ErrShape, shape, n, len(data))
	}
	return &Array{Shape: slices.Clone(shape), Strides: rowMajorStrides(shape), Data: data}, nil
}

// NDim returns the number of axes.
func (a *Array) NDim() int { return len(a.Shape) }

// Len returns the number of elements.
func (a *Array) Len() int { return elementCount(a.Shape) }

// offset returns the storage offset of the element at idx.
func (a *Array) offset(idx []int) int {
	off := 0
	for i, v := range idx {
		off += v * a.Strides[i]
	}
	return off
}

// At returns the element at the given index. It panics if the index is out of
// range, like a slice index would.
func (a *Array) At(idx ...int) float64 {
	if len(idx) != len(a.Shape) {
		panic(fmt.Sprintf("geomag: %d indices for a %d-dimensional array", len(idx), len(a.Shape)))
	}
	for i, v := range idx {
		if v < 0 || v >= a.Shape[i] {
			panic(fmt.Sprintf("geomag: index %d out of range [0, %d) on axis %d", v, a.Shape[i], i))
		}
	}
	return a.Data[a.offset(idx)]
}

// validate checks that the array is consistent and its storage large enough.
func (a *Array) validate(name string) error {
	if a == nil {
		return fmt.Errorf("%w: %s array is nil", ErrShape, name)
	}
	if err := checkShape(a.Shape); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if len(a.Strides) != len(a.Shape) {
		return fmt.Errorf("%w: %s has %d strides for %d axes", ErrShape, name, len(a.Strides), len(a.Shape))
	}
	last := 0
	for i, d := range a.Shape {
		if d == 0 {
			return nil
		}
		if a.Strides[i] < 0 {
			return fmt.Errorf("%w: %s has negative stride on axis %d", ErrShape, name, i)
		}
		last += (d - 1) * a.Strides[i]
	}
	if last >= len(a.Data) {
		return fmt.Errorf("%w: %s storage holds %d values, layout needs %d", ErrShape, name, len(a.Data), last+1)
	}
	return nil
}

// checkPoints validates a point array: between 1 and MAX_ARRAY_NDIM axes, the
// last of length 3.
func checkPoints(points *Array) error {
	if err := points.validate("points"); err != nil {
		return err
	}
	n := points.NDim()
	if n < 1 {
		return fmt.Errorf("%w: points must have at least one axis", ErrShape)
	}
	if points.Shape[n-1] != 3 {
		return fmt.Errorf("%w: last axis of points has length %d, expected 3", ErrShape, points.Shape[n-1])
	}
	return nil
}

// multiIndex walks the outer index space of a point array without recursion.
type multiIndex struct {
	shape []int // shape of the walked (outer) axes.
	idx   []int // idx is the current position.
	order Order // order selects the fastest varying axis.
}

func newMultiIndex(shape []int, order Order) *multiIndex {
	return &multiIndex{shape: shape, idx: make([]int, len(shape)), order: order}
}

// axis maps the j-th fastest position to an axis number.
func (it *multiIndex) axis(j int) int {
	if it.order == ColumnMajor {
		return j
	}
	return len(it.shape) - 1 - j
}

// seek moves to the k-th position of the walk.
func (it *multiIndex) seek(k int) {
	for j := range it.shape {
		a := it.axis(j)
		it.idx[a] = k % it.shape[a]
		k /= it.shape[a]
	}
}

// advance moves to the next position. It returns false after the last one.
func (it *multiIndex) advance() bool {
	for j := range it.shape {
		a := it.axis(j)
		it.idx[a]++
		if it.idx[a] < it.shape[a] {
			return true
		}
		it.idx[a] = 0
	}
	return false
}

// batchJob holds the validated operands of a batch evaluation.
type batchJob struct {
	points *Array
	pot    *Array // pot receives potentials; nil unless requested.
	grad   *Array // grad receives field vectors; nil unless requested.
	mode   Mode
	order  Order
}

// outerShape returns the shape of the point array without its last axis.
func (j *batchJob) outerShape() []int {
	return j.points.Shape[:j.points.NDim()-1]
}

// count returns the number of points.
func (j *batchJob) count() int {
	return elementCount(j.outerShape())
}

// evalRange evaluates the points at walk positions [lo, hi) with m.
func (j *batchJob) evalRange(m *Model, lo, hi int) {
	if lo >= hi {
		return
	}
	n := j.points.NDim()
	it := newMultiIndex(j.outerShape(), j.order)
	it.seek(lo)

	pIdx := make([]int, n)
	cStride := j.points.Strides[n-1]
	var gStride int
	if j.grad != nil {
		gStride = j.grad.Strides[n-1]
	}
	for k := lo; k < hi; k++ {
		copy(pIdx, it.idx)
		pIdx[n-1] = 0
		off := j.points.offset(pIdx)
		x := j.points.Data[off]
		y := j.points.Data[off+cStride]
		z := j.points.Data[off+2*cStride]

		if res, ok := evalPoint(m, j.mode, x, y, z); ok {
			if j.pot != nil {
				j.pot.Data[j.pot.offset(it.idx)] = res.Potential
			}
			if j.grad != nil {
				goff := j.grad.offset(pIdx)
				j.grad.Data[goff] = res.Gradient[0]
				j.grad.Data[goff+gStride] = res.Gradient[1]
				j.grad.Data[goff+2*gStride] = res.Gradient[2]
			}
		}
		it.advance()
	}
}

// newBatchJob validates the operands of a batch evaluation before any work.
func (m *Model) newBatchJob(points, pot, grad *Array, mode Mode, order Order) (*batchJob, error) {
	if err := checkMode(mode); err != nil {
		return nil, err
	}
	if err := checkOrder(order); err != nil {
		return nil, err
	}
	if m.cache == nil {
		return nil, ErrModelClosed
	}
	if err := checkPoints(points); err != nil {
		return nil, err
	}
	j := &batchJob{points: points, mode: mode, order: order}
	if mode&Potential != 0 {
		if err := pot.validate("potential"); err != nil {
			return nil, err
		}
		if !slices.Equal(pot.Shape, j.outerShape()) {
			return nil, fmt.Errorf("%w: potential shape %v, expected %v", ErrShape, pot.Shape, j.outerShape())
		}
		j.pot = pot
	}
	if mode&Gradient != 0 {
		if err := grad.validate("gradient"); err != nil {
			return nil, err
		}
		if !slices.Equal(grad.Shape, points.Shape) {
			return nil, fmt.Errorf("%w: gradient shape %v, expected %v", ErrShape, grad.Shape, points.Shape)
		}
		j.grad = grad
	}
	return j, nil
}

// allocOutputs allocates the output arrays needed by mode for points.
func allocOutputs(points *Array, mode Mode) (pot, grad *Array, err error) {
	if mode&Potential != 0 {
		if pot, err = NewArray(points.Shape[:points.NDim()-1]...); err != nil {
			return nil, nil, err
		}
	}
	if mode&Gradient != 0 {
		if grad, err = NewArray(points.Shape...); err != nil {
			return nil, nil, err
		}
	}
	return pot, grad, nil
}

// EvalBatch evaluates the model at every point of an array.
//
// Parameters:
//   - points: Array whose last axis has length 3, holding the point coordinates
//     in the model's input coordinate system.
//   - mode: Quantities to compute.
//   - order: Sequence in which the points are visited.
//
// Returns:
//   - *Array: Potentials shaped like points without the last axis, or nil if not requested.
//   - *Array: Field vectors shaped like points, or nil if not requested.
//   - error: ErrInvalidMode, ErrInvalidOrder, ErrShape or ErrModelClosed, all
//     detected before any point is evaluated.
func (m *Model) EvalBatch(points *Array, mode Mode, order Order) (pot, grad *Array, err error) {
	if err := checkMode(mode); err != nil {
		return nil, nil, err
	}
	if err := checkPoints(points); err != nil {
		return nil, nil, err
	}
	if pot, grad, err = allocOutputs(points, mode); err != nil {
		return nil, nil, err
	}
	if err := m.EvalBatchInto(points, pot, grad, mode, order); err != nil {
		return nil, nil, err
	}
	return pot, grad, nil
}

// EvalBatchInto is like EvalBatch but writes into caller supplied arrays. The
// potential array is only used when mode requests the potential and must be
// shaped like points without the last axis; the gradient array is only used
// when mode requests the gradient and must be shaped like points.
func (m *Model) EvalBatchInto(points, pot, grad *Array, mode Mode, order Order) error {
	j, err := m.newBatchJob(points, pot, grad, mode, order)
	if err != nil {
		return err
	}
	j.evalRange(m, 0, j.count())
	return nil
}
