package geomag

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadArray(t *testing.T) {
	a, err := NewArrayFrom([]float64{1.5, -2, math.Pi, 0, 1e300, -7}, 2, 3)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteArray(&buf, a))
	assert.Equal(t, 48, buf.Len())
	assert.Equal(t, math.Float64bits(1.5), binary.LittleEndian.Uint64(buf.Bytes()[:8]))

	b, err := ReadArray(bytes.NewReader(buf.Bytes()), 2, 3)
	require.NoError(t, err)
	assert.Equal(t, a.Shape, b.Shape)
	assert.Equal(t, a.Data, b.Data)

	c, err := ReadArray(bytes.NewReader(buf.Bytes()), -1, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, c.Shape)
	assert.Equal(t, a.Data, c.Data)
}

func TestWriteArrayStrided(t *testing.T) {
	// The transpose of [[1 2 3] [4 5 6]] as a strided view.
	view := &Array{Shape: []int{3, 2}, Strides: []int{1, 3}, Data: []float64{1, 2, 3, 4, 5, 6}}

	var buf bytes.Buffer
	require.NoError(t, WriteArray(&buf, view))
	b, err := ReadArray(&buf, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, b.Data)
}

func TestByteOrder(t *testing.T) {
	SetByteOrder(binary.BigEndian)
	defer SetByteOrder(nil)

	a, err := NewArrayFrom([]float64{42, 43, 44}, 3)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteArray(&buf, a))
	assert.Equal(t, math.Float64bits(42), binary.BigEndian.Uint64(buf.Bytes()[:8]))

	b, err := ReadArray(bytes.NewReader(buf.Bytes()), -1, 3)
	require.NoError(t, err)
	assert.Equal(t, a.Data, b.Data)

	SetByteOrder(nil)
	assert.Equal(t, binary.ByteOrder(binary.LittleEndian), byteOrder)
}

func TestReadArrayErrors(t *testing.T) {
	_, err := ReadArray(bytes.NewReader(make([]byte, 40)), -1, 3)
	assert.ErrorIs(t, err, ErrShape, "40 bytes are not whole 24-byte records")

	_, err = ReadArray(bytes.NewReader(make([]byte, 16)), 1, 3)
	assert.Error(t, err, "short input")

	_, err = ReadArray(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrShape)

	empty, err := ReadArray(bytes.NewReader(nil), -1, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3}, empty.Shape)
}
