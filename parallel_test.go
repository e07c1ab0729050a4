package geomag

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/go-test/deep"
	"github.com/mshafiee/geomag/geoid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalParallelMatchesBatch(t *testing.T) {
	points := gridPoints(t,
		[]float64{-75, -30, 0, 15, 60},
		[]float64{0, 45, 90, 135, 180, 225, 270},
		[]float64{0, 250, 500},
	)
	serial := newIGRF(t, GeodeticAboveWGS84, GeocentricCartesian)
	wantPot, wantGrad, err := serial.EvalBatch(points, PotentialAndGradient, RowMajor)
	require.NoError(t, err)

	for _, workers := range []int{0, 1, 3, 8, 1000} {
		m := newIGRF(t, GeodeticAboveWGS84, GeocentricCartesian)
		pot, grad, err := EvalParallel(context.Background(), m, points, PotentialAndGradient, workers)
		require.NoError(t, err, "workers=%d", workers)

		if diff := deep.Equal(wantPot, pot); diff != nil {
			t.Errorf("workers=%d potential: %v", workers, diff)
		}
		if diff := deep.Equal(wantGrad, grad); diff != nil {
			t.Errorf("workers=%d gradient: %v", workers, diff)
		}
		assert.Equal(t, uint64(105), m.Stats().Evaluations, "clone counters are merged, workers=%d", workers)
	}
}

func TestNonFiniteGeoidPoints(t *testing.T) {
	grid, err := geoid.NewGrid(-90, 0, 1, 1, 181, 360, make([]float64, 181*360))
	require.NoError(t, err)
	points, err := NewArrayFrom([]float64{
		45, 10, 100,
		10, math.NaN(), 100,
		math.Inf(1), 10, 100,
		-30, 200, 500,
	}, 4, 3)
	require.NoError(t, err)

	check := func(name string, pot, grad *Array) {
		for i, bad := range []bool{false, true, true, false} {
			assert.Equal(t, bad, math.IsNaN(pot.At(i)), "%s potential %d", name, i)
			for k := 0; k < 3; k++ {
				assert.Equal(t, bad, math.IsNaN(grad.At(i, k)), "%s gradient %d/%d", name, i, k)
			}
		}
	}

	m := newIGRF(t, GeodeticAboveEGM96, GeodeticAboveWGS84, WithGeoid(grid))
	pot, grad, err := m.EvalBatch(points, PotentialAndGradient, RowMajor)
	require.NoError(t, err)
	check("batch", pot, grad)

	pot, grad, err = EvalParallel(context.Background(), m, points, PotentialAndGradient, 4)
	require.NoError(t, err)
	check("parallel", pot, grad)
}

func TestEvalParallelErrors(t *testing.T) {
	m := newIGRF(t, GeodeticAboveWGS84, GeodeticAboveWGS84)
	points := gridPoints(t, []float64{10, 20}, []float64{30}, []float64{0})

	_, _, err := EvalParallel(context.Background(), m, points, Mode(7), 2)
	assert.ErrorIs(t, err, ErrInvalidMode)

	bad, err := NewArray(2, 4)
	require.NoError(t, err)
	_, _, err = EvalParallel(context.Background(), m, bad, Gradient, 2)
	assert.ErrorIs(t, err, ErrShape)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pot, grad, err := EvalParallel(ctx, m, points, PotentialAndGradient, 2)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, pot)
	assert.Nil(t, grad)
	assert.Equal(t, uint64(0), m.Stats().Evaluations)

	require.NoError(t, m.Close())
	_, _, err = EvalParallel(context.Background(), m, points, Gradient, 2)
	assert.ErrorIs(t, err, ErrModelClosed)
}

func TestEvalParallelEmpty(t *testing.T) {
	m := newIGRF(t, GeodeticAboveWGS84, GeodeticAboveWGS84)
	empty, err := NewArray(0, 3)
	require.NoError(t, err)
	pot, grad, err := EvalParallel(context.Background(), m, empty, PotentialAndGradient, 4)
	require.NoError(t, err)
	assert.Equal(t, 0, pot.Len())
	assert.Equal(t, 0, grad.Len())
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	m := newIGRF(t, GeodeticAboveWGS84, GeodeticAboveWGS84)
	points := gridPoints(t, []float64{10}, []float64{30}, []float64{0})
	_, _, err := EvalParallel(context.Background(), m, points, Gradient, 1)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "model initialized")
	assert.Contains(t, out, "degree=3")
	assert.Contains(t, out, "parallel batch started")
	assert.Contains(t, out, "parallel batch finished")

	SetLogger(nil)
	buf.Reset()
	m2 := newIGRF(t, GeodeticAboveWGS84, GeodeticAboveWGS84)
	_, err = m2.Eval(Gradient, 1, 2, 3)
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}
