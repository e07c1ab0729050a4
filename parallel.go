// ./parallel.go
package geomag

/*
Package geomag provides the parallel evaluation of point arrays.

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
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// parallelChunk is the number of points a worker evaluates between two
// context checks.
const parallelChunk = 4096

// EvalParallel evaluates the model at every point of an array with several
// goroutines. Every worker evaluates a contiguous range of the row-major walk
// with its own clone of m, so the results equal those of EvalBatch. The cache
// counters of the clones are added to those of m.
//
// Parameters:
//   - ctx: Context; cancellation stops the workers and discards the outputs.
//   - m: Model to evaluate. It must not be used by other goroutines meanwhile.
//   - points: Array whose last axis has length 3.
//   - mode: Quantities to compute.
//   - workers: Number of goroutines; values below 1 select runtime.GOMAXPROCS(0).
//
// Returns:
//   - *Array: Potentials, or nil if not requested.
//   - *Array: Field vectors, or nil if not requested.
//   - error: A validation error, a clone error or the context error.
func EvalParallel(ctx context.Context, m *Model, points *Array, mode Mode, workers int) (pot, grad *Array, err error) {
	if err := checkMode(mode); err != nil {
		return nil, nil, err
	}
	if err := checkPoints(points); err != nil {
		return nil, nil, err
	}
	if pot, grad, err = allocOutputs(points, mode); err != nil {
		return nil, nil, err
	}
	job, err := m.newBatchJob(points, pot, grad, mode, RowMajor)
	if err != nil {
		return nil, nil, err
	}

	total := job.count()
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > total {
		workers = max(total, 1)
	}
	logger.Debug("parallel batch started", "points", total, "workers", workers, "mode", mode.String())

	var (
		mu    sync.Mutex
		stats CacheStats
	)
	g, gctx := errgroup.WithContext(ctx)
	per := (total + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo, hi := w*per, min((w+1)*per, total)
		if lo >= hi {
			break
		}
		g.Go(func() error {
			clone, err := m.Clone()
			if err != nil {
				return err
			}
			defer clone.Close()

			for start := lo; start < hi; start += parallelChunk {
				if err := gctx.Err(); err != nil {
					return err
				}
				job.evalRange(clone, start, min(start+parallelChunk, hi))
			}

			mu.Lock()
			stats = stats.Add(clone.Stats())
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Debug("parallel batch aborted", "error", err)
		return nil, nil, err
	}
	m.cache.stats = m.cache.stats.Add(stats)
	logger.Debug("parallel batch finished", "points", total, "evaluations", stats.Evaluations)
	return pot, grad, nil
}
