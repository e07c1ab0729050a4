package geomag

import (
	"fmt"
	"math"

	"github.com/mshafiee/geomag/shc"
)

/*
Package geomag provides internal definitions for the model evaluation.

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

// Internal definitions for model evaluation.
//
// This file contains the recurrence cache owned by every Model and the
// allocator of its tables. These are not intended for direct use by users of
// the package.
//
// Table sizes for a model of degree N:
//
//	lp, ldp     (N+1)(N+2)/2   Legendre functions and latitude derivatives
//	lsin, lcos  N+1            sin(m*lon), cos(m*lon)
//	rrp         N+1            (rref/r)^(n+2)
//	psqrt       2N+1           sqrt(i), built once at construction
//
// Each of lp/ldp, lsin/lcos and rrp is valid exactly when the coordinate
// driving it (geocentric latitude, longitude, radius) equals the one stored
// in the cache. The stored coordinates start as NaN so the first evaluation
// computes every table.

// CacheStats counts the work done by a recurrence cache.
type CacheStats struct {
	Evaluations       uint64 // Evaluations is the number of evaluated points.
	LegendreRefreshes uint64 // LegendreRefreshes counts recomputations of the Legendre tables.
	AzimuthRefreshes  uint64 // AzimuthRefreshes counts recomputations of the azimuthal tables.
	RadialRefreshes   uint64 // RadialRefreshes counts recomputations of the radial power table.
}

// Add returns the sum of two sets of counters.
func (s CacheStats) Add(o CacheStats) CacheStats {
	return CacheStats{
		Evaluations:       s.Evaluations + o.Evaluations,
		LegendreRefreshes: s.LegendreRefreshes + o.LegendreRefreshes,
		AzimuthRefreshes:  s.AzimuthRefreshes + o.AzimuthRefreshes,
		RadialRefreshes:   s.RadialRefreshes + o.RadialRefreshes,
	}
}

// tableAllocator provides the storage of the recurrence tables.
type tableAllocator interface {
	alloc(n int) ([]float64, error)
	free(buf []float64)
}

// heapAllocator allocates tables on the Go heap.
type heapAllocator struct{}

func (heapAllocator) alloc(n int) ([]float64, error) {
	if n <= 0 || n > maxTableLength {
		return nil, fmt.Errorf("cannot allocate %d doubles", n)
	}
	return make([]float64, n), nil
}

func (heapAllocator) free([]float64) {}

// recurrenceTables is the aggregate of all tables of a model. It is either
// fully allocated or empty.
type recurrenceTables struct {
	lp    []float64 // lp stores the associated Legendre functions.
	ldp   []float64 // ldp stores their latitude derivatives.
	lsin  []float64 // lsin stores sin(m*lon).
	lcos  []float64 // lcos stores cos(m*lon).
	rrp   []float64 // rrp stores the relative radial powers.
	psqrt []float64 // psqrt stores the square roots used by the Legendre recurrence.
}

// allocTables allocates every table for the given degree or, on failure,
// releases the ones already obtained and returns ErrAllocation.
func allocTables(alloc tableAllocator, degree int) (*recurrenceTables, error) {
	t := &recurrenceTables{}
	nterm := shc.TermCount(degree)
	slots := []struct {
		name string
		dst  *[]float64
		size int
	}{
		{"lp", &t.lp, nterm},
		{"ldp", &t.ldp, nterm},
		{"lsin", &t.lsin, degree + 1},
		{"lcos", &t.lcos, degree + 1},
		{"rrp", &t.rrp, degree + 1},
		{"psqrt", &t.psqrt, shc.SqrtCount(degree)},
	}
	for _, s := range slots {
		buf, err := alloc.alloc(s.size)
		if err != nil {
			t.release(alloc)
			return nil, fmt.Errorf("%w: table %s: %v", ErrAllocation, s.name, err)
		}
		*s.dst = buf
	}
	shc.FillSqrt(t.psqrt)
	return t, nil
}

// release returns every allocated table to the allocator.
func (t *recurrenceTables) release(alloc tableAllocator) {
	for _, buf := range []*[]float64{&t.lp, &t.ldp, &t.lsin, &t.lcos, &t.rrp, &t.psqrt} {
		if *buf != nil {
			alloc.free(*buf)
			*buf = nil
		}
	}
}

func (t *recurrenceTables) view() shc.Tables {
	return shc.Tables{Lp: t.lp, Ldp: t.ldp, Lsin: t.lsin, Lcos: t.lcos, Rrp: t.rrp, Psqrt: t.psqrt}
}

// recurrenceCache is the mutable state of a Model.
type recurrenceCache struct {
	clatLast float64           // clatLast is the geocentric latitude (rad) lp/ldp were built for.
	clonLast float64           // clonLast is the longitude (rad) lsin/lcos were built for.
	cradLast float64           // cradLast is the radius (km) rrp was built for.
	tables   *recurrenceTables // tables holds the recurrence tables.
	stats    CacheStats        // stats counts evaluations and refreshes.
}

func newRecurrenceCache(alloc tableAllocator, degree int) (*recurrenceCache, error) {
	t, err := allocTables(alloc, degree)
	if err != nil {
		return nil, err
	}
	c := &recurrenceCache{tables: t}
	c.invalidate()
	return c, nil
}

// invalidate forces the next refresh to rebuild every table.
func (c *recurrenceCache) invalidate() {
	c.clatLast = math.NaN()
	c.clonLast = math.NaN()
	c.cradLast = math.NaN()
}

// refresh makes the tables valid for the given geocentric coordinates,
// rebuilding only those whose driving coordinate changed.
func (c *recurrenceCache) refresh(degree int, clat, clon, crad, refRadius float64) {
	t := c.tables
	if c.clatLast != clat {
		shc.Legendre(t.lp, t.ldp, degree, clat, t.psqrt)
		c.stats.LegendreRefreshes++
	}
	if c.clonLast != clon {
		shc.AzimuthSinCos(t.lsin, t.lcos, degree, clon)
		c.stats.AzimuthRefreshes++
	}
	if c.cradLast != crad {
		shc.RelRadPow(t.rrp, degree, crad/refRadius)
		c.stats.RadialRefreshes++
	}

	c.clatLast = clat
	c.clonLast = clon
	c.cradLast = crad
	c.stats.Evaluations++
}
