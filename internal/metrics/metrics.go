// ./internal/metrics/metrics.go
package metrics

/*
Package metrics exports the evaluation counters of geomag models to Prometheus.

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
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mshafiee/geomag"
)

// StatsSource provides recurrence cache counters, usually a *geomag.Model.
type StatsSource interface {
	Stats() geomag.CacheStats
}

// Collector reports the cache counters of a StatsSource at scrape time.
type Collector struct {
	src         StatsSource
	evaluations *prometheus.Desc
	legendre    *prometheus.Desc
	azimuth     *prometheus.Desc
	radial      *prometheus.Desc
}

// NewCollector creates a collector over src.
func NewCollector(src StatsSource) *Collector {
	return &Collector{
		src: src,
		evaluations: prometheus.NewDesc("geomag_evaluations_total",
			"Total number of evaluated points.", nil, nil),
		legendre: prometheus.NewDesc("geomag_legendre_refreshes_total",
			"Total number of Legendre table recomputations.", nil, nil),
		azimuth: prometheus.NewDesc("geomag_azimuth_refreshes_total",
			"Total number of azimuthal table recomputations.", nil, nil),
		radial: prometheus.NewDesc("geomag_radial_refreshes_total",
			"Total number of radial power table recomputations.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.evaluations
	ch <- c.legendre
	ch <- c.azimuth
	ch <- c.radial
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()
	ch <- prometheus.MustNewConstMetric(c.evaluations, prometheus.CounterValue, float64(s.Evaluations))
	ch <- prometheus.MustNewConstMetric(c.legendre, prometheus.CounterValue, float64(s.LegendreRefreshes))
	ch <- prometheus.MustNewConstMetric(c.azimuth, prometheus.CounterValue, float64(s.AzimuthRefreshes))
	ch <- prometheus.MustNewConstMetric(c.radial, prometheus.CounterValue, float64(s.RadialRefreshes))
}

// Metrics groups the registry of a command run.
type Metrics struct {
	Registry      *prometheus.Registry
	batchDuration prometheus.Histogram
	batchPoints   prometheus.Counter
}

// New creates a registry holding the cache counters of src and the batch
// timing metrics.
func New(src StatsSource) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "geomag_batch_duration_seconds",
			Help:    "Batch evaluation duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		batchPoints: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "geomag_batch_points_total",
			Help: "Total number of points submitted in batches.",
		}),
	}
	m.Registry.MustRegister(NewCollector(src), m.batchDuration, m.batchPoints)
	return m
}

// ObserveBatch records a finished batch of n points.
func (m *Metrics) ObserveBatch(n int, d time.Duration) {
	m.batchPoints.Add(float64(n))
	m.batchDuration.Observe(d.Seconds())
}

// WriteTextfile writes the current metrics in the Prometheus text format,
// for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(filename string) error {
	return prometheus.WriteToTextfile(filename, m.Registry)
}
