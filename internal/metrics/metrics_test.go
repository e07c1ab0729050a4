package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mshafiee/geomag"
)

type fixedStats geomag.CacheStats

func (s fixedStats) Stats() geomag.CacheStats { return geomag.CacheStats(s) }

func TestCollector(t *testing.T) {
	c := NewCollector(fixedStats{Evaluations: 10, LegendreRefreshes: 2, AzimuthRefreshes: 5, RadialRefreshes: 10})

	expected := `
# HELP geomag_evaluations_total Total number of evaluated points.
# TYPE geomag_evaluations_total counter
geomag_evaluations_total 10
# HELP geomag_legendre_refreshes_total Total number of Legendre table recomputations.
# TYPE geomag_legendre_refreshes_total counter
geomag_legendre_refreshes_total 2
# HELP geomag_azimuth_refreshes_total Total number of azimuthal table recomputations.
# TYPE geomag_azimuth_refreshes_total counter
geomag_azimuth_refreshes_total 5
# HELP geomag_radial_refreshes_total Total number of radial power table recomputations.
# TYPE geomag_radial_refreshes_total counter
geomag_radial_refreshes_total 10
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected)))
	assert.Equal(t, 4, testutil.CollectAndCount(c))
}

func TestCollectorFollowsModel(t *testing.T) {
	g := []float64{0, -29404.8, -1450.9}
	h := []float64{0, 0, 4652.5}
	model, err := geomag.NewModel(1, geomag.GeocentricSpherical, geomag.GeocentricSpherical, g, h)
	require.NoError(t, err)
	defer model.Close()

	c := NewCollector(model)
	for _, lon := range []float64{0, 10, 20} {
		_, err := model.Eval(geomag.Gradient, 45, lon, 6371.2)
		require.NoError(t, err)
	}

	expected := `
# HELP geomag_evaluations_total Total number of evaluated points.
# TYPE geomag_evaluations_total counter
geomag_evaluations_total 3
# HELP geomag_legendre_refreshes_total Total number of Legendre table recomputations.
# TYPE geomag_legendre_refreshes_total counter
geomag_legendre_refreshes_total 1
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected),
		"geomag_evaluations_total", "geomag_legendre_refreshes_total"))
}

func TestWriteTextfile(t *testing.T) {
	m := New(fixedStats{Evaluations: 7})
	m.ObserveBatch(7, 250*time.Millisecond)

	assert.Equal(t, 7.0, testutil.ToFloat64(m.batchPoints))

	path := filepath.Join(t.TempDir(), "geomag.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "geomag_evaluations_total 7")
	assert.Contains(t, string(data), "geomag_batch_points_total 7")
	assert.Contains(t, string(data), "geomag_batch_duration_seconds_count 1")
}
