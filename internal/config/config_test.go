package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "geomag.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, 6371.2, cfg.Model.ReferenceRadius)
		assert.Equal(t, "text", cfg.Input.Format)
		assert.Equal(t, "geodetic_wgs84", cfg.Input.Coords)
		assert.Equal(t, "little", cfg.Input.ByteOrder)
		assert.Equal(t, "geodetic_wgs84", cfg.Output.Coords)
		assert.Equal(t, "json", cfg.Output.Format)
		assert.Equal(t, "potential_and_gradient", cfg.Eval.Mode)
		assert.Equal(t, "row_major", cfg.Eval.Order)
		assert.Equal(t, 1, cfg.Eval.Workers)
		assert.Equal(t, "info", cfg.Logging.Level)
	})

	t.Run("yaml file", func(t *testing.T) {
		path := writeConfig(t, `
model:
  file: igrf13.shc
  epoch: 2020.5
  degree: 10
input:
  format: binary
  coords: geocentric_cartesian
  byte_order: big
output:
  coords: geocentric_spherical
  format: text
eval:
  mode: gradient
  order: column_major
  workers: 4
logging:
  level: debug
  format: json
metrics:
  textfile: /tmp/geomag.prom
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "igrf13.shc", cfg.Model.File)
		assert.Equal(t, 2020.5, cfg.Model.Epoch)
		assert.Equal(t, 10, cfg.Model.Degree)
		assert.Equal(t, 6371.2, cfg.Model.ReferenceRadius, "unset keys keep their defaults")
		assert.Equal(t, "binary", cfg.Input.Format)
		assert.Equal(t, "geocentric_cartesian", cfg.Input.Coords)
		assert.Equal(t, "big", cfg.Input.ByteOrder)
		assert.Equal(t, "geocentric_spherical", cfg.Output.Coords)
		assert.Equal(t, "gradient", cfg.Eval.Mode)
		assert.Equal(t, "column_major", cfg.Eval.Order)
		assert.Equal(t, 4, cfg.Eval.Workers)
		assert.Equal(t, "json", cfg.Logging.Format)
		assert.Equal(t, "/tmp/geomag.prom", cfg.Metrics.Textfile)
	})

	t.Run("environment variable override", func(t *testing.T) {
		path := writeConfig(t, "model:\n  file: a.shc\n  degree: 5\n")
		t.Setenv("GEOMAG_MODEL_FILE", "b.shc")
		t.Setenv("GEOMAG_DEGREE", "8")
		t.Setenv("GEOMAG_EPOCH", "2015")
		t.Setenv("GEOMAG_WORKERS", "0")
		t.Setenv("GEOMAG_MODE", "potential")
		t.Setenv("GEOMAG_LOG_LEVEL", "warn")

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "b.shc", cfg.Model.File)
		assert.Equal(t, 8, cfg.Model.Degree)
		assert.Equal(t, 2015.0, cfg.Model.Epoch)
		assert.Equal(t, 0, cfg.Eval.Workers)
		assert.Equal(t, "potential", cfg.Eval.Mode)
		assert.Equal(t, "warn", cfg.Logging.Level)
	})

	t.Run("bad environment number", func(t *testing.T) {
		t.Setenv("GEOMAG_DEGREE", "ten")
		_, err := Load("")
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "model: [unterminated"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative degree", func(c *Config) { c.Model.Degree = -1 }},
		{"zero radius", func(c *Config) { c.Model.ReferenceRadius = 0 }},
		{"negative workers", func(c *Config) { c.Eval.Workers = -2 }},
		{"unknown input coords", func(c *Config) { c.Input.Coords = "ecef" }},
		{"unknown output coords", func(c *Config) { c.Output.Coords = "enu" }},
		{"geoid heights without grid", func(c *Config) { c.Input.Coords = "geodetic_egm96" }},
		{"unknown mode", func(c *Config) { c.Eval.Mode = "curl" }},
		{"unknown order", func(c *Config) { c.Eval.Order = "random" }},
		{"unknown input format", func(c *Config) { c.Input.Format = "csv" }},
		{"unknown byte order", func(c *Config) { c.Input.ByteOrder = "middle" }},
		{"unknown output format", func(c *Config) { c.Output.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}

	t.Run("geoid heights with grid", func(t *testing.T) {
		cfg := Default()
		cfg.Input.Coords = "geodetic_egm96"
		cfg.Model.Geoid = "egm96.grd"
		assert.NoError(t, cfg.Validate())
	})
}
