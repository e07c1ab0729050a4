// ./internal/config/config.go
package config

/*
Package config loads the configuration of the geomag command.

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
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mshafiee/geomag"
	"github.com/mshafiee/geomag/internal/logger"
)

// ErrInvalid is returned for configurations failing validation.
var ErrInvalid = errors.New("invalid configuration")

// envPrefix prefixes the environment variables overriding file settings.
const envPrefix = "GEOMAG_"

// Config holds all command configuration
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Eval    EvalConfig    `yaml:"eval"`
	Logging logger.Config `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ModelConfig selects the coefficient set
type ModelConfig struct {
	File            string  `yaml:"file"`             // SHC coefficient file
	Epoch           float64 `yaml:"epoch"`            // Decimal year; 0 selects the first epoch of the file
	Degree          int     `yaml:"degree"`           // Truncation degree; 0 keeps the full model
	ReferenceRadius float64 `yaml:"reference_radius"` // km
	Geoid           string  `yaml:"geoid"`            // Geoid grid file for geodetic_egm96 coordinates
}

// InputConfig describes the point stream
type InputConfig struct {
	Format    string `yaml:"format"`     // "text" or "binary"
	Coords    string `yaml:"coords"`     // Coordinate system name
	ByteOrder string `yaml:"byte_order"` // "little" or "big", binary input only
}

// OutputConfig describes the result stream
type OutputConfig struct {
	Coords string `yaml:"coords"` // Coordinate system name
	Format string `yaml:"format"` // "json" or "text"
}

// EvalConfig controls the evaluation
type EvalConfig struct {
	Mode    string `yaml:"mode"`
	Order   string `yaml:"order"`
	Workers int    `yaml:"workers"` // 1 evaluates serially, 0 uses every CPU
}

// MetricsConfig controls the metrics export
type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // Prometheus textfile written after the run; empty disables it
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Model:   ModelConfig{ReferenceRadius: geomag.RADIUS},
		Input:   InputConfig{Format: "text", Coords: geomag.GeodeticAboveWGS84.String(), ByteOrder: "little"},
		Output:  OutputConfig{Coords: geomag.GeodeticAboveWGS84.String(), Format: "json"},
		Eval:    EvalConfig{Mode: geomag.PotentialAndGradient.String(), Order: geomag.RowMajor.String(), Workers: 1},
		Logging: logger.Config{Level: "info", Format: "text"},
	}
}

// Load loads configuration from an optional YAML file, then applies the
// GEOMAG_* environment variables, also read from a .env file if one exists.
func Load(filename string) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := Default()
	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Model.File, "MODEL_FILE")
	setString(&c.Model.Geoid, "GEOID")
	setString(&c.Input.Format, "INPUT_FORMAT")
	setString(&c.Input.Coords, "INPUT_COORDS")
	setString(&c.Input.ByteOrder, "BYTE_ORDER")
	setString(&c.Output.Coords, "OUTPUT_COORDS")
	setString(&c.Output.Format, "OUTPUT_FORMAT")
	setString(&c.Eval.Mode, "MODE")
	setString(&c.Eval.Order, "ORDER")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")
	setString(&c.Metrics.Textfile, "METRICS_TEXTFILE")

	if err := setFloat(&c.Model.Epoch, "EPOCH"); err != nil {
		return err
	}
	if err := setFloat(&c.Model.ReferenceRadius, "REFERENCE_RADIUS"); err != nil {
		return err
	}
	if err := setInt(&c.Model.Degree, "DEGREE"); err != nil {
		return err
	}
	return setInt(&c.Eval.Workers, "WORKERS")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		*dst = v
	}
}

func setFloat(dst *float64, key string) error {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fmt.Errorf("%w: %s%s=%q", ErrInvalid, envPrefix, key, v)
	}
	*dst = f
	return nil
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%w: %s%s=%q", ErrInvalid, envPrefix, key, v)
	}
	*dst = i
	return nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.Model.Degree < 0 {
		return fmt.Errorf("%w: negative model degree %d", ErrInvalid, c.Model.Degree)
	}
	if !(c.Model.ReferenceRadius > 0) {
		return fmt.Errorf("%w: reference radius %g", ErrInvalid, c.Model.ReferenceRadius)
	}
	if c.Eval.Workers < 0 {
		return fmt.Errorf("%w: negative worker count %d", ErrInvalid, c.Eval.Workers)
	}
	in, err := geomag.ParseCoordSystem(c.Input.Coords)
	if err != nil {
		return fmt.Errorf("%w: input: %w", ErrInvalid, err)
	}
	if _, err := geomag.ParseCoordSystem(c.Output.Coords); err != nil {
		return fmt.Errorf("%w: output: %w", ErrInvalid, err)
	}
	if in == geomag.GeodeticAboveEGM96 && c.Model.Geoid == "" {
		return fmt.Errorf("%w: %s input needs a geoid grid", ErrInvalid, in)
	}
	if _, err := geomag.ParseMode(c.Eval.Mode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := geomag.ParseOrder(c.Eval.Order); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	switch strings.ToLower(c.Input.Format) {
	case "text", "binary":
	default:
		return fmt.Errorf("%w: input format %q", ErrInvalid, c.Input.Format)
	}
	switch strings.ToLower(c.Input.ByteOrder) {
	case "little", "big":
	default:
		return fmt.Errorf("%w: byte order %q", ErrInvalid, c.Input.ByteOrder)
	}
	switch strings.ToLower(c.Output.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("%w: output format %q", ErrInvalid, c.Output.Format)
	}
	return nil
}

// Print displays the configuration
func (c *Config) Print() {
	fmt.Printf("Model: %s (epoch %g, degree %d, radius %g km)\n", c.Model.File, c.Model.Epoch, c.Model.Degree, c.Model.ReferenceRadius)
	if c.Model.Geoid != "" {
		fmt.Printf("Geoid: %s\n", c.Model.Geoid)
	}
	fmt.Printf("Input: %s %s, output: %s %s\n", c.Input.Format, c.Input.Coords, c.Output.Format, c.Output.Coords)
	workers := "auto"
	if c.Eval.Workers > 0 {
		workers = strconv.Itoa(c.Eval.Workers)
	}
	fmt.Printf("Eval: %s, %s order, workers=%s\n", c.Eval.Mode, c.Eval.Order, workers)
}
