// ./cmd/geomag/main.go
package main

/*
Command geomag evaluates a geomagnetic field model at a stream of points.

Usage:

	geomag [-config geomag.yaml] [-print-config] [points-file]

Points are read from the file, or from standard input, either as text (three
numbers per line) or as raw float64 triples. Results are written to standard
output as JSON lines or text columns.

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
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mshafiee/geomag"
	"github.com/mshafiee/geomag/geoid"
	"github.com/mshafiee/geomag/internal/config"
	"github.com/mshafiee/geomag/internal/logger"
	"github.com/mshafiee/geomag/internal/metrics"
	"github.com/mshafiee/geomag/shcfile"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to the YAML configuration file")
		printConfig = flag.Bool("print-config", false, "Print the effective configuration and exit")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(2)
	}
	if *printConfig {
		cfg.Print()
		return
	}

	log := logger.New(cfg.Logging, os.Stderr)
	geomag.SetLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, log, flag.Arg(0), os.Stdout); err != nil {
		logger.Fatal(log, err, "evaluation failed")
	}
}

// loadModel builds the model described by the configuration.
func loadModel(cfg *config.Config, log *slog.Logger) (*geomag.Model, error) {
	if cfg.Model.File == "" {
		return nil, fmt.Errorf("no model file configured")
	}
	file, err := shcfile.Load(cfg.Model.File)
	if err != nil {
		return nil, err
	}

	var coef *geomag.Coefficients
	if cfg.Model.Epoch == 0 {
		coef, err = file.Coefficients(0)
	} else {
		coef, err = file.At(cfg.Model.Epoch)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Model.Degree > 0 && cfg.Model.Degree < coef.Degree() {
		if coef, err = coef.Truncate(cfg.Model.Degree); err != nil {
			return nil, err
		}
	}

	opts := []geomag.Option{geomag.WithReferenceRadius(cfg.Model.ReferenceRadius)}
	if cfg.Model.Geoid != "" {
		grid, err := geoid.LoadGrid(cfg.Model.Geoid)
		if err != nil {
			return nil, err
		}
		opts = append(opts, geomag.WithGeoid(grid))
	}

	in, err := geomag.ParseCoordSystem(cfg.Input.Coords)
	if err != nil {
		return nil, fmt.Errorf("input coordinates: %w", err)
	}
	out, err := geomag.ParseCoordSystem(cfg.Output.Coords)
	if err != nil {
		return nil, fmt.Errorf("output coordinates: %w", err)
	}
	model, err := geomag.NewModelFromCoefficients(coef, in, out, opts...)
	if err != nil {
		return nil, err
	}
	log.Info("model loaded",
		"file", cfg.Model.File,
		"degree", coef.Degree(),
		"epochs", len(file.Times),
		"input", in.String(),
		"output", out.String(),
	)
	return model, nil
}

// readPoints reads the point array in the configured format.
func readPoints(cfg *config.Config, r io.Reader) (*geomag.Array, error) {
	if strings.EqualFold(cfg.Input.Format, "binary") {
		if strings.EqualFold(cfg.Input.ByteOrder, "big") {
			geomag.SetByteOrder(binary.BigEndian)
		} else {
			geomag.SetByteOrder(binary.LittleEndian)
		}
		return geomag.ReadArray(r, -1, 3)
	}
	return readTextPoints(r)
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger, source string, w io.Writer) error {
	model, err := loadModel(cfg, log)
	if err != nil {
		return err
	}
	defer model.Close()

	var r io.Reader = os.Stdin
	if source != "" && source != "-" {
		fp, err := os.Open(source)
		if err != nil {
			return fmt.Errorf("failed to open points: %w", err)
		}
		defer fp.Close()
		r = fp
	}
	points, err := readPoints(cfg, bufio.NewReader(r))
	if err != nil {
		return err
	}

	mode, err := geomag.ParseMode(cfg.Eval.Mode)
	if err != nil {
		return err
	}
	order, err := geomag.ParseOrder(cfg.Eval.Order)
	if err != nil {
		return err
	}
	n := points.Shape[0]

	start := time.Now()
	var pot, grad *geomag.Array
	if cfg.Eval.Workers == 1 {
		pot, grad, err = model.EvalBatch(points, mode, order)
	} else {
		pot, grad, err = geomag.EvalParallel(ctx, model, points, mode, cfg.Eval.Workers)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	bw := bufio.NewWriter(w)
	if strings.EqualFold(cfg.Output.Format, "text") {
		err = writeText(bw, points, pot, grad)
	} else {
		err = writeJSON(bw, points, pot, grad)
	}
	if err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	stats := model.Stats()
	rate := 0.0
	if elapsed > 0 {
		rate = float64(n) / elapsed.Seconds()
	}
	log.Info("evaluation finished",
		"points", humanize.Comma(int64(n)),
		"elapsed", elapsed.Round(time.Microsecond),
		"rate", humanize.SIWithDigits(rate, 2, "pt/s"),
		"legendre_refreshes", humanize.Comma(int64(stats.LegendreRefreshes)),
	)

	if cfg.Metrics.Textfile != "" {
		m := metrics.New(model)
		m.ObserveBatch(n, elapsed)
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}
