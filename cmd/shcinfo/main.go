// ./cmd/shcinfo/main.go
package main

/*
Command shcinfo prints the power spectrum and dipole of an SHC model file.

Usage:

	shcinfo [-epoch 2020.0] [-radius 6371.2] model.shc

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
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/mshafiee/geomag"
	"github.com/mshafiee/geomag/shcfile"
)

func main() {
	var (
		epoch  = flag.Float64("epoch", 0, "Epoch in decimal years; 0 selects the first epoch of the file")
		radius = flag.Float64("radius", geomag.RADIUS, "Radius of the spectrum sphere in km")
	)
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Printf("Usage: shcinfo [-epoch year] [-radius km] model.shc\n")
		os.Exit(-1)
	}

	file, err := shcfile.Load(flag.Arg(0))
	if err != nil {
		fmt.Printf("SHC data not loaded from '%s'\n", flag.Arg(0))
		fmt.Printf("Error: %v\n", err)
		os.Exit(-1)
	}
	if err := report(os.Stdout, flag.Arg(0), file, *epoch, *radius); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(-1)
	}
}

// report prints the model summary, spectrum table and dipole parameters.
func report(w io.Writer, name string, file *shcfile.File, epoch, radius float64) error {
	var (
		coef *geomag.Coefficients
		err  error
	)
	if epoch == 0 {
		coef, err = file.Coefficients(0)
		epoch = file.Times[0]
	} else {
		coef, err = file.At(epoch)
	}
	if err != nil {
		return err
	}

	spectrum, err := geomag.PowerSpectrum(coef, geomag.RADIUS, radius)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Data from %s\n", name)
	fmt.Fprintf(w, "Degrees %d..%d, %d epochs (%g to %g), %s coefficients\n",
		file.MinDegree, file.MaxDegree, len(file.Times),
		file.Times[0], file.Times[len(file.Times)-1],
		humanize.Comma(int64(2*coef.TermCount())))
	fmt.Fprintf(w, "Epoch %g, radius %g km\n\n", epoch, radius)

	fmt.Fprintf(w, "%6s %18s %18s %10s\n", "Degree", "R_n (nT²)", "sqrt(R_n) (nT)", "share (%)")
	var total float64
	for _, r := range spectrum {
		total += r
	}
	for n := 1; n < len(spectrum); n++ {
		share := 0.0
		if total > 0 {
			share = 100 * spectrum[n] / total
		}
		fmt.Fprintf(w, "%6d %18.6e %18.6f %10.4f\n", n, spectrum[n], math.Sqrt(spectrum[n]), share)
	}

	axis, lat, lon, err := geomag.DipoleAxis(coef)
	if err != nil {
		return err
	}
	g10, g11, h11 := coef.G(1, 0), coef.G(1, 1), coef.H(1, 1)
	b0 := math.Sqrt(g10*g10 + g11*g11 + h11*h11)
	fmt.Fprintf(w, "\nDipole axis: [%9.6f, %9.6f, %9.6f]\n", axis[0], axis[1], axis[2])
	fmt.Fprintf(w, "Geomagnetic pole: %.4f° %.4f°\n", lat, lon)
	fmt.Fprintf(w, "Dipole strength B0: %.1f nT\n", b0)
	return nil
}
