// This file is part of Scrollstitch.
//
// Scrollstitch is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Scrollstitch is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Scrollstitch.  If not, see <https://www.gnu.org/licenses/>.

package stitch

import "testing"

// gradientRow builds a row of width pixels whose luminance ramps, so patches
// of it have real structure (unlike a flat color) for NCC to key on.
func gradientRow(width, bpp int, base int) []byte {
	row := make([]byte, width*bpp)
	for x := 0; x < width; x++ {
		level := byte((base + x*7) % 256)
		for k := 0; k < 3 && k < bpp; k++ {
			row[x*bpp+k] = level
		}
		if bpp == 4 {
			row[x*4+3] = 255
		}
	}
	return row
}

func TestScoreRowsIdenticalPatchesScoreHigh(t *testing.T) {
	var a, b [][]float64
	for r := 0; r < 5; r++ {
		row := gradientRow(16, 4, r*3)
		a = append(a, luminanceRow(row, 4, 0, 16))
		b = append(b, luminanceRow(row, 4, 0, 16))
	}
	for _, m := range []Metric{MetricNCC, MetricMAD} {
		if score := scoreRows(m, a, b); score < 0.99 {
			t.Fatalf("metric %v: identical patches scored %f, want near 1", m, score)
		}
	}
}

func TestScoreRowsUniformPatchesScoreZero(t *testing.T) {
	var a, b [][]float64
	for r := 0; r < 5; r++ {
		flat := make([]byte, 16*4)
		for x := 0; x < 16; x++ {
			flat[x*4], flat[x*4+1], flat[x*4+2], flat[x*4+3] = 128, 128, 128, 255
		}
		a = append(a, luminanceRow(flat, 4, 0, 16))
		b = append(b, luminanceRow(flat, 4, 0, 16))
	}
	for _, m := range []Metric{MetricNCC, MetricMAD} {
		if score := scoreRows(m, a, b); score != 0 {
			t.Fatalf("metric %v: uniform patches scored %f, want 0", m, score)
		}
	}
}

func TestScoreRowsDissimilarPatchesScoreLow(t *testing.T) {
	var a, b [][]float64
	for r := 0; r < 5; r++ {
		a = append(a, luminanceRow(gradientRow(16, 4, 0), 4, 0, 16))
		b = append(b, luminanceRow(gradientRow(16, 4, 123), 4, 0, 16))
	}
	score := scoreRows(MetricMAD, a, b)
	if score > 0.9 {
		t.Fatalf("MAD score for dissimilar patches = %f, want well below 1", score)
	}
}

func TestPatchStatsMeanAndStddev(t *testing.T) {
	var p patchStats
	p.add([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if mean := p.mean(); mean != 5 {
		t.Fatalf("mean = %f, want 5", mean)
	}
	if sd := p.stddev(); sd < 1.9 || sd > 2.1 {
		t.Fatalf("stddev = %f, want ~2", sd)
	}
}
