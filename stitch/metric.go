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

import "math"

// plane is the minimal read-only surface the scoring functions need. Both
// Frame and a Canvas tail snapshot (itself a Frame) satisfy it.
type plane interface {
	planeWidth() int
	planeBPP() int
	planeRow(y int) []byte
}

func (f *Frame) planeWidth() int       { return f.Width }
func (f *Frame) planeBPP() int         { return f.Format.BytesPerPixel() }
func (f *Frame) planeRow(y int) []byte { return f.Row(y) }

// luminance converts one pixel at column x of row to an 8-bit luminance
// value using the ITU-R BT.601 weights, the conventional reduction to use
// before scoring so that the comparator is insensitive to hue and only
// sensitive to the structure the human eye would track while scrolling.
func luminance(row []byte, x, bpp int) float64 {
	i := x * bpp
	r := float64(row[i])
	g := float64(row[i+1])
	b := float64(row[i+2])
	return 0.299*r + 0.587*g + 0.114*b
}

// luminanceRow extracts the luminance values for columns [x0,x0+n) of row.
func luminanceRow(row []byte, bpp, x0, n int) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = luminance(row, x0+i, bpp)
	}
	return out
}

// varianceEps is the luminance standard deviation below which a patch is
// considered uniform color. A match against a uniform patch carries no
// structural information, so it must never be allowed to win on its own,
// regardless of what a naive MAD or NCC computation would otherwise say.
const varianceEps = 1.5

// patchStats holds the running sums needed for both NCC and a variance
// uniformity check, accumulated a row at a time so the caller can early-exit
// a sparse pass without recomputing from scratch.
type patchStats struct {
	n     int
	sum   float64
	sumSq float64
}

func (p *patchStats) add(values []float64) {
	for _, v := range values {
		p.n++
		p.sum += v
		p.sumSq += v * v
	}
}

func (p *patchStats) mean() float64 {
	if p.n == 0 {
		return 0
	}
	return p.sum / float64(p.n)
}

func (p *patchStats) stddev() float64 {
	if p.n == 0 {
		return 0
	}
	m := p.mean()
	variance := p.sumSq/float64(p.n) - m*m
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// scoreRows computes a [0,1] similarity score between two equal-length,
// equal-width sets of rows using the configured metric. The rows hold
// luminance values already (see luminanceRow). a and b must have the same
// number of rows and the same row width.
func scoreRows(metric Metric, a, b [][]float64) float64 {
	var statsA, statsB patchStats
	var sumAbs float64
	var n int

	for r := range a {
		ra, rb := a[r], b[r]
		statsA.add(ra)
		statsB.add(rb)
		for i := range ra {
			sumAbs += math.Abs(ra[i] - rb[i])
			n++
		}
	}

	if n == 0 {
		return 0
	}

	// a match against a patch with no structure (uniform color, or a
	// uniform gradient-free block) is not evidence of alignment.
	if statsA.stddev() < varianceEps || statsB.stddev() < varianceEps {
		return 0
	}

	switch metric {
	case MetricMAD:
		meanAbs := sumAbs / float64(n)
		score := 1 - meanAbs/255
		if score < 0 {
			score = 0
		}
		return score
	default: // MetricNCC
		meanA, meanB := statsA.mean(), statsB.mean()
		var num, denomA, denomB float64
		for r := range a {
			ra, rb := a[r], b[r]
			for i := range ra {
				da := ra[i] - meanA
				db := rb[i] - meanB
				num += da * db
				denomA += da * da
				denomB += db * db
			}
		}
		denom := math.Sqrt(denomA) * math.Sqrt(denomB)
		if denom == 0 {
			return 0
		}
		ncc := num / denom
		// map [-1,1] linearly onto [0,1]: no correlation scores 0.5 and
		// perfect anti-correlation 0. The clamp only absorbs rounding.
		score := (ncc + 1) / 2
		if score < 0 {
			score = 0
		} else if score > 1 {
			score = 1
		}
		return score
	}
}
