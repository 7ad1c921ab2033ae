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

// rowSampleStride is how many columns apart the identity check samples a
// row's luminance. Sampling rather than summing every pixel keeps Stage 1's
// idle-frame cost near zero, as required: a stitcher that is open but not
// being scrolled will run this check many times per second.
const rowSampleStride = 4

// identityThreshold is the maximum per-row average-luminance distance the
// identity check tolerates before declaring two rows different. It is a
// tolerance, not an exact-match requirement, because re-encoding a frame
// through a platform capture API can introduce a few units of noise even
// when nothing on screen changed.
const identityThreshold = 0.75

// rowSignature is a cheap row fingerprint: the mean luminance of every
// rowSampleStride-th pixel in [x0, x0+width). Two rows with a small
// signature distance are assumed identical without ever comparing every
// pixel.
func rowSignature(row []byte, bpp, x0, width int) float64 {
	if width <= 0 {
		return 0
	}
	var sum float64
	var n int
	for x := x0; x < x0+width; x += rowSampleStride {
		sum += luminance(row, x, bpp)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// identical reports whether tail and frame are pixel-equivalent, modulo
// identityThreshold, over the comparison region (margins excluded). It is
// Stage 1 of the comparator and must short-circuit before Stage 2 runs.
func identical(tail, frame *Frame, margins Margins) bool {
	bpp := frame.Format.BytesPerPixel()
	x0 := margins.Left
	width := frame.Width - margins.Left - margins.Right
	top := margins.Top
	bottom := frame.Height - margins.Bottom

	for y := top; y < bottom; y++ {
		ts := rowSignature(tail.Row(y), bpp, x0, width)
		fs := rowSignature(frame.Row(y), bpp, x0, width)
		if math.Abs(ts-fs) > identityThreshold {
			return false
		}
	}
	return true
}
