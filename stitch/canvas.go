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

import (
	"sync"

	"github.com/jietuba/scrollstitch/stitcherr"
)

// Canvas is the growing composite image a session builds up. Internally it
// tracks rows in a signed coordinate space -- row 0 is wherever the first
// frame landed, and upward growth (a prepend) can push the lowest row
// negative -- because the Comparator and Controller need stable y-ranges for
// rows that are already written even as more rows are prepended above them.
// Freeze renumbers everything to a 0-origin image in one pass at the end.
//
// Once the resident row count exceeds the configured memory cap, the oldest
// rows (the ones farthest from the tail the Comparator reads) are evicted to
// a private spill file. Eviction only ever removes from the current top of
// the in-memory window, which is safe because ReadTail only ever serves rows
// from the bottom.
type Canvas struct {
	mu sync.Mutex

	width  int
	bpp    int
	format PixelFormat

	retentionRows  int
	memoryCapBytes int64

	rows         [][]byte
	originY      int
	spilledCount int
	spill        *spillStore
	spilledEver  bool

	initialized bool
	frozen      bool
}

// NewCanvas creates an empty Canvas. retentionRows is the minimum number of
// bottom rows that must always stay resident in memory -- the Comparator
// never reads more than H + max_search_offset_px + blend_band_px rows from
// the tail, so that is the floor passed in by the Controller.
func NewCanvas(memoryCapBytes int64, retentionRows int) *Canvas {
	return &Canvas{memoryCapBytes: memoryCapBytes, retentionRows: retentionRows}
}

// Initialize seeds the canvas with the first accepted frame, becoming its
// row 0. It may only be called once.
func (c *Canvas) Initialize(first *Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return stitcherr.Errorf(stitcherr.InternalError, "canvas already initialized")
	}

	c.width = first.Width
	c.bpp = first.Format.BytesPerPixel()
	c.format = first.Format

	c.rows = make([][]byte, first.Height)
	for y := 0; y < first.Height; y++ {
		row := make([]byte, c.width*c.bpp)
		copy(row, first.Row(y))
		c.rows[y] = row
	}

	c.initialized = true
	c.maybeSpill()
	return nil
}

// Initialized reports whether Initialize has been called yet.
func (c *Canvas) Initialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// Height reports C_H, the canvas's total logical row count (resident plus
// spilled).
func (c *Canvas) Height() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spilledCount + len(c.rows)
}

// MemoryBytes reports the approximate resident (non-spilled) byte footprint.
func (c *Canvas) MemoryBytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(len(c.rows)) * int64(c.width*c.bpp)
}

func clampCol(x, width int) int {
	if x < 0 {
		return 0
	}
	if x >= width {
		return width - 1
	}
	return x
}

// marginColumns resolves a Margins' Left/Right into the [lo, hi) column
// range that may actually be written; columns outside it are margin columns
// and are left untouched by every writer below.
func marginColumns(margins Margins, width int) (lo, hi int) {
	lo = margins.Left
	hi = width - margins.Right
	if lo < 0 {
		lo = 0
	}
	if hi > width {
		hi = width
	}
	return lo, hi
}

// isMarginRow reports whether frame row index i, out of h total rows, falls
// inside the Top or Bottom margin and so must never be written fresh.
func isMarginRow(i, h int, margins Margins) bool {
	return i < margins.Top || i >= h-margins.Bottom
}

// copyRowShifted writes src into dst, offset horizontally by dx, restricted
// to columns [colLo, colHi). Columns outside that range are margin columns:
// dst is left exactly as it already was (zero for a freshly allocated row,
// whatever the canvas already held for an overlap row), never overwritten
// with fresh captured pixels. Columns that fall outside src once shifted
// have no captured data for this row, so the nearest edge column is
// replicated rather than left black.
func copyRowShifted(dst, src []byte, bpp, dx, width, colLo, colHi int) {
	for x := colLo; x < colHi; x++ {
		sx := clampCol(x-dx, width)
		copy(dst[x*bpp:x*bpp+bpp], src[sx*bpp:sx*bpp+bpp])
	}
}

// blendRowInto alpha-blends src (shifted by dx) into dst in place, weighted
// toward src by alpha, restricted to columns [colLo, colHi); margin columns
// are left untouched. Used only on the handful of rows nearest a seam, to
// hide the sub-pixel noise a fresh capture of the same on-screen content can
// carry relative to what's already on the canvas.
func blendRowInto(dst, src []byte, bpp, dx, width, colLo, colHi int, alpha float64) {
	for x := colLo; x < colHi; x++ {
		sx := clampCol(x-dx, width)
		for k := 0; k < bpp; k++ {
			ci := x*bpp + k
			si := sx*bpp + k
			dst[ci] = byte(float64(dst[ci])*(1-alpha) + float64(src[si])*alpha)
		}
	}
}

// AppendStrip writes one accepted frame's new content onto the canvas and
// returns the signed y-range it occupies. dy>0 extends the canvas downward
// (the common scrolling-down case); dy<0 prepends upward; dy==0 is a jump
// append (the whole frame is unrelated content, written with no blending).
// margins marks rows and columns whose pixels never contribute a fresh
// write: a margin row is left exactly as it was (blank for a genuinely new
// row, unchanged for a row that already existed), and a margin column is
// skipped the same way on every row that is written.
func (c *Canvas) AppendStrip(frame *Frame, dy, dx, blendBandPx int, margins Margins) (yStart, yEnd int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return 0, 0, stitcherr.Errorf(stitcherr.InternalError, "canvas not initialized")
	}
	if c.frozen {
		return 0, 0, stitcherr.Errorf(stitcherr.InternalError, "canvas already frozen")
	}

	bpp := c.bpp
	width := c.width
	h := frame.Height
	colLo, colHi := marginColumns(margins, width)

	switch {
	case dy == 0:
		yStart = c.originY + c.spilledCount + len(c.rows)
		for i := 0; i < h; i++ {
			row := make([]byte, width*bpp)
			if !isMarginRow(i, h, margins) {
				copyRowShifted(row, frame.Row(i), bpp, dx, width, colLo, colHi)
			}
			c.rows = append(c.rows, row)
		}
		yEnd = yStart + h

	case dy > 0:
		overlap := h - dy
		if overlap < 0 {
			overlap = 0
		}
		blendCount := blendBandPx
		if blendCount > overlap {
			blendCount = overlap
		}
		if blendCount > len(c.rows) {
			blendCount = len(c.rows)
		}
		for i := 0; i < blendCount; i++ {
			canvasIdx := len(c.rows) - blendCount + i
			frameIdx := overlap - blendCount + i
			if isMarginRow(frameIdx, h, margins) {
				continue
			}
			alpha := float64(i+1) / float64(blendCount+1)
			blendRowInto(c.rows[canvasIdx], frame.Row(frameIdx), bpp, dx, width, colLo, colHi, alpha)
		}

		yStart = c.originY + c.spilledCount + len(c.rows)
		for i := 0; i < dy; i++ {
			frameIdx := overlap + i
			row := make([]byte, width*bpp)
			if !isMarginRow(frameIdx, h, margins) {
				copyRowShifted(row, frame.Row(frameIdx), bpp, dx, width, colLo, colHi)
			}
			c.rows = append(c.rows, row)
		}
		yEnd = yStart + dy

	default: // dy < 0
		if c.spilledEver {
			return 0, 0, stitcherr.Errorf(stitcherr.OutOfMemory,
				"cannot prepend above a canvas that has already spilled rows to disk")
		}
		m := -dy
		overlap := h - m
		if overlap < 0 {
			overlap = 0
		}
		blendCount := blendBandPx
		if blendCount > overlap {
			blendCount = overlap
		}
		if blendCount > len(c.rows) {
			blendCount = len(c.rows)
		}
		for i := 0; i < blendCount; i++ {
			canvasIdx := i
			frameIdx := m + i
			if isMarginRow(frameIdx, h, margins) {
				continue
			}
			alpha := float64(blendCount-i) / float64(blendCount+1)
			blendRowInto(c.rows[canvasIdx], frame.Row(frameIdx), bpp, dx, width, colLo, colHi, alpha)
		}

		newRows := make([][]byte, m)
		for i := 0; i < m; i++ {
			row := make([]byte, width*bpp)
			if !isMarginRow(i, h, margins) {
				copyRowShifted(row, frame.Row(i), bpp, dx, width, colLo, colHi)
			}
			newRows[i] = row
		}
		c.originY -= m
		c.rows = append(newRows, c.rows...)

		yStart = c.originY
		yEnd = c.originY + m
	}

	c.maybeSpill()
	return yStart, yEnd, nil
}

// maybeSpill evicts rows from the top of the in-memory window to the spill
// file until the resident footprint is back under the memory cap, or the
// retention floor is reached -- whichever comes first. The retention floor
// always wins: the Comparator's contract with ReadTail must never break.
func (c *Canvas) maybeSpill() {
	if c.memoryCapBytes <= 0 {
		return
	}
	stride := int64(c.width * c.bpp)
	for int64(len(c.rows))*stride > c.memoryCapBytes && len(c.rows) > c.retentionRows {
		evictN := len(c.rows) - c.retentionRows
		if c.spill == nil {
			s, err := newSpillStore(c.width, c.bpp)
			if err != nil {
				// Without a spill file the cap simply can't be honored.
				// maybeSpill has no error return, so the rows stay resident
				// past the cap and the failure is not reported to the
				// Controller.
				return
			}
			c.spill = s
		}
		if err := c.spill.evict(c.rows[:evictN]); err != nil {
			return
		}
		remaining := make([][]byte, len(c.rows)-evictN)
		copy(remaining, c.rows[evictN:])
		c.rows = remaining
		c.spilledCount += evictN
		c.spilledEver = true
	}
}

// ReadTail returns an immutable snapshot of the bottom n rows of the canvas,
// the reference the Comparator aligns every new frame against. An n larger
// than the number of rows held in memory is clamped to that number; rows
// already spilled to disk are never included.
func (c *Canvas) ReadTail(n int) *Frame {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n > len(c.rows) {
		n = len(c.rows)
	}
	start := len(c.rows) - n

	pix := make([]byte, n*c.width*c.bpp)
	for i := 0; i < n; i++ {
		copy(pix[i*c.width*c.bpp:(i+1)*c.width*c.bpp], c.rows[start+i])
	}

	return &Frame{Width: c.width, Height: n, Format: c.format, Pix: pix}
}

// Freeze finalizes the canvas: no further appends are permitted, and the
// full image -- spilled rows reassembled with whatever is still resident --
// is returned as a single 0-origin Frame. The spill file, if any, is removed
// once it has been read back.
func (c *Canvas) Freeze() (*Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return nil, stitcherr.Errorf(stitcherr.InternalError, "canvas not initialized")
	}

	var spilledRows [][]byte
	if c.spill != nil {
		rows, err := c.spill.readAll()
		if err != nil {
			return nil, stitcherr.Errorf(stitcherr.InternalError, "reading spilled rows: %w", err)
		}
		spilledRows = rows
	}

	total := len(spilledRows) + len(c.rows)
	pix := make([]byte, total*c.width*c.bpp)
	rowBytes := c.width * c.bpp
	off := 0
	for _, row := range spilledRows {
		copy(pix[off:off+rowBytes], row)
		off += rowBytes
	}
	for _, row := range c.rows {
		copy(pix[off:off+rowBytes], row)
		off += rowBytes
	}

	if c.spill != nil {
		if err := c.spill.close(); err != nil {
			return nil, stitcherr.Errorf(stitcherr.InternalError, "closing spill file: %w", err)
		}
	}

	c.frozen = true
	return &Frame{Width: c.width, Height: total, Format: c.format, Pix: pix}, nil
}

// OriginOffset reports the amount by which record y-ranges must be shifted
// to match the renumbered, 0-origin image Freeze returns. It is only
// meaningful after Freeze has been called (or, equivalently, once the final
// originY is known not to change further).
func (c *Canvas) OriginOffset() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return -c.originY
}
