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

// Package demosource builds a stitch.FrameSource out of a single tall image
// on disk, by sliding a capture-sized window down it a few pixels at a time.
// It exists so the two peripheral binaries (scrollstitch-preview,
// scrollstitch-cli) have something to stitch without a real desktop capture
// backend wired in.
package demosource

import (
	"context"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"
	"time"

	"github.com/jietuba/scrollstitch/stitch"
	"github.com/jietuba/scrollstitch/stitcherr"
)

// Source is a stitch.FrameSource that walks a tall still image from top to
// bottom, simulating a page that scrolls at a fixed step per capture.
type Source struct {
	mu   sync.Mutex
	img  *image.RGBA
	y    int
	step int
}

// Load reads path (PNG or JPEG) and returns a Source that will slide a
// capture window down it step pixels at a time, starting at the top.
func Load(path string, step int) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, stitcherr.Errorf(stitcherr.CaptureFailed, "opening demo source image: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, stitcherr.Errorf(stitcherr.CaptureFailed, "decoding demo source image: %w", err)
	}

	rgba := image.NewRGBA(src.Bounds())
	draw.Draw(rgba, rgba.Bounds(), src, src.Bounds().Min, draw.Src)

	if step <= 0 {
		step = 6
	}
	return &Source{img: rgba, step: step}, nil
}

// Height returns the full height of the underlying source image.
func (s *Source) Height() int {
	return s.img.Bounds().Dy()
}

// Capture implements stitch.FrameSource. It copies out the rect-sized window
// currently at s.y, then advances y by step (clamped so the window never
// runs past the bottom of the image; once there it holds still, mimicking a
// page that has finished scrolling).
func (s *Source) Capture(ctx context.Context, rect stitch.Rect) (stitch.Frame, error) {
	select {
	case <-ctx.Done():
		return stitch.Frame{}, stitcherr.Errorf(stitcherr.CaptureFailed, "capture cancelled: %w", ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bounds := s.img.Bounds()
	if rect.Width > bounds.Dx() || s.y+rect.Height > bounds.Dy() {
		return stitch.Frame{}, stitcherr.Errorf(stitcherr.InvalidRect, "capture rectangle does not fit within demo source image")
	}

	frame := stitch.Frame{
		Width:    rect.Width,
		Height:   rect.Height,
		Format:   stitch.FormatRGBA,
		Pix:      make([]byte, rect.Width*rect.Height*stitch.FormatRGBA.BytesPerPixel()),
		Captured: time.Now(),
	}
	for row := 0; row < rect.Height; row++ {
		srcY := bounds.Min.Y + s.y + row
		srcOff := s.img.PixOffset(bounds.Min.X, srcY)
		copy(frame.Row(row), s.img.Pix[srcOff:srcOff+rect.Width*4])
	}

	if s.y+rect.Height+s.step <= bounds.Dy() {
		s.y += s.step
	}

	return frame, nil
}
