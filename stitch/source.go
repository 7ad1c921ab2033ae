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

import "context"

// FrameSource is the external collaborator that produces RGBA frames of the
// capture rectangle on request. The stitcher never implements screen capture
// itself; it only consumes a FrameSource. Implementations are free to wrap
// any platform capture API.
//
// Capture must return a CaptureFailed-kind error (via stitcherr) if the
// rectangle is offscreen, the display configuration changed, or the OS
// denied capture. There are no ordering or rate guarantees; the Controller's
// Scheduler decides cadence, not the Source.
type FrameSource interface {
	Capture(ctx context.Context, rect Rect) (Frame, error)
}

// FrameSourceFunc adapts a plain function to the FrameSource interface.
type FrameSourceFunc func(ctx context.Context, rect Rect) (Frame, error)

// Capture implements FrameSource.
func (f FrameSourceFunc) Capture(ctx context.Context, rect Rect) (Frame, error) {
	return f(ctx, rect)
}
