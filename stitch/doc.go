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

// Package stitch implements the scrolling screenshot stitcher: given a
// user-selected capture rectangle and a stream of newly captured frames of
// that rectangle, it produces a single tall composite image that extends
// seamlessly as new material scrolls into view.
//
// The package is organised around five cooperating pieces, leaf to root:
// a Comparator that classifies one frame against the canvas tail, a Canvas
// that owns the growing composite image, a Scheduler that paces capture
// requests, a Controller that drives the capture/compare/append loop and
// owns the session state machine, and the Session handle exposed to callers.
// Screen capture itself, and everything downstream of the finished image
// (saving, annotation, UI), are out of scope; callers supply a FrameSource
// and consume Events.
package stitch
