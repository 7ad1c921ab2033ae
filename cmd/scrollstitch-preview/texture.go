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

package main

import (
	"github.com/go-gl/gl/v3.2-core/gl"

	"github.com/jietuba/scrollstitch/stitch"
)

// canvasTexture holds the GL texture the preview window blits the session's
// growing canvas into. Its height changes as the canvas grows, so it is
// recreated (not sub-imaged) whenever the reported frame's height differs
// from what is currently uploaded.
type canvasTexture struct {
	id     uint32
	width  int32
	height int32
}

func newCanvasTexture() *canvasTexture {
	t := &canvasTexture{}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	return t
}

// upload pushes frame's pixels (RGBA only; preview never receives RGB
// frames since the demo source always decodes to RGBA) into the texture,
// reallocating GPU storage if the dimensions changed since the last upload.
func (t *canvasTexture) upload(frame *stitch.Frame) {
	if frame == nil || frame.Width == 0 || frame.Height == 0 {
		return
	}

	gl.BindTexture(gl.TEXTURE_2D, t.id)

	w, h := int32(frame.Width), int32(frame.Height)
	if w != t.width || h != t.height {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, w, h, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(frame.Pix))
		t.width, t.height = w, h
		return
	}
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, w, h, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(frame.Pix))
}

func (t *canvasTexture) destroy() {
	gl.DeleteTextures(1, &t.id)
}
