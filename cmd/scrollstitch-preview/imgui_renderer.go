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
	"fmt"

	"github.com/go-gl/gl/v3.2-core/gl"
	"github.com/inkyblackness/imgui-go/v4"
)

const guiVertexShader = `
#version 150
uniform mat4 ProjMtx;
in vec2 Position;
in vec2 UV;
in vec4 Color;
out vec2 Frag_UV;
out vec4 Frag_Color;
void main() {
	Frag_UV = UV;
	Frag_Color = Color;
	gl_Position = ProjMtx * vec4(Position.xy, 0, 1);
}
` + "\x00"

const guiFragmentShader = `
#version 150
uniform sampler2D Texture;
in vec2 Frag_UV;
in vec4 Frag_Color;
out vec4 Out_Color;
void main() {
	Out_Color = Frag_Color * texture(Texture, Frag_UV.st);
}
` + "\x00"

// guiRenderer is a trimmed-down version of the teacher's gl32 imgui
// renderer: one shader program, one vertex+index buffer pair, a single font
// texture. It has no room for the teacher's CRT shaders or video capture
// path because the preview window only ever shows flat overlay text and the
// growing canvas texture, never a simulated CRT image.
type guiRenderer struct {
	program        uint32
	vboHandle      uint32
	elementsHandle uint32
	vaoHandle      uint32
	fontTextureID  uint32

	attribProjMtx int32
	attribTexture int32
	attribPos     uint32
	attribUV      uint32
	attribColor   uint32
}

func newGUIRenderer() (*guiRenderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl.Init: %w", err)
	}

	r := &guiRenderer{}

	vs, err := compileShader(guiVertexShader, gl.VERTEX_SHADER)
	if err != nil {
		return nil, err
	}
	fs, err := compileShader(guiFragmentShader, gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, err
	}

	r.program = gl.CreateProgram()
	gl.AttachShader(r.program, vs)
	gl.AttachShader(r.program, fs)
	gl.LinkProgram(r.program)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	var status int32
	gl.GetProgramiv(r.program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(r.program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(r.program, logLen, nil, &log[0])
		return nil, fmt.Errorf("linking gui shader program: %s", string(log))
	}

	r.attribProjMtx = gl.GetUniformLocation(r.program, gl.Str("ProjMtx\x00"))
	r.attribTexture = gl.GetUniformLocation(r.program, gl.Str("Texture\x00"))
	r.attribPos = uint32(gl.GetAttribLocation(r.program, gl.Str("Position\x00")))
	r.attribUV = uint32(gl.GetAttribLocation(r.program, gl.Str("UV\x00")))
	r.attribColor = uint32(gl.GetAttribLocation(r.program, gl.Str("Color\x00")))

	gl.GenBuffers(1, &r.vboHandle)
	gl.GenBuffers(1, &r.elementsHandle)
	gl.GenVertexArrays(1, &r.vaoHandle)

	return r, nil
}

func compileShader(source string, kind uint32) (uint32, error) {
	shader := gl.CreateShader(kind)
	csource, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		return 0, fmt.Errorf("compiling shader: %s", string(log))
	}
	return shader, nil
}

// uploadFonts creates the GL texture imgui's default font atlas needs and
// tells imgui its texture ID, per the standard imgui-go bring-up sequence.
func (r *guiRenderer) uploadFonts(fonts imgui.FontAtlas) {
	image := fonts.TextureDataRGBA32()
	gl.GenTextures(1, &r.fontTextureID)
	gl.BindTexture(gl.TEXTURE_2D, r.fontTextureID)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(image.Width), int32(image.Height),
		0, gl.RGBA, gl.UNSIGNED_BYTE, image.Pixels)
	fonts.SetTextureID(imgui.TextureID(r.fontTextureID))
}

func (r *guiRenderer) destroy() {
	gl.DeleteBuffers(1, &r.vboHandle)
	gl.DeleteBuffers(1, &r.elementsHandle)
	gl.DeleteVertexArrays(1, &r.vaoHandle)
	gl.DeleteTextures(1, &r.fontTextureID)
	gl.DeleteProgram(r.program)
}

// render translates imgui's last-rendered draw data into GL3 draw calls,
// following the orthographic-projection convention every imgui GL3 backend
// uses: display space maps to [-1,1] with Y flipped.
func (r *guiRenderer) render(fbWidth, fbHeight int32) {
	if fbWidth <= 0 || fbHeight <= 0 {
		return
	}
	drawData := imgui.RenderedDrawData()

	gl.Enable(gl.BLEND)
	gl.BlendEquation(gl.FUNC_ADD)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.CULL_FACE)
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.SCISSOR_TEST)
	gl.Viewport(0, 0, fbWidth, fbHeight)

	orthoProjection := [4][4]float32{
		{2.0 / float32(fbWidth), 0.0, 0.0, 0.0},
		{0.0, 2.0 / -float32(fbHeight), 0.0, 0.0},
		{0.0, 0.0, -1.0, 0.0},
		{-1.0, 1.0, 0.0, 1.0},
	}

	gl.UseProgram(r.program)
	gl.Uniform1i(r.attribTexture, 0)
	gl.UniformMatrix4fv(r.attribProjMtx, 1, false, &orthoProjection[0][0])
	gl.BindVertexArray(r.vaoHandle)

	indexSize := imgui.IndexBufferLayout()
	drawType := uint32(gl.UNSIGNED_SHORT)
	if indexSize == 4 {
		drawType = gl.UNSIGNED_INT
	}

	for _, list := range drawData.CommandLists() {
		var indexOffset uintptr

		vertexBuffer, vertexSize := list.VertexBuffer()
		gl.BindBuffer(gl.ARRAY_BUFFER, r.vboHandle)
		gl.BufferData(gl.ARRAY_BUFFER, vertexSize, vertexBuffer, gl.STREAM_DRAW)

		indexBuffer, indexBufSize := list.IndexBuffer()
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.elementsHandle)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, indexBufSize, indexBuffer, gl.STREAM_DRAW)

		r.setVertexAttribs()

		for _, cmd := range list.Commands() {
			if cmd.HasUserCallback() {
				cmd.CallUserCallback(list)
				continue
			}
			gl.BindTexture(gl.TEXTURE_2D, uint32(cmd.TextureID()))
			clip := cmd.ClipRect()
			gl.Scissor(int32(clip.X), fbHeight-int32(clip.W), int32(clip.Z-clip.X), int32(clip.W-clip.Y))
			gl.DrawElementsWithOffset(gl.TRIANGLES, int32(cmd.ElementCount()), drawType, indexOffset)
			indexOffset += uintptr(cmd.ElementCount() * indexSize)
		}
	}

	gl.Disable(gl.SCISSOR_TEST)
}

func (r *guiRenderer) setVertexAttribs() {
	vertexSize, posOffset, uvOffset, colOffset := imgui.VertexBufferLayout()

	gl.EnableVertexAttribArray(r.attribPos)
	gl.EnableVertexAttribArray(r.attribUV)
	gl.EnableVertexAttribArray(r.attribColor)

	gl.VertexAttribPointerWithOffset(r.attribPos, 2, gl.FLOAT, false, int32(vertexSize), uintptr(posOffset))
	gl.VertexAttribPointerWithOffset(r.attribUV, 2, gl.FLOAT, false, int32(vertexSize), uintptr(uvOffset))
	gl.VertexAttribPointerWithOffset(r.attribColor, 4, gl.UNSIGNED_BYTE, true, int32(vertexSize), uintptr(colOffset))
}
