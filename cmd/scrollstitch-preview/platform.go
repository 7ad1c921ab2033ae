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
	"runtime"

	"github.com/veandco/go-sdl2/sdl"
)

const windowTitle = "scrollstitch preview"

// platform owns the SDL window and GL context the preview renders into. It
// mirrors the teacher's own sdlwindows platform: a thin SDL/GL bring-up
// layer kept separate from the imgui plumbing.
type platform struct {
	window *sdl.Window
	time   uint64
}

func newPlatform(w, h int) (*platform, error) {
	runtime.LockOSThread()

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("failed to initialise SDL2: %w", err)
	}

	plt := &platform{}

	window, err := sdl.CreateWindow(windowTitle,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(w), int32(h),
		sdl.WINDOW_OPENGL|sdl.WINDOW_RESIZABLE)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	plt.window = window

	_ = sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 3)
	_ = sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 2)
	_ = sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	_ = sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)

	glContext, err := window.GLCreateContext()
	if err != nil {
		plt.destroy()
		return nil, fmt.Errorf("failed to create OpenGL context: %w", err)
	}
	if err := window.GLMakeCurrent(glContext); err != nil {
		plt.destroy()
		return nil, fmt.Errorf("failed to make OpenGL context current: %w", err)
	}
	_ = sdl.GLSetSwapInterval(1)

	return plt, nil
}

func (plt *platform) destroy() {
	if plt.window != nil {
		_ = plt.window.Destroy()
		plt.window = nil
	}
	sdl.Quit()
}

func (plt *platform) displaySize() (int32, int32) {
	return plt.window.GetSize()
}

func (plt *platform) swap() {
	plt.window.GLSwap()
}

// deltaTime reports the time, in seconds, since the previous call.
func (plt *platform) deltaTime() float32 {
	freq := sdl.GetPerformanceFrequency()
	now := sdl.GetPerformanceCounter()
	defer func() { plt.time = now }()
	if plt.time == 0 {
		return 1.0 / 60.0
	}
	return float32(now-plt.time) / float32(freq)
}
