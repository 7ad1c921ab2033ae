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

// Command scrollstitch-preview opens a live SDL/GL/imgui window showing a
// scrollstitch session running against a synthetic frame source (a tall
// still image, walked top to bottom), with a small stats overlay refreshed
// on every accepted or skipped frame.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/inkyblackness/imgui-go/v4"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/jietuba/scrollstitch/demosource"
	"github.com/jietuba/scrollstitch/logger"
	"github.com/jietuba/scrollstitch/stitch"
)

func main() {
	imagePath := flag.String("image", "", "path to a tall PNG/JPEG image to simulate scrolling through")
	rectWidth := flag.Int("width", 640, "capture rectangle width")
	rectHeight := flag.Int("height", 480, "capture rectangle height")
	step := flag.Int("step", 6, "pixels the simulated scroll advances per capture")
	flag.Parse()

	if *imagePath == "" {
		fmt.Fprintln(os.Stderr, "scrollstitch-preview: -image is required")
		os.Exit(2)
	}

	if err := run(*imagePath, *rectWidth, *rectHeight, *step); err != nil {
		fmt.Fprintf(os.Stderr, "scrollstitch-preview: %v\n", err)
		os.Exit(1)
	}
}

func run(imagePath string, width, height, step int) error {
	source, err := demosource.Load(imagePath, step)
	if err != nil {
		return err
	}

	plt, err := newPlatform(width, height)
	if err != nil {
		return err
	}
	defer plt.destroy()

	imguiCtx := imgui.CreateContext(nil)
	defer imguiCtx.Destroy()
	io := imgui.CurrentIO()

	renderer, err := newGUIRenderer()
	if err != nil {
		return err
	}
	defer renderer.destroy()
	renderer.uploadFonts(io.Fonts())

	tex := newCanvasTexture()
	defer tex.destroy()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg := stitch.Default(height)
	handle, err := stitch.StartSession(ctx, stitch.Rect{Width: width, Height: height}, cfg, source)
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	sub := handle.Subscribe()
	defer sub.Unsubscribe()

	var lastWarning string
	var accepted, skipped int

running:
	for {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			if _, ok := event.(*sdl.QuitEvent); ok {
				handle.Cancel()
				break running
			}
		}

		select {
		case ev := <-sub.Events():
			switch e := ev.(type) {
			case stitch.FrameAccepted:
				accepted++
			case stitch.FrameSkipped:
				skipped++
			case stitch.Warning:
				lastWarning = e.Detail
			}
		default:
		}

		if handle.State().Terminal() {
			break running
		}

		io.SetDeltaTime(plt.deltaTime())
		w, h := plt.displaySize()
		io.SetDisplaySize(imgui.Vec2{X: float32(w), Y: float32(h)})

		imgui.NewFrame()
		drawOverlay(handle, accepted, skipped, lastWarning)
		imgui.Render()

		tex.upload(handle.Snapshot())

		renderer.render(w, h)
		plt.swap()
	}

	frame, _, err := handle.Finalize()
	if err != nil {
		return fmt.Errorf("finalizing session: %w", err)
	}
	logger.Logf("scrollstitch-preview", "session finished: final canvas height %d", frame.Height)
	return nil
}

func drawOverlay(handle *stitch.SessionHandle, accepted, skipped int, warning string) {
	imgui.SetNextWindowPos(imgui.Vec2{X: 8, Y: 8})
	imgui.BeginV("stats", nil, imgui.WindowFlagsNoResize|imgui.WindowFlagsAlwaysAutoResize)
	imgui.Text(fmt.Sprintf("state: %s", handle.State()))
	imgui.Text(fmt.Sprintf("accepted frames: %d", accepted))
	imgui.Text(fmt.Sprintf("skipped frames: %d", skipped))
	if snap := handle.Snapshot(); snap != nil {
		imgui.Text(fmt.Sprintf("canvas height: %d", snap.Height))
	}
	if warning != "" {
		imgui.Text(fmt.Sprintf("last warning: %s", warning))
	}
	imgui.End()
}
