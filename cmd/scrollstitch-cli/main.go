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

// Command scrollstitch-cli drives a scrollstitch session headlessly against
// a synthetic frame source, controlled by single raw keypresses (space to
// pause/resume, s to stop), with a statsview dashboard of canvas memory
// residency reachable over HTTP while it runs.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/jietuba/scrollstitch/demosource"
	"github.com/jietuba/scrollstitch/devgraph"
	"github.com/jietuba/scrollstitch/logger"
	"github.com/jietuba/scrollstitch/monitor"
	"github.com/jietuba/scrollstitch/stitch"
	"github.com/jietuba/scrollstitch/stitcherr"
)

func main() {
	imagePath := flag.String("image", "", "path to a tall PNG/JPEG image to simulate scrolling through")
	rectWidth := flag.Int("width", 640, "capture rectangle width")
	rectHeight := flag.Int("height", 480, "capture rectangle height")
	step := flag.Int("step", 6, "pixels the simulated scroll advances per capture")
	statsAddr := flag.String("stats-addr", "127.0.0.1:18066", "address the statsview dashboard listens on")
	dotPath := flag.String("dot-out", "", "if set, writes an alignment-chain dot graph here when the session ends")
	flag.Parse()

	if *imagePath == "" {
		fmt.Fprintln(os.Stderr, "scrollstitch-cli: -image is required")
		os.Exit(2)
	}

	if err := run(*imagePath, *rectWidth, *rectHeight, *step, *statsAddr, *dotPath); err != nil {
		fmt.Fprintf(os.Stderr, "scrollstitch-cli: %v\n", err)
		os.Exit(1)
	}
}

func run(imagePath string, width, height, step int, statsAddr, dotPath string) error {
	source, err := demosource.Load(imagePath, step)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	mon := monitor.New(statsAddr)
	mon.Start(ctx)

	cfg := stitch.Default(height)
	handle, err := stitch.StartSession(ctx, stitch.Rect{Width: width, Height: height}, cfg, source)
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}

	term, err := newRawTerm()
	if err != nil {
		return fmt.Errorf("putting terminal into raw mode: %w", err)
	}
	defer term.Restore()

	sub := handle.Subscribe()
	defer sub.Unsubscribe()

	fmt.Println("scrollstitch-cli: space=pause/resume  s=stop  ctrl-c=cancel")

	keys := make(chan byte, 1)
	go func() {
		for {
			b, err := readKey()
			if err != nil {
				return
			}
			keys <- b
		}
	}()

	paused := false

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case ev := <-sub.Events():
			reportEvent(mon, handle, ev)
		case k := <-keys:
			switch k {
			case ' ':
				if paused {
					_ = handle.Resume()
					paused = false
					fmt.Println("resumed")
				} else {
					_ = handle.Pause()
					paused = true
					fmt.Println("paused")
				}
			case 's':
				break loop
			}
		}

		if handle.State().Terminal() {
			break loop
		}
	}

	frame, records, fault := handle.Finalize()
	if fault != nil && !stitcherr.Is(fault, stitcherr.NotRunning) {
		logger.Logf("scrollstitch-cli", "session ended with error: %v", fault)
	}

	if dotPath != "" {
		chain := devgraph.Capture(handle.Rect(), handle.State(), finalHeight(frame), records, fault)
		var buf bytes.Buffer
		if err := devgraph.WriteDot(&buf, chain); err != nil {
			return fmt.Errorf("rendering alignment-chain dot graph: %w", err)
		}
		if err := os.WriteFile(dotPath, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing dot graph: %w", err)
		}
	}

	if frame != nil {
		fmt.Printf("final canvas: %dx%d, %d accepted frames\n", frame.Width, frame.Height, len(records))
	}
	return nil
}

func finalHeight(frame *stitch.Frame) int {
	if frame == nil {
		return 0
	}
	return frame.Height
}

func reportEvent(mon *monitor.Monitor, handle *stitch.SessionHandle, ev stitch.Event) {
	snap := handle.Snapshot()
	stats := monitor.CanvasStats{}
	if snap != nil {
		stats.HeightRows = snap.Height
		stats.MemoryBytes = int64(len(snap.Pix))
	}
	mon.Report(stats)

	switch e := ev.(type) {
	case stitch.FrameSkipped:
		logger.Logf("scrollstitch-cli", "frame %d skipped: %s", e.Seq, e.Reason)
	case stitch.Warning:
		logger.Logf("scrollstitch-cli", "warning: %s: %s", e.Code, e.Detail)
	}
}
