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

// Package monitor exposes a live statsview dashboard of a running session's
// canvas memory residency, alongside the standard Go runtime counters
// statsview already knows how to chart. It exists so the memory-cap
// invariant the Canvas Store is supposed to hold can actually be watched
// while a session runs, rather than taken on faith.
package monitor

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"

	"github.com/jietuba/scrollstitch/logger"
)

const richDataCategory = "scrollstitch"

// CanvasStats is the subset of a running session's Canvas bookkeeping worth
// charting. Callers sample this on every FrameAccepted/FrameSkipped event (or
// on a timer) and feed it to a Monitor via Report.
type CanvasStats struct {
	HeightRows     int
	MemoryBytes    int64
	SpilledRows    int
	AcceptedFrames uint64
}

// Monitor runs a statsview HTTP server in the background, reporting the most
// recently observed CanvasStats as a custom statsview series alongside the
// library's built-in runtime charts (goroutine count, heap size, GC pause).
type Monitor struct {
	addr string

	heightRows     int64
	memoryBytes    int64
	spilledRows    int64
	acceptedFrames uint64

	mgr *statsview.Viewer
}

// New constructs a Monitor that will serve its dashboard at addr (e.g.
// "127.0.0.1:18066") once Start is called.
func New(addr string) *Monitor {
	return &Monitor{addr: addr}
}

// Report records the latest canvas snapshot. Safe to call from the capture
// loop goroutine concurrently with the HTTP server's own goroutines.
func (m *Monitor) Report(s CanvasStats) {
	atomic.StoreInt64(&m.heightRows, int64(s.HeightRows))
	atomic.StoreInt64(&m.memoryBytes, s.MemoryBytes)
	atomic.StoreInt64(&m.spilledRows, int64(s.SpilledRows))
	atomic.StoreUint64(&m.acceptedFrames, s.AcceptedFrames)
}

// Snapshot returns the most recently reported stats.
func (m *Monitor) Snapshot() CanvasStats {
	return CanvasStats{
		HeightRows:     int(atomic.LoadInt64(&m.heightRows)),
		MemoryBytes:    atomic.LoadInt64(&m.memoryBytes),
		SpilledRows:    int(atomic.LoadInt64(&m.spilledRows)),
		AcceptedFrames: atomic.LoadUint64(&m.acceptedFrames),
	}
}

// Start begins serving the statsview dashboard and launches a ticker that
// feeds the last-reported CanvasStats into it as a custom rich-data series.
// It does not block; cancelling ctx stops both the ticker and the server.
func (m *Monitor) Start(ctx context.Context) {
	viewer.SetConfiguration(viewer.WithAddr(m.addr), viewer.WithTheme(viewer.ThemeWesteros))
	m.mgr = statsview.New()

	go func() {
		if err := m.mgr.Start(); err != nil {
			logger.Logf("monitor", "statsview server stopped: %v", err)
		}
	}()
	logger.Logf("monitor", "statsview dashboard listening on %s", m.addr)

	go m.pump(ctx)
}

// pump feeds canvas counters into statsview's custom-chart rich-data stream
// once per tick, until ctx is cancelled.
func (m *Monitor) pump(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Stop()
			return
		case <-ticker.C:
			s := m.Snapshot()
			viewer.AddRichData(richDataCategory, "memory_bytes", float64(s.MemoryBytes))
			viewer.AddRichData(richDataCategory, "rows_resident", float64(s.HeightRows-s.SpilledRows))
			viewer.AddRichData(richDataCategory, "rows_spilled", float64(s.SpilledRows))
		}
	}
}

// Stop tears down the statsview HTTP server, if running.
func (m *Monitor) Stop() {
	if m.mgr != nil {
		m.mgr.Stop()
	}
}
