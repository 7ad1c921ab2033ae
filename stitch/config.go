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
	"time"

	"github.com/jietuba/scrollstitch/stitcherr"
)

// DirectionLock constrains which sign of dy the comparator will consider.
type DirectionLock int

const (
	// DirectionAuto lets the comparator search both directions until three
	// consecutive accepted frames agree on a sign, at which point the sign
	// is latched until an Unrelated verdict resets it.
	DirectionAuto DirectionLock = iota
	DirectionDownOnly
	DirectionUpOnly
)

func (d DirectionLock) String() string {
	switch d {
	case DirectionDownOnly:
		return "down-only"
	case DirectionUpOnly:
		return "up-only"
	default:
		return "auto"
	}
}

// Metric selects the similarity scoring function used by Stage 2 of the
// comparator. Both must be supported and selectable; neither is a default
// that silently shadows the other.
type Metric int

const (
	// MetricNCC is normalized cross-correlation: scale/offset invariant to
	// uniform luminance shifts, so it is authoritative when it and MAD
	// disagree (see SPEC_FULL.md's resolution of the tie-break question).
	MetricNCC Metric = iota
	// MetricMAD is mean absolute difference, converted to a [0,1] score.
	MetricMAD
)

func (m Metric) String() string {
	if m == MetricMAD {
		return "mad"
	}
	return "ncc"
}

// SessionConfig collects every tunable named in the data model. There is no
// persisted preferences file for the core; a SessionConfig is a plain value
// constructed by the caller (optionally starting from Default()) and handed
// to StartSession.
type SessionConfig struct {
	CaptureIntervalMS  int
	IdenticalBackoffMS int
	MaxSearchOffsetPx  int
	MinConfidence      float64
	RescueThreshold    float64
	BlendBandPx        int
	MemoryCapBytes     int64
	DirectionLock      DirectionLock
	IgnoreMargins      Margins

	Metric Metric

	// AutoStopOnIdle, when true, moves the session to Stopping once
	// IdleStopThreshold consecutive Identical verdicts have been observed.
	AutoStopOnIdle    bool
	IdleStopThreshold int

	// AllowJump permits a non-overlapping jump-append after three
	// consecutive Unrelated verdicts. When false, the session faults with
	// LostAlignment instead.
	AllowJump bool

	// FrameWatchdog bounds how long a single Comparator run may take before
	// it is treated as Unrelated.
	FrameWatchdog time.Duration

	// NoProgressTimeout aborts the session if Running produces no
	// FrameAccepted event for this long. Zero disables the watchdog.
	NoProgressTimeout time.Duration
}

// Margins excludes pixels from comparison and from Canvas writes, used to
// ignore floating UI such as sticky headers, scrollbars or cursor sprites.
type Margins struct {
	Top, Bottom, Left, Right int
}

// Default returns a SessionConfig populated with the defaults named in the
// data model, sized against a capture rectangle of height h.
func Default(h int) SessionConfig {
	return SessionConfig{
		CaptureIntervalMS:  150,
		IdenticalBackoffMS: 400,
		MaxSearchOffsetPx:  h / 2,
		MinConfidence:      0.90,
		RescueThreshold:    0.70,
		BlendBandPx:        8,
		MemoryCapBytes:     256 * 1024 * 1024,
		DirectionLock:      DirectionAuto,
		Metric:             MetricNCC,
		AutoStopOnIdle:     true,
		IdleStopThreshold:  20,
		AllowJump:          false,
		FrameWatchdog:      2 * time.Second,
		NoProgressTimeout:  30 * time.Second,
	}
}

// Validate rejects nonsensical configurations synchronously, before a
// capture loop ever starts, per the error-handling design's "misconfiguration
// is rejected at start_session" rule.
func (c SessionConfig) Validate(rectHeight, rectWidth int) error {
	if rectHeight <= 0 || rectWidth <= 0 {
		return stitcherr.Errorf(stitcherr.InvalidRect, "stitch: capture rectangle must have positive dimensions, got %dx%d", rectWidth, rectHeight)
	}
	if c.IgnoreMargins.Top+c.IgnoreMargins.Bottom >= rectHeight {
		return stitcherr.Errorf(stitcherr.InvalidRect, "stitch: ignore_margins top+bottom (%d) cover the entire frame height (%d)", c.IgnoreMargins.Top+c.IgnoreMargins.Bottom, rectHeight)
	}
	if c.IgnoreMargins.Left+c.IgnoreMargins.Right >= rectWidth {
		return stitcherr.Errorf(stitcherr.InvalidRect, "stitch: ignore_margins left+right (%d) cover the entire frame width (%d)", c.IgnoreMargins.Left+c.IgnoreMargins.Right, rectWidth)
	}
	if c.IgnoreMargins.Top < 0 || c.IgnoreMargins.Bottom < 0 || c.IgnoreMargins.Left < 0 || c.IgnoreMargins.Right < 0 {
		return stitcherr.Errorf(stitcherr.InvalidRect, "stitch: ignore_margins must not be negative")
	}
	if c.MaxSearchOffsetPx <= 0 {
		return stitcherr.Errorf(stitcherr.InvalidRect, "stitch: max_search_offset_px must be positive, got %d", c.MaxSearchOffsetPx)
	}
	if c.MinConfidence <= 0 || c.MinConfidence > 1 {
		return stitcherr.Errorf(stitcherr.InvalidRect, "stitch: min_confidence must be in (0,1], got %f", c.MinConfidence)
	}
	if c.RescueThreshold >= c.MinConfidence {
		return stitcherr.Errorf(stitcherr.InvalidRect, "stitch: rescue_threshold (%f) must be strictly lower than min_confidence (%f)", c.RescueThreshold, c.MinConfidence)
	}
	if c.BlendBandPx < 0 {
		return stitcherr.Errorf(stitcherr.InvalidRect, "stitch: blend_band_px must not be negative")
	}
	if c.MemoryCapBytes <= 0 {
		return stitcherr.Errorf(stitcherr.InvalidRect, "stitch: memory_cap_bytes must be positive")
	}
	retention := rectHeight + c.MaxSearchOffsetPx + c.BlendBandPx
	minCap := int64(retention) * int64(rectWidth) * int64(FormatRGBA.BytesPerPixel())
	if c.MemoryCapBytes < minCap {
		return stitcherr.Errorf(stitcherr.InvalidRect, "stitch: memory_cap_bytes (%d) is smaller than the comparator's required retention window (%d)", c.MemoryCapBytes, minCap)
	}
	if c.IdleStopThreshold < 0 {
		return stitcherr.Errorf(stitcherr.InvalidRect, "stitch: idle_stop_threshold must not be negative")
	}
	return nil
}
