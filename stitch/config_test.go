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
	"testing"

	"github.com/jietuba/scrollstitch/stitcherr"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default(600)
	if err := cfg.Validate(600, 800); err != nil {
		t.Fatalf("Default() config failed Validate: %v", err)
	}
}

func TestValidateRejectsMarginsCoveringFrame(t *testing.T) {
	cfg := Default(100)
	cfg.IgnoreMargins = Margins{Top: 60, Bottom: 40}
	err := cfg.Validate(100, 200)
	if err == nil {
		t.Fatalf("expected error for margins covering entire height")
	}
	if !stitcherr.Is(err, stitcherr.InvalidRect) {
		t.Fatalf("expected InvalidRect, got %v", err)
	}
}

func TestValidateRejectsNonPositiveRect(t *testing.T) {
	cfg := Default(100)
	if err := cfg.Validate(0, 200); !stitcherr.Is(err, stitcherr.InvalidRect) {
		t.Fatalf("expected InvalidRect for zero height, got %v", err)
	}
	if err := cfg.Validate(100, -1); !stitcherr.Is(err, stitcherr.InvalidRect) {
		t.Fatalf("expected InvalidRect for negative width, got %v", err)
	}
}

func TestValidateRejectsRescueThresholdAboveMinConfidence(t *testing.T) {
	cfg := Default(100)
	cfg.RescueThreshold = cfg.MinConfidence
	if err := cfg.Validate(100, 200); !stitcherr.Is(err, stitcherr.InvalidRect) {
		t.Fatalf("expected InvalidRect, got %v", err)
	}
}

func TestValidateRejectsUndersizedMemoryCap(t *testing.T) {
	cfg := Default(100)
	cfg.MemoryCapBytes = 10
	if err := cfg.Validate(100, 200); !stitcherr.Is(err, stitcherr.InvalidRect) {
		t.Fatalf("expected InvalidRect for undersized memory cap, got %v", err)
	}
}

func TestValidateRejectsNegativeIdleStopThreshold(t *testing.T) {
	cfg := Default(100)
	cfg.IdleStopThreshold = -1
	if err := cfg.Validate(100, 200); !stitcherr.Is(err, stitcherr.InvalidRect) {
		t.Fatalf("expected InvalidRect, got %v", err)
	}
}
