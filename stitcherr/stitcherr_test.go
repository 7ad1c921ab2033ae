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

package stitcherr_test

import (
	"testing"

	"github.com/jietuba/scrollstitch/stitcherr"
)

func TestIsAndHas(t *testing.T) {
	inner := stitcherr.Errorf(stitcherr.LostAlignment, "comparator: %s", "three consecutive unrelated frames")
	outer := stitcherr.Errorf(stitcherr.InternalError, "controller: %v", inner)

	if !stitcherr.Is(inner, stitcherr.LostAlignment) {
		t.Fatalf("expected inner error to be LostAlignment")
	}
	if stitcherr.Is(outer, stitcherr.LostAlignment) {
		t.Fatalf("outer error's direct kind should be InternalError, not LostAlignment")
	}
	if !stitcherr.Has(outer, stitcherr.LostAlignment) {
		t.Fatalf("expected Has to find LostAlignment in the wrapped chain")
	}
	if !stitcherr.Has(outer, stitcherr.InternalError) {
		t.Fatalf("expected Has to find the outer kind too")
	}
}

func TestDeduplicatesAdjacentMessageParts(t *testing.T) {
	err := stitcherr.Errorf(stitcherr.CaptureFailed, "capture failed: %s", "capture failed: offscreen rect")
	got := err.Error()
	want := "capture failed: offscreen rect"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestKindOf(t *testing.T) {
	err := stitcherr.Errorf(stitcherr.OutOfMemory, "spill failed")
	if stitcherr.KindOf(err) != stitcherr.OutOfMemory {
		t.Fatalf("expected OutOfMemory kind")
	}
	if stitcherr.KindOf(nil) != stitcherr.Unknown {
		t.Fatalf("expected Unknown kind for nil error")
	}
}

func TestNotCuratedError(t *testing.T) {
	if stitcherr.IsAny(nil) {
		t.Fatalf("nil should not be a curated error")
	}
}
