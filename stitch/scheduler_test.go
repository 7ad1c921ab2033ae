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
	"time"
)

func TestSchedulerIdleBacksOffAndCaps(t *testing.T) {
	cfg := Default(100)
	cfg.CaptureIntervalMS = 100
	cfg.IdenticalBackoffMS = 100
	s := newScheduler(cfg)

	if got := s.next(); got != 100*time.Millisecond {
		t.Fatalf("initial next() = %v, want 100ms", got)
	}

	s.feedback(FeedbackIdle)
	if got := s.next(); got != 150*time.Millisecond {
		t.Fatalf("after one idle, next() = %v, want 150ms", got)
	}

	for i := 0; i < 20; i++ {
		s.feedback(FeedbackIdle)
	}
	max := 400 * time.Millisecond
	if got := s.next(); got != max {
		t.Fatalf("after many idles, next() = %v, want capped at %v", got, max)
	}
}

func TestSchedulerMotionResetsInterval(t *testing.T) {
	cfg := Default(100)
	s := newScheduler(cfg)
	s.feedback(FeedbackIdle)
	s.feedback(FeedbackIdle)
	s.feedback(FeedbackMotion)
	if got := s.next(); got != s.base {
		t.Fatalf("after motion, next() = %v, want base %v", got, s.base)
	}
}

func TestSchedulerForceBypassesDelay(t *testing.T) {
	cfg := Default(100)
	s := newScheduler(cfg)
	s.feedback(FeedbackIdle)
	s.feedback(FeedbackForce)
	if got := s.next(); got != 0 {
		t.Fatalf("forced next() = %v, want 0", got)
	}
	// force is consumed; the following call reverts to the current interval.
	if got := s.next(); got == 0 {
		t.Fatalf("force should not persist across calls")
	}
}
