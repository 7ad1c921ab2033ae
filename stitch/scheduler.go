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

import "time"

// SchedulerFeedback is the single input the Scheduler consumes after each
// capture-compare cycle.
type SchedulerFeedback int

const (
	// FeedbackIdle reports that the last frame was Identical; the Scheduler
	// may back off.
	FeedbackIdle SchedulerFeedback = iota
	// FeedbackMotion reports that the last frame produced a canvas write;
	// the Scheduler resets to the base cadence.
	FeedbackMotion
	// FeedbackForce requests the next tick immediately, bypassing any
	// pending delay (used for the two-consecutive-Unrelated rescue retry).
	FeedbackForce
)

// scheduler is the single-input, single-output timing policy described in
// §4.5. It is logically single-threaded and deterministic given its feedback
// sequence; the Controller is the only caller.
type scheduler struct {
	base     time.Duration
	maxDelay time.Duration
	current  time.Duration

	forced bool
}

func newScheduler(cfg SessionConfig) *scheduler {
	base := time.Duration(cfg.CaptureIntervalMS) * time.Millisecond
	return &scheduler{
		base:     base,
		maxDelay: time.Duration(cfg.IdenticalBackoffMS) * 4 * time.Millisecond,
		current:  base,
	}
}

// next returns the delay to wait before the next capture, and clears any
// pending force request.
func (s *scheduler) next() time.Duration {
	if s.forced {
		s.forced = false
		return 0
	}
	return s.current
}

// feedback updates the scheduler's internal interval state per §4.5.
func (s *scheduler) feedback(f SchedulerFeedback) {
	switch f {
	case FeedbackIdle:
		next := time.Duration(float64(s.current) * 1.5)
		if next > s.maxDelay {
			next = s.maxDelay
		}
		s.current = next
	case FeedbackMotion:
		s.current = s.base
	case FeedbackForce:
		s.forced = true
	}
}
