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
	"context"
	"sync"
	"time"

	"github.com/jietuba/scrollstitch/logger"
	"github.com/jietuba/scrollstitch/stitcherr"
)

// consecutiveUnrelatedForceRetry is how many consecutive Unrelated verdicts
// trigger an immediate, unscheduled re-capture (the Scheduler's
// FeedbackForce) before giving the rescue policy a chance to recover from a
// single bad capture (a transient OS compositing glitch, a momentary
// overlay) without losing the scheduler's learned cadence.
const consecutiveUnrelatedForceRetry = 2

// consecutiveUnrelatedJumpThreshold is how many consecutive Unrelated
// verdicts are tolerated before the controller gives up on finding an
// overlap and either jump-appends (if configured to) or faults with
// LostAlignment.
const consecutiveUnrelatedJumpThreshold = 3

// consecutiveCaptureFailureThreshold is how many consecutive capture errors
// are retried before the controller gives up and faults with CaptureFailed.
const consecutiveCaptureFailureThreshold = 3

// Controller owns one session's capture-compare loop: it drives the
// Scheduler, Comparator and Canvas, maintains the state machine, and
// publishes every Event on the session's bus. There is exactly one
// goroutine running Controller.run per session; every other method is safe
// to call from any goroutine and communicates with that loop either through
// a small mutex-protected state snapshot or through request channels.
type Controller struct {
	rect   Rect
	cfg    SessionConfig
	source FrameSource

	comparator *Comparator
	canvas     *Canvas
	scheduler  *scheduler
	records    *RecordLog
	bus        *eventBus

	pauseRequested  chan struct{}
	resumeRequested chan struct{}
	stopRequested   chan struct{}
	doneCh          chan struct{}

	mu                        sync.Mutex
	state                     State
	seq                       uint64
	idleCount                 int
	consecutiveUnrelated      int
	consecutiveCaptureFailure int
	lastProgress              time.Time
	fault                     error
	finalFrame                *Frame
}

// NewController validates cfg against rect and builds a Controller ready for
// Start. The Comparator, Canvas, Scheduler and RecordLog are all fresh and
// private to this Controller; none of them may be shared across sessions.
func NewController(rect Rect, cfg SessionConfig, source FrameSource) (*Controller, error) {
	if err := cfg.Validate(rect.Height, rect.Width); err != nil {
		return nil, err
	}
	retention := rect.Height + cfg.MaxSearchOffsetPx + cfg.BlendBandPx
	return &Controller{
		rect:            rect,
		cfg:             cfg,
		source:          source,
		comparator:      NewComparator(cfg),
		canvas:          NewCanvas(cfg.MemoryCapBytes, retention),
		scheduler:       newScheduler(cfg),
		records:         NewRecordLog(0),
		bus:             newEventBus(),
		pauseRequested:  make(chan struct{}, 1),
		resumeRequested: make(chan struct{}, 1),
		stopRequested:   make(chan struct{}, 1),
		doneCh:          make(chan struct{}),
		state:           Idle,
	}, nil
}

// State returns the controller's current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Rect returns the capture rectangle this session was started with.
func (c *Controller) Rect() Rect {
	return c.rect
}

// Subscribe registers a new event observer.
func (c *Controller) Subscribe() *Subscription {
	return c.bus.subscribe()
}

// Wait blocks until the controller's loop has exited, whether by reaching
// Finished or Faulted.
func (c *Controller) Wait() {
	<-c.doneCh
}

// Start transitions Idle to Running and launches the capture-compare loop.
// ctx bounds the whole session: cancelling it faults the session.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != Idle {
		st := c.state
		c.mu.Unlock()
		return stitcherr.Errorf(stitcherr.AlreadyRunning, "stitch: Start requires Idle, got %s", st)
	}
	c.state = Running
	c.lastProgress = time.Now()
	c.mu.Unlock()

	c.bus.publish(StateChanged{From: Idle, To: Running})
	logger.Logf("stitch", "session starting, rect=%+v", c.rect)

	go c.run(ctx)
	return nil
}

// Pause requests a transition from Running to Paused. It is a no-op request
// if the loop has already left Running by the time it's processed.
func (c *Controller) Pause() error {
	if st := c.State(); st != Running {
		return stitcherr.Errorf(stitcherr.NotRunning, "stitch: Pause requires Running, got %s", st)
	}
	select {
	case c.pauseRequested <- struct{}{}:
	default:
	}
	return nil
}

// Resume requests a transition from Paused back to Running.
func (c *Controller) Resume() error {
	if st := c.State(); st != Paused {
		return stitcherr.Errorf(stitcherr.NotRunning, "stitch: Resume requires Paused, got %s", st)
	}
	select {
	case c.resumeRequested <- struct{}{}:
	default:
	}
	return nil
}

// Stop requests the session wind down: the canvas is frozen and the
// controller moves to Finished (or Faulted, if freezing fails).
func (c *Controller) Stop() error {
	st := c.State()
	if st != Running && st != Paused {
		return stitcherr.Errorf(stitcherr.NotRunning, "stitch: Stop requires Running or Paused, got %s", st)
	}
	select {
	case c.stopRequested <- struct{}{}:
	default:
	}
	return nil
}

// Snapshot returns a copy of the canvas rows currently held in memory, for a
// live preview; rows already spilled to disk are not included. Unlike
// Result, it is available in any non-Idle state and does not require the
// session to have finished.
func (c *Controller) Snapshot() *Frame {
	h := c.canvas.Height()
	if h == 0 {
		return nil
	}
	return c.canvas.ReadTail(h)
}

// Result returns the final stitched image and the full accepted-frame
// record log. It is only available once the session has reached Finished;
// if the session Faulted, the fault is returned instead.
func (c *Controller) Result() (*Frame, []AcceptedFrameRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Faulted {
		return nil, nil, c.fault
	}
	if c.state != Finished {
		return nil, nil, stitcherr.Errorf(stitcherr.NotRunning, "stitch: Result requires Finished, current state %s", c.state)
	}
	return c.finalFrame, c.records.All(), nil
}

func (c *Controller) transition(to State) {
	c.mu.Lock()
	from := c.state
	if !validTransition(from, to) {
		c.mu.Unlock()
		return
	}
	c.state = to
	c.mu.Unlock()
	logger.Logf("stitch", "%s -> %s", from, to)
	c.bus.publish(StateChanged{From: from, To: to})
}

func (c *Controller) setFault(err error) {
	c.mu.Lock()
	c.fault = err
	c.mu.Unlock()
}

// run is the single capture-compare loop goroutine for this session.
func (c *Controller) run(ctx context.Context) {
	defer close(c.doneCh)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			c.setFault(stitcherr.Errorf(stitcherr.InternalError, "stitch: session context cancelled: %w", ctx.Err()))
			c.transition(Faulted)
			return

		case <-c.stopRequested:
			c.stopAndFinalize()
			return

		case <-c.pauseRequested:
			c.transition(Paused)
			if !c.waitWhilePaused(ctx) {
				return
			}

		case <-timer.C:
			c.tick(ctx)
			if c.State().Terminal() {
				return
			}
			timer.Reset(c.scheduler.next())
		}
	}
}

// waitWhilePaused blocks until Resume, Stop or context cancellation.
// Returns false if the loop should exit.
func (c *Controller) waitWhilePaused(ctx context.Context) bool {
	pausedAt := time.Now()
	select {
	case <-ctx.Done():
		c.setFault(stitcherr.Errorf(stitcherr.InternalError, "stitch: session context cancelled: %w", ctx.Err()))
		c.transition(Faulted)
		return false
	case <-c.stopRequested:
		c.stopAndFinalize()
		return false
	case <-c.resumeRequested:
		// time spent Paused does not count toward NoProgressTimeout
		c.mu.Lock()
		c.lastProgress = c.lastProgress.Add(time.Since(pausedAt))
		c.mu.Unlock()
		c.transition(Running)
		return true
	}
}

func (c *Controller) stopAndFinalize() {
	c.transition(Stopping)
	frame, err := c.canvas.Freeze()
	if err != nil {
		c.setFault(err)
		c.transition(Faulted)
		return
	}
	c.records.renumber(c.canvas.OriginOffset())
	c.mu.Lock()
	c.finalFrame = frame
	c.mu.Unlock()
	c.transition(Finished)
}

func (c *Controller) tick(ctx context.Context) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	captureCtx, cancel := context.WithTimeout(ctx, c.cfg.FrameWatchdog)
	defer cancel()

	frame, err := c.source.Capture(captureCtx, c.rect)
	if err != nil {
		c.mu.Lock()
		c.consecutiveCaptureFailure++
		n := c.consecutiveCaptureFailure
		c.mu.Unlock()

		c.bus.publish(Warning{Code: WarnCaptureFailed, Detail: err.Error()})
		c.bus.publish(FrameSkipped{Seq: seq, Reason: SkipCaptureFailed})

		if n >= consecutiveCaptureFailureThreshold {
			c.setFault(stitcherr.Errorf(stitcherr.CaptureFailed,
				"stitch: %d consecutive capture failures: %w", n, err))
			c.transition(Faulted)
			return
		}

		c.checkNoProgress()
		return
	}

	c.mu.Lock()
	c.consecutiveCaptureFailure = 0
	c.mu.Unlock()

	if !c.canvas.Initialized() {
		if err := c.canvas.Initialize(&frame); err != nil {
			c.setFault(err)
			c.transition(Faulted)
			return
		}
		c.records.Append(AcceptedFrameRecord{Seq: seq, Captured: frame.Captured, YStart: 0, YEnd: frame.Height})
		c.mu.Lock()
		c.lastProgress = time.Now()
		c.mu.Unlock()
		c.scheduler.feedback(FeedbackMotion)
		c.bus.publish(FrameAccepted{Seq: seq, CanvasHeight: c.canvas.Height()})
		return
	}

	tail := c.canvas.ReadTail(c.rect.Height)
	verdict := c.comparator.Compare(captureCtx, tail, &frame)

	switch verdict.Kind {
	case VerdictTimeout:
		c.bus.publish(Warning{Code: WarnComparatorTimeout, Detail: "comparator search abandoned: frame watchdog expired"})
		c.bus.publish(FrameSkipped{Seq: seq, Reason: SkipComparatorTimeout})

	case VerdictIdentical:
		c.mu.Lock()
		c.idleCount++
		c.consecutiveUnrelated = 0
		idle := c.idleCount
		c.mu.Unlock()
		c.scheduler.feedback(FeedbackIdle)
		c.bus.publish(FrameSkipped{Seq: seq, Reason: SkipIdentical})
		if c.cfg.AutoStopOnIdle && idle >= c.cfg.IdleStopThreshold {
			select {
			case c.stopRequested <- struct{}{}:
			default:
			}
		}

	case VerdictScrolled:
		yStart, yEnd, err := c.canvas.AppendStrip(&frame, verdict.Dy, verdict.Dx, c.cfg.BlendBandPx, c.cfg.IgnoreMargins)
		if err != nil {
			c.setFault(err)
			c.transition(Faulted)
			return
		}
		c.comparator.RecordAccepted(verdict.Dy)
		c.records.Append(AcceptedFrameRecord{
			Seq: seq, Captured: frame.Captured,
			Dy: verdict.Dy, Dx: verdict.Dx, Confidence: verdict.Confidence,
			YStart: yStart, YEnd: yEnd,
		})
		c.mu.Lock()
		c.idleCount = 0
		c.consecutiveUnrelated = 0
		c.lastProgress = time.Now()
		c.mu.Unlock()
		c.scheduler.feedback(FeedbackMotion)
		c.bus.publish(FrameAccepted{Seq: seq, Dy: verdict.Dy, Dx: verdict.Dx, Confidence: verdict.Confidence, CanvasHeight: c.canvas.Height()})

	case VerdictUnrelated:
		c.mu.Lock()
		c.consecutiveUnrelated++
		n := c.consecutiveUnrelated
		c.mu.Unlock()
		c.comparator.ResetDirectionLock()
		c.bus.publish(Warning{Code: WarnUnrelated, Detail: "frame did not align with canvas tail"})
		c.bus.publish(FrameSkipped{Seq: seq, Reason: SkipUnrelated})

		switch {
		case n >= consecutiveUnrelatedJumpThreshold:
			if !c.cfg.AllowJump {
				c.setFault(stitcherr.Errorf(stitcherr.LostAlignment,
					"stitch: %d consecutive unrelated frames and jump-append is disabled", n))
				c.transition(Faulted)
				return
			}
			yStart, yEnd, err := c.canvas.AppendStrip(&frame, 0, 0, c.cfg.BlendBandPx, c.cfg.IgnoreMargins)
			if err != nil {
				c.setFault(err)
				c.transition(Faulted)
				return
			}
			c.records.Append(AcceptedFrameRecord{Seq: seq, Captured: frame.Captured, Dy: frame.Height, YStart: yStart, YEnd: yEnd, Jump: true})
			c.mu.Lock()
			c.consecutiveUnrelated = 0
			c.lastProgress = time.Now()
			c.mu.Unlock()
			c.scheduler.feedback(FeedbackMotion)
			c.bus.publish(FrameAccepted{Seq: seq, Dy: frame.Height, CanvasHeight: c.canvas.Height(), Jump: true})
		case n >= consecutiveUnrelatedForceRetry:
			c.scheduler.feedback(FeedbackForce)
		}
	}

	c.checkNoProgress()
}

func (c *Controller) checkNoProgress() {
	if c.cfg.NoProgressTimeout <= 0 {
		return
	}
	c.mu.Lock()
	elapsed := time.Since(c.lastProgress)
	c.mu.Unlock()
	if elapsed > c.cfg.NoProgressTimeout {
		c.setFault(stitcherr.Errorf(stitcherr.LostAlignment, "stitch: no accepted frame in %s", c.cfg.NoProgressTimeout))
		c.transition(Faulted)
	}
}
