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

	"github.com/jietuba/scrollstitch/stitcherr"
)

// SessionHandle is the facade callers use to drive one stitching session. It
// owns the session's context; cancelling that context (via Cancel, or by
// cancelling the parent context passed to StartSession) is the only way the underlying goroutine is ever torn
// down forcibly.
type SessionHandle struct {
	controller *Controller
	cancel     context.CancelFunc
}

// StartSession validates cfg, constructs a fresh Controller bound to rect and
// source, and starts its capture-compare loop. The returned handle is in
// state Running.
func StartSession(ctx context.Context, rect Rect, cfg SessionConfig, source FrameSource) (*SessionHandle, error) {
	controller, err := NewController(rect, cfg, source)
	if err != nil {
		return nil, err
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	if err := controller.Start(sessionCtx); err != nil {
		cancel()
		return nil, err
	}

	return &SessionHandle{controller: controller, cancel: cancel}, nil
}

// State returns the session's current state.
func (h *SessionHandle) State() State {
	return h.controller.State()
}

// Rect returns the capture rectangle this session was started with.
func (h *SessionHandle) Rect() Rect {
	return h.controller.Rect()
}

// Pause requests a transition to Paused.
func (h *SessionHandle) Pause() error {
	return h.controller.Pause()
}

// Resume requests a transition back to Running from Paused.
func (h *SessionHandle) Resume() error {
	return h.controller.Resume()
}

// Stop requests the session wind down, freezing the canvas and moving to
// Finished (or Faulted if freezing fails). It does not block; call Wait or
// Finalize to block until the session has actually stopped.
func (h *SessionHandle) Stop() error {
	return h.controller.Stop()
}

// Subscribe registers a new event observer for this session.
func (h *SessionHandle) Subscribe() *Subscription {
	return h.controller.Subscribe()
}

// Snapshot returns a copy of the canvas rows currently held in memory,
// suitable for a live preview. Rows already spilled to disk are not
// included. It returns nil if the first frame hasn't landed yet.
func (h *SessionHandle) Snapshot() *Frame {
	return h.controller.Snapshot()
}

// Finalize requests Stop (if the session hasn't already finished or
// faulted), blocks until the loop exits, and returns the final stitched
// image together with the full accepted-frame record log.
func (h *SessionHandle) Finalize() (*Frame, []AcceptedFrameRecord, error) {
	st := h.controller.State()
	if st == Running || st == Paused {
		if err := h.controller.Stop(); err != nil && !stitcherr.Is(err, stitcherr.NotRunning) {
			return nil, nil, err
		}
	}
	h.controller.Wait()
	return h.controller.Result()
}

// Wait blocks until the session's loop has exited, whether by reaching
// Finished or Faulted.
func (h *SessionHandle) Wait() {
	h.controller.Wait()
}

// Cancel forcibly tears down the session's context, which faults the
// controller on its next loop iteration. Prefer Stop/Finalize for an
// orderly shutdown; Cancel is for when the caller is giving up on the
// session entirely (e.g. the window it was capturing closed).
func (h *SessionHandle) Cancel() {
	h.cancel()
}
