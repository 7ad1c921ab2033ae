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

// State is a session's position in the stitcher's state machine. Transitions
// are driven only by the Controller.
type State int

// The full set of session states.
const (
	Idle State = iota
	Running
	Paused
	Stopping
	Finished
	Faulted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Running:
		return "Running"
	case Paused:
		return "Paused"
	case Stopping:
		return "Stopping"
	case Finished:
		return "Finished"
	case Faulted:
		return "Faulted"
	}
	return ""
}

// Terminal reports whether the state is one a session can never leave.
func (s State) Terminal() bool {
	return s == Finished || s == Faulted
}

// validTransition reports whether moving from `from` to `to` is allowed by
// the state machine in §4.4. It is deliberately permissive about entering
// Faulted: any non-terminal state may fault.
func validTransition(from, to State) bool {
	if from == to {
		return false
	}
	if to == Faulted {
		return !from.Terminal()
	}
	switch from {
	case Idle:
		return to == Running
	case Running:
		return to == Paused || to == Stopping
	case Paused:
		return to == Running || to == Stopping
	case Stopping:
		return to == Finished
	default:
		return false
	}
}
