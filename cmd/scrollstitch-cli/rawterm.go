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

package main

import (
	"os"
	"syscall"

	"github.com/pkg/term/termios"
)

// rawTerm puts stdin into cbreak mode so a single keypress is readable
// without waiting for Enter, and restores the caller's original settings on
// Restore. It only tracks what it needs for this one binary: no geometry
// tracking, no SIGWINCH handling.
type rawTerm struct {
	fd       uintptr
	original syscall.Termios
}

func newRawTerm() (*rawTerm, error) {
	rt := &rawTerm{fd: os.Stdin.Fd()}

	if err := termios.Tcgetattr(rt.fd, &rt.original); err != nil {
		return nil, err
	}

	var cbreak syscall.Termios
	termios.Tcgetattr(rt.fd, &cbreak)
	termios.Cfmakecbreak(&cbreak)
	if err := termios.Tcsetattr(rt.fd, termios.TCIFLUSH, &cbreak); err != nil {
		return nil, err
	}
	return rt, nil
}

// Restore puts the terminal back into its original (canonical) mode.
func (rt *rawTerm) Restore() {
	_ = termios.Tcsetattr(rt.fd, termios.TCIFLUSH, &rt.original)
}

// readKey blocks for a single byte from stdin.
func readKey() (byte, error) {
	var b [1]byte
	_, err := os.Stdin.Read(b[:])
	return b[0], err
}
