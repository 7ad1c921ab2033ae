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

// Package stitcherr is a helper package for the plain Go error type, used
// uniformly by every stitcher component. We think of these errors as curated
// errors: each carries a Kind drawn from a closed set (see the Kind constants)
// so a caller can test "is this a LostAlignment fault" with Is() regardless of
// how deep in the call chain it originated, while Error() still prints a
// normal wrapped message.
//
// The Error() implementation normalises the chain by removing a duplicated
// leading part: when the first two ": "-separated parts are equal, one of
// them is dropped. Repeats further along the chain are left as they are.
// This alleviates the problem of when and how to wrap errors: a function can
// always wrap with its own context and the message won't start with
// "controller: controller: comparator: ..." when called from a
// similarly-worded caller.
package stitcherr

import (
	"fmt"
	"strings"
)

// Kind identifies which of the error categories from the error-handling
// design an error belongs to. The zero value, Unknown, is never returned by
// this package's own constructors.
type Kind int

// The closed set of error kinds a session can surface.
const (
	Unknown Kind = iota
	InvalidRect
	AlreadyRunning
	NotRunning
	CaptureFailed
	LostAlignment
	OutOfMemory
	InternalError
)

func (k Kind) String() string {
	switch k {
	case InvalidRect:
		return "InvalidRect"
	case AlreadyRunning:
		return "AlreadyRunning"
	case NotRunning:
		return "NotRunning"
	case CaptureFailed:
		return "CaptureFailed"
	case LostAlignment:
		return "LostAlignment"
	case OutOfMemory:
		return "OutOfMemory"
	case InternalError:
		return "InternalError"
	}
	return "Unknown"
}

// curated is the concrete error implementation. It is never exported; callers
// interact with it only through Errorf, Is, Has and the standard error
// interface.
type curated struct {
	kind    Kind
	pattern string
	values  []interface{}
}

// Errorf creates a new curated error of the given kind. Unlike fmt.Errorf the
// message is not formatted eagerly; formatting happens in Error() so that
// Is/Has can inspect the kind without paying for string work on the hot path
// (the comparator returns Unrelated far more often than it returns an error,
// but some callers construct an error value to log it via logger.Log and then
// discard it).
func Errorf(kind Kind, pattern string, values ...interface{}) error {
	return curated{kind: kind, pattern: pattern, values: values}
}

// Error implements the go language error interface.
func (e curated) Error() string {
	s := fmt.Errorf(e.pattern, e.values...).Error()

	p := strings.SplitN(s, ": ", 3)
	if len(p) > 1 && p[0] == p[1] {
		return strings.Join(p[1:], ": ")
	}
	return strings.Join(p, ": ")
}

// Kind returns the error's Kind.
func (e curated) Kind() Kind {
	return e.kind
}

// IsAny reports whether err is a curated error of any kind.
func IsAny(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(curated)
	return ok
}

// Is reports whether err is a curated error of exactly the given kind.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(curated); ok {
		return e.kind == kind
	}
	return false
}

// Has reports whether err, or any curated error wrapped inside its value
// chain, carries the given kind.
func Has(err error, kind Kind) bool {
	if err == nil || !IsAny(err) {
		return false
	}
	if Is(err, kind) {
		return true
	}
	e := err.(curated)
	for _, v := range e.values {
		if inner, ok := v.(curated); ok {
			if Has(inner, kind) {
				return true
			}
		}
	}
	return false
}

// KindOf returns the Kind of err, or Unknown if err is not a curated error.
func KindOf(err error) Kind {
	if e, ok := err.(curated); ok {
		return e.kind
	}
	return Unknown
}
