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

// Package devgraph renders the bookkeeping behind a finished or faulted
// session as a Graphviz dot graph, for diagnosing lost-alignment incidents
// after the fact. It is a debugging aid, never imported by the core.
package devgraph

import (
	"fmt"
	"io"
	"time"

	"github.com/bradleyjkemp/memviz"

	"github.com/jietuba/scrollstitch/stitch"
)

// AlignmentChain is the reflection root handed to memviz: the full accepted
// frame history plus the canvas dimensions it produced, so the two can be
// cross-referenced visually (a gap in YStart/YEnd between two consecutive
// records is exactly the kind of thing that precedes a lost-alignment
// fault).
type AlignmentChain struct {
	Rect          stitch.Rect
	FinalState    stitch.State
	FinalHeight   int
	Records       []stitch.AcceptedFrameRecord
	FaultedAt     time.Time
	FaultedReason string
}

// Capture builds an AlignmentChain snapshot from a controller's own
// public surface (rect, state, records) plus the final frame height and an
// optional fault description.
func Capture(rect stitch.Rect, state stitch.State, finalHeight int, records []stitch.AcceptedFrameRecord, fault error) AlignmentChain {
	c := AlignmentChain{
		Rect:        rect,
		FinalState:  state,
		FinalHeight: finalHeight,
		Records:     records,
		FaultedAt:   time.Now(),
	}
	if fault != nil {
		c.FaultedReason = fault.Error()
	}
	return c
}

// WriteDot renders the chain as a Graphviz dot graph to w, suitable for
// piping into `dot -Tsvg` when inspecting why a session's overlap search
// went wrong.
func WriteDot(w io.Writer, chain AlignmentChain) error {
	_, err := fmt.Fprintf(w, "// scrollstitch alignment chain: %d accepted frames, final state %s\n", len(chain.Records), chain.FinalState)
	if err != nil {
		return err
	}
	memviz.Map(w, &chain)
	return nil
}
