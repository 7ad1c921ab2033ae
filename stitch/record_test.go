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

import "testing"

func TestRecordLogAppendAndLast(t *testing.T) {
	l := NewRecordLog(0)
	if _, ok := l.Last(); ok {
		t.Fatalf("expected no last record on empty log")
	}
	l.Append(AcceptedFrameRecord{Seq: 1, YStart: 0, YEnd: 10})
	l.Append(AcceptedFrameRecord{Seq: 2, YStart: 10, YEnd: 20})
	last, ok := l.Last()
	if !ok || last.Seq != 2 {
		t.Fatalf("Last() = %+v, ok=%v, want seq 2", last, ok)
	}
	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}
}

func TestRecordLogEvictsOldestPastCap(t *testing.T) {
	l := NewRecordLog(3)
	for i := 1; i <= 5; i++ {
		l.Append(AcceptedFrameRecord{Seq: uint64(i)})
	}
	if l.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", l.Len())
	}
	all := l.All()
	if all[0].Seq != 3 {
		t.Fatalf("oldest retained record has seq %d, want 3", all[0].Seq)
	}
	if all[2].Seq != 5 {
		t.Fatalf("newest retained record has seq %d, want 5", all[2].Seq)
	}
}

func TestRecordLogRenumber(t *testing.T) {
	l := NewRecordLog(0)
	l.Append(AcceptedFrameRecord{Seq: 1, YStart: -5, YEnd: 0})
	l.Append(AcceptedFrameRecord{Seq: 2, YStart: 0, YEnd: 10})
	l.renumber(5)
	all := l.All()
	if all[0].YStart != 0 || all[0].YEnd != 5 {
		t.Fatalf("renumbered first record = %+v, want [0,5)", all[0])
	}
	if all[1].YStart != 5 || all[1].YEnd != 15 {
		t.Fatalf("renumbered second record = %+v, want [5,15)", all[1])
	}
}
