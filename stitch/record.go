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

// AcceptedFrameRecord is the Controller's append-only account of one accepted
// frame: the alignment the comparator found for it, and the signed y-range of
// canvas rows it wrote. YStart/YEnd are in the canvas's internal signed
// coordinate space, which may run negative while the session is still
// growing upward; Canvas.Freeze renumbers both the image and (via
// RecordLog.renumber) every record to start at 0.
type AcceptedFrameRecord struct {
	Seq        uint64
	Captured   time.Time
	Dy, Dx     int
	Confidence float64
	YStart     int
	YEnd       int
	Jump       bool
}

// RecordLog is the ordered, append-only, bounded list of accepted-frame
// records for one session. It is bounded so that a very long scrolling
// session doesn't grow this bookkeeping without limit; once the cap is hit
// the oldest records are dropped, which only affects debugging/inspection
// (devgraph) and never the canvas image itself.
type RecordLog struct {
	cap     int
	records []AcceptedFrameRecord
}

// defaultRecordCap is generous enough to cover any realistic interactive
// session (at one capture every 150ms, roughly 40 minutes of continuous
// scrolling) while keeping devgraph dumps a sane size.
const defaultRecordCap = 16384

// NewRecordLog creates an empty RecordLog bounded at cap records. A
// non-positive cap uses defaultRecordCap.
func NewRecordLog(cap int) *RecordLog {
	if cap <= 0 {
		cap = defaultRecordCap
	}
	return &RecordLog{cap: cap}
}

// Append adds a record, evicting the oldest if the log is at capacity.
func (l *RecordLog) Append(r AcceptedFrameRecord) {
	l.records = append(l.records, r)
	if len(l.records) > l.cap {
		l.records = l.records[len(l.records)-l.cap:]
	}
}

// Len reports the number of records currently retained.
func (l *RecordLog) Len() int { return len(l.records) }

// Last returns the most recently appended record and true, or the zero value
// and false if the log is empty.
func (l *RecordLog) Last() (AcceptedFrameRecord, bool) {
	if len(l.records) == 0 {
		return AcceptedFrameRecord{}, false
	}
	return l.records[len(l.records)-1], true
}

// All returns a copy of every retained record, oldest first.
func (l *RecordLog) All() []AcceptedFrameRecord {
	out := make([]AcceptedFrameRecord, len(l.records))
	copy(out, l.records)
	return out
}

// renumber shifts every record's y-range by offset, used once at freeze time
// to translate from the signed internal coordinate space to the final
// 0-origin image.
func (l *RecordLog) renumber(offset int) {
	for i := range l.records {
		l.records[i].YStart += offset
		l.records[i].YEnd += offset
	}
}
