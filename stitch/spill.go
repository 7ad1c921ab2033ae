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
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// spillMagic tags the header of a canvas spill file so a stray file can't be
// misread as one.
const spillMagic = "SSSP1\n"

// spillStore is the private temporary backing store a Canvas evicts its
// oldest rows to once memory_cap_bytes is exceeded. The file layout is a
// small header (magic, width, bytes-per-pixel) followed by raw rows,
// top-to-bottom, appended in the same order they were evicted -- which,
// because eviction always takes the canvas's current topmost rows, is also
// the order they'll need to be read back in at freeze() time.
type spillStore struct {
	f        *os.File
	width    int
	bpp      int
	rowCount int
	stride   int
}

func newSpillStore(width, bpp int) (*spillStore, error) {
	f, err := os.CreateTemp("", "scrollstitch-canvas-spill-*.bin")
	if err != nil {
		return nil, fmt.Errorf("stitch: creating spill file: %w", err)
	}

	s := &spillStore{f: f, width: width, bpp: bpp, stride: width * bpp}

	header := make([]byte, 0, len(spillMagic)+8)
	header = append(header, []byte(spillMagic)...)
	header = binary.BigEndian.AppendUint32(header, uint32(width))
	header = binary.BigEndian.AppendUint32(header, uint32(bpp))
	if _, err := f.Write(header); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("stitch: writing spill header: %w", err)
	}

	return s, nil
}

// evict appends rows (already in top-to-bottom order) to the spill file.
func (s *spillStore) evict(rows [][]byte) error {
	for _, row := range rows {
		if len(row) != s.stride {
			return fmt.Errorf("stitch: spill row length %d does not match stride %d", len(row), s.stride)
		}
		if _, err := s.f.Write(row); err != nil {
			return fmt.Errorf("stitch: writing spilled row: %w", err)
		}
		s.rowCount++
	}
	return nil
}

// readAll reads every spilled row back, oldest first.
func (s *spillStore) readAll() ([][]byte, error) {
	headerLen := len(spillMagic) + 8
	if _, err := s.f.Seek(int64(headerLen), io.SeekStart); err != nil {
		return nil, fmt.Errorf("stitch: seeking spill file: %w", err)
	}

	rows := make([][]byte, 0, s.rowCount)
	for i := 0; i < s.rowCount; i++ {
		row := make([]byte, s.stride)
		if _, err := io.ReadFull(s.f, row); err != nil {
			return nil, fmt.Errorf("stitch: reading spilled row %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// close closes and removes the temporary file. A spill file is a private
// artifact; it never survives past the session that created it.
func (s *spillStore) close() error {
	name := s.f.Name()
	err := s.f.Close()
	if rmErr := os.Remove(name); rmErr != nil && err == nil {
		err = rmErr
	}
	return err
}
