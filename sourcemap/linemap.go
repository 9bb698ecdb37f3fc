package sourcemap

import "sort"

// LineMap converts byte offsets within one file's content into (row, col)
// pairs, computed once per file at intern time so the parser's visitor
// never rescans the buffer.
type LineMap struct {
	// lineStarts[i] is the byte offset of the first byte of row i (0-based).
	lineStarts []uint32
}

// NewLineMap scans src once and records the offset of every line start.
func NewLineMap(src []byte) *LineMap {
	starts := []uint32{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, uint32(i+1))
		}
	}
	return &LineMap{lineStarts: starts}
}

// Position resolves a byte offset to a Position. Offsets past the end of
// the file clamp to the last known line.
func (m *LineMap) Position(offset uint32) Position {
	row := sort.Search(len(m.lineStarts), func(i int) bool {
		return m.lineStarts[i] > offset
	}) - 1
	if row < 0 {
		row = 0
	}
	col := offset - m.lineStarts[row]
	return Position{Offset: offset, Row: uint32(row), Col: col}
}

// Range resolves a [start, end) byte span to a full Range.
func (m *LineMap) Range(start, end uint32) Range {
	return Range{Start: m.Position(start), End: m.Position(end)}
}
