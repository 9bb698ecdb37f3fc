package sourcemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineMapPosition(t *testing.T) {
	src := []byte("abc\ndefg\nh")
	lm := NewLineMap(src)

	tests := []struct {
		offset   uint32
		wantRow  uint32
		wantCol  uint32
	}{
		{0, 0, 0},
		{2, 0, 2},
		{4, 1, 0},  // 'd'
		{9, 2, 0},  // 'h'
		{10, 2, 1}, // past end of last line, clamps to last row
	}

	for _, tt := range tests {
		pos := lm.Position(tt.offset)
		assert.Equal(t, tt.wantRow, pos.Row, "offset %d row", tt.offset)
		assert.Equal(t, tt.wantCol, pos.Col, "offset %d col", tt.offset)
		assert.Equal(t, tt.offset, pos.Offset)
	}
}

func TestLineMapRange(t *testing.T) {
	src := []byte("hello\nworld")
	lm := NewLineMap(src)

	r := lm.Range(6, 11)
	assert.Equal(t, uint32(1), r.Start.Row)
	assert.Equal(t, uint32(0), r.Start.Col)
	assert.Equal(t, uint32(1), r.End.Row)
	assert.Equal(t, uint32(5), r.End.Col)
}

func TestLineMapEmptySource(t *testing.T) {
	lm := NewLineMap(nil)
	pos := lm.Position(0)
	assert.Equal(t, uint32(0), pos.Row)
	assert.Equal(t, uint32(0), pos.Col)
}
