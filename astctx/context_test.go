package astctx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInstallsNopLogger(t *testing.T) {
	ctx := New(nil)
	assert.NotNil(t, ctx.Logger())
	assert.NotNil(t, ctx.Diagnostics)
}

func TestInternFileStable(t *testing.T) {
	ctx := New(nil)
	id1 := ctx.InternFile("doc.qmd", []byte("hello"))
	id2 := ctx.InternFile("doc.qmd", []byte("hello again"))
	assert.Equal(t, id1, id2, "re-interning the same path must return the same id")

	id3 := ctx.InternFile("other.qmd", []byte("x"))
	assert.NotEqual(t, id1, id3)

	path, err := ctx.FilePath(id1)
	assert.NoError(t, err)
	assert.Equal(t, "doc.qmd", path)
}

func TestFilePathUnknownID(t *testing.T) {
	ctx := New(nil)
	_, err := ctx.FilePath(99)
	assert.Error(t, err)
}

func TestPositionResolvesRowCol(t *testing.T) {
	ctx := New(nil)
	id := ctx.InternFile("doc.qmd", []byte("abc\ndef"))

	pos, err := ctx.Position(id, 5)
	assert.NoError(t, err)
	assert.Equal(t, uint32(1), pos.Row)
	assert.Equal(t, uint32(1), pos.Col)

	_, err = ctx.Position(99, 0)
	assert.Error(t, err)
}

func TestNextExampleNumberSharedAcrossLists(t *testing.T) {
	ctx := New(nil)
	// Simulates two independent OrderedList(@) nodes in the same document:
	// numbering must continue rather than reset per list (spec §4.2, §9).
	firstListNums := []int{ctx.NextExampleNumber(), ctx.NextExampleNumber()}
	secondListNums := []int{ctx.NextExampleNumber(), ctx.NextExampleNumber()}

	assert.Equal(t, []int{1, 2}, firstListNums)
	assert.Equal(t, []int{3, 4}, secondListNums)
}
