package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttrIsEmpty(t *testing.T) {
	a := NewAttr()
	assert.True(t, a.IsEmpty())

	a.Set("key", "val")
	assert.False(t, a.IsEmpty())
}

func TestAttrSetLastWins(t *testing.T) {
	a := NewAttr()
	a.Set("k", "one")
	a.Set("k", "two")

	v, ok := a.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "two", v)
	assert.Equal(t, 1, a.KeyVals.Len())
}

func TestAttrSetPreservesInsertionOrder(t *testing.T) {
	a := NewAttr()
	a.Set("b", "1")
	a.Set("a", "2")
	a.Set("b", "3") // re-set must not move "b" to the end

	var keys []string
	for pair := a.KeyVals.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"b", "a"}, keys)
}

func TestAttrHasClass(t *testing.T) {
	a := Attr{Classes: []string{"foo", "bar"}}
	assert.True(t, a.HasClass("foo"))
	assert.False(t, a.HasClass("baz"))
}

func TestAttrEqual(t *testing.T) {
	build := func() Attr {
		a := NewAttr()
		a.Identifier = "id1"
		a.Classes = []string{"x", "y"}
		a.Set("k1", "v1")
		return a
	}

	assert.True(t, build().Equal(build()))

	diffClassOrder := build()
	diffClassOrder.Classes = []string{"y", "x"}
	assert.False(t, build().Equal(diffClassOrder), "class order is significant")

	diffID := build()
	diffID.Identifier = "other"
	assert.False(t, build().Equal(diffID))

	emptyA, emptyB := NewAttr(), NewAttr()
	assert.True(t, emptyA.Equal(emptyB))
}
