package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigMapGetSet(t *testing.T) {
	m := NewConfigMap()
	_, ok := m.Get("missing")
	assert.False(t, ok)

	m.Set("title", String("Hello"))
	v, ok := m.Get("title")
	assert.True(t, ok)
	s, ok := v.(Scalar)
	assert.True(t, ok)
	str, ok := s.AsStr()
	assert.True(t, ok)
	assert.Equal(t, "Hello", str)
}

func TestScalarConstructorsAndAccessors(t *testing.T) {
	assert.True(t, Null().IsNull())
	assert.False(t, String("x").IsNull())

	b, ok := Bool(true).AsBool()
	assert.True(t, ok)
	assert.True(t, b)

	_, ok = String("x").AsBool()
	assert.False(t, ok, "AsBool only meaningful for bool scalars")

	i, ok := Integer(42).AsInt()
	assert.True(t, ok)
	assert.Equal(t, int64(42), i)

	str, ok := Float(1.5).AsStr()
	assert.True(t, ok)
	assert.Equal(t, "1.5", str)

	nullStr, ok := Null().AsStr()
	assert.False(t, ok)
	assert.Equal(t, "", nullStr)
}

func TestGlobMatch(t *testing.T) {
	g := Glob{Pattern: "images/**/*.png"}

	ok, err := g.Match("images/a/b.png")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Match("images/a/b.jpg")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestGlobMatchInvalidPattern(t *testing.T) {
	g := Glob{Pattern: "["}
	_, err := g.Match("anything")
	assert.Error(t, err)
}

func TestConfigArrayAndPandocVariants(t *testing.T) {
	arr := ConfigArray{Items: []ConfigValue{String("a"), Integer(1)}}
	assert.Len(t, arr.Items, 2)

	pi := PandocInlines{Inlines: []Inline{&Str{Text: "x"}}}
	assert.Len(t, pi.Inlines, 1)

	pb := PandocBlocks{Blocks: []Block{&Paragraph{}}}
	assert.Len(t, pb.Blocks, 1)

	// Every variant implements the closed ConfigValue sum type.
	var values = []ConfigValue{
		NewConfigMap(), arr, String("s"), Path{Value: "/tmp"},
		Glob{Pattern: "*"}, Expr{Source: "x > 1"}, pi, pb,
	}
	assert.Len(t, values, 8)
}
