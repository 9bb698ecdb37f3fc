package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringifyFlattensContainers(t *testing.T) {
	inlines := []Inline{
		&Str{Text: "Quarto"},
		&Space{},
		&Strong{Content: []Inline{&Str{Text: "Guide"}}},
		&LineBreak{},
		&Str{Text: "v2"},
	}
	assert.Equal(t, "Quarto Guide\nv2", Stringify(inlines))
}

func TestStringifyQuoted(t *testing.T) {
	dq := []Inline{&Quoted{Type: DoubleQuote, Content: []Inline{&Str{Text: "hi"}}}}
	assert.Equal(t, `"hi"`, Stringify(dq))

	sq := []Inline{&Quoted{Type: SingleQuote, Content: []Inline{&Str{Text: "hi"}}}}
	assert.Equal(t, "'hi'", Stringify(sq))
}

func TestStringifySkipsNoteContent(t *testing.T) {
	inlines := []Inline{
		&Str{Text: "a"},
		&Note{Content: []Block{&Paragraph{Content: []Inline{&Str{Text: "ignored"}}}}},
		&NoteReference{ID: "1"},
	}
	assert.Equal(t, "a", Stringify(inlines))
}

func TestStringifyBlocks(t *testing.T) {
	blocks := []Block{
		&Paragraph{Content: []Inline{&Str{Text: "one"}}},
		&Paragraph{Content: []Inline{&Str{Text: "two"}}},
	}
	assert.Equal(t, "one two", StringifyBlocks(blocks))
}
