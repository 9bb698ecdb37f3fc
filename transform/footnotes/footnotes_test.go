package footnotes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarto-dev/quartomd-go/ast"
)

func str(s string) ast.Inline { return &ast.Str{Text: s} }

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in   string
		want Location
	}{
		{"margin", Margin},
		{"block", BlockLocation},
		{"section", SectionLocation},
		{"document", Document},
		{"", Document},
		{"bogus", Document},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLocation(tt.in))
	}
}

func TestExtractReferenceNote(t *testing.T) {
	doc := &ast.Pandoc{
		Blocks: []ast.Block{
			&ast.Paragraph{Content: []ast.Inline{
				str("see"), &ast.Space{}, &ast.NoteReference{ID: "a"},
			}},
			&ast.NoteDefinitionPara{ID: "a", Content: []ast.Block{
				&ast.Paragraph{Content: []ast.Inline{str("the note body")}},
			}},
		},
	}

	Extract(nil, doc, Document)

	require.Len(t, doc.Blocks, 2)
	para, ok := doc.Blocks[0].(*ast.Paragraph)
	require.True(t, ok)
	span, ok := para.Content[len(para.Content)-1].(*ast.Span)
	require.True(t, ok)
	assert.Equal(t, "fnref1", span.Attr.Identifier)

	section, ok := doc.Blocks[1].(*ast.Div)
	require.True(t, ok)
	assert.Equal(t, "footnotes", section.Attr.Identifier)
	require.Len(t, section.Content, 2)
	_, ok = section.Content[0].(*ast.HorizontalRule)
	assert.True(t, ok)
	list, ok := section.Content[1].(*ast.OrderedList)
	require.True(t, ok)
	require.Len(t, list.Items, 1)
}

func TestExtractInlineNote(t *testing.T) {
	doc := &ast.Pandoc{
		Blocks: []ast.Block{
			&ast.Paragraph{Content: []ast.Inline{
				str("text"),
				&ast.Note{Content: []ast.Block{
					&ast.Paragraph{Content: []ast.Inline{str("inline body")}},
				}},
			}},
		},
	}

	Extract(nil, doc, Document)

	require.Len(t, doc.Blocks, 2)
	section, ok := doc.Blocks[1].(*ast.Div)
	require.True(t, ok)
	list := section.Content[1].(*ast.OrderedList)
	require.Len(t, list.Items, 1)
	fnDiv, ok := list.Items[0][0].(*ast.Div)
	require.True(t, ok)
	assert.Equal(t, "fn1", fnDiv.Attr.Identifier)
}

func TestExtractUnresolvedReferenceLeftInPlace(t *testing.T) {
	doc := &ast.Pandoc{
		Blocks: []ast.Block{
			&ast.Paragraph{Content: []ast.Inline{&ast.NoteReference{ID: "missing"}}},
		},
	}

	Extract(nil, doc, Document)

	para := doc.Blocks[0].(*ast.Paragraph)
	_, ok := para.Content[0].(*ast.NoteReference)
	assert.True(t, ok, "unresolved reference should be left untouched")
}

func TestExtractNoOpForBlockAndSectionLocation(t *testing.T) {
	for _, loc := range []Location{BlockLocation, SectionLocation} {
		doc := &ast.Pandoc{
			Blocks: []ast.Block{
				&ast.Paragraph{Content: []ast.Inline{&ast.NoteReference{ID: "a"}}},
				&ast.NoteDefinitionPara{ID: "a", Content: []ast.Block{&ast.Paragraph{}}},
			},
		}
		Extract(nil, doc, loc)
		require.Len(t, doc.Blocks, 2)
		_, ok := doc.Blocks[1].(*ast.NoteDefinitionPara)
		assert.True(t, ok)
	}
}
