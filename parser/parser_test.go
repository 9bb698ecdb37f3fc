package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quarto-dev/quartomd-go/ast"
	"github.com/quarto-dev/quartomd-go/astctx"
	"github.com/quarto-dev/quartomd-go/diag"
)

func TestParseParagraphWithEmphasis(t *testing.T) {
	ctx := astctx.New(nil)
	doc, err := Parse(ctx, "doc.qmd", []byte("Hello *world*!"), ast.NewConfigMap())
	assert.NoError(t, err)
	assert.Len(t, doc.Blocks, 1)

	para, ok := doc.Blocks[0].(*ast.Paragraph)
	assert.True(t, ok)

	var texts []string
	for _, in := range para.Content {
		switch v := in.(type) {
		case *ast.Str:
			texts = append(texts, v.Text)
		case *ast.Emph:
			texts = append(texts, "<emph>")
		}
	}
	assert.Contains(t, texts, "Hello")
	assert.Contains(t, texts, "<emph>")
}

func TestParseHeadingWithAttr(t *testing.T) {
	ctx := astctx.New(nil)
	doc, err := Parse(ctx, "doc.qmd", []byte("## Section {#sec .unnumbered}"), ast.NewConfigMap())
	assert.NoError(t, err)
	assert.Len(t, doc.Blocks, 1)

	h, ok := doc.Blocks[0].(*ast.Header)
	assert.True(t, ok)
	assert.Equal(t, 2, h.Level)
	assert.Equal(t, "sec", h.Attr.Identifier)
	assert.True(t, h.Attr.HasClass("unnumbered"))
}

func TestParseNoAttrInlineSurvives(t *testing.T) {
	// Invariant 1 (spec §8): post-parse the AST contains no Inline::Attr
	// (ast.AttrInline) nodes anywhere, including nested inside a Span.
	ctx := astctx.New(nil)
	doc, err := Parse(ctx, "doc.qmd", []byte("[span content]{.note #n1} more text"), ast.NewConfigMap())
	assert.NoError(t, err)

	assert.False(t, containsAttrInline(doc.Blocks), "no AttrInline nodes may survive postprocessing")

	para := doc.Blocks[0].(*ast.Paragraph)
	var span *ast.Span
	for _, in := range para.Content {
		if s, ok := in.(*ast.Span); ok {
			span = s
		}
	}
	if assert.NotNil(t, span) {
		assert.Equal(t, "n1", span.Attr.Identifier)
		assert.True(t, span.Attr.HasClass("note"))
	}
}

func containsAttrInline(blocks []ast.Block) bool {
	found := false
	for _, b := range blocks {
		switch v := b.(type) {
		case *ast.Paragraph:
			found = found || containsAttrInlineInline(v.Content)
		case *ast.Plain:
			found = found || containsAttrInlineInline(v.Content)
		}
	}
	return found
}

func containsAttrInlineInline(inlines []ast.Inline) bool {
	for _, in := range inlines {
		switch v := in.(type) {
		case *ast.AttrInline:
			return true
		case *ast.Span:
			if containsAttrInlineInline(v.Content) {
				return true
			}
		}
	}
	return false
}

func TestParseCodeBlockWithAttr(t *testing.T) {
	ctx := astctx.New(nil)
	doc, err := Parse(ctx, "doc.qmd", []byte("```{.python #cell1}\nprint(1)\n```"), ast.NewConfigMap())
	assert.NoError(t, err)

	cb, ok := doc.Blocks[0].(*ast.CodeBlock)
	assert.True(t, ok)
	assert.Equal(t, "cell1", cb.Attr.Identifier)
	assert.True(t, cb.Attr.HasClass("python"))
	assert.Equal(t, "print(1)", cb.Text)
}

func TestParseRecognizedConstructsEmitNoHint(t *testing.T) {
	ctx := astctx.New(nil)
	// A parse made only of node kinds the visitor recognizes records no
	// hint diagnostic (the severity used for unknown node kinds).
	_, err := Parse(ctx, "doc.qmd", []byte("plain paragraph"), ast.NewConfigMap())
	assert.NoError(t, err)
	assert.Equal(t, 0, ctx.Diagnostics.CountBySeverity(diag.Hint))
}

func TestParseFootnoteReference(t *testing.T) {
	ctx := astctx.New(nil)
	doc, err := Parse(ctx, "doc.qmd", []byte("Body text[^1]\n\n[^1]: The note."), ast.NewConfigMap())
	assert.NoError(t, err)
	assert.Len(t, doc.Blocks, 2)

	_, ok := doc.Blocks[1].(*ast.NoteDefinitionPara)
	assert.True(t, ok, "footnote definitions parse as NoteDefinitionPara until the extraction transform consumes them")
}
