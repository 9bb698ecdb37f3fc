package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quarto-dev/quartomd-go/ast"
	"github.com/quarto-dev/quartomd-go/astctx"
	"github.com/quarto-dev/quartomd-go/sourcemap"
)

func TestPostprocessMergesAdjacentStr(t *testing.T) {
	ctx := astctx.New(nil)
	doc := &ast.Pandoc{Blocks: []ast.Block{
		&ast.Paragraph{Content: []ast.Inline{
			&ast.Str{Text: "foo"},
			&ast.Str{Text: "bar"},
		}},
	}}
	err := Postprocess(ctx, doc)
	assert.NoError(t, err)

	para := doc.Blocks[0].(*ast.Paragraph)
	assert.Len(t, para.Content, 1)
	assert.Equal(t, "foobar", para.Content[0].(*ast.Str).Text)
}

func TestPostprocessCollapsesWhitespaceAndTrims(t *testing.T) {
	ctx := astctx.New(nil)
	doc := &ast.Pandoc{Blocks: []ast.Block{
		&ast.Paragraph{Content: []ast.Inline{
			&ast.Space{},
			&ast.Str{Text: "x"},
			&ast.Space{},
			&ast.SoftBreak{},
			&ast.Str{Text: "y"},
			&ast.Space{},
		}},
	}}
	err := Postprocess(ctx, doc)
	assert.NoError(t, err)

	para := doc.Blocks[0].(*ast.Paragraph)
	var tags []string
	for _, in := range para.Content {
		tags = append(tags, in.Tag())
	}
	assert.Equal(t, []string{"Str", "Space", "Str"}, tags, "leading/trailing whitespace trimmed, adjacent runs collapsed")
}

func TestPostprocessAttachesAttrInlineToSpan(t *testing.T) {
	ctx := astctx.New(nil)
	span := &ast.Span{Content: []ast.Inline{&ast.Str{Text: "x"}}}
	attrInline := &ast.AttrInline{Attr: ast.Attr{Identifier: "id1"}}
	doc := &ast.Pandoc{Blocks: []ast.Block{
		&ast.Paragraph{Content: []ast.Inline{span, attrInline}},
	}}
	err := Postprocess(ctx, doc)
	assert.NoError(t, err)

	para := doc.Blocks[0].(*ast.Paragraph)
	assert.Len(t, para.Content, 1, "AttrInline must not survive postprocessing")
	gotSpan := para.Content[0].(*ast.Span)
	assert.Equal(t, "id1", gotSpan.Attr.Identifier)
}

func TestPostprocessOrphanAttrInlineWarns(t *testing.T) {
	ctx := astctx.New(nil)
	doc := &ast.Pandoc{Blocks: []ast.Block{
		&ast.Paragraph{Content: []ast.Inline{&ast.AttrInline{Attr: ast.Attr{Identifier: "orphan"}}}},
	}}
	err := Postprocess(ctx, doc)
	assert.NoError(t, err)

	para := doc.Blocks[0].(*ast.Paragraph)
	assert.Empty(t, para.Content)
	assert.True(t, ctx.Diagnostics.HasErrors() == false && len(ctx.Diagnostics.Messages()) == 1)
}

func TestPostprocessAttachesCaptionToTable(t *testing.T) {
	ctx := astctx.New(nil)
	table := &ast.Table{}
	caption := &ast.CaptionBlock{Short: []ast.Inline{&ast.Str{Text: "Cap"}}}
	doc := &ast.Pandoc{Blocks: []ast.Block{table, caption}}

	err := Postprocess(ctx, doc)
	assert.NoError(t, err)

	assert.Len(t, doc.Blocks, 1, "CaptionBlock must be consumed by postprocessing (invariant 2, spec §8)")
	gotTable := doc.Blocks[0].(*ast.Table)
	assert.Equal(t, "Cap", gotTable.CaptionShort[0].(*ast.Str).Text)
}

func TestSourcemapSpanMergesRanges(t *testing.T) {
	a := sourcemap.Original(sourcemap.FileId(1), sourcemap.Range{
		Start: sourcemap.Position{Offset: 0},
		End:   sourcemap.Position{Offset: 3},
	})
	b := sourcemap.Original(sourcemap.FileId(1), sourcemap.Range{
		Start: sourcemap.Position{Offset: 3},
		End:   sourcemap.Position{Offset: 6},
	})
	merged := sourcemapSpan(a, b)
	assert.Equal(t, uint32(0), merged.Range().Start.Offset)
	assert.Equal(t, uint32(6), merged.Range().End.Offset)
}
