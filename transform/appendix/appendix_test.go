package appendix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarto-dev/quartomd-go/ast"
)

func divWithClass(class string) *ast.Div {
	a := ast.NewAttr()
	a.Classes = []string{class}
	return &ast.Div{Attr: a, Content: []ast.Block{&ast.Paragraph{}}}
}

func TestParseStyle(t *testing.T) {
	assert.Equal(t, StylePlain, ParseStyle("plain"))
	assert.Equal(t, StyleNone, ParseStyle("none"))
	assert.Equal(t, StyleDefault, ParseStyle("default"))
	assert.Equal(t, StyleDefault, ParseStyle(""))
}

func TestConsolidateCollectsAppendixDiv(t *testing.T) {
	body := &ast.Paragraph{}
	appendixDiv := divWithClass("appendix")
	doc := &ast.Pandoc{Meta: ast.NewConfigMap(), Blocks: []ast.Block{body, appendixDiv}}

	Consolidate(doc, Options{Style: StyleDefault})

	require.Len(t, doc.Blocks, 2)
	assert.Same(t, ast.Block(body), doc.Blocks[0])
	wrapper, ok := doc.Blocks[1].(*ast.Div)
	require.True(t, ok)
	assert.Equal(t, "quarto-appendix", wrapper.Attr.Identifier)
	assert.Equal(t, []string{"default"}, wrapper.Attr.Classes)
	require.Len(t, wrapper.Content, 1)
	assert.Same(t, ast.Block(appendixDiv), wrapper.Content[0])
}

func TestConsolidateWrapsBibliography(t *testing.T) {
	refs := &ast.Div{Attr: func() ast.Attr { a := ast.NewAttr(); a.Identifier = "refs"; return a }()}
	doc := &ast.Pandoc{Meta: ast.NewConfigMap(), Blocks: []ast.Block{refs}}

	Consolidate(doc, Options{Style: StyleDefault})

	require.Len(t, doc.Blocks, 1)
	wrapper := doc.Blocks[0].(*ast.Div)
	require.Len(t, wrapper.Content, 1)
	biblio := wrapper.Content[0].(*ast.Div)
	assert.Equal(t, "quarto-bibliography", biblio.Attr.Identifier)
	require.Len(t, biblio.Content, 2)
	header := biblio.Content[0].(*ast.Header)
	assert.Equal(t, 2, header.Level)
}

func TestConsolidateSkippedForBookOrNoneStyle(t *testing.T) {
	for _, opts := range []Options{
		{Style: StyleNone},
		{IsBook: true, Style: StyleDefault},
	} {
		doc := &ast.Pandoc{Meta: ast.NewConfigMap(), Blocks: []ast.Block{divWithClass("appendix")}}
		Consolidate(doc, opts)
		require.Len(t, doc.Blocks, 1)
		_, stillAppendix := doc.Blocks[0].(*ast.Div)
		assert.True(t, stillAppendix)
	}
}

func TestConsolidateMarginSkipsBibliographyAndFootnotes(t *testing.T) {
	refs := &ast.Div{Attr: func() ast.Attr { a := ast.NewAttr(); a.Identifier = "refs"; return a }()}
	doc := &ast.Pandoc{Meta: ast.NewConfigMap(), Blocks: []ast.Block{refs, divWithClass("appendix")}}

	Consolidate(doc, Options{ReferenceLocationMargin: true, Style: StyleDefault})

	require.Len(t, doc.Blocks, 2)
	wrapper := doc.Blocks[1].(*ast.Div)
	require.Len(t, wrapper.Content, 1)
}

func TestConsolidateMetadataSections(t *testing.T) {
	meta := ast.NewConfigMap()
	meta.Set("license", ast.String("CC-BY"))
	doc := &ast.Pandoc{Meta: meta, Blocks: []ast.Block{divWithClass("appendix")}}

	Consolidate(doc, Options{Style: StyleDefault})

	wrapper := doc.Blocks[0].(*ast.Div)
	require.Len(t, wrapper.Content, 2)
	licenseDiv := wrapper.Content[1].(*ast.Div)
	assert.Equal(t, "license", licenseDiv.Attr.Identifier)
}

func TestConsolidateNoOpWhenNothingCollected(t *testing.T) {
	doc := &ast.Pandoc{Meta: ast.NewConfigMap(), Blocks: []ast.Block{&ast.Paragraph{}}}
	Consolidate(doc, Options{Style: StyleDefault})
	require.Len(t, doc.Blocks, 1)
}
