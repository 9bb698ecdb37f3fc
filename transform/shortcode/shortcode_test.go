package shortcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarto-dev/quartomd-go/ast"
	"github.com/quarto-dev/quartomd-go/astctx"
	"github.com/quarto-dev/quartomd-go/diag"
)

func metaDoc() (ast.ConfigMap, ast.ConfigMap) {
	author := ast.NewConfigMap()
	author.Set("name", ast.String("Ada Lovelace"))
	meta := ast.NewConfigMap()
	meta.Set("author", author)
	meta.Set("title", ast.String("Engines"))
	return meta, author
}

func TestMetaHandlerResolvesDotPath(t *testing.T) {
	meta, _ := metaDoc()
	sc := &ast.Shortcode{Name: "meta", PositionalArgs: []string{"author.name"}}

	res := MetaHandler(sc, meta, sc.Source())

	require.Equal(t, kindInlines, res.kind)
	require.Len(t, res.inlines, 1)
	assert.Equal(t, "Ada Lovelace", res.inlines[0].(*ast.Str).Text)
}

func TestMetaHandlerUnknownKey(t *testing.T) {
	meta, _ := metaDoc()
	sc := &ast.Shortcode{Name: "meta", PositionalArgs: []string{"nope"}}

	res := MetaHandler(sc, meta, sc.Source())
	assert.Equal(t, kindError, res.kind)
}

func TestResolveReplacesShortcodeWithHandlerResult(t *testing.T) {
	ctx := astctx.New(nil)
	meta, _ := metaDoc()
	doc := &ast.Pandoc{
		Meta: meta,
		Blocks: []ast.Block{
			&ast.Paragraph{Content: []ast.Inline{
				&ast.Shortcode{Name: "meta", PositionalArgs: []string{"title"}},
			}},
		},
	}

	reg := NewRegistry()
	Resolve(ctx, doc, reg)

	para := doc.Blocks[0].(*ast.Paragraph)
	require.Len(t, para.Content, 1)
	assert.Equal(t, "Engines", para.Content[0].(*ast.Str).Text)
}

func TestResolveUnknownShortcodeEmitsErrorMarker(t *testing.T) {
	ctx := astctx.New(nil)
	doc := &ast.Pandoc{
		Meta: ast.NewConfigMap(),
		Blocks: []ast.Block{
			&ast.Paragraph{Content: []ast.Inline{&ast.Shortcode{Name: "nope"}}},
		},
	}

	reg := NewRegistry()
	Resolve(ctx, doc, reg)

	para := doc.Blocks[0].(*ast.Paragraph)
	require.Len(t, para.Content, 1)
	strong, ok := para.Content[0].(*ast.Strong)
	require.True(t, ok)
	assert.Equal(t, "?nope", strong.Content[0].(*ast.Str).Text)
	assert.Equal(t, 1, ctx.Diagnostics.CountBySeverity(diag.Warning))
}

func TestResolveEscapedShortcodeRoundTrips(t *testing.T) {
	ctx := astctx.New(nil)
	doc := &ast.Pandoc{
		Meta: ast.NewConfigMap(),
		Blocks: []ast.Block{
			&ast.Paragraph{Content: []ast.Inline{
				&ast.Shortcode{Name: "video", PositionalArgs: []string{"a url with spaces"}, IsEscaped: true},
			}},
		},
	}

	reg := NewRegistry()
	Resolve(ctx, doc, reg)

	para := doc.Blocks[0].(*ast.Paragraph)
	require.Len(t, para.Content, 1)
	str := para.Content[0].(*ast.Str)
	assert.Equal(t, `{{< video "a url with spaces" >}}`, str.Text)
}
