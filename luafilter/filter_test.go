package luafilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarto-dev/quartomd-go/ast"
	"github.com/quarto-dev/quartomd-go/sourcemap"
)

func TestFilterConstructedNodeCarriesFilterProvenance(t *testing.T) {
	f, err := Load(`
function Str(e)
	return pandoc.Str(string.upper(e.text))
end
`, "uppercase.lua", "html")
	require.NoError(t, err)
	defer f.Close()

	doc := &ast.Pandoc{Blocks: []ast.Block{
		&ast.Paragraph{Content: []ast.Inline{&ast.Str{Text: "hello world"}}},
	}}

	out, err := f.Run(doc)
	require.NoError(t, err)
	para := out[0].(*ast.Paragraph)
	str := para.Content[0].(*ast.Str)
	assert.Equal(t, "HELLO WORLD", str.Text)

	src := str.Source()
	assert.True(t, src.IsFilterProvenance(), "a node built by pandoc.Str inside a handler must carry FilterProvenance")
	assert.Equal(t, "uppercase.lua", src.FilterPath())
	assert.Equal(t, 2, src.FilterLine(), "line of the enclosing `function Str(e)` handler")
}

func TestFilterUnmodifiedNodePreservesOriginalSource(t *testing.T) {
	f, err := Load(`
function Emph(el)
	return el
end
`, "noop.lua", "html")
	require.NoError(t, err)
	defer f.Close()

	original := &ast.Str{Text: "x"}
	original.SetSource(sourcemap.Original(sourcemap.FileId(3), sourcemap.Range{
		Start: sourcemap.Position{Offset: 0},
		End:   sourcemap.Position{Offset: 1},
	}))
	emph := &ast.Emph{Content: []ast.Inline{original}}
	emph.SetSource(sourcemap.Original(sourcemap.FileId(3), sourcemap.Range{
		Start: sourcemap.Position{Offset: 0},
		End:   sourcemap.Position{Offset: 1},
	}))
	doc := &ast.Pandoc{Blocks: []ast.Block{&ast.Paragraph{Content: []ast.Inline{emph}}}}

	out, err := f.Run(doc)
	require.NoError(t, err)
	para := out[0].(*ast.Paragraph)
	gotEmph := para.Content[0].(*ast.Emph)
	assert.True(t, gotEmph.Source().IsOriginal(), "a node returned unchanged by a handler must keep its original source")
	assert.Equal(t, sourcemap.FileId(3), gotEmph.Source().File())
}

func TestFilterTypewiseUppercasesStr(t *testing.T) {
	f, err := Load(`
		function Str(el)
			el.text = string.upper(el.text)
			return el
		end
	`, "uppercase.lua", "html")
	require.NoError(t, err)
	defer f.Close()

	doc := &ast.Pandoc{Blocks: []ast.Block{
		&ast.Paragraph{Content: []ast.Inline{&ast.Str{Text: "hi"}}},
	}}

	out, err := f.Run(doc)
	require.NoError(t, err)
	require.Len(t, out, 1)
	para := out[0].(*ast.Paragraph)
	require.Len(t, para.Content, 1)
	assert.Equal(t, "HI", para.Content[0].(*ast.Str).Text)
}

func TestFilterEmptyTableDeletesElement(t *testing.T) {
	f, err := Load(`
		function Space(el)
			return {}
		end
	`, "delete-space.lua", "html")
	require.NoError(t, err)
	defer f.Close()

	doc := &ast.Pandoc{Blocks: []ast.Block{
		&ast.Paragraph{Content: []ast.Inline{
			&ast.Str{Text: "a"},
			&ast.Space{},
			&ast.Str{Text: "b"},
		}},
	}}

	out, err := f.Run(doc)
	require.NoError(t, err)
	para := out[0].(*ast.Paragraph)
	require.Len(t, para.Content, 2)
	assert.Equal(t, "a", para.Content[0].(*ast.Str).Text)
	assert.Equal(t, "b", para.Content[1].(*ast.Str).Text)
}

func TestFilterSpliceReplacesWithMultipleElements(t *testing.T) {
	f, err := Load(`
		function Str(el)
			return {pandoc.Str("["), el, pandoc.Str("]")}
		end
	`, "bracket.lua", "html")
	require.NoError(t, err)
	defer f.Close()

	doc := &ast.Pandoc{Blocks: []ast.Block{
		&ast.Plain{Content: []ast.Inline{&ast.Str{Text: "x"}}},
	}}

	out, err := f.Run(doc)
	require.NoError(t, err)
	plain := out[0].(*ast.Plain)
	require.Len(t, plain.Content, 3)
	assert.Equal(t, "[", plain.Content[0].(*ast.Str).Text)
	assert.Equal(t, "x", plain.Content[1].(*ast.Str).Text)
	assert.Equal(t, "]", plain.Content[2].(*ast.Str).Text)
}

func TestFilterBlocksLevelFunctionShortCircuitsPerBlockDispatch(t *testing.T) {
	f, err := Load(`
		function Blocks(blocks)
			return {}
		end
		function Para(el)
			error("should not run")
		end
	`, "drop-all.lua", "html")
	require.NoError(t, err)
	defer f.Close()

	doc := &ast.Pandoc{Blocks: []ast.Block{
		&ast.Paragraph{Content: []ast.Inline{&ast.Str{Text: "x"}}},
	}}

	out, err := f.Run(doc)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestFilterGenericBlockFallback(t *testing.T) {
	f, err := Load(`
		function Block(el)
			return pandoc.HorizontalRule()
		end
	`, "flatten.lua", "html")
	require.NoError(t, err)
	defer f.Close()

	doc := &ast.Pandoc{Blocks: []ast.Block{
		&ast.Paragraph{Content: []ast.Inline{&ast.Str{Text: "x"}}},
		&ast.CodeBlock{Text: "code"},
	}}

	out, err := f.Run(doc)
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, b := range out {
		_, ok := b.(*ast.HorizontalRule)
		assert.True(t, ok)
	}
}

func TestFilterTopDownSuppressesDescent(t *testing.T) {
	f, err := Load(`
		traverse = "topdown"
		function Emph(el)
			return el, false
		end
		function Str(el)
			el.text = "SHOULD NOT RUN"
			return el
		end
	`, "suppress.lua", "html")
	require.NoError(t, err)
	defer f.Close()

	doc := &ast.Pandoc{Blocks: []ast.Block{
		&ast.Paragraph{Content: []ast.Inline{
			&ast.Emph{Content: []ast.Inline{&ast.Str{Text: "kept"}}},
		}},
	}}

	out, err := f.Run(doc)
	require.NoError(t, err)
	para := out[0].(*ast.Paragraph)
	emph := para.Content[0].(*ast.Emph)
	assert.Equal(t, "kept", emph.Content[0].(*ast.Str).Text)
}

func TestFilterTopDownDescendsByDefault(t *testing.T) {
	f, err := Load(`
		traverse = "topdown"
		function Str(el)
			el.text = string.upper(el.text)
			return el
		end
	`, "upper-topdown.lua", "html")
	require.NoError(t, err)
	defer f.Close()

	doc := &ast.Pandoc{Blocks: []ast.Block{
		&ast.Paragraph{Content: []ast.Inline{
			&ast.Emph{Content: []ast.Inline{&ast.Str{Text: "kept"}}},
		}},
	}}

	out, err := f.Run(doc)
	require.NoError(t, err)
	para := out[0].(*ast.Paragraph)
	emph := para.Content[0].(*ast.Emph)
	assert.Equal(t, "KEPT", emph.Content[0].(*ast.Str).Text)
}

func TestFilterReturnedTableFromScript(t *testing.T) {
	f, err := Load(`
		local filter = {}
		function filter.Str(el)
			el.text = el.text .. "!"
			return el
		end
		return filter
	`, "returned-table.lua", "html")
	require.NoError(t, err)
	defer f.Close()

	doc := &ast.Pandoc{Blocks: []ast.Block{
		&ast.Plain{Content: []ast.Inline{&ast.Str{Text: "hey"}}},
	}}

	out, err := f.Run(doc)
	require.NoError(t, err)
	plain := out[0].(*ast.Plain)
	assert.Equal(t, "hey!", plain.Content[0].(*ast.Str).Text)
}
