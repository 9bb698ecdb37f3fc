package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarto-dev/quartomd-go/ast"
	"github.com/quarto-dev/quartomd-go/sourcemap"
)

func withSource(b ast.Block, offset uint32) ast.Block {
	b.SetSource(sourcemap.Original(sourcemap.FileId(1), sourcemap.Range{
		Start: sourcemap.Position{Offset: offset},
		End:   sourcemap.Position{Offset: offset + 1},
	}))
	return b
}

func TestReconcileExactMatchTransfersSource(t *testing.T) {
	orig := []ast.Block{withSource(&ast.Paragraph{Content: []ast.Inline{&ast.Str{Text: "hello"}}}, 10)}
	exec := []ast.Block{&ast.Paragraph{Content: []ast.Inline{&ast.Str{Text: "hello"}}}}

	merged, report := Reconcile(orig, exec)

	require.Len(t, merged, 1)
	assert.Equal(t, 1, report.ExactMatches)
	assert.Equal(t, 0, report.ContentChanges)
	assert.True(t, merged[0].Source().IsOriginal())
	assert.Equal(t, uint32(10), merged[0].Source().Range().Start.Offset)
}

func TestReconcileStructuralMatchKeepsExecutedSource(t *testing.T) {
	orig := []ast.Block{withSource(&ast.CodeBlock{Text: "old"}, 5)}
	exec := []ast.Block{&ast.CodeBlock{Text: "new"}}

	merged, report := Reconcile(orig, exec)

	require.Len(t, merged, 1)
	assert.Equal(t, 0, report.ExactMatches)
	assert.Equal(t, 1, report.ContentChanges)
	assert.Equal(t, sourcemap.SourceInfo{}, merged[0].Source())
}

func TestReconcileDetectsAddition(t *testing.T) {
	orig := []ast.Block{&ast.Paragraph{Content: []ast.Inline{&ast.Str{Text: "a"}}}}
	exec := []ast.Block{
		&ast.HorizontalRule{},
		&ast.Paragraph{Content: []ast.Inline{&ast.Str{Text: "a"}}},
	}

	_, report := Reconcile(orig, exec)
	assert.Equal(t, 1, report.Additions)
	assert.Equal(t, 1, report.ExactMatches)
}

func TestReconcileDetectsDeletion(t *testing.T) {
	orig := []ast.Block{
		&ast.HorizontalRule{},
		&ast.Paragraph{Content: []ast.Inline{&ast.Str{Text: "a"}}},
	}
	exec := []ast.Block{&ast.Paragraph{Content: []ast.Inline{&ast.Str{Text: "a"}}}}

	_, report := Reconcile(orig, exec)
	assert.Equal(t, 1, report.Deletions)
	assert.Equal(t, 1, report.ExactMatches)
}

func TestReconcileUnifiedDiff(t *testing.T) {
	orig := []ast.Block{&ast.Paragraph{Content: []ast.Inline{&ast.Str{Text: "a"}}}}
	exec := []ast.Block{&ast.Paragraph{Content: []ast.Inline{&ast.Str{Text: "b"}}}}
	_, report := Reconcile(orig, exec)

	out, err := report.Unified()
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestClassifyHorizontalRuleAlwaysExact(t *testing.T) {
	assert.Equal(t, Exact, classify(&ast.HorizontalRule{}, &ast.HorizontalRule{}))
}

func TestClassifyTableAlwaysStructural(t *testing.T) {
	assert.Equal(t, Structural, classify(&ast.Table{}, &ast.Table{}))
}

func TestClassifyCodeBlockRequiresAttrMatch(t *testing.T) {
	a := ast.NewAttr()
	a.Identifier = "one"
	b := ast.NewAttr()
	b.Identifier = "two"
	assert.Equal(t, NoMatch, classify(&ast.CodeBlock{Attr: a, Text: "x"}, &ast.CodeBlock{Attr: b, Text: "x"}))
}
