// Package metanorm implements spec §4.3c metadata normalization: deriving
// a plain-text `pagetitle` from a document's `title` metadata field when
// the author hasn't already supplied one.
package metanorm

import (
	"github.com/quarto-dev/quartomd-go/ast"
)

// Normalize is idempotent: a document that already carries a `pagetitle`
// key is left untouched, so running the pass twice produces the same
// metadata map as running it once.
func Normalize(doc *ast.Pandoc) {
	if _, ok := doc.Meta.Get("pagetitle"); ok {
		return
	}
	title, ok := doc.Meta.Get("title")
	if !ok {
		return
	}
	text, ok := titleToPlainText(title)
	if !ok || text == "" {
		return
	}
	doc.Meta.Set("pagetitle", ast.String(text))
}

// titleToPlainText flattens whichever ConfigValue shape a `title` field
// can take (a plain scalar string, or rich inline content parsed from
// Markdown) down to the plain text the pagetitle field needs.
func titleToPlainText(v ast.ConfigValue) (string, bool) {
	switch val := v.(type) {
	case ast.Scalar:
		return val.AsStr()
	case ast.PandocInlines:
		return ast.Stringify(val.Inlines), true
	case ast.PandocBlocks:
		return ast.StringifyBlocks(val.Blocks), true
	default:
		return "", false
	}
}
