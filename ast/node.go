package ast

import "github.com/quarto-dev/quartomd-go/sourcemap"

// Block is implemented by every block-level node kind. Tag returns the
// stable variant name used in diagnostics and exposed to filters as the
// element's `.tag` field.
type Block interface {
	isBlock()
	Tag() string
	Source() sourcemap.SourceInfo
	SetSource(sourcemap.SourceInfo)
}

// Inline is implemented by every inline-level node kind.
type Inline interface {
	isInline()
	Tag() string
	Source() sourcemap.SourceInfo
	SetSource(sourcemap.SourceInfo)
}

// base carries the fields every node has regardless of family; embed it
// to get Source/SetSource for free.
type base struct {
	src sourcemap.SourceInfo
}

func (b base) Source() sourcemap.SourceInfo  { return b.src }
func (b *base) SetSource(s sourcemap.SourceInfo) { b.src = s }

// Pandoc is the document root: metadata plus a flat block sequence.
type Pandoc struct {
	Meta   ConfigMap
	Blocks []Block
}
