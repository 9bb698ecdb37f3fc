// Package parser implements the concrete-syntax-tree-to-AST conversion
// described in spec §4.2: a bottom-up walk over a cst.Tree that returns
// one Intermediate value per concrete node (reporting a diagnostic for
// any node kind it does not recognize), followed by a postprocess pass
// that desugars transient attribute nodes.
package parser

import (
	"github.com/quarto-dev/quartomd-go/ast"
	"github.com/quarto-dev/quartomd-go/sourcemap"
)

// Intermediate is the sum type the bottom-up visitor returns per concrete
// node (spec §4.2 "Intermediate kinds"). Exactly one concrete type below
// is produced for any given cst.Node; the visitor's visitTopLevel and
// visitInline dispatch on cst Kind() to decide which.
type Intermediate interface {
	isIntermediate()
}

// IInline wraps a single built Inline node.
type IInline struct{ Inline ast.Inline }

func (IInline) isIntermediate() {}

// IInlines wraps a built sequence of Inline nodes, e.g. a list item's
// term content or a table cell.
type IInlines struct{ Inlines []ast.Inline }

func (IInlines) isIntermediate() {}

// IBlock wraps a single built Block node.
type IBlock struct{ Block ast.Block }

func (IBlock) isIntermediate() {}

// IBlocks wraps a built sequence of Block nodes.
type IBlocks struct{ Blocks []ast.Block }

func (IBlocks) isIntermediate() {}

// IBaseText is a text fragment that has not yet been classified as Str
// or Space; the inline visitor only produces fully-classified inlines,
// so this exists for completeness with spec §4.2's kind list and is used
// by a handful of helpers that need to pass raw text plus its source
// range before deciding.
type IBaseText struct {
	Text string
	Src  sourcemap.SourceInfo
}

func (IBaseText) isIntermediate() {}

// IAttr wraps a parsed attribute triple plus its per-component source
// locations.
type IAttr struct {
	Attr ast.Attr
	Info ast.AttrSourceInfo
}

func (IAttr) isIntermediate() {}

// IOrderedListMarker carries a parsed ordered-list marker's numbering
// state, used while building an OrderedList's Start/Style/Delim.
type IOrderedListMarker struct {
	Start int
	Style ast.ListNumberStyle
	Delim ast.ListNumberDelim
}

func (IOrderedListMarker) isIntermediate() {}

// IRawFormat wraps a raw-block/raw-inline format tag, e.g. "html".
type IRawFormat struct{ Format string }

func (IRawFormat) isIntermediate() {}

// IKeyValueSpec wraps one attribute key=value pair plus its source range.
type IKeyValueSpec struct {
	Key, Value string
	Src        sourcemap.SourceInfo
}

func (IKeyValueSpec) isIntermediate() {}

// IMetadataString wraps a scalar string value lifted from a metadata-ish
// concrete node (e.g. a footnote id literal).
type IMetadataString struct{ Value string }

func (IMetadataString) isIntermediate() {}

// IListItem wraps one list item's block content, prior to the tightness
// decision that may rewrite its leading Paragraph into Plain.
type IListItem struct{ Blocks []ast.Block }

func (IListItem) isIntermediate() {}

// IPandoc wraps the fully assembled document root.
type IPandoc struct{ Doc ast.Pandoc }

func (IPandoc) isIntermediate() {}

// IUnknown is returned for any concrete node kind the visitor does not
// recognize; the visitor that receives it reports one diagnostic per
// occurrence (spec §4.2, SPEC_FULL.md §C.2) rather than failing the parse
// outright.
type IUnknown struct {
	Kind string
	Src  sourcemap.SourceInfo
}

func (IUnknown) isIntermediate() {}
