// Package shortcode implements spec §4.3a: resolving `{{< name args… >}}`
// directives against a registry of named handlers, walking every block
// and inline container (including tables, figures, note content, and
// custom-node slots) to find them.
package shortcode

import (
	"strings"

	"github.com/quarto-dev/quartomd-go/ast"
	"github.com/quarto-dev/quartomd-go/astctx"
	"github.com/quarto-dev/quartomd-go/diag"
	"github.com/quarto-dev/quartomd-go/sourcemap"
)

// Result is what a Handler returns for one shortcode occurrence.
type Result struct {
	kind        resultKind
	inlines     []ast.Inline
	errKey      string
	errMessage  string
}

type resultKind int

const (
	kindInlines resultKind = iota
	kindError
	kindPreserve
)

// Inlines builds a splice-replacement result.
func Inlines(inlines []ast.Inline) Result { return Result{kind: kindInlines, inlines: inlines} }

// Error builds a resolution-failure result; key names the broken
// reference (e.g. the missing metadata path) for the diagnostic and the
// visible "?key" error marker (spec §4.3a).
func Error(key, message string) Result {
	return Result{kind: kindError, errKey: key, errMessage: message}
}

// Preserve requests the escaped-shortcode literal round-trip (spec §9
// "Escaped shortcodes to text").
func Preserve() Result { return Result{kind: kindPreserve} }

// Handler resolves one shortcode by name. meta is the document's
// top-level metadata map; src is the shortcode's own source location,
// useful for a handler that wants to build its own diagnostics.
type Handler func(sc *ast.Shortcode, meta ast.ConfigMap, src sourcemap.SourceInfo) Result

// Registry maps shortcode names to their handlers.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry returns a registry preloaded with the built-in "meta"
// handler (spec §4.3a).
func NewRegistry() *Registry {
	r := &Registry{handlers: map[string]Handler{}}
	r.Register("meta", MetaHandler)
	return r
}

// Register installs (or overwrites) a handler for a shortcode name.
func (r *Registry) Register(name string, h Handler) {
	r.handlers[name] = h
}

// Resolve walks the whole document, replacing every Shortcode inline
// with its handler's result.
func Resolve(ctx *astctx.Context, doc *ast.Pandoc, reg *Registry) {
	doc.Blocks = resolveBlocks(ctx, doc.Blocks, doc.Meta, reg)
}

func resolveBlocks(ctx *astctx.Context, blocks []ast.Block, meta ast.ConfigMap, reg *Registry) []ast.Block {
	for _, b := range blocks {
		resolveBlock(ctx, b, meta, reg)
	}
	return blocks
}

func resolveBlock(ctx *astctx.Context, b ast.Block, meta ast.ConfigMap, reg *Registry) {
	switch v := b.(type) {
	case *ast.Paragraph:
		v.Content = resolveInlines(ctx, v.Content, meta, reg)
	case *ast.Plain:
		v.Content = resolveInlines(ctx, v.Content, meta, reg)
	case *ast.Header:
		v.Content = resolveInlines(ctx, v.Content, meta, reg)
	case *ast.BlockQuote:
		resolveBlocks(ctx, v.Content, meta, reg)
	case *ast.Div:
		resolveBlocks(ctx, v.Content, meta, reg)
	case *ast.Figure:
		v.CaptionShort = resolveInlines(ctx, v.CaptionShort, meta, reg)
		resolveBlocks(ctx, v.CaptionLong, meta, reg)
		resolveBlocks(ctx, v.Content, meta, reg)
	case *ast.OrderedList:
		for _, item := range v.Items {
			resolveBlocks(ctx, item, meta, reg)
		}
	case *ast.BulletList:
		for _, item := range v.Items {
			resolveBlocks(ctx, item, meta, reg)
		}
	case *ast.DefinitionList:
		for i := range v.Items {
			v.Items[i].Term = resolveInlines(ctx, v.Items[i].Term, meta, reg)
			for _, def := range v.Items[i].Definitions {
				resolveBlocks(ctx, def, meta, reg)
			}
		}
	case *ast.LineBlock:
		for i, line := range v.Lines {
			v.Lines[i] = resolveInlines(ctx, line, meta, reg)
		}
	case *ast.Table:
		v.CaptionShort = resolveInlines(ctx, v.CaptionShort, meta, reg)
		resolveBlocks(ctx, v.CaptionLong, meta, reg)
		resolveRows(ctx, v.Head, meta, reg)
		for _, body := range v.Bodies {
			resolveRows(ctx, body, meta, reg)
		}
		resolveRows(ctx, v.Foot, meta, reg)
	case *ast.CustomBlock:
		for k, slot := range v.Slots {
			v.Slots[k] = resolveConfigValue(ctx, slot, meta, reg)
		}
	}
}

func resolveRows(ctx *astctx.Context, rows []ast.TableRow, meta ast.ConfigMap, reg *Registry) {
	for _, row := range rows {
		for _, cell := range row.Cells {
			resolveBlocks(ctx, cell.Content, meta, reg)
		}
	}
}

func resolveConfigValue(ctx *astctx.Context, v ast.ConfigValue, meta ast.ConfigMap, reg *Registry) ast.ConfigValue {
	switch cv := v.(type) {
	case ast.PandocInlines:
		cv.Inlines = resolveInlines(ctx, cv.Inlines, meta, reg)
		return cv
	case ast.PandocBlocks:
		resolveBlocks(ctx, cv.Blocks, meta, reg)
		return cv
	default:
		return v
	}
}

func resolveInlines(ctx *astctx.Context, inlines []ast.Inline, meta ast.ConfigMap, reg *Registry) []ast.Inline {
	out := make([]ast.Inline, 0, len(inlines))
	for _, in := range inlines {
		sc, ok := in.(*ast.Shortcode)
		if !ok {
			recurseInline(ctx, in, meta, reg)
			out = append(out, in)
			continue
		}
		out = append(out, resolveOne(ctx, sc, meta, reg)...)
	}
	return out
}

func recurseInline(ctx *astctx.Context, in ast.Inline, meta ast.ConfigMap, reg *Registry) {
	switch v := in.(type) {
	case *ast.Emph:
		v.Content = resolveInlines(ctx, v.Content, meta, reg)
	case *ast.Strong:
		v.Content = resolveInlines(ctx, v.Content, meta, reg)
	case *ast.Underline:
		v.Content = resolveInlines(ctx, v.Content, meta, reg)
	case *ast.Strikeout:
		v.Content = resolveInlines(ctx, v.Content, meta, reg)
	case *ast.Superscript:
		v.Content = resolveInlines(ctx, v.Content, meta, reg)
	case *ast.Subscript:
		v.Content = resolveInlines(ctx, v.Content, meta, reg)
	case *ast.SmallCaps:
		v.Content = resolveInlines(ctx, v.Content, meta, reg)
	case *ast.Quoted:
		v.Content = resolveInlines(ctx, v.Content, meta, reg)
	case *ast.Cite:
		v.Content = resolveInlines(ctx, v.Content, meta, reg)
	case *ast.Link:
		v.Content = resolveInlines(ctx, v.Content, meta, reg)
	case *ast.Image:
		v.Content = resolveInlines(ctx, v.Content, meta, reg)
	case *ast.Span:
		v.Content = resolveInlines(ctx, v.Content, meta, reg)
	case *ast.Insert:
		v.Content = resolveInlines(ctx, v.Content, meta, reg)
	case *ast.Delete:
		v.Content = resolveInlines(ctx, v.Content, meta, reg)
	case *ast.Highlight:
		v.Content = resolveInlines(ctx, v.Content, meta, reg)
	case *ast.EditComment:
		v.Content = resolveInlines(ctx, v.Content, meta, reg)
	case *ast.Note:
		resolveBlocks(ctx, v.Content, meta, reg)
	case *ast.CustomInline:
		for k, slot := range v.Slots {
			v.Slots[k] = resolveConfigValue(ctx, slot, meta, reg)
		}
	}
}

func resolveOne(ctx *astctx.Context, sc *ast.Shortcode, meta ast.ConfigMap, reg *Registry) []ast.Inline {
	if sc.IsEscaped {
		return []ast.Inline{escapedToLiteral(sc)}
	}
	h, ok := reg.handlers[sc.Name]
	var res Result
	if !ok {
		res = Error(sc.Name, "unknown shortcode \""+sc.Name+"\"")
	} else {
		res = h(sc, meta, sc.Source())
	}
	switch res.kind {
	case kindInlines:
		for _, in := range res.inlines {
			if in.Source() == (sourcemap.SourceInfo{}) {
				in.SetSource(sc.Source())
			}
		}
		return res.inlines
	case kindPreserve:
		return []ast.Inline{escapedToLiteral(sc)}
	default: // kindError
		ctx.Diagnostics.Push(diag.NewBuilder(diag.Warning, "shortcode resolution failed", sc.Source()).
			Problem(res.errMessage).Build())
		marker := &ast.Strong{Content: []ast.Inline{&ast.Str{Text: "?" + res.errKey}}}
		marker.SetSource(sc.Source())
		marker.Content[0].SetSource(sc.Source())
		return []ast.Inline{marker}
	}
}

// escapedToLiteral reconstructs an escaped shortcode's original rendered
// form as a literal Str (spec §9: "a small, deterministic printer in its
// own right, not a round-trip through the parser"), quoting any argument
// that contains whitespace.
func escapedToLiteral(sc *ast.Shortcode) ast.Inline {
	var b strings.Builder
	b.WriteString("{{< ")
	b.WriteString(sc.Name)
	for _, a := range sc.PositionalArgs {
		b.WriteByte(' ')
		b.WriteString(quoteIfNeeded(a))
	}
	for _, kv := range sc.KeywordArgs {
		b.WriteByte(' ')
		b.WriteString(kv.Key)
		b.WriteByte('=')
		b.WriteString(quoteIfNeeded(kv.Value))
	}
	b.WriteString(" >}}")
	s := &ast.Str{Text: b.String()}
	s.SetSource(sc.Source())
	return s
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, " \t") {
		return "\"" + s + "\""
	}
	return s
}
