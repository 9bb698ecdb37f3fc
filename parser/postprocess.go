package parser

import (
	"github.com/quarto-dev/quartomd-go/ast"
	"github.com/quarto-dev/quartomd-go/astctx"
	"github.com/quarto-dev/quartomd-go/diag"
	"github.com/quarto-dev/quartomd-go/sourcemap"
)

// sourcemapSpan builds a SourceInfo covering both a and b, used when two
// adjacent Str nodes merge into one. Both must be Original and share a
// file; callers check that before calling.
func sourcemapSpan(a, b sourcemap.SourceInfo) sourcemap.SourceInfo {
	ra, rb := a.Range(), b.Range()
	return sourcemap.Original(a.File(), sourcemap.Range{Start: ra.Start, End: rb.End})
}

// Postprocess implements spec §4.2's single desugaring pass over a freshly
// built Pandoc document: it removes transient AttrInline nodes by
// attaching them to the preceding attribute-bearing element, merges
// adjacent Str runs, collapses whitespace runs and trims it at container
// boundaries, and attaches trailing CaptionBlocks to the Table/Figure
// that precedes them. Problems it finds (such as an orphaned AttrInline)
// are reported as diagnostics; the returned error is always nil.
func Postprocess(ctx *astctx.Context, doc *ast.Pandoc) error {
	doc.Blocks = postprocessBlocks(ctx, doc.Blocks)
	return nil
}

func postprocessBlocks(ctx *astctx.Context, blocks []ast.Block) []ast.Block {
	blocks = attachCaptions(blocks)
	out := make([]ast.Block, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, postprocessBlock(ctx, b))
	}
	return out
}

// attachCaptions consumes a CaptionBlock immediately following a Table
// (spec §4.2 "Removes CaptionBlocks"), merging it into that table's
// caption fields and dropping it from the sequence.
func attachCaptions(blocks []ast.Block) []ast.Block {
	out := make([]ast.Block, 0, len(blocks))
	for i := 0; i < len(blocks); i++ {
		b := blocks[i]
		if i+1 < len(blocks) {
			if cap, ok := blocks[i+1].(*ast.CaptionBlock); ok {
				switch t := b.(type) {
				case *ast.Table:
					t.CaptionShort = cap.Short
					t.CaptionLong = cap.Long
					out = append(out, t)
					i++
					continue
				case *ast.Figure:
					t.CaptionShort = cap.Short
					t.CaptionLong = cap.Long
					out = append(out, t)
					i++
					continue
				}
			}
		}
		out = append(out, b)
	}
	return out
}

func postprocessBlock(ctx *astctx.Context, b ast.Block) ast.Block {
	switch v := b.(type) {
	case *ast.Paragraph:
		v.Content = postprocessInlines(ctx, v.Content)
	case *ast.Plain:
		v.Content = postprocessInlines(ctx, v.Content)
	case *ast.Header:
		v.Content = postprocessInlines(ctx, v.Content)
	case *ast.BlockQuote:
		v.Content = postprocessBlocks(ctx, v.Content)
	case *ast.Div:
		v.Content = postprocessBlocks(ctx, v.Content)
	case *ast.Figure:
		v.CaptionShort = postprocessInlines(ctx, v.CaptionShort)
		v.CaptionLong = postprocessBlocks(ctx, v.CaptionLong)
		v.Content = postprocessBlocks(ctx, v.Content)
	case *ast.OrderedList:
		for i, item := range v.Items {
			v.Items[i] = postprocessBlocks(ctx, item)
		}
	case *ast.BulletList:
		for i, item := range v.Items {
			v.Items[i] = postprocessBlocks(ctx, item)
		}
	case *ast.DefinitionList:
		for i, item := range v.Items {
			v.Items[i].Term = postprocessInlines(ctx, item.Term)
			for j, def := range item.Definitions {
				v.Items[i].Definitions[j] = postprocessBlocks(ctx, def)
			}
		}
	case *ast.LineBlock:
		for i, line := range v.Lines {
			v.Lines[i] = postprocessInlines(ctx, line)
		}
	case *ast.Table:
		v.CaptionShort = postprocessInlines(ctx, v.CaptionShort)
		v.CaptionLong = postprocessBlocks(ctx, v.CaptionLong)
		v.Head = postprocessRows(ctx, v.Head)
		for i, body := range v.Bodies {
			v.Bodies[i] = postprocessRows(ctx, body)
		}
		v.Foot = postprocessRows(ctx, v.Foot)
	case *ast.NoteDefinitionPara:
		v.Content = postprocessBlocks(ctx, v.Content)
	case *ast.NoteDefinitionFencedBlock:
		v.Content = postprocessBlocks(ctx, v.Content)
	case *ast.CustomBlock:
		// slot contents are opaque ConfigValue; nothing to recurse into.
	}
	return b
}

func postprocessRows(ctx *astctx.Context, rows []ast.TableRow) []ast.TableRow {
	for i := range rows {
		for j := range rows[i].Cells {
			rows[i].Cells[j].Content = postprocessBlocks(ctx, rows[i].Cells[j].Content)
		}
	}
	return rows
}

// postprocessInlines attaches AttrInline nodes to the preceding
// attribute-bearing inline, merges adjacent Str runs, and collapses/trims
// whitespace, then recurses into every container inline's own content.
func postprocessInlines(ctx *astctx.Context, inlines []ast.Inline) []ast.Inline {
	attached := attachAttrInlines(ctx, inlines)
	merged := mergeAdjacentStr(attached)
	trimmed := collapseWhitespace(merged)
	for _, in := range trimmed {
		recurseInline(ctx, in)
	}
	return trimmed
}

func attachAttrInlines(ctx *astctx.Context, inlines []ast.Inline) []ast.Inline {
	out := make([]ast.Inline, 0, len(inlines))
	for _, in := range inlines {
		ai, ok := in.(*ast.AttrInline)
		if !ok {
			out = append(out, in)
			continue
		}
		if len(out) == 0 {
			ctx.Diagnostics.Push(diag.NewBuilder(diag.Warning, "orphan attribute specifier", ai.Source()).
				Problem("an attribute specifier had no preceding element to attach to").Build())
			continue
		}
		switch prev := out[len(out)-1].(type) {
		case *ast.Span:
			prev.Attr = ai.Attr
		case *ast.Link:
			prev.Attr = ai.Attr
		case *ast.Image:
			prev.Attr = ai.Attr
		case *ast.Code:
			prev.Attr = ai.Attr
		default:
			ctx.Diagnostics.Push(diag.NewBuilder(diag.Warning, "orphan attribute specifier", ai.Source()).
				Problem("preceding element does not carry attributes").Build())
		}
	}
	return out
}

func mergeAdjacentStr(inlines []ast.Inline) []ast.Inline {
	out := make([]ast.Inline, 0, len(inlines))
	for _, in := range inlines {
		s, ok := in.(*ast.Str)
		if !ok {
			out = append(out, in)
			continue
		}
		if len(out) > 0 {
			if prev, ok := out[len(out)-1].(*ast.Str); ok {
				prev.Text += s.Text
				if prev.Source().IsOriginal() && s.Source().IsOriginal() && prev.Source().File() == s.Source().File() {
					prev.SetSource(sourcemapSpan(prev.Source(), s.Source()))
				}
				continue
			}
		}
		out = append(out, in)
	}
	return out
}

// collapseWhitespace merges adjacent Space/SoftBreak runs into a single
// Space and trims leading/trailing whitespace-only inlines, matching the
// boundary normalization spec §4.2 calls for.
func collapseWhitespace(inlines []ast.Inline) []ast.Inline {
	out := make([]ast.Inline, 0, len(inlines))
	for _, in := range inlines {
		if isWhitespaceInline(in) {
			if len(out) == 0 {
				continue
			}
			if isWhitespaceInline(out[len(out)-1]) {
				continue
			}
			out = append(out, in)
			continue
		}
		out = append(out, in)
	}
	for len(out) > 0 && isWhitespaceInline(out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

func isWhitespaceInline(in ast.Inline) bool {
	switch in.(type) {
	case *ast.Space, *ast.SoftBreak:
		return true
	default:
		return false
	}
}

func recurseInline(ctx *astctx.Context, in ast.Inline) {
	switch v := in.(type) {
	case *ast.Emph:
		v.Content = postprocessInlines(ctx, v.Content)
	case *ast.Strong:
		v.Content = postprocessInlines(ctx, v.Content)
	case *ast.Underline:
		v.Content = postprocessInlines(ctx, v.Content)
	case *ast.Strikeout:
		v.Content = postprocessInlines(ctx, v.Content)
	case *ast.Superscript:
		v.Content = postprocessInlines(ctx, v.Content)
	case *ast.Subscript:
		v.Content = postprocessInlines(ctx, v.Content)
	case *ast.SmallCaps:
		v.Content = postprocessInlines(ctx, v.Content)
	case *ast.Quoted:
		v.Content = postprocessInlines(ctx, v.Content)
	case *ast.Cite:
		v.Content = postprocessInlines(ctx, v.Content)
	case *ast.Link:
		v.Content = postprocessInlines(ctx, v.Content)
	case *ast.Image:
		v.Content = postprocessInlines(ctx, v.Content)
	case *ast.Span:
		v.Content = postprocessInlines(ctx, v.Content)
	case *ast.Insert:
		v.Content = postprocessInlines(ctx, v.Content)
	case *ast.Delete:
		v.Content = postprocessInlines(ctx, v.Content)
	case *ast.Highlight:
		v.Content = postprocessInlines(ctx, v.Content)
	case *ast.EditComment:
		v.Content = postprocessInlines(ctx, v.Content)
	case *ast.Note:
		v.Content = postprocessBlocks(ctx, v.Content)
	}
}
