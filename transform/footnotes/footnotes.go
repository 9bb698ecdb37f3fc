// Package footnotes implements spec §4.3b: extracting inline Note
// content and NoteDefinitionPara/NoteDefinitionFencedBlock definitions
// into a numbered reference/definition pair, and, for
// reference-location=document, building the trailing footnotes section.
package footnotes

import (
	"fmt"
	"strconv"

	"bitbucket.org/creachadair/stringset"

	"github.com/quarto-dev/quartomd-go/ast"
	"github.com/quarto-dev/quartomd-go/astctx"
	"github.com/quarto-dev/quartomd-go/sourcemap"
)

// Location is the reference-location metadata configuration governing
// where footnote markers point and whether a section is appended.
type Location int

const (
	Document Location = iota
	Margin
	BlockLocation
	SectionLocation
)

// ParseLocation maps the metadata string value to a Location, defaulting
// to Document per spec §4.3b.
func ParseLocation(s string) Location {
	switch s {
	case "margin":
		return Margin
	case "block":
		return BlockLocation
	case "section":
		return SectionLocation
	default:
		return Document
	}
}

type definition struct {
	content []ast.Block
	number  int
}

type state struct {
	defs    map[string]*definition
	order   []string
	seen    stringset.Set
	counter int
	margin  bool
}

// Extract runs the full footnote-extraction algorithm in place on doc.
// For reference-location ∈ {block, section} it is a no-op (spec step 1:
// "downstream writer handles those").
func Extract(ctx *astctx.Context, doc *ast.Pandoc, loc Location) {
	if loc == BlockLocation || loc == SectionLocation {
		return
	}

	st := &state{defs: map[string]*definition{}, seen: stringset.New(), margin: loc == Margin}
	doc.Blocks = collectDefinitions(doc.Blocks, st.defs)
	doc.Blocks = rewriteBlocks(doc.Blocks, st)

	if loc != Document || len(st.order) == 0 {
		return
	}
	doc.Blocks = append(doc.Blocks, buildSection(st))
}

// assign returns the number for a footnote id, minting a new one (in
// document order of first encounter) the first time it is seen; later
// references to the same id, whether from a NoteReference or a second
// Note sharing an id, reuse that number (spec §4.3b step 3).
func (st *state) assign(id string) (int, bool) {
	d, ok := st.defs[id]
	if !ok {
		return 0, false
	}
	if !st.seen.Contains(id) {
		st.seen.Add(id)
		st.counter++
		d.number = st.counter
		st.order = append(st.order, id)
	}
	return d.number, true
}

// collectDefinitions recursively removes every NoteDefinitionPara/
// NoteDefinitionFencedBlock from the block tree, keying their content by
// id in defs (spec §4.3b step 2).
func collectDefinitions(blocks []ast.Block, defs map[string]*definition) []ast.Block {
	out := make([]ast.Block, 0, len(blocks))
	for _, b := range blocks {
		switch v := b.(type) {
		case *ast.NoteDefinitionPara:
			defs[v.ID] = &definition{content: v.Content}
			continue
		case *ast.NoteDefinitionFencedBlock:
			defs[v.ID] = &definition{content: v.Content}
			continue
		case *ast.BlockQuote:
			v.Content = collectDefinitions(v.Content, defs)
		case *ast.Div:
			v.Content = collectDefinitions(v.Content, defs)
		case *ast.OrderedList:
			for i, item := range v.Items {
				v.Items[i] = collectDefinitions(item, defs)
			}
		case *ast.BulletList:
			for i, item := range v.Items {
				v.Items[i] = collectDefinitions(item, defs)
			}
		}
		out = append(out, b)
	}
	return out
}

func rewriteBlocks(blocks []ast.Block, st *state) []ast.Block {
	for _, b := range blocks {
		rewriteBlock(b, st)
	}
	return blocks
}

func rewriteBlock(b ast.Block, st *state) {
	switch v := b.(type) {
	case *ast.Paragraph:
		v.Content = rewriteInlines(v.Content, st)
	case *ast.Plain:
		v.Content = rewriteInlines(v.Content, st)
	case *ast.Header:
		v.Content = rewriteInlines(v.Content, st)
	case *ast.BlockQuote:
		rewriteBlocks(v.Content, st)
	case *ast.Div:
		rewriteBlocks(v.Content, st)
	case *ast.Figure:
		v.CaptionShort = rewriteInlines(v.CaptionShort, st)
		rewriteBlocks(v.CaptionLong, st)
		rewriteBlocks(v.Content, st)
	case *ast.OrderedList:
		for _, item := range v.Items {
			rewriteBlocks(item, st)
		}
	case *ast.BulletList:
		for _, item := range v.Items {
			rewriteBlocks(item, st)
		}
	case *ast.Table:
		rewriteRows(v.Head, st)
		for _, body := range v.Bodies {
			rewriteRows(body, st)
		}
		rewriteRows(v.Foot, st)
	}
}

func rewriteRows(rows []ast.TableRow, st *state) {
	for _, row := range rows {
		for _, cell := range row.Cells {
			rewriteBlocks(cell.Content, st)
		}
	}
}

func rewriteInlines(inlines []ast.Inline, st *state) []ast.Inline {
	out := make([]ast.Inline, 0, len(inlines))
	for _, in := range inlines {
		switch v := in.(type) {
		case *ast.Note:
			id := fmt.Sprintf("inline-%p", v)
			st.defs[id] = &definition{content: v.Content}
			n, _ := st.assign(id)
			out = append(out, noteMarker(n, st.margin, v.Source()))
		case *ast.NoteReference:
			n, ok := st.assign(v.ID)
			if !ok {
				out = append(out, v)
				continue
			}
			out = append(out, noteMarker(n, st.margin, v.Source()))
		default:
			recurseRewrite(in, st)
			out = append(out, in)
		}
	}
	return out
}

func recurseRewrite(in ast.Inline, st *state) {
	switch v := in.(type) {
	case *ast.Emph:
		v.Content = rewriteInlines(v.Content, st)
	case *ast.Strong:
		v.Content = rewriteInlines(v.Content, st)
	case *ast.Underline:
		v.Content = rewriteInlines(v.Content, st)
	case *ast.Strikeout:
		v.Content = rewriteInlines(v.Content, st)
	case *ast.Superscript:
		v.Content = rewriteInlines(v.Content, st)
	case *ast.Subscript:
		v.Content = rewriteInlines(v.Content, st)
	case *ast.SmallCaps:
		v.Content = rewriteInlines(v.Content, st)
	case *ast.Quoted:
		v.Content = rewriteInlines(v.Content, st)
	case *ast.Link:
		v.Content = rewriteInlines(v.Content, st)
	case *ast.Span:
		v.Content = rewriteInlines(v.Content, st)
	}
}

// noteMarker builds the `Span(id=fnref{N}) [Superscript [Link ...]]]`
// reference node spec §4.3b step 3 describes, stamping every synthesized
// node with the triggering Note/NoteReference's own source location.
func noteMarker(n int, margin bool, src sourcemap.SourceInfo) ast.Inline {
	num := strconv.Itoa(n)
	link := &ast.Link{
		Attr:    refAttr(),
		Content: []ast.Inline{&ast.Str{Text: num}},
		Target:  "#fn" + num,
	}
	sup := &ast.Superscript{Content: []ast.Inline{link}}
	span := &ast.Span{Attr: spanAttr(n, margin), Content: []ast.Inline{sup}}
	for _, node := range []ast.Inline{link, link.Content[0], sup, span} {
		node.SetSource(src)
	}
	return span
}

func refAttr() ast.Attr {
	a := ast.NewAttr()
	a.Classes = []string{"footnote-ref"}
	a.Set("role", "doc-noteref")
	return a
}

func spanAttr(n int, margin bool) ast.Attr {
	a := ast.NewAttr()
	a.Identifier = "fnref" + strconv.Itoa(n)
	if margin {
		a.Classes = []string{"margin-note"}
	}
	return a
}

// buildSection assembles the trailing `Div(id=footnotes) [HorizontalRule,
// OrderedList [...]]` section (spec §4.3b step 4).
func buildSection(st *state) ast.Block {
	var items [][]ast.Block
	for _, id := range st.order {
		d := st.defs[id]
		items = append(items, []ast.Block{wrapDefinition(d)})
	}
	list := &ast.OrderedList{Start: 1, Style: ast.Decimal, Delim: ast.Period, Items: items}
	div := &ast.Div{
		Attr:    footnotesAttr(),
		Content: []ast.Block{&ast.HorizontalRule{}, list},
	}
	return div
}

func footnotesAttr() ast.Attr {
	a := ast.NewAttr()
	a.Identifier = "footnotes"
	a.Classes = []string{"footnotes", "section"}
	a.Set("role", "doc-endnotes")
	return a
}

// wrapDefinition builds `Div(id=fn{N}) [content..., backlink appended]`.
func wrapDefinition(d *definition) ast.Block {
	num := strconv.Itoa(d.number)
	back := &ast.Link{
		Attr:    backAttr(),
		Content: []ast.Inline{&ast.Str{Text: "↩︎"}},
		Target:  "#fnref" + num,
	}
	content := append([]ast.Block{}, d.content...)
	if len(content) == 0 {
		content = []ast.Block{&ast.Paragraph{Content: []ast.Inline{back}}}
	} else {
		last := content[len(content)-1]
		switch p := last.(type) {
		case *ast.Paragraph:
			p.Content = append(p.Content, back)
		case *ast.Plain:
			np := &ast.Paragraph{Content: append(append([]ast.Inline{}, p.Content...), back)}
			np.SetSource(p.Source())
			content[len(content)-1] = np
		default:
			content = append(content, &ast.Paragraph{Content: []ast.Inline{back}})
		}
	}
	divAttr := ast.NewAttr()
	divAttr.Identifier = "fn" + num
	return &ast.Div{Attr: divAttr, Content: content}
}

func backAttr() ast.Attr {
	a := ast.NewAttr()
	a.Classes = []string{"footnote-back"}
	a.Set("role", "doc-backlink")
	return a
}
