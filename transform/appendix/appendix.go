// Package appendix implements spec §4.3d: consolidating appendix-classed
// Divs, the bibliography, and the footnotes section into a single
// trailing `Div#quarto-appendix` container.
package appendix

import (
	"strings"

	"github.com/quarto-dev/quartomd-go/ast"
)

// Style is the metadata `appendix-style` value gating this pass.
type Style int

const (
	StyleDefault Style = iota
	StylePlain
	StyleNone
)

// ParseStyle maps the metadata string to a Style, defaulting to
// StyleDefault for any unrecognized or absent value.
func ParseStyle(s string) Style {
	switch s {
	case "plain":
		return StylePlain
	case "none":
		return StyleNone
	default:
		return StyleDefault
	}
}

func (s Style) className() string {
	if s == StylePlain {
		return "plain"
	}
	return "default"
}

// Options carries the gating configuration: consolidation does not run
// for a book or for StyleNone, and with reference-location margin the
// bibliography and footnotes section are left in place.
type Options struct {
	ReferenceLocationMargin bool
	IsBook                  bool
	Style                   Style
}

// Consolidate collects the appendix-classed Divs, bibliography, and
// footnotes section (if still present as a top-level block) and, if
// anything was collected and the pass isn't disabled, appends a single
// wrapping Div to the document.
func Consolidate(doc *ast.Pandoc, opts Options) {
	if opts.Style == StyleNone || opts.IsBook {
		return
	}

	var collected []ast.Block
	doc.Blocks, collected = extractClass(doc.Blocks, "appendix")

	if !opts.ReferenceLocationMargin {
		var biblio ast.Block
		doc.Blocks, biblio = extractBibliography(doc.Blocks)
		if biblio != nil {
			collected = append(collected, biblio)
		}

		var footnotes ast.Block
		doc.Blocks, footnotes = extractByID(doc.Blocks, "footnotes")
		if footnotes != nil {
			collected = append(collected, footnotes)
		}
	}

	collected = append(collected, metadataSections(doc.Meta)...)

	if len(collected) == 0 {
		return
	}
	div := &ast.Div{
		Attr:    appendixAttr(opts.Style),
		Content: collected,
	}
	doc.Blocks = append(doc.Blocks, div)
}

func appendixAttr(style Style) ast.Attr {
	a := ast.NewAttr()
	a.Identifier = "quarto-appendix"
	a.Classes = []string{style.className()}
	return a
}

// extractClass removes every top-level Div carrying the given class,
// returning the pruned block list and the removed Divs in order.
func extractClass(blocks []ast.Block, class string) ([]ast.Block, []ast.Block) {
	out := make([]ast.Block, 0, len(blocks))
	var removed []ast.Block
	for _, b := range blocks {
		if d, ok := b.(*ast.Div); ok && d.Attr.HasClass(class) {
			removed = append(removed, d)
			continue
		}
		out = append(out, b)
	}
	return out, removed
}

// extractByID removes the first top-level Div with the given id.
func extractByID(blocks []ast.Block, id string) ([]ast.Block, ast.Block) {
	for i, b := range blocks {
		if d, ok := b.(*ast.Div); ok && d.Attr.Identifier == id {
			out := make([]ast.Block, 0, len(blocks)-1)
			out = append(out, blocks[:i]...)
			out = append(out, blocks[i+1:]...)
			return out, d
		}
	}
	return blocks, nil
}

// extractBibliography removes the first top-level Div matching the
// bibliography convention (`id="refs"` or class "references"), wrapping
// it in `Div#quarto-bibliography` prefixed by a level-2 "References"
// header (spec §4.3d step 2).
func extractBibliography(blocks []ast.Block) ([]ast.Block, ast.Block) {
	for i, b := range blocks {
		d, ok := b.(*ast.Div)
		if !ok {
			continue
		}
		if d.Attr.Identifier != "refs" && !d.Attr.HasClass("references") {
			continue
		}
		out := make([]ast.Block, 0, len(blocks)-1)
		out = append(out, blocks[:i]...)
		out = append(out, blocks[i+1:]...)

		wrapAttr := ast.NewAttr()
		wrapAttr.Identifier = "quarto-bibliography"
		wrapAttr.Classes = []string{"section"}
		wrapAttr.Set("role", "doc-bibliography")
		wrapped := &ast.Div{
			Attr: wrapAttr,
			Content: []ast.Block{
				&ast.Header{Level: 2, Content: []ast.Inline{&ast.Str{Text: "References"}}},
				d,
			},
		}
		return out, wrapped
	}
	return blocks, nil
}

var metadataSectionKeys = []string{"license", "copyright", "citation"}

// metadataSections builds a section per present metadata key in
// metadataSectionKeys (spec §4.3d step 4), each a
// `Div(id=<key>, classes=[section])` with a capitalized level-2 header
// and the flattened metadata value as a paragraph.
func metadataSections(meta ast.ConfigMap) []ast.Block {
	var out []ast.Block
	for _, key := range metadataSectionKeys {
		v, ok := meta.Get(key)
		if !ok {
			continue
		}
		content, ok := sectionContent(v)
		if !ok {
			continue
		}
		attr := ast.NewAttr()
		attr.Identifier = key
		attr.Classes = []string{"section"}
		title := strings.ToUpper(key[:1]) + key[1:]
		out = append(out, &ast.Div{
			Attr: attr,
			Content: []ast.Block{
				&ast.Header{Level: 2, Content: []ast.Inline{&ast.Str{Text: title}}},
				&ast.Paragraph{Content: content},
			},
		})
	}
	return out
}

func sectionContent(v ast.ConfigValue) ([]ast.Inline, bool) {
	switch val := v.(type) {
	case ast.Scalar:
		s, ok := val.AsStr()
		if !ok {
			return nil, false
		}
		return []ast.Inline{&ast.Str{Text: s}}, true
	case ast.PandocInlines:
		return val.Inlines, true
	case ast.PandocBlocks:
		return []ast.Inline{&ast.Str{Text: ast.StringifyBlocks(val.Blocks)}}, true
	default:
		return nil, false
	}
}
