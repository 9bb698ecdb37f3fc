package parser

import (
	"strings"

	"github.com/quarto-dev/quartomd-go/ast"
	"github.com/quarto-dev/quartomd-go/cst"
	"github.com/quarto-dev/quartomd-go/diag"
)

// visitInlineNodes visits a sequence of sibling concrete inline nodes,
// splicing any IInlines results. Trailing attribute specifiers are kept
// in the sequence as AttrInline nodes for postprocess to consume (spec
// §3/§4.2); unknown kinds are dropped with a diagnostic.
func (v *Visitor) visitInlineNodes(nodes []*cst.Node) []ast.Inline {
	var out []ast.Inline
	for _, n := range nodes {
		switch im := v.visitInline(n).(type) {
		case IInline:
			out = append(out, im.Inline)
		case IInlines:
			out = append(out, im.Inlines...)
		case IUnknown:
			v.ctx.Diagnostics.Push(newUnknownDiag(im))
		}
	}
	return out
}

func (v *Visitor) visitInline(n *cst.Node) Intermediate {
	switch n.Kind() {
	case "pandoc_str":
		text := smartenQuotes(string(v.src[n.StartByte():n.EndByte()]))
		s := &ast.Str{Text: text}
		s.SetSource(v.srcInfo(n))
		return IInline{s}

	case "pandoc_space":
		sp := &ast.Space{}
		sp.SetSource(v.srcInfo(n))
		return IInline{sp}

	case "pandoc_softbreak":
		sb := &ast.SoftBreak{}
		sb.SetSource(v.srcInfo(n))
		return IInline{sb}

	case "pandoc_emph":
		e := &ast.Emph{Content: v.visitInlineNodes(n.Children())}
		e.SetSource(v.srcInfo(n))
		return IInline{e}

	case "pandoc_strong":
		st := &ast.Strong{Content: v.visitInlineNodes(n.Children())}
		st.SetSource(v.srcInfo(n))
		return IInline{st}

	case "pandoc_strikeout":
		sk := &ast.Strikeout{Content: v.visitInlineNodes(n.Children())}
		sk.SetSource(v.srcInfo(n))
		return IInline{sk}

	case "pandoc_code":
		c := &ast.Code{Attr: ast.NewAttr(), Text: n.Value()}
		c.SetSource(v.srcInfo(n))
		return IInline{c}

	case "pandoc_double_quote":
		q := &ast.Quoted{Type: ast.DoubleQuote, Content: v.visitInlineNodes(n.Children())}
		q.SetSource(v.srcInfo(n))
		return IInline{q}

	case "inline_note_reference":
		ref := &ast.NoteReference{ID: n.Value()}
		ref.SetSource(v.srcInfo(n))
		return IInline{ref}

	case "pandoc_link":
		return v.visitLinkLike(n, false)

	case "pandoc_image":
		return v.visitLinkLike(n, true)

	case "pandoc_span_bracket":
		sp := &ast.Span{Attr: ast.NewAttr(), Content: v.visitInlineNodes(n.Children())}
		sp.SetSource(v.srcInfo(n))
		return IInline{sp}

	case "attribute_specifier":
		attr, info := v.buildAttr(n)
		ai := &ast.AttrInline{Attr: attr, AttrInfo: info}
		ai.SetSource(v.srcInfo(n))
		return IInline{ai}

	case "shortcode":
		return v.visitShortcode(n, false)

	case "shortcode_escaped":
		return v.visitShortcode(n, true)

	default:
		return IUnknown{Kind: n.Kind(), Src: v.srcInfo(n)}
	}
}

func (v *Visitor) visitLinkLike(n *cst.Node, image bool) Intermediate {
	var content []ast.Inline
	var target, title string
	for _, c := range n.Children() {
		switch c.Kind() {
		case "link_target":
			target = c.Value()
		case "link_title":
			title = c.Value()
		default:
			content = append(content, v.visitInlineNodes([]*cst.Node{c})...)
		}
	}
	if image {
		img := &ast.Image{Attr: ast.NewAttr(), Content: content, Target: target, Title: title}
		img.SetSource(v.srcInfo(n))
		return IInline{img}
	}
	l := &ast.Link{Attr: ast.NewAttr(), Content: content, Target: target, Title: title}
	l.SetSource(v.srcInfo(n))
	return IInline{l}
}

// visitShortcode parses the raw `name args...` text captured inside
// `{{< ... >}}` (or `{{{< ... >}}}` when escaped) into a Shortcode
// inline. Arguments are whitespace-separated tokens; `key=value` tokens
// become keyword args, everything else positional, matching the
// handler-dispatch shape transform/shortcode expects.
func (v *Visitor) visitShortcode(n *cst.Node, escaped bool) Intermediate {
	raw := strings.TrimSpace(n.Value())
	tokens := splitShortcodeTokens(raw)
	sc := &ast.Shortcode{IsEscaped: escaped}
	if len(tokens) > 0 {
		sc.Name = tokens[0]
	}
	for _, tok := range tokens[1:] {
		if key, val, ok := strings.Cut(tok, "="); ok {
			sc.KeywordArgs = append(sc.KeywordArgs, ast.ShortcodeArg{Key: key, Value: unquoteShortcodeArg(val)})
		} else {
			sc.PositionalArgs = append(sc.PositionalArgs, unquoteShortcodeArg(tok))
		}
	}
	sc.SetSource(v.srcInfo(n))
	return IInline{sc}
}

func splitShortcodeTokens(raw string) []string {
	var out []string
	var cur strings.Builder
	inQuote := false
	for _, r := range raw {
		switch {
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
		case r == ' ' && !inQuote:
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

func unquoteShortcodeArg(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// smartenQuotes converts straight single/double quote characters to
// their curly typographic equivalents (spec §4.2 "Smart-quote
// processing"). Double quotes are tokenized into pandoc_double_quote
// containers by the scanner before reaching here; this only needs to
// handle the apostrophe/single-quote case that survives inside a Str run.
func smartenQuotes(s string) string {
	if !strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		return s
	}
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		switch r {
		case '\'':
			if i == 0 || isOpenQuoteContext(runes[i-1]) {
				b.WriteRune('‘')
			} else {
				b.WriteRune('’')
			}
		case '"':
			if i == 0 || isOpenQuoteContext(runes[i-1]) {
				b.WriteRune('“')
			} else {
				b.WriteRune('”')
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isOpenQuoteContext(prev rune) bool {
	switch prev {
	case '(', '[', '{', '-', '‘', '“':
		return true
	default:
		return false
	}
}

func newUnknownDiag(im IUnknown) diag.Message {
	return diag.NewBuilder(diag.Hint, "unrecognized node", im.Src).
		Problem("concrete syntax node kind \"" + im.Kind + "\" has no parser mapping and was skipped").
		Build()
}
