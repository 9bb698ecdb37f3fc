package cst

import (
	"strings"
)

// splitTrailingAttr detects a trailing `{...}` attribute specifier on a
// heading or fenced code block's info line and splits it off, returning
// the remaining content text and an "attribute_specifier" node (or nil
// if none was present). Byte offsets on the returned node are relative
// to the start of `text`; callers with an absolute base offset must add
// it themselves the same way scanBlocks does for inline content.
func splitTrailingAttr(text string) (string, *Node) {
	t := strings.TrimRight(text, " \t")
	if !strings.HasSuffix(t, "}") {
		return text, nil
	}
	open := strings.LastIndex(t, "{")
	if open < 0 {
		return text, nil
	}
	inner := t[open+1 : len(t)-1]
	node := &Node{kind: "attribute_specifier", named: true, startByte: uint32(open), endByte: uint32(len(t))}
	for _, tok := range splitAttrTokens(inner) {
		switch {
		case strings.HasPrefix(tok, "#"):
			n := &Node{kind: "attribute_id", named: true}
			n.value = tok[1:]
			node.children = append(node.children, n)
		case strings.HasPrefix(tok, "."):
			n := &Node{kind: "attribute_class", named: true}
			n.value = tok[1:]
			node.children = append(node.children, n)
		case strings.Contains(tok, "="):
			idx := strings.Index(tok, "=")
			key := tok[:idx]
			val := strings.Trim(tok[idx+1:], `"'`)
			n := &Node{kind: "key_value_specifier", named: true}
			n.value = key + "=" + val
			node.children = append(node.children, n)
		case tok != "":
			n := &Node{kind: "attribute_class", named: true}
			n.value = tok
			node.children = append(node.children, n)
		}
	}
	return strings.TrimRight(text[:open], " \t"), node
}

func splitAttrTokens(s string) []string {
	var out []string
	var cur strings.Builder
	inQuote := false
	for _, r := range s {
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

// scanInlineString tokenizes a text span into inline concrete-syntax
// nodes. base is the absolute byte offset of text[0] in the original
// source buffer, so every emitted node carries a correct byte range.
func (s *scanner) scanInlineString(text string, base uint32) []*Node {
	src := []byte(text)
	var out []*Node
	i := 0
	n := len(src)

	flushStr := func(from, to int) {
		if to > from {
			out = append(out, s.leaf("pandoc_str", base+uint32(from), base+uint32(to)))
		}
	}

	runStart := 0
	for i < n {
		c := src[i]
		switch {
		case c == '\n':
			flushStr(runStart, i)
			out = append(out, s.leaf("pandoc_softbreak", base+uint32(i), base+uint32(i+1)))
			i++
			runStart = i

		case c == ' ' || c == '\t':
			flushStr(runStart, i)
			j := i
			for j < n && (src[j] == ' ' || src[j] == '\t') {
				j++
			}
			out = append(out, s.leaf("pandoc_space", base+uint32(i), base+uint32(j)))
			i = j
			runStart = i

		case c == '\\' && i+1 < n && isPunct(src[i+1]):
			flushStr(runStart, i)
			out = append(out, s.leaf("pandoc_str", base+uint32(i+1), base+uint32(i+2)))
			i += 2
			runStart = i

		case matchRun(src, i, '*', 2) || matchRun(src, i, '_', 2):
			marker := src[i : i+2]
			close := indexOfRun(src, i+2, marker)
			if close < 0 {
				i++
				continue
			}
			flushStr(runStart, i)
			inner := s.scanInlineString(string(src[i+2:close]), base+uint32(i+2))
			node := &Node{kind: "pandoc_strong", named: true, startByte: base + uint32(i), endByte: base + uint32(close+2), children: inner}
			out = append(out, node)
			i = close + 2
			runStart = i

		case c == '~' && i+1 < n && src[i+1] == '~':
			close := indexOfRun(src, i+2, []byte("~~"))
			if close < 0 {
				i++
				continue
			}
			flushStr(runStart, i)
			inner := s.scanInlineString(string(src[i+2:close]), base+uint32(i+2))
			node := &Node{kind: "pandoc_strikeout", named: true, startByte: base + uint32(i), endByte: base + uint32(close+2), children: inner}
			out = append(out, node)
			i = close + 2
			runStart = i

		case c == '*' || c == '_':
			close := indexOfByte(src, i+1, c)
			if close < 0 {
				i++
				continue
			}
			flushStr(runStart, i)
			inner := s.scanInlineString(string(src[i+1:close]), base+uint32(i+1))
			node := &Node{kind: "pandoc_emph", named: true, startByte: base + uint32(i), endByte: base + uint32(close+1), children: inner}
			out = append(out, node)
			i = close + 1
			runStart = i

		case c == '`':
			j := i
			for j < n && src[j] == '`' {
				j++
			}
			fence := src[i:j]
			close := indexOfRun(src, j, fence)
			if close < 0 {
				i = j
				continue
			}
			flushStr(runStart, i)
			node := s.leaf("pandoc_code", base+uint32(i), base+uint32(close+len(fence)))
			node.value = string(src[j:close])
			out = append(out, node)
			i = close + len(fence)
			runStart = i

		case c == '[' && i+1 < n && src[i+1] == '^':
			end := indexOfByte(src, i+2, ']')
			if end < 0 {
				i++
				continue
			}
			flushStr(runStart, i)
			node := s.leaf("inline_note_reference", base+uint32(i), base+uint32(end+1))
			node.value = string(src[i+2 : end])
			out = append(out, node)
			i = end + 1
			runStart = i

		case c == '!' && i+1 < n && src[i+1] == '[':
			linkNode, next, ok := s.scanLinkLike(src, i+1, base, "pandoc_image")
			if !ok {
				i++
				continue
			}
			flushStr(runStart, i)
			linkNode.startByte = base + uint32(i)
			out = append(out, linkNode)
			i = next
			runStart = i

		case c == '[':
			if linkNode, next, ok := s.scanLinkLike(src, i, base, "pandoc_link"); ok {
				flushStr(runStart, i)
				out = append(out, linkNode)
				i = next
				runStart = i
				continue
			}
			if spanNodes, next, ok := s.scanSpanAttr(src, i, base); ok {
				flushStr(runStart, i)
				out = append(out, spanNodes...)
				i = next
				runStart = i
				continue
			}
			i++

		case c == '{' && i+3 < n && src[i+1] == '{' && src[i+2] == '{' && src[i+3] == '<':
			close := indexOfRun(src, i+4, []byte(">}}}"))
			if close < 0 {
				i++
				continue
			}
			flushStr(runStart, i)
			node := s.leaf("shortcode_escaped", base+uint32(i), base+uint32(close+4))
			node.value = string(src[i+4 : close])
			out = append(out, node)
			i = close + 4
			runStart = i

		case c == '{' && i+2 < n && src[i+1] == '{' && src[i+2] == '<':
			close := indexOfRun(src, i+3, []byte(">}}"))
			if close < 0 {
				i++
				continue
			}
			flushStr(runStart, i)
			node := s.leaf("shortcode", base+uint32(i), base+uint32(close+3))
			node.value = string(src[i+3 : close])
			out = append(out, node)
			i = close + 3
			runStart = i

		case c == '"':
			close := indexOfByte(src, i+1, '"')
			if close < 0 {
				i++
				continue
			}
			flushStr(runStart, i)
			inner := s.scanInlineString(string(src[i+1:close]), base+uint32(i+1))
			node := &Node{kind: "pandoc_double_quote", named: true, startByte: base + uint32(i), endByte: base + uint32(close+1), children: inner}
			out = append(out, node)
			i = close + 1
			runStart = i

		default:
			i++
		}
	}
	flushStr(runStart, i)
	return out
}

func (s *scanner) leaf(kind string, start, end uint32) *Node {
	return &Node{kind: kind, named: true, startByte: start, endByte: end, startPoint: s.pointFor(start), endPoint: s.pointFor(end)}
}

// scanLinkLike scans a `[text](target "title")` construct starting at
// the '[' byte. Returns the built node, the index just past it, and
// whether a well-formed link/image was found at all.
func (s *scanner) scanLinkLike(src []byte, open int, base uint32, kind string) (*Node, int, bool) {
	close := indexOfByte(src, open+1, ']')
	if close < 0 || close+1 >= len(src) || src[close+1] != '(' {
		return nil, 0, false
	}
	parenClose := indexOfByte(src, close+2, ')')
	if parenClose < 0 {
		return nil, 0, false
	}
	inner := s.scanInlineString(string(src[open+1:close]), base+uint32(open+1))
	target := string(src[close+2 : parenClose])
	title := ""
	if sp := strings.IndexByte(target, ' '); sp >= 0 {
		title = strings.Trim(target[sp+1:], `" `)
		target = target[:sp]
	}
	node := &Node{kind: kind, named: true, startByte: base + uint32(open), endByte: base + uint32(parenClose+1), children: inner}
	targetNode := &Node{kind: "link_target", named: true}
	targetNode.value = target
	titleNode := &Node{kind: "link_title", named: true}
	titleNode.value = title
	node.children = append(node.children, targetNode, titleNode)
	return node, parenClose + 1, true
}

// scanSpanAttr scans a `[content]{.class #id k=v}` attributed span
// starting at the '[' byte. The attribute specifier is emitted as a
// sibling node immediately following the span content, the same
// transient-attribute shape splitTrailingAttr produces for headings and
// fenced code blocks; package parser's postprocess step attaches it to
// the span and removes it.
func (s *scanner) scanSpanAttr(src []byte, open int, base uint32) ([]*Node, int, bool) {
	close := indexOfByte(src, open+1, ']')
	if close < 0 || close+1 >= len(src) || src[close+1] != '{' {
		return nil, 0, false
	}
	braceClose := indexOfByte(src, close+2, '}')
	if braceClose < 0 {
		return nil, 0, false
	}
	inner := s.scanInlineString(string(src[open+1:close]), base+uint32(open+1))
	spanNode := &Node{
		kind: "pandoc_span_bracket", named: true,
		startByte: base + uint32(open), endByte: base + uint32(close+1),
		children: inner,
	}
	attrRaw := string(src[close+1 : braceClose+1])
	_, attrNode := splitTrailingAttr(attrRaw)
	if attrNode == nil {
		attrNode = &Node{kind: "attribute_specifier", named: true}
	}
	attrNode.startByte = base + uint32(close+1)
	attrNode.endByte = base + uint32(braceClose+1)
	return []*Node{spanNode, attrNode}, braceClose + 1, true
}

func isPunct(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return false
	default:
		return true
	}
}

func matchRun(src []byte, i int, c byte, n int) bool {
	if i+n > len(src) {
		return false
	}
	for k := 0; k < n; k++ {
		if src[i+k] != c {
			return false
		}
	}
	return true
}

func indexOfByte(src []byte, from int, b byte) int {
	for i := from; i < len(src); i++ {
		if src[i] == b {
			return i
		}
	}
	return -1
}

func indexOfRun(src []byte, from int, run []byte) int {
	for i := from; i+len(run) <= len(src); i++ {
		match := true
		for k := range run {
			if src[i+k] != run[k] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
