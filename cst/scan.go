package cst

import (
	"regexp"
	"strconv"
	"strings"
)

// Parse scans raw UTF-8 Quarto Markdown bytes into a concrete syntax
// tree. It is deliberately small (see package doc / SPEC_FULL.md §D.1):
// a line-oriented block scanner plus a single-pass inline tokenizer,
// covering the node-kind vocabulary package parser's visitor switches on.
func Parse(source []byte) (*Tree, error) {
	s := &scanner{src: source, lines: splitLines(source)}
	root := s.newNode("document", true, 0, uint32(len(source)))
	root.children = s.scanBlocks(0, len(s.lines))
	return &Tree{root: root, source: source}, nil
}

type line struct {
	start, end uint32 // end excludes the newline
	nlEnd      uint32 // end including the newline, or == end at EOF
}

func splitLines(src []byte) []line {
	var lines []line
	start := 0
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			lines = append(lines, line{start: uint32(start), end: uint32(i), nlEnd: uint32(i + 1)})
			start = i + 1
		}
	}
	if start < len(src) {
		lines = append(lines, line{start: uint32(start), end: uint32(len(src)), nlEnd: uint32(len(src))})
	}
	return lines
}

type scanner struct {
	src   []byte
	lines []line
}

func (s *scanner) pointFor(offset uint32) Point {
	row := 0
	for i, l := range s.lines {
		if offset >= l.start && offset <= l.nlEnd {
			row = i
			return Point{Row: uint32(row), Column: offset - l.start}
		}
	}
	if len(s.lines) > 0 {
		last := s.lines[len(s.lines)-1]
		return Point{Row: uint32(len(s.lines) - 1), Column: offset - last.start}
	}
	return Point{}
}

func (s *scanner) newNode(kind string, named bool, start, end uint32) *Node {
	return &Node{
		kind:       kind,
		named:      named,
		startByte:  start,
		endByte:    end,
		startPoint: s.pointFor(start),
		endPoint:   s.pointFor(end),
	}
}

func (s *scanner) lineText(i int) string {
	l := s.lines[i]
	return string(s.src[l.start:l.end])
}

var (
	reHeading   = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*$`)
	reFence     = regexp.MustCompile("^(```+|~~~+)\\s*(.*?)\\s*$")
	reBullet    = regexp.MustCompile(`^(\s*)([-*+])\s+(.*)$`)
	reOrdered   = regexp.MustCompile(`^(\s*)(\d+)([.)])\s+(.*)$`)
	reExample   = regexp.MustCompile(`^(\s*)\(@([A-Za-z0-9_-]*)\)\s+(.*)$`)
	reHRule     = regexp.MustCompile(`^\s*([-*_])(\s*\1){2,}\s*$`)
	reBlockquote = regexp.MustCompile(`^>\s?(.*)$`)
	reFootnoteDef = regexp.MustCompile(`^\[\^([^\]]+)\]:\s?(.*)$`)
	reTableRow     = regexp.MustCompile(`^\s*\|.*\|?\s*$`)
	reTableDelim   = regexp.MustCompile(`^\s*\|?\s*:?-{1,}:?\s*(\|\s*:?-{1,}:?\s*)*\|?\s*$`)
	reTableCaption = regexp.MustCompile(`^:\s+(.*)$`)
)

// scanBlocks scans lines[lo:hi) into a sequence of block nodes.
func (s *scanner) scanBlocks(lo, hi int) []*Node {
	var out []*Node
	i := lo
	for i < hi {
		text := s.lineText(i)
		trimmed := strings.TrimSpace(text)

		switch {
		case trimmed == "":
			i++
			continue

		case reHRule.MatchString(text) && !reBullet.MatchString(text):
			out = append(out, s.newNode("thematic_break", true, s.lines[i].start, s.lines[i].end))
			i++

		case reHeading.MatchString(trimmed):
			m := reHeading.FindStringSubmatch(trimmed)
			level := len(m[1])
			node := s.newNode("atx_heading", true, s.lines[i].start, s.lines[i].end)
			node.children = append(node.children, s.levelNode(level))
			content, attr := splitTrailingAttr(m[2])
			contentStart := s.lines[i].start + uint32(strings.Index(text, m[2]))
			node.children = append(node.children, s.scanInlineString(content, contentStart)...)
			if attr != nil {
				node.children = append(node.children, attr)
			}
			out = append(out, node)
			i++

		case reFence.MatchString(trimmed):
			m := reFence.FindStringSubmatch(trimmed)
			fence := m[1]
			lang := m[2]
			start := s.lines[i].start
			j := i + 1
			for j < hi && !strings.HasPrefix(strings.TrimSpace(s.lineText(j)), fence[:3]) {
				j++
			}
			bodyStartLine := i + 1
			bodyEndLine := j - 1 // inclusive; may be < bodyStartLine for an empty body
			closed := j < hi
			end := s.lines[i].end
			if closed {
				end = s.lines[j].end
			} else if hi > i+1 {
				end = s.lines[hi-1].end
			}
			node := s.newNode("fenced_code_block", true, start, end)
			// splitTrailingAttr also catches the whole-string `{python}` form
			// quarto fences use, since it matches on a trailing "}" suffix.
			format, attr := splitTrailingAttr(lang)
			if format != "" {
				info := s.newNode("info_string", true, 0, 0)
				info.value = format
				node.children = append(node.children, info)
			}
			if attr != nil {
				node.children = append(node.children, attr)
			}
			if bodyEndLine >= bodyStartLine {
				bodyStart := s.lines[bodyStartLine].start
				bodyEnd := s.lines[bodyEndLine].end
				code := s.newNode("code_fence_content", true, bodyStart, bodyEnd)
				node.children = append(node.children, code)
			}
			out = append(out, node)
			if closed {
				i = j + 1
			} else {
				i = hi
			}

		case reFootnoteDef.MatchString(text):
			m := reFootnoteDef.FindStringSubmatch(text)
			start := s.lines[i].start
			j := i + 1
			for j < hi && (strings.HasPrefix(s.lineText(j), "    ") || strings.HasPrefix(s.lineText(j), "\t")) {
				j++
			}
			end := s.lines[j-1].end
			node := s.newNode("note_definition_para", true, start, end)
			idNode := s.newNode("footnote_id", true, start, start+uint32(len(m[1])))
			idNode.value = m[1]
			node.children = append(node.children, idNode)
			contentStart := s.lines[i].start + uint32(strings.Index(text, m[2]))
			node.children = append(node.children, s.scanInlineString(m[2], contentStart)...)
			out = append(out, node)
			i = j

		case reBlockquote.MatchString(text):
			start := s.lines[i].start
			j := i
			var innerLines []line
			for j < hi && reBlockquote.MatchString(s.lineText(j)) {
				mm := reBlockquote.FindStringSubmatch(s.lineText(j))
				stripped := s.lines[j].end - uint32(len(mm[1]))
				innerLines = append(innerLines, line{start: stripped, end: s.lines[j].end, nlEnd: s.lines[j].nlEnd})
				j++
			}
			end := s.lines[j-1].end
			node := s.newNode("block_quote", true, start, end)
			savedLines := s.lines
			s.lines = append(append([]line{}, savedLines[:0]...), innerLines...)
			node.children = s.scanBlocks(0, len(innerLines))
			s.lines = savedLines
			out = append(out, node)
			i = j

		case reBullet.MatchString(text), reOrdered.MatchString(text), reExample.MatchString(text):
			node, next := s.scanList(i, hi)
			out = append(out, node)
			i = next

		case reTableRow.MatchString(text) && i+1 < hi && reTableDelim.MatchString(s.lineText(i+1)):
			node, next := s.scanPipeTable(i, hi)
			out = append(out, node)
			i = next
			if i < hi && reTableCaption.MatchString(s.lineText(i)) {
				m := reTableCaption.FindStringSubmatch(s.lineText(i))
				cstart := s.lines[i].start
				cend := s.lines[i].end
				capNode := s.newNode("pandoc_table_caption", true, cstart, cend)
				contentStart := cstart + uint32(strings.Index(s.lineText(i), m[1]))
				capNode.children = s.scanInlineString(m[1], contentStart)
				out = append(out, capNode)
				i++
			}

		default:
			start := s.lines[i].start
			j := i
			for j < hi {
				t := strings.TrimSpace(s.lineText(j))
				if t == "" {
					break
				}
				if j != i && isBlockStarter(s.lineText(j)) {
					break
				}
				j++
			}
			end := s.lines[j-1].end
			node := s.newNode("pandoc_paragraph", true, start, end)
			node.children = s.scanInlineString(string(s.src[start:end]), start)
			out = append(out, node)
			i = j
		}
	}
	return out
}

func isBlockStarter(text string) bool {
	trimmed := strings.TrimSpace(text)
	return reHeading.MatchString(trimmed) || reFence.MatchString(trimmed) ||
		reBullet.MatchString(text) || reOrdered.MatchString(text) || reExample.MatchString(text) ||
		reHRule.MatchString(text) || reBlockquote.MatchString(text) || reFootnoteDef.MatchString(text) ||
		reTableRow.MatchString(text)
}

// splitTableRow splits one pipe-table row into its raw cell texts,
// dropping leading/trailing empty cells produced by outer pipes and
// respecting backslash-escaped pipes within a cell.
func splitTableRow(text string) []string {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimPrefix(trimmed, "|")
	trimmed = strings.TrimSuffix(trimmed, "|")
	var cells []string
	var cur strings.Builder
	escaped := false
	for _, r := range trimmed {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			cur.WriteRune(r)
			escaped = true
		case r == '|':
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	cells = append(cells, strings.TrimSpace(cur.String()))
	return cells
}

// cellAlignment classifies one delimiter-row cell's alignment markers.
func cellAlignment(spec string) string {
	spec = strings.TrimSpace(spec)
	left := strings.HasPrefix(spec, ":")
	right := strings.HasSuffix(spec, ":")
	switch {
	case left && right:
		return "center"
	case left:
		return "left"
	case right:
		return "right"
	default:
		return "default"
	}
}

// scanPipeTable scans a pipe-table block: a header row, a delimiter row,
// then consecutive body rows. Returns the built node and the index of
// the line just past the table.
func (s *scanner) scanPipeTable(lo, hi int) (*Node, int) {
	start := s.lines[lo].start
	headerCells := splitTableRow(s.lineText(lo))
	headerNode := s.newNode("pipe_table_header", true, s.lines[lo].start, s.lines[lo].end)
	headerStart := s.lines[lo].start
	for _, c := range headerCells {
		cellStart := headerStart + uint32(strings.Index(s.lineText(lo), c))
		cellNode := s.newNode("pipe_table_cell", true, cellStart, cellStart+uint32(len(c)))
		cellNode.children = s.scanInlineString(c, cellStart)
		headerNode.children = append(headerNode.children, cellNode)
	}

	delimCells := splitTableRow(s.lineText(lo + 1))
	delimNode := s.newNode("pipe_table_delimiter", true, s.lines[lo+1].start, s.lines[lo+1].end)
	for _, c := range delimCells {
		alignNode := s.newNode("pipe_table_align", false, 0, 0)
		alignNode.value = cellAlignment(c)
		delimNode.children = append(delimNode.children, alignNode)
	}

	j := lo + 2
	var rowNodes []*Node
	for j < hi {
		text := s.lineText(j)
		if strings.TrimSpace(text) == "" || !reTableRow.MatchString(text) || reTableDelim.MatchString(text) {
			break
		}
		cells := splitTableRow(text)
		rowNode := s.newNode("pipe_table_row", true, s.lines[j].start, s.lines[j].end)
		for _, c := range cells {
			cellStart := s.lines[j].start + uint32(strings.Index(text, c))
			cellNode := s.newNode("pipe_table_cell", true, cellStart, cellStart+uint32(len(c)))
			cellNode.children = s.scanInlineString(c, cellStart)
			rowNode.children = append(rowNode.children, cellNode)
		}
		rowNodes = append(rowNodes, rowNode)
		j++
	}
	end := s.lines[j-1].end
	node := s.newNode("pipe_table", true, start, end)
	node.children = append(node.children, headerNode, delimNode)
	node.children = append(node.children, rowNodes...)
	return node, j
}

func (s *scanner) levelNode(level int) *Node {
	n := s.newNode("heading_level", false, 0, 0)
	n.value = string(rune('0' + level))
	return n
}

// scanList groups consecutive list-item lines of the same kind starting
// at lo into one list node, one list_item child per item. It does not
// decide tightness: the parser's visitList does that from the items'
// row positions and block content.
func (s *scanner) scanList(lo, hi int) (*Node, int) {
	isOrdered := reOrdered.MatchString(s.lineText(lo)) || reExample.MatchString(s.lineText(lo))
	kind := "bullet_list"
	if isOrdered {
		kind = "ordered_list"
	}
	start := s.lines[lo].start
	var items []*Node
	i := lo
	startIndex := 1
	isExample := reExample.MatchString(s.lineText(lo))
	first := true
	for i < hi {
		text := s.lineText(i)
		var marker, rest string
		matched := false
		if m := reBullet.FindStringSubmatch(text); m != nil && !isOrdered {
			marker, rest = m[2], m[3]
			matched = true
		} else if m := reOrdered.FindStringSubmatch(text); m != nil && isOrdered && !isExample {
			marker, rest = m[2]+m[3], m[4]
			matched = true
			if first {
				if n := parseLeadingInt(m[2]); n > 0 {
					startIndex = n
				}
			}
		} else if m := reExample.FindStringSubmatch(text); m != nil && isOrdered && isExample {
			marker, rest = "(@"+m[2]+")", m[3]
			matched = true
		}
		if !matched {
			break
		}
		first = false
		itemStart := s.lines[i].start
		markerByteLen := uint32(len(s.lineText(i))) - uint32(len(rest))
		indent := markerByteLen
		j := i + 1
		blankBeforeNext := false
		for j < hi {
			t := strings.TrimSpace(s.lineText(j))
			if t == "" {
				// Peek: is the next non-blank line a new item at the
				// same or shallower indent? If so this item ends here.
				k := j + 1
				for k < hi && strings.TrimSpace(s.lineText(k)) == "" {
					k++
				}
				if k >= hi || reBullet.MatchString(s.lineText(k)) || reOrdered.MatchString(s.lineText(k)) || reExample.MatchString(s.lineText(k)) {
					blankBeforeNext = true
					break
				}
				// An unindented non-item line after a blank line ends the list.
				if !strings.HasPrefix(s.lineText(k), " ") && !strings.HasPrefix(s.lineText(k), "\t") {
					break
				}
				j++
				continue
			}
			if reBullet.MatchString(s.lineText(j)) || reOrdered.MatchString(s.lineText(j)) || reExample.MatchString(s.lineText(j)) {
				break
			}
			j++
		}
		itemEndLine := j - 1
		for itemEndLine > i && strings.TrimSpace(s.lineText(itemEndLine)) == "" {
			itemEndLine--
		}
		itemEnd := s.lines[itemEndLine].end

		// Build inner lines: first line is `rest` (dedented), following
		// lines dedented by `indent` when they have at least that much
		// leading whitespace.
		var inner []line
		firstLineStart := s.lines[i].start + indent
		inner = append(inner, line{start: firstLineStart, end: s.lines[i].end, nlEnd: s.lines[i].nlEnd})
		for k := i + 1; k <= itemEndLine; k++ {
			l := s.lines[k]
			st := l.start
			avail := l.end - l.start
			if uint32(avail) >= indent {
				st = l.start + indent
			}
			inner = append(inner, line{start: st, end: l.end, nlEnd: l.nlEnd})
		}
		savedLines := s.lines
		s.lines = inner
		children := s.scanBlocks(0, len(inner))
		s.lines = savedLines

		item := s.newNode("list_item", true, itemStart, itemEnd)
		item.children = children
		items = append(items, item)

		next := j
		for next < hi && strings.TrimSpace(s.lineText(next)) == "" {
			next++
		}
		i = next
		_ = blankBeforeNext
		if next >= hi {
			break
		}
		if !(reBullet.MatchString(s.lineText(next)) || reOrdered.MatchString(s.lineText(next)) || reExample.MatchString(s.lineText(next))) {
			break
		}
	}
	var end uint32
	if len(items) > 0 {
		end = items[len(items)-1].endByte
	} else {
		end = start
	}
	node := s.newNode(kind, true, start, end)
	node.children = items
	if isOrdered {
		node.children = append([]*Node{s.startIndexNode(startIndex)}, node.children...)
	}
	if isExample {
		node.children = append([]*Node{s.listStyleNode("example")}, node.children...)
	}
	return node, i
}

func (s *scanner) startIndexNode(n int) *Node {
	nd := s.newNode("ordered_list_start", false, 0, 0)
	nd.value = strconv.Itoa(n)
	return nd
}

// listStyleNode records a list's numbering style as a synthetic child so
// the parser visitor can tell an example list `(@)` apart from a plain
// ordered list without re-matching marker text.
func (s *scanner) listStyleNode(style string) *Node {
	nd := s.newNode("list_style", false, 0, 0)
	nd.value = style
	return nd
}

func parseLeadingInt(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
