package parser

import (
	"strconv"
	"strings"

	"github.com/quarto-dev/quartomd-go/ast"
	"github.com/quarto-dev/quartomd-go/cst"
)

// visitList builds a BulletList/OrderedList from a "bullet_list"/
// "ordered_list" concrete node, applying the list-tightness algorithm
// from spec §4.2 (three independent loose-triggers, OR'd together) and,
// for example lists (`(@)`), drawing numbers from the AST context's
// shared counter (spec §4.2 "Example lists", §9 "Shared counters").
func (v *Visitor) visitList(n *cst.Node, ordered bool) Intermediate {
	var itemNodes []*cst.Node
	start := 1
	isExample := false
	for _, c := range n.Children() {
		switch c.Kind() {
		case "list_item":
			itemNodes = append(itemNodes, c)
		case "ordered_list_start":
			if val, err := strconv.Atoi(c.Value()); err == nil {
				start = val
			}
		case "list_style":
			if c.Value() == "example" {
				isExample = true
			}
		}
	}

	items := make([][]ast.Block, len(itemNodes))
	for i, item := range itemNodes {
		items[i] = v.visitBlocks(item.Children())
	}

	loose := false
	for _, blocks := range items {
		if countParagraphs(blocks) >= 2 {
			loose = true
		}
	}
	for i := 0; i+1 < len(itemNodes); i++ {
		if itemNodes[i+1].StartPoint().Row > itemNodes[i].EndPoint().Row+1 {
			loose = true
		}
	}
	for i := 0; i+1 < len(itemNodes); i++ {
		blocks := items[i]
		if len(blocks) == 1 {
			if _, ok := blocks[0].(*ast.Paragraph); ok {
				if itemNodes[i].EndPoint().Row+1 != itemNodes[i+1].StartPoint().Row {
					loose = true
				}
			}
		}
	}

	if !loose {
		for i, blocks := range items {
			for j, b := range blocks {
				if p, ok := b.(*ast.Paragraph); ok {
					plain := &ast.Plain{Content: p.Content}
					plain.SetSource(p.Source())
					items[i][j] = plain
				}
			}
		}
	}

	if isExample {
		for i := range items {
			n := v.ctx.NextExampleNumber()
			if i == 0 {
				start = n
			}
		}
	}

	if ordered {
		style := ast.Decimal
		delim := v.detectDelim(n)
		if isExample {
			style = ast.ExampleStyle
		}
		ol := &ast.OrderedList{Start: start, Style: style, Delim: delim, Items: items}
		ol.SetSource(v.srcInfo(n))
		return IBlock{ol}
	}
	bl := &ast.BulletList{Items: items}
	bl.SetSource(v.srcInfo(n))
	return IBlock{bl}
}

func countParagraphs(blocks []ast.Block) int {
	n := 0
	for _, b := range blocks {
		if _, ok := b.(*ast.Paragraph); ok {
			n++
		}
	}
	return n
}

// detectDelim inspects the raw marker text at the start of an ordered
// list node to classify its delimiter, since the scanner doesn't thread
// the delimiter character through as a distinct field.
func (v *Visitor) detectDelim(n *cst.Node) ast.ListNumberDelim {
	end := n.StartByte() + 24
	if end > uint32(len(v.src)) {
		end = uint32(len(v.src))
	}
	text := strings.TrimLeft(string(v.src[n.StartByte():end]), " \t")
	if strings.HasPrefix(text, "(") {
		return ast.TwoParens
	}
	for _, r := range text {
		switch r {
		case ')':
			return ast.OneParen
		case '.':
			return ast.Period
		}
	}
	return ast.Period
}
