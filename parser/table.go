package parser

import (
	"github.com/quarto-dev/quartomd-go/ast"
	"github.com/quarto-dev/quartomd-go/cst"
)

// visitTable builds a Table from a "pipe_table" concrete node. Cell-level
// diffing is out of scope (spec §4.3e), so this is a plain structural
// container: one header row, no bodies distinction (the grid has a
// single implicit body), and an empty foot.
func (v *Visitor) visitTable(n *cst.Node) Intermediate {
	var head []ast.TableRow
	var body []ast.TableRow
	for _, c := range n.Children() {
		switch c.Kind() {
		case "pipe_table_header":
			head = []ast.TableRow{v.visitTableRow(c)}
		case "pipe_table_delimiter":
			// alignment metadata isn't modeled on ast.Table directly;
			// consumed here only to advance past the node.
		case "pipe_table_row":
			body = append(body, v.visitTableRow(c))
		}
	}
	t := &ast.Table{
		Attr:   ast.NewAttr(),
		Head:   head,
		Bodies: [][]ast.TableRow{body},
	}
	t.SetSource(v.srcInfo(n))
	return IBlock{t}
}

func (v *Visitor) visitTableRow(n *cst.Node) ast.TableRow {
	var cells []ast.TableCell
	for _, c := range n.Children() {
		if c.Kind() != "pipe_table_cell" {
			continue
		}
		content := v.visitInlineNodes(c.Children())
		cells = append(cells, ast.TableCell{
			Attr:    ast.NewAttr(),
			Content: []ast.Block{&ast.Plain{Content: content}},
		})
	}
	return ast.TableRow{Attr: ast.NewAttr(), Cells: cells}
}
