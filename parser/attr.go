package parser

import (
	"strings"

	"github.com/quarto-dev/quartomd-go/ast"
	"github.com/quarto-dev/quartomd-go/cst"
	"github.com/quarto-dev/quartomd-go/sourcemap"
)

// buildAttr converts an "attribute_specifier" concrete node (produced by
// cst's splitTrailingAttr/scanSpanAttr for `{#id .class key=val}` syntax)
// into an ast.Attr plus its per-component AttrSourceInfo.
func (v *Visitor) buildAttr(n *cst.Node) (ast.Attr, ast.AttrSourceInfo) {
	attr := ast.NewAttr()
	info := ast.AttrSourceInfo{
		Whole:   v.srcInfo(n),
		KeyVals: make(map[string]sourcemap.SourceInfo),
	}
	for _, c := range n.Children() {
		switch c.Kind() {
		case "attribute_id":
			attr.Identifier = c.Value()
			info.Identifier = v.srcInfo(c)
		case "attribute_class":
			attr.Classes = append(attr.Classes, c.Value())
			info.Classes = append(info.Classes, v.srcInfo(c))
		case "key_value_specifier":
			key, val, ok := strings.Cut(c.Value(), "=")
			if !ok {
				continue
			}
			attr.Set(key, val)
			info.KeyVals[key] = v.srcInfo(c)
		}
	}
	return attr, info
}

// classFromInfoString builds a bare Attr from a code block's plain info
// string word (e.g. ```python), which Pandoc treats as a single class
// rather than a literal language tag on the node.
func classFromInfoString(word string) ast.Attr {
	attr := ast.NewAttr()
	if word != "" {
		attr.Classes = append(attr.Classes, word)
	}
	return attr
}
