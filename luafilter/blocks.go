package luafilter

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/quarto-dev/quartomd-go/ast"
)

func listStyleToLua(s ast.ListNumberStyle) lua.LString {
	switch s {
	case ast.Decimal:
		return "Decimal"
	case ast.LowerRoman:
		return "LowerRoman"
	case ast.UpperRoman:
		return "UpperRoman"
	case ast.LowerAlpha:
		return "LowerAlpha"
	case ast.UpperAlpha:
		return "UpperAlpha"
	case ast.ExampleStyle:
		return "Example"
	default:
		return "DefaultStyle"
	}
}

func listStyleFromLua(s string) ast.ListNumberStyle {
	switch s {
	case "Decimal":
		return ast.Decimal
	case "LowerRoman":
		return ast.LowerRoman
	case "UpperRoman":
		return ast.UpperRoman
	case "LowerAlpha":
		return ast.LowerAlpha
	case "UpperAlpha":
		return ast.UpperAlpha
	case "Example":
		return ast.ExampleStyle
	default:
		return ast.DefaultStyle
	}
}

func listDelimToLua(d ast.ListNumberDelim) lua.LString {
	switch d {
	case ast.Period:
		return "Period"
	case ast.OneParen:
		return "OneParen"
	case ast.TwoParens:
		return "TwoParens"
	default:
		return "DefaultDelim"
	}
}

func listDelimFromLua(d string) ast.ListNumberDelim {
	switch d {
	case "Period":
		return ast.Period
	case "OneParen":
		return ast.OneParen
	case "TwoParens":
		return ast.TwoParens
	default:
		return ast.DefaultDelim
	}
}

func tableRowToLua(r ast.TableRow) *lua.LTable {
	t := &lua.LTable{}
	t.RawSetString("attr", attrToLua(r.Attr))
	cells := &lua.LTable{}
	for i, c := range r.Cells {
		ct := &lua.LTable{}
		ct.RawSetString("attr", attrToLua(c.Attr))
		ct.RawSetString("content", BlocksToLua(c.Content))
		cells.RawSetInt(i+1, ct)
	}
	t.RawSetString("cells", cells)
	return t
}

func luaToTableRow(t *lua.LTable) (ast.TableRow, error) {
	row := ast.TableRow{}
	if at, ok := t.RawGetString("attr").(*lua.LTable); ok {
		row.Attr = luaToAttr(at)
	}
	if cells, ok := t.RawGetString("cells").(*lua.LTable); ok {
		n := cells.Len()
		for i := 1; i <= n; i++ {
			ct, ok := cells.RawGetInt(i).(*lua.LTable)
			if !ok {
				continue
			}
			cell := ast.TableCell{}
			if at, ok := ct.RawGetString("attr").(*lua.LTable); ok {
				cell.Attr = luaToAttr(at)
			}
			if bt, ok := ct.RawGetString("content").(*lua.LTable); ok {
				blocks, err := LuaToBlocks(bt)
				if err != nil {
					return row, err
				}
				cell.Content = blocks
			}
			row.Cells = append(row.Cells, cell)
		}
	}
	return row, nil
}

func tableRowsToLua(rows []ast.TableRow) *lua.LTable {
	t := &lua.LTable{}
	for i, r := range rows {
		t.RawSetInt(i+1, tableRowToLua(r))
	}
	return t
}

func luaToTableRows(t *lua.LTable) ([]ast.TableRow, error) {
	var out []ast.TableRow
	n := t.Len()
	for i := 1; i <= n; i++ {
		rt, ok := t.RawGetInt(i).(*lua.LTable)
		if !ok {
			continue
		}
		row, err := luaToTableRow(rt)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

// BlockToLua converts one Block into its Lua table representation,
// tagging it with the node's provenance so a round trip back through
// LuaToBlock recovers it.
func BlockToLua(b ast.Block) *lua.LTable {
	return attachSource(blockToLuaTable(b), b.Source())
}

func blockToLuaTable(b ast.Block) *lua.LTable {
	switch v := b.(type) {
	case *ast.Paragraph:
		t := newElem("Para")
		t.RawSetString("content", InlinesToLua(v.Content))
		return t
	case *ast.Plain:
		t := newElem("Plain")
		t.RawSetString("content", InlinesToLua(v.Content))
		return t
	case *ast.Header:
		t := newElem("Header")
		t.RawSetString("level", lua.LNumber(v.Level))
		t.RawSetString("attr", attrToLua(v.Attr))
		t.RawSetString("content", InlinesToLua(v.Content))
		return t
	case *ast.CodeBlock:
		t := newElem("CodeBlock")
		t.RawSetString("attr", attrToLua(v.Attr))
		t.RawSetString("text", lua.LString(v.Text))
		return t
	case *ast.RawBlock:
		t := newElem("RawBlock")
		t.RawSetString("format", lua.LString(v.Format))
		t.RawSetString("text", lua.LString(v.Text))
		return t
	case *ast.BlockQuote:
		t := newElem("BlockQuote")
		t.RawSetString("content", BlocksToLua(v.Content))
		return t
	case *ast.OrderedList:
		t := newElem("OrderedList")
		t.RawSetString("start", lua.LNumber(v.Start))
		t.RawSetString("style", listStyleToLua(v.Style))
		t.RawSetString("delimiter", listDelimToLua(v.Delim))
		t.RawSetString("content", blockListsToLua(v.Items))
		return t
	case *ast.BulletList:
		t := newElem("BulletList")
		t.RawSetString("content", blockListsToLua(v.Items))
		return t
	case *ast.DefinitionList:
		t := newElem("DefinitionList")
		items := &lua.LTable{}
		for i, item := range v.Items {
			entry := &lua.LTable{}
			entry.RawSetInt(1, InlinesToLua(item.Term))
			entry.RawSetInt(2, blockListsToLua(item.Definitions))
			items.RawSetInt(i+1, entry)
		}
		t.RawSetString("content", items)
		return t
	case *ast.HorizontalRule:
		return newElem("HorizontalRule")
	case *ast.Div:
		t := newElem("Div")
		t.RawSetString("attr", attrToLua(v.Attr))
		t.RawSetString("content", BlocksToLua(v.Content))
		return t
	case *ast.Table:
		t := newElem("Table")
		t.RawSetString("attr", attrToLua(v.Attr))
		t.RawSetString("caption_short", InlinesToLua(v.CaptionShort))
		t.RawSetString("caption_long", BlocksToLua(v.CaptionLong))
		t.RawSetString("head", tableRowsToLua(v.Head))
		bodies := &lua.LTable{}
		for i, body := range v.Bodies {
			bodies.RawSetInt(i+1, tableRowsToLua(body))
		}
		t.RawSetString("bodies", bodies)
		t.RawSetString("foot", tableRowsToLua(v.Foot))
		return t
	case *ast.Figure:
		t := newElem("Figure")
		t.RawSetString("attr", attrToLua(v.Attr))
		t.RawSetString("caption_short", InlinesToLua(v.CaptionShort))
		t.RawSetString("caption_long", BlocksToLua(v.CaptionLong))
		t.RawSetString("content", BlocksToLua(v.Content))
		return t
	case *ast.LineBlock:
		t := newElem("LineBlock")
		lines := &lua.LTable{}
		for i, line := range v.Lines {
			lines.RawSetInt(i+1, InlinesToLua(line))
		}
		t.RawSetString("content", lines)
		return t
	case *ast.CustomBlock:
		return newElem(v.CustomTag)
	default:
		return newElem("Unknown")
	}
}

// LuaToBlock converts a Lua table back into a Block, dispatching on its
// "t" tag field and stamping its resolved provenance (SetSource).
// Intermediate parser-only blocks (NoteDefinitionPara, BlockMetadata,
// CaptionBlock) never reach a filter, so they have no Lua representation
// here.
func LuaToBlock(t *lua.LTable) (ast.Block, error) {
	b, err := luaToBlockNode(t)
	if err != nil {
		return nil, err
	}
	b.SetSource(resolveSource(t))
	return b, nil
}

func luaToBlockNode(t *lua.LTable) (ast.Block, error) {
	tag, _ := t.RawGetString("t").(lua.LString)
	inlineContent := func() ([]ast.Inline, error) {
		ct, ok := t.RawGetString("content").(*lua.LTable)
		if !ok {
			return nil, nil
		}
		return LuaToInlines(ct)
	}
	blockContent := func() ([]ast.Block, error) {
		ct, ok := t.RawGetString("content").(*lua.LTable)
		if !ok {
			return nil, nil
		}
		return LuaToBlocks(ct)
	}
	attr := func() ast.Attr {
		at, ok := t.RawGetString("attr").(*lua.LTable)
		if !ok {
			return ast.NewAttr()
		}
		return luaToAttr(at)
	}

	switch string(tag) {
	case "Para":
		c, err := inlineContent()
		return &ast.Paragraph{Content: c}, err
	case "Plain":
		c, err := inlineContent()
		return &ast.Plain{Content: c}, err
	case "Header":
		c, err := inlineContent()
		level, _ := t.RawGetString("level").(lua.LNumber)
		return &ast.Header{Level: int(level), Attr: attr(), Content: c}, err
	case "CodeBlock":
		text, _ := t.RawGetString("text").(lua.LString)
		return &ast.CodeBlock{Attr: attr(), Text: string(text)}, nil
	case "RawBlock":
		format, _ := t.RawGetString("format").(lua.LString)
		text, _ := t.RawGetString("text").(lua.LString)
		return &ast.RawBlock{Format: string(format), Text: string(text)}, nil
	case "BlockQuote":
		c, err := blockContent()
		return &ast.BlockQuote{Content: c}, err
	case "OrderedList":
		items, err := luaToBlockListsField(t)
		start, _ := t.RawGetString("start").(lua.LNumber)
		style, _ := t.RawGetString("style").(lua.LString)
		delim, _ := t.RawGetString("delimiter").(lua.LString)
		return &ast.OrderedList{
			Start: int(start),
			Style: listStyleFromLua(string(style)),
			Delim: listDelimFromLua(string(delim)),
			Items: items,
		}, err
	case "BulletList":
		items, err := luaToBlockListsField(t)
		return &ast.BulletList{Items: items}, err
	case "DefinitionList":
		var out ast.DefinitionList
		items, ok := t.RawGetString("content").(*lua.LTable)
		if !ok {
			return &out, nil
		}
		n := items.Len()
		for i := 1; i <= n; i++ {
			entry, ok := items.RawGetInt(i).(*lua.LTable)
			if !ok {
				continue
			}
			termTbl, _ := entry.RawGetInt(1).(*lua.LTable)
			defsTbl, _ := entry.RawGetInt(2).(*lua.LTable)
			var term []ast.Inline
			if termTbl != nil {
				term, _ = LuaToInlines(termTbl)
			}
			var defs [][]ast.Block
			if defsTbl != nil {
				defs, _ = luaToBlockLists(defsTbl)
			}
			out.Items = append(out.Items, ast.DefinitionItem{Term: term, Definitions: defs})
		}
		return &out, nil
	case "HorizontalRule":
		return &ast.HorizontalRule{}, nil
	case "Div":
		c, err := blockContent()
		return &ast.Div{Attr: attr(), Content: c}, err
	case "Table":
		tbl := &ast.Table{Attr: attr()}
		if ct, ok := t.RawGetString("caption_short").(*lua.LTable); ok {
			tbl.CaptionShort, _ = LuaToInlines(ct)
		}
		if ct, ok := t.RawGetString("caption_long").(*lua.LTable); ok {
			tbl.CaptionLong, _ = LuaToBlocks(ct)
		}
		if ht, ok := t.RawGetString("head").(*lua.LTable); ok {
			rows, err := luaToTableRows(ht)
			if err != nil {
				return nil, err
			}
			tbl.Head = rows
		}
		if bt, ok := t.RawGetString("bodies").(*lua.LTable); ok {
			n := bt.Len()
			for i := 1; i <= n; i++ {
				bodyTbl, ok := bt.RawGetInt(i).(*lua.LTable)
				if !ok {
					continue
				}
				rows, err := luaToTableRows(bodyTbl)
				if err != nil {
					return nil, err
				}
				tbl.Bodies = append(tbl.Bodies, rows)
			}
		}
		if ft, ok := t.RawGetString("foot").(*lua.LTable); ok {
			rows, err := luaToTableRows(ft)
			if err != nil {
				return nil, err
			}
			tbl.Foot = rows
		}
		return tbl, nil
	case "Figure":
		fig := &ast.Figure{Attr: attr()}
		if ct, ok := t.RawGetString("caption_short").(*lua.LTable); ok {
			fig.CaptionShort, _ = LuaToInlines(ct)
		}
		if ct, ok := t.RawGetString("caption_long").(*lua.LTable); ok {
			fig.CaptionLong, _ = LuaToBlocks(ct)
		}
		c, err := blockContent()
		fig.Content = c
		return fig, err
	case "LineBlock":
		lb := &ast.LineBlock{}
		lines, ok := t.RawGetString("content").(*lua.LTable)
		if !ok {
			return lb, nil
		}
		n := lines.Len()
		for i := 1; i <= n; i++ {
			lt, ok := lines.RawGetInt(i).(*lua.LTable)
			if !ok {
				continue
			}
			line, err := LuaToInlines(lt)
			if err != nil {
				return nil, err
			}
			lb.Lines = append(lb.Lines, line)
		}
		return lb, nil
	default:
		if tag == "" {
			return nil, fmt.Errorf("luafilter: table has no tag field")
		}
		return &ast.CustomBlock{CustomTag: string(tag), Slots: map[string]ast.ConfigValue{}}, nil
	}
}

func luaToBlockListsField(t *lua.LTable) ([][]ast.Block, error) {
	ct, ok := t.RawGetString("content").(*lua.LTable)
	if !ok {
		return nil, nil
	}
	return luaToBlockLists(ct)
}
