package luafilter

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/quarto-dev/quartomd-go/ast"
)

// RegisterPandocNamespace installs the `pandoc` global table with one
// constructor function per Block/Inline tag plus pandoc.Attr and
// pandoc.utils.stringify, the surface a scripted filter uses to build
// replacement elements (filter.rs's register_pandoc_namespace /
// constructors.rs, adapted to the plain-table encoding convert.go uses).
func RegisterPandocNamespace(L *lua.LState) {
	p := L.NewTable()
	L.SetGlobal("pandoc", p)

	inlinesArg := func(v lua.LValue) []ast.Inline {
		switch t := v.(type) {
		case *lua.LTable:
			if isElementTable(t) {
				inl, err := LuaToInline(t)
				if err != nil {
					return nil
				}
				return []ast.Inline{inl}
			}
			inls, _ := LuaToInlines(t)
			return inls
		case lua.LString:
			return []ast.Inline{&ast.Str{Text: string(t)}}
		default:
			return nil
		}
	}
	blocksArg := func(v lua.LValue) []ast.Block {
		t, ok := v.(*lua.LTable)
		if !ok {
			return nil
		}
		if isElementTable(t) {
			b, err := LuaToBlock(t)
			if err != nil {
				return nil
			}
			return []ast.Block{b}
		}
		blocks, _ := LuaToBlocks(t)
		return blocks
	}
	attrArg := func(v lua.LValue) ast.Attr {
		t, ok := v.(*lua.LTable)
		if !ok {
			return ast.NewAttr()
		}
		return luaToAttr(t)
	}
	strArg := func(v lua.LValue) string {
		s, _ := v.(lua.LString)
		return string(s)
	}

	reg := func(name string, fn lua.LGFunction) { p.RawSetString(name, L.NewFunction(fn)) }

	simpleInline := func(tag string) lua.LGFunction {
		return func(L *lua.LState) int {
			L.Push(newElem(tag))
			return 1
		}
	}
	contentInline := func(tag string, key string) lua.LGFunction {
		return func(L *lua.LState) int {
			t := newElem(tag)
			t.RawSetString(key, InlinesToLua(inlinesArg(L.Get(1))))
			L.Push(t)
			return 1
		}
	}

	reg("Str", func(L *lua.LState) int {
		t := newElem("Str")
		t.RawSetString("text", lua.LString(L.CheckString(1)))
		L.Push(t)
		return 1
	})
	reg("Space", simpleInline("Space"))
	reg("SoftBreak", simpleInline("SoftBreak"))
	reg("LineBreak", simpleInline("LineBreak"))
	reg("HorizontalRule", simpleInline("HorizontalRule"))
	reg("Emph", contentInline("Emph", "content"))
	reg("Strong", contentInline("Strong", "content"))
	reg("Underline", contentInline("Underline", "content"))
	reg("Strikeout", contentInline("Strikeout", "content"))
	reg("Superscript", contentInline("Superscript", "content"))
	reg("Subscript", contentInline("Subscript", "content"))
	reg("SmallCaps", contentInline("SmallCaps", "content"))
	reg("Insert", contentInline("Insert", "content"))
	reg("Delete", contentInline("Delete", "content"))
	reg("Highlight", contentInline("Highlight", "content"))

	reg("Quoted", func(L *lua.LState) int {
		t := newElem("Quoted")
		t.RawSetString("quotetype", lua.LString(strArg(L.Get(1))))
		t.RawSetString("content", InlinesToLua(inlinesArg(L.Get(2))))
		L.Push(t)
		return 1
	})
	reg("Code", func(L *lua.LState) int {
		t := newElem("Code")
		t.RawSetString("text", lua.LString(L.CheckString(1)))
		t.RawSetString("attr", attrToLua(attrArg(L.Get(2))))
		L.Push(t)
		return 1
	})
	reg("Math", func(L *lua.LState) int {
		t := newElem("Math")
		t.RawSetString("mathtype", lua.LString(strArg(L.Get(1))))
		t.RawSetString("text", lua.LString(L.CheckString(2)))
		L.Push(t)
		return 1
	})
	reg("RawInline", func(L *lua.LState) int {
		t := newElem("RawInline")
		t.RawSetString("format", lua.LString(L.CheckString(1)))
		t.RawSetString("text", lua.LString(L.CheckString(2)))
		L.Push(t)
		return 1
	})
	reg("Link", func(L *lua.LState) int {
		t := newElem("Link")
		t.RawSetString("content", InlinesToLua(inlinesArg(L.Get(1))))
		t.RawSetString("target", lua.LString(L.CheckString(2)))
		title := ""
		if L.GetTop() >= 3 {
			title = strArg(L.Get(3))
		}
		t.RawSetString("title", lua.LString(title))
		t.RawSetString("attr", attrToLua(attrArg(L.Get(4))))
		L.Push(t)
		return 1
	})
	reg("Image", func(L *lua.LState) int {
		t := newElem("Image")
		t.RawSetString("caption", InlinesToLua(inlinesArg(L.Get(1))))
		t.RawSetString("src", lua.LString(L.CheckString(2)))
		title := ""
		if L.GetTop() >= 3 {
			title = strArg(L.Get(3))
		}
		t.RawSetString("title", lua.LString(title))
		t.RawSetString("attr", attrToLua(attrArg(L.Get(4))))
		L.Push(t)
		return 1
	})
	reg("Span", func(L *lua.LState) int {
		t := newElem("Span")
		t.RawSetString("content", InlinesToLua(inlinesArg(L.Get(1))))
		t.RawSetString("attr", attrToLua(attrArg(L.Get(2))))
		L.Push(t)
		return 1
	})
	reg("Note", func(L *lua.LState) int {
		t := newElem("Note")
		t.RawSetString("content", BlocksToLua(blocksArg(L.Get(1))))
		L.Push(t)
		return 1
	})
	reg("EditComment", func(L *lua.LState) int {
		t := newElem("EditComment")
		t.RawSetString("author", lua.LString(L.CheckString(1)))
		t.RawSetString("content", InlinesToLua(inlinesArg(L.Get(2))))
		L.Push(t)
		return 1
	})

	reg("Inline", func(L *lua.LState) int { L.Push(L.Get(1)); return 1 })
	reg("Inlines", func(L *lua.LState) int {
		L.Push(InlinesToLua(inlinesArg(L.Get(1))))
		return 1
	})
	reg("Block", func(L *lua.LState) int { L.Push(L.Get(1)); return 1 })
	reg("Blocks", func(L *lua.LState) int {
		L.Push(BlocksToLua(blocksArg(L.Get(1))))
		return 1
	})

	contentBlock := func(tag string) lua.LGFunction {
		return func(L *lua.LState) int {
			t := newElem(tag)
			t.RawSetString("content", BlocksToLua(blocksArg(L.Get(1))))
			L.Push(t)
			return 1
		}
	}
	reg("Para", func(L *lua.LState) int {
		t := newElem("Para")
		t.RawSetString("content", InlinesToLua(inlinesArg(L.Get(1))))
		L.Push(t)
		return 1
	})
	reg("Plain", func(L *lua.LState) int {
		t := newElem("Plain")
		t.RawSetString("content", InlinesToLua(inlinesArg(L.Get(1))))
		L.Push(t)
		return 1
	})
	reg("BlockQuote", contentBlock("BlockQuote"))
	reg("Div", func(L *lua.LState) int {
		t := newElem("Div")
		t.RawSetString("content", BlocksToLua(blocksArg(L.Get(1))))
		t.RawSetString("attr", attrToLua(attrArg(L.Get(2))))
		L.Push(t)
		return 1
	})
	reg("Header", func(L *lua.LState) int {
		t := newElem("Header")
		t.RawSetString("level", lua.LNumber(L.CheckNumber(1)))
		t.RawSetString("content", InlinesToLua(inlinesArg(L.Get(2))))
		t.RawSetString("attr", attrToLua(attrArg(L.Get(3))))
		L.Push(t)
		return 1
	})
	reg("CodeBlock", func(L *lua.LState) int {
		t := newElem("CodeBlock")
		t.RawSetString("text", lua.LString(L.CheckString(1)))
		t.RawSetString("attr", attrToLua(attrArg(L.Get(2))))
		L.Push(t)
		return 1
	})
	reg("RawBlock", func(L *lua.LState) int {
		t := newElem("RawBlock")
		t.RawSetString("format", lua.LString(L.CheckString(1)))
		t.RawSetString("text", lua.LString(L.CheckString(2)))
		L.Push(t)
		return 1
	})
	reg("BulletList", func(L *lua.LState) int {
		t := newElem("BulletList")
		items := L.CheckTable(1)
		lists := &lua.LTable{}
		n := items.Len()
		for i := 1; i <= n; i++ {
			item, ok := items.RawGetInt(i).(*lua.LTable)
			if !ok {
				continue
			}
			lists.RawSetInt(i, BlocksToLua(blocksArg(item)))
		}
		t.RawSetString("content", lists)
		L.Push(t)
		return 1
	})
	reg("OrderedList", func(L *lua.LState) int {
		t := newElem("OrderedList")
		items := L.CheckTable(1)
		lists := &lua.LTable{}
		n := items.Len()
		for i := 1; i <= n; i++ {
			item, ok := items.RawGetInt(i).(*lua.LTable)
			if !ok {
				continue
			}
			lists.RawSetInt(i, BlocksToLua(blocksArg(item)))
		}
		t.RawSetString("content", lists)
		t.RawSetString("start", lua.LNumber(1))
		t.RawSetString("style", lua.LString("DefaultStyle"))
		t.RawSetString("delimiter", lua.LString("DefaultDelim"))
		L.Push(t)
		return 1
	})
	reg("LineBlock", func(L *lua.LState) int {
		t := newElem("LineBlock")
		lines := L.CheckTable(1)
		out := &lua.LTable{}
		n := lines.Len()
		for i := 1; i <= n; i++ {
			line, ok := lines.RawGetInt(i).(*lua.LTable)
			if !ok {
				continue
			}
			out.RawSetInt(i, InlinesToLua(inlinesArg(line)))
		}
		t.RawSetString("content", out)
		L.Push(t)
		return 1
	})
	reg("Figure", func(L *lua.LState) int {
		t := newElem("Figure")
		t.RawSetString("content", BlocksToLua(blocksArg(L.Get(1))))
		t.RawSetString("attr", attrToLua(attrArg(L.Get(2))))
		L.Push(t)
		return 1
	})

	reg("Attr", func(L *lua.LState) int {
		id := ""
		if L.GetTop() >= 1 {
			id = strArg(L.Get(1))
		}
		var classes []string
		if L.GetTop() >= 2 {
			if ct, ok := L.Get(2).(*lua.LTable); ok {
				classes = luaStringArray(ct)
			}
		}
		a := ast.Attr{Identifier: id, Classes: classes, KeyVals: ast.NewAttr().KeyVals}
		if L.GetTop() >= 3 {
			if kv, ok := L.Get(3).(*lua.LTable); ok {
				kv.ForEach(func(k, v lua.LValue) {
					ks, _ := k.(lua.LString)
					vs, _ := v.(lua.LString)
					a.Set(string(ks), string(vs))
				})
			}
		}
		L.Push(attrToLua(a))
		return 1
	})
	reg("Pandoc", func(L *lua.LState) int {
		doc := &lua.LTable{}
		doc.RawSetString("blocks", BlocksToLua(blocksArg(L.Get(1))))
		L.Push(doc)
		return 1
	})
	reg("Doc", func(L *lua.LState) int {
		doc := &lua.LTable{}
		doc.RawSetString("blocks", BlocksToLua(blocksArg(L.Get(1))))
		L.Push(doc)
		return 1
	})

	utils := L.NewTable()
	utils.RawSetString("stringify", L.NewFunction(func(L *lua.LState) int {
		v := L.Get(1)
		L.Push(lua.LString(stringify(v)))
		return 1
	}))
	p.RawSetString("utils", utils)
}

// stringify recursively concatenates the text content of a converted
// element tree, matching pandoc.utils.stringify's plain-text projection.
func stringify(v lua.LValue) string {
	t, ok := v.(*lua.LTable)
	if !ok {
		if s, ok := v.(lua.LString); ok {
			return string(s)
		}
		return ""
	}
	if tag, ok := t.RawGetString("t").(lua.LString); ok {
		switch string(tag) {
		case "Str", "Code", "Math", "RawInline", "RawBlock", "CodeBlock":
			s, _ := t.RawGetString("text").(lua.LString)
			return string(s)
		case "Space", "SoftBreak":
			return " "
		case "LineBreak":
			return "\n"
		default:
			var out string
			if c, ok := t.RawGetString("content").(*lua.LTable); ok {
				out += stringifyList(c)
			}
			return out
		}
	}
	return stringifyList(t)
}

func stringifyList(t *lua.LTable) string {
	var out string
	n := t.Len()
	for i := 1; i <= n; i++ {
		out += stringify(t.RawGetInt(i))
	}
	return out
}
