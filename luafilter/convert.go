// Package luafilter embeds gopher-lua to run pandoc-style scripted filters
// against this module's Block/Inline sum types (SPEC_FULL.md §4.4,
// grounded on quarto-markdown-pandoc's lua/filter.rs and lua/mediabag.rs).
package luafilter

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/quarto-dev/quartomd-go/ast"
	"github.com/quarto-dev/quartomd-go/sourcemap"
)

// Every converted element is a plain LTable tagged by a "t" field holding
// the element's pandoc tag name (Str, Para, Header, ...), with additional
// fields named the way pandoc's own Lua filters expose them (text,
// content, attr, level, ...). This is a deliberate simplification of
// upstream pandoc's userdata-with-metatable representation: field reads
// and filter dispatch both only need table access, and a filter author
// cannot tell the difference from inside a script. See DESIGN.md.

func newElem(tag string) *lua.LTable {
	t := &lua.LTable{}
	t.RawSetString("t", lua.LString(tag))
	return t
}

// srcField is a hidden table field carrying the converted element's
// provenance across the Go<->Lua boundary, wrapped in an LUserData so a
// script reading or rebuilding the table never sees it as ordinary data.
const srcField = "__src"

func attachSource(t *lua.LTable, src sourcemap.SourceInfo) *lua.LTable {
	t.RawSetString(srcField, &lua.LUserData{Value: src})
	return t
}

// resolveSource returns t's carried provenance if the table came from
// converting an existing node (round-tripped unmodified or with fields
// mutated in place), or the enclosing handler's provenance if t is a
// table a filter built fresh (pandoc.<Kind>(...) or a table literal),
// which never gets a __src field of its own.
func resolveSource(t *lua.LTable) sourcemap.SourceInfo {
	if ud, ok := t.RawGetString(srcField).(*lua.LUserData); ok {
		if src, ok := ud.Value.(sourcemap.SourceInfo); ok {
			return src
		}
	}
	return currentProvenance
}

func attrToLua(a ast.Attr) *lua.LTable {
	t := &lua.LTable{}
	t.RawSetString("identifier", lua.LString(a.Identifier))
	classes := &lua.LTable{}
	for i, c := range a.Classes {
		classes.RawSetInt(i+1, lua.LString(c))
	}
	t.RawSetString("classes", classes)
	kv := &lua.LTable{}
	if a.KeyVals != nil {
		i := 1
		for pair := a.KeyVals.Oldest(); pair != nil; pair = pair.Next() {
			entry := &lua.LTable{}
			entry.RawSetInt(1, lua.LString(pair.Key))
			entry.RawSetInt(2, lua.LString(pair.Value))
			kv.RawSetInt(i, entry)
			i++
		}
	}
	t.RawSetString("attributes", kv)
	// positional access matching pandoc's Attr(identifier, classes, attributes)
	t.RawSetInt(1, lua.LString(a.Identifier))
	t.RawSetInt(2, classes)
	t.RawSetInt(3, kv)
	return t
}

func luaToAttr(t *lua.LTable) ast.Attr {
	a := ast.NewAttr()
	if id, ok := t.RawGetString("identifier").(lua.LString); ok {
		a.Identifier = string(id)
	}
	if classes, ok := t.RawGetString("classes").(*lua.LTable); ok {
		classes.ForEach(func(_ lua.LValue, v lua.LValue) {
			if s, ok := v.(lua.LString); ok {
				a.Classes = append(a.Classes, string(s))
			}
		})
	}
	if kv, ok := t.RawGetString("attributes").(*lua.LTable); ok {
		kv.ForEach(func(_ lua.LValue, v lua.LValue) {
			entry, ok := v.(*lua.LTable)
			if !ok {
				return
			}
			k, _ := entry.RawGetInt(1).(lua.LString)
			val, _ := entry.RawGetInt(2).(lua.LString)
			a.Set(string(k), string(val))
		})
	}
	return a
}

func luaStringArray(t *lua.LTable) []string {
	var out []string
	t.ForEach(func(_ lua.LValue, v lua.LValue) {
		if s, ok := v.(lua.LString); ok {
			out = append(out, string(s))
		}
	})
	return out
}

func stringArrayToLua(ss []string) *lua.LTable {
	t := &lua.LTable{}
	for i, s := range ss {
		t.RawSetInt(i+1, lua.LString(s))
	}
	return t
}

// InlinesToLua converts an inline sequence into a Lua array-table of
// converted elements.
func InlinesToLua(inlines []ast.Inline) *lua.LTable {
	t := &lua.LTable{}
	for i, inl := range inlines {
		t.RawSetInt(i+1, InlineToLua(inl))
	}
	return t
}

// LuaToInlines converts a Lua array-table back into an inline sequence.
func LuaToInlines(t *lua.LTable) ([]ast.Inline, error) {
	var out []ast.Inline
	n := t.Len()
	for i := 1; i <= n; i++ {
		v := t.RawGetInt(i)
		elem, ok := v.(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("luafilter: inline list element %d is not a table", i)
		}
		inl, err := LuaToInline(elem)
		if err != nil {
			return nil, err
		}
		out = append(out, inl)
	}
	return out, nil
}

// BlocksToLua converts a block sequence into a Lua array-table.
func BlocksToLua(blocks []ast.Block) *lua.LTable {
	t := &lua.LTable{}
	for i, b := range blocks {
		t.RawSetInt(i+1, BlockToLua(b))
	}
	return t
}

// LuaToBlocks converts a Lua array-table back into a block sequence.
func LuaToBlocks(t *lua.LTable) ([]ast.Block, error) {
	var out []ast.Block
	n := t.Len()
	for i := 1; i <= n; i++ {
		v := t.RawGetInt(i)
		elem, ok := v.(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("luafilter: block list element %d is not a table", i)
		}
		b, err := LuaToBlock(elem)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func blockListsToLua(itemLists [][]ast.Block) *lua.LTable {
	t := &lua.LTable{}
	for i, items := range itemLists {
		t.RawSetInt(i+1, BlocksToLua(items))
	}
	return t
}

func luaToBlockLists(t *lua.LTable) ([][]ast.Block, error) {
	var out [][]ast.Block
	n := t.Len()
	for i := 1; i <= n; i++ {
		sub, ok := t.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("luafilter: list item %d is not a table", i)
		}
		blocks, err := LuaToBlocks(sub)
		if err != nil {
			return nil, err
		}
		out = append(out, blocks)
	}
	return out, nil
}

// InlineToLua converts one Inline into its Lua table representation,
// tagging it with the node's provenance so a round trip back through
// LuaToInline recovers it.
func InlineToLua(inl ast.Inline) *lua.LTable {
	return attachSource(inlineToLuaTable(inl), inl.Source())
}

func inlineToLuaTable(inl ast.Inline) *lua.LTable {
	switch v := inl.(type) {
	case *ast.Str:
		t := newElem("Str")
		t.RawSetString("text", lua.LString(v.Text))
		return t
	case *ast.Space:
		return newElem("Space")
	case *ast.SoftBreak:
		return newElem("SoftBreak")
	case *ast.LineBreak:
		return newElem("LineBreak")
	case *ast.Emph:
		t := newElem("Emph")
		t.RawSetString("content", InlinesToLua(v.Content))
		return t
	case *ast.Strong:
		t := newElem("Strong")
		t.RawSetString("content", InlinesToLua(v.Content))
		return t
	case *ast.Underline:
		t := newElem("Underline")
		t.RawSetString("content", InlinesToLua(v.Content))
		return t
	case *ast.Strikeout:
		t := newElem("Strikeout")
		t.RawSetString("content", InlinesToLua(v.Content))
		return t
	case *ast.Superscript:
		t := newElem("Superscript")
		t.RawSetString("content", InlinesToLua(v.Content))
		return t
	case *ast.Subscript:
		t := newElem("Subscript")
		t.RawSetString("content", InlinesToLua(v.Content))
		return t
	case *ast.SmallCaps:
		t := newElem("SmallCaps")
		t.RawSetString("content", InlinesToLua(v.Content))
		return t
	case *ast.Quoted:
		t := newElem("Quoted")
		if v.Type == ast.DoubleQuote {
			t.RawSetString("quotetype", lua.LString("DoubleQuote"))
		} else {
			t.RawSetString("quotetype", lua.LString("SingleQuote"))
		}
		t.RawSetString("content", InlinesToLua(v.Content))
		return t
	case *ast.Cite:
		t := newElem("Cite")
		citations := &lua.LTable{}
		for i, c := range v.Citations {
			ct := &lua.LTable{}
			ct.RawSetString("id", lua.LString(c.ID))
			ct.RawSetString("prefix", InlinesToLua(c.Prefix))
			ct.RawSetString("suffix", InlinesToLua(c.Suffix))
			citations.RawSetInt(i+1, ct)
		}
		t.RawSetString("citations", citations)
		t.RawSetString("content", InlinesToLua(v.Content))
		return t
	case *ast.Code:
		t := newElem("Code")
		t.RawSetString("attr", attrToLua(v.Attr))
		t.RawSetString("text", lua.LString(v.Text))
		return t
	case *ast.Math:
		t := newElem("Math")
		mt := "InlineMath"
		if v.Type == ast.DisplayMath {
			mt = "DisplayMath"
		}
		t.RawSetString("mathtype", lua.LString(mt))
		t.RawSetString("text", lua.LString(v.Text))
		return t
	case *ast.RawInline:
		t := newElem("RawInline")
		t.RawSetString("format", lua.LString(v.Format))
		t.RawSetString("text", lua.LString(v.Text))
		return t
	case *ast.Link:
		t := newElem("Link")
		t.RawSetString("attr", attrToLua(v.Attr))
		t.RawSetString("content", InlinesToLua(v.Content))
		t.RawSetString("target", lua.LString(v.Target))
		t.RawSetString("title", lua.LString(v.Title))
		return t
	case *ast.Image:
		t := newElem("Image")
		t.RawSetString("attr", attrToLua(v.Attr))
		t.RawSetString("caption", InlinesToLua(v.Content))
		t.RawSetString("src", lua.LString(v.Target))
		t.RawSetString("title", lua.LString(v.Title))
		return t
	case *ast.Note:
		t := newElem("Note")
		t.RawSetString("content", BlocksToLua(v.Content))
		return t
	case *ast.NoteReference:
		t := newElem("NoteReference")
		t.RawSetString("id", lua.LString(v.ID))
		return t
	case *ast.Span:
		t := newElem("Span")
		t.RawSetString("attr", attrToLua(v.Attr))
		t.RawSetString("content", InlinesToLua(v.Content))
		return t
	case *ast.Shortcode:
		t := newElem("Shortcode")
		t.RawSetString("name", lua.LString(v.Name))
		t.RawSetString("args", stringArrayToLua(v.PositionalArgs))
		kwargs := &lua.LTable{}
		for _, kw := range v.KeywordArgs {
			kwargs.RawSetString(kw.Key, lua.LString(kw.Value))
		}
		t.RawSetString("kwargs", kwargs)
		t.RawSetString("escaped", lua.LBool(v.IsEscaped))
		return t
	case *ast.Insert:
		t := newElem("Insert")
		t.RawSetString("content", InlinesToLua(v.Content))
		return t
	case *ast.Delete:
		t := newElem("Delete")
		t.RawSetString("content", InlinesToLua(v.Content))
		return t
	case *ast.Highlight:
		t := newElem("Highlight")
		t.RawSetString("content", InlinesToLua(v.Content))
		return t
	case *ast.EditComment:
		t := newElem("EditComment")
		t.RawSetString("author", lua.LString(v.Author))
		t.RawSetString("content", InlinesToLua(v.Content))
		return t
	case *ast.CustomInline:
		t := newElem(v.CustomTag)
		return t
	default:
		return newElem("Unknown")
	}
}

// LuaToInline converts a Lua table back into an Inline, dispatching on
// its "t" tag field and stamping its resolved provenance (SetSource).
func LuaToInline(t *lua.LTable) (ast.Inline, error) {
	inl, err := luaToInlineNode(t)
	if err != nil {
		return nil, err
	}
	inl.SetSource(resolveSource(t))
	return inl, nil
}

func luaToInlineNode(t *lua.LTable) (ast.Inline, error) {
	tag, _ := t.RawGetString("t").(lua.LString)
	text := func() string {
		s, _ := t.RawGetString("text").(lua.LString)
		return string(s)
	}
	content := func() ([]ast.Inline, error) {
		ct, ok := t.RawGetString("content").(*lua.LTable)
		if !ok {
			return nil, nil
		}
		return LuaToInlines(ct)
	}
	attr := func() ast.Attr {
		at, ok := t.RawGetString("attr").(*lua.LTable)
		if !ok {
			return ast.NewAttr()
		}
		return luaToAttr(at)
	}

	switch string(tag) {
	case "Str":
		return &ast.Str{Text: text()}, nil
	case "Space":
		return &ast.Space{}, nil
	case "SoftBreak":
		return &ast.SoftBreak{}, nil
	case "LineBreak":
		return &ast.LineBreak{}, nil
	case "Emph":
		c, err := content()
		return &ast.Emph{Content: c}, err
	case "Strong":
		c, err := content()
		return &ast.Strong{Content: c}, err
	case "Underline":
		c, err := content()
		return &ast.Underline{Content: c}, err
	case "Strikeout":
		c, err := content()
		return &ast.Strikeout{Content: c}, err
	case "Superscript":
		c, err := content()
		return &ast.Superscript{Content: c}, err
	case "Subscript":
		c, err := content()
		return &ast.Subscript{Content: c}, err
	case "SmallCaps":
		c, err := content()
		return &ast.SmallCaps{Content: c}, err
	case "Quoted":
		c, err := content()
		qt, _ := t.RawGetString("quotetype").(lua.LString)
		typ := ast.SingleQuote
		if string(qt) == "DoubleQuote" {
			typ = ast.DoubleQuote
		}
		return &ast.Quoted{Type: typ, Content: c}, err
	case "Cite":
		c, err := content()
		if err != nil {
			return nil, err
		}
		var citations []ast.Citation
		if ct, ok := t.RawGetString("citations").(*lua.LTable); ok {
			n := ct.Len()
			for i := 1; i <= n; i++ {
				entry, ok := ct.RawGetInt(i).(*lua.LTable)
				if !ok {
					continue
				}
				id, _ := entry.RawGetString("id").(lua.LString)
				var prefix, suffix []ast.Inline
				if p, ok := entry.RawGetString("prefix").(*lua.LTable); ok {
					prefix, _ = LuaToInlines(p)
				}
				if s, ok := entry.RawGetString("suffix").(*lua.LTable); ok {
					suffix, _ = LuaToInlines(s)
				}
				citations = append(citations, ast.Citation{ID: string(id), Prefix: prefix, Suffix: suffix})
			}
		}
		return &ast.Cite{Citations: citations, Content: c}, nil
	case "Code":
		return &ast.Code{Attr: attr(), Text: text()}, nil
	case "Math":
		mt, _ := t.RawGetString("mathtype").(lua.LString)
		typ := ast.InlineMath
		if string(mt) == "DisplayMath" {
			typ = ast.DisplayMath
		}
		return &ast.Math{Type: typ, Text: text()}, nil
	case "RawInline":
		format, _ := t.RawGetString("format").(lua.LString)
		return &ast.RawInline{Format: string(format), Text: text()}, nil
	case "Link":
		c, err := content()
		target, _ := t.RawGetString("target").(lua.LString)
		title, _ := t.RawGetString("title").(lua.LString)
		return &ast.Link{Attr: attr(), Content: c, Target: string(target), Title: string(title)}, err
	case "Image":
		var c []ast.Inline
		if ct, ok := t.RawGetString("caption").(*lua.LTable); ok {
			c, _ = LuaToInlines(ct)
		}
		src, _ := t.RawGetString("src").(lua.LString)
		title, _ := t.RawGetString("title").(lua.LString)
		return &ast.Image{Attr: attr(), Content: c, Target: string(src), Title: string(title)}, nil
	case "Note":
		var blocks []ast.Block
		if bt, ok := t.RawGetString("content").(*lua.LTable); ok {
			var err error
			blocks, err = LuaToBlocks(bt)
			if err != nil {
				return nil, err
			}
		}
		return &ast.Note{Content: blocks}, nil
	case "NoteReference":
		id, _ := t.RawGetString("id").(lua.LString)
		return &ast.NoteReference{ID: string(id)}, nil
	case "Span":
		c, err := content()
		return &ast.Span{Attr: attr(), Content: c}, err
	case "Shortcode":
		name, _ := t.RawGetString("name").(lua.LString)
		var args []string
		if at, ok := t.RawGetString("args").(*lua.LTable); ok {
			args = luaStringArray(at)
		}
		var kwargs []ast.ShortcodeArg
		if kt, ok := t.RawGetString("kwargs").(*lua.LTable); ok {
			kt.ForEach(func(k, v lua.LValue) {
				ks, _ := k.(lua.LString)
				vs, _ := v.(lua.LString)
				kwargs = append(kwargs, ast.ShortcodeArg{Key: string(ks), Value: string(vs)})
			})
		}
		escaped, _ := t.RawGetString("escaped").(lua.LBool)
		return &ast.Shortcode{Name: string(name), PositionalArgs: args, KeywordArgs: kwargs, IsEscaped: bool(escaped)}, nil
	case "Insert":
		c, err := content()
		return &ast.Insert{Content: c}, err
	case "Delete":
		c, err := content()
		return &ast.Delete{Content: c}, err
	case "Highlight":
		c, err := content()
		return &ast.Highlight{Content: c}, err
	case "EditComment":
		c, err := content()
		author, _ := t.RawGetString("author").(lua.LString)
		return &ast.EditComment{Author: string(author), Content: c}, err
	default:
		return &ast.CustomInline{CustomTag: string(tag), Slots: map[string]ast.ConfigValue{}}, nil
	}
}
