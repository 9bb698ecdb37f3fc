package luafilter

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/quarto-dev/quartomd-go/ast"
	"github.com/quarto-dev/quartomd-go/sourcemap"
)

// currentProvenance is scratch state for the dynamic extent of a single
// handler invocation: LuaToInline/LuaToBlock stamp it onto any table a
// handler builds fresh (one with no __src field of its own), so a node
// a script constructs with pandoc.Str(...) or a bare table literal
// still carries a FilterProvenance pointing at the handler that made it.
// Filters run one at a time on a single goroutine, so a package-level
// scratch var is safe.
var currentProvenance sourcemap.SourceInfo

// handlerLine approximates a Lua handler's "current line" as the line
// its function is defined on: gopher-lua exposes no cheap per-statement
// program counter outside the VM loop, so this is the fallback the
// design settles for rather than a precise call-site line.
func handlerLine(fn *lua.LFunction) int {
	if fn == nil || fn.IsG || fn.Proto == nil {
		return 0
	}
	return fn.Proto.LineDefined
}

// setSrc stamps src onto a node rebuilt in Go to carry filtered
// children, so a container's own provenance survives even though
// filterBlockChildren/filterInlineChildren allocate a fresh struct for it.
func setSrc[T interface{ SetSource(sourcemap.SourceInfo) }](n T, src sourcemap.SourceInfo) T {
	n.SetSource(src)
	return n
}

// filterFunctionNames lists every global a scripted filter may define,
// mirroring filter.rs's get_filter_table allow-list: typewise dispatch
// only ever looks up these names, so anything else a script defines as a
// global is inert as far as the traversal is concerned.
var filterFunctionNames = []string{
	"Str", "Emph", "Strong", "Underline", "Strikeout", "Superscript",
	"Subscript", "SmallCaps", "Quoted", "Cite", "Code", "Space",
	"SoftBreak", "LineBreak", "Math", "RawInline", "Link", "Image",
	"Note", "Span", "Inline", "Inlines",
	"Para", "Plain", "CodeBlock", "RawBlock", "BlockQuote", "OrderedList",
	"BulletList", "DefinitionList", "Header", "HorizontalRule", "Table",
	"Figure", "Div", "LineBlock", "Block", "Blocks",
	"Pandoc", "Doc",
}

// Filter runs a single gopher-lua scripted filter against a document's
// blocks, using typewise traversal (SPEC_FULL.md §4.4b).
type Filter struct {
	L          *lua.LState
	table      *lua.LTable
	filterPath string
}

// Load reads and executes filterSource, exposing the pandoc constructor
// namespace, FORMAT and PANDOC_VERSION globals, then collects whichever
// filter functions the script defined (as globals, or as fields of a
// returned table) into the dispatch table used by Run.
func Load(filterSource, chunkName, format string) (*Filter, error) {
	L := lua.NewState()
	RegisterPandocNamespace(L)
	L.SetGlobal("FORMAT", lua.LString(format))
	L.SetGlobal("PANDOC_VERSION", lua.LString("3.0"))

	fn, err := L.LoadString(filterSource)
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("luafilter: parse %s: %w", chunkName, err)
	}
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		L.Close()
		return nil, fmt.Errorf("luafilter: run %s: %w", chunkName, err)
	}

	table := &lua.LTable{}
	// A filter script may return a table of filter functions directly.
	if L.GetTop() > 0 {
		if ret, ok := L.Get(-1).(*lua.LTable); ok {
			ret.ForEach(func(k, v lua.LValue) {
				table.RawSet(k, v)
			})
		}
		L.SetTop(0)
	}
	for _, name := range filterFunctionNames {
		if fn, ok := L.GetGlobal(name).(*lua.LFunction); ok {
			table.RawSetString(name, fn)
		}
	}
	// A global `traverse` selects the mode when the returned table has none.
	if tv, ok := L.GetGlobal("traverse").(lua.LString); ok && table.RawGetString("traverse") == lua.LNil {
		table.RawSetString("traverse", tv)
	}

	return &Filter{L: L, table: table, filterPath: chunkName}, nil
}

// Close releases the underlying Lua VM.
func (f *Filter) Close() { f.L.Close() }

func (f *Filter) getFunc(name string) (*lua.LFunction, bool) {
	fn, ok := f.table.RawGetString(name).(*lua.LFunction)
	return fn, ok
}

func (f *Filter) call1(fn *lua.LFunction, arg lua.LValue) (lua.LValue, error) {
	prev := currentProvenance
	currentProvenance = sourcemap.FilterProvenance(f.filterPath, handlerLine(fn))
	defer func() { currentProvenance = prev }()

	f.L.Push(fn)
	f.L.Push(arg)
	if err := f.L.PCall(1, 1, nil); err != nil {
		return lua.LNil, err
	}
	ret := f.L.Get(-1)
	f.L.Pop(1)
	return ret, nil
}

// isElementTable reports whether t carries a "t" tag field, the marker
// that distinguishes a single converted pandoc element from a plain Lua
// array of elements (both are *lua.LTable in this simplified encoding).
func isElementTable(t *lua.LTable) bool {
	_, ok := t.RawGetString("t").(lua.LString)
	return ok
}

// RunBlocks applies the filter's Blocks/Block-level typewise traversal
// to a block sequence and returns the transformed sequence.
func (f *Filter) RunBlocks(blocks []ast.Block) ([]ast.Block, error) {
	if fn, ok := f.getFunc("Blocks"); ok {
		ret, err := f.call1(fn, BlocksToLua(blocks))
		if err != nil {
			return nil, err
		}
		handled, result, err := f.handleListReturn(ret, blocks, f.applyToBlock)
		if err != nil {
			return nil, err
		}
		if handled {
			return result, nil
		}
	}
	var out []ast.Block
	for _, b := range blocks {
		filtered, err := f.applyToBlock(b)
		if err != nil {
			return nil, err
		}
		out = append(out, filtered...)
	}
	return out, nil
}

func (f *Filter) handleListReturn(
	ret lua.LValue,
	original []ast.Block,
	apply func(ast.Block) ([]ast.Block, error),
) (bool, []ast.Block, error) {
	if ret == lua.LNil {
		return false, nil, nil
	}
	table, ok := ret.(*lua.LTable)
	if !ok {
		return false, nil, nil
	}
	if isElementTable(table) {
		b, err := LuaToBlock(table)
		if err != nil {
			return true, nil, err
		}
		filtered, err := apply(b)
		return true, filtered, err
	}
	n := table.Len()
	if n == 0 {
		return true, nil, nil
	}
	var out []ast.Block
	for i := 1; i <= n; i++ {
		elem, ok := table.RawGetInt(i).(*lua.LTable)
		if !ok {
			continue
		}
		b, err := LuaToBlock(elem)
		if err != nil {
			return true, nil, err
		}
		filtered, err := apply(b)
		if err != nil {
			return true, nil, err
		}
		out = append(out, filtered...)
	}
	return true, out, nil
}

func (f *Filter) applyToBlock(b ast.Block) ([]ast.Block, error) {
	withChildren, err := f.filterBlockChildren(b)
	if err != nil {
		return nil, err
	}
	tag := withChildren.Tag()
	fn, ok := f.getFunc(tag)
	if !ok {
		fn, ok = f.getFunc("Block")
	}
	if !ok {
		return []ast.Block{withChildren}, nil
	}
	ret, err := f.call1(fn, BlockToLua(withChildren))
	if err != nil {
		return nil, err
	}
	return handleSingleBlockReturn(ret, withChildren)
}

func handleSingleBlockReturn(ret lua.LValue, original ast.Block) ([]ast.Block, error) {
	if ret == lua.LNil {
		return []ast.Block{original}, nil
	}
	if v, ok := ret.(*lua.LTable); ok {
		if isElementTable(v) {
			b, err := LuaToBlock(v)
			if err != nil {
				return nil, err
			}
			return []ast.Block{b}, nil
		}
		n := v.Len()
		if n == 0 {
			return nil, nil
		}
		blocks, err := LuaToBlocks(v)
		return blocks, err
	}
	return []ast.Block{original}, nil
}

func (f *Filter) filterBlockChildren(b ast.Block) (ast.Block, error) {
	switch v := b.(type) {
	case *ast.Paragraph:
		c, err := f.RunInlines(v.Content)
		return setSrc(&ast.Paragraph{Content: c}, v.Source()), err
	case *ast.Plain:
		c, err := f.RunInlines(v.Content)
		return setSrc(&ast.Plain{Content: c}, v.Source()), err
	case *ast.Header:
		c, err := f.RunInlines(v.Content)
		return setSrc(&ast.Header{Level: v.Level, Attr: v.Attr, Content: c}, v.Source()), err
	case *ast.BlockQuote:
		c, err := f.RunBlocks(v.Content)
		return setSrc(&ast.BlockQuote{Content: c}, v.Source()), err
	case *ast.BulletList:
		items, err := f.runBlockLists(v.Items)
		return setSrc(&ast.BulletList{Items: items}, v.Source()), err
	case *ast.OrderedList:
		items, err := f.runBlockLists(v.Items)
		return setSrc(&ast.OrderedList{Start: v.Start, Style: v.Style, Delim: v.Delim, Items: items}, v.Source()), err
	case *ast.Div:
		c, err := f.RunBlocks(v.Content)
		return setSrc(&ast.Div{Attr: v.Attr, Content: c}, v.Source()), err
	case *ast.Figure:
		c, err := f.RunBlocks(v.Content)
		return setSrc(&ast.Figure{Attr: v.Attr, CaptionShort: v.CaptionShort, CaptionLong: v.CaptionLong, Content: c}, v.Source()), err
	case *ast.LineBlock:
		var lines [][]ast.Inline
		for _, line := range v.Lines {
			filtered, err := f.RunInlines(line)
			if err != nil {
				return nil, err
			}
			lines = append(lines, filtered)
		}
		return setSrc(&ast.LineBlock{Lines: lines}, v.Source()), nil
	default:
		return b, nil
	}
}

func (f *Filter) runBlockLists(items [][]ast.Block) ([][]ast.Block, error) {
	var out [][]ast.Block
	for _, item := range items {
		filtered, err := f.RunBlocks(item)
		if err != nil {
			return nil, err
		}
		out = append(out, filtered)
	}
	return out, nil
}

// RunInlines applies the filter's Inlines/Inline-level typewise
// traversal to an inline sequence.
func (f *Filter) RunInlines(inlines []ast.Inline) ([]ast.Inline, error) {
	if fn, ok := f.getFunc("Inlines"); ok {
		ret, err := f.call1(fn, InlinesToLua(inlines))
		if err != nil {
			return nil, err
		}
		if ret != lua.LNil {
			if table, ok := ret.(*lua.LTable); ok {
				if isElementTable(table) {
					inl, err := LuaToInline(table)
					if err != nil {
						return nil, err
					}
					return f.applyToInline(inl)
				}
				n := table.Len()
				if n == 0 {
					return nil, nil
				}
				var out []ast.Inline
				for i := 1; i <= n; i++ {
					elem, ok := table.RawGetInt(i).(*lua.LTable)
					if !ok {
						continue
					}
					inl, err := LuaToInline(elem)
					if err != nil {
						return nil, err
					}
					filtered, err := f.applyToInline(inl)
					if err != nil {
						return nil, err
					}
					out = append(out, filtered...)
				}
				return out, nil
			}
		}
	}
	var out []ast.Inline
	for _, inl := range inlines {
		filtered, err := f.applyToInline(inl)
		if err != nil {
			return nil, err
		}
		out = append(out, filtered...)
	}
	return out, nil
}

func (f *Filter) applyToInline(inl ast.Inline) ([]ast.Inline, error) {
	withChildren, err := f.filterInlineChildren(inl)
	if err != nil {
		return nil, err
	}
	tag := withChildren.Tag()
	fn, ok := f.getFunc(tag)
	if !ok {
		fn, ok = f.getFunc("Inline")
	}
	if !ok {
		return []ast.Inline{withChildren}, nil
	}
	ret, err := f.call1(fn, InlineToLua(withChildren))
	if err != nil {
		return nil, err
	}
	return handleSingleInlineReturn(ret, withChildren)
}

func handleSingleInlineReturn(ret lua.LValue, original ast.Inline) ([]ast.Inline, error) {
	if ret == lua.LNil {
		return []ast.Inline{original}, nil
	}
	if v, ok := ret.(*lua.LTable); ok {
		if isElementTable(v) {
			inl, err := LuaToInline(v)
			if err != nil {
				return nil, err
			}
			return []ast.Inline{inl}, nil
		}
		n := v.Len()
		if n == 0 {
			return nil, nil
		}
		inlines, err := LuaToInlines(v)
		return inlines, err
	}
	return []ast.Inline{original}, nil
}

func (f *Filter) filterInlineChildren(inl ast.Inline) (ast.Inline, error) {
	switch v := inl.(type) {
	case *ast.Emph:
		c, err := f.RunInlines(v.Content)
		return setSrc(&ast.Emph{Content: c}, v.Source()), err
	case *ast.Strong:
		c, err := f.RunInlines(v.Content)
		return setSrc(&ast.Strong{Content: c}, v.Source()), err
	case *ast.Underline:
		c, err := f.RunInlines(v.Content)
		return setSrc(&ast.Underline{Content: c}, v.Source()), err
	case *ast.Strikeout:
		c, err := f.RunInlines(v.Content)
		return setSrc(&ast.Strikeout{Content: c}, v.Source()), err
	case *ast.Superscript:
		c, err := f.RunInlines(v.Content)
		return setSrc(&ast.Superscript{Content: c}, v.Source()), err
	case *ast.Subscript:
		c, err := f.RunInlines(v.Content)
		return setSrc(&ast.Subscript{Content: c}, v.Source()), err
	case *ast.SmallCaps:
		c, err := f.RunInlines(v.Content)
		return setSrc(&ast.SmallCaps{Content: c}, v.Source()), err
	case *ast.Quoted:
		c, err := f.RunInlines(v.Content)
		return setSrc(&ast.Quoted{Type: v.Type, Content: c}, v.Source()), err
	case *ast.Link:
		c, err := f.RunInlines(v.Content)
		return setSrc(&ast.Link{Attr: v.Attr, Content: c, Target: v.Target, Title: v.Title}, v.Source()), err
	case *ast.Image:
		c, err := f.RunInlines(v.Content)
		return setSrc(&ast.Image{Attr: v.Attr, Content: c, Target: v.Target, Title: v.Title}, v.Source()), err
	case *ast.Span:
		c, err := f.RunInlines(v.Content)
		return setSrc(&ast.Span{Attr: v.Attr, Content: c}, v.Source()), err
	case *ast.Insert:
		c, err := f.RunInlines(v.Content)
		return setSrc(&ast.Insert{Content: c}, v.Source()), err
	case *ast.Delete:
		c, err := f.RunInlines(v.Content)
		return setSrc(&ast.Delete{Content: c}, v.Source()), err
	case *ast.Highlight:
		c, err := f.RunInlines(v.Content)
		return setSrc(&ast.Highlight{Content: c}, v.Source()), err
	case *ast.EditComment:
		c, err := f.RunInlines(v.Content)
		return setSrc(&ast.EditComment{Author: v.Author, Content: c}, v.Source()), err
	case *ast.Note:
		c, err := f.RunBlocks(v.Content)
		return setSrc(&ast.Note{Content: c}, v.Source()), err
	default:
		return inl, nil
	}
}

// Run applies the loaded filter to an entire document, returning the
// transformed block sequence. Document metadata passes through
// unchanged: no filter in this module's scope rewrites Meta. The
// traversal strategy (typewise or topdown) is read from the filter
// table's `traverse` field, which Load fills from a global `traverse`
// when the script sets one.
func (f *Filter) Run(doc *ast.Pandoc) ([]ast.Block, error) {
	if f.traverseMode() == TopDown {
		return f.RunTopDown(doc.Blocks)
	}
	return f.RunBlocks(doc.Blocks)
}
