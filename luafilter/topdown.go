package luafilter

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/quarto-dev/quartomd-go/ast"
	"github.com/quarto-dev/quartomd-go/sourcemap"
)

// Traverse selects how a filter's type-specific functions are applied
// relative to their children. Typewise (the default) filters children
// before the parent; a filter table can opt into top-down traversal by
// setting a `traverse = "topdown"` field, in which case the parent
// function runs first and may suppress descent into its own children by
// returning a second value of false (the standard pandoc Lua filter
// convention; not present in filter.rs itself, which only implements
// typewise dispatch).
type Traverse int

const (
	Typewise Traverse = iota
	TopDown
)

func (f *Filter) traverseMode() Traverse {
	if s, ok := f.table.RawGetString("traverse").(lua.LString); ok && string(s) == "topdown" {
		return TopDown
	}
	return Typewise
}

// RunTopDown applies the filter's blocks using top-down suppressed-descent
// traversal instead of the typewise default.
func (f *Filter) RunTopDown(blocks []ast.Block) ([]ast.Block, error) {
	var out []ast.Block
	for _, b := range blocks {
		filtered, err := f.applyToBlockTopDown(b)
		if err != nil {
			return nil, err
		}
		out = append(out, filtered...)
	}
	return out, nil
}

// call2 invokes fn with arg and returns its first two results plus
// whether a second result was actually supplied.
func (f *Filter) call2(fn *lua.LFunction, arg lua.LValue) (lua.LValue, bool, bool, error) {
	prev := currentProvenance
	currentProvenance = sourcemap.FilterProvenance(f.filterPath, handlerLine(fn))
	defer func() { currentProvenance = prev }()

	f.L.Push(fn)
	f.L.Push(arg)
	if err := f.L.PCall(1, 2, nil); err != nil {
		return lua.LNil, false, false, err
	}
	second := f.L.Get(-1)
	first := f.L.Get(-2)
	f.L.Pop(2)
	hasSecond := second != lua.LNil
	descend := true
	if hasSecond {
		if b, ok := second.(lua.LBool); ok {
			descend = bool(b)
		}
	}
	return first, hasSecond, descend, nil
}

func (f *Filter) applyToBlockTopDown(b ast.Block) ([]ast.Block, error) {
	tag := b.Tag()
	fn, ok := f.getFunc(tag)
	if !ok {
		fn, ok = f.getFunc("Block")
	}
	if !ok {
		return f.descendBlockTopDown(b)
	}
	ret, _, descend, err := f.call2(fn, BlockToLua(b))
	if err != nil {
		return nil, err
	}
	replaced, err := handleSingleBlockReturn(ret, b)
	if err != nil {
		return nil, err
	}
	if !descend {
		return replaced, nil
	}
	var out []ast.Block
	for _, r := range replaced {
		descended, err := f.descendBlockTopDown(r)
		if err != nil {
			return nil, err
		}
		out = append(out, descended...)
	}
	return out, nil
}

func (f *Filter) descendBlockTopDown(b ast.Block) ([]ast.Block, error) {
	withChildren, err := f.topDownBlockChildren(b)
	if err != nil {
		return nil, err
	}
	return []ast.Block{withChildren}, nil
}

func (f *Filter) topDownBlockChildren(b ast.Block) (ast.Block, error) {
	switch v := b.(type) {
	case *ast.Paragraph:
		c, err := f.runInlinesTopDown(v.Content)
		return setSrc(&ast.Paragraph{Content: c}, v.Source()), err
	case *ast.Plain:
		c, err := f.runInlinesTopDown(v.Content)
		return setSrc(&ast.Plain{Content: c}, v.Source()), err
	case *ast.Header:
		c, err := f.runInlinesTopDown(v.Content)
		return setSrc(&ast.Header{Level: v.Level, Attr: v.Attr, Content: c}, v.Source()), err
	case *ast.BlockQuote:
		c, err := f.RunTopDown(v.Content)
		return setSrc(&ast.BlockQuote{Content: c}, v.Source()), err
	case *ast.BulletList:
		items, err := f.runBlockListsTopDown(v.Items)
		return setSrc(&ast.BulletList{Items: items}, v.Source()), err
	case *ast.OrderedList:
		items, err := f.runBlockListsTopDown(v.Items)
		return setSrc(&ast.OrderedList{Start: v.Start, Style: v.Style, Delim: v.Delim, Items: items}, v.Source()), err
	case *ast.Div:
		c, err := f.RunTopDown(v.Content)
		return setSrc(&ast.Div{Attr: v.Attr, Content: c}, v.Source()), err
	case *ast.Figure:
		c, err := f.RunTopDown(v.Content)
		return setSrc(&ast.Figure{Attr: v.Attr, CaptionShort: v.CaptionShort, CaptionLong: v.CaptionLong, Content: c}, v.Source()), err
	case *ast.LineBlock:
		var lines [][]ast.Inline
		for _, line := range v.Lines {
			filtered, err := f.runInlinesTopDown(line)
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

func (f *Filter) runBlockListsTopDown(items [][]ast.Block) ([][]ast.Block, error) {
	var out [][]ast.Block
	for _, item := range items {
		filtered, err := f.RunTopDown(item)
		if err != nil {
			return nil, err
		}
		out = append(out, filtered)
	}
	return out, nil
}

func (f *Filter) runInlinesTopDown(inlines []ast.Inline) ([]ast.Inline, error) {
	var out []ast.Inline
	for _, inl := range inlines {
		filtered, err := f.applyToInlineTopDown(inl)
		if err != nil {
			return nil, err
		}
		out = append(out, filtered...)
	}
	return out, nil
}

func (f *Filter) applyToInlineTopDown(inl ast.Inline) ([]ast.Inline, error) {
	tag := inl.Tag()
	fn, ok := f.getFunc(tag)
	if !ok {
		fn, ok = f.getFunc("Inline")
	}
	if !ok {
		return f.descendInlineTopDown(inl)
	}
	ret, _, descend, err := f.call2(fn, InlineToLua(inl))
	if err != nil {
		return nil, err
	}
	replaced, err := handleSingleInlineReturn(ret, inl)
	if err != nil {
		return nil, err
	}
	if !descend {
		return replaced, nil
	}
	var out []ast.Inline
	for _, r := range replaced {
		descended, err := f.descendInlineTopDown(r)
		if err != nil {
			return nil, err
		}
		out = append(out, descended...)
	}
	return out, nil
}

func (f *Filter) descendInlineTopDown(inl ast.Inline) ([]ast.Inline, error) {
	withChildren, err := f.topDownInlineChildren(inl)
	if err != nil {
		return nil, err
	}
	return []ast.Inline{withChildren}, nil
}

func (f *Filter) topDownInlineChildren(inl ast.Inline) (ast.Inline, error) {
	switch v := inl.(type) {
	case *ast.Emph:
		c, err := f.runInlinesTopDown(v.Content)
		return setSrc(&ast.Emph{Content: c}, v.Source()), err
	case *ast.Strong:
		c, err := f.runInlinesTopDown(v.Content)
		return setSrc(&ast.Strong{Content: c}, v.Source()), err
	case *ast.Underline:
		c, err := f.runInlinesTopDown(v.Content)
		return setSrc(&ast.Underline{Content: c}, v.Source()), err
	case *ast.Strikeout:
		c, err := f.runInlinesTopDown(v.Content)
		return setSrc(&ast.Strikeout{Content: c}, v.Source()), err
	case *ast.Superscript:
		c, err := f.runInlinesTopDown(v.Content)
		return setSrc(&ast.Superscript{Content: c}, v.Source()), err
	case *ast.Subscript:
		c, err := f.runInlinesTopDown(v.Content)
		return setSrc(&ast.Subscript{Content: c}, v.Source()), err
	case *ast.SmallCaps:
		c, err := f.runInlinesTopDown(v.Content)
		return setSrc(&ast.SmallCaps{Content: c}, v.Source()), err
	case *ast.Quoted:
		c, err := f.runInlinesTopDown(v.Content)
		return setSrc(&ast.Quoted{Type: v.Type, Content: c}, v.Source()), err
	case *ast.Link:
		c, err := f.runInlinesTopDown(v.Content)
		return setSrc(&ast.Link{Attr: v.Attr, Content: c, Target: v.Target, Title: v.Title}, v.Source()), err
	case *ast.Image:
		c, err := f.runInlinesTopDown(v.Content)
		return setSrc(&ast.Image{Attr: v.Attr, Content: c, Target: v.Target, Title: v.Title}, v.Source()), err
	case *ast.Span:
		c, err := f.runInlinesTopDown(v.Content)
		return setSrc(&ast.Span{Attr: v.Attr, Content: c}, v.Source()), err
	case *ast.Insert:
		c, err := f.runInlinesTopDown(v.Content)
		return setSrc(&ast.Insert{Content: c}, v.Source()), err
	case *ast.Delete:
		c, err := f.runInlinesTopDown(v.Content)
		return setSrc(&ast.Delete{Content: c}, v.Source()), err
	case *ast.Highlight:
		c, err := f.runInlinesTopDown(v.Content)
		return setSrc(&ast.Highlight{Content: c}, v.Source()), err
	case *ast.EditComment:
		c, err := f.runInlinesTopDown(v.Content)
		return setSrc(&ast.EditComment{Author: v.Author, Content: c}, v.Source()), err
	case *ast.Note:
		c, err := f.RunTopDown(v.Content)
		return setSrc(&ast.Note{Content: c}, v.Source()), err
	default:
		return inl, nil
	}
}
