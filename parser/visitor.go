package parser

import (
	"strconv"

	"github.com/quarto-dev/quartomd-go/ast"
	"github.com/quarto-dev/quartomd-go/astctx"
	"github.com/quarto-dev/quartomd-go/cst"
	"github.com/quarto-dev/quartomd-go/diag"
	"github.com/quarto-dev/quartomd-go/sourcemap"
)

// Visitor walks one file's concrete syntax tree into an AST, matching
// the teacher's walkTree/checkNode dispatch shape (providers/base) but
// returning values bottom-up instead of accumulating matches.
type Visitor struct {
	ctx  *astctx.Context
	file sourcemap.FileId
	src  []byte
}

// New builds a Visitor over one interned file's bytes.
func New(ctx *astctx.Context, file sourcemap.FileId, src []byte) *Visitor {
	return &Visitor{ctx: ctx, file: file, src: src}
}

// Parse is the package's main entry point: scans src into a concrete
// tree, walks it into an AST, and runs postprocess. meta is the
// already-parsed YAML frontmatter (spec §6: an external parser, out of
// scope here); pass ast.NewConfigMap() when there is none.
func Parse(ctx *astctx.Context, path string, src []byte, meta ast.ConfigMap) (ast.Pandoc, error) {
	tree, err := cst.Parse(src)
	if err != nil {
		return ast.Pandoc{}, diag.FatalError{Code: diag.ErrInvalidCST, Message: "scan failed", Detail: err.Error()}
	}
	file := ctx.InternFile(path, src)
	v := New(ctx, file, src)
	blocks := v.visitBlocks(tree.RootNode().Children())
	doc := ast.Pandoc{Meta: meta, Blocks: blocks}
	if err := Postprocess(ctx, &doc); err != nil {
		return doc, err
	}
	return doc, nil
}

func (v *Visitor) rng(n *cst.Node) sourcemap.Range {
	return sourcemap.Range{
		Start: sourcemap.Position{Offset: n.StartByte(), Row: n.StartPoint().Row, Col: n.StartPoint().Column},
		End:   sourcemap.Position{Offset: n.EndByte(), Row: n.EndPoint().Row, Col: n.EndPoint().Column},
	}
}

func (v *Visitor) srcInfo(n *cst.Node) sourcemap.SourceInfo {
	return sourcemap.Original(v.file, v.rng(n))
}

// visitBlocks walks a sequence of sibling concrete nodes into the
// flattened block list they produce; a node that yields IBlocks splices
// its contents rather than nesting.
func (v *Visitor) visitBlocks(nodes []*cst.Node) []ast.Block {
	var out []ast.Block
	for _, n := range nodes {
		switch im := v.visitTopLevel(n).(type) {
		case IBlock:
			out = append(out, im.Block)
		case IBlocks:
			out = append(out, im.Blocks...)
		case IUnknown:
			v.ctx.Diagnostics.Push(newUnknownDiag(im))
		}
	}
	return out
}

// visitTopLevel dispatches on a top-level/block-context concrete node.
func (v *Visitor) visitTopLevel(n *cst.Node) Intermediate {
	switch n.Kind() {
	case "pandoc_paragraph":
		return IBlock{&ast.Paragraph{Content: v.visitInlineChildren(n)}}

	case "atx_heading":
		return v.visitHeading(n)

	case "fenced_code_block":
		return v.visitCodeBlock(n)

	case "thematic_break":
		hr := &ast.HorizontalRule{}
		hr.SetSource(v.srcInfo(n))
		return IBlock{hr}

	case "block_quote":
		bq := &ast.BlockQuote{Content: v.visitBlocks(n.Children())}
		bq.SetSource(v.srcInfo(n))
		return IBlock{bq}

	case "note_definition_para":
		return v.visitNoteDefinition(n, false)

	case "bullet_list":
		return v.visitList(n, false)

	case "ordered_list":
		return v.visitList(n, true)

	case "pipe_table":
		return v.visitTable(n)

	case "pandoc_table_caption":
		short, long := v.splitCaption(n)
		cap := &ast.CaptionBlock{Short: short, Long: long}
		cap.SetSource(v.srcInfo(n))
		return IBlock{cap}

	default:
		return IUnknown{Kind: n.Kind(), Src: v.srcInfo(n)}
	}
}

func (v *Visitor) visitHeading(n *cst.Node) Intermediate {
	level := 1
	var attr ast.Attr
	var content []ast.Inline
	for _, c := range n.Children() {
		switch c.Kind() {
		case "heading_level":
			if lv, err := strconv.Atoi(c.Value()); err == nil {
				level = lv
			}
		case "attribute_specifier":
			attr, _ = v.buildAttr(c)
		default:
			content = append(content, v.visitInlineNodes([]*cst.Node{c})...)
		}
	}
	h := &ast.Header{Level: level, Attr: attr, Content: content}
	h.SetSource(v.srcInfo(n))
	return IBlock{h}
}

func (v *Visitor) visitCodeBlock(n *cst.Node) Intermediate {
	var attr ast.Attr
	var format string
	var text string
	haveAttr := false
	for _, c := range n.Children() {
		switch c.Kind() {
		case "info_string":
			format = c.Value()
		case "attribute_specifier":
			attr, _ = v.buildAttr(c)
			haveAttr = true
		case "code_fence_content":
			text = string(v.src[c.StartByte():c.EndByte()])
		}
	}
	if !haveAttr {
		attr = classFromInfoString(format)
	}
	cb := &ast.CodeBlock{Attr: attr, Text: text}
	cb.SetSource(v.srcInfo(n))
	return IBlock{cb}
}

func (v *Visitor) visitNoteDefinition(n *cst.Node, fenced bool) Intermediate {
	var id string
	var inlineChildren []*cst.Node
	for _, c := range n.Children() {
		if c.Kind() == "footnote_id" {
			id = c.Value()
			continue
		}
		inlineChildren = append(inlineChildren, c)
	}
	content := []ast.Block{&ast.Paragraph{Content: v.visitInlineNodes(inlineChildren)}}
	var def ast.Block
	if fenced {
		def = &ast.NoteDefinitionFencedBlock{ID: id, Content: content}
	} else {
		def = &ast.NoteDefinitionPara{ID: id, Content: content}
	}
	def.SetSource(v.srcInfo(n))
	return IBlock{def}
}

// visitInlineChildren visits every child of n as inline content; a child
// of a kind the inline visitor does not recognize is dropped with a
// diagnostic.
func (v *Visitor) visitInlineChildren(n *cst.Node) []ast.Inline {
	return v.visitInlineNodes(n.Children())
}

func (v *Visitor) splitCaption(n *cst.Node) ([]ast.Inline, []ast.Block) {
	inlines := v.visitInlineNodes(n.Children())
	return inlines, nil
}
