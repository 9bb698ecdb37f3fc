package ast

// ListNumberStyle is the numbering style of an OrderedList.
type ListNumberStyle int

const (
	DefaultStyle ListNumberStyle = iota
	Decimal
	LowerRoman
	UpperRoman
	LowerAlpha
	UpperAlpha
	ExampleStyle
)

// ListNumberDelim is the delimiter following an ordered list marker.
type ListNumberDelim int

const (
	DefaultDelim ListNumberDelim = iota
	Period
	OneParen
	TwoParens
)

// Paragraph is a loose-list-item or top-level paragraph of inlines.
type Paragraph struct {
	base
	Content []Inline
}

func (*Paragraph) isBlock()     {}
func (*Paragraph) Tag() string  { return "Para" }

// Plain is inline content with no paragraph wrapper, used for tight
// list items.
type Plain struct {
	base
	Content []Inline
}

func (*Plain) isBlock()    {}
func (*Plain) Tag() string { return "Plain" }

// Header is a section heading.
type Header struct {
	base
	Level   int
	Attr    Attr
	Content []Inline
}

func (*Header) isBlock()    {}
func (*Header) Tag() string { return "Header" }

// CodeBlock is a fenced or indented code block.
type CodeBlock struct {
	base
	Attr Attr
	Text string
}

func (*CodeBlock) isBlock()    {}
func (*CodeBlock) Tag() string { return "CodeBlock" }

// RawBlock is raw output-format-specific content, e.g. raw HTML.
type RawBlock struct {
	base
	Format string
	Text   string
}

func (*RawBlock) isBlock()    {}
func (*RawBlock) Tag() string { return "RawBlock" }

// BlockQuote is a quoted sequence of blocks.
type BlockQuote struct {
	base
	Content []Block
}

func (*BlockQuote) isBlock()    {}
func (*BlockQuote) Tag() string { return "BlockQuote" }

// OrderedList is a numbered list.
type OrderedList struct {
	base
	Start int
	Style ListNumberStyle
	Delim ListNumberDelim
	Items [][]Block
}

func (*OrderedList) isBlock()    {}
func (*OrderedList) Tag() string { return "OrderedList" }

// BulletList is an unnumbered list.
type BulletList struct {
	base
	Items [][]Block
}

func (*BulletList) isBlock()    {}
func (*BulletList) Tag() string { return "BulletList" }

// DefinitionItem is one term/definitions pair within a DefinitionList.
type DefinitionItem struct {
	Term        []Inline
	Definitions [][]Block
}

// DefinitionList is a term/definition list.
type DefinitionList struct {
	base
	Items []DefinitionItem
}

func (*DefinitionList) isBlock()    {}
func (*DefinitionList) Tag() string { return "DefinitionList" }

// HorizontalRule is a thematic break.
type HorizontalRule struct {
	base
}

func (*HorizontalRule) isBlock()    {}
func (*HorizontalRule) Tag() string { return "HorizontalRule" }

// Div is a generic attributed block container.
type Div struct {
	base
	Attr    Attr
	Content []Block
}

func (*Div) isBlock()    {}
func (*Div) Tag() string { return "Div" }

// TableCell is one cell of a pipe table.
type TableCell struct {
	Attr    Attr
	Content []Block
}

// TableRow is one row of cells.
type TableRow struct {
	Attr  Attr
	Cells []TableCell
}

// Table models a pipe table; full cell-level diffing is intentionally
// out of scope for reconciliation (spec §4.3e), so this stays a plain
// structural container rather than a richly-typed grid.
type Table struct {
	base
	Attr         Attr
	CaptionShort []Inline
	CaptionLong  []Block
	Head         []TableRow
	Bodies       [][]TableRow
	Foot         []TableRow
}

func (*Table) isBlock()    {}
func (*Table) Tag() string { return "Table" }

// Figure is a captioned container, typically wrapping an Image or Table.
type Figure struct {
	base
	Attr         Attr
	CaptionShort []Inline
	CaptionLong  []Block
	Content      []Block
}

func (*Figure) isBlock()    {}
func (*Figure) Tag() string { return "Figure" }

// LineBlock is a sequence of lines preserving line breaks verbatim.
type LineBlock struct {
	base
	Lines [][]Inline
}

func (*LineBlock) isBlock()    {}
func (*LineBlock) Tag() string { return "LineBlock" }

// NoteDefinitionPara is an intermediate block produced by the parser for
// a footnote-definition paragraph (`[^id]: text`); the footnote
// extraction transform consumes and removes it (spec §4.3b).
type NoteDefinitionPara struct {
	base
	ID      string
	Content []Block
}

func (*NoteDefinitionPara) isBlock()    {}
func (*NoteDefinitionPara) Tag() string { return "NoteDefinitionPara" }

// NoteDefinitionFencedBlock is the fenced-block form of a footnote
// definition; same lifecycle as NoteDefinitionPara.
type NoteDefinitionFencedBlock struct {
	base
	ID      string
	Content []Block
}

func (*NoteDefinitionFencedBlock) isBlock()    {}
func (*NoteDefinitionFencedBlock) Tag() string { return "NoteDefinitionFencedBlock" }

// BlockMetadata is an intermediate block carrying a YAML-frontmatter-like
// fragment embedded mid-document; a normalization pass consumes it.
type BlockMetadata struct {
	base
	Value ConfigValue
}

func (*BlockMetadata) isBlock()    {}
func (*BlockMetadata) Tag() string { return "BlockMetadata" }

// CaptionBlock is an intermediate block holding a Table/Figure caption
// found as a following sibling in the concrete tree; postprocessing
// attaches it to the preceding Table/Figure and removes it (spec §4.2).
type CaptionBlock struct {
	base
	Short []Inline
	Long  []Block
}

func (*CaptionBlock) isBlock()    {}
func (*CaptionBlock) Tag() string { return "CaptionBlock" }

// CustomBlock carries a tag plus a map of typed slots for block kinds
// this module's closed variant set does not model directly (spec §3).
type CustomBlock struct {
	base
	CustomTag string
	Slots     map[string]ConfigValue
}

func (*CustomBlock) isBlock()    {}
func (c *CustomBlock) Tag() string { return c.CustomTag }
