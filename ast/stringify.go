package ast

import "strings"

// Stringify flattens an inline sequence to plain text: Str contributes
// its text, Space/SoftBreak contribute a single space, LineBreak
// contributes a newline, and every inline container is recursed into.
// This is shared by metadata normalization's pagetitle derivation (spec
// §4.3c) and the VM-visible pandoc.utils.stringify function (spec §4.4).
func Stringify(inlines []Inline) string {
	var b strings.Builder
	writeInlines(&b, inlines)
	return b.String()
}

func writeInlines(b *strings.Builder, inlines []Inline) {
	for _, in := range inlines {
		writeInline(b, in)
	}
}

func writeInline(b *strings.Builder, in Inline) {
	switch v := in.(type) {
	case *Str:
		b.WriteString(v.Text)
	case *Space, *SoftBreak:
		b.WriteByte(' ')
	case *LineBreak:
		b.WriteByte('\n')
	case *Emph:
		writeInlines(b, v.Content)
	case *Strong:
		writeInlines(b, v.Content)
	case *Underline:
		writeInlines(b, v.Content)
	case *Strikeout:
		writeInlines(b, v.Content)
	case *Superscript:
		writeInlines(b, v.Content)
	case *Subscript:
		writeInlines(b, v.Content)
	case *SmallCaps:
		writeInlines(b, v.Content)
	case *Quoted:
		open, close := "\"", "\""
		if v.Type == SingleQuote {
			open, close = "'", "'"
		}
		b.WriteString(open)
		writeInlines(b, v.Content)
		b.WriteString(close)
	case *Cite:
		writeInlines(b, v.Content)
	case *Code:
		b.WriteString(v.Text)
	case *Math:
		b.WriteString(v.Text)
	case *RawInline:
		b.WriteString(v.Text)
	case *Link:
		writeInlines(b, v.Content)
	case *Image:
		writeInlines(b, v.Content)
	case *Span:
		writeInlines(b, v.Content)
	case *Insert:
		writeInlines(b, v.Content)
	case *Delete:
		writeInlines(b, v.Content)
	case *Highlight:
		writeInlines(b, v.Content)
	case *EditComment:
		writeInlines(b, v.Content)
	case *NoteReference:
		// footnote markers contribute no visible text
	case *Note:
		// inline footnote bodies are block content, not flattened here
	case *Shortcode:
		// unresolved shortcodes contribute nothing; resolution runs first
	}
}

// StringifyBlocks flattens a block sequence to plain text, used when a
// ConfigValue::PandocBlocks metadata value needs rendering to a shortcode
// result (spec §4.3a): paragraph boundaries become a single Space.
func StringifyBlocks(blocks []Block) string {
	var parts []string
	for _, blk := range blocks {
		switch v := blk.(type) {
		case *Paragraph:
			parts = append(parts, Stringify(v.Content))
		case *Plain:
			parts = append(parts, Stringify(v.Content))
		case *Header:
			parts = append(parts, Stringify(v.Content))
		case *BlockQuote:
			parts = append(parts, StringifyBlocks(v.Content))
		case *Div:
			parts = append(parts, StringifyBlocks(v.Content))
		}
	}
	return strings.Join(parts, " ")
}
