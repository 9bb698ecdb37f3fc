// Package sourcemap tracks where every AST node came from, whether that
// is a byte range in an original source file or a line inside a filter
// script that constructed the node at runtime.
package sourcemap

import "fmt"

// FileId identifies an interned source file within an ASTContext. Zero
// value is never valid; File ids are minted by (*astctx.Context).InternFile.
type FileId uint32

// Position is a zero-based byte offset paired with its zero-based
// row/column, matching the convention tree-sitter itself uses (String
// adds 1 to row and column for display; offset is for slicing).
type Position struct {
	Offset uint32
	Row    uint32
	Col    uint32
}

// Range is a half-open [Start, End) byte span within a single file.
type Range struct {
	Start Position
	End   Position
}

// Len reports the byte length of the range.
func (r Range) Len() uint32 {
	if r.End.Offset < r.Start.Offset {
		return 0
	}
	return r.End.Offset - r.Start.Offset
}

// SourceInfo is a sum type: a node was either parsed from an original file
// at a known byte range, or constructed by a filter at a known script line.
// Exactly one of the two accessor groups is meaningful; check IsOriginal
// or IsFilterProvenance first.
type SourceInfo struct {
	kind sourceKind

	// Original fields.
	file  FileId
	rng   Range

	// FilterProvenance fields.
	filterPath string
	filterLine int
}

type sourceKind uint8

const (
	kindOriginal sourceKind = iota
	kindFilterProvenance
)

// Original builds a SourceInfo pointing at a byte range in a real file.
func Original(file FileId, rng Range) SourceInfo {
	return SourceInfo{kind: kindOriginal, file: file, rng: rng}
}

// FilterProvenance builds a SourceInfo for a node synthesized by a filter,
// recording the filter's script path and the 1-based line that constructed it.
func FilterProvenance(filterPath string, line int) SourceInfo {
	return SourceInfo{kind: kindFilterProvenance, filterPath: filterPath, filterLine: line}
}

// IsOriginal reports whether this SourceInfo points at real source bytes.
func (s SourceInfo) IsOriginal() bool { return s.kind == kindOriginal }

// IsFilterProvenance reports whether this SourceInfo was stamped by a filter.
func (s SourceInfo) IsFilterProvenance() bool { return s.kind == kindFilterProvenance }

// File returns the originating file id. Only meaningful when IsOriginal.
func (s SourceInfo) File() FileId { return s.file }

// Range returns the originating byte range. Only meaningful when IsOriginal.
func (s SourceInfo) Range() Range { return s.rng }

// FilterPath returns the constructing filter's script path. Only
// meaningful when IsFilterProvenance.
func (s SourceInfo) FilterPath() string { return s.filterPath }

// FilterLine returns the constructing filter's 1-based script line. Only
// meaningful when IsFilterProvenance.
func (s SourceInfo) FilterLine() int { return s.filterLine }

// String renders a human-readable location, used in diagnostics and test
// failure messages.
func (s SourceInfo) String() string {
	switch s.kind {
	case kindOriginal:
		return fmt.Sprintf("file#%d:%d:%d", s.file, s.rng.Start.Row+1, s.rng.Start.Col+1)
	case kindFilterProvenance:
		return fmt.Sprintf("%s:%d", s.filterPath, s.filterLine)
	default:
		return "<unknown source>"
	}
}
