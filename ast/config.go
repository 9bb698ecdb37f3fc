package ast

import (
	"fmt"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/bmatcuk/doublestar/v4"
)

// ConfigValue models YAML-frontmatter-shaped metadata and per-node
// attribute bags. It is a closed sum type; every variant implements
// configValue() so only this package's types satisfy the interface.
type ConfigValue interface {
	configValue()
}

// ConfigMap is an insertion-ordered string-keyed map, the variant every
// document's top-level `meta` uses.
type ConfigMap struct {
	Entries *orderedmap.OrderedMap[string, ConfigValue]
}

func (ConfigMap) configValue() {}

// NewConfigMap returns an empty, ready-to-use ConfigMap.
func NewConfigMap() ConfigMap {
	return ConfigMap{Entries: orderedmap.New[string, ConfigValue]()}
}

// Get looks up a key at this level only (no dot-notation descent; see
// transform/shortcode for nested lookup).
func (m ConfigMap) Get(key string) (ConfigValue, bool) {
	if m.Entries == nil {
		return nil, false
	}
	return m.Entries.Get(key)
}

// Set inserts or overwrites a key, preserving first-seen order.
func (m *ConfigMap) Set(key string, v ConfigValue) {
	if m.Entries == nil {
		m.Entries = orderedmap.New[string, ConfigValue]()
	}
	m.Entries.Set(key, v)
}

// ConfigArray is an ordered sequence of values.
type ConfigArray struct {
	Items []ConfigValue
}

func (ConfigArray) configValue() {}

// ScalarKind discriminates the leaf value types a Scalar can hold.
type ScalarKind int

const (
	ScalarString ScalarKind = iota
	ScalarBool
	ScalarInteger
	ScalarFloat
	ScalarNull
)

// Scalar is a leaf ConfigValue: exactly one of its fields is meaningful,
// selected by Kind.
type Scalar struct {
	Kind    ScalarKind
	Str     string
	Bool    bool
	Integer int64
	Float   float64
}

func (Scalar) configValue() {}

// String builds a string scalar.
func String(s string) Scalar { return Scalar{Kind: ScalarString, Str: s} }

// Bool builds a bool scalar.
func Bool(b bool) Scalar { return Scalar{Kind: ScalarBool, Bool: b} }

// Integer builds an integer scalar.
func Integer(i int64) Scalar { return Scalar{Kind: ScalarInteger, Integer: i} }

// Float builds a float scalar.
func Float(f float64) Scalar { return Scalar{Kind: ScalarFloat, Float: f} }

// Null builds the null scalar.
func Null() Scalar { return Scalar{Kind: ScalarNull} }

// IsNull reports whether this scalar is the null variant.
func (s Scalar) IsNull() bool { return s.Kind == ScalarNull }

// AsStr renders the scalar as a string the way the document writer would
// stringify metadata: strings pass through, numbers/bools use their Go
// textual form, null is "".
func (s Scalar) AsStr() (string, bool) {
	switch s.Kind {
	case ScalarString:
		return s.Str, true
	case ScalarBool:
		return strconv.FormatBool(s.Bool), true
	case ScalarInteger:
		return strconv.FormatInt(s.Integer, 10), true
	case ScalarFloat:
		return strconv.FormatFloat(s.Float, 'g', -1, 64), true
	default:
		return "", false
	}
}

// AsBool returns the bool value, only meaningful when Kind == ScalarBool.
func (s Scalar) AsBool() (bool, bool) {
	if s.Kind != ScalarBool {
		return false, false
	}
	return s.Bool, true
}

// AsInt returns the integer value, only meaningful when Kind == ScalarInteger.
func (s Scalar) AsInt() (int64, bool) {
	if s.Kind != ScalarInteger {
		return 0, false
	}
	return s.Integer, true
}

// Path is a filesystem-path-shaped scalar, kept distinct from String so
// hosts can apply path-specific normalization without guessing.
type Path struct {
	Value string
}

func (Path) configValue() {}

// Glob is a filesystem glob pattern value (e.g. a `resources:` entry).
// Matching is delegated to doublestar so the same wildcard semantics the
// teacher's file walker used for discovery are available here for
// pattern evaluation, without this module owning file discovery itself.
type Glob struct {
	Pattern string
}

func (Glob) configValue() {}

// Match reports whether a candidate path matches this glob pattern.
func (g Glob) Match(path string) (bool, error) {
	ok, err := doublestar.Match(g.Pattern, path)
	if err != nil {
		return false, fmt.Errorf("glob %q: %w", g.Pattern, err)
	}
	return ok, nil
}

// Expr is an unevaluated expression value (e.g. a conditional metadata
// flag); the pipeline carries it opaquely.
type Expr struct {
	Source string
}

func (Expr) configValue() {}

// PandocInlines embeds a sequence of Inline nodes as a metadata value
// (e.g. rich-text metadata fields parsed inline).
type PandocInlines struct {
	Inlines []Inline
}

func (PandocInlines) configValue() {}

// PandocBlocks embeds a sequence of Block nodes as a metadata value.
type PandocBlocks struct {
	Blocks []Block
}

func (PandocBlocks) configValue() {}
