// Package ast defines the document tree: the disjoint Block and Inline
// node families, the ConfigValue metadata family, and the attribute
// triple shared by every attribute-bearing element.
package ast

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/quarto-dev/quartomd-go/sourcemap"
)

// Attr is the (identifier, classes, key_values) triple carried by every
// attribute-bearing Block/Inline. KeyVals preserves insertion order with
// last-write-wins dedup by key, matching the original's hashlink map.
type Attr struct {
	Identifier string
	Classes    []string
	KeyVals    *orderedmap.OrderedMap[string, string]
}

// NewAttr builds an empty attribute triple.
func NewAttr() Attr {
	return Attr{KeyVals: orderedmap.New[string, string]()}
}

// IsEmpty reports whether the attribute triple carries no information,
// the state a node has before any `{...}` syntax is attached to it.
func (a Attr) IsEmpty() bool {
	return a.Identifier == "" && len(a.Classes) == 0 && (a.KeyVals == nil || a.KeyVals.Len() == 0)
}

// Set inserts or overwrites a key, keeping first-seen insertion order and
// last-wins value semantics as required by the spec.
func (a *Attr) Set(key, value string) {
	if a.KeyVals == nil {
		a.KeyVals = orderedmap.New[string, string]()
	}
	a.KeyVals.Set(key, value)
}

// Get looks up a key/value pair.
func (a Attr) Get(key string) (string, bool) {
	if a.KeyVals == nil {
		return "", false
	}
	return a.KeyVals.Get(key)
}

// HasClass reports whether a class name is present.
func (a Attr) HasClass(name string) bool {
	for _, c := range a.Classes {
		if c == name {
			return true
		}
	}
	return false
}

// Equal performs the byte-exact, order-sensitive comparison the engine
// reconciliation pass needs: identical identifier, identical class list
// order, identical key/value insertion order and contents.
func (a Attr) Equal(other Attr) bool {
	if a.Identifier != other.Identifier {
		return false
	}
	if len(a.Classes) != len(other.Classes) {
		return false
	}
	for i := range a.Classes {
		if a.Classes[i] != other.Classes[i] {
			return false
		}
	}
	aLen, bLen := 0, 0
	if a.KeyVals != nil {
		aLen = a.KeyVals.Len()
	}
	if other.KeyVals != nil {
		bLen = other.KeyVals.Len()
	}
	if aLen != bLen {
		return false
	}
	if aLen == 0 {
		return true
	}
	ai, bi := a.KeyVals.Oldest(), other.KeyVals.Oldest()
	for ai != nil && bi != nil {
		if ai.Key != bi.Key || ai.Value != bi.Value {
			return false
		}
		ai, bi = ai.Next(), bi.Next()
	}
	return true
}

// AttrSourceInfo maps each attribute component back to its own byte
// range: the `{.class #id key=val}` syntax spans several sub-ranges that
// need independent source locations for IDE-quality diagnostics.
type AttrSourceInfo struct {
	Identifier sourcemap.SourceInfo
	Classes    []sourcemap.SourceInfo
	KeyVals    map[string]sourcemap.SourceInfo
	Whole      sourcemap.SourceInfo
}
