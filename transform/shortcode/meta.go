package shortcode

import (
	"strings"

	"github.com/quarto-dev/quartomd-go/ast"
	"github.com/quarto-dev/quartomd-go/sourcemap"
)

// MetaHandler implements the built-in "meta" shortcode (spec §4.3a): a
// positional key supporting dot notation (`meta author.name`), navigated
// against the document's metadata map.
func MetaHandler(sc *ast.Shortcode, meta ast.ConfigMap, src sourcemap.SourceInfo) Result {
	if len(sc.PositionalArgs) == 0 {
		return Error("meta", "meta shortcode requires a key argument")
	}
	path := sc.PositionalArgs[0]
	val, ok := navigate(meta, path)
	if !ok {
		return Error(path, "unknown metadata key \""+path+"\"")
	}
	inlines, ok := valueToInlines(val)
	if !ok {
		return Error("invalid meta type", "metadata value at \""+path+"\" cannot be rendered inline")
	}
	return Inlines(inlines)
}

func navigate(meta ast.ConfigMap, path string) (ast.ConfigValue, bool) {
	parts := strings.Split(path, ".")
	var cur ast.ConfigValue = meta
	for _, p := range parts {
		m, ok := cur.(ast.ConfigMap)
		if !ok {
			return nil, false
		}
		v, ok := m.Get(p)
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func valueToInlines(v ast.ConfigValue) ([]ast.Inline, bool) {
	switch val := v.(type) {
	case ast.Scalar:
		s, ok := val.AsStr()
		if !ok {
			return []ast.Inline{&ast.Str{Text: ""}}, true
		}
		return []ast.Inline{&ast.Str{Text: s}}, true
	case ast.Path:
		return []ast.Inline{&ast.Str{Text: val.Value}}, true
	case ast.PandocInlines:
		return val.Inlines, true
	case ast.PandocBlocks:
		return []ast.Inline{&ast.Str{Text: ast.StringifyBlocks(val.Blocks)}}, true
	default:
		return nil, false
	}
}
