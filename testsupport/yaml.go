// Package testsupport provides fixture helpers shared across this
// module's test suites; nothing here is imported by production code.
package testsupport

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/quarto-dev/quartomd-go/ast"
)

// FromYAML parses a YAML document into this module's ConfigValue tree,
// the same shape a document's frontmatter metadata takes once parsed.
// Test fixtures use this instead of hand-building ConfigMap/ConfigArray
// literals for anything beyond a couple of keys.
func FromYAML(src []byte) (ast.ConfigValue, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(src, &node); err != nil {
		return nil, fmt.Errorf("testsupport: parse YAML: %w", err)
	}
	if len(node.Content) == 0 {
		return ast.NewConfigMap(), nil
	}
	return nodeToConfigValue(node.Content[0])
}

func nodeToConfigValue(n *yaml.Node) (ast.ConfigValue, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return ast.NewConfigMap(), nil
		}
		return nodeToConfigValue(n.Content[0])
	case yaml.MappingNode:
		m := ast.NewConfigMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			val, err := nodeToConfigValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Set(key, val)
		}
		return m, nil
	case yaml.SequenceNode:
		arr := ast.ConfigArray{}
		for _, item := range n.Content {
			val, err := nodeToConfigValue(item)
			if err != nil {
				return nil, err
			}
			arr.Items = append(arr.Items, val)
		}
		return arr, nil
	case yaml.ScalarNode:
		return scalarToConfigValue(n)
	case yaml.AliasNode:
		return nodeToConfigValue(n.Alias)
	default:
		return nil, fmt.Errorf("testsupport: unsupported YAML node kind %d", n.Kind)
	}
}

func scalarToConfigValue(n *yaml.Node) (ast.ConfigValue, error) {
	switch n.Tag {
	case "!!null":
		return ast.Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return ast.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, err
		}
		return ast.Integer(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return ast.Float(f), nil
	default:
		return ast.String(n.Value), nil
	}
}
