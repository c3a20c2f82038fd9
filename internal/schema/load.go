package schema

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// shapeSchema is the JSON Schema the raw document must satisfy before any
// node construction happens: every value is a source list, a marker mapping
// or a nested section mapping.
//
//go:embed schema.json
var shapeSchema []byte

// Load reads and parses a merge schema from a YAML file.
func Load(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	tree, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

// Parse builds a validated Tree from YAML bytes. The document must be a
// mapping from titles to nodes; sibling order is preserved. Shape errors
// and structural violations both surface as *SchemaError.
func Parse(data []byte) (*Tree, error) {
	if err := checkShape(data); err != nil {
		return nil, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &SchemaError{Kind: MalformedNode, Detail: err.Error()}
	}
	if len(doc.Content) == 0 {
		return nil, &SchemaError{Kind: MalformedNode, Detail: "empty document"}
	}

	roots, err := buildChildren(doc.Content[0], "")
	if err != nil {
		return nil, err
	}

	tree := &Tree{Roots: roots}
	if err := tree.Validate(); err != nil {
		return nil, err
	}
	return tree, nil
}

// checkShape validates the raw document against the embedded JSON Schema.
// YAML mappings with string keys decode to map[string]any, which the
// validator accepts directly.
func checkShape(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return &SchemaError{Kind: MalformedNode, Detail: err.Error()}
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(shapeSchema)); err != nil {
		return fmt.Errorf("failed to load shape schema: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("failed to compile shape schema: %w", err)
	}

	if err := compiled.Validate(doc); err != nil {
		return &SchemaError{Kind: MalformedNode, Detail: err.Error()}
	}
	return nil
}

// buildChildren converts the entries of a YAML mapping node into schema
// nodes, preserving order. yaml.Node is used instead of a Go map because
// sibling order is load-bearing: it defines the final page order.
func buildChildren(mapping *yaml.Node, path string) ([]*Node, error) {
	if mapping.Kind != yaml.MappingNode {
		return nil, &SchemaError{Kind: MalformedNode, Path: path, Detail: "expected a mapping"}
	}

	var nodes []*Node
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, value := mapping.Content[i], mapping.Content[i+1]
		child, err := buildNode(key.Value, value, joinPath(path, key.Value))
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, child)
	}
	return nodes, nil
}

func buildNode(title string, value *yaml.Node, path string) (*Node, error) {
	switch value.Kind {
	case yaml.SequenceNode:
		sources := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, &SchemaError{Kind: MalformedNode, Path: path, Detail: "source list must contain paths"}
			}
			sources = append(sources, item.Value)
		}
		return &Node{Kind: KindLeaf, Title: title, Sources: sources}, nil

	case yaml.MappingNode:
		if isMarker(value) {
			return &Node{Kind: KindTocMarker, Title: title}, nil
		}
		children, err := buildChildren(value, path)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindSection, Title: title, Children: children}, nil

	default:
		return nil, &SchemaError{Kind: MalformedNode, Path: path, Detail: "expected a source list or nested mapping"}
	}
}

// isMarker reports whether a mapping node is the reserved TOC marker form:
// a mapping whose only entry is MarkerKey with a boolean true value. The
// value is decoded rather than string-compared so every YAML spelling of
// true (true, True, TRUE) is honored.
func isMarker(mapping *yaml.Node) bool {
	if len(mapping.Content) != 2 {
		return false
	}
	key, value := mapping.Content[0], mapping.Content[1]
	if key.Value != MarkerKey {
		return false
	}
	var b bool
	return value.Decode(&b) == nil && b
}
