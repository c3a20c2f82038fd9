// Package schema models the merge plan: a caller-declared tree of sections,
// document leaves and an optional table-of-contents marker. The tree is
// loaded once from YAML, validated once, and immutable afterwards.
package schema

import "fmt"

// MarkerKey is the reserved mapping key that denotes a TOC marker node.
const MarkerKey = "_toc_"

// Kind discriminates the node variants of a merge schema.
type Kind int

const (
	// KindSection groups child nodes and contributes no pages of its own.
	KindSection Kind = iota
	// KindLeaf contributes the pages of its source documents, in order.
	KindLeaf
	// KindTocMarker marks where the generated TOC is spliced in.
	KindTocMarker
)

func (k Kind) String() string {
	switch k {
	case KindSection:
		return "section"
	case KindLeaf:
		return "leaf"
	case KindTocMarker:
		return "toc_marker"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is one node of the merge schema. Exactly one variant applies,
// selected by Kind: Sections carry Children, leaves carry Sources, and a
// TOC marker carries neither.
type Node struct {
	Kind     Kind
	Title    string
	Sources  []string // KindLeaf: ordered source document paths
	Children []*Node  // KindSection: ordered child nodes
}

// Tree is a validated merge schema. Roots preserve document order.
type Tree struct {
	Roots []*Node
}

// ErrorKind identifies the class of a schema violation.
type ErrorKind string

const (
	// MultipleTocMarkers: more than one TOC marker anywhere in the tree.
	MultipleTocMarkers ErrorKind = "multiple_toc_markers"
	// EmptySection: a section with no children, or no leaf descendant.
	EmptySection ErrorKind = "empty_section"
	// MalformedNode: a node that is neither section, leaf nor marker.
	MalformedNode ErrorKind = "malformed_node"
)

// SchemaError reports a structural violation of the merge schema. It is
// always fatal and always raised before any document I/O.
type SchemaError struct {
	Kind   ErrorKind
	Path   string // slash-joined titles from the root to the offending node
	Detail string // optional human-readable detail
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("schema: %s", e.Kind)
	if e.Path != "" {
		msg += fmt.Sprintf(" at %q", e.Path)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Validate checks the structural invariants of the tree: at most one TOC
// marker in the whole tree, and no empty sections. It returns a
// *SchemaError on the first violation found in document order.
func (t *Tree) Validate() error {
	markers := 0
	var walk func(n *Node, path string) error
	walk = func(n *Node, path string) error {
		switch n.Kind {
		case KindTocMarker:
			markers++
			if markers > 1 {
				return &SchemaError{Kind: MultipleTocMarkers, Path: path}
			}
		case KindSection:
			if len(n.Children) == 0 {
				return &SchemaError{Kind: EmptySection, Path: path}
			}
			for _, c := range n.Children {
				if err := walk(c, joinPath(path, c.Title)); err != nil {
					return err
				}
			}
		case KindLeaf:
			if len(n.Sources) == 0 {
				return &SchemaError{Kind: MalformedNode, Path: path}
			}
		default:
			return &SchemaError{Kind: MalformedNode, Path: path}
		}
		return nil
	}

	for _, root := range t.Roots {
		if err := walk(root, root.Title); err != nil {
			return err
		}
	}
	return nil
}

// HasTocMarker reports whether the tree contains a TOC marker.
// Only meaningful after Validate has passed.
func (t *Tree) HasTocMarker() bool {
	found := false
	t.Walk(func(n *Node) {
		if n.Kind == KindTocMarker {
			found = true
		}
	})
	return found
}

// Walk visits every node in pre-order document order.
func (t *Tree) Walk(fn func(n *Node)) {
	var walk func(n *Node)
	walk = func(n *Node) {
		fn(n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, root := range t.Roots {
		walk(root)
	}
}

func joinPath(parent, title string) string {
	if parent == "" {
		return title
	}
	return parent + "/" + title
}
