package merge

import (
	"github.com/pagebinder/pagebinder/internal/schema"
	"github.com/pagebinder/pagebinder/internal/toc"
	"github.com/pagebinder/pagebinder/internal/types"
)

// BuildOutline derives the bookmark tree from the schema and a page map.
// Entries mirror Section/DocumentLeaf nesting exactly; the TOC marker never
// appears. A leaf's destination is the start of its own page range; a
// section owns no pages, so it inherits the destination of its first
// descendant leaf in document order.
//
// A section with no leaf descendant has nothing to point at. Validation
// rejects empty sections up front, but a section whose only child is the
// TOC marker still slips through, so the check is repeated here.
func BuildOutline(tree *schema.Tree, pm *PageMap) ([]types.OutlineEntry, error) {
	var build func(n *schema.Node, depth int, path string) (*types.OutlineEntry, error)
	build = func(n *schema.Node, depth int, path string) (*types.OutlineEntry, error) {
		switch n.Kind {
		case schema.KindTocMarker:
			return nil, nil

		case schema.KindLeaf:
			return &types.OutlineEntry{
				Title:       n.Title,
				Depth:       depth,
				Destination: pm.LeafStart[n],
			}, nil

		case schema.KindSection:
			entry := &types.OutlineEntry{Title: n.Title, Depth: depth}
			for _, c := range n.Children {
				child, err := build(c, depth+1, path+"/"+c.Title)
				if err != nil {
					return nil, err
				}
				if child != nil {
					entry.Children = append(entry.Children, *child)
				}
			}
			if len(entry.Children) == 0 {
				return nil, &schema.SchemaError{Kind: schema.EmptySection, Path: path}
			}
			entry.Destination = entry.Children[0].Destination
			return entry, nil

		default:
			return nil, &schema.SchemaError{Kind: schema.MalformedNode, Path: path}
		}
	}

	var entries []types.OutlineEntry
	for _, root := range tree.Roots {
		entry, err := build(root, 0, root.Title)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			entries = append(entries, *entry)
		}
	}
	return entries, nil
}

// FlattenOutline projects the outline into render-ready TOC lines in
// pre-order: each section before its children, children in listed order.
func FlattenOutline(entries []types.OutlineEntry) []toc.Line {
	var lines []toc.Line
	types.WalkOutline(entries, func(e types.OutlineEntry) {
		lines = append(lines, toc.Line{
			Title:       e.Title,
			Depth:       e.Depth,
			Destination: e.Destination,
		})
	})
	return lines
}
