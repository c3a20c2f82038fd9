// Package merge implements the assembly pipeline: page-offset computation,
// fixed-point resolution of the TOC's own size, outline construction and
// the final ordered merge.
package merge

import (
	"context"
	"fmt"

	"github.com/pagebinder/pagebinder/internal/schema"
)

// PageRange is a contiguous run of output pages owned by one schema node.
// Ranges never overlap and their concatenation in document order
// reproduces the output page count exactly.
type PageRange struct {
	Owner  *schema.Node
	Start  int // 0-based global page index
	Length int
}

// PageMap is the result of one offset-assignment pass over the tree under
// a given TOC length hypothesis.
type PageMap struct {
	Ranges    []PageRange
	Total     int                  // output page count under this hypothesis
	LeafStart map[*schema.Node]int // first output page of each leaf
	TocStart  int                  // first page of the TOC range, -1 if no marker
}

// BuildPageMap walks the tree in pre-order assigning a running global page
// offset. Leaves contribute the summed page counts of their sources, the
// TOC marker contributes exactly tocLen pages, and sections contribute
// nothing of their own. The offset is threaded through the traversal as an
// explicit value so the builder stays safe to call repeatedly from the
// resolver loop.
func BuildPageMap(ctx context.Context, tree *schema.Tree, tocLen int, counter *PageCounter) (*PageMap, error) {
	if tocLen < 0 {
		return nil, fmt.Errorf("toc length must be >= 0, got %d", tocLen)
	}

	pm := &PageMap{
		LeafStart: make(map[*schema.Node]int),
		TocStart:  -1,
	}

	var walk func(n *schema.Node, offset int) (int, error)
	walk = func(n *schema.Node, offset int) (int, error) {
		switch n.Kind {
		case schema.KindLeaf:
			length := 0
			for _, src := range n.Sources {
				count, err := counter.Count(ctx, src)
				if err != nil {
					return 0, err
				}
				length += count
			}
			pm.Ranges = append(pm.Ranges, PageRange{Owner: n, Start: offset, Length: length})
			pm.LeafStart[n] = offset
			return offset + length, nil

		case schema.KindTocMarker:
			pm.Ranges = append(pm.Ranges, PageRange{Owner: n, Start: offset, Length: tocLen})
			pm.TocStart = offset
			return offset + tocLen, nil

		case schema.KindSection:
			var err error
			for _, c := range n.Children {
				if offset, err = walk(c, offset); err != nil {
					return 0, err
				}
			}
			return offset, nil

		default:
			return 0, fmt.Errorf("unexpected node kind %s", n.Kind)
		}
	}

	offset := 0
	var err error
	for _, root := range tree.Roots {
		if offset, err = walk(root, offset); err != nil {
			return nil, err
		}
	}
	pm.Total = offset
	return pm, nil
}
