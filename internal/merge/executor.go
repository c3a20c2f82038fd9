package merge

import (
	"context"
	"log/slog"

	"github.com/pagebinder/pagebinder/internal/backend"
	"github.com/pagebinder/pagebinder/internal/schema"
	"github.com/pagebinder/pagebinder/internal/toc"
)

// Executor performs the final ordered assembly once offsets are resolved.
type Executor struct {
	Backend backend.Backend
	Logger  *slog.Logger
}

// Execute walks the tree in the same pre-order the page map used — the
// output order must reproduce the computed offsets exactly — collecting
// page blocks from each leaf's sources, splicing rendered TOC pages at the
// marker, and handing everything to the backend for a single atomic write.
func (e *Executor) Execute(ctx context.Context, tree *schema.Tree, res *Resolution, layout toc.Layout, dest string) error {
	log := e.Logger
	if log == nil {
		log = slog.Default()
	}

	var blocks []backend.PageBlock

	var walk func(n *schema.Node) error
	walk = func(n *schema.Node) error {
		switch n.Kind {
		case schema.KindLeaf:
			for _, src := range n.Sources {
				block, err := e.Backend.CopyPages(ctx, src)
				if err != nil {
					return err
				}
				blocks = append(blocks, block)
			}
			return nil

		case schema.KindTocMarker:
			pages := toc.Paginate(res.Lines, layout)
			for i, lines := range pages {
				block, err := e.Backend.RenderTocPage(ctx, lines, layout, i)
				if err != nil {
					return err
				}
				blocks = append(blocks, block)
			}
			log.Debug("rendered toc", "pages", len(pages), "entries", len(res.Lines))
			return nil

		case schema.KindSection:
			for _, c := range n.Children {
				if err := walk(c); err != nil {
					return err
				}
			}
			return nil
		}
		return nil
	}

	for _, root := range tree.Roots {
		if err := walk(root); err != nil {
			return err
		}
	}

	log.Info("writing output",
		"blocks", len(blocks),
		"pages", res.PageMap.Total,
		"toc_pages", res.TocLen,
		"dest", dest)

	return e.Backend.Write(ctx, blocks, res.Outline, dest)
}
