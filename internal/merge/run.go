package merge

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/pagebinder/pagebinder/internal/backend"
	"github.com/pagebinder/pagebinder/internal/schema"
	"github.com/pagebinder/pagebinder/internal/toc"
)

// Options configures a single end-to-end merge run.
type Options struct {
	SchemaPath string
	OutputPath string
	InputDir   string // prefix for relative source paths, may be empty
	Layout     toc.Layout
	Workers    int // concurrent page-count queries during warm-up
	Backend    backend.Backend
	Logger     *slog.Logger
}

// Result summarizes a successful merge.
type Result struct {
	TotalPages int
	TocPages   int
	Iterations int
	Entries    int
	Sources    int
	OutputPath string
}

// Run executes the whole pipeline: load and validate the schema, resolve
// source paths, warm page counts, resolve the TOC fixed point, and perform
// the final assembly. Every failure aborts the run; no partial output is
// published.
func Run(ctx context.Context, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	tree, err := schema.Load(opts.SchemaPath)
	if err != nil {
		return nil, err
	}
	tree = ResolveSources(tree, opts.InputDir)

	sources := SourcePaths(tree)
	log.Debug("schema loaded", "sources", len(sources), "toc", tree.HasTocMarker())

	counter := NewPageCounter(opts.Backend)
	if err := counter.Warm(ctx, sources, opts.Workers); err != nil {
		return nil, err
	}

	res, err := Resolve(ctx, tree, opts.Layout, counter)
	if err != nil {
		return nil, err
	}
	log.Debug("resolved toc size",
		"toc_pages", res.TocLen,
		"iterations", res.Iterations,
		"total_pages", res.PageMap.Total)

	exec := &Executor{Backend: opts.Backend, Logger: log}
	if err := exec.Execute(ctx, tree, res, opts.Layout, opts.OutputPath); err != nil {
		return nil, err
	}

	return &Result{
		TotalPages: res.PageMap.Total,
		TocPages:   res.TocLen,
		Iterations: res.Iterations,
		Entries:    len(res.Lines),
		Sources:    len(sources),
		OutputPath: opts.OutputPath,
	}, nil
}

// ResolveSources returns a copy of the tree with every relative source path
// joined onto inputDir. Absolute paths pass through untouched. The input
// tree is never mutated.
func ResolveSources(tree *schema.Tree, inputDir string) *schema.Tree {
	if inputDir == "" {
		return tree
	}

	var clone func(n *schema.Node) *schema.Node
	clone = func(n *schema.Node) *schema.Node {
		out := &schema.Node{Kind: n.Kind, Title: n.Title}
		if len(n.Sources) > 0 {
			out.Sources = make([]string, len(n.Sources))
			for i, src := range n.Sources {
				if filepath.IsAbs(src) {
					out.Sources[i] = src
				} else {
					out.Sources[i] = filepath.Join(inputDir, src)
				}
			}
		}
		for _, c := range n.Children {
			out.Children = append(out.Children, clone(c))
		}
		return out
	}

	resolved := &schema.Tree{}
	for _, root := range tree.Roots {
		resolved.Roots = append(resolved.Roots, clone(root))
	}
	return resolved
}

// SourcePaths lists every source document in document order, duplicates
// included.
func SourcePaths(tree *schema.Tree) []string {
	var paths []string
	tree.Walk(func(n *schema.Node) {
		paths = append(paths, n.Sources...)
	})
	return paths
}
