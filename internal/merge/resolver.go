package merge

import (
	"context"
	"fmt"

	"github.com/pagebinder/pagebinder/internal/schema"
	"github.com/pagebinder/pagebinder/internal/toc"
	"github.com/pagebinder/pagebinder/internal/types"
)

// maxResolveIterations caps the fixed-point loop. With the pure greedy
// paginator the rendered length depends only on the entry count, so the
// loop stabilizes within two passes; the cap guards against a future
// paginator whose rendered length oscillates with the hypothesis.
const maxResolveIterations = 10

// ConvergenceError reports a resolver that failed to reach a fixed point
// within the iteration cap. Seq holds the observed TOC length sequence for
// diagnosis.
type ConvergenceError struct {
	Seq []int
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("convergence: toc size still changing after %d iterations (lengths %v)", len(e.Seq)-1, e.Seq)
}

// Resolution is the converged state of the pipeline: final offsets, the
// outline anchored to them, the flattened TOC lines, and the resolved TOC
// page count.
type Resolution struct {
	PageMap    *PageMap
	Outline    []types.OutlineEntry
	Lines      []toc.Line
	TocLen     int
	Iterations int
}

// Resolve computes final page offsets. The circularity — TOC page numbers
// depend on offsets, offsets depend on the TOC's own length — is broken by
// fixed-point iteration: start from length 0, lay out everything under the
// hypothesis, paginate the resulting lines, and repeat with the rendered
// length until it reproduces itself. Without a marker the plain
// concatenation offsets are returned after zero iterations.
func Resolve(ctx context.Context, tree *schema.Tree, layout toc.Layout, counter *PageCounter) (*Resolution, error) {
	return resolve(ctx, tree, layout, counter, toc.PageCount)
}

// resolve runs the fixed-point loop with an injectable dry-run page
// counter, which is how the iteration cap stays testable.
func resolve(ctx context.Context, tree *schema.Tree, layout toc.Layout, counter *PageCounter, pageCount func([]toc.Line, toc.Layout) int) (*Resolution, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	if !tree.HasTocMarker() {
		pm, err := BuildPageMap(ctx, tree, 0, counter)
		if err != nil {
			return nil, err
		}
		outline, err := BuildOutline(tree, pm)
		if err != nil {
			return nil, err
		}
		return &Resolution{
			PageMap: pm,
			Outline: outline,
			Lines:   FlattenOutline(outline),
		}, nil
	}

	tocLen := 0
	seq := []int{tocLen}

	for i := 0; i < maxResolveIterations; i++ {
		pm, err := BuildPageMap(ctx, tree, tocLen, counter)
		if err != nil {
			return nil, err
		}
		outline, err := BuildOutline(tree, pm)
		if err != nil {
			return nil, err
		}
		lines := FlattenOutline(outline)

		rendered := pageCount(lines, layout)
		if rendered == tocLen {
			// Fixed point: the offsets and destinations computed under
			// this hypothesis are the final ones.
			return &Resolution{
				PageMap:    pm,
				Outline:    outline,
				Lines:      lines,
				TocLen:     tocLen,
				Iterations: i + 1,
			}, nil
		}

		tocLen = rendered
		seq = append(seq, tocLen)
	}

	return nil, &ConvergenceError{Seq: seq}
}
