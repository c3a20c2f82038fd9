// Package testutil provides test helpers: an in-memory fake document
// backend for pipeline tests and real PDF fixtures for backend tests.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/pagebinder/pagebinder/internal/backend"
	"github.com/pagebinder/pagebinder/internal/toc"
	"github.com/pagebinder/pagebinder/internal/types"
)

// FakeBackend is an in-memory document backend. Page counts come from the
// PageCounts map; rendering and writing only record what happened.
type FakeBackend struct {
	mu sync.Mutex

	// PageCounts maps source path to page count. Missing paths fail.
	PageCounts map[string]int

	// Errs maps source path to a forced error.
	Errs map[string]error

	CountCalls  int
	RenderCalls int
	WriteCalls  int

	LastBlocks  []backend.PageBlock
	LastOutline []types.OutlineEntry
	LastDest    string
}

// NewFakeBackend creates a fake backend serving the given page counts.
func NewFakeBackend(pageCounts map[string]int) *FakeBackend {
	return &FakeBackend{PageCounts: pageCounts}
}

func (f *FakeBackend) PageCount(_ context.Context, path string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CountCalls++
	if err, ok := f.Errs[path]; ok {
		return 0, &backend.Error{Op: "page_count", Path: path, Err: err}
	}
	n, ok := f.PageCounts[path]
	if !ok {
		return 0, &backend.Error{Op: "page_count", Path: path, Err: fmt.Errorf("no such source")}
	}
	return n, nil
}

func (f *FakeBackend) CopyPages(ctx context.Context, path string) (backend.PageBlock, error) {
	n, err := f.PageCount(ctx, path)
	if err != nil {
		return backend.PageBlock{}, err
	}
	return backend.PageBlock{Path: path, Count: n}, nil
}

func (f *FakeBackend) RenderTocPage(_ context.Context, lines []toc.Line, _ toc.Layout, pageIdx int) (backend.PageBlock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RenderCalls++

	links := make([]backend.LinkRegion, len(lines))
	for i, line := range lines {
		links[i] = backend.LinkRegion{Destination: line.Destination}
	}
	return backend.PageBlock{
		Path:  fmt.Sprintf("toc-%d", pageIdx),
		Count: 1,
		Links: links,
	}, nil
}

func (f *FakeBackend) Write(_ context.Context, blocks []backend.PageBlock, outline []types.OutlineEntry, dest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.WriteCalls++
	f.LastBlocks = blocks
	f.LastOutline = outline
	f.LastDest = dest
	return nil
}

// TotalPages sums the page counts of the blocks passed to the last Write.
func (f *FakeBackend) TotalPages() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, blk := range f.LastBlocks {
		total += blk.Count
	}
	return total
}
