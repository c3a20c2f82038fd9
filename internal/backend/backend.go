// Package backend defines the document backend contract: the external
// collaborator that opens source documents, renders TOC pages and
// serializes the assembled output. The merge pipeline only ever talks to
// the Backend interface; the pdfcpu implementation lives alongside it.
package backend

import (
	"context"
	"fmt"

	"github.com/pagebinder/pagebinder/internal/toc"
	"github.com/pagebinder/pagebinder/internal/types"
)

// PageBlock is an ordered run of pages contributed to the output document.
// Blocks are concatenated in the order the executor produces them.
type PageBlock struct {
	Path  string       // PDF file holding the pages
	Count int          // number of pages in the block
	Links []LinkRegion // clickable regions to attach after assembly
}

// LinkRegion is a clickable rectangle on a page of a block, bound to a
// destination page of the final output document.
type LinkRegion struct {
	PageOffset  int        // 0-based page index within the block
	Rect        [4]float64 // llx, lly, urx, ury in PDF user space
	Destination int        // 0-based page index in the output document
}

// Backend is the document backend contract. All operations are fatal on
// error; any retry policy is internal to the implementation, never the
// caller's concern.
type Backend interface {
	// PageCount returns the number of pages in the source document.
	PageCount(ctx context.Context, path string) (int, error)

	// CopyPages prepares all pages of the source document for assembly.
	CopyPages(ctx context.Context, path string) (PageBlock, error)

	// RenderTocPage draws one page of TOC lines with clickable per-line
	// regions. pageIdx is the 0-based index within the TOC; the heading is
	// drawn on page 0 only.
	RenderTocPage(ctx context.Context, lines []toc.Line, layout toc.Layout, pageIdx int) (PageBlock, error)

	// Write assembles the blocks in order, attaches the outline and the
	// blocks' link regions, and publishes the result atomically at dest.
	// On failure no partial output is visible at dest.
	Write(ctx context.Context, blocks []PageBlock, outline []types.OutlineEntry, dest string) error
}

// Error reports a failed backend operation, identifying the offending
// source so the caller can surface it. It is always fatal.
type Error struct {
	Op   string // page_count, copy_pages, render_toc, write
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
