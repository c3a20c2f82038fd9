// Package toc paginates table-of-contents entries into pages. Pagination is
// pure and deterministic: the same lines and layout always produce the same
// chunking, which is what lets the size resolver iterate safely. Actual
// page drawing is the document backend's job.
package toc

import "fmt"

// Line is one render-ready TOC entry: the flattened, depth-annotated
// projection of an outline entry.
type Line struct {
	Title       string
	Depth       int
	Destination int // 0-based page index in the output document
}

// PageLabel returns the 1-based page number printed next to the entry.
func (l Line) PageLabel() string {
	return fmt.Sprintf("%d", l.Destination+1)
}

// Layout configures TOC pagination and rendering.
type Layout struct {
	Title        string  // heading printed on the first TOC page
	LinesPerPage int     // entries per rendered page
	Indent       float64 // horizontal indent per depth level, in points
	LineHeight   float64 // vertical distance between entries, in points

	PageSize     string // gofpdf page size name: A4, Letter, Legal
	MarginLeft   float64
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64

	FontFamily    string // built-in PDF font family: Helvetica, Times, Courier
	TitleFontSize float64
	EntryFontSize float64 // depth 0 entries
	SubFontSize   float64 // deeper entries
}

// DefaultLayout returns the layout used when no configuration overrides it.
// Values follow the original dossier formatting: bold top-level entries,
// indented sub-entries, leader dots up to a right-aligned page number.
func DefaultLayout() Layout {
	return Layout{
		Title:         "Table of Contents",
		LinesPerPage:  28,
		Indent:        20,
		LineHeight:    22,
		PageSize:      "A4",
		MarginLeft:    50,
		MarginTop:     50,
		MarginRight:   50,
		MarginBottom:  50,
		FontFamily:    "Helvetica",
		TitleFontSize: 20,
		EntryFontSize: 13,
		SubFontSize:   11,
	}
}

// Validate checks that the layout can paginate at all.
func (l Layout) Validate() error {
	if l.LinesPerPage < 1 {
		return fmt.Errorf("toc layout: lines_per_page must be >= 1, got %d", l.LinesPerPage)
	}
	if l.LineHeight <= 0 {
		return fmt.Errorf("toc layout: line_height must be positive, got %g", l.LineHeight)
	}
	return nil
}

// Paginate chunks lines greedily into pages of at most LinesPerPage each,
// preserving order. An empty line slice yields zero pages.
func Paginate(lines []Line, layout Layout) [][]Line {
	if len(lines) == 0 {
		return nil
	}
	per := layout.LinesPerPage
	pages := make([][]Line, 0, (len(lines)+per-1)/per)
	for start := 0; start < len(lines); start += per {
		end := start + per
		if end > len(lines) {
			end = len(lines)
		}
		pages = append(pages, lines[start:end])
	}
	return pages
}

// PageCount returns how many pages Paginate would produce. This is the
// dry-run entry point used by the size resolver.
func PageCount(lines []Line, layout Layout) int {
	if len(lines) == 0 {
		return 0
	}
	per := layout.LinesPerPage
	return (len(lines) + per - 1) / per
}
