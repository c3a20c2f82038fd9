package backend

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/pagebinder/pagebinder/internal/toc"
	"github.com/pagebinder/pagebinder/internal/types"
)

// PDFCPU is the pdfcpu-backed document backend. Source pages are counted
// and assembled with pdfcpu; TOC pages are drawn with gofpdf into
// temporary files spliced into the merge; bookmarks and link annotations
// are attached after assembly.
type PDFCPU struct {
	// MaxRetries bounds re-reads of a source on transient failure.
	MaxRetries uint
	Logger     *slog.Logger

	conf *model.Configuration

	mu     sync.Mutex
	tmpDir string
}

// NewPDFCPU creates a pdfcpu backend with relaxed validation, matching how
// scanned and third-party PDFs tend to arrive.
func NewPDFCPU(maxRetries uint, logger *slog.Logger) *PDFCPU {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFCPU{
		MaxRetries: maxRetries,
		Logger:     logger,
		conf:       conf,
	}
}

func (b *PDFCPU) log() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

func (b *PDFCPU) attempts() uint {
	if b.MaxRetries == 0 {
		return 1
	}
	return b.MaxRetries
}

// PageCount returns the page count of a source PDF. Reads are retried a
// bounded number of times; the pipeline above never retries.
func (b *PDFCPU) PageCount(ctx context.Context, path string) (int, error) {
	var count int
	err := retry.Do(
		func() error {
			n, err := api.PageCountFile(path)
			if err != nil {
				return err
			}
			count = n
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(b.attempts()),
		retry.Delay(100*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return 0, &Error{Op: "page_count", Path: path, Err: err}
	}
	return count, nil
}

// CopyPages prepares all pages of a source PDF as one block. The file is
// opened here to fail fast on unreadable input; actual page copying
// happens during Write via the merge.
func (b *PDFCPU) CopyPages(ctx context.Context, path string) (PageBlock, error) {
	count, err := b.PageCount(ctx, path)
	if err != nil {
		return PageBlock{}, err
	}
	return PageBlock{Path: path, Count: count}, nil
}

// RenderTocPage draws one TOC page: heading on the first page, then one
// line per entry with depth indent, leader dots and a right-aligned
// 1-based page number. Each line gets a clickable region spanning from the
// entry text to the page number.
func (b *PDFCPU) RenderTocPage(ctx context.Context, lines []toc.Line, layout toc.Layout, pageIdx int) (PageBlock, error) {
	dir, err := b.ensureTmpDir()
	if err != nil {
		return PageBlock{}, &Error{Op: "render_toc", Path: layout.Title, Err: err}
	}
	path := filepath.Join(dir, fmt.Sprintf("toc-%03d.pdf", pageIdx))

	pdf := gofpdf.New("P", "pt", layout.PageSize, "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()

	// Heading space is reserved on every page so line capacity stays
	// uniform; the heading itself appears on the first page only.
	bodyTop := layout.MarginTop + layout.TitleFontSize + 16
	if pageIdx == 0 {
		pdf.SetFont(layout.FontFamily, "B", layout.TitleFontSize)
		pdf.Text(layout.MarginLeft, layout.MarginTop+layout.TitleFontSize, layout.Title)
	}

	var links []LinkRegion
	for i, line := range lines {
		size, style := layout.EntryFontSize, "B"
		if line.Depth > 0 {
			size, style = layout.SubFontSize, ""
		}
		x := layout.MarginLeft + layout.Indent*float64(line.Depth)
		y := bodyTop + float64(i+1)*layout.LineHeight

		pdf.SetFont(layout.FontFamily, style, size)
		pdf.Text(x, y, line.Title)
		titleW := pdf.GetStringWidth(line.Title)

		label := line.PageLabel()
		pdf.SetFont(layout.FontFamily, "", layout.SubFontSize)
		labelW := pdf.GetStringWidth(label)
		labelX := pageW - layout.MarginRight - labelW
		pdf.Text(labelX, y, label)

		dotW := pdf.GetStringWidth(".")
		gapStart := x + titleW + 6
		gapEnd := labelX - 6
		if n := int((gapEnd - gapStart) / dotW); n > 0 {
			pdf.Text(gapStart, y, strings.Repeat(".", n))
		}

		// Link rect in PDF user space (origin bottom-left), covering the
		// whole line from entry text to page number.
		links = append(links, LinkRegion{
			PageOffset:  0,
			Rect:        [4]float64{x, pageH - y - 4, pageW - layout.MarginRight, pageH - y + size},
			Destination: line.Destination,
		})
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return PageBlock{}, &Error{Op: "render_toc", Path: path, Err: err}
	}

	b.log().Debug("rendered toc page", "page", pageIdx, "lines", len(lines), "path", path)
	return PageBlock{Path: path, Count: 1, Links: links}, nil
}

// Write merges the blocks in order, attaches the outline as bookmarks,
// adds the blocks' link annotations, optimizes the result and publishes it
// atomically: everything happens on a temp file in the destination
// directory, renamed onto dest only after the backend confirms a fully
// serialized document.
func (b *PDFCPU) Write(ctx context.Context, blocks []PageBlock, outline []types.OutlineEntry, dest string) error {
	if len(blocks) == 0 {
		return &Error{Op: "write", Path: dest, Err: fmt.Errorf("no pages to write")}
	}

	paths := make([]string, len(blocks))
	for i, blk := range blocks {
		paths[i] = blk.Path
	}

	tmpOut := filepath.Join(filepath.Dir(dest), fmt.Sprintf(".pagebinder-%s.pdf", uuid.NewString()))
	defer os.Remove(tmpOut) // no-op once renamed

	if err := api.MergeCreateFile(paths, tmpOut, false, b.conf); err != nil {
		return &Error{Op: "write", Path: dest, Err: fmt.Errorf("merge failed: %w", err)}
	}

	if len(outline) > 0 {
		bms := toBookmarks(outline)
		if err := api.AddBookmarksFile(tmpOut, tmpOut, bms, true, b.conf); err != nil {
			return &Error{Op: "write", Path: dest, Err: fmt.Errorf("failed to attach outline: %w", err)}
		}
	}

	if err := b.addLinks(tmpOut, blocks); err != nil {
		return &Error{Op: "write", Path: dest, Err: err}
	}

	if err := api.OptimizeFile(tmpOut, tmpOut, b.conf); err != nil {
		return &Error{Op: "write", Path: dest, Err: fmt.Errorf("optimize failed: %w", err)}
	}

	if err := os.Rename(tmpOut, dest); err != nil {
		return &Error{Op: "write", Path: dest, Err: err}
	}

	b.log().Debug("published output", "dest", dest, "blocks", len(blocks))
	return nil
}

// addLinks attaches every block's link regions as link annotations on the
// assembled document, translating block-relative pages to output pages.
func (b *PDFCPU) addLinks(outFile string, blocks []PageBlock) error {
	page := 0
	for _, blk := range blocks {
		for _, link := range blk.Links {
			outPage := page + link.PageOffset + 1 // pdfcpu pages are 1-based
			r := link.Rect
			ann := model.NewLinkAnnotation(
				*pdftypes.NewRectangle(r[0], r[1], r[2], r[3]),
				0,  // apObjNr
				"", // contents
				"", // id
				"", // modDate
				0,  // flags
				nil,
				&model.Destination{Typ: model.DestFit, PageNr: link.Destination + 1},
				"",  // uri
				nil, // quad
				false,
				0,
				model.BSSolid,
			)
			pages := []string{strconv.Itoa(outPage)}
			if err := api.AddAnnotationsFile(outFile, outFile, pages, ann, b.conf, false); err != nil {
				return fmt.Errorf("failed to add link on page %d: %w", outPage, err)
			}
		}
		page += blk.Count
	}
	return nil
}

// Close removes temporary TOC render artifacts.
func (b *PDFCPU) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tmpDir == "" {
		return nil
	}
	dir := b.tmpDir
	b.tmpDir = ""
	return os.RemoveAll(dir)
}

func (b *PDFCPU) ensureTmpDir() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tmpDir != "" {
		return b.tmpDir, nil
	}
	dir, err := os.MkdirTemp("", "pagebinder-toc-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	b.tmpDir = dir
	return dir, nil
}

// toBookmarks converts the outline tree into pdfcpu bookmarks. Page
// numbers shift from 0-based destinations to pdfcpu's 1-based pages.
func toBookmarks(entries []types.OutlineEntry) []pdfcpu.Bookmark {
	bms := make([]pdfcpu.Bookmark, 0, len(entries))
	for _, e := range entries {
		bms = append(bms, pdfcpu.Bookmark{
			Title:    e.Title,
			PageFrom: e.Destination + 1,
			Kids:     toBookmarks(e.Children),
		})
	}
	return bms
}
