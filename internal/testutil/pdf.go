package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF generates a real PDF fixture with the given number of pages and
// returns its path. Each page carries a line of text so the file is a
// plausible source document, not a degenerate empty one.
func WritePDF(t *testing.T, dir, name string, pages int) string {
	t.Helper()

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for i := 1; i <= pages; i++ {
		pdf.AddPage()
		pdf.Text(72, 72, fmt.Sprintf("%s page %d of %d", name, i, pages))
	}

	path := filepath.Join(dir, name)
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}
