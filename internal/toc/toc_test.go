package toc

import (
	"fmt"
	"testing"
)

func makeLines(n int) []Line {
	lines := make([]Line, n)
	for i := range lines {
		lines[i] = Line{Title: fmt.Sprintf("Entry %d", i), Destination: i}
	}
	return lines
}

func TestPaginate(t *testing.T) {
	layout := DefaultLayout()
	layout.LinesPerPage = 4

	t.Run("empty yields no pages", func(t *testing.T) {
		if pages := Paginate(nil, layout); pages != nil {
			t.Errorf("expected nil, got %d pages", len(pages))
		}
		if n := PageCount(nil, layout); n != 0 {
			t.Errorf("PageCount() = %d, want 0", n)
		}
	})

	t.Run("exact multiple", func(t *testing.T) {
		pages := Paginate(makeLines(8), layout)
		if len(pages) != 2 {
			t.Fatalf("expected 2 pages, got %d", len(pages))
		}
		for i, page := range pages {
			if len(page) != 4 {
				t.Errorf("page %d: expected 4 lines, got %d", i, len(page))
			}
		}
	})

	t.Run("remainder gets final page", func(t *testing.T) {
		pages := Paginate(makeLines(9), layout)
		if len(pages) != 3 {
			t.Fatalf("expected 3 pages, got %d", len(pages))
		}
		if len(pages[2]) != 1 {
			t.Errorf("final page: expected 1 line, got %d", len(pages[2]))
		}
	})

	t.Run("order is preserved across pages", func(t *testing.T) {
		pages := Paginate(makeLines(10), layout)
		i := 0
		for _, page := range pages {
			for _, line := range page {
				if line.Destination != i {
					t.Fatalf("expected destination %d, got %d", i, line.Destination)
				}
				i++
			}
		}
	})

	t.Run("page count matches pagination", func(t *testing.T) {
		for n := 0; n < 20; n++ {
			lines := makeLines(n)
			if got, want := PageCount(lines, layout), len(Paginate(lines, layout)); got != want {
				t.Errorf("n=%d: PageCount() = %d, Paginate produced %d", n, got, want)
			}
		}
	})
}

func TestPageLabel(t *testing.T) {
	// Printed page numbers are 1-based, destinations 0-based.
	if got := (Line{Destination: 0}).PageLabel(); got != "1" {
		t.Errorf("PageLabel() = %q, want 1", got)
	}
	if got := (Line{Destination: 41}).PageLabel(); got != "42" {
		t.Errorf("PageLabel() = %q, want 42", got)
	}
}

func TestLayoutValidate(t *testing.T) {
	layout := DefaultLayout()
	if err := layout.Validate(); err != nil {
		t.Fatalf("default layout invalid: %v", err)
	}

	layout.LinesPerPage = 0
	if err := layout.Validate(); err == nil {
		t.Error("expected error for zero lines_per_page")
	}

	layout = DefaultLayout()
	layout.LineHeight = -1
	if err := layout.Validate(); err == nil {
		t.Error("expected error for negative line_height")
	}
}
