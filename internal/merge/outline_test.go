package merge

import (
	"context"
	"errors"
	"testing"

	"github.com/pagebinder/pagebinder/internal/schema"
	"github.com/pagebinder/pagebinder/internal/testutil"
	"github.com/pagebinder/pagebinder/internal/types"
)

func TestBuildOutline(t *testing.T) {
	ctx := context.Background()

	t.Run("mirrors schema nesting", func(t *testing.T) {
		tree := mustParse(t, `
S:
  A: [a.pdf]
  T:
    B: [b.pdf]
C: [c.pdf]
`)
		counter := NewPageCounter(testutil.NewFakeBackend(map[string]int{
			"a.pdf": 2, "b.pdf": 3, "c.pdf": 4,
		}))
		pm, err := BuildPageMap(ctx, tree, 0, counter)
		if err != nil {
			t.Fatalf("BuildPageMap() error = %v", err)
		}

		outline, err := BuildOutline(tree, pm)
		if err != nil {
			t.Fatalf("BuildOutline() error = %v", err)
		}
		if len(outline) != 2 {
			t.Fatalf("expected 2 top-level entries, got %d", len(outline))
		}

		s := outline[0]
		if s.Title != "S" || s.Depth != 0 || len(s.Children) != 2 {
			t.Errorf("unexpected entry S: %+v", s)
		}
		if s.Children[1].Title != "T" || len(s.Children[1].Children) != 1 {
			t.Errorf("unexpected entry T: %+v", s.Children[1])
		}
		if got := s.Children[1].Children[0].Depth; got != 2 {
			t.Errorf("B depth = %d, want 2", got)
		}
	})

	t.Run("section inherits first leaf destination", func(t *testing.T) {
		tree := mustParse(t, `
S:
  T:
    A: [a.pdf]
  B: [b.pdf]
`)
		counter := NewPageCounter(testutil.NewFakeBackend(map[string]int{
			"a.pdf": 5, "b.pdf": 1,
		}))
		pm, err := BuildPageMap(ctx, tree, 0, counter)
		if err != nil {
			t.Fatalf("BuildPageMap() error = %v", err)
		}

		outline, err := BuildOutline(tree, pm)
		if err != nil {
			t.Fatalf("BuildOutline() error = %v", err)
		}
		// S's first descendant leaf is A (through T), which starts at 0.
		if outline[0].Destination != 0 {
			t.Errorf("S destination = %d, want 0", outline[0].Destination)
		}
		if outline[0].Children[1].Destination != 5 {
			t.Errorf("B destination = %d, want 5", outline[0].Children[1].Destination)
		}
	})

	t.Run("marker is excluded", func(t *testing.T) {
		tree := mustParse(t, `
Contents:
  _toc_: true
A: [a.pdf]
`)
		counter := NewPageCounter(testutil.NewFakeBackend(map[string]int{"a.pdf": 1}))
		pm, err := BuildPageMap(ctx, tree, 1, counter)
		if err != nil {
			t.Fatalf("BuildPageMap() error = %v", err)
		}

		outline, err := BuildOutline(tree, pm)
		if err != nil {
			t.Fatalf("BuildOutline() error = %v", err)
		}
		if len(outline) != 1 || outline[0].Title != "A" {
			t.Errorf("expected only entry A, got %+v", outline)
		}
	})

	t.Run("section with only a marker has no anchor", func(t *testing.T) {
		// Passes validation (the section is not empty) but has no leaf
		// descendant to point at.
		tree := mustParse(t, `
Intro:
  Contents:
    _toc_: true
A: [a.pdf]
`)
		counter := NewPageCounter(testutil.NewFakeBackend(map[string]int{"a.pdf": 1}))
		pm, err := BuildPageMap(ctx, tree, 1, counter)
		if err != nil {
			t.Fatalf("BuildPageMap() error = %v", err)
		}

		_, err = BuildOutline(tree, pm)
		var se *schema.SchemaError
		if !errors.As(err, &se) || se.Kind != schema.EmptySection {
			t.Fatalf("expected EmptySection, got %v", err)
		}
	})
}

func TestFlattenOutline(t *testing.T) {
	entries := []types.OutlineEntry{
		{Title: "S", Depth: 0, Destination: 0, Children: []types.OutlineEntry{
			{Title: "A", Depth: 1, Destination: 0},
			{Title: "B", Depth: 1, Destination: 3},
		}},
		{Title: "C", Depth: 0, Destination: 7},
	}

	lines := FlattenOutline(entries)
	want := []struct {
		title string
		depth int
		dest  int
	}{
		{"S", 0, 0},
		{"A", 1, 0},
		{"B", 1, 3},
		{"C", 0, 7},
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(lines))
	}
	for i, w := range want {
		if lines[i].Title != w.title || lines[i].Depth != w.depth || lines[i].Destination != w.dest {
			t.Errorf("line %d = %+v, want %+v", i, lines[i], w)
		}
	}
}
