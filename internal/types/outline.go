// Package types provides shared types used across multiple packages.
// This package has no dependencies on other pagebinder packages to avoid
// import cycles.
package types

// OutlineEntry is one node of the bookmark tree attached to the output
// document. It mirrors the schema's Section/DocumentLeaf nesting exactly
// and is immutable once built.
type OutlineEntry struct {
	Title       string
	Depth       int
	Destination int // 0-based page index in the output document
	Children    []OutlineEntry
}

// WalkOutline visits entries in pre-order document order.
func WalkOutline(entries []OutlineEntry, fn func(e OutlineEntry)) {
	for _, e := range entries {
		fn(e)
		WalkOutline(e.Children, fn)
	}
}
