package merge

import (
	"context"
	"sync"

	"github.com/pagebinder/pagebinder/internal/backend"
)

// PageCounter memoizes backend page counts per source path. The resolver
// rebuilds the page map on every iteration; caching keeps that loop from
// re-reading source documents, and the Warm pass hides I/O latency by
// querying distinct sources concurrently before the deterministic
// traversal reads the cache.
type PageCounter struct {
	backend backend.Backend

	mu     sync.Mutex
	counts map[string]int
}

// NewPageCounter creates a counter backed by the given document backend.
func NewPageCounter(b backend.Backend) *PageCounter {
	return &PageCounter{
		backend: b,
		counts:  make(map[string]int),
	}
}

// Count returns the page count for a source document, querying the backend
// on first use and the cache afterwards.
func (c *PageCounter) Count(ctx context.Context, path string) (int, error) {
	c.mu.Lock()
	if n, ok := c.counts[path]; ok {
		c.mu.Unlock()
		return n, nil
	}
	c.mu.Unlock()

	n, err := c.backend.PageCount(ctx, path)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.counts[path] = n
	c.mu.Unlock()
	return n, nil
}

// Warm queries page counts for all paths with at most workers concurrent
// backend calls. Results are keyed by path, so concurrency introduces no
// ordering requirement. The first error aborts the warm-up and is
// returned; remaining in-flight queries are drained.
func (c *PageCounter) Warm(ctx context.Context, paths []string, workers int) error {
	if workers < 1 {
		workers = 1
	}

	// Query order is irrelevant, only distinctness matters.
	seen := make(map[string]struct{}, len(paths))
	var distinct []string
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		distinct = append(distinct, p)
	}

	results := make(chan error, len(distinct))
	sem := make(chan struct{}, workers)

	for _, path := range distinct {
		sem <- struct{}{} // acquire
		go func(p string) {
			defer func() { <-sem }() // release
			_, err := c.Count(ctx, p)
			results <- err
		}(path)
	}

	var firstErr error
	for range distinct {
		if err := <-results; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
