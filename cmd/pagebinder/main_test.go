package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/pagebinder/pagebinder/internal/backend"
	"github.com/pagebinder/pagebinder/internal/merge"
	"github.com/pagebinder/pagebinder/internal/schema"
)

func TestPrintError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "schema violation names its kind",
			err:  &schema.SchemaError{Kind: schema.EmptySection, Path: "Body"},
			want: "pagebinder: schema: empty_section",
		},
		{
			name: "backend failure names the source",
			err:  &backend.Error{Op: "page_count", Path: "a.pdf", Err: errors.New("no such file")},
			want: "pagebinder: backend: page_count a.pdf",
		},
		{
			name: "convergence failure carries the sequence",
			err:  &merge.ConvergenceError{Seq: []int{0, 1, 2}},
			want: "pagebinder: convergence:",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf strings.Builder
			printError(&buf, tc.err)
			got := buf.String()
			if !strings.HasPrefix(got, tc.want) {
				t.Errorf("printed %q, want prefix %q", got, tc.want)
			}
			if !strings.HasSuffix(got, "\n") {
				t.Errorf("missing trailing newline: %q", got)
			}
		})
	}
}
