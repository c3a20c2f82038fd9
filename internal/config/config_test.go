package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v2"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Toc.LinesPerPage <= 0 {
		t.Error("expected positive default lines_per_page")
	}
	if cfg.Toc.Title == "" {
		t.Error("expected a default toc title")
	}
	if cfg.Backend.PageCountWorkers <= 0 {
		t.Error("expected positive default page_count_workers")
	}
}

func TestLayout(t *testing.T) {
	t.Run("defaults pass through", func(t *testing.T) {
		layout := DefaultConfig().Layout()
		if err := layout.Validate(); err != nil {
			t.Fatalf("default layout invalid: %v", err)
		}
		if layout.Title != "Table of Contents" {
			t.Errorf("unexpected title %q", layout.Title)
		}
	})

	t.Run("overrides apply", func(t *testing.T) {
		cfg := &Config{Toc: TocConfig{
			Title:        "Sommaire",
			LinesPerPage: 10,
			FontFamily:   "Times",
		}}
		layout := cfg.Layout()
		if layout.Title != "Sommaire" {
			t.Errorf("title = %q, want Sommaire", layout.Title)
		}
		if layout.LinesPerPage != 10 {
			t.Errorf("lines_per_page = %d, want 10", layout.LinesPerPage)
		}
		if layout.FontFamily != "Times" {
			t.Errorf("font_family = %q, want Times", layout.FontFamily)
		}
		// Unset fields fall back to defaults.
		if layout.LineHeight != 22 {
			t.Errorf("line_height = %g, want default 22", layout.LineHeight)
		}
	})
}

func TestWriteDefault(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "pagebinder.yaml")

	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	if !strings.HasPrefix(string(data), "# pagebinder configuration") {
		t.Error("expected comment header")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("written config does not parse: %v", err)
	}
	if cfg.Toc.LinesPerPage != DefaultConfig().Toc.LinesPerPage {
		t.Errorf("round-trip lines_per_page = %d", cfg.Toc.LinesPerPage)
	}
}
