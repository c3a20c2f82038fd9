package main

import (
	"fmt"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pagebinder/pagebinder/internal/backend"
	"github.com/pagebinder/pagebinder/internal/config"
	"github.com/pagebinder/pagebinder/internal/merge"
)

var (
	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

var mergeCmd = &cobra.Command{
	Use:   "merge <schema.yaml> <output.pdf>",
	Short: "Merge source documents into a single PDF",
	Long: `Merge assembles the documents declared in the schema into one PDF,
resolving the table of contents' own page count, and publishes the result
atomically at the output path. On any failure no partial output is left
behind.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cm, err := loadConfig()
		if err != nil {
			return err
		}

		result, err := runMerge(cmd, cm.Get(), args[0], args[1])
		if err != nil {
			return err
		}

		printSummary(cmd, result)
		return nil
	},
}

// runMerge executes one merge with a fresh backend.
func runMerge(cmd *cobra.Command, cfg *config.Config, schemaPath, outputPath string) (*merge.Result, error) {
	b := backend.NewPDFCPU(cfg.Backend.MaxRetries, slog.Default())
	defer b.Close()

	return merge.Run(cmd.Context(), merge.Options{
		SchemaPath: schemaPath,
		OutputPath: outputPath,
		InputDir:   cfg.InputDir,
		Layout:     cfg.Layout(),
		Workers:    cfg.Backend.PageCountWorkers,
		Backend:    b,
		Logger:     slog.Default(),
	})
}

func printSummary(cmd *cobra.Command, r *merge.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("merged %d pages -> %s", r.TotalPages, r.OutputPath)))
	fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf(
		"  sources: %d  entries: %d  toc pages: %d  iterations: %d",
		r.Sources, r.Entries, r.TocPages, r.Iterations)))
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
