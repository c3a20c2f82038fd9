package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pagebinder/pagebinder/internal/config"
	"github.com/pagebinder/pagebinder/version"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pagebinder",
	Short: "Assemble a single PDF from a declared document hierarchy",
	Long: `Pagebinder merges a hierarchy of source PDFs into one document,
optionally injecting a generated, clickable table of contents at a
caller-chosen position.

The merge plan is a YAML schema: nested mappings declare sections,
title-to-path-list mappings declare document leaves, and the reserved
` + "`_toc_: true`" + ` marker declares where the TOC is spliced in. Page
numbers printed in the TOC account for the TOC's own length, and the
output carries a bookmark tree mirroring the schema.`,
	Version:       version.GitRelease,
	SilenceUsage:  true,
	SilenceErrors: true, // main prints the error once, kind-prefixed
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./pagebinder.yaml or ~/.pagebinder/pagebinder.yaml)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}

	rootCmd.AddCommand(versionCmd)
}

// loadConfig creates the config manager from the --config flag.
func loadConfig() (*config.Manager, error) {
	cm, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cm, nil
}
