package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/pagebinder/pagebinder/internal/config"
)

// watchDebounce coalesces bursts of filesystem events (editors typically
// fire several per save) into one rebuild.
const watchDebounce = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch <schema.yaml> <output.pdf>",
	Short: "Rebuild the output whenever the schema or sources change",
	Long: `Watch runs one merge, then keeps watching the schema file's directory
and the configured input directory, rebuilding the output on changes.
Configuration is hot-reloaded, so layout tweaks take effect on the next
rebuild. A failed rebuild leaves the previous output untouched.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaPath, outputPath := args[0], args[1]
		log := slog.Default()

		cm, err := loadConfig()
		if err != nil {
			return err
		}
		cm.WatchConfig()
		cm.OnChange(func(_ *config.Config) {
			log.Info("configuration reloaded")
		})

		rebuild := func() {
			result, err := runMerge(cmd, cm.Get(), schemaPath, outputPath)
			if err != nil {
				log.Error("rebuild failed", "error", err)
				return
			}
			printSummary(cmd, result)
		}

		rebuild()

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		defer watcher.Close()

		dirs := watchDirs(schemaPath, cm.Get().InputDir)
		for _, dir := range dirs {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
		}
		log.Info("watching for changes", "dirs", dirs)

		skip := func(path string) bool {
			// The freshly published output would retrigger forever.
			return sameFile(path, outputPath) || isHidden(path)
		}
		return runWatchLoop(cmd.Context(), watcher.Events, watcher.Errors, watchDebounce, skip, rebuild)
	},
}

// runWatchLoop drains watcher events until the context is done, debouncing
// bursts and running rebuilds on the loop goroutine itself. Events arriving
// during a rebuild queue on the channel, so rebuilds never overlap.
func runWatchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, debounce time.Duration, skip func(path string) bool, rebuild func()) error {
	log := slog.Default()

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if skip(event.Name) {
				continue
			}
			log.Debug("change detected", "path", event.Name)
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)

		case <-timer.C:
			rebuild()

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			log.Error("watch error", "error", err)
		}
	}
}

// watchDirs returns the distinct existing directories worth watching.
func watchDirs(schemaPath, inputDir string) []string {
	seen := make(map[string]struct{})
	var dirs []string
	add := func(dir string) {
		if dir == "" {
			return
		}
		if _, ok := seen[dir]; ok {
			return
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	add(filepath.Dir(schemaPath))
	add(inputDir)
	return dirs
}

func sameFile(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && aa == bb
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return len(base) > 0 && base[0] == '.'
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
