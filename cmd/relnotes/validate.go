package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/c360studio/relnotes/mapping"
)

// watchDebounce is how long to wait for more changes before re-validating.
const watchDebounce = 500 * time.Millisecond

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and mapping definitions",
		Long: `Validate loads the configuration and every mapping definition,
compiling templates, patterns and transforms the way generate would.
With --watch it keeps running and re-validates whenever a watched
file changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging(opts.logLevel)
			if !watch {
				return runValidate(opts, logger)
			}
			return watchValidate(cmd.Context(), opts, logger)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Re-validate when watched files change")
	return cmd
}

func runValidate(opts *rootOptions, logger *slog.Logger) error {
	settings, err := loadSettings(opts, logger)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	registry, err := loadMappings(opts, settings, logger)
	if err != nil {
		return fmt.Errorf("load mappings: %w", err)
	}

	origin := settings.GetString("origin.type")
	def, err := registry.Get(origin)
	if err != nil {
		return err
	}

	// Runs every load-time check generate would: query languages, template
	// engines, note patterns, transform compilation.
	if _, err := mapping.NewAdapter(settings, def, mapping.WithLogger(logger)); err != nil {
		return err
	}

	fmt.Printf("✓ configuration valid (origin %s, definitions %v)\n", origin, registry.Names())
	return nil
}

// watchValidate re-runs validation on changes to the config file or the
// mappings directory until interrupted. Directories are watched rather
// than files: editors replace files on save, which would drop a watch on
// the file itself.
func watchValidate(ctx context.Context, opts *rootOptions, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	watched := 0
	if opts.configPath != "" {
		if err := watcher.Add(filepath.Dir(opts.configPath)); err != nil {
			return fmt.Errorf("watch %s: %w", opts.configPath, err)
		}
		watched++
	}
	if opts.mappingsDir != "" {
		if err := watcher.Add(opts.mappingsDir); err != nil {
			return fmt.Errorf("watch %s: %w", opts.mappingsDir, err)
		}
		watched++
	}
	if watched == 0 {
		return fmt.Errorf("nothing to watch: pass --config or --mappings")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report := func() {
		if err := runValidate(opts, logger); err != nil {
			fmt.Fprintf(os.Stderr, "invalid: %v\n", err)
		}
	}
	report()

	debounce := time.NewTimer(watchDebounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("file changed",
				slog.String("path", event.Name),
				slog.String("op", event.Op.String()))
			if !debounce.Stop() {
				select {
				case <-debounce.C:
				default:
				}
			}
			debounce.Reset(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", slog.String("error", err.Error()))

		case <-debounce.C:
			report()
		}
	}
}
