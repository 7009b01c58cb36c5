// Package main provides the relnotes binary entry point.
// Relnotes maps raw tracker payloads onto a validated release model,
// driven by a schema-backed configuration tree and declarative mapping
// definitions.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/relnotes/config"
	"github.com/c360studio/relnotes/mapping"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "relnotes"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath  string
	mappingsDir string
	attrs       []string
	logLevel    string
}

func rootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Map tracker payloads onto a release model",
		Long: `Relnotes turns loosely-structured issue-tracker exports into a
validated release model. A schema-backed configuration tree and
declarative mapping definitions decide how raw records become
changes: which paths to read, how values are transformed, and how
notes and tags classify each change.`,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&opts.mappingsDir, "mappings", "", "Directory of mapping definitions overriding the built-ins")
	cmd.PersistentFlags().StringArrayVar(&opts.attrs, "attr", nil, "Attribute key=value substituted into config defaults (repeatable)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newGenerateCmd(opts))
	cmd.AddCommand(newValidateCmd(opts))

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// setupLogging configures the default slog logger on stderr.
func setupLogging(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// parseAttrs turns repeated --attr key=value flags into an attribute map.
func parseAttrs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	attrs := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("attribute %q is not key=value", pair)
		}
		attrs[k] = v
	}
	return attrs, nil
}

func loadSettings(opts *rootOptions, logger *slog.Logger) (*config.Settings, error) {
	attrs, err := parseAttrs(opts.attrs)
	if err != nil {
		return nil, err
	}

	loader, err := config.NewLoader(
		config.WithAttributes(attrs),
		config.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	if opts.configPath != "" {
		return loader.LoadFile(opts.configPath)
	}
	return loader.Load(nil)
}

func loadMappings(opts *rootOptions, settings *config.Settings, logger *slog.Logger) (*mapping.Registry, error) {
	registry, err := mapping.NewRegistry(logger)
	if err != nil {
		return nil, err
	}

	dir := opts.mappingsDir
	if dir == "" {
		dir = settings.GetString("mapping.dir")
	}
	if dir != "" {
		if err := registry.LoadDir(dir); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
