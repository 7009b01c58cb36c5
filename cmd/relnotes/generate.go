package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/relnotes/mapping"
)

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		origin string
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "generate <payload>",
		Short: "Map a tracker payload into a release document",
		Long: `Generate reads a raw tracker payload (JSON or YAML), maps it through
the configured mapping definition, and writes the resulting release
document.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging(opts.logLevel)
			return runGenerate(opts, logger, args[0], origin, output, format)
		},
	}

	cmd.Flags().StringVar(&origin, "origin", "", "Origin type overriding origin.type from the config")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&format, "format", "yaml", "Output format (yaml or json)")

	return cmd
}

func runGenerate(opts *rootOptions, logger *slog.Logger, payloadPath, origin, output, format string) error {
	if format != "yaml" && format != "json" {
		return fmt.Errorf("unknown output format %q", format)
	}

	settings, err := loadSettings(opts, logger)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	registry, err := loadMappings(opts, settings, logger)
	if err != nil {
		return fmt.Errorf("load mappings: %w", err)
	}

	if origin == "" {
		origin = settings.GetString("origin.type")
	}
	def, err := registry.Get(origin)
	if err != nil {
		return err
	}

	payload, err := readPayload(payloadPath)
	if err != nil {
		return err
	}

	adapter, err := mapping.NewAdapter(settings, def, mapping.WithLogger(logger))
	if err != nil {
		return err
	}

	rel, err := adapter.Release(payload)
	if err != nil {
		return err
	}

	return writeRelease(rel.ToMap(), output, format)
}

// readPayload decodes a payload file: .json as JSON, everything else as
// YAML.
func readPayload(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}

	var payload any
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("parse payload %s: %w", path, err)
		}
		return payload, nil
	}
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse payload %s: %w", path, err)
	}
	return payload, nil
}

func writeRelease(doc map[string]any, output, format string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "json":
		data, err = json.MarshalIndent(doc, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	default:
		data, err = yaml.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("encode release: %w", err)
	}

	if output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("write release: %w", err)
	}
	return nil
}
