package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/uelocate/pkg/config"
	"github.com/ccollicutt/uelocate/pkg/source"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a uelocate configuration file without reading any logs.

Checks:
  - YAML syntax
  - Log source type and its required fields
  - Timestamp pattern validity
  - Extraction limits and log level
  - Webhook URLs and triggers
  - Log file existence for file sources (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Source:         %s\n", describeSource(cfg.Source))
	fmt.Fprintf(w, "  Timestamp:      %s (%s)\n", cfg.TimestampFormat.Pattern, strings.Join(cfg.TimestampFormat.Layouts(), ", "))
	fmt.Fprintf(w, "  Context window: %d lines\n", cfg.Extraction.ContextWindow)
	fmt.Fprintf(w, "  IMEI proximity: %s\n", describeProximity(cfg.Extraction.EquipmentProximity))
	fmt.Fprintf(w, "  Workers:        %d\n", cfg.Extraction.Workers)
	fmt.Fprintf(w, "  Log level:      %s\n", cfg.LogLevel)
	fmt.Fprintf(w, "  Webhooks:       %d\n", len(cfg.Webhooks))

	for i, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}
		fmt.Fprintf(w, "  %d. [%s] %s\n", i+1, wh.Trigger, name)
	}

	if cfg.Source.Type != config.SourceTypeFiles {
		return nil
	}

	// Check if log sources exist (warnings only)
	files, err := source.ExpandGlobs(cfg.Source.Files)
	if err != nil {
		fmt.Fprintf(w, "\nWarning: Error expanding log file patterns: %v\n", err)
		return nil
	}

	var found []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			found = append(found, f)
		}
	}
	if len(found) == 0 {
		fmt.Fprintf(w, "\nWarning: No files match log file patterns\n")
		return nil
	}

	fmt.Fprintf(w, "\nLog files matched: %d\n", len(found))
	for _, f := range found {
		fmt.Fprintf(w, "  - %s\n", f)
	}

	return nil
}

func describeSource(src config.SourceConfig) string {
	switch src.Type {
	case config.SourceTypeFiles:
		return fmt.Sprintf("files (%d pattern(s))", len(src.Files))
	case config.SourceTypeCommand:
		return "command: " + strings.Join(src.Command, " ")
	default:
		return "container: " + src.Container
	}
}

func describeProximity(n int) string {
	if n == 0 {
		return "unbounded"
	}
	return fmt.Sprintf("%d bytes", n)
}
