package config

import (
	"os"
	"time"

	"github.com/ccollicutt/uelocate/pkg/extract"
	"github.com/ccollicutt/uelocate/pkg/locator"
	"github.com/ccollicutt/uelocate/pkg/source"
)

// Default values for configuration.
const (
	DefaultWebhookTimeout = 10 * time.Second
	DefaultLogLevel       = "warn"
)

// Environment variable names.
const (
	EnvContainer       = "UELOCATE_CONTAINER"
	EnvLogLevel        = "UELOCATE_LOG_LEVEL"
	EnvTimestampLayout = "UELOCATE_TIMESTAMP_LAYOUT"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Type:      SourceTypeContainer,
			Container: source.DefaultContainer,
		},
		TimestampFormat: TimestampConfig{
			Pattern:         extract.DefaultTimestampPattern,
			Layout:          extract.DefaultTimestampLayout,
			FallbackLayouts: []string{extract.SpaceTimestampLayout},
		},
		Extraction: ExtractionConfig{
			ContextWindow:      extract.DefaultContextWindow,
			EquipmentProximity: locator.DefaultEquipmentProximity,
			Workers:            locator.DefaultWorkers,
		},
		LogLevel: DefaultLogLevel,
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if container := os.Getenv(EnvContainer); container != "" {
		c.Source.Container = container
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.LogLevel = level
	}
	if layout := os.Getenv(EnvTimestampLayout); layout != "" {
		c.TimestampFormat.Layout = layout
	}
}
