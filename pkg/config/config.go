package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/uelocate/pkg/extract"
)

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// FromEnvironment returns the validated defaults with environment overrides
// applied. It is used when no config file is given.
func FromEnvironment() (*Config, error) {
	cfg := DefaultConfig()
	cfg.applyEnvironmentOverrides()
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate checks a configuration for errors and compiles regex patterns.
func Validate(cfg *Config) error {
	if err := validateSource(&cfg.Source); err != nil {
		return fmt.Errorf("source: %w", err)
	}

	if err := validateTimestampFormat(&cfg.TimestampFormat); err != nil {
		return fmt.Errorf("timestamp_format: %w", err)
	}

	if err := validateExtraction(&cfg.Extraction); err != nil {
		return fmt.Errorf("extraction: %w", err)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	// Webhooks are optional, but validate if present
	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

// ParseLogLevel parses a slog level name such as "debug" or "warn".
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid level %q (must be debug, info, warn, or error)", s)
	}
	return level, nil
}

// TimestampExtractor builds the extractor described by the timestamp format.
// Validate must have been called first.
func (c *Config) TimestampExtractor() *extract.TimestampExtractor {
	return extract.NewTimestampExtractor(c.TimestampFormat.CompiledPattern(), c.TimestampFormat.Layouts()...)
}

func validateSource(src *SourceConfig) error {
	if src.Type == "" {
		src.Type = SourceTypeContainer
	}

	switch src.Type {
	case SourceTypeContainer:
		if src.Container == "" {
			return errors.New("container is required for container sources")
		}
	case SourceTypeFiles:
		if len(src.Files) == 0 {
			return errors.New("files: at least one file pattern is required")
		}
	case SourceTypeCommand:
		if len(src.Command) == 0 || src.Command[0] == "" {
			return errors.New("command is required for command sources")
		}
	default:
		return fmt.Errorf("invalid type %q (must be container, files, or command)", src.Type)
	}

	return nil
}

func validateTimestampFormat(tf *TimestampConfig) error {
	if tf.Pattern == "" {
		return errors.New("pattern is required")
	}

	re, err := regexp.Compile(tf.Pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}

	if re.NumSubexp() < 1 {
		return errors.New("pattern must have at least one capture group for the timestamp")
	}

	tf.compiledPattern = re

	if tf.Layout == "" {
		return errors.New("layout is required")
	}

	return nil
}

func validateExtraction(ex *ExtractionConfig) error {
	if ex.ContextWindow < 0 {
		return fmt.Errorf("context_window must be >= 0, got %d", ex.ContextWindow)
	}
	if ex.ContextWindow == 0 {
		ex.ContextWindow = extract.DefaultContextWindow
	}

	if ex.EquipmentProximity < 0 {
		return fmt.Errorf("equipment_proximity must be >= 0, got %d", ex.EquipmentProximity)
	}

	if ex.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", ex.Workers)
	}
	if ex.Workers == 0 {
		ex.Workers = 1
	}

	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	// Validate URL format
	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	wh.Token = expandEnvVar(wh.Token)

	if wh.Trigger != "" {
		if err := ValidateTrigger(wh.Trigger); err != nil {
			return err
		}
	} else {
		wh.Trigger = WebhookTriggerOnFound
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// ValidateTrigger checks that trigger is one of the known webhook triggers.
func ValidateTrigger(trigger WebhookTrigger) error {
	switch trigger {
	case WebhookTriggerOnFound, WebhookTriggerAlways, WebhookTriggerNever:
		return nil
	default:
		return fmt.Errorf("invalid trigger %q (must be on_found, always, or never)", trigger)
	}
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}

	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		return os.Getenv(s[1:])
	}

	return s
}
