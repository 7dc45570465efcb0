package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ccollicutt/uelocate/pkg/extract"
	"github.com/ccollicutt/uelocate/pkg/locator"
	"github.com/ccollicutt/uelocate/pkg/source"
)

func validConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Type:  SourceTypeFiles,
			Files: []string{"/var/log/amf/*.log"},
		},
		TimestampFormat: TimestampConfig{
			Pattern: `^\[(\d{4})\]`,
			Layout:  "2006",
		},
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
source:
  type: files
  files:
    - /var/log/amf/*.log
timestamp_format:
  pattern: '^\[(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})\]'
  layout: "2006-01-02 15:04:05"
  fallback_layouts:
    - "2006-01-02T15:04:05"
extraction:
  context_window: 20
  equipment_proximity: 0
  workers: 8
log_level: debug
`
	path := writeTempFile(t, "config.yaml", content)
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Source.Type != SourceTypeFiles {
		t.Errorf("Source.Type = %q, want %q", cfg.Source.Type, SourceTypeFiles)
	}
	if len(cfg.Source.Files) != 1 {
		t.Errorf("Source.Files = %d, want 1", len(cfg.Source.Files))
	}
	if cfg.Extraction.ContextWindow != 20 {
		t.Errorf("ContextWindow = %d, want 20", cfg.Extraction.ContextWindow)
	}
	if cfg.Extraction.EquipmentProximity != 0 {
		t.Errorf("EquipmentProximity = %d, want 0", cfg.Extraction.EquipmentProximity)
	}
	if cfg.Extraction.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Extraction.Workers)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if got := cfg.TimestampFormat.Layouts(); len(got) != 2 || got[1] != "2006-01-02T15:04:05" {
		t.Errorf("Layouts() = %v", got)
	}
}

func TestLoad_KeepsDefaultsForOmittedKeys(t *testing.T) {
	path := writeTempFile(t, "config.yaml", "log_level: info\n")
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Source.Type != SourceTypeContainer {
		t.Errorf("Source.Type = %q, want %q", cfg.Source.Type, SourceTypeContainer)
	}
	if cfg.Source.Container != source.DefaultContainer {
		t.Errorf("Source.Container = %q, want %q", cfg.Source.Container, source.DefaultContainer)
	}
	if cfg.Extraction.ContextWindow != extract.DefaultContextWindow {
		t.Errorf("ContextWindow = %d, want %d", cfg.Extraction.ContextWindow, extract.DefaultContextWindow)
	}
	if cfg.TimestampFormat.CompiledPattern() == nil {
		t.Error("CompiledPattern() should be set after Load")
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(context.Background(), "/nonexistent/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	content := `invalid: yaml: content: [`
	path := writeTempFile(t, "invalid.yaml", content)
	_, err := Load(context.Background(), path)
	if err == nil {
		t.Error("Load() expected error for invalid YAML")
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvContainer, "amf-test")
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvTimestampLayout, "2006-01-02 15:04:05")

	path := writeTempFile(t, "config.yaml", "source:\n  type: container\n  container: amf\n")
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Source.Container != "amf-test" {
		t.Errorf("Container = %q, want %q", cfg.Source.Container, "amf-test")
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "error")
	}
	if cfg.TimestampFormat.Layout != "2006-01-02 15:04:05" {
		t.Errorf("Layout = %q", cfg.TimestampFormat.Layout)
	}
}

func TestFromEnvironment(t *testing.T) {
	t.Setenv(EnvContainer, "other-amf")

	cfg, err := FromEnvironment()
	if err != nil {
		t.Fatalf("FromEnvironment() error = %v", err)
	}
	if cfg.Source.Container != "other-amf" {
		t.Errorf("Container = %q, want %q", cfg.Source.Container, "other-amf")
	}
	if cfg.TimestampFormat.CompiledPattern() == nil {
		t.Error("CompiledPattern() should be set")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Source.Type != SourceTypeContainer {
		t.Errorf("Source.Type = %q, want %q", cfg.Source.Type, SourceTypeContainer)
	}
	if cfg.TimestampFormat.Pattern != extract.DefaultTimestampPattern {
		t.Errorf("Pattern = %q", cfg.TimestampFormat.Pattern)
	}
	if cfg.Extraction.EquipmentProximity != locator.DefaultEquipmentProximity {
		t.Errorf("EquipmentProximity = %d, want %d", cfg.Extraction.EquipmentProximity, locator.DefaultEquipmentProximity)
	}
	if cfg.Extraction.Workers != locator.DefaultWorkers {
		t.Errorf("Workers = %d, want %d", cfg.Extraction.Workers, locator.DefaultWorkers)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
}

func TestValidate_Source(t *testing.T) {
	tests := []struct {
		name    string
		src     SourceConfig
		wantErr bool
	}{
		{"container", SourceConfig{Type: SourceTypeContainer, Container: "amf"}, false},
		{"container missing name", SourceConfig{Type: SourceTypeContainer}, true},
		{"files", SourceConfig{Type: SourceTypeFiles, Files: []string{"a.log"}}, false},
		{"files missing patterns", SourceConfig{Type: SourceTypeFiles}, true},
		{"command", SourceConfig{Type: SourceTypeCommand, Command: []string{"kubectl", "logs", "amf"}}, false},
		{"command missing argv", SourceConfig{Type: SourceTypeCommand}, true},
		{"unknown type", SourceConfig{Type: "syslog"}, true},
		{"empty type defaults to container", SourceConfig{Container: "amf"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Source = tt.src
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_InvalidTimestampPattern(t *testing.T) {
	cfg := validConfig()
	cfg.TimestampFormat.Pattern = `[invalid`
	if err := Validate(cfg); err == nil {
		t.Error("Validate() expected error for invalid regex")
	}
}

func TestValidate_TimestampPatternNoCaptureGroup(t *testing.T) {
	cfg := validConfig()
	cfg.TimestampFormat.Pattern = `^\d{4}`
	if err := Validate(cfg); err == nil {
		t.Error("Validate() expected error for pattern without capture group")
	}
}

func TestValidate_MissingLayout(t *testing.T) {
	cfg := validConfig()
	cfg.TimestampFormat.Layout = ""
	if err := Validate(cfg); err == nil {
		t.Error("Validate() expected error for missing layout")
	}
}

func TestValidate_Extraction(t *testing.T) {
	tests := []struct {
		name    string
		ex      ExtractionConfig
		want    ExtractionConfig
		wantErr bool
	}{
		{
			name: "zero values take defaults",
			ex:   ExtractionConfig{},
			want: ExtractionConfig{ContextWindow: extract.DefaultContextWindow, Workers: 1},
		},
		{
			name: "explicit values kept",
			ex:   ExtractionConfig{ContextWindow: 5, EquipmentProximity: 100, Workers: 3},
			want: ExtractionConfig{ContextWindow: 5, EquipmentProximity: 100, Workers: 3},
		},
		{name: "negative window", ex: ExtractionConfig{ContextWindow: -1}, wantErr: true},
		{name: "negative proximity", ex: ExtractionConfig{EquipmentProximity: -1}, wantErr: true},
		{name: "negative workers", ex: ExtractionConfig{Workers: -2}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Extraction = tt.ex
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cfg.Extraction != tt.want {
				t.Errorf("Extraction = %+v, want %+v", cfg.Extraction, tt.want)
			}
		})
	}
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.LogLevel = "loud"
	if err := Validate(cfg); err == nil {
		t.Error("Validate() expected error for unknown log level")
	}

	cfg = validConfig()
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseLogLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLogLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestTimestampExtractor(t *testing.T) {
	cfg := validConfig()
	cfg.TimestampFormat = TimestampConfig{
		Pattern:         `^\[([^\]]+)\]`,
		Layout:          "2006-01-02 15:04:05",
		FallbackLayouts: []string{"2006-01-02T15:04:05"},
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	ex := cfg.TimestampExtractor()
	want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	for _, line := range []string{
		"[2024-01-15 10:30:00] registration",
		"[2024-01-15T10:30:00] registration",
	} {
		got, err := ex.Extract(line)
		if err != nil {
			t.Errorf("Extract(%q) error = %v", line, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("Extract(%q) = %v, want %v", line, got, want)
		}
	}
}

func TestValidate_Webhook_Valid(t *testing.T) {
	cfg := validConfig()
	cfg.Webhooks = []WebhookConfig{{
		Name:    "test",
		URL:     "https://example.com/webhook",
		Token:   "secret",
		Trigger: WebhookTriggerOnFound,
		Timeout: 5 * time.Second,
	}}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate_Webhook_Errors(t *testing.T) {
	tests := []struct {
		name string
		wh   WebhookConfig
	}{
		{"missing url", WebhookConfig{Name: "test"}},
		{"invalid scheme", WebhookConfig{URL: "ftp://example.com/webhook"}},
		{"missing host", WebhookConfig{URL: "https:///webhook"}},
		{"invalid trigger", WebhookConfig{URL: "https://example.com/webhook", Trigger: "on_issues"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Webhooks = []WebhookConfig{tt.wh}
			if err := Validate(cfg); err == nil {
				t.Error("Validate() expected error")
			}
		})
	}
}

func TestValidate_Webhook_AllTriggers(t *testing.T) {
	for _, trigger := range []WebhookTrigger{WebhookTriggerOnFound, WebhookTriggerAlways, WebhookTriggerNever} {
		t.Run(string(trigger), func(t *testing.T) {
			cfg := validConfig()
			cfg.Webhooks = []WebhookConfig{{URL: "https://example.com/webhook", Trigger: trigger}}
			if err := Validate(cfg); err != nil {
				t.Errorf("Validate() error = %v for trigger %q", err, trigger)
			}
		})
	}
}

func TestValidate_Webhook_Defaults(t *testing.T) {
	cfg := validConfig()
	cfg.Webhooks = []WebhookConfig{{URL: "http://localhost:8080/webhook"}}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Webhooks[0].Trigger != WebhookTriggerOnFound {
		t.Errorf("Default trigger = %v, want %v", cfg.Webhooks[0].Trigger, WebhookTriggerOnFound)
	}
	if cfg.Webhooks[0].Timeout != DefaultWebhookTimeout {
		t.Errorf("Default timeout = %v, want %v", cfg.Webhooks[0].Timeout, DefaultWebhookTimeout)
	}
}

func TestExpandEnvVar(t *testing.T) {
	t.Setenv("TEST_WEBHOOK_TOKEN", "secret-value")

	tests := []struct {
		input string
		want  string
	}{
		{"${TEST_WEBHOOK_TOKEN}", "secret-value"},
		{"$TEST_WEBHOOK_TOKEN", "secret-value"},
		{"plain-value", "plain-value"},
		{"", ""},
		{"${NONEXISTENT_VAR}", ""},
	}

	for _, tt := range tests {
		got := expandEnvVar(tt.input)
		if got != tt.want {
			t.Errorf("expandEnvVar(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLoad_WithWebhooks(t *testing.T) {
	t.Setenv("UELOCATE_TEST_TOKEN", "from-env")

	content := `
source:
  type: files
  files:
    - /var/log/amf/*.log
webhooks:
  - name: test-webhook
    url: "https://example.com/webhook"
    token: "${UELOCATE_TEST_TOKEN}"
    trigger: on_found
    timeout: 30s
  - url: "https://backup.example.com/webhook"
    trigger: always
`
	path := writeTempFile(t, "config-with-webhooks.yaml", content)
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Webhooks) != 2 {
		t.Fatalf("Webhooks = %d, want 2", len(cfg.Webhooks))
	}
	if cfg.Webhooks[0].Token != "from-env" {
		t.Errorf("Webhook[0].Token = %q, want %q", cfg.Webhooks[0].Token, "from-env")
	}
	if cfg.Webhooks[0].Timeout != 30*time.Second {
		t.Errorf("Webhook[0].Timeout = %v, want 30s", cfg.Webhooks[0].Timeout)
	}
	if cfg.Webhooks[1].Trigger != WebhookTriggerAlways {
		t.Errorf("Webhook[1].Trigger = %v, want %v", cfg.Webhooks[1].Trigger, WebhookTriggerAlways)
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	return path
}
