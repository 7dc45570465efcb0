// Package config provides configuration loading and validation for uelocate.
package config

import (
	"regexp"
	"time"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	Source          SourceConfig     `yaml:"source"`
	TimestampFormat TimestampConfig  `yaml:"timestamp_format"`
	Extraction      ExtractionConfig `yaml:"extraction"`
	LogLevel        string           `yaml:"log_level,omitempty"`
	Webhooks        []WebhookConfig  `yaml:"webhooks,omitempty"`
}

// SourceType selects where AMF log text is read from.
type SourceType string

const (
	SourceTypeContainer SourceType = "container"
	SourceTypeFiles     SourceType = "files"
	SourceTypeCommand   SourceType = "command"
)

// SourceConfig defines the AMF log source.
type SourceConfig struct {
	// Type is container, files or command. Defaults to container.
	Type SourceType `yaml:"type"`

	// Files are glob patterns, used when Type is files.
	Files []string `yaml:"files,omitempty"`

	// Container is the AMF container name, used when Type is container.
	Container string `yaml:"container,omitempty"`

	// Command is an argv whose stdout is the log, used when Type is command.
	Command []string `yaml:"command,omitempty"`
}

// TimestampConfig defines how to extract timestamps from log lines.
type TimestampConfig struct {
	// Pattern is a regex that captures the timestamp portion of a log line.
	// Must contain at least one capture group.
	Pattern string `yaml:"pattern"`

	// Layout is the Go time layout string for parsing the captured timestamp.
	// See https://pkg.go.dev/time#pkg-constants for format.
	Layout string `yaml:"layout"`

	// FallbackLayouts are tried in order when Layout does not parse.
	FallbackLayouts []string `yaml:"fallback_layouts,omitempty"`

	// compiledPattern is the pre-compiled regex (populated during validation).
	compiledPattern *regexp.Regexp
}

// CompiledPattern returns the pre-compiled regex pattern.
func (t *TimestampConfig) CompiledPattern() *regexp.Regexp {
	return t.compiledPattern
}

// Layouts returns Layout followed by the fallback layouts.
func (t *TimestampConfig) Layouts() []string {
	return append([]string{t.Layout}, t.FallbackLayouts...)
}

// ExtractionConfig tunes field mining.
type ExtractionConfig struct {
	// ContextWindow is how many lines after an event line are searched for
	// its fields.
	ContextWindow int `yaml:"context_window"`

	// EquipmentProximity bounds, in bytes, the fallback IMEI to IMSI search.
	// Zero searches to the end of the log.
	EquipmentProximity int `yaml:"equipment_proximity"`

	// Workers is the fan-out limit for --all lookups.
	Workers int `yaml:"workers"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnFound fires only when the lookup found something (default).
	WebhookTriggerOnFound WebhookTrigger = "on_found"
	// WebhookTriggerAlways fires after every lookup.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending lookup reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "on_found" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
