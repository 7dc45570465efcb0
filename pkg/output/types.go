// Package output provides formatting and export of lookup results.
package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"

	"github.com/ccollicutt/uelocate/pkg/locator"
)

// Report is the complete output of one locate run.
type Report struct {
	// Summary provides aggregate counts.
	Summary Summary `json:"summary" yaml:"summary"`

	// Result is the exported entity: a snapshot, a history, a list of
	// either, or a combined location and movement.
	Result any `json:"result" yaml:"result"`

	// Metadata provides context about the run.
	Metadata Metadata `json:"metadata" yaml:"metadata"`

	// Lookup is the typed result the report was built from.
	Lookup *locator.Result `json:"-" yaml:"-"`
}

// Summary provides aggregate counts over the result.
type Summary struct {
	Kind        locator.ResultKind `json:"kind" yaml:"kind"`
	Found       bool               `json:"found" yaml:"found"`
	Subscribers int                `json:"subscribers" yaml:"subscribers"`
	TotalEvents int                `json:"total_events" yaml:"total_events"`
	UniqueGNBs  int                `json:"unique_gnbs" yaml:"unique_gnbs"`
}

// Metadata provides context about the run.
type Metadata struct {
	// RunID identifies the run across report, export and webhook.
	RunID string `json:"run_id" yaml:"run_id"`

	// Operation is the resolver operation that produced the result.
	Operation string `json:"operation" yaml:"operation"`

	// ConfigFile is the path to the configuration file used, if any.
	ConfigFile string `json:"config_file,omitempty" yaml:"config_file,omitempty"`

	// Source describes where the log text came from.
	Source string `json:"source" yaml:"source"`

	// LogBytes and LogLines size the log snapshot.
	LogBytes int `json:"log_bytes" yaml:"log_bytes"`
	LogLines int `json:"log_lines" yaml:"log_lines"`

	// LogDigest is the xxh3 hash of the snapshot, so two reports can be
	// checked for having read the same log.
	LogDigest string `json:"log_digest" yaml:"log_digest"`

	// GeneratedAt is when the report was produced.
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`

	// Duration is how long fetching and resolving took.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// NewMetadata describes a run over the given log snapshot.
func NewMetadata(operation, source, text string) Metadata {
	return Metadata{
		RunID:     uuid.NewString(),
		Operation: operation,
		Source:    source,
		LogBytes:  len(text),
		LogLines:  countLines(text),
		LogDigest: LogDigest(text),
	}
}

// LogDigest returns the hex xxh3 hash of text.
func LogDigest(text string) string {
	return fmt.Sprintf("%016x", xxh3.HashString(text))
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}

// NewReport creates a Report from a lookup result.
func NewReport(res *locator.Result, meta Metadata) *Report {
	report := &Report{
		Result:   res.Payload(),
		Metadata: meta,
		Lookup:   res,
		Summary: Summary{
			Kind:  res.Kind,
			Found: res.Found(),
		},
	}

	seen := make(map[string]struct{})
	for _, loc := range res.Locations {
		seen[loc.UEIdentity.IMSI] = struct{}{}
	}
	for _, h := range res.Movements {
		if !h.Empty() {
			seen[h.IMSI] = struct{}{}
		}
		report.Summary.TotalEvents += h.TotalEvents
		report.Summary.UniqueGNBs += h.UniqueGNBs
	}
	report.Summary.Subscribers = len(seen)

	return report
}

// Found returns true if the lookup produced a result worth reporting.
func (r *Report) Found() bool {
	return r.Summary.Found
}
