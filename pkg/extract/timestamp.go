package extract

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Default bracketed AMF timestamp, e.g. [2024-01-15T10:30:00.123456].
const (
	DefaultTimestampPattern = `\[(\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}\.\d+)\]`
	DefaultTimestampLayout  = "2006-01-02T15:04:05"
	SpaceTimestampLayout    = "2006-01-02 15:04:05"
)

var defaultTimestampPattern = regexp.MustCompile(DefaultTimestampPattern)

// ErrNoTimestamp is returned when a line carries no timestamp.
var ErrNoTimestamp = errors.New("timestamp pattern did not match")

// TimestampExtractor extracts and parses timestamps from log lines.
type TimestampExtractor struct {
	pattern *regexp.Regexp
	layouts []string
}

// NewTimestampExtractor creates a new timestamp extractor. Layouts are tried
// in order against the first capture group of pattern.
func NewTimestampExtractor(pattern *regexp.Regexp, layouts ...string) *TimestampExtractor {
	return &TimestampExtractor{
		pattern: pattern,
		layouts: layouts,
	}
}

// DefaultTimestampExtractor matches the bracketed AMF timestamp with either a
// T or a space between date and time.
func DefaultTimestampExtractor() *TimestampExtractor {
	return NewTimestampExtractor(defaultTimestampPattern, DefaultTimestampLayout, SpaceTimestampLayout)
}

// Extract attempts to extract and parse a timestamp from a log line.
// Fractional seconds are accepted even when the layout omits them.
func (e *TimestampExtractor) Extract(line string) (time.Time, error) {
	matches := e.pattern.FindStringSubmatch(line)
	if len(matches) < 2 {
		return time.Time{}, ErrNoTimestamp
	}

	tsStr := matches[1]

	var lastErr error
	for _, layout := range e.layouts {
		ts, err := time.Parse(layout, tsStr)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no layouts configured")
	}
	return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", tsStr, lastErr)
}
