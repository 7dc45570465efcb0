package movement

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ccollicutt/uelocate/pkg/extract"
)

// kindPatterns are the per-kind existence patterns. %s is replaced by the
// quoted subscriber identifier bounded by non-digits; every pattern is
// matched case-insensitively against a single line. HO and TAU only count as
// whole words.
var kindPatterns = map[EventType]string{
	EventRegistration:       `IMSI.*%s.*(?:Registration|REGISTERED)`,
	EventHandover:           `IMSI.*%s.*(?:Handover|\bHO\b)`,
	EventTrackingAreaUpdate: `IMSI.*%s.*(?:Tracking Area Update|\bTAU\b)`,
	EventInitialUEMessage:   `IMSI.*%s.*Initial UE Message`,
	EventUEContextRelease:   `IMSI.*%s.*UE Context Release`,
	EventPathSwitch:         `IMSI.*%s.*Path Switch`,
	EventRANUENGAPID:        `%s.*RAN UE NGAP ID`,
}

// Classifier tags log lines mentioning a subscriber with event kinds and
// builds a MovementEvent from the context window of each match.
type Classifier struct {
	window     int
	clock      Clock
	timestamps *extract.TimestampExtractor
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithContextWindow sets how many lines from the anchor are mined for fields.
func WithContextWindow(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.window = n
		}
	}
}

// WithClock sets the clock used when a line carries no timestamp.
func WithClock(clock Clock) Option {
	return func(c *Classifier) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithTimestampExtractor replaces the bracketed AMF timestamp extractor.
func WithTimestampExtractor(e *extract.TimestampExtractor) Option {
	return func(c *Classifier) {
		if e != nil {
			c.timestamps = e
		}
	}
}

// NewClassifier creates a classifier with the default 50-line window, the
// system clock and the default timestamp extractor.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		window:     extract.DefaultContextWindow,
		clock:      SystemClock,
		timestamps: extract.DefaultTimestampExtractor(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify splits text into lines and classifies them. See ClassifyLines.
func (c *Classifier) Classify(text, imsi string) []MovementEvent {
	return c.ClassifyLines(extract.SplitLines(text), imsi)
}

// ClassifyLines returns the events for imsi in line order. A line matching
// several kinds yields one event per kind, in the order of EventTypes. Events
// without a gNB id, gNB name or cell id are dropped.
func (c *Classifier) ClassifyLines(lines []string, imsi string) []MovementEvent {
	events := []MovementEvent{}
	if imsi == "" || len(lines) == 0 {
		return events
	}

	patterns := compileKindPatterns(imsi)

	for i, line := range lines {
		// Every kind pattern requires the identifier as a whole number.
		if !containsIdentifier(line, imsi) {
			continue
		}

		var (
			fields  extract.Fields
			mined   bool
			stamped bool
			ts      time.Time
		)

		for _, p := range patterns {
			if !p.re.MatchString(line) {
				continue
			}
			if !stamped {
				ts = c.timestamp(line)
				stamped = true
			}
			if !mined {
				fields = extract.MineFields(extract.ExtractContext(lines, i, c.window))
				mined = true
			}
			if !fields.Locating() {
				continue
			}
			events = append(events, MovementEvent{
				Timestamp:   ts,
				EventType:   p.kind,
				IMSI:        imsi,
				GNBID:       fields.GNBID,
				GNBName:     fields.GNBName,
				CellID:      fields.CellID,
				TAC:         fields.TAC,
				RANUENGAPID: fields.RANUENGAPID,
			})
		}
	}

	return events
}

// timestamp returns the line's log timestamp, or the clock's time when the
// line has none.
func (c *Classifier) timestamp(line string) time.Time {
	if ts, err := c.timestamps.Extract(line); err == nil {
		return ts
	}
	return c.clock.Now()
}

type kindPattern struct {
	kind EventType
	re   *regexp.Regexp
}

func compileKindPatterns(imsi string) []kindPattern {
	bounded := `(?:^|\D)` + regexp.QuoteMeta(imsi) + `(?:\D|$)`
	kinds := EventTypes()
	out := make([]kindPattern, 0, len(kinds))
	for _, kind := range kinds {
		out = append(out, kindPattern{
			kind: kind,
			re:   regexp.MustCompile("(?i)" + fmt.Sprintf(kindPatterns[kind], bounded)),
		})
	}
	return out
}

// containsIdentifier reports whether id occurs in line with no digit directly
// before or after it, so a 14-digit IMSI does not match inside a 15-digit one.
func containsIdentifier(line, id string) bool {
	for off := 0; off <= len(line)-len(id); {
		i := strings.Index(line[off:], id)
		if i < 0 {
			return false
		}
		start := off + i
		end := start + len(id)
		if (start == 0 || !isDigit(line[start-1])) && (end == len(line) || !isDigit(line[end])) {
			return true
		}
		off = start + 1
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
