package extract

import (
	"regexp"
	"strings"
)

// DefaultContextWindow is the number of lines, anchor included, searched for
// the fields of one event.
const DefaultContextWindow = 50

// Field rules applied to an event context window. They are case-insensitive
// and do not cross line boundaries except through the [:\s]+ separator.
var (
	gnbIDField       = Rule{Name: "gnb-id", Pattern: regexp.MustCompile(`(?i)gNB.*?ID.*?[:\s]+(\S+)`)}
	gnbNameField     = Rule{Name: "gnb-name", Pattern: regexp.MustCompile(`(?i)gNB.*?Name.*?[:\s]+(\S+)`)}
	cellIDField      = Rule{Name: "cell-id", Pattern: regexp.MustCompile(`(?i)Cell.*?ID.*?[:\s]+(\S+)`)}
	tacField         = Rule{Name: "tac", Pattern: regexp.MustCompile(`(?i)TAC.*?[:\s]+(\S+)`)}
	ranUENGAPIDField = Rule{Name: "ran-ue-ngap-id", Pattern: regexp.MustCompile(`(?i)RAN UE NGAP ID.*?[:\s]+(\d+)`)}
)

// SplitLines splits log text into lines, dropping carriage returns.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// ExtractContext joins up to window lines starting at anchor. The window is
// clamped to the end of lines; a non-positive window uses DefaultContextWindow.
func ExtractContext(lines []string, anchor, window int) string {
	if anchor < 0 || anchor >= len(lines) {
		return ""
	}
	if window <= 0 {
		window = DefaultContextWindow
	}
	end := min(anchor+window, len(lines))
	return strings.Join(lines[anchor:end], "\n")
}

// MineFields extracts the locating fields of an event from its context.
// A field whose rule does not match is left nil.
func MineFields(context string) Fields {
	return Fields{
		GNBID:       findPtr(gnbIDField, context),
		GNBName:     findPtr(gnbNameField, context),
		CellID:      findPtr(cellIDField, context),
		TAC:         findPtr(tacField, context),
		RANUENGAPID: findPtr(ranUENGAPIDField, context),
	}
}

func findPtr(r Rule, s string) *string {
	v, ok := r.Find(s)
	if !ok {
		return nil
	}
	return &v
}
