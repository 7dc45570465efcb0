package extract

import (
	"regexp"
	"strings"
	"time"
)

// Rule is a named extraction pattern. Rules are independent of each other so
// each one can be exercised on its own.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// Find returns the first capture group of the rule's first match in s.
func (r Rule) Find(s string) (string, bool) {
	m := r.Pattern.FindStringSubmatch(s)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}

// Table row rules. Each row must sit on one line; the leading [^|]* skips the
// log prefix so a match can only start at the row's first column.
var (
	// | Index | 5GMM State | IMSI | GUTI | RAN UE NGAP ID | AMF UE NGAP ID | PLMN | Cell Id |
	subscriberRowRule = Rule{
		Name: "subscriber-row",
		Pattern: regexp.MustCompile(`^[^|]*\|\s*(\d+)\s*\|\s*([A-Z0-9-]+)\s*\|\s*(\d+)\s*\|\s*(\d+)\s*\|` +
			`\s*([^|\s]+)\s*\|\s*([^|\s]+)\s*\|\s*(\d+)\s*,\s*(\d+)\s*\|\s*(\w+)\s*\|`),
	}

	// | Index | Status | Global ID | gNB Name | PLMN |
	baseStationRowRule = Rule{
		Name: "gnb-row",
		Pattern: regexp.MustCompile(`^[^|]*\|\s*(\d+)\s*\|\s*(\w+)\s*\|\s*([^|\s]+)\s*\|\s*([^|\s]+)\s*\|` +
			`\s*(\d+)\s*,\s*(\d+)\s*\|`),
	}
)

// NG Setup rules, evaluated against the full text. The id and name rules
// span lines.
var (
	gnbIDRule   = Rule{Name: "gnb-id", Pattern: regexp.MustCompile(`(?s)GlobalGNB-ID ::= \{.*?gNB-ID: ([0-9A-F ]+)`)}
	gnbNameRule = Rule{Name: "gnb-name", Pattern: regexp.MustCompile(`(?s)id: 82.*?value: (\S+)`)}
	tacRule     = Rule{Name: "tac", Pattern: regexp.MustCompile(`tAC: ([0-9A-F ]+)`)}
	plmnRule    = Rule{Name: "plmn", Pattern: regexp.MustCompile(`pLMNIdentity: ([0-9A-F ]+)`)}
)

// Initial UE Message rules, evaluated against one context block.
var (
	initialCellRule = Rule{Name: "initial-cell-id", Pattern: regexp.MustCompile(`Cell Id[^0-9a-fA-F]*([0-9a-fA-F]+)`)}
	initialTACRule  = Rule{Name: "initial-tac", Pattern: regexp.MustCompile(`TAC\D*(\d+)`)}
)

// StatusConnected is the gNB table status of an attached base station.
const StatusConnected = "Connected"

// MatchSubscriberRows returns every UE table row found in lines, in order.
// Lines that look like rows but lack columns are skipped.
func MatchSubscriberRows(lines []string, now time.Time) []SubscriberRecord {
	var rows []SubscriberRecord
	for _, line := range lines {
		if !strings.Contains(line, "|") {
			continue
		}
		m := subscriberRowRule.Pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rows = append(rows, SubscriberRecord{
			Index:         m[1],
			MobilityState: m[2],
			IMSI:          m[3],
			GUTI:          m[4],
			RANUENGAPID:   m[5],
			AMFUENGAPID:   m[6],
			PLMN:          PLMN{MCC: m[7], MNC: m[8]},
			CellID:        m[9],
			CapturedAt:    now,
		})
	}
	return rows
}

// MatchBaseStationRows returns every gNB connection table row found in lines.
func MatchBaseStationRows(lines []string) []BaseStationInfo {
	var rows []BaseStationInfo
	for _, line := range lines {
		if !strings.Contains(line, "|") {
			continue
		}
		m := baseStationRowRule.Pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rows = append(rows, BaseStationInfo{
			Index:    m[1],
			Status:   m[2],
			GlobalID: m[3],
			NodeName: m[4],
			PLMNMCC:  m[5],
			PLMNMNC:  m[6],
		})
	}
	return rows
}

// ConnectedBaseStation returns the first row whose status is Connected.
func ConnectedBaseStation(rows []BaseStationInfo) (BaseStationInfo, bool) {
	for _, row := range rows {
		if row.Status == StatusConnected {
			return row, true
		}
	}
	return BaseStationInfo{}, false
}

// MatchBaseStationSetup mines gNB attributes from NG Setup Request dumps.
// Each field is matched independently; the first match per field wins.
func MatchBaseStationSetup(text string) BaseStationInfo {
	var info BaseStationInfo
	if v, ok := gnbIDRule.Find(text); ok {
		info.ID = strings.TrimSpace(v)
	}
	if v, ok := gnbNameRule.Find(text); ok {
		info.Name = v
	}
	if v, ok := tacRule.Find(text); ok {
		info.TAC = strings.TrimSpace(v)
	}
	if v, ok := plmnRule.Find(text); ok {
		info.PLMN = strings.TrimSpace(v)
	}
	return info
}

// InitialContext is the cell and tracking area seen near a subscriber's
// Initial UE Message.
type InitialContext struct {
	CellID string
	TAC    string
}

// MatchInitialContext scans the blocks that mention imsi and returns the cell
// id and TAC of the first block carrying either. A block is the line holding
// the identifier plus the continuation lines that follow it, up to the next
// bracketed log line or blank line.
func MatchInitialContext(lines []string, imsi string) (InitialContext, bool) {
	if imsi == "" {
		return InitialContext{}, false
	}
	for i, line := range lines {
		if !strings.Contains(line, imsi) {
			continue
		}
		block := continuationBlock(lines, i)
		cell, cellOK := initialCellRule.Find(block)
		tac, tacOK := initialTACRule.Find(block)
		if !cellOK && !tacOK {
			continue
		}
		ic := InitialContext{CellID: NotAvailable, TAC: NotAvailable}
		if cellOK {
			ic.CellID = cell
		}
		if tacOK {
			ic.TAC = tac
		}
		return ic, true
	}
	return InitialContext{}, false
}

func continuationBlock(lines []string, start int) string {
	end := start + 1
	for end < len(lines) {
		next := strings.TrimSpace(lines[end])
		if next == "" || strings.HasPrefix(next, "[") {
			break
		}
		end++
	}
	return strings.Join(lines[start:end], "\n")
}
