package output

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ccollicutt/uelocate/pkg/extract"
	"github.com/ccollicutt/uelocate/pkg/locator"
	"github.com/ccollicutt/uelocate/pkg/movement"
)

// Events beyond this many are elided to the first and last few unless the
// formatter is verbose.
const (
	maxListedEvents = 15
	headEvents      = 10
	tailEvents      = 5
)

const timeLayout = "2006-01-02 15:04:05.000000"

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	_, err := fmt.Fprintf(w, "uelocate: %s, %s subscriber(s), %s event(s), %s unique gNB(s)\n",
		report.Summary.Kind,
		humanize.Comma(int64(report.Summary.Subscribers)),
		humanize.Comma(int64(report.Summary.TotalEvents)),
		humanize.Comma(int64(report.Summary.UniqueGNBs)))
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	res := report.Lookup
	if res == nil {
		fmt.Fprintln(w, "No location information available.")
		return nil
	}

	switch res.Kind {
	case locator.KindLocation, locator.KindLocations:
		if len(res.Locations) == 0 {
			fmt.Fprintln(w, "No location information available.")
		}
		for _, loc := range res.Locations {
			f.formatLocation(loc, w)
		}
	case locator.KindMovement, locator.KindMovements:
		if len(res.Movements) == 0 {
			fmt.Fprintln(w, locator.MessageNoEvents)
		}
		for _, h := range res.Movements {
			f.formatMovement(h, w)
		}
	case locator.KindCombined:
		if res.Combined != nil {
			f.formatLocation(res.Combined.Location, w)
			f.formatMovement(res.Combined.Movement, w)
		}
	}

	if f.opts.Verbose {
		f.formatMetadata(report.Metadata, w)
	}
	return nil
}

func (f *TextFormatter) formatLocation(loc *locator.LocationSnapshot, w io.Writer) {
	if loc == nil {
		return
	}
	rule := strings.Repeat("=", 70)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "UE LOCATION INFORMATION")
	fmt.Fprintln(w, rule)

	id := loc.UEIdentity
	fmt.Fprintln(w, "\nUE Identity:")
	fmt.Fprintf(w, "  IMSI: %s\n", id.IMSI)
	fmt.Fprintf(w, "  IMEI: %s\n", id.IMEI)
	fmt.Fprintf(w, "  GUTI: %s\n", id.GUTI)
	fmt.Fprintf(w, "  RAN UE NGAP ID: %s\n", id.RANUENGAPID)
	fmt.Fprintf(w, "  AMF UE NGAP ID: %s\n", id.AMFUENGAPID)

	net := loc.NetworkLocation
	fmt.Fprintln(w, "\nNetwork Location:")
	fmt.Fprintf(w, "  PLMN: MCC=%s, MNC=%s\n", net.PLMN.MCC, net.PLMN.MNC)
	fmt.Fprintf(w, "  Cell ID: %s\n", net.CellID)
	fmt.Fprintf(w, "  Tracking Area Code (TAC): %s\n", net.TAC)

	gnb := loc.GNBInfo
	fmt.Fprintln(w, "\ngNB Information:")
	fmt.Fprintf(w, "  gNB ID: %s\n", gnb.GNBID)
	fmt.Fprintf(w, "  gNB Name: %s\n", gnb.GNBName)
	fmt.Fprintf(w, "  Status: %s\n", gnb.Status)

	geo := loc.GeographicLocation
	fmt.Fprintln(w, "\nCell-Based Location:")
	fmt.Fprintf(w, "  Cell ID: %s\n", geo.CellID)
	fmt.Fprintf(w, "  gNB Name: %s\n", geo.GNBName)
	fmt.Fprintf(w, "  gNB ID: %s\n", geo.GNBID)
	fmt.Fprintf(w, "  TAC: %s\n", geo.TAC)
	fmt.Fprintf(w, "  PLMN: %s\n", geo.PLMN)

	fmt.Fprintln(w, "\nInitial Context:")
	fmt.Fprintf(w, "  Cell ID: %s\n", loc.InitialContext.CellID)
	fmt.Fprintf(w, "  TAC: %s\n", loc.InitialContext.TAC)

	fmt.Fprintf(w, "\nState: %s\n", loc.State)
	fmt.Fprintf(w, "Last Updated: %s\n", loc.LastUpdated.Format(timeLayout))
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
}

func (f *TextFormatter) formatMovement(h *locator.MovementHistory, w io.Writer) {
	if h == nil {
		return
	}
	if h.Empty() {
		fmt.Fprintf(w, "IMSI %s: %s\n\n", h.IMSI, h.Message)
		return
	}
	rule := strings.Repeat("=", 80)
	sep := strings.Repeat("-", 80)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "UE MOVEMENT TRACKING")
	fmt.Fprintln(w, rule)

	fmt.Fprintf(w, "\nIMSI: %s\n", h.IMSI)
	fmt.Fprintln(w, "\nMovement Statistics:")
	fmt.Fprintf(w, "  Total Events: %s\n", humanize.Comma(int64(h.TotalEvents)))
	fmt.Fprintf(w, "  Unique gNB Connections: %s\n", humanize.Comma(int64(h.UniqueGNBs)))
	fmt.Fprintf(w, "  First Event: %s\n", formatTimePtr(h.FirstEvent))
	fmt.Fprintf(w, "  Last Event: %s\n", formatTimePtr(h.LastEvent))
	if h.FirstEvent != nil && h.LastEvent != nil && h.LastEvent.After(*h.FirstEvent) {
		fmt.Fprintf(w, "  Span: %s\n", h.LastEvent.Sub(*h.FirstEvent).Round(time.Second))
	}
	fmt.Fprintf(w, "  Event Types: %s\n", joinEventTypes(h.EventTypes))

	if len(h.Connections) > 0 {
		fmt.Fprintf(w, "\ngNB Connections (%d unique):\n", len(h.Connections))
		fmt.Fprintln(w, sep)
		for i, c := range h.Connections {
			fmt.Fprintf(w, "\n  [%d] gNB Connection:\n", i+1)
			fmt.Fprintf(w, "      gNB ID: %s\n", deref(c.GNBID))
			fmt.Fprintf(w, "      gNB Name: %s\n", deref(c.GNBName))
			fmt.Fprintf(w, "      Cell ID: %s\n", deref(c.CellID))
			fmt.Fprintf(w, "      TAC: %s\n", deref(c.TAC))
			fmt.Fprintf(w, "      First Seen: %s\n", c.FirstSeen.Format(timeLayout))
			fmt.Fprintf(w, "      Last Seen: %s\n", c.LastSeen.Format(timeLayout))
			fmt.Fprintf(w, "      Event Count: %s\n", humanize.Comma(int64(c.EventCount)))
			fmt.Fprintf(w, "      Event Types: %s\n", joinEventTypes(c.EventTypes))
		}
	}

	if len(h.Events) > 0 {
		fmt.Fprintf(w, "\nDetailed Movement Events (%s total):\n", humanize.Comma(int64(len(h.Events))))
		fmt.Fprintln(w, sep)

		events := h.Events
		if !f.opts.Verbose && len(events) > maxListedEvents {
			fmt.Fprintf(w, "\n  Showing first %d and last %d events (total: %d)\n", headEvents, tailEvents, len(events))
			events = append(append([]movement.MovementEvent{}, events[:headEvents]...), events[len(events)-tailEvents:]...)
		}
		for i, e := range events {
			formatEvent(i+1, e, w)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
}

func formatEvent(n int, e movement.MovementEvent, w io.Writer) {
	fmt.Fprintf(w, "\n  [%d] %s\n", n, e.Timestamp.Format(timeLayout))
	fmt.Fprintf(w, "      Event Type: %s\n", e.EventType)
	optional := []struct {
		label string
		value *string
	}{
		{"gNB ID", e.GNBID},
		{"gNB Name", e.GNBName},
		{"Cell ID", e.CellID},
		{"TAC", e.TAC},
		{"RAN UE NGAP ID", e.RANUENGAPID},
	}
	for _, o := range optional {
		if o.value != nil && *o.value != "" {
			fmt.Fprintf(w, "      %s: %s\n", o.label, *o.value)
		}
	}
}

func (f *TextFormatter) formatMetadata(meta Metadata, w io.Writer) {
	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Run: %s (%s)\n", meta.RunID, meta.Operation)
	fmt.Fprintf(w, "Source: %s\n", meta.Source)
	fmt.Fprintf(w, "Log: %s, %s lines, digest %s\n",
		humanize.Bytes(uint64(meta.LogBytes)),
		humanize.Comma(int64(meta.LogLines)),
		meta.LogDigest)
	fmt.Fprintf(w, "Duration: %s\n", meta.Duration.Round(time.Millisecond))
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return extract.NotAvailable
	}
	return t.Format(timeLayout)
}

func deref(s *string) string {
	if s == nil || *s == "" {
		return extract.NotAvailable
	}
	return *s
}

func joinEventTypes(types []movement.EventType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}
