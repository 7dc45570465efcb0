package locator

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ccollicutt/uelocate/pkg/extract"
	"github.com/ccollicutt/uelocate/pkg/movement"
)

const (
	// DefaultEquipmentProximity bounds, in bytes, the fallback search for an
	// IMSI after an equipment id. Zero searches to the end of the text.
	DefaultEquipmentProximity = 0

	// DefaultWorkers is the number of identities processed concurrently by
	// AllLocations and TrackAll.
	DefaultWorkers = 4
)

// Resolver answers location and movement queries over a log snapshot. It
// holds no state between calls and is safe for concurrent use.
type Resolver struct {
	clock      movement.Clock
	window     int
	proximity  int
	workers    int
	logger     *slog.Logger
	timestamps *extract.TimestampExtractor

	classifier *movement.Classifier
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock sets the clock used for extraction-time fields.
func WithClock(clock movement.Clock) Option {
	return func(r *Resolver) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithContextWindow sets the event context window in lines.
func WithContextWindow(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.window = n
		}
	}
}

// WithEquipmentProximity sets the fallback IMEI to IMSI search distance in
// bytes. Zero searches to the end of the text.
func WithEquipmentProximity(n int) Option {
	return func(r *Resolver) {
		if n >= 0 {
			r.proximity = n
		}
	}
}

// WithWorkers sets the fan-out limit of AllLocations and TrackAll.
func WithWorkers(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTimestampExtractor sets how event timestamps are read from log lines.
func WithTimestampExtractor(e *extract.TimestampExtractor) Option {
	return func(r *Resolver) {
		if e != nil {
			r.timestamps = e
		}
	}
}

// NewResolver creates a resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		clock:      movement.SystemClock,
		window:     extract.DefaultContextWindow,
		proximity:  DefaultEquipmentProximity,
		workers:    DefaultWorkers,
		logger:     slog.New(slog.DiscardHandler),
		timestamps: extract.DefaultTimestampExtractor(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.classifier = movement.NewClassifier(
		movement.WithContextWindow(r.window),
		movement.WithClock(r.clock),
		movement.WithTimestampExtractor(r.timestamps),
	)
	return r
}

// parsed holds what one call mines from its log text.
type parsed struct {
	lines   []string
	rows    []extract.SubscriberRecord
	station extract.BaseStationInfo
}

func (r *Resolver) parse(text string) *parsed {
	lines := extract.SplitLines(text)

	station := extract.MatchBaseStationSetup(text)
	if conn, ok := extract.ConnectedBaseStation(extract.MatchBaseStationRows(lines)); ok {
		station.Merge(conn)
	}
	if station.IsZero() {
		r.logger.Debug("no gNB attributes in logs", "lines", len(lines))
	}

	return &parsed{
		lines:   lines,
		rows:    extract.MatchSubscriberRows(lines, r.clock.Now()),
		station: station,
	}
}

// LocationByIdentity returns the location of imsi. It fails with
// ErrNotFound when no table row carries the identity, wrapping
// ErrSourceUnavailable as well when text is empty.
func (r *Resolver) LocationByIdentity(text, imsi string) (*LocationSnapshot, error) {
	if err := ValidateIMSI(imsi); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, ErrSourceUnavailable)
	}

	p := r.parse(text)
	loc, ok := p.locate(imsi)
	if !ok {
		r.logger.Debug("no subscriber row", "imsi", imsi, "rows", len(p.rows))
		return nil, fmt.Errorf("%w: no subscriber row for IMSI %s", ErrNotFound, imsi)
	}
	return loc, nil
}

// ResolveByEquipmentID maps imei to the IMSI the log associates with it and
// returns that subscriber's location with the IMEI attached.
func (r *Resolver) ResolveByEquipmentID(text, imei string) (*LocationSnapshot, error) {
	if err := ValidateIMEI(imei); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, ErrSourceUnavailable)
	}

	imsi, ok := resolveIMSI(text, imei, r.proximity)
	if !ok {
		return nil, fmt.Errorf("%w: no IMSI associated with IMEI %s", ErrNotFound, imei)
	}
	r.logger.Debug("resolved equipment id", "imei", imei, "imsi", imsi)

	loc, err := r.LocationByIdentity(text, imsi)
	if err != nil {
		return nil, err
	}
	loc.UEIdentity.IMEI = imei
	return loc, nil
}

// TrackMovement classifies and deduplicates the movement events of imsi.
// A history with no events is a valid result; its Message says why.
func (r *Resolver) TrackMovement(text, imsi string) (*MovementHistory, error) {
	if err := ValidateIMSI(imsi); err != nil {
		return nil, err
	}
	if text == "" {
		return emptyHistory(imsi, MessageSourceUnavailable), nil
	}
	return r.track(extract.SplitLines(text), imsi), nil
}

func (r *Resolver) track(lines []string, imsi string) *MovementHistory {
	events := r.classifier.ClassifyLines(lines, imsi)
	if len(events) == 0 {
		return emptyHistory(imsi, MessageNoEvents)
	}

	connections := movement.Deduplicate(events)
	r.logger.Debug("tracked movement", "imsi", imsi, "events", len(events), "connections", len(connections))

	return &MovementHistory{
		MovementSummary: movement.Summarize(imsi, events, connections),
		Connections:     connections,
		Events:          events,
	}
}

func emptyHistory(imsi, message string) *MovementHistory {
	return &MovementHistory{
		MovementSummary: movement.Summarize(imsi, nil, nil),
		Message:         message,
		Connections:     []movement.ConnectionRecord{},
		Events:          []movement.MovementEvent{},
	}
}

// AllLocations returns the location of every identity in the UE table, in
// table order. Rows with a malformed IMSI are skipped; duplicate rows
// report the first occurrence.
func (r *Resolver) AllLocations(ctx context.Context, text string) ([]*LocationSnapshot, error) {
	out := []*LocationSnapshot{}
	if text == "" {
		return out, nil
	}

	p := r.parse(text)
	imsis := p.identities()
	results := make([]*LocationSnapshot, len(imsis))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, imsi := range imsis {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if loc, ok := p.locate(imsi); ok {
				results[i] = loc
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, loc := range results {
		if loc != nil {
			out = append(out, loc)
		}
	}
	return out, nil
}

// TrackAll returns the movement history of every identity in the UE table
// that has at least one event, in table order.
func (r *Resolver) TrackAll(ctx context.Context, text string) ([]*MovementHistory, error) {
	out := []*MovementHistory{}
	if text == "" {
		return out, nil
	}

	p := r.parse(text)
	imsis := p.identities()
	results := make([]*MovementHistory, len(imsis))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, imsi := range imsis {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.track(p.lines, imsi)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, h := range results {
		if !h.Empty() {
			out = append(out, h)
		}
	}
	r.logger.Debug("tracked all identities", "identities", len(imsis), "with_events", len(out))
	return out, nil
}

// identities returns the distinct well-formed IMSIs of the table in order.
func (p *parsed) identities() []string {
	seen := make(map[string]struct{}, len(p.rows))
	var out []string
	for _, row := range p.rows {
		if ValidateIMSI(row.IMSI) != nil {
			continue
		}
		if _, ok := seen[row.IMSI]; ok {
			continue
		}
		seen[row.IMSI] = struct{}{}
		out = append(out, row.IMSI)
	}
	return out
}

// locate builds the snapshot of the first row carrying imsi.
func (p *parsed) locate(imsi string) (*LocationSnapshot, bool) {
	for _, row := range p.rows {
		if row.IMSI == imsi {
			return p.assemble(row), true
		}
	}
	return nil, false
}

func (p *parsed) assemble(row extract.SubscriberRecord) *LocationSnapshot {
	st := p.station
	gnbID := orNotAvailable(firstNonEmpty(st.GlobalID, st.ID))
	gnbName := orNotAvailable(firstNonEmpty(st.NodeName, st.Name))
	tac := orNotAvailable(st.TAC)
	cellID := orNotAvailable(row.CellID)

	status := st.Status
	if status == "" {
		status = StatusUnknown
	}

	initial := InitialContext{CellID: extract.NotAvailable, TAC: extract.NotAvailable}
	if ic, ok := extract.MatchInitialContext(p.lines, row.IMSI); ok {
		initial = InitialContext(ic)
	}

	return &LocationSnapshot{
		UEIdentity: UEIdentity{
			IMSI:        row.IMSI,
			IMEI:        extract.NotAvailable,
			GUTI:        orNotAvailable(row.GUTI),
			RANUENGAPID: orNotAvailable(row.RANUENGAPID),
			AMFUENGAPID: orNotAvailable(row.AMFUENGAPID),
		},
		NetworkLocation: NetworkLocation{
			PLMN: extract.PLMN{
				MCC: orNotAvailable(row.PLMN.MCC),
				MNC: orNotAvailable(row.PLMN.MNC),
			},
			CellID:       cellID,
			TAC:          tac,
			TrackingArea: tac,
		},
		GNBInfo: GNBInfo{
			GNBID:   gnbID,
			GNBName: gnbName,
			Status:  status,
		},
		GeographicLocation: CellLocation{
			CellID:  cellID,
			GNBName: gnbName,
			GNBID:   gnbID,
			TAC:     tac,
			PLMN:    orNotAvailable(st.PLMN),
		},
		InitialContext: initial,
		State:          orNotAvailable(row.MobilityState),
		LastUpdated:    row.CapturedAt,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func orNotAvailable(s string) string {
	if s == "" {
		return extract.NotAvailable
	}
	return s
}
