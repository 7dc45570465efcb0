// Package locator joins subscriber rows, gNB attributes and classified
// movement events into location snapshots and movement histories.
package locator

import (
	"time"

	"github.com/ccollicutt/uelocate/pkg/extract"
	"github.com/ccollicutt/uelocate/pkg/movement"
)

// StatusUnknown is reported when no gNB connection row was found.
const StatusUnknown = "Unknown"

// LocationSnapshot is the instantaneous location of one subscriber. Every
// value comes from matched log fields; anything the log did not carry is
// "N/A", never synthesised.
type LocationSnapshot struct {
	UEIdentity         UEIdentity      `json:"ue_identity" yaml:"ue_identity"`
	NetworkLocation    NetworkLocation `json:"network_location" yaml:"network_location"`
	GNBInfo            GNBInfo         `json:"gnb_info" yaml:"gnb_info"`
	GeographicLocation CellLocation    `json:"geographic_location" yaml:"geographic_location"`
	InitialContext     InitialContext  `json:"initial_context" yaml:"initial_context"`
	State              string          `json:"state" yaml:"state"`

	// LastUpdated is the extraction time of the table row.
	LastUpdated time.Time `json:"last_updated" yaml:"last_updated"`
}

// UEIdentity groups the identifiers of a subscriber session.
type UEIdentity struct {
	IMSI        string `json:"imsi" yaml:"imsi"`
	IMEI        string `json:"imei" yaml:"imei"`
	GUTI        string `json:"guti" yaml:"guti"`
	RANUENGAPID string `json:"ran_ue_ngap_id" yaml:"ran_ue_ngap_id"`
	AMFUENGAPID string `json:"amf_ue_ngap_id" yaml:"amf_ue_ngap_id"`
}

// NetworkLocation is where the subscriber sits in the network.
type NetworkLocation struct {
	PLMN         extract.PLMN `json:"plmn" yaml:"plmn"`
	CellID       string       `json:"cell_id" yaml:"cell_id"`
	TAC          string       `json:"tac" yaml:"tac"`
	TrackingArea string       `json:"tracking_area" yaml:"tracking_area"`
}

// GNBInfo describes the serving base station.
type GNBInfo struct {
	GNBID   string `json:"gnb_id" yaml:"gnb_id"`
	GNBName string `json:"gnb_name" yaml:"gnb_name"`
	Status  string `json:"status" yaml:"status"`
}

// CellLocation is the cell-level location block. It carries identifiers
// only; coordinates would need an external cell database.
type CellLocation struct {
	CellID  string `json:"cell_id" yaml:"cell_id"`
	GNBName string `json:"gnb_name" yaml:"gnb_name"`
	GNBID   string `json:"gnb_id" yaml:"gnb_id"`
	TAC     string `json:"tac" yaml:"tac"`
	PLMN    string `json:"plmn" yaml:"plmn"`
}

// InitialContext is the cell and TAC seen near the subscriber's Initial UE
// Message.
type InitialContext struct {
	CellID string `json:"cell_id" yaml:"cell_id"`
	TAC    string `json:"tac" yaml:"tac"`
}

// Messages reported on an empty movement history.
const (
	MessageNoEvents          = "No movement events found in logs"
	MessageSourceUnavailable = "Unable to fetch AMF logs"
)

// MovementHistory is the movement of one subscriber: summary statistics,
// deduplicated connections and the raw events in encounter order.
type MovementHistory struct {
	movement.MovementSummary `yaml:",inline"`

	// Message explains an empty history; it is empty otherwise.
	Message string `json:"message" yaml:"message"`

	Connections []movement.ConnectionRecord `json:"gnb_connections" yaml:"gnb_connections"`
	Events      []movement.MovementEvent    `json:"movement_events" yaml:"movement_events"`
}

// Empty reports whether no qualifying events were found.
func (h *MovementHistory) Empty() bool {
	return h.TotalEvents == 0
}

// CombinedResult pairs a location with the movement of the same subscriber.
type CombinedResult struct {
	Location *LocationSnapshot `json:"location" yaml:"location"`
	Movement *MovementHistory  `json:"movement" yaml:"movement"`
}

// ResultKind tells which payload a Result carries.
type ResultKind string

const (
	KindLocation  ResultKind = "location"
	KindLocations ResultKind = "locations"
	KindMovement  ResultKind = "movement"
	KindMovements ResultKind = "movements"
	KindCombined  ResultKind = "combined"
)

// Result is the outcome of a Query.
type Result struct {
	Kind      ResultKind
	Locations []*LocationSnapshot
	Movements []*MovementHistory
	Combined  *CombinedResult
}

// Found reports whether the result holds anything worth reporting.
func (r *Result) Found() bool {
	switch r.Kind {
	case KindLocation, KindLocations:
		return len(r.Locations) > 0
	case KindMovement, KindMovements:
		for _, m := range r.Movements {
			if !m.Empty() {
				return true
			}
		}
		return false
	case KindCombined:
		return r.Combined != nil && r.Combined.Location != nil
	default:
		return false
	}
}

// Payload returns the bare entity for export: a snapshot, a list of
// snapshots, a history, a list of histories or a combined result.
func (r *Result) Payload() any {
	switch r.Kind {
	case KindLocation:
		if len(r.Locations) == 0 {
			return nil
		}
		return r.Locations[0]
	case KindLocations:
		return r.Locations
	case KindMovement:
		if len(r.Movements) == 0 {
			return nil
		}
		return r.Movements[0]
	case KindMovements:
		return r.Movements
	case KindCombined:
		return r.Combined
	default:
		return nil
	}
}
