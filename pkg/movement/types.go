// Package movement classifies subscriber events in AMF logs and folds them
// into the set of base stations a subscriber was attached to.
package movement

import "time"

// EventType is the kind of a classified movement event.
type EventType string

const (
	EventRegistration       EventType = "registration"
	EventHandover           EventType = "handover"
	EventTrackingAreaUpdate EventType = "tau"
	EventInitialUEMessage   EventType = "initial_ue_message"
	EventUEContextRelease   EventType = "ue_context_release"
	EventPathSwitch         EventType = "path_switch"
	EventRANUENGAPID        EventType = "ran_ue_ngap"
)

// EventTypes lists every event type in classification order.
func EventTypes() []EventType {
	return []EventType{
		EventRegistration,
		EventHandover,
		EventTrackingAreaUpdate,
		EventInitialUEMessage,
		EventUEContextRelease,
		EventPathSwitch,
		EventRANUENGAPID,
	}
}

// MovementEvent is one classified occurrence for a subscriber. At least one
// of GNBID, GNBName and CellID is set on every retained event.
type MovementEvent struct {
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
	EventType   EventType `json:"event_type" yaml:"event_type"`
	IMSI        string    `json:"imsi" yaml:"imsi"`
	GNBID       *string   `json:"gnb_id" yaml:"gnb_id"`
	GNBName     *string   `json:"gnb_name" yaml:"gnb_name"`
	CellID      *string   `json:"cell_id" yaml:"cell_id"`
	TAC         *string   `json:"tac" yaml:"tac"`
	RANUENGAPID *string   `json:"ran_ue_ngap_id" yaml:"ran_ue_ngap_id"`
}

// ConnectionRecord is a deduplicated attachment point. Representative fields
// come from the first sighting.
type ConnectionRecord struct {
	GNBID      *string     `json:"gnb_id" yaml:"gnb_id"`
	GNBName    *string     `json:"gnb_name" yaml:"gnb_name"`
	CellID     *string     `json:"cell_id" yaml:"cell_id"`
	TAC        *string     `json:"tac" yaml:"tac"`
	FirstSeen  time.Time   `json:"first_seen" yaml:"first_seen"`
	LastSeen   time.Time   `json:"last_seen" yaml:"last_seen"`
	EventCount int         `json:"event_count" yaml:"event_count"`
	EventTypes []EventType `json:"event_types" yaml:"event_types"`
}

// MovementSummary holds the aggregate statistics of one subscriber's events.
// FirstEvent and LastEvent follow encounter order, not clock order.
type MovementSummary struct {
	IMSI        string      `json:"imsi" yaml:"imsi"`
	TotalEvents int         `json:"total_events" yaml:"total_events"`
	UniqueGNBs  int         `json:"unique_gnbs" yaml:"unique_gnbs"`
	FirstEvent  *time.Time  `json:"first_event" yaml:"first_event"`
	LastEvent   *time.Time  `json:"last_event" yaml:"last_event"`
	EventTypes  []EventType `json:"event_types" yaml:"event_types"`
}
