// Package extract recognises typed records inside free-text AMF logs.
//
// Every rule operates on either the full log text or a pre-split line array
// and returns an optional, partially populated record. A rule that does not
// match never produces an error.
package extract

import "time"

// NotAvailable is the placeholder used for fields the log did not carry.
const NotAvailable = "N/A"

// PLMN identifies a public land mobile network.
type PLMN struct {
	MCC string `json:"mcc" yaml:"mcc"`
	MNC string `json:"mnc" yaml:"mnc"`
}

// SubscriberRecord is one row of the AMF UE information table.
type SubscriberRecord struct {
	// Index is the row number printed by the AMF.
	Index string

	// MobilityState is the 5GMM connection-management state (e.g. 5GMM-REGISTERED).
	MobilityState string

	// IMSI is the subscriber identity and the only stable join key.
	IMSI string

	// GUTI is the temporary identity assigned by the AMF.
	GUTI string

	// RANUENGAPID is the NGAP id allocated by the gNB.
	RANUENGAPID string

	// AMFUENGAPID is the NGAP id allocated by the AMF.
	AMFUENGAPID string

	PLMN PLMN

	CellID string

	// CapturedAt is the extraction time, not a log timestamp.
	CapturedAt time.Time
}

// BaseStationInfo aggregates gNB attributes mined from NG Setup text and
// from the gNB connection table.
type BaseStationInfo struct {
	// ID is the gNB-ID from the GlobalGNB-ID structure.
	ID string

	// Name is the RAN node name (NG Setup IE id 82).
	Name string

	// TAC is the tracking area code from the supported TA list.
	TAC string

	// PLMN is the raw pLMNIdentity octets.
	PLMN string

	// Connection table fields. NodeName is the name column of that table.
	Index    string
	Status   string
	GlobalID string
	NodeName string
	PLMNMCC  string
	PLMNMNC  string
}

// Merge folds other into b. Non-empty values in other replace values in b;
// empty values in other never clear a value already present.
func (b *BaseStationInfo) Merge(other BaseStationInfo) {
	mergeField(&b.ID, other.ID)
	mergeField(&b.Name, other.Name)
	mergeField(&b.TAC, other.TAC)
	mergeField(&b.PLMN, other.PLMN)
	mergeField(&b.Index, other.Index)
	mergeField(&b.Status, other.Status)
	mergeField(&b.GlobalID, other.GlobalID)
	mergeField(&b.NodeName, other.NodeName)
	mergeField(&b.PLMNMCC, other.PLMNMCC)
	mergeField(&b.PLMNMNC, other.PLMNMNC)
}

// IsZero reports whether no attribute was found.
func (b BaseStationInfo) IsZero() bool {
	return b == BaseStationInfo{}
}

func mergeField(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Fields holds the optional values mined from an event context window.
type Fields struct {
	GNBID       *string
	GNBName     *string
	CellID      *string
	TAC         *string
	RANUENGAPID *string
}

// Locating reports whether the fields identify an attachment point.
func (f Fields) Locating() bool {
	return f.GNBID != nil || f.GNBName != nil || f.CellID != nil
}
