package movement

import (
	"slices"

	"github.com/ccollicutt/uelocate/pkg/extract"
)

// DedupKey returns the identifier an event's attachment point is merged by:
// the gNB id, else the gNB name, else the cell id. Events whose key is
// missing or the N/A placeholder report false.
func DedupKey(e MovementEvent) (string, bool) {
	var key *string
	switch {
	case e.GNBID != nil:
		key = e.GNBID
	case e.GNBName != nil:
		key = e.GNBName
	case e.CellID != nil:
		key = e.CellID
	}
	if key == nil || *key == "" || *key == extract.NotAvailable {
		return "", false
	}
	return *key, true
}

// Deduplicate folds events into unique connection records in order of first
// sighting. LastSeen is overwritten by each later sighting in encounter
// order, since log timestamps may be missing or out of order.
func Deduplicate(events []MovementEvent) []ConnectionRecord {
	records := []ConnectionRecord{}
	index := make(map[string]int)

	for _, e := range events {
		key, ok := DedupKey(e)
		if !ok {
			continue
		}

		i, seen := index[key]
		if !seen {
			index[key] = len(records)
			records = append(records, ConnectionRecord{
				GNBID:      cloneString(e.GNBID),
				GNBName:    cloneString(e.GNBName),
				CellID:     cloneString(e.CellID),
				TAC:        cloneString(e.TAC),
				FirstSeen:  e.Timestamp,
				LastSeen:   e.Timestamp,
				EventCount: 1,
				EventTypes: []EventType{e.EventType},
			})
			continue
		}

		rec := &records[i]
		rec.LastSeen = e.Timestamp
		rec.EventCount++
		if !slices.Contains(rec.EventTypes, e.EventType) {
			rec.EventTypes = append(rec.EventTypes, e.EventType)
		}
	}

	return records
}

// Summarize computes the aggregate statistics for one subscriber.
func Summarize(imsi string, events []MovementEvent, connections []ConnectionRecord) MovementSummary {
	s := MovementSummary{
		IMSI:        imsi,
		TotalEvents: len(events),
		UniqueGNBs:  len(connections),
		EventTypes:  []EventType{},
	}
	if len(events) == 0 {
		return s
	}

	first := events[0].Timestamp
	last := events[len(events)-1].Timestamp
	s.FirstEvent = &first
	s.LastEvent = &last

	for _, e := range events {
		if !slices.Contains(s.EventTypes, e.EventType) {
			s.EventTypes = append(s.EventTypes, e.EventType)
		}
	}
	return s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
