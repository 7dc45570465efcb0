package locator

import (
	"context"
	"errors"
	"fmt"
)

// Query selects one resolver operation, mirroring the locate command's
// flags. Exactly one of IMSI, IMEI and All is set.
type Query struct {
	IMSI          string
	IMEI          string
	All           bool
	TrackMovement bool
}

// Validate checks that the query names exactly one target.
func (q Query) Validate() error {
	n := 0
	if q.IMSI != "" {
		n++
	}
	if q.IMEI != "" {
		n++
	}
	if q.All {
		n++
	}
	switch n {
	case 0:
		return fmt.Errorf("%w: one of IMSI, IMEI or all is required", ErrInvalidIdentifier)
	case 1:
		return nil
	default:
		return errors.New("IMSI, IMEI and all are mutually exclusive")
	}
}

// Operation names the resolver operation the query maps to.
func (q Query) Operation() string {
	switch {
	case q.All && q.TrackMovement:
		return "track_all"
	case q.All:
		return "all_locations"
	case q.IMEI != "" && q.TrackMovement:
		return "equipment_movement"
	case q.IMEI != "":
		return "equipment"
	case q.TrackMovement:
		return "track_movement"
	default:
		return "identity"
	}
}

// Kind returns the kind of Result the query produces.
func (q Query) Kind() ResultKind {
	switch {
	case q.All && q.TrackMovement:
		return KindMovements
	case q.All:
		return KindLocations
	case q.IMEI != "" && q.TrackMovement:
		return KindCombined
	case q.TrackMovement:
		return KindMovement
	default:
		return KindLocation
	}
}

// Locate runs the operation selected by q against text.
func (r *Resolver) Locate(ctx context.Context, text string, q Query) (*Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	switch {
	case q.All && q.TrackMovement:
		histories, err := r.TrackAll(ctx, text)
		if err != nil {
			return nil, err
		}
		return &Result{Kind: KindMovements, Movements: histories}, nil

	case q.All:
		locations, err := r.AllLocations(ctx, text)
		if err != nil {
			return nil, err
		}
		return &Result{Kind: KindLocations, Locations: locations}, nil

	case q.IMEI != "":
		loc, err := r.ResolveByEquipmentID(text, q.IMEI)
		if err != nil {
			return nil, err
		}
		if !q.TrackMovement {
			return &Result{Kind: KindLocation, Locations: []*LocationSnapshot{loc}}, nil
		}
		history, err := r.TrackMovement(text, loc.UEIdentity.IMSI)
		if err != nil {
			return nil, err
		}
		return &Result{
			Kind:      KindCombined,
			Locations: []*LocationSnapshot{loc},
			Movements: []*MovementHistory{history},
			Combined:  &CombinedResult{Location: loc, Movement: history},
		}, nil

	case q.TrackMovement:
		history, err := r.TrackMovement(text, q.IMSI)
		if err != nil {
			return nil, err
		}
		return &Result{Kind: KindMovement, Movements: []*MovementHistory{history}}, nil

	default:
		loc, err := r.LocationByIdentity(text, q.IMSI)
		if err != nil {
			return nil, err
		}
		return &Result{Kind: KindLocation, Locations: []*LocationSnapshot{loc}}, nil
	}
}
