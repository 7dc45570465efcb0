// Package source acquires the AMF log text the locator works on.
package source

import (
	"context"
	"errors"
)

// ErrUnavailable means the source produced no log text. Callers report it as
// "not found" or an empty result rather than as a failure of the lookup.
var ErrUnavailable = errors.New("log source unavailable")

// Source fetches a complete snapshot of the log text.
type Source interface {
	// Fetch returns the log text. An empty snapshot is reported as
	// ErrUnavailable.
	Fetch(ctx context.Context) (string, error)

	// Name describes the source for diagnostics.
	Name() string
}
