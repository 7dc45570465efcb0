package locator

import "errors"

var (
	// ErrSourceUnavailable means the log source returned no text.
	ErrSourceUnavailable = errors.New("log source unavailable")

	// ErrNotFound means the identity has no record in the current log snapshot.
	ErrNotFound = errors.New("not found")

	// ErrInvalidIdentifier is returned for a malformed IMSI or IMEI. It is a
	// caller error, not a lookup outcome.
	ErrInvalidIdentifier = errors.New("invalid identifier")
)
