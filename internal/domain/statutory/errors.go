package statutory

import "errors"

var (
	// ErrNoActiveTable means no active version is effective on the as-of date.
	// The run must not fall back to a stale table.
	ErrNoActiveTable = errors.New("no active statutory table effective on date")
	// ErrBracketGap means a value falls into no bracket. The partition invariant
	// makes this a data-integrity bug, not a recoverable case.
	ErrBracketGap       = errors.New("value falls into no bracket")
	ErrBracketPartition = errors.New("brackets do not partition the salary domain")
	ErrUnknownScheme    = errors.New("unknown contribution scheme")
	ErrUnknownPayPeriod = errors.New("unknown pay period type")
)
