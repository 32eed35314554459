package component

import "errors"

// Standard errors returned by the component database manager.
var (
	// ErrAlreadyStarted indicates a second Start on the same manager.
	// Starting twice would violate the single-worker contract.
	ErrAlreadyStarted = errors.New("component database worker already started")

	// ErrNotStarted indicates Join was called before Start.
	ErrNotStarted = errors.New("component database worker not started")
)
