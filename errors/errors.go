package errors

import (
	stderrors "errors"
	"fmt"
)

// Is forwards to the standard library so callers never need two errors
// imports.
func Is(err, target error) bool { return stderrors.Is(err, target) }

var (
	ErrWorkerPanic       = fmt.Errorf("worker panic")
	ErrAlreadyRunning    = fmt.Errorf("simulation already running")
	ErrNotRunning        = fmt.Errorf("simulation not running")
	ErrCatalogExhausted  = fmt.Errorf("event catalog exhausted")
	ErrUnknownPlayer     = fmt.Errorf("unknown player")
	ErrTeamNotFound      = fmt.Errorf("team not found")
	ErrSubscriberClosed  = fmt.Errorf("subscriber closed")
	ErrInvalidScenario   = fmt.Errorf("invalid scenario payload")
	ErrExplainerFallback = fmt.Errorf("explainer unavailable")
)
