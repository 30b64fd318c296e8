package filter

import (
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors
var (
	ErrDisconnectedGraph    = errors.New("disconnected graph")
	ErrStaleDependencies    = errors.New("dependency table does not match graph")
	ErrUnknownActivity      = errors.New("unknown activity")
	ErrInvalidConfiguration = errors.New("invalid filter configuration")
)

// DisconnectedError names the activities no raw edge can reconnect
type DisconnectedError struct {
	Unreachable []string // not reachable from any start activity
	DeadEnds    []string // cannot reach any end activity
}

// Error implements the error interface.
func (e *DisconnectedError) Error() string {
	var parts []string
	if len(e.Unreachable) > 0 {
		parts = append(parts, fmt.Sprintf("unreachable from start: [%s]", strings.Join(e.Unreachable, ", ")))
	}
	if len(e.DeadEnds) > 0 {
		parts = append(parts, fmt.Sprintf("cannot reach end: [%s]", strings.Join(e.DeadEnds, ", ")))
	}
	return fmt.Sprintf("%v: %s", ErrDisconnectedGraph, strings.Join(parts, "; "))
}

// Unwrap returns the sentinel for errors.Is support.
func (e *DisconnectedError) Unwrap() error {
	return ErrDisconnectedGraph
}

// IsDisconnected checks if an error is a disconnected graph error
func IsDisconnected(err error) bool {
	return errors.Is(err, ErrDisconnectedGraph)
}
