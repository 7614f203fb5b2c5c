package service

import (
	"fmt"
	"time"
)

// ValidationError reports a malformed or out-of-range input field. The caller
// must fix the input; retrying the same payload will fail the same way.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError reports a storage-layer failure after the transaction was
// rolled back. The identical operation may be retried; Current-State is
// last-write-wins safe, History may gain duplicate entries on blind retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NotFoundError signals an empty result for the requested device and window.
// Not a system fault.
type NotFoundError struct {
	DeviceID    string
	WindowStart time.Time
	WindowEnd   time.Time
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no telemetry for device %q in window [%s, %s]",
		e.DeviceID,
		e.WindowStart.Format(time.RFC3339),
		e.WindowEnd.Format(time.RFC3339),
	)
}
