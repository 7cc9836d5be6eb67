/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package throttle

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoLimitsInTable is returned when a delay is resolved against an empty limits table.
// It can happen only if the limits table invariants were bypassed.
var ErrNoLimitsInTable = errors.New("no limits defined in table")

// InvalidLimitsError is returned by SetLimits when the passed limits table violates the table invariants.
// It carries descriptions of all found violations. The stored state is left unchanged.
type InvalidLimitsError struct {
	Key        Key
	Violations []string
}

// Error returns a string representation of the error.
// Implements error interface.
func (e *InvalidLimitsError) Error() string {
	return fmt.Sprintf("invalid limits for activity %q: %s", string(e.Key), strings.Join(e.Violations, "; "))
}

// NoLimitsConfiguredError is returned by SetThrottleByLoad and GetThrottleForLoad
// when no limits table is configured for the activity.
// Unlike InvalidLimitsError it indicates a usage error, not a data error.
type NoLimitsConfiguredError struct {
	Key Key
}

// Error returns a string representation of the error.
// Implements error interface.
func (e *NoLimitsConfiguredError) Error() string {
	return fmt.Sprintf("no limits configured for activity %q", string(e.Key))
}

// KeyNotConfiguredError is returned by Throttle when no current delay is set for the activity.
type KeyNotConfiguredError struct {
	Key Key
}

// Error returns a string representation of the error.
// Implements error interface.
func (e *KeyNotConfiguredError) Error() string {
	return fmt.Sprintf("no throttle configured for activity %q", string(e.Key))
}
