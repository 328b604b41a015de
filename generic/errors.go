/*
errors.go - Centralized error types for the roster engine

ERROR CATEGORIES:
  1. Roster errors - malformed instances, unknown slots
  2. Input errors - invalid weeks, days, periods, unknown kinds
  3. Store errors - missing records, regeneration collisions

Storage I/O failures are never wrapped into these; adapters return them as-is
(wrapped with %w for context) and the engine performs no retries.
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMalformedRoster is returned when a row cannot be dated or does not
	// match its template. Fatal to the call, never skipped.
	ErrMalformedRoster = errors.New("malformed roster")

	// ErrSlotNotFound is returned when an edit targets a (day, slot) absent from the instance.
	ErrSlotNotFound = errors.New("slot not found")

	// ErrConcurrentRegeneration is returned by a RosterStore when a destructive
	// regeneration collides with another in-flight one for the same key.
	ErrConcurrentRegeneration = errors.New("concurrent regeneration in progress")

	// ErrInstanceNotFound is returned when no roster exists for (kind, week).
	ErrInstanceNotFound = errors.New("roster instance not found")

	// ErrRosterExists is returned by callers that require explicit confirmation
	// before a destructive regeneration.
	ErrRosterExists = errors.New("roster already generated for this week")

	ErrUnknownKind     = errors.New("unknown planning kind")
	ErrInvalidWeek     = errors.New("invalid ISO week")
	ErrInvalidDay      = errors.New("invalid roster day (monday to friday)")
	ErrInvalidPeriod   = errors.New("invalid period: end before start")
	ErrPersonNotFound  = errors.New("person not found")
	ErrAbsenceNotFound = errors.New("absence not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// MalformedRosterError identifies the offending row.
type MalformedRosterError struct {
	Kind   Kind
	Week   Week
	Day    Day
	Slot   SlotKey
	Reason string
}

func (e *MalformedRosterError) Error() string {
	return fmt.Sprintf("malformed roster %s %s: %s/%s: %s", e.Kind, e.Week, e.Day, e.Slot, e.Reason)
}

func (e *MalformedRosterError) Unwrap() error { return ErrMalformedRoster }

// SlotNotFoundError identifies the slot an edit could not resolve.
type SlotNotFoundError struct {
	Kind Kind
	Week Week
	Day  Day
	Slot SlotKey
}

func (e *SlotNotFoundError) Error() string {
	return fmt.Sprintf("slot not found: %s %s %s/%s", e.Kind, e.Week, e.Day, e.Slot)
}

func (e *SlotNotFoundError) Unwrap() error { return ErrSlotNotFound }

// ConcurrentRegenerationError names the key being regenerated.
type ConcurrentRegenerationError struct {
	Kind Kind
	Week Week
}

func (e *ConcurrentRegenerationError) Error() string {
	return fmt.Sprintf("regeneration of %s %s already in progress", e.Kind, e.Week)
}

func (e *ConcurrentRegenerationError) Unwrap() error { return ErrConcurrentRegeneration }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidWeek) ||
		errors.Is(err, ErrInvalidDay) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrMalformedRoster)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrInstanceNotFound) ||
		errors.Is(err, ErrSlotNotFound) ||
		errors.Is(err, ErrUnknownKind) ||
		errors.Is(err, ErrPersonNotFound) ||
		errors.Is(err, ErrAbsenceNotFound)
}

// IsConflict returns true if the error means the request collides with existing state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrRosterExists) || errors.Is(err, ErrConcurrentRegeneration)
}
