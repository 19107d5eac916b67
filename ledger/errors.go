/*
errors.go - Centralized error types for the ledger engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers (API layer, persistence) wrap these with additional context.

ERROR CATEGORIES:
  1. User input errors - Invalid submissions, rejected before any mutation
  2. Not-found errors - Undo/delete referencing a missing history entry
  3. Persistence errors - Durable store or remote sync failures; never
     fatal to the running session

USAGE:
  if errors.Is(err, ledger.ErrEntryNotFound) {
      // 404, nothing was mutated
  }

SEE ALSO:
  - undo.go: Raises ErrEntryNotFound / ErrNothingToUndo
  - distribute.go: Raises UserInputError for bad weekend submissions
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEntryNotFound is returned when a history entry id does not exist.
	ErrEntryNotFound = errors.New("history entry not found")

	// ErrPlayerNotFound is returned when a player id does not exist.
	ErrPlayerNotFound = errors.New("player not found")

	// ErrNothingToUndo is returned when an undo is requested but no
	// eligible submissions remain in history.
	ErrNothingToUndo = errors.New("no submissions to undo")

	// ErrNoBackup is returned when no disaster-recovery snapshot exists.
	ErrNoBackup = errors.New("no backup snapshot")

	// ErrInvalidInput is the base for all user input errors.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCorruptEntry is returned when a stored history entry fails its
	// structural integrity check.
	ErrCorruptEntry = errors.New("corrupt history entry")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UserInputError reports an invalid submission. Nothing is mutated when
// one of these is returned.
type UserInputError struct {
	Reason string
}

func (e *UserInputError) Error() string {
	return "invalid input: " + e.Reason
}

func (e *UserInputError) Unwrap() error { return ErrInvalidInput }

// PersistenceError wraps a durable-store or remote-sync failure. The
// in-memory ledger keeps operating; the write is retried later.
type PersistenceError struct {
	Op  string // e.g. "save players", "sync remote"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntryNotFound) || errors.Is(err, ErrPlayerNotFound)
}
