package core

import "errors"

// Named failure conditions reported by board commands. Commands are
// all-or-nothing: when one of these is returned, no state was mutated.
// Callers match them with errors.Is.
var (
	// ErrNotFound indicates a command referenced a task id that is not
	// on the board.
	ErrNotFound = errors.New("task not found")

	// ErrUnknownSector indicates a command referenced a sector id that
	// has not been registered.
	ErrUnknownSector = errors.New("unknown sector")

	// ErrValidation indicates a command's arguments were rejected before
	// any state change (empty title, duplicate dependency, malformed
	// reorder list).
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition indicates a lifecycle command was issued
	// against a task in a state that does not permit it, such as
	// starting a locked task or completing a done one.
	ErrInvalidTransition = errors.New("invalid status transition")
)
