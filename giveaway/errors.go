package giveaway

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a giveaway id is not present in the store.
	ErrNotFound = errors.New("giveaway not found")

	// ErrDuplicateID is returned when creating a record whose id already exists.
	ErrDuplicateID = errors.New("giveaway already exists")

	// ErrInvalidState is returned when an operation is not legal from the
	// record's current status (e.g. ending an already-ended giveaway).
	ErrInvalidState = errors.New("operation not allowed in current giveaway state")

	// ErrNotWinner is returned when a claim comes from a user outside the
	// current winner set.
	ErrNotWinner = errors.New("only a winner can claim")

	// ErrAlreadyClaimed is returned when a winner claims twice.
	ErrAlreadyClaimed = errors.New("prize already claimed")

	// ErrNoEligibleEntries is returned when a reroll finds no entries outside
	// the current winner set.
	ErrNoEligibleEntries = errors.New("no eligible entries to draw from")
)

// ValidationError reports a creation/edit input that violates a configured
// constraint. The field and reason are shown to the user verbatim.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
