// Package service contains the two core engines: the inventory
// consistency engine guarding ticket capacity, and the credential
// integrity engine guarding password lifecycle rules. Both operate on
// injected store interfaces and report failures through the typed
// sentinels below; callers translate these into transport responses.
package service

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced entity (showing, booking or
// user) does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned when an insert would violate a uniqueness
// rule, such as registering an already-taken login id.
var ErrAlreadyExists = errors.New("already exists")

// ErrInvalidRequest is returned when caller-supplied data violates a
// precondition: non-positive ticket counts, weak passwords, mismatched
// confirmations.
var ErrInvalidRequest = errors.New("invalid request")

// ErrCapacityExceeded is returned when a booking asks for more tickets
// than the showing has left. It wraps ErrInvalidRequest, so callers that
// only distinguish the broader kind still match it with errors.Is.
var ErrCapacityExceeded = fmt.Errorf("capacity exceeded: %w", ErrInvalidRequest)

// ErrConflict is returned when an operation would violate a cross-entity
// invariant, such as deleting a showing that still has bookings.
var ErrConflict = errors.New("conflict")
