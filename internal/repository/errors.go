// Package repository implements the MySQL-backed stores for showings,
// bookings and users. This file defines the sentinel errors shared
// across repositories so that the service layer can distinguish failure
// scenarios without inspecting driver-specific error strings. For
// example, ErrDuplicate signals that an insert hit a unique constraint,
// while ErrReferenced signals that a delete cannot proceed because
// dependent rows still exist.
package repository

import (
	"errors"
	"strings"
)

// ErrDuplicate is returned when an insert violates a unique constraint,
// such as registering a loginId, email or contact number that is already
// taken. The service layer translates this into its AlreadyExists kind.
var ErrDuplicate = errors.New("duplicate key")

// ErrReferenced is returned when a delete cannot be performed because
// other rows still reference the target, such as removing a showing
// that has outstanding bookings. The service layer translates this
// into its Conflict kind.
var ErrReferenced = errors.New("still referenced")

// ErrInsufficient is returned by the conditional capacity decrement when
// the remaining ticket count is lower than the requested amount. The
// check and the decrement happen in a single statement, so two
// concurrent bookings can never both pass on the same remaining count.
var ErrInsufficient = errors.New("insufficient capacity")

// isDuplicateErr reports whether err is a MySQL duplicate-entry error
// (errno 1062, ER_DUP_ENTRY).
func isDuplicateErr(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
