package service

import (
	"context"

	"github.com/its-ok-zid/movie-booking/internal/model"
	"github.com/its-ok-zid/movie-booking/internal/queue"
)

// The engines talk to persistence exclusively through the interfaces in
// this file; the MySQL implementations live in internal/repository and
// are injected at construction. Absent rows are signalled with
// sql.ErrNoRows by every implementation, and the conditional operations
// carry the atomicity guarantees the engines rely on: no in-process
// locking is assumed, so the same code is safe once multiple service
// instances share one database.

// ShowingStore persists showings keyed by (movie, theatre).
type ShowingStore interface {
	// Get returns the showing for the key, matching names
	// case-insensitively. Absence is sql.ErrNoRows.
	Get(ctx context.Context, key model.ShowingKey) (model.Showing, error)
	// List returns all showings in deterministic order.
	List(ctx context.Context) ([]model.Showing, error)
	// Create inserts a new showing, failing with
	// repository.ErrDuplicate when the key is already taken.
	Create(ctx context.Context, s model.Showing) error
	// Put overwrites remaining capacity and status.
	Put(ctx context.Context, s model.Showing) error
	// ConditionalDecrement atomically subtracts amount from the
	// remaining capacity and rederives the status, failing with
	// repository.ErrInsufficient when fewer than amount tickets
	// remain. A negative amount adds capacity back and never fails
	// the guard; the booking path uses that for compensation.
	ConditionalDecrement(ctx context.Context, key model.ShowingKey, amount int) error
	// DeleteIfUnreferenced removes the showing only when no booking
	// references it, failing with repository.ErrReferenced otherwise.
	// The check and the delete are one atomic operation.
	DeleteIfUnreferenced(ctx context.Context, key model.ShowingKey) error
}

// BookingStore persists bookings keyed by their opaque id.
type BookingStore interface {
	Save(ctx context.Context, b model.Booking) (model.Booking, error)
	Get(ctx context.Context, id string) (model.Booking, error)
	ExistsForShowing(ctx context.Context, key model.ShowingKey) (bool, error)
	SumTicketsForShowing(ctx context.Context, key model.ShowingKey) (int, error)
}

// UserStore persists accounts keyed by their unique login id. Create
// fails with repository.ErrDuplicate when any of login id, email or
// contact number is already taken; the store's unique constraints, not
// a prior lookup, are what resolves racing registrations.
type UserStore interface {
	FindByLoginID(ctx context.Context, loginID string) (model.User, error)
	Create(ctx context.Context, u model.User) (model.User, error)
	UpdatePassword(ctx context.Context, loginID, passwordHash string) error
}

// EventPublisher emits domain events after state changes commit. A nil
// publisher disables events; failures are logged and never propagate
// into the request outcome.
type EventPublisher interface {
	PublishTicketsBooked(ctx context.Context, ev queue.TicketsBookedEvent) error
}
