package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/its-ok-zid/movie-booking/internal/model"
	"github.com/its-ok-zid/movie-booking/internal/queue"
	"github.com/its-ok-zid/movie-booking/internal/repository"
)

// InventoryService is the inventory consistency engine. It owns the
// capacity invariants: remaining tickets never go negative, status is
// always derived from the remaining count, and a showing cannot be
// deleted while bookings reference it. The service holds no state of
// its own; every invariant-bearing mutation goes through one of the
// store's conditional operations.
type InventoryService struct {
	showings ShowingStore
	bookings BookingStore
	events   EventPublisher
}

// NewInventoryService constructs the engine. events may be nil to
// disable event publication.
func NewInventoryService(showings ShowingStore, bookings BookingStore, events EventPublisher) *InventoryService {
	if showings == nil || bookings == nil {
		panic("nil store passed to NewInventoryService")
	}
	return &InventoryService{showings: showings, bookings: bookings, events: events}
}

// CreateShowing registers a new (movie, theatre) pair for sale. The
// status is derived from the initial capacity; a zero-ticket showing is
// legal and starts out SOLD_OUT. The key is claimed by the store's
// unique constraint, so racing creations resolve to one winner.
func (s *InventoryService) CreateShowing(ctx context.Context, movieName, theatreName string, totalTickets int) (model.Showing, error) {
	movieName = strings.TrimSpace(movieName)
	theatreName = strings.TrimSpace(theatreName)
	if movieName == "" || theatreName == "" {
		return model.Showing{}, fmt.Errorf("movie and theatre names are mandatory: %w", ErrInvalidRequest)
	}
	if totalTickets < 0 {
		return model.Showing{}, fmt.Errorf("total tickets must not be negative: %w", ErrInvalidRequest)
	}

	showing := model.Showing{
		Key:          model.ShowingKey{MovieName: movieName, TheatreName: theatreName},
		TotalTickets: totalTickets,
		Status:       model.StatusFor(totalTickets),
	}
	if err := s.showings.Create(ctx, showing); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.Showing{}, fmt.Errorf("showing %q/%q: %w", movieName, theatreName, ErrAlreadyExists)
		}
		return model.Showing{}, fmt.Errorf("create showing: %w", err)
	}
	return showing, nil
}

// BookTickets admits a booking against the showing's remaining capacity.
// The capacity check and the decrement are one conditional store
// operation, so two concurrent requests can never both be admitted on
// the same remaining count. Requesting exactly the remaining capacity is
// legal and drives the showing to SOLD_OUT.
func (s *InventoryService) BookTickets(ctx context.Context, movieName, theatreName string, requestedCount int, seatNumbers string) (model.Booking, error) {
	key := model.ShowingKey{MovieName: movieName, TheatreName: theatreName}

	if _, err := s.showings.Get(ctx, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Booking{}, fmt.Errorf("showing %q/%q: %w", movieName, theatreName, ErrNotFound)
		}
		return model.Booking{}, fmt.Errorf("load showing: %w", err)
	}
	if requestedCount < 1 {
		return model.Booking{}, fmt.Errorf("number of tickets must be at least 1: %w", ErrInvalidRequest)
	}

	if err := s.showings.ConditionalDecrement(ctx, key, requestedCount); err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficient):
			return model.Booking{}, fmt.Errorf("not enough tickets available: %w", ErrCapacityExceeded)
		case errors.Is(err, sql.ErrNoRows):
			// Showing deleted between the lookup and the decrement.
			return model.Booking{}, fmt.Errorf("showing %q/%q: %w", movieName, theatreName, ErrNotFound)
		default:
			return model.Booking{}, fmt.Errorf("decrement capacity: %w", err)
		}
	}

	booking := model.Booking{
		ID:              uuid.NewString(),
		Key:             key,
		NumberOfTickets: requestedCount,
		SeatNumbers:     seatNumbers,
	}
	saved, err := s.bookings.Save(ctx, booking)
	if err != nil {
		// The capacity was already taken; hand it back so the showing
		// does not leak tickets. A negative amount always passes the
		// decrement guard.
		if rerr := s.showings.ConditionalDecrement(ctx, key, -requestedCount); rerr != nil {
			log.Printf("inventory: restore %d tickets for %s/%s failed: %v",
				requestedCount, key.MovieName, key.TheatreName, rerr)
		}
		return model.Booking{}, fmt.Errorf("save booking: %w", err)
	}

	s.publishBooked(ctx, saved)
	return saved, nil
}

// publishBooked emits a TicketsBookedEvent for a saved booking. Failures
// are logged only; the booking has already committed.
func (s *InventoryService) publishBooked(ctx context.Context, b model.Booking) {
	if s.events == nil {
		return
	}
	remaining := 0
	status := string(model.StatusSoldOut)
	if after, err := s.showings.Get(ctx, b.Key); err == nil {
		remaining = after.TotalTickets
		status = string(after.Status)
	}
	ev := queue.TicketsBookedEvent{
		BookingID:       b.ID,
		MovieName:       b.Key.MovieName,
		TheatreName:     b.Key.TheatreName,
		NumberOfTickets: b.NumberOfTickets,
		SeatNumbers:     b.SeatNumbers,
		Remaining:       remaining,
		Status:          status,
		BookedAt:        time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.events.PublishTicketsBooked(ctx, ev); err != nil {
		log.Printf("inventory: publish booked event for %s failed: %v", b.ID, err)
	}
}

// AvailabilityUpdate is returned by UpdateAvailability so administrators
// can see the booked total alongside the capacity they just set. The
// override never cross-checks that total; keeping the new capacity
// consistent with outstanding bookings is the operator's call.
type AvailabilityUpdate struct {
	Showing       model.Showing `json:"showing"`
	BookedTickets int           `json:"booked_tickets"`
}

// UpdateAvailability is the administrative capacity override. The ticket
// id and the showing must both exist; the new total replaces the
// remaining capacity and the status is rederived from it. Existing
// bookings are neither consulted nor altered.
func (s *InventoryService) UpdateAvailability(ctx context.Context, movieName, theatreName, ticketID string, newTotalTickets int) (AvailabilityUpdate, error) {
	if newTotalTickets < 0 {
		return AvailabilityUpdate{}, fmt.Errorf("total tickets must not be negative: %w", ErrInvalidRequest)
	}

	if _, err := s.bookings.Get(ctx, ticketID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AvailabilityUpdate{}, fmt.Errorf("ticket %q: %w", ticketID, ErrNotFound)
		}
		return AvailabilityUpdate{}, fmt.Errorf("load ticket: %w", err)
	}

	key := model.ShowingKey{MovieName: movieName, TheatreName: theatreName}
	showing, err := s.showings.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AvailabilityUpdate{}, fmt.Errorf("showing %q/%q: %w", movieName, theatreName, ErrNotFound)
		}
		return AvailabilityUpdate{}, fmt.Errorf("load showing: %w", err)
	}

	showing.TotalTickets = newTotalTickets
	showing.Status = model.StatusFor(newTotalTickets)
	if err := s.showings.Put(ctx, showing); err != nil {
		return AvailabilityUpdate{}, fmt.Errorf("store showing: %w", err)
	}

	booked, err := s.bookings.SumTicketsForShowing(ctx, key)
	if err != nil {
		return AvailabilityUpdate{}, fmt.Errorf("sum booked tickets: %w", err)
	}
	return AvailabilityUpdate{Showing: showing, BookedTickets: booked}, nil
}

// DeleteShowing removes a showing that has no bookings. The existence
// check and the delete are one conditional store operation, so a
// booking admitted concurrently either blocks the delete or lands on a
// showing that still exists; it is never orphaned.
func (s *InventoryService) DeleteShowing(ctx context.Context, movieName, theatreName string) error {
	key := model.ShowingKey{MovieName: movieName, TheatreName: theatreName}
	err := s.showings.DeleteIfUnreferenced(ctx, key)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrReferenced):
		return fmt.Errorf("showing %q/%q has bookings: %w", movieName, theatreName, ErrConflict)
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("showing %q/%q: %w", movieName, theatreName, ErrNotFound)
	default:
		return fmt.Errorf("delete showing: %w", err)
	}
}

// ListShowings returns every showing, including sold-out ones: a
// zero-ticket showing is still visible, it just cannot accept bookings.
func (s *InventoryService) ListShowings(ctx context.Context) ([]model.Showing, error) {
	out, err := s.showings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list showings: %w", err)
	}
	return out, nil
}

// FindShowingByName returns the first showing whose movie name matches
// case-insensitively. Movie name alone is not a key (the theatre
// disambiguates), so this is a convenience lookup over the listing.
func (s *InventoryService) FindShowingByName(ctx context.Context, movieName string) (model.Showing, error) {
	all, err := s.showings.List(ctx)
	if err != nil {
		return model.Showing{}, fmt.Errorf("list showings: %w", err)
	}
	for _, sh := range all {
		if strings.EqualFold(sh.Key.MovieName, strings.TrimSpace(movieName)) {
			return sh, nil
		}
	}
	return model.Showing{}, fmt.Errorf("movie %q: %w", movieName, ErrNotFound)
}
