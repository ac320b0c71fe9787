package repository

import (
	"context"
	"database/sql"

	"github.com/its-ok-zid/movie-booking/internal/model"
)

// BookingRepo provides persistence for bookings in the `tickets` table.
// Bookings are write-once: they are inserted by a successful booking and
// never updated. The showing delete path guarantees no booking is ever
// orphaned, so no cascade logic lives here.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// Save inserts a booking. The id must already be set by the caller.
func (r *BookingRepo) Save(ctx context.Context, b model.Booking) (model.Booking, error) {
	b.Key = normKey(b.Key)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tickets (id, movie_name, theatre_name, number_of_tickets, seat_numbers)
		 VALUES (?,?,?,?,?)`,
		b.ID, b.Key.MovieName, b.Key.TheatreName, b.NumberOfTickets, b.SeatNumbers)
	if err != nil {
		if isDuplicateErr(err) {
			return model.Booking{}, ErrDuplicate
		}
		return model.Booking{}, err
	}
	return r.Get(ctx, b.ID)
}

// Get fetches a booking by id, returning sql.ErrNoRows when absent.
func (r *BookingRepo) Get(ctx context.Context, id string) (model.Booking, error) {
	var b model.Booking
	err := r.db.QueryRowContext(ctx,
		`SELECT id, movie_name, theatre_name, number_of_tickets, seat_numbers, created_at
		 FROM tickets WHERE id = ? LIMIT 1`,
		id).Scan(&b.ID, &b.Key.MovieName, &b.Key.TheatreName, &b.NumberOfTickets, &b.SeatNumbers, &b.CreatedAt)
	return b, err
}

// ExistsForShowing reports whether any booking references the showing key.
func (r *BookingRepo) ExistsForShowing(ctx context.Context, key model.ShowingKey) (bool, error) {
	key = normKey(key)
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM tickets
		 WHERE LOWER(movie_name) = LOWER(?) AND LOWER(theatre_name) = LOWER(?)
		 LIMIT 1`,
		key.MovieName, key.TheatreName).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SumTicketsForShowing returns the total number of tickets booked against
// the showing key, zero when no bookings exist.
func (r *BookingRepo) SumTicketsForShowing(ctx context.Context, key model.ShowingKey) (int, error) {
	key = normKey(key)
	var sum int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(number_of_tickets), 0) FROM tickets
		 WHERE LOWER(movie_name) = LOWER(?) AND LOWER(theatre_name) = LOWER(?)`,
		key.MovieName, key.TheatreName).Scan(&sum)
	return sum, err
}
