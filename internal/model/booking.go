package model

import "time"

// Booking records an accepted ticket purchase against a showing. Bookings
// are immutable once created: they are never updated, and the owning
// showing cannot be deleted while any booking references it. Seat numbers
// are stored as an opaque string; the system does not resolve seat
// conflicts.
//
// Fields:
//  ID              – opaque system-generated identifier (UUID string).
//  Key             – showing the booking belongs to.
//  NumberOfTickets – how many tickets were bought, at least 1.
//  SeatNumbers     – caller-supplied seat labels, uninterpreted.
//  CreatedAt       – creation timestamp.
type Booking struct {
	ID              string     `json:"id"`                // tickets.id
	Key             ShowingKey `json:"key"`               // tickets.movie_name / tickets.theatre_name
	NumberOfTickets int        `json:"number_of_tickets"` // tickets.number_of_tickets
	SeatNumbers     string     `json:"seat_numbers"`      // tickets.seat_numbers
	CreatedAt       time.Time  `json:"created_at"`        // tickets.created_at
}
