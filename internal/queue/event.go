// Package queue defines message payloads exchanged over the message
// broker, the publisher that emits them, and the background consumer
// that records them.
package queue

// TicketsBookedEvent is published when a booking is accepted and the
// showing's remaining capacity has been decremented. It carries enough
// information for downstream consumers to log or notify without
// querying the primary database.
type TicketsBookedEvent struct {
	BookingID       string `json:"booking_id"`
	MovieName       string `json:"movie_name"`
	TheatreName     string `json:"theatre_name"`
	NumberOfTickets int    `json:"number_of_tickets"`
	SeatNumbers     string `json:"seat_numbers"`
	Remaining       int    `json:"remaining_tickets"`
	Status          string `json:"status"`
	BookedAt        string `json:"booked_at"`
}
