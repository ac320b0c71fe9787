package model

// ShowingStatus enumerates the availability states of a showing.
// The status is always derived from the remaining ticket count:
// SOLD_OUT if and only if zero tickets remain.
type ShowingStatus string

const (
	StatusBookASAP ShowingStatus = "BOOK_ASAP" // tickets remain
	StatusSoldOut  ShowingStatus = "SOLD_OUT"  // nothing left to sell
)

// StatusFor derives the showing status from a remaining ticket count.
func StatusFor(remaining int) ShowingStatus {
	if remaining > 0 {
		return StatusBookASAP
	}
	return StatusSoldOut
}

// ShowingKey is the composite identity of a showing: the same movie may
// run in several theatres, so the theatre name disambiguates. Lookups on
// the key are case-insensitive on both parts.
//
// Fields:
//  MovieName   – title of the movie.
//  TheatreName – name of the theatre running it.
type ShowingKey struct {
	MovieName   string `json:"movie_name"`   // movies.movie_name
	TheatreName string `json:"theatre_name"` // movies.theatre_name
}

// Showing represents a bookable (movie, theatre) pair as stored in the
// `movies` table. TotalTickets holds the *remaining* capacity, not the
// original one: each accepted booking decrements it.
//
// Fields:
//  Key          – composite (movieName, theatreName) identity.
//  TotalTickets – remaining capacity, never negative.
//  Status       – BOOK_ASAP or SOLD_OUT, derived from TotalTickets.
type Showing struct {
	Key          ShowingKey    `json:"key"`
	TotalTickets int           `json:"total_tickets"` // movies.total_tickets
	Status       ShowingStatus `json:"status"`        // movies.status
}
