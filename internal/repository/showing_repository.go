package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/its-ok-zid/movie-booking/internal/model"
)

// ShowingRepo provides persistence for showings in the `movies` table.
// The table is keyed by the composite (movie_name, theatre_name) pair;
// the column collation is case-insensitive, and every query normalizes
// its arguments so lookups behave the same against case-sensitive
// collations too.
type ShowingRepo struct {
	db *sql.DB
}

// NewShowingRepo returns a ShowingRepo bound to the given database.
func NewShowingRepo(db *sql.DB) *ShowingRepo { return &ShowingRepo{db: db} }

func normKey(k model.ShowingKey) model.ShowingKey {
	return model.ShowingKey{
		MovieName:   strings.TrimSpace(k.MovieName),
		TheatreName: strings.TrimSpace(k.TheatreName),
	}
}

// Get fetches the showing for the given key. It returns sql.ErrNoRows
// when no showing matches.
func (r *ShowingRepo) Get(ctx context.Context, key model.ShowingKey) (model.Showing, error) {
	key = normKey(key)
	var s model.Showing
	err := r.db.QueryRowContext(ctx,
		`SELECT movie_name, theatre_name, total_tickets, status
		 FROM movies
		 WHERE LOWER(movie_name) = LOWER(?) AND LOWER(theatre_name) = LOWER(?)
		 LIMIT 1`,
		key.MovieName, key.TheatreName,
	).Scan(&s.Key.MovieName, &s.Key.TheatreName, &s.TotalTickets, &s.Status)
	return s, err
}

// List returns all showings ordered by movie then theatre name so output
// is deterministic.
func (r *ShowingRepo) List(ctx context.Context) ([]model.Showing, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT movie_name, theatre_name, total_tickets, status
		 FROM movies
		 ORDER BY movie_name, theatre_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Showing
	for rows.Next() {
		var s model.Showing
		if err := rows.Scan(&s.Key.MovieName, &s.Key.TheatreName, &s.TotalTickets, &s.Status); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Create inserts a new showing. A duplicate (movie, theatre) pair maps
// to ErrDuplicate.
func (r *ShowingRepo) Create(ctx context.Context, s model.Showing) error {
	s.Key = normKey(s.Key)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO movies (movie_name, theatre_name, total_tickets, status) VALUES (?,?,?,?)`,
		s.Key.MovieName, s.Key.TheatreName, s.TotalTickets, s.Status)
	if err != nil && isDuplicateErr(err) {
		return ErrDuplicate
	}
	return err
}

// Put overwrites the remaining capacity and status of an existing
// showing. This is the administrative override path; it does not touch
// bookings. sql.ErrNoRows is returned when the showing does not exist.
func (r *ShowingRepo) Put(ctx context.Context, s model.Showing) error {
	s.Key = normKey(s.Key)
	res, err := r.db.ExecContext(ctx,
		`UPDATE movies SET total_tickets = ?, status = ?
		 WHERE LOWER(movie_name) = LOWER(?) AND LOWER(theatre_name) = LOWER(?)`,
		s.TotalTickets, s.Status, s.Key.MovieName, s.Key.TheatreName)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is 0 both when the row is absent and when the
		// update is a no-op; distinguish with a lookup.
		if _, gerr := r.Get(ctx, s.Key); gerr != nil {
			return gerr
		}
	}
	return nil
}

// ConditionalDecrement atomically takes amount tickets off the showing's
// remaining capacity and rederives the status, but only when enough
// capacity remains. The guard and the write are a single UPDATE, so
// concurrent callers observing the same remaining count cannot both
// succeed past it ("lost update" hazard). ErrInsufficient is reported
// when the guard fails and sql.ErrNoRows when the showing is absent.
func (r *ShowingRepo) ConditionalDecrement(ctx context.Context, key model.ShowingKey, amount int) error {
	key = normKey(key)
	res, err := r.db.ExecContext(ctx,
		// status is assigned before total_tickets: MySQL evaluates SET
		// clauses left to right against current values, so the IF must
		// run while total_tickets still holds the old count.
		`UPDATE movies
		 SET status = IF(total_tickets - ? > 0, ?, ?),
		     total_tickets = total_tickets - ?
		 WHERE LOWER(movie_name) = LOWER(?) AND LOWER(theatre_name) = LOWER(?)
		   AND total_tickets >= ?`,
		amount, model.StatusBookASAP, model.StatusSoldOut, amount,
		key.MovieName, key.TheatreName, amount)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, gerr := r.Get(ctx, key); gerr != nil {
			return gerr // sql.ErrNoRows: no such showing
		}
		return ErrInsufficient
	}
	return nil
}

// DeleteIfUnreferenced removes the showing only when no booking row
// references its key. The existence check and the delete are one
// statement, so a booking admitted concurrently can never be orphaned
// by the delete. ErrReferenced is returned when bookings still exist
// and sql.ErrNoRows when the showing is absent.
func (r *ShowingRepo) DeleteIfUnreferenced(ctx context.Context, key model.ShowingKey) error {
	key = normKey(key)
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM movies
		 WHERE LOWER(movie_name) = LOWER(?) AND LOWER(theatre_name) = LOWER(?)
		   AND NOT EXISTS (
		       SELECT 1 FROM tickets t
		       WHERE LOWER(t.movie_name) = LOWER(movies.movie_name)
		         AND LOWER(t.theatre_name) = LOWER(movies.theatre_name)
		   )`,
		key.MovieName, key.TheatreName)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, gerr := r.Get(ctx, key); gerr != nil {
			return gerr
		}
		return ErrReferenced
	}
	return nil
}
