package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/its-ok-zid/movie-booking/internal/model"
)

// UserRepo provides persistence for accounts in the `user_details`
// table. The table enforces unique constraints on login_id, email and
// contact_number; violations surface as ErrDuplicate so the service can
// translate them without racing a separate existence check.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// FindByLoginID fetches a user by login id. Lookups are trimmed and
// case-preserving: login ids are stored exactly as registered.
func (r *UserRepo) FindByLoginID(ctx context.Context, loginID string) (model.User, error) {
	loginID = strings.TrimSpace(loginID)
	var u model.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, email, login_id, password, contact_number, role, created_at, updated_at
		 FROM user_details WHERE login_id = ? LIMIT 1`,
		loginID).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.LoginID,
		&u.PasswordHash, &u.ContactNumber, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a new user and returns it with the generated id. A
// unique-constraint violation on any of login_id, email or
// contact_number maps to ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO user_details (first_name, last_name, email, login_id, password, contact_number, role)
		 VALUES (?,?,?,?,?,?,?)`,
		u.FirstName, u.LastName, strings.ToLower(strings.TrimSpace(u.Email)),
		strings.TrimSpace(u.LoginID), u.PasswordHash, strings.TrimSpace(u.ContactNumber), u.Role)
	if err != nil {
		if isDuplicateErr(err) {
			return model.User{}, ErrDuplicate
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	u.ID = uint64(id)
	return u, nil
}

// UpdatePassword replaces the stored password hash for a login id.
// sql.ErrNoRows is returned when the user does not exist.
func (r *UserRepo) UpdatePassword(ctx context.Context, loginID, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE user_details SET password = ? WHERE login_id = ?`,
		passwordHash, strings.TrimSpace(loginID))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, gerr := r.FindByLoginID(ctx, loginID); gerr != nil {
			return gerr
		}
	}
	return nil
}
