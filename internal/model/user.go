package model

import "time"

// Role enumerates the access levels a user can hold. New registrations
// default to RoleUser unless the caller explicitly asks for ADMIN.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User represents an account record as stored in the `user_details`
// table. LoginID, Email and ContactNumber each carry a unique constraint
// at the store layer. PasswordHash is a bcrypt digest; the plaintext is
// never persisted or logged anywhere.
//
// Fields:
//  ID            – primary key identifier.
//  FirstName     – given name.
//  LastName      – family name.
//  Email         – unique, syntactically valid email address.
//  LoginID       – unique login identifier.
//  PasswordHash  – bcrypt hash of the password.
//  ContactNumber – unique contact number.
//  Role          – USER or ADMIN.
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type User struct {
	ID            uint64    // user_details.id
	FirstName     string    // user_details.first_name
	LastName      string    // user_details.last_name
	Email         string    // user_details.email
	LoginID       string    // user_details.login_id
	PasswordHash  string    // user_details.password
	ContactNumber string    // user_details.contact_number
	Role          Role      // user_details.role
	CreatedAt     time.Time // user_details.created_at
	UpdatedAt     time.Time // user_details.updated_at
}
