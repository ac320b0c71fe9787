package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/its-ok-zid/movie-booking/internal/model"
	"github.com/its-ok-zid/movie-booking/internal/repository"
	"github.com/its-ok-zid/movie-booking/internal/utils"
)

// UserService is the credential integrity engine. It validates password
// strength, hashes and verifies passwords with bcrypt, and enforces the
// reset-safety rules: confirmation must match and the new password must
// differ from the current one. Plaintext passwords exist only inside a
// single call; they are never stored or logged.
type UserService struct {
	users      UserStore
	bcryptCost int
}

// NewUserService constructs the engine. cost is the bcrypt cost factor
// used when hashing new passwords.
func NewUserService(users UserStore, cost int) *UserService {
	if users == nil {
		panic("nil store passed to NewUserService")
	}
	return &UserService{users: users, bcryptCost: cost}
}

// RegisterRequest carries a registration candidate. Role is optional
// and defaults to USER.
type RegisterRequest struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	LoginID       string `json:"login_id"`
	Password      string `json:"password"`
	ContactNumber string `json:"contact_number"`
	Role          string `json:"role"`
}

// Register creates a new account. Field presence, email syntax and the
// password complexity policy are all checked before the store is
// touched. A racing registration with the same login id, email or
// contact number is resolved by the store's unique constraints and
// surfaces as ErrAlreadyExists. The returned user carries no hash.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (model.User, error) {
	req.LoginID = strings.TrimSpace(req.LoginID)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.ContactNumber = strings.TrimSpace(req.ContactNumber)

	if req.LoginID == "" || req.FirstName == "" || req.LastName == "" ||
		req.Email == "" || req.Password == "" || req.ContactNumber == "" {
		return model.User{}, fmt.Errorf("all fields are mandatory: %w", ErrInvalidRequest)
	}
	if !utils.IsValidEmail(req.Email) {
		return model.User{}, fmt.Errorf("email should be valid: %w", ErrInvalidRequest)
	}
	if !utils.IsValidPassword(req.Password) {
		return model.User{}, fmt.Errorf("%s: %w", passwordPolicyMessage, ErrInvalidRequest)
	}

	role := model.RoleUser
	if strings.EqualFold(req.Role, string(model.RoleAdmin)) {
		role = model.RoleAdmin
	}

	hash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	log.Printf("users: registering loginId=%s", req.LoginID)
	created, err := s.users.Create(ctx, model.User{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		LoginID:       req.LoginID,
		PasswordHash:  hash,
		ContactNumber: req.ContactNumber,
		Role:          role,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// The store collapses all three unique constraints into one
			// duplicate error, so the message must not single out the
			// login id.
			return model.User{}, fmt.Errorf("user already exists with this loginId, email or contact number: %w", ErrAlreadyExists)
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	created.PasswordHash = ""
	return created, nil
}

// Login verifies a login id and password pair. An unknown login id
// yields (false, nil), not an error, so callers cannot tell absent
// accounts from wrong passwords.
func (s *UserService) Login(ctx context.Context, loginID, password string) (bool, error) {
	u, err := s.users.FindByLoginID(ctx, loginID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("load user: %w", err)
	}
	return utils.VerifyPassword(u.PasswordHash, password), nil
}

// Profile returns the account for a login id with the hash blanked,
// for callers that need identity details after a successful Login.
func (s *UserService) Profile(ctx context.Context, loginID string) (model.User, error) {
	u, err := s.users.FindByLoginID(ctx, loginID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, fmt.Errorf("user not found with this login ID: %s: %w", loginID, ErrNotFound)
		}
		return model.User{}, fmt.Errorf("load user: %w", err)
	}
	u.PasswordHash = ""
	return u, nil
}

// ForgotPassword starts password recovery for a login id. The returned
// message embeds a masked form of the account email; actual dispatch is
// out of scope. Unknown login ids fail with ErrNotFound.
func (s *UserService) ForgotPassword(ctx context.Context, loginID string) (string, error) {
	u, err := s.users.FindByLoginID(ctx, loginID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("user not found with this login ID: %s: %w", loginID, ErrNotFound)
		}
		return "", fmt.Errorf("load user: %w", err)
	}
	masked := utils.MaskEmail(u.Email)
	return fmt.Sprintf("Reset password instructions have been sent to %s. Please check your email.", masked), nil
}

const passwordPolicyMessage = "Password must be at least 8 characters long, contain at least one uppercase letter, one lowercase letter, one digit, and one special character."

// ResetPassword replaces an account's password. The complexity check
// runs before the account lookup, so malformed input is rejected
// without revealing whether the login id exists. A new password equal
// to the current one is rejected as a no-op reset.
func (s *UserService) ResetPassword(ctx context.Context, loginID, newPassword, confirmPassword string) (string, error) {
	if !utils.IsValidPassword(newPassword) {
		return "", fmt.Errorf("%s: %w", passwordPolicyMessage, ErrInvalidRequest)
	}
	if newPassword != confirmPassword {
		return "", fmt.Errorf("new password and confirm password do not match: %w", ErrInvalidRequest)
	}

	u, err := s.users.FindByLoginID(ctx, loginID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("user not found with this login ID: %s: %w", loginID, ErrNotFound)
		}
		return "", fmt.Errorf("load user: %w", err)
	}

	if utils.VerifyPassword(u.PasswordHash, newPassword) {
		return "", fmt.Errorf("new password cannot be the same as the old password: %w", ErrInvalidRequest)
	}

	hash, err := utils.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, u.LoginID, hash); err != nil {
		return "", fmt.Errorf("store password: %w", err)
	}

	log.Printf("users: password reset for loginId=%s", u.LoginID)
	return fmt.Sprintf("Password reset successful for loginId: %s", u.LoginID), nil
}
