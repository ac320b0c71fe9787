package utils

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// passwordSpecials is the only special-character set accepted by the
// complexity policy.
const passwordSpecials = "@$!%*?&"

// IsValidPassword reports whether a password satisfies the complexity
// policy: at least 8 characters, at least one lowercase letter, one
// uppercase letter, one digit and one character from passwordSpecials,
// and nothing outside letters, digits and that special set.
func IsValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}
