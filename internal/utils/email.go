package utils

import (
	"net/mail"
	"strings"
)

// IsValidEmail reports whether the address parses as a bare RFC 5322
// address (no display name).
func IsValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// MaskEmail hides most of an address's local part for display in
// recovery messages: the first two characters are kept and the rest is
// replaced with a fixed four-asterisk mask, while the domain stays
// visible. Local parts of one or two characters keep only the first
// character followed by a single asterisk.
//
//	john.doe@example.com -> jo****@example.com
//	ab@x.com             -> a*@x.com
func MaskEmail(email string) string {
	if !strings.Contains(email, "@") || strings.TrimSpace(email) == "" {
		return "unknown@example.com"
	}
	at := strings.Index(email, "@")
	local, domain := email[:at], email[at+1:]
	if local == "" {
		return "unknown@example.com"
	}
	if len(local) <= 2 {
		return local[:1] + "*@" + domain
	}
	return local[:2] + "****@" + domain
}
