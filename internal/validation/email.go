package validation

import (
	"net/mail"
)

// ValidateEmail checks length limits and RFC 5322 syntax.
func ValidateEmail(email string) error {
	if email == "" {
		return Field("email", "email address is required")
	}

	// RFC 5321 caps an address at 254 characters
	if len(email) > 254 {
		return Field("email", "email address is too long (max 254 characters)")
	}

	_, err := mail.ParseAddress(email)
	if err != nil {
		return Field("email", "invalid email address format")
	}

	return nil
}
