package validation

import (
	"strings"
)

var commonPasswordPatterns = []string{
	"password", "123456", "qwerty", "admin", "letmein",
	"welcome", "monkey", "dragon", "master", "sunshine",
	"goaltrack",
}

// ValidatePassword enforces a 12 character minimum and rejects common patterns.
func ValidatePassword(password string) error {
	if len(password) < 12 {
		return Field("password", "password must be at least 12 characters")
	}

	// bcrypt silently truncates anything beyond 72 bytes
	if len(password) > 72 {
		return Field("password", "password must not exceed 72 characters")
	}

	lower := strings.ToLower(password)
	for _, pattern := range commonPasswordPatterns {
		if strings.Contains(lower, pattern) {
			return Field("password", "password is too common, please choose a stronger one")
		}
	}

	return nil
}
