package validation

import (
	"strings"
	"unicode/utf8"
)

const (
	maxNameLength  = 100
	maxTitleLength = 200
)

// ValidateName validates a profile display name
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Field("name", "name is required")
	}
	if utf8.RuneCountInString(trimmed) > maxNameLength {
		return Field("name", "name is too long (max %d characters)", maxNameLength)
	}
	return nil
}

// ValidateTitle applies to goal and habit titles.
func ValidateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return Field("title", "title is required")
	}
	if utf8.RuneCountInString(trimmed) > maxTitleLength {
		return Field("title", "title is too long (max %d characters)", maxTitleLength)
	}
	return nil
}
