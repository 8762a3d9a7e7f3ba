package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is wrapped by every per-entity not-found error.
var ErrNotFound = errors.New("not found")

var (
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrProfileNotFound  = fmt.Errorf("profile %w", ErrNotFound)
	ErrGoalNotFound     = fmt.Errorf("goal %w", ErrNotFound)
	ErrProgressNotFound = fmt.Errorf("progress entry %w", ErrNotFound)
	ErrHabitNotFound    = fmt.Errorf("habit %w", ErrNotFound)
	ErrHabitLogNotFound = fmt.Errorf("habit log %w", ErrNotFound)
	ErrBlogPostNotFound = fmt.Errorf("blog post %w", ErrNotFound)

	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateHabitLog = errors.New("habit already logged for this day")
)

// isUniqueViolation works for both SQLite and PostgreSQL error texts.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

// requireAffected maps an UPDATE or DELETE that touched no rows to notFound.
func requireAffected(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
