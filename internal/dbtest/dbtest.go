// Package dbtest opens throwaway migrated SQLite databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/goaltrack/goaltrack/internal/db"
	"github.com/goaltrack/goaltrack/internal/model"
)

func New(t testing.TB) *sqlx.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	database, err := db.Open(context.Background(), "sqlite", dsn)
	require.NoError(t, err, "open test database")
	t.Cleanup(func() { database.Close() })
	return database
}

// CreateUser inserts a bare user row and returns its id.
func CreateUser(t testing.TB, database *sqlx.DB, email string) string {
	t.Helper()

	user := &model.User{ID: uuid.New().String(), Email: email, CreatedAt: time.Now()}
	_, err := database.Exec(`INSERT INTO users (id, email, created_at) VALUES ($1, $2, $3)`,
		user.ID, user.Email, user.CreatedAt)
	require.NoError(t, err, "create user")
	return user.ID
}
