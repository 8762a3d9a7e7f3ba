package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repos groups repositories bound to one database handle or transaction.
type Repos struct {
	Users     UserRepository
	Profiles  ProfileRepository
	Goals     GoalRepository
	Progress  ProgressRepository
	Habits    HabitRepository
	HabitLogs HabitLogRepository
	Blog      BlogRepository
}

func newRepos(db sqlx.ExtContext) *Repos {
	return &Repos{
		Users:     NewUserRepository(db),
		Profiles:  NewProfileRepository(db),
		Goals:     NewGoalRepository(db),
		Progress:  NewProgressRepository(db),
		Habits:    NewHabitRepository(db),
		HabitLogs: NewHabitLogRepository(db),
		Blog:      NewBlogRepository(db),
	}
}

// forUpdate returns the row-locking suffix for SELECTs that precede a recompute.
// SQLite has no row locks. Its pool is a single connection, so writers already queue.
func forUpdate(db sqlx.ExtContext) string {
	switch db.DriverName() {
	case "pgx", "postgres":
		return " FOR UPDATE"
	}
	return ""
}

type Store struct {
	*Repos
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{Repos: newRepos(db), db: db}
}

// InTx runs fn against transaction-bound repositories.
// The transaction commits when fn returns nil and rolls back otherwise.
// fn must only use the repos it is given, never the Store itself.
func (s *Store) InTx(ctx context.Context, fn func(r *Repos) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	err = fn(newRepos(tx))
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
