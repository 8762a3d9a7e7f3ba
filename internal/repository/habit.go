package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/goaltrack/goaltrack/internal/model"
)

type HabitRepository interface {
	Create(ctx context.Context, habit *model.Habit) error
	ByID(ctx context.Context, userID, habitID string) (*model.Habit, error)
	ByIDForUpdate(ctx context.Context, userID, habitID string) (*model.Habit, error)
	Habits(ctx context.Context, userID string) ([]*model.Habit, error)
	ActiveHabits(ctx context.Context, userID string) ([]*model.Habit, error)
	AllActive(ctx context.Context) ([]*model.Habit, error)
	Update(ctx context.Context, habit *model.Habit) error
	UpdateStreaks(ctx context.Context, userID, habitID string, current, best int) error
	Deactivate(ctx context.Context, userID, habitID string) error
}

type habitRepository struct {
	db sqlx.ExtContext
}

func NewHabitRepository(db sqlx.ExtContext) HabitRepository {
	return &habitRepository{db: db}
}

func (r *habitRepository) Create(ctx context.Context, habit *model.Habit) error {
	query := `INSERT INTO habits (id, user_id, title, description, icon, color, frequency, target_days, reminder_time,
	                              streak_current, streak_best, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.ExecContext(ctx, query,
		habit.ID,
		habit.UserID,
		habit.Title,
		habit.Description,
		habit.Icon,
		habit.Color,
		habit.Frequency,
		habit.TargetDays,
		habit.ReminderTime,
		habit.StreakCurrent,
		habit.StreakBest,
		habit.IsActive,
		habit.CreatedAt,
		habit.UpdatedAt,
	)
	return err
}

func (r *habitRepository) ByID(ctx context.Context, userID, habitID string) (*model.Habit, error) {
	return r.byID(ctx, userID, habitID, "")
}

// ByIDForUpdate also locks the habit row until the transaction ends.
func (r *habitRepository) ByIDForUpdate(ctx context.Context, userID, habitID string) (*model.Habit, error) {
	return r.byID(ctx, userID, habitID, forUpdate(r.db))
}

func (r *habitRepository) byID(ctx context.Context, userID, habitID, lock string) (*model.Habit, error) {
	habit := &model.Habit{}
	query := `SELECT * FROM habits WHERE id = $1 AND user_id = $2` + lock
	err := sqlx.GetContext(ctx, r.db, habit, query, habitID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHabitNotFound
	}
	if err != nil {
		return nil, err
	}
	return habit, nil
}

// Habits includes deactivated habits so history stays browsable.
func (r *habitRepository) Habits(ctx context.Context, userID string) ([]*model.Habit, error) {
	habits := []*model.Habit{}
	err := sqlx.SelectContext(ctx, r.db, &habits,
		`SELECT * FROM habits WHERE user_id = $1 ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	return habits, nil
}

func (r *habitRepository) ActiveHabits(ctx context.Context, userID string) ([]*model.Habit, error) {
	habits := []*model.Habit{}
	err := sqlx.SelectContext(ctx, r.db, &habits,
		`SELECT * FROM habits WHERE user_id = $1 AND is_active = TRUE ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	return habits, nil
}

// AllActive returns active habits across every user, for maintenance jobs.
func (r *habitRepository) AllActive(ctx context.Context) ([]*model.Habit, error) {
	habits := []*model.Habit{}
	err := sqlx.SelectContext(ctx, r.db, &habits, `SELECT * FROM habits WHERE is_active = TRUE ORDER BY user_id, created_at`)
	if err != nil {
		return nil, err
	}
	return habits, nil
}

// Update writes the user-editable fields. Streaks are left to UpdateStreaks.
func (r *habitRepository) Update(ctx context.Context, habit *model.Habit) error {
	habit.UpdatedAt = time.Now()
	query := `UPDATE habits
	          SET title = $1, description = $2, icon = $3, color = $4, frequency = $5, target_days = $6,
	              reminder_time = $7, is_active = $8, updated_at = $9
	          WHERE id = $10 AND user_id = $11`

	result, err := r.db.ExecContext(ctx, query,
		habit.Title,
		habit.Description,
		habit.Icon,
		habit.Color,
		habit.Frequency,
		habit.TargetDays,
		habit.ReminderTime,
		habit.IsActive,
		habit.UpdatedAt,
		habit.ID,
		habit.UserID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result, ErrHabitNotFound)
}

// UpdateStreaks never lowers streak_best, whatever best the caller computed.
func (r *habitRepository) UpdateStreaks(ctx context.Context, userID, habitID string, current, best int) error {
	query := `UPDATE habits
	          SET streak_current = $1,
	              streak_best = CASE WHEN streak_best > $2 THEN streak_best ELSE $2 END,
	              updated_at = $3
	          WHERE id = $4 AND user_id = $5`

	result, err := r.db.ExecContext(ctx, query, current, best, time.Now(), habitID, userID)
	if err != nil {
		return err
	}
	return requireAffected(result, ErrHabitNotFound)
}

// Deactivate soft-deletes a habit. Its logs are kept.
func (r *habitRepository) Deactivate(ctx context.Context, userID, habitID string) error {
	query := `UPDATE habits SET is_active = FALSE, updated_at = $1 WHERE id = $2 AND user_id = $3 AND is_active = TRUE`

	result, err := r.db.ExecContext(ctx, query, time.Now(), habitID, userID)
	if err != nil {
		return err
	}
	return requireAffected(result, ErrHabitNotFound)
}
