package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/goaltrack/goaltrack/internal/model"
)

type DayCount struct {
	Day   string `db:"day"`
	Count int    `db:"n"`
}

type HabitLogRepository interface {
	Create(ctx context.Context, log *model.HabitLog) error
	Find(ctx context.Context, userID, habitID, day string) (*model.HabitLog, error)
	Between(ctx context.Context, userID, start, end string) ([]*model.HabitLog, error)
	OnDay(ctx context.Context, userID, day string) ([]*model.HabitLog, error)
	ByUser(ctx context.Context, userID string) ([]*model.HabitLog, error)
	DaysUpTo(ctx context.Context, habitID, day string) ([]string, error)
	CountBetweenActive(ctx context.Context, userID, start, end string) (int, error)
	CountPerDayActive(ctx context.Context, userID, start, end string) ([]DayCount, error)
	Delete(ctx context.Context, userID, id string) error
}

type habitLogRepository struct {
	db sqlx.ExtContext
}

func NewHabitLogRepository(db sqlx.ExtContext) HabitLogRepository {
	return &habitLogRepository{db: db}
}

func (r *habitLogRepository) Create(ctx context.Context, log *model.HabitLog) error {
	query := `INSERT INTO habit_logs (id, habit_id, user_id, completed_at, notes, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query, log.ID, log.HabitID, log.UserID, log.CompletedAt, log.Notes, log.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateHabitLog
	}
	return err
}

func (r *habitLogRepository) Find(ctx context.Context, userID, habitID, day string) (*model.HabitLog, error) {
	log := &model.HabitLog{}
	query := `SELECT * FROM habit_logs WHERE user_id = $1 AND habit_id = $2 AND completed_at = $3`

	err := sqlx.GetContext(ctx, r.db, log, query, userID, habitID, day)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHabitLogNotFound
	}
	if err != nil {
		return nil, err
	}
	return log, nil
}

// Between returns logs with start <= completed_at <= end, newest first.
func (r *habitLogRepository) Between(ctx context.Context, userID, start, end string) ([]*model.HabitLog, error) {
	logs := []*model.HabitLog{}
	query := `SELECT * FROM habit_logs
	          WHERE user_id = $1 AND completed_at >= $2 AND completed_at <= $3
	          ORDER BY completed_at DESC, created_at DESC`

	err := sqlx.SelectContext(ctx, r.db, &logs, query, userID, start, end)
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *habitLogRepository) OnDay(ctx context.Context, userID, day string) ([]*model.HabitLog, error) {
	logs := []*model.HabitLog{}
	query := `SELECT * FROM habit_logs WHERE user_id = $1 AND completed_at = $2 ORDER BY created_at ASC`

	err := sqlx.SelectContext(ctx, r.db, &logs, query, userID, day)
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *habitLogRepository) ByUser(ctx context.Context, userID string) ([]*model.HabitLog, error) {
	logs := []*model.HabitLog{}
	query := `SELECT * FROM habit_logs WHERE user_id = $1 ORDER BY completed_at ASC, created_at ASC`

	err := sqlx.SelectContext(ctx, r.db, &logs, query, userID)
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// DaysUpTo lists the days a habit was logged on or before day, newest first.
func (r *habitLogRepository) DaysUpTo(ctx context.Context, habitID, day string) ([]string, error) {
	var days []string
	query := `SELECT completed_at FROM habit_logs WHERE habit_id = $1 AND completed_at <= $2 ORDER BY completed_at DESC`

	err := sqlx.SelectContext(ctx, r.db, &days, query, habitID, day)
	if err != nil {
		return nil, err
	}
	return days, nil
}

// CountBetweenActive counts logs in [start, end] that belong to the user's active habits.
func (r *habitLogRepository) CountBetweenActive(ctx context.Context, userID, start, end string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM habit_logs l
	          JOIN habits h ON h.id = l.habit_id
	          WHERE l.user_id = $1 AND h.is_active = TRUE AND l.completed_at >= $2 AND l.completed_at <= $3`

	err := sqlx.GetContext(ctx, r.db, &count, query, userID, start, end)
	return count, err
}

// CountPerDayActive groups active-habit logs in [start, end] by day. Days without logs are absent.
func (r *habitLogRepository) CountPerDayActive(ctx context.Context, userID, start, end string) ([]DayCount, error) {
	counts := []DayCount{}
	query := `SELECT l.completed_at AS day, COUNT(*) AS n FROM habit_logs l
	          JOIN habits h ON h.id = l.habit_id
	          WHERE l.user_id = $1 AND h.is_active = TRUE AND l.completed_at >= $2 AND l.completed_at <= $3
	          GROUP BY l.completed_at
	          ORDER BY l.completed_at ASC`

	err := sqlx.SelectContext(ctx, r.db, &counts, query, userID, start, end)
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *habitLogRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM habit_logs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return requireAffected(result, ErrHabitLogNotFound)
}
