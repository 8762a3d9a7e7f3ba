package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/goaltrack/goaltrack/internal/model"
)

type ProgressRepository interface {
	Create(ctx context.Context, entry *model.GoalProgress) error
	ByID(ctx context.Context, userID, id string) (*model.GoalProgress, error)
	ByGoal(ctx context.Context, goalID string) ([]*model.GoalProgress, error)
	ByUser(ctx context.Context, userID string) ([]*model.GoalProgress, error)
	Values(ctx context.Context, goalID string) ([]float64, error)
	Delete(ctx context.Context, userID, id string) error
}

type progressRepository struct {
	db sqlx.ExtContext
}

func NewProgressRepository(db sqlx.ExtContext) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Create(ctx context.Context, entry *model.GoalProgress) error {
	query := `INSERT INTO goal_progress (id, goal_id, user_id, value, notes, logged_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.GoalID, entry.UserID, entry.Value, entry.Notes, entry.LoggedAt, entry.CreatedAt)
	return err
}

func (r *progressRepository) ByID(ctx context.Context, userID, id string) (*model.GoalProgress, error) {
	entry := &model.GoalProgress{}
	err := sqlx.GetContext(ctx, r.db, entry, `SELECT * FROM goal_progress WHERE id = $1 AND user_id = $2`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProgressNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ByGoal lists a goal's entries newest first. Callers check goal ownership beforehand.
func (r *progressRepository) ByGoal(ctx context.Context, goalID string) ([]*model.GoalProgress, error) {
	entries := []*model.GoalProgress{}
	query := `SELECT * FROM goal_progress WHERE goal_id = $1 ORDER BY logged_at DESC, created_at DESC`

	err := sqlx.SelectContext(ctx, r.db, &entries, query, goalID)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *progressRepository) ByUser(ctx context.Context, userID string) ([]*model.GoalProgress, error) {
	entries := []*model.GoalProgress{}
	query := `SELECT * FROM goal_progress WHERE user_id = $1 ORDER BY logged_at ASC, created_at ASC`

	err := sqlx.SelectContext(ctx, r.db, &entries, query, userID)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *progressRepository) Values(ctx context.Context, goalID string) ([]float64, error) {
	var values []float64
	err := sqlx.SelectContext(ctx, r.db, &values, `SELECT value FROM goal_progress WHERE goal_id = $1`, goalID)
	if err != nil {
		return nil, err
	}
	return values, nil
}

func (r *progressRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM goal_progress WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return requireAffected(result, ErrProgressNotFound)
}
