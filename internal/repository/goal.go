package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/goaltrack/goaltrack/internal/model"
)

const (
	GoalSortCreated  = "created"
	GoalSortRecent   = "recent"
	GoalSortProgress = "progress"
	GoalSortTitle    = "title"
)

type GoalRepository interface {
	Create(ctx context.Context, goal *model.Goal) error
	ByID(ctx context.Context, userID, goalID string) (*model.Goal, error)
	ByIDForUpdate(ctx context.Context, userID, goalID string) (*model.Goal, error)
	Goals(ctx context.Context, userID, sortBy string) ([]*model.Goal, error)
	ActiveGoals(ctx context.Context, userID string) ([]*model.Goal, error)
	Update(ctx context.Context, goal *model.Goal) error
	UpdateDerived(ctx context.Context, userID, goalID string, current float64, status string) error
	Delete(ctx context.Context, userID, goalID string) error
}

type goalRepository struct {
	db sqlx.ExtContext
}

func NewGoalRepository(db sqlx.ExtContext) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(ctx context.Context, goal *model.Goal) error {
	query := `INSERT INTO goals (id, user_id, title, description, category, target_value, current_value, unit,
	                             start_date, end_date, status, priority, color, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.db.ExecContext(ctx, query,
		goal.ID,
		goal.UserID,
		goal.Title,
		goal.Description,
		goal.Category,
		goal.TargetValue,
		goal.CurrentValue,
		goal.Unit,
		goal.StartDate,
		goal.EndDate,
		goal.Status,
		goal.Priority,
		goal.Color,
		goal.CreatedAt,
		goal.UpdatedAt,
	)
	return err
}

func (r *goalRepository) ByID(ctx context.Context, userID, goalID string) (*model.Goal, error) {
	return r.byID(ctx, userID, goalID, "")
}

// ByIDForUpdate also locks the goal row until the transaction ends, so concurrent
// progress writers recompute one after another.
func (r *goalRepository) ByIDForUpdate(ctx context.Context, userID, goalID string) (*model.Goal, error) {
	return r.byID(ctx, userID, goalID, forUpdate(r.db))
}

func (r *goalRepository) byID(ctx context.Context, userID, goalID, lock string) (*model.Goal, error) {
	goal := &model.Goal{}
	query := `SELECT * FROM goals WHERE id = $1 AND user_id = $2` + lock

	err := sqlx.GetContext(ctx, r.db, goal, query, goalID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}
	return goal, nil
}

func (r *goalRepository) Goals(ctx context.Context, userID, sortBy string) ([]*model.Goal, error) {
	var orderBy string
	switch sortBy {
	case GoalSortRecent:
		orderBy = "ORDER BY updated_at DESC"
	case GoalSortProgress:
		orderBy = "ORDER BY current_value / target_value DESC, updated_at DESC"
	case GoalSortTitle:
		orderBy = "ORDER BY LOWER(title) ASC"
	default: // GoalSortCreated or empty
		orderBy = "ORDER BY created_at ASC"
	}

	goals := []*model.Goal{}
	err := sqlx.SelectContext(ctx, r.db, &goals, `SELECT * FROM goals WHERE user_id = $1 `+orderBy, userID)
	if err != nil {
		return nil, err
	}
	return goals, nil
}

func (r *goalRepository) ActiveGoals(ctx context.Context, userID string) ([]*model.Goal, error) {
	goals := []*model.Goal{}
	query := `SELECT * FROM goals WHERE user_id = $1 AND status = $2 ORDER BY created_at ASC`

	err := sqlx.SelectContext(ctx, r.db, &goals, query, userID, model.GoalStatusActive)
	if err != nil {
		return nil, err
	}
	return goals, nil
}

// Update writes the user-editable fields. current_value is left to UpdateDerived.
func (r *goalRepository) Update(ctx context.Context, goal *model.Goal) error {
	goal.UpdatedAt = time.Now()
	query := `UPDATE goals
	          SET title = $1, description = $2, category = $3, target_value = $4, unit = $5,
	              start_date = $6, end_date = $7, status = $8, priority = $9, color = $10, updated_at = $11
	          WHERE id = $12 AND user_id = $13`

	result, err := r.db.ExecContext(ctx, query,
		goal.Title,
		goal.Description,
		goal.Category,
		goal.TargetValue,
		goal.Unit,
		goal.StartDate,
		goal.EndDate,
		goal.Status,
		goal.Priority,
		goal.Color,
		goal.UpdatedAt,
		goal.ID,
		goal.UserID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result, ErrGoalNotFound)
}

func (r *goalRepository) UpdateDerived(ctx context.Context, userID, goalID string, current float64, status string) error {
	query := `UPDATE goals SET current_value = $1, status = $2, updated_at = $3 WHERE id = $4 AND user_id = $5`

	result, err := r.db.ExecContext(ctx, query, current, status, time.Now(), goalID, userID)
	if err != nil {
		return err
	}
	return requireAffected(result, ErrGoalNotFound)
}

// Delete removes the goal; its progress rows go with it through the foreign key cascade.
func (r *goalRepository) Delete(ctx context.Context, userID, goalID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, goalID, userID)
	if err != nil {
		return err
	}
	return requireAffected(result, ErrGoalNotFound)
}
