package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goaltrack/goaltrack/internal/calendar"
	"github.com/goaltrack/goaltrack/internal/metrics"
	"github.com/goaltrack/goaltrack/internal/model"
	"github.com/goaltrack/goaltrack/internal/progress"
	"github.com/goaltrack/goaltrack/internal/repository"
	"github.com/goaltrack/goaltrack/internal/validation"
)

var ErrInvalidStatusTransition = errors.New("cancelled goals cannot change status")

type GoalInput struct {
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Category    string   `json:"category"`
	TargetValue *float64 `json:"target_value"`
	Unit        string   `json:"unit"`
	StartDate   *string  `json:"start_date"`
	EndDate     *string  `json:"end_date"`
	Priority    string   `json:"priority"`
	Color       string   `json:"color"`
}

// GoalUpdate carries only the fields being changed. A pointer to "" clears a nullable field.
type GoalUpdate struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	TargetValue *float64 `json:"target_value"`
	Unit        *string  `json:"unit"`
	StartDate   *string  `json:"start_date"`
	EndDate     *string  `json:"end_date"`
	Status      *string  `json:"status"`
	Priority    *string  `json:"priority"`
	Color       *string  `json:"color"`
}

type ProgressInput struct {
	Value    float64 `json:"value"`
	Notes    *string `json:"notes"`
	LoggedAt string  `json:"logged_at"`
}

type GoalService struct {
	store *repository.Store
	cal   *calendar.Calendar
}

func NewGoalService(store *repository.Store, cal *calendar.Calendar) *GoalService {
	return &GoalService{store: store, cal: cal}
}

func (s *GoalService) Goals(ctx context.Context, userID, sortBy string) ([]*model.Goal, error) {
	return s.store.Goals.Goals(ctx, userID, sortBy)
}

func (s *GoalService) ActiveGoals(ctx context.Context, userID string) ([]*model.Goal, error) {
	return s.store.Goals.ActiveGoals(ctx, userID)
}

func (s *GoalService) Goal(ctx context.Context, userID, goalID string) (*model.GoalDetail, error) {
	goal, err := s.store.Goals.ByID(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	entries, err := s.store.Progress.ByGoal(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	return &model.GoalDetail{Goal: goal, Progress: entries}, nil
}

func (s *GoalService) Create(ctx context.Context, userID string, in GoalInput) (*model.Goal, error) {
	now := time.Now()
	goal := &model.Goal{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Description: nullable(in.Description),
		Category:    orDefault(in.Category, model.DefaultGoalCategory),
		TargetValue: model.DefaultGoalTarget,
		Unit:        orDefault(in.Unit, model.DefaultGoalUnit),
		StartDate:   nullable(in.StartDate),
		EndDate:     nullable(in.EndDate),
		Status:      model.GoalStatusActive,
		Priority:    orDefault(in.Priority, model.PriorityMedium),
		Color:       orDefault(in.Color, model.DefaultGoalColor),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.TargetValue != nil {
		goal.TargetValue = *in.TargetValue
	}

	err := validateGoal(goal)
	if err != nil {
		return nil, err
	}

	err = s.store.Goals.Create(ctx, goal)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	slog.Info("goal created", "user_id", userID, "goal_id", goal.ID)
	return goal, nil
}

// Update applies a partial edit. Changing the target re-evaluates completion in the same
// transaction unless the caller sets the status explicitly.
func (s *GoalService) Update(ctx context.Context, userID, goalID string, in GoalUpdate) (*model.Goal, error) {
	err := validateGoalUpdate(in)
	if err != nil {
		return nil, err
	}

	var updated *model.Goal
	err = s.store.InTx(ctx, func(r *repository.Repos) error {
		goal, err := r.Goals.ByIDForUpdate(ctx, userID, goalID)
		if err != nil {
			return err
		}

		if in.Status != nil && goal.Status == model.GoalStatusCancelled && *in.Status != model.GoalStatusCancelled {
			return ErrInvalidStatusTransition
		}

		targetChanged := in.TargetValue != nil && *in.TargetValue != goal.TargetValue
		applyGoalUpdate(goal, in)

		if err := validateGoal(goal); err != nil {
			return err
		}

		if err := r.Goals.Update(ctx, goal); err != nil {
			return fmt.Errorf("failed to update goal: %w", err)
		}

		if targetChanged && in.Status == nil {
			if err := recomputeGoal(ctx, r, goal); err != nil {
				return err
			}
		}

		updated = goal
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *GoalService) Delete(ctx context.Context, userID, goalID string) error {
	err := s.store.Goals.Delete(ctx, userID, goalID)
	if err != nil {
		return err
	}

	slog.Info("goal deleted", "user_id", userID, "goal_id", goalID)
	return nil
}

func (s *GoalService) Progress(ctx context.Context, userID, goalID string) ([]*model.GoalProgress, error) {
	// Verify ownership
	_, err := s.store.Goals.ByID(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	return s.store.Progress.ByGoal(ctx, goalID)
}

// AddProgress records an increment and recomputes the goal atomically.
func (s *GoalService) AddProgress(ctx context.Context, userID, goalID string, in ProgressInput) (*model.GoalProgress, *model.Goal, error) {
	err := validation.Finite("value", in.Value)
	if err != nil {
		return nil, nil, err
	}

	loggedAt := in.LoggedAt
	if loggedAt == "" {
		loggedAt = s.cal.Today()
	}
	err = validation.Day("logged_at", loggedAt)
	if err != nil {
		return nil, nil, err
	}

	entry := &model.GoalProgress{
		ID:        uuid.New().String(),
		GoalID:    goalID,
		UserID:    userID,
		Value:     in.Value,
		Notes:     nullable(in.Notes),
		LoggedAt:  loggedAt,
		CreatedAt: time.Now(),
	}

	var goal *model.Goal
	var previousStatus string
	err = s.store.InTx(ctx, func(r *repository.Repos) error {
		var err error
		goal, err = r.Goals.ByIDForUpdate(ctx, userID, goalID)
		if err != nil {
			return err
		}
		previousStatus = goal.Status

		if err := r.Progress.Create(ctx, entry); err != nil {
			return fmt.Errorf("failed to add progress: %w", err)
		}

		return recomputeGoal(ctx, r, goal)
	})
	if err != nil {
		return nil, nil, err
	}

	metrics.GoalProgressLogged.Inc()
	if previousStatus != model.GoalStatusCompleted && goal.Status == model.GoalStatusCompleted {
		metrics.GoalsCompleted.Inc()
		slog.Info("goal completed", "user_id", userID, "goal_id", goalID, "current_value", goal.CurrentValue)
	}

	return entry, goal, nil
}

// DeleteProgress removes an entry and recomputes its goal atomically.
func (s *GoalService) DeleteProgress(ctx context.Context, userID, progressID string) (*model.Goal, error) {
	var goal *model.Goal

	err := s.store.InTx(ctx, func(r *repository.Repos) error {
		entry, err := r.Progress.ByID(ctx, userID, progressID)
		if err != nil {
			return err
		}

		goal, err = r.Goals.ByIDForUpdate(ctx, userID, entry.GoalID)
		if err != nil {
			return err
		}

		if err := r.Progress.Delete(ctx, userID, progressID); err != nil {
			return err
		}

		return recomputeGoal(ctx, r, goal)
	})
	if err != nil {
		return nil, err
	}
	return goal, nil
}

// Recompute rebuilds a goal's derived fields from its progress rows.
func (s *GoalService) Recompute(ctx context.Context, userID, goalID string) (*model.Goal, error) {
	var goal *model.Goal

	err := s.store.InTx(ctx, func(r *repository.Repos) error {
		var err error
		goal, err = r.Goals.ByIDForUpdate(ctx, userID, goalID)
		if err != nil {
			return err
		}
		return recomputeGoal(ctx, r, goal)
	})
	if err != nil {
		return nil, err
	}
	return goal, nil
}

func recomputeGoal(ctx context.Context, r *repository.Repos, goal *model.Goal) error {
	values, err := r.Progress.Values(ctx, goal.ID)
	if err != nil {
		return fmt.Errorf("failed to load progress values: %w", err)
	}

	state := progress.GoalState(goal.TargetValue, goal.Status, values)

	err = r.Goals.UpdateDerived(ctx, goal.UserID, goal.ID, state.CurrentValue, state.Status)
	if err != nil {
		return fmt.Errorf("failed to store goal progress: %w", err)
	}

	goal.CurrentValue = state.CurrentValue
	goal.Status = state.Status
	goal.UpdatedAt = time.Now()
	return nil
}

func applyGoalUpdate(goal *model.Goal, in GoalUpdate) {
	if in.Title != nil {
		goal.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		goal.Description = nullable(in.Description)
	}
	if in.Category != nil {
		goal.Category = orDefault(*in.Category, model.DefaultGoalCategory)
	}
	if in.TargetValue != nil {
		goal.TargetValue = *in.TargetValue
	}
	if in.Unit != nil {
		goal.Unit = orDefault(*in.Unit, model.DefaultGoalUnit)
	}
	if in.StartDate != nil {
		goal.StartDate = nullable(in.StartDate)
	}
	if in.EndDate != nil {
		goal.EndDate = nullable(in.EndDate)
	}
	if in.Status != nil {
		goal.Status = *in.Status
	}
	if in.Priority != nil {
		goal.Priority = *in.Priority
	}
	if in.Color != nil {
		goal.Color = *in.Color
	}
}

func validateGoal(goal *model.Goal) error {
	errs := []error{
		validation.ValidateTitle(goal.Title),
		validation.TargetValue(goal.TargetValue),
		validation.GoalStatus(goal.Status),
		validation.Priority(goal.Priority),
		validation.Color(goal.Color),
	}
	if goal.StartDate != nil {
		errs = append(errs, validation.Day("start_date", *goal.StartDate))
	}
	if goal.EndDate != nil {
		errs = append(errs, validation.Day("end_date", *goal.EndDate))
	}
	return validation.First(errs...)
}

// validateGoalUpdate checks the fields that do not depend on the stored goal,
// so a bad edit is rejected before the goal is even looked up.
func validateGoalUpdate(in GoalUpdate) error {
	var errs []error
	if in.Title != nil {
		errs = append(errs, validation.ValidateTitle(*in.Title))
	}
	if in.TargetValue != nil {
		errs = append(errs, validation.TargetValue(*in.TargetValue))
	}
	if in.Status != nil {
		errs = append(errs, validation.GoalStatus(*in.Status))
	}
	if in.Priority != nil {
		errs = append(errs, validation.Priority(*in.Priority))
	}
	if in.Color != nil {
		errs = append(errs, validation.Color(*in.Color))
	}
	if v := nullable(in.StartDate); v != nil {
		errs = append(errs, validation.Day("start_date", *v))
	}
	if v := nullable(in.EndDate); v != nil {
		errs = append(errs, validation.Day("end_date", *v))
	}
	return validation.First(errs...)
}

// nullable trims s and maps empty to nil.
func nullable(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func orDefault(s, def string) string {
	if v := strings.TrimSpace(s); v != "" {
		return v
	}
	return def
}
