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

type HabitInput struct {
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	Icon         string  `json:"icon"`
	Color        string  `json:"color"`
	Frequency    string  `json:"frequency"`
	TargetDays   []int   `json:"target_days"`
	ReminderTime *string `json:"reminder_time"`
}

type HabitUpdate struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Icon         *string `json:"icon"`
	Color        *string `json:"color"`
	Frequency    *string `json:"frequency"`
	TargetDays   []int   `json:"target_days"`
	ReminderTime *string `json:"reminder_time"`
	IsActive     *bool   `json:"is_active"`
}

type HabitService struct {
	store *repository.Store
	cal   *calendar.Calendar
}

func NewHabitService(store *repository.Store, cal *calendar.Calendar) *HabitService {
	return &HabitService{store: store, cal: cal}
}

func (s *HabitService) Habits(ctx context.Context, userID string) ([]*model.Habit, error) {
	return s.store.Habits.Habits(ctx, userID)
}

func (s *HabitService) ActiveHabits(ctx context.Context, userID string) ([]*model.Habit, error) {
	return s.store.Habits.ActiveHabits(ctx, userID)
}

func (s *HabitService) Habit(ctx context.Context, userID, habitID string) (*model.Habit, error) {
	return s.store.Habits.ByID(ctx, userID, habitID)
}

func (s *HabitService) Create(ctx context.Context, userID string, in HabitInput) (*model.Habit, error) {
	now := time.Now()
	habit := &model.Habit{
		ID:           uuid.New().String(),
		UserID:       userID,
		Title:        strings.TrimSpace(in.Title),
		Description:  nullable(in.Description),
		Icon:         orDefault(in.Icon, model.DefaultHabitIcon),
		Color:        orDefault(in.Color, model.DefaultHabitColor),
		Frequency:    orDefault(in.Frequency, model.FrequencyDaily),
		TargetDays:   in.TargetDays,
		ReminderTime: nullable(in.ReminderTime),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if len(habit.TargetDays) == 0 {
		habit.TargetDays = model.AllWeekdays()
	}

	err := validateHabit(habit)
	if err != nil {
		return nil, err
	}

	err = s.store.Habits.Create(ctx, habit)
	if err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	slog.Info("habit created", "user_id", userID, "habit_id", habit.ID)
	return habit, nil
}

func (s *HabitService) Update(ctx context.Context, userID, habitID string, in HabitUpdate) (*model.Habit, error) {
	var updated *model.Habit

	err := s.store.InTx(ctx, func(r *repository.Repos) error {
		habit, err := r.Habits.ByID(ctx, userID, habitID)
		if err != nil {
			return err
		}

		if in.Title != nil {
			habit.Title = strings.TrimSpace(*in.Title)
		}
		if in.Description != nil {
			habit.Description = nullable(in.Description)
		}
		if in.Icon != nil {
			habit.Icon = orDefault(*in.Icon, model.DefaultHabitIcon)
		}
		if in.Color != nil {
			habit.Color = *in.Color
		}
		if in.Frequency != nil {
			habit.Frequency = *in.Frequency
		}
		if in.TargetDays != nil {
			habit.TargetDays = in.TargetDays
		}
		if in.ReminderTime != nil {
			habit.ReminderTime = nullable(in.ReminderTime)
		}
		if in.IsActive != nil {
			habit.IsActive = *in.IsActive
		}

		if err := validateHabit(habit); err != nil {
			return err
		}

		if err := r.Habits.Update(ctx, habit); err != nil {
			return fmt.Errorf("failed to update habit: %w", err)
		}

		updated = habit
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete deactivates the habit. Its logs stay for history and export.
func (s *HabitService) Delete(ctx context.Context, userID, habitID string) error {
	err := s.store.Habits.Deactivate(ctx, userID, habitID)
	if err != nil {
		return err
	}

	slog.Info("habit deactivated", "user_id", userID, "habit_id", habitID)
	return nil
}

func (s *HabitService) Logs(ctx context.Context, userID, start, end string) ([]*model.HabitLog, error) {
	err := validation.First(validation.Day("start", start), validation.Day("end", end))
	if err != nil {
		return nil, err
	}
	if start > end {
		return nil, validation.Field("start", "must not be after end")
	}

	return s.store.HabitLogs.Between(ctx, userID, start, end)
}

func (s *HabitService) TodayLogs(ctx context.Context, userID string) ([]*model.HabitLog, error) {
	return s.store.HabitLogs.OnDay(ctx, userID, s.cal.Today())
}

// Toggle flips whether the habit is logged on day and refreshes its streak.
// An empty day means today. Future days are rejected.
func (s *HabitService) Toggle(ctx context.Context, userID, habitID, day string) (*model.ToggleResult, error) {
	today := s.cal.Today()
	if day == "" {
		day = today
	}

	err := validation.Day("date", day)
	if err != nil {
		return nil, err
	}
	if day > today {
		return nil, validation.Field("date", "cannot log a habit in the future")
	}

	result := &model.ToggleResult{}
	err = s.store.InTx(ctx, func(r *repository.Repos) error {
		habit, err := r.Habits.ByIDForUpdate(ctx, userID, habitID)
		if err != nil {
			return err
		}
		if !habit.IsActive {
			return repository.ErrHabitNotFound
		}

		existing, err := r.HabitLogs.Find(ctx, userID, habitID, day)
		switch {
		case err == nil:
			if err := r.HabitLogs.Delete(ctx, userID, existing.ID); err != nil {
				return fmt.Errorf("failed to remove habit log: %w", err)
			}
			result.Completed = false
		case errors.Is(err, repository.ErrHabitLogNotFound):
			log := &model.HabitLog{
				ID:          uuid.New().String(),
				HabitID:     habitID,
				UserID:      userID,
				CompletedAt: day,
				CreatedAt:   time.Now(),
			}
			if err := r.HabitLogs.Create(ctx, log); err != nil {
				return fmt.Errorf("failed to add habit log: %w", err)
			}
			result.Completed = true
		default:
			return fmt.Errorf("failed to look up habit log: %w", err)
		}

		if err := recomputeStreak(ctx, r, habit, today); err != nil {
			return err
		}
		result.Habit = habit
		return nil
	})
	if err != nil {
		return nil, err
	}

	state := "uncompleted"
	if result.Completed {
		state = "completed"
	}
	metrics.HabitToggles.WithLabelValues(state).Inc()

	return result, nil
}

// RecomputeStreaks refreshes every active habit against today. Streaks go stale when a day
// passes without a toggle, so this runs from the maintenance command and the rollover ticker.
// The listing only supplies ids. Each habit is re-read under lock so a toggle that landed in
// between is not overwritten with stale values.
func (s *HabitService) RecomputeStreaks(ctx context.Context) (int, error) {
	habits, err := s.store.Habits.AllActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list habits: %w", err)
	}

	today := s.cal.Today()
	changed := 0
	for _, h := range habits {
		if err := ctx.Err(); err != nil {
			return changed, err
		}

		moved := false
		err := s.store.InTx(ctx, func(r *repository.Repos) error {
			habit, err := r.Habits.ByIDForUpdate(ctx, h.UserID, h.ID)
			if errors.Is(err, repository.ErrHabitNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			if !habit.IsActive {
				return nil
			}

			before := habit.StreakCurrent
			if err := recomputeStreak(ctx, r, habit, today); err != nil {
				return err
			}
			moved = habit.StreakCurrent != before
			return nil
		})
		if err != nil {
			slog.Error("failed to recompute streak", "error", err, "user_id", h.UserID, "habit_id", h.ID)
			continue
		}
		if moved {
			changed++
		}
	}

	slog.Info("streaks recomputed", "habits", len(habits), "changed", changed, "today", today)
	return changed, nil
}

func recomputeStreak(ctx context.Context, r *repository.Repos, habit *model.Habit, today string) error {
	days, err := r.HabitLogs.DaysUpTo(ctx, habit.ID, today)
	if err != nil {
		return fmt.Errorf("failed to load habit days: %w", err)
	}

	current := progress.CurrentStreak(today, days)
	best := progress.BestStreak(habit.StreakBest, current)

	err = r.Habits.UpdateStreaks(ctx, habit.UserID, habit.ID, current, best)
	if err != nil {
		return fmt.Errorf("failed to store streak: %w", err)
	}

	habit.StreakCurrent = current
	habit.StreakBest = best
	habit.UpdatedAt = time.Now()
	return nil
}

func validateHabit(habit *model.Habit) error {
	return validation.First(
		validation.ValidateTitle(habit.Title),
		validation.Frequency(habit.Frequency),
		validation.Color(habit.Color),
		validation.TargetDays(habit.TargetDays),
	)
}
