package service

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/goaltrack/goaltrack/internal/calendar"
	"github.com/goaltrack/goaltrack/internal/model"
	"github.com/goaltrack/goaltrack/internal/progress"
	"github.com/goaltrack/goaltrack/internal/repository"
)

const (
	weekDays  = 7
	monthDays = 30
)

type StatsService struct {
	store *repository.Store
	cal   *calendar.Calendar
}

func NewStatsService(store *repository.Store, cal *calendar.Calendar) *StatsService {
	return &StatsService{store: store, cal: cal}
}

func (s *StatsService) Dashboard(ctx context.Context, userID string) (*model.DashboardStats, error) {
	today := s.cal.Today()
	weekStart, err := calendar.AddDays(today, -(weekDays - 1))
	if err != nil {
		return nil, err
	}

	var (
		goals     []*model.Goal
		habits    []*model.Habit
		todayLogs []*model.HabitLog
		weekLogs  int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		goals, err = s.store.Goals.Goals(gctx, userID, repository.GoalSortCreated)
		return err
	})
	g.Go(func() error {
		var err error
		habits, err = s.store.Habits.Habits(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		todayLogs, err = s.store.HabitLogs.OnDay(gctx, userID, today)
		return err
	})
	g.Go(func() error {
		var err error
		weekLogs, err = s.store.HabitLogs.CountBetweenActive(gctx, userID, weekStart, today)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}

	stats := &model.DashboardStats{
		TotalGoals:  len(goals),
		TotalHabits: len(habits),
	}

	var progressSum float64
	for _, goal := range goals {
		switch goal.Status {
		case model.GoalStatusActive:
			stats.ActiveGoals++
			progressSum += progress.GoalPercent(goal.CurrentValue, goal.TargetValue)
		case model.GoalStatusCompleted:
			stats.CompletedGoals++
		}
	}
	if stats.ActiveGoals > 0 {
		stats.AverageGoalProgress = int(math.Round(progressSum / float64(stats.ActiveGoals)))
	}

	active := make(map[string]bool, len(habits))
	for _, h := range habits {
		if !h.IsActive {
			continue
		}
		active[h.ID] = true
		stats.ActiveHabits++
		stats.BestStreak = max(stats.BestStreak, h.StreakBest)
		stats.CurrentStreak = max(stats.CurrentStreak, h.StreakCurrent)
	}

	for _, l := range todayLogs {
		if active[l.HabitID] {
			stats.TodayCompleted++
		}
	}
	stats.TodayTotal = stats.ActiveHabits
	stats.WeeklyProgress = progress.CompletionRate(weekLogs, stats.ActiveHabits, weekDays)

	return stats, nil
}

func (s *StatsService) ProgressReport(ctx context.Context, userID string) (*model.ProgressReport, error) {
	today := s.cal.Today()
	lastWeek, err := calendar.Range(today, weekDays)
	if err != nil {
		return nil, err
	}
	monthStart, err := calendar.AddDays(today, -(monthDays - 1))
	if err != nil {
		return nil, err
	}
	weekStart := lastWeek[0]

	var (
		habits     []*model.Habit
		weekCount  int
		monthCount int
		perDay     []repository.DayCount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		habits, err = s.store.Habits.ActiveHabits(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		weekCount, err = s.store.HabitLogs.CountBetweenActive(gctx, userID, weekStart, today)
		return err
	})
	g.Go(func() error {
		var err error
		monthCount, err = s.store.HabitLogs.CountBetweenActive(gctx, userID, monthStart, today)
		return err
	})
	g.Go(func() error {
		var err error
		perDay, err = s.store.HabitLogs.CountPerDayActive(gctx, userID, weekStart, today)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load progress report: %w", err)
	}

	counts := make(map[string]int, len(perDay))
	for _, c := range perDay {
		counts[c.Day] = c.Count
	}

	report := &model.ProgressReport{
		WeeklyRate:  progress.CompletionRate(weekCount, len(habits), weekDays),
		MonthlyRate: progress.CompletionRate(monthCount, len(habits), monthDays),
		LastWeek:    make([]model.DailyCompletion, 0, weekDays),
		Streaks:     make([]model.HabitStreak, 0, len(habits)),
	}

	for _, day := range lastWeek {
		report.LastWeek = append(report.LastWeek, model.DailyCompletion{
			Date:      day,
			Completed: counts[day],
			Total:     len(habits),
		})
	}

	for _, h := range habits {
		report.Streaks = append(report.Streaks, model.HabitStreak{
			HabitID: h.ID,
			Title:   h.Title,
			Icon:    h.Icon,
			Color:   h.Color,
			Current: h.StreakCurrent,
			Best:    h.StreakBest,
		})
	}
	slices.SortStableFunc(report.Streaks, func(a, b model.HabitStreak) int {
		if c := cmp.Compare(b.Current, a.Current); c != 0 {
			return c
		}
		return cmp.Compare(b.Best, a.Best)
	})

	return report, nil
}
