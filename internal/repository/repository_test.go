package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goaltrack/goaltrack/internal/dbtest"
	"github.com/goaltrack/goaltrack/internal/model"
)

func newGoal(userID, title string) *model.Goal {
	now := time.Now()
	return &model.Goal{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		Category:    model.DefaultGoalCategory,
		TargetValue: 100,
		Unit:        model.DefaultGoalUnit,
		Status:      model.GoalStatusActive,
		Priority:    model.PriorityMedium,
		Color:       model.DefaultGoalColor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func newHabit(userID, title string) *model.Habit {
	now := time.Now()
	return &model.Habit{
		ID:         uuid.New().String(),
		UserID:     userID,
		Title:      title,
		Icon:       model.DefaultHabitIcon,
		Color:      model.DefaultHabitColor,
		Frequency:  model.FrequencyDaily,
		TargetDays: model.AllWeekdays(),
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestNotFoundErrorsWrapSentinel(t *testing.T) {
	for _, err := range []error{ErrGoalNotFound, ErrHabitNotFound, ErrProgressNotFound, ErrUserNotFound} {
		assert.True(t, errors.Is(err, ErrNotFound), err.Error())
	}
	assert.EqualError(t, ErrGoalNotFound, "goal not found")
}

func TestGoalsScopedByUser(t *testing.T) {
	ctx := context.Background()
	database := dbtest.New(t)
	store := NewStore(database)
	alice := dbtest.CreateUser(t, database, "alice@example.com")
	bob := dbtest.CreateUser(t, database, "bob@example.com")

	goal := newGoal(alice, "Read 12 books")
	require.NoError(t, store.Goals.Create(ctx, goal))

	got, err := store.Goals.ByID(ctx, alice, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, "Read 12 books", got.Title)
	assert.Nil(t, got.Description)
	assert.Equal(t, 100.0, got.TargetValue)

	_, err = store.Goals.ByID(ctx, bob, goal.ID)
	assert.ErrorIs(t, err, ErrGoalNotFound)

	err = store.Goals.Delete(ctx, bob, goal.ID)
	assert.ErrorIs(t, err, ErrGoalNotFound)

	err = store.Goals.UpdateDerived(ctx, bob, goal.ID, 50, model.GoalStatusActive)
	assert.ErrorIs(t, err, ErrGoalNotFound)

	goals, err := store.Goals.Goals(ctx, bob, GoalSortCreated)
	require.NoError(t, err)
	assert.Empty(t, goals)
}

func TestGoalDeleteCascadesProgress(t *testing.T) {
	ctx := context.Background()
	database := dbtest.New(t)
	store := NewStore(database)
	userID := dbtest.CreateUser(t, database, "alice@example.com")

	goal := newGoal(userID, "Run")
	require.NoError(t, store.Goals.Create(ctx, goal))
	for _, v := range []float64{10, 20} {
		require.NoError(t, store.Progress.Create(ctx, &model.GoalProgress{
			ID: uuid.New().String(), GoalID: goal.ID, UserID: userID, Value: v,
			LoggedAt: "2026-10-14", CreatedAt: time.Now(),
		}))
	}

	values, err := store.Progress.Values(ctx, goal.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []float64{10, 20}, values)

	require.NoError(t, store.Goals.Delete(ctx, userID, goal.ID))

	entries, err := store.Progress.ByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProgressOrderedNewestFirst(t *testing.T) {
	ctx := context.Background()
	database := dbtest.New(t)
	store := NewStore(database)
	userID := dbtest.CreateUser(t, database, "alice@example.com")

	goal := newGoal(userID, "Save")
	require.NoError(t, store.Goals.Create(ctx, goal))
	for _, day := range []string{"2026-10-01", "2026-10-03", "2026-10-02"} {
		require.NoError(t, store.Progress.Create(ctx, &model.GoalProgress{
			ID: uuid.New().String(), GoalID: goal.ID, UserID: userID, Value: 1,
			LoggedAt: day, CreatedAt: time.Now(),
		}))
	}

	entries, err := store.Progress.ByGoal(ctx, goal.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "2026-10-03", entries[0].LoggedAt)
	assert.Equal(t, "2026-10-01", entries[2].LoggedAt)
}

func TestHabitLogUniquePerDay(t *testing.T) {
	ctx := context.Background()
	database := dbtest.New(t)
	store := NewStore(database)
	userID := dbtest.CreateUser(t, database, "alice@example.com")

	habit := newHabit(userID, "Meditate")
	require.NoError(t, store.Habits.Create(ctx, habit))

	log := &model.HabitLog{ID: uuid.New().String(), HabitID: habit.ID, UserID: userID, CompletedAt: "2026-10-14", CreatedAt: time.Now()}
	require.NoError(t, store.HabitLogs.Create(ctx, log))

	dup := &model.HabitLog{ID: uuid.New().String(), HabitID: habit.ID, UserID: userID, CompletedAt: "2026-10-14", CreatedAt: time.Now()}
	assert.ErrorIs(t, store.HabitLogs.Create(ctx, dup), ErrDuplicateHabitLog)

	found, err := store.HabitLogs.Find(ctx, userID, habit.ID, "2026-10-14")
	require.NoError(t, err)
	assert.Equal(t, log.ID, found.ID)

	_, err = store.HabitLogs.Find(ctx, userID, habit.ID, "2026-10-13")
	assert.ErrorIs(t, err, ErrHabitLogNotFound)
}

func TestHabitRoundTripsTargetDays(t *testing.T) {
	ctx := context.Background()
	database := dbtest.New(t)
	store := NewStore(database)
	userID := dbtest.CreateUser(t, database, "alice@example.com")

	habit := newHabit(userID, "Gym")
	habit.TargetDays = model.Weekdays{1, 3, 5}
	require.NoError(t, store.Habits.Create(ctx, habit))

	got, err := store.Habits.ByID(ctx, userID, habit.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Weekdays{1, 3, 5}, got.TargetDays)
	assert.True(t, got.IsActive)
}

func TestDeactivateKeepsLogsAndHidesFromActive(t *testing.T) {
	ctx := context.Background()
	database := dbtest.New(t)
	store := NewStore(database)
	userID := dbtest.CreateUser(t, database, "alice@example.com")

	habit := newHabit(userID, "Walk")
	require.NoError(t, store.Habits.Create(ctx, habit))
	require.NoError(t, store.HabitLogs.Create(ctx, &model.HabitLog{
		ID: uuid.New().String(), HabitID: habit.ID, UserID: userID, CompletedAt: "2026-10-14", CreatedAt: time.Now(),
	}))

	require.NoError(t, store.Habits.Deactivate(ctx, userID, habit.ID))
	assert.ErrorIs(t, store.Habits.Deactivate(ctx, userID, habit.ID), ErrHabitNotFound)

	active, err := store.Habits.ActiveHabits(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := store.Habits.Habits(ctx, userID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].IsActive)

	logs, err := store.HabitLogs.Between(ctx, userID, "2026-10-01", "2026-10-31")
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	count, err := store.HabitLogs.CountBetweenActive(ctx, userID, "2026-10-01", "2026-10-31")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCountPerDayActive(t *testing.T) {
	ctx := context.Background()
	database := dbtest.New(t)
	store := NewStore(database)
	userID := dbtest.CreateUser(t, database, "alice@example.com")

	a := newHabit(userID, "A")
	b := newHabit(userID, "B")
	require.NoError(t, store.Habits.Create(ctx, a))
	require.NoError(t, store.Habits.Create(ctx, b))

	for _, l := range []struct{ habit, day string }{
		{a.ID, "2026-10-13"}, {a.ID, "2026-10-14"}, {b.ID, "2026-10-14"}, {b.ID, "2026-09-01"},
	} {
		require.NoError(t, store.HabitLogs.Create(ctx, &model.HabitLog{
			ID: uuid.New().String(), HabitID: l.habit, UserID: userID, CompletedAt: l.day, CreatedAt: time.Now(),
		}))
	}

	counts, err := store.HabitLogs.CountPerDayActive(ctx, userID, "2026-10-08", "2026-10-14")
	require.NoError(t, err)
	assert.Equal(t, []DayCount{{Day: "2026-10-13", Count: 1}, {Day: "2026-10-14", Count: 2}}, counts)

	days, err := store.HabitLogs.DaysUpTo(ctx, a.ID, "2026-10-13")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-10-13"}, days)
}

func TestInTxRollsBack(t *testing.T) {
	ctx := context.Background()
	database := dbtest.New(t)
	store := NewStore(database)
	userID := dbtest.CreateUser(t, database, "alice@example.com")

	goal := newGoal(userID, "Atomic")
	boom := errors.New("boom")
	err := store.InTx(ctx, func(r *Repos) error {
		if err := r.Goals.Create(ctx, goal); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Goals.ByID(ctx, userID, goal.ID)
	assert.ErrorIs(t, err, ErrGoalNotFound)

	err = store.InTx(ctx, func(r *Repos) error { return r.Goals.Create(ctx, goal) })
	require.NoError(t, err)
	_, err = store.Goals.ByID(ctx, userID, goal.ID)
	assert.NoError(t, err)
}

func TestBlogUpsertBySlug(t *testing.T) {
	ctx := context.Background()
	store := NewStore(dbtest.New(t))

	published := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	post := &model.BlogPost{ID: uuid.New().String(), Slug: "first", Title: "First", Content: "# Hi", IsPublished: true, PublishedAt: &published}
	require.NoError(t, store.Blog.Upsert(ctx, post))

	again := &model.BlogPost{ID: uuid.New().String(), Slug: "first", Title: "First, edited", Content: "# Hi again", IsPublished: true, PublishedAt: &published}
	require.NoError(t, store.Blog.Upsert(ctx, again))

	posts, err := store.Blog.Published(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, post.ID, posts[0].ID)
	assert.Equal(t, "First, edited", posts[0].Title)

	bySlug, err := store.Blog.ByIDOrSlug(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, post.ID, bySlug.ID)

	_, err = store.Blog.ByIDOrSlug(ctx, "missing")
	assert.ErrorIs(t, err, ErrBlogPostNotFound)
}

func TestDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := NewStore(dbtest.New(t))

	user := &model.User{ID: uuid.New().String(), Email: "a@example.com", CreatedAt: time.Now()}
	require.NoError(t, store.Users.Create(ctx, user))

	user2 := &model.User{ID: uuid.New().String(), Email: "a@example.com", CreatedAt: time.Now()}
	assert.ErrorIs(t, store.Users.Create(ctx, user2), ErrDuplicateEmail)
}

func TestUpdateStreaksNeverLowersBest(t *testing.T) {
	ctx := context.Background()
	database := dbtest.New(t)
	store := NewStore(database)
	userID := dbtest.CreateUser(t, database, "alice@example.com")

	habit := newHabit(userID, "Run")
	require.NoError(t, store.Habits.Create(ctx, habit))

	require.NoError(t, store.Habits.UpdateStreaks(ctx, userID, habit.ID, 4, 4))
	require.NoError(t, store.Habits.UpdateStreaks(ctx, userID, habit.ID, 0, 0))

	got, err := store.Habits.ByID(ctx, userID, habit.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.StreakCurrent)
	assert.Equal(t, 4, got.StreakBest)
}

func TestByIDForUpdateInsideTx(t *testing.T) {
	ctx := context.Background()
	database := dbtest.New(t)
	store := NewStore(database)
	userID := dbtest.CreateUser(t, database, "alice@example.com")

	goal := newGoal(userID, "Read")
	require.NoError(t, store.Goals.Create(ctx, goal))
	habit := newHabit(userID, "Floss")
	require.NoError(t, store.Habits.Create(ctx, habit))

	err := store.InTx(ctx, func(r *Repos) error {
		g, err := r.Goals.ByIDForUpdate(ctx, userID, goal.ID)
		require.NoError(t, err)
		assert.Equal(t, goal.ID, g.ID)

		h, err := r.Habits.ByIDForUpdate(ctx, userID, habit.ID)
		require.NoError(t, err)
		assert.Equal(t, habit.ID, h.ID)

		_, err = r.Goals.ByIDForUpdate(ctx, "someone-else", goal.ID)
		assert.ErrorIs(t, err, ErrGoalNotFound)
		return nil
	})
	require.NoError(t, err)
}
