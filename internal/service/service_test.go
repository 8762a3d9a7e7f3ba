package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/goaltrack/goaltrack/internal/calendar"
	"github.com/goaltrack/goaltrack/internal/dbtest"
	"github.com/goaltrack/goaltrack/internal/model"
	"github.com/goaltrack/goaltrack/internal/repository"
)

const today = "2026-10-14"

type testEnv struct {
	ctx    context.Context
	store  *repository.Store
	cal    *calendar.Calendar
	goals  *GoalService
	habits *HabitService
	stats  *StatsService
	userID string
}

func fixedCalendar(day string) *calendar.Calendar {
	t, err := time.Parse(calendar.Layout, day)
	if err != nil {
		panic(err)
	}
	return calendar.Fixed(time.UTC, t.Add(12*time.Hour))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database := dbtest.New(t)
	store := repository.NewStore(database)
	cal := fixedCalendar(today)

	return &testEnv{
		ctx:    context.Background(),
		store:  store,
		cal:    cal,
		goals:  NewGoalService(store, cal),
		habits: NewHabitService(store, cal),
		stats:  NewStatsService(store, cal),
		userID: dbtest.CreateUser(t, database, "alice@example.com"),
	}
}

func createUser(t *testing.T, e *testEnv, id, email string) string {
	t.Helper()
	require.NoError(t, e.store.Users.Create(e.ctx, testUser(id, email)))
	return id
}

func days(offsets ...int) []string {
	out := make([]string, 0, len(offsets))
	for _, o := range offsets {
		d, err := calendar.AddDays(today, o)
		if err != nil {
			panic(err)
		}
		out = append(out, d)
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}

func testUser(id, email string) *model.User {
	return &model.User{ID: id, Email: email, CreatedAt: time.Now()}
}
