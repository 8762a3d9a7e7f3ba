package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goaltrack/goaltrack/internal/app"
	"github.com/goaltrack/goaltrack/internal/calendar"
	"github.com/goaltrack/goaltrack/internal/config"
	"github.com/goaltrack/goaltrack/internal/dbtest"
	"github.com/goaltrack/goaltrack/internal/metrics"
	"github.com/goaltrack/goaltrack/internal/middleware"
	"github.com/goaltrack/goaltrack/internal/repository"
	"github.com/goaltrack/goaltrack/internal/service"
)

const today = "2026-10-14"

func newTestApp(t *testing.T) *app.App {
	t.Helper()

	database := dbtest.New(t)
	store := repository.NewStore(database)
	day, err := time.Parse(calendar.Layout, today)
	require.NoError(t, err)
	cal := calendar.Fixed(time.UTC, day.Add(12*time.Hour))

	cfg := &config.Config{
		AppName:        "GoalTrack",
		AppEnv:         "development",
		AppURL:         "http://localhost:8090",
		JWTSecret:      "test-secret",
		JWTExpiry:      time.Hour,
		BlogSource:     config.BlogSourceDatabase,
		MetricsEnabled: true,
	}
	metrics.Init()

	emails := service.NewEmailService("", cfg.EmailFrom, cfg.AppURL, cfg.AppName, true)
	limiter := middleware.NewRateLimiter(100, time.Second)
	t.Cleanup(limiter.Close)

	return &app.App{
		Cfg:             cfg,
		DB:              database,
		Store:           store,
		Calendar:        cal,
		AuthRateLimiter: limiter,
		AuthService:     service.NewAuthService(store, emails, cfg.JWTSecret, cfg.JWTExpiry, false),
		UserService:     service.NewUserService(store),
		EmailService:    emails,
		GoalService:     service.NewGoalService(store, cal),
		HabitService:    service.NewHabitService(store, cal),
		StatsService:    service.NewStatsService(store, cal),
		BlogService:     service.NewBlogService(cfg.BlogSource, nil, store.Blog),
		ExportService:   service.NewExportService(store, nil),
	}
}

type client struct {
	t      *testing.T
	server *httptest.Server
	http   *http.Client
	csrf   string
}

func newClient(t *testing.T, a *app.App) *client {
	t.Helper()

	server := httptest.NewServer(SetupRoutes(a))
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	c := &client{
		t:      t,
		server: server,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}

	var body struct {
		Token string `json:"csrf_token"`
	}
	status := c.do(http.MethodGet, "/auth/csrf", nil, &body)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, body.Token)
	c.csrf = body.Token
	return c
}

// do sends a JSON request and decodes the response into out when given.
func (c *client) do(method, path string, in, out any) int {
	c.t.Helper()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		require.NoError(c.t, err)
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.server.URL+path, body)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.csrf != "" {
		req.Header.Set("X-CSRF-Token", c.csrf)
	}

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (c *client) register(email string) {
	c.t.Helper()
	status := c.do(http.MethodPost, "/auth/register", map[string]string{
		"email":    email,
		"password": "correct-horse-battery",
		"name":     "Tester",
	}, nil)
	require.Equal(c.t, http.StatusCreated, status)
}

func TestHealthAndMetrics(t *testing.T) {
	c := newClient(t, newTestApp(t))

	var health map[string]string
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/healthz", nil, &health))
	assert.Equal(t, "ok", health["status"])

	resp, err := c.http.Get(c.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), `http_requests_total{endpoint="GET /healthz"`)
}

func TestAppRoutesRequireAuth(t *testing.T) {
	c := newClient(t, newTestApp(t))

	for _, path := range []string{"/app/goals", "/app/habits", "/app/dashboard", "/app/export", "/auth/me"} {
		assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, path, nil, nil), path)
	}
}

func TestCSRFRequiredForMutations(t *testing.T) {
	c := newClient(t, newTestApp(t))
	c.csrf = ""

	status := c.do(http.MethodPost, "/auth/login", map[string]string{"email": "a@example.com", "password": "x"}, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAuthFlow(t *testing.T) {
	c := newClient(t, newTestApp(t))
	c.register("flow@example.com")

	var me struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/auth/me", nil, &me))
	assert.Equal(t, "flow@example.com", me.Email)
	assert.Equal(t, "Tester", me.Name)

	require.Equal(t, http.StatusOK, c.do(http.MethodPatch, "/auth/me", map[string]string{"name": "Renamed"}, &me))
	assert.Equal(t, "Renamed", me.Name)

	assert.Equal(t, http.StatusConflict, c.do(http.MethodPost, "/auth/register", map[string]string{
		"email": "flow@example.com", "password": "correct-horse-battery", "name": "Again",
	}, nil))

	assert.Equal(t, http.StatusNoContent, c.do(http.MethodPost, "/auth/logout", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/auth/me", nil, nil))

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/auth/login", map[string]string{
		"email": "flow@example.com", "password": "wrong-but-long-enough",
	}, nil))
	assert.Equal(t, http.StatusOK, c.do(http.MethodPost, "/auth/login", map[string]string{
		"email": "flow@example.com", "password": "correct-horse-battery",
	}, nil))
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/auth/me", nil, nil))
}

func TestUnknownOAuthProvider(t *testing.T) {
	c := newClient(t, newTestApp(t))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/auth/gitlab", nil, nil))
}

func TestGoalLifecycle(t *testing.T) {
	c := newClient(t, newTestApp(t))
	c.register("goals@example.com")

	var goal struct {
		ID           string  `json:"id"`
		Status       string  `json:"status"`
		CurrentValue float64 `json:"current_value"`
	}
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/app/goals", map[string]any{
		"title": "Run 100 km", "target_value": 100, "unit": "km",
	}, &goal))
	assert.Equal(t, "active", goal.Status)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/app/goals", map[string]any{"title": ""}, nil))

	var added struct {
		Progress struct {
			ID string `json:"id"`
		} `json:"progress"`
		Goal struct {
			Status       string  `json:"status"`
			CurrentValue float64 `json:"current_value"`
		} `json:"goal"`
	}
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/app/goals/"+goal.ID+"/progress", map[string]any{"value": 60}, &added))
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/app/goals/"+goal.ID+"/progress", map[string]any{"value": 45}, &added))
	assert.Equal(t, "completed", added.Goal.Status)
	assert.Equal(t, 105.0, added.Goal.CurrentValue)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/app/goals/"+goal.ID+"/progress", map[string]any{"value": 0}, nil))
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/app/goals/"+goal.ID+"/progress", map[string]any{"value": -5}, nil))

	require.Equal(t, http.StatusOK, c.do(http.MethodDelete, "/app/progress/"+added.Progress.ID, nil, &goal))
	assert.Equal(t, "active", goal.Status)
	assert.Equal(t, 60.0, goal.CurrentValue)

	var entries []map[string]any
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/app/goals/"+goal.ID+"/progress", nil, &entries))
	assert.Len(t, entries, 1)

	require.Equal(t, http.StatusOK, c.do(http.MethodPatch, "/app/goals/"+goal.ID, map[string]any{"status": "cancelled"}, nil))
	assert.Equal(t, http.StatusConflict, c.do(http.MethodPatch, "/app/goals/"+goal.ID, map[string]any{"status": "active"}, nil))

	var active []map[string]any
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/app/goals/active", nil, &active))
	assert.Empty(t, active)

	assert.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, "/app/goals/"+goal.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/app/goals/"+goal.ID, nil, nil))
}

func TestGoalsAreIsolatedPerUser(t *testing.T) {
	a := newTestApp(t)
	alice := newClient(t, a)
	alice.register("alice@example.com")
	bob := newClient(t, a)
	bob.register("bob@example.com")

	var goal struct {
		ID string `json:"id"`
	}
	require.Equal(t, http.StatusCreated, alice.do(http.MethodPost, "/app/goals", map[string]any{"title": "Mine"}, &goal))

	assert.Equal(t, http.StatusNotFound, bob.do(http.MethodGet, "/app/goals/"+goal.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound, bob.do(http.MethodPost, "/app/goals/"+goal.ID+"/progress", map[string]any{"value": 1}, nil))
	assert.Equal(t, http.StatusNotFound, bob.do(http.MethodDelete, "/app/goals/"+goal.ID, nil, nil))
}

func TestHabitToggleAndStats(t *testing.T) {
	c := newClient(t, newTestApp(t))
	c.register("habits@example.com")

	var habit struct {
		ID string `json:"id"`
	}
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/app/habits", map[string]any{"title": "Meditate"}, &habit))

	var toggled struct {
		Completed bool `json:"completed"`
		Habit     struct {
			StreakCurrent int `json:"streak_current"`
			StreakBest    int `json:"streak_best"`
		} `json:"habit"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/app/habits/"+habit.ID+"/toggle", nil, &toggled))
	assert.True(t, toggled.Completed)
	assert.Equal(t, 1, toggled.Habit.StreakCurrent)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/app/habits/"+habit.ID+"/toggle", map[string]string{"date": "2026-10-15"}, nil))

	var logs []map[string]any
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/app/habit-logs/today", nil, &logs))
	assert.Len(t, logs, 1)
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/app/habit-logs?start=2026-10-01&end=2026-10-14", nil, &logs))
	assert.Len(t, logs, 1)
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/app/habit-logs", nil, &logs))
	assert.Len(t, logs, 1)

	var stats struct {
		ActiveHabits   int `json:"active_habits"`
		TodayCompleted int `json:"today_completed"`
		CurrentStreak  int `json:"current_streak"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/app/dashboard", nil, &stats))
	assert.Equal(t, 1, stats.ActiveHabits)
	assert.Equal(t, 1, stats.TodayCompleted)
	assert.Equal(t, 1, stats.CurrentStreak)

	var report struct {
		LastWeek []map[string]any `json:"last_week"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/app/progress", nil, &report))
	assert.Len(t, report.LastWeek, 7)

	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/app/habits/"+habit.ID+"/toggle", map[string]string{"date": today}, &toggled))
	assert.False(t, toggled.Completed)
	assert.Equal(t, 1, toggled.Habit.StreakBest)

	assert.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, "/app/habits/"+habit.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/app/habits/"+habit.ID+"/toggle", nil, nil))
}

func TestExport(t *testing.T) {
	c := newClient(t, newTestApp(t))
	c.register("export@example.com")
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/app/goals", map[string]any{"title": "Export me"}, nil))

	req, err := http.NewRequest(http.MethodGet, c.server.URL+"/app/export", nil)
	require.NoError(t, err)
	resp, err := c.http.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="goaltrack-export-2026-10-14.json"`, resp.Header.Get("Content-Disposition"))

	var export struct {
		Email string           `json:"email"`
		Name  string           `json:"name"`
		Goals []map[string]any `json:"goals"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&export))
	assert.Equal(t, "export@example.com", export.Email)
	assert.Equal(t, "Tester", export.Name)
	assert.Len(t, export.Goals, 1)

	assert.Equal(t, http.StatusServiceUnavailable, c.do(http.MethodPost, "/app/export/archive", nil, nil))
}

func TestBlogRoutes(t *testing.T) {
	c := newClient(t, newTestApp(t))

	var posts []map[string]any
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/blog", nil, &posts))
	assert.Empty(t, posts)

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/blog/missing", nil, nil))
}
