package routes

import (
	"net/http"

	"github.com/goaltrack/goaltrack/internal/app"
	"github.com/goaltrack/goaltrack/internal/handler"
	"github.com/goaltrack/goaltrack/internal/metrics"
	"github.com/goaltrack/goaltrack/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService, app.UserService, app.Cfg)
	goal := handler.NewGoalHandler(app.GoalService)
	habit := handler.NewHabitHandler(app.HabitService, app.Calendar)
	dashboard := handler.NewDashboardHandler(app.StatsService)
	export := handler.NewExportHandler(app.ExportService, app.Calendar)
	blog := handler.NewBlogHandler(app.BlogService)
	health := handler.NewHealthHandler(app.DB)

	mux := http.NewServeMux()
	protected := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(h)
	}

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Health)
	if app.Cfg.MetricsEnabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	mux.HandleFunc("GET /blog", blog.ListPosts)
	mux.HandleFunc("GET /blog/{id}", blog.ShowPost)

	// ============================================================================
	// AUTH (credential endpoints are rate limited per IP)
	// ============================================================================

	limiter := app.AuthRateLimiter

	mux.Handle("POST /auth/register", limiter.Limit(http.HandlerFunc(auth.Register)))
	mux.Handle("POST /auth/login", limiter.Limit(http.HandlerFunc(auth.Login)))
	mux.HandleFunc("POST /auth/logout", auth.Logout)
	mux.HandleFunc("GET /auth/csrf", auth.CSRF)
	mux.Handle("GET /auth/me", protected(auth.Me))
	mux.Handle("PATCH /auth/me", protected(auth.UpdateMe))

	mux.Handle("GET /auth/{provider}", limiter.Limit(http.HandlerFunc(auth.OAuthStart)))
	mux.Handle("GET /auth/{provider}/callback", limiter.Limit(http.HandlerFunc(auth.OAuthCallback)))

	// ============================================================================
	// PROTECTED ROUTES (/app/*)
	// ============================================================================

	// Goals
	mux.Handle("GET /app/goals", protected(goal.List))
	mux.Handle("POST /app/goals", protected(goal.Create))
	mux.Handle("GET /app/goals/active", protected(goal.Active))
	mux.Handle("GET /app/goals/{id}", protected(goal.Get))
	mux.Handle("PATCH /app/goals/{id}", protected(goal.Update))
	mux.Handle("DELETE /app/goals/{id}", protected(goal.Delete))
	mux.Handle("GET /app/goals/{id}/progress", protected(goal.Progress))
	mux.Handle("POST /app/goals/{id}/progress", protected(goal.AddProgress))
	mux.Handle("DELETE /app/progress/{id}", protected(goal.DeleteProgress))

	// Habits
	mux.Handle("GET /app/habits", protected(habit.List))
	mux.Handle("POST /app/habits", protected(habit.Create))
	mux.Handle("GET /app/habits/{id}", protected(habit.Get))
	mux.Handle("PATCH /app/habits/{id}", protected(habit.Update))
	mux.Handle("DELETE /app/habits/{id}", protected(habit.Delete))
	mux.Handle("POST /app/habits/{id}/toggle", protected(habit.Toggle))
	mux.Handle("GET /app/habit-logs", protected(habit.Logs))
	mux.Handle("GET /app/habit-logs/today", protected(habit.TodayLogs))

	// Stats
	mux.Handle("GET /app/dashboard", protected(dashboard.Dashboard))
	mux.Handle("GET /app/progress", protected(dashboard.Progress))

	// Export
	mux.Handle("GET /app/export", protected(export.Download))
	mux.Handle("POST /app/export/archive", protected(export.Archive))

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		middleware.CapturePattern(mux),
		middleware.RequestLogging,
		middleware.Metrics,
		middleware.Config(app.Cfg), // before CSRF, which reads the environment from it
		middleware.Auth(app.AuthService, app.UserService),
		middleware.CSRFProtection,
	)
}
