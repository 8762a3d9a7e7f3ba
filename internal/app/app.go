package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/goaltrack/goaltrack/internal/calendar"
	"github.com/goaltrack/goaltrack/internal/config"
	"github.com/goaltrack/goaltrack/internal/contentful"
	"github.com/goaltrack/goaltrack/internal/db"
	"github.com/goaltrack/goaltrack/internal/metrics"
	"github.com/goaltrack/goaltrack/internal/middleware"
	"github.com/goaltrack/goaltrack/internal/repository"
	"github.com/goaltrack/goaltrack/internal/service"
	"github.com/goaltrack/goaltrack/internal/storage"
)

type App struct {
	Cfg             *config.Config
	DB              *sqlx.DB
	Store           *repository.Store
	Calendar        *calendar.Calendar
	AuthRateLimiter *middleware.RateLimiter

	AuthService   *service.AuthService
	UserService   *service.UserService
	EmailService  *service.EmailService
	GoalService   *service.GoalService
	HabitService  *service.HabitService
	StatsService  *service.StatsService
	BlogService   *service.BlogService
	ExportService *service.ExportService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	cal, err := calendar.New(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}

	// Database + migrations
	database, err := db.Open(ctx, cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	store := repository.NewStore(database)

	// Storage (optional)
	exportStorage, err := storage.New(ctx, cfg)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Blog source
	var cms service.PostSource
	if cfg.BlogSource == config.BlogSourceContentful && cfg.ContentfulSpaceID != "" {
		cms = contentful.New(cfg.ContentfulSpaceID, cfg.ContentfulAccessToken, cfg.ContentfulEnvironment)
	}

	if cfg.MetricsEnabled {
		metrics.Init()
	}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	authService := service.NewAuthService(store, emailService, cfg.JWTSecret, cfg.JWTExpiry, cfg.IsProduction())

	slog.Info("app initialized",
		"db_driver", cfg.DBDriver,
		"timezone", cal.Location().String(),
		"blog_source", cfg.BlogSource,
		"export_storage", exportStorage != nil,
	)

	return &App{
		Cfg:             cfg,
		DB:              database,
		Store:           store,
		Calendar:        cal,
		AuthRateLimiter: middleware.NewAuthRateLimiter(),
		AuthService:     authService,
		UserService:     service.NewUserService(store),
		EmailService:    emailService,
		GoalService:     service.NewGoalService(store, cal),
		HabitService:    service.NewHabitService(store, cal),
		StatsService:    service.NewStatsService(store, cal),
		BlogService:     service.NewBlogService(cfg.BlogSource, cms, store.Blog),
		ExportService:   service.NewExportService(store, exportStorage),
	}, nil
}

func (a *App) Close() error {
	if a.AuthRateLimiter != nil {
		a.AuthRateLimiter.Close()
	}
	if a.DB != nil {
		return db.Close(a.DB)
	}
	return nil
}
