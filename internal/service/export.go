package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goaltrack/goaltrack/internal/model"
	"github.com/goaltrack/goaltrack/internal/repository"
	"github.com/goaltrack/goaltrack/internal/storage"
)

var ErrExportStorageDisabled = errors.New("export storage is not configured")

type ExportService struct {
	store   *repository.Store
	storage storage.Storage
	now     func() time.Time
}

// NewExportService accepts a nil storage; archives are then unavailable.
func NewExportService(store *repository.Store, st storage.Storage) *ExportService {
	return &ExportService{store: store, storage: st, now: time.Now}
}

func (s *ExportService) ArchiveEnabled() bool {
	return s.storage != nil
}

// Snapshot collects everything owned by the user.
func (s *ExportService) Snapshot(ctx context.Context, userID string) (*model.Export, error) {
	user, err := s.store.Users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	export := &model.Export{
		ExportedAt: s.now().UTC().Format(time.RFC3339),
		Email:      user.Email,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile, err := s.store.Profiles.ByUserID(gctx, userID)
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil
		}
		if err == nil {
			export.Name = profile.Name
		}
		return err
	})
	g.Go(func() error {
		var err error
		export.Goals, err = s.store.Goals.Goals(gctx, userID, repository.GoalSortCreated)
		return err
	})
	g.Go(func() error {
		var err error
		export.Progress, err = s.store.Progress.ByUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		export.Habits, err = s.store.Habits.Habits(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		export.HabitLogs, err = s.store.HabitLogs.ByUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build export: %w", err)
	}

	return export, nil
}

// Archive uploads the snapshot and returns a temporary download URL.
func (s *ExportService) Archive(ctx context.Context, userID string) (string, error) {
	if s.storage == nil {
		return "", ErrExportStorageDisabled
	}

	export, err := s.Snapshot(ctx, userID)
	if err != nil {
		return "", err
	}

	body, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode export: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%s.json", userID, s.now().UTC().Format("20060102T150405Z"))
	err = s.storage.Put(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	url, err := s.storage.PresignedURL(ctx, key)
	if err != nil {
		return "", err
	}

	slog.Info("export archived", "user_id", userID, "key", key, "bytes", len(body))
	return url, nil
}
