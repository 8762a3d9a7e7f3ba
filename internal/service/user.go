package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goaltrack/goaltrack/internal/model"
	"github.com/goaltrack/goaltrack/internal/repository"
	"github.com/goaltrack/goaltrack/internal/validation"
)

// Account is the signed-in user as returned by /auth/me.
type Account struct {
	*model.User
	Name string `json:"name"`
}

type UserService struct {
	store *repository.Store
}

func NewUserService(store *repository.Store) *UserService {
	return &UserService{store: store}
}

func (s *UserService) ByID(ctx context.Context, id string) (*model.User, error) {
	return s.store.Users.ByID(ctx, id)
}

func (s *UserService) Account(ctx context.Context, userID string) (*Account, error) {
	user, err := s.store.Users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	account := &Account{User: user}
	profile, err := s.store.Profiles.ByUserID(ctx, userID)
	switch {
	case err == nil:
		account.Name = profile.Name
	case !errors.Is(err, repository.ErrProfileNotFound):
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return account, nil
}

func (s *UserService) UpdateName(ctx context.Context, userID, name string) error {
	name = strings.TrimSpace(name)

	err := validation.ValidateName(name)
	if err != nil {
		return err
	}

	return s.store.Profiles.UpdateName(ctx, userID, name)
}
