package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"matchday-backend/internal/auth"
	"matchday-backend/internal/models"
	repo "matchday-backend/internal/repository"
)

type UserService struct {
	users repo.Users
	tm    *auth.TokenManager
}

func NewUserService(users repo.Users, tm *auth.TokenManager) *UserService {
	return &UserService{users: users, tm: tm}
}

func (s *UserService) Register(ctx context.Context, displayName, password string) (models.User, error) {
	name := models.NormalizeDisplayName(displayName)
	if err := models.ValidateDisplayName(name); err != nil {
		return models.User{}, err
	}
	if err := models.ValidatePassword(password); err != nil {
		return models.User{}, err
	}

	if _, err := s.users.GetByDisplayName(ctx, strings.ToLower(name)); err == nil {
		return models.User{}, repo.ErrNameTaken
	} else if !errors.Is(err, repo.ErrUserNotFound) {
		return models.User{}, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	// the unique index on display_name_lower closes the check-then-create race
	return s.users.Create(ctx, models.User{
		ID:           uuid.NewString(),
		DisplayName:  name,
		PasswordHash: hash,
		Role:         models.RoleMember,
	})
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *UserService) Login(ctx context.Context, displayName, password string) (models.User, TokenPair, error) {
	name := strings.ToLower(models.NormalizeDisplayName(displayName))
	u, err := s.users.GetByDisplayName(ctx, name)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return models.User{}, TokenPair{}, ErrInvalidCredentials
		}
		return models.User{}, TokenPair{}, err
	}
	if u.Deleted {
		return models.User{}, TokenPair{}, ErrInvalidCredentials
	}
	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil {
		return models.User{}, TokenPair{}, ErrInvalidCredentials
	}

	access, refresh, _, err := s.tm.GeneratePair(u.ID, u.Role)
	if err != nil {
		return models.User{}, TokenPair{}, err
	}
	return u, TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a refresh token for a new pair. The account is re-read
// so a removed user cannot keep a session alive through refreshes.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, isRefresh, err := s.tm.ParseAny(refreshToken)
	if err != nil || !isRefresh {
		return TokenPair{}, ErrInvalidCredentials
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil || u.Deleted {
		return TokenPair{}, ErrInvalidCredentials
	}

	access, refresh, _, err := s.tm.GeneratePair(u.ID, u.Role)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// UpdateProfile applies an avatar and/or password change. Admin accounts
// carry no avatar, so an avatar update on one is quietly dropped.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, avatar, newPassword *string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.Deleted {
		return repo.ErrUserNotFound
	}

	if avatar != nil {
		if len(*avatar) > models.AvatarMaxBytes {
			return ErrAvatarTooLarge
		}
		if u.IsAdmin() {
			avatar = nil
		}
	}

	var hash *string
	if newPassword != nil {
		if err := models.ValidatePassword(*newPassword); err != nil {
			return err
		}
		h, err := auth.HashPassword(*newPassword)
		if err != nil {
			return err
		}
		hash = &h
	}

	if avatar == nil && hash == nil {
		return nil
	}
	return s.users.UpdateProfile(ctx, userID, avatar, hash)
}

func (s *UserService) GetByID(ctx context.Context, id string) (models.User, error) {
	return s.users.GetByID(ctx, id)
}
