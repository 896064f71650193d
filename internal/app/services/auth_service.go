package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/attendance-admin/internal/app/models"
	"github.com/yigit/attendance-admin/internal/app/models/dto"
	"github.com/yigit/attendance-admin/internal/app/repositories"
	"github.com/yigit/attendance-admin/internal/pkg/apperrors"
	"github.com/yigit/attendance-admin/internal/pkg/auth"
	"github.com/yigit/attendance-admin/internal/pkg/loginguard"
)

// AuthService defines authentication and profile operations
type AuthService interface {
	Login(ctx context.Context, username, password, clientIP string) (*models.User, error)
	GetCurrentUser(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, form dto.ProfileForm) (*models.User, error)
}

type authServiceImpl struct {
	userRepo repositories.IUserRepository
	guard    loginguard.Guard
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repositories.IUserRepository, guard loginguard.Guard, logger zerolog.Logger) AuthService {
	return &authServiceImpl{
		userRepo: userRepo,
		guard:    guard,
		logger:   logger,
		now:      time.Now,
	}
}

// Login verifies credentials. Unknown usernames and wrong passwords
// produce the same error and both count towards the lockout.
func (s *authServiceImpl) Login(ctx context.Context, username, password, clientIP string) (*models.User, error) {
	username = strings.TrimSpace(username)
	key := loginguard.Key(username, clientIP)

	allowed, err := s.guard.Allowed(ctx, key)
	if err != nil {
		// Counter store unavailable: fail open, bcrypt still gates access.
		s.logger.Warn().Err(err).Msg("Login guard unavailable")
		allowed = true
	}
	if !allowed {
		s.logger.Warn().Str("username", username).Str("ip", clientIP).Msg("Login locked out")
		return nil, apperrors.ErrTooManyAttempts
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if user == nil || !auth.CheckPassword(user.Password, password) {
		if n, ferr := s.guard.Fail(ctx, key); ferr != nil {
			s.logger.Warn().Err(ferr).Msg("Failed to record login failure")
		} else {
			s.logger.Info().Str("username", username).Int64("failures", n).Msg("Invalid login attempt")
		}
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.guard.Reset(ctx, key); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to reset login counter")
	}

	now := s.now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to record last login")
	} else {
		user.LastLoginAt = &now
	}

	s.logger.Info().Int64("userID", user.ID).Str("username", user.Username).Msg("User logged in")
	return user, nil
}

// GetCurrentUser loads the user a session belongs to
func (s *authServiceImpl) GetCurrentUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrNotAuthenticated
		}
		return nil, fmt.Errorf("error loading current user: %w", err)
	}
	return user, nil
}

// UpdateProfile changes the username, names and email of the user.
// The role is never changed from the profile page.
func (s *authServiceImpl) UpdateProfile(ctx context.Context, userID int64, form dto.ProfileForm) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Username = strings.TrimSpace(form.Username)
	user.FirstName = strings.TrimSpace(form.FirstName)
	user.LastName = strings.TrimSpace(form.LastName)
	user.Email = strings.ToLower(strings.TrimSpace(form.Email))

	if err := s.userRepo.Update(ctx, user); err != nil {
		if apperrors.Is(err, apperrors.ErrUsernameAlreadyExists, apperrors.ErrEmailAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating profile: %w", err)
	}

	s.logger.Info().Int64("userID", user.ID).Msg("Profile updated")
	return user, nil
}
