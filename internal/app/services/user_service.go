package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/attendance-admin/internal/app/auth"
	"github.com/yigit/attendance-admin/internal/app/models"
	"github.com/yigit/attendance-admin/internal/app/models/dto"
	"github.com/yigit/attendance-admin/internal/app/repositories"
	"github.com/yigit/attendance-admin/internal/pkg/apperrors"
	pwd "github.com/yigit/attendance-admin/internal/pkg/auth"
)

// UserService defines administrative account management
type UserService interface {
	List(ctx context.Context) ([]*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	GetEditable(ctx context.Context, actor *models.User, id int64) (*models.User, error)
	Create(ctx context.Context, form dto.UserForm) (*models.User, error)
	Update(ctx context.Context, actor *models.User, id int64, form dto.UserForm) (*models.User, error)
	Delete(ctx context.Context, actor *models.User, id int64) error
}

type userServiceImpl struct {
	userRepo repositories.IUserRepository
	logger   zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.IUserRepository, logger zerolog.Logger) UserService {
	return &userServiceImpl{userRepo: userRepo, logger: logger}
}

// List returns every account
func (s *userServiceImpl) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return users, nil
}

// Get returns a user by id
func (s *userServiceImpl) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetEditable returns the target user if actor may modify it
func (s *userServiceImpl) GetEditable(ctx context.Context, actor *models.User, id int64) (*models.User, error) {
	target, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.CanModifyUser(actor, target); err != nil {
		return nil, err
	}
	return target, nil
}

func applyUserForm(u *models.User, form dto.UserForm) {
	u.Username = strings.TrimSpace(form.Username)
	u.FirstName = strings.TrimSpace(form.FirstName)
	u.LastName = strings.TrimSpace(form.LastName)
	u.Email = strings.ToLower(strings.TrimSpace(form.Email))
	u.Role = models.RoleType(form.Role)
}

// Create adds an account; a password is mandatory
func (s *userServiceImpl) Create(ctx context.Context, form dto.UserForm) (*models.User, error) {
	if form.Password == "" {
		return nil, apperrors.NewValidationError("Password is required.")
	}

	hash, err := pwd.HashPassword(form.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{Password: hash}
	applyUserForm(user, form)

	if _, err := s.userRepo.Create(ctx, user); err != nil {
		if apperrors.Is(err, apperrors.ErrUsernameAlreadyExists, apperrors.ErrEmailAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Msg("User created")
	return user, nil
}

// Update edits an account. An empty password keeps the current one.
func (s *userServiceImpl) Update(ctx context.Context, actor *models.User, id int64, form dto.UserForm) (*models.User, error) {
	user, err := s.GetEditable(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	applyUserForm(user, form)
	if err := s.userRepo.Update(ctx, user); err != nil {
		if apperrors.Is(err, apperrors.ErrUsernameAlreadyExists, apperrors.ErrEmailAlreadyExists, apperrors.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	if form.Password != "" {
		hash, err := pwd.HashPassword(form.Password)
		if err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
		if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
			return nil, fmt.Errorf("error updating password: %w", err)
		}
	}

	s.logger.Info().Int64("userID", user.ID).Int64("actorID", actor.ID).Msg("User updated")
	return user, nil
}

// Delete removes an account
func (s *userServiceImpl) Delete(ctx context.Context, actor *models.User, id int64) error {
	if _, err := s.GetEditable(ctx, actor, id); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}
	s.logger.Info().Int64("userID", id).Int64("actorID", actor.ID).Msg("User deleted")
	return nil
}
