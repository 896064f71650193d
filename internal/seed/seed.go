package seed

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/attendance-admin/internal/app/models"
	appRepos "github.com/yigit/attendance-admin/internal/app/repositories"
	"github.com/yigit/attendance-admin/internal/config"
	"github.com/yigit/attendance-admin/internal/pkg/apperrors"
	"github.com/yigit/attendance-admin/internal/pkg/auth"
)

// DefaultFaculties are offered as suggestions on a fresh database
var DefaultFaculties = []string{"Engineering", "Science", "Business", "Arts"}

// CreateDefaultData creates the default faculties and, when a password is
// configured and no Super Admin exists yet, the first Super Admin account.
func CreateDefaultData(
	ctx context.Context,
	userRepo appRepos.IUserRepository,
	facultyRepo appRepos.IFacultyRepository,
	cfg *config.Config,
	lgr zerolog.Logger,
) error {
	lgr.Info().Msg("Checking/Creating default data (Faculties/Super Admin)...")
	var finalErr error // collects errors without stopping the process

	// --- Faculties --- //
	for _, name := range DefaultFaculties {
		if err := facultyRepo.Ensure(ctx, name); err != nil {
			lgr.Error().Err(err).Str("faculty", name).Msg("Error creating default faculty")
			finalErr = errors.Join(finalErr, err)
		}
	}

	// --- Super Admin --- //
	if cfg.Seed.AdminPassword == "" {
		lgr.Info().Msg("No seed admin password configured, skipping Super Admin creation")
		return finalErr
	}

	exists, err := userRepo.ExistsWithRole(ctx, appModels.RoleSuperAdmin)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking if a Super Admin exists")
		return errors.Join(finalErr, err)
	}
	if exists {
		lgr.Info().Msg("Super Admin already exists, skipping creation")
		return finalErr
	}

	hashedPassword, err := auth.HashPassword(cfg.Seed.AdminPassword)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing Super Admin password")
		return errors.Join(finalErr, err)
	}

	admin := &appModels.User{
		Username:   cfg.Seed.AdminUsername,
		Password:   hashedPassword,
		FirstName:  "System",
		LastName:   "Administrator",
		Email:      cfg.Seed.AdminEmail,
		Role:       appModels.RoleSuperAdmin,
		DateJoined: time.Now(),
	}
	adminID, err := userRepo.Create(ctx, admin)
	switch {
	case errors.Is(err, apperrors.ErrUsernameAlreadyExists), errors.Is(err, apperrors.ErrEmailAlreadyExists):
		lgr.Warn().Str("username", admin.Username).Msg("Seed username or email is taken by another account, skipping Super Admin creation")
	case err != nil:
		lgr.Error().Err(err).Msg("Error creating Super Admin")
		finalErr = errors.Join(finalErr, err)
	default:
		lgr.Info().Int64("adminID", adminID).Str("username", admin.Username).Msg("Default Super Admin created successfully")
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}
