// Package auth holds the authorization rules of the management pages.
package auth

import (
	"github.com/yigit/attendance-admin/internal/app/models"
	"github.com/yigit/attendance-admin/internal/pkg/apperrors"
)

// Authorization errors shown to the user
var (
	ErrSuperAdminOnly   = apperrors.NewForbiddenError("Only Super Admins can manage users and students.")
	ErrSuperAdminTarget = apperrors.NewForbiddenError("Super Admin accounts cannot be edited or deleted here.")
	ErrSelfTarget       = apperrors.NewForbiddenError("You cannot edit or delete your own account here. Use the profile page.")
)

// CanManage reports whether user may open user and student management
func CanManage(user *models.User) bool {
	return user.IsSuperAdmin()
}

// RequireManager returns an error unless user may open management pages
func RequireManager(user *models.User) error {
	if !CanManage(user) {
		return ErrSuperAdminOnly
	}
	return nil
}

// CanModifyUser checks whether actor may edit or delete target.
// Super Admin accounts and the actor's own account are protected.
func CanModifyUser(actor, target *models.User) error {
	if err := RequireManager(actor); err != nil {
		return err
	}
	if target.IsSuperAdmin() {
		return ErrSuperAdminTarget
	}
	if actor.ID == target.ID {
		return ErrSelfTarget
	}
	return nil
}
