package auth

import (
	"errors"
	"testing"

	"github.com/yigit/attendance-admin/internal/app/models"
	"github.com/yigit/attendance-admin/internal/pkg/apperrors"
)

func TestCanModifyUser(t *testing.T) {
	super := &models.User{ID: 1, Role: models.RoleSuperAdmin}
	otherSuper := &models.User{ID: 2, Role: models.RoleSuperAdmin}
	admin := &models.User{ID: 3, Role: models.RoleAdmin}
	admin2 := &models.User{ID: 4, Role: models.RoleAdmin}

	tests := []struct {
		name          string
		actor, target *models.User
		want          error
	}{
		{"super admin edits admin", super, admin, nil},
		{"super admin edits super admin", super, otherSuper, ErrSuperAdminTarget},
		{"super admin edits self", super, super, ErrSuperAdminTarget},
		{"admin edits admin", admin, admin2, ErrSuperAdminOnly},
		{"unknown role", &models.User{ID: 9, Role: "superadmin"}, admin, ErrSuperAdminOnly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanModifyUser(tt.actor, tt.target)
			if err != tt.want {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if err != nil && !errors.Is(err, apperrors.ErrPermissionDenied) {
				t.Error("authorization errors must wrap ErrPermissionDenied")
			}
		})
	}
}

func TestCanModifyUserSelf(t *testing.T) {
	// A super admin whose stored role was lowered still cannot hit their own row.
	actor := &models.User{ID: 5, Role: models.RoleSuperAdmin}
	target := &models.User{ID: 5, Role: models.RoleAdmin}
	if err := CanModifyUser(actor, target); err != ErrSelfTarget {
		t.Fatalf("err = %v, want ErrSelfTarget", err)
	}
}

func TestCanManage(t *testing.T) {
	if CanManage(nil) {
		t.Error("anonymous users cannot manage")
	}
	if CanManage(&models.User{Role: models.RoleAdmin}) {
		t.Error("admins cannot manage")
	}
	if !CanManage(&models.User{Role: models.RoleSuperAdmin}) {
		t.Error("super admins can manage")
	}
}
