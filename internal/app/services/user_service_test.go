package services

import (
	"context"
	"errors"
	"testing"

	"github.com/yigit/attendance-admin/internal/app/auth"
	"github.com/yigit/attendance-admin/internal/app/models"
	"github.com/yigit/attendance-admin/internal/app/models/dto"
	"github.com/yigit/attendance-admin/internal/pkg/apperrors"
	pwd "github.com/yigit/attendance-admin/internal/pkg/auth"
)

func userForm(username string, role models.RoleType, password string) dto.UserForm {
	return dto.UserForm{
		Username:  username,
		FirstName: "First",
		LastName:  "Last",
		Email:     username + "@example.com",
		Role:      string(role),
		Password:  password,
	}
}

func TestUserServiceCreate(t *testing.T) {
	store := newMemStore()
	svc := NewUserService(memUsers{store}, testLogger)
	ctx := context.Background()

	if _, err := svc.Create(ctx, userForm("nopass", models.RoleAdmin, "")); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("missing password: %v", err)
	}

	u, err := svc.Create(ctx, userForm("clerk", models.RoleAdmin, "password123"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !pwd.CheckPassword(store.users[u.ID].Password, "password123") {
		t.Error("stored password is not a hash of the input")
	}

	if _, err := svc.Create(ctx, userForm("clerk", models.RoleAdmin, "password123")); !errors.Is(err, apperrors.ErrUsernameAlreadyExists) {
		t.Fatalf("duplicate username: %v", err)
	}
}

func TestUserServiceProtectsSuperAdminsAndSelf(t *testing.T) {
	store := newMemStore()
	super := seedUser(t, store, "root", "pw-12345678", models.RoleSuperAdmin)
	other := seedUser(t, store, "root2", "pw-12345678", models.RoleSuperAdmin)
	admin := seedUser(t, store, "clerk", "pw-12345678", models.RoleAdmin)
	svc := NewUserService(memUsers{store}, testLogger)
	ctx := context.Background()

	if err := svc.Delete(ctx, super, other.ID); err != auth.ErrSuperAdminTarget {
		t.Errorf("deleting a super admin: %v", err)
	}
	if _, err := svc.Update(ctx, super, super.ID, userForm("root", models.RoleAdmin, "")); err == nil {
		t.Error("editing self must be rejected")
	}
	if err := svc.Delete(ctx, admin, admin.ID); err != auth.ErrSuperAdminOnly {
		t.Errorf("admin managing users: %v", err)
	}

	if err := svc.Delete(ctx, super, admin.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := store.users[admin.ID]; ok {
		t.Error("user still stored after delete")
	}
}

func TestUserServiceUpdateKeepsPasswordWhenBlank(t *testing.T) {
	store := newMemStore()
	super := seedUser(t, store, "root", "pw-12345678", models.RoleSuperAdmin)
	admin := seedUser(t, store, "clerk", "old-password", models.RoleAdmin)
	svc := NewUserService(memUsers{store}, testLogger)
	ctx := context.Background()

	if _, err := svc.Update(ctx, super, admin.ID, userForm("clerk2", models.RoleAdmin, "")); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !pwd.CheckPassword(store.users[admin.ID].Password, "old-password") {
		t.Error("blank password must keep the current one")
	}
	if store.users[admin.ID].Username != "clerk2" {
		t.Error("username not updated")
	}

	if _, err := svc.Update(ctx, super, admin.ID, userForm("clerk2", models.RoleAdmin, "new-password")); err != nil {
		t.Fatalf("Update with password: %v", err)
	}
	if !pwd.CheckPassword(store.users[admin.ID].Password, "new-password") {
		t.Error("password not changed")
	}
}
