package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/attendance-admin/internal/app/models/dto"
	"github.com/yigit/attendance-admin/internal/app/services"
	"github.com/yigit/attendance-admin/internal/app/session"
	"github.com/yigit/attendance-admin/internal/app/views"
	"github.com/yigit/attendance-admin/internal/middleware"
	"github.com/yigit/attendance-admin/internal/pkg/apperrors"
)

// ProfileController lets users edit their own account
type ProfileController struct {
	authService services.AuthService
}

// NewProfileController creates a new ProfileController
func NewProfileController(authService services.AuthService) *ProfileController {
	return &ProfileController{authService: authService}
}

// Show renders the profile with every field disabled
func (c *ProfileController) Show(ctx *gin.Context) {
	user := session.CurrentUser(ctx)
	c.render(ctx, http.StatusOK, views.ProfileData{
		Form: dto.ProfileForm{
			Username:  user.Username,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
		},
		Role: user.Role,
	})
}

// Update saves username, name and email. A posted role is never bound.
func (c *ProfileController) Update(ctx *gin.Context) {
	current := session.CurrentUser(ctx)
	data := views.ProfileData{Role: current.Role}
	if errs := middleware.BindForm(ctx, &data.Form); errs != nil {
		data.Errors = errs
		c.render(ctx, http.StatusBadRequest, data)
		return
	}

	user, err := c.authService.UpdateProfile(ctx.Request.Context(), current.ID, data.Form)
	if err != nil {
		status := middleware.StatusFor(err)
		if status != http.StatusBadRequest && status != http.StatusConflict {
			middleware.HandlePageError(ctx, err, "/profile")
			return
		}
		data.Errors = []string{apperrors.UserMessage(err)}
		c.render(ctx, status, data)
		return
	}

	session.Refresh(ctx, user)
	session.SetCurrentUser(ctx, user)
	session.Success(ctx, "Profile updated successfully.")
	redirect(ctx, "/profile")
}

func (c *ProfileController) render(ctx *gin.Context, status int, data views.ProfileData) {
	views.Render(ctx, status, "profile", views.Page{
		Title:  "Profile",
		Active: "profile",
		Data:   data,
	})
}
