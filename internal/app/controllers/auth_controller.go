package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/attendance-admin/internal/app/models/dto"
	"github.com/yigit/attendance-admin/internal/app/services"
	"github.com/yigit/attendance-admin/internal/app/session"
	"github.com/yigit/attendance-admin/internal/app/views"
	"github.com/yigit/attendance-admin/internal/middleware"
	"github.com/yigit/attendance-admin/internal/pkg/apperrors"
)

// AuthController handles login and logout
type AuthController struct {
	authService services.AuthService
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// ShowLogin renders the login form, or skips it for logged in users
func (c *AuthController) ShowLogin(ctx *gin.Context) {
	next := ctx.Query("next")
	if session.CurrentUser(ctx) != nil {
		redirect(ctx, safeNext(next))
		return
	}
	c.renderLogin(ctx, http.StatusOK, "", next)
}

// Login checks the credentials and starts a session
func (c *AuthController) Login(ctx *gin.Context) {
	next := ctx.PostForm("next")

	var form dto.LoginForm
	if errs := middleware.BindForm(ctx, &form); errs != nil {
		flashAll(ctx, errs)
		c.renderLogin(ctx, http.StatusBadRequest, form.Username, next)
		return
	}

	user, err := c.authService.Login(ctx.Request.Context(), form.Username, form.Password, ctx.ClientIP())
	if err != nil {
		status := middleware.StatusFor(err)
		switch {
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			session.Error(ctx, "Invalid username or password.")
		case errors.Is(err, apperrors.ErrTooManyAttempts):
			session.Error(ctx, "Too many login attempts. Please try again later.")
		default:
			middleware.HandlePageError(ctx, err, "")
			return
		}
		c.renderLogin(ctx, status, form.Username, next)
		return
	}

	if err := session.Login(ctx, user); err != nil {
		middleware.HandlePageError(ctx, err, "")
		return
	}
	middleware.Logger(ctx).Info().Int64("userID", user.ID).Msg("User logged in")
	session.Success(ctx, "Welcome, "+user.Username+"!")
	redirect(ctx, safeNext(next))
}

// Logout ends the session. The page script navigates to the login page on 204.
func (c *AuthController) Logout(ctx *gin.Context) {
	if err := session.Logout(ctx); err != nil {
		middleware.Logger(ctx).Error().Err(err).Msg("Failed to clear session")
		ctx.Status(http.StatusInternalServerError)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (c *AuthController) renderLogin(ctx *gin.Context, status int, username, next string) {
	views.Render(ctx, status, "login", views.Page{
		Title: "Login",
		Data:  views.LoginData{Username: username, Next: next},
	})
}
