package middleware

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/yigit/attendance-admin/internal/app/auth"
	"github.com/yigit/attendance-admin/internal/app/services"
	"github.com/yigit/attendance-admin/internal/app/session"
	"github.com/yigit/attendance-admin/internal/app/views"
	"github.com/yigit/attendance-admin/internal/pkg/apperrors"
)

// LoginPath is where anonymous requests are sent
const LoginPath = "/login"

// AuthMiddleware gates pages behind the session login
type AuthMiddleware struct {
	authService services.AuthService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// LoadUser loads the user of the session, if any, without requiring one
func (m *AuthMiddleware) LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := session.UserID(c)
		if !ok {
			c.Next()
			return
		}

		user, err := m.authService.GetCurrentUser(c.Request.Context(), id)
		switch {
		case err == nil:
			session.SetCurrentUser(c, user)
		case errors.Is(err, apperrors.ErrNotAuthenticated):
			// The account was deleted while logged in.
			_ = session.Logout(c)
		default:
			Logger(c).Error().Err(err).Int64("userID", id).Msg("Failed to load session user")
			views.ErrorPage(c, http.StatusInternalServerError, apperrors.UserMessage(err))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireLogin redirects anonymous requests to the login page, keeping the target in next
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if session.CurrentUser(c) != nil {
			c.Next()
			return
		}

		target := LoginPath
		if c.Request.Method == http.MethodGet {
			target += "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
		}
		c.Redirect(http.StatusSeeOther, target)
		c.Abort()
	}
}

// RequireSuperAdmin renders the forbidden page for everyone but Super Admins
func (m *AuthMiddleware) RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.RequireManager(session.CurrentUser(c)); err != nil {
			views.ErrorPage(c, http.StatusForbidden, apperrors.UserMessage(err))
			c.Abort()
			return
		}
		c.Next()
	}
}
