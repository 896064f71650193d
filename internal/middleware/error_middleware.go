package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/attendance-admin/internal/app/session"
	"github.com/yigit/attendance-admin/internal/app/views"
	"github.com/yigit/attendance-admin/internal/pkg/apperrors"
)

// HandlePageError turns a service error into a response. Errors the user can
// correct are flashed and the browser is sent back to redirectTo; missing
// records, forbidden actions and unexpected failures render the error page.
func HandlePageError(c *gin.Context, err error, redirectTo string) {
	status := StatusFor(err)
	message := apperrors.UserMessage(err)

	switch status {
	case http.StatusNotFound, http.StatusForbidden:
		views.ErrorPage(c, status, message)
	case http.StatusInternalServerError:
		_ = c.Error(err)
		Logger(c).Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		views.ErrorPage(c, status, message)
	default:
		if redirectTo == "" {
			views.ErrorPage(c, status, message)
			return
		}
		session.Error(c, message)
		c.Redirect(http.StatusSeeOther, redirectTo)
	}
}

// StatusFor maps an application error to its HTTP status
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case apperrors.Is(err, apperrors.ErrResourceNotFound,
		apperrors.ErrUserNotFound,
		apperrors.ErrStudentNotFound,
		apperrors.ErrSubjectNotFound,
		apperrors.ErrEnrollmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	case apperrors.Is(err, apperrors.ErrResourceAlreadyExists,
		apperrors.ErrConflict,
		apperrors.ErrUsernameAlreadyExists,
		apperrors.ErrEmailAlreadyExists,
		apperrors.ErrEnrollmentNumberAlreadyExists,
		apperrors.ErrSubjectNameAlreadyExists,
		apperrors.ErrSubjectCodeAlreadyExists,
		apperrors.ErrAlreadyEnrolled):
		return http.StatusConflict
	case apperrors.Is(err, apperrors.ErrValidationFailed,
		apperrors.ErrBadRequest,
		apperrors.ErrInvalidCredentials,
		apperrors.ErrNotEnrolled,
		apperrors.ErrInvalidStatusTransition,
		apperrors.ErrFaceRecognitionNotConfigured):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Recovery renders the error page for panics
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		Logger(c).Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("Recovered from panic")
		views.ErrorPage(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		c.Abort()
	})
}
