package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"github.com/yigit/attendance-admin/internal/app/views"
)

// CSRFConfig configures the anti-forgery middleware
type CSRFConfig struct {
	AuthKey []byte
	// Secure marks the token cookie Secure and enables the TLS referer check
	Secure         bool
	TrustedOrigins []string
}

type csrfFailureKey struct{}

// CSRF adapts gorilla/csrf to gin. Safe methods receive a token; other
// methods must echo it in the gorilla.csrf.Token form field or the
// X-CSRF-Token header, otherwise the forbidden page is rendered.
func CSRF(cfg CSRFConfig) gin.HandlerFunc {
	opts := []csrf.Option{
		csrf.Secure(cfg.Secure),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if reason, ok := r.Context().Value(csrfFailureKey{}).(*error); ok {
				*reason = csrf.FailureReason(r)
			}
		})),
	}
	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}
	protect := csrf.Protect(cfg.AuthKey, opts...)

	return func(c *gin.Context) {
		var failure error
		passed := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			// Keep the request carrying the token for the handlers and templates.
			c.Request = r
		})

		r := c.Request.WithContext(context.WithValue(c.Request.Context(), csrfFailureKey{}, &failure))
		if !cfg.Secure {
			r = csrf.PlaintextHTTPRequest(r)
		}
		protect(next).ServeHTTP(c.Writer, r)

		if !passed {
			Logger(c).Warn().Err(failure).Str("path", c.Request.URL.Path).Msg("CSRF check failed")
			views.ErrorPage(c, http.StatusForbidden, "Your form has expired. Please reload the page and try again.")
			c.Abort()
			return
		}
		c.Next()
	}
}
