package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/attendance-admin/internal/pkg/validation"
)

// BindForm binds the posted form into obj and returns the user facing
// messages of every failed rule, or nil when the form is valid.
func BindForm(c *gin.Context, obj any) []string {
	if err := c.ShouldBind(obj); err != nil {
		Logger(c).Debug().Err(err).Str("path", c.Request.URL.Path).Msg("Form validation failed")
		return validation.FormatErrors(err)
	}
	return nil
}
