package session

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/attendance-admin/internal/app/models"
)

const currentUserKey = "currentUser"

// SetCurrentUser stores the user loaded for this request
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(currentUserKey, user)
}

// CurrentUser returns the user loaded by the auth middleware, or nil
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(currentUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
