// Package session stores the logged-in user and one-shot flash messages
// in the gin-contrib/sessions cookie session.
package session

import (
	"encoding/gob"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yigit/attendance-admin/internal/app/models"
	"github.com/yigit/attendance-admin/internal/app/models/dto"
	"github.com/yigit/attendance-admin/internal/pkg/logger"
)

const (
	keyUserID   = "user_id"
	keyUsername = "username"
	keyRole     = "role"
)

func init() {
	// Flash values are stored in the session as interface{} and need a gob name.
	gob.Register(dto.Flash{})
}

// Login stores the identity of user in the session
func Login(c *gin.Context, user *models.User) error {
	s := sessions.Default(c)
	s.Clear()
	s.Set(keyUserID, user.ID)
	s.Set(keyUsername, user.Username)
	s.Set(keyRole, string(user.Role))
	return saveOnce(c, s)
}

// Logout clears the session and expires its cookie
func Logout(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1})
	return saveOnce(c, s)
}

// UserID returns the id of the logged-in user
func UserID(c *gin.Context) (int64, bool) {
	id, ok := sessions.Default(c).Get(keyUserID).(int64)
	return id, ok && id > 0
}

// Refresh rewrites the cached username and role after a profile change
func Refresh(c *gin.Context, user *models.User) {
	s := sessions.Default(c)
	s.Set(keyUsername, user.Username)
	s.Set(keyRole, string(user.Role))
	save(c, s)
}

// AddFlash queues a message for the next rendered page
func AddFlash(c *gin.Context, level dto.FlashLevel, text string) {
	s := sessions.Default(c)
	s.AddFlash(dto.Flash{Level: level, Text: text})
	save(c, s)
}

// Success queues a success message
func Success(c *gin.Context, text string) { AddFlash(c, dto.FlashSuccess, text) }

// Error queues an error message
func Error(c *gin.Context, text string) { AddFlash(c, dto.FlashError, text) }

// Flashes pops every queued message
func Flashes(c *gin.Context) []dto.Flash {
	s := sessions.Default(c)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	save(c, s)

	out := make([]dto.Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(dto.Flash); ok {
			out = append(out, f)
		}
	}
	return out
}

func save(c *gin.Context, s sessions.Session) {
	if err := saveOnce(c, s); err != nil {
		logger.Error().Err(err).Msg("Failed to save session")
	}
}

// saveOnce saves s and keeps only the newest Set-Cookie of the session, so
// a request that logs in and flashes still sends a single cookie.
func saveOnce(c *gin.Context, s sessions.Session) error {
	if err := s.Save(); err != nil {
		return err
	}
	dedupeSetCookie(c.Writer.Header())
	return nil
}

func dedupeSetCookie(h http.Header) {
	values := h.Values("Set-Cookie")
	if len(values) < 2 {
		return
	}
	last := values[len(values)-1]
	name, _, _ := strings.Cut(last, "=")

	kept := make([]string, 0, len(values))
	for _, v := range values[:len(values)-1] {
		if n, _, _ := strings.Cut(v, "="); n != name {
			kept = append(kept, v)
		}
	}
	h["Set-Cookie"] = append(kept, last)
}
