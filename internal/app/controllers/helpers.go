// Package controllers handles HTTP request handling for the dashboard pages
package controllers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/attendance-admin/internal/app/session"
	"github.com/yigit/attendance-admin/internal/app/views"
)

// DefaultLandingPath is where users go after login when no next page is given
const DefaultLandingPath = "/dashboard"

// parseIDParam reads a positive int64 route parameter. Anything else renders the not found page.
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		views.ErrorPage(ctx, http.StatusNotFound, "Page not found.")
		return 0, false
	}
	return id, true
}

// redirect answers a form post with the post/redirect/get pattern
func redirect(ctx *gin.Context, location string) {
	ctx.Redirect(http.StatusSeeOther, location)
}

// flashAll queues every message as an error flash
func flashAll(ctx *gin.Context, messages []string) {
	for _, m := range messages {
		session.Error(ctx, m)
	}
}

// safeNext accepts only local absolute paths so login cannot redirect off site
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return DefaultLandingPath
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return DefaultLandingPath
	}
	if u.Path == "/login" || u.Path == "/logout" {
		return DefaultLandingPath
	}
	return next
}
