package controllers

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/yigit/attendance-admin/internal/pkg/apperrors"
)

func authApp(t *testing.T) *testApp {
	app := newTestApp(t)
	ctrl := NewAuthController(app.auth)
	app.engine.GET("/login", ctrl.ShowLogin)
	app.engine.POST("/login", ctrl.Login)
	app.engine.POST("/logout", ctrl.Logout)
	app.engine.GET("/dashboard", app.mw.RequireLogin(), func(c *gin.Context) { c.String(http.StatusOK, "dashboard") })
	return app
}

func TestLoginSuccessRedirectsToNext(t *testing.T) {
	app := authApp(t)
	app.auth.loginUser = adminUser
	c := app.client()

	w := c.post("/login", url.Values{"username": {"ada"}, "password": {"secret"}, "next": {"/subject?x=1"}})
	assertRedirect(t, w, "/subject?x=1")
	if got := c.flashes(); got != "Welcome, ada!" {
		t.Errorf("flash = %q", got)
	}
	if app.auth.gotIP == "" {
		t.Error("client ip not passed to the login throttle")
	}

	if w := c.get("/dashboard"); w.Code != http.StatusOK {
		t.Errorf("session not established: %d", w.Code)
	}
}

func TestLoginRejectsOffsiteNext(t *testing.T) {
	app := authApp(t)
	app.auth.loginUser = adminUser

	w := app.client().post("/login", url.Values{"username": {"ada"}, "password": {"secret"}, "next": {"//evil.example.com/x"}})
	assertRedirect(t, w, "/dashboard")
}

func TestLoginFailureRerendersWithMessage(t *testing.T) {
	app := authApp(t)
	app.auth.loginErr = apperrors.ErrInvalidCredentials

	w := app.client().post("/login", url.Values{"username": {"ada"}, "password": {"wrong"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Invalid username or password.") {
		t.Error("failure message missing")
	}
	if !strings.Contains(body, `value="ada"`) {
		t.Error("username not kept")
	}
}

func TestLoginLockedOut(t *testing.T) {
	app := authApp(t)
	app.auth.loginErr = apperrors.ErrTooManyAttempts

	w := app.client().post("/login", url.Values{"username": {"ada"}, "password": {"wrong"}})
	if w.Code != http.StatusTooManyRequests || !strings.Contains(w.Body.String(), "Too many login attempts") {
		t.Errorf("lockout response = %d", w.Code)
	}
}

func TestLoginMissingFields(t *testing.T) {
	app := authApp(t)
	w := app.client().post("/login", url.Values{"username": {"ada"}})
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "Password is required.") {
		t.Errorf("missing password response = %d %s", w.Code, w.Body.String())
	}
}

func TestShowLoginSkipsForLoggedInUsers(t *testing.T) {
	app := authApp(t)
	assertRedirect(t, app.loggedIn(adminUser).get("/login"), "/dashboard")

	w := app.client().get("/login?next=/attendance")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `name="next" value="/attendance"`) {
		t.Errorf("login page = %d", w.Code)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	app := authApp(t)
	c := app.loggedIn(adminUser)

	if w := c.post("/logout", nil); w.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", w.Code)
	}
	if w := c.get("/dashboard"); w.Code != http.StatusSeeOther {
		t.Errorf("dashboard after logout = %d", w.Code)
	}
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                 "/dashboard",
		"/attendance/3":    "/attendance/3",
		"/enrollment?a=b":  "/enrollment?a=b",
		"https://evil.com": "/dashboard",
		"//evil.com":       "/dashboard",
		"/\\evil.com":      "/dashboard",
		"attendance":       "/dashboard",
		"/login?next=/x":   "/dashboard",
		"/logout":          "/dashboard",
	}
	for in, want := range tests {
		if got := safeNext(in); got != want {
			t.Errorf("safeNext(%q) = %q, want %q", in, got, want)
		}
	}
}
