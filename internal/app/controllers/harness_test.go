package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/attendance-admin/internal/app/models"
	"github.com/yigit/attendance-admin/internal/app/models/dto"
	"github.com/yigit/attendance-admin/internal/app/services"
	"github.com/yigit/attendance-admin/internal/app/session"
	"github.com/yigit/attendance-admin/internal/app/views"
	"github.com/yigit/attendance-admin/internal/middleware"
	"github.com/yigit/attendance-admin/internal/pkg/apperrors"
	"github.com/yigit/attendance-admin/internal/pkg/validation"
)

var registerOnce sync.Once

// fakeAuth serves the session user lookups of the test router
type fakeAuth struct {
	services.AuthService
	users map[int64]*models.User

	loginUser    *models.User
	loginErr     error
	gotIP        string
	profileErr   error
	profileInput dto.ProfileForm
}

func (f *fakeAuth) GetCurrentUser(_ context.Context, id int64) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.ErrNotAuthenticated
}

func (f *fakeAuth) Login(_ context.Context, username, password, ip string) (*models.User, error) {
	f.gotIP = ip
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginUser, nil
}

func (f *fakeAuth) UpdateProfile(_ context.Context, id int64, form dto.ProfileForm) (*models.User, error) {
	f.profileInput = form
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	u := *f.users[id]
	u.Username, u.FirstName, u.LastName, u.Email = form.Username, form.FirstName, form.LastName, form.Email
	f.users[id] = &u
	return &u, nil
}

var (
	rootUser  = &models.User{ID: 1, Username: "root", Role: models.RoleSuperAdmin}
	adminUser = &models.User{ID: 2, Username: "ada", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Role: models.RoleAdmin}
)

type testApp struct {
	t      *testing.T
	engine *gin.Engine
	auth   *fakeAuth
	mw     *middleware.AuthMiddleware
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			if err := validation.Register(v); err != nil {
				t.Fatalf("register validation: %v", err)
			}
		}
	})

	renderer, err := views.NewRenderer(nil)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	auth := &fakeAuth{users: map[int64]*models.User{
		rootUser.ID:  rootUser,
		adminUser.ID: adminUser,
	}}
	mw := middleware.NewAuthMiddleware(auth)

	r := gin.New()
	r.HTMLRender = renderer
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("0123456789abcdef0123456789abcdef"))))
	r.Use(middleware.RequestID(), mw.LoadUser())
	r.GET("/test-login/:id", func(c *gin.Context) {
		id, _ := parseIDParam(c, "id")
		_ = session.Login(c, &models.User{ID: id})
		c.Status(http.StatusNoContent)
	})
	r.GET("/test-flashes", func(c *gin.Context) {
		var texts []string
		for _, f := range session.Flashes(c) {
			texts = append(texts, f.Text)
		}
		c.String(http.StatusOK, strings.Join(texts, "\n"))
	})

	return &testApp{t: t, engine: r, auth: auth, mw: mw}
}

// client keeps cookies between requests like a browser
type client struct {
	app     *testApp
	cookies map[string]*http.Cookie
}

func (a *testApp) client() *client {
	return &client{app: a, cookies: map[string]*http.Cookie{}}
}

func (a *testApp) loggedIn(user *models.User) *client {
	c := a.client()
	if w := c.get("/test-login/" + strconv.FormatInt(user.ID, 10)); w.Code != http.StatusNoContent {
		a.t.Fatalf("test login failed: %d", w.Code)
	}
	return c
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.app.engine.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		c.cookies[ck.Name] = ck
	}
	return w
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

// flashes pops the queued flash messages
func (c *client) flashes() string {
	return c.get("/test-flashes").Body.String()
}

func assertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303 (body %q)", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != location {
		t.Fatalf("location = %q, want %q", got, location)
	}
}
