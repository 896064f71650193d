package controllers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/yigit/attendance-admin/internal/app/models"
	"github.com/yigit/attendance-admin/internal/app/models/dto"
	"github.com/yigit/attendance-admin/internal/app/services"
	"github.com/yigit/attendance-admin/internal/pkg/apperrors"
	"github.com/yigit/attendance-admin/internal/pkg/validation"
)

type fakeSubjectService struct {
	services.SubjectService
	subjects map[int64]*models.Subject
	deleted  []int64
}

func (f *fakeSubjectService) List(context.Context) ([]*models.Subject, error) {
	var out []*models.Subject
	for _, s := range f.subjects {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSubjectService) Get(_ context.Context, id int64) (*models.Subject, error) {
	if s, ok := f.subjects[id]; ok {
		return s, nil
	}
	return nil, apperrors.ErrSubjectNotFound
}

func (f *fakeSubjectService) Create(_ context.Context, form dto.SubjectForm) (*models.Subject, error) {
	code := validation.NormalizeSubjectCode(form.Code)
	for _, s := range f.subjects {
		if s.Code == code {
			return nil, apperrors.ErrSubjectCodeAlreadyExists
		}
	}
	s := &models.Subject{ID: int64(len(f.subjects) + 1), Name: form.Name, Code: code, Faculty: form.Faculty}
	f.subjects[s.ID] = s
	return s, nil
}

func (f *fakeSubjectService) Update(ctx context.Context, id int64, form dto.SubjectForm) (*models.Subject, error) {
	s, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Name, s.Code, s.Faculty = form.Name, validation.NormalizeSubjectCode(form.Code), form.Faculty
	return s, nil
}

func (f *fakeSubjectService) Delete(_ context.Context, id int64) error {
	if _, ok := f.subjects[id]; !ok {
		return apperrors.ErrSubjectNotFound
	}
	f.deleted = append(f.deleted, id)
	delete(f.subjects, id)
	return nil
}

func newSubjectApp(t *testing.T) (*testApp, *fakeSubjectService) {
	app := newTestApp(t)
	fake := &fakeSubjectService{subjects: map[int64]*models.Subject{
		1: {ID: 1, Name: "Programming", Code: "CS101", Faculty: "Engineering"},
	}}
	ctrl := NewSubjectController(fake, fakeFaculties{})

	g := app.engine.Group("/subject", app.mw.RequireLogin())
	g.GET("", ctrl.List)
	g.GET("/add", ctrl.ShowCreate)
	g.POST("/add", ctrl.Create)
	g.GET("/:id/edit", ctrl.ShowEdit)
	g.POST("/:id/edit", ctrl.Update)
	g.POST("/:id/delete", ctrl.Delete)
	return app, fake
}

func subjectForm(name, code, faculty string) url.Values {
	return url.Values{"courseName": {name}, "courseCode": {code}, "faculty": {faculty}}
}

func TestSubjectCreate(t *testing.T) {
	app, fake := newSubjectApp(t)
	c := app.loggedIn(adminUser)

	assertRedirect(t, c.post("/subject/add", subjectForm("Calculus", "math-201", "Science")), "/subject")
	if got := c.flashes(); got != "Subject MATH-201 created successfully." {
		t.Errorf("flash = %q", got)
	}
	if len(fake.subjects) != 2 {
		t.Errorf("subjects = %d", len(fake.subjects))
	}

	w := c.post("/subject/add", subjectForm("Algebra", "cs101", "Science"))
	if w.Code != http.StatusConflict || !strings.Contains(w.Body.String(), "A subject with this code already exists.") {
		t.Errorf("duplicate code = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `value="Algebra"`) {
		t.Error("input not kept on error")
	}
}

func TestSubjectCreateValidation(t *testing.T) {
	app, _ := newSubjectApp(t)
	w := app.loggedIn(adminUser).post("/subject/add", subjectForm("", "CS 101!", "Science"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Course name is required.") {
		t.Error("missing name error")
	}
	if !strings.Contains(body, "Course code must be upper-case letters and digits, optionally separated by dashes.") {
		t.Error("missing code error")
	}
}

func TestSubjectEditAndDelete(t *testing.T) {
	app, fake := newSubjectApp(t)
	c := app.loggedIn(adminUser)

	w := c.get("/subject/1/edit")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `value="CS101"`) {
		t.Fatalf("edit page = %d", w.Code)
	}
	if w := c.get("/subject/7/edit"); w.Code != http.StatusNotFound {
		t.Errorf("unknown subject = %d", w.Code)
	}

	assertRedirect(t, c.post("/subject/1/edit", subjectForm("Programming I", "CS101", "Engineering")), "/subject")
	if fake.subjects[1].Name != "Programming I" {
		t.Error("subject not updated")
	}

	assertRedirect(t, c.post("/subject/1/delete", nil), "/subject")
	if len(fake.deleted) != 1 {
		t.Error("subject not deleted")
	}
	if w := c.post("/subject/1/delete", nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d", w.Code)
	}
}
