package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/attendance-admin/internal/app/models/dto"
	"github.com/yigit/attendance-admin/internal/app/services"
	"github.com/yigit/attendance-admin/internal/app/session"
	"github.com/yigit/attendance-admin/internal/app/views"
	"github.com/yigit/attendance-admin/internal/middleware"
	"github.com/yigit/attendance-admin/internal/pkg/apperrors"
)

const subjectsPath = "/subject"

// SubjectController handles the subject catalogue
type SubjectController struct {
	subjectService services.SubjectService
	facultyService services.FacultyService
}

// NewSubjectController creates a new SubjectController
func NewSubjectController(subjectService services.SubjectService, facultyService services.FacultyService) *SubjectController {
	return &SubjectController{
		subjectService: subjectService,
		facultyService: facultyService,
	}
}

// List renders every subject
func (c *SubjectController) List(ctx *gin.Context) {
	subjects, err := c.subjectService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandlePageError(ctx, err, "")
		return
	}
	views.Render(ctx, http.StatusOK, "subject_list", views.Page{
		Title:  "Subjects",
		Active: "subject",
		Data:   views.SubjectsData{Subjects: subjects},
	})
}

// ShowCreate renders an empty subject form
func (c *SubjectController) ShowCreate(ctx *gin.Context) {
	c.renderForm(ctx, http.StatusOK, views.SubjectFormData{Action: "/subject/add"})
}

// Create adds a subject
func (c *SubjectController) Create(ctx *gin.Context) {
	data := views.SubjectFormData{Action: "/subject/add"}
	if errs := middleware.BindForm(ctx, &data.Form); errs != nil {
		data.Errors = errs
		c.renderForm(ctx, http.StatusBadRequest, data)
		return
	}

	subject, err := c.subjectService.Create(ctx.Request.Context(), data.Form)
	if err != nil {
		c.formError(ctx, err, data)
		return
	}
	session.Success(ctx, "Subject "+subject.Code+" created successfully.")
	redirect(ctx, subjectsPath)
}

// ShowEdit renders the form of an existing subject
func (c *SubjectController) ShowEdit(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	subject, err := c.subjectService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandlePageError(ctx, err, subjectsPath)
		return
	}
	c.renderForm(ctx, http.StatusOK, views.SubjectFormData{
		Action:  editSubjectPath(id),
		Editing: true,
		Form:    dto.SubjectForm{Name: subject.Name, Code: subject.Code, Faculty: subject.Faculty},
	})
}

// Update saves an existing subject
func (c *SubjectController) Update(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	data := views.SubjectFormData{Action: editSubjectPath(id), Editing: true}
	if errs := middleware.BindForm(ctx, &data.Form); errs != nil {
		data.Errors = errs
		c.renderForm(ctx, http.StatusBadRequest, data)
		return
	}

	subject, err := c.subjectService.Update(ctx.Request.Context(), id, data.Form)
	if err != nil {
		c.formError(ctx, err, data)
		return
	}
	session.Success(ctx, "Subject "+subject.Code+" updated successfully.")
	redirect(ctx, subjectsPath)
}

// Delete removes a subject with its enrollments and attendance
func (c *SubjectController) Delete(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.subjectService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandlePageError(ctx, err, subjectsPath)
		return
	}
	session.Success(ctx, "Subject deleted successfully.")
	redirect(ctx, subjectsPath)
}

func editSubjectPath(id int64) string {
	return "/subject/" + strconv.FormatInt(id, 10) + "/edit"
}

func (c *SubjectController) formError(ctx *gin.Context, err error, data views.SubjectFormData) {
	status := middleware.StatusFor(err)
	if status != http.StatusBadRequest && status != http.StatusConflict {
		middleware.HandlePageError(ctx, err, subjectsPath)
		return
	}
	data.Errors = []string{apperrors.UserMessage(err)}
	c.renderForm(ctx, status, data)
}

func (c *SubjectController) renderForm(ctx *gin.Context, status int, data views.SubjectFormData) {
	faculties, err := c.facultyService.List(ctx.Request.Context())
	if err != nil {
		middleware.Logger(ctx).Warn().Err(err).Msg("Failed to load faculty suggestions")
	}
	data.Faculties = faculties

	title := "Add subject"
	if data.Editing {
		title = "Edit subject"
	}
	views.Render(ctx, status, "subject_form", views.Page{
		Title:  title,
		Active: "subject",
		Data:   data,
	})
}
