package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/attendance-admin/internal/app/models"
	"github.com/yigit/attendance-admin/internal/app/models/dto"
	"github.com/yigit/attendance-admin/internal/app/services"
	"github.com/yigit/attendance-admin/internal/app/session"
	"github.com/yigit/attendance-admin/internal/app/views"
	"github.com/yigit/attendance-admin/internal/middleware"
	"github.com/yigit/attendance-admin/internal/pkg/apperrors"
)

const enrollmentPath = "/enrollment"

var enrollmentStatuses = []models.EnrollmentStatus{
	models.EnrollmentEnrolled,
	models.EnrollmentCompleted,
	models.EnrollmentCanceled,
}

// EnrollmentController handles the enrollment search and enrollment changes
type EnrollmentController struct {
	enrollmentService services.EnrollmentService
}

// NewEnrollmentController creates a new EnrollmentController
func NewEnrollmentController(enrollmentService services.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{enrollmentService: enrollmentService}
}

// searchPath returns the search result page of a student
func searchPath(student *models.Student) string {
	if student == nil {
		return enrollmentPath
	}
	return enrollmentPath + "?student_id=" + url.QueryEscape(student.EnrollmentNumber)
}

// Index renders the search box, and the result when student_id is in the query
func (c *EnrollmentController) Index(ctx *gin.Context) {
	form := dto.EnrollmentSearchForm{StudentID: ctx.Query("student_id")}
	if form.Query() == "" {
		c.render(ctx, views.EnrollmentData{})
		return
	}
	c.search(ctx, form)
}

// Search looks up the posted enrollment number
func (c *EnrollmentController) Search(ctx *gin.Context) {
	var form dto.EnrollmentSearchForm
	if errs := middleware.BindForm(ctx, &form); errs != nil {
		flashAll(ctx, errs)
		redirect(ctx, enrollmentPath)
		return
	}
	c.search(ctx, form)
}

func (c *EnrollmentController) search(ctx *gin.Context, form dto.EnrollmentSearchForm) {
	query := form.Query()
	result, err := c.enrollmentService.Search(ctx.Request.Context(), query)
	switch {
	case err == nil:
		c.render(ctx, views.EnrollmentData{Query: query, Searched: true, Result: result})
	case errors.Is(err, apperrors.ErrStudentNotFound):
		c.render(ctx, views.EnrollmentData{Query: query, Searched: true})
	case errors.Is(err, apperrors.ErrValidationFailed):
		session.Error(ctx, apperrors.UserMessage(err))
		c.render(ctx, views.EnrollmentData{})
	default:
		middleware.HandlePageError(ctx, err, "")
	}
}

func (c *EnrollmentController) render(ctx *gin.Context, data views.EnrollmentData) {
	data.Statuses = enrollmentStatuses
	views.Render(ctx, http.StatusOK, "enrollment", views.Page{
		Title:  "Enrollment",
		Active: "enrollment",
		Data:   data,
	})
}

// ShowAdd lists the subjects the student is not enrolled in
func (c *EnrollmentController) ShowAdd(ctx *gin.Context) {
	studentID, ok := parseIDParam(ctx, "student_id")
	if !ok {
		return
	}

	student, subjects, err := c.enrollmentService.AvailableSubjects(ctx.Request.Context(), studentID)
	if err != nil {
		middleware.HandlePageError(ctx, err, enrollmentPath)
		return
	}
	views.Render(ctx, http.StatusOK, "add_enrollment", views.Page{
		Title:  "Add enrollment",
		Active: "enrollment",
		Data:   views.AddEnrollmentData{Student: student, Subjects: subjects},
	})
}

// Add enrolls the student into the posted subject
func (c *EnrollmentController) Add(ctx *gin.Context) {
	studentID, ok := parseIDParam(ctx, "student_id")
	if !ok {
		return
	}
	back := "/enrollment/add/" + strconv.FormatInt(studentID, 10)

	var form dto.AddEnrollmentForm
	if errs := middleware.BindForm(ctx, &form); errs != nil {
		flashAll(ctx, errs)
		redirect(ctx, back)
		return
	}

	student, err := c.enrollmentService.Enroll(ctx.Request.Context(), studentID, form.SubjectID)
	if err != nil {
		middleware.HandlePageError(ctx, err, back)
		return
	}
	session.Success(ctx, "Student enrolled successfully.")
	redirect(ctx, searchPath(student))
}

// Delete removes an enrollment
func (c *EnrollmentController) Delete(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	student, err := c.enrollmentService.Delete(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandlePageError(ctx, err, enrollmentPath)
		return
	}
	session.Success(ctx, "Enrollment deleted successfully.")
	redirect(ctx, searchPath(student))
}

// ChangeStatus completes, cancels or reopens an enrollment
func (c *EnrollmentController) ChangeStatus(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var form dto.EnrollmentStatusForm
	if errs := middleware.BindForm(ctx, &form); errs != nil {
		flashAll(ctx, errs)
		redirect(ctx, enrollmentPath)
		return
	}

	student, err := c.enrollmentService.ChangeStatus(ctx.Request.Context(), id, models.EnrollmentStatus(form.Status))
	if err != nil {
		// Transition errors still know the student; bounce back to its result page.
		middleware.HandlePageError(ctx, err, searchPath(student))
		return
	}
	session.Success(ctx, "Enrollment marked as "+form.Status+".")
	redirect(ctx, searchPath(student))
}
