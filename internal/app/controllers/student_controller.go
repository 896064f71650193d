package controllers

import (
	"fmt"
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

const (
	studentsPath = "/management/students"
	// maxImportErrors bounds how many row errors are flashed after an import
	maxImportErrors = 10
)

// StudentController handles student records, face images and roster imports
type StudentController struct {
	studentService services.StudentService
	facultyService services.FacultyService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService, facultyService services.FacultyService) *StudentController {
	return &StudentController{
		studentService: studentService,
		facultyService: facultyService,
	}
}

// List renders every student
func (c *StudentController) List(ctx *gin.Context) {
	students, err := c.studentService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandlePageError(ctx, err, "")
		return
	}
	views.Render(ctx, http.StatusOK, "students", views.Page{
		Title:  "Student Management",
		Active: "students",
		Data:   views.StudentsData{Students: students},
	})
}

// ShowCreate renders an empty student form
func (c *StudentController) ShowCreate(ctx *gin.Context) {
	c.renderForm(ctx, http.StatusOK, views.StudentFormData{Action: "/management/students/add"})
}

// Create adds a student
func (c *StudentController) Create(ctx *gin.Context) {
	data := views.StudentFormData{Action: "/management/students/add"}
	if errs := middleware.BindForm(ctx, &data.Form); errs != nil {
		data.Errors = errs
		c.renderForm(ctx, http.StatusBadRequest, data)
		return
	}

	student, err := c.studentService.Create(ctx.Request.Context(), data.Form)
	if err != nil {
		c.formError(ctx, err, data)
		return
	}
	session.Success(ctx, "Student "+student.Name+" created successfully.")
	redirect(ctx, studentsPath)
}

// ShowEdit renders the form of an existing student
func (c *StudentController) ShowEdit(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	student, err := c.studentService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandlePageError(ctx, err, studentsPath)
		return
	}
	c.renderForm(ctx, http.StatusOK, views.StudentFormData{
		Action:  studentActionPath(id, "edit"),
		Editing: true,
		Form: dto.StudentForm{
			Name:             student.Name,
			EnrollmentNumber: student.EnrollmentNumber,
			Faculty:          student.Faculty,
		},
	})
}

// Update saves an existing student
func (c *StudentController) Update(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	data := views.StudentFormData{Action: studentActionPath(id, "edit"), Editing: true}
	if errs := middleware.BindForm(ctx, &data.Form); errs != nil {
		data.Errors = errs
		c.renderForm(ctx, http.StatusBadRequest, data)
		return
	}

	student, err := c.studentService.Update(ctx.Request.Context(), id, data.Form)
	if err != nil {
		c.formError(ctx, err, data)
		return
	}
	session.Success(ctx, "Student "+student.Name+" updated successfully.")
	redirect(ctx, studentsPath)
}

// Delete removes a student with its enrollments, attendance and face images
func (c *StudentController) Delete(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.studentService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandlePageError(ctx, err, studentsPath)
		return
	}
	session.Success(ctx, "Student deleted successfully.")
	redirect(ctx, studentsPath)
}

// ShowFaces renders the face upload form
func (c *StudentController) ShowFaces(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	student, err := c.studentService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandlePageError(ctx, err, studentsPath)
		return
	}
	views.Render(ctx, http.StatusOK, "add_faces", views.Page{
		Title:  "Add faces",
		Active: "students",
		Data:   views.FacesData{Student: student},
	})
}

// AddFaces stores the uploaded face images of a student
func (c *StudentController) AddFaces(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	back := studentActionPath(id, "faces")

	form, err := ctx.MultipartForm()
	if err != nil || len(form.File["faces"]) == 0 {
		session.Error(ctx, "Select at least one image to upload.")
		redirect(ctx, back)
		return
	}

	n, err := c.studentService.AddFaces(ctx.Request.Context(), id, form.File["faces"])
	if err != nil {
		middleware.HandlePageError(ctx, err, back)
		return
	}
	session.Success(ctx, fmt.Sprintf("%d face image(s) uploaded.", n))
	redirect(ctx, back)
}

// Import adds students from the first sheet of an uploaded xlsx file
func (c *StudentController) Import(ctx *gin.Context) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		session.Error(ctx, "Select an Excel file to import.")
		redirect(ctx, studentsPath)
		return
	}

	file, err := fh.Open()
	if err != nil {
		middleware.HandlePageError(ctx, fmt.Errorf("error opening upload: %w", err), studentsPath)
		return
	}
	defer file.Close()

	result, err := c.studentService.Import(ctx.Request.Context(), file)
	if err != nil {
		middleware.HandlePageError(ctx, err, studentsPath)
		return
	}

	session.Success(ctx, fmt.Sprintf("Imported %d student(s), skipped %d.", result.Imported, result.Skipped))
	for i, msg := range result.Errors {
		if i == maxImportErrors {
			session.Error(ctx, fmt.Sprintf("%d more row(s) could not be imported.", len(result.Errors)-maxImportErrors))
			break
		}
		session.Error(ctx, msg)
	}
	redirect(ctx, studentsPath)
}

func studentActionPath(id int64, action string) string {
	return studentsPath + "/" + strconv.FormatInt(id, 10) + "/" + action
}

func (c *StudentController) formError(ctx *gin.Context, err error, data views.StudentFormData) {
	status := middleware.StatusFor(err)
	if status != http.StatusBadRequest && status != http.StatusConflict {
		middleware.HandlePageError(ctx, err, studentsPath)
		return
	}
	data.Errors = []string{apperrors.UserMessage(err)}
	c.renderForm(ctx, status, data)
}

func (c *StudentController) renderForm(ctx *gin.Context, status int, data views.StudentFormData) {
	faculties, err := c.facultyService.List(ctx.Request.Context())
	if err != nil {
		middleware.Logger(ctx).Warn().Err(err).Msg("Failed to load faculty suggestions")
	}
	data.Faculties = faculties

	title := "Add student"
	if data.Editing {
		title = "Edit student"
	}
	views.Render(ctx, status, "student_form", views.Page{
		Title:  title,
		Active: "students",
		Data:   data,
	})
}
