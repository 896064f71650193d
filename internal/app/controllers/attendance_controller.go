package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/attendance-admin/internal/app/models"
	"github.com/yigit/attendance-admin/internal/app/models/dto"
	"github.com/yigit/attendance-admin/internal/app/services"
	"github.com/yigit/attendance-admin/internal/app/session"
	"github.com/yigit/attendance-admin/internal/app/views"
	"github.com/yigit/attendance-admin/internal/middleware"
)

// AttendanceController handles attendance sheets, marks, exports and face recognition runs
type AttendanceController struct {
	attendanceService services.AttendanceService
	subjectService    services.SubjectService
	faceService       services.FaceRecognitionService
}

// NewAttendanceController creates a new AttendanceController
func NewAttendanceController(
	attendanceService services.AttendanceService,
	subjectService services.SubjectService,
	faceService services.FaceRecognitionService,
) *AttendanceController {
	return &AttendanceController{
		attendanceService: attendanceService,
		subjectService:    subjectService,
		faceService:       faceService,
	}
}

func sheetPath(subjectID int64, date string) string {
	path := "/attendance/" + strconv.FormatInt(subjectID, 10)
	if date != "" {
		path += "?date=" + date
	}
	return path
}

// List renders the subjects attendance can be taken for
func (c *AttendanceController) List(ctx *gin.Context) {
	subjects, err := c.subjectService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandlePageError(ctx, err, "")
		return
	}
	views.Render(ctx, http.StatusOK, "attendance_list", views.Page{
		Title:  "Attendance",
		Active: "attendance",
		Data:   views.SubjectsData{Subjects: subjects},
	})
}

// Sheet renders one row per enrolled student for the requested date
func (c *AttendanceController) Sheet(ctx *gin.Context) {
	subjectID, ok := parseIDParam(ctx, "subject_id")
	if !ok {
		return
	}

	date, err := c.attendanceService.ParseDate(ctx.Query("date"))
	if err != nil {
		middleware.HandlePageError(ctx, err, sheetPath(subjectID, ""))
		return
	}

	sheet, err := c.attendanceService.Sheet(ctx.Request.Context(), subjectID, date)
	if err != nil {
		middleware.HandlePageError(ctx, err, "/attendance")
		return
	}

	views.Render(ctx, http.StatusOK, "attendance_subject", views.Page{
		Title:  sheet.Subject.Code + " attendance",
		Active: "attendance",
		Data: views.AttendanceData{
			Sheet:           sheet,
			Date:            date.Format(models.DateLayout),
			FaceRecognition: c.faceService.Enabled(),
		},
	})
}

// Toggle stores the checkbox state posted by one attendance row
func (c *AttendanceController) Toggle(ctx *gin.Context) {
	subjectID, ok := parseIDParam(ctx, "subject_id")
	if !ok {
		return
	}

	var form dto.AttendanceToggleForm
	if errs := middleware.BindForm(ctx, &form); errs != nil {
		flashAll(ctx, errs)
		redirect(ctx, sheetPath(subjectID, ctx.PostForm("date")))
		return
	}

	date, err := c.attendanceService.ParseDate(form.Date)
	if err != nil {
		middleware.HandlePageError(ctx, err, sheetPath(subjectID, ""))
		return
	}
	back := sheetPath(subjectID, date.Format(models.DateLayout))

	changed, err := c.attendanceService.Toggle(ctx.Request.Context(), subjectID, form.StudentID, date, form.Checked())
	if err != nil {
		middleware.HandlePageError(ctx, err, back)
		return
	}

	switch {
	case !changed:
		// a repeated post of the same state leaves the sheet as it was
	case form.Checked():
		session.Success(ctx, "Attendance marked for the student.")
	default:
		session.Success(ctx, "Attendance removed for the student.")
	}
	redirect(ctx, back)
}

// Export downloads the sheet as xlsx or csv
func (c *AttendanceController) Export(ctx *gin.Context) {
	subjectID, ok := parseIDParam(ctx, "subject_id")
	if !ok {
		return
	}

	date, err := c.attendanceService.ParseDate(ctx.Query("date"))
	if err != nil {
		middleware.HandlePageError(ctx, err, sheetPath(subjectID, ""))
		return
	}

	export, err := c.attendanceService.Export(ctx.Request.Context(), subjectID, date, strings.ToLower(ctx.Query("format")))
	if err != nil {
		middleware.HandlePageError(ctx, err, sheetPath(subjectID, date.Format(models.DateLayout)))
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename))
	ctx.Data(http.StatusOK, export.ContentType, export.Data)
}

// FaceRecognition runs the external recognizer for the subject
func (c *AttendanceController) FaceRecognition(ctx *gin.Context) {
	subjectID, ok := parseIDParam(ctx, "subject_id")
	if !ok {
		return
	}
	back := sheetPath(subjectID, "")

	result, err := c.faceService.Run(ctx.Request.Context(), subjectID)
	if err != nil {
		middleware.HandlePageError(ctx, err, back)
		return
	}

	msg := fmt.Sprintf("Face recognition finished in %s.", result.Duration.Round(100*time.Millisecond))
	if result.Output != "" {
		msg += " " + result.Output
	}
	session.Success(ctx, msg)
	redirect(ctx, back)
}
