package views

import (
	"html/template"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"github.com/yigit/attendance-admin/internal/app/models"
	"github.com/yigit/attendance-admin/internal/app/models/dto"
	"github.com/yigit/attendance-admin/internal/app/session"
)

// Page is the data every template receives. Data carries the page specific view model.
type Page struct {
	Title       string
	Active      string
	CurrentUser *models.User
	Flashes     []dto.Flash
	CSRFField   template.HTML
	CSRFToken   string
	Data        any
}

// CanManage reports whether user and student management links are shown
func (p Page) CanManage() bool {
	return p.CurrentUser.IsSuperAdmin()
}

// Render fills the request scoped fields of page and renders the named template
func Render(c *gin.Context, status int, name string, page Page) {
	page.CurrentUser = session.CurrentUser(c)
	page.Flashes = session.Flashes(c)
	page.CSRFField = csrf.TemplateField(c.Request)
	page.CSRFToken = csrf.Token(c.Request)
	c.HTML(status, name, page)
}

// ErrorPage renders the error template with status
func ErrorPage(c *gin.Context, status int, message string) {
	Render(c, status, "error", Page{
		Title: "Error",
		Data:  ErrorData{Status: status, Message: message},
	})
}

// LoginData backs the login form
type LoginData struct {
	Username string
	Next     string
}

// DashboardData backs the dashboard counters
type DashboardData struct {
	Stats *dto.DashboardStats
}

// SubjectsData lists subjects on the attendance and subject pages
type SubjectsData struct {
	Subjects []*models.Subject
}

// AttendanceData backs the attendance sheet of one subject session
type AttendanceData struct {
	Sheet           *dto.AttendanceSheet
	Date            string
	FaceRecognition bool
}

// EnrollmentData backs the enrollment search. Searched without Result is the not found branch.
type EnrollmentData struct {
	Query    string
	Searched bool
	Result   *dto.StudentEnrollments
	Statuses []models.EnrollmentStatus
}

// AddEnrollmentData lists the subjects a student can still join
type AddEnrollmentData struct {
	Student  *models.Student
	Subjects []*models.Subject
}

// UsersData backs the user management list
type UsersData struct {
	Users []*models.User
}

// StudentsData backs the student management list
type StudentsData struct {
	Students []*models.Student
}

// UserFormData backs the add and edit user forms
type UserFormData struct {
	Action  string
	Editing bool
	Form    dto.UserForm
	Roles   []models.RoleType
	Errors  []string
}

// StudentFormData backs the add and edit student forms
type StudentFormData struct {
	Action    string
	Editing   bool
	Form      dto.StudentForm
	Faculties []*models.Faculty
	Errors    []string
}

// FacesData backs the face upload form
type FacesData struct {
	Student *models.Student
}

// SubjectFormData backs the add and edit subject forms
type SubjectFormData struct {
	Action    string
	Editing   bool
	Form      dto.SubjectForm
	Faculties []*models.Faculty
	Errors    []string
}

// ProfileData backs the profile page
type ProfileData struct {
	Form   dto.ProfileForm
	Role   models.RoleType
	Errors []string
}

// ErrorData backs the error page
type ErrorData struct {
	Status  int
	Message string
}
