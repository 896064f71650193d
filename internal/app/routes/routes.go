package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/attendance-admin/internal/app/controllers"
	"github.com/yigit/attendance-admin/internal/app/views"
	"github.com/yigit/attendance-admin/internal/middleware"
)

// Controllers groups every page controller the router dispatches to
type Controllers struct {
	Auth       *controllers.AuthController
	Dashboard  *controllers.DashboardController
	Attendance *controllers.AttendanceController
	Enrollment *controllers.EnrollmentController
	Subject    *controllers.SubjectController
	User       *controllers.UserController
	Student    *controllers.StudentController
	Profile    *controllers.ProfileController
}

// SetupRouter configures all application routes. uploadsDir is served
// under /uploads for stored face images, to logged-in users only.
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware, uploadsDir string) {
	router.StaticFS("/static", views.StaticFS())

	// --- Public routes ---
	router.GET("/login", c.Auth.ShowLogin)
	router.POST("/login", c.Auth.Login)
	// Logout answers the fetch call of the layout, so it never redirects to the login page
	router.POST("/logout", c.Auth.Logout)

	router.GET("/health", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "ok")
	})

	// --- Authenticated routes ---
	authenticated := router.Group("")
	authenticated.Use(authMiddleware.RequireLogin())
	{
		authenticated.Static("/uploads", uploadsDir)

		authenticated.GET("/", func(ctx *gin.Context) {
			ctx.Redirect(http.StatusSeeOther, controllers.DefaultLandingPath)
		})
		authenticated.GET("/dashboard", c.Dashboard.Dashboard)
		authenticated.GET("/documentation", c.Dashboard.Documentation)

		attendance := authenticated.Group("/attendance")
		{
			attendance.GET("", c.Attendance.List)
			attendance.GET("/:subject_id", c.Attendance.Sheet)
			attendance.POST("/:subject_id", c.Attendance.Toggle)
			attendance.GET("/:subject_id/export", c.Attendance.Export)
			attendance.POST("/:subject_id/face-recognition", c.Attendance.FaceRecognition)
		}

		enrollment := authenticated.Group("/enrollment")
		{
			enrollment.GET("", c.Enrollment.Index)
			enrollment.POST("", c.Enrollment.Search)
			enrollment.GET("/add/:student_id", c.Enrollment.ShowAdd)
			enrollment.POST("/add/:student_id", c.Enrollment.Add)
			enrollment.POST("/:id/delete", c.Enrollment.Delete)
			enrollment.POST("/:id/status", c.Enrollment.ChangeStatus)
		}

		subjects := authenticated.Group("/subject")
		{
			subjects.GET("", c.Subject.List)
			subjects.GET("/add", c.Subject.ShowCreate)
			subjects.POST("/add", c.Subject.Create)
			subjects.GET("/:id/edit", c.Subject.ShowEdit)
			subjects.POST("/:id/edit", c.Subject.Update)
			subjects.POST("/:id/delete", c.Subject.Delete)
		}

		authenticated.GET("/profile", c.Profile.Show)
		authenticated.POST("/profile/update", c.Profile.Update)

		// Super Admin only
		management := authenticated.Group("/management")
		management.Use(authMiddleware.RequireSuperAdmin())
		{
			management.GET("", c.User.List)
			management.GET("/users/add", c.User.ShowCreate)
			management.POST("/users/add", c.User.Create)
			management.GET("/users/:id/edit", c.User.ShowEdit)
			management.POST("/users/:id/edit", c.User.Update)
			management.POST("/users/:id/delete", c.User.Delete)

			management.GET("/students", c.Student.List)
			management.GET("/students/add", c.Student.ShowCreate)
			management.POST("/students/add", c.Student.Create)
			management.POST("/students/import", c.Student.Import)
			management.GET("/students/:id/edit", c.Student.ShowEdit)
			management.POST("/students/:id/edit", c.Student.Update)
			management.POST("/students/:id/delete", c.Student.Delete)
			management.GET("/students/:id/faces", c.Student.ShowFaces)
			management.POST("/students/:id/faces", c.Student.AddFaces)
		}
	}

	router.NoRoute(func(ctx *gin.Context) {
		views.ErrorPage(ctx, http.StatusNotFound, "Page not found.")
	})
}
