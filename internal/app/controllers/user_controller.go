package controllers

import (
	"net/http"
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

const usersPath = "/management"

// UserController handles administrative account management
type UserController struct {
	userService services.UserService
}

// NewUserController creates a new UserController
func NewUserController(userService services.UserService) *UserController {
	return &UserController{userService: userService}
}

// List renders every account
func (c *UserController) List(ctx *gin.Context) {
	users, err := c.userService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandlePageError(ctx, err, "")
		return
	}
	views.Render(ctx, http.StatusOK, "management", views.Page{
		Title:  "User Management",
		Active: "users",
		Data:   views.UsersData{Users: users},
	})
}

// ShowCreate renders an empty account form
func (c *UserController) ShowCreate(ctx *gin.Context) {
	c.renderForm(ctx, http.StatusOK, views.UserFormData{
		Action: "/management/users/add",
		Form:   dto.UserForm{Role: string(models.RoleAdmin)},
	})
}

// Create adds an account
func (c *UserController) Create(ctx *gin.Context) {
	data := views.UserFormData{Action: "/management/users/add"}
	if errs := middleware.BindForm(ctx, &data.Form); errs != nil {
		data.Errors = errs
		c.renderForm(ctx, http.StatusBadRequest, data)
		return
	}

	user, err := c.userService.Create(ctx.Request.Context(), data.Form)
	if err != nil {
		c.formError(ctx, err, data)
		return
	}
	session.Success(ctx, "User "+user.Username+" created successfully.")
	redirect(ctx, usersPath)
}

// ShowEdit renders the form of an existing account
func (c *UserController) ShowEdit(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	user, err := c.userService.GetEditable(ctx.Request.Context(), session.CurrentUser(ctx), id)
	if err != nil {
		middleware.HandlePageError(ctx, err, usersPath)
		return
	}
	c.renderForm(ctx, http.StatusOK, views.UserFormData{
		Action:  editUserPath(id),
		Editing: true,
		Form: dto.UserForm{
			Username:  user.Username,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
			Role:      string(user.Role),
		},
	})
}

// Update saves an existing account. A blank password keeps the old one.
func (c *UserController) Update(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	data := views.UserFormData{Action: editUserPath(id), Editing: true}
	if errs := middleware.BindForm(ctx, &data.Form); errs != nil {
		data.Errors = errs
		c.renderForm(ctx, http.StatusBadRequest, data)
		return
	}

	user, err := c.userService.Update(ctx.Request.Context(), session.CurrentUser(ctx), id, data.Form)
	if err != nil {
		c.formError(ctx, err, data)
		return
	}
	session.Success(ctx, "User "+user.Username+" updated successfully.")
	redirect(ctx, usersPath)
}

// Delete removes an account
func (c *UserController) Delete(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.userService.Delete(ctx.Request.Context(), session.CurrentUser(ctx), id); err != nil {
		middleware.HandlePageError(ctx, err, usersPath)
		return
	}
	session.Success(ctx, "User deleted successfully.")
	redirect(ctx, usersPath)
}

func editUserPath(id int64) string {
	return "/management/users/" + strconv.FormatInt(id, 10) + "/edit"
}

// formError re-renders the form for errors the user can fix and delegates the rest
func (c *UserController) formError(ctx *gin.Context, err error, data views.UserFormData) {
	status := middleware.StatusFor(err)
	if status != http.StatusBadRequest && status != http.StatusConflict {
		middleware.HandlePageError(ctx, err, usersPath)
		return
	}
	data.Form.Password = ""
	data.Errors = []string{apperrors.UserMessage(err)}
	c.renderForm(ctx, status, data)
}

func (c *UserController) renderForm(ctx *gin.Context, status int, data views.UserFormData) {
	data.Roles = models.Roles
	title := "Add user"
	if data.Editing {
		title = "Edit user"
	}
	views.Render(ctx, status, "user_form", views.Page{
		Title:  title,
		Active: "users",
		Data:   data,
	})
}
