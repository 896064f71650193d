package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/attendance-admin/internal/app/services"
	"github.com/yigit/attendance-admin/internal/app/views"
	"github.com/yigit/attendance-admin/internal/middleware"
)

// DashboardController serves the landing and help pages
type DashboardController struct {
	dashboardService services.DashboardService
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboardService services.DashboardService) *DashboardController {
	return &DashboardController{dashboardService: dashboardService}
}

// Dashboard renders the counters
func (c *DashboardController) Dashboard(ctx *gin.Context) {
	stats, err := c.dashboardService.Stats(ctx.Request.Context())
	if err != nil {
		middleware.HandlePageError(ctx, err, "")
		return
	}
	views.Render(ctx, http.StatusOK, "dashboard", views.Page{
		Title:  "Dashboard",
		Active: "dashboard",
		Data:   views.DashboardData{Stats: stats},
	})
}

// Documentation renders the static help page
func (c *DashboardController) Documentation(ctx *gin.Context) {
	views.Render(ctx, http.StatusOK, "documentation", views.Page{
		Title:  "Documentation",
		Active: "documentation",
	})
}
