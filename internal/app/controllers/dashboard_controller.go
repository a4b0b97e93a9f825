package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/stayease/stayease-api/internal/app/services"
	"github.com/stayease/stayease-api/internal/middleware"
)

// DashboardController serves the per-role overview screens
type DashboardController struct {
	dashboardService *services.DashboardService
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboardService *services.DashboardService) *DashboardController {
	return &DashboardController{dashboardService: dashboardService}
}

// GetAdminDashboard
// @Summary Admin dashboard
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AdminDashboard}
// @Router /dashboard/admin [get]
func (c *DashboardController) GetAdminDashboard(ctx *gin.Context) {
	stats, err := c.dashboardService.Admin(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, stats)
}

// GetStaffDashboard
// @Summary Staff dashboard
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.StaffDashboard}
// @Router /dashboard/staff [get]
func (c *DashboardController) GetStaffDashboard(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	stats, err := c.dashboardService.Staff(ctx.Request.Context(), actor.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, stats)
}

// GetResidentDashboard
// @Summary Resident dashboard
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ResidentDashboard}
// @Router /dashboard/resident [get]
func (c *DashboardController) GetResidentDashboard(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	stats, err := c.dashboardService.Resident(ctx.Request.Context(), actor.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, stats)
}
