package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/middleware"
)

// AnalyticsController serves the dashboards
type AnalyticsController struct {
	analyticsService services.AnalyticsService
}

// NewAnalyticsController creates a new AnalyticsController
func NewAnalyticsController(analyticsService services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analyticsService: analyticsService}
}

// AdminDashboard returns platform wide aggregates
// @Summary Admin dashboard
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AdminDashboardResponse} "Dashboard"
// @Failure 403 {object} dto.ErrorResponse "Admins only"
// @Router /analytics/admin [get]
func (c *AnalyticsController) AdminDashboard(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}

	stats, err := c.analyticsService.AdminDashboard(ctx.Request.Context(), caller)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stats))
}

// ClubDashboard returns one club's aggregates
// @Summary Club dashboard
// @Description Coordinators get their own club. Admins pass clubId.
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param clubId query int false "Club (required for admins)"
// @Success 200 {object} dto.APIResponse{data=dto.ClubDashboardResponse} "Dashboard"
// @Failure 404 {object} dto.ErrorResponse "Club not found"
// @Router /analytics/club [get]
func (c *AnalyticsController) ClubDashboard(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	clubID, ok := optionalIDQuery(ctx, "clubId")
	if !ok {
		return
	}

	stats, err := c.analyticsService.ClubDashboard(ctx.Request.Context(), caller, clubID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stats))
}
