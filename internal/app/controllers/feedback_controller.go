package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/middleware"
)

// FeedbackController handles feedback submission and escalation
type FeedbackController struct {
	feedbackService services.FeedbackService
}

// NewFeedbackController creates a new FeedbackController
func NewFeedbackController(feedbackService services.FeedbackService) *FeedbackController {
	return &FeedbackController{feedbackService: feedbackService}
}

// Submit sends feedback
// @Summary Submit feedback
// @Description Students send feedback to a club they belong to. Coordinators send feedback to the admins.
// @Tags feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitFeedbackRequest true "Feedback"
// @Success 201 {object} dto.APIResponse{data=dto.FeedbackResponse} "Feedback submitted"
// @Failure 403 {object} dto.ErrorResponse "Not a member of the club"
// @Router /feedback [post]
func (c *FeedbackController) Submit(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}

	var req dto.SubmitFeedbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	item, err := c.feedbackService.Submit(ctx.Request.Context(), caller, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewMessageResponse("Feedback submitted successfully", item))
}

// ListClubFeedback lists feedback addressed to a club
// @Summary Club feedback
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Param clubId query int false "Club (required for admins)"
// @Param status query string false "Filter by status" Enums(pending, resolved, solved, escalated, forward_admin)
// @Success 200 {object} dto.APIResponse{data=[]dto.FeedbackResponse} "Feedback"
// @Router /feedback/club [get]
func (c *FeedbackController) ListClubFeedback(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	clubID, ok := optionalIDQuery(ctx, "clubId")
	if !ok {
		return
	}
	status, ok := enumQuery(ctx, "status", models.FeedbackStatus.Valid)
	if !ok {
		return
	}

	items, err := c.feedbackService.ListClubFeedback(ctx.Request.Context(), caller, clubID, status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(items))
}

// ListAdminFeedback lists feedback addressed to the admins
// @Summary Admin feedback
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status" Enums(pending, resolved, solved, escalated, forward_admin)
// @Success 200 {object} dto.APIResponse{data=[]dto.FeedbackResponse} "Feedback"
// @Failure 403 {object} dto.ErrorResponse "Admins only"
// @Router /feedback/admin [get]
func (c *FeedbackController) ListAdminFeedback(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	status, ok := enumQuery(ctx, "status", models.FeedbackStatus.Valid)
	if !ok {
		return
	}

	items, err := c.feedbackService.ListAdminFeedback(ctx.Request.Context(), caller, status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(items))
}

// MyFeedback lists the feedback the caller submitted
// @Summary My feedback
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.FeedbackResponse} "Feedback"
// @Router /feedback/my [get]
func (c *FeedbackController) MyFeedback(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}

	items, err := c.feedbackService.MyFeedback(ctx.Request.Context(), caller)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(items))
}

// Act resolves, solves, forwards or escalates a feedback item
// @Summary Act on feedback
// @Description Coordinators: resolve, solve, forward. Admins: resolve, escalate.
// @Tags feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Feedback ID"
// @Param request body dto.FeedbackActionRequest true "Action"
// @Success 200 {object} dto.APIResponse{data=dto.FeedbackResponse} "Feedback updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid action or already handled"
// @Failure 403 {object} dto.ErrorResponse "Not addressed to the caller"
// @Router /feedback/{id}/action [put]
func (c *FeedbackController) Act(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "feedback")
	if !ok {
		return
	}

	var req dto.FeedbackActionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	item, err := c.feedbackService.Act(ctx.Request.Context(), caller, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Feedback "+string(item.Status), item))
}
