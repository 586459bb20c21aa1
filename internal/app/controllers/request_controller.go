package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	appAuth "github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/middleware"
)

// RequestController handles join and leave requests
type RequestController struct {
	requestService services.MembershipRequestService
}

// NewRequestController creates a new RequestController
func NewRequestController(requestService services.MembershipRequestService) *RequestController {
	return &RequestController{requestService: requestService}
}

type openRequestFunc func(context.Context, appAuth.Caller, int64, *dto.MembershipRequestInput) (*dto.MembershipRequestResponse, error)

// RequestLeave asks the club's coordinator to remove the caller
// @Summary Request to leave a club
// @Tags membership-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Param request body dto.MembershipRequestInput false "Reason"
// @Success 201 {object} dto.APIResponse{data=dto.MembershipRequestResponse} "Request created"
// @Failure 400 {object} dto.ErrorResponse "Not a member"
// @Failure 404 {object} dto.ErrorResponse "Club or coordinator not found"
// @Failure 409 {object} dto.ErrorResponse "A pending request already exists"
// @Router /clubs/{id}/leave-request [post]
func (c *RequestController) RequestLeave(ctx *gin.Context) {
	c.open(ctx, c.requestService.RequestLeave, "Leave request submitted")
}

// RequestJoin asks the club's coordinator to add the caller
// @Summary Request to join a club
// @Tags membership-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Param request body dto.MembershipRequestInput false "Reason"
// @Success 201 {object} dto.APIResponse{data=dto.MembershipRequestResponse} "Request created"
// @Failure 404 {object} dto.ErrorResponse "Club or coordinator not found"
// @Failure 409 {object} dto.ErrorResponse "Already a member or request pending"
// @Router /clubs/{id}/join-request [post]
func (c *RequestController) RequestJoin(ctx *gin.Context) {
	c.open(ctx, c.requestService.RequestJoin, "Join request submitted")
}

func (c *RequestController) open(ctx *gin.Context, open openRequestFunc, message string) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	clubID, ok := parseIDParam(ctx, "id", "club")
	if !ok {
		return
	}

	var req dto.MembershipRequestInput
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			middleware.HandleValidationError(ctx, err)
			return
		}
	}

	created, err := open(ctx.Request.Context(), caller, clubID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewMessageResponse(message, created))
}

// ListClubRequests lists a club's requests
// @Summary List club requests
// @Tags membership-requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Param kind query string false "Request kind" Enums(join, leave)
// @Param status query string false "Request status" Enums(pending, approved, rejected)
// @Success 200 {object} dto.APIResponse{data=[]dto.MembershipRequestResponse} "Requests"
// @Failure 403 {object} dto.ErrorResponse "Not the club's coordinator"
// @Router /clubs/{id}/requests [get]
func (c *RequestController) ListClubRequests(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	clubID, ok := parseIDParam(ctx, "id", "club")
	if !ok {
		return
	}
	kind, ok := enumQuery(ctx, "kind", models.RequestKind.Valid)
	if !ok {
		return
	}
	status, ok := enumQuery(ctx, "status", models.RequestStatus.Valid)
	if !ok {
		return
	}

	requests, err := c.requestService.ListClubRequests(ctx.Request.Context(), caller, clubID, kind, status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(requests))
}

// MyRequests lists the caller's own requests
// @Summary My membership requests
// @Tags membership-requests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.MembershipRequestResponse} "Requests"
// @Router /clubs/requests/my [get]
func (c *RequestController) MyRequests(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}

	requests, err := c.requestService.MyRequests(ctx.Request.Context(), caller)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(requests))
}

// ResolveRequest approves or rejects a pending request
// @Summary Resolve membership request
// @Tags membership-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param requestId path int true "Request ID"
// @Param request body dto.ResolveRequestInput true "approve or reject"
// @Success 200 {object} dto.APIResponse{data=dto.MembershipRequestResponse} "Request resolved"
// @Failure 400 {object} dto.ErrorResponse "Invalid action or already processed"
// @Failure 403 {object} dto.ErrorResponse "Not the club's coordinator"
// @Router /clubs/requests/{requestId} [put]
func (c *RequestController) ResolveRequest(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "requestId", "request")
	if !ok {
		return
	}

	var req dto.ResolveRequestInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resolved, err := c.requestService.ResolveRequest(ctx.Request.Context(), caller, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Request "+string(resolved.Status), resolved))
}
