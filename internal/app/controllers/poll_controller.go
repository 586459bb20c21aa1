package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/middleware"
)

// PollController handles polls and votes. Live tallies are served by the
// websocket handler.
type PollController struct {
	pollService services.PollService
}

// NewPollController creates a new PollController
func NewPollController(pollService services.PollService) *PollController {
	return &PollController{pollService: pollService}
}

// CreatePoll creates one poll, or one per club for multi-club admin polls
// @Summary Create poll
// @Description Coordinators create club polls for their own club. Admins pick a scope; a club poll with several clubIds creates one poll per club.
// @Tags polls
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePollRequest true "Poll"
// @Success 201 {object} dto.APIResponse{data=[]dto.PollResponse} "Polls created"
// @Failure 400 {object} dto.ErrorResponse "Invalid scope or options"
// @Failure 403 {object} dto.ErrorResponse "Students cannot create polls"
// @Router /polls [post]
func (c *PollController) CreatePoll(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}

	var req dto.CreatePollRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	polls, err := c.pollService.CreatePoll(ctx.Request.Context(), caller, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewMessageResponse("Poll created successfully", polls))
}

// ListActivePolls lists the active polls the caller can vote on
// @Summary Active polls
// @Tags polls
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.PollResponse} "Active polls"
// @Router /polls/active [get]
func (c *PollController) ListActivePolls(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}

	polls, err := c.pollService.ListActivePolls(ctx.Request.Context(), caller)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(polls))
}

// ListManagedPolls lists polls the caller created, or every poll for admins
// @Summary Managed polls
// @Tags polls
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status" Enums(active, closed)
// @Param scope query string false "Filter by scope (admins)" Enums(club, coordinators, all)
// @Success 200 {object} dto.APIResponse{data=[]dto.PollResponse} "Polls"
// @Failure 403 {object} dto.ErrorResponse "Students cannot manage polls"
// @Router /polls/manage [get]
func (c *PollController) ListManagedPolls(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	status, ok := enumQuery(ctx, "status", models.PollStatus.Valid)
	if !ok {
		return
	}
	scope, ok := enumQuery(ctx, "scope", models.PollScope.Valid)
	if !ok {
		return
	}

	polls, err := c.pollService.ListManagedPolls(ctx.Request.Context(), caller, status, scope)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(polls))
}

// Vote records the caller's vote
// @Summary Vote
// @Tags polls
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Poll ID"
// @Param request body dto.VoteRequest true "Option"
// @Success 200 {object} dto.APIResponse{data=dto.PollResultsResponse} "Vote recorded"
// @Failure 400 {object} dto.ErrorResponse "Already voted or poll closed"
// @Failure 403 {object} dto.ErrorResponse "Poll not visible to the caller"
// @Failure 404 {object} dto.ErrorResponse "Poll or option not found"
// @Router /polls/{id}/vote [post]
func (c *PollController) Vote(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "poll")
	if !ok {
		return
	}

	var req dto.VoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	results, err := c.pollService.Vote(ctx.Request.Context(), caller, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Vote recorded", results))
}

// GetPollResults returns the current tally
// @Summary Poll results
// @Tags polls
// @Produce json
// @Security BearerAuth
// @Param id path int true "Poll ID"
// @Success 200 {object} dto.APIResponse{data=dto.PollResultsResponse} "Results"
// @Failure 403 {object} dto.ErrorResponse "Poll not visible to the caller"
// @Failure 404 {object} dto.ErrorResponse "Poll not found"
// @Router /polls/{id}/results [get]
func (c *PollController) GetPollResults(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "poll")
	if !ok {
		return
	}

	results, err := c.pollService.GetPollResults(ctx.Request.Context(), caller, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(results))
}

// ClosePoll stops accepting votes
// @Summary Close poll
// @Tags polls
// @Produce json
// @Security BearerAuth
// @Param id path int true "Poll ID"
// @Success 200 {object} dto.APIResponse{data=dto.PollResultsResponse} "Final results"
// @Failure 400 {object} dto.ErrorResponse "Already closed"
// @Failure 403 {object} dto.ErrorResponse "Not the creator"
// @Router /polls/{id}/close [put]
func (c *PollController) ClosePoll(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "poll")
	if !ok {
		return
	}

	results, err := c.pollService.ClosePoll(ctx.Request.Context(), caller, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Poll closed", results))
}

// DeletePoll removes a poll with its votes
// @Summary Delete poll
// @Tags polls
// @Produce json
// @Security BearerAuth
// @Param id path int true "Poll ID"
// @Success 200 {object} dto.APIResponse "Poll deleted"
// @Failure 403 {object} dto.ErrorResponse "Not the creator"
// @Router /polls/{id} [delete]
func (c *PollController) DeletePoll(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "poll")
	if !ok {
		return
	}

	if err := c.pollService.DeletePoll(ctx.Request.Context(), caller, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Poll deleted successfully", nil))
}
