package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/middleware"
)

// EventController handles event proposals, review and registration
type EventController struct {
	eventService services.EventService
}

// NewEventController creates a new EventController
func NewEventController(eventService services.EventService) *EventController {
	return &EventController{eventService: eventService}
}

// ListEvents lists the events visible to the caller
// @Summary List events
// @Description Students see approved events. Coordinators also see every event of their own club.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param clubId query int false "Filter by club"
// @Param status query string false "Filter by status" Enums(pending, approved, rejected)
// @Success 200 {object} dto.APIResponse{data=[]dto.EventResponse} "Events"
// @Router /events [get]
func (c *EventController) ListEvents(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	clubID, ok := optionalIDQuery(ctx, "clubId")
	if !ok {
		return
	}
	status, ok := enumQuery(ctx, "status", models.EventStatus.Valid)
	if !ok {
		return
	}

	events, err := c.eventService.ListEvents(ctx.Request.Context(), caller, dto.EventFilterRequest{ClubID: clubID, Status: status})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(events))
}

// ListPendingEvents lists events waiting for review
// @Summary Pending events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.EventResponse} "Pending events"
// @Failure 403 {object} dto.ErrorResponse "Admins only"
// @Router /events/pending [get]
func (c *EventController) ListPendingEvents(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}

	events, err := c.eventService.ListPendingEvents(ctx.Request.Context(), caller)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(events))
}

// MyEvents lists the events the caller registered for
// @Summary My events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.EventResponse} "Registered events"
// @Router /events/my [get]
func (c *EventController) MyEvents(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}

	events, err := c.eventService.MyEvents(ctx.Request.Context(), caller)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(events))
}

// GetEvent returns one event
// @Summary Get event by ID
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=dto.EventResponse} "Event"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [get]
func (c *EventController) GetEvent(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "event")
	if !ok {
		return
	}

	event, err := c.eventService.GetEvent(ctx.Request.Context(), caller, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(event))
}

// CreateEvent proposes an event for the coordinator's club
// @Summary Propose event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateEventRequest true "Event"
// @Success 201 {object} dto.APIResponse{data=dto.EventResponse} "Event proposed"
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Failure 403 {object} dto.ErrorResponse "Coordinators only"
// @Router /events [post]
func (c *EventController) CreateEvent(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}

	var req dto.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	event, err := c.eventService.CreateEvent(ctx.Request.Context(), caller, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewMessageResponse("Event submitted for approval", event))
}

// UpdateEvent edits a pending event
// @Summary Update event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body dto.UpdateEventRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.EventResponse} "Event updated"
// @Failure 400 {object} dto.ErrorResponse "Event is not pending"
// @Failure 403 {object} dto.ErrorResponse "Not the creator"
// @Router /events/{id} [put]
func (c *EventController) UpdateEvent(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "event")
	if !ok {
		return
	}

	var req dto.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	event, err := c.eventService.UpdateEvent(ctx.Request.Context(), caller, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Event updated successfully", event))
}

// DeleteEvent withdraws a pending event
// @Summary Delete event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse "Event deleted"
// @Failure 400 {object} dto.ErrorResponse "Event is not pending"
// @Router /events/{id} [delete]
func (c *EventController) DeleteEvent(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "event")
	if !ok {
		return
	}

	if err := c.eventService.DeleteEvent(ctx.Request.Context(), caller, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Event deleted successfully", nil))
}

// ReviewEvent approves or rejects a pending event
// @Summary Review event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body dto.ReviewEventRequest true "approve or reject"
// @Success 200 {object} dto.APIResponse{data=dto.EventResponse} "Event reviewed"
// @Failure 400 {object} dto.ErrorResponse "Already reviewed"
// @Failure 403 {object} dto.ErrorResponse "Admins only"
// @Router /events/{id}/review [put]
func (c *EventController) ReviewEvent(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "event")
	if !ok {
		return
	}

	var req dto.ReviewEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	event, err := c.eventService.ReviewEvent(ctx.Request.Context(), caller, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Event "+string(event.Status), event))
}

// Register signs the caller up for an approved event
// @Summary Register for event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 201 {object} dto.APIResponse "Registered"
// @Failure 400 {object} dto.ErrorResponse "Event not open for registration"
// @Failure 409 {object} dto.ErrorResponse "Already registered"
// @Router /events/{id}/register [post]
func (c *EventController) Register(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "event")
	if !ok {
		return
	}

	if err := c.eventService.Register(ctx.Request.Context(), caller, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewMessageResponse("Registered for event", nil))
}

// Unregister cancels the caller's registration
// @Summary Unregister from event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse "Unregistered"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id}/register [delete]
func (c *EventController) Unregister(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "event")
	if !ok {
		return
	}

	if err := c.eventService.Unregister(ctx.Request.Context(), caller, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Unregistered from event", nil))
}

// ListRegistrations lists who registered for an event
// @Summary Event registrations
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.RegistrationResponse} "Registrations"
// @Failure 403 {object} dto.ErrorResponse "Not the club's coordinator"
// @Router /events/{id}/registrations [get]
func (c *EventController) ListRegistrations(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "event")
	if !ok {
		return
	}

	registrations, err := c.eventService.ListRegistrations(ctx.Request.Context(), caller, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(registrations))
}
