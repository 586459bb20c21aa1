package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/middleware"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/helpers"
)

const (
	logoFormField = "logo"
	dataFormField = "data"
)

// ClubController handles clubs, their rosters and enrollment
type ClubController struct {
	clubService services.ClubService
	logger      zerolog.Logger
}

// NewClubController creates a new ClubController
func NewClubController(clubService services.ClubService, logger zerolog.Logger) *ClubController {
	return &ClubController{
		clubService: clubService,
		logger:      logger,
	}
}

// ListClubs returns one page of clubs
// @Summary List clubs
// @Tags clubs
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search by name"
// @Param page query int false "Page number (1-based)" default(1) minimum(1)
// @Param size query int false "Page size (max 100)" default(20) minimum(1) maximum(100)
// @Success 200 {object} dto.APIResponse{data=dto.ClubListResponse} "Clubs retrieved"
// @Router /clubs [get]
func (c *ClubController) ListClubs(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	clubs, err := c.clubService.ListClubs(ctx.Request.Context(), caller, strings.TrimSpace(ctx.Query("search")), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(clubs))
}

// GetClub returns one club
// @Summary Get club by ID
// @Description The club key is only included for the club's coordinator and admins.
// @Tags clubs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Success 200 {object} dto.APIResponse{data=dto.ClubResponse} "Club retrieved"
// @Failure 404 {object} dto.ErrorResponse "Club not found"
// @Router /clubs/{id} [get]
func (c *ClubController) GetClub(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "club")
	if !ok {
		return
	}

	club, err := c.clubService.GetClub(ctx.Request.Context(), caller, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(club))
}

// CreateClub creates a club
// @Summary Create club
// @Description Admin only. Send JSON, or multipart/form-data with the JSON body in "data" and an optional "logo" image.
// @Tags clubs
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateClubRequest true "Club"
// @Success 201 {object} dto.APIResponse{data=dto.ClubResponse} "Club created"
// @Failure 400 {object} dto.ErrorResponse "Validation error or bad image"
// @Failure 403 {object} dto.ErrorResponse "Admins only"
// @Failure 409 {object} dto.ErrorResponse "Club name taken"
// @Router /clubs [post]
func (c *ClubController) CreateClub(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}

	var req dto.CreateClubRequest
	logo, ok := c.bindClubBody(ctx, &req)
	if !ok {
		return
	}

	club, err := c.clubService.CreateClub(ctx.Request.Context(), caller, &req, logo)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewMessageResponse("Club created successfully", club))
}

// bindClubBody binds a JSON body, or the "data" field and "logo" file of a
// multipart form.
func (c *ClubController) bindClubBody(ctx *gin.Context, req any) (*multipart.FileHeader, bool) {
	if ctx.ContentType() != binding.MIMEMultipartPOSTForm {
		if err := ctx.ShouldBindJSON(req); err != nil {
			middleware.HandleValidationError(ctx, err)
			return nil, false
		}
		return nil, true
	}

	if err := binding.JSON.BindBody([]byte(ctx.PostForm(dataFormField)), req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return nil, false
	}
	logo, err := ctx.FormFile(logoFormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, true
		}
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("Invalid logo upload"))
		return nil, false
	}
	return logo, true
}

// UpdateClub edits a club
// @Summary Update club
// @Tags clubs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Param request body dto.UpdateClubRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.ClubResponse} "Club updated"
// @Failure 403 {object} dto.ErrorResponse "Not the club's coordinator"
// @Router /clubs/{id} [put]
func (c *ClubController) UpdateClub(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "club")
	if !ok {
		return
	}

	var req dto.UpdateClubRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	club, err := c.clubService.UpdateClub(ctx.Request.Context(), caller, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Club updated successfully", club))
}

// DeleteClub removes a club
// @Summary Delete club
// @Tags clubs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Success 200 {object} dto.APIResponse "Club deleted"
// @Failure 403 {object} dto.ErrorResponse "Admins only"
// @Failure 404 {object} dto.ErrorResponse "Club not found"
// @Router /clubs/{id} [delete]
func (c *ClubController) DeleteClub(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "club")
	if !ok {
		return
	}

	if err := c.clubService.DeleteClub(ctx.Request.Context(), caller, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Club deleted successfully", nil))
}

// UploadLogo replaces a club's logo
// @Summary Upload club logo
// @Tags clubs
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Param logo formData file true "PNG, JPEG, GIF or WebP image"
// @Success 200 {object} dto.APIResponse{data=dto.ClubResponse} "Logo uploaded"
// @Failure 400 {object} dto.ErrorResponse "Missing or invalid image"
// @Router /clubs/{id}/logo [post]
func (c *ClubController) UploadLogo(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "club")
	if !ok {
		return
	}

	logo, err := ctx.FormFile(logoFormField)
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("No file uploaded"))
		return
	}

	club, err := c.clubService.UploadLogo(ctx.Request.Context(), caller, id, logo)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Logo uploaded successfully", club))
}

// Join adds the calling student to a club
// @Summary Join club with key
// @Tags clubs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Param request body dto.JoinClubRequest true "Club key"
// @Success 200 {object} dto.APIResponse{data=dto.ClubResponse} "Joined"
// @Failure 400 {object} dto.ErrorResponse "Enrollment closed or invalid key"
// @Failure 409 {object} dto.ErrorResponse "Already a member"
// @Router /clubs/{id}/join [post]
func (c *ClubController) Join(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "club")
	if !ok {
		return
	}

	var req dto.JoinClubRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	club, err := c.clubService.Join(ctx.Request.Context(), caller, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Successfully joined the club", club))
}

// Enroll joins a club and backfills year and branch
// @Summary Enroll in club
// @Tags clubs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Param request body dto.EnrollRequest true "Club key and academic details"
// @Success 200 {object} dto.APIResponse{data=dto.ClubResponse} "Enrolled"
// @Failure 400 {object} dto.ErrorResponse "Enrollment closed or invalid key"
// @Failure 409 {object} dto.ErrorResponse "Already a member"
// @Router /clubs/{id}/enroll [post]
func (c *ClubController) Enroll(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "club")
	if !ok {
		return
	}

	var req dto.EnrollRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	club, err := c.clubService.Enroll(ctx.Request.Context(), caller, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Successfully enrolled in the club", club))
}

// ToggleEnrollment flips whether a club accepts members
// @Summary Toggle enrollment
// @Tags clubs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Success 200 {object} dto.APIResponse{data=dto.EnrollmentResponse} "New enrollment state"
// @Failure 403 {object} dto.ErrorResponse "Not the club's coordinator"
// @Router /clubs/{id}/enrollment [patch]
func (c *ClubController) ToggleEnrollment(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "club")
	if !ok {
		return
	}

	state, err := c.clubService.ToggleEnrollment(ctx.Request.Context(), caller, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	message := "Enrollment closed"
	if state.EnrollmentOpen {
		message = "Enrollment opened"
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse(message, state))
}

// ListMembers returns a club roster
// @Summary List club members
// @Tags clubs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.MemberResponse} "Members"
// @Failure 403 {object} dto.ErrorResponse "Not the club's coordinator"
// @Router /clubs/{id}/members [get]
func (c *ClubController) ListMembers(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "club")
	if !ok {
		return
	}

	members, err := c.clubService.ListMembers(ctx.Request.Context(), caller, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(members))
}

// AddMember adds a student to a club by roll number
// @Summary Add club member
// @Tags clubs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Param request body dto.AddMemberRequest true "Student roll number"
// @Success 201 {object} dto.APIResponse "Member added"
// @Failure 404 {object} dto.ErrorResponse "No user with this roll number"
// @Failure 409 {object} dto.ErrorResponse "Already a member"
// @Router /clubs/{id}/members [post]
func (c *ClubController) AddMember(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "club")
	if !ok {
		return
	}

	var req dto.AddMemberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	if err := c.clubService.AddMember(ctx.Request.Context(), caller, id, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewMessageResponse("Member added successfully", nil))
}

// RemoveMember removes a student from a club
// @Summary Remove club member
// @Tags clubs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Param userId path int true "User ID"
// @Success 200 {object} dto.APIResponse "Member removed"
// @Failure 404 {object} dto.ErrorResponse "Not a member"
// @Router /clubs/{id}/members/{userId} [delete]
func (c *ClubController) RemoveMember(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "club")
	if !ok {
		return
	}
	userID, ok := parseIDParam(ctx, "userId", "user")
	if !ok {
		return
	}

	if err := c.clubService.RemoveMember(ctx.Request.Context(), caller, id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Member removed successfully", nil))
}

// MyClubs lists the clubs the caller has joined
// @Summary My clubs
// @Tags clubs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ClubResponse} "Joined clubs"
// @Router /clubs/my [get]
func (c *ClubController) MyClubs(ctx *gin.Context) {
	caller, ok := callerOf(ctx)
	if !ok {
		return
	}

	clubs, err := c.clubService.MyClubs(ctx.Request.Context(), caller)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(clubs))
}
