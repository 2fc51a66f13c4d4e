package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nexasuite/powerup/internal/app/models/dto"
	"github.com/nexasuite/powerup/internal/app/services"
	"github.com/nexasuite/powerup/internal/middleware"
)

// CommunityController handles community and membership operations
type CommunityController struct {
	membershipService services.MembershipService
}

// NewCommunityController creates a new CommunityController
func NewCommunityController(membershipService services.MembershipService) *CommunityController {
	return &CommunityController{
		membershipService: membershipService,
	}
}

// parseIDParam reads a numeric path parameter, answering 400 on garbage
func parseIDParam(ctx *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+label)
		errorDetail = errorDetail.WithDetails(label + " must be a valid number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// requireProfileID reads the authenticated profile from the request
// context, answering 401 when it is missing
func requireProfileID(ctx *gin.Context) (int64, bool) {
	profileID, ok := middleware.ProfileID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "User not authenticated")))
		return 0, false
	}
	return profileID, true
}

// CreateCommunity handles creating a new community
// @Summary Create a community
// @Description Creates a community with an optional avatar image. The creator becomes both admin and member, and a six-character join code is generated.
// @Tags communities
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param name formData string true "Community name"
// @Param description formData string false "Community description"
// @Param avatar formData file false "Community avatar (single image file)"
// @Success 201 {object} dto.APIResponse{data=dto.CommunityResponse} "Community created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities [post]
func (c *CommunityController) CreateCommunity(ctx *gin.Context) {
	profileID, ok := requireProfileID(ctx)
	if !ok {
		return
	}

	var req dto.CreateCommunityRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	var avatar *multipart.FileHeader
	if file, err := ctx.FormFile("avatar"); err == nil {
		avatar = file
	} else if !errors.Is(err, http.ErrMissingFile) {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid avatar upload")))
		return
	}

	community, err := c.membershipService.CreateCommunity(ctx, profileID, &req, avatar)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(community))
}

// GetCommunity handles retrieving a community by ID
// @Summary Get community by ID
// @Description Retrieves a community with its admins and members
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Success 200 {object} dto.APIResponse{data=dto.CommunityResponse} "Community retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid community ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities/{id} [get]
func (c *CommunityController) GetCommunity(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Community ID")
	if !ok {
		return
	}

	community, err := c.membershipService.GetCommunity(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(community))
}

// ListCommunities handles retrieving the authenticated user's communities
// @Summary List my communities
// @Description Retrieves all communities the authenticated user belongs to
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.CommunityResponse} "Communities retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities [get]
func (c *CommunityController) ListCommunities(ctx *gin.Context) {
	profileID, ok := requireProfileID(ctx)
	if !ok {
		return
	}

	communities, err := c.membershipService.ListCommunities(ctx, profileID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(communities))
}

// DeleteCommunity handles deleting a community
// @Summary Delete a community
// @Description Deletes a community with all its challenges and memberships. Admin only.
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Success 200 {object} dto.APIResponse "Community deleted successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid community ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Only admins may delete a community"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities/{id} [delete]
func (c *CommunityController) DeleteCommunity(ctx *gin.Context) {
	profileID, ok := requireProfileID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Community ID")
	if !ok {
		return
	}

	if err := c.membershipService.DeleteCommunity(ctx, profileID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Community deleted successfully"))
}

// JoinByCode handles joining a community with its join code
// @Summary Join a community by code
// @Description Joins the community matching the six-character join code. Members removed by an admin cannot re-join this way.
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.JoinByCodeRequest true "Join request"
// @Success 200 {object} dto.APIResponse{data=dto.CommunityResponse} "Joined successfully"
// @Failure 400 {object} dto.ErrorResponse "Unknown join code"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 409 {object} dto.ErrorResponse "Already a member or previously removed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities/join [post]
func (c *CommunityController) JoinByCode(ctx *gin.Context) {
	profileID, ok := requireProfileID(ctx)
	if !ok {
		return
	}

	var req dto.JoinByCodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	community, err := c.membershipService.JoinByCode(ctx, profileID, req.Code)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(community))
}

// ExitCommunity handles a member leaving a community voluntarily
// @Summary Leave a community
// @Description Removes the authenticated user from the community. Leaving voluntarily does not block re-joining by code.
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Success 200 {object} dto.APIResponse "Left the community"
// @Failure 400 {object} dto.ErrorResponse "Not a member of this community"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities/{id}/exit [post]
func (c *CommunityController) ExitCommunity(ctx *gin.Context) {
	profileID, ok := requireProfileID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Community ID")
	if !ok {
		return
	}

	if err := c.membershipService.ExitCommunity(ctx, profileID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Left the community"))
}

// AddMember handles an admin adding a member by username
// @Summary Add a member
// @Description Adds a user to the community by username. Admin only; also re-admits members previously removed.
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param request body dto.AddMemberRequest true "Member to add"
// @Success 200 {object} dto.APIResponse "Member added successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Only admins may add members"
// @Failure 404 {object} dto.ErrorResponse "Community or user not found"
// @Failure 409 {object} dto.ErrorResponse "Already a member"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities/{id}/members [post]
func (c *CommunityController) AddMember(ctx *gin.Context) {
	profileID, ok := requireProfileID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Community ID")
	if !ok {
		return
	}

	var req dto.AddMemberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	if err := c.membershipService.AddMember(ctx, profileID, id, req.Username); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Member added successfully"))
}

// RemoveMember handles an admin removing a member
// @Summary Remove a member
// @Description Removes a member from the community and blocks them from re-joining by code. Admin only; admins cannot be removed this way.
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param request body dto.RemoveMemberRequest true "Member to remove"
// @Success 200 {object} dto.APIResponse "Member removed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Only admins may remove members"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Failure 409 {object} dto.ErrorResponse "Target is an admin"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities/{id}/members/remove [post]
func (c *CommunityController) RemoveMember(ctx *gin.Context) {
	profileID, ok := requireProfileID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Community ID")
	if !ok {
		return
	}

	var req dto.RemoveMemberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	if err := c.membershipService.RemoveMember(ctx, profileID, id, req.ProfileID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Member removed successfully"))
}

// AddAdmin handles promoting a member to admin
// @Summary Add an admin
// @Description Promotes an existing member to community admin. Admin only.
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param request body dto.AddAdminRequest true "Member to promote"
// @Success 200 {object} dto.APIResponse "Admin added successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Only admins may promote members"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Failure 409 {object} dto.ErrorResponse "Already an admin"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities/{id}/admins [post]
func (c *CommunityController) AddAdmin(ctx *gin.Context) {
	profileID, ok := requireProfileID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Community ID")
	if !ok {
		return
	}

	var req dto.AddAdminRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	if err := c.membershipService.AddAdmin(ctx, profileID, id, req.ProfileID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Admin added successfully"))
}

// RemoveAdmin handles demoting an admin back to plain member
// @Summary Remove an admin
// @Description Demotes an admin back to plain member. Admin only; removing a non-admin is a no-op.
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param request body dto.RemoveAdminRequest true "Admin to demote"
// @Success 200 {object} dto.APIResponse "Admin removed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Only admins may demote admins"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities/{id}/admins/remove [post]
func (c *CommunityController) RemoveAdmin(ctx *gin.Context) {
	profileID, ok := requireProfileID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Community ID")
	if !ok {
		return
	}

	var req dto.RemoveAdminRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	if err := c.membershipService.RemoveAdmin(ctx, profileID, id, req.ProfileID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Admin removed successfully"))
}
