package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexasuite/powerup/internal/app/models/dto"
	"github.com/nexasuite/powerup/internal/app/services"
	"github.com/nexasuite/powerup/internal/middleware"
)

// ChallengeController handles challenge lifecycle and participation
type ChallengeController struct {
	challengeService services.ChallengeService
}

// NewChallengeController creates a new ChallengeController
func NewChallengeController(challengeService services.ChallengeService) *ChallengeController {
	return &ChallengeController{
		challengeService: challengeService,
	}
}

// CreateChallenge handles creating a challenge in a community
// @Summary Create a challenge
// @Description Creates a date-bounded challenge tied to one or more workout types. Community admin only.
// @Tags challenges
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param request body dto.CreateChallengeRequest true "Challenge to create"
// @Success 201 {object} dto.APIResponse{data=dto.ChallengeResponse} "Challenge created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters or date range"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Only admins may create challenges"
// @Failure 404 {object} dto.ErrorResponse "Community or workout type not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities/{id}/challenges [post]
func (c *ChallengeController) CreateChallenge(ctx *gin.Context) {
	profileID, ok := requireProfileID(ctx)
	if !ok {
		return
	}
	communityID, ok := parseIDParam(ctx, "id", "Community ID")
	if !ok {
		return
	}

	var req dto.CreateChallengeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	challenge, err := c.challengeService.CreateChallenge(ctx, profileID, communityID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(challenge))
}

// ListChallenges handles retrieving a community's challenges
// @Summary List community challenges
// @Description Retrieves all challenges of a community, newest first
// @Tags challenges
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.ChallengeResponse} "Challenges retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid community ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities/{id}/challenges [get]
func (c *ChallengeController) ListChallenges(ctx *gin.Context) {
	communityID, ok := parseIDParam(ctx, "id", "Community ID")
	if !ok {
		return
	}

	challenges, err := c.challengeService.ListChallenges(ctx, communityID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(challenges))
}

// GetChallenge handles retrieving a challenge with its standings
// @Summary Get challenge by ID
// @Description Retrieves a challenge with its participant standings ordered by points
// @Tags challenges
// @Produce json
// @Security BearerAuth
// @Param id path int true "Challenge ID"
// @Success 200 {object} dto.APIResponse{data=dto.ChallengeResponse} "Challenge retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid challenge ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 404 {object} dto.ErrorResponse "Challenge not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /challenges/{id} [get]
func (c *ChallengeController) GetChallenge(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Challenge ID")
	if !ok {
		return
	}

	challenge, err := c.challengeService.GetChallenge(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(challenge))
}

// DeleteChallenge handles deleting a challenge
// @Summary Delete a challenge
// @Description Deletes a challenge with all its participations. Admin of the owning community only.
// @Tags challenges
// @Produce json
// @Security BearerAuth
// @Param id path int true "Challenge ID"
// @Success 200 {object} dto.APIResponse "Challenge deleted successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid challenge ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Only admins may delete challenges"
// @Failure 404 {object} dto.ErrorResponse "Challenge not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /challenges/{id} [delete]
func (c *ChallengeController) DeleteChallenge(ctx *gin.Context) {
	profileID, ok := requireProfileID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Challenge ID")
	if !ok {
		return
	}

	if err := c.challengeService.DeleteChallenge(ctx, profileID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Challenge deleted successfully"))
}

// JoinChallenge handles a member joining a challenge
// @Summary Join a challenge
// @Description Enrolls the authenticated user in the challenge with zero points. Community members only.
// @Tags challenges
// @Produce json
// @Security BearerAuth
// @Param id path int true "Challenge ID"
// @Success 200 {object} dto.APIResponse "Joined the challenge"
// @Failure 400 {object} dto.ErrorResponse "Invalid challenge ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Not a member of the community"
// @Failure 404 {object} dto.ErrorResponse "Challenge not found"
// @Failure 409 {object} dto.ErrorResponse "Already participating"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /challenges/{id}/join [post]
func (c *ChallengeController) JoinChallenge(ctx *gin.Context) {
	profileID, ok := requireProfileID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Challenge ID")
	if !ok {
		return
	}

	if err := c.challengeService.JoinChallenge(ctx, profileID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Joined the challenge"))
}

// ExitChallenge handles a participant leaving a challenge
// @Summary Leave a challenge
// @Description Removes the authenticated user's participation and accumulated points
// @Tags challenges
// @Produce json
// @Security BearerAuth
// @Param id path int true "Challenge ID"
// @Success 200 {object} dto.APIResponse "Left the challenge"
// @Failure 400 {object} dto.ErrorResponse "Not a participant"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 404 {object} dto.ErrorResponse "Challenge not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /challenges/{id}/exit [post]
func (c *ChallengeController) ExitChallenge(ctx *gin.Context) {
	profileID, ok := requireProfileID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Challenge ID")
	if !ok {
		return
	}

	if err := c.challengeService.ExitChallenge(ctx, profileID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Left the challenge"))
}
