package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexasuite/powerup/internal/app/models/dto"
	"github.com/nexasuite/powerup/internal/app/services"
	"github.com/nexasuite/powerup/internal/middleware"
	"github.com/nexasuite/powerup/internal/pkg/helpers"
)

// WorkoutController handles workout recording and history
type WorkoutController struct {
	workoutService services.WorkoutService
}

// NewWorkoutController creates a new WorkoutController
func NewWorkoutController(workoutService services.WorkoutService) *WorkoutController {
	return &WorkoutController{
		workoutService: workoutService,
	}
}

// RecordWorkout handles recording a workout session
// @Summary Record a workout
// @Description Records a workout with an optional selfie. Points and calories are computed from the workout type's per-minute rates and credited to every qualifying challenge.
// @Tags workouts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param workoutTypeId formData int true "Workout type ID"
// @Param durationMinutes formData number true "Duration in minutes"
// @Param workoutDate formData string true "Workout date (YYYY-MM-DD)"
// @Param selfie formData file false "Workout selfie (single image file)"
// @Success 201 {object} dto.APIResponse{data=dto.WorkoutResponse} "Workout recorded successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 404 {object} dto.ErrorResponse "Workout type not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /workouts [post]
func (c *WorkoutController) RecordWorkout(ctx *gin.Context) {
	profileID, ok := requireProfileID(ctx)
	if !ok {
		return
	}

	var req dto.CreateWorkoutRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	var selfie *multipart.FileHeader
	if file, err := ctx.FormFile("selfie"); err == nil {
		selfie = file
	} else if !errors.Is(err, http.ErrMissingFile) {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid selfie upload")))
		return
	}

	workout, err := c.workoutService.RecordWorkout(ctx, profileID, &req, selfie)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(workout))
}

// ListWorkouts handles retrieving the authenticated user's workout history
// @Summary List my workouts
// @Description Retrieves the authenticated user's workout history, newest first
// @Tags workouts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)" default(1) minimum(1)
// @Param pageSize query int false "Page size (default: 10, max: 100)" default(10) minimum(1) maximum(100)
// @Success 200 {object} dto.APIResponse{data=dto.WorkoutListResponse} "Workouts retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /workouts [get]
func (c *WorkoutController) ListWorkouts(ctx *gin.Context) {
	profileID, ok := requireProfileID(ctx)
	if !ok {
		return
	}

	page, pageSize := helpers.ParsePaginationParams(ctx)

	workouts, err := c.workoutService.ListWorkouts(ctx, profileID, page, pageSize)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(workouts))
}

// GetWorkout handles retrieving a workout by ID
// @Summary Get workout by ID
// @Description Retrieves a single recorded workout
// @Tags workouts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Workout ID"
// @Success 200 {object} dto.APIResponse{data=dto.WorkoutResponse} "Workout retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid workout ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 404 {object} dto.ErrorResponse "Workout not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /workouts/{id} [get]
func (c *WorkoutController) GetWorkout(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Workout ID")
	if !ok {
		return
	}

	workout, err := c.workoutService.GetWorkout(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(workout))
}

// DeleteWorkout handles deleting a workout
// @Summary Delete a workout
// @Description Deletes a workout and its selfie. Owner only; points already credited to challenges are kept.
// @Tags workouts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Workout ID"
// @Success 200 {object} dto.APIResponse "Workout deleted successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid workout ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Only the owner may delete a workout"
// @Failure 404 {object} dto.ErrorResponse "Workout not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /workouts/{id} [delete]
func (c *WorkoutController) DeleteWorkout(ctx *gin.Context) {
	profileID, ok := requireProfileID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Workout ID")
	if !ok {
		return
	}

	if err := c.workoutService.DeleteWorkout(ctx, profileID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Workout deleted successfully"))
}

// ListWorkoutTypes handles retrieving the workout type catalog
// @Summary List workout types
// @Description Retrieves all workout types with their per-minute calorie and point rates
// @Tags workouts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.WorkoutTypeResponse} "Workout types retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /workout-types [get]
func (c *WorkoutController) ListWorkoutTypes(ctx *gin.Context) {
	workoutTypes, err := c.workoutService.ListWorkoutTypes(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(workoutTypes))
}
