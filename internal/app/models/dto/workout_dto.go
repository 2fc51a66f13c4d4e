package dto

import "time"

// CreateWorkoutRequest represents a recorded workout session. Points and
// calories are computed server side from the workout type's rates; the
// selfie image travels as a separate multipart file.
type CreateWorkoutRequest struct {
	WorkoutTypeID   int64   `form:"workoutTypeId" binding:"required"`
	DurationMinutes float64 `form:"durationMinutes" binding:"required,gt=0"`
	WorkoutDate     string  `form:"workoutDate" binding:"required"`
}

// WorkoutResponse is the client-facing projection of a workout
type WorkoutResponse struct {
	ID              int64     `json:"id"`
	WorkoutType     string    `json:"workoutType"`
	DurationMinutes float64   `json:"durationMinutes"`
	CaloriesBurned  float64   `json:"caloriesBurned"`
	Points          float64   `json:"points"`
	WorkoutDate     string    `json:"workoutDate"`
	SelfieURL       *string   `json:"selfieUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// WorkoutListResponse is a paginated workout history
type WorkoutListResponse struct {
	Workouts       []WorkoutResponse `json:"workouts"`
	PaginationInfo PaginationInfo    `json:"pagination"`
}

// WorkoutTypeResponse is the reference-data projection of a workout type
type WorkoutTypeResponse struct {
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	Description       *string `json:"description,omitempty"`
	CaloriesPerMinute float64 `json:"caloriesPerMinute"`
	PointsPerMinute   float64 `json:"pointsPerMinute"`
	ThumbnailURL      *string `json:"thumbnailUrl,omitempty"`
	AnimationURL      *string `json:"animationUrl,omitempty"`
}
