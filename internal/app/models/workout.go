package models

import "time"

// WorkoutType is reference data describing a kind of workout and its
// per-minute accrual rates.
type WorkoutType struct {
	ID                int64     `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Description       *string   `json:"description,omitempty" db:"description"`
	CaloriesPerMinute float64   `json:"caloriesPerMinute" db:"calories_per_minute"`
	PointsPerMinute   float64   `json:"pointsPerMinute" db:"points_per_minute"`
	ThumbnailURL      *string   `json:"thumbnailUrl,omitempty" db:"thumbnail_url"`
	AnimationURL      *string   `json:"animationUrl,omitempty" db:"animation_url"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
}

// Workout is a single recorded workout session. Immutable once created.
type Workout struct {
	ID              int64     `json:"id" db:"id"`
	ProfileID       int64     `json:"profileId" db:"profile_id"`
	WorkoutTypeID   int64     `json:"workoutTypeId" db:"workout_type_id"`
	DurationMinutes float64   `json:"durationMinutes" db:"duration_minutes"`
	CaloriesBurned  float64   `json:"caloriesBurned" db:"calories_burned"`
	Points          float64   `json:"points" db:"points"`
	WorkoutDate     time.Time `json:"workoutDate" db:"workout_date"`
	SelfieFileID    *int64    `json:"selfieFileId,omitempty" db:"selfie_file_id"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`

	// Related entities
	WorkoutType *WorkoutType `json:"workoutType,omitempty"`
	Selfie      *File        `json:"selfie,omitempty"`
}
