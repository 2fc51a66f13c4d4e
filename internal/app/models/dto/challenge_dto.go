package dto

import "time"

// CreateChallengeRequest represents a request to create a challenge in a community
type CreateChallengeRequest struct {
	Name           string    `json:"name" binding:"required,min=1,max=100"`
	Description    string    `json:"description" binding:"max=1000"`
	StartDate      time.Time `json:"startDate" binding:"required" time_format:"2006-01-02"`
	EndDate        time.Time `json:"endDate" binding:"required" time_format:"2006-01-02"`
	WorkoutTypeIDs []int64   `json:"workoutTypeIds" binding:"required,min=1"`
}

// ChallengeParticipantResponse is one row of a challenge's standings
type ChallengeParticipantResponse struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Points   float64   `json:"points"`
	JoinedAt time.Time `json:"joinedAt"`
}

// ChallengeResponse is the client-facing projection of a challenge
type ChallengeResponse struct {
	ID           int64                          `json:"id"`
	CommunityID  int64                          `json:"communityId"`
	Name         string                         `json:"name"`
	Description  *string                        `json:"description,omitempty"`
	StartDate    string                         `json:"startDate"`
	EndDate      string                         `json:"endDate"`
	WorkoutTypes []string                       `json:"workoutTypes"`
	Participants []ChallengeParticipantResponse `json:"participants"`
	CreatedAt    time.Time                      `json:"createdAt"`
}
