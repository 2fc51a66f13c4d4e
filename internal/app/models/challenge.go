package models

import "time"

// Challenge is a date-bounded competition inside a community. A workout
// qualifies when its type is attached to the challenge and its date falls
// within [StartDate, EndDate] inclusive.
type Challenge struct {
	ID          int64     `json:"id" db:"id"`
	CommunityID int64     `json:"communityId" db:"community_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	StartDate   time.Time `json:"startDate" db:"start_date"`
	EndDate     time.Time `json:"endDate" db:"end_date"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`

	// Related entities
	WorkoutTypes []*WorkoutType          `json:"workoutTypes,omitempty"`
	Participants []*ChallengeParticipant `json:"participants,omitempty"`
}

// ChallengeParticipant links a profile to a challenge. At most one row per
// (challenge, profile) pair; points only ever grow by qualifying workouts.
type ChallengeParticipant struct {
	ID          int64     `json:"id" db:"id"`
	ChallengeID int64     `json:"challengeId" db:"challenge_id"`
	ProfileID   int64     `json:"profileId" db:"profile_id"`
	Points      float64   `json:"points" db:"points"`
	JoinedAt    time.Time `json:"joinedAt" db:"joined_at"`

	// Related entities
	Profile *Profile `json:"profile,omitempty"`
}
