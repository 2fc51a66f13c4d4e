package models

import "time"

// Profile holds the public fitness identity of a user account (1:1)
type Profile struct {
	ID           int64      `json:"id" db:"id"`
	UserID       int64      `json:"userId" db:"user_id"`
	Bio          *string    `json:"bio,omitempty" db:"bio"`
	DateOfBirth  *time.Time `json:"dateOfBirth,omitempty" db:"date_of_birth"`
	Gender       *string    `json:"gender,omitempty" db:"gender"`
	Country      *string    `json:"country,omitempty" db:"country"`
	City         *string    `json:"city,omitempty" db:"city"`
	Height       *float64   `json:"height,omitempty" db:"height"`
	Weight       *float64   `json:"weight,omitempty" db:"weight"`
	AvatarFileID *int64     `json:"avatarFileId,omitempty" db:"avatar_file_id"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`

	// Related entities
	User   *User `json:"user,omitempty"`
	Avatar *File `json:"avatar,omitempty"`
}
