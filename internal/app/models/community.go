package models

import "time"

// Community is a named group of profiles with admin and member roles.
// The join code is assigned at creation and never changes.
type Community struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Description  *string   `json:"description,omitempty" db:"description"`
	AvatarFileID *int64    `json:"avatarFileId,omitempty" db:"avatar_file_id"`
	JoinCode     string    `json:"joinCode" db:"join_code"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`

	// Related entities
	Avatar  *File      `json:"avatar,omitempty"`
	Admins  []*Profile `json:"admins,omitempty"`
	Members []*Profile `json:"members,omitempty"`
}

// RemovedCommunityMember marks a profile as banned from re-joining a
// community via join code after an explicit removal by an admin.
// Voluntary exits never create one.
type RemovedCommunityMember struct {
	ID          int64     `json:"id" db:"id"`
	CommunityID int64     `json:"communityId" db:"community_id"`
	ProfileID   int64     `json:"profileId" db:"profile_id"`
	RemovedAt   time.Time `json:"removedAt" db:"removed_at"`
}
