package dto

import "time"

// CreateCommunityRequest represents a request to create a community.
// The avatar image travels as a separate multipart file.
type CreateCommunityRequest struct {
	Name        string `form:"name" binding:"required,min=1,max=100"`
	Description string `form:"description" binding:"max=1000"`
}

// AddAdminRequest promotes an existing member to admin
type AddAdminRequest struct {
	ProfileID int64 `json:"profileId" binding:"required"`
}

// RemoveAdminRequest demotes an admin back to plain member
type RemoveAdminRequest struct {
	ProfileID int64 `json:"profileId" binding:"required"`
}

// AddMemberRequest adds a member by username (admin-only)
type AddMemberRequest struct {
	Username string `json:"username" binding:"required"`
}

// RemoveMemberRequest forcibly removes a member and bans re-join by code
type RemoveMemberRequest struct {
	ProfileID int64 `json:"profileId" binding:"required"`
}

// JoinByCodeRequest joins a community by its join code
type JoinByCodeRequest struct {
	Code string `json:"code" binding:"required,len=6,alphanum"`
}

// CommunityResponse is the client-facing projection of a community
type CommunityResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	AvatarURL   *string           `json:"avatarUrl,omitempty"`
	JoinCode    string            `json:"joinCode,omitempty"`
	MemberCount int               `json:"memberCount"`
	CreatedAt   time.Time         `json:"createdAt"`
	Admins      []ProfileResponse `json:"admins,omitempty"`
	Members     []ProfileResponse `json:"members,omitempty"`
}

// CommunityListResponse is a paginated list of communities
type CommunityListResponse struct {
	Communities    []CommunityResponse `json:"communities"`
	PaginationInfo PaginationInfo      `json:"pagination"`
}
