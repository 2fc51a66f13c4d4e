package services

import (
	"context"
	"mime/multipart"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/nexasuite/powerup/internal/app/models"
	"github.com/nexasuite/powerup/internal/app/models/dto"
	"github.com/nexasuite/powerup/internal/db"
	"github.com/nexasuite/powerup/internal/pkg/apperrors"
	"github.com/nexasuite/powerup/internal/pkg/dberrors"
	"github.com/nexasuite/powerup/internal/pkg/filestorage"
	"github.com/nexasuite/powerup/internal/pkg/helpers"
	"github.com/nexasuite/powerup/internal/pkg/realtime"
	"github.com/nexasuite/powerup/internal/pkg/validation"
)

// joinCodeAttempts bounds the retry loop when a freshly generated join
// code collides with an existing one
const joinCodeAttempts = 5

// MembershipService defines the interface for community membership operations
type MembershipService interface {
	CreateCommunity(ctx context.Context, profileID int64, req *dto.CreateCommunityRequest, avatar *multipart.FileHeader) (*dto.CommunityResponse, error)
	GetCommunity(ctx context.Context, id int64) (*dto.CommunityResponse, error)
	ListCommunities(ctx context.Context, profileID int64) ([]dto.CommunityResponse, error)
	DeleteCommunity(ctx context.Context, actingProfileID, communityID int64) error
	AddAdmin(ctx context.Context, actingProfileID, communityID, targetProfileID int64) error
	RemoveAdmin(ctx context.Context, actingProfileID, communityID, targetProfileID int64) error
	AddMember(ctx context.Context, actingProfileID, communityID int64, username string) error
	RemoveMember(ctx context.Context, actingProfileID, communityID, targetProfileID int64) error
	JoinByCode(ctx context.Context, profileID int64, code string) (*dto.CommunityResponse, error)
	ExitCommunity(ctx context.Context, profileID, communityID int64) error
	IsMember(ctx context.Context, communityID, profileID int64) (bool, error)
}

// communityStore is the slice of CommunityRepository the service needs
type communityStore interface {
	Create(ctx context.Context, tx pgx.Tx, community *models.Community) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Community, error)
	GetByJoinCode(ctx context.Context, code string) (*models.Community, error)
	GetAll(ctx context.Context, profileID int64) ([]*models.Community, error)
	Delete(ctx context.Context, tx pgx.Tx, id int64) error
}

// membershipStore is the slice of MembershipRepository the service needs
type membershipStore interface {
	AddMember(ctx context.Context, tx pgx.Tx, communityID, profileID int64) error
	AddAdmin(ctx context.Context, tx pgx.Tx, communityID, profileID int64) error
	RemoveMember(ctx context.Context, tx pgx.Tx, communityID, profileID int64) (bool, error)
	RemoveAdmin(ctx context.Context, tx pgx.Tx, communityID, profileID int64) (bool, error)
	IsMember(ctx context.Context, communityID, profileID int64) (bool, error)
	IsAdmin(ctx context.Context, communityID, profileID int64) (bool, error)
	WasRemoved(ctx context.Context, communityID, profileID int64) (bool, error)
	RecordRemoval(ctx context.Context, tx pgx.Tx, communityID, profileID int64) error
	ListMembers(ctx context.Context, communityID int64) ([]*models.Profile, error)
	ListAdmins(ctx context.Context, communityID int64) ([]*models.Profile, error)
}

// fileStore is the slice of FileRepository shared by services
type fileStore interface {
	Create(ctx context.Context, tx pgx.Tx, file *models.File) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.File, error)
	Delete(ctx context.Context, id int64) error
}

// membershipServiceImpl implements MembershipService
type membershipServiceImpl struct {
	communityRepo  communityStore
	membershipRepo membershipStore
	profileRepo    profileStore
	fileRepo       fileStore
	fileStorage    filestorage.FileStorage
	txRunner       db.TxRunner
	publisher      realtime.Publisher
	logger         zerolog.Logger
}

// NewMembershipService creates a new MembershipService
func NewMembershipService(
	communityRepo communityStore,
	membershipRepo membershipStore,
	profileRepo profileStore,
	fileRepo fileStore,
	fileStorage filestorage.FileStorage,
	txRunner db.TxRunner,
	publisher realtime.Publisher,
	logger zerolog.Logger,
) MembershipService {
	return &membershipServiceImpl{
		communityRepo:  communityRepo,
		membershipRepo: membershipRepo,
		profileRepo:    profileRepo,
		fileRepo:       fileRepo,
		fileStorage:    fileStorage,
		txRunner:       txRunner,
		publisher:      publisher,
		logger:         logger,
	}
}

// CreateCommunity creates a community with a fresh join code and puts the
// creator into both the admin and member sets, all in one transaction
func (s *membershipServiceImpl) CreateCommunity(ctx context.Context, profileID int64, req *dto.CreateCommunityRequest, avatar *multipart.FileHeader) (*dto.CommunityResponse, error) {
	var stored *filestorage.StoredFile
	if avatar != nil {
		if _, err := validation.ValidateImage(avatar); err != nil {
			return nil, apperrors.NewBadRequestError("Avatar must be a valid image")
		}
		var err error
		stored, err = s.fileStorage.SaveFile(avatar, filestorage.PathAvatars)
		if err != nil {
			return nil, err
		}
	}

	community := &models.Community{
		Name: req.Name,
	}
	if req.Description != "" {
		community.Description = &req.Description
	}

	var lastErr error
	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		code, err := helpers.GenerateJoinCode()
		if err != nil {
			lastErr = err
			break
		}
		community.JoinCode = code

		lastErr = s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
			if stored != nil {
				fileID, err := s.fileRepo.Create(ctx, tx, &models.File{
					FileName:   stored.Filename,
					FilePath:   stored.Path,
					FileURL:    stored.URL,
					FileSize:   stored.FileSize,
					FileType:   stored.MimeType,
					UploadedBy: profileID,
				})
				if err != nil {
					return err
				}
				community.AvatarFileID = &fileID
			}

			communityID, err := s.communityRepo.Create(ctx, tx, community)
			if err != nil {
				return err
			}
			community.ID = communityID

			if err := s.membershipRepo.AddAdmin(ctx, tx, communityID, profileID); err != nil {
				return err
			}
			return s.membershipRepo.AddMember(ctx, tx, communityID, profileID)
		})
		if lastErr == nil {
			break
		}
		if !dberrors.IsDuplicateConstraintError(lastErr, "communities_join_code_key") {
			break
		}
		// Collision with an existing code, try a fresh one
	}
	if lastErr != nil {
		// The transaction rolled back, so the stored avatar is orphaned
		if stored != nil {
			if err := s.fileStorage.DeleteFile(stored.Path); err != nil {
				s.logger.Warn().Err(err).Str("path", stored.Path).Msg("Failed to clean up avatar after rollback")
			}
		}
		return nil, lastErr
	}

	s.logger.Info().
		Int64("communityID", community.ID).
		Int64("profileID", profileID).
		Msg("Community created")

	return s.buildCommunityResponse(ctx, community, true), nil
}

// GetCommunity retrieves a community with its admin and member lists
func (s *membershipServiceImpl) GetCommunity(ctx context.Context, id int64) (*dto.CommunityResponse, error) {
	community, err := s.communityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if community == nil {
		return nil, apperrors.NewResourceNotFoundError("Community not found")
	}

	return s.buildCommunityResponse(ctx, community, true), nil
}

// ListCommunities retrieves the communities the profile belongs to
func (s *membershipServiceImpl) ListCommunities(ctx context.Context, profileID int64) ([]dto.CommunityResponse, error) {
	communities, err := s.communityRepo.GetAll(ctx, profileID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CommunityResponse, 0, len(communities))
	for _, community := range communities {
		responses = append(responses, *s.buildCommunityResponse(ctx, community, false))
	}
	return responses, nil
}

// DeleteCommunity removes a community and everything hanging off it
func (s *membershipServiceImpl) DeleteCommunity(ctx context.Context, actingProfileID, communityID int64) error {
	community, err := s.requireAdmin(ctx, actingProfileID, communityID)
	if err != nil {
		return err
	}

	var avatar *models.File
	if community.AvatarFileID != nil {
		avatar, err = s.fileRepo.GetByID(ctx, *community.AvatarFileID)
		if err != nil {
			return err
		}
	}

	err = s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.communityRepo.Delete(ctx, tx, communityID)
	})
	if err != nil {
		return err
	}

	// Avatar cleanup runs after commit
	if avatar != nil {
		if err := s.fileRepo.Delete(ctx, avatar.ID); err != nil {
			s.logger.Warn().Err(err).Int64("fileID", avatar.ID).Msg("Failed to delete avatar record")
		}
		if err := s.fileStorage.DeleteFile(avatar.FilePath); err != nil {
			s.logger.Warn().Err(err).Str("path", avatar.FilePath).Msg("Failed to delete avatar file")
		}
	}

	s.publish(&realtime.Event{
		Type:        realtime.EventCommunityDeleted,
		CommunityID: communityID,
		Payload:     map[string]interface{}{"communityId": communityID},
	})

	s.logger.Info().
		Int64("communityID", communityID).
		Int64("profileID", actingProfileID).
		Msg("Community deleted")
	return nil
}

// AddAdmin promotes a profile to admin, adding it to the member set as well
// when it is not already there
func (s *membershipServiceImpl) AddAdmin(ctx context.Context, actingProfileID, communityID, targetProfileID int64) error {
	if _, err := s.requireAdmin(ctx, actingProfileID, communityID); err != nil {
		return err
	}

	target, err := s.profileRepo.GetByID(ctx, targetProfileID)
	if err != nil {
		return err
	}
	if target == nil {
		return apperrors.NewResourceNotFoundError("Profile not found")
	}

	isAdmin, err := s.membershipRepo.IsAdmin(ctx, communityID, targetProfileID)
	if err != nil {
		return err
	}
	if isAdmin {
		return apperrors.NewConflictError("Profile is already an admin")
	}

	isMember, err := s.membershipRepo.IsMember(ctx, communityID, targetProfileID)
	if err != nil {
		return err
	}

	err = s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if !isMember {
			if err := s.membershipRepo.AddMember(ctx, tx, communityID, targetProfileID); err != nil {
				return err
			}
		}
		return s.membershipRepo.AddAdmin(ctx, tx, communityID, targetProfileID)
	})
	if err != nil {
		return err
	}

	if !isMember {
		s.publishMembershipEvent(realtime.EventMemberAdded, communityID, targetProfileID)
	}
	s.publishMembershipEvent(realtime.EventAdminAdded, communityID, targetProfileID)
	return nil
}

// RemoveAdmin demotes an admin back to plain member. Demoting a profile
// that is not an admin is a no-op.
func (s *membershipServiceImpl) RemoveAdmin(ctx context.Context, actingProfileID, communityID, targetProfileID int64) error {
	if _, err := s.requireAdmin(ctx, actingProfileID, communityID); err != nil {
		return err
	}

	var removed bool
	err := s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		removed, err = s.membershipRepo.RemoveAdmin(ctx, tx, communityID, targetProfileID)
		return err
	})
	if err != nil {
		return err
	}

	if removed {
		s.publishMembershipEvent(realtime.EventAdminRemoved, communityID, targetProfileID)
	}
	return nil
}

// AddMember adds a profile to the member set by username
func (s *membershipServiceImpl) AddMember(ctx context.Context, actingProfileID, communityID int64, username string) error {
	if _, err := s.requireAdmin(ctx, actingProfileID, communityID); err != nil {
		return err
	}

	target, err := s.profileRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if target == nil {
		return apperrors.NewResourceNotFoundError("No user with that username")
	}

	isMember, err := s.membershipRepo.IsMember(ctx, communityID, target.ID)
	if err != nil {
		return err
	}
	if isMember {
		return apperrors.NewConflictError("Profile is already a member")
	}

	err = s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.membershipRepo.AddMember(ctx, tx, communityID, target.ID)
	})
	if err != nil {
		return err
	}

	s.publishMembershipEvent(realtime.EventMemberAdded, communityID, target.ID)
	return nil
}

// RemoveMember removes a member and records the removal so the profile can
// never re-join through the join code. Admins cannot be removed.
func (s *membershipServiceImpl) RemoveMember(ctx context.Context, actingProfileID, communityID, targetProfileID int64) error {
	if _, err := s.requireAdmin(ctx, actingProfileID, communityID); err != nil {
		return err
	}

	isAdmin, err := s.membershipRepo.IsAdmin(ctx, communityID, targetProfileID)
	if err != nil {
		return err
	}
	if isAdmin {
		return apperrors.NewConflictError("Admins cannot be removed; demote first")
	}

	isMember, err := s.membershipRepo.IsMember(ctx, communityID, targetProfileID)
	if err != nil {
		return err
	}
	if !isMember {
		return apperrors.NewBadRequestError("Profile is not a member")
	}

	err = s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		// The ban record and the membership delete must land together
		if err := s.membershipRepo.RecordRemoval(ctx, tx, communityID, targetProfileID); err != nil {
			return err
		}
		_, err := s.membershipRepo.RemoveMember(ctx, tx, communityID, targetProfileID)
		return err
	})
	if err != nil {
		return err
	}

	s.publishMembershipEvent(realtime.EventMemberRemoved, communityID, targetProfileID)
	return nil
}

// JoinByCode adds the profile to the community matching the join code
func (s *membershipServiceImpl) JoinByCode(ctx context.Context, profileID int64, code string) (*dto.CommunityResponse, error) {
	community, err := s.communityRepo.GetByJoinCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if community == nil {
		return nil, apperrors.NewBadRequestError("Invalid join code")
	}

	wasRemoved, err := s.membershipRepo.WasRemoved(ctx, community.ID, profileID)
	if err != nil {
		return nil, err
	}
	if wasRemoved {
		return nil, apperrors.NewConflictError("Profile was removed from this community and cannot re-join")
	}

	isMember, err := s.membershipRepo.IsMember(ctx, community.ID, profileID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, apperrors.NewConflictError("Profile is already a member")
	}

	err = s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.membershipRepo.AddMember(ctx, tx, community.ID, profileID)
	})
	if err != nil {
		return nil, err
	}

	s.publishMembershipEvent(realtime.EventMemberAdded, community.ID, profileID)
	return s.buildCommunityResponse(ctx, community, false), nil
}

// ExitCommunity removes the profile from the community voluntarily. No
// removal record is written, so the profile may re-join later.
func (s *membershipServiceImpl) ExitCommunity(ctx context.Context, profileID, communityID int64) error {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return err
	}
	if community == nil {
		return apperrors.NewResourceNotFoundError("Community not found")
	}

	var wasMember, wasAdmin bool
	err = s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		wasAdmin, err = s.membershipRepo.RemoveAdmin(ctx, tx, communityID, profileID)
		if err != nil {
			return err
		}
		wasMember, err = s.membershipRepo.RemoveMember(ctx, tx, communityID, profileID)
		return err
	})
	if err != nil {
		return err
	}
	if !wasMember {
		return apperrors.NewBadRequestError("Profile is not a member")
	}

	if wasAdmin {
		s.publishMembershipEvent(realtime.EventAdminRemoved, communityID, profileID)
	}
	s.publishMembershipEvent(realtime.EventMemberRemoved, communityID, profileID)
	return nil
}

// IsMember reports whether the profile belongs to the community
func (s *membershipServiceImpl) IsMember(ctx context.Context, communityID, profileID int64) (bool, error) {
	return s.membershipRepo.IsMember(ctx, communityID, profileID)
}

// requireAdmin loads the community and verifies the acting profile is one
// of its admins
func (s *membershipServiceImpl) requireAdmin(ctx context.Context, actingProfileID, communityID int64) (*models.Community, error) {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if community == nil {
		return nil, apperrors.NewResourceNotFoundError("Community not found")
	}

	isAdmin, err := s.membershipRepo.IsAdmin(ctx, communityID, actingProfileID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, apperrors.NewForbiddenError("Only community admins may do this")
	}

	return community, nil
}

func (s *membershipServiceImpl) buildCommunityResponse(ctx context.Context, community *models.Community, detail bool) *dto.CommunityResponse {
	resp := &dto.CommunityResponse{
		ID:        community.ID,
		Name:      community.Name,
		JoinCode:  community.JoinCode,
		CreatedAt: community.CreatedAt,
	}
	resp.Description = community.Description

	if community.AvatarFileID != nil {
		if file, err := s.fileRepo.GetByID(ctx, *community.AvatarFileID); err == nil && file != nil {
			resp.AvatarURL = &file.FileURL
		}
	}

	members, err := s.membershipRepo.ListMembers(ctx, community.ID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("communityID", community.ID).Msg("Failed to list members")
	}
	resp.MemberCount = len(members)

	if detail {
		admins, err := s.membershipRepo.ListAdmins(ctx, community.ID)
		if err != nil {
			s.logger.Warn().Err(err).Int64("communityID", community.ID).Msg("Failed to list admins")
		}
		resp.Admins = profilesToResponses(ctx, admins, s.fileRepo)
		resp.Members = profilesToResponses(ctx, members, s.fileRepo)
	}

	return resp
}

func (s *membershipServiceImpl) publishMembershipEvent(eventType string, communityID, profileID int64) {
	s.publish(&realtime.Event{
		Type:        eventType,
		CommunityID: communityID,
		Payload:     map[string]interface{}{"profileId": profileID},
	})
}

// publish delivers an event after a committed mutation. Failures are
// logged and swallowed; real-time delivery is best-effort.
func (s *membershipServiceImpl) publish(event *realtime.Event) {
	if err := s.publisher.Publish(event); err != nil {
		s.logger.Warn().
			Err(err).
			Str("type", event.Type).
			Int64("communityID", event.CommunityID).
			Msg("Failed to publish event")
	}
}
