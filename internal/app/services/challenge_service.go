package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/nexasuite/powerup/internal/app/models"
	"github.com/nexasuite/powerup/internal/app/models/dto"
	"github.com/nexasuite/powerup/internal/db"
	"github.com/nexasuite/powerup/internal/pkg/apperrors"
	"github.com/nexasuite/powerup/internal/pkg/dberrors"
	"github.com/nexasuite/powerup/internal/pkg/realtime"
)

const dateLayout = "2006-01-02"

// ChallengeService defines the interface for challenge operations
type ChallengeService interface {
	CreateChallenge(ctx context.Context, actingProfileID, communityID int64, req *dto.CreateChallengeRequest) (*dto.ChallengeResponse, error)
	GetChallenge(ctx context.Context, id int64) (*dto.ChallengeResponse, error)
	ListChallenges(ctx context.Context, communityID int64) ([]dto.ChallengeResponse, error)
	DeleteChallenge(ctx context.Context, actingProfileID, challengeID int64) error
	JoinChallenge(ctx context.Context, profileID, challengeID int64) error
	ExitChallenge(ctx context.Context, profileID, challengeID int64) error
	ApplyWorkout(ctx context.Context, tx pgx.Tx, profileID int64, workoutTypeID int64, workoutDate time.Time, points float64) error
}

// challengeStore is the slice of ChallengeRepository the service needs
type challengeStore interface {
	Create(ctx context.Context, tx pgx.Tx, challenge *models.Challenge) (int64, error)
	AttachWorkoutTypes(ctx context.Context, tx pgx.Tx, challengeID int64, workoutTypeIDs []int64) error
	GetByID(ctx context.Context, id int64) (*models.Challenge, error)
	ListByCommunity(ctx context.Context, communityID int64) ([]*models.Challenge, error)
	ListQualifying(ctx context.Context, tx pgx.Tx, workoutTypeID int64, workoutDate time.Time) ([]*models.Challenge, error)
	Delete(ctx context.Context, tx pgx.Tx, id int64) error
}

// participantStore is the slice of ChallengeParticipantRepository the
// service needs
type participantStore interface {
	Add(ctx context.Context, tx pgx.Tx, challengeID, profileID int64) error
	Remove(ctx context.Context, tx pgx.Tx, challengeID, profileID int64) (bool, error)
	ListByChallenge(ctx context.Context, challengeID int64) ([]*models.ChallengeParticipant, error)
	IncrementPoints(ctx context.Context, tx pgx.Tx, challengeID, profileID int64, delta float64) (bool, error)
}

// workoutTypeStore is the slice of WorkoutTypeRepository shared by services
type workoutTypeStore interface {
	GetByID(ctx context.Context, id int64) (*models.WorkoutType, error)
	GetAll(ctx context.Context) ([]*models.WorkoutType, error)
	ExistAll(ctx context.Context, ids []int64) (bool, error)
}

// adminChecker is the slice of MembershipRepository the challenge service
// needs for authorization
type adminChecker interface {
	IsAdmin(ctx context.Context, communityID, profileID int64) (bool, error)
	IsMember(ctx context.Context, communityID, profileID int64) (bool, error)
}

// challengeServiceImpl implements ChallengeService
type challengeServiceImpl struct {
	challengeRepo   challengeStore
	participantRepo participantStore
	workoutTypeRepo workoutTypeStore
	membershipRepo  adminChecker
	txRunner        db.TxRunner
	publisher       realtime.Publisher
	logger          zerolog.Logger
}

// NewChallengeService creates a new ChallengeService
func NewChallengeService(
	challengeRepo challengeStore,
	participantRepo participantStore,
	workoutTypeRepo workoutTypeStore,
	membershipRepo adminChecker,
	txRunner db.TxRunner,
	publisher realtime.Publisher,
	logger zerolog.Logger,
) ChallengeService {
	return &challengeServiceImpl{
		challengeRepo:   challengeRepo,
		participantRepo: participantRepo,
		workoutTypeRepo: workoutTypeRepo,
		membershipRepo:  membershipRepo,
		txRunner:        txRunner,
		publisher:       publisher,
		logger:          logger,
	}
}

// CreateChallenge creates a date-bounded challenge tied to one or more
// workout types. Only community admins may create challenges.
func (s *challengeServiceImpl) CreateChallenge(ctx context.Context, actingProfileID, communityID int64, req *dto.CreateChallengeRequest) (*dto.ChallengeResponse, error) {
	isAdmin, err := s.membershipRepo.IsAdmin(ctx, communityID, actingProfileID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, apperrors.NewForbiddenError("Only community admins may create challenges")
	}

	if req.EndDate.Before(req.StartDate) {
		return nil, apperrors.NewBadRequestError("End date must not be before start date")
	}

	allExist, err := s.workoutTypeRepo.ExistAll(ctx, req.WorkoutTypeIDs)
	if err != nil {
		return nil, err
	}
	if !allExist {
		return nil, apperrors.NewResourceNotFoundError("Unknown workout type")
	}

	challenge := &models.Challenge{
		CommunityID: communityID,
		Name:        req.Name,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if req.Description != "" {
		challenge.Description = &req.Description
	}

	err = s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		challengeID, err := s.challengeRepo.Create(ctx, tx, challenge)
		if err != nil {
			return err
		}
		challenge.ID = challengeID
		return s.challengeRepo.AttachWorkoutTypes(ctx, tx, challengeID, req.WorkoutTypeIDs)
	})
	if err != nil {
		return nil, err
	}

	s.publish(&realtime.Event{
		Type:        realtime.EventChallengeCreated,
		CommunityID: communityID,
		Payload: map[string]interface{}{
			"challengeId": challenge.ID,
			"name":        challenge.Name,
		},
	})

	s.logger.Info().
		Int64("challengeID", challenge.ID).
		Int64("communityID", communityID).
		Msg("Challenge created")

	return s.buildChallengeResponse(ctx, challenge), nil
}

// GetChallenge retrieves a challenge with its standings
func (s *challengeServiceImpl) GetChallenge(ctx context.Context, id int64) (*dto.ChallengeResponse, error) {
	challenge, err := s.challengeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if challenge == nil {
		return nil, apperrors.NewResourceNotFoundError("Challenge not found")
	}

	return s.buildChallengeResponse(ctx, challenge), nil
}

// ListChallenges retrieves all challenges of a community with standings
func (s *challengeServiceImpl) ListChallenges(ctx context.Context, communityID int64) ([]dto.ChallengeResponse, error) {
	challenges, err := s.challengeRepo.ListByCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ChallengeResponse, 0, len(challenges))
	for _, challenge := range challenges {
		responses = append(responses, *s.buildChallengeResponse(ctx, challenge))
	}
	return responses, nil
}

// DeleteChallenge removes a challenge. Only admins of the owning community
// may delete it; participant rows cascade away with it.
func (s *challengeServiceImpl) DeleteChallenge(ctx context.Context, actingProfileID, challengeID int64) error {
	challenge, err := s.challengeRepo.GetByID(ctx, challengeID)
	if err != nil {
		return err
	}
	if challenge == nil {
		return apperrors.NewResourceNotFoundError("Challenge not found")
	}

	isAdmin, err := s.membershipRepo.IsAdmin(ctx, challenge.CommunityID, actingProfileID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return apperrors.NewForbiddenError("Only community admins may delete challenges")
	}

	err = s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.challengeRepo.Delete(ctx, tx, challengeID)
	})
	if err != nil {
		return err
	}

	s.publish(&realtime.Event{
		Type:        realtime.EventChallengeDeleted,
		CommunityID: challenge.CommunityID,
		Payload:     map[string]interface{}{"challengeId": challengeID},
	})
	return nil
}

// JoinChallenge enrolls the profile with zero points as of today. Joining
// the same challenge twice is rejected.
func (s *challengeServiceImpl) JoinChallenge(ctx context.Context, profileID, challengeID int64) error {
	challenge, err := s.challengeRepo.GetByID(ctx, challengeID)
	if err != nil {
		return err
	}
	if challenge == nil {
		return apperrors.NewResourceNotFoundError("Challenge not found")
	}

	isMember, err := s.membershipRepo.IsMember(ctx, challenge.CommunityID, profileID)
	if err != nil {
		return err
	}
	if !isMember {
		return apperrors.NewForbiddenError("Only community members may join its challenges")
	}

	err = s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.participantRepo.Add(ctx, tx, challengeID, profileID)
	})
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.NewConflictError("Already participating in this challenge")
		}
		return err
	}

	s.publish(&realtime.Event{
		Type:        realtime.EventParticipantJoined,
		CommunityID: challenge.CommunityID,
		Payload: map[string]interface{}{
			"challengeId": challengeID,
			"profileId":   profileID,
		},
	})
	return nil
}

// ExitChallenge withdraws the profile from a challenge, discarding its
// accumulated points
func (s *challengeServiceImpl) ExitChallenge(ctx context.Context, profileID, challengeID int64) error {
	challenge, err := s.challengeRepo.GetByID(ctx, challengeID)
	if err != nil {
		return err
	}
	if challenge == nil {
		return apperrors.NewResourceNotFoundError("Challenge not found")
	}

	var removed bool
	err = s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		removed, err = s.participantRepo.Remove(ctx, tx, challengeID, profileID)
		return err
	})
	if err != nil {
		return err
	}
	if !removed {
		return apperrors.NewBadRequestError("Not a participant of this challenge")
	}

	s.publish(&realtime.Event{
		Type:        realtime.EventParticipantExited,
		CommunityID: challenge.CommunityID,
		Payload: map[string]interface{}{
			"challengeId": challengeID,
			"profileId":   profileID,
		},
	})
	return nil
}

// ApplyWorkout credits a workout's points to every challenge that accepts
// its type and covers its date. Runs inside the caller's transaction so the
// workout row and the point updates commit together. Challenges the profile
// has not joined are skipped; the increment is relative, so concurrent
// workouts never lose updates.
func (s *challengeServiceImpl) ApplyWorkout(ctx context.Context, tx pgx.Tx, profileID int64, workoutTypeID int64, workoutDate time.Time, points float64) error {
	challenges, err := s.challengeRepo.ListQualifying(ctx, tx, workoutTypeID, workoutDate)
	if err != nil {
		return err
	}

	for _, challenge := range challenges {
		applied, err := s.participantRepo.IncrementPoints(ctx, tx, challenge.ID, profileID, points)
		if err != nil {
			return err
		}
		if applied {
			s.logger.Debug().
				Int64("challengeID", challenge.ID).
				Int64("profileID", profileID).
				Float64("points", points).
				Msg("Points credited")
		}
	}
	return nil
}

func (s *challengeServiceImpl) buildChallengeResponse(ctx context.Context, challenge *models.Challenge) *dto.ChallengeResponse {
	resp := &dto.ChallengeResponse{
		ID:          challenge.ID,
		CommunityID: challenge.CommunityID,
		Name:        challenge.Name,
		Description: challenge.Description,
		StartDate:   challenge.StartDate.Format(dateLayout),
		EndDate:     challenge.EndDate.Format(dateLayout),
		CreatedAt:   challenge.CreatedAt,
	}

	resp.WorkoutTypes = make([]string, 0, len(challenge.WorkoutTypes))
	for _, wt := range challenge.WorkoutTypes {
		resp.WorkoutTypes = append(resp.WorkoutTypes, wt.Name)
	}

	participants, err := s.participantRepo.ListByChallenge(ctx, challenge.ID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("challengeID", challenge.ID).Msg("Failed to list participants")
	}
	resp.Participants = make([]dto.ChallengeParticipantResponse, 0, len(participants))
	for _, p := range participants {
		row := dto.ChallengeParticipantResponse{
			ID:       p.ProfileID,
			Points:   p.Points,
			JoinedAt: p.JoinedAt,
		}
		if p.Profile != nil && p.Profile.User != nil {
			row.Username = p.Profile.User.Username
		}
		resp.Participants = append(resp.Participants, row)
	}

	return resp
}

func (s *challengeServiceImpl) publish(event *realtime.Event) {
	if err := s.publisher.Publish(event); err != nil {
		s.logger.Warn().
			Err(err).
			Str("type", event.Type).
			Int64("communityID", event.CommunityID).
			Msg("Failed to publish event")
	}
}
