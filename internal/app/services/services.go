package services

import (
	"github.com/rs/zerolog"

	"github.com/nexasuite/powerup/internal/app/repositories"
	"github.com/nexasuite/powerup/internal/db"
	"github.com/nexasuite/powerup/internal/pkg/auth"
	"github.com/nexasuite/powerup/internal/pkg/filestorage"
	"github.com/nexasuite/powerup/internal/pkg/realtime"
)

// Services is the container for all service instances
type Services struct {
	AuthService       AuthService
	MembershipService MembershipService
	ChallengeService  ChallengeService
	WorkoutService    WorkoutService
}

// NewServices wires all services over the shared repositories, storage,
// transaction runner and event publisher
func NewServices(
	repos *repositories.Repositories,
	jwtService *auth.JWTService,
	storage filestorage.FileStorage,
	txRunner db.TxRunner,
	publisher realtime.Publisher,
	logger zerolog.Logger,
) *Services {
	challengeService := NewChallengeService(
		repos.ChallengeRepository,
		repos.ChallengeParticipantRepository,
		repos.WorkoutTypeRepository,
		repos.MembershipRepository,
		txRunner,
		publisher,
		logger.With().Str("service", "challenge").Logger(),
	)

	return &Services{
		AuthService: NewAuthService(
			repos.UserRepository,
			repos.ProfileRepository,
			repos.FileRepository,
			jwtService,
			txRunner,
			logger.With().Str("service", "auth").Logger(),
		),
		MembershipService: NewMembershipService(
			repos.CommunityRepository,
			repos.MembershipRepository,
			repos.ProfileRepository,
			repos.FileRepository,
			storage,
			txRunner,
			publisher,
			logger.With().Str("service", "membership").Logger(),
		),
		ChallengeService: challengeService,
		WorkoutService: NewWorkoutService(
			repos.WorkoutRepository,
			repos.WorkoutTypeRepository,
			repos.FileRepository,
			storage,
			challengeService,
			txRunner,
			logger.With().Str("service", "workout").Logger(),
		),
	}
}
