package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories is the container for all repository instances
type Repositories struct {
	UserRepository                 *UserRepository
	ProfileRepository              *ProfileRepository
	FileRepository                 *FileRepository
	CommunityRepository            *CommunityRepository
	MembershipRepository           *MembershipRepository
	ChallengeRepository            *ChallengeRepository
	ChallengeParticipantRepository *ChallengeParticipantRepository
	WorkoutRepository              *WorkoutRepository
	WorkoutTypeRepository          *WorkoutTypeRepository
}

// NewRepositories creates all repositories sharing one connection pool
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:                 NewUserRepository(db),
		ProfileRepository:              NewProfileRepository(db),
		FileRepository:                 NewFileRepository(db),
		CommunityRepository:            NewCommunityRepository(db),
		MembershipRepository:           NewMembershipRepository(db),
		ChallengeRepository:            NewChallengeRepository(db),
		ChallengeParticipantRepository: NewChallengeParticipantRepository(db),
		WorkoutRepository:              NewWorkoutRepository(db),
		WorkoutTypeRepository:          NewWorkoutTypeRepository(db),
	}
}
