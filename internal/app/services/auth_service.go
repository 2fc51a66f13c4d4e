package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/nexasuite/powerup/internal/app/models"
	"github.com/nexasuite/powerup/internal/app/models/dto"
	"github.com/nexasuite/powerup/internal/db"
	"github.com/nexasuite/powerup/internal/pkg/apperrors"
	"github.com/nexasuite/powerup/internal/pkg/auth"
)

// AuthService defines the interface for account operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	GetProfile(ctx context.Context, profileID int64) (*dto.ProfileResponse, error)
}

// userStore is the slice of UserRepository the auth service needs
type userStore interface {
	Create(ctx context.Context, tx pgx.Tx, user *models.User) (int64, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// profileStore is the slice of ProfileRepository shared by services
type profileStore interface {
	Create(ctx context.Context, tx pgx.Tx, profile *models.Profile) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Profile, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
}

// authServiceImpl implements AuthService
type authServiceImpl struct {
	userRepo    userStore
	profileRepo profileStore
	fileRepo    fileStore
	jwtService  *auth.JWTService
	txRunner    db.TxRunner
	logger      zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo userStore,
	profileRepo profileStore,
	fileRepo fileStore,
	jwtService *auth.JWTService,
	txRunner db.TxRunner,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		fileRepo:    fileRepo,
		jwtService:  jwtService,
		txRunner:    txRunner,
		logger:      logger,
	}
}

// Register creates a user with its profile and issues an access token
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflictError("Username already exists")
	}

	exists, err = s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflictError("Email already exists")
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
	}
	profile := &models.Profile{}

	err = s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		userID, err := s.userRepo.Create(ctx, tx, user)
		if err != nil {
			return err
		}
		user.ID = userID

		profile.UserID = userID
		profileID, err := s.profileRepo.Create(ctx, tx, profile)
		if err != nil {
			return err
		}
		profile.ID = profileID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("userID", user.ID).
		Str("username", user.Username).
		Msg("User registered")

	return s.issueToken(user, profile)
}

// Login verifies credentials and issues an access token
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	profile, err := s.profileRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperrors.ErrResourceNotFound
	}

	s.logger.Info().
		Int64("userID", user.ID).
		Str("username", user.Username).
		Msg("User logged in")

	return s.issueToken(user, profile)
}

// GetProfile retrieves the public view of a profile
func (s *authServiceImpl) GetProfile(ctx context.Context, profileID int64) (*dto.ProfileResponse, error) {
	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperrors.NewResourceNotFoundError("Profile not found")
	}

	resp := profileToResponse(ctx, profile, s.fileRepo)
	return &resp, nil
}

func (s *authServiceImpl) issueToken(user *models.User, profile *models.Profile) (*dto.TokenResponse, error) {
	token, expiresIn, err := s.jwtService.GenerateToken(user.ID, profile.ID, user.Username)
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(expiresIn),
	}, nil
}
