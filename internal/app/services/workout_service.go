package services

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/nexasuite/powerup/internal/app/models"
	"github.com/nexasuite/powerup/internal/app/models/dto"
	"github.com/nexasuite/powerup/internal/db"
	"github.com/nexasuite/powerup/internal/pkg/apperrors"
	"github.com/nexasuite/powerup/internal/pkg/filestorage"
	"github.com/nexasuite/powerup/internal/pkg/helpers"
	"github.com/nexasuite/powerup/internal/pkg/validation"
)

// WorkoutService defines the interface for workout operations
type WorkoutService interface {
	RecordWorkout(ctx context.Context, profileID int64, req *dto.CreateWorkoutRequest, selfie *multipart.FileHeader) (*dto.WorkoutResponse, error)
	GetWorkout(ctx context.Context, id int64) (*dto.WorkoutResponse, error)
	ListWorkouts(ctx context.Context, profileID int64, page, size int) (*dto.WorkoutListResponse, error)
	DeleteWorkout(ctx context.Context, profileID, workoutID int64) error
	ListWorkoutTypes(ctx context.Context) ([]dto.WorkoutTypeResponse, error)
}

// workoutStore is the slice of WorkoutRepository the service needs
type workoutStore interface {
	Create(ctx context.Context, tx pgx.Tx, workout *models.Workout) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Workout, error)
	ListByProfile(ctx context.Context, profileID int64, limit, offset uint64) ([]*models.Workout, error)
	CountByProfile(ctx context.Context, profileID int64) (int64, error)
	Delete(ctx context.Context, tx pgx.Tx, id int64) error
}

// workoutApplier credits a recorded workout to qualifying challenges
// inside the workout's transaction
type workoutApplier interface {
	ApplyWorkout(ctx context.Context, tx pgx.Tx, profileID int64, workoutTypeID int64, workoutDate time.Time, points float64) error
}

// workoutServiceImpl implements WorkoutService
type workoutServiceImpl struct {
	workoutRepo     workoutStore
	workoutTypeRepo workoutTypeStore
	fileRepo        fileStore
	fileStorage     filestorage.FileStorage
	applier         workoutApplier
	txRunner        db.TxRunner
	logger          zerolog.Logger
}

// NewWorkoutService creates a new WorkoutService
func NewWorkoutService(
	workoutRepo workoutStore,
	workoutTypeRepo workoutTypeStore,
	fileRepo fileStore,
	fileStorage filestorage.FileStorage,
	applier workoutApplier,
	txRunner db.TxRunner,
	logger zerolog.Logger,
) WorkoutService {
	return &workoutServiceImpl{
		workoutRepo:     workoutRepo,
		workoutTypeRepo: workoutTypeRepo,
		fileRepo:        fileRepo,
		fileStorage:     fileStorage,
		applier:         applier,
		txRunner:        txRunner,
		logger:          logger,
	}
}

// RecordWorkout stores a workout and credits its points to every
// qualifying challenge in one transaction. Points and calories are
// computed from the workout type's per-minute rates; clients cannot
// submit their own figures.
func (s *workoutServiceImpl) RecordWorkout(ctx context.Context, profileID int64, req *dto.CreateWorkoutRequest, selfie *multipart.FileHeader) (*dto.WorkoutResponse, error) {
	workoutType, err := s.workoutTypeRepo.GetByID(ctx, req.WorkoutTypeID)
	if err != nil {
		return nil, err
	}
	if workoutType == nil {
		return nil, apperrors.NewResourceNotFoundError("Workout type not found")
	}

	workoutDate, err := time.Parse(dateLayout, req.WorkoutDate)
	if err != nil {
		return nil, apperrors.NewBadRequestError("Workout date must be YYYY-MM-DD")
	}

	var stored *filestorage.StoredFile
	if selfie != nil {
		if _, err := validation.ValidateImage(selfie); err != nil {
			return nil, apperrors.NewBadRequestError("Selfie must be a valid image")
		}
		stored, err = s.fileStorage.SaveFile(selfie, filestorage.PathSelfies)
		if err != nil {
			return nil, err
		}
	}

	workout := &models.Workout{
		ProfileID:       profileID,
		WorkoutTypeID:   workoutType.ID,
		DurationMinutes: req.DurationMinutes,
		CaloriesBurned:  workoutType.CaloriesPerMinute * req.DurationMinutes,
		Points:          workoutType.PointsPerMinute * req.DurationMinutes,
		WorkoutDate:     workoutDate,
	}

	err = s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
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
			workout.SelfieFileID = &fileID
		}

		workoutID, err := s.workoutRepo.Create(ctx, tx, workout)
		if err != nil {
			return err
		}
		workout.ID = workoutID

		// Point credits ride the same transaction as the workout row
		return s.applier.ApplyWorkout(ctx, tx, profileID, workoutType.ID, workoutDate, workout.Points)
	})
	if err != nil {
		// The transaction rolled back, so the stored selfie is orphaned
		if stored != nil {
			if cleanupErr := s.fileStorage.DeleteFile(stored.Path); cleanupErr != nil {
				s.logger.Warn().Err(cleanupErr).Str("path", stored.Path).Msg("Failed to clean up selfie after rollback")
			}
		}
		return nil, err
	}

	s.logger.Info().
		Int64("workoutID", workout.ID).
		Int64("profileID", profileID).
		Float64("points", workout.Points).
		Msg("Workout recorded")

	workout.WorkoutType = workoutType
	return s.buildWorkoutResponse(ctx, workout), nil
}

// GetWorkout retrieves a workout by ID
func (s *workoutServiceImpl) GetWorkout(ctx context.Context, id int64) (*dto.WorkoutResponse, error) {
	workout, err := s.workoutRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if workout == nil {
		return nil, apperrors.NewResourceNotFoundError("Workout not found")
	}

	return s.buildWorkoutResponse(ctx, workout), nil
}

// ListWorkouts retrieves the profile's workout history, newest first
func (s *workoutServiceImpl) ListWorkouts(ctx context.Context, profileID int64, page, size int) (*dto.WorkoutListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	workouts, err := s.workoutRepo.ListByProfile(ctx, profileID, uint64(limit), offset)
	if err != nil {
		return nil, err
	}

	total, err := s.workoutRepo.CountByProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.WorkoutResponse, 0, len(workouts))
	for _, workout := range workouts {
		responses = append(responses, *s.buildWorkoutResponse(ctx, workout))
	}

	return &dto.WorkoutListResponse{
		Workouts:       responses,
		PaginationInfo: helpers.NewPaginationInfo(total, page, size),
	}, nil
}

// DeleteWorkout removes a workout. Only its owner may delete it; points
// already credited to challenges are kept.
func (s *workoutServiceImpl) DeleteWorkout(ctx context.Context, profileID, workoutID int64) error {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		return err
	}
	if workout == nil {
		return apperrors.NewResourceNotFoundError("Workout not found")
	}
	if workout.ProfileID != profileID {
		return apperrors.NewForbiddenError("Only the owner may delete a workout")
	}

	var selfie *models.File
	if workout.SelfieFileID != nil {
		selfie, err = s.fileRepo.GetByID(ctx, *workout.SelfieFileID)
		if err != nil {
			return err
		}
	}

	err = s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.workoutRepo.Delete(ctx, tx, workoutID)
	})
	if err != nil {
		return err
	}

	if selfie != nil {
		if err := s.fileRepo.Delete(ctx, selfie.ID); err != nil {
			s.logger.Warn().Err(err).Int64("fileID", selfie.ID).Msg("Failed to delete selfie record")
		}
		if err := s.fileStorage.DeleteFile(selfie.FilePath); err != nil {
			s.logger.Warn().Err(err).Str("path", selfie.FilePath).Msg("Failed to delete selfie file")
		}
	}

	return nil
}

// ListWorkoutTypes retrieves the workout type reference data
func (s *workoutServiceImpl) ListWorkoutTypes(ctx context.Context) ([]dto.WorkoutTypeResponse, error) {
	workoutTypes, err := s.workoutTypeRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.WorkoutTypeResponse, 0, len(workoutTypes))
	for _, wt := range workoutTypes {
		responses = append(responses, workoutTypeToResponse(wt))
	}
	return responses, nil
}

func (s *workoutServiceImpl) buildWorkoutResponse(ctx context.Context, workout *models.Workout) *dto.WorkoutResponse {
	resp := &dto.WorkoutResponse{
		ID:              workout.ID,
		DurationMinutes: workout.DurationMinutes,
		CaloriesBurned:  workout.CaloriesBurned,
		Points:          workout.Points,
		WorkoutDate:     workout.WorkoutDate.Format(dateLayout),
		CreatedAt:       workout.CreatedAt,
	}
	if workout.WorkoutType != nil {
		resp.WorkoutType = workout.WorkoutType.Name
	}
	if workout.SelfieFileID != nil {
		if file, err := s.fileRepo.GetByID(ctx, *workout.SelfieFileID); err == nil && file != nil {
			resp.SelfieURL = &file.FileURL
		}
	}
	return resp
}
