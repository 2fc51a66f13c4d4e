package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nexasuite/powerup/internal/app/models"
)

// WorkoutRepository handles database operations for workouts
type WorkoutRepository struct {
	db *pgxpool.Pool
}

// NewWorkoutRepository creates a new WorkoutRepository
func NewWorkoutRepository(db *pgxpool.Pool) *WorkoutRepository {
	return &WorkoutRepository{db: db}
}

// Create inserts a workout inside the given transaction and returns its ID
func (r *WorkoutRepository) Create(ctx context.Context, tx pgx.Tx, workout *models.Workout) (int64, error) {
	query := squirrel.Insert("workouts").
		Columns("profile_id", "workout_type_id", "duration_minutes", "calories_burned", "points", "workout_date", "selfie_file_id").
		Values(workout.ProfileID, workout.WorkoutTypeID, workout.DurationMinutes, workout.CaloriesBurned, workout.Points, workout.WorkoutDate, workout.SelfieFileID).
		Suffix("RETURNING id, created_at").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	if err := tx.QueryRow(ctx, sql, args...).Scan(&id, &workout.CreatedAt); err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return id, nil
}

// GetByID retrieves a workout with its type joined in, or nil when absent
func (r *WorkoutRepository) GetByID(ctx context.Context, id int64) (*models.Workout, error) {
	query := r.selectWithType().
		Where("w.id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	workout, err := r.scanOne(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return workout, nil
}

// ListByProfile retrieves workouts posted by a profile, newest first
func (r *WorkoutRepository) ListByProfile(ctx context.Context, profileID int64, limit, offset uint64) ([]*models.Workout, error) {
	query := r.selectWithType().
		Where("w.profile_id = ?", profileID).
		OrderBy("w.workout_date DESC", "w.id DESC").
		Limit(limit).
		Offset(offset).
		PlaceholderFormat(squirrel.Dollar)

	return r.list(ctx, query)
}

// CountByProfile counts workouts posted by a profile
func (r *WorkoutRepository) CountByProfile(ctx context.Context, profileID int64) (int64, error) {
	return r.count(ctx, squirrel.Eq{"profile_id": profileID})
}

// Delete removes a workout inside the given transaction
func (r *WorkoutRepository) Delete(ctx context.Context, tx pgx.Tx, id int64) error {
	query := squirrel.Delete("workouts").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	result, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("workout not found with ID %d", id)
	}

	return nil
}

func (r *WorkoutRepository) count(ctx context.Context, pred interface{}) (int64, error) {
	query := squirrel.Select("COUNT(*)").
		From("workouts").
		Where(pred).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return count, nil
}

func (r *WorkoutRepository) selectWithType() squirrel.SelectBuilder {
	return squirrel.Select(
		"w.id", "w.profile_id", "w.workout_type_id",
		"w.duration_minutes", "w.calories_burned", "w.points", "w.workout_date",
		"w.selfie_file_id", "w.created_at",
		"wt.id", "wt.name", "wt.calories_per_minute", "wt.points_per_minute",
	).
		From("workouts w").
		Join("workout_types wt ON wt.id = w.workout_type_id")
}

func (r *WorkoutRepository) list(ctx context.Context, query squirrel.SelectBuilder) ([]*models.Workout, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var workouts []*models.Workout
	for rows.Next() {
		workout, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, workout)
	}

	return workouts, rows.Err()
}

func (r *WorkoutRepository) scanOne(row pgx.Row) (*models.Workout, error) {
	var workout models.Workout
	var workoutType models.WorkoutType
	err := row.Scan(
		&workout.ID,
		&workout.ProfileID,
		&workout.WorkoutTypeID,
		&workout.DurationMinutes,
		&workout.CaloriesBurned,
		&workout.Points,
		&workout.WorkoutDate,
		&workout.SelfieFileID,
		&workout.CreatedAt,
		&workoutType.ID,
		&workoutType.Name,
		&workoutType.CaloriesPerMinute,
		&workoutType.PointsPerMinute,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("error scanning row: %w", err)
	}

	workout.WorkoutType = &workoutType
	return &workout, nil
}
