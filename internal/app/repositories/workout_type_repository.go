package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nexasuite/powerup/internal/app/models"
)

// WorkoutTypeRepository handles database operations for the workout type
// reference table
type WorkoutTypeRepository struct {
	db *pgxpool.Pool
}

// NewWorkoutTypeRepository creates a new WorkoutTypeRepository
func NewWorkoutTypeRepository(db *pgxpool.Pool) *WorkoutTypeRepository {
	return &WorkoutTypeRepository{db: db}
}

// GetByID retrieves a workout type by ID, or nil when absent
func (r *WorkoutTypeRepository) GetByID(ctx context.Context, id int64) (*models.WorkoutType, error) {
	query := squirrel.Select("id", "name", "description", "calories_per_minute", "points_per_minute", "thumbnail_url", "animation_url", "created_at").
		From("workout_types").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var wt models.WorkoutType
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&wt.ID,
		&wt.Name,
		&wt.Description,
		&wt.CaloriesPerMinute,
		&wt.PointsPerMinute,
		&wt.ThumbnailURL,
		&wt.AnimationURL,
		&wt.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &wt, nil
}

// GetAll retrieves every workout type ordered by name
func (r *WorkoutTypeRepository) GetAll(ctx context.Context) ([]*models.WorkoutType, error) {
	query := squirrel.Select("id", "name", "description", "calories_per_minute", "points_per_minute", "thumbnail_url", "animation_url", "created_at").
		From("workout_types").
		OrderBy("name ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var workoutTypes []*models.WorkoutType
	for rows.Next() {
		var wt models.WorkoutType
		if err := rows.Scan(
			&wt.ID,
			&wt.Name,
			&wt.Description,
			&wt.CaloriesPerMinute,
			&wt.PointsPerMinute,
			&wt.ThumbnailURL,
			&wt.AnimationURL,
			&wt.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		workoutTypes = append(workoutTypes, &wt)
	}

	return workoutTypes, rows.Err()
}

// ExistAll reports whether every given workout type ID exists
func (r *WorkoutTypeRepository) ExistAll(ctx context.Context, ids []int64) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}

	query := squirrel.Select("COUNT(*)").
		From("workout_types").
		Where(squirrel.Eq{"id": ids}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("error building SQL: %w", err)
	}

	var count int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("error executing query: %w", err)
	}

	return count == len(ids), nil
}
