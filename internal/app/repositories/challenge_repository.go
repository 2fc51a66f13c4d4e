package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nexasuite/powerup/internal/app/models"
	"github.com/nexasuite/powerup/internal/db"
)

// ChallengeRepository handles database operations for challenges
type ChallengeRepository struct {
	db *pgxpool.Pool
}

// NewChallengeRepository creates a new ChallengeRepository
func NewChallengeRepository(db *pgxpool.Pool) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

// Create inserts a challenge inside the given transaction and returns its ID
func (r *ChallengeRepository) Create(ctx context.Context, tx pgx.Tx, challenge *models.Challenge) (int64, error) {
	query := squirrel.Insert("challenges").
		Columns("community_id", "name", "description", "start_date", "end_date").
		Values(challenge.CommunityID, challenge.Name, challenge.Description, challenge.StartDate, challenge.EndDate).
		Suffix("RETURNING id, created_at").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	if err := tx.QueryRow(ctx, sql, args...).Scan(&id, &challenge.CreatedAt); err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return id, nil
}

// AttachWorkoutTypes links a challenge to the workout types that qualify
// for it, inside the given transaction
func (r *ChallengeRepository) AttachWorkoutTypes(ctx context.Context, tx pgx.Tx, challengeID int64, workoutTypeIDs []int64) error {
	if len(workoutTypeIDs) == 0 {
		return nil
	}

	builder := squirrel.Insert("challenge_workout_types").
		Columns("challenge_id", "workout_type_id").
		PlaceholderFormat(squirrel.Dollar)
	for _, wtID := range workoutTypeIDs {
		builder = builder.Values(challengeID, wtID)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// GetByID retrieves a challenge with its workout types, or nil when absent
func (r *ChallengeRepository) GetByID(ctx context.Context, id int64) (*models.Challenge, error) {
	query := squirrel.Select("id", "community_id", "name", "description", "start_date", "end_date", "created_at").
		From("challenges").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var challenge models.Challenge
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&challenge.ID,
		&challenge.CommunityID,
		&challenge.Name,
		&challenge.Description,
		&challenge.StartDate,
		&challenge.EndDate,
		&challenge.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	workoutTypes, err := r.workoutTypesFor(ctx, r.db, challenge.ID)
	if err != nil {
		return nil, err
	}
	challenge.WorkoutTypes = workoutTypes

	return &challenge, nil
}

// ListByCommunity retrieves all challenges of a community, newest first,
// each with its workout types loaded
func (r *ChallengeRepository) ListByCommunity(ctx context.Context, communityID int64) ([]*models.Challenge, error) {
	query := squirrel.Select("id", "community_id", "name", "description", "start_date", "end_date", "created_at").
		From("challenges").
		Where("community_id = ?", communityID).
		OrderBy("start_date DESC").
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

	var challenges []*models.Challenge
	for rows.Next() {
		var c models.Challenge
		if err := rows.Scan(&c.ID, &c.CommunityID, &c.Name, &c.Description, &c.StartDate, &c.EndDate, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		challenges = append(challenges, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	for _, c := range challenges {
		workoutTypes, err := r.workoutTypesFor(ctx, r.db, c.ID)
		if err != nil {
			return nil, err
		}
		c.WorkoutTypes = workoutTypes
	}

	return challenges, nil
}

// ListQualifying retrieves, inside the given transaction, the challenges
// that accept the workout type and whose date range covers the workout
// date. Both bounds are inclusive. Participation is not filtered here;
// the point increment skips non-participants.
func (r *ChallengeRepository) ListQualifying(ctx context.Context, tx pgx.Tx, workoutTypeID int64, workoutDate time.Time) ([]*models.Challenge, error) {
	sql := `SELECT c.id, c.community_id, c.name, c.description, c.start_date, c.end_date, c.created_at
		FROM challenges c
		JOIN challenge_workout_types cwt ON cwt.challenge_id = c.id
		WHERE cwt.workout_type_id = $1
		  AND c.start_date <= $2
		  AND c.end_date >= $2`

	rows, err := tx.Query(ctx, sql, workoutTypeID, workoutDate)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var challenges []*models.Challenge
	for rows.Next() {
		var c models.Challenge
		if err := rows.Scan(&c.ID, &c.CommunityID, &c.Name, &c.Description, &c.StartDate, &c.EndDate, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		challenges = append(challenges, &c)
	}

	return challenges, rows.Err()
}

// Delete removes a challenge inside the given transaction. Workout-type
// links and participant rows go with it via FK cascades.
func (r *ChallengeRepository) Delete(ctx context.Context, tx pgx.Tx, id int64) error {
	query := squirrel.Delete("challenges").
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
		return fmt.Errorf("challenge not found with ID %d", id)
	}

	return nil
}

func (r *ChallengeRepository) workoutTypesFor(ctx context.Context, q db.Querier, challengeID int64) ([]*models.WorkoutType, error) {
	query := squirrel.Select("wt.id", "wt.name", "wt.calories_per_minute", "wt.points_per_minute").
		From("workout_types wt").
		Join("challenge_workout_types cwt ON cwt.workout_type_id = wt.id").
		Where("cwt.challenge_id = ?", challengeID).
		OrderBy("wt.name ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var workoutTypes []*models.WorkoutType
	for rows.Next() {
		var wt models.WorkoutType
		if err := rows.Scan(&wt.ID, &wt.Name, &wt.CaloriesPerMinute, &wt.PointsPerMinute); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		workoutTypes = append(workoutTypes, &wt)
	}

	return workoutTypes, rows.Err()
}
