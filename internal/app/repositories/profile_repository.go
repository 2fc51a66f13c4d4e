package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nexasuite/powerup/internal/app/models"
)

// ProfileRepository handles database operations for profiles
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts a profile for a user inside the given transaction
func (r *ProfileRepository) Create(ctx context.Context, tx pgx.Tx, profile *models.Profile) (int64, error) {
	query := squirrel.Insert("profiles").
		Columns("user_id", "bio", "date_of_birth", "gender", "country", "city", "height", "weight", "avatar_file_id").
		Values(profile.UserID, profile.Bio, profile.DateOfBirth, profile.Gender, profile.Country, profile.City, profile.Height, profile.Weight, profile.AvatarFileID).
		Suffix("RETURNING id, created_at").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	if err := tx.QueryRow(ctx, sql, args...).Scan(&id, &profile.CreatedAt); err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return id, nil
}

// GetByID retrieves a profile with its user joined in, or nil when absent
func (r *ProfileRepository) GetByID(ctx context.Context, id int64) (*models.Profile, error) {
	return r.getOne(ctx, squirrel.Eq{"p.id": id})
}

// GetByUserID retrieves the profile owned by a user, or nil when absent
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	return r.getOne(ctx, squirrel.Eq{"p.user_id": userID})
}

// GetByUsername retrieves a profile by its user's username, or nil when absent
func (r *ProfileRepository) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	return r.getOne(ctx, squirrel.Eq{"u.username": username})
}

func (r *ProfileRepository) getOne(ctx context.Context, pred interface{}) (*models.Profile, error) {
	query := squirrel.Select(
		"p.id", "p.user_id", "p.bio", "p.date_of_birth", "p.gender", "p.country",
		"p.city", "p.height", "p.weight", "p.avatar_file_id", "p.created_at",
		"u.id", "u.username", "u.email", "u.created_at",
	).
		From("profiles p").
		Join("users u ON u.id = p.user_id").
		Where(pred).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var profile models.Profile
	var user models.User
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Bio,
		&profile.DateOfBirth,
		&profile.Gender,
		&profile.Country,
		&profile.City,
		&profile.Height,
		&profile.Weight,
		&profile.AvatarFileID,
		&profile.CreatedAt,
		&user.ID,
		&user.Username,
		&user.Email,
		&user.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	profile.User = &user
	return &profile, nil
}

// Update persists mutable profile fields
func (r *ProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	query := squirrel.Update("profiles").
		Set("bio", profile.Bio).
		Set("date_of_birth", profile.DateOfBirth).
		Set("gender", profile.Gender).
		Set("country", profile.Country).
		Set("city", profile.City).
		Set("height", profile.Height).
		Set("weight", profile.Weight).
		Set("avatar_file_id", profile.AvatarFileID).
		Where("id = ?", profile.ID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("profile not found with ID %d", profile.ID)
	}

	return nil
}
