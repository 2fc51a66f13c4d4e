package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nexasuite/powerup/internal/app/models"
)

// CommunityRepository handles database operations for communities
type CommunityRepository struct {
	db *pgxpool.Pool
}

// NewCommunityRepository creates a new CommunityRepository
func NewCommunityRepository(db *pgxpool.Pool) *CommunityRepository {
	return &CommunityRepository{db: db}
}

// Create inserts a community inside the given transaction and returns its ID.
// The join code is written once here and never updated afterwards.
func (r *CommunityRepository) Create(ctx context.Context, tx pgx.Tx, community *models.Community) (int64, error) {
	query := squirrel.Insert("communities").
		Columns("name", "description", "avatar_file_id", "join_code").
		Values(community.Name, community.Description, community.AvatarFileID, community.JoinCode).
		Suffix("RETURNING id, created_at").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	if err := tx.QueryRow(ctx, sql, args...).Scan(&id, &community.CreatedAt); err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return id, nil
}

// GetByID retrieves a community by ID, or nil when absent
func (r *CommunityRepository) GetByID(ctx context.Context, id int64) (*models.Community, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByJoinCode retrieves a community by its join code, or nil when absent
func (r *CommunityRepository) GetByJoinCode(ctx context.Context, code string) (*models.Community, error) {
	return r.getOne(ctx, squirrel.Eq{"join_code": code})
}

func (r *CommunityRepository) getOne(ctx context.Context, pred interface{}) (*models.Community, error) {
	query := squirrel.Select("id", "name", "description", "avatar_file_id", "join_code", "created_at").
		From("communities").
		Where(pred).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var community models.Community
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&community.ID,
		&community.Name,
		&community.Description,
		&community.AvatarFileID,
		&community.JoinCode,
		&community.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &community, nil
}

// GetAll retrieves communities the given profile belongs to
func (r *CommunityRepository) GetAll(ctx context.Context, profileID int64) ([]*models.Community, error) {
	query := squirrel.Select("c.id", "c.name", "c.description", "c.avatar_file_id", "c.join_code", "c.created_at").
		From("communities c").
		Join("community_members cm ON cm.community_id = c.id").
		Where("cm.profile_id = ?", profileID).
		OrderBy("c.created_at DESC").
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

	var communities []*models.Community
	for rows.Next() {
		var c models.Community
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.AvatarFileID, &c.JoinCode, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		communities = append(communities, &c)
	}

	return communities, rows.Err()
}

// Delete removes a community inside the given transaction. Membership rows,
// ban records, challenges and participants go with it via FK cascades.
func (r *CommunityRepository) Delete(ctx context.Context, tx pgx.Tx, id int64) error {
	query := squirrel.Delete("communities").
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
		return fmt.Errorf("community not found with ID %d", id)
	}

	return nil
}
