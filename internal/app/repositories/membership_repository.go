package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nexasuite/powerup/internal/app/models"
)

// MembershipRepository handles database operations for community admins,
// members and removal records
type MembershipRepository struct {
	db *pgxpool.Pool
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(db *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// AddMember inserts a membership row inside the given transaction
func (r *MembershipRepository) AddMember(ctx context.Context, tx pgx.Tx, communityID, profileID int64) error {
	return r.insertPair(ctx, tx, "community_members", communityID, profileID)
}

// AddAdmin inserts an admin row inside the given transaction
func (r *MembershipRepository) AddAdmin(ctx context.Context, tx pgx.Tx, communityID, profileID int64) error {
	return r.insertPair(ctx, tx, "community_admins", communityID, profileID)
}

func (r *MembershipRepository) insertPair(ctx context.Context, tx pgx.Tx, table string, communityID, profileID int64) error {
	query := squirrel.Insert(table).
		Columns("community_id", "profile_id").
		Values(communityID, profileID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// RemoveMember deletes a membership row inside the given transaction.
// Returns false when the profile was not a member.
func (r *MembershipRepository) RemoveMember(ctx context.Context, tx pgx.Tx, communityID, profileID int64) (bool, error) {
	return r.deletePair(ctx, tx, "community_members", communityID, profileID)
}

// RemoveAdmin deletes an admin row inside the given transaction.
// Returns false when the profile was not an admin.
func (r *MembershipRepository) RemoveAdmin(ctx context.Context, tx pgx.Tx, communityID, profileID int64) (bool, error) {
	return r.deletePair(ctx, tx, "community_admins", communityID, profileID)
}

func (r *MembershipRepository) deletePair(ctx context.Context, tx pgx.Tx, table string, communityID, profileID int64) (bool, error) {
	query := squirrel.Delete(table).
		Where(squirrel.Eq{"community_id": communityID, "profile_id": profileID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("error building SQL: %w", err)
	}

	result, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("error executing query: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// IsMember reports whether the profile is a member of the community
func (r *MembershipRepository) IsMember(ctx context.Context, communityID, profileID int64) (bool, error) {
	return r.existsPair(ctx, "community_members", communityID, profileID)
}

// IsAdmin reports whether the profile is an admin of the community
func (r *MembershipRepository) IsAdmin(ctx context.Context, communityID, profileID int64) (bool, error) {
	return r.existsPair(ctx, "community_admins", communityID, profileID)
}

// WasRemoved reports whether the profile carries a removal record for the
// community. Removal records are never cleared, so this is a permanent ban.
func (r *MembershipRepository) WasRemoved(ctx context.Context, communityID, profileID int64) (bool, error) {
	return r.existsPair(ctx, "removed_community_members", communityID, profileID)
}

func (r *MembershipRepository) existsPair(ctx context.Context, table string, communityID, profileID int64) (bool, error) {
	query := squirrel.Select("1").
		From(table).
		Where(squirrel.Eq{"community_id": communityID, "profile_id": profileID}).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("error building SQL: %w", err)
	}

	var one int
	err = r.db.QueryRow(ctx, sql, args...).Scan(&one)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("error executing query: %w", err)
	}

	return true, nil
}

// RecordRemoval writes a removal record inside the given transaction.
// ON CONFLICT DO NOTHING keeps a second removal of a re-added profile from
// failing on the primary key.
func (r *MembershipRepository) RecordRemoval(ctx context.Context, tx pgx.Tx, communityID, profileID int64) error {
	sql := `INSERT INTO removed_community_members (community_id, profile_id)
		VALUES ($1, $2)
		ON CONFLICT (community_id, profile_id) DO NOTHING`

	if _, err := tx.Exec(ctx, sql, communityID, profileID); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// ListMembers retrieves member profiles of a community ordered by username
func (r *MembershipRepository) ListMembers(ctx context.Context, communityID int64) ([]*models.Profile, error) {
	return r.listPair(ctx, "community_members", communityID)
}

// ListAdmins retrieves admin profiles of a community ordered by username
func (r *MembershipRepository) ListAdmins(ctx context.Context, communityID int64) ([]*models.Profile, error) {
	return r.listPair(ctx, "community_admins", communityID)
}

func (r *MembershipRepository) listPair(ctx context.Context, table string, communityID int64) ([]*models.Profile, error) {
	query := squirrel.Select(
		"p.id", "p.user_id", "p.bio", "p.avatar_file_id", "p.created_at",
		"u.id", "u.username", "u.email", "u.created_at",
	).
		From(table + " t").
		Join("profiles p ON p.id = t.profile_id").
		Join("users u ON u.id = p.user_id").
		Where("t.community_id = ?", communityID).
		OrderBy("u.username ASC").
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

	var profiles []*models.Profile
	for rows.Next() {
		var profile models.Profile
		var user models.User
		if err := rows.Scan(
			&profile.ID,
			&profile.UserID,
			&profile.Bio,
			&profile.AvatarFileID,
			&profile.CreatedAt,
			&user.ID,
			&user.Username,
			&user.Email,
			&user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		profile.User = &user
		profiles = append(profiles, &profile)
	}

	return profiles, rows.Err()
}
