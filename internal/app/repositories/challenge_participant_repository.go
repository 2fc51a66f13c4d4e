package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nexasuite/powerup/internal/app/models"
)

// ChallengeParticipantRepository handles database operations for challenge
// participation and points
type ChallengeParticipantRepository struct {
	db *pgxpool.Pool
}

// NewChallengeParticipantRepository creates a new ChallengeParticipantRepository
func NewChallengeParticipantRepository(db *pgxpool.Pool) *ChallengeParticipantRepository {
	return &ChallengeParticipantRepository{db: db}
}

// Add inserts a participant row inside the given transaction. A duplicate
// join trips the unique constraint on (challenge_id, profile_id).
func (r *ChallengeParticipantRepository) Add(ctx context.Context, tx pgx.Tx, challengeID, profileID int64) error {
	query := squirrel.Insert("challenge_participants").
		Columns("challenge_id", "profile_id", "points").
		Values(challengeID, profileID, 0).
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

// Remove deletes a participant row inside the given transaction.
// Returns false when the profile was not a participant.
func (r *ChallengeParticipantRepository) Remove(ctx context.Context, tx pgx.Tx, challengeID, profileID int64) (bool, error) {
	query := squirrel.Delete("challenge_participants").
		Where(squirrel.Eq{"challenge_id": challengeID, "profile_id": profileID}).
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

// GetByChallengeAndProfile retrieves a participant row, or nil when absent
func (r *ChallengeParticipantRepository) GetByChallengeAndProfile(ctx context.Context, challengeID, profileID int64) (*models.ChallengeParticipant, error) {
	query := squirrel.Select("id", "challenge_id", "profile_id", "points", "joined_at").
		From("challenge_participants").
		Where(squirrel.Eq{"challenge_id": challengeID, "profile_id": profileID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var participant models.ChallengeParticipant
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&participant.ID,
		&participant.ChallengeID,
		&participant.ProfileID,
		&participant.Points,
		&participant.JoinedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &participant, nil
}

// ListByChallenge retrieves participants of a challenge with their profiles,
// highest points first
func (r *ChallengeParticipantRepository) ListByChallenge(ctx context.Context, challengeID int64) ([]*models.ChallengeParticipant, error) {
	query := squirrel.Select(
		"cp.id", "cp.challenge_id", "cp.profile_id", "cp.points", "cp.joined_at",
		"p.id", "p.user_id", "p.bio", "p.avatar_file_id", "p.created_at",
		"u.id", "u.username", "u.email", "u.created_at",
	).
		From("challenge_participants cp").
		Join("profiles p ON p.id = cp.profile_id").
		Join("users u ON u.id = p.user_id").
		Where("cp.challenge_id = ?", challengeID).
		OrderBy("cp.points DESC", "cp.joined_at ASC").
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

	var participants []*models.ChallengeParticipant
	for rows.Next() {
		var participant models.ChallengeParticipant
		var profile models.Profile
		var user models.User
		if err := rows.Scan(
			&participant.ID,
			&participant.ChallengeID,
			&participant.ProfileID,
			&participant.Points,
			&participant.JoinedAt,
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
		participant.Profile = &profile
		participants = append(participants, &participant)
	}

	return participants, rows.Err()
}

// IncrementPoints adds delta to a participant's points inside the given
// transaction. The increment happens in the database so concurrent workout
// posts never lose updates. Returns false when the profile is not a
// participant of the challenge.
func (r *ChallengeParticipantRepository) IncrementPoints(ctx context.Context, tx pgx.Tx, challengeID, profileID int64, delta float64) (bool, error) {
	sql := `UPDATE challenge_participants
		SET points = points + $1
		WHERE challenge_id = $2 AND profile_id = $3`

	result, err := tx.Exec(ctx, sql, delta, challengeID, profileID)
	if err != nil {
		return false, fmt.Errorf("error executing query: %w", err)
	}

	return result.RowsAffected() > 0, nil
}
