package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/dberrors"
)

// MembershipRepository handles the club_memberships table
type MembershipRepository struct {
	db *pgxpool.Pool
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(db *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// Add inserts a membership. The primary key turns a duplicate into ErrAlreadyMember.
func (r *MembershipRepository) Add(ctx context.Context, userID, clubID int64) error {
	query, args, err := psql.Insert("club_memberships").
		Columns("user_id", "club_id").
		Values(userID, clubID).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build add membership query: %w", err)
	}

	if _, err := conn(ctx, r.db).Exec(ctx, query, args...); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "club_memberships_pkey"):
			return apperrors.ErrAlreadyMember
		case dberrors.IsForeignKeyViolation(err):
			return apperrors.NewResourceNotFoundError("User or club not found")
		}
		return fmt.Errorf("failed to add membership: %w", err)
	}
	return nil
}

// AddIfAbsent inserts a membership unless it already exists.
func (r *MembershipRepository) AddIfAbsent(ctx context.Context, userID, clubID int64) (bool, error) {
	query, args, err := psql.Insert("club_memberships").
		Columns("user_id", "club_id").
		Values(userID, clubID).
		Suffix("ON CONFLICT (user_id, club_id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build add membership query: %w", err)
	}

	tag, err := conn(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return false, apperrors.NewResourceNotFoundError("User or club not found")
		}
		return false, fmt.Errorf("failed to add membership: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Remove deletes a membership and reports whether one existed.
func (r *MembershipRepository) Remove(ctx context.Context, userID, clubID int64) (bool, error) {
	query, args, err := psql.Delete("club_memberships").
		Where(squirrel.Eq{"user_id": userID, "club_id": clubID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build remove membership query: %w", err)
	}

	tag, err := conn(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to remove membership: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Exists checks whether userID is a member of clubID.
func (r *MembershipRepository) Exists(ctx context.Context, userID, clubID int64) (bool, error) {
	query, args, err := psql.Select("1").From("club_memberships").
		Where(squirrel.Eq{"user_id": userID, "club_id": clubID}).
		Prefix("SELECT EXISTS (").Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build membership exists query: %w", err)
	}

	var exists bool
	if err := conn(ctx, r.db).QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

// ClubIDsForUser lists the ids of the clubs the user belongs to.
func (r *MembershipRepository) ClubIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	query, args, err := psql.Select("club_id").From("club_memberships").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("club_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build club ids query: %w", err)
	}

	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query club ids: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan club id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ClubsForUser lists the clubs the user belongs to, by name.
func (r *MembershipRepository) ClubsForUser(ctx context.Context, userID int64) ([]*models.Club, error) {
	query, args, err := psql.Select(prefixed("c", clubColumns)...).
		From("clubs c").
		Join("club_memberships m ON m.club_id = c.id").
		Where(squirrel.Eq{"m.user_id": userID}).
		OrderBy("c.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user clubs query: %w", err)
	}
	return queryClubs(ctx, conn(ctx, r.db), query, args)
}

// ListMembers returns the members of a club in joining order.
func (r *MembershipRepository) ListMembers(ctx context.Context, clubID int64) ([]*models.ClubMember, error) {
	columns := append(prefixed("u", userColumns), "m.club_id", "m.joined_at")
	query, args, err := psql.Select(columns...).
		From("club_memberships m").
		Join("users u ON u.id = m.user_id").
		Where(squirrel.Eq{"m.club_id": clubID}).
		OrderBy("m.joined_at ASC", "u.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list members query: %w", err)
	}

	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	members := []*models.ClubMember{}
	for rows.Next() {
		var m models.ClubMember
		u, err := scanUser(rows, &m.ClubID, &m.JoinedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.User = *u
		members = append(members, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}
	return members, nil
}

// CountMembers counts the members of a club.
func (r *MembershipRepository) CountMembers(ctx context.Context, clubID int64) (int64, error) {
	query, args, err := psql.Select("COUNT(*)").From("club_memberships").
		Where(squirrel.Eq{"club_id": clubID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count members query: %w", err)
	}

	var n int64
	if err := conn(ctx, r.db).QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return n, nil
}
