package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/db"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/dberrors"
)

var clubColumns = []string{
	"id", "name", "description", "logo_url", "club_key", "enrollment_open",
	"team_heads", "past_events", "upcoming_events", "created_at", "updated_at",
}

// ClubRepository handles database operations for clubs
type ClubRepository struct {
	db *pgxpool.Pool
}

// NewClubRepository creates a new club repository
func NewClubRepository(db *pgxpool.Pool) *ClubRepository {
	return &ClubRepository{db: db}
}

func scanClub(row pgx.Row) (*models.Club, error) {
	var c models.Club
	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.LogoURL, &c.ClubKey, &c.EnrollmentOpen,
		&c.TeamHeads, &c.PastEvents, &c.UpcomingEvents, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// normalizeClubLists keeps NOT NULL array and JSONB columns out of SQL NULL.
func normalizeClubLists(c *models.Club) {
	if c.TeamHeads == nil {
		c.TeamHeads = []models.TeamHead{}
	}
	if c.PastEvents == nil {
		c.PastEvents = []string{}
	}
	if c.UpcomingEvents == nil {
		c.UpcomingEvents = []string{}
	}
}

// Create creates a new club
func (r *ClubRepository) Create(ctx context.Context, club *models.Club) error {
	normalizeClubLists(club)
	query, args, err := psql.Insert("clubs").
		Columns("name", "description", "logo_url", "club_key", "enrollment_open", "team_heads", "past_events", "upcoming_events").
		Values(club.Name, club.Description, club.LogoURL, club.ClubKey, club.EnrollmentOpen, club.TeamHeads, club.PastEvents, club.UpcomingEvents).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create club query: %w", err)
	}

	err = conn(ctx, r.db).QueryRow(ctx, query, args...).Scan(&club.ID, &club.CreatedAt, &club.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "clubs_name_key") {
			return apperrors.ErrClubNameExists
		}
		return fmt.Errorf("failed to create club: %w", err)
	}
	return nil
}

// GetByID retrieves a club by ID
func (r *ClubRepository) GetByID(ctx context.Context, id int64) (*models.Club, error) {
	query, args, err := psql.Select(clubColumns...).From("clubs").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get club query: %w", err)
	}

	club, err := scanClub(conn(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to get club: %w", err)
	}
	return club, nil
}

// List returns a page of clubs ordered by name. search matches the name case-insensitively.
func (r *ClubRepository) List(ctx context.Context, search string, offset, limit uint64) ([]*models.Club, int64, error) {
	where := squirrel.And{}
	if search != "" {
		where = append(where, squirrel.ILike{"name": "%" + search + "%"})
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("clubs").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count clubs query: %w", err)
	}
	var total int64
	if err := conn(ctx, r.db).QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count clubs: %w", err)
	}
	if total == 0 {
		return []*models.Club{}, 0, nil
	}

	query, args, err := psql.Select(clubColumns...).From("clubs").Where(where).
		OrderBy("name ASC").Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list clubs query: %w", err)
	}
	clubs, err := queryClubs(ctx, conn(ctx, r.db), query, args)
	if err != nil {
		return nil, 0, err
	}
	return clubs, total, nil
}

// Update writes every editable column of club.
func (r *ClubRepository) Update(ctx context.Context, club *models.Club) error {
	normalizeClubLists(club)
	query, args, err := psql.Update("clubs").
		Set("name", club.Name).
		Set("description", club.Description).
		Set("logo_url", club.LogoURL).
		Set("club_key", club.ClubKey).
		Set("enrollment_open", club.EnrollmentOpen).
		Set("team_heads", club.TeamHeads).
		Set("past_events", club.PastEvents).
		Set("upcoming_events", club.UpcomingEvents).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": club.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update club query: %w", err)
	}

	err = conn(ctx, r.db).QueryRow(ctx, query, args...).Scan(&club.UpdatedAt)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return apperrors.ErrClubNotFound
		}
		if dberrors.IsDuplicateConstraintError(err, "clubs_name_key") {
			return apperrors.ErrClubNameExists
		}
		return fmt.Errorf("failed to update club: %w", err)
	}
	return nil
}

// SetLogoURL replaces the club's logo reference.
func (r *ClubRepository) SetLogoURL(ctx context.Context, id int64, logoURL *string) error {
	query, args, err := psql.Update("clubs").
		Set("logo_url", logoURL).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set logo query: %w", err)
	}

	tag, err := conn(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set club logo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrClubNotFound
	}
	return nil
}

// ToggleEnrollment flips the enrollment flag in one statement.
func (r *ClubRepository) ToggleEnrollment(ctx context.Context, id int64) (bool, error) {
	query, args, err := psql.Update("clubs").
		Set("enrollment_open", squirrel.Expr("NOT enrollment_open")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING enrollment_open").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build toggle enrollment query: %w", err)
	}

	var open bool
	if err := conn(ctx, r.db).QueryRow(ctx, query, args...).Scan(&open); err != nil {
		if dberrors.IsNoRows(err) {
			return false, apperrors.ErrClubNotFound
		}
		return false, fmt.Errorf("failed to toggle enrollment: %w", err)
	}
	return open, nil
}

// Delete removes the club. Dependent rows follow the schema's ON DELETE rules.
func (r *ClubRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := psql.Delete("clubs").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete club query: %w", err)
	}

	tag, err := conn(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete club: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrClubNotFound
	}
	return nil
}

func queryClubs(ctx context.Context, q db.Querier, query string, args []any) ([]*models.Club, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query clubs: %w", err)
	}
	defer rows.Close()

	clubs := []*models.Club{}
	for rows.Next() {
		c, err := scanClub(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan club: %w", err)
		}
		clubs = append(clubs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clubs: %w", err)
	}
	return clubs, nil
}
