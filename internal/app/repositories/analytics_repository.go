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

// topClubsLimit caps the "top clubs by members" list.
const topClubsLimit = 5

// AnalyticsRepository runs the aggregate queries behind the dashboards
type AnalyticsRepository struct {
	db *pgxpool.Pool
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// counts runs a two-column (label, count) query.
func (r *AnalyticsRepository) counts(ctx context.Context, name string, builder squirrel.SelectBuilder) ([]models.Count, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", name, err)
	}

	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", name, err)
	}
	defer rows.Close()

	out := []models.Count{}
	for rows.Next() {
		var c models.Count
		if err := rows.Scan(&c.Label, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", name, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *AnalyticsRepository) scalar(ctx context.Context, name string, builder squirrel.SelectBuilder) (int64, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build %s query: %w", name, err)
	}
	var n int64
	if err := conn(ctx, r.db).QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to query %s: %w", name, err)
	}
	return n, nil
}

func groupCount(column, table string) squirrel.SelectBuilder {
	return psql.Select(column, "COUNT(*)").From(table).GroupBy(column).OrderBy(column + " ASC")
}

// AdminStats aggregates the whole platform.
func (r *AnalyticsRepository) AdminStats(ctx context.Context) (*models.AdminStats, error) {
	var (
		s   models.AdminStats
		err error
	)

	if s.UsersByRole, err = r.counts(ctx, "users by role", groupCount("role", "users")); err != nil {
		return nil, err
	}
	if s.Clubs, err = r.scalar(ctx, "club count", psql.Select("COUNT(*)").From("clubs")); err != nil {
		return nil, err
	}
	if s.OpenClubs, err = r.scalar(ctx, "open club count",
		psql.Select("COUNT(*)").From("clubs").Where(squirrel.Eq{"enrollment_open": true})); err != nil {
		return nil, err
	}
	if s.EventsByStatus, err = r.counts(ctx, "events by status", groupCount("status", "events")); err != nil {
		return nil, err
	}
	if s.PollsByStatus, err = r.counts(ctx, "polls by status", groupCount("status", "polls")); err != nil {
		return nil, err
	}
	if s.TotalVotes, err = r.scalar(ctx, "vote count", psql.Select("COUNT(*)").From("poll_votes")); err != nil {
		return nil, err
	}
	if s.FeedbackByStatus, err = r.counts(ctx, "feedback by status", groupCount("status", "feedback")); err != nil {
		return nil, err
	}
	if s.FeedbackByType, err = r.counts(ctx, "feedback by type", groupCount("type", "feedback")); err != nil {
		return nil, err
	}
	if s.TopClubsByMembers, err = r.counts(ctx, "top clubs",
		psql.Select("c.name", "COUNT(m.user_id)").
			From("clubs c").
			LeftJoin("club_memberships m ON m.club_id = c.id").
			GroupBy("c.id", "c.name").
			OrderBy("COUNT(m.user_id) DESC", "c.name ASC").
			Limit(topClubsLimit)); err != nil {
		return nil, err
	}
	if s.MembersByBranch, err = r.counts(ctx, "members by branch",
		psql.Select("COALESCE(u.branch, 'unknown') AS branch", "COUNT(DISTINCT u.id)").
			From("club_memberships m").
			Join("users u ON u.id = m.user_id").
			GroupBy("branch").
			OrderBy("branch ASC")); err != nil {
		return nil, err
	}
	if s.PendingRequests, err = r.scalar(ctx, "pending requests",
		psql.Select("COUNT(*)").From("club_requests").Where(squirrel.Eq{"status": string(models.RequestStatusPending)})); err != nil {
		return nil, err
	}
	if s.TotalRegistrations, err = r.scalar(ctx, "registration count", psql.Select("COUNT(*)").From("event_registrations")); err != nil {
		return nil, err
	}
	return &s, nil
}

// ClubStats aggregates one club.
func (r *AnalyticsRepository) ClubStats(ctx context.Context, clubID int64) (*models.ClubStats, error) {
	s := models.ClubStats{ClubID: clubID}

	query, args, err := psql.Select("name").From("clubs").Where(squirrel.Eq{"id": clubID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build club name query: %w", err)
	}
	if err := conn(ctx, r.db).QueryRow(ctx, query, args...).Scan(&s.ClubName); err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to get club name: %w", err)
	}

	if s.Members, err = r.scalar(ctx, "member count",
		psql.Select("COUNT(*)").From("club_memberships").Where(squirrel.Eq{"club_id": clubID})); err != nil {
		return nil, err
	}
	if s.MembersByYear, err = r.counts(ctx, "members by year",
		psql.Select("COALESCE(u.year::text, 'unknown') AS year", "COUNT(*)").
			From("club_memberships m").
			Join("users u ON u.id = m.user_id").
			Where(squirrel.Eq{"m.club_id": clubID}).
			GroupBy("year").
			OrderBy("year ASC")); err != nil {
		return nil, err
	}
	if s.EventsByStatus, err = r.counts(ctx, "club events by status",
		groupCount("status", "events").Where(squirrel.Eq{"club_id": clubID})); err != nil {
		return nil, err
	}
	if s.RegistrationsPerEvent, err = r.counts(ctx, "registrations per event",
		psql.Select("e.title", "COUNT(er.user_id)").
			From("events e").
			LeftJoin("event_registrations er ON er.event_id = e.id").
			Where(squirrel.Eq{"e.club_id": clubID}).
			GroupBy("e.id", "e.title").
			OrderBy("e.event_date ASC", "e.id ASC")); err != nil {
		return nil, err
	}
	if s.PendingRequests, err = r.scalar(ctx, "club pending requests",
		psql.Select("COUNT(*)").From("club_requests").
			Where(squirrel.Eq{"club_id": clubID, "status": string(models.RequestStatusPending)})); err != nil {
		return nil, err
	}
	if s.FeedbackByStatus, err = r.counts(ctx, "club feedback by status",
		groupCount("status", "feedback").Where(squirrel.Eq{"club_id": clubID})); err != nil {
		return nil, err
	}
	if s.PollVotes, err = r.counts(ctx, "poll votes",
		psql.Select("p.question", "COALESCE(SUM(o.vote_count), 0)::bigint").
			From("polls p").
			LeftJoin("poll_options o ON o.poll_id = p.id").
			Where(squirrel.Eq{"p.club_id": clubID}).
			GroupBy("p.id", "p.question").
			OrderBy("p.created_at ASC", "p.id ASC")); err != nil {
		return nil, err
	}
	return &s, nil
}
