package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/dberrors"
)

// FeedbackRepository handles database operations for feedback
type FeedbackRepository struct {
	db *pgxpool.Pool
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db *pgxpool.Pool) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) selectFeedback() squirrel.SelectBuilder {
	return psql.Select(
		"f.id", "f.student_id", "f.coordinator_id", "f.club_id", "f.subject", "f.message", "f.type",
		"f.status", "f.target_admin", "f.response", "f.handled_by", "f.created_at", "f.updated_at",
		"COALESCE(s.name, co.name, '') AS submitter_name", "COALESCE(c.name, '') AS club_name",
	).From("feedback f").
		LeftJoin("users s ON s.id = f.student_id").
		LeftJoin("users co ON co.id = f.coordinator_id").
		LeftJoin("clubs c ON c.id = f.club_id")
}

func scanFeedback(row pgx.Row) (*models.Feedback, error) {
	var f models.Feedback
	err := row.Scan(
		&f.ID, &f.StudentID, &f.CoordinatorID, &f.ClubID, &f.Subject, &f.Message, &f.Type,
		&f.Status, &f.TargetAdmin, &f.Response, &f.HandledBy, &f.CreatedAt, &f.UpdatedAt,
		&f.SubmitterName, &f.ClubName,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts a feedback item.
func (r *FeedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	if feedback.Status == "" {
		feedback.Status = models.FeedbackStatusPending
	}
	if feedback.Type == "" {
		feedback.Type = models.FeedbackGeneral
	}
	query, args, err := psql.Insert("feedback").
		Columns("student_id", "coordinator_id", "club_id", "subject", "message", "type", "status", "target_admin").
		Values(feedback.StudentID, feedback.CoordinatorID, feedback.ClubID, feedback.Subject, feedback.Message,
			string(feedback.Type), string(feedback.Status), feedback.TargetAdmin).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create feedback query: %w", err)
	}

	err = conn(ctx, r.db).QueryRow(ctx, query, args...).Scan(&feedback.ID, &feedback.CreatedAt, &feedback.UpdatedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrClubNotFound
		}
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

// GetByID retrieves a feedback item by ID
func (r *FeedbackRepository) GetByID(ctx context.Context, id int64) (*models.Feedback, error) {
	query, args, err := r.selectFeedback().Where(squirrel.Eq{"f.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get feedback query: %w", err)
	}

	f, err := scanFeedback(conn(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrFeedbackNotFound
		}
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	return f, nil
}

// List returns feedback matching filter, newest first.
func (r *FeedbackRepository) List(ctx context.Context, filter FeedbackFilter) ([]*models.Feedback, error) {
	builder := r.selectFeedback()
	if filter.ClubID != nil {
		builder = builder.Where(squirrel.Eq{"f.club_id": *filter.ClubID})
	}
	if filter.StudentID != nil {
		builder = builder.Where(squirrel.Eq{"f.student_id": *filter.StudentID})
	}
	if filter.CoordinatorID != nil {
		builder = builder.Where(squirrel.Eq{"f.coordinator_id": *filter.CoordinatorID})
	}
	if filter.TargetAdmin != nil {
		builder = builder.Where(squirrel.Eq{"f.target_admin": *filter.TargetAdmin})
	}
	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"f.status": string(*filter.Status)})
	}

	query, args, err := builder.OrderBy("f.created_at DESC", "f.id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list feedback query: %w", err)
	}

	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	items := []*models.Feedback{}
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedback: %w", err)
	}
	return items, nil
}

// Transition applies t when the item's current status is one of t.From.
func (r *FeedbackRepository) Transition(ctx context.Context, t FeedbackTransition) (bool, error) {
	from := make([]string, len(t.From))
	for i, s := range t.From {
		from[i] = string(s)
	}

	builder := psql.Update("feedback").
		Set("status", string(t.To)).
		Set("handled_by", t.HandledBy).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": t.ID, "status": from})
	if t.TargetAdmin != nil {
		builder = builder.Set("target_admin", *t.TargetAdmin)
	}
	if t.Response != nil {
		builder = builder.Set("response", *t.Response)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build feedback transition query: %w", err)
	}

	tag, err := conn(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update feedback: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
