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

// RequestRepository handles the club_requests table
type RequestRepository struct {
	db *pgxpool.Pool
}

// NewRequestRepository creates a new membership request repository
func NewRequestRepository(db *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) selectRequests() squirrel.SelectBuilder {
	return psql.Select(
		"r.id", "r.kind", "r.student_id", "r.club_id", "r.coordinator_id", "r.reason", "r.status",
		"r.processed_by", "r.processed_at", "r.created_at", "r.updated_at",
		"u.name AS student_name", "u.roll_no AS student_roll_no", "c.name AS club_name",
	).From("club_requests r").
		Join("users u ON u.id = r.student_id").
		Join("clubs c ON c.id = r.club_id")
}

func scanRequest(row pgx.Row) (*models.MembershipRequest, error) {
	var m models.MembershipRequest
	err := row.Scan(
		&m.ID, &m.Kind, &m.StudentID, &m.ClubID, &m.CoordinatorID, &m.Reason, &m.Status,
		&m.ProcessedBy, &m.ProcessedAt, &m.CreatedAt, &m.UpdatedAt,
		&m.StudentName, &m.StudentRollNo, &m.ClubName,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a pending request.
func (r *RequestRepository) Create(ctx context.Context, req *models.MembershipRequest) error {
	if req.Status == "" {
		req.Status = models.RequestStatusPending
	}
	query, args, err := psql.Insert("club_requests").
		Columns("kind", "student_id", "club_id", "coordinator_id", "reason", "status").
		Values(string(req.Kind), req.StudentID, req.ClubID, req.CoordinatorID, req.Reason, string(req.Status)).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create request query: %w", err)
	}

	err = conn(ctx, r.db).QueryRow(ctx, query, args...).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "club_requests_one_pending"):
			return apperrors.ErrRequestPending
		case dberrors.IsForeignKeyViolation(err):
			return apperrors.NewResourceNotFoundError("Student or club not found")
		}
		return fmt.Errorf("failed to create request: %w", err)
	}
	return nil
}

// GetByID retrieves a request by ID
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*models.MembershipRequest, error) {
	query, args, err := r.selectRequests().Where(squirrel.Eq{"r.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get request query: %w", err)
	}

	req, err := scanRequest(conn(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return req, nil
}

// HasPending checks for a pending request of kind by the student for the club.
func (r *RequestRepository) HasPending(ctx context.Context, kind models.RequestKind, studentID, clubID int64) (bool, error) {
	query, args, err := psql.Select("1").From("club_requests").
		Where(squirrel.Eq{
			"kind":       string(kind),
			"student_id": studentID,
			"club_id":    clubID,
			"status":     string(models.RequestStatusPending),
		}).
		Prefix("SELECT EXISTS (").Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build pending request query: %w", err)
	}

	var exists bool
	if err := conn(ctx, r.db).QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check pending request: %w", err)
	}
	return exists, nil
}

// List returns requests matching filter, newest first.
func (r *RequestRepository) List(ctx context.Context, filter RequestFilter) ([]*models.MembershipRequest, error) {
	builder := r.selectRequests()
	if filter.ClubID != nil {
		builder = builder.Where(squirrel.Eq{"r.club_id": *filter.ClubID})
	}
	if filter.StudentID != nil {
		builder = builder.Where(squirrel.Eq{"r.student_id": *filter.StudentID})
	}
	if filter.Kind != nil {
		builder = builder.Where(squirrel.Eq{"r.kind": string(*filter.Kind)})
	}
	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"r.status": string(*filter.Status)})
	}

	query, args, err := builder.OrderBy("r.created_at DESC", "r.id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list requests query: %w", err)
	}

	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	requests := []*models.MembershipRequest{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating requests: %w", err)
	}
	return requests, nil
}

// Resolve stamps status and processed_at on a pending request.
func (r *RequestRepository) Resolve(ctx context.Context, id int64, status models.RequestStatus, processedBy int64) (bool, error) {
	query, args, err := psql.Update("club_requests").
		Set("status", string(status)).
		Set("processed_by", processedBy).
		Set("processed_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": string(models.RequestStatusPending)}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build resolve request query: %w", err)
	}

	tag, err := conn(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to resolve request: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
