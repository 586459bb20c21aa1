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

// EventRepository handles database operations for events and registrations
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) selectEvents() squirrel.SelectBuilder {
	return psql.Select(
		"e.id", "e.club_id", "e.title", "e.description", "e.event_date", "e.venue", "e.status",
		"e.created_by", "e.reviewed_at", "e.created_at", "e.updated_at",
		"(SELECT COUNT(*) FROM event_registrations er WHERE er.event_id = e.id) AS registration_count",
		"c.name AS club_name",
	).From("events e").
		Join("clubs c ON c.id = e.club_id")
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(
		&e.ID, &e.ClubID, &e.Title, &e.Description, &e.Date, &e.Venue, &e.Status,
		&e.CreatedBy, &e.ReviewedAt, &e.CreatedAt, &e.UpdatedAt,
		&e.RegistrationCount, &e.ClubName,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a pending event.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.Status == "" {
		event.Status = models.EventStatusPending
	}
	query, args, err := psql.Insert("events").
		Columns("club_id", "title", "description", "event_date", "venue", "status", "created_by").
		Values(event.ClubID, event.Title, event.Description, event.Date, event.Venue, string(event.Status), event.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create event query: %w", err)
	}

	err = conn(ctx, r.db).QueryRow(ctx, query, args...).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrClubNotFound
		}
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	query, args, err := r.selectEvents().Where(squirrel.Eq{"e.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get event query: %w", err)
	}

	event, err := scanEvent(conn(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// List returns events matching filter ordered by date.
func (r *EventRepository) List(ctx context.Context, filter EventFilter) ([]*models.Event, error) {
	builder := r.selectEvents()
	if filter.ClubID != nil {
		builder = builder.Where(squirrel.Eq{"e.club_id": *filter.ClubID})
	}
	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"e.status": string(*filter.Status)})
	}
	if filter.VisibleToClub != nil {
		builder = builder.Where(squirrel.Or{
			squirrel.Eq{"e.status": string(models.EventStatusApproved)},
			squirrel.Eq{"e.club_id": *filter.VisibleToClub},
		})
	}
	if filter.RegisteredBy != nil {
		builder = builder.Where(squirrel.Expr(
			"EXISTS (SELECT 1 FROM event_registrations er WHERE er.event_id = e.id AND er.user_id = ?)",
			*filter.RegisteredBy,
		))
	}

	query, args, err := builder.OrderBy("e.event_date ASC", "e.id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list events query: %w", err)
	}

	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []*models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

func (r *EventRepository) execPending(ctx context.Context, op string, query string, args []any, err error) (bool, error) {
	if err != nil {
		return false, fmt.Errorf("failed to build %s event query: %w", op, err)
	}
	tag, err := conn(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to %s event: %w", op, err)
	}
	return tag.RowsAffected() == 1, nil
}

// Update writes the editable fields of a pending event.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) (bool, error) {
	query, args, err := psql.Update("events").
		Set("title", event.Title).
		Set("description", event.Description).
		Set("event_date", event.Date).
		Set("venue", event.Venue).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": event.ID, "status": string(models.EventStatusPending)}).
		ToSql()
	return r.execPending(ctx, "update", query, args, err)
}

// Review moves a pending event to status and stamps reviewed_at.
func (r *EventRepository) Review(ctx context.Context, id int64, status models.EventStatus) (bool, error) {
	query, args, err := psql.Update("events").
		Set("status", string(status)).
		Set("reviewed_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": string(models.EventStatusPending)}).
		ToSql()
	return r.execPending(ctx, "review", query, args, err)
}

// Delete removes a pending event.
func (r *EventRepository) Delete(ctx context.Context, id int64) (bool, error) {
	query, args, err := psql.Delete("events").
		Where(squirrel.Eq{"id": id, "status": string(models.EventStatusPending)}).
		ToSql()
	return r.execPending(ctx, "delete", query, args, err)
}

// Register signs a user up for an event.
func (r *EventRepository) Register(ctx context.Context, eventID, userID int64) error {
	query, args, err := psql.Insert("event_registrations").
		Columns("event_id", "user_id").
		Values(eventID, userID).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build register query: %w", err)
	}

	if _, err := conn(ctx, r.db).Exec(ctx, query, args...); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "event_registrations_pkey"):
			return apperrors.ErrAlreadyRegistered
		case dberrors.IsForeignKeyViolation(err):
			return apperrors.ErrEventNotFound
		}
		return fmt.Errorf("failed to register for event: %w", err)
	}
	return nil
}

// Unregister removes a registration if present.
func (r *EventRepository) Unregister(ctx context.Context, eventID, userID int64) error {
	query, args, err := psql.Delete("event_registrations").
		Where(squirrel.Eq{"event_id": eventID, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build unregister query: %w", err)
	}

	if _, err := conn(ctx, r.db).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to unregister from event: %w", err)
	}
	return nil
}

// IsRegistered checks whether the user is registered for the event.
func (r *EventRepository) IsRegistered(ctx context.Context, eventID, userID int64) (bool, error) {
	query, args, err := psql.Select("1").From("event_registrations").
		Where(squirrel.Eq{"event_id": eventID, "user_id": userID}).
		Prefix("SELECT EXISTS (").Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build registration exists query: %w", err)
	}

	var exists bool
	if err := conn(ctx, r.db).QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check registration: %w", err)
	}
	return exists, nil
}

// RegisteredEventIDs lists the events the user registered for.
func (r *EventRepository) RegisteredEventIDs(ctx context.Context, userID int64) ([]int64, error) {
	query, args, err := psql.Select("event_id").From("event_registrations").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build registered events query: %w", err)
	}

	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query registered events: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan event id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListRegistrations returns the users registered for an event.
func (r *EventRepository) ListRegistrations(ctx context.Context, eventID int64) ([]*models.EventRegistration, error) {
	columns := append(prefixed("u", userColumns), "er.event_id", "er.registered_at")
	query, args, err := psql.Select(columns...).
		From("event_registrations er").
		Join("users u ON u.id = er.user_id").
		Where(squirrel.Eq{"er.event_id": eventID}).
		OrderBy("er.registered_at ASC", "u.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list registrations query: %w", err)
	}

	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations: %w", err)
	}
	defer rows.Close()

	regs := []*models.EventRegistration{}
	for rows.Next() {
		var reg models.EventRegistration
		u, err := scanUser(rows, &reg.EventID, &reg.RegisteredAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		reg.User = *u
		regs = append(regs, &reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registrations: %w", err)
	}
	return regs, nil
}
