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

var userColumns = []string{
	"id", "name", "email", "roll_no", "password_hash", "role", "year", "branch",
	"coordinating_club_id", "created_at", "updated_at",
}

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row, extra ...any) (*models.User, error) {
	var u models.User
	dest := append([]any{
		&u.ID, &u.Name, &u.Email, &u.RollNo, &u.Password, &u.Role, &u.Year, &u.Branch,
		&u.CoordinatingClubID, &u.CreatedAt, &u.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &u, nil
}

// mapUserWriteError turns constraint violations into domain errors.
func mapUserWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "users_email_key"):
		return apperrors.ErrEmailAlreadyExists
	case dberrors.IsDuplicateConstraintError(err, "users_roll_no_key"):
		return apperrors.ErrRollNoAlreadyExists
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.ErrClubNotFound
	}
	return err
}

// Create inserts a user and fills its id and timestamps.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query, args, err := psql.Insert("users").
		Columns("name", "email", "roll_no", "password_hash", "role", "year", "branch", "coordinating_club_id").
		Values(user.Name, user.Email, user.RollNo, user.Password, string(user.Role), user.Year, user.Branch, user.CoordinatingClubID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	err = conn(ctx, r.db).QueryRow(ctx, query, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if mapped := mapUserWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	query, args, err := psql.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(conn(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByRollNo retrieves a user by roll number
func (r *UserRepository) GetByRollNo(ctx context.Context, rollNo string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"roll_no": rollNo})
}

// Update writes the editable profile fields.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query, args, err := psql.Update("users").
		Set("name", user.Name).
		Set("email", user.Email).
		Set("year", user.Year).
		Set("branch", user.Branch).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": user.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	err = conn(ctx, r.db).QueryRow(ctx, query, args...).Scan(&user.UpdatedAt)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return apperrors.ErrUserNotFound
		}
		if mapped := mapUserWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// UpdatePassword stores a new password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	query, args, err := psql.Update("users").
		Set("password_hash", passwordHash).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update password query: %w", err)
	}

	tag, err := conn(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// Delete deletes a user
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := psql.Delete("users").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete user query: %w", err)
	}

	tag, err := conn(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// List returns a page of users ordered by id together with the total count.
func (r *UserRepository) List(ctx context.Context, role *models.Role, offset, limit uint64) ([]*models.User, int64, error) {
	where := squirrel.And{}
	if role != nil {
		where = append(where, squirrel.Eq{"role": string(*role)})
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("users").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count users query: %w", err)
	}
	var total int64
	if err := conn(ctx, r.db).QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}
	if total == 0 {
		return []*models.User{}, 0, nil
	}

	query, args, err := psql.Select(userColumns...).From("users").Where(where).
		OrderBy("id ASC").Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list users query: %w", err)
	}
	users, err := r.queryUsers(ctx, query, args)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ListCoordinators returns the coordinators assigned to clubID.
func (r *UserRepository) ListCoordinators(ctx context.Context, clubID int64) ([]*models.User, error) {
	query, args, err := psql.Select(userColumns...).From("users").
		Where(squirrel.Eq{"coordinating_club_id": clubID, "role": string(models.RoleCoordinator)}).
		OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list coordinators query: %w", err)
	}
	return r.queryUsers(ctx, query, args)
}

func (r *UserRepository) queryUsers(ctx context.Context, query string, args []any) ([]*models.User, error) {
	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}
