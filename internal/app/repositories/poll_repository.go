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

var pollColumns = []string{"id", "scope", "club_id", "question", "status", "created_by", "created_at", "updated_at"}

// PollRepository handles polls, their options and votes
type PollRepository struct {
	db *pgxpool.Pool
}

// NewPollRepository creates a new poll repository
func NewPollRepository(db *pgxpool.Pool) *PollRepository {
	return &PollRepository{db: db}
}

func scanPoll(row pgx.Row) (*models.Poll, error) {
	var p models.Poll
	err := row.Scan(&p.ID, &p.Scope, &p.ClubID, &p.Question, &p.Status, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Options = []models.PollOption{}
	return &p, nil
}

// Create inserts the poll row followed by its options in position order.
func (r *PollRepository) Create(ctx context.Context, poll *models.Poll) error {
	if poll.Status == "" {
		poll.Status = models.PollStatusActive
	}
	q := conn(ctx, r.db)

	query, args, err := psql.Insert("polls").
		Columns("scope", "club_id", "question", "status", "created_by").
		Values(string(poll.Scope), poll.ClubID, poll.Question, string(poll.Status), poll.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create poll query: %w", err)
	}
	if err := q.QueryRow(ctx, query, args...).Scan(&poll.ID, &poll.CreatedAt, &poll.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrClubNotFound
		}
		return fmt.Errorf("failed to create poll: %w", err)
	}

	for i := range poll.Options {
		opt := &poll.Options[i]
		opt.PollID = poll.ID
		opt.Position = i
		opt.VoteCount = 0
		query, args, err := psql.Insert("poll_options").
			Columns("poll_id", "position", "text").
			Values(opt.PollID, opt.Position, opt.Text).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create poll option query: %w", err)
		}
		if err := q.QueryRow(ctx, query, args...).Scan(&opt.ID); err != nil {
			return fmt.Errorf("failed to create poll option: %w", err)
		}
	}
	return nil
}

// GetByID retrieves a poll with its options.
func (r *PollRepository) GetByID(ctx context.Context, id int64) (*models.Poll, error) {
	query, args, err := psql.Select(pollColumns...).From("polls").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get poll query: %w", err)
	}

	poll, err := scanPoll(conn(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	if err := r.attachOptions(ctx, []*models.Poll{poll}); err != nil {
		return nil, err
	}
	return poll, nil
}

// List returns polls matching filter, newest first, with their options.
func (r *PollRepository) List(ctx context.Context, filter PollFilter) ([]*models.Poll, error) {
	builder := psql.Select(pollColumns...).From("polls")
	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"status": string(*filter.Status)})
	}
	if filter.Scope != nil {
		builder = builder.Where(squirrel.Eq{"scope": string(*filter.Scope)})
	}
	if filter.ClubID != nil {
		builder = builder.Where(squirrel.Eq{"club_id": *filter.ClubID})
	}
	if a := filter.Audience; a != nil {
		or := squirrel.Or{}
		if len(a.Scopes) > 0 {
			scopes := make([]string, len(a.Scopes))
			for i, s := range a.Scopes {
				scopes[i] = string(s)
			}
			or = append(or, squirrel.Eq{"scope": scopes})
		}
		if len(a.ClubIDs) > 0 {
			or = append(or, squirrel.And{
				squirrel.Eq{"scope": string(models.PollScopeClub)},
				squirrel.Eq{"club_id": a.ClubIDs},
			})
		}
		if len(or) == 0 {
			return []*models.Poll{}, nil
		}
		builder = builder.Where(or)
	}

	query, args, err := builder.OrderBy("created_at DESC", "id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list polls query: %w", err)
	}

	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query polls: %w", err)
	}
	polls := []*models.Poll{}
	for rows.Next() {
		p, err := scanPoll(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}

	if err := r.attachOptions(ctx, polls); err != nil {
		return nil, err
	}
	return polls, nil
}

// attachOptions loads the options of every poll in one query.
func (r *PollRepository) attachOptions(ctx context.Context, polls []*models.Poll) error {
	if len(polls) == 0 {
		return nil
	}
	byID := make(map[int64]*models.Poll, len(polls))
	ids := make([]int64, 0, len(polls))
	for _, p := range polls {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	query, args, err := psql.Select("id", "poll_id", "position", "text", "vote_count").
		From("poll_options").
		Where(squirrel.Eq{"poll_id": ids}).
		OrderBy("poll_id ASC", "position ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build poll options query: %w", err)
	}

	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query poll options: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var o models.PollOption
		if err := rows.Scan(&o.ID, &o.PollID, &o.Position, &o.Text, &o.VoteCount); err != nil {
			return fmt.Errorf("failed to scan poll option: %w", err)
		}
		if p, ok := byID[o.PollID]; ok {
			p.Options = append(p.Options, o)
		}
	}
	return rows.Err()
}

// Close marks an active poll closed.
func (r *PollRepository) Close(ctx context.Context, id int64) (bool, error) {
	query, args, err := psql.Update("polls").
		Set("status", string(models.PollStatusClosed)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": string(models.PollStatusActive)}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build close poll query: %w", err)
	}

	tag, err := conn(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to close poll: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Delete removes a poll with its options and votes.
func (r *PollRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := psql.Delete("polls").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete poll query: %w", err)
	}

	tag, err := conn(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPollNotFound
	}
	return nil
}

// RecordVote inserts the vote row. (poll_id, voter_id) is the primary key.
func (r *PollRepository) RecordVote(ctx context.Context, vote *models.PollVote) error {
	query, args, err := psql.Insert("poll_votes").
		Columns("poll_id", "voter_id", "option_id", "option_index").
		Values(vote.PollID, vote.VoterID, vote.OptionID, vote.OptionIndex).
		Suffix("RETURNING voted_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build record vote query: %w", err)
	}

	if err := conn(ctx, r.db).QueryRow(ctx, query, args...).Scan(&vote.VotedAt); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "poll_votes_pkey"):
			return apperrors.ErrAlreadyVoted
		case dberrors.IsForeignKeyViolation(err):
			return apperrors.ErrPollNotFound
		}
		return fmt.Errorf("failed to record vote: %w", err)
	}
	return nil
}

// IncrementOption adds one vote to an option's counter.
func (r *PollRepository) IncrementOption(ctx context.Context, pollID, optionID int64) error {
	query, args, err := psql.Update("poll_options").
		Set("vote_count", squirrel.Expr("vote_count + 1")).
		Where(squirrel.Eq{"id": optionID, "poll_id": pollID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build increment option query: %w", err)
	}

	tag, err := conn(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to increment option: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("Option not found")
	}
	return nil
}

// RemoveVotesByVoter withdraws every vote of a voter from the counters and
// deletes the vote records.
func (r *PollRepository) RemoveVotesByVoter(ctx context.Context, voterID int64) (int64, error) {
	query, args, err := psql.Update("poll_options AS o").
		Set("vote_count", squirrel.Expr("o.vote_count - 1")).
		From("poll_votes v").
		Where("v.option_id = o.id").
		Where(squirrel.Eq{"v.voter_id": voterID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build withdraw votes query: %w", err)
	}
	if _, err := conn(ctx, r.db).Exec(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("failed to withdraw votes: %w", err)
	}

	query, args, err = psql.Delete("poll_votes").
		Where(squirrel.Eq{"voter_id": voterID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete votes query: %w", err)
	}
	tag, err := conn(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete votes: %w", err)
	}
	return tag.RowsAffected(), nil
}

// VotesByVoter returns the voter's chosen option per poll.
func (r *PollRepository) VotesByVoter(ctx context.Context, voterID int64, pollIDs []int64) (map[int64]int64, error) {
	votes := map[int64]int64{}
	if len(pollIDs) == 0 {
		return votes, nil
	}

	query, args, err := psql.Select("poll_id", "option_id").From("poll_votes").
		Where(squirrel.Eq{"voter_id": voterID, "poll_id": pollIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build voter votes query: %w", err)
	}

	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query voter votes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pollID, optionID int64
		if err := rows.Scan(&pollID, &optionID); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes[pollID] = optionID
	}
	return votes, rows.Err()
}
