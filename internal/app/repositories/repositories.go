package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/db"
)

// psql is the statement builder shared by every repository.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Transactor runs fn in a transaction that repositories join through ctx.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByRollNo(ctx context.Context, rollNo string) (*models.User, error)
	// Update writes name, email, year and branch.
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, role *models.Role, offset, limit uint64) ([]*models.User, int64, error)
	// ListCoordinators returns the users whose coordinating_club_id is clubID.
	ListCoordinators(ctx context.Context, clubID int64) ([]*models.User, error)
}

// IClubRepository defines club persistence.
type IClubRepository interface {
	Create(ctx context.Context, club *models.Club) error
	GetByID(ctx context.Context, id int64) (*models.Club, error)
	List(ctx context.Context, search string, offset, limit uint64) ([]*models.Club, int64, error)
	Update(ctx context.Context, club *models.Club) error
	SetLogoURL(ctx context.Context, id int64, logoURL *string) error
	// ToggleEnrollment flips enrollment_open and returns the new value.
	ToggleEnrollment(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

// IMembershipRepository manages the club_memberships join table.
type IMembershipRepository interface {
	// Add fails with apperrors.ErrAlreadyMember when the row exists.
	Add(ctx context.Context, userID, clubID int64) error
	// AddIfAbsent reports whether a row was inserted. An existing membership
	// is not an error, so it is safe inside a transaction.
	AddIfAbsent(ctx context.Context, userID, clubID int64) (bool, error)
	// Remove reports whether a membership was deleted.
	Remove(ctx context.Context, userID, clubID int64) (bool, error)
	Exists(ctx context.Context, userID, clubID int64) (bool, error)
	ClubIDsForUser(ctx context.Context, userID int64) ([]int64, error)
	ClubsForUser(ctx context.Context, userID int64) ([]*models.Club, error)
	ListMembers(ctx context.Context, clubID int64) ([]*models.ClubMember, error)
	CountMembers(ctx context.Context, clubID int64) (int64, error)
}

// RequestFilter narrows membership request listings. Nil fields are ignored.
type RequestFilter struct {
	ClubID    *int64
	StudentID *int64
	Kind      *models.RequestKind
	Status    *models.RequestStatus
}

// IRequestRepository stores join and leave requests.
type IRequestRepository interface {
	// Create fails with apperrors.ErrRequestPending when a pending request of the
	// same kind exists for the student and club.
	Create(ctx context.Context, req *models.MembershipRequest) error
	GetByID(ctx context.Context, id int64) (*models.MembershipRequest, error)
	HasPending(ctx context.Context, kind models.RequestKind, studentID, clubID int64) (bool, error)
	List(ctx context.Context, filter RequestFilter) ([]*models.MembershipRequest, error)
	// Resolve moves a pending request to status. It reports false when the
	// request was no longer pending.
	Resolve(ctx context.Context, id int64, status models.RequestStatus, processedBy int64) (bool, error)
}

// EventFilter narrows event listings. VisibleToClub keeps approved events plus
// every event of that club. RegisteredBy keeps events the user signed up for.
type EventFilter struct {
	ClubID        *int64
	Status        *models.EventStatus
	VisibleToClub *int64
	RegisteredBy  *int64
}

// IEventRepository stores events and their registrations.
type IEventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	List(ctx context.Context, filter EventFilter) ([]*models.Event, error)
	// Update, Review and Delete only touch pending events and report whether a
	// row changed.
	Update(ctx context.Context, event *models.Event) (bool, error)
	Review(ctx context.Context, id int64, status models.EventStatus) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	// Register fails with apperrors.ErrAlreadyRegistered on a duplicate.
	Register(ctx context.Context, eventID, userID int64) error
	Unregister(ctx context.Context, eventID, userID int64) error
	IsRegistered(ctx context.Context, eventID, userID int64) (bool, error)
	RegisteredEventIDs(ctx context.Context, userID int64) ([]int64, error)
	ListRegistrations(ctx context.Context, eventID int64) ([]*models.EventRegistration, error)
}

// PollAudience restricts polls to the given scopes or to club polls of the given clubs.
type PollAudience struct {
	Scopes  []models.PollScope
	ClubIDs []int64
}

// PollFilter narrows poll listings. A nil Audience means every poll.
type PollFilter struct {
	Status   *models.PollStatus
	Scope    *models.PollScope
	ClubID   *int64
	Audience *PollAudience
}

// IPollRepository stores polls, options and votes.
type IPollRepository interface {
	// Create inserts the poll and its options. Run it inside a transaction.
	Create(ctx context.Context, poll *models.Poll) error
	GetByID(ctx context.Context, id int64) (*models.Poll, error)
	List(ctx context.Context, filter PollFilter) ([]*models.Poll, error)
	// Close reports false when the poll was already closed.
	Close(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
	// RecordVote fails with apperrors.ErrAlreadyVoted when the voter has voted.
	RecordVote(ctx context.Context, vote *models.PollVote) error
	IncrementOption(ctx context.Context, pollID, optionID int64) error
	// RemoveVotesByVoter deletes the voter's votes and takes them back off the
	// option counters. Run it inside a transaction.
	RemoveVotesByVoter(ctx context.Context, voterID int64) (int64, error)
	// VotesByVoter maps poll id to the option the voter chose.
	VotesByVoter(ctx context.Context, voterID int64, pollIDs []int64) (map[int64]int64, error)
}

// FeedbackFilter narrows feedback listings. Nil fields are ignored.
type FeedbackFilter struct {
	ClubID        *int64
	StudentID     *int64
	CoordinatorID *int64
	TargetAdmin   *bool
	Status        *models.FeedbackStatus
}

// FeedbackTransition is a conditional status change of one feedback item.
type FeedbackTransition struct {
	ID          int64
	From        []models.FeedbackStatus
	To          models.FeedbackStatus
	TargetAdmin *bool
	Response    *string
	HandledBy   int64
}

// IFeedbackRepository stores feedback items.
type IFeedbackRepository interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	GetByID(ctx context.Context, id int64) (*models.Feedback, error)
	List(ctx context.Context, filter FeedbackFilter) ([]*models.Feedback, error)
	// Transition reports false when the item's status was not in t.From.
	Transition(ctx context.Context, t FeedbackTransition) (bool, error)
}

// IAnalyticsRepository computes dashboard aggregates.
type IAnalyticsRepository interface {
	AdminStats(ctx context.Context) (*models.AdminStats, error)
	ClubStats(ctx context.Context, clubID int64) (*models.ClubStats, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	Tx                   Transactor
	UserRepository       IUserRepository
	ClubRepository       IClubRepository
	MembershipRepository IMembershipRepository
	RequestRepository    IRequestRepository
	EventRepository      IEventRepository
	PollRepository       IPollRepository
	FeedbackRepository   IFeedbackRepository
	AnalyticsRepository  IAnalyticsRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	pool := database.Pool
	return &Repositories{
		Tx:                   database,
		UserRepository:       NewUserRepository(pool),
		ClubRepository:       NewClubRepository(pool),
		MembershipRepository: NewMembershipRepository(pool),
		RequestRepository:    NewRequestRepository(pool),
		EventRepository:      NewEventRepository(pool),
		PollRepository:       NewPollRepository(pool),
		FeedbackRepository:   NewFeedbackRepository(pool),
		AnalyticsRepository:  NewAnalyticsRepository(pool),
	}
}

// prefixed qualifies each column with a table alias.
func prefixed(alias string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = alias + "." + c
	}
	return out
}

// conn returns the caller's transaction or the pool.
func conn(ctx context.Context, pool *pgxpool.Pool) db.Querier {
	return db.Conn(ctx, pool)
}
