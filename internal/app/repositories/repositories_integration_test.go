package repositories

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/yigit/clubhub/internal/app/migrations"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/db"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

// setupPostgres starts a throwaway PostgreSQL, applies the migrations and
// returns the repositories bound to it.
func setupPostgres(t *testing.T) (*Repositories, *pgxpool.Pool) {
	t.Helper()
	if os.Getenv("CLUBHUB_INTEGRATION") != "1" {
		t.Skip("set CLUBHUB_INTEGRATION=1 to run PostgreSQL integration tests")
	}

	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, migrations.NewMigrator(pool, zerolog.Nop()).Up(ctx))
	// A second run must be a no-op.
	require.NoError(t, migrations.NewMigrator(pool, zerolog.Nop()).Up(ctx))

	return NewRepositories(db.NewFromPool(pool)), pool
}

func truncateAll(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		"TRUNCATE poll_votes, poll_options, polls, feedback, event_registrations, events, club_requests, club_memberships, users, clubs RESTART IDENTITY CASCADE")
	require.NoError(t, err)
}

func mustUser(t *testing.T, repos *Repositories, rollNo string, role models.Role, clubID *int64) *models.User {
	t.Helper()
	u := &models.User{
		Name:               "User " + rollNo,
		Email:              rollNo + "@college.edu",
		RollNo:             rollNo,
		Password:           "hash",
		Role:               role,
		CoordinatingClubID: clubID,
	}
	require.NoError(t, repos.UserRepository.Create(context.Background(), u))
	return u
}

func mustClub(t *testing.T, repos *Repositories, name string) *models.Club {
	t.Helper()
	c := &models.Club{
		Name:           name,
		ClubKey:        "key-" + name,
		EnrollmentOpen: true,
		TeamHeads:      []models.TeamHead{{Name: "Lead", Title: "President"}},
		UpcomingEvents: []string{"Kickoff"},
	}
	require.NoError(t, repos.ClubRepository.Create(context.Background(), c))
	return c
}

func TestPostgresRepositories(t *testing.T) {
	repos, pool := setupPostgres(t)
	ctx := context.Background()

	t.Run("user uniqueness comes from the indexes", func(t *testing.T) {
		truncateAll(t, pool)
		mustUser(t, repos, "21CS001", models.RoleStudent, nil)

		dupEmail := &models.User{Name: "x", Email: "21CS001@college.edu", RollNo: "21CS999", Password: "h", Role: models.RoleStudent}
		assert.ErrorIs(t, repos.UserRepository.Create(ctx, dupEmail), apperrors.ErrEmailAlreadyExists)

		dupRoll := &models.User{Name: "x", Email: "other@college.edu", RollNo: "21CS001", Password: "h", Role: models.RoleStudent}
		assert.ErrorIs(t, repos.UserRepository.Create(ctx, dupRoll), apperrors.ErrRollNoAlreadyExists)

		_, err := repos.UserRepository.GetByRollNo(ctx, "nope")
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("club round trip keeps lists", func(t *testing.T) {
		truncateAll(t, pool)
		club := mustClub(t, repos, "Robotics")

		got, err := repos.ClubRepository.GetByID(ctx, club.ID)
		require.NoError(t, err)
		assert.Equal(t, []models.TeamHead{{Name: "Lead", Title: "President"}}, got.TeamHeads)
		assert.Equal(t, []string{"Kickoff"}, got.UpcomingEvents)
		assert.Empty(t, got.PastEvents)

		assert.ErrorIs(t, repos.ClubRepository.Create(ctx, &models.Club{Name: "Robotics", ClubKey: "k"}), apperrors.ErrClubNameExists)

		open, err := repos.ClubRepository.ToggleEnrollment(ctx, club.ID)
		require.NoError(t, err)
		assert.False(t, open)
		open, err = repos.ClubRepository.ToggleEnrollment(ctx, club.ID)
		require.NoError(t, err)
		assert.True(t, open)

		clubs, total, err := repos.ClubRepository.List(ctx, "robo", 0, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, clubs, 1)
	})

	t.Run("membership primary key rejects duplicates", func(t *testing.T) {
		truncateAll(t, pool)
		club := mustClub(t, repos, "Chess")
		student := mustUser(t, repos, "21CS002", models.RoleStudent, nil)

		require.NoError(t, repos.MembershipRepository.Add(ctx, student.ID, club.ID))
		assert.ErrorIs(t, repos.MembershipRepository.Add(ctx, student.ID, club.ID), apperrors.ErrAlreadyMember)

		ids, err := repos.MembershipRepository.ClubIDsForUser(ctx, student.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{club.ID}, ids)

		members, err := repos.MembershipRepository.ListMembers(ctx, club.ID)
		require.NoError(t, err)
		require.Len(t, members, 1)
		assert.Equal(t, "21CS002", members[0].User.RollNo)
	})

	t.Run("approving a join for an existing member commits", func(t *testing.T) {
		truncateAll(t, pool)
		club := mustClub(t, repos, "Debate")
		coord := mustUser(t, repos, "C005", models.RoleCoordinator, &club.ID)
		student := mustUser(t, repos, "21CS008", models.RoleStudent, nil)

		join := &models.MembershipRequest{Kind: models.RequestKindJoin, StudentID: student.ID, ClubID: club.ID, CoordinatorID: &coord.ID}
		require.NoError(t, repos.RequestRepository.Create(ctx, join))
		require.NoError(t, repos.MembershipRepository.Add(ctx, student.ID, club.ID))

		var added bool
		require.NoError(t, repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
			ok, err := repos.RequestRepository.Resolve(ctx, join.ID, models.RequestStatusApproved, coord.ID)
			if err != nil {
				return err
			}
			assert.True(t, ok)
			added, err = repos.MembershipRepository.AddIfAbsent(ctx, student.ID, club.ID)
			return err
		}))
		assert.False(t, added)

		got, err := repos.RequestRepository.GetByID(ctx, join.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusApproved, got.Status)

		ok, err := repos.MembershipRepository.Exists(ctx, student.ID, club.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = repos.MembershipRepository.AddIfAbsent(ctx, student.ID, club.ID+1000)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	})

	t.Run("one pending request per kind", func(t *testing.T) {
		truncateAll(t, pool)
		club := mustClub(t, repos, "Drama")
		coord := mustUser(t, repos, "C001", models.RoleCoordinator, &club.ID)
		student := mustUser(t, repos, "21CS003", models.RoleStudent, nil)

		first := &models.MembershipRequest{Kind: models.RequestKindLeave, StudentID: student.ID, ClubID: club.ID, CoordinatorID: &coord.ID}
		require.NoError(t, repos.RequestRepository.Create(ctx, first))

		second := &models.MembershipRequest{Kind: models.RequestKindLeave, StudentID: student.ID, ClubID: club.ID, CoordinatorID: &coord.ID}
		assert.ErrorIs(t, repos.RequestRepository.Create(ctx, second), apperrors.ErrRequestPending)

		join := &models.MembershipRequest{Kind: models.RequestKindJoin, StudentID: student.ID, ClubID: club.ID, CoordinatorID: &coord.ID}
		require.NoError(t, repos.RequestRepository.Create(ctx, join))

		ok, err := repos.RequestRepository.Resolve(ctx, first.ID, models.RequestStatusRejected, coord.ID)
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = repos.RequestRepository.Resolve(ctx, first.ID, models.RequestStatusApproved, coord.ID)
		require.NoError(t, err)
		assert.False(t, ok, "resolved requests stay resolved")

		got, err := repos.RequestRepository.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusRejected, got.Status)
		assert.NotNil(t, got.ProcessedAt)

		require.NoError(t, repos.RequestRepository.Create(ctx, second), "a new request is allowed once none is pending")
	})

	t.Run("vote and counter share a transaction", func(t *testing.T) {
		truncateAll(t, pool)
		admin := mustUser(t, repos, "ADMIN1", models.RoleAdmin, nil)
		voter := mustUser(t, repos, "21CS004", models.RoleStudent, nil)

		poll := &models.Poll{Scope: models.PollScopeAll, Question: "Pick", CreatedBy: &admin.ID,
			Options: []models.PollOption{{Text: "A"}, {Text: "B"}}}
		require.NoError(t, repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
			return repos.PollRepository.Create(ctx, poll)
		}))

		vote := func() error {
			return repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
				if err := repos.PollRepository.IncrementOption(ctx, poll.ID, poll.Options[0].ID); err != nil {
					return err
				}
				return repos.PollRepository.RecordVote(ctx, &models.PollVote{
					PollID: poll.ID, VoterID: voter.ID, OptionID: poll.Options[0].ID, OptionIndex: 0,
				})
			})
		}
		require.NoError(t, vote())
		assert.ErrorIs(t, vote(), apperrors.ErrAlreadyVoted)

		got, err := repos.PollRepository.GetByID(ctx, poll.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.Options[0].VoteCount, "failed vote must roll back its increment")
		assert.Equal(t, int64(1), got.TotalVotes())

		votes, err := repos.PollRepository.VotesByVoter(ctx, voter.ID, []int64{poll.ID})
		require.NoError(t, err)
		assert.Equal(t, poll.Options[0].ID, votes[poll.ID])

		badScope := &models.Poll{Scope: models.PollScopeClub, Question: "No club", CreatedBy: &admin.ID}
		assert.Error(t, repos.PollRepository.Create(ctx, badScope))
	})

	t.Run("deleting a voter keeps counters in step with votes", func(t *testing.T) {
		truncateAll(t, pool)
		club := mustClub(t, repos, "Quiz")
		coord := mustUser(t, repos, "C006", models.RoleCoordinator, &club.ID)
		voters := []*models.User{
			mustUser(t, repos, "21CS009", models.RoleStudent, nil),
			mustUser(t, repos, "21CS010", models.RoleStudent, nil),
		}

		poll := &models.Poll{Scope: models.PollScopeAll, Question: "Pick", CreatedBy: &coord.ID,
			Options: []models.PollOption{{Text: "A"}, {Text: "B"}}}
		require.NoError(t, repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
			return repos.PollRepository.Create(ctx, poll)
		}))
		for _, v := range voters {
			require.NoError(t, repos.PollRepository.IncrementOption(ctx, poll.ID, poll.Options[0].ID))
			require.NoError(t, repos.PollRepository.RecordVote(ctx, &models.PollVote{
				PollID: poll.ID, VoterID: v.ID, OptionID: poll.Options[0].ID, OptionIndex: 0,
			}))
		}

		event := &models.Event{ClubID: club.ID, Title: "Finals", Date: time.Now().Add(48 * time.Hour), Venue: "Hall", CreatedBy: &coord.ID}
		require.NoError(t, repos.EventRepository.Create(ctx, event))
		_, err := repos.EventRepository.Review(ctx, event.ID, models.EventStatusApproved)
		require.NoError(t, err)

		require.NoError(t, repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
			n, err := repos.PollRepository.RemoveVotesByVoter(ctx, voters[0].ID)
			if err != nil {
				return err
			}
			assert.Equal(t, int64(1), n)
			return repos.UserRepository.Delete(ctx, voters[0].ID)
		}))

		got, err := repos.PollRepository.GetByID(ctx, poll.ID)
		require.NoError(t, err)
		var records int64
		require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM poll_votes WHERE poll_id = $1", poll.ID).Scan(&records))
		assert.Equal(t, int64(1), records)
		assert.Equal(t, records, got.TotalVotes())

		require.NoError(t, repos.UserRepository.Delete(ctx, coord.ID))
		kept, err := repos.EventRepository.GetByID(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, models.EventStatusApproved, kept.Status)
		assert.Nil(t, kept.CreatedBy)

		keptPoll, err := repos.PollRepository.GetByID(ctx, poll.ID)
		require.NoError(t, err)
		assert.Nil(t, keptPoll.CreatedBy)
	})

	t.Run("event review is conditional", func(t *testing.T) {
		truncateAll(t, pool)
		club := mustClub(t, repos, "Music")
		coord := mustUser(t, repos, "C002", models.RoleCoordinator, &club.ID)
		student := mustUser(t, repos, "21CS005", models.RoleStudent, nil)

		event := &models.Event{ClubID: club.ID, Title: "Jam", Date: time.Now().Add(48 * time.Hour), Venue: "Hall", CreatedBy: &coord.ID}
		require.NoError(t, repos.EventRepository.Create(ctx, event))

		ok, err := repos.EventRepository.Review(ctx, event.ID, models.EventStatusApproved)
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = repos.EventRepository.Review(ctx, event.ID, models.EventStatusRejected)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, repos.EventRepository.Register(ctx, event.ID, student.ID))
		assert.ErrorIs(t, repos.EventRepository.Register(ctx, event.ID, student.ID), apperrors.ErrAlreadyRegistered)

		got, err := repos.EventRepository.GetByID(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.RegistrationCount)
		assert.Equal(t, "Music", got.ClubName)

		mine, err := repos.EventRepository.List(ctx, EventFilter{RegisteredBy: &student.ID})
		require.NoError(t, err)
		assert.Len(t, mine, 1)

		deleted, err := repos.EventRepository.Delete(ctx, event.ID)
		require.NoError(t, err)
		assert.False(t, deleted, "approved events are not deletable")
	})

	t.Run("feedback transitions are conditional", func(t *testing.T) {
		truncateAll(t, pool)
		club := mustClub(t, repos, "Art")
		coord := mustUser(t, repos, "C003", models.RoleCoordinator, &club.ID)
		student := mustUser(t, repos, "21CS006", models.RoleStudent, nil)

		f := &models.Feedback{StudentID: &student.ID, ClubID: &club.ID, Subject: "Timing", Message: "Later please"}
		require.NoError(t, repos.FeedbackRepository.Create(ctx, f))

		target := true
		ok, err := repos.FeedbackRepository.Transition(ctx, FeedbackTransition{
			ID: f.ID, From: []models.FeedbackStatus{models.FeedbackStatusPending},
			To: models.FeedbackStatusEscalated, TargetAdmin: &target, HandledBy: coord.ID,
		})
		require.NoError(t, err)
		assert.True(t, ok)

		items, err := repos.FeedbackRepository.List(ctx, FeedbackFilter{TargetAdmin: &target})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "User 21CS006", items[0].SubmitterName)
		assert.Equal(t, "Art", items[0].ClubName)
	})

	t.Run("deleting a club cascades", func(t *testing.T) {
		truncateAll(t, pool)
		club := mustClub(t, repos, "Film")
		coord := mustUser(t, repos, "C004", models.RoleCoordinator, &club.ID)
		student := mustUser(t, repos, "21CS007", models.RoleStudent, nil)
		require.NoError(t, repos.MembershipRepository.Add(ctx, student.ID, club.ID))

		stats, err := repos.AnalyticsRepository.ClubStats(ctx, club.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.Members)

		require.NoError(t, repos.ClubRepository.Delete(ctx, club.ID))

		got, err := repos.UserRepository.GetByID(ctx, coord.ID)
		require.NoError(t, err)
		assert.Nil(t, got.CoordinatingClubID)

		ids, err := repos.MembershipRepository.ClubIDsForUser(ctx, student.ID)
		require.NoError(t, err)
		assert.Empty(t, ids)

		_, err = repos.AnalyticsRepository.ClubStats(ctx, club.ID)
		assert.True(t, errors.Is(err, apperrors.ErrClubNotFound))

		admin, err := repos.AnalyticsRepository.AdminStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), admin.Clubs)
	})
}
