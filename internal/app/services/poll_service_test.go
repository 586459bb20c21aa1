package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/notify"
)

func createClubPoll(t *testing.T, f *fixture) dto.PollResponse {
	t.Helper()
	polls, err := f.svc.Poll.CreatePoll(context.Background(), f.caller(t, f.coordinator), &dto.CreatePollRequest{
		Question: "Next workshop topic?",
		Options:  []string{" Drones ", "Arduino"},
	})
	require.NoError(t, err)
	require.Len(t, polls, 1)
	return polls[0]
}

func TestPollService_VoteTally(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	carol := f.addUser(t, "21CS003", models.RoleStudent, nil)
	for _, u := range []*models.User{f.alice, f.bob, carol} {
		f.join(t, u, f.club.ID)
	}

	poll := createClubPoll(t, f)
	assert.Equal(t, models.PollScopeClub, poll.Scope)
	require.NotNil(t, poll.ClubID)
	assert.Equal(t, f.club.ID, *poll.ClubID)
	require.Len(t, poll.Options, 2)
	assert.Equal(t, "Drones", poll.Options[0].Text)
	optA, optB := poll.Options[0].ID, poll.Options[1].ID

	_, err := f.svc.Poll.Vote(ctx, f.caller(t, f.alice), poll.ID, &dto.VoteRequest{OptionID: optA})
	require.NoError(t, err)
	_, err = f.svc.Poll.Vote(ctx, f.caller(t, f.bob), poll.ID, &dto.VoteRequest{OptionID: optA})
	require.NoError(t, err)
	results, err := f.svc.Poll.Vote(ctx, f.caller(t, carol), poll.ID, &dto.VoteRequest{OptionID: optB})
	require.NoError(t, err)

	assert.Equal(t, int64(3), results.TotalVotes)
	assert.Equal(t, int64(2), results.Options[0].VoteCount)
	assert.Equal(t, int64(1), results.Options[1].VoteCount)
	assert.Equal(t, 3, f.broadcast.count(poll.ID))

	_, err = f.svc.Poll.Vote(ctx, f.caller(t, f.alice), poll.ID, &dto.VoteRequest{OptionID: optB})
	require.ErrorIs(t, err, apperrors.ErrAlreadyVoted)
	assert.Equal(t, "Already voted", apperrors.MessageOf(err, ""))
	assert.Equal(t, 3, f.store.VoteCount(poll.ID))

	active, err := f.svc.Poll.ListActivePolls(ctx, f.caller(t, f.alice))
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.NotNil(t, active[0].MyVote)
	assert.Equal(t, optA, *active[0].MyVote)

	assert.Contains(t, f.published.Subjects(), notify.SubjectPollCreated)
}

func TestPollService_ConcurrentDoubleVote(t *testing.T) {
	f := newFixture(t)
	f.join(t, f.alice, f.club.ID)
	poll := createClubPoll(t, f)
	caller := f.caller(t, f.alice)

	var wg sync.WaitGroup
	var ok, rejected atomic.Int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Poll.Vote(context.Background(), caller, poll.ID, &dto.VoteRequest{OptionID: poll.Options[0].ID})
			if err == nil {
				ok.Add(1)
			} else if assert.ErrorIs(t, err, apperrors.ErrAlreadyVoted) {
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(9), rejected.Load())
	assert.Equal(t, 1, f.store.VoteCount(poll.ID))

	results, err := f.svc.Poll.GetPollResults(context.Background(), caller, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), results.TotalVotes)
}

func TestPollService_VisibilityAndClose(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	poll := createClubPoll(t, f)

	_, err := f.svc.Poll.Vote(ctx, f.caller(t, f.alice), poll.ID, &dto.VoteRequest{OptionID: poll.Options[0].ID})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied, "non-members cannot vote on club polls")

	_, err = f.svc.Poll.Vote(ctx, f.caller(t, f.admin), poll.ID, &dto.VoteRequest{OptionID: 9999})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	results, err := f.svc.Poll.ClosePoll(ctx, f.caller(t, f.coordinator), poll.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PollStatusClosed, results.Status)

	f.join(t, f.alice, f.club.ID)
	_, err = f.svc.Poll.Vote(ctx, f.caller(t, f.alice), poll.ID, &dto.VoteRequest{OptionID: poll.Options[0].ID})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Equal(t, "Poll is closed", apperrors.MessageOf(err, ""))

	active, err := f.svc.Poll.ListActivePolls(ctx, f.caller(t, f.alice))
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestPollService_StudentsCannotCreate(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Poll.CreatePoll(context.Background(), f.caller(t, f.alice), &dto.CreatePollRequest{
		Question: "Pizza?",
		Options:  []string{"Yes", "No"},
	})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestPollService_NeedsTwoOptions(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Poll.CreatePoll(context.Background(), f.caller(t, f.coordinator), &dto.CreatePollRequest{
		Question: "Pizza?",
		Options:  []string{"Yes", "   "},
	})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestPollService_AdminMultiClubPoll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	drama := f.addClub(t, "Drama")

	polls, err := f.svc.Poll.CreatePoll(ctx, f.caller(t, f.admin), &dto.CreatePollRequest{
		Question: "Fest theme?",
		Options:  []string{"Retro", "Space"},
		Scope:    models.PollScopeClub,
		ClubIDs:  []int64{f.club.ID, drama.ID, f.club.ID},
	})
	require.NoError(t, err)
	assert.Len(t, polls, 2)

	_, err = f.svc.Poll.CreatePoll(ctx, f.caller(t, f.admin), &dto.CreatePollRequest{
		Question: "Rolled back?",
		Options:  []string{"Yes", "No"},
		Scope:    models.PollScopeClub,
		ClubIDs:  []int64{f.club.ID, 9999},
	})
	require.ErrorIs(t, err, apperrors.ErrClubNotFound)

	all, err := f.repos.PollRepository.List(ctx, repositories.PollFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2, "a failed multi-club poll leaves nothing behind")
}

func TestPollService_CoordinatorScopeHiddenFromStudents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	polls, err := f.svc.Poll.CreatePoll(ctx, f.caller(t, f.admin), &dto.CreatePollRequest{
		Question: "Budget split?",
		Options:  []string{"Even", "By size"},
		Scope:    models.PollScopeCoordinators,
	})
	require.NoError(t, err)
	require.Len(t, polls, 1)

	visible, err := f.svc.Poll.ListActivePolls(ctx, f.caller(t, f.coordinator))
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	hidden, err := f.svc.Poll.ListActivePolls(ctx, f.caller(t, f.alice))
	require.NoError(t, err)
	assert.Empty(t, hidden)

	_, err = f.svc.Poll.GetPollResults(ctx, f.caller(t, f.alice), polls[0].ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestPollService_DeleteByCreatorOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	poll := createClubPoll(t, f)
	other := f.addUser(t, "COORD2", models.RoleCoordinator, &f.addClub(t, "Drama").ID)

	err := f.svc.Poll.DeletePoll(ctx, f.caller(t, other), poll.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	require.NoError(t, f.svc.Poll.DeletePoll(ctx, f.caller(t, f.coordinator), poll.ID))
	_, err = f.svc.Poll.GetPollResults(ctx, f.caller(t, f.admin), poll.ID)
	assert.ErrorIs(t, err, apperrors.ErrPollNotFound)
}
