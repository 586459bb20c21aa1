package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/notify"
)

func isMember(t *testing.T, f *fixture, u *models.User) bool {
	t.Helper()
	ok, err := f.repos.MembershipRepository.Exists(context.Background(), u.ID, f.club.ID)
	require.NoError(t, err)
	return ok
}

func TestRequestService_LeaveApproved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.join(t, f.alice, f.club.ID)

	req, err := f.svc.Request.RequestLeave(ctx, f.caller(t, f.alice), f.club.ID, &dto.MembershipRequestInput{Reason: " exams "})
	require.NoError(t, err)
	assert.Equal(t, models.RequestKindLeave, req.Kind)
	assert.Equal(t, models.RequestStatusPending, req.Status)
	assert.Equal(t, "exams", req.Reason)
	require.NotNil(t, req.CoordinatorID)
	assert.Equal(t, f.coordinator.ID, *req.CoordinatorID)

	_, err = f.svc.Request.RequestLeave(ctx, f.caller(t, f.alice), f.club.ID, &dto.MembershipRequestInput{})
	assert.ErrorIs(t, err, apperrors.ErrRequestPending)

	resolved, err := f.svc.Request.ResolveRequest(ctx, f.caller(t, f.coordinator), req.ID, &dto.ResolveRequestInput{Action: "approve"})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusApproved, resolved.Status)
	assert.NotNil(t, resolved.ProcessedAt)
	assert.False(t, isMember(t, f, f.alice))
	assert.Equal(t, []string{notify.SubjectRequestResolved}, f.published.Subjects())

	_, err = f.svc.Request.ResolveRequest(ctx, f.caller(t, f.coordinator), req.ID, &dto.ResolveRequestInput{Action: "reject"})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Equal(t, "Request has already been approved", apperrors.MessageOf(err, ""))
}

func TestRequestService_LeaveRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.join(t, f.bob, f.club.ID)

	req, err := f.svc.Request.RequestLeave(ctx, f.caller(t, f.bob), f.club.ID, &dto.MembershipRequestInput{})
	require.NoError(t, err)

	resolved, err := f.svc.Request.ResolveRequest(ctx, f.caller(t, f.coordinator), req.ID, &dto.ResolveRequestInput{Action: "reject"})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusRejected, resolved.Status)
	assert.True(t, isMember(t, f, f.bob))

	mine, err := f.svc.Request.MyRequests(ctx, f.caller(t, f.bob))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, models.RequestStatusRejected, mine[0].Status)
}

func TestRequestService_LeaveRequiresMembership(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Request.RequestLeave(context.Background(), f.caller(t, f.alice), f.club.ID, &dto.MembershipRequestInput{})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestRequestService_JoinApproved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Request.RequestJoin(ctx, f.caller(t, f.alice), f.club.ID, &dto.MembershipRequestInput{Reason: "I build robots"})
	require.NoError(t, err)
	assert.Equal(t, models.RequestKindJoin, req.Kind)

	kind := models.RequestKindJoin
	listed, err := f.svc.Request.ListClubRequests(ctx, f.caller(t, f.coordinator), f.club.ID, &kind, nil)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	_, err = f.svc.Request.ResolveRequest(ctx, f.caller(t, f.admin), req.ID, &dto.ResolveRequestInput{Action: "approve"})
	require.NoError(t, err)
	assert.True(t, isMember(t, f, f.alice))

	_, err = f.svc.Request.RequestJoin(ctx, f.caller(t, f.alice), f.club.ID, &dto.MembershipRequestInput{})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyMember)
}

func TestRequestService_JoinApprovedAfterKeyJoin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Request.RequestJoin(ctx, f.caller(t, f.alice), f.club.ID, &dto.MembershipRequestInput{})
	require.NoError(t, err)
	f.join(t, f.alice, f.club.ID)

	resolved, err := f.svc.Request.ResolveRequest(ctx, f.caller(t, f.coordinator), req.ID, &dto.ResolveRequestInput{Action: "approve"})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusApproved, resolved.Status)
	assert.True(t, isMember(t, f, f.alice))

	members, err := f.repos.MembershipRepository.CountMembers(ctx, f.club.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), members)
}

func TestRequestService_ResolveForeignClub(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	drama := f.addClub(t, "Drama")
	dramaCoordinator := f.addUser(t, "COORD2", models.RoleCoordinator, &drama.ID)

	req, err := f.svc.Request.RequestJoin(ctx, f.caller(t, f.alice), f.club.ID, &dto.MembershipRequestInput{})
	require.NoError(t, err)

	_, err = f.svc.Request.ResolveRequest(ctx, f.caller(t, dramaCoordinator), req.ID, &dto.ResolveRequestInput{Action: "approve"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.svc.Request.ResolveRequest(ctx, f.caller(t, f.coordinator), req.ID, &dto.ResolveRequestInput{Action: "later"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = f.svc.Request.ListClubRequests(ctx, f.caller(t, f.alice), f.club.ID, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestRequestService_ClubWithoutCoordinator(t *testing.T) {
	f := newFixture(t)
	orphan := f.addClub(t, "Orphans")

	_, err := f.svc.Request.RequestJoin(context.Background(), f.caller(t, f.alice), orphan.ID, &dto.MembershipRequestInput{})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}
