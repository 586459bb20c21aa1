package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

func TestClubService_JoinWithKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Club.Join(ctx, f.caller(t, f.alice), f.club.ID, &dto.JoinClubRequest{ClubKey: "wrong"})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Equal(t, "Invalid club key", apperrors.MessageOf(err, ""))

	club, err := f.svc.Club.Join(ctx, f.caller(t, f.alice), f.club.ID, &dto.JoinClubRequest{ClubKey: "R0B0T1CS"})
	require.NoError(t, err)
	assert.True(t, club.IsMember)
	assert.Equal(t, int64(1), club.MemberCount)
	assert.Empty(t, club.ClubKey, "students never see the key")

	_, err = f.svc.Club.Join(ctx, f.caller(t, f.alice), f.club.ID, &dto.JoinClubRequest{ClubKey: "R0B0T1CS"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyMember)

	mine, err := f.svc.Club.MyClubs(ctx, f.caller(t, f.alice))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Robotics", mine[0].Name)

	members, err := f.svc.Club.ListMembers(ctx, f.caller(t, f.coordinator), f.club.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, f.alice.RollNo, members[0].RollNo)
}

func TestClubService_JoinRejectsNonStudents(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Club.Join(context.Background(), f.caller(t, f.coordinator), f.club.ID, &dto.JoinClubRequest{ClubKey: "R0B0T1CS"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.svc.Club.Join(context.Background(), f.caller(t, f.alice), 9999, &dto.JoinClubRequest{ClubKey: "R0B0T1CS"})
	assert.ErrorIs(t, err, apperrors.ErrClubNotFound)
}

func TestClubService_EnrollBackfillsDetails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Club.Enroll(ctx, f.caller(t, f.alice), f.club.ID, &dto.EnrollRequest{
		ClubKey: "R0B0T1CS",
		Year:    ptr(2),
		Branch:  ptr("CSE"),
	})
	require.NoError(t, err)

	u, err := f.repos.UserRepository.GetByID(ctx, f.alice.ID)
	require.NoError(t, err)
	require.NotNil(t, u.Year)
	assert.Equal(t, 2, *u.Year)
	assert.Equal(t, "CSE", *u.Branch)
}

func TestClubService_ToggleEnrollmentTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	state, err := f.svc.Club.ToggleEnrollment(ctx, f.caller(t, f.coordinator), f.club.ID)
	require.NoError(t, err)
	assert.False(t, state.EnrollmentOpen)

	_, err = f.svc.Club.Join(ctx, f.caller(t, f.alice), f.club.ID, &dto.JoinClubRequest{ClubKey: "R0B0T1CS"})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Equal(t, "Enrollment is closed", apperrors.MessageOf(err, ""))

	state, err = f.svc.Club.ToggleEnrollment(ctx, f.caller(t, f.coordinator), f.club.ID)
	require.NoError(t, err)
	assert.True(t, state.EnrollmentOpen)

	_, err = f.svc.Club.Join(ctx, f.caller(t, f.alice), f.club.ID, &dto.JoinClubRequest{ClubKey: "R0B0T1CS"})
	assert.NoError(t, err)
}

func TestClubService_ToggleEnrollmentOtherClub(t *testing.T) {
	f := newFixture(t)
	other := f.addClub(t, "Drama")

	_, err := f.svc.Club.ToggleEnrollment(context.Background(), f.caller(t, f.coordinator), other.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestClubService_KeyVisibleToManagers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	asCoordinator, err := f.svc.Club.GetClub(ctx, f.caller(t, f.coordinator), f.club.ID)
	require.NoError(t, err)
	assert.Equal(t, "R0B0T1CS", asCoordinator.ClubKey)
	require.Len(t, asCoordinator.Coordinators, 1)

	asAdmin, err := f.svc.Club.GetClub(ctx, f.caller(t, f.admin), f.club.ID)
	require.NoError(t, err)
	assert.Equal(t, "R0B0T1CS", asAdmin.ClubKey)

	asStudent, err := f.svc.Club.GetClub(ctx, f.caller(t, f.alice), f.club.ID)
	require.NoError(t, err)
	assert.Empty(t, asStudent.ClubKey)
}

func TestClubService_CreateClubAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := &dto.CreateClubRequest{Name: "Chess", ClubKey: "CHECKMATE"}

	_, err := f.svc.Club.CreateClub(ctx, f.caller(t, f.coordinator), req, nil)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	club, err := f.svc.Club.CreateClub(ctx, f.caller(t, f.admin), req, nil)
	require.NoError(t, err)
	assert.True(t, club.EnrollmentOpen)

	_, err = f.svc.Club.CreateClub(ctx, f.caller(t, f.admin), req, nil)
	assert.ErrorIs(t, err, apperrors.ErrResourceAlreadyExists)
}

func TestClubService_AddAndRemoveMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coordinator := f.caller(t, f.coordinator)

	require.NoError(t, f.svc.Club.AddMember(ctx, coordinator, f.club.ID, &dto.AddMemberRequest{RollNo: "21cs001"}))

	err := f.svc.Club.AddMember(ctx, coordinator, f.club.ID, &dto.AddMemberRequest{RollNo: "21CS001"})
	assert.True(t, apperrors.IsConflict(err))

	err = f.svc.Club.AddMember(ctx, coordinator, f.club.ID, &dto.AddMemberRequest{RollNo: "COORD1"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	err = f.svc.Club.AddMember(ctx, coordinator, f.club.ID, &dto.AddMemberRequest{RollNo: "NOPE99"})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	require.NoError(t, f.svc.Club.RemoveMember(ctx, coordinator, f.club.ID, f.alice.ID))
	err = f.svc.Club.RemoveMember(ctx, coordinator, f.club.ID, f.alice.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}
