package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Auth.Register(ctx, &dto.RegisterRequest{
		Name:     " Asha Verma ",
		Email:    "Asha@College.edu",
		Password: "secret123",
		RollNo:   " 21cs042 ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.Token.TokenType)
	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.Equal(t, models.RoleStudent, resp.User.Role)
	assert.Equal(t, "21CS042", resp.User.RollNo)
	assert.Equal(t, "asha@college.edu", resp.User.Email)
	assert.Empty(t, resp.User.JoinedClubs)

	login, err := f.svc.Auth.Login(ctx, &dto.LoginRequest{RollNo: "21cs042", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = f.svc.Auth.Login(ctx, &dto.LoginRequest{RollNo: "21CS042", Password: "wrong1234"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.svc.Auth.Login(ctx, &dto.LoginRequest{RollNo: "NOBODY", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.svc.Auth.Register(ctx, &dto.RegisterRequest{
		Name:     "Someone Else",
		Email:    "else@college.edu",
		Password: "secret123",
		RollNo:   "21CS042",
	})
	assert.ErrorIs(t, err, apperrors.ErrRollNoAlreadyExists)
}

func TestAuthService_RegisterWeakPassword(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Auth.Register(context.Background(), &dto.RegisterRequest{
		Name:     "Weak",
		Email:    "weak@college.edu",
		Password: "password",
		RollNo:   "21CS099",
	})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestAuthService_CreateCoordinator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := &dto.CreateCoordinatorRequest{
		Name:     "Ravi",
		Email:    "ravi@college.edu",
		Password: "secret123",
		RollNo:   "COORD9",
		ClubID:   f.club.ID,
	}

	_, err := f.svc.Auth.CreateCoordinator(ctx, f.caller(t, f.alice), req)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	user, err := f.svc.Auth.CreateCoordinator(ctx, f.caller(t, f.admin), req)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCoordinator, user.Role)
	require.NotNil(t, user.CoordinatingClub)
	assert.Equal(t, "Robotics", user.CoordinatingClub.Name)

	missing := *req
	missing.RollNo = "COORD10"
	missing.Email = "other@college.edu"
	missing.ClubID = 9999
	_, err = f.svc.Auth.CreateCoordinator(ctx, f.caller(t, f.admin), &missing)
	assert.ErrorIs(t, err, apperrors.ErrClubNotFound)

	_, err = f.repos.UserRepository.GetByRollNo(ctx, "COORD10")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestAuthService_ProfileAndPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.join(t, f.alice, f.club.ID)
	alice := f.caller(t, f.alice)

	profile, err := f.svc.Auth.GetProfile(ctx, alice)
	require.NoError(t, err)
	require.Len(t, profile.JoinedClubs, 1)

	branch := "ECE"
	updated, err := f.svc.Auth.UpdateProfile(ctx, alice, &dto.UpdateProfileRequest{Branch: &branch})
	require.NoError(t, err)
	require.NotNil(t, updated.Branch)
	assert.Equal(t, "ECE", *updated.Branch)

	err = f.svc.Auth.ChangePassword(ctx, alice, &dto.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "newpass123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	require.NoError(t, f.svc.Auth.ChangePassword(ctx, alice, &dto.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "newpass123"}))
	_, err = f.svc.Auth.Login(ctx, &dto.LoginRequest{RollNo: f.alice.RollNo, Password: "newpass123"})
	assert.NoError(t, err)
}

func TestUserService_AdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.caller(t, f.admin)

	_, err := f.svc.User.ListUsers(ctx, f.caller(t, f.coordinator), nil, 1, 20)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	student := models.RoleStudent
	list, err := f.svc.User.ListUsers(ctx, admin, &student, 1, 20)
	require.NoError(t, err)
	assert.Len(t, list.Users, 2)
	assert.Equal(t, int64(2), list.PaginationInfo.TotalItems)

	err = f.svc.User.DeleteUser(ctx, admin, f.admin.ID)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	require.NoError(t, f.svc.User.DeleteUser(ctx, admin, f.bob.ID))
	_, err = f.svc.User.GetUser(ctx, admin, f.bob.ID)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
