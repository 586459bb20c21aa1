package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

func TestAnalyticsService_AdminDashboardCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.caller(t, f.admin)

	first, err := f.svc.Analytics.AdminDashboard(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Clubs)

	f.addClub(t, "Drama")
	cached, err := f.svc.Analytics.AdminDashboard(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cached.Clubs, "served from cache")

	require.NoError(t, f.cache.Delete(ctx, adminDashboardKey))
	fresh, err := f.svc.Analytics.AdminDashboard(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fresh.Clubs)

	_, err = f.svc.Analytics.AdminDashboard(ctx, f.caller(t, f.coordinator))
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestAnalyticsService_ClubDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.join(t, f.alice, f.club.ID)
	f.join(t, f.bob, f.club.ID)

	own, err := f.svc.Analytics.ClubDashboard(ctx, f.caller(t, f.coordinator), nil)
	require.NoError(t, err)
	assert.Equal(t, f.club.ID, own.ClubID)
	assert.Equal(t, int64(2), own.Members)

	_, err = f.svc.Analytics.ClubDashboard(ctx, f.caller(t, f.admin), nil)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = f.svc.Analytics.ClubDashboard(ctx, f.caller(t, f.admin), ptr(int64(9999)))
	assert.ErrorIs(t, err, apperrors.ErrClubNotFound)

	byAdmin, err := f.svc.Analytics.ClubDashboard(ctx, f.caller(t, f.admin), &f.club.ID)
	require.NoError(t, err)
	assert.Equal(t, "Robotics", byAdmin.ClubName)

	_, err = f.svc.Analytics.ClubDashboard(ctx, f.caller(t, f.alice), &f.club.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
