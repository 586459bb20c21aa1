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

func proposeEvent(t *testing.T, f *fixture) *dto.EventResponse {
	t.Helper()
	event, err := f.svc.Event.CreateEvent(context.Background(), f.caller(t, f.coordinator), &dto.CreateEventRequest{
		Title: "Bot Wars",
		Date:  "2026-12-01T18:00:00Z",
		Venue: "Main Auditorium",
	})
	require.NoError(t, err)
	return event
}

func TestEventService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	event := proposeEvent(t, f)
	assert.Equal(t, models.EventStatusPending, event.Status)
	assert.Equal(t, f.club.ID, event.ClubID)

	_, err := f.svc.Event.GetEvent(ctx, f.caller(t, f.alice), event.ID)
	assert.ErrorIs(t, err, apperrors.ErrEventNotFound, "pending events are hidden from students")

	title := "Bot Wars 2"
	updated, err := f.svc.Event.UpdateEvent(ctx, f.caller(t, f.coordinator), event.ID, &dto.UpdateEventRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Bot Wars 2", updated.Title)

	pending, err := f.svc.Event.ListPendingEvents(ctx, f.caller(t, f.admin))
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	approved, err := f.svc.Event.ReviewEvent(ctx, f.caller(t, f.admin), event.ID, &dto.ReviewEventRequest{Action: "Approve"})
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusApproved, approved.Status)
	assert.Equal(t, []string{notify.SubjectEventReviewed}, f.published.Subjects())

	_, err = f.svc.Event.ReviewEvent(ctx, f.caller(t, f.admin), event.ID, &dto.ReviewEventRequest{Action: "reject"})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Equal(t, "Event has already been approved", apperrors.MessageOf(err, ""))

	_, err = f.svc.Event.UpdateEvent(ctx, f.caller(t, f.coordinator), event.ID, &dto.UpdateEventRequest{Title: &title})
	assert.Equal(t, "Can only edit pending events", apperrors.MessageOf(err, ""))

	err = f.svc.Event.DeleteEvent(ctx, f.caller(t, f.coordinator), event.ID)
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Equal(t, "Can only delete pending events", apperrors.MessageOf(err, ""))

	visible, err := f.svc.Event.ListEvents(ctx, f.caller(t, f.alice), dto.EventFilterRequest{})
	require.NoError(t, err)
	assert.Len(t, visible, 1)
}

func TestEventService_ReviewAdminOnly(t *testing.T) {
	f := newFixture(t)
	event := proposeEvent(t, f)

	_, err := f.svc.Event.ReviewEvent(context.Background(), f.caller(t, f.coordinator), event.ID, &dto.ReviewEventRequest{Action: "approve"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.svc.Event.ReviewEvent(context.Background(), f.caller(t, f.admin), event.ID, &dto.ReviewEventRequest{Action: "maybe"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestEventService_DeletePending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := proposeEvent(t, f)
	other := f.addUser(t, "COORD2", models.RoleCoordinator, &f.club.ID)

	err := f.svc.Event.DeleteEvent(ctx, f.caller(t, other), event.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	require.NoError(t, f.svc.Event.DeleteEvent(ctx, f.caller(t, f.coordinator), event.ID))
	_, err = f.svc.Event.GetEvent(ctx, f.caller(t, f.admin), event.ID)
	assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
}

func TestEventService_Registration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := proposeEvent(t, f)
	alice := f.caller(t, f.alice)

	err := f.svc.Event.Register(ctx, alice, event.ID)
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Equal(t, "Event is not open for registration", apperrors.MessageOf(err, ""))

	_, err = f.svc.Event.ReviewEvent(ctx, f.caller(t, f.admin), event.ID, &dto.ReviewEventRequest{Action: "approve"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Event.Register(ctx, alice, event.ID))
	assert.ErrorIs(t, f.svc.Event.Register(ctx, alice, event.ID), apperrors.ErrAlreadyRegistered)
	assert.ErrorIs(t, f.svc.Event.Register(ctx, f.caller(t, f.coordinator), event.ID), apperrors.ErrPermissionDenied)

	mine, err := f.svc.Event.MyEvents(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.True(t, mine[0].IsRegistered)

	registrations, err := f.svc.Event.ListRegistrations(ctx, f.caller(t, f.coordinator), event.ID)
	require.NoError(t, err)
	require.Len(t, registrations, 1)
	assert.Equal(t, f.alice.ID, registrations[0].User.ID)

	_, err = f.svc.Event.ListRegistrations(ctx, alice, event.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	require.NoError(t, f.svc.Event.Unregister(ctx, alice, event.ID))
	require.NoError(t, f.svc.Event.Unregister(ctx, alice, event.ID), "unregistering twice is a no-op")

	mine, err = f.svc.Event.MyEvents(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, mine)

	assert.ErrorIs(t, f.svc.Event.Unregister(ctx, alice, 9999), apperrors.ErrEventNotFound)
}

func TestEventService_CoordinatorSeesOwnPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	proposeEvent(t, f)
	drama := f.addClub(t, "Drama")
	dramaCoordinator := f.addUser(t, "COORD2", models.RoleCoordinator, &drama.ID)

	own, err := f.svc.Event.ListEvents(ctx, f.caller(t, f.coordinator), dto.EventFilterRequest{})
	require.NoError(t, err)
	assert.Len(t, own, 1)

	others, err := f.svc.Event.ListEvents(ctx, f.caller(t, dramaCoordinator), dto.EventFilterRequest{})
	require.NoError(t, err)
	assert.Empty(t, others)

	pending := models.EventStatusPending
	filtered, err := f.svc.Event.ListEvents(ctx, f.caller(t, f.alice), dto.EventFilterRequest{Status: &pending})
	require.NoError(t, err)
	assert.Empty(t, filtered)
}

func TestEventService_InvalidDate(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Event.CreateEvent(context.Background(), f.caller(t, f.coordinator), &dto.CreateEventRequest{
		Title: "Bot Wars",
		Date:  "next friday",
		Venue: "Lab",
	})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}
