package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

func ptr[T any](v T) *T { return &v }

var (
	admin       = Caller{ID: 1, Role: models.RoleAdmin}
	coordinator = Caller{ID: 2, Role: models.RoleCoordinator, CoordinatingClubID: ptr(int64(10))}
	unassigned  = Caller{ID: 3, Role: models.RoleCoordinator}
	student     = Caller{ID: 4, Role: models.RoleStudent, ClubIDs: []int64{10, 11}}
)

func TestCanManageClub(t *testing.T) {
	assert.NoError(t, CanManageClub(admin, 99))
	assert.NoError(t, CanManageClub(coordinator, 10))
	assert.ErrorIs(t, CanManageClub(coordinator, 11), apperrors.ErrPermissionDenied)
	assert.ErrorIs(t, CanManageClub(unassigned, 10), apperrors.ErrPermissionDenied)
	assert.ErrorIs(t, CanManageClub(student, 10), apperrors.ErrPermissionDenied)
}

func TestAssignedClub(t *testing.T) {
	id, err := coordinator.AssignedClub()
	assert.NoError(t, err)
	assert.Equal(t, int64(10), id)

	_, err = unassigned.AssignedClub()
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = student.AssignedClub()
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestCanSeePoll(t *testing.T) {
	all := &models.Poll{Scope: models.PollScopeAll}
	coords := &models.Poll{Scope: models.PollScopeCoordinators}
	club10 := &models.Poll{Scope: models.PollScopeClub, ClubID: ptr(int64(10))}
	club12 := &models.Poll{Scope: models.PollScopeClub, ClubID: ptr(int64(12))}

	assert.True(t, CanSeePoll(student, all))
	assert.False(t, CanSeePoll(student, coords))
	assert.True(t, CanSeePoll(student, club10))
	assert.False(t, CanSeePoll(student, club12))

	assert.True(t, CanSeePoll(coordinator, all))
	assert.True(t, CanSeePoll(coordinator, coords))
	assert.True(t, CanSeePoll(coordinator, club10))
	assert.False(t, CanSeePoll(coordinator, club12))

	assert.True(t, CanSeePoll(admin, club12))
}

func TestCanSeeEvent(t *testing.T) {
	pendingOwn := &models.Event{ClubID: 10, Status: models.EventStatusPending}
	pendingOther := &models.Event{ClubID: 12, Status: models.EventStatusPending}
	approved := &models.Event{ClubID: 12, Status: models.EventStatusApproved}

	assert.False(t, CanSeeEvent(student, pendingOwn))
	assert.True(t, CanSeeEvent(student, approved))
	assert.True(t, CanSeeEvent(coordinator, pendingOwn))
	assert.False(t, CanSeeEvent(coordinator, pendingOther))
	assert.True(t, CanSeeEvent(admin, pendingOther))
}

func TestRequireRole(t *testing.T) {
	assert.NoError(t, RequireRole(student, models.RoleStudent))
	assert.ErrorIs(t, RequireRole(student, models.RoleAdmin, models.RoleCoordinator), apperrors.ErrPermissionDenied)
}
