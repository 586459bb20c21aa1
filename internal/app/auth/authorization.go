// Package auth holds the caller identity resolved by the auth middleware and
// the role policy shared by the services.
package auth

import (
	"slices"

	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

// Caller is the identity of the user making a request, re-read from the store
// for every request.
type Caller struct {
	ID                 int64
	Role               models.Role
	CoordinatingClubID *int64
	ClubIDs            []int64
}

// NewCaller builds the caller for u with the clubs u has joined.
func NewCaller(u *models.User, clubIDs []int64) Caller {
	return Caller{
		ID:                 u.ID,
		Role:               u.Role,
		CoordinatingClubID: u.CoordinatingClubID,
		ClubIDs:            clubIDs,
	}
}

func (c Caller) IsStudent() bool     { return c.Role == models.RoleStudent }
func (c Caller) IsCoordinator() bool { return c.Role == models.RoleCoordinator }
func (c Caller) IsAdmin() bool       { return c.Role == models.RoleAdmin }

// IsMemberOf reports whether the caller has joined clubID.
func (c Caller) IsMemberOf(clubID int64) bool {
	return slices.Contains(c.ClubIDs, clubID)
}

// CoordinatesClub compares clubID with the caller's own assigned club.
func (c Caller) CoordinatesClub(clubID int64) bool {
	return c.IsCoordinator() && c.CoordinatingClubID != nil && *c.CoordinatingClubID == clubID
}

// AssignedClub returns the coordinator's club or a bad request error when unassigned.
func (c Caller) AssignedClub() (int64, error) {
	if !c.IsCoordinator() {
		return 0, apperrors.NewForbiddenError("Only coordinators can perform this action")
	}
	if c.CoordinatingClubID == nil {
		return 0, apperrors.NewBadRequestError("You are not assigned to any club")
	}
	return *c.CoordinatingClubID, nil
}

// RequireRole fails with a forbidden error unless the caller holds one of roles.
func RequireRole(c Caller, roles ...models.Role) error {
	if slices.Contains(roles, c.Role) {
		return nil
	}
	return apperrors.NewForbiddenError("You don't have sufficient permissions for this operation")
}

// CanManageClub allows admins for every club and coordinators for their own club.
func CanManageClub(c Caller, clubID int64) error {
	switch c.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleCoordinator:
		if c.CoordinatesClub(clubID) {
			return nil
		}
		return apperrors.NewForbiddenError("You can only manage the club you coordinate")
	case models.RoleStudent:
		return apperrors.NewForbiddenError("Students cannot manage clubs")
	default:
		return apperrors.NewForbiddenError("Unknown role")
	}
}

// CanSeePoll applies the poll visibility rules to a single poll.
func CanSeePoll(c Caller, p *models.Poll) bool {
	switch c.Role {
	case models.RoleAdmin:
		return true
	case models.RoleCoordinator:
		switch p.Scope {
		case models.PollScopeAll, models.PollScopeCoordinators:
			return true
		case models.PollScopeClub:
			return p.ClubID != nil && c.CoordinatesClub(*p.ClubID)
		}
	case models.RoleStudent:
		switch p.Scope {
		case models.PollScopeAll:
			return true
		case models.PollScopeClub:
			return p.ClubID != nil && c.IsMemberOf(*p.ClubID)
		case models.PollScopeCoordinators:
			return false
		}
	}
	return false
}

// CanSeeEvent applies the event visibility rules to a single event.
func CanSeeEvent(c Caller, e *models.Event) bool {
	switch c.Role {
	case models.RoleAdmin:
		return true
	case models.RoleCoordinator:
		return e.Status == models.EventStatusApproved || c.CoordinatesClub(e.ClubID)
	case models.RoleStudent:
		return e.Status == models.EventStatusApproved
	}
	return false
}
