package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID                 int64     `json:"id" db:"id" example:"1"`
	Name               string    `json:"name" db:"name" example:"Asha Verma"`
	Email              string    `json:"email" db:"email" example:"asha@college.edu"`
	RollNo             string    `json:"rollNo" db:"roll_no" example:"21CS042"`
	Password           string    `json:"-" db:"password_hash"`
	Role               Role      `json:"role" db:"role" example:"student"`
	Year               *int      `json:"year,omitempty" db:"year" example:"2"`
	Branch             *string   `json:"branch,omitempty" db:"branch" example:"CSE"`
	CoordinatingClubID *int64    `json:"coordinatingClubId,omitempty" db:"coordinating_club_id"`
	CreatedAt          time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time `json:"updatedAt" db:"updated_at"`
}

// CoordinatesClub reports whether the user is the assigned coordinator of clubID.
func (u *User) CoordinatesClub(clubID int64) bool {
	return u.Role == RoleCoordinator && u.CoordinatingClubID != nil && *u.CoordinatingClubID == clubID
}
