package dto

import (
	"time"

	"github.com/yigit/clubhub/internal/app/models"
)

// ClubSummary is the short form of a club embedded in other responses.
type ClubSummary struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	LogoURL *string `json:"logoUrl,omitempty"`
}

// UserResponse is the public view of a user. The password hash is never part of it.
type UserResponse struct {
	ID                 int64         `json:"id"`
	Name               string        `json:"name"`
	Email              string        `json:"email"`
	RollNo             string        `json:"rollNo"`
	Role               models.Role   `json:"role"`
	Year               *int          `json:"year,omitempty"`
	Branch             *string       `json:"branch,omitempty"`
	CoordinatingClubID *int64        `json:"coordinatingClubId,omitempty"`
	CoordinatingClub   *ClubSummary  `json:"coordinatingClub,omitempty"`
	JoinedClubs        []ClubSummary `json:"joinedClubs"`
	CreatedAt          time.Time     `json:"createdAt"`
}

// UserBrief identifies a user inside another resource.
type UserBrief struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	RollNo string `json:"rollNo"`
	Email  string `json:"email,omitempty"`
}

// UserListResponse is one page of users.
type UserListResponse struct {
	Users          []UserResponse `json:"users"`
	PaginationInfo PaginationInfo `json:"paginationInfo"`
}

// NewUserResponse builds the public view of u with its joined clubs.
func NewUserResponse(u *models.User, joined []*models.Club) UserResponse {
	resp := UserResponse{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		RollNo:             u.RollNo,
		Role:               u.Role,
		Year:               u.Year,
		Branch:             u.Branch,
		CoordinatingClubID: u.CoordinatingClubID,
		JoinedClubs:        make([]ClubSummary, 0, len(joined)),
		CreatedAt:          u.CreatedAt,
	}
	for _, c := range joined {
		resp.JoinedClubs = append(resp.JoinedClubs, NewClubSummary(c))
	}
	return resp
}

// NewUserBrief builds the short form of u.
func NewUserBrief(u *models.User) UserBrief {
	return UserBrief{ID: u.ID, Name: u.Name, RollNo: u.RollNo, Email: u.Email}
}

// NewClubSummary builds the short form of c.
func NewClubSummary(c *models.Club) ClubSummary {
	return ClubSummary{ID: c.ID, Name: c.Name, LogoURL: c.LogoURL}
}
