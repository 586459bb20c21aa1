package dto

import (
	"time"

	"github.com/yigit/clubhub/internal/app/models"
)

// TeamHeadInput is a team head entry in a club create or update request.
type TeamHeadInput struct {
	Name   string `json:"name" binding:"required,max=100"`
	RollNo string `json:"rollNo" binding:"omitempty,max=20"`
	Title  string `json:"title" binding:"required,max=100"`
}

// CreateClubRequest creates a club. LogoURL is used when no logo file is uploaded.
type CreateClubRequest struct {
	Name           string          `json:"name" binding:"required,min=2,max=100" example:"Robotics"`
	Description    string          `json:"description" binding:"max=2000"`
	ClubKey        string          `json:"clubKey" binding:"required,min=4,max=64" example:"R0B0T1CS"`
	EnrollmentOpen *bool           `json:"enrollmentOpen"`
	LogoURL        *string         `json:"logoUrl" binding:"omitempty,url"`
	TeamHeads      []TeamHeadInput `json:"teamHeads" binding:"omitempty,dive"`
	PastEvents     []string        `json:"pastEvents" binding:"omitempty,dive,max=200"`
	UpcomingEvents []string        `json:"upcomingEvents" binding:"omitempty,dive,max=200"`
}

// UpdateClubRequest changes a club. Omitted fields are kept.
type UpdateClubRequest struct {
	Name           *string          `json:"name" binding:"omitempty,min=2,max=100"`
	Description    *string          `json:"description" binding:"omitempty,max=2000"`
	ClubKey        *string          `json:"clubKey" binding:"omitempty,min=4,max=64"`
	LogoURL        *string          `json:"logoUrl" binding:"omitempty,url"`
	TeamHeads      *[]TeamHeadInput `json:"teamHeads" binding:"omitempty,dive"`
	PastEvents     *[]string        `json:"pastEvents"`
	UpcomingEvents *[]string        `json:"upcomingEvents"`
}

// ClubResponse is the public view of a club. ClubKey is only filled for the club's managers.
type ClubResponse struct {
	ID             int64             `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	LogoURL        *string           `json:"logoUrl,omitempty"`
	EnrollmentOpen bool              `json:"enrollmentOpen"`
	ClubKey        string            `json:"clubKey,omitempty"`
	TeamHeads      []models.TeamHead `json:"teamHeads"`
	PastEvents     []string          `json:"pastEvents"`
	UpcomingEvents []string          `json:"upcomingEvents"`
	Coordinators   []UserBrief       `json:"coordinators"`
	MemberCount    int64             `json:"memberCount"`
	IsMember       bool              `json:"isMember"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// ClubListResponse is one page of clubs.
type ClubListResponse struct {
	Clubs          []ClubResponse `json:"clubs"`
	PaginationInfo PaginationInfo `json:"paginationInfo"`
}

// JoinClubRequest carries the shared membership key.
type JoinClubRequest struct {
	ClubKey string `json:"clubKey" binding:"required"`
}

// EnrollRequest joins a club from the discovery flow and may backfill academic details.
type EnrollRequest struct {
	ClubKey string  `json:"clubKey" binding:"required"`
	Year    *int    `json:"year" binding:"omitempty,min=1,max=6"`
	Branch  *string `json:"branch" binding:"omitempty,max=50"`
}

// AddMemberRequest adds a student to a club roster by roll number.
type AddMemberRequest struct {
	RollNo string `json:"rollNo" binding:"required"`
}

// MemberResponse is one row of a club roster.
type MemberResponse struct {
	UserID   int64     `json:"userId"`
	Name     string    `json:"name"`
	RollNo   string    `json:"rollNo"`
	Email    string    `json:"email"`
	Year     *int      `json:"year,omitempty"`
	Branch   *string   `json:"branch,omitempty"`
	JoinedAt time.Time `json:"joinedAt"`
}

// EnrollmentResponse reports a club's enrollment flag.
type EnrollmentResponse struct {
	ClubID         int64 `json:"clubId"`
	EnrollmentOpen bool  `json:"enrollmentOpen"`
}

// NewMemberResponse builds a roster row.
func NewMemberResponse(m *models.ClubMember) MemberResponse {
	return MemberResponse{
		UserID:   m.User.ID,
		Name:     m.User.Name,
		RollNo:   m.User.RollNo,
		Email:    m.User.Email,
		Year:     m.User.Year,
		Branch:   m.User.Branch,
		JoinedAt: m.JoinedAt,
	}
}

// TeamHeadsFromInput converts request team heads into the stored form.
func TeamHeadsFromInput(in []TeamHeadInput) []models.TeamHead {
	out := make([]models.TeamHead, 0, len(in))
	for _, h := range in {
		out = append(out, models.TeamHead{Name: h.Name, RollNo: h.RollNo, Title: h.Title})
	}
	return out
}
