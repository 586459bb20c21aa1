package dto

import "github.com/yigit/clubhub/internal/app/models"

// AdminDashboardResponse aggregates the whole platform.
type AdminDashboardResponse struct {
	UsersByRole        []models.Count `json:"usersByRole"`
	Clubs              int64          `json:"clubs"`
	OpenClubs          int64          `json:"openClubs"`
	EventsByStatus     []models.Count `json:"eventsByStatus"`
	PollsByStatus      []models.Count `json:"pollsByStatus"`
	TotalVotes         int64          `json:"totalVotes"`
	FeedbackByStatus   []models.Count `json:"feedbackByStatus"`
	FeedbackByType     []models.Count `json:"feedbackByType"`
	TopClubsByMembers  []models.Count `json:"topClubsByMembers"`
	MembersByBranch    []models.Count `json:"membersByBranch"`
	PendingRequests    int64          `json:"pendingRequests"`
	TotalRegistrations int64          `json:"totalRegistrations"`
}

// ClubDashboardResponse aggregates one club.
type ClubDashboardResponse struct {
	ClubID                int64          `json:"clubId"`
	ClubName              string         `json:"clubName"`
	Members               int64          `json:"members"`
	MembersByYear         []models.Count `json:"membersByYear"`
	EventsByStatus        []models.Count `json:"eventsByStatus"`
	RegistrationsPerEvent []models.Count `json:"registrationsPerEvent"`
	PendingRequests       int64          `json:"pendingRequests"`
	FeedbackByStatus      []models.Count `json:"feedbackByStatus"`
	PollVotes             []models.Count `json:"pollVotes"`
}

// NewAdminDashboardResponse copies s into its response form.
func NewAdminDashboardResponse(s *models.AdminStats) *AdminDashboardResponse {
	return &AdminDashboardResponse{
		UsersByRole:        s.UsersByRole,
		Clubs:              s.Clubs,
		OpenClubs:          s.OpenClubs,
		EventsByStatus:     s.EventsByStatus,
		PollsByStatus:      s.PollsByStatus,
		TotalVotes:         s.TotalVotes,
		FeedbackByStatus:   s.FeedbackByStatus,
		FeedbackByType:     s.FeedbackByType,
		TopClubsByMembers:  s.TopClubsByMembers,
		MembersByBranch:    s.MembersByBranch,
		PendingRequests:    s.PendingRequests,
		TotalRegistrations: s.TotalRegistrations,
	}
}

// NewClubDashboardResponse copies s into its response form.
func NewClubDashboardResponse(s *models.ClubStats) *ClubDashboardResponse {
	return &ClubDashboardResponse{
		ClubID:                s.ClubID,
		ClubName:              s.ClubName,
		Members:               s.Members,
		MembersByYear:         s.MembersByYear,
		EventsByStatus:        s.EventsByStatus,
		RegistrationsPerEvent: s.RegistrationsPerEvent,
		PendingRequests:       s.PendingRequests,
		FeedbackByStatus:      s.FeedbackByStatus,
		PollVotes:             s.PollVotes,
	}
}
