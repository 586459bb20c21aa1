package models

// Count is a labelled tally used by the dashboards.
type Count struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// AdminStats aggregates the whole platform.
type AdminStats struct {
	UsersByRole        []Count
	Clubs              int64
	OpenClubs          int64
	EventsByStatus     []Count
	PollsByStatus      []Count
	TotalVotes         int64
	FeedbackByStatus   []Count
	FeedbackByType     []Count
	TopClubsByMembers  []Count
	MembersByBranch    []Count
	PendingRequests    int64
	TotalRegistrations int64
}

// ClubStats aggregates one club.
type ClubStats struct {
	ClubID                int64
	ClubName              string
	Members               int64
	MembersByYear         []Count
	EventsByStatus        []Count
	RegistrationsPerEvent []Count
	PendingRequests       int64
	FeedbackByStatus      []Count
	PollVotes             []Count
}
