package models

import "time"

// TeamHead is a named office holder listed on a club's page.
type TeamHead struct {
	Name   string `json:"name"`
	RollNo string `json:"rollNo,omitempty"`
	Title  string `json:"title"`
}

// Club defines the club model based on the 'clubs' table
type Club struct {
	ID             int64      `json:"id" db:"id"`
	Name           string     `json:"name" db:"name"`
	Description    string     `json:"description" db:"description"`
	LogoURL        *string    `json:"logoUrl,omitempty" db:"logo_url"`
	ClubKey        string     `json:"-" db:"club_key"`
	EnrollmentOpen bool       `json:"enrollmentOpen" db:"enrollment_open"`
	TeamHeads      []TeamHead `json:"teamHeads" db:"team_heads"`
	PastEvents     []string   `json:"pastEvents" db:"past_events"`
	UpcomingEvents []string   `json:"upcomingEvents" db:"upcoming_events"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`
}

// ClubMember is a row of club_memberships joined with the member's user record.
type ClubMember struct {
	ClubID   int64     `db:"club_id"`
	JoinedAt time.Time `db:"joined_at"`
	User     User
}
