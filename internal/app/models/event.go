package models

import "time"

// Event defines the event model based on the 'events' table
type Event struct {
	ID                int64       `db:"id"`
	ClubID            int64       `db:"club_id"`
	Title             string      `db:"title"`
	Description       string      `db:"description"`
	Date              time.Time   `db:"event_date"`
	Venue             string      `db:"venue"`
	Status            EventStatus `db:"status"`
	CreatedBy         *int64      `db:"created_by"`
	ReviewedAt        *time.Time  `db:"reviewed_at"`
	CreatedAt         time.Time   `db:"created_at"`
	UpdatedAt         time.Time   `db:"updated_at"`
	RegistrationCount int64       `db:"registration_count"`
	ClubName          string      `db:"club_name"`
}

// IsCreatedBy reports whether userID created the event. Events outlive the
// account that created them, so CreatedBy may be nil.
func (e *Event) IsCreatedBy(userID int64) bool {
	return e.CreatedBy != nil && *e.CreatedBy == userID
}

// EventRegistration is a student's sign-up for an event.
type EventRegistration struct {
	EventID      int64     `db:"event_id"`
	RegisteredAt time.Time `db:"registered_at"`
	User         User
}
