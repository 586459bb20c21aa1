package models

import "time"

// Feedback is a message from a student to a club, or from a coordinator to the admins.
type Feedback struct {
	ID            int64          `db:"id"`
	StudentID     *int64         `db:"student_id"`
	CoordinatorID *int64         `db:"coordinator_id"`
	ClubID        *int64         `db:"club_id"`
	Subject       string         `db:"subject"`
	Message       string         `db:"message"`
	Type          FeedbackType   `db:"type"`
	Status        FeedbackStatus `db:"status"`
	TargetAdmin   bool           `db:"target_admin"`
	Response      *string        `db:"response"`
	HandledBy     *int64         `db:"handled_by"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`

	SubmitterName string `db:"submitter_name"`
	ClubName      string `db:"club_name"`
}
