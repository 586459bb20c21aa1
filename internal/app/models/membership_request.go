package models

import "time"

// MembershipRequest is a student's join or leave request awaiting the club coordinator.
type MembershipRequest struct {
	ID            int64         `db:"id"`
	Kind          RequestKind   `db:"kind"`
	StudentID     int64         `db:"student_id"`
	ClubID        int64         `db:"club_id"`
	CoordinatorID *int64        `db:"coordinator_id"`
	Reason        string        `db:"reason"`
	Status        RequestStatus `db:"status"`
	ProcessedBy   *int64        `db:"processed_by"`
	ProcessedAt   *time.Time    `db:"processed_at"`
	CreatedAt     time.Time     `db:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at"`

	StudentName   string `db:"student_name"`
	StudentRollNo string `db:"student_roll_no"`
	ClubName      string `db:"club_name"`
}
