package dto

import (
	"time"

	"github.com/yigit/clubhub/internal/app/models"
)

// MembershipRequestInput opens a join or leave request.
type MembershipRequestInput struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ResolveRequestInput approves or rejects a pending request.
type ResolveRequestInput struct {
	Action string `json:"action" binding:"required" example:"approve"`
}

// MembershipRequestResponse is the public view of a join or leave request.
type MembershipRequestResponse struct {
	ID            int64                `json:"id"`
	Kind          models.RequestKind   `json:"kind"`
	Status        models.RequestStatus `json:"status"`
	Reason        string               `json:"reason"`
	ClubID        int64                `json:"clubId"`
	ClubName      string               `json:"clubName,omitempty"`
	StudentID     int64                `json:"studentId"`
	StudentName   string               `json:"studentName,omitempty"`
	StudentRollNo string               `json:"studentRollNo,omitempty"`
	CoordinatorID *int64               `json:"coordinatorId,omitempty"`
	ProcessedAt   *time.Time           `json:"processedAt,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// NewMembershipRequestResponse builds the public view of r.
func NewMembershipRequestResponse(r *models.MembershipRequest) MembershipRequestResponse {
	return MembershipRequestResponse{
		ID:            r.ID,
		Kind:          r.Kind,
		Status:        r.Status,
		Reason:        r.Reason,
		ClubID:        r.ClubID,
		ClubName:      r.ClubName,
		StudentID:     r.StudentID,
		StudentName:   r.StudentName,
		StudentRollNo: r.StudentRollNo,
		CoordinatorID: r.CoordinatorID,
		ProcessedAt:   r.ProcessedAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
