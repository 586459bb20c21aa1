package dto

import (
	"time"

	"github.com/yigit/clubhub/internal/app/models"
)

// SubmitFeedbackRequest is sent by students (to a club) and coordinators (to the admins).
// ClubID is required for students and ignored for coordinators.
type SubmitFeedbackRequest struct {
	ClubID  *int64              `json:"clubId"`
	Subject string              `json:"subject" binding:"required,min=3,max=200"`
	Message string              `json:"message" binding:"required,max=5000"`
	Type    models.FeedbackType `json:"type" binding:"omitempty,oneof=general suggestion complaint appreciation issue request"`
}

// FeedbackActionRequest handles a feedback item. Response is shown to the submitter.
type FeedbackActionRequest struct {
	Action   string  `json:"action" binding:"required" example:"resolve"`
	Response *string `json:"response" binding:"omitempty,max=5000"`
}

// FeedbackResponse is the public view of a feedback item.
type FeedbackResponse struct {
	ID            int64                 `json:"id"`
	Subject       string                `json:"subject"`
	Message       string                `json:"message"`
	Type          models.FeedbackType   `json:"type"`
	Status        models.FeedbackStatus `json:"status"`
	TargetAdmin   bool                  `json:"targetAdmin"`
	Response      *string               `json:"response,omitempty"`
	ClubID        *int64                `json:"clubId,omitempty"`
	ClubName      string                `json:"clubName,omitempty"`
	StudentID     *int64                `json:"studentId,omitempty"`
	CoordinatorID *int64                `json:"coordinatorId,omitempty"`
	SubmittedBy   string                `json:"submittedBy,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

// NewFeedbackResponse builds the public view of f.
func NewFeedbackResponse(f *models.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:            f.ID,
		Subject:       f.Subject,
		Message:       f.Message,
		Type:          f.Type,
		Status:        f.Status,
		TargetAdmin:   f.TargetAdmin,
		Response:      f.Response,
		ClubID:        f.ClubID,
		ClubName:      f.ClubName,
		StudentID:     f.StudentID,
		CoordinatorID: f.CoordinatorID,
		SubmittedBy:   f.SubmitterName,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}
