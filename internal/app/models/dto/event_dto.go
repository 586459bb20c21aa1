package dto

import (
	"time"

	"github.com/yigit/clubhub/internal/app/models"
)

// CreateEventRequest proposes an event for the coordinator's club.
// Date accepts RFC3339, "2006-01-02T15:04" or "2006-01-02".
type CreateEventRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=200" example:"Bot Wars"`
	Description string `json:"description" binding:"max=5000"`
	Date        string `json:"date" binding:"required" example:"2026-03-01T18:00:00Z"`
	Venue       string `json:"venue" binding:"required,max=200" example:"Main Auditorium"`
}

// UpdateEventRequest edits a pending event. Omitted fields are kept.
type UpdateEventRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=3,max=200"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	Date        *string `json:"date"`
	Venue       *string `json:"venue" binding:"omitempty,max=200"`
}

// ReviewEventRequest is the admin decision on a pending event.
type ReviewEventRequest struct {
	Action string `json:"action" binding:"required" example:"approve"`
}

// EventFilterRequest narrows an event listing.
type EventFilterRequest struct {
	ClubID *int64
	Status *models.EventStatus
}

// EventResponse is the public view of an event.
type EventResponse struct {
	ID                int64              `json:"id"`
	ClubID            int64              `json:"clubId"`
	ClubName          string             `json:"clubName,omitempty"`
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	Date              time.Time          `json:"date"`
	Venue             string             `json:"venue"`
	Status            models.EventStatus `json:"status"`
	CreatedBy         *int64             `json:"createdBy,omitempty"`
	RegistrationCount int64              `json:"registrationCount"`
	IsRegistered      bool               `json:"isRegistered"`
	ReviewedAt        *time.Time         `json:"reviewedAt,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// RegistrationResponse lists one registrant of an event.
type RegistrationResponse struct {
	User         UserBrief `json:"user"`
	Year         *int      `json:"year,omitempty"`
	Branch       *string   `json:"branch,omitempty"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// NewEventResponse builds the public view of e.
func NewEventResponse(e *models.Event, registered bool) EventResponse {
	return EventResponse{
		ID:                e.ID,
		ClubID:            e.ClubID,
		ClubName:          e.ClubName,
		Title:             e.Title,
		Description:       e.Description,
		Date:              e.Date,
		Venue:             e.Venue,
		Status:            e.Status,
		CreatedBy:         e.CreatedBy,
		RegistrationCount: e.RegistrationCount,
		IsRegistered:      registered,
		ReviewedAt:        e.ReviewedAt,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}
