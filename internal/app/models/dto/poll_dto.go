package dto

import (
	"time"

	"github.com/yigit/clubhub/internal/app/models"
)

// CreatePollRequest creates a poll. Scope and club ids are ignored for coordinators.
type CreatePollRequest struct {
	Question string           `json:"question" binding:"required,min=3,max=500" example:"Next workshop topic?"`
	Options  []string         `json:"options" binding:"required,min=2,max=10,dive,required,max=200"`
	Scope    models.PollScope `json:"scope" example:"all"`
	ClubID   *int64           `json:"clubId"`
	ClubIDs  []int64          `json:"clubIds"`
}

// VoteRequest picks one option of a poll.
type VoteRequest struct {
	OptionID int64 `json:"optionId" binding:"required,min=1"`
}

// PollOptionResponse is one option with its tally.
type PollOptionResponse struct {
	ID        int64  `json:"id"`
	Position  int    `json:"position"`
	Text      string `json:"text"`
	VoteCount int64  `json:"voteCount"`
}

// PollResponse is the public view of a poll. MyVote is the caller's option id, if any.
type PollResponse struct {
	ID         int64                `json:"id"`
	Question   string               `json:"question"`
	Scope      models.PollScope     `json:"scope"`
	ClubID     *int64               `json:"clubId,omitempty"`
	Status     models.PollStatus    `json:"status"`
	CreatedBy  *int64               `json:"createdBy,omitempty"`
	Options    []PollOptionResponse `json:"options"`
	TotalVotes int64                `json:"totalVotes"`
	MyVote     *int64               `json:"myVote,omitempty"`
	CreatedAt  time.Time            `json:"createdAt"`
}

// PollResultsResponse is the tally pushed to live subscribers and returned by the results endpoint.
type PollResultsResponse struct {
	PollID     int64                `json:"pollId"`
	Status     models.PollStatus    `json:"status"`
	Options    []PollOptionResponse `json:"options"`
	TotalVotes int64                `json:"totalVotes"`
}

// NewPollResponse builds the public view of p.
func NewPollResponse(p *models.Poll, myVote *int64) PollResponse {
	return PollResponse{
		ID:         p.ID,
		Question:   p.Question,
		Scope:      p.Scope,
		ClubID:     p.ClubID,
		Status:     p.Status,
		CreatedBy:  p.CreatedBy,
		Options:    newPollOptions(p.Options),
		TotalVotes: p.TotalVotes(),
		MyVote:     myVote,
		CreatedAt:  p.CreatedAt,
	}
}

// NewPollResultsResponse builds the tally of p.
func NewPollResultsResponse(p *models.Poll) PollResultsResponse {
	return PollResultsResponse{
		PollID:     p.ID,
		Status:     p.Status,
		Options:    newPollOptions(p.Options),
		TotalVotes: p.TotalVotes(),
	}
}

func newPollOptions(opts []models.PollOption) []PollOptionResponse {
	out := make([]PollOptionResponse, 0, len(opts))
	for _, o := range opts {
		out = append(out, PollOptionResponse{ID: o.ID, Position: o.Position, Text: o.Text, VoteCount: o.VoteCount})
	}
	return out
}
