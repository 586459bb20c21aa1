package models

import "time"

// Poll defines the poll model based on the 'polls' table
type Poll struct {
	ID        int64      `db:"id"`
	Scope     PollScope  `db:"scope"`
	ClubID    *int64     `db:"club_id"`
	Question  string     `db:"question"`
	Status    PollStatus `db:"status"`
	CreatedBy *int64     `db:"created_by"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	Options   []PollOption
}

// PollOption is one choice of a poll with its running vote counter.
type PollOption struct {
	ID        int64  `db:"id"`
	PollID    int64  `db:"poll_id"`
	Position  int    `db:"position"`
	Text      string `db:"text"`
	VoteCount int64  `db:"vote_count"`
}

// PollVote records a single voter's choice. (poll_id, voter_id) is unique.
type PollVote struct {
	PollID      int64     `db:"poll_id"`
	VoterID     int64     `db:"voter_id"`
	OptionID    int64     `db:"option_id"`
	OptionIndex int       `db:"option_index"`
	VotedAt     time.Time `db:"voted_at"`
}

// Option returns the option with the given id.
func (p *Poll) Option(optionID int64) (PollOption, bool) {
	for _, o := range p.Options {
		if o.ID == optionID {
			return o, true
		}
	}
	return PollOption{}, false
}

// IsCreatedBy reports whether userID created the poll.
func (p *Poll) IsCreatedBy(userID int64) bool {
	return p.CreatedBy != nil && *p.CreatedBy == userID
}

// TotalVotes sums the option counters.
func (p *Poll) TotalVotes() int64 {
	var total int64
	for _, o := range p.Options {
		total += o.VoteCount
	}
	return total
}
