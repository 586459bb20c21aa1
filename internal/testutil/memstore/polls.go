package memstore

import (
	"context"
	"slices"
	"sort"

	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

type pollRepo struct{ s *Store }

func deletePoll(d *state, id int64) {
	delete(d.polls, id)
	for oid, o := range d.options {
		if o.PollID == id {
			delete(d.options, oid)
		}
	}
	for k := range d.votes {
		if k.a == id {
			delete(d.votes, k)
		}
	}
}

func withOptions(d *state, p models.Poll) *models.Poll {
	p.Options = []models.PollOption{}
	for _, o := range d.options {
		if o.PollID == p.ID {
			p.Options = append(p.Options, o)
		}
	}
	sort.Slice(p.Options, func(i, j int) bool { return p.Options[i].Position < p.Options[j].Position })
	return &p
}

func (r *pollRepo) Create(_ context.Context, p *models.Poll) error {
	d, unlock := r.s.lock()
	defer unlock()

	if (p.Scope == models.PollScopeClub) != (p.ClubID != nil) {
		return apperrors.NewBadRequestError("Club polls need a club and other scopes must not have one")
	}
	if p.ClubID != nil {
		if _, ok := d.clubs[*p.ClubID]; !ok {
			return apperrors.ErrClubNotFound
		}
	}
	if p.Status == "" {
		p.Status = models.PollStatusActive
	}
	p.ID = d.nextID()
	p.CreatedAt = r.s.Now()
	p.UpdatedAt = p.CreatedAt

	stored := *p
	stored.Options = nil
	d.polls[p.ID] = stored

	opts := make([]models.PollOption, len(p.Options))
	for i, o := range p.Options {
		o.ID = d.nextID()
		o.PollID = p.ID
		o.Position = i
		o.VoteCount = 0
		d.options[o.ID] = o
		opts[i] = o
	}
	p.Options = opts
	return nil
}

func (r *pollRepo) GetByID(_ context.Context, id int64) (*models.Poll, error) {
	d, unlock := r.s.lock()
	defer unlock()

	p, ok := d.polls[id]
	if !ok {
		return nil, apperrors.ErrPollNotFound
	}
	return withOptions(d, p), nil
}

func matchesAudience(p models.Poll, a *repositories.PollAudience) bool {
	if slices.Contains(a.Scopes, p.Scope) {
		return true
	}
	return p.Scope == models.PollScopeClub && p.ClubID != nil && slices.Contains(a.ClubIDs, *p.ClubID)
}

func (r *pollRepo) List(_ context.Context, f repositories.PollFilter) ([]*models.Poll, error) {
	d, unlock := r.s.lock()
	defer unlock()

	out := []*models.Poll{}
	for _, p := range d.polls {
		if f.Status != nil && p.Status != *f.Status {
			continue
		}
		if f.Scope != nil && p.Scope != *f.Scope {
			continue
		}
		if f.ClubID != nil && (p.ClubID == nil || *p.ClubID != *f.ClubID) {
			continue
		}
		if f.Audience != nil && !matchesAudience(p, f.Audience) {
			continue
		}
		out = append(out, withOptions(d, p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *pollRepo) Close(_ context.Context, id int64) (bool, error) {
	d, unlock := r.s.lock()
	defer unlock()

	p, ok := d.polls[id]
	if !ok || p.Status != models.PollStatusActive {
		return false, nil
	}
	p.Status = models.PollStatusClosed
	p.UpdatedAt = r.s.Now()
	d.polls[id] = p
	return true, nil
}

func (r *pollRepo) Delete(_ context.Context, id int64) error {
	d, unlock := r.s.lock()
	defer unlock()

	if _, ok := d.polls[id]; !ok {
		return apperrors.ErrPollNotFound
	}
	deletePoll(d, id)
	return nil
}

func (r *pollRepo) RecordVote(_ context.Context, v *models.PollVote) error {
	d, unlock := r.s.lock()
	defer unlock()

	if _, ok := d.polls[v.PollID]; !ok {
		return apperrors.ErrPollNotFound
	}
	k := pair{v.PollID, v.VoterID}
	if _, ok := d.votes[k]; ok {
		return apperrors.ErrAlreadyVoted
	}
	v.VotedAt = r.s.Now()
	d.votes[k] = *v
	return nil
}

func (r *pollRepo) IncrementOption(_ context.Context, pollID, optionID int64) error {
	d, unlock := r.s.lock()
	defer unlock()

	o, ok := d.options[optionID]
	if !ok || o.PollID != pollID {
		return apperrors.NewResourceNotFoundError("Option not found")
	}
	o.VoteCount++
	d.options[optionID] = o
	return nil
}

func (r *pollRepo) RemoveVotesByVoter(_ context.Context, voterID int64) (int64, error) {
	d, unlock := r.s.lock()
	defer unlock()

	var n int64
	for k, v := range d.votes {
		if k.b != voterID {
			continue
		}
		if o, ok := d.options[v.OptionID]; ok {
			o.VoteCount--
			d.options[v.OptionID] = o
		}
		delete(d.votes, k)
		n++
	}
	return n, nil
}

func (r *pollRepo) VotesByVoter(_ context.Context, voterID int64, pollIDs []int64) (map[int64]int64, error) {
	d, unlock := r.s.lock()
	defer unlock()

	out := map[int64]int64{}
	for _, id := range pollIDs {
		if v, ok := d.votes[pair{id, voterID}]; ok {
			out[id] = v.OptionID
		}
	}
	return out, nil
}

// VoteCount returns the number of vote records of a poll.
func (s *Store) VoteCount(pollID int64) int {
	d, unlock := s.lock()
	defer unlock()

	n := 0
	for k := range d.votes {
		if k.a == pollID {
			n++
		}
	}
	return n
}
