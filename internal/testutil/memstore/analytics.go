package memstore

import (
	"context"
	"sort"
	"strconv"

	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

type analyticsRepo struct{ s *Store }

// tally turns label counts into a label-sorted slice.
func tally(m map[string]int64) []models.Count {
	out := make([]models.Count, 0, len(m))
	for k, v := range m {
		out = append(out, models.Count{Label: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func (r *analyticsRepo) AdminStats(_ context.Context) (*models.AdminStats, error) {
	d, unlock := r.s.lock()
	defer unlock()

	var s models.AdminStats

	roles := map[string]int64{}
	for _, u := range d.users {
		roles[string(u.Role)]++
	}
	s.UsersByRole = tally(roles)

	members := map[int64]int64{}
	branches := map[string]map[int64]bool{}
	for k := range d.memberships {
		members[k.b]++
		b := "unknown"
		if u := d.users[k.a]; u.Branch != nil {
			b = *u.Branch
		}
		if branches[b] == nil {
			branches[b] = map[int64]bool{}
		}
		branches[b][k.a] = true
	}
	byBranch := map[string]int64{}
	for b, users := range branches {
		byBranch[b] = int64(len(users))
	}
	s.MembersByBranch = tally(byBranch)

	var top []models.Count
	for id, c := range d.clubs {
		s.Clubs++
		if c.EnrollmentOpen {
			s.OpenClubs++
		}
		top = append(top, models.Count{Label: c.Name, Count: members[id]})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Label < top[j].Label
	})
	if len(top) > 5 {
		top = top[:5]
	}
	s.TopClubsByMembers = append([]models.Count{}, top...)

	events := map[string]int64{}
	for _, e := range d.events {
		events[string(e.Status)]++
	}
	s.EventsByStatus = tally(events)

	polls := map[string]int64{}
	for _, p := range d.polls {
		polls[string(p.Status)]++
	}
	s.PollsByStatus = tally(polls)
	s.TotalVotes = int64(len(d.votes))

	fbStatus, fbType := map[string]int64{}, map[string]int64{}
	for _, f := range d.feedback {
		fbStatus[string(f.Status)]++
		fbType[string(f.Type)]++
	}
	s.FeedbackByStatus = tally(fbStatus)
	s.FeedbackByType = tally(fbType)

	for _, req := range d.requests {
		if req.Status == models.RequestStatusPending {
			s.PendingRequests++
		}
	}
	s.TotalRegistrations = int64(len(d.registrations))
	return &s, nil
}

func (r *analyticsRepo) ClubStats(_ context.Context, clubID int64) (*models.ClubStats, error) {
	d, unlock := r.s.lock()
	defer unlock()

	club, ok := d.clubs[clubID]
	if !ok {
		return nil, apperrors.ErrClubNotFound
	}
	s := models.ClubStats{ClubID: clubID, ClubName: club.Name}

	years := map[string]int64{}
	for k := range d.memberships {
		if k.b != clubID {
			continue
		}
		s.Members++
		y := "unknown"
		if u := d.users[k.a]; u.Year != nil {
			y = strconv.Itoa(*u.Year)
		}
		years[y]++
	}
	s.MembersByYear = tally(years)

	statuses := map[string]int64{}
	var events []models.Event
	for _, e := range d.events {
		if e.ClubID == clubID {
			statuses[string(e.Status)]++
			events = append(events, e)
		}
	}
	s.EventsByStatus = tally(statuses)
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].ID < events[j].ID
	})
	s.RegistrationsPerEvent = []models.Count{}
	for _, e := range events {
		s.RegistrationsPerEvent = append(s.RegistrationsPerEvent, models.Count{Label: e.Title, Count: enrichEvent(d, e).RegistrationCount})
	}

	for _, req := range d.requests {
		if req.ClubID == clubID && req.Status == models.RequestStatusPending {
			s.PendingRequests++
		}
	}

	fb := map[string]int64{}
	for _, f := range d.feedback {
		if f.ClubID != nil && *f.ClubID == clubID {
			fb[string(f.Status)]++
		}
	}
	s.FeedbackByStatus = tally(fb)

	var polls []models.Poll
	for _, p := range d.polls {
		if p.ClubID != nil && *p.ClubID == clubID {
			polls = append(polls, p)
		}
	}
	sort.Slice(polls, func(i, j int) bool { return polls[i].ID < polls[j].ID })
	s.PollVotes = []models.Count{}
	for _, p := range polls {
		s.PollVotes = append(s.PollVotes, models.Count{Label: p.Question, Count: withOptions(d, p).TotalVotes()})
	}
	return &s, nil
}
