package memstore

import (
	"context"
	"slices"
	"sort"
	"strings"

	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

type clubRepo struct{ s *Store }

func cloneClub(c models.Club) models.Club {
	c.TeamHeads = append([]models.TeamHead{}, c.TeamHeads...)
	c.PastEvents = append([]string{}, c.PastEvents...)
	c.UpcomingEvents = append([]string{}, c.UpcomingEvents...)
	return c
}

func nameTaken(d *state, name string, except int64) bool {
	for _, c := range d.clubs {
		if c.ID != except && c.Name == name {
			return true
		}
	}
	return false
}

func (r *clubRepo) Create(_ context.Context, c *models.Club) error {
	d, unlock := r.s.lock()
	defer unlock()

	if nameTaken(d, c.Name, 0) {
		return apperrors.ErrClubNameExists
	}
	c.ID = d.nextID()
	c.CreatedAt = r.s.Now()
	c.UpdatedAt = c.CreatedAt
	stored := cloneClub(*c)
	*c = cloneClub(stored)
	d.clubs[c.ID] = stored
	return nil
}

func (r *clubRepo) GetByID(_ context.Context, id int64) (*models.Club, error) {
	d, unlock := r.s.lock()
	defer unlock()

	c, ok := d.clubs[id]
	if !ok {
		return nil, apperrors.ErrClubNotFound
	}
	return ptr(cloneClub(c)), nil
}

func (r *clubRepo) List(_ context.Context, search string, offset, limit uint64) ([]*models.Club, int64, error) {
	d, unlock := r.s.lock()
	defer unlock()

	needle := strings.ToLower(search)
	var all []models.Club
	for _, c := range d.clubs {
		if needle == "" || strings.Contains(strings.ToLower(c.Name), needle) {
			all = append(all, cloneClub(c))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return page(all, offset, limit), int64(len(all)), nil
}

func (r *clubRepo) Update(_ context.Context, c *models.Club) error {
	d, unlock := r.s.lock()
	defer unlock()

	cur, ok := d.clubs[c.ID]
	if !ok {
		return apperrors.ErrClubNotFound
	}
	if nameTaken(d, c.Name, c.ID) {
		return apperrors.ErrClubNameExists
	}
	c.CreatedAt = cur.CreatedAt
	c.UpdatedAt = r.s.Now()
	d.clubs[c.ID] = cloneClub(*c)
	return nil
}

func (r *clubRepo) SetLogoURL(_ context.Context, id int64, logoURL *string) error {
	d, unlock := r.s.lock()
	defer unlock()

	cur, ok := d.clubs[id]
	if !ok {
		return apperrors.ErrClubNotFound
	}
	cur.LogoURL = logoURL
	cur.UpdatedAt = r.s.Now()
	d.clubs[id] = cur
	return nil
}

func (r *clubRepo) ToggleEnrollment(_ context.Context, id int64) (bool, error) {
	d, unlock := r.s.lock()
	defer unlock()

	cur, ok := d.clubs[id]
	if !ok {
		return false, apperrors.ErrClubNotFound
	}
	cur.EnrollmentOpen = !cur.EnrollmentOpen
	cur.UpdatedAt = r.s.Now()
	d.clubs[id] = cur
	return cur.EnrollmentOpen, nil
}

// Delete applies the ON DELETE rules of every table referencing clubs.
func (r *clubRepo) Delete(_ context.Context, id int64) error {
	d, unlock := r.s.lock()
	defer unlock()

	if _, ok := d.clubs[id]; !ok {
		return apperrors.ErrClubNotFound
	}
	delete(d.clubs, id)

	for k := range d.memberships {
		if k.b == id {
			delete(d.memberships, k)
		}
	}
	for rid, req := range d.requests {
		if req.ClubID == id {
			delete(d.requests, rid)
		}
	}
	for eid, e := range d.events {
		if e.ClubID == id {
			deleteEvent(d, eid)
		}
	}
	for pid, p := range d.polls {
		if p.ClubID != nil && *p.ClubID == id {
			deletePoll(d, pid)
		}
	}
	for uid, u := range d.users {
		if u.CoordinatingClubID != nil && *u.CoordinatingClubID == id {
			u.CoordinatingClubID = nil
			d.users[uid] = u
		}
	}
	for fid, f := range d.feedback {
		if f.ClubID != nil && *f.ClubID == id {
			f.ClubID = nil
			d.feedback[fid] = f
		}
	}
	return nil
}

type membershipRepo struct{ s *Store }

func (r *membershipRepo) Add(ctx context.Context, userID, clubID int64) error {
	added, err := r.AddIfAbsent(ctx, userID, clubID)
	if err != nil {
		return err
	}
	if !added {
		return apperrors.ErrAlreadyMember
	}
	return nil
}

func (r *membershipRepo) AddIfAbsent(_ context.Context, userID, clubID int64) (bool, error) {
	d, unlock := r.s.lock()
	defer unlock()

	if _, ok := d.users[userID]; !ok {
		return false, apperrors.NewResourceNotFoundError("User or club not found")
	}
	if _, ok := d.clubs[clubID]; !ok {
		return false, apperrors.NewResourceNotFoundError("User or club not found")
	}
	k := pair{userID, clubID}
	if _, ok := d.memberships[k]; ok {
		return false, nil
	}
	d.memberships[k] = membership{joinedAt: r.s.Now(), seq: d.nextID()}
	return true, nil
}

func (r *membershipRepo) Remove(_ context.Context, userID, clubID int64) (bool, error) {
	d, unlock := r.s.lock()
	defer unlock()

	k := pair{userID, clubID}
	if _, ok := d.memberships[k]; !ok {
		return false, nil
	}
	delete(d.memberships, k)
	return true, nil
}

func (r *membershipRepo) Exists(_ context.Context, userID, clubID int64) (bool, error) {
	d, unlock := r.s.lock()
	defer unlock()

	_, ok := d.memberships[pair{userID, clubID}]
	return ok, nil
}

func (r *membershipRepo) ClubIDsForUser(_ context.Context, userID int64) ([]int64, error) {
	d, unlock := r.s.lock()
	defer unlock()

	ids := []int64{}
	for k := range d.memberships {
		if k.a == userID {
			ids = append(ids, k.b)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (r *membershipRepo) ClubsForUser(_ context.Context, userID int64) ([]*models.Club, error) {
	d, unlock := r.s.lock()
	defer unlock()

	clubs := []*models.Club{}
	for k := range d.memberships {
		if k.a == userID {
			clubs = append(clubs, ptr(cloneClub(d.clubs[k.b])))
		}
	}
	sort.Slice(clubs, func(i, j int) bool { return clubs[i].Name < clubs[j].Name })
	return clubs, nil
}

func (r *membershipRepo) ListMembers(_ context.Context, clubID int64) ([]*models.ClubMember, error) {
	d, unlock := r.s.lock()
	defer unlock()

	type row struct {
		m   models.ClubMember
		seq int64
	}
	var rows []row
	for k, v := range d.memberships {
		if k.b == clubID {
			rows = append(rows, row{models.ClubMember{ClubID: clubID, JoinedAt: v.joinedAt, User: d.users[k.a]}, v.seq})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	out := []*models.ClubMember{}
	for _, rw := range rows {
		out = append(out, ptr(rw.m))
	}
	return out, nil
}

func (r *membershipRepo) CountMembers(_ context.Context, clubID int64) (int64, error) {
	d, unlock := r.s.lock()
	defer unlock()

	var n int64
	for k := range d.memberships {
		if k.b == clubID {
			n++
		}
	}
	return n, nil
}
