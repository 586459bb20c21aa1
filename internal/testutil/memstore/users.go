package memstore

import (
	"context"
	"slices"
	"sort"

	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

type userRepo struct{ s *Store }

func (r *userRepo) uniqueCheck(d *state, u *models.User) error {
	for _, other := range d.users {
		if other.ID == u.ID {
			continue
		}
		if other.Email == u.Email {
			return apperrors.ErrEmailAlreadyExists
		}
		if other.RollNo == u.RollNo {
			return apperrors.ErrRollNoAlreadyExists
		}
	}
	return nil
}

func (r *userRepo) Create(_ context.Context, u *models.User) error {
	d, unlock := r.s.lock()
	defer unlock()

	if err := r.uniqueCheck(d, u); err != nil {
		return err
	}
	if u.CoordinatingClubID != nil {
		if _, ok := d.clubs[*u.CoordinatingClubID]; !ok {
			return apperrors.ErrClubNotFound
		}
	}
	u.ID = d.nextID()
	u.CreatedAt = r.s.Now()
	u.UpdatedAt = u.CreatedAt
	d.users[u.ID] = *u
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	d, unlock := r.s.lock()
	defer unlock()

	u, ok := d.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByRollNo(_ context.Context, rollNo string) (*models.User, error) {
	d, unlock := r.s.lock()
	defer unlock()

	for _, u := range d.users {
		if u.RollNo == rollNo {
			return &u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *userRepo) Update(_ context.Context, u *models.User) error {
	d, unlock := r.s.lock()
	defer unlock()

	cur, ok := d.users[u.ID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if err := r.uniqueCheck(d, &models.User{ID: u.ID, Email: u.Email}); err != nil {
		return err
	}
	cur.Name, cur.Email, cur.Year, cur.Branch = u.Name, u.Email, u.Year, u.Branch
	cur.UpdatedAt = r.s.Now()
	u.UpdatedAt = cur.UpdatedAt
	d.users[u.ID] = cur
	return nil
}

func (r *userRepo) UpdatePassword(_ context.Context, userID int64, hash string) error {
	d, unlock := r.s.lock()
	defer unlock()

	cur, ok := d.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	cur.Password = hash
	cur.UpdatedAt = r.s.Now()
	d.users[userID] = cur
	return nil
}

// Delete follows the schema: owned rows cascade, references are nulled.
func (r *userRepo) Delete(_ context.Context, id int64) error {
	d, unlock := r.s.lock()
	defer unlock()

	if _, ok := d.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(d.users, id)

	for k := range d.memberships {
		if k.a == id {
			delete(d.memberships, k)
		}
	}
	for k := range d.registrations {
		if k.b == id {
			delete(d.registrations, k)
		}
	}
	for k := range d.votes {
		if k.b == id {
			delete(d.votes, k)
		}
	}
	for rid, req := range d.requests {
		if req.StudentID == id {
			delete(d.requests, rid)
			continue
		}
		if req.CoordinatorID != nil && *req.CoordinatorID == id {
			req.CoordinatorID = nil
		}
		if req.ProcessedBy != nil && *req.ProcessedBy == id {
			req.ProcessedBy = nil
		}
		d.requests[rid] = req
	}
	for eid, e := range d.events {
		if e.IsCreatedBy(id) {
			e.CreatedBy = nil
			d.events[eid] = e
		}
	}
	for pid, p := range d.polls {
		if p.IsCreatedBy(id) {
			p.CreatedBy = nil
			d.polls[pid] = p
		}
	}
	for fid, f := range d.feedback {
		if f.StudentID != nil && *f.StudentID == id {
			f.StudentID = nil
		}
		if f.CoordinatorID != nil && *f.CoordinatorID == id {
			f.CoordinatorID = nil
		}
		if f.HandledBy != nil && *f.HandledBy == id {
			f.HandledBy = nil
		}
		d.feedback[fid] = f
	}
	return nil
}

func (r *userRepo) List(_ context.Context, role *models.Role, offset, limit uint64) ([]*models.User, int64, error) {
	d, unlock := r.s.lock()
	defer unlock()

	var all []models.User
	for _, u := range d.users {
		if role == nil || u.Role == *role {
			all = append(all, u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, offset, limit), int64(len(all)), nil
}

func (r *userRepo) ListCoordinators(_ context.Context, clubID int64) ([]*models.User, error) {
	d, unlock := r.s.lock()
	defer unlock()

	out := []*models.User{}
	for _, u := range d.users {
		if u.CoordinatesClub(clubID) {
			out = append(out, ptr(u))
		}
	}
	slices.SortFunc(out, func(a, b *models.User) int { return int(a.ID - b.ID) })
	return out, nil
}

// page applies offset and limit to a sorted slice and returns pointers to copies.
func page[T any](all []T, offset, limit uint64) []*T {
	out := []*T{}
	for i := offset; i < uint64(len(all)) && (limit == 0 || i < offset+limit); i++ {
		out = append(out, ptr(all[i]))
	}
	return out
}
