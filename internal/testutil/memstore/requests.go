package memstore

import (
	"context"
	"sort"

	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

type requestRepo struct{ s *Store }

func enrichRequest(d *state, req models.MembershipRequest) *models.MembershipRequest {
	u := d.users[req.StudentID]
	req.StudentName, req.StudentRollNo = u.Name, u.RollNo
	req.ClubName = d.clubs[req.ClubID].Name
	return &req
}

func hasPending(d *state, kind models.RequestKind, studentID, clubID int64) bool {
	for _, req := range d.requests {
		if req.Kind == kind && req.StudentID == studentID && req.ClubID == clubID && req.Status == models.RequestStatusPending {
			return true
		}
	}
	return false
}

func (r *requestRepo) Create(_ context.Context, req *models.MembershipRequest) error {
	d, unlock := r.s.lock()
	defer unlock()

	if _, ok := d.users[req.StudentID]; !ok {
		return apperrors.NewResourceNotFoundError("Student or club not found")
	}
	if _, ok := d.clubs[req.ClubID]; !ok {
		return apperrors.NewResourceNotFoundError("Student or club not found")
	}
	if req.Status == "" {
		req.Status = models.RequestStatusPending
	}
	if req.Status == models.RequestStatusPending && hasPending(d, req.Kind, req.StudentID, req.ClubID) {
		return apperrors.ErrRequestPending
	}
	req.ID = d.nextID()
	req.CreatedAt = r.s.Now()
	req.UpdatedAt = req.CreatedAt
	d.requests[req.ID] = *req
	return nil
}

func (r *requestRepo) GetByID(_ context.Context, id int64) (*models.MembershipRequest, error) {
	d, unlock := r.s.lock()
	defer unlock()

	req, ok := d.requests[id]
	if !ok {
		return nil, apperrors.ErrRequestNotFound
	}
	return enrichRequest(d, req), nil
}

func (r *requestRepo) HasPending(_ context.Context, kind models.RequestKind, studentID, clubID int64) (bool, error) {
	d, unlock := r.s.lock()
	defer unlock()
	return hasPending(d, kind, studentID, clubID), nil
}

func (r *requestRepo) List(_ context.Context, f repositories.RequestFilter) ([]*models.MembershipRequest, error) {
	d, unlock := r.s.lock()
	defer unlock()

	out := []*models.MembershipRequest{}
	for _, req := range d.requests {
		if f.ClubID != nil && req.ClubID != *f.ClubID {
			continue
		}
		if f.StudentID != nil && req.StudentID != *f.StudentID {
			continue
		}
		if f.Kind != nil && req.Kind != *f.Kind {
			continue
		}
		if f.Status != nil && req.Status != *f.Status {
			continue
		}
		out = append(out, enrichRequest(d, req))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *requestRepo) Resolve(_ context.Context, id int64, status models.RequestStatus, processedBy int64) (bool, error) {
	d, unlock := r.s.lock()
	defer unlock()

	req, ok := d.requests[id]
	if !ok || req.Status != models.RequestStatusPending {
		return false, nil
	}
	now := r.s.Now()
	req.Status = status
	req.ProcessedBy = ptr(processedBy)
	req.ProcessedAt = &now
	req.UpdatedAt = now
	d.requests[id] = req
	return true, nil
}
