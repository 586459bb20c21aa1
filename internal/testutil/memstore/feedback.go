package memstore

import (
	"context"
	"slices"
	"sort"

	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

type feedbackRepo struct{ s *Store }

func enrichFeedback(d *state, f models.Feedback) *models.Feedback {
	f.SubmitterName = ""
	if f.StudentID != nil {
		f.SubmitterName = d.users[*f.StudentID].Name
	} else if f.CoordinatorID != nil {
		f.SubmitterName = d.users[*f.CoordinatorID].Name
	}
	f.ClubName = ""
	if f.ClubID != nil {
		f.ClubName = d.clubs[*f.ClubID].Name
	}
	return &f
}

func (r *feedbackRepo) Create(_ context.Context, f *models.Feedback) error {
	d, unlock := r.s.lock()
	defer unlock()

	if f.ClubID != nil {
		if _, ok := d.clubs[*f.ClubID]; !ok {
			return apperrors.ErrClubNotFound
		}
	}
	if f.Status == "" {
		f.Status = models.FeedbackStatusPending
	}
	if f.Type == "" {
		f.Type = models.FeedbackGeneral
	}
	f.ID = d.nextID()
	f.CreatedAt = r.s.Now()
	f.UpdatedAt = f.CreatedAt
	d.feedback[f.ID] = *f
	return nil
}

func (r *feedbackRepo) GetByID(_ context.Context, id int64) (*models.Feedback, error) {
	d, unlock := r.s.lock()
	defer unlock()

	f, ok := d.feedback[id]
	if !ok {
		return nil, apperrors.ErrFeedbackNotFound
	}
	return enrichFeedback(d, f), nil
}

func eqPtr[T comparable](want *T, got *T) bool {
	if want == nil {
		return true
	}
	return got != nil && *got == *want
}

func (r *feedbackRepo) List(_ context.Context, flt repositories.FeedbackFilter) ([]*models.Feedback, error) {
	d, unlock := r.s.lock()
	defer unlock()

	out := []*models.Feedback{}
	for _, f := range d.feedback {
		if !eqPtr(flt.ClubID, f.ClubID) || !eqPtr(flt.StudentID, f.StudentID) || !eqPtr(flt.CoordinatorID, f.CoordinatorID) {
			continue
		}
		if flt.TargetAdmin != nil && f.TargetAdmin != *flt.TargetAdmin {
			continue
		}
		if flt.Status != nil && f.Status != *flt.Status {
			continue
		}
		out = append(out, enrichFeedback(d, f))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *feedbackRepo) Transition(_ context.Context, t repositories.FeedbackTransition) (bool, error) {
	d, unlock := r.s.lock()
	defer unlock()

	f, ok := d.feedback[t.ID]
	if !ok || !slices.Contains(t.From, f.Status) {
		return false, nil
	}
	f.Status = t.To
	f.HandledBy = ptr(t.HandledBy)
	if t.TargetAdmin != nil {
		f.TargetAdmin = *t.TargetAdmin
	}
	if t.Response != nil {
		f.Response = ptr(*t.Response)
	}
	f.UpdatedAt = r.s.Now()
	d.feedback[t.ID] = f
	return true, nil
}
