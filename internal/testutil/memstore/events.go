package memstore

import (
	"context"
	"sort"

	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

type eventRepo struct{ s *Store }

func deleteEvent(d *state, id int64) {
	delete(d.events, id)
	for k := range d.registrations {
		if k.a == id {
			delete(d.registrations, k)
		}
	}
}

func enrichEvent(d *state, e models.Event) *models.Event {
	e.ClubName = d.clubs[e.ClubID].Name
	e.RegistrationCount = 0
	for k := range d.registrations {
		if k.a == e.ID {
			e.RegistrationCount++
		}
	}
	return &e
}

func (r *eventRepo) Create(_ context.Context, e *models.Event) error {
	d, unlock := r.s.lock()
	defer unlock()

	if _, ok := d.clubs[e.ClubID]; !ok {
		return apperrors.ErrClubNotFound
	}
	if e.Status == "" {
		e.Status = models.EventStatusPending
	}
	e.ID = d.nextID()
	e.CreatedAt = r.s.Now()
	e.UpdatedAt = e.CreatedAt
	d.events[e.ID] = *e
	return nil
}

func (r *eventRepo) GetByID(_ context.Context, id int64) (*models.Event, error) {
	d, unlock := r.s.lock()
	defer unlock()

	e, ok := d.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	return enrichEvent(d, e), nil
}

func (r *eventRepo) List(_ context.Context, f repositories.EventFilter) ([]*models.Event, error) {
	d, unlock := r.s.lock()
	defer unlock()

	out := []*models.Event{}
	for _, e := range d.events {
		if f.ClubID != nil && e.ClubID != *f.ClubID {
			continue
		}
		if f.Status != nil && e.Status != *f.Status {
			continue
		}
		if f.VisibleToClub != nil && e.Status != models.EventStatusApproved && e.ClubID != *f.VisibleToClub {
			continue
		}
		if f.RegisteredBy != nil {
			if _, ok := d.registrations[pair{e.ID, *f.RegisteredBy}]; !ok {
				continue
			}
		}
		out = append(out, enrichEvent(d, e))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *eventRepo) Update(_ context.Context, e *models.Event) (bool, error) {
	d, unlock := r.s.lock()
	defer unlock()

	cur, ok := d.events[e.ID]
	if !ok || cur.Status != models.EventStatusPending {
		return false, nil
	}
	cur.Title, cur.Description, cur.Date, cur.Venue = e.Title, e.Description, e.Date, e.Venue
	cur.UpdatedAt = r.s.Now()
	d.events[e.ID] = cur
	return true, nil
}

func (r *eventRepo) Review(_ context.Context, id int64, status models.EventStatus) (bool, error) {
	d, unlock := r.s.lock()
	defer unlock()

	cur, ok := d.events[id]
	if !ok || cur.Status != models.EventStatusPending {
		return false, nil
	}
	now := r.s.Now()
	cur.Status = status
	cur.ReviewedAt = &now
	cur.UpdatedAt = now
	d.events[id] = cur
	return true, nil
}

func (r *eventRepo) Delete(_ context.Context, id int64) (bool, error) {
	d, unlock := r.s.lock()
	defer unlock()

	cur, ok := d.events[id]
	if !ok || cur.Status != models.EventStatusPending {
		return false, nil
	}
	deleteEvent(d, id)
	return true, nil
}

func (r *eventRepo) Register(_ context.Context, eventID, userID int64) error {
	d, unlock := r.s.lock()
	defer unlock()

	if _, ok := d.events[eventID]; !ok {
		return apperrors.ErrEventNotFound
	}
	k := pair{eventID, userID}
	if _, ok := d.registrations[k]; ok {
		return apperrors.ErrAlreadyRegistered
	}
	d.registrations[k] = membership{joinedAt: r.s.Now(), seq: d.nextID()}
	return nil
}

func (r *eventRepo) Unregister(_ context.Context, eventID, userID int64) error {
	d, unlock := r.s.lock()
	defer unlock()

	delete(d.registrations, pair{eventID, userID})
	return nil
}

func (r *eventRepo) IsRegistered(_ context.Context, eventID, userID int64) (bool, error) {
	d, unlock := r.s.lock()
	defer unlock()

	_, ok := d.registrations[pair{eventID, userID}]
	return ok, nil
}

func (r *eventRepo) RegisteredEventIDs(_ context.Context, userID int64) ([]int64, error) {
	d, unlock := r.s.lock()
	defer unlock()

	ids := []int64{}
	for k := range d.registrations {
		if k.b == userID {
			ids = append(ids, k.a)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *eventRepo) ListRegistrations(_ context.Context, eventID int64) ([]*models.EventRegistration, error) {
	d, unlock := r.s.lock()
	defer unlock()

	type row struct {
		reg models.EventRegistration
		seq int64
	}
	var rows []row
	for k, v := range d.registrations {
		if k.a == eventID {
			rows = append(rows, row{models.EventRegistration{EventID: eventID, RegisteredAt: v.joinedAt, User: d.users[k.b]}, v.seq})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	out := []*models.EventRegistration{}
	for _, rw := range rows {
		out = append(out, ptr(rw.reg))
	}
	return out, nil
}
