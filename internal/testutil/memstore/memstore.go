// Package memstore is an in-memory implementation of every repository
// interface. It mirrors the storage constraints of the PostgreSQL schema
// (unique keys, conditional updates, cascades) so service tests exercise the
// same error paths as production.
package memstore

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
)

type pair struct{ a, b int64 }

type membership struct {
	joinedAt time.Time
	seq      int64
}

type state struct {
	seq           int64
	users         map[int64]models.User
	clubs         map[int64]models.Club
	memberships   map[pair]membership // (user, club)
	requests      map[int64]models.MembershipRequest
	events        map[int64]models.Event
	registrations map[pair]membership // (event, user)
	polls         map[int64]models.Poll
	options       map[int64]models.PollOption
	votes         map[pair]models.PollVote // (poll, voter)
	feedback      map[int64]models.Feedback
}

func newState() *state {
	return &state{
		users:         map[int64]models.User{},
		clubs:         map[int64]models.Club{},
		memberships:   map[pair]membership{},
		requests:      map[int64]models.MembershipRequest{},
		events:        map[int64]models.Event{},
		registrations: map[pair]membership{},
		polls:         map[int64]models.Poll{},
		options:       map[int64]models.PollOption{},
		votes:         map[pair]models.PollVote{},
		feedback:      map[int64]models.Feedback{},
	}
}

// clone copies every table. Stored values never share slices with callers, so
// copying the maps is enough.
func (s *state) clone() *state {
	return &state{
		seq:           s.seq,
		users:         maps.Clone(s.users),
		clubs:         maps.Clone(s.clubs),
		memberships:   maps.Clone(s.memberships),
		requests:      maps.Clone(s.requests),
		events:        maps.Clone(s.events),
		registrations: maps.Clone(s.registrations),
		polls:         maps.Clone(s.polls),
		options:       maps.Clone(s.options),
		votes:         maps.Clone(s.votes),
		feedback:      maps.Clone(s.feedback),
	}
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

// Store holds the tables and hands out repositories bound to them.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data *state

	// Now stamps created, updated and processed times.
	Now func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{data: newState(), Now: time.Now}
}

type txKey struct{}

// WithTransaction serializes transactions and restores the snapshot taken at
// the start when fn fails. Nested calls join the outer transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// Repositories returns the full repository set backed by s.
func (s *Store) Repositories() *repositories.Repositories {
	return &repositories.Repositories{
		Tx:                   s,
		UserRepository:       &userRepo{s},
		ClubRepository:       &clubRepo{s},
		MembershipRepository: &membershipRepo{s},
		RequestRepository:    &requestRepo{s},
		EventRepository:      &eventRepo{s},
		PollRepository:       &pollRepo{s},
		FeedbackRepository:   &feedbackRepo{s},
		AnalyticsRepository:  &analyticsRepo{s},
	}
}

func (s *Store) lock() (*state, func()) {
	s.mu.Lock()
	return s.data, s.mu.Unlock
}

func ptr[T any](v T) *T { return &v }
