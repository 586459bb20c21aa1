package services

import (
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	pkgAuth "github.com/yigit/clubhub/internal/pkg/auth"
	"github.com/yigit/clubhub/internal/pkg/cache"
	"github.com/yigit/clubhub/internal/pkg/filestorage"
	"github.com/yigit/clubhub/internal/pkg/notify"
)

// Broadcaster pushes a payload to the live subscribers of a poll.
type Broadcaster interface {
	Broadcast(pollID int64, payload any)
}

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(int64, any) {}

// Deps are the collaborators shared by the services. Nil optional fields fall
// back to no-op implementations.
type Deps struct {
	Repos       *repositories.Repositories
	JWT         *pkgAuth.JWTService
	FileStorage filestorage.FileStorage
	Cache       cache.Cache
	CacheTTL    time.Duration
	Publisher   notify.Publisher
	Broadcaster Broadcaster
	Logger      zerolog.Logger
}

// Services holds every service of the application.
type Services struct {
	Auth      AuthService
	User      UserService
	Club      ClubService
	Request   MembershipRequestService
	Event     EventService
	Poll      PollService
	Feedback  FeedbackService
	Analytics AnalyticsService
}

// NewServices wires every service from deps.
func NewServices(deps Deps) *Services {
	if deps.Cache == nil {
		deps.Cache = cache.Nop{}
	}
	if deps.Publisher == nil {
		deps.Publisher = notify.Nop{}
	}
	if deps.Broadcaster == nil {
		deps.Broadcaster = nopBroadcaster{}
	}
	if deps.CacheTTL <= 0 {
		deps.CacheTTL = time.Minute
	}

	r := deps.Repos
	component := func(name string) zerolog.Logger {
		return deps.Logger.With().Str("service", name).Logger()
	}
	events := newEventPublisher(deps.Publisher, deps.Logger)

	return &Services{
		Auth:      NewAuthService(r.Tx, r.UserRepository, r.ClubRepository, r.MembershipRepository, deps.JWT, component("auth")),
		User:      NewUserService(r.Tx, r.UserRepository, r.ClubRepository, r.MembershipRepository, r.PollRepository, component("user")),
		Club:      NewClubService(r.Tx, r.ClubRepository, r.MembershipRepository, r.UserRepository, deps.FileStorage, component("club")),
		Request:   NewMembershipRequestService(r.Tx, r.RequestRepository, r.ClubRepository, r.MembershipRepository, r.UserRepository, events, component("request")),
		Event:     NewEventService(r.EventRepository, events, component("event")),
		Poll:      NewPollService(r.Tx, r.PollRepository, r.ClubRepository, deps.Broadcaster, events, component("poll")),
		Feedback:  NewFeedbackService(r.FeedbackRepository, r.ClubRepository, events, component("feedback")),
		Analytics: NewAnalyticsService(r.AnalyticsRepository, r.ClubRepository, deps.Cache, deps.CacheTTL, component("analytics")),
	}
}

// eventPublisher sends notifications after commit. Failures are logged only.
type eventPublisher struct {
	publisher notify.Publisher
	logger    zerolog.Logger
}

func newEventPublisher(p notify.Publisher, logger zerolog.Logger) *eventPublisher {
	if p == nil {
		p = notify.Nop{}
	}
	return &eventPublisher{publisher: p, logger: logger}
}

func (p *eventPublisher) publish(subject string, message any) {
	if err := p.publisher.Publish(subject, message); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("Failed to publish notification")
	}
}

// normalizeAction lowercases and trims a requested action.
func normalizeAction(action string) string {
	return strings.ToLower(strings.TrimSpace(action))
}

// isNotFound reports whether err belongs to the not-found class.
func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrResourceNotFound)
}
