package services

import (
	"context"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	appAuth "github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/helpers"
	"github.com/yigit/clubhub/internal/pkg/notify"
)

// EventService covers the event proposal, review and registration lifecycle.
type EventService interface {
	CreateEvent(ctx context.Context, caller appAuth.Caller, req *dto.CreateEventRequest) (*dto.EventResponse, error)
	UpdateEvent(ctx context.Context, caller appAuth.Caller, id int64, req *dto.UpdateEventRequest) (*dto.EventResponse, error)
	DeleteEvent(ctx context.Context, caller appAuth.Caller, id int64) error
	ReviewEvent(ctx context.Context, caller appAuth.Caller, id int64, req *dto.ReviewEventRequest) (*dto.EventResponse, error)
	ListEvents(ctx context.Context, caller appAuth.Caller, filter dto.EventFilterRequest) ([]dto.EventResponse, error)
	ListPendingEvents(ctx context.Context, caller appAuth.Caller) ([]dto.EventResponse, error)
	GetEvent(ctx context.Context, caller appAuth.Caller, id int64) (*dto.EventResponse, error)
	Register(ctx context.Context, caller appAuth.Caller, id int64) error
	Unregister(ctx context.Context, caller appAuth.Caller, id int64) error
	ListRegistrations(ctx context.Context, caller appAuth.Caller, id int64) ([]dto.RegistrationResponse, error)
	MyEvents(ctx context.Context, caller appAuth.Caller) ([]dto.EventResponse, error)
}

type eventServiceImpl struct {
	eventRepo repositories.IEventRepository
	events    *eventPublisher
	logger    zerolog.Logger
}

// NewEventService creates a new EventService
func NewEventService(eventRepo repositories.IEventRepository, events *eventPublisher, logger zerolog.Logger) EventService {
	return &eventServiceImpl{eventRepo: eventRepo, events: events, logger: logger}
}

func (s *eventServiceImpl) CreateEvent(ctx context.Context, caller appAuth.Caller, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	clubID, err := caller.AssignedClub()
	if err != nil {
		return nil, err
	}

	date, ok := helpers.ParseEventDate(strings.TrimSpace(req.Date))
	if !ok {
		return nil, apperrors.NewBadRequestError("Invalid date format")
	}

	event := &models.Event{
		ClubID:      clubID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Date:        date,
		Venue:       strings.TrimSpace(req.Venue),
		Status:      models.EventStatusPending,
		CreatedBy:   &caller.ID,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("eventID", event.ID).Int64("clubID", clubID).Int64("createdBy", caller.ID).Msg("Event proposed")
	return s.view(ctx, caller, event.ID)
}

func (s *eventServiceImpl) UpdateEvent(ctx context.Context, caller appAuth.Caller, id int64, req *dto.UpdateEventRequest) (*dto.EventResponse, error) {
	event, err := s.ownPendingEvent(ctx, caller, id, "Can only edit pending events")
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		event.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		event.Description = strings.TrimSpace(*req.Description)
	}
	if req.Venue != nil {
		event.Venue = strings.TrimSpace(*req.Venue)
	}
	if req.Date != nil {
		date, ok := helpers.ParseEventDate(strings.TrimSpace(*req.Date))
		if !ok {
			return nil, apperrors.NewBadRequestError("Invalid date format")
		}
		event.Date = date
	}

	updated, err := s.eventRepo.Update(ctx, event)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, apperrors.NewBadRequestError("Can only edit pending events")
	}
	return s.view(ctx, caller, id)
}

func (s *eventServiceImpl) DeleteEvent(ctx context.Context, caller appAuth.Caller, id int64) error {
	if _, err := s.ownPendingEvent(ctx, caller, id, "Can only delete pending events"); err != nil {
		return err
	}

	deleted, err := s.eventRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NewBadRequestError("Can only delete pending events")
	}

	s.logger.Info().Int64("eventID", id).Int64("deletedBy", caller.ID).Msg("Event deleted")
	return nil
}

// ownPendingEvent loads an event the caller created that is still pending.
func (s *eventServiceImpl) ownPendingEvent(ctx context.Context, caller appAuth.Caller, id int64, notPending string) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsCoordinator() || !event.IsCreatedBy(caller.ID) {
		return nil, apperrors.NewForbiddenError("You can only modify events you created")
	}
	if event.Status != models.EventStatusPending {
		return nil, apperrors.NewBadRequestError(notPending)
	}
	return event, nil
}

func (s *eventServiceImpl) ReviewEvent(ctx context.Context, caller appAuth.Caller, id int64, req *dto.ReviewEventRequest) (*dto.EventResponse, error) {
	switch caller.Role {
	case models.RoleAdmin:
	case models.RoleCoordinator, models.RoleStudent:
		return nil, apperrors.NewForbiddenError("Only admins can review events")
	default:
		return nil, apperrors.NewForbiddenError("Unknown role")
	}

	var status models.EventStatus
	switch normalizeAction(req.Action) {
	case "approve":
		status = models.EventStatusApproved
	case "reject":
		status = models.EventStatusRejected
	default:
		return nil, apperrors.NewBadRequestError("Invalid action, expected approve or reject")
	}

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.Status != models.EventStatusPending {
		return nil, apperrors.NewBadRequestError("Event has already been " + string(event.Status))
	}

	reviewed, err := s.eventRepo.Review(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if !reviewed {
		// Lost the race against another review.
		current, err := s.eventRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, apperrors.NewBadRequestError("Event has already been " + string(current.Status))
	}

	s.logger.Info().Int64("eventID", id).Str("status", string(status)).Int64("reviewedBy", caller.ID).Msg("Event reviewed")
	s.events.publish(notify.SubjectEventReviewed, notify.EventReviewed{
		EventID:    id,
		ClubID:     event.ClubID,
		Status:     string(status),
		ReviewedBy: caller.ID,
	})
	return s.view(ctx, caller, id)
}

func (s *eventServiceImpl) ListEvents(ctx context.Context, caller appAuth.Caller, filter dto.EventFilterRequest) ([]dto.EventResponse, error) {
	approved := models.EventStatusApproved
	f := repositories.EventFilter{ClubID: filter.ClubID, Status: filter.Status}

	switch caller.Role {
	case models.RoleAdmin:
	case models.RoleCoordinator:
		if caller.CoordinatingClubID != nil {
			f.VisibleToClub = caller.CoordinatingClubID
		} else if !restrictStatus(&f, approved) {
			return []dto.EventResponse{}, nil
		}
	case models.RoleStudent:
		if !restrictStatus(&f, approved) {
			return []dto.EventResponse{}, nil
		}
	default:
		return nil, apperrors.NewForbiddenError("Unknown role")
	}

	return s.list(ctx, caller, f)
}

// restrictStatus forces f to status and reports false when the requested
// status excludes it.
func restrictStatus(f *repositories.EventFilter, status models.EventStatus) bool {
	if f.Status != nil && *f.Status != status {
		return false
	}
	f.Status = &status
	return true
}

func (s *eventServiceImpl) ListPendingEvents(ctx context.Context, caller appAuth.Caller) ([]dto.EventResponse, error) {
	if err := appAuth.RequireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	pending := models.EventStatusPending
	return s.list(ctx, caller, repositories.EventFilter{Status: &pending})
}

func (s *eventServiceImpl) GetEvent(ctx context.Context, caller appAuth.Caller, id int64) (*dto.EventResponse, error) {
	return s.view(ctx, caller, id)
}

func (s *eventServiceImpl) Register(ctx context.Context, caller appAuth.Caller, id int64) error {
	if !caller.IsStudent() {
		return apperrors.NewForbiddenError("Only students can register for events")
	}

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if event.Status != models.EventStatusApproved {
		return apperrors.NewBadRequestError("Event is not open for registration")
	}

	registered, err := s.eventRepo.IsRegistered(ctx, id, caller.ID)
	if err != nil {
		return err
	}
	if registered {
		return apperrors.ErrAlreadyRegistered
	}

	if err := s.eventRepo.Register(ctx, id, caller.ID); err != nil {
		return err
	}
	s.logger.Info().Int64("eventID", id).Int64("userID", caller.ID).Msg("Registered for event")
	return nil
}

func (s *eventServiceImpl) Unregister(ctx context.Context, caller appAuth.Caller, id int64) error {
	if _, err := s.eventRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.eventRepo.Unregister(ctx, id, caller.ID)
}

func (s *eventServiceImpl) ListRegistrations(ctx context.Context, caller appAuth.Caller, id int64) ([]dto.RegistrationResponse, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := appAuth.CanManageClub(caller, event.ClubID); err != nil {
		return nil, err
	}

	registrations, err := s.eventRepo.ListRegistrations(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RegistrationResponse, 0, len(registrations))
	for _, r := range registrations {
		out = append(out, dto.RegistrationResponse{
			User:         dto.NewUserBrief(&r.User),
			Year:         r.User.Year,
			Branch:       r.User.Branch,
			RegisteredAt: r.RegisteredAt,
		})
	}
	return out, nil
}

func (s *eventServiceImpl) MyEvents(ctx context.Context, caller appAuth.Caller) ([]dto.EventResponse, error) {
	return s.list(ctx, caller, repositories.EventFilter{RegisteredBy: &caller.ID})
}

func (s *eventServiceImpl) list(ctx context.Context, caller appAuth.Caller, filter repositories.EventFilter) ([]dto.EventResponse, error) {
	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	registered, err := s.eventRepo.RegisteredEventIDs(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, dto.NewEventResponse(e, slices.Contains(registered, e.ID)))
	}
	return out, nil
}

// view loads one event, hiding events the caller may not see.
func (s *eventServiceImpl) view(ctx context.Context, caller appAuth.Caller, id int64) (*dto.EventResponse, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !appAuth.CanSeeEvent(caller, event) {
		return nil, apperrors.ErrEventNotFound
	}

	registered, err := s.eventRepo.IsRegistered(ctx, id, caller.ID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewEventResponse(event, registered)
	return &resp, nil
}
