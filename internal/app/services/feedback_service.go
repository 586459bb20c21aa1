package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	appAuth "github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/notify"
)

// FeedbackService routes feedback from students to coordinators and from
// coordinators to admins.
type FeedbackService interface {
	Submit(ctx context.Context, caller appAuth.Caller, req *dto.SubmitFeedbackRequest) (*dto.FeedbackResponse, error)
	ListClubFeedback(ctx context.Context, caller appAuth.Caller, clubID *int64, status *models.FeedbackStatus) ([]dto.FeedbackResponse, error)
	ListAdminFeedback(ctx context.Context, caller appAuth.Caller, status *models.FeedbackStatus) ([]dto.FeedbackResponse, error)
	MyFeedback(ctx context.Context, caller appAuth.Caller) ([]dto.FeedbackResponse, error)
	Act(ctx context.Context, caller appAuth.Caller, id int64, req *dto.FeedbackActionRequest) (*dto.FeedbackResponse, error)
}

type feedbackServiceImpl struct {
	feedbackRepo repositories.IFeedbackRepository
	clubRepo     repositories.IClubRepository
	events       *eventPublisher
	logger       zerolog.Logger
}

// NewFeedbackService creates a new FeedbackService
func NewFeedbackService(
	feedbackRepo repositories.IFeedbackRepository,
	clubRepo repositories.IClubRepository,
	events *eventPublisher,
	logger zerolog.Logger,
) FeedbackService {
	return &feedbackServiceImpl{
		feedbackRepo: feedbackRepo,
		clubRepo:     clubRepo,
		events:       events,
		logger:       logger,
	}
}

func (s *feedbackServiceImpl) Submit(ctx context.Context, caller appAuth.Caller, req *dto.SubmitFeedbackRequest) (*dto.FeedbackResponse, error) {
	feedback := &models.Feedback{
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
		Type:    req.Type,
		Status:  models.FeedbackStatusPending,
	}
	if feedback.Type == "" {
		feedback.Type = models.FeedbackGeneral
	}

	switch caller.Role {
	case models.RoleStudent:
		if req.ClubID == nil {
			return nil, apperrors.NewBadRequestError("clubId is required")
		}
		if _, err := s.clubRepo.GetByID(ctx, *req.ClubID); err != nil {
			return nil, err
		}
		if !caller.IsMemberOf(*req.ClubID) {
			return nil, apperrors.NewForbiddenError("You can only send feedback to clubs you belong to")
		}
		feedback.StudentID = &caller.ID
		feedback.ClubID = req.ClubID
	case models.RoleCoordinator:
		feedback.CoordinatorID = &caller.ID
		feedback.TargetAdmin = true
	case models.RoleAdmin:
		return nil, apperrors.NewForbiddenError("Admins cannot submit feedback")
	default:
		return nil, apperrors.NewForbiddenError("Unknown role")
	}

	if err := s.feedbackRepo.Create(ctx, feedback); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("feedbackID", feedback.ID).
		Str("role", string(caller.Role)).
		Bool("targetAdmin", feedback.TargetAdmin).
		Msg("Feedback submitted")
	return s.view(ctx, feedback.ID)
}

func (s *feedbackServiceImpl) ListClubFeedback(ctx context.Context, caller appAuth.Caller, clubID *int64, status *models.FeedbackStatus) ([]dto.FeedbackResponse, error) {
	filter := repositories.FeedbackFilter{Status: status}

	switch caller.Role {
	case models.RoleCoordinator:
		own, err := caller.AssignedClub()
		if err != nil {
			return nil, err
		}
		filter.ClubID = &own
	case models.RoleAdmin:
		if clubID == nil {
			return nil, apperrors.NewBadRequestError("clubId is required")
		}
		if _, err := s.clubRepo.GetByID(ctx, *clubID); err != nil {
			return nil, err
		}
		filter.ClubID = clubID
	case models.RoleStudent:
		return nil, apperrors.NewForbiddenError("Students cannot view club feedback")
	default:
		return nil, apperrors.NewForbiddenError("Unknown role")
	}

	return s.list(ctx, filter)
}

func (s *feedbackServiceImpl) ListAdminFeedback(ctx context.Context, caller appAuth.Caller, status *models.FeedbackStatus) ([]dto.FeedbackResponse, error) {
	if err := appAuth.RequireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	target := true
	return s.list(ctx, repositories.FeedbackFilter{TargetAdmin: &target, Status: status})
}

func (s *feedbackServiceImpl) MyFeedback(ctx context.Context, caller appAuth.Caller) ([]dto.FeedbackResponse, error) {
	switch caller.Role {
	case models.RoleStudent:
		return s.list(ctx, repositories.FeedbackFilter{StudentID: &caller.ID})
	case models.RoleCoordinator:
		return s.list(ctx, repositories.FeedbackFilter{CoordinatorID: &caller.ID})
	case models.RoleAdmin:
		return []dto.FeedbackResponse{}, nil
	}
	return nil, apperrors.NewForbiddenError("Unknown role")
}

// feedbackMove is the outcome of an action on a feedback item.
type feedbackMove struct {
	from        []models.FeedbackStatus
	to          models.FeedbackStatus
	targetAdmin *bool
}

func (s *feedbackServiceImpl) Act(ctx context.Context, caller appAuth.Caller, id int64, req *dto.FeedbackActionRequest) (*dto.FeedbackResponse, error) {
	feedback, err := s.feedbackRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var move feedbackMove
	switch caller.Role {
	case models.RoleCoordinator:
		move, err = coordinatorMove(caller, feedback, normalizeAction(req.Action))
	case models.RoleAdmin:
		move, err = adminMove(feedback, normalizeAction(req.Action))
	case models.RoleStudent:
		err = apperrors.NewForbiddenError("Students cannot act on feedback")
	default:
		err = apperrors.NewForbiddenError("Unknown role")
	}
	if err != nil {
		return nil, err
	}

	var response *string
	if req.Response != nil {
		trimmed := strings.TrimSpace(*req.Response)
		response = &trimmed
	}

	moved, err := s.feedbackRepo.Transition(ctx, repositories.FeedbackTransition{
		ID:          id,
		From:        move.from,
		To:          move.to,
		TargetAdmin: move.targetAdmin,
		Response:    response,
		HandledBy:   caller.ID,
	})
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, apperrors.NewBadRequestError("Feedback has already been handled")
	}

	s.logger.Info().
		Int64("feedbackID", id).
		Str("status", string(move.to)).
		Int64("handledBy", caller.ID).
		Msg("Feedback handled")
	if move.to == models.FeedbackStatusEscalated || move.to == models.FeedbackStatusForwardAdmin {
		s.events.publish(notify.SubjectFeedbackEscalated, notify.FeedbackEscalated{
			FeedbackID: id,
			ClubID:     feedback.ClubID,
			Status:     string(move.to),
		})
	}
	return s.view(ctx, id)
}

func coordinatorMove(caller appAuth.Caller, f *models.Feedback, action string) (feedbackMove, error) {
	clubID, err := caller.AssignedClub()
	if err != nil {
		return feedbackMove{}, err
	}
	if f.ClubID == nil || *f.ClubID != clubID {
		return feedbackMove{}, apperrors.NewForbiddenError("This feedback is not addressed to your club")
	}

	pending := []models.FeedbackStatus{models.FeedbackStatusPending}
	var move feedbackMove
	switch action {
	case "resolve":
		move = feedbackMove{from: pending, to: models.FeedbackStatusResolved}
	case "solve":
		move = feedbackMove{from: pending, to: models.FeedbackStatusSolved}
	case "forward":
		target := true
		move = feedbackMove{from: pending, to: models.FeedbackStatusEscalated, targetAdmin: &target}
	default:
		return feedbackMove{}, apperrors.NewBadRequestError("Invalid action, expected resolve, solve or forward")
	}

	if f.Status != models.FeedbackStatusPending {
		return feedbackMove{}, apperrors.NewBadRequestError("Feedback has already been " + string(f.Status))
	}
	return move, nil
}

func adminMove(f *models.Feedback, action string) (feedbackMove, error) {
	if !f.TargetAdmin {
		return feedbackMove{}, apperrors.NewBadRequestError("Only feedback addressed to admins can be handled by an admin")
	}

	var move feedbackMove
	switch action {
	case "resolve":
		move = feedbackMove{
			from: []models.FeedbackStatus{models.FeedbackStatusPending, models.FeedbackStatusEscalated, models.FeedbackStatusForwardAdmin},
			to:   models.FeedbackStatusResolved,
		}
	case "escalate":
		move = feedbackMove{
			from: []models.FeedbackStatus{models.FeedbackStatusPending, models.FeedbackStatusEscalated},
			to:   models.FeedbackStatusForwardAdmin,
		}
	default:
		return feedbackMove{}, apperrors.NewBadRequestError("Invalid action, expected resolve or escalate")
	}

	switch f.Status {
	case models.FeedbackStatusResolved, models.FeedbackStatusSolved:
		return feedbackMove{}, apperrors.NewBadRequestError("Feedback has already been " + string(f.Status))
	case models.FeedbackStatusForwardAdmin:
		if move.to == models.FeedbackStatusForwardAdmin {
			return feedbackMove{}, apperrors.NewBadRequestError("Feedback has already been forwarded")
		}
	}
	return move, nil
}

func (s *feedbackServiceImpl) list(ctx context.Context, filter repositories.FeedbackFilter) ([]dto.FeedbackResponse, error) {
	items, err := s.feedbackRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.FeedbackResponse, 0, len(items))
	for _, f := range items {
		out = append(out, dto.NewFeedbackResponse(f))
	}
	return out, nil
}

func (s *feedbackServiceImpl) view(ctx context.Context, id int64) (*dto.FeedbackResponse, error) {
	f, err := s.feedbackRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewFeedbackResponse(f)
	return &resp, nil
}
