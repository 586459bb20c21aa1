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

// MembershipRequestService handles join and leave requests reviewed by a club's coordinator.
type MembershipRequestService interface {
	RequestLeave(ctx context.Context, caller appAuth.Caller, clubID int64, req *dto.MembershipRequestInput) (*dto.MembershipRequestResponse, error)
	RequestJoin(ctx context.Context, caller appAuth.Caller, clubID int64, req *dto.MembershipRequestInput) (*dto.MembershipRequestResponse, error)
	ListClubRequests(ctx context.Context, caller appAuth.Caller, clubID int64, kind *models.RequestKind, status *models.RequestStatus) ([]dto.MembershipRequestResponse, error)
	MyRequests(ctx context.Context, caller appAuth.Caller) ([]dto.MembershipRequestResponse, error)
	ResolveRequest(ctx context.Context, caller appAuth.Caller, requestID int64, req *dto.ResolveRequestInput) (*dto.MembershipRequestResponse, error)
}

type membershipRequestServiceImpl struct {
	tx             repositories.Transactor
	requestRepo    repositories.IRequestRepository
	clubRepo       repositories.IClubRepository
	membershipRepo repositories.IMembershipRepository
	userRepo       repositories.IUserRepository
	events         *eventPublisher
	logger         zerolog.Logger
}

// NewMembershipRequestService creates a new MembershipRequestService
func NewMembershipRequestService(
	tx repositories.Transactor,
	requestRepo repositories.IRequestRepository,
	clubRepo repositories.IClubRepository,
	membershipRepo repositories.IMembershipRepository,
	userRepo repositories.IUserRepository,
	events *eventPublisher,
	logger zerolog.Logger,
) MembershipRequestService {
	return &membershipRequestServiceImpl{
		tx:             tx,
		requestRepo:    requestRepo,
		clubRepo:       clubRepo,
		membershipRepo: membershipRepo,
		userRepo:       userRepo,
		events:         events,
		logger:         logger,
	}
}

func (s *membershipRequestServiceImpl) RequestLeave(ctx context.Context, caller appAuth.Caller, clubID int64, req *dto.MembershipRequestInput) (*dto.MembershipRequestResponse, error) {
	if !caller.IsStudent() {
		return nil, apperrors.NewForbiddenError("Only students can request to leave a club")
	}
	if _, err := s.clubRepo.GetByID(ctx, clubID); err != nil {
		return nil, err
	}
	if !caller.IsMemberOf(clubID) {
		return nil, apperrors.NewBadRequestError("You are not a member of this club")
	}
	return s.open(ctx, caller, clubID, models.RequestKindLeave, req.Reason)
}

func (s *membershipRequestServiceImpl) RequestJoin(ctx context.Context, caller appAuth.Caller, clubID int64, req *dto.MembershipRequestInput) (*dto.MembershipRequestResponse, error) {
	if !caller.IsStudent() {
		return nil, apperrors.NewForbiddenError("Only students can request to join a club")
	}
	if _, err := s.clubRepo.GetByID(ctx, clubID); err != nil {
		return nil, err
	}
	if caller.IsMemberOf(clubID) {
		return nil, apperrors.ErrAlreadyMember
	}
	return s.open(ctx, caller, clubID, models.RequestKindJoin, req.Reason)
}

// open creates a pending request addressed to the club's assigned coordinator.
func (s *membershipRequestServiceImpl) open(ctx context.Context, caller appAuth.Caller, clubID int64, kind models.RequestKind, reason string) (*dto.MembershipRequestResponse, error) {
	coordinators, err := s.userRepo.ListCoordinators(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if len(coordinators) == 0 {
		return nil, apperrors.NewResourceNotFoundError("This club has no assigned coordinator")
	}

	pending, err := s.requestRepo.HasPending(ctx, kind, caller.ID, clubID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apperrors.ErrRequestPending
	}

	request := &models.MembershipRequest{
		Kind:          kind,
		StudentID:     caller.ID,
		ClubID:        clubID,
		CoordinatorID: &coordinators[0].ID,
		Reason:        strings.TrimSpace(reason),
		Status:        models.RequestStatusPending,
	}
	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("requestID", request.ID).
		Str("kind", string(kind)).
		Int64("clubID", clubID).
		Int64("studentID", caller.ID).
		Msg("Membership request opened")
	return s.view(ctx, request.ID)
}

func (s *membershipRequestServiceImpl) ListClubRequests(ctx context.Context, caller appAuth.Caller, clubID int64, kind *models.RequestKind, status *models.RequestStatus) ([]dto.MembershipRequestResponse, error) {
	if err := appAuth.CanManageClub(caller, clubID); err != nil {
		return nil, err
	}
	if kind != nil && !kind.Valid() {
		return nil, apperrors.NewBadRequestError("Unknown request kind")
	}
	return s.list(ctx, repositories.RequestFilter{ClubID: &clubID, Kind: kind, Status: status})
}

func (s *membershipRequestServiceImpl) MyRequests(ctx context.Context, caller appAuth.Caller) ([]dto.MembershipRequestResponse, error) {
	if !caller.IsStudent() {
		return nil, apperrors.NewForbiddenError("Only students have membership requests")
	}
	return s.list(ctx, repositories.RequestFilter{StudentID: &caller.ID})
}

func (s *membershipRequestServiceImpl) ResolveRequest(ctx context.Context, caller appAuth.Caller, requestID int64, req *dto.ResolveRequestInput) (*dto.MembershipRequestResponse, error) {
	var status models.RequestStatus
	switch normalizeAction(req.Action) {
	case "approve":
		status = models.RequestStatusApproved
	case "reject":
		status = models.RequestStatusRejected
	default:
		return nil, apperrors.NewBadRequestError("Invalid action, expected approve or reject")
	}

	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := appAuth.CanManageClub(caller, request.ClubID); err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusPending {
		return nil, apperrors.NewBadRequestError("Request has already been " + string(request.Status))
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.requestRepo.Resolve(ctx, requestID, status, caller.ID)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.NewBadRequestError("Request has already been processed")
		}
		if status != models.RequestStatusApproved {
			return nil
		}

		switch request.Kind {
		case models.RequestKindLeave:
			_, err = s.membershipRepo.Remove(ctx, request.StudentID, request.ClubID)
			return err
		case models.RequestKindJoin:
			_, err = s.membershipRepo.AddIfAbsent(ctx, request.StudentID, request.ClubID)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("requestID", requestID).
		Str("kind", string(request.Kind)).
		Str("status", string(status)).
		Int64("processedBy", caller.ID).
		Msg("Membership request resolved")
	s.events.publish(notify.SubjectRequestResolved, notify.RequestResolved{
		RequestID: requestID,
		Kind:      string(request.Kind),
		StudentID: request.StudentID,
		ClubID:    request.ClubID,
		Status:    string(status),
	})
	return s.view(ctx, requestID)
}

func (s *membershipRequestServiceImpl) list(ctx context.Context, filter repositories.RequestFilter) ([]dto.MembershipRequestResponse, error) {
	requests, err := s.requestRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MembershipRequestResponse, 0, len(requests))
	for _, r := range requests {
		out = append(out, dto.NewMembershipRequestResponse(r))
	}
	return out, nil
}

func (s *membershipRequestServiceImpl) view(ctx context.Context, id int64) (*dto.MembershipRequestResponse, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewMembershipRequestResponse(request)
	return &resp, nil
}
