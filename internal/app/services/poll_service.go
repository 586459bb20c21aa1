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
	"github.com/yigit/clubhub/internal/pkg/notify"
)

// PollService creates polls, records votes and reports tallies.
type PollService interface {
	CreatePoll(ctx context.Context, caller appAuth.Caller, req *dto.CreatePollRequest) ([]dto.PollResponse, error)
	Vote(ctx context.Context, caller appAuth.Caller, pollID int64, req *dto.VoteRequest) (*dto.PollResultsResponse, error)
	ListActivePolls(ctx context.Context, caller appAuth.Caller) ([]dto.PollResponse, error)
	ListManagedPolls(ctx context.Context, caller appAuth.Caller, status *models.PollStatus, scope *models.PollScope) ([]dto.PollResponse, error)
	GetPollResults(ctx context.Context, caller appAuth.Caller, pollID int64) (*dto.PollResultsResponse, error)
	ClosePoll(ctx context.Context, caller appAuth.Caller, pollID int64) (*dto.PollResultsResponse, error)
	DeletePoll(ctx context.Context, caller appAuth.Caller, pollID int64) error
}

type pollServiceImpl struct {
	tx          repositories.Transactor
	pollRepo    repositories.IPollRepository
	clubRepo    repositories.IClubRepository
	broadcaster Broadcaster
	events      *eventPublisher
	logger      zerolog.Logger
}

// NewPollService creates a new PollService
func NewPollService(
	tx repositories.Transactor,
	pollRepo repositories.IPollRepository,
	clubRepo repositories.IClubRepository,
	broadcaster Broadcaster,
	events *eventPublisher,
	logger zerolog.Logger,
) PollService {
	if broadcaster == nil {
		broadcaster = nopBroadcaster{}
	}
	return &pollServiceImpl{
		tx:          tx,
		pollRepo:    pollRepo,
		clubRepo:    clubRepo,
		broadcaster: broadcaster,
		events:      events,
		logger:      logger,
	}
}

// pollTarget is one poll to create.
type pollTarget struct {
	scope  models.PollScope
	clubID *int64
}

func (s *pollServiceImpl) CreatePoll(ctx context.Context, caller appAuth.Caller, req *dto.CreatePollRequest) ([]dto.PollResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, apperrors.NewBadRequestError("Question is required")
	}
	options := make([]string, 0, len(req.Options))
	for _, o := range req.Options {
		if o = strings.TrimSpace(o); o != "" {
			options = append(options, o)
		}
	}
	if len(options) < 2 {
		return nil, apperrors.NewBadRequestError("A poll needs at least two non-empty options")
	}

	targets, err := pollTargets(caller, req)
	if err != nil {
		return nil, err
	}

	polls := make([]*models.Poll, 0, len(targets))
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		for _, t := range targets {
			if t.clubID != nil {
				if _, err := s.clubRepo.GetByID(ctx, *t.clubID); err != nil {
					return err
				}
			}
			poll := &models.Poll{
				Scope:     t.scope,
				ClubID:    t.clubID,
				Question:  question,
				Status:    models.PollStatusActive,
				CreatedBy: &caller.ID,
				Options:   make([]models.PollOption, 0, len(options)),
			}
			for i, text := range options {
				poll.Options = append(poll.Options, models.PollOption{Position: i, Text: text})
			}
			if err := s.pollRepo.Create(ctx, poll); err != nil {
				return err
			}
			polls = append(polls, poll)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]dto.PollResponse, 0, len(polls))
	for _, p := range polls {
		s.logger.Info().Int64("pollID", p.ID).Str("scope", string(p.Scope)).Int64("createdBy", caller.ID).Msg("Poll created")
		s.events.publish(notify.SubjectPollCreated, notify.PollCreated{PollID: p.ID, Scope: string(p.Scope), ClubID: p.ClubID})
		out = append(out, dto.NewPollResponse(p, nil))
	}
	return out, nil
}

// pollTargets decides scope and clubs from the caller's role. Coordinators
// always get a single poll for their own club.
func pollTargets(caller appAuth.Caller, req *dto.CreatePollRequest) ([]pollTarget, error) {
	switch caller.Role {
	case models.RoleCoordinator:
		clubID, err := caller.AssignedClub()
		if err != nil {
			return nil, err
		}
		return []pollTarget{{scope: models.PollScopeClub, clubID: &clubID}}, nil

	case models.RoleAdmin:
		scope := req.Scope
		if scope == "" {
			scope = models.PollScopeAll
		}
		if !scope.Valid() {
			return nil, apperrors.NewBadRequestError("Scope must be one of: club, coordinators, all")
		}
		if scope != models.PollScopeClub {
			return []pollTarget{{scope: scope}}, nil
		}

		ids := slices.Clone(req.ClubIDs)
		if req.ClubID != nil {
			ids = append(ids, *req.ClubID)
		}
		slices.Sort(ids)
		ids = slices.Compact(ids)
		if len(ids) == 0 {
			return nil, apperrors.NewBadRequestError("Select at least one club for a club poll")
		}
		targets := make([]pollTarget, 0, len(ids))
		for _, id := range ids {
			targets = append(targets, pollTarget{scope: models.PollScopeClub, clubID: &id})
		}
		return targets, nil

	case models.RoleStudent:
		return nil, apperrors.NewForbiddenError("Students cannot create polls")
	}
	return nil, apperrors.NewForbiddenError("Unknown role")
}

func (s *pollServiceImpl) Vote(ctx context.Context, caller appAuth.Caller, pollID int64, req *dto.VoteRequest) (*dto.PollResultsResponse, error) {
	poll, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if !appAuth.CanSeePoll(caller, poll) {
		return nil, apperrors.NewForbiddenError("You cannot vote on this poll")
	}
	option, ok := poll.Option(req.OptionID)
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("Option not found")
	}
	if poll.Status != models.PollStatusActive {
		return nil, apperrors.NewBadRequestError("Poll is closed")
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		vote := &models.PollVote{
			PollID:      pollID,
			VoterID:     caller.ID,
			OptionID:    option.ID,
			OptionIndex: option.Position,
		}
		if err := s.pollRepo.RecordVote(ctx, vote); err != nil {
			return err
		}
		return s.pollRepo.IncrementOption(ctx, pollID, option.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Int64("pollID", pollID).Int64("optionID", option.ID).Int64("voterID", caller.ID).Msg("Vote recorded")
	return s.publishTally(ctx, pollID)
}

func (s *pollServiceImpl) ListActivePolls(ctx context.Context, caller appAuth.Caller) ([]dto.PollResponse, error) {
	active := models.PollStatusActive
	filter := repositories.PollFilter{Status: &active}

	switch caller.Role {
	case models.RoleAdmin:
	case models.RoleCoordinator:
		audience := &repositories.PollAudience{Scopes: []models.PollScope{models.PollScopeAll, models.PollScopeCoordinators}}
		if caller.CoordinatingClubID != nil {
			audience.ClubIDs = []int64{*caller.CoordinatingClubID}
		}
		filter.Audience = audience
	case models.RoleStudent:
		filter.Audience = &repositories.PollAudience{
			Scopes:  []models.PollScope{models.PollScopeAll},
			ClubIDs: caller.ClubIDs,
		}
	default:
		return nil, apperrors.NewForbiddenError("Unknown role")
	}

	return s.list(ctx, caller, filter)
}

func (s *pollServiceImpl) ListManagedPolls(ctx context.Context, caller appAuth.Caller, status *models.PollStatus, scope *models.PollScope) ([]dto.PollResponse, error) {
	filter := repositories.PollFilter{Status: status}

	switch caller.Role {
	case models.RoleAdmin:
		filter.Scope = scope
	case models.RoleCoordinator:
		clubID, err := caller.AssignedClub()
		if err != nil {
			return nil, err
		}
		filter.ClubID = &clubID
	case models.RoleStudent:
		return nil, apperrors.NewForbiddenError("Students cannot manage polls")
	default:
		return nil, apperrors.NewForbiddenError("Unknown role")
	}

	return s.list(ctx, caller, filter)
}

func (s *pollServiceImpl) GetPollResults(ctx context.Context, caller appAuth.Caller, pollID int64) (*dto.PollResultsResponse, error) {
	poll, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if !appAuth.CanSeePoll(caller, poll) && !poll.IsCreatedBy(caller.ID) {
		return nil, apperrors.NewForbiddenError("You cannot view this poll")
	}
	resp := dto.NewPollResultsResponse(poll)
	return &resp, nil
}

func (s *pollServiceImpl) ClosePoll(ctx context.Context, caller appAuth.Caller, pollID int64) (*dto.PollResultsResponse, error) {
	if _, err := s.managedPoll(ctx, caller, pollID); err != nil {
		return nil, err
	}

	closed, err := s.pollRepo.Close(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if !closed {
		return nil, apperrors.NewBadRequestError("Poll is already closed")
	}

	s.logger.Info().Int64("pollID", pollID).Int64("closedBy", caller.ID).Msg("Poll closed")
	return s.publishTally(ctx, pollID)
}

func (s *pollServiceImpl) DeletePoll(ctx context.Context, caller appAuth.Caller, pollID int64) error {
	if _, err := s.managedPoll(ctx, caller, pollID); err != nil {
		return err
	}
	if err := s.pollRepo.Delete(ctx, pollID); err != nil {
		return err
	}
	s.logger.Info().Int64("pollID", pollID).Int64("deletedBy", caller.ID).Msg("Poll deleted")
	return nil
}

// managedPoll loads a poll the caller created, or any poll for admins.
func (s *pollServiceImpl) managedPoll(ctx context.Context, caller appAuth.Caller, pollID int64) (*models.Poll, error) {
	poll, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && !poll.IsCreatedBy(caller.ID) {
		return nil, apperrors.NewForbiddenError("Only the poll creator or an admin can manage this poll")
	}
	return poll, nil
}

// publishTally re-reads the poll and pushes its tally to live subscribers.
func (s *pollServiceImpl) publishTally(ctx context.Context, pollID int64) (*dto.PollResultsResponse, error) {
	poll, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewPollResultsResponse(poll)
	s.broadcaster.Broadcast(pollID, resp)
	return &resp, nil
}

func (s *pollServiceImpl) list(ctx context.Context, caller appAuth.Caller, filter repositories.PollFilter) ([]dto.PollResponse, error) {
	polls, err := s.pollRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(polls))
	for _, p := range polls {
		ids = append(ids, p.ID)
	}
	votes, err := s.pollRepo.VotesByVoter(ctx, caller.ID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]dto.PollResponse, 0, len(polls))
	for _, p := range polls {
		var myVote *int64
		if optionID, ok := votes[p.ID]; ok {
			myVote = &optionID
		}
		out = append(out, dto.NewPollResponse(p, myVote))
	}
	return out, nil
}
