package services

import (
	"context"

	"github.com/rs/zerolog"
	appAuth "github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/helpers"
)

// UserService is the admin view of user accounts.
type UserService interface {
	ListUsers(ctx context.Context, caller appAuth.Caller, role *models.Role, page, size int) (*dto.UserListResponse, error)
	GetUser(ctx context.Context, caller appAuth.Caller, id int64) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, caller appAuth.Caller, id int64) error
}

type userServiceImpl struct {
	tx             repositories.Transactor
	userRepo       repositories.IUserRepository
	clubRepo       repositories.IClubRepository
	membershipRepo repositories.IMembershipRepository
	pollRepo       repositories.IPollRepository
	logger         zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	tx repositories.Transactor,
	userRepo repositories.IUserRepository,
	clubRepo repositories.IClubRepository,
	membershipRepo repositories.IMembershipRepository,
	pollRepo repositories.IPollRepository,
	logger zerolog.Logger,
) UserService {
	return &userServiceImpl{
		tx:             tx,
		userRepo:       userRepo,
		clubRepo:       clubRepo,
		membershipRepo: membershipRepo,
		pollRepo:       pollRepo,
		logger:         logger,
	}
}

func (s *userServiceImpl) ListUsers(ctx context.Context, caller appAuth.Caller, role *models.Role, page, size int) (*dto.UserListResponse, error) {
	if err := appAuth.RequireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	if role != nil && !role.Valid() {
		return nil, apperrors.NewBadRequestError("Unknown role")
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	users, total, err := s.userRepo.List(ctx, role, offset, limit)
	if err != nil {
		return nil, err
	}

	resp := &dto.UserListResponse{
		Users:          make([]dto.UserResponse, 0, len(users)),
		PaginationInfo: helpers.NewPaginationInfo(total, page, int(limit)),
	}
	for _, u := range users {
		resp.Users = append(resp.Users, dto.NewUserResponse(u, nil))
	}
	return resp, nil
}

func (s *userServiceImpl) GetUser(ctx context.Context, caller appAuth.Caller, id int64) (*dto.UserResponse, error) {
	if err := appAuth.RequireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return userView(ctx, s.clubRepo, s.membershipRepo, user)
}

func (s *userServiceImpl) DeleteUser(ctx context.Context, caller appAuth.Caller, id int64) error {
	if err := appAuth.RequireRole(caller, models.RoleAdmin); err != nil {
		return err
	}
	if id == caller.ID {
		return apperrors.NewBadRequestError("You cannot delete your own account")
	}

	// The vote cascade does not touch option counters.
	var withdrawn int64
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.userRepo.GetByID(ctx, id); err != nil {
			return err
		}
		n, err := s.pollRepo.RemoveVotesByVoter(ctx, id)
		if err != nil {
			return err
		}
		withdrawn = n
		return s.userRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info().Int64("userID", id).Int64("deletedBy", caller.ID).Int64("votesWithdrawn", withdrawn).Msg("User deleted")
	return nil
}
