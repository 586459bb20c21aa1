package services

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	appAuth "github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/cache"
)

const (
	adminDashboardKey      = "analytics:admin"
	clubDashboardKeyPrefix = "analytics:club:"
)

// AnalyticsService serves the dashboard aggregates, cached for a short TTL.
type AnalyticsService interface {
	AdminDashboard(ctx context.Context, caller appAuth.Caller) (*dto.AdminDashboardResponse, error)
	ClubDashboard(ctx context.Context, caller appAuth.Caller, clubID *int64) (*dto.ClubDashboardResponse, error)
}

type analyticsServiceImpl struct {
	analyticsRepo repositories.IAnalyticsRepository
	clubRepo      repositories.IClubRepository
	cache         cache.Cache
	ttl           time.Duration
	logger        zerolog.Logger
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(
	analyticsRepo repositories.IAnalyticsRepository,
	clubRepo repositories.IClubRepository,
	c cache.Cache,
	ttl time.Duration,
	logger zerolog.Logger,
) AnalyticsService {
	if c == nil {
		c = cache.Nop{}
	}
	return &analyticsServiceImpl{
		analyticsRepo: analyticsRepo,
		clubRepo:      clubRepo,
		cache:         c,
		ttl:           ttl,
		logger:        logger,
	}
}

func (s *analyticsServiceImpl) AdminDashboard(ctx context.Context, caller appAuth.Caller) (*dto.AdminDashboardResponse, error) {
	if err := appAuth.RequireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}

	var resp dto.AdminDashboardResponse
	if s.fromCache(ctx, adminDashboardKey, &resp) {
		return &resp, nil
	}

	stats, err := s.analyticsRepo.AdminStats(ctx)
	if err != nil {
		return nil, err
	}
	out := dto.NewAdminDashboardResponse(stats)
	s.toCache(ctx, adminDashboardKey, out)
	return out, nil
}

func (s *analyticsServiceImpl) ClubDashboard(ctx context.Context, caller appAuth.Caller, clubID *int64) (*dto.ClubDashboardResponse, error) {
	var id int64
	switch caller.Role {
	case models.RoleCoordinator:
		own, err := caller.AssignedClub()
		if err != nil {
			return nil, err
		}
		id = own
	case models.RoleAdmin:
		if clubID == nil {
			return nil, apperrors.NewBadRequestError("clubId is required")
		}
		id = *clubID
	case models.RoleStudent:
		return nil, apperrors.NewForbiddenError("Students cannot view club analytics")
	default:
		return nil, apperrors.NewForbiddenError("Unknown role")
	}

	key := clubDashboardKeyPrefix + strconv.FormatInt(id, 10)
	var resp dto.ClubDashboardResponse
	if s.fromCache(ctx, key, &resp) {
		return &resp, nil
	}

	if _, err := s.clubRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	stats, err := s.analyticsRepo.ClubStats(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.NewClubDashboardResponse(stats)
	s.toCache(ctx, key, out)
	return out, nil
}

// fromCache reports a hit. Cache failures are logged and treated as misses.
func (s *analyticsServiceImpl) fromCache(ctx context.Context, key string, dest any) bool {
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Analytics cache read failed")
		return false
	}
	return hit
}

func (s *analyticsServiceImpl) toCache(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Analytics cache write failed")
	}
}
