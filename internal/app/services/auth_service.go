package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	appAuth "github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	pkgAuth "github.com/yigit/clubhub/internal/pkg/auth"
	"github.com/yigit/clubhub/internal/pkg/validation"
)

// errBadLogin is returned for unknown roll numbers and wrong passwords alike.
var errBadLogin = apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid roll number or password")

// AuthService handles registration, login and the caller's own account.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	GetProfile(ctx context.Context, caller appAuth.Caller) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, caller appAuth.Caller, req *dto.ChangePasswordRequest) error
	UpdateProfile(ctx context.Context, caller appAuth.Caller, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	CreateCoordinator(ctx context.Context, caller appAuth.Caller, req *dto.CreateCoordinatorRequest) (*dto.UserResponse, error)
}

type authServiceImpl struct {
	tx             repositories.Transactor
	userRepo       repositories.IUserRepository
	clubRepo       repositories.IClubRepository
	membershipRepo repositories.IMembershipRepository
	jwtService     *pkgAuth.JWTService
	logger         zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	tx repositories.Transactor,
	userRepo repositories.IUserRepository,
	clubRepo repositories.IClubRepository,
	membershipRepo repositories.IMembershipRepository,
	jwtService *pkgAuth.JWTService,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		tx:             tx,
		userRepo:       userRepo,
		clubRepo:       clubRepo,
		membershipRepo: membershipRepo,
		jwtService:     jwtService,
		logger:         logger,
	}
}

// NormalizeRollNo trims and upper-cases a roll number.
func NormalizeRollNo(rollNo string) string {
	return strings.ToUpper(strings.TrimSpace(rollNo))
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	user := &models.User{
		Name:   strings.TrimSpace(req.Name),
		Email:  NormalizeEmail(req.Email),
		RollNo: NormalizeRollNo(req.RollNo),
		Role:   models.RoleStudent,
		Year:   req.Year,
		Branch: req.Branch,
	}
	if err := s.setPassword(user, req.Password); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if !apperrors.IsConflict(err) {
			s.logger.Error().Err(err).Str("rollNo", user.RollNo).Msg("Failed to create student")
		}
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("rollNo", user.RollNo).Msg("Student registered")
	return s.authResponse(ctx, user)
}

func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByRollNo(ctx, NormalizeRollNo(req.RollNo))
	if err != nil {
		if isNotFound(err) {
			return nil, errBadLogin
		}
		return nil, err
	}

	if !pkgAuth.CheckPassword(user.Password, req.Password) {
		s.logger.Debug().Int64("userID", user.ID).Msg("Login with wrong password")
		return nil, errBadLogin
	}

	return s.authResponse(ctx, user)
}

func (s *authServiceImpl) GetProfile(ctx context.Context, caller appAuth.Caller) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	return userView(ctx, s.clubRepo, s.membershipRepo, user)
}

func (s *authServiceImpl) ChangePassword(ctx context.Context, caller appAuth.Caller, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, caller.ID)
	if err != nil {
		return err
	}

	if !pkgAuth.CheckPassword(user.Password, req.CurrentPassword) {
		return apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Current password is incorrect")
	}
	if err := s.setPassword(user, req.NewPassword); err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", user.ID).Msg("Password changed")
	return nil
}

func (s *authServiceImpl) UpdateProfile(ctx context.Context, caller appAuth.Caller, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		user.Email = NormalizeEmail(*req.Email)
	}
	if req.Year != nil {
		user.Year = req.Year
	}
	if req.Branch != nil {
		user.Branch = req.Branch
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return userView(ctx, s.clubRepo, s.membershipRepo, user)
}

func (s *authServiceImpl) CreateCoordinator(ctx context.Context, caller appAuth.Caller, req *dto.CreateCoordinatorRequest) (*dto.UserResponse, error) {
	if err := appAuth.RequireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}

	clubID := req.ClubID
	user := &models.User{
		Name:               strings.TrimSpace(req.Name),
		Email:              NormalizeEmail(req.Email),
		RollNo:             NormalizeRollNo(req.RollNo),
		Role:               models.RoleCoordinator,
		CoordinatingClubID: &clubID,
	}
	if err := s.setPassword(user, req.Password); err != nil {
		return nil, err
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.clubRepo.GetByID(ctx, clubID); err != nil {
			return err
		}
		return s.userRepo.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("userID", user.ID).
		Int64("clubID", clubID).
		Int64("createdBy", caller.ID).
		Msg("Coordinator created")
	return userView(ctx, s.clubRepo, s.membershipRepo, user)
}

func (s *authServiceImpl) setPassword(user *models.User, password string) error {
	if !validation.ValidPassword(password) {
		return apperrors.NewBadRequestError("Password must be at least 8 characters and contain a letter and a digit")
	}
	hash, err := pkgAuth.HashPassword(password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		return err
	}
	user.Password = hash
	return nil
}

func (s *authServiceImpl) authResponse(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	token, expiresIn, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to generate access token")
		return nil, err
	}

	view, err := userView(ctx, s.clubRepo, s.membershipRepo, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token: dto.TokenResponse{AccessToken: token, TokenType: "Bearer", ExpiresIn: expiresIn},
		User:  *view,
	}, nil
}

// userView builds the public view of user with joined clubs and, for
// coordinators, the coordinated club.
func userView(
	ctx context.Context,
	clubRepo repositories.IClubRepository,
	membershipRepo repositories.IMembershipRepository,
	user *models.User,
) (*dto.UserResponse, error) {
	joined, err := membershipRepo.ClubsForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	view := dto.NewUserResponse(user, joined)

	if user.CoordinatingClubID != nil {
		club, err := clubRepo.GetByID(ctx, *user.CoordinatingClubID)
		switch {
		case err == nil:
			summary := dto.NewClubSummary(club)
			view.CoordinatingClub = &summary
		case !errors.Is(err, apperrors.ErrResourceNotFound):
			return nil, err
		}
	}
	return &view, nil
}
