package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"mime/multipart"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	appAuth "github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/filestorage"
	"github.com/yigit/clubhub/internal/pkg/helpers"
)

// ClubService defines club CRUD and the membership operations on a club.
type ClubService interface {
	ListClubs(ctx context.Context, caller appAuth.Caller, search string, page, size int) (*dto.ClubListResponse, error)
	GetClub(ctx context.Context, caller appAuth.Caller, id int64) (*dto.ClubResponse, error)
	CreateClub(ctx context.Context, caller appAuth.Caller, req *dto.CreateClubRequest, logo *multipart.FileHeader) (*dto.ClubResponse, error)
	UpdateClub(ctx context.Context, caller appAuth.Caller, id int64, req *dto.UpdateClubRequest) (*dto.ClubResponse, error)
	DeleteClub(ctx context.Context, caller appAuth.Caller, id int64) error
	UploadLogo(ctx context.Context, caller appAuth.Caller, id int64, logo *multipart.FileHeader) (*dto.ClubResponse, error)

	Join(ctx context.Context, caller appAuth.Caller, clubID int64, req *dto.JoinClubRequest) (*dto.ClubResponse, error)
	Enroll(ctx context.Context, caller appAuth.Caller, clubID int64, req *dto.EnrollRequest) (*dto.ClubResponse, error)
	ToggleEnrollment(ctx context.Context, caller appAuth.Caller, clubID int64) (*dto.EnrollmentResponse, error)
	ListMembers(ctx context.Context, caller appAuth.Caller, clubID int64) ([]dto.MemberResponse, error)
	AddMember(ctx context.Context, caller appAuth.Caller, clubID int64, req *dto.AddMemberRequest) error
	RemoveMember(ctx context.Context, caller appAuth.Caller, clubID, userID int64) error
	MyClubs(ctx context.Context, caller appAuth.Caller) ([]dto.ClubResponse, error)
}

type clubServiceImpl struct {
	tx             repositories.Transactor
	clubRepo       repositories.IClubRepository
	membershipRepo repositories.IMembershipRepository
	userRepo       repositories.IUserRepository
	fileStorage    filestorage.FileStorage
	logger         zerolog.Logger
}

// NewClubService creates a new ClubService
func NewClubService(
	tx repositories.Transactor,
	clubRepo repositories.IClubRepository,
	membershipRepo repositories.IMembershipRepository,
	userRepo repositories.IUserRepository,
	fileStorage filestorage.FileStorage,
	logger zerolog.Logger,
) ClubService {
	return &clubServiceImpl{
		tx:             tx,
		clubRepo:       clubRepo,
		membershipRepo: membershipRepo,
		userRepo:       userRepo,
		fileStorage:    fileStorage,
		logger:         logger,
	}
}

func (s *clubServiceImpl) ListClubs(ctx context.Context, caller appAuth.Caller, search string, page, size int) (*dto.ClubListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	clubs, total, err := s.clubRepo.List(ctx, strings.TrimSpace(search), offset, limit)
	if err != nil {
		return nil, err
	}

	resp := &dto.ClubListResponse{
		Clubs:          make([]dto.ClubResponse, 0, len(clubs)),
		PaginationInfo: helpers.NewPaginationInfo(total, page, int(limit)),
	}
	for _, club := range clubs {
		view, err := s.clubView(ctx, caller, club)
		if err != nil {
			return nil, err
		}
		resp.Clubs = append(resp.Clubs, *view)
	}
	return resp, nil
}

func (s *clubServiceImpl) GetClub(ctx context.Context, caller appAuth.Caller, id int64) (*dto.ClubResponse, error) {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.clubView(ctx, caller, club)
}

func (s *clubServiceImpl) CreateClub(ctx context.Context, caller appAuth.Caller, req *dto.CreateClubRequest, logo *multipart.FileHeader) (*dto.ClubResponse, error) {
	if err := appAuth.RequireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}

	club := &models.Club{
		Name:           strings.TrimSpace(req.Name),
		Description:    strings.TrimSpace(req.Description),
		ClubKey:        req.ClubKey,
		EnrollmentOpen: true,
		LogoURL:        req.LogoURL,
		TeamHeads:      dto.TeamHeadsFromInput(req.TeamHeads),
		PastEvents:     req.PastEvents,
		UpcomingEvents: req.UpcomingEvents,
	}
	if req.EnrollmentOpen != nil {
		club.EnrollmentOpen = *req.EnrollmentOpen
	}

	var savedLogo string
	if logo != nil {
		url, err := s.saveLogo(logo, "new")
		if err != nil {
			return nil, err
		}
		savedLogo = url
		club.LogoURL = &url
	}

	if err := s.clubRepo.Create(ctx, club); err != nil {
		if savedLogo != "" {
			s.removeLogoFile(savedLogo)
		}
		return nil, err
	}

	s.logger.Info().Int64("clubID", club.ID).Str("name", club.Name).Msg("Club created")
	return s.clubView(ctx, caller, club)
}

func (s *clubServiceImpl) UpdateClub(ctx context.Context, caller appAuth.Caller, id int64, req *dto.UpdateClubRequest) (*dto.ClubResponse, error) {
	if err := appAuth.CanManageClub(caller, id); err != nil {
		return nil, err
	}

	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previousLogo := club.LogoURL

	if req.Name != nil {
		club.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		club.Description = strings.TrimSpace(*req.Description)
	}
	if req.ClubKey != nil {
		club.ClubKey = *req.ClubKey
	}
	if req.LogoURL != nil {
		club.LogoURL = req.LogoURL
	}
	if req.TeamHeads != nil {
		club.TeamHeads = dto.TeamHeadsFromInput(*req.TeamHeads)
	}
	if req.PastEvents != nil {
		club.PastEvents = *req.PastEvents
	}
	if req.UpcomingEvents != nil {
		club.UpcomingEvents = *req.UpcomingEvents
	}

	if err := s.clubRepo.Update(ctx, club); err != nil {
		return nil, err
	}
	if previousLogo != nil && req.LogoURL != nil && *previousLogo != *req.LogoURL {
		s.removeLogoFile(*previousLogo)
	}

	s.logger.Info().Int64("clubID", id).Int64("updatedBy", caller.ID).Msg("Club updated")
	return s.clubView(ctx, caller, club)
}

func (s *clubServiceImpl) DeleteClub(ctx context.Context, caller appAuth.Caller, id int64) error {
	if err := appAuth.RequireRole(caller, models.RoleAdmin); err != nil {
		return err
	}

	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.clubRepo.Delete(ctx, id); err != nil {
		return err
	}
	if club.LogoURL != nil {
		s.removeLogoFile(*club.LogoURL)
	}

	s.logger.Info().Int64("clubID", id).Int64("deletedBy", caller.ID).Msg("Club deleted")
	return nil
}

func (s *clubServiceImpl) UploadLogo(ctx context.Context, caller appAuth.Caller, id int64, logo *multipart.FileHeader) (*dto.ClubResponse, error) {
	if err := appAuth.CanManageClub(caller, id); err != nil {
		return nil, err
	}

	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.saveLogo(logo, strconv.FormatInt(id, 10))
	if err != nil {
		return nil, err
	}
	if err := s.clubRepo.SetLogoURL(ctx, id, &url); err != nil {
		s.removeLogoFile(url)
		return nil, err
	}
	if club.LogoURL != nil {
		s.removeLogoFile(*club.LogoURL)
	}
	club.LogoURL = &url

	s.logger.Info().Int64("clubID", id).Str("logoURL", url).Msg("Club logo uploaded")
	return s.clubView(ctx, caller, club)
}

func (s *clubServiceImpl) Join(ctx context.Context, caller appAuth.Caller, clubID int64, req *dto.JoinClubRequest) (*dto.ClubResponse, error) {
	club, err := s.checkJoin(ctx, caller, clubID, req.ClubKey)
	if err != nil {
		return nil, err
	}

	if err := s.membershipRepo.Add(ctx, caller.ID, clubID); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("clubID", clubID).Int64("userID", caller.ID).Msg("Student joined club")
	caller.ClubIDs = append(slices.Clip(caller.ClubIDs), clubID)
	return s.clubView(ctx, caller, club)
}

func (s *clubServiceImpl) Enroll(ctx context.Context, caller appAuth.Caller, clubID int64, req *dto.EnrollRequest) (*dto.ClubResponse, error) {
	club, err := s.checkJoin(ctx, caller, clubID, req.ClubKey)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.membershipRepo.Add(ctx, caller.ID, clubID); err != nil {
			return err
		}

		user, err := s.userRepo.GetByID(ctx, caller.ID)
		if err != nil {
			return err
		}
		changed := false
		if req.Year != nil && user.Year == nil {
			user.Year = req.Year
			changed = true
		}
		if req.Branch != nil && strings.TrimSpace(*req.Branch) != "" && (user.Branch == nil || *user.Branch == "") {
			branch := strings.TrimSpace(*req.Branch)
			user.Branch = &branch
			changed = true
		}
		if !changed {
			return nil
		}
		return s.userRepo.Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("clubID", clubID).Int64("userID", caller.ID).Msg("Student enrolled in club")
	caller.ClubIDs = append(slices.Clip(caller.ClubIDs), clubID)
	return s.clubView(ctx, caller, club)
}

// checkJoin runs the shared preconditions of Join and Enroll. The membership
// primary key still catches a concurrent duplicate.
func (s *clubServiceImpl) checkJoin(ctx context.Context, caller appAuth.Caller, clubID int64, key string) (*models.Club, error) {
	if !caller.IsStudent() {
		return nil, apperrors.NewForbiddenError("Only students can join clubs")
	}

	club, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if !club.EnrollmentOpen {
		return nil, apperrors.NewBadRequestError("Enrollment is closed")
	}
	if subtle.ConstantTimeCompare([]byte(club.ClubKey), []byte(key)) != 1 {
		return nil, apperrors.NewBadRequestError("Invalid club key")
	}
	if caller.IsMemberOf(clubID) {
		return nil, apperrors.ErrAlreadyMember
	}
	return club, nil
}

func (s *clubServiceImpl) ToggleEnrollment(ctx context.Context, caller appAuth.Caller, clubID int64) (*dto.EnrollmentResponse, error) {
	if err := appAuth.CanManageClub(caller, clubID); err != nil {
		return nil, err
	}

	open, err := s.clubRepo.ToggleEnrollment(ctx, clubID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("clubID", clubID).Bool("enrollmentOpen", open).Int64("toggledBy", caller.ID).Msg("Enrollment toggled")
	return &dto.EnrollmentResponse{ClubID: clubID, EnrollmentOpen: open}, nil
}

func (s *clubServiceImpl) ListMembers(ctx context.Context, caller appAuth.Caller, clubID int64) ([]dto.MemberResponse, error) {
	if err := appAuth.CanManageClub(caller, clubID); err != nil {
		return nil, err
	}
	if _, err := s.clubRepo.GetByID(ctx, clubID); err != nil {
		return nil, err
	}

	members, err := s.membershipRepo.ListMembers(ctx, clubID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, dto.NewMemberResponse(m))
	}
	return out, nil
}

func (s *clubServiceImpl) AddMember(ctx context.Context, caller appAuth.Caller, clubID int64, req *dto.AddMemberRequest) error {
	if err := appAuth.CanManageClub(caller, clubID); err != nil {
		return err
	}
	if _, err := s.clubRepo.GetByID(ctx, clubID); err != nil {
		return err
	}

	user, err := s.userRepo.GetByRollNo(ctx, NormalizeRollNo(req.RollNo))
	if err != nil {
		if isNotFound(err) {
			return apperrors.NewResourceNotFoundError("No user with this roll number")
		}
		return err
	}
	if user.Role != models.RoleStudent {
		return apperrors.NewBadRequestError("Only students can be club members")
	}

	if err := s.membershipRepo.Add(ctx, user.ID, clubID); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyMember) {
			return apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, "Student is already a member of this club")
		}
		return err
	}

	s.logger.Info().Int64("clubID", clubID).Int64("userID", user.ID).Int64("addedBy", caller.ID).Msg("Member added")
	return nil
}

func (s *clubServiceImpl) RemoveMember(ctx context.Context, caller appAuth.Caller, clubID, userID int64) error {
	if err := appAuth.CanManageClub(caller, clubID); err != nil {
		return err
	}

	removed, err := s.membershipRepo.Remove(ctx, userID, clubID)
	if err != nil {
		return err
	}
	if !removed {
		return apperrors.NewResourceNotFoundError("User is not a member of this club")
	}

	s.logger.Info().Int64("clubID", clubID).Int64("userID", userID).Int64("removedBy", caller.ID).Msg("Member removed")
	return nil
}

func (s *clubServiceImpl) MyClubs(ctx context.Context, caller appAuth.Caller) ([]dto.ClubResponse, error) {
	clubs, err := s.membershipRepo.ClubsForUser(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ClubResponse, 0, len(clubs))
	for _, club := range clubs {
		view, err := s.clubView(ctx, caller, club)
		if err != nil {
			return nil, err
		}
		out = append(out, *view)
	}
	return out, nil
}

// clubView builds the response for club. The key is only shown to the club's managers.
func (s *clubServiceImpl) clubView(ctx context.Context, caller appAuth.Caller, club *models.Club) (*dto.ClubResponse, error) {
	coordinators, err := s.userRepo.ListCoordinators(ctx, club.ID)
	if err != nil {
		return nil, err
	}
	count, err := s.membershipRepo.CountMembers(ctx, club.ID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ClubResponse{
		ID:             club.ID,
		Name:           club.Name,
		Description:    club.Description,
		LogoURL:        club.LogoURL,
		EnrollmentOpen: club.EnrollmentOpen,
		TeamHeads:      club.TeamHeads,
		PastEvents:     club.PastEvents,
		UpcomingEvents: club.UpcomingEvents,
		Coordinators:   make([]dto.UserBrief, 0, len(coordinators)),
		MemberCount:    count,
		IsMember:       caller.IsMemberOf(club.ID),
		CreatedAt:      club.CreatedAt,
		UpdatedAt:      club.UpdatedAt,
	}
	if appAuth.CanManageClub(caller, club.ID) == nil {
		resp.ClubKey = club.ClubKey
	}
	for _, c := range coordinators {
		resp.Coordinators = append(resp.Coordinators, dto.NewUserBrief(c))
	}
	return resp, nil
}

func (s *clubServiceImpl) saveLogo(logo *multipart.FileHeader, dir string) (string, error) {
	if s.fileStorage == nil {
		return "", apperrors.NewBadRequestError("File uploads are not available")
	}
	url, err := s.fileStorage.SaveImage(logo, "clubs/"+dir)
	if err != nil {
		return "", err
	}
	return url, nil
}

// removeLogoFile deletes a logo stored by this server. External URLs are left alone.
func (s *clubServiceImpl) removeLogoFile(url string) {
	if s.fileStorage == nil || s.fileStorage.GetFullPath(url) == "" {
		return
	}
	if err := s.fileStorage.DeleteFile(url); err != nil {
		s.logger.Warn().Err(err).Str("logoURL", url).Msg("Failed to delete logo file")
	}
}
