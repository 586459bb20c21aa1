package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/clubhub/internal/app/models"
	appRepos "github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	pkgAuth "github.com/yigit/clubhub/internal/pkg/auth"
)

// Admin describes the account created on first start.
type Admin struct {
	Name     string
	Email    string
	RollNo   string
	Password string
}

// CreateDefaultData creates the admin account unless a user with its roll
// number exists. An empty password disables seeding.
func CreateDefaultData(ctx context.Context, userRepo appRepos.IUserRepository, admin Admin, lgr zerolog.Logger) error {
	rollNo := strings.ToUpper(strings.TrimSpace(admin.RollNo))
	if admin.Password == "" || rollNo == "" {
		lgr.Warn().Msg("Admin password or roll number not configured, skipping admin seed")
		return nil
	}

	lgr.Info().Str("rollNo", rollNo).Msg("Checking default admin user...")

	_, err := userRepo.GetByRollNo(ctx, rollNo)
	if err == nil {
		lgr.Info().Msg("Admin user already exists, skipping creation")
		return nil
	}
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		return err
	}

	hashedPassword, err := pkgAuth.HashPassword(admin.Password)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return err
	}

	user := &appModels.User{
		Name:     strings.TrimSpace(admin.Name),
		Email:    strings.ToLower(strings.TrimSpace(admin.Email)),
		RollNo:   rollNo,
		Password: hashedPassword,
		Role:     appModels.RoleAdmin,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		lgr.Error().Err(err).Msg("Error creating admin user")
		return err
	}

	lgr.Info().Int64("adminID", user.ID).Msg("Default admin user created successfully")
	return nil
}
