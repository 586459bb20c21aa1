package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/clubhub/internal/app/models"
	pkgAuth "github.com/yigit/clubhub/internal/pkg/auth"
	"github.com/yigit/clubhub/internal/testutil/memstore"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateDefaultData(t *testing.T) {
	pkgAuth.BcryptCost = bcrypt.MinCost
	ctx := context.Background()
	repos := memstore.New().Repositories()
	admin := Admin{Name: "Root", Email: "Root@Club.Local", RollNo: "admin001", Password: "changeme1"}

	require.NoError(t, CreateDefaultData(ctx, repos.UserRepository, admin, zerolog.Nop()))

	user, err := repos.UserRepository.GetByRollNo(ctx, "ADMIN001")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, "root@club.local", user.Email)
	assert.True(t, pkgAuth.CheckPassword(user.Password, "changeme1"))

	// Second run keeps the existing account.
	require.NoError(t, CreateDefaultData(ctx, repos.UserRepository, admin, zerolog.Nop()))
	users, total, err := repos.UserRepository.List(ctx, nil, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, users, 1)
}

func TestCreateDefaultData_NoPassword(t *testing.T) {
	ctx := context.Background()
	repos := memstore.New().Repositories()

	require.NoError(t, CreateDefaultData(ctx, repos.UserRepository, Admin{RollNo: "ADMIN001"}, zerolog.Nop()))

	_, total, err := repos.UserRepository.List(ctx, nil, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}
