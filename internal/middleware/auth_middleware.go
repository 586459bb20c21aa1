package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	appAuth "github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	pkgAuth "github.com/yigit/clubhub/internal/pkg/auth"
)

const callerKey = "caller"

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService     *pkgAuth.JWTService
	userRepo       repositories.IUserRepository
	membershipRepo repositories.IMembershipRepository
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(
	jwtService *pkgAuth.JWTService,
	userRepo repositories.IUserRepository,
	membershipRepo repositories.IMembershipRepository,
) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:     jwtService,
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
	}
}

// JWTAuth validates the bearer token and resolves the caller from the store.
// Browsers cannot set headers on websocket upgrades, so those may pass the
// token in the "token" query parameter instead.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := m.tokenFromRequest(c)
		if err != nil {
			abortWithError(c, err)
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			abortWithError(c, err)
			return
		}

		ctx := c.Request.Context()
		user, err := m.userRepo.GetByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrResourceNotFound) {
				abortWithError(c, apperrors.NewUnauthorizedError("User no longer exists"))
				return
			}
			abortWithError(c, err)
			return
		}

		clubIDs, err := m.membershipRepo.ClubIDsForUser(ctx, user.ID)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(callerKey, appAuth.NewCaller(user, clubIDs))
		c.Next()
	}
}

func (m *AuthMiddleware) tokenFromRequest(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if c.IsWebsocket() {
			if token := strings.TrimSpace(c.Query("token")); token != "" {
				return token, nil
			}
		}
		return "", apperrors.NewUnauthorizedError("Authentication required")
	}

	token, err := pkgAuth.ExtractBearerToken(authHeader)
	if err != nil {
		return "", apperrors.NewCustomError(apperrors.ErrTokenInvalid, "Invalid authorization header format")
	}
	return token, nil
}

// RoleRequired aborts with 403 unless the caller holds one of roles.
// It must run after JWTAuth.
func (m *AuthMiddleware) RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		if !ok {
			abortWithError(c, apperrors.NewUnauthorizedError("Authentication required"))
			return
		}

		if err := appAuth.RequireRole(caller, roles...); err != nil {
			abortWithError(c, err)
			return
		}

		c.Next()
	}
}

// CallerFrom returns the caller attached by JWTAuth.
func CallerFrom(c *gin.Context) (appAuth.Caller, bool) {
	v, exists := c.Get(callerKey)
	if !exists {
		return appAuth.Caller{}, false
	}
	caller, ok := v.(appAuth.Caller)
	return caller, ok
}

// SetCaller attaches caller to c. Used by tests that bypass JWTAuth.
func SetCaller(c *gin.Context, caller appAuth.Caller) {
	c.Set(callerKey, caller)
}

func abortWithError(c *gin.Context, err error) {
	HandleAPIError(c, err)
	c.Abort()
}
