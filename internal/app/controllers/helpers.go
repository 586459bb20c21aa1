package controllers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	appAuth "github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/middleware"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

// parseIDParam parses a positive id path parameter. On failure the error
// response is already written.
func parseIDParam(ctx *gin.Context, paramName, label string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(paramName), 10, 64)
	if err != nil || id <= 0 {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("Invalid "+label+" ID"))
		return 0, false
	}
	return id, true
}

// optionalIDQuery parses an optional positive id query parameter.
func optionalIDQuery(ctx *gin.Context, name string) (*int64, bool) {
	raw := strings.TrimSpace(ctx.Query(name))
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("Invalid "+name))
		return nil, false
	}
	return &id, true
}

// enumQuery parses an optional enum query parameter, case insensitively.
func enumQuery[T ~string](ctx *gin.Context, name string, valid func(T) bool) (*T, bool) {
	raw := strings.ToLower(strings.TrimSpace(ctx.Query(name)))
	if raw == "" {
		return nil, true
	}
	v := T(raw)
	if !valid(v) {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("Invalid "+name+": "+raw))
		return nil, false
	}
	return &v, true
}

// callerOf returns the identity set by the auth middleware.
func callerOf(ctx *gin.Context) (appAuth.Caller, bool) {
	caller, ok := middleware.CallerFrom(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewUnauthorizedError("Authentication required"))
		return appAuth.Caller{}, false
	}
	return caller, true
}
