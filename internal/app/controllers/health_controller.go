package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/models/dto"
)

const healthTimeout = 2 * time.Second

// Pinger is anything that can report whether its backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports liveness
type HealthController struct {
	db     Pinger
	logger zerolog.Logger
}

// NewHealthController creates a new HealthController. db may be nil.
func NewHealthController(db Pinger, logger zerolog.Logger) *HealthController {
	return &HealthController{db: db, logger: logger}
}

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Database string `json:"database" example:"up"`
}

// Health pings the database
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse{data=HealthResponse} "Service healthy"
// @Failure 503 {object} dto.APIResponse{data=HealthResponse} "Database unreachable"
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	resp := HealthResponse{Status: "ok", Database: "up"}
	if c.db == nil {
		resp.Database = "none"
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
		return
	}

	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), healthTimeout)
	defer cancel()
	if err := c.db.Ping(pingCtx); err != nil {
		c.logger.Error().Err(err).Msg("Health check failed")
		resp.Status = "degraded"
		resp.Database = "down"
		ctx.JSON(http.StatusServiceUnavailable, dto.APIResponse{Success: false, Data: resp, Timestamp: time.Now()})
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}
