package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	appAuth "github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/middleware"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

// SnapshotFunc returns the current tally of pollID, or an error when the
// caller may not see the poll.
type SnapshotFunc func(ctx context.Context, caller appAuth.Caller, pollID int64) (any, error)

// Handler for WebSocket connections
type Handler struct {
	hub      *Hub
	snapshot SnapshotFunc
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler. An empty origin list or "*"
// accepts every origin.
func NewHandler(hub *Hub, snapshot SnapshotFunc, allowedOrigins []string, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		snapshot: snapshot,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// HandleConnection godoc
// @Summary Stream live poll results
// @Description Upgrades to a WebSocket that receives the poll tally on connect, after every vote and on close. Browsers may pass the JWT as the token query parameter.
// @Tags polls
// @Security BearerAuth
// @Param id path int true "Poll ID"
// @Param token query string false "JWT for clients that cannot set headers"
// @Success 101 {string} string "Switching Protocols"
// @Failure 400 {object} dto.ErrorResponse "Invalid poll ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Poll not visible to the caller"
// @Failure 404 {object} dto.ErrorResponse "Poll not found"
// @Router /polls/{id}/live [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	pollID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || pollID <= 0 {
		middleware.HandleAPIError(c, apperrors.NewBadRequestError("Invalid poll ID"))
		return
	}

	caller, ok := middleware.CallerFrom(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.NewUnauthorizedError("Authentication required"))
		return
	}

	initial, err := h.snapshot(c.Request.Context(), caller, pollID)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	data, err := json.Marshal(initial)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("pollID", pollID).
			Int64("userID", caller.ID).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		userID: caller.ID,
		pollID: pollID,
		logger: h.logger,
	}
	client.send <- data
	if !h.hub.join(client) {
		h.logger.Warn().Int64("pollID", pollID).Msg("Live results hub stopped, closing connection")
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Int64("pollID", pollID).
		Int64("userID", caller.ID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}
