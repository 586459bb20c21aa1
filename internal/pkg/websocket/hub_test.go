package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appAuth "github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/middleware"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

type tally struct {
	PollID     int64 `json:"pollId"`
	TotalVotes int64 `json:"totalVotes"`
}

func newLiveServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	snapshot := func(_ context.Context, caller appAuth.Caller, pollID int64) (any, error) {
		if pollID == 404 {
			return nil, apperrors.ErrPollNotFound
		}
		return tally{PollID: pollID}, nil
	}
	handler := NewHandler(hub, snapshot, nil, zerolog.Nop())

	router := gin.New()
	router.GET("/polls/:id/live", func(c *gin.Context) {
		middleware.SetCaller(c, appAuth.Caller{ID: 1, Role: models.RoleStudent})
		c.Next()
	}, handler.HandleConnection)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, pollID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/polls/" + pollID + "/live"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readTally(t *testing.T, conn *websocket.Conn) tally {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var got tally
	require.NoError(t, json.Unmarshal(data, &got))
	return got
}

func TestHub_BroadcastReachesPollSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)
	srv := newLiveServer(t, hub)

	first := dial(t, srv, "7")
	other := dial(t, srv, "8")

	assert.Equal(t, tally{PollID: 7}, readTally(t, first))
	assert.Equal(t, tally{PollID: 8}, readTally(t, other))

	require.Eventually(t, func() bool { return hub.ClientCount(7) == 1 && hub.ClientCount(8) == 1 },
		time.Second, 10*time.Millisecond)

	hub.Broadcast(7, tally{PollID: 7, TotalVotes: 3})
	assert.Equal(t, tally{PollID: 7, TotalVotes: 3}, readTally(t, first))

	// Poll 8 got nothing.
	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err)
}

func TestHub_ClientLeavesOnClose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)
	srv := newLiveServer(t, hub)

	conn := dial(t, srv, "9")
	readTally(t, conn)
	require.Eventually(t, func() bool { return hub.ClientCount(9) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	require.Eventually(t, func() bool { return hub.ClientCount(9) == 0 }, time.Second, 10*time.Millisecond)
}

func TestHandler_RejectsBeforeUpgrade(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	srv := newLiveServer(t, hub)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url+"/polls/404/live", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(url+"/polls/abc/live", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := &Client{hub: hub, send: make(chan []byte, 1), pollID: 3}
	hub.registerClient(client)

	hub.broadcastMessage(pollMessage{pollID: 3, data: []byte(`{}`)})
	assert.Equal(t, 1, hub.ClientCount(3))

	// Buffer is full now.
	hub.broadcastMessage(pollMessage{pollID: 3, data: []byte(`{}`)})
	assert.Equal(t, 0, hub.ClientCount(3))

	_, open := <-client.send
	assert.True(t, open)
	_, open = <-client.send
	assert.False(t, open)
}

func TestHub_BroadcastNeverBlocks(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	for i := 0; i < broadcastBuffer+10; i++ {
		hub.Broadcast(1, tally{PollID: 1})
	}
	assert.Len(t, hub.broadcast, broadcastBuffer)
}

func TestHub_StoppedHubReleasesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zerolog.Nop())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	client := &Client{hub: hub, send: make(chan []byte, 1), pollID: 5}
	require.True(t, hub.join(client))
	require.Eventually(t, func() bool { return hub.ClientCount(5) == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	<-stopped
	_, open := <-client.send
	assert.False(t, open, "shutdown closes the send channel")

	left := make(chan struct{})
	go func() {
		hub.leave(client)
		assert.False(t, hub.join(&Client{hub: hub, send: make(chan []byte, 1), pollID: 5}))
		close(left)
	}()
	select {
	case <-left:
	case <-time.After(time.Second):
		t.Fatal("leave or join blocked on a stopped hub")
	}
}

func TestHandler_ClosesConnectionWhenHubStopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zerolog.Nop())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	srv := newLiveServer(t, hub)
	conn := dial(t, srv, "6")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), err.Error())
	assert.Zero(t, hub.ClientCount(6))
}
