package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/config"
	pkgAuth "github.com/yigit/clubhub/internal/pkg/auth"
	"github.com/yigit/clubhub/internal/seed"
	"github.com/yigit/clubhub/internal/testutil/memstore"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testApp struct {
	t      *testing.T
	router *gin.Engine
	deps   *Dependencies
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	pkgAuth.BcryptCost = bcrypt.MinCost

	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.Server.StoragePath = t.TempDir()
	cfg.Server.MaxUploadMB = 1
	cfg.Server.CORSOrigins = []string{"*"}
	cfg.JWT.Secret = "router-test-secret"
	cfg.JWT.AccessTokenExpiration = "1h"
	cfg.JWT.Issuer = "clubhub-test"
	cfg.Redis.CacheTTL = "1m"

	repos := memstore.New().Repositories()
	admin := seed.Admin{Name: "Admin", Email: "admin@clubhub.local", RollNo: "ADMIN001", Password: "admin1234"}
	require.NoError(t, seed.CreateDefaultData(context.Background(), repos.UserRepository, admin, zerolog.Nop()))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	deps, err := BuildDependencies(ctx, cfg, repos, nil, zerolog.Nop())
	require.NoError(t, err)

	return &testApp{t: t, router: SetupRouter(cfg, deps, zerolog.Nop()), deps: deps}
}

func (a *testApp) do(method, path, token string, body any) (int, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (a *testApp) login(rollNo, password string) string {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{RollNo: rollNo, Password: password})
	require.Equal(a.t, http.StatusOK, code, env.Message)

	var auth dto.AuthResponse
	require.NoError(a.t, json.Unmarshal(env.Data, &auth))
	return auth.Token.AccessToken
}

func (a *testApp) register(name, rollNo string) string {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Name:     name,
		Email:    strings.ToLower(rollNo) + "@college.edu",
		Password: "secret123",
		RollNo:   rollNo,
	})
	require.Equal(a.t, http.StatusCreated, code, env.Message)
	return a.login(rollNo, "secret123")
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestRouter_ClubJoinAndPollVote(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.login("ADMIN001", "admin1234")
	alice := app.register("Alice", "21CS001")

	code, env := app.do(http.MethodPost, "/api/v1/clubs", adminToken, dto.CreateClubRequest{Name: "Robotics", ClubKey: "R0B0T1CS"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	club := decode[dto.ClubResponse](t, env)
	clubPath := fmt.Sprintf("/api/v1/clubs/%d", club.ID)

	code, env = app.do(http.MethodPost, clubPath+"/join", alice, dto.JoinClubRequest{ClubKey: "wrong"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)

	code, _ = app.do(http.MethodPost, clubPath+"/join", alice, dto.JoinClubRequest{ClubKey: "R0B0T1CS"})
	assert.Equal(t, http.StatusOK, code)

	code, env = app.do(http.MethodPost, clubPath+"/join", alice, dto.JoinClubRequest{ClubKey: "R0B0T1CS"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "You are already enrolled in this club", env.Error.Message)

	code, env = app.do(http.MethodGet, "/api/v1/clubs/my", alice, nil)
	require.Equal(t, http.StatusOK, code)
	mine := decode[[]dto.ClubResponse](t, env)
	require.Len(t, mine, 1)
	assert.Equal(t, "Robotics", mine[0].Name)

	code, env = app.do(http.MethodPost, "/api/v1/polls", adminToken, dto.CreatePollRequest{
		Question: "Next workshop?",
		Options:  []string{"Drones", "Rovers"},
		Scope:    "all",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	polls := decode[[]dto.PollResponse](t, env)
	require.Len(t, polls, 1)
	poll := polls[0]
	votePath := fmt.Sprintf("/api/v1/polls/%d/vote", poll.ID)

	code, env = app.do(http.MethodPost, votePath, alice, dto.VoteRequest{OptionID: poll.Options[0].ID})
	require.Equal(t, http.StatusOK, code, env.Message)
	results := decode[dto.PollResultsResponse](t, env)
	assert.EqualValues(t, 1, results.TotalVotes)

	code, env = app.do(http.MethodPost, votePath, alice, dto.VoteRequest{OptionID: poll.Options[1].ID})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Already voted", env.Error.Message)
}

func TestRouter_AuthGate(t *testing.T) {
	app := newTestApp(t)
	alice := app.register("Alice", "21CS001")

	code, env := app.do(http.MethodGet, "/api/v1/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)

	code, _ = app.do(http.MethodGet, "/api/v1/users", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = app.do(http.MethodGet, "/api/v1/users", alice, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = app.do(http.MethodGet, "/api/v1/analytics/admin", alice, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = app.do(http.MethodGet, "/api/v1/auth/profile", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "21CS001", decode[dto.UserResponse](t, env).RollNo)

	code, env = app.do(http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Name: "Weak", Email: "weak@college.edu", Password: "password", RollNo: "21CS099",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
}

func TestRouter_HealthAndNoRoute(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		code, env := app.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, code, path)
		assert.True(t, env.Success, path)
	}

	code, env := app.do(http.MethodGet, "/api/v1/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, string(dto.ErrorCodeRouteNotFound), env.Error.Code)

	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_LivePollResults(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.login("ADMIN001", "admin1234")
	alice := app.register("Alice", "21CS001")

	code, env := app.do(http.MethodPost, "/api/v1/polls", adminToken, dto.CreatePollRequest{
		Question: "Pizza or tacos?",
		Options:  []string{"Pizza", "Tacos"},
		Scope:    "all",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	poll := decode[[]dto.PollResponse](t, env)[0]

	srv := httptest.NewServer(app.router)
	defer srv.Close()

	url := fmt.Sprintf("ws%s/api/v1/polls/%d/live?token=%s", strings.TrimPrefix(srv.URL, "http"), poll.ID, alice)
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var snapshot dto.PollResultsResponse
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&snapshot))
	assert.Equal(t, poll.ID, snapshot.PollID)
	assert.Zero(t, snapshot.TotalVotes)

	require.Eventually(t, func() bool { return app.deps.Hub.ClientCount(poll.ID) == 1 }, 2*time.Second, 10*time.Millisecond)

	code, env = app.do(http.MethodPost, fmt.Sprintf("/api/v1/polls/%d/vote", poll.ID), alice, dto.VoteRequest{OptionID: poll.Options[1].ID})
	require.Equal(t, http.StatusOK, code, env.Message)

	var update dto.PollResultsResponse
	require.NoError(t, conn.ReadJSON(&update))
	assert.EqualValues(t, 1, update.TotalVotes)
	for _, opt := range update.Options {
		if opt.ID == poll.Options[1].ID {
			assert.EqualValues(t, 1, opt.VoteCount)
		} else {
			assert.Zero(t, opt.VoteCount)
		}
	}
}
