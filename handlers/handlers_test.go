package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/campboard/campboard/internal/accounts"
	"github.com/campboard/campboard/internal/config"
	"github.com/campboard/campboard/internal/identity"
	"github.com/campboard/campboard/internal/schedules"
	"github.com/campboard/campboard/internal/sessions"
	"github.com/campboard/campboard/internal/store"
	"github.com/campboard/campboard/internal/tokens"
	"github.com/campboard/campboard/pkg/middleware"
)

// fakeSessionsRepo keeps refresh sessions in a map.
type fakeSessionsRepo struct {
	store map[string]*sessions.Session
}

func (f *fakeSessionsRepo) Create(ctx context.Context, s *sessions.Session) error {
	if f.store == nil {
		f.store = map[string]*sessions.Session{}
	}
	f.store[s.RefreshToken] = s
	return nil
}

func (f *fakeSessionsRepo) GetByRefresh(ctx context.Context, refresh string) (*sessions.Session, error) {
	s, ok := f.store[refresh]
	if !ok {
		return nil, nil
	}
	return s, nil
}

func (f *fakeSessionsRepo) DeleteByRefresh(ctx context.Context, refresh string) error {
	delete(f.store, refresh)
	return nil
}

type testEnv struct {
	router *gin.Engine
	store  *store.MemoryStore
	cfg    *config.Config
}

// newTestEnv wires the full HTTP surface over a memory store, mirroring the
// production router layout.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-32-bytes-xxxxxxxxxxx"
	cfg.JWT.AccessTokenTTL = 15 * time.Minute
	cfg.JWT.RefreshTokenTTL = 7 * 24 * time.Hour

	st := store.NewMemoryStore()
	accountsSvc := accounts.NewService(st)
	schedulesSvc := schedules.NewService(st)
	passwords := identity.NewPasswordProvider(st)
	sessionsSvc := sessions.NewService(&fakeSessionsRepo{})

	r := gin.New()
	NewAuthHandler(cfg, passwords, accountsSvc, sessionsSvc, nil).Register(r.Group("/"))

	var verifier middleware.Verifier = tokens.NewVerifier(cfg)
	api := r.Group("/api/v1", middleware.AuthMiddleware(verifier))
	NewAccountHandler(accountsSvc).Register(api)
	NewScheduleHandler(schedulesSvc, nil).Register(api)
	NewLiveHandler(schedulesSvc).Register(api)

	return &testEnv{router: r, store: st, cfg: cfg}
}

// newHTTPTestServer exposes the router over a real listener for websocket
// tests; plain handler tests go through ServeHTTP directly.
func newHTTPTestServer(e *testEnv) *httptest.Server {
	return httptest.NewServer(e.router)
}

// do runs one JSON request and returns the recorder.
func (e *testEnv) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// signUp registers a guardian and returns the access token.
func (e *testEnv) signUp(t *testing.T, email string) string {
	t.Helper()
	w := e.do("POST", "/auth/signup", "", fmt.Sprintf(`{"email":%q,"password":"hunter22again"}`, email))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

// accountID resolves the account id behind an email.
func (e *testEnv) accountID(t *testing.T, email string) string {
	t.Helper()
	a, err := e.store.GetAccountByEmail(context.Background(), email)
	require.NoError(t, err)
	return a.ID
}

// createSchedule provisions a schedule over HTTP and returns its id.
func (e *testEnv) createSchedule(t *testing.T, token, kidName string) string {
	t.Helper()
	w := e.do("POST", "/api/v1/schedules", token,
		fmt.Sprintf(`{"kidName":%q,"startDate":"2026-06-01T00:00:00Z","weekCount":4}`, kidName))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Schedule struct {
			ID string `json:"id"`
		} `json:"schedule"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Schedule.ID, 6)
	return resp.Schedule.ID
}
