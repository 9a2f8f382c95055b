package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/BradenHooton/roster/internal/auth"
	"github.com/BradenHooton/roster/internal/config"
	"github.com/BradenHooton/roster/internal/database"
	"github.com/BradenHooton/roster/internal/filter"
	"github.com/BradenHooton/roster/internal/handlers"
	"github.com/BradenHooton/roster/internal/metrics"
	"github.com/BradenHooton/roster/internal/models"
	"github.com/BradenHooton/roster/internal/repositories"
	"github.com/BradenHooton/roster/internal/services"
	pkgauth "github.com/BradenHooton/roster/pkg/auth"
	pkglogger "github.com/BradenHooton/roster/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const adminPassword = "correct horse 42"

type testServer struct {
	handler http.Handler
	repo    *repositories.SQLiteAccountRepository
}

// newTestServer wires the full stack over an in-memory SQLite store.
func newTestServer(t *testing.T, health func(context.Context) error) *testServer {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	audit := pkglogger.NewAuditLogger(logger)

	store, err := database.OpenSQLite(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))

	repo := repositories.NewSQLiteAccountRepository(store)
	if health == nil {
		health = store.HealthCheck
	}

	builder, err := filter.NewBuilder(repo.Dialect())
	require.NoError(t, err)

	cfg := &config.Config{
		Server:  config.ServerConfig{Env: "test", WriteTimeout: 5 * time.Second},
		Auth:    config.AuthConfig{JWTSecret: "test-secret-32-characters-long!!", AccessTokenExpiry: time.Minute, LoginRateLimit: 100},
		Listing: config.ListingConfig{DefaultPageSize: 2, MaxPageSize: 10, RateLimit: 100, StatsInterval: time.Minute},
	}

	m := metrics.New()
	tm := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenExpiry)
	accountService := services.NewAccountService(repo, builder, cfg.Listing, m, logger, audit)
	authService := services.NewAuthService(repo, tm, m, logger, audit)

	hash, err := pkgauth.HashPasswordWithCost(adminPassword, bcrypt.MinCost)
	require.NoError(t, err)

	admin := models.NewAccount("root", "Alice Admin", "root@example.com", models.RoleAdmin)
	admin.PasswordHash = hash
	user := models.NewAccount("john-doe", "Malice User", "john@example.com", models.RoleUser)
	user.PasswordHash = hash
	for _, a := range []*models.Account{admin, user, models.NewAccount("carol", "Carol", "carol@example.com")} {
		_, err := repo.Create(ctx, a)
		require.NoError(t, err)
	}

	handler := NewRouter(cfg, Dependencies{
		AccountHandler: handlers.NewAccountHandler(accountService, logger),
		AuthHandler:    handlers.NewAuthHandler(authService, nil),
		TokenManager:   tm,
		Accounts:       repo,
		Metrics:        m,
		HealthCheck:    health,
		Logger:         logger,
	})

	return &testServer{handler: handler, repo: repo}
}

func (s *testServer) do(t *testing.T, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T, login string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/auth/login", "", `{"login":"`+login+`","password":"`+adminPassword+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp services.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken
}

func TestAccountsRoutes_AdminListsAndFilters(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login(t, "root")

	t.Run("default page", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/accounts", token, "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp handlers.ListAccountsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(3), resp.Total)
		assert.Equal(t, 2, resp.Size)
		assert.True(t, resp.HasNext)
		assert.Len(t, resp.Accounts, 2)
	})

	t.Run("name prefix and login substring", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/accounts?name=ali", token, "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp handlers.ListAccountsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Accounts, 1)
		assert.Equal(t, "root", resp.Accounts[0].Login)

		w = s.do(t, http.MethodGet, "/accounts?login=John%20Doe", token, "")
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Accounts, 1)
		assert.Equal(t, "john-doe", resp.Accounts[0].Login)
	})

	t.Run("roles any of", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/accounts?role=ADMIN&role=user&sort=login,desc", token, "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp handlers.ListAccountsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Accounts, 2)
		assert.Equal(t, "root", resp.Accounts[0].Login)
		assert.Equal(t, "john-doe", resp.Accounts[1].Login)
	})

	t.Run("role options", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/accounts/roles", token, "")
		assert.JSONEq(t, `{"roles":["ADMIN","USER"]}`, w.Body.String())
	})

	t.Run("size above max", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/accounts?size=11", token, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("page whose offset overflows", func(t *testing.T) {
		target := "/accounts?size=2&page=" + strconv.Itoa(math.MaxInt/2+1)
		w := s.do(t, http.MethodGet, target, token, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAccountsRoutes_AccessControl(t *testing.T) {
	s := newTestServer(t, nil)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/accounts", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/accounts", "garbage", "").Code)

	userToken := s.login(t, "john-doe")
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/accounts", userToken, "").Code)

	w := s.do(t, http.MethodPost, "/auth/login", "", `{"login":"root","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","database":"up"}`, w.Body.String())

	s.login(t, "root")
	w = s.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `roster_login_attempts_total{result="ok"} 1`)

	down := newTestServer(t, func(context.Context) error { return errors.New("down") })
	assert.Equal(t, http.StatusServiceUnavailable, down.do(t, http.MethodGet, "/health", "", "").Code)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/nope", "", "").Code)
}
