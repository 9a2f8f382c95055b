package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/BradenHooton/roster/internal/auth"
	"github.com/BradenHooton/roster/internal/metrics"
	"github.com/BradenHooton/roster/internal/models"
	pkgauth "github.com/BradenHooton/roster/pkg/auth"
	pkglogger "github.com/BradenHooton/roster/pkg/logger"
)

// AuthService handles authentication business logic
type AuthService struct {
	repo        AccountRepository
	tm          *auth.TokenManager
	metrics     *metrics.Metrics
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger

	// compared against when the login is unknown, so a miss costs one bcrypt round too
	dummyOnce sync.Once
	dummyHash string
	hashCost  int
}

// NewAuthService creates a new AuthService
func NewAuthService(repo AccountRepository, tm *auth.TokenManager, m *metrics.Metrics, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		repo:        repo,
		tm:          tm,
		metrics:     m,
		logger:      logger,
		auditLogger: auditLogger,
		hashCost:    pkgauth.BcryptCost,
	}
}

// AuthResponse represents the response from a successful login
type AuthResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int64           `json:"expires_in"`
	Account     *models.Account `json:"-"`
}

// Login authenticates an account and issues an access token
func (s *AuthService) Login(ctx context.Context, login, password, ipAddress string) (*AuthResponse, error) {
	if login = strings.TrimSpace(login); login == "" || password == "" {
		s.metrics.ObserveLogin("invalid")
		return nil, models.ErrUnauthorized
	}

	account, err := s.repo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			_ = pkgauth.ComparePassword(s.dummy(), password)
			s.fail(login, "", ipAddress, "invalid_credentials")
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get account by login", slog.Any("error", err))
		s.metrics.ObserveLogin("error")
		return nil, models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(account.PasswordHash, password); err != nil {
		s.fail(login, account.ID, ipAddress, "invalid_credentials")
		return nil, models.ErrUnauthorized
	}

	// checked after the password so disabled accounts are not enumerable
	if !account.Active {
		s.fail(login, account.ID, ipAddress, "account_disabled")
		return nil, models.ErrAccountDisabled
	}

	token, err := s.tm.GenerateAccessToken(account)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.String("account_id", account.ID), slog.Any("error", err))
		s.metrics.ObserveLogin("error")
		return nil, models.ErrInternalServer
	}

	s.metrics.ObserveLogin("ok")
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		AccountID: account.ID,
		Login:     login,
		IPAddress: ipAddress,
		Success:   true,
	})

	return &AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tm.AccessTokenExpiry().Seconds()),
		Account:     account,
	}, nil
}

func (s *AuthService) fail(login, accountID, ipAddress, reason string) {
	s.metrics.ObserveLogin("invalid")
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     "login_failed",
		AccountID:     accountID,
		Login:         login,
		IPAddress:     ipAddress,
		Success:       false,
		FailureReason: reason,
	})
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := pkgauth.HashPasswordWithCost("roster-timing-equalizer", s.hashCost)
		if err != nil {
			s.logger.Error("failed to prepare dummy hash", slog.Any("error", err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
