package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/BradenHooton/roster/internal/config"
	"github.com/BradenHooton/roster/internal/filter"
	"github.com/BradenHooton/roster/internal/metrics"
	"github.com/BradenHooton/roster/internal/models"
	"github.com/BradenHooton/roster/internal/query"
	pkgauth "github.com/BradenHooton/roster/pkg/auth"
	pkglogger "github.com/BradenHooton/roster/pkg/logger"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	FindAll(ctx context.Context, p query.Predicate, req models.PageRequest) (*models.Page[*models.Account], error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByLogin(ctx context.Context, login string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
}

// AccountService serves filtered, paginated account listings
type AccountService struct {
	repo        AccountRepository
	builder     *filter.Builder
	listing     config.ListingConfig
	metrics     *metrics.Metrics
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewAccountService creates a new AccountService
func NewAccountService(
	repo AccountRepository,
	builder *filter.Builder,
	listing config.ListingConfig,
	m *metrics.Metrics,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *AccountService {
	return &AccountService{
		repo:        repo,
		builder:     builder,
		listing:     listing,
		metrics:     m,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// ListPage returns one page of the accounts matching criteria. Store errors
// are returned as is.
func (s *AccountService) ListPage(ctx context.Context, pageIndex, pageSize int, sort []models.SortKey, criteria models.FilterCriteria) (*models.Page[*models.Account], error) {
	req := models.PageRequest{Page: pageIndex, Size: pageSize, Sort: sort}
	if err := s.validatePageRequest(req); err != nil {
		return nil, err
	}

	predicate := s.builder.Build(criteria)
	terms := s.builder.Terms(criteria)

	start := time.Now()
	page, err := s.repo.FindAll(ctx, predicate, req)
	elapsed := time.Since(start)

	var total int64
	if page != nil {
		total = page.Total
	}
	s.metrics.ObserveListing(terms, elapsed, total, err)

	if err != nil {
		s.logger.Error("failed to list accounts",
			slog.Any("terms", terms),
			slog.Int("page", pageIndex),
			slog.Int("size", pageSize),
			slog.Any("error", err))
		return nil, err
	}

	s.logger.Debug("listed accounts",
		slog.Any("terms", terms),
		slog.Int("page", pageIndex),
		slog.Int("size", pageSize),
		slog.Int64("total", page.Total),
		slog.Duration("elapsed", elapsed))

	return page, nil
}

func (s *AccountService) validatePageRequest(req models.PageRequest) error {
	if req.Page < 0 {
		return fmt.Errorf("%w: page must not be negative", models.ErrBadRequest)
	}
	if req.Size < 1 || req.Size > s.listing.MaxPageSize {
		return fmt.Errorf("%w: size must be between 1 and %d", models.ErrBadRequest, s.listing.MaxPageSize)
	}
	if !req.InRange() {
		return fmt.Errorf("%w: page %d is out of range", models.ErrBadRequest, req.Page)
	}
	for _, key := range req.Sort {
		if !slices.Contains(filter.SortProperties, key.Property) {
			return fmt.Errorf("%w: cannot sort by %q", models.ErrBadRequest, key.Property)
		}
	}
	return nil
}

// DefaultPageSize is the page size used when a request does not name one.
func (s *AccountService) DefaultPageSize() int {
	return s.listing.DefaultPageSize
}

// Roles returns the selectable roles in enumeration order.
func (s *AccountService) Roles() []models.Role {
	return models.Roles()
}

// EnsureAdmin creates the bootstrap administrator if no account uses its
// login yet. An empty login disables bootstrapping.
func (s *AccountService) EnsureAdmin(ctx context.Context, cfg config.BootstrapConfig) error {
	if cfg.AdminLogin == "" {
		return nil
	}

	existing, err := s.repo.GetByLogin(ctx, cfg.AdminLogin)
	if err == nil {
		if !existing.HasRole(models.RoleAdmin) {
			s.logger.Warn("bootstrap login exists without ADMIN role", slog.String("account_id", existing.ID))
		}
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to look up bootstrap admin: %w", err)
	}

	if err := pkgauth.ValidatePassword(cfg.AdminPassword); err != nil {
		return fmt.Errorf("ADMIN_PASSWORD rejected: %w", err)
	}

	hash, err := pkgauth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	account := models.NewAccount(cfg.AdminLogin, cfg.AdminLogin, cfg.AdminEmail, models.RoleAdmin, models.RoleUser)
	account.PasswordHash = hash

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			// another instance won the race
			return nil
		}
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	s.logger.Info("bootstrap admin created", slog.String("account_id", created.ID))
	s.auditLogger.LogAccountAction("bootstrap_admin_created", created.ID, nil)
	return nil
}
