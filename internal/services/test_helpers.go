package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/BradenHooton/roster/internal/models"
	"github.com/BradenHooton/roster/internal/query"
	pkglogger "github.com/BradenHooton/roster/pkg/logger"
)

// MockAccountRepository implements AccountRepository for testing
type MockAccountRepository struct {
	FindAllFunc    func(ctx context.Context, p query.Predicate, req models.PageRequest) (*models.Page[*models.Account], error)
	GetByIDFunc    func(ctx context.Context, id string) (*models.Account, error)
	GetByLoginFunc func(ctx context.Context, login string) (*models.Account, error)
	CreateFunc     func(ctx context.Context, account *models.Account) (*models.Account, error)
}

func (m *MockAccountRepository) FindAll(ctx context.Context, p query.Predicate, req models.PageRequest) (*models.Page[*models.Account], error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx, p, req)
	}
	return &models.Page[*models.Account]{Items: []*models.Account{}, Page: req.Page, Size: req.Size}, nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) GetByLogin(ctx context.Context, login string) (*models.Account, error) {
	if m.GetByLoginFunc != nil {
		return m.GetByLoginFunc(ctx, login)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	return nil, models.ErrInternalServer
}

// NewTestAccount creates an active account for testing
func NewTestAccount(id, login, name string, roles ...models.Role) *models.Account {
	a := models.NewAccount(login, name, login+"@example.com", roles...)
	a.ID = id
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	return a
}

func testLoggers() (*slog.Logger, *pkglogger.AuditLogger) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return logger, pkglogger.NewAuditLogger(logger)
}
