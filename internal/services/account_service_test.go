package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/BradenHooton/roster/internal/config"
	"github.com/BradenHooton/roster/internal/filter"
	"github.com/BradenHooton/roster/internal/metrics"
	"github.com/BradenHooton/roster/internal/models"
	"github.com/BradenHooton/roster/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testListing = config.ListingConfig{DefaultPageSize: 20, MaxPageSize: 100}

func newTestAccountService(t *testing.T, repo AccountRepository) (*AccountService, *filter.Builder) {
	t.Helper()
	builder, err := filter.NewBuilder(query.Postgres)
	require.NoError(t, err)
	logger, audit := testLoggers()
	return NewAccountService(repo, builder, testListing, metrics.New(), logger, audit), builder
}

func TestAccountService_ListPage_PassesPredicateAndRequest(t *testing.T) {
	criteria := models.FilterCriteria{
		NameContains:  "Al",
		LoginContains: "john-doe",
		Roles:         []models.Role{models.RoleAdmin},
	}
	sort := []models.SortKey{{Property: "name", Descending: true}}

	var gotPredicate query.Predicate
	var gotRequest models.PageRequest
	want := &models.Page[*models.Account]{
		Items: []*models.Account{NewTestAccount("1", "john-doe", "Alice", models.RoleAdmin)},
		Page:  2,
		Size:  10,
		Total: 21,
	}

	repo := &MockAccountRepository{
		FindAllFunc: func(ctx context.Context, p query.Predicate, req models.PageRequest) (*models.Page[*models.Account], error) {
			gotPredicate, gotRequest = p, req
			return want, nil
		},
	}
	svc, builder := newTestAccountService(t, repo)

	page, err := svc.ListPage(context.Background(), 2, 10, sort, criteria)

	require.NoError(t, err)
	assert.Same(t, want, page)
	assert.Equal(t, builder.Build(criteria), gotPredicate)
	assert.Equal(t, models.PageRequest{Page: 2, Size: 10, Sort: sort}, gotRequest)
}

func TestAccountService_ListPage_NoCriteriaIsIdentity(t *testing.T) {
	var gotPredicate query.Predicate
	repo := &MockAccountRepository{
		FindAllFunc: func(ctx context.Context, p query.Predicate, req models.PageRequest) (*models.Page[*models.Account], error) {
			gotPredicate = p
			return &models.Page[*models.Account]{}, nil
		},
	}
	svc, _ := newTestAccountService(t, repo)

	_, err := svc.ListPage(context.Background(), 0, 20, nil, models.FilterCriteria{})

	require.NoError(t, err)
	assert.True(t, query.IsAll(gotPredicate))
}

func TestAccountService_ListPage_InvalidRequest(t *testing.T) {
	tests := []struct {
		name string
		page int
		size int
		sort []models.SortKey
	}{
		{"negative page", -1, 10, nil},
		{"zero size", 0, 0, nil},
		{"size above max", 0, testListing.MaxPageSize + 1, nil},
		{"offset overflows", math.MaxInt/20 + 1, 20, nil},
		{"unsortable property", 0, 10, []models.SortKey{{Property: "password_hash"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			repo := &MockAccountRepository{
				FindAllFunc: func(ctx context.Context, p query.Predicate, req models.PageRequest) (*models.Page[*models.Account], error) {
					called = true
					return nil, nil
				},
			}
			svc, _ := newTestAccountService(t, repo)

			page, err := svc.ListPage(context.Background(), tt.page, tt.size, tt.sort, models.FilterCriteria{})

			assert.ErrorIs(t, err, models.ErrBadRequest)
			assert.Nil(t, page)
			assert.False(t, called)
		})
	}
}

func TestAccountService_ListPage_PropagatesStoreErrors(t *testing.T) {
	storeErr := errors.New("connection reset by peer")

	for _, want := range []error{storeErr, context.Canceled, context.DeadlineExceeded} {
		repo := &MockAccountRepository{
			FindAllFunc: func(ctx context.Context, p query.Predicate, req models.PageRequest) (*models.Page[*models.Account], error) {
				return nil, want
			},
		}
		svc, _ := newTestAccountService(t, repo)

		page, err := svc.ListPage(context.Background(), 0, 10, nil, models.FilterCriteria{NameContains: "a"})

		assert.Nil(t, page)
		assert.True(t, err == want, "got %v, want %v unmodified", err, want)
	}
}

func TestAccountService_Roles(t *testing.T) {
	svc, _ := newTestAccountService(t, &MockAccountRepository{})

	assert.Equal(t, []models.Role{models.RoleAdmin, models.RoleUser}, svc.Roles())
	assert.Equal(t, testListing.DefaultPageSize, svc.DefaultPageSize())
}

func TestAccountService_EnsureAdmin(t *testing.T) {
	bootstrap := config.BootstrapConfig{
		AdminLogin:    "root",
		AdminPassword: "bootstrap secret 42",
		AdminEmail:    "root@example.com",
	}

	t.Run("creates missing admin", func(t *testing.T) {
		var created *models.Account
		repo := &MockAccountRepository{
			CreateFunc: func(ctx context.Context, a *models.Account) (*models.Account, error) {
				a.ID = "new-id"
				created = a
				return a, nil
			},
		}
		svc, _ := newTestAccountService(t, repo)

		require.NoError(t, svc.EnsureAdmin(context.Background(), bootstrap))

		require.NotNil(t, created)
		assert.Equal(t, "root", created.Login)
		assert.True(t, created.HasRole(models.RoleAdmin))
		assert.NotEmpty(t, created.PasswordHash)
		assert.NotEqual(t, bootstrap.AdminPassword, created.PasswordHash)
	})

	t.Run("existing login is left alone", func(t *testing.T) {
		repo := &MockAccountRepository{
			GetByLoginFunc: func(ctx context.Context, login string) (*models.Account, error) {
				return NewTestAccount("1", login, "Root", models.RoleAdmin), nil
			},
			CreateFunc: func(ctx context.Context, a *models.Account) (*models.Account, error) {
				t.Fatal("create must not be called")
				return nil, nil
			},
		}
		svc, _ := newTestAccountService(t, repo)

		assert.NoError(t, svc.EnsureAdmin(context.Background(), bootstrap))
	})

	t.Run("disabled without login", func(t *testing.T) {
		svc, _ := newTestAccountService(t, &MockAccountRepository{})
		assert.NoError(t, svc.EnsureAdmin(context.Background(), config.BootstrapConfig{}))
	})

	t.Run("weak password", func(t *testing.T) {
		svc, _ := newTestAccountService(t, &MockAccountRepository{})
		weak := bootstrap
		weak.AdminPassword = "short"
		assert.Error(t, svc.EnsureAdmin(context.Background(), weak))
	})
}
