package repositories

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/BradenHooton/roster/internal/filter"
	"github.com/BradenHooton/roster/internal/models"
	"github.com/BradenHooton/roster/internal/query"
	"github.com/stretchr/testify/require"
)

// accountStore is what the shared scenarios need from either backend.
type accountStore interface {
	Dialect() query.Dialect
	FindAll(ctx context.Context, p query.Predicate, req models.PageRequest) (*models.Page[*models.Account], error)
	GetByLogin(ctx context.Context, login string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// The fixture covers all four quadrants of {name starts with A} x {has ADMIN},
// plus an account without roles and one whose name and login are not ASCII.
var fixtureAccounts = []*models.Account{
	models.NewAccount("john-doe", "Alice Anders", "alice@example.com", models.RoleAdmin),
	models.NewAccount("(ann) smith", "Ann Smith", "ann@example.com", models.RoleUser),
	models.NewAccount("bob-builder", "Bob Builder", "bob@example.com", models.RoleAdmin, models.RoleUser),
	models.NewAccount("malice", "Malice Moe", "malice@example.com", models.RoleUser),
	models.NewAccount("carol", "carol", "carol@example.com"),
	models.NewAccount("JÖRG-ÄBC", "Ödön Éva", "odon@example.com"),
}

func seedAccounts(t *testing.T, store accountStore) {
	t.Helper()
	ctx := context.Background()

	for _, a := range fixtureAccounts {
		clone := *a
		clone.Roles = append([]models.Role(nil), a.Roles...)
		_, err := store.Create(ctx, &clone)
		require.NoError(t, err, "seeding %s", a.Login)
	}
}

func logins(accounts []*models.Account) []string {
	out := make([]string, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Login)
	}
	return out
}

// findAllLogins runs criteria through the builder and returns every
// matching login across a single large page.
func findAllLogins(t *testing.T, store accountStore, criteria models.FilterCriteria) []string {
	t.Helper()

	b, err := filter.NewBuilder(store.Dialect())
	require.NoError(t, err)

	page, err := store.FindAll(context.Background(), b.Build(criteria), models.PageRequest{Page: 0, Size: 100})
	require.NoError(t, err)
	require.Equal(t, int64(len(page.Items)), page.Total)

	return logins(page.Items)
}

type filterScenario struct {
	name     string
	criteria models.FilterCriteria
	want     []string
}

var filterScenarios = []filterScenario{
	{
		name: "no criteria returns every account",
		want: []string{"john-doe", "(ann) smith", "bob-builder", "malice", "carol", "JÖRG-ÄBC"},
	},
	{
		name:     "empty name is the same as no criteria",
		criteria: models.FilterCriteria{NameContains: ""},
		want:     []string{"john-doe", "(ann) smith", "bob-builder", "malice", "carol", "JÖRG-ÄBC"},
	},
	{
		name:     "name is prefix only",
		criteria: models.FilterCriteria{NameContains: "Ali"},
		want:     []string{"john-doe"},
	},
	{
		name:     "name ignores case",
		criteria: models.FilterCriteria{NameContains: "aLI"},
		want:     []string{"john-doe"},
	},
	{
		name:     "name prefix with non-ascii letters",
		criteria: models.FilterCriteria{NameContains: "Öd"},
		want:     []string{"JÖRG-ÄBC"},
	},
	{
		name:     "name ignores case of non-ascii letters",
		criteria: models.FilterCriteria{NameContains: "öDÖ"},
		want:     []string{"JÖRG-ÄBC"},
	},
	{
		name:     "login ignores case of non-ascii letters",
		criteria: models.FilterCriteria{LoginContains: "jörg"},
		want:     []string{"JÖRG-ÄBC"},
	},
	{
		name:     "login normalization spans non-ascii letters",
		criteria: models.FilterCriteria{LoginContains: "JÖRG ä"},
		want:     []string{"JÖRG-ÄBC"},
	},
	{
		name:     "login substring after normalization",
		criteria: models.FilterCriteria{LoginContains: "ndo"},
		want:     []string{"john-doe"},
	},
	{
		name:     "login with separators in the input",
		criteria: models.FilterCriteria{LoginContains: "John Doe"},
		want:     []string{"john-doe"},
	},
	{
		name:     "login parentheses are stripped from the column",
		criteria: models.FilterCriteria{LoginContains: "annsm"},
		want:     []string{"(ann) smith"},
	},
	{
		name:     "login wildcard characters match literally",
		criteria: models.FilterCriteria{LoginContains: "o_n"},
		want:     []string{},
	},
	{
		name:     "single role",
		criteria: models.FilterCriteria{Roles: []models.Role{models.RoleAdmin}},
		want:     []string{"john-doe", "bob-builder"},
	},
	{
		name:     "roles match any",
		criteria: models.FilterCriteria{Roles: []models.Role{models.RoleAdmin, models.RoleUser}},
		want:     []string{"john-doe", "(ann) smith", "bob-builder", "malice"},
	},
	{
		name:     "name and role are conjoined",
		criteria: models.FilterCriteria{NameContains: "A", Roles: []models.Role{models.RoleAdmin}},
		want:     []string{"john-doe"},
	},
	{
		name: "all three groups",
		criteria: models.FilterCriteria{
			NameContains:  "b",
			LoginContains: "builder",
			Roles:         []models.Role{models.RoleUser},
		},
		want: []string{"bob-builder"},
	},
}

func runFilterScenarios(t *testing.T, store accountStore) {
	for _, sc := range filterScenarios {
		t.Run(sc.name, func(t *testing.T) {
			require.ElementsMatch(t, sc.want, findAllLogins(t, store, sc.criteria))
		})
	}
}
