package background

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/BradenHooton/roster/internal/filter"
	"github.com/BradenHooton/roster/internal/metrics"
	"github.com/BradenHooton/roster/internal/models"
	"github.com/BradenHooton/roster/internal/query"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRepo struct {
	totals map[string]int64 // keyed by the compiled WHERE clause
	err    error
	calls  int
}

var compiler = query.NewCompiler(query.Postgres, query.Schema{
	Alias:     "a",
	KeyColumn: "id",
	Collections: map[query.Collection]query.CollectionTable{
		filter.Roles: {Table: "account_roles", OwnerColumn: "account_id", ValueColumn: "role"},
	},
})

func (r *countingRepo) FindAll(ctx context.Context, p query.Predicate, req models.PageRequest) (*models.Page[*models.Account], error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	clause, err := compiler.Where(p, 0)
	if err != nil {
		return nil, err
	}
	key := clause.SQL
	if len(clause.Args) > 0 {
		key = clause.Args[0].(string)
	}
	return &models.Page[*models.Account]{Total: r.totals[key], Page: req.Page, Size: req.Size}, nil
}

func newCollector(t *testing.T, repo AccountCounter) (*StatsCollector, *metrics.Metrics) {
	t.Helper()
	b, err := filter.NewBuilder(query.Postgres)
	require.NoError(t, err)
	m := metrics.New()
	return NewStatsCollector(repo, b, m, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Hour), m
}

func TestStatsCollector_Collect(t *testing.T) {
	repo := &countingRepo{totals: map[string]int64{"1 = 1": 5, "ADMIN": 2, "USER": 4}}
	sc, m := newCollector(t, repo)

	sc.Collect(context.Background())

	assert.Equal(t, 3, repo.calls)
	out, err := testutil.GatherAndCount(m.Registry(), "roster_accounts")
	require.NoError(t, err)
	assert.Equal(t, 3, out)
}

func TestStatsCollector_ErrorsAreLogged(t *testing.T) {
	repo := &countingRepo{err: errors.New("db down")}
	sc, m := newCollector(t, repo)

	sc.Collect(context.Background())

	n, err := testutil.GatherAndCount(m.Registry(), "roster_accounts")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStatsCollector_StartStop(t *testing.T) {
	repo := &countingRepo{totals: map[string]int64{}}
	sc, _ := newCollector(t, repo)

	done := make(chan struct{})
	go func() {
		sc.Start(context.Background())
		close(done)
	}()

	sc.Stop()
	sc.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("collector did not stop")
	}
	assert.Equal(t, 3, repo.calls)
}
