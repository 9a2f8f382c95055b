package background

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/roster/internal/filter"
	"github.com/BradenHooton/roster/internal/metrics"
	"github.com/BradenHooton/roster/internal/models"
	"github.com/BradenHooton/roster/internal/query"
)

// AccountCounter pages through accounts matching a predicate.
type AccountCounter interface {
	FindAll(ctx context.Context, p query.Predicate, req models.PageRequest) (*models.Page[*models.Account], error)
}

// StatsCollector periodically publishes account counts per role
type StatsCollector struct {
	repo     AccountCounter
	builder  *filter.Builder
	metrics  *metrics.Metrics
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewStatsCollector creates a new stats collector
func NewStatsCollector(
	repo AccountCounter,
	builder *filter.Builder,
	m *metrics.Metrics,
	logger *slog.Logger,
	interval time.Duration,
) *StatsCollector {
	return &StatsCollector{
		repo:     repo,
		builder:  builder,
		metrics:  m,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the collection loop until Stop is called or ctx is done
func (sc *StatsCollector) Start(ctx context.Context) {
	ticker := time.NewTicker(sc.interval)
	defer ticker.Stop()

	// Run immediately on startup
	sc.Collect(ctx)

	for {
		select {
		case <-ticker.C:
			sc.Collect(ctx)
		case <-sc.stopCh:
			sc.logger.Info("stats collector stopped")
			return
		case <-ctx.Done():
			sc.logger.Info("stats collector context cancelled")
			return
		}
	}
}

// Stop ends the collection loop
func (sc *StatsCollector) Stop() {
	sc.stopOnce.Do(func() { close(sc.stopCh) })
}

// Collect counts all accounts and the holders of each role once.
func (sc *StatsCollector) Collect(ctx context.Context) {
	collectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	sc.count(collectCtx, "all", models.FilterCriteria{})
	for _, role := range models.Roles() {
		sc.count(collectCtx, role.String(), models.FilterCriteria{Roles: []models.Role{role}})
	}
}

func (sc *StatsCollector) count(ctx context.Context, label string, criteria models.FilterCriteria) {
	// a one-row page is enough; only the total is used
	page, err := sc.repo.FindAll(ctx, sc.builder.Build(criteria), models.PageRequest{Page: 0, Size: 1})
	if err != nil {
		sc.logger.Error("failed to count accounts", slog.String("role", label), slog.Any("error", err))
		return
	}
	sc.metrics.SetAccounts(label, page.Total)
}
