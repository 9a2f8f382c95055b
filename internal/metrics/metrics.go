package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "roster"

// Metrics holds the collectors for the account listing and login paths.
// Each instance owns its registry so tests do not share global state.
type Metrics struct {
	registry      *prometheus.Registry
	listDuration  *prometheus.HistogramVec
	filterTerms   *prometheus.CounterVec
	listResults   prometheus.Histogram
	loginAttempts *prometheus.CounterVec
	accounts      *prometheus.GaugeVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		listDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "account_list_duration_seconds",
			Help:      "Latency of filtered account page queries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		filterTerms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "account_filter_terms_total",
			Help:      "Filter terms applied to account listings, by term.",
		}, []string{"term"}),
		listResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "account_list_matches",
			Help:      "Total matching accounts per listing request.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		accounts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "accounts",
			Help:      "Stored accounts by role; role=\"all\" counts every account.",
		}, []string{"role"}),
	}

	m.registry.MustRegister(
		m.listDuration,
		m.filterTerms,
		m.listResults,
		m.loginAttempts,
		m.accounts,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveListing records one listing request. total is ignored when err is set.
func (m *Metrics) ObserveListing(terms []string, elapsed time.Duration, total int64, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.listDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())

	for _, term := range terms {
		m.filterTerms.WithLabelValues(term).Inc()
	}

	if err == nil {
		m.listResults.Observe(float64(total))
	}
}

// ObserveLogin records a login attempt result such as "ok" or "invalid".
func (m *Metrics) ObserveLogin(result string) {
	m.loginAttempts.WithLabelValues(result).Inc()
}

// SetAccounts publishes the number of accounts holding role.
func (m *Metrics) SetAccounts(role string, n int64) {
	m.accounts.WithLabelValues(role).Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
