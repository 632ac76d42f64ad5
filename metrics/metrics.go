// Package metrics exposes engine and HTTP counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/learnquest/game/rule"
	"github.com/kasuganosora/learnquest/resource"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "learnquest"

// Metrics holds every collector of the service. It implements engine.Observer.
type Metrics struct {
	IntentTotal     *prometheus.CounterVec   // intents by name and result
	DrawTotal       *prometheus.CounterVec   // draw outcomes by banner and rarity
	ConflictTotal   prometheus.Counter       // stale snapshot writes
	CatalogReloads  *prometheus.CounterVec   // hot reloads by result
	RequestDuration *prometheus.HistogramVec // HTTP latency

	registry *prometheus.Registry
}

// New creates the collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		IntentTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "intents_total",
				Help:      "Intents handled by the engine",
			},
			[]string{"intent", "result"}, // result: ok or a rejection reason
		),
		DrawTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gacha_draws_total",
				Help:      "Gacha draw outcomes",
			},
			[]string{"banner", "rarity"},
		),
		ConflictTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshot_conflicts_total",
				Help:      "Writes rejected by the optimistic version check",
			},
		),
		CatalogReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_reloads_total",
				Help:      "Catalog hot reloads",
			},
			[]string{"result"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency (seconds)",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"method", "route", "status"},
		),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(
		m.IntentTotal,
		m.DrawTotal,
		m.ConflictTotal,
		m.CatalogReloads,
		m.RequestDuration,
	)
	return m
}

// Intent records one intent outcome.
func (m *Metrics) Intent(name string, reason rule.Reason) {
	result := "ok"
	if reason != "" {
		result = string(reason)
	}
	m.IntentTotal.WithLabelValues(name, result).Inc()
}

// Draw records one gacha outcome.
func (m *Metrics) Draw(banner string, rarity resource.Rarity) {
	m.DrawTotal.WithLabelValues(banner, string(rarity)).Inc()
}

func (m *Metrics) Conflict() { m.ConflictTotal.Inc() }

func (m *Metrics) CatalogReload(ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.CatalogReloads.WithLabelValues(result).Inc()
}

// Middleware observes request latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
