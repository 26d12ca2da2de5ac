// Package metrics exposes Prometheus collectors for friendsplit.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/friendsplit/internal/models"
)

const namespace = "friendsplit"

// Metrics holds the application collectors. It satisfies ledger.Observer.
type Metrics struct {
	registry *prometheus.Registry

	friendsAdded    prometheus.Counter
	splitsSubmitted *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	activeSessions  prometheus.Gauge
}

// New registers all collectors on a fresh registry, including the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		friendsAdded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "friends_added_total",
			Help:      "Friends added across all sessions.",
		}),
		splitsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "splits_submitted_total",
			Help:      "Bill splits applied to a friend's balance, by payer.",
		}, []string{"payer"}),
		rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_rejections_total",
			Help:      "Inputs rejected by validation, by operation and field.",
		}, []string{"op", "field"}),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently held in memory.",
		}),
	}
}

func (m *Metrics) FriendAdded() { m.friendsAdded.Inc() }

func (m *Metrics) SplitSubmitted(payer models.Payer) {
	m.splitsSubmitted.WithLabelValues(string(payer)).Inc()
}

func (m *Metrics) Rejected(op, field string) {
	m.rejections.WithLabelValues(op, field).Inc()
}

// SessionsActive records the number of live sessions.
func (m *Metrics) SessionsActive(n int) { m.activeSessions.Set(float64(n)) }

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
