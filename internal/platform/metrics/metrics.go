package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"giveaway-bot/internal/domain/giveaway"
)

const namespace = "giveaway_bot"

// Metrics holds the bot's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	giveawaysCreated   prometheus.Counter
	entrantsRegistered prometheus.Counter
	giveawaysFinalized *prometheus.CounterVec
	giveawaysCancelled prometheus.Counter
	rerolls            prometheus.Counter
	activeGiveaways    prometheus.Gauge
	setupSessions      *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		giveawaysCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "giveaways_created_total",
			Help:      "Giveaways started.",
		}),
		entrantsRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entrants_registered_total",
			Help:      "Distinct entries accepted across all giveaways.",
		}),
		giveawaysFinalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "giveaways_finalized_total",
			Help:      "Giveaways that reached a final state, by outcome.",
		}, []string{"outcome"}),
		giveawaysCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "giveaways_cancelled_total",
			Help:      "Giveaways cancelled by an administrator.",
		}),
		rerolls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rerolls_total",
			Help:      "Successful reroll operations.",
		}),
		activeGiveaways: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_giveaways",
			Help:      "Giveaways currently counting down.",
		}),
		setupSessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "setup_sessions_total",
			Help:      "Finished setup sessions, by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.giveawaysCreated,
		m.entrantsRegistered,
		m.giveawaysFinalized,
		m.giveawaysCancelled,
		m.rerolls,
		m.activeGiveaways,
		m.setupSessions,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// OnEvent implements giveaway.Listener.
func (m *Metrics) OnEvent(_ context.Context, e giveaway.Event) {
	switch e.Type {
	case giveaway.EventCreated:
		m.giveawaysCreated.Inc()
		m.activeGiveaways.Inc()
	case giveaway.EventEntered:
		m.entrantsRegistered.Inc()
	case giveaway.EventEnded:
		m.giveawaysFinalized.WithLabelValues(string(e.Giveaway.State)).Inc()
		m.activeGiveaways.Dec()
	case giveaway.EventCancelled:
		m.giveawaysCancelled.Inc()
		if e.PreviousState == giveaway.StateActive {
			m.activeGiveaways.Dec()
		}
	case giveaway.EventRerolled:
		m.rerolls.Inc()
	}
}

// SetupFinished records how a setup session ended.
func (m *Metrics) SetupFinished(outcome string) {
	m.setupSessions.WithLabelValues(outcome).Inc()
}
