package net

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the relay's prometheus collectors. Each relay gets its own
// registry so several can run in one process.
type Metrics struct {
	registry *prometheus.Registry

	connections prometheus.Gauge
	relayed     prometheus.Counter
	dropped     prometheus.Counter
	rooms       prometheus.Gauge
}

func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "relay_connections",
			Help:      "Number of open board connections",
		}),
		relayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_frames_relayed_total",
			Help:      "Total number of frames delivered to peers",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_frames_dropped_total",
			Help:      "Total number of frames dropped because a peer's buffer was full",
		}),
		rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "relay_rooms",
			Help:      "Number of boards with at least one connection",
		}),
	}

	registry.MustRegister(m.connections, m.relayed, m.dropped, m.rooms)
	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
