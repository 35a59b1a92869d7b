package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// outcome labels
const (
	ResultFound    = "found"
	ResultNoRoute  = "no_route"
	ResultInvalid  = "invalid"
	ResultFail     = "fail"
	ResultApplied  = "applied"
	ResultRejected = "rejected"
)

// Metric holds the service collectors on its own registry. a nil *Metric records nothing.
type Metric struct {
	registry *prometheus.Registry

	routeQueries      *prometheus.CounterVec
	routeDuration     prometheus.Histogram
	settledNodes      prometheus.Histogram
	speedUpdates      *prometheus.CounterVec
	activeConnections prometheus.Gauge
}

func NewMetric() *Metric {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metric{
		registry: reg,
		routeQueries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "livenav_route_queries_total",
			Help: "Total route queries by result",
		}, []string{"result"}),
		routeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "livenav_route_query_duration_seconds",
			Help:    "Route query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 16), // 10us to ~330ms
		}),
		settledNodes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "livenav_route_settled_nodes",
			Help:    "Number of vertices settled per route query",
			Buckets: prometheus.ExponentialBuckets(1, 4, 12),
		}),
		speedUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "livenav_speed_updates_total",
			Help: "Total speed observations by result",
		}, []string{"result"}),
		activeConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "livenav_tcp_active_connections",
			Help: "Currently open line protocol connections",
		}),
	}
}

func (m *Metric) ObserveRoute(result string, took time.Duration, numSettledNodes int) {
	if m == nil {
		return
	}
	m.routeQueries.WithLabelValues(result).Inc()
	m.routeDuration.Observe(took.Seconds())
	if numSettledNodes > 0 {
		m.settledNodes.Observe(float64(numSettledNodes))
	}
}

func (m *Metric) ObserveSpeedUpdate(result string) {
	if m == nil {
		return
	}
	m.speedUpdates.WithLabelValues(result).Inc()
}

func (m *Metric) ConnectionOpened() {
	if m == nil {
		return
	}
	m.activeConnections.Inc()
}

func (m *Metric) ConnectionClosed() {
	if m == nil {
		return
	}
	m.activeConnections.Dec()
}

// Handler serves the registry in the prometheus text format.
func (m *Metric) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
