package observability

import (
	"strconv"

	"github.com/mmuslimabdulj/goat-board/internal/history"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var _ history.Observer = (*Metrics)(nil)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// History metrics
	HistoryAppends     prometheus.Counter
	HistoryEvictions   prometheus.Counter
	HistoryAppendBytes prometheus.Histogram
	HistoryRejected    *prometheus.CounterVec

	// Delivery metrics
	WSClients    prometheus.Gauge
	HTTPRequests *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics on registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		HistoryAppends: factory.NewCounter(prometheus.CounterOpts{
			Name: "goatboard_history_appends_total",
			Help: "Total number of records appended to the history ring",
		}),
		HistoryEvictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "goatboard_history_evictions_total",
			Help: "Total number of records evicted from the history ring",
		}),
		HistoryAppendBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "goatboard_history_append_bytes",
			Help:    "Size of appended records in bytes",
			Buckets: prometheus.ExponentialBuckets(16, 2, 8),
		}),
		HistoryRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goatboard_history_rejected_total",
				Help: "Total number of appends rejected by the history ring",
			},
			[]string{"reason"},
		),
		WSClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "goatboard_ws_clients",
			Help: "Number of connected live feed clients",
		}),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goatboard_http_requests_total",
				Help: "Total number of HTTP requests by route and status",
			},
			[]string{"route", "status"},
		),
	}
}

// RecordAppended implements history.Observer.
func (m *Metrics) RecordAppended(size int) {
	m.HistoryAppends.Inc()
	m.HistoryAppendBytes.Observe(float64(size))
}

// RecordsEvicted implements history.Observer.
func (m *Metrics) RecordsEvicted(n int) {
	m.HistoryEvictions.Add(float64(n))
}

// AppendRejected implements history.Observer.
func (m *Metrics) AppendRejected(reason string) {
	m.HistoryRejected.WithLabelValues(reason).Inc()
}

// ClientConnected increments the live feed gauge.
func (m *Metrics) ClientConnected() {
	m.WSClients.Inc()
}

// ClientDisconnected decrements the live feed gauge.
func (m *Metrics) ClientDisconnected() {
	m.WSClients.Dec()
}

// IncHTTPRequest counts a served request.
func (m *Metrics) IncHTTPRequest(route string, status int) {
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
