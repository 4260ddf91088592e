// Package metrics provides Prometheus metrics for spanindex
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nainya/spanindex/pkg/document"
)

// Metrics holds all Prometheus metrics for spanindex
type Metrics struct {
	// gRPC request metrics
	GrpcRequestsTotal    *prometheus.CounterVec
	GrpcRequestDuration  *prometheus.HistogramVec
	GrpcRequestsInFlight prometheus.Gauge

	// Index metrics
	LabelsIndexedTotal *prometheus.CounterVec
	FreezeDuration     *prometheus.HistogramVec
	QueriesTotal       *prometheus.CounterVec
	DocumentsTotal     prometheus.Counter

	// Server metrics
	ServerUptimeSeconds prometheus.Gauge
	ServerStartTime     time.Time
}

// NewMetrics creates all collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{
		ServerStartTime: time.Now(),
	}

	m.GrpcRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spanindex_grpc_requests_total",
			Help: "Total number of gRPC requests",
		},
		[]string{"method", "status"},
	)

	m.GrpcRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spanindex_grpc_request_duration_seconds",
			Help:    "Duration of gRPC requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	m.GrpcRequestsInFlight = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "spanindex_grpc_requests_in_flight",
			Help: "Number of gRPC requests currently being processed",
		},
	)

	m.LabelsIndexedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spanindex_labels_indexed_total",
			Help: "Total number of labels frozen into an index",
		},
		[]string{"kind"},
	)

	m.FreezeDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spanindex_freeze_duration_seconds",
			Help:    "Time spent sorting a labeler into its index",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"kind"},
	)

	m.QueriesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spanindex_queries_total",
			Help: "Total number of index query steps executed",
		},
		[]string{"op"},
	)

	m.DocumentsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "spanindex_documents_total",
			Help: "Total number of documents processed",
		},
	)

	m.ServerUptimeSeconds = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "spanindex_server_uptime_seconds",
			Help: "Server uptime in seconds",
		},
	)

	return m
}

// RunUptime updates the uptime gauge every interval until done is closed
func (m *Metrics) RunUptime(interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			m.ServerUptimeSeconds.Set(time.Since(m.ServerStartTime).Seconds())
		}
	}
}

// RecordGrpcRequest records a gRPC request with its status
func (m *Metrics) RecordGrpcRequest(method string, status string, duration time.Duration) {
	m.GrpcRequestsTotal.WithLabelValues(method, status).Inc()
	m.GrpcRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordQuery counts one executed query step
func (m *Metrics) RecordQuery(op string) {
	m.QueriesTotal.WithLabelValues(op).Inc()
}

// LabelerFrozen implements document.Observer
func (m *Metrics) LabelerFrozen(e document.FreezeEvent) {
	kind := e.Kind.String()
	m.LabelsIndexedTotal.WithLabelValues(kind).Add(float64(e.Count))
	m.FreezeDuration.WithLabelValues(kind).Observe(e.Duration.Seconds())
}
