// Package observability holds the node's prometheus collectors.
package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	grpcRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: "grpc",
			Name:      "requests_total",
			Help:      "Total gRPC requests.",
		},
		[]string{"method", "code"},
	)
	grpcDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "marketplace",
			Subsystem: "grpc",
			Name:      "request_duration_seconds",
			Help:      "gRPC request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "code"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP gateway requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "marketplace",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP gateway request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	ledgerReverts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: "ledger",
			Name:      "reverts_total",
			Help:      "Ledger calls rejected, by rejection kind.",
		},
		[]string{"kind"},
	)
	ledgerBlock = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "marketplace",
			Subsystem: "ledger",
			Name:      "block_number",
			Help:      "Latest committed block.",
		},
	)
	auditViolations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: "audit",
			Name:      "violations_total",
			Help:      "Ledger invariant violations found by the audit task.",
		},
		[]string{"invariant"},
	)
	checkpointBlock = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "marketplace",
			Subsystem: "checkpoint",
			Name:      "block_number",
			Help:      "Block of the latest state checkpoint.",
		},
	)
	eventSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "marketplace",
			Subsystem: "stream",
			Name:      "subscribers",
			Help:      "Live event subscriptions.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			grpcRequests, grpcDuration,
			httpRequests, httpDuration,
			ledgerReverts, ledgerBlock,
			auditViolations, checkpointBlock,
			eventSubscribers,
		)
	})
}

func RecordGRPCRequest(method, code string, duration time.Duration) {
	RegisterMetrics()
	grpcRequests.WithLabelValues(method, code).Inc()
	grpcDuration.WithLabelValues(method, code).Observe(duration.Seconds())
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

func RecordRevert(kind string) {
	RegisterMetrics()
	ledgerReverts.WithLabelValues(kind).Inc()
}

func SetBlockNumber(block uint64) {
	RegisterMetrics()
	ledgerBlock.Set(float64(block))
}

func RecordAuditViolation(invariant string) {
	RegisterMetrics()
	auditViolations.WithLabelValues(invariant).Inc()
}

func SetCheckpointBlock(block uint64) {
	RegisterMetrics()
	checkpointBlock.Set(float64(block))
}

func SetEventSubscribers(n int) {
	RegisterMetrics()
	eventSubscribers.Set(float64(n))
}
