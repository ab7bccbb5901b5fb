package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreOperations counts record store operations by collection, operation and result.
	StoreOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillhive_store_operations_total",
		Help: "Total number of record store operations",
	}, []string{"collection", "operation", "result"})

	// ChangeSignals counts change signals published by collection.
	ChangeSignals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillhive_change_signals_total",
		Help: "Total number of change signals fired",
	}, []string{"collection"})

	// ChangeSignalDrops counts changes dropped because a subscriber buffer was full.
	ChangeSignalDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillhive_change_signal_drops_total",
		Help: "Total number of change signals dropped for slow subscribers",
	}, []string{"collection"})

	// Notifications counts notification fan-out attempts by type and result.
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillhive_notifications_total",
		Help: "Total number of notifications fanned out",
	}, []string{"type", "result"})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillhive_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// AIRequests counts assistant calls by operation and result.
	AIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillhive_ai_requests_total",
		Help: "Total number of AI assistant requests",
	}, []string{"operation", "result"})

	// DatabaseQueryLatency records remote mirror query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skillhive_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// WebSocketConnections is the gauge of open /ws connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "skillhive_websocket_connections",
		Help: "Number of active WebSocket connections",
	})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// ResultLabel maps an error to the "ok"/"error" metric label.
func ResultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
