package prometheus

import (
	"time"

	"github.com/DmitriyMikhalev/warehouses/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Proposal validation metrics
	ValidationFailuresCounter prometheus.CounterVec

	// Acceptance engine metrics
	CommitmentsAcceptedCounter prometheus.CounterVec
	AcceptanceFailuresCounter  prometheus.CounterVec

	// Stock ledger metrics
	WarehouseStockGauge prometheus.GaugeVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration
	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Database operation metrics
	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	// Proposal validation metrics
	ValidationFailuresCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_validation_failures_total",
			Help: "Total number of rejected commitment proposals",
		},
		[]string{"kind", "reason"},
	)

	// Acceptance engine metrics
	CommitmentsAcceptedCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_commitments_accepted_total",
			Help: "Total number of accepted commitments",
		},
		[]string{"kind"},
	)

	AcceptanceFailuresCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_acceptance_failures_total",
			Help: "Total number of failed acceptance attempts",
		},
		[]string{"kind"},
	)

	// Stock ledger metrics
	WarehouseStockGauge = *promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_warehouse_stock_tons",
			Help: "Current total ledger payload per warehouse",
		},
		[]string{"warehouse_id", "warehouse_name"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordValidationFailure increments the counter for rejected proposals
func RecordValidationFailure(kind string, reason string) {
	ValidationFailuresCounter.WithLabelValues(kind, reason).Inc()
}

// RecordAcceptance increments the counter for accepted commitments
func RecordAcceptance(kind string) {
	CommitmentsAcceptedCounter.WithLabelValues(kind).Inc()
}

// RecordAcceptanceFailure increments the counter for failed acceptances
func RecordAcceptanceFailure(kind string) {
	AcceptanceFailuresCounter.WithLabelValues(kind).Inc()
}

// UpdateWarehouseStock updates the gauge for a warehouse's ledger total
func UpdateWarehouseStock(warehouseID string, warehouseName string, tons float64) {
	WarehouseStockGauge.WithLabelValues(warehouseID, warehouseName).Set(tons)
}
