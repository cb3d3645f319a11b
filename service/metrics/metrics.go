package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the application.
// Following the explicit dependency injection pattern, this struct
// is passed to all components that need to record metrics.
type Metrics struct {
	// Import Pipeline Metrics
	importRowsTotal   *prometheus.CounterVec
	importFilesTotal  *prometheus.CounterVec
	importDuration    prometheus.Histogram
	importRowsPerFile prometheus.Histogram

	// Database Metrics
	dbQueryDuration   *prometheus.HistogramVec
	dbOperationsTotal *prometheus.CounterVec

	// HTTP Metrics
	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		// Import Pipeline Metrics
		importRowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deal_import_rows_total",
				Help: "Total number of imported rows by terminal status",
			},
			[]string{"status"},
		),
		importFilesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deal_import_files_total",
				Help: "Total number of uploaded files by result (accepted, rejected, parse_error)",
			},
			[]string{"result"},
		),
		importDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "deal_import_duration_seconds",
				Help:    "Duration of full file imports in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
		),
		importRowsPerFile: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "deal_import_rows_per_file",
				Help:    "Number of data rows per uploaded file",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
			},
		),

		// Database Metrics
		dbQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "db_query_duration_seconds",
				Help:    "Duration of database queries in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{"operation"},
		),
		dbOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "db_operations_total",
				Help: "Total number of database operations by operation and status",
			},
			[]string{"operation", "status"},
		),

		// HTTP Metrics
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"handler", "method", "status"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by handler, method and status",
			},
			[]string{"handler", "method", "status"},
		),
	}
}

// RecordImportRow records the terminal status of one imported row.
func (m *Metrics) RecordImportRow(status string) {
	m.importRowsTotal.WithLabelValues(status).Inc()
}

// RecordImportFile records the result of one uploaded file. Negative rows
// or duration skip the corresponding histogram, for rejections that never
// reached the pipeline.
func (m *Metrics) RecordImportFile(result string, rows int, duration float64) {
	m.importFilesTotal.WithLabelValues(result).Inc()
	if rows >= 0 {
		m.importRowsPerFile.Observe(float64(rows))
	}
	if duration >= 0 {
		m.importDuration.Observe(duration)
	}
}

// RecordDBQuery records a database query duration and outcome.
func (m *Metrics) RecordDBQuery(operation string, duration float64, err error) {
	m.dbQueryDuration.WithLabelValues(operation).Observe(duration)
	status := "success"
	if err != nil {
		status = "error"
	}
	m.dbOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordHTTPRequest records metrics for an HTTP request.
func (m *Metrics) RecordHTTPRequest(handler, method string, statusCode int, duration float64) {
	status := statusCodeToString(statusCode)
	m.httpRequestDuration.WithLabelValues(handler, method, status).Observe(duration)
	m.httpRequestsTotal.WithLabelValues(handler, method, status).Inc()
}

// statusCodeToString groups status codes by class to keep label
// cardinality low.
func statusCodeToString(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
