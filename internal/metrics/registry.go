package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all Prometheus metrics for the roomshare daemon
type Registry struct {
	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRequestSize     *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// Upload protocol metrics
	uploadOperationsTotal *prometheus.CounterVec
	uploadChunkBytesTotal prometheus.Counter

	// Pasteboard metrics
	pasteboardOperationsTotal *prometheus.CounterVec

	// Storage metrics
	storageOperationDuration *prometheus.HistogramVec
	storageErrorsTotal       *prometheus.CounterVec

	// Daemon statistics
	roomsTotal prometheus.Gauge

	// Prometheus registry
	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics defined
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	m := &Registry{
		registry: reg,
	}

	m.initializeMetrics()
	return m
}

// initializeMetrics creates and registers all Prometheus metrics
func (m *Registry) initializeMetrics() {
	// HTTP metrics
	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	m.httpRequestSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "Size of HTTP request bodies in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 10), // 1KB to 512KB
		},
		[]string{"method", "endpoint"},
	)

	m.httpResponseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "Size of HTTP response bodies in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 10),
		},
		[]string{"method", "endpoint"},
	)

	// Upload protocol metrics
	m.uploadOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomshare_upload_operations_total",
			Help: "Total number of upload protocol operations",
		},
		[]string{"operation", "status"},
	)

	m.uploadChunkBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "roomshare_upload_chunk_bytes_total",
			Help: "Total number of bytes written by upload chunks",
		},
	)

	m.pasteboardOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomshare_pasteboard_operations_total",
			Help: "Total number of pasteboard operations",
		},
		[]string{"operation", "status"},
	)

	// Storage metrics
	m.storageOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_operation_duration_seconds",
			Help:    "Duration of storage operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)

	m.storageErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_errors_total",
			Help: "Total number of storage operation errors",
		},
		[]string{"operation", "error_type"},
	)

	m.roomsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "roomshare_rooms_total",
			Help: "Number of rooms seen by the last room listing",
		},
	)

	// Register all metrics
	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.httpRequestSize,
		m.httpResponseSize,
		m.uploadOperationsTotal,
		m.uploadChunkBytesTotal,
		m.pasteboardOperationsTotal,
		m.storageOperationDuration,
		m.storageErrorsTotal,
		m.roomsTotal,
	)
}

// GetRegistry returns the underlying Prometheus registry
func (m *Registry) GetRegistry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request metric
func (m *Registry) RecordHTTPRequest(method, endpoint, status string, duration float64, requestSize, responseSize int64) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
	if requestSize > 0 {
		m.httpRequestSize.WithLabelValues(method, endpoint).Observe(float64(requestSize))
	}
	if responseSize > 0 {
		m.httpResponseSize.WithLabelValues(method, endpoint).Observe(float64(responseSize))
	}
}

// RecordUploadOperation records an upload protocol operation
func (m *Registry) RecordUploadOperation(operation, status string) {
	m.uploadOperationsTotal.WithLabelValues(operation, status).Inc()
}

// AddChunkBytes adds to the total number of bytes written by chunks
func (m *Registry) AddChunkBytes(n int64) {
	if n > 0 {
		m.uploadChunkBytesTotal.Add(float64(n))
	}
}

// RecordPasteboardOperation records a pasteboard operation
func (m *Registry) RecordPasteboardOperation(operation, status string) {
	m.pasteboardOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordStorageOperation records a storage operation metric
func (m *Registry) RecordStorageOperation(operation, status string, duration float64) {
	m.storageOperationDuration.WithLabelValues(operation, status).Observe(duration)
}

// RecordStorageError records a storage error metric
func (m *Registry) RecordStorageError(operation, errorType string) {
	m.storageErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

// SetRoomsTotal sets the number of rooms
func (m *Registry) SetRoomsTotal(count float64) {
	m.roomsTotal.Set(count)
}

// routeParams maps the first path segment of every API route to its label
// template and the number of parameters that follow it
var routeParams = map[string]struct {
	template string
	params   int
}{
	"list":              {"/list", 0},
	"new":               {"/new", 0},
	"healthz":           {"/healthz", 0},
	"metrics":           {"/metrics", 0},
	"delete":            {"/delete/{room}", 1},
	"list_pasteboard":   {"/list_pasteboard/{room}", 1},
	"new_pasteboard":    {"/new_pasteboard/{room}", 1},
	"delete_pasteboard": {"/delete_pasteboard/{room}/{id}", 2},
	"list_files":        {"/list_files/{room}", 1},
	"files":             {"/files/{room}/{name}", 2},
	"delete_files":      {"/delete_files/{room}/{name}", 2},
	"new_file":          {"/new_file/{room}/{name}/{offset}", 3},
	"check_new_file":    {"/check_new_file/{room}/{name}", 2},
	"done_new_file":     {"/done_new_file/{room}/{name}", 2},
}

// NormalizeEndpoint normalizes HTTP endpoints for consistent labeling.
// Room and file names never appear in labels; anything that is not an API
// route (the static client) collapses to "other".
func NormalizeEndpoint(path string) string {
	segments := splitPath(path)
	if len(segments) == 0 {
		return "/"
	}

	route, ok := routeParams[segments[0]]
	if !ok || len(segments)-1 != route.params {
		return "other"
	}
	return route.template
}

// splitPath splits a URL path into non-empty segments
func splitPath(path string) []string {
	segments := []string{}
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
