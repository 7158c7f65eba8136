package metrics

import (
	"net/http"
	"slices"
	"strconv"
	"time"
)

// responseWriter wraps http.ResponseWriter to capture metrics
type responseWriter struct {
	http.ResponseWriter
	status      int
	size        int64
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(status int) {
	if !rw.wroteHeader {
		rw.status = status
		rw.wroteHeader = true
		rw.ResponseWriter.WriteHeader(status)
	}
}

func (rw *responseWriter) Write(data []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	size, err := rw.ResponseWriter.Write(data)
	rw.size += int64(size)
	return size, err
}

// Unwrap lets http.ResponseController reach the underlying writer
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// HTTPMetrics returns a middleware that records HTTP request metrics.
// Requests to skipPaths (typically the metrics endpoint itself) are passed
// through unrecorded.
func HTTPMetrics(registry *Registry, skipPaths ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if registry == nil || slices.Contains(skipPaths, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()

			wrapped := &responseWriter{
				ResponseWriter: w,
				status:         http.StatusOK,
			}

			// Chunked uploads often arrive without a Content-Length
			requestSize := r.ContentLength
			if requestSize < 0 {
				requestSize = 0
			}

			next.ServeHTTP(wrapped, r)

			registry.RecordHTTPRequest(
				r.Method,
				NormalizeEndpoint(r.URL.Path),
				strconv.Itoa(wrapped.status),
				time.Since(start).Seconds(),
				requestSize,
				wrapped.size,
			)
		})
	}
}
